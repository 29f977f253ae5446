package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"account_service/internal/service"
	"account_service/internal/validation"

	"github.com/gin-gonic/gin"
)

// Client-facing messages.
const (
	msgUserExists         = "User exists"
	msgUserNotFound       = "User not found"
	msgInvalidCredentials = "Invalid credentials"
	msgPasswordMismatch   = "Confirmed password not match"
	msgOldPassMismatch    = "Old pass not match"
	msgPasswordUpdated    = "Password updated"
	msgInternal           = "Internal server error"
)

// ErrorResponse is the body of every failed request. Msg is a string or,
// for validation failures, a map of field to messages.
type ErrorResponse struct {
	Msg any `json:"msg"`
}

// writeError maps a service error to a status and body. Unknown errors are
// logged under logKey and answered with a generic 500.
func (h *Handler) writeError(c *gin.Context, err error, logKey string, kv ...any) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: verr.Fields})
	case errors.Is(err, service.ErrDuplicateUser):
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: msgUserExists})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: msgUserNotFound})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: msgInvalidCredentials})
	case errors.Is(err, service.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: msgPasswordMismatch})
	case errors.Is(err, service.ErrOldPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: msgOldPassMismatch})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Msg: msgBadToken})
	default:
		fields := append([]any{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Msg: msgInternal})
	}
}

// decodeObject reads the body as a JSON object. Anything else, including an
// empty body, is a validation error on the schema key.
func decodeObject(c *gin.Context) (map[string]any, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, validation.NewSchemaError(validation.MsgInvalidInput)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return nil, validation.NewSchemaError(validation.MsgInvalidInput)
	}
	return payload, nil
}
