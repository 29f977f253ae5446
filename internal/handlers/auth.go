package handlers

import (
	"errors"
	"net/http"

	"account_service/internal/service"
	"account_service/internal/validation"

	"github.com/gin-gonic/gin"
)

// LoginRequest documents the login payload.
type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret1"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// login godoc
// @Summary      Log in
// @Description  Bad payload and bad credentials both answer 400
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /login [post]
func (h *Handler) login(c *gin.Context) {
	payload, err := decodeObject(c)
	if err != nil {
		h.writeError(c, err, "login_bad_body")
		return
	}
	in, err := validation.ParseLogin(payload)
	if err != nil {
		h.writeError(c, err, "login_invalid")
		return
	}

	token, err := h.services.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.log.Infow("login_failed", "username", in.Username)
		}
		h.writeError(c, err, "login_failed", "username", in.Username)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token})
}
