package handlers

import (
	"net/http"

	"account_service/internal/validation"

	"github.com/gin-gonic/gin"
)

// RegisterRequest documents the registration payload.
type RegisterRequest struct {
	FirstName string `json:"first_name" example:"A"`
	LastName  string `json:"last_name" example:"L"`
	Email     string `json:"email" example:"a@x.com"`
	Username  string `json:"username" example:"alice"`
	Password  string `json:"password" example:"secret1"`
}

// UpdateRequest documents the profile update payload; send at least one field.
type UpdateRequest struct {
	FirstName string `json:"first_name,omitempty" example:"Alicia"`
	LastName  string `json:"last_name,omitempty"`
}

// ChangePasswordRequest documents the change-password payload.
type ChangePasswordRequest struct {
	Old     string `json:"old" example:"secret1"`
	New     string `json:"new" example:"secret2"`
	Confirm string `json:"confirm" example:"secret2"`
}

// MessageResponse carries a plain status message.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// createUser godoc
// @Summary      Register a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "New account"
// @Success      201   {object}  models.User
// @Failure      400   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users/ [post]
func (h *Handler) createUser(c *gin.Context) {
	payload, err := decodeObject(c)
	if err != nil {
		h.writeError(c, err, "user_create_bad_body")
		return
	}
	in, err := validation.ParseRegistration(payload)
	if err != nil {
		h.writeError(c, err, "user_create_invalid")
		return
	}

	u, err := h.services.CreateUser(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err, "user_create_failed", "username", in.Username)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// listUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/ [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	list, err := h.services.ListUsers(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "user_list_failed")
		return
	}
	c.JSON(http.StatusOK, list)
}

// getUser godoc
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
// @Security     BearerAuth
func (h *Handler) getUser(c *gin.Context) {
	id := c.Param("id")
	u, err := h.services.GetUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "user_get_failed", "user_id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// updateUser godoc
// @Summary      Update first or last name
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "User id"
// @Param        body  body      UpdateRequest  true  "Fields to change"
// @Success      200   {object}  models.User
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateUser(c *gin.Context) {
	id := c.Param("id")
	payload, err := decodeObject(c)
	if err != nil {
		h.writeError(c, err, "user_update_bad_body")
		return
	}
	patch, err := validation.ParseProfileUpdate(payload)
	if err != nil {
		h.writeError(c, err, "user_update_invalid")
		return
	}

	u, err := h.services.UpdateUser(c.Request.Context(), id, patch)
	if err != nil {
		h.writeError(c, err, "user_update_failed", "user_id", id)
		return
	}
	c.JSON(http.StatusOK, u)
}

// deleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteUser(c *gin.Context) {
	id := c.Param("id")
	if err := h.services.DeleteUser(c.Request.Context(), id); err != nil {
		h.writeError(c, err, "user_delete_failed", "user_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}

// changePassword godoc
// @Summary      Change the caller's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      ChangePasswordRequest  true  "Old and new password"
// @Success      200   {object}  MessageResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /users/change-password [post]
// @Security     BearerAuth
func (h *Handler) changePassword(c *gin.Context) {
	payload, err := decodeObject(c)
	if err != nil {
		h.writeError(c, err, "password_change_bad_body")
		return
	}
	in, err := validation.ParsePasswordChange(payload)
	if err != nil {
		h.writeError(c, err, "password_change_invalid")
		return
	}

	userID := c.GetString(userIDKey)
	if err := h.services.ChangePassword(c.Request.Context(), userID, in); err != nil {
		h.writeError(c, err, "password_change_failed", "user_id", userID)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Msg: msgPasswordUpdated})
}
