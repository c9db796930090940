package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"safe2gether/models"
	"safe2gether/services"
	"safe2gether/supabase"
)

// AuthHandler serves login and the password reset flow.
type AuthHandler struct {
	users *services.UsersService
}

func NewAuthHandler(users *services.UsersService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Login serves POST /auth/login. Unknown users and wrong passwords get
// the same 401, so the endpoint does not reveal which accounts exist.
func (h *AuthHandler) Login(c *gin.Context) {
	req := &models.LoginRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	resp, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		var validation *services.ValidationError
		if errors.Is(err, supabase.ErrNotFound) || errors.As(err, &validation) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RequestPasswordReset serves POST /auth/password-reset.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	req := &models.PasswordResetRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	resp, err := h.users.RequestPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPasswordReset serves POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	req := &models.PasswordResetConfirm{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	resp, err := h.users.ConfirmPasswordReset(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
