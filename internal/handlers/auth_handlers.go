package handlers

import (
	"errors"
	"net/http"

	"attendance_backend/internal/middleware"
	"attendance_backend/internal/services"
	"attendance_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// AdminLogin handles admin login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AdminLogin")
		return
	}

	resp, err := h.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "AdminLogin: Error from authService.AdminLogin", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EmployeeLogin handles employee login.
func (h *AuthHandler) EmployeeLogin(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "EmployeeLogin")
		return
	}

	resp, err := h.authService.EmployeeLogin(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "EmployeeLogin: Error from authService.EmployeeLogin", "Failed to login.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "RefreshToken")
		return
	}

	resp, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err, "RefreshToken: Error from authService.RefreshToken", "Failed to refresh token.")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me retrieves the account of the currently authenticated caller.
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		utils.LogError(errors.New("principal not found in context"), "Me: missing principal")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return
	}

	resp, err := h.authService.Me(c.Request.Context(), principal)
	if err != nil {
		respondServiceError(c, err, "Me: Error from authService.Me", "Failed to fetch account.")
		return
	}
	c.JSON(http.StatusOK, resp)
}
