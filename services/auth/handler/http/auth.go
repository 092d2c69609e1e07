package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spotroute/backend/internal/pkg/apperrors"
	"github.com/spotroute/backend/internal/pkg/middleware"
	"github.com/spotroute/backend/internal/pkg/models"
	"github.com/spotroute/backend/internal/utils"
	"github.com/spotroute/backend/services/auth"
)

// AuthHandler handles HTTP requests for authentication
type AuthHandler struct {
	authUC auth.AuthUC
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUC auth.AuthUC) *AuthHandler {
	return &AuthHandler{
		authUC: authUC,
	}
}

// RegisterRoutes registers auth routes; register and login are public
func (h *AuthHandler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	authed.GET("/auth/me", h.Me)
}

// Register creates a new rider or driver account
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	resp, err := h.authUC.Register(c.Request().Context(), req)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Registration successful", resp)
}

// Login authenticates an existing user
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request format")
	}

	resp, err := h.authUC.Login(c.Request().Context(), req)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindForbidden) {
			return utils.UnauthorizedResponse(c, "Invalid email or password")
		}
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return utils.UnauthorizedResponse(c, "")
	}

	user, err := h.authUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", user)
}
