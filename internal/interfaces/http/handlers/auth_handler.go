package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/interfaces/http/response"
	"blip.dashboard/internal/usecases"
)

type authService interface {
	Login(ctx context.Context, input entities.LoginInput) (*entities.User, error)
	Register(ctx context.Context, input entities.RegisterInput) (entities.VerificationStatus, error)
	ResetPassword(ctx context.Context, input entities.ResetPasswordInput) error
	Logout(ctx context.Context)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth     authService
	onLogout []func()
}

// NewAuthHandler creates a new auth handler. onLogout hooks run before the
// session ends, e.g. to close open modals.
func NewAuthHandler(auth *usecases.AuthFlow, onLogout ...func()) *AuthHandler {
	return &AuthHandler{auth: auth, onLogout: onLogout}
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation("Enter your email and password."))
		return
	}

	user, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindNotVerified {
			response.ErrorWithExtra(c, err, gin.H{
				"navigation": entities.Navigation{
					To:    usecases.RouteVerifyEmail,
					State: map[string]string{"email": input.Email},
				},
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":       user,
		"navigation": entities.Navigation{To: usecases.RouteDashboard, Replace: true},
	})
}

// Register handles account registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation("Enter a valid email and password."))
		return
	}

	status, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"verification": status,
		"navigation": entities.Navigation{
			To:    usecases.RouteVerifyEmail,
			State: map[string]string{"email": status.Email},
		},
	})
}

// Logout ends the session. It always succeeds.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, fn := range h.onLogout {
		fn()
	}
	h.auth.Logout(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{
		"navigation": entities.Navigation{To: usecases.RouteLogin, Replace: true},
	})
}

// ResetPassword completes a password reset link
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input entities.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.Validation("Enter a new password."))
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":    "Password updated. You can sign in now.",
		"navigation": entities.Navigation{To: usecases.RouteLogin, Replace: true},
	})
}
