package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/interfaces/http/response"
	"blip.dashboard/internal/usecases"
)

type verificationService interface {
	Status() entities.VerificationStatus
	CheckNow(ctx context.Context) (entities.VerificationStatus, error)
	ResendVerification(ctx context.Context) error
	CancelPending(ctx context.Context)
}

// VerificationHandler drives the pending-verification screen
type VerificationHandler struct {
	bridge verificationService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(bridge *usecases.IdentityBridge) *VerificationHandler {
	return &VerificationHandler{bridge: bridge}
}

// Status returns the pending verification state
// GET /api/v1/verification
func (h *VerificationHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, h.bridge.Status())
}

// Check runs one verification check now
// POST /api/v1/verification/check
func (h *VerificationHandler) Check(c *gin.Context) {
	status, err := h.bridge.CheckNow(c.Request.Context())
	if err != nil {
		response.ErrorWithExtra(c, err, gin.H{"verification": status})
		return
	}
	response.Success(c, http.StatusOK, status)
}

// Resend sends another verification email
// POST /api/v1/verification/resend
func (h *VerificationHandler) Resend(c *gin.Context) {
	if err := h.bridge.ResendVerification(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.bridge.Status())
}

// Cancel leaves the pending-verification screen
// DELETE /api/v1/verification
func (h *VerificationHandler) Cancel(c *gin.Context) {
	h.bridge.CancelPending(c.Request.Context())
	response.Success(c, http.StatusOK, h.bridge.Status())
}
