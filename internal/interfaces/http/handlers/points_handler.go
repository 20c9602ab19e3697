package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/interfaces/http/response"
	"blip.dashboard/internal/usecases"
)

type ledgerService interface {
	Load(ctx context.Context) entities.PointsLedgerView
	Referrals(ctx context.Context) (entities.ReferralSummary, error)
}

// PointsHandler serves the points ledger and referrals
type PointsHandler struct {
	ledger ledgerService
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(ledger *usecases.PointsLedger) *PointsHandler {
	return &PointsHandler{ledger: ledger}
}

// GET /api/v1/points
func (h *PointsHandler) Points(c *gin.Context) {
	response.Success(c, http.StatusOK, h.ledger.Load(c.Request.Context()))
}

// GET /api/v1/referrals
func (h *PointsHandler) Referrals(c *gin.Context) {
	summary, err := h.ledger.Referrals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
