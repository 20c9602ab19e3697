package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/interfaces/http/response"
	"blip.dashboard/internal/usecases"
)

type walletFlow interface {
	Open(ctx context.Context) entities.WalletFlowView
	Connect(ctx context.Context) (entities.WalletFlowView, error)
	Link(ctx context.Context) (entities.WalletFlowView, error)
	Disconnect(ctx context.Context) entities.WalletFlowView
	Close() entities.WalletFlowView
	View() entities.WalletFlowView
}

// WalletHandler drives the wallet binding modal
type WalletHandler struct {
	flow walletFlow
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(flow *usecases.WalletBindingFlow) *WalletHandler {
	return &WalletHandler{flow: flow}
}

// GET /api/v1/wallet
func (h *WalletHandler) Get(c *gin.Context) {
	response.Success(c, http.StatusOK, h.flow.View())
}

// POST /api/v1/wallet/open
func (h *WalletHandler) Open(c *gin.Context) {
	response.Success(c, http.StatusOK, h.flow.Open(c.Request.Context()))
}

// POST /api/v1/wallet/connect
func (h *WalletHandler) Connect(c *gin.Context) {
	h.respond(c)(h.flow.Connect(c.Request.Context()))
}

// POST /api/v1/wallet/link
func (h *WalletHandler) Link(c *gin.Context) {
	h.respond(c)(h.flow.Link(c.Request.Context()))
}

// POST /api/v1/wallet/disconnect
func (h *WalletHandler) Disconnect(c *gin.Context) {
	response.Success(c, http.StatusOK, h.flow.Disconnect(c.Request.Context()))
}

// POST /api/v1/wallet/close
func (h *WalletHandler) Close(c *gin.Context) {
	response.Success(c, http.StatusOK, h.flow.Close())
}

// respond writes the view. Failures carry the view too so the modal can
// render the error state and any navigation.
func (h *WalletHandler) respond(c *gin.Context) func(entities.WalletFlowView, error) {
	return func(view entities.WalletFlowView, err error) {
		if err != nil {
			response.ErrorWithExtra(c, err, gin.H{"wallet": view})
			return
		}
		response.Success(c, http.StatusOK, view)
	}
}
