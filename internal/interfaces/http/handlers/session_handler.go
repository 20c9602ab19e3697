package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/interfaces/http/response"
	"blip.dashboard/internal/usecases"
)

type sessionService interface {
	Snapshot() entities.Session
	RefreshSession(ctx context.Context)
}

type guardService interface {
	Check() usecases.GuardDecision
}

// SessionHandler exposes the session store and route guard
type SessionHandler struct {
	session sessionService
	guard   guardService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(session *usecases.SessionStore, guard *usecases.RouteGuard) *SessionHandler {
	return &SessionHandler{session: session, guard: guard}
}

// GetSession returns the current session snapshot
// GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	response.Success(c, http.StatusOK, h.session.Snapshot())
}

// Refresh re-reads the session from the backend
// POST /api/v1/session/refresh
func (h *SessionHandler) Refresh(c *gin.Context) {
	h.session.RefreshSession(c.Request.Context())
	response.Success(c, http.StatusOK, h.session.Snapshot())
}

// Guard tells the UI what to do with a protected view
// GET /api/v1/guard?view=dashboard
func (h *SessionHandler) Guard(c *gin.Context) {
	d := h.guard.Check()
	response.Success(c, http.StatusOK, gin.H{
		"view":       c.DefaultQuery("view", "dashboard"),
		"action":     d.Action,
		"navigation": d.Navigation,
	})
}
