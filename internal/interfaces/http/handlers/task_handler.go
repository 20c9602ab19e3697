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

type taskRegistry interface {
	Open(ctx context.Context, kind entities.TaskKind) (*usecases.TaskFlow, error)
	Get(id string) (*usecases.TaskFlow, error)
	Close(id string) (entities.TaskFlowView, error)
}

// TaskHandler drives the task verification modals
type TaskHandler struct {
	flows taskRegistry
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(flows *usecases.FlowRegistry) *TaskHandler {
	return &TaskHandler{flows: flows}
}

// Open starts a new flow
// POST /api/v1/tasks/:kind
func (h *TaskHandler) Open(c *gin.Context) {
	flow, err := h.flows.Open(c.Request.Context(), entities.TaskKind(c.Param("kind")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, flow.View())
}

// Get returns a flow's state
// GET /api/v1/tasks/flows/:id
func (h *TaskHandler) Get(c *gin.Context) {
	flow, err := h.flows.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, flow.View())
}

// StartAction returns the external action URL and moves on to the proof step
// POST /api/v1/tasks/flows/:id/action
func (h *TaskHandler) StartAction(c *gin.Context) {
	h.transition(c, func(_ context.Context, f *usecases.TaskFlow) (entities.TaskFlowView, error) {
		return f.StartAction()
	})
}

// POST /api/v1/tasks/flows/:id/skip
func (h *TaskHandler) Skip(c *gin.Context) {
	h.transition(c, func(_ context.Context, f *usecases.TaskFlow) (entities.TaskFlowView, error) {
		return f.SkipAction()
	})
}

// SubmitProof sends the proof for verification
// POST /api/v1/tasks/flows/:id/proof
func (h *TaskHandler) SubmitProof(c *gin.Context) {
	var proof entities.TaskProof
	if err := c.ShouldBindJSON(&proof); err != nil {
		response.Error(c, domainerrors.Validation("Enter your proof to continue."))
		return
	}
	h.transition(c, func(ctx context.Context, f *usecases.TaskFlow) (entities.TaskFlowView, error) {
		return f.SubmitProof(ctx, proof)
	})
}

// POST /api/v1/tasks/flows/:id/retry
func (h *TaskHandler) Retry(c *gin.Context) {
	h.transition(c, func(_ context.Context, f *usecases.TaskFlow) (entities.TaskFlowView, error) {
		return f.Retry()
	})
}

// POST /api/v1/tasks/flows/:id/close
func (h *TaskHandler) Close(c *gin.Context) {
	view, err := h.flows.Close(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *TaskHandler) transition(c *gin.Context, fn func(context.Context, *usecases.TaskFlow) (entities.TaskFlowView, error)) {
	flow, err := h.flows.Get(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := fn(c.Request.Context(), flow)
	if err != nil {
		response.ErrorWithExtra(c, err, gin.H{"task": view})
		return
	}
	response.Success(c, http.StatusOK, view)
}
