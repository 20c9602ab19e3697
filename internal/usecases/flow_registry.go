package usecases

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/logger"
	"blip.dashboard/pkg/utils"
)

// FlowRegistry owns the open task flows. Every Open creates a fresh,
// isolated instance; flows are dropped when they close.
type FlowRegistry struct {
	session        *SessionStore
	verifier       repositories.TaskVerificationRepository
	autoCloseDelay time.Duration

	mu    sync.RWMutex
	flows map[string]*TaskFlow
}

// NewFlowRegistry creates a registry. A zero delay uses DefaultAutoCloseDelay.
func NewFlowRegistry(session *SessionStore, verifier repositories.TaskVerificationRepository, autoCloseDelay time.Duration) *FlowRegistry {
	if autoCloseDelay <= 0 {
		autoCloseDelay = DefaultAutoCloseDelay
	}
	return &FlowRegistry{
		session:        session,
		verifier:       verifier,
		autoCloseDelay: autoCloseDelay,
		flows:          make(map[string]*TaskFlow),
	}
}

// Open starts a new flow of kind for the current user. The reward shown is
// the one for the user's role.
func (r *FlowRegistry) Open(ctx context.Context, kind entities.TaskKind) (*TaskFlow, error) {
	variant, ok := variantFor(kind)
	if !ok {
		return nil, domainerrors.NotFound(MsgTaskUnavailable)
	}
	user := r.session.User()
	if user == nil {
		return nil, domainerrors.Unauthorized(domainerrors.MsgUnauthorized)
	}

	id := utils.NewFlowID()
	reward := entities.RewardFor(kind, user.Role)
	flow := newTaskFlow(id, variant, r.verifier, reward, r.session.UpdatePoints, r.remove, r.autoCloseDelay)

	r.mu.Lock()
	r.flows[id] = flow
	r.mu.Unlock()

	logger.Info(logger.WithFlowID(ctx, id), "Task flow opened", zap.String("kind", string(kind)), zap.Int64("reward", reward))
	return flow, nil
}

// Get returns the open flow with id.
func (r *FlowRegistry) Get(id string) (*TaskFlow, error) {
	r.mu.RLock()
	flow, ok := r.flows[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domainerrors.NotFound("Task flow not found or already closed.")
	}
	return flow, nil
}

// Close closes and forgets the flow with id.
func (r *FlowRegistry) Close(id string) (entities.TaskFlowView, error) {
	flow, err := r.Get(id)
	if err != nil {
		return entities.TaskFlowView{}, err
	}
	return flow.Close(), nil
}

// CloseAll closes every open flow.
func (r *FlowRegistry) CloseAll() {
	r.mu.RLock()
	flows := make([]*TaskFlow, 0, len(r.flows))
	for _, f := range r.flows {
		flows = append(flows, f)
	}
	r.mu.RUnlock()

	for _, f := range flows {
		f.Close()
	}
}

// Len returns the number of open flows.
func (r *FlowRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

func (r *FlowRegistry) remove(id string) {
	r.mu.Lock()
	delete(r.flows, id)
	r.mu.Unlock()
}
