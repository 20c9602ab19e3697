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

// Task flow copy
const (
	MsgTaskVerified    = "Verified! Points have been added to your balance."
	MsgTaskBusy        = "Verification is already in progress."
	MsgTaskDone        = "This task is already complete."
	MsgTaskFlowClosed  = "This task dialog is closed."
	MsgTaskWrongStep   = "Finish the current step first."
	MsgTaskNoRetry     = "There is nothing to retry."
	MsgTaskNoAction    = "This step has no external action."
	MsgTaskUnavailable = "Unknown task."
)

// submission is a validated proof ready to send.
type submission struct {
	fingerprint string
	score       *int
	send        func(ctx context.Context, verifier repositories.TaskVerificationRepository, key string) (*entities.VerificationResult, error)
}

// taskVariant is the per-task part of a verification flow.
type taskVariant interface {
	kind() entities.TaskKind
	instructions() string
	actionURL() string
	// prepare validates proof client-side. Errors are validation failures
	// and must not cause a state change.
	prepare(proof entities.TaskProof) (*submission, error)
}

// TaskFlow is one verification modal: instructions, awaiting-proof,
// verifying, then success or error. Error returns to awaiting-proof on retry.
type TaskFlow struct {
	id             string
	variant        taskVariant
	verifier       repositories.TaskVerificationRepository
	reward         int64
	onSuccess      func(reward int64)
	onClosed       func(id string)
	autoCloseDelay time.Duration

	mu              sync.Mutex
	state           entities.TaskState
	message         string
	score           *int
	closed          bool
	credited        bool
	attempt         int
	lastFingerprint string
	timer           *time.Timer
}

func newTaskFlow(
	id string,
	variant taskVariant,
	verifier repositories.TaskVerificationRepository,
	reward int64,
	onSuccess func(int64),
	onClosed func(string),
	autoCloseDelay time.Duration,
) *TaskFlow {
	return &TaskFlow{
		id:             id,
		variant:        variant,
		verifier:       verifier,
		reward:         reward,
		onSuccess:      onSuccess,
		onClosed:       onClosed,
		autoCloseDelay: autoCloseDelay,
		state:          entities.TaskStateInstructions,
	}
}

func (f *TaskFlow) ID() string { return f.id }

func (f *TaskFlow) Kind() entities.TaskKind { return f.variant.kind() }

// StartAction returns the external URL to open and advances to awaiting-proof.
func (f *TaskFlow) StartAction() (entities.TaskFlowView, error) {
	url := f.variant.actionURL()
	if url == "" {
		return f.View(), domainerrors.InvalidState(MsgTaskNoAction)
	}
	return f.advanceFromInstructions()
}

// SkipAction advances without opening the external service, for users who
// already performed the action.
func (f *TaskFlow) SkipAction() (entities.TaskFlowView, error) {
	return f.advanceFromInstructions()
}

func (f *TaskFlow) advanceFromInstructions() (entities.TaskFlowView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openLocked(); err != nil {
		return f.viewLocked(), err
	}
	switch f.state {
	case entities.TaskStateInstructions:
		f.state = entities.TaskStateAwaitingProof
	case entities.TaskStateAwaitingProof:
	default:
		return f.viewLocked(), domainerrors.InvalidState(MsgTaskWrongStep)
	}
	return f.viewLocked(), nil
}

// SubmitProof validates proof locally and sends it for verification. Local
// validation failures leave the state unchanged and are returned; backend
// outcomes become flow state.
func (f *TaskFlow) SubmitProof(ctx context.Context, proof entities.TaskProof) (entities.TaskFlowView, error) {
	ctx = logger.WithFlowID(ctx, f.id)

	f.mu.Lock()
	if err := f.openLocked(); err != nil {
		view := f.viewLocked()
		f.mu.Unlock()
		return view, err
	}
	switch f.state {
	case entities.TaskStateAwaitingProof:
	case entities.TaskStateVerifying:
		view := f.viewLocked()
		f.mu.Unlock()
		return view, domainerrors.InvalidState(MsgTaskBusy)
	case entities.TaskStateSuccess:
		view := f.viewLocked()
		f.mu.Unlock()
		return view, domainerrors.InvalidState(MsgTaskDone)
	default:
		view := f.viewLocked()
		f.mu.Unlock()
		return view, domainerrors.InvalidState(MsgTaskWrongStep)
	}

	sub, err := f.variant.prepare(proof)
	if err != nil {
		TaskSubmissions.WithLabelValues(string(f.variant.kind()), outcomeInvalid).Inc()
		if sub != nil {
			f.score = sub.score
		}
		view := f.viewLocked()
		f.mu.Unlock()
		return view, err
	}

	// The same proof reuses its key so a replay after a lost response stays
	// idempotent at the backend.
	if sub.fingerprint != f.lastFingerprint || f.attempt == 0 {
		f.attempt++
		f.lastFingerprint = sub.fingerprint
	}
	attempt := f.attempt
	key := utils.IdempotencyKey(f.id, attempt)
	f.state = entities.TaskStateVerifying
	f.message = ""
	f.score = sub.score
	f.mu.Unlock()

	logger.Info(ctx, "Submitting task proof", zap.String("kind", string(f.variant.kind())), zap.Int("attempt", attempt))
	result, err := sub.send(ctx, f.verifier, key)

	state, message := entities.TaskStateSuccess, MsgTaskVerified
	switch {
	case err != nil:
		TaskSubmissions.WithLabelValues(string(f.variant.kind()), outcomeError).Inc()
		logger.Warn(ctx, "Task verification failed", zap.Error(err))
		state, message = entities.TaskStateError, domainerrors.UserMessage(err)
	case result == nil || !result.Success:
		TaskSubmissions.WithLabelValues(string(f.variant.kind()), outcomeRejected).Inc()
		state, message = entities.TaskStateError, domainerrors.MsgVerificationNo
		if result != nil && result.Message != "" {
			message = result.Message
		}
	default:
		TaskSubmissions.WithLabelValues(string(f.variant.kind()), outcomeSuccess).Inc()
		if result.Message != "" {
			message = result.Message
		}
	}

	f.mu.Lock()
	credit := state == entities.TaskStateSuccess && !f.credited
	if credit {
		f.credited = true
	}
	// A flow closed mid-request stays closed with its last state; points the
	// backend already awarded are still credited to the session.
	if f.closed {
		logger.Debug(ctx, "Verification finished after close", zap.String("state", string(state)))
	} else {
		f.state = state
		f.message = message
		if credit {
			f.scheduleCloseLocked()
		}
	}
	view := f.viewLocked()
	f.mu.Unlock()

	if credit {
		PointsCredited.WithLabelValues(string(f.variant.kind())).Add(float64(f.reward))
		logger.Info(ctx, "Task verified", zap.Int64("reward", f.reward))
		if f.onSuccess != nil {
			f.onSuccess(f.reward)
		}
	}
	return view, nil
}

// Retry returns from error to awaiting-proof.
func (f *TaskFlow) Retry() (entities.TaskFlowView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openLocked(); err != nil {
		return f.viewLocked(), err
	}
	if f.state != entities.TaskStateError {
		return f.viewLocked(), domainerrors.InvalidState(MsgTaskNoRetry)
	}
	f.state = entities.TaskStateAwaitingProof
	f.message = ""
	return f.viewLocked(), nil
}

// Close ends the flow and cancels its timers. Closing is always allowed, also
// while a verification is in flight.
func (f *TaskFlow) Close() entities.TaskFlowView {
	f.mu.Lock()
	f.stopTimerLocked()
	f.closed = true
	view := f.viewLocked()
	f.mu.Unlock()

	if f.onClosed != nil {
		f.onClosed(f.id)
	}
	return view
}

// View returns the current flow state.
func (f *TaskFlow) View() entities.TaskFlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *TaskFlow) openLocked() error {
	if f.closed {
		return domainerrors.InvalidState(MsgTaskFlowClosed)
	}
	return nil
}

func (f *TaskFlow) viewLocked() entities.TaskFlowView {
	view := entities.TaskFlowView{
		ID:           f.id,
		Kind:         f.variant.kind(),
		State:        f.state,
		Reward:       f.reward,
		ActionURL:    f.variant.actionURL(),
		Instructions: f.variant.instructions(),
		Message:      f.message,
		Closed:       f.closed,
	}
	if f.score != nil {
		s := *f.score
		view.Score = &s
	}
	if f.variant.kind() == entities.TaskQuiz {
		view.Questions = QuizQuestions()
	}
	return view
}

func (f *TaskFlow) scheduleCloseLocked() {
	f.stopTimerLocked()
	var t *time.Timer
	t = time.AfterFunc(f.autoCloseDelay, func() {
		f.mu.Lock()
		if f.timer != t || f.closed {
			f.mu.Unlock()
			return
		}
		f.timer = nil
		f.mu.Unlock()
		f.Close()
	})
	f.timer = t
}

func (f *TaskFlow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
