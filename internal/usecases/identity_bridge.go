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
)

// Poller runs a tick function on a fixed interval. Start blocks until Stop
// is called or ctx is done.
type Poller interface {
	Start(ctx context.Context)
	Stop()
}

// PollerFactory builds a Poller for tick.
type PollerFactory func(interval time.Duration, tick func(ctx context.Context)) Poller

// Verification screen copy
const (
	MsgAwaitingVerification = "We sent a verification link to your inbox. This page updates once you click it."
	MsgStillUnverified      = "Your email is not verified yet. Click the link in your inbox, then check again."
	MsgProviderSignedOut    = "Sign in again to finish verifying your email."
	MsgVerificationSent     = "Verification email sent. Check your inbox."
	MsgVerified             = "Email verified. You can sign in now."
)

// IdentityBridge reconciles the identity provider's email-verified flag with
// the backend's copy while the pending-verification screen is active.
type IdentityBridge struct {
	provider  repositories.IdentityProvider
	accounts  repositories.AccountRepository
	pending   repositories.PendingEmailStore
	newPoller PollerFactory
	interval  time.Duration

	mu          sync.Mutex
	baseCtx     context.Context
	ready       bool
	state       entities.VerificationState
	email       string
	message     string
	unsubscribe func()
	poller      Poller

	// serializes provider checks between the poller and CheckNow
	checkMu sync.Mutex
}

// NewIdentityBridge creates a bridge. A zero interval uses DefaultPollInterval.
func NewIdentityBridge(
	provider repositories.IdentityProvider,
	accounts repositories.AccountRepository,
	pending repositories.PendingEmailStore,
	newPoller PollerFactory,
	interval time.Duration,
) *IdentityBridge {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &IdentityBridge{
		provider:  provider,
		accounts:  accounts,
		pending:   pending,
		newPoller: newPoller,
		interval:  interval,
		state:     entities.VerificationIdle,
		baseCtx:   context.Background(),
	}
}

// Start subscribes to provider auth-state changes and restores a pending
// verification left over from a previous run. ctx bounds the poller lifetime.
func (b *IdentityBridge) Start(ctx context.Context) {
	b.mu.Lock()
	if b.unsubscribe != nil {
		b.mu.Unlock()
		return
	}
	b.baseCtx = ctx
	b.mu.Unlock()

	if email, err := b.pending.Load(ctx); err != nil {
		logger.Warn(ctx, "Failed to load pending verification email", zap.Error(err))
	} else if email != "" {
		b.enterPending(email)
	}

	unsubscribe := b.provider.OnAuthStateChanged(b.onAuthState)

	b.mu.Lock()
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
}

// Stop unsubscribes from the provider and stops polling.
func (b *IdentityBridge) Stop() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.stopPollerLocked()
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (b *IdentityBridge) onAuthState(*repositories.ProviderUser) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return
	}
	b.ready = true
	logger.Debug(b.baseCtx, "Identity provider ready")
	b.startPollerLocked()
}

// BeginPending shows the pending-verification screen for email.
func (b *IdentityBridge) BeginPending(ctx context.Context, email string) entities.VerificationStatus {
	email = normalizeEmail(email)
	if err := b.pending.Save(ctx, email); err != nil {
		logger.Warn(ctx, "Failed to persist pending verification email", zap.Error(err))
	}
	b.enterPending(email)
	return b.Status()
}

func (b *IdentityBridge) enterPending(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.email = email
	b.message = MsgAwaitingVerification
	b.state = entities.VerificationWaitingProvider
	b.startPollerLocked()
}

// CancelPending leaves the pending-verification screen.
func (b *IdentityBridge) CancelPending(ctx context.Context) {
	if err := b.pending.Clear(ctx); err != nil {
		logger.Warn(ctx, "Failed to clear pending verification email", zap.Error(err))
	}

	b.mu.Lock()
	b.stopPollerLocked()
	b.email = ""
	b.message = ""
	b.state = entities.VerificationIdle
	b.mu.Unlock()
}

// CheckNow runs one verification check without waiting for the next tick.
func (b *IdentityBridge) CheckNow(ctx context.Context) (entities.VerificationStatus, error) {
	b.mu.Lock()
	ready, email := b.ready, b.email
	b.mu.Unlock()

	if !ready {
		return b.Status(), domainerrors.ProviderNotReady()
	}
	if email == "" {
		return b.Status(), domainerrors.InvalidState("No email is waiting for verification.")
	}
	err := b.check(ctx)
	return b.Status(), err
}

// ResendVerification asks the provider to send another verification email.
// Rate limiting comes back as KindRateLimited.
func (b *IdentityBridge) ResendVerification(ctx context.Context) error {
	b.mu.Lock()
	ready := b.ready
	b.mu.Unlock()
	if !ready {
		return domainerrors.ProviderNotReady()
	}

	if err := b.provider.SendEmailVerification(ctx); err != nil {
		logger.Warn(ctx, "Resend verification email failed", zap.Error(err))
		return err
	}

	b.mu.Lock()
	if b.state != entities.VerificationVerified {
		b.message = MsgVerificationSent
	}
	b.mu.Unlock()
	return nil
}

// Status returns the current verification screen state.
func (b *IdentityBridge) Status() entities.VerificationStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := entities.VerificationStatus{
		State:         b.state,
		Email:         b.email,
		ProviderReady: b.ready,
		Message:       b.message,
	}
	if b.state == entities.VerificationVerified {
		st.Navigation = &entities.Navigation{
			To:      RouteLogin,
			Replace: true,
			State:   map[string]string{"email": b.email, "verified": "true"},
		}
	}
	return st
}

// ProviderReady reports whether the first auth-state callback has arrived.
func (b *IdentityBridge) ProviderReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *IdentityBridge) tick(ctx context.Context) {
	if err := b.check(ctx); err != nil {
		logger.Warn(ctx, "Verification poll failed", zap.Error(err))
	}
}

func (b *IdentityBridge) check(ctx context.Context) error {
	b.checkMu.Lock()
	defer b.checkMu.Unlock()

	b.mu.Lock()
	email, state := b.email, b.state
	b.mu.Unlock()
	if email == "" || state == entities.VerificationVerified {
		return nil
	}

	user, err := b.provider.Reload(ctx)
	if err != nil {
		VerificationChecks.WithLabelValues(outcomeError).Inc()
		b.fail(err)
		return err
	}
	if user == nil {
		VerificationChecks.WithLabelValues("signed_out").Inc()
		b.setMessage(MsgProviderSignedOut)
		return nil
	}
	if !user.EmailVerified {
		VerificationChecks.WithLabelValues("unverified").Inc()
		b.setMessage(MsgStillUnverified)
		return nil
	}

	if err := b.accounts.ConfirmEmailVerified(ctx, email); err != nil {
		VerificationChecks.WithLabelValues(outcomeError).Inc()
		b.fail(err)
		return err
	}
	VerificationChecks.WithLabelValues("verified").Inc()
	if err := b.pending.Clear(ctx); err != nil {
		logger.Warn(ctx, "Failed to clear pending verification email", zap.Error(err))
	}

	b.mu.Lock()
	b.state = entities.VerificationVerified
	b.message = MsgVerified
	b.stopPollerLocked()
	b.mu.Unlock()

	logger.Info(ctx, "Email verification confirmed", zap.String("email", email))
	return nil
}

func (b *IdentityBridge) setMessage(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == entities.VerificationError {
		b.state = entities.VerificationPolling
	}
	b.message = msg
}

func (b *IdentityBridge) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = entities.VerificationError
	b.message = domainerrors.UserMessage(err)
}

// startPollerLocked starts polling once both a pending email and a ready
// provider exist. Caller holds b.mu.
func (b *IdentityBridge) startPollerLocked() {
	if !b.ready || b.email == "" || b.state == entities.VerificationVerified {
		return
	}
	b.state = entities.VerificationPolling
	if b.poller != nil || b.newPoller == nil {
		return
	}
	b.poller = b.newPoller(b.interval, b.tick)
	go b.poller.Start(b.baseCtx)
}

func (b *IdentityBridge) stopPollerLocked() {
	if b.poller == nil {
		return
	}
	b.poller.Stop()
	b.poller = nil
}
