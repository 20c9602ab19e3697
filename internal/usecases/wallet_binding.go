package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/logger"
)

// Wallet binding copy
const (
	MsgWalletLinked       = "Wallet linked to your account."
	MsgWalletNotConnected = "Connect a wallet first."
	MsgInvalidWallet      = "The connected wallet address is not a valid EVM address."
	MsgWalletFlowClosed   = "The wallet dialog is closed."
)

// WalletBindingFlow binds the connected wallet to the signed-in account.
// One instance models one wallet modal; Open starts a new lifetime.
type WalletBindingFlow struct {
	session        *SessionStore
	wallet         repositories.WalletAdapter
	autoCloseDelay time.Duration

	mu       sync.Mutex
	state    entities.WalletBindingState
	address  string
	message  string
	nav      *entities.Navigation
	closed   bool
	autoLink bool // one-shot auto-link guard
	timer    *time.Timer
}

// NewWalletBindingFlow creates a closed flow. A zero delay uses DefaultAutoCloseDelay.
func NewWalletBindingFlow(session *SessionStore, wallet repositories.WalletAdapter, autoCloseDelay time.Duration) *WalletBindingFlow {
	if autoCloseDelay <= 0 {
		autoCloseDelay = DefaultAutoCloseDelay
	}
	return &WalletBindingFlow{
		session:        session,
		wallet:         wallet,
		autoCloseDelay: autoCloseDelay,
		state:          entities.WalletStateDisconnected,
		closed:         true,
	}
}

// Open starts a modal lifetime. Accounts that already have a wallet go
// straight to linked and close on their own.
func (f *WalletBindingFlow) Open(ctx context.Context) entities.WalletFlowView {
	f.mu.Lock()
	f.stopTimerLocked()
	f.closed = false
	f.autoLink = false
	f.message = ""
	f.nav = nil
	f.state = entities.WalletStateDisconnected
	f.address = ""

	if u := f.session.User(); u != nil && u.HasWallet() {
		f.state = entities.WalletStateLinked
		f.address = u.WalletAddress.String
		f.scheduleCloseLocked()
		view := f.viewLocked()
		f.mu.Unlock()
		return view
	}
	f.mu.Unlock()

	return f.Sync(ctx)
}

// Connect asks the adapter for a connection, then syncs.
func (f *WalletBindingFlow) Connect(ctx context.Context) (entities.WalletFlowView, error) {
	if f.isClosed() {
		return f.View(), domainerrors.InvalidState(MsgWalletFlowClosed)
	}
	if _, err := f.wallet.Connect(ctx); err != nil {
		logger.Warn(ctx, "Wallet connect failed", zap.Error(err))
		f.mu.Lock()
		f.message = domainerrors.UserMessage(err)
		f.mu.Unlock()
		return f.View(), nil
	}
	return f.Sync(ctx), nil
}

// Sync observes the adapter. The first time a wallet shows up connected while
// the account has none, it links automatically; this happens at most once per
// modal lifetime unless a failure resets the guard.
func (f *WalletBindingFlow) Sync(ctx context.Context) entities.WalletFlowView {
	f.mu.Lock()
	if f.closed || f.state == entities.WalletStateLinking || f.state == entities.WalletStateLinked {
		view := f.viewLocked()
		f.mu.Unlock()
		return view
	}

	if !f.wallet.Connected() {
		if f.state != entities.WalletStateError {
			f.state = entities.WalletStateDisconnected
		}
		f.address = ""
		view := f.viewLocked()
		f.mu.Unlock()
		return view
	}

	f.address = f.wallet.Address()
	if f.state == entities.WalletStateDisconnected {
		f.state = entities.WalletStateConnected
	}

	u := f.session.User()
	if f.autoLink || u == nil || u.HasWallet() {
		view := f.viewLocked()
		f.mu.Unlock()
		return view
	}
	f.autoLink = true
	address, email, err := f.claimLocked()
	if err != nil {
		view := f.viewLocked()
		f.mu.Unlock()
		return view
	}
	f.mu.Unlock()

	logger.Info(ctx, "Auto-linking connected wallet", zap.String("address", address))
	return f.link(ctx, address, email)
}

// Link binds the connected wallet on user request. Only one link request is
// in flight at a time; a second call while linking returns the current view.
func (f *WalletBindingFlow) Link(ctx context.Context) (entities.WalletFlowView, error) {
	f.mu.Lock()
	if f.closed {
		view := f.viewLocked()
		f.mu.Unlock()
		return view, domainerrors.InvalidState(MsgWalletFlowClosed)
	}
	if f.state == entities.WalletStateLinking || f.state == entities.WalletStateLinked {
		view := f.viewLocked()
		f.mu.Unlock()
		return view, nil
	}
	f.autoLink = true
	address, email, err := f.claimLocked()
	if err != nil {
		view := f.viewLocked()
		f.mu.Unlock()
		return view, err
	}
	f.mu.Unlock()

	return f.link(ctx, address, email), nil
}

// claimLocked validates the connected wallet and moves to linking in the same
// critical section as the caller's state check. Failures leave the state as is.
func (f *WalletBindingFlow) claimLocked() (address, email string, err error) {
	if !f.wallet.Connected() {
		return "", "", domainerrors.Validation(MsgWalletNotConnected)
	}
	address, ok := checksumAddress(f.wallet.Address())
	if !ok {
		WalletLinkAttempts.WithLabelValues(outcomeInvalid).Inc()
		f.message = MsgInvalidWallet
		f.autoLink = false
		return "", "", domainerrors.Validation(MsgInvalidWallet)
	}
	user := f.session.User()
	if user == nil {
		return "", "", domainerrors.Unauthorized(domainerrors.MsgUnauthorized)
	}

	f.state = entities.WalletStateLinking
	f.address = address
	f.message = ""
	return address, user.Email, nil
}

func (f *WalletBindingFlow) link(ctx context.Context, address, email string) entities.WalletFlowView {
	input := entities.LinkWalletInput{WalletAddress: address}
	msg := fmt.Sprintf(WalletLinkMessage, address, email)
	sig, err := f.wallet.SignMessage(ctx, []byte(msg))
	if err == nil {
		input.Message = msg
		input.Signature = hexutil.Encode(sig)
		err = f.session.LinkWallet(ctx, input)
	}

	switch {
	case err == nil:
		WalletLinkAttempts.WithLabelValues(outcomeSuccess).Inc()
		logger.Info(ctx, "Wallet linked", zap.String("address", address))
		f.mu.Lock()
		f.state = entities.WalletStateLinked
		f.message = MsgWalletLinked
		f.scheduleCloseLocked()
		f.mu.Unlock()

	case domainerrors.IsConflict(err):
		WalletLinkAttempts.WithLabelValues(outcomeConflict).Inc()
		logger.Warn(ctx, "Wallet already linked to another account, ending session", zap.String("address", address))
		if derr := f.wallet.Disconnect(ctx); derr != nil {
			logger.Warn(ctx, "Wallet disconnect failed", zap.Error(derr))
		}
		f.session.Logout(ctx)
		f.mu.Lock()
		f.state = entities.WalletStateError
		f.message = domainerrors.MsgWalletConflict
		f.nav = &entities.Navigation{To: RouteLogin, Replace: true}
		f.mu.Unlock()

	default:
		WalletLinkAttempts.WithLabelValues(outcomeError).Inc()
		logger.Warn(ctx, "Wallet link failed", zap.Error(err))
		f.mu.Lock()
		f.state = entities.WalletStateError
		f.message = domainerrors.UserMessage(err)
		f.autoLink = false
		f.mu.Unlock()
	}
	return f.View()
}

// Disconnect drops the adapter connection.
func (f *WalletBindingFlow) Disconnect(ctx context.Context) entities.WalletFlowView {
	if err := f.wallet.Disconnect(ctx); err != nil {
		logger.Warn(ctx, "Wallet disconnect failed", zap.Error(err))
	}
	f.mu.Lock()
	if f.state != entities.WalletStateLinked {
		f.state = entities.WalletStateDisconnected
		f.address = ""
	}
	view := f.viewLocked()
	f.mu.Unlock()
	return view
}

// Close ends the modal lifetime and cancels the auto-close timer.
func (f *WalletBindingFlow) Close() entities.WalletFlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
	f.closed = true
	return f.viewLocked()
}

// View returns the current flow state.
func (f *WalletBindingFlow) View() entities.WalletFlowView {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewLocked()
}

func (f *WalletBindingFlow) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *WalletBindingFlow) viewLocked() entities.WalletFlowView {
	view := entities.WalletFlowView{
		State:   f.state,
		Address: f.address,
		Message: f.message,
		Closed:  f.closed,
	}
	if f.nav != nil {
		nav := *f.nav
		view.Navigation = &nav
	}
	return view
}

func (f *WalletBindingFlow) scheduleCloseLocked() {
	f.stopTimerLocked()
	var t *time.Timer
	t = time.AfterFunc(f.autoCloseDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.timer != t {
			return
		}
		f.closed = true
		f.timer = nil
	})
	f.timer = t
}

func (f *WalletBindingFlow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
