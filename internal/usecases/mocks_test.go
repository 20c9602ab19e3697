package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"blip.dashboard/internal/domain/entities"
	"blip.dashboard/internal/domain/repositories"
)

// Mock AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Me(ctx context.Context) (*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAccountRepository) Login(ctx context.Context, input entities.LoginInput) (*entities.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAccountRepository) Register(ctx context.Context, input entities.RegisterInput) (*entities.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockAccountRepository) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAccountRepository) LinkWallet(ctx context.Context, input entities.LinkWalletInput) (*entities.UserPatch, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserPatch), args.Error(1)
}

func (m *MockAccountRepository) ConfirmEmailVerified(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// Mock TaskVerificationRepository
type MockTaskVerificationRepository struct {
	mock.Mock
}

func (m *MockTaskVerificationRepository) VerifyRetweet(ctx context.Context, req entities.RetweetVerification) (*entities.VerificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationResult), args.Error(1)
}

func (m *MockTaskVerificationRepository) VerifyTelegram(ctx context.Context, req entities.TelegramVerification) (*entities.VerificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationResult), args.Error(1)
}

func (m *MockTaskVerificationRepository) SubmitQuiz(ctx context.Context, req entities.QuizSubmission) (*entities.VerificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerificationResult), args.Error(1)
}

// Mock PointsRepository
type MockPointsRepository struct {
	mock.Mock
}

func (m *MockPointsRepository) History(ctx context.Context) ([]entities.PointLog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PointLog), args.Error(1)
}

func (m *MockPointsRepository) Referrals(ctx context.Context) ([]entities.ReferredUser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ReferredUser), args.Error(1)
}

// Mock PendingEmailStore
type MockPendingEmailStore struct {
	mock.Mock
}

func (m *MockPendingEmailStore) Save(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPendingEmailStore) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPendingEmailStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeWallet is a controllable WalletAdapter.
type fakeWallet struct {
	mu            sync.Mutex
	connected     bool
	address       string
	disconnects   int
	connectErr    error
	disconnectErr error
	// connectedDelay slows Connected down to widen check-then-act windows.
	connectedDelay time.Duration
}

func (w *fakeWallet) Connected() bool {
	if w.connectedDelay > 0 {
		time.Sleep(w.connectedDelay)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

func (w *fakeWallet) Address() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.connected {
		return ""
	}
	return w.address
}

func (w *fakeWallet) Connect(context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.connectErr != nil {
		return "", w.connectErr
	}
	w.connected = true
	return w.address, nil
}

func (w *fakeWallet) Disconnect(context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.disconnects++
	w.connected = false
	return w.disconnectErr
}

func (w *fakeWallet) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	return append([]byte("sig:"), msg...), nil
}

// fakeIdentityProvider is an in-memory IdentityProvider. Listeners are not
// called on subscribe until ready() is invoked, to model SDK start-up.
type fakeIdentityProvider struct {
	mu          sync.Mutex
	user        *repositories.ProviderUser
	verifiedNow bool
	isReady     bool
	listeners   map[int]repositories.AuthStateListener
	next        int

	reloads    int
	signIns    int
	sends      int
	signInErr  error
	signUpErr  error
	sendErr    error
	reloadErr  error
	confirmErr error
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{listeners: map[int]repositories.AuthStateListener{}}
}

func (p *fakeIdentityProvider) OnAuthStateChanged(l repositories.AuthStateListener) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.listeners[id] = l
	ready := p.isReady
	user := p.copyUser()
	p.mu.Unlock()

	if ready {
		l(user)
	}
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// ready delivers the first auth-state callback.
func (p *fakeIdentityProvider) ready() {
	p.mu.Lock()
	p.isReady = true
	user := p.copyUser()
	ls := make([]repositories.AuthStateListener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.Unlock()

	for _, l := range ls {
		l(user)
	}
}

func (p *fakeIdentityProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// setVerifiedRemotely flips the flag only on the provider side; the cached
// user keeps the stale value until Reload.
func (p *fakeIdentityProvider) setVerifiedRemotely(v bool) {
	p.mu.Lock()
	p.verifiedNow = v
	p.mu.Unlock()
}

func (p *fakeIdentityProvider) reloadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *fakeIdentityProvider) copyUser() *repositories.ProviderUser {
	if p.user == nil {
		return nil
	}
	cp := *p.user
	return &cp
}

func (p *fakeIdentityProvider) CurrentUser() *repositories.ProviderUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.copyUser()
}

func (p *fakeIdentityProvider) Reload(context.Context) (*repositories.ProviderUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reloads++
	if p.reloadErr != nil {
		return nil, p.reloadErr
	}
	if p.user == nil {
		return nil, nil
	}
	p.user.EmailVerified = p.verifiedNow
	return p.copyUser(), nil
}

func (p *fakeIdentityProvider) SignIn(_ context.Context, email, _ string) (*repositories.ProviderUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signIns++
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	p.user = &repositories.ProviderUser{UID: "uid-" + email, Email: email, EmailVerified: p.verifiedNow}
	return p.copyUser(), nil
}

func (p *fakeIdentityProvider) SignUp(_ context.Context, email, _ string) (*repositories.ProviderUser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signUpErr != nil {
		return nil, p.signUpErr
	}
	p.user = &repositories.ProviderUser{UID: "uid-" + email, Email: email}
	return p.copyUser(), nil
}

func (p *fakeIdentityProvider) SignOut() {
	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()
}

func (p *fakeIdentityProvider) SendEmailVerification(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends++
	return p.sendErr
}

func (p *fakeIdentityProvider) ConfirmPasswordReset(context.Context, string, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.confirmErr
}
