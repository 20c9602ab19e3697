package usecases

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"blip.dashboard/internal/domain/entities"
	domainerrors "blip.dashboard/internal/domain/errors"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/pkg/logger"
)

// SessionListener is notified with a fresh snapshot after every state change.
type SessionListener func(entities.Session)

// SessionStore is the single owner of the current user for this process.
// All writes go through its methods.
type SessionStore struct {
	accounts repositories.AccountRepository

	mu        sync.RWMutex
	user      *entities.User
	loading   bool
	hasLoaded bool
	// generation changes on every write that a concurrent refresh cannot have
	// observed. Points increments deliberately leave it alone.
	generation uint64

	listenersMu sync.Mutex
	listeners   map[int]SessionListener
	nextID      int
}

// NewSessionStore creates a store in the initial "unknown, loading" state.
func NewSessionStore(accounts repositories.AccountRepository) *SessionStore {
	return &SessionStore{
		accounts:  accounts,
		loading:   true,
		listeners: make(map[int]SessionListener),
	}
}

// RefreshSession reconciles with the backend session. Errors never escape:
// a session that cannot be confirmed is treated as no session.
func (s *SessionStore) RefreshSession(ctx context.Context) {
	s.mu.Lock()
	if !s.hasLoaded {
		s.loading = true
	}
	gen := s.generation
	s.mu.Unlock()

	user, err := s.accounts.Me(ctx)
	if err != nil {
		logger.Debug(ctx, "Session refresh failed", zap.Error(err))
		user = nil
	}

	s.mu.Lock()
	if s.generation == gen {
		s.user = cloneUser(user)
	} else {
		logger.Debug(ctx, "Discarding stale session refresh")
	}
	s.loading = false
	s.hasLoaded = true
	s.mu.Unlock()

	s.notify()
}

// Login assigns a user the backend has already authenticated.
func (s *SessionStore) Login(user *entities.User) {
	s.mu.Lock()
	s.user = cloneUser(user)
	s.loading = false
	s.hasLoaded = true
	s.generation++
	s.mu.Unlock()

	s.notify()
}

// Logout clears the local session whatever the backend answers.
func (s *SessionStore) Logout(ctx context.Context) {
	if err := s.accounts.Logout(ctx); err != nil {
		logger.Warn(ctx, "Backend logout failed", zap.Error(err))
	}

	s.mu.Lock()
	s.user = nil
	s.loading = false
	s.hasLoaded = true
	s.generation++
	s.mu.Unlock()

	s.notify()
}

// LinkWallet binds address to the current account and merges the backend's
// partial response into the cached user. Backend errors are returned as is.
func (s *SessionStore) LinkWallet(ctx context.Context, input entities.LinkWalletInput) error {
	if s.User() == nil {
		return domainerrors.Unauthorized(domainerrors.MsgUnauthorized)
	}

	patch, err := s.accounts.LinkWallet(ctx, input)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.user != nil {
		merged := *s.user
		if patch != nil {
			merged = merged.Apply(*patch)
		}
		if patch == nil || patch.WalletAddress == nil {
			merged.WalletAddress = nullString(input.WalletAddress)
		}
		if patch == nil || patch.WalletLinked == nil {
			merged.WalletLinked = true
		}
		s.user = &merged
		s.generation++
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// UpdatePoints adds delta to the cached total without a network call.
func (s *SessionStore) UpdatePoints(delta int64) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	u := *s.user
	u.TotalBlipPoints += delta
	s.user = &u
	s.mu.Unlock()

	s.notify()
}

// Snapshot returns a copy of the current state.
func (s *SessionStore) Snapshot() entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.NewSession(s.user, s.loading, s.hasLoaded)
}

// User returns a copy of the current user, or nil.
func (s *SessionStore) User() *entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated
}

func (s *SessionStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *SessionStore) HasLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLoaded
}

// Subscribe registers fn for state changes and returns its cancel func.
func (s *SessionStore) Subscribe(fn SessionListener) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *SessionStore) notify() {
	snap := s.Snapshot()

	s.listenersMu.Lock()
	fns := make([]SessionListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func cloneUser(u *entities.User) *entities.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
