package pending

import (
	"context"
	"errors"
	"sync"
	"time"

	"blip.dashboard/pkg/redis"
)

const (
	keyPrefix = "blip:pending_verification"
	// DefaultTTL bounds how long an abandoned verification screen is restored.
	DefaultTTL = 24 * time.Hour
)

type record struct {
	Email string    `json:"email"`
	Since time.Time `json:"since"`
}

// RedisStore keeps the pending email sealed in Redis, one record per device.
type RedisStore struct {
	sealed   *redis.SealedStore
	deviceID string
	ttl      time.Duration
}

// NewRedisStore needs the Redis client from pkg/redis to be initialized.
func NewRedisStore(encryptionKeyHex, deviceID string, ttl time.Duration) (*RedisStore, error) {
	sealed, err := redis.NewSealedStore(keyPrefix, encryptionKeyHex)
	if err != nil {
		return nil, err
	}
	if deviceID == "" {
		return nil, errors.New("device id is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{sealed: sealed, deviceID: deviceID, ttl: ttl}, nil
}

func (s *RedisStore) Save(ctx context.Context, email string) error {
	return s.sealed.Put(ctx, s.deviceID, record{Email: email, Since: time.Now().UTC()}, s.ttl)
}

// Load returns "" when nothing is pending.
func (s *RedisStore) Load(ctx context.Context) (string, error) {
	var rec record
	if err := s.sealed.Fetch(ctx, s.deviceID, &rec); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return rec.Email, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.sealed.Remove(ctx, s.deviceID)
}

// MemoryStore is the fallback when Redis is not configured. Nothing survives
// a restart.
type MemoryStore struct {
	mu    sync.Mutex
	email string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, email string) error {
	s.mu.Lock()
	s.email = email
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.email, nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	s.email = ""
	s.mu.Unlock()
	return nil
}
