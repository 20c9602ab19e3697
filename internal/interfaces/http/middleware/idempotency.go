package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blip.dashboard/pkg/logger"
	"blip.dashboard/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
	redisOn    = redis.Enabled
)

// storedResponse is a replayable reply.
type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// idempotencyStore holds locks and replies. Redis when configured, process
// memory otherwise.
type idempotencyStore interface {
	get(ctx context.Context, key string) (string, bool, error)
	lock(ctx context.Context, key string) (bool, error)
	save(ctx context.Context, key, value string, ttl time.Duration) error
	release(ctx context.Context, key string) error
}

type redisIdempotencyStore struct{}

func (redisIdempotencyStore) get(ctx context.Context, key string) (string, bool, error) {
	val, err := redisGet(ctx, key)
	if redis.IsNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (redisIdempotencyStore) lock(ctx context.Context, key string) (bool, error) {
	return redisSetNX(ctx, key, processingMarker, LockDuration)
}

func (redisIdempotencyStore) save(ctx context.Context, key, value string, ttl time.Duration) error {
	return redisSet(ctx, key, value, ttl)
}

func (redisIdempotencyStore) release(ctx context.Context, key string) error {
	return redisDel(ctx, key)
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// memorySweepInterval bounds how often lock and save scan for expired keys.
const memorySweepInterval = time.Minute

type memoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	nextSweep time.Time
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryIdempotencyStore) get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expires) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// sweepLocked drops expired entries so keys that are never seen again do not
// accumulate.
func (s *memoryIdempotencyStore) sweepLocked(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
	s.nextSweep = now.Add(memorySweepInterval)
}

func (s *memoryIdempotencyStore) lock(_ context.Context, key string) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	if e, ok := s.entries[key]; ok && now.Before(e.expires) {
		return false, nil
	}
	s.entries[key] = memoryEntry{value: processingMarker, expires: now.Add(LockDuration)}
	return true, nil
}

func (s *memoryIdempotencyStore) save(_ context.Context, key, value string, ttl time.Duration) error {
	now := time.Now()
	s.mu.Lock()
	s.sweepLocked(now)
	s.entries[key] = memoryEntry{value: value, expires: now.Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryIdempotencyStore) release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// IdempotencyMiddleware replays the stored reply for a repeated
// Idempotency-Key instead of running the handler again. Keys are scoped to
// the request path, so one key cannot collide across task flows. A zero
// retention keeps replies for RetentionDuration.
func IdempotencyMiddleware(retention time.Duration) gin.HandlerFunc {
	if retention <= 0 {
		retention = RetentionDuration
	}
	memory := newMemoryIdempotencyStore()

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		var store idempotencyStore = memory
		if redisOn() {
			store = redisIdempotencyStore{}
		}
		storageKey := "idempotency:" + c.Request.URL.Path + ":" + key
		ctx := c.Request.Context()

		val, found, err := store.get(ctx, storageKey)
		if err != nil {
			// fail open; the flow state machine still rejects double submits
			logger.Warn(ctx, "Idempotency lookup failed", zap.Error(err))
			c.Next()
			return
		}
		if found {
			if val == processingMarker {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"code":    "ERR_IDEMPOTENCY_CONFLICT",
					"message": "Request already in progress",
				})
				return
			}
			var stored storedResponse
			if err := json.Unmarshal([]byte(val), &stored); err == nil {
				c.Header("Content-Type", "application/json; charset=utf-8")
				c.Header("X-Idempotency-Hit", "true")
				c.String(stored.Status, stored.Body)
				c.Abort()
				return
			}
		}

		locked, err := store.lock(ctx, storageKey)
		if err != nil || !locked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "ERR_IDEMPOTENCY_CONFLICT",
				"message": "Request in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
			if err := store.save(ctx, storageKey, string(payload), retention); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		// Remove key so retry is possible
		_ = store.release(ctx, storageKey)
	}
}
