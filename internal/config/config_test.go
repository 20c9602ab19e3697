package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("BACKEND_URL", "https://api.blip.money")
	t.Setenv("BACKEND_MAX_RETRIES", "4")
	t.Setenv("BACKEND_BREAKER_FAILURE_RATIO", "0.25")
	t.Setenv("VERIFICATION_POLL_INTERVAL", "3s")
	t.Setenv("WALLET_PRIVATE_KEY", "0xabc")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://api.blip.money", cfg.Backend.BaseURL)
	assert.Equal(t, 4, cfg.Backend.MaxRetries)
	assert.Equal(t, 0.25, cfg.Backend.BreakerRatio)
	assert.Equal(t, 3*time.Second, cfg.Verification.PollInterval)
	assert.Equal(t, "0xabc", cfg.Wallet.PrivateKey)
}

func TestLoad_ConfigFallbacks(t *testing.T) {
	t.Setenv("BACKEND_MAX_RETRIES", "not-number")
	t.Setenv("BACKEND_BREAKER_FAILURE_RATIO", "half")
	t.Setenv("TASK_AUTO_CLOSE_DELAY", "bad-duration")
	t.Setenv("REDIS_URL", "")

	cfg := Load()
	assert.Equal(t, 2, cfg.Backend.MaxRetries)
	assert.Equal(t, 0.5, cfg.Backend.BreakerRatio)
	assert.Equal(t, 2*time.Second, cfg.Tasks.AutoCloseDelay)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 5*time.Second, cfg.Verification.PollInterval)
}
