package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server       ServerConfig
	Backend      BackendConfig
	Identity     IdentityConfig
	Redis        RedisConfig
	Verification VerificationConfig
	Tasks        TaskConfig
	Wallet       WalletConfig
}

// ServerConfig holds the local dashboard API configuration
type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins string
}

// BackendConfig holds the Blip backend client configuration
type BackendConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryWaitMin   time.Duration
	RetryWaitMax   time.Duration
	BreakerTimeout time.Duration
	BreakerRatio   float64
	BreakerMinReqs int
}

// IdentityConfig holds the identity provider configuration
type IdentityConfig struct {
	APIKey   string
	BaseURL  string
	TokenURL string
}

// RedisConfig holds Redis configuration. An empty URL disables Redis.
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// VerificationConfig holds pending email verification settings
type VerificationConfig struct {
	PollInterval  time.Duration
	PendingTTL    time.Duration
	DeviceID      string
	EncryptionKey string // 32-bytes hex string
}

// TaskConfig holds task flow settings
type TaskConfig struct {
	AutoCloseDelay time.Duration
	IdempotencyTTL time.Duration
}

// WalletConfig holds the optional local signer. Empty disables the wallet.
type WalletConfig struct {
	PrivateKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			Env:         getEnv("SERVER_ENV", "development"),
			CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_URL", "http://localhost:3000/api"),
			Timeout:        getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			MaxRetries:     getEnvAsInt("BACKEND_MAX_RETRIES", 2),
			RetryWaitMin:   getEnvAsDuration("BACKEND_RETRY_WAIT_MIN", 250*time.Millisecond),
			RetryWaitMax:   getEnvAsDuration("BACKEND_RETRY_WAIT_MAX", 2*time.Second),
			BreakerTimeout: getEnvAsDuration("BACKEND_BREAKER_TIMEOUT", 15*time.Second),
			BreakerRatio:   getEnvAsFloat("BACKEND_BREAKER_FAILURE_RATIO", 0.5),
			BreakerMinReqs: getEnvAsInt("BACKEND_BREAKER_MIN_REQUESTS", 5),
		},
		Identity: IdentityConfig{
			APIKey:   getEnv("IDENTITY_API_KEY", ""),
			BaseURL:  getEnv("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1"),
			TokenURL: getEnv("IDENTITY_TOKEN_URL", "https://securetoken.googleapis.com/v1/token"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Verification: VerificationConfig{
			PollInterval:  getEnvAsDuration("VERIFICATION_POLL_INTERVAL", 5*time.Second),
			PendingTTL:    getEnvAsDuration("PENDING_VERIFICATION_TTL", 24*time.Hour),
			DeviceID:      getEnv("DEVICE_ID", "local"),
			EncryptionKey: getEnv("PENDING_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"),
		},
		Tasks: TaskConfig{
			AutoCloseDelay: getEnvAsDuration("TASK_AUTO_CLOSE_DELAY", 2*time.Second),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Wallet: WalletConfig{
			PrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
