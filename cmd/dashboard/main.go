package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"blip.dashboard/internal/config"
	"blip.dashboard/internal/domain/repositories"
	"blip.dashboard/internal/infrastructure/backend"
	"blip.dashboard/internal/infrastructure/identity"
	"blip.dashboard/internal/infrastructure/jobs"
	"blip.dashboard/internal/infrastructure/pending"
	"blip.dashboard/internal/infrastructure/wallet"
	"blip.dashboard/internal/interfaces/http/handlers"
	"blip.dashboard/internal/interfaces/http/middleware"
	"blip.dashboard/internal/usecases"
	"blip.dashboard/pkg/httpclient"
	"blip.dashboard/pkg/logger"
	"blip.dashboard/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	runServer  = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Redis is optional; without it pending verification and idempotency
	// state live in process memory.
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
			logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redis.Close()
		logger.Info(context.Background(), "Redis initialized")
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	accounts, err := newBackendClient(cfg.Backend)
	if err != nil {
		return fmt.Errorf("failed to create backend client: %w", err)
	}
	toolkit := identity.NewToolkit(identity.Config{
		APIKey:   cfg.Identity.APIKey,
		BaseURL:  cfg.Identity.BaseURL,
		TokenURL: cfg.Identity.TokenURL,
	}, httpclient.New(httpclient.Config{
		Timeout:      cfg.Backend.Timeout,
		MaxRetries:   cfg.Backend.MaxRetries,
		RetryWaitMin: cfg.Backend.RetryWaitMin,
		RetryWaitMax: cfg.Backend.RetryWaitMax,
	}))

	walletAdapter, err := newWallet(cfg.Wallet.PrivateKey)
	if err != nil {
		return fmt.Errorf("failed to load wallet: %w", err)
	}
	pendingStore, err := newPendingStore(cfg.Verification)
	if err != nil {
		return fmt.Errorf("failed to initialize pending verification store: %w", err)
	}

	// Initialize usecases
	session := usecases.NewSessionStore(accounts)
	bridge := usecases.NewIdentityBridge(toolkit, accounts, pendingStore, jobs.NewPollerFactory(), cfg.Verification.PollInterval)
	authFlow := usecases.NewAuthFlow(accounts, toolkit, session, bridge)
	walletFlow := usecases.NewWalletBindingFlow(session, walletAdapter, cfg.Tasks.AutoCloseDelay)
	flows := usecases.NewFlowRegistry(session, accounts, cfg.Tasks.AutoCloseDelay)
	ledger := usecases.NewPointsLedger(accounts, session)
	guard := usecases.NewRouteGuard(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The bridge subscribes before the provider initializes so the first
	// auth-state callback is observed.
	bridge.Start(ctx)
	defer bridge.Stop()
	toolkit.Init(ctx)
	go session.RefreshSession(ctx)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(session, guard)
	authHandler := handlers.NewAuthHandler(authFlow,
		func() { walletFlow.Close() },
		flows.CloseAll,
	)
	verificationHandler := handlers.NewVerificationHandler(bridge)
	walletHandler := handlers.NewWalletHandler(walletFlow)
	taskHandler := handlers.NewTaskHandler(flows)
	pointsHandler := handlers.NewPointsHandler(ledger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r, cfg.Server.CORSOrigins)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		sessionHandler:        sessionHandler,
		authHandler:           authHandler,
		verificationHandler:   verificationHandler,
		walletHandler:         walletHandler,
		taskHandler:           taskHandler,
		pointsHandler:         pointsHandler,
		guardMiddleware:       middleware.RouteGuardMiddleware(guard),
		idempotencyMiddleware: middleware.IdempotencyMiddleware(cfg.Tasks.IdempotencyTTL),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case <-quit:
		case <-ctx.Done():
			return
		}
		logger.Info(context.Background(), "Shutting down dashboard")
		flows.CloseAll()
		walletFlow.Close()
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn(context.Background(), "Server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info(context.Background(), "Blip dashboard starting",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// newBackendClient builds the cookie-carrying, retrying, breaker-guarded
// client for the Blip backend.
func newBackendClient(cfg config.BackendConfig) (*backend.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	base := httpclient.New(httpclient.Config{
		Timeout:         cfg.Timeout,
		MaxRetries:      cfg.MaxRetries,
		RetryWaitMin:    cfg.RetryWaitMin,
		RetryWaitMax:    cfg.RetryWaitMax,
		MaxConnsPerHost: 16,
		Jar:             jar,
	})

	cbCfg := httpclient.DefaultCircuitBreakerConfig("blip-backend")
	if cfg.BreakerTimeout > 0 {
		cbCfg.Timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerRatio > 0 {
		cbCfg.FailureRatio = cfg.BreakerRatio
	}
	if cfg.BreakerMinReqs > 0 {
		cbCfg.MinRequests = uint32(cfg.BreakerMinReqs)
	}

	return backend.NewClient(cfg.BaseURL, httpclient.NewCircuitBreakerClient(base, cbCfg, logger.GetLogger())), nil
}

func newWallet(privateKey string) (repositories.WalletAdapter, error) {
	if privateKey == "" {
		return wallet.Disabled{}, nil
	}
	w, err := wallet.NewKeyWallet(privateKey)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func newPendingStore(cfg config.VerificationConfig) (repositories.PendingEmailStore, error) {
	if !redis.Enabled() {
		return pending.NewMemoryStore(), nil
	}
	store, err := pending.NewRedisStore(cfg.EncryptionKey, cfg.DeviceID, cfg.PendingTTL)
	if err != nil {
		return nil, err
	}
	return store, nil
}
