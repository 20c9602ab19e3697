package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blip.dashboard/internal/interfaces/http/handlers"
)

const (
	serviceName    = "blip-dashboard"
	serviceVersion = "0.1.0"
)

type routeDeps struct {
	sessionHandler        *handlers.SessionHandler
	authHandler           *handlers.AuthHandler
	verificationHandler   *handlers.VerificationHandler
	walletHandler         *handlers.WalletHandler
	taskHandler           *handlers.TaskHandler
	pointsHandler         *handlers.PointsHandler
	guardMiddleware       gin.HandlerFunc
	idempotencyMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Session routes (public)
		session := v1.Group("/session")
		{
			session.GET("", d.sessionHandler.GetSession)
			session.POST("/refresh", d.sessionHandler.Refresh)
		}
		v1.GET("/guard", d.sessionHandler.Guard)

		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", d.authHandler.Login)
			auth.POST("/register", d.authHandler.Register)
			auth.POST("/logout", d.authHandler.Logout)
			auth.POST("/reset-password", d.authHandler.ResetPassword)
		}

		// Pending email verification (public)
		verification := v1.Group("/verification")
		{
			verification.GET("", d.verificationHandler.Status)
			verification.POST("/check", d.verificationHandler.Check)
			verification.POST("/resend", d.verificationHandler.Resend)
			verification.DELETE("", d.verificationHandler.Cancel)
		}

		// Wallet binding (guarded)
		wallet := v1.Group("/wallet")
		wallet.Use(d.guardMiddleware)
		{
			wallet.GET("", d.walletHandler.Get)
			wallet.POST("/open", d.walletHandler.Open)
			wallet.POST("/connect", d.walletHandler.Connect)
			wallet.POST("/link", d.walletHandler.Link)
			wallet.POST("/disconnect", d.walletHandler.Disconnect)
			wallet.POST("/close", d.walletHandler.Close)
		}

		// Task verification (guarded)
		tasks := v1.Group("/tasks")
		tasks.Use(d.guardMiddleware)
		{
			tasks.POST("/:kind", d.taskHandler.Open)
			tasks.GET("/flows/:id", d.taskHandler.Get)
			tasks.POST("/flows/:id/action", d.taskHandler.StartAction)
			tasks.POST("/flows/:id/skip", d.taskHandler.Skip)
			tasks.POST("/flows/:id/proof", d.idempotencyMiddleware, d.taskHandler.SubmitProof)
			tasks.POST("/flows/:id/retry", d.taskHandler.Retry)
			tasks.POST("/flows/:id/close", d.taskHandler.Close)
		}

		// Points (guarded)
		points := v1.Group("")
		points.Use(d.guardMiddleware)
		{
			points.GET("/points", d.pointsHandler.Points)
			points.GET("/referrals", d.pointsHandler.Referrals)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// applyCORSMiddleware allows the dashboard UI origins. origins is a comma
// separated list; "*" allows any origin.
func applyCORSMiddleware(r *gin.Engine, origins string) {
	allowed := make(map[string]bool)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
