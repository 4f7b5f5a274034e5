package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	accountapp "github.com/openfinance/backend/internal/application/account"
	"github.com/openfinance/backend/internal/application/audit"
	fxapp "github.com/openfinance/backend/internal/application/fx"
	onboardingapp "github.com/openfinance/backend/internal/application/onboarding"
	paymentapp "github.com/openfinance/backend/internal/application/payment"
	"github.com/openfinance/backend/internal/domain/shared"
	"github.com/openfinance/backend/internal/infrastructure/auth"
	"github.com/openfinance/backend/internal/infrastructure/cache"
	"github.com/openfinance/backend/internal/infrastructure/config"
	"github.com/openfinance/backend/internal/infrastructure/event"
	"github.com/openfinance/backend/internal/infrastructure/gateway"
	"github.com/openfinance/backend/internal/infrastructure/logger"
	"github.com/openfinance/backend/internal/infrastructure/persistence"
	"github.com/openfinance/backend/internal/interfaces/http/handler"
	"github.com/openfinance/backend/internal/interfaces/http/middleware"
	"github.com/openfinance/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Open Finance Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	paymentConsentRepo := persistence.NewGormPaymentConsentRepository(db.DB)
	consentRepo := persistence.NewGormConsentRepository(db.DB)
	fxDealRepo := persistence.NewGormFxDealRepository(db.DB)
	onboardingRepo := persistence.NewGormOnboardingRepository(db.DB)
	accountReader := persistence.NewGormAccountReader(db.DB)

	// Initialize idempotency store (memory or redis per config)
	idemStore, err := cache.NewIdempotencyStoreFactory(cfg.Idempotency, cfg.Redis, log).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Failed to close idempotency store", zap.Error(err))
		}
	}()
	idemCfg := shared.IdempotencyConfig{
		TTL:        cfg.Idempotency.TTL,
		MaxEntries: cfg.Idempotency.MaxEntries,
	}
	log.Info("Idempotency store ready",
		zap.String("backend", cfg.Idempotency.Backend),
		zap.Duration("ttl", cfg.Idempotency.TTL),
	)

	// Initialize upstream collaborator adapters
	if cfg.Gateway.SigningSecret == "" {
		log.Warn("Gateway signing secret is empty, detached signatures are verified against an empty key")
	}
	signatures := gateway.NewHMACSignatureValidator(cfg.Gateway.SigningSecret)

	riskThreshold, err := decimal.NewFromString(cfg.Gateway.RiskThreshold)
	if err != nil {
		log.Fatal("Invalid gateway risk threshold", zap.String("value", cfg.Gateway.RiskThreshold), zap.Error(err))
	}
	risk := gateway.NewThresholdRiskAssessor(riskThreshold, log)
	funds := gateway.NewInMemoryFundsReserver(riskThreshold)

	rates, err := gateway.NewStaticRateLookup(cfg.Gateway.Rates)
	if err != nil {
		log.Fatal("Invalid gateway rate table", zap.Error(err))
	}

	profileKey := cfg.Gateway.ProfileKey
	if profileKey == "" {
		profileKey = ephemeralProfileKey()
		log.Warn("Gateway profile key is empty, using an ephemeral key valid for this process only")
	}
	decrypter, err := gateway.NewAESGCMDecrypter(profileKey)
	if err != nil {
		log.Fatal("Invalid gateway profile key", zap.Error(err))
	}

	screening := gateway.NewDenylistScreening(cfg.Gateway.Denylist)

	// Initialize event bus and the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(audit.NewTrailHandler(log))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	paymentService := paymentapp.NewService(
		paymentRepo, paymentConsentRepo, idemStore, idemCfg,
		risk, funds, signatures, eventBus,
	)
	fxService := fxapp.NewService(
		fxDealRepo, rates, idemStore, idemCfg,
		cfg.FX.QuoteValidity, eventBus,
	)
	onboardingService := onboardingapp.NewService(
		onboardingRepo, decrypter, screening, idemStore, idemCfg, eventBus,
	)
	accountService := accountapp.NewService(
		accountReader, consentRepo, cfg.Cache.TTL, cfg.Cache.MaxEntries,
	)

	// Participant authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	paymentHandler := handler.NewPaymentHandler(paymentService)
	fxHandler := handler.NewFXHandler(fxService)
	onboardingHandler := handler.NewOnboardingHandler(onboardingService)
	accountHandler := handler.NewAccountHandler(accountService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. InteractionID - Propagate the caller's interaction ID
	// 5. ParticipantAuth - Authenticate the calling participant
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.InteractionID())

	authConfig := middleware.ParticipantAuthConfig{
		JWTService:          jwtService,
		AllowHeaderFallback: cfg.App.Env != "production",
		SkipPaths:           []string{"/health"},
	}
	if authConfig.AllowHeaderFallback {
		log.Warn("Participant header fallback enabled, do not use outside development")
	}
	engine.Use(middleware.ParticipantAuthWithConfig(authConfig))

	// Setup API routes
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthHandler(healthHandler(db)),
	)
	r.Register(paymentHandler).
		Register(fxHandler).
		Register(onboardingHandler).
		Register(accountHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler reporting process and database health
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}

func ephemeralProfileKey() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate ephemeral profile key: " + err.Error())
	}
	return hex.EncodeToString(key)
}
