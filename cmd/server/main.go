package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/farmledger/backend/internal/application/identity"
	ledgerapp "github.com/farmledger/backend/internal/application/ledger"
	"github.com/farmledger/backend/internal/infrastructure/auth"
	"github.com/farmledger/backend/internal/infrastructure/cache"
	"github.com/farmledger/backend/internal/infrastructure/config"
	"github.com/farmledger/backend/internal/infrastructure/logger"
	"github.com/farmledger/backend/internal/infrastructure/messaging"
	"github.com/farmledger/backend/internal/infrastructure/persistence"
	"github.com/farmledger/backend/internal/infrastructure/scheduler"
	"github.com/farmledger/backend/internal/infrastructure/storage"
	"github.com/farmledger/backend/internal/infrastructure/telemetry"
	"github.com/farmledger/backend/internal/interfaces/http/handler"
	"github.com/farmledger/backend/internal/interfaces/http/middleware"
	"github.com/farmledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ ledgerapp.MetricsRecorder = (*telemetry.LedgerMetrics)(nil)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting farm ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", cfg.App.Timezone),
	)

	ctx := context.Background()

	// Telemetry providers; disabled ones are no-ops
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.GormLevelFor(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver()))

	// Postgres schemas are owned by cmd/migrate; sqlite is for local runs
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if db.Driver() == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
		defer dbMetrics.Stop()
	}

	// Redis backs idempotency keys and revoked tokens when enabled
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	}

	// Ledger services
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("farmledger.ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	deps := ledgerapp.Deps{
		UoW:     persistence.NewGormUnitOfWork(db.DB),
		Metrics: ledgerMetrics,
		Logger:  log,
		Now:     farmClock(cfg.App.Location()),
	}

	reconciler := ledgerapp.NewBudgetReconciler(deps)
	deps.Hooks = ledgerapp.PostCommitHooks{reconciler}

	var sweep *scheduler.Sweep
	if cfg.Reconcile.Enabled {
		sweep, err = scheduler.NewSweep(scheduler.SweepConfig{
			Interval:   cfg.Reconcile.Interval,
			Timeout:    cfg.Reconcile.Timeout,
			RunOnStart: true,
		}, reconciler, log)
		if err != nil {
			log.Fatal("Failed to create budget reconciliation sweep", zap.Error(err))
		}
		if err := sweep.Start(ctx); err != nil {
			log.Fatal("Failed to start budget reconciliation sweep", zap.Error(err))
		}
	}

	if cfg.Messaging.Enabled {
		conn, err := messaging.Dial(cfg.Messaging)
		if err != nil {
			log.Fatal("Failed to connect to message broker", zap.Error(err))
		}
		defer func() {
			if err := conn.Close(); err != nil {
				log.Error("Error closing broker connection", zap.Error(err))
			}
		}()
		deps.Hooks = append(deps.Hooks, messaging.NewLedgerEventPublisher(conn.Channel(), cfg.Messaging, log))
		log.Info("Ledger events are published", zap.String("exchange", cfg.Messaging.Exchange))
	}

	categoryService := ledgerapp.NewCategoryService(deps)
	if err := categoryService.SeedDefaults(ctx); err != nil {
		log.Fatal("Failed to seed default categories", zap.Error(err))
	}

	var receiptService *ledgerapp.ReceiptService
	if cfg.Storage.Enabled {
		receipts, err := storage.NewS3ReceiptStorage(ctx, cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize receipt storage", zap.Error(err))
		}
		if err := receipts.EnsureBucket(ctx); err != nil {
			log.Fatal("Receipt bucket unavailable", zap.Error(err))
		}
		receiptService = ledgerapp.NewReceiptService(deps, receipts)
		log.Info("Receipt storage enabled", zap.String("bucket", receipts.Bucket()))
	}

	tokens := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(
		persistence.NewGormFarmerRepository(db.DB),
		tokens,
		blacklist,
		identityapp.DefaultAuthServiceConfig(),
		log,
	)

	// Handlers
	systemHandler := handler.NewSystemHandler(db, cfg.App.Name, telemetry.ServiceVersion)
	authHandler := handler.NewAuthHandler(authService)
	finance := router.FinanceHandlers{
		Categories:   handler.NewCategoryHandler(categoryService),
		Accounts:     handler.NewAccountHandler(ledgerapp.NewAccountService(deps)),
		Transactions: handler.NewTransactionHandler(ledgerapp.NewTransactionService(deps), receiptService),
		Transfers:    handler.NewTransferHandler(ledgerapp.NewTransferService(deps)),
		Budgets:      handler.NewBudgetHandler(ledgerapp.NewBudgetService(deps, reconciler)),
		Crops:        handler.NewCropHandler(ledgerapp.NewCropService(deps)),
		Goals:        handler.NewGoalHandler(ledgerapp.NewGoalService(deps)),
		Dashboard:    handler.NewDashboardHandler(ledgerapp.NewDashboardService(deps)),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	} else if err := engine.SetTrustedProxies(nil); err != nil {
		log.Fatal("Failed to disable proxy trust", zap.Error(err))
	}

	httpMetrics, err := middleware.HTTPMetrics(meterProvider.Meter("farmledger.http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tracerProvider.IsEnabled()))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(httpMetrics)

	// Liveness probe outside the versioned API
	engine.GET("/health", systemHandler.Health)

	requireAuth := middleware.JWTAuth(middleware.JWTConfig{
		Tokens:    tokens,
		Blacklist: blacklist,
		Logger:    log,
	})
	financeMiddleware := []gin.HandlerFunc{requireAuth, middleware.SpanEnricher()}
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStore(cfg.Idempotency, redisClient, log)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			_ = store.Close()
		}()
		financeMiddleware = append(financeMiddleware, middleware.Idempotency(store, cfg.Idempotency.TTL))
	}
	financeMiddleware = append(financeMiddleware, middleware.Profiling(profiler.IsEnabled()))

	r := router.NewRouter(engine)
	r.Register(router.SystemRoutes(systemHandler)).
		Register(router.AuthRoutes(authHandler, requireAuth)).
		Register(router.FinanceRoutes(finance, financeMiddleware...))
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

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("api", r.BasePath()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if sweep != nil {
		if err := sweep.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping budget reconciliation sweep", zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	_ = tracerProvider.Shutdown(shutdownCtx)
	_ = meterProvider.Shutdown(shutdownCtx)
	_ = loggerProvider.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}

// farmClock reports the current time in the farm's zone. The ledger
// services turn it into a wall-clock date.
func farmClock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Now().In(loc)
	}
}
