package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	basketapp "github.com/foodbank/backend/internal/application/basket"
	inventoryapp "github.com/foodbank/backend/internal/application/inventory"
	"github.com/foodbank/backend/internal/domain/inventory"
	"github.com/foodbank/backend/internal/domain/shared"
	"github.com/foodbank/backend/internal/infrastructure/cache"
	"github.com/foodbank/backend/internal/infrastructure/config"
	"github.com/foodbank/backend/internal/infrastructure/event"
	"github.com/foodbank/backend/internal/infrastructure/logger"
	"github.com/foodbank/backend/internal/infrastructure/persistence"
	"github.com/foodbank/backend/internal/infrastructure/scheduler"
	"github.com/foodbank/backend/internal/infrastructure/strategy"
	"github.com/foodbank/backend/internal/infrastructure/telemetry"
	"github.com/foodbank/backend/internal/interfaces/http/handler"
	"github.com/foodbank/backend/internal/interfaces/http/middleware"
	"github.com/foodbank/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Food Bank Backend API
//	@version		1.0
//	@description	Basket assembly, deliveries and stock lots for a food bank

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog := logger.New(logCfg)

	ctx := context.Background()

	// Telemetry providers come first so the OTLP log bridge can join the
	// main logger
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}

	log := logger.New(logCfg, loggerProvider.ZapCore(logger.ParseLevel(cfg.Telemetry.LogsLevel)))
	defer func() { _ = log.Sync() }()
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider)

	log.Info("Starting food bank backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	dbOpts := []persistence.DatabaseOption{persistence.WithGormLogger(gormLog)}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithTracing(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBName:          cfg.Database.DBName,
		}, log))
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	foodRepo := persistence.NewGormFoodRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	batchRepo := persistence.NewGormBasketBatchRepository(db.DB)
	deliveryRepo := persistence.NewGormBasketDeliveryRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	registry, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to initialize strategy registry", zap.Error(err))
	}
	allocator, err := registry.GetLotStrategy(cfg.Basket.AllocationStrategy)
	if err != nil {
		log.Fatal("Unknown lot allocation strategy",
			zap.String("strategy", cfg.Basket.AllocationStrategy), zap.Error(err))
	}

	basketMetrics, err := telemetry.NewBasketMetrics(meterProvider.Meter("foodbank/basket"))
	if err != nil {
		log.Fatal("Failed to create basket metrics", zap.Error(err))
	}

	assemblyService := basketapp.NewAssemblyService(foodRepo, lotRepo, batchRepo, txScope, allocator, log,
		basketapp.AssemblyConfig{
			MaxConflictRetries: cfg.Basket.MaxConflictRetries,
			IdempotencyTTL:     cfg.Idempotency.TTL,
		})
	assemblyService.SetMetrics(basketMetrics)
	deliveryService := basketapp.NewDeliveryService(foodRepo, deliveryRepo, txScope, log)
	lotService := inventoryapp.NewLotService(lotRepo, foodRepo, log)

	var requestStore shared.RequestStore
	if cfg.Idempotency.Enabled {
		requestStore, err = cache.NewRequestStoreFactory(cfg.Redis, cache.WithLogger(log)).
			CreateStore(ctx, cfg.Idempotency.Backend)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() { _ = requestStore.Close() }()
		assemblyService.SetRequestStore(requestStore)
	}

	lowStockNotifier := basketapp.MetricsNotifier{Recorder: basketMetrics}
	stockDepletionHandler := basketapp.NewStockDepletionHandler(foodRepo, lotRepo, cfg.Basket.LowStockBaskets, log).
		WithNotifier(lowStockNotifier)

	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())
	eventBus.Subscribe(stockDepletionHandler)
	log.Info("Event handlers registered",
		zap.Strings("stock_depletion_events", stockDepletionHandler.EventTypes()))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	assemblyService.SetEventPublisher(eventBus)
	deliveryService.SetEventPublisher(eventBus)
	lotService.SetEventPublisher(eventBus)

	monitorCfg := scheduler.DefaultExpiryMonitorConfig()
	monitorCfg.Enabled = cfg.Expiry.MonitorEnabled
	monitorCfg.Interval = cfg.Expiry.CheckInterval
	if window, err := inventory.ParseExpiryWindow(cfg.Expiry.Window); err == nil {
		monitorCfg.Window = window
	}
	expiryMonitor, err := scheduler.NewExpiryMonitor(lotService, log, monitorCfg)
	if err != nil {
		log.Fatal("Failed to create expiry monitor", zap.Error(err))
	}
	expiryMonitor.WithLowStockSweep(stockDepletionHandler, lowStockNotifier)
	if err := expiryMonitor.Start(ctx); err != nil {
		log.Fatal("Failed to start expiry monitor", zap.Error(err))
	}
	defer func() {
		if err := expiryMonitor.Stop(context.Background()); err != nil {
			log.Error("Error stopping expiry monitor", zap.Error(err))
		}
	}()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	httpMetrics, err := middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Meter:   meterProvider.Meter("foodbank/http"),
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
	})
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}

	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	// Order matters: the request ID and actor must be in the context before
	// the span and the request logger read them
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Actor(),
		middleware.TracingWithConfig(tracingCfg),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log),
		httpMetrics,
		middleware.CORSWithConfig(corsCfg),
		middleware.Secure(),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	healthChecks := []handler.HealthCheck{{Name: "database", Check: db.Ping}}
	if pinger, ok := requestStore.(interface{ Ping(context.Context) error }); ok {
		healthChecks = append(healthChecks, handler.HealthCheck{Name: "redis", Check: pinger.Ping})
	}

	router.Setup(engine, router.Handlers{
		Basket:   handler.NewBasketHandler(assemblyService),
		Delivery: handler.NewDeliveryHandler(deliveryService),
		Lot:      handler.NewLotHandler(lotService),
		Health:   handler.NewHealthHandler(healthChecks...),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, providers ...shutdowner) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			log.Error("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
