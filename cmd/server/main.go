// Command server runs the openship commerce API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	_ "github.com/openship/backend/docs"
	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/adapter"
	"github.com/openship/backend/internal/infrastructure/auth"
	"github.com/openship/backend/internal/infrastructure/cache"
	"github.com/openship/backend/internal/infrastructure/config"
	"github.com/openship/backend/internal/infrastructure/ecommerce"
	"github.com/openship/backend/internal/infrastructure/event"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/persistence"
	"github.com/openship/backend/internal/infrastructure/scheduler"
	"github.com/openship/backend/internal/infrastructure/storage"
	"github.com/openship/backend/internal/infrastructure/telemetry"
	"github.com/openship/backend/internal/interfaces/http/handler"
	"github.com/openship/backend/internal/interfaces/http/middleware"
	"github.com/openship/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

//	@title			Openship Commerce API
//	@version		1.0
//	@description	Multi-platform shop and channel integration: order search, purchase fan-out, capability dispatch and webhook reconciliation.

//	@contact.name	API Support

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
	baseLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := telemetry.NewBridgedLogger(baseLog,
		telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = logger.Sync(log)
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingAuthPassword,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	log.Info("Starting openship backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithPlugin(dbTracing.RegisterOtelGorm),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	sqlDB, err := db.SQL()
	if err != nil {
		log.Fatal("Failed to access database pool", zap.Error(err))
	}
	log.Info("Database connected successfully")

	meter := meterProvider.Meter("openship")
	dbMetrics, err := telemetry.NewDBMetrics(meter, sqlDB, 0, log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if err := dbMetrics.RegisterCallbacks(db.DB); err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	dbMetrics.Start(ctx)

	commerceMetrics, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{Meter: meter, Logger: log})
	if err != nil {
		log.Fatal("Failed to create commerce metrics", zap.Error(err))
	}

	// Repositories
	shopRepo := persistence.NewGormShopRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	cartItemRepo := persistence.NewGormCartItemRepository(db.DB)
	platformRepo := cache.NewCachedPlatformRepository(persistence.NewGormPlatformRepository(db.DB),
		cache.WithPlatformCacheLogger(log))

	// Events
	publisher, closePublisher := newPublisher(cfg.Kafka, log)
	defer closePublisher()

	// Webhook support
	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log)).
		CreateStore(ctx, cfg.Webhook.IdempotencyBackend)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	archive := newArchive(ctx, cfg, log)

	// Adapters
	// the invoker adds its own otelhttp transport; modules get a traced client here
	baseClient := &http.Client{Transport: http.DefaultTransport}
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	registry := adapter.NewRegistry()
	if err := ecommerce.Register(registry, ecommerce.ModulesConfig{
		Taobao: ecommerce.TaobaoConfig{
			AppKey:    cfg.Adapter.Taobao.AppKey,
			AppSecret: cfg.Adapter.Taobao.AppSecret,
			Gateway:   cfg.Adapter.Taobao.Gateway,
		},
		Douyin: ecommerce.DouyinConfig{
			AppKey:    cfg.Adapter.Douyin.AppKey,
			AppSecret: cfg.Adapter.Douyin.AppSecret,
			Gateway:   cfg.Adapter.Douyin.Gateway,
		},
		HTTPClient: httpClient,
	}); err != nil {
		log.Fatal("Failed to register platform modules", zap.Error(err))
	}
	dispatcher := adapter.NewDispatcher(
		adapter.NewResolver(registry),
		adapter.NewInvoker(adapter.InvokerConfig{
			CallTimeout: cfg.Adapter.CallTimeout,
			HTTPClient:  baseClient,
			Metrics:     commerceMetrics,
			Logger:      log,
		}),
	)

	// Application services
	opts := []appintegration.Option{
		appintegration.WithPublisher(publisher),
		appintegration.WithMetrics(commerceMetrics),
		appintegration.WithMaxConcurrency(cfg.Adapter.MaxConcurrency),
	}
	searchService := appintegration.NewOrderSearchService(shopRepo, platformRepo, orderRepo, dispatcher, opts...)
	purchaseService := appintegration.NewPurchaseService(channelRepo, platformRepo, cartItemRepo, dispatcher, opts...)
	capabilityService := appintegration.NewCapabilityService(shopRepo, channelRepo, platformRepo, dispatcher, cfg.App.FrontendURL, opts...)
	webhookService := appintegration.NewWebhookService(shopRepo, platformRepo, orderRepo, dispatcher, appintegration.WebhookConfig{
		Async:          cfg.Webhook.Async,
		ProcessTimeout: cfg.Webhook.ProcessTimeout,
		IdempotencyTTL: cfg.Webhook.IdempotencyTTL,
		Idempotency:    idempotency,
		Archive:        archive,
		Logger:         log,
	}, opts...)

	stopImport := startOrderImport(cfg.Import, searchService, shopRepo, log)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	engine, err := router.NewEngine(router.Options{
		Logger:           log,
		HTTP:             cfg.HTTP,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		ProfilingEnabled: cfg.Telemetry.ProfilingEnabled,
		Metrics:          middleware.NewHTTPMetrics(promRegistry),
		Auth:             auth.NewJWTService(cfg.JWT),
		WebhookRateLimit: cfg.Webhook.RateLimit,
		Swagger:          !cfg.IsProduction(),
	}, router.Handlers{
		System:       handler.NewSystemHandler(sqlDB, version),
		Orders:       handler.NewOrderHandler(searchService),
		Purchases:    handler.NewPurchaseHandler(purchaseService),
		Capabilities: handler.NewCapabilityHandler(capabilityService),
		Webhooks:     handler.NewWebhookHandler(webhookService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := webhookService.Wait(shutdownCtx); err != nil {
		log.Warn("Webhook reconciliation still running at shutdown", zap.Error(err))
	}
	stopImport(shutdownCtx)

	dbMetrics.Stop()
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	for name, shutdown := range map[string]func(context.Context) error{
		"tracer": tracerProvider.Shutdown,
		"meter":  meterProvider.Shutdown,
		"logger": loggerProvider.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// startOrderImport runs the periodic import of linked shops when enabled and
// returns its stop function.
func startOrderImport(cfg config.ImportConfig, searcher scheduler.OrderSearcher, shops scheduler.ShopLister, log *zap.Logger) func(context.Context) {
	if !cfg.Enabled {
		return func(context.Context) {}
	}

	importer := scheduler.NewSearchOrderImporter(searcher, cfg.PageSize, cfg.MaxPages, log)
	schedCfg := scheduler.DefaultOrderImportSchedulerConfig()
	schedCfg.MaxConcurrentJobs = cfg.Workers
	schedCfg.JobTimeout = cfg.JobTimeout
	schedCfg.RetryAttempts = cfg.MaxRetries
	schedCfg.RetryDelay = cfg.RetryDelay
	sched, err := scheduler.NewOrderImportScheduler(schedCfg, importer, log)
	if err != nil {
		log.Fatal("Invalid order import configuration", zap.Error(err))
	}
	trigger := scheduler.NewOrderImportTrigger(scheduler.OrderImportTriggerConfig{
		CheckInterval:  cfg.CheckInterval,
		ImportInterval: cfg.Interval,
	}, sched, shops, log)

	ctx := context.Background()
	_ = sched.Start(ctx)
	_ = trigger.Start(ctx)

	return func(ctx context.Context) {
		if err := trigger.Stop(ctx); err != nil {
			log.Warn("Order import trigger stop failed", zap.Error(err))
		}
		if err := sched.Stop(ctx); err != nil {
			log.Warn("Order import scheduler stop failed", zap.Error(err))
		}
	}
}

// newPublisher always logs events and also writes them to Kafka when enabled
func newPublisher(cfg config.KafkaConfig, log *zap.Logger) (shared.EventPublisher, func()) {
	logPublisher := event.NewLogPublisher()
	if !cfg.Enabled {
		return logPublisher, func() {}
	}
	kafka, err := event.NewKafkaPublisher(event.KafkaConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
	}, event.NewIntegrationEventSerializer(), log)
	if err != nil {
		log.Fatal("Failed to create Kafka publisher", zap.Error(err))
	}
	log.Info("Publishing domain events to Kafka", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return event.NewMultiPublisher(logPublisher, kafka), func() {
		if err := kafka.Close(); err != nil {
			log.Warn("Kafka publisher close failed", zap.Error(err))
		}
	}
}

// newArchive returns the S3 archive when a bucket is configured, an in-memory
// one when archiving is enabled without a bucket, and nil otherwise
func newArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) integration.PayloadArchive {
	if !cfg.Webhook.ArchiveEnabled {
		return nil
	}
	if cfg.Storage.Bucket == "" {
		log.Warn("Webhook archive enabled without a bucket; keeping payloads in memory")
		return storage.NewMemoryPayloadArchive()
	}
	archive, err := storage.NewS3PayloadArchive(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create webhook archive", zap.Error(err))
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Fatal("Failed to prepare webhook archive bucket", zap.Error(err))
	}
	return archive
}
