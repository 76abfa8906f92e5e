package di

import (
	"context"
	"fmt"
	"net/http"

	"nodemapper-backend/internal/application/services"
	"nodemapper-backend/internal/config"
	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/internal/infrastructure/cache"
	"nodemapper-backend/internal/infrastructure/messaging"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/interfaces/http/rest"
	"nodemapper-backend/internal/interfaces/http/rest/handlers"
	"nodemapper-backend/internal/repository"
	"nodemapper-backend/internal/repository/memory"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/google/wire"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogLevel,
	ProvideLogger,
	ProvideErrorHandler,
	ProvideMetrics,
	ProvideTracerProvider,
	ProvideTracer,
	ProvideGraphStore,
	ProvideGraphRepository,
	ProvideCache,
	wire.Bind(new(cache.Cache), new(*cache.MemoryCache)),
	ProvidePublisher,
	ProvideAnalyzer,
	ProvideGraphService,
	ProvideAnalyticsService,
	ProvideGraphHandler,
	ProvideAnalyticsHandler,
	ProvideHealthHandler,
	ProvideRouter,
	ProvideHTTPHandler,
	wire.Struct(new(Container), "*"),
)

// ProvideLogLevel parses the configured level into an adjustable level.
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return observability.ParseLevel(cfg.Logging.Level)
}

// ProvideLogger creates the process logger
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	return observability.NewLoggerAt(string(cfg.Environment), level, cfg.Logging.Format)
}

// ProvideErrorHandler creates the HTTP error handler. Debug details are only
// rendered in development.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *appErrors.ErrorHandler {
	return appErrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideMetrics creates the Prometheus collector, or nil when metrics are
// disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Features.EnableMetrics {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideTracerProvider initialises tracing. A disabled configuration yields
// a no-op provider.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Features.EnableTracing,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.Version,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
	}, logger)
}

// ProvideTracer returns the application tracer
func ProvideTracer(tp *observability.TracerProvider) trace.Tracer {
	return tp.Tracer()
}

// ProvideGraphStore creates the in-memory graph store
func ProvideGraphStore() *memory.GraphStore {
	return memory.NewGraphStore()
}

// ProvideGraphRepository exposes the store to the services, traced when
// tracing is enabled, and registers its size gauges.
func ProvideGraphRepository(
	cfg *config.Config,
	store *memory.GraphStore,
	tp *observability.TracerProvider,
	metrics *observability.Collector,
) (repository.GraphRepository, error) {
	if metrics != nil {
		if err := metrics.RegisterStoreGauges(cfg.Metrics.Namespace, store); err != nil {
			return nil, fmt.Errorf("failed to register store gauges: %w", err)
		}
	}
	if cfg.Features.EnableTracing {
		return observability.TraceRepository(store, tp.Tracer()), nil
	}
	return store, nil
}

// ProvideCache creates the analytics result cache
func ProvideCache(cfg *config.Config, logger *zap.Logger) *cache.MemoryCache {
	return cache.NewMemoryCache(cfg.Cache.MaxItems, cfg.Cache.MaxBytes, logger)
}

// ProvidePublisher returns an EventBridge publisher when events are enabled
// and a bus is configured, and a logging publisher otherwise.
func ProvidePublisher(
	ctx context.Context,
	cfg *config.Config,
	metrics *observability.Collector,
	logger *zap.Logger,
) (messaging.Publisher, error) {
	if !cfg.Features.EnableEvents || cfg.Events.EventBusName == "" {
		return messaging.NewLogPublisher(logger), nil
	}

	client, err := messaging.NewEventBridgeClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, err
	}

	logger.Info("Publishing domain events to EventBridge",
		zap.String("event_bus", cfg.Events.EventBusName),
		zap.String("source", cfg.Events.Source),
	)
	return messaging.NewEventBridgePublisher(client, messaging.EventBridgeConfig{
		EventBusName: cfg.Events.EventBusName,
		Source:       cfg.Events.Source,
		BatchSize:    cfg.Events.BatchSize,
	}, metrics, logger), nil
}

// ProvideAnalyzer creates the analytics engine
func ProvideAnalyzer() *analytics.Analyzer {
	return analytics.NewAnalyzer()
}

// ProvideGraphService creates the graph service
func ProvideGraphService(
	repo repository.GraphRepository,
	publisher messaging.Publisher,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.GraphService {
	return services.NewGraphService(repo, publisher, metrics, logger)
}

// ProvideAnalyticsService creates the analytics service
func ProvideAnalyticsService(
	cfg *config.Config,
	analyzer *analytics.Analyzer,
	resultCache cache.Cache,
	publisher messaging.Publisher,
	metrics *observability.Collector,
	tracer trace.Tracer,
	logger *zap.Logger,
) *services.AnalyticsService {
	return services.NewAnalyticsService(
		analyzer, resultCache, publisher, metrics, tracer,
		AnalyticsSettings(cfg), logger,
	)
}

// AnalyticsSettings derives the analytics service tunables from cfg.
func AnalyticsSettings(cfg *config.Config) services.AnalyticsSettings {
	return services.AnalyticsSettings{
		MaxNodes:     cfg.Analytics.MaxNodes,
		MaxEdges:     cfg.Analytics.MaxEdges,
		CacheEnabled: cfg.Features.EnableCaching,
		CacheTTL:     cfg.Cache.TTL,
	}
}

// ProvideGraphHandler creates the graph handler
func ProvideGraphHandler(svc *services.GraphService, logger *zap.Logger, errorHandler *appErrors.ErrorHandler) *handlers.GraphHandler {
	return handlers.NewGraphHandler(svc, logger, errorHandler)
}

// ProvideAnalyticsHandler creates the analytics handler
func ProvideAnalyticsHandler(svc *services.AnalyticsService, logger *zap.Logger, errorHandler *appErrors.ErrorHandler) *handlers.AnalyticsHandler {
	return handlers.NewAnalyticsHandler(svc, logger, errorHandler)
}

// ProvideHealthHandler creates the probe handler with readiness checks for
// the store and the result cache. Neither check writes, so probes never
// displace cached results.
func ProvideHealthHandler(
	cfg *config.Config,
	repo repository.GraphRepository,
	resultCache *cache.MemoryCache,
	logger *zap.Logger,
) *handlers.HealthHandler {
	checks := map[string]handlers.ReadinessCheck{
		"store": func(ctx context.Context) error {
			_, err := repo.GetNode(ctx, "readiness-probe")
			if err == nil || appErrors.IsNotFound(err) {
				return nil
			}
			return err
		},
		"cache": resultCache.Check,
	}
	return handlers.NewHealthHandler(cfg.Version, checks, logger)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	graphHandler *handlers.GraphHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Collector,
	tp *observability.TracerProvider,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, graphHandler, analyticsHandler, healthHandler, metrics, tp.Provider(), errorHandler, logger)
}

// ProvideHTTPHandler builds the routed HTTP handler
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
