// Package di assembles the application's dependencies.
package di

import (
	"context"
	"net/http"

	"nodemapper-backend/internal/application/services"
	"nodemapper-backend/internal/config"
	"nodemapper-backend/internal/infrastructure/cache"
	"nodemapper-backend/internal/infrastructure/messaging"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/interfaces/http/rest"
	"nodemapper-backend/internal/repository"
	"nodemapper-backend/internal/repository/memory"
	appErrors "nodemapper-backend/pkg/errors"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *zap.Logger
	LogLevel         zap.AtomicLevel
	ErrorHandler     *appErrors.ErrorHandler
	Metrics          *observability.Collector
	Tracing          *observability.TracerProvider
	Store            *memory.GraphStore
	GraphRepo        repository.GraphRepository
	Cache            *cache.MemoryCache
	Publisher        messaging.Publisher
	GraphService     *services.GraphService
	AnalyticsService *services.AnalyticsService
	Router           *rest.Router
	Handler          http.Handler
}

// StartBackground starts the container's background work. It stops when ctx
// is cancelled.
func (c *Container) StartBackground(ctx context.Context) {
	if c.Config.Cache.CleanupInterval > 0 {
		c.Cache.StartCleanup(ctx, c.Config.Cache.CleanupInterval)
	}
}

// ApplyConfig applies the reloadable parts of cfg: log level, analytics
// limits and caching. Server, CORS and wiring changes need a restart.
func (c *Container) ApplyConfig(cfg *config.Config) {
	if lvl, err := observability.ParseLevel(cfg.Logging.Level); err == nil {
		c.LogLevel.SetLevel(lvl.Level())
	} else {
		c.Logger.Warn("Ignoring invalid log level", zap.Error(err))
	}

	c.AnalyticsService.UpdateSettings(AnalyticsSettings(cfg))

	if !cfg.Features.EnableCaching {
		if err := c.Cache.Clear(context.Background(), services.CacheKeyPrefix+"*"); err != nil {
			c.Logger.Warn("Failed to clear analytics cache", zap.Error(err))
		}
	}

	c.Logger.Info("Applied configuration change",
		zap.String("log_level", cfg.Logging.Level),
		zap.Int("max_nodes", cfg.Analytics.MaxNodes),
		zap.Int("max_edges", cfg.Analytics.MaxEdges),
		zap.Bool("caching", cfg.Features.EnableCaching),
	)
}

// Shutdown flushes telemetry and the logger.
func (c *Container) Shutdown(ctx context.Context) error {
	err := c.Tracing.Shutdown(ctx)
	_ = c.Logger.Sync()
	return err
}
