// Package rest wires the HTTP routes and middleware of the API.
package rest

import (
	"net/http"
	"strings"

	_ "nodemapper-backend/docs/swagger"
	"nodemapper-backend/internal/config"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/interfaces/http/rest/handlers"
	"nodemapper-backend/internal/interfaces/http/rest/middleware"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// APIVersionPrefix is the versioned mount point of the API routes. The same
// routes are also served at the root.
const APIVersionPrefix = "/api/v1"

// Router creates and configures the HTTP router
type Router struct {
	cfg              *config.Config
	graphHandler     *handlers.GraphHandler
	analyticsHandler *handlers.AnalyticsHandler
	healthHandler    *handlers.HealthHandler
	metrics          *observability.Collector
	tracerProvider   trace.TracerProvider
	errorHandler     *appErrors.ErrorHandler
	logger           *zap.Logger
}

// NewRouter creates a new router instance. metrics and tracerProvider may
// be nil, which disables the corresponding middleware.
func NewRouter(
	cfg *config.Config,
	graphHandler *handlers.GraphHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Collector,
	tracerProvider trace.TracerProvider,
	errorHandler *appErrors.ErrorHandler,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:              cfg,
		graphHandler:     graphHandler,
		analyticsHandler: analyticsHandler,
		healthHandler:    healthHandler,
		metrics:          metrics,
		tracerProvider:   tracerProvider,
		errorHandler:     errorHandler,
		logger:           logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	if rt.cfg.Features.EnableTracing && rt.tracerProvider != nil {
		router.Use(observability.TracingMiddleware(rt.tracerProvider))
	}
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.Features.EnableMetrics && rt.metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.metrics))
	}
	router.Use(rt.errorHandler.Middleware)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.cfg.CORS.AllowedOrigins,
		AllowedMethods:   rt.cfg.CORS.AllowedMethods,
		AllowedHeaders:   rt.cfg.CORS.AllowedHeaders,
		ExposedHeaders:   []string{appErrors.RequestIDHeader, observability.TraceIDHeader},
		AllowCredentials: !allowsAnyOrigin(rt.cfg.CORS.AllowedOrigins),
		MaxAge:           rt.cfg.CORS.MaxAge,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Probes and tooling
	router.Get("/health", rt.healthHandler.Health)
	router.Get("/ready", rt.healthHandler.Ready)
	if rt.cfg.Features.EnableMetrics && rt.metrics != nil {
		router.Handle(rt.cfg.Metrics.Path, rt.metrics.Handler())
	}
	if rt.cfg.Features.EnableSwagger {
		router.Get("/swagger/doc.json", rt.swaggerDoc)
	}

	// API routes
	router.Group(rt.apiRoutes("api"))
	router.Route(APIVersionPrefix, rt.apiRoutes("api_v1"))

	return router
}

// apiRoutes registers the graph and analytics endpoints. Each mount point
// gets its own circuit breaker, reported under breakerName.
func (rt *Router) apiRoutes(breakerName string) func(r chi.Router) {
	return func(r chi.Router) {
		if rt.cfg.Server.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(rt.cfg.Server.RequestTimeout))
		}
		r.Use(middleware.BodyLimit(rt.cfg.Server.MaxRequestSize))
		if rt.cfg.CircuitBreaker.Enabled {
			r.Use(rt.circuitBreaker(breakerName))
		}

		r.Post("/nodes", rt.graphHandler.CreateNode)
		r.Get("/nodes/{nodeID}", rt.graphHandler.GetNode)
		r.Post("/edges", rt.graphHandler.CreateEdge)
		r.Get("/graph", rt.graphHandler.GetGraph)
		r.Post("/analytics", rt.analyticsHandler.Analyze)
	}
}

func (rt *Router) circuitBreaker(name string) func(http.Handler) http.Handler {
	cb := rt.cfg.CircuitBreaker
	return middleware.CircuitBreaker(middleware.CircuitBreakerConfig{
		Name:             name,
		MaxRequests:      cb.MaxRequests,
		Interval:         cb.Interval,
		Timeout:          cb.Timeout,
		FailureThreshold: cb.FailureRatio,
		MinRequests:      cb.MinRequests,
	}, rt.errorHandler, rt.metrics, rt.logger)
}

func (rt *Router) swaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc("swagger")
	if err != nil {
		rt.errorHandler.Handle(w, r, appErrors.NewInternalError("failed to render API document").WithCause(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}
