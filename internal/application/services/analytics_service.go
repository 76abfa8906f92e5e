package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/infrastructure/cache"
	"nodemapper-backend/internal/infrastructure/messaging"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/pkg/api"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// CacheKeyPrefix namespaces analytics results in the shared cache.
const CacheKeyPrefix = "analytics:"

// AnalyticsSettings are the tunables of AnalyticsService. Zero limits
// disable the corresponding check.
type AnalyticsSettings struct {
	MaxNodes     int
	MaxEdges     int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AnalyticsService runs the analytics engine over the graph carried by a
// request.
type AnalyticsService struct {
	analyzer  *analytics.Analyzer
	cache     cache.Cache
	publisher messaging.Publisher
	metrics   *observability.Collector
	tracer    trace.Tracer
	validate  *validator.Validate
	logger    *zap.Logger

	mu       sync.RWMutex
	settings AnalyticsSettings
}

// NewAnalyticsService creates an analytics service. cache, publisher,
// metrics and tracer may be nil.
func NewAnalyticsService(
	analyzer *analytics.Analyzer,
	resultCache cache.Cache,
	publisher messaging.Publisher,
	metrics *observability.Collector,
	tracer trace.Tracer,
	settings AnalyticsSettings,
	logger *zap.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = analytics.NewAnalyzer()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(observability.TracerName)
	}
	return &AnalyticsService{
		analyzer:  analyzer,
		cache:     resultCache,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		validate:  newValidator(),
		logger:    logger,
		settings:  settings,
	}
}

// UpdateSettings replaces the service tunables. It is safe to call while
// requests are in flight.
func (s *AnalyticsService) UpdateSettings(settings AnalyticsSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// Settings returns the current tunables.
func (s *AnalyticsService) Settings() AnalyticsSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Analyze computes statistics and an optional shortest path. A request
// without a graph, or with a null one, analyses the empty graph.
//
// Engine outcomes such as an unknown endpoint or an unreachable target are
// reported in the result, not as errors. Errors are returned only for
// invalid requests and oversized graphs.
func (s *AnalyticsService) Analyze(ctx context.Context, req api.AnalyticsRequest) (*analytics.Result, error) {
	ctx, span := s.tracer.Start(ctx, "analytics.Analyze")
	defer span.End()

	start := time.Now()
	settings := s.Settings()

	if err := s.validate.Struct(req); err != nil {
		appErr := appErrors.FromValidation(err)
		recordSpanError(span, appErr)
		return nil, appErr
	}

	snapshot, source := resolveGraph(req)

	if err := checkLimits(snapshot, settings); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	query := req.Query()
	algorithm := algorithmLabel(query)

	span.SetAttributes(
		attribute.String("graph.source", source),
		attribute.Int("graph.nodes", snapshot.Nodes.Len()),
		attribute.Int("graph.edges", len(snapshot.Edges)),
		attribute.String("analytics.algorithm", algorithm),
	)

	var key string
	useCache := settings.CacheEnabled && s.cache != nil
	if useCache {
		var err error
		if key, err = cacheKey(snapshot, query); err != nil {
			s.logger.Warn("Failed to compute cache key", zap.Error(err))
			useCache = false
		}
	}

	if useCache {
		if result, ok := s.lookup(ctx, key); ok {
			s.finish(ctx, span, snapshot, algorithm, result, true, start)
			return result, nil
		}
	}

	result := s.analyzer.Analyze(snapshot, query)

	if useCache {
		s.store(ctx, key, &result, settings.CacheTTL)
	}

	s.finish(ctx, span, snapshot, algorithm, &result, false, start)
	return &result, nil
}

// resolveGraph returns the graph to analyse and where it came from. The
// stored graph is never consulted: clients fetch it with GET /graph and
// send it back.
func resolveGraph(req api.AnalyticsRequest) (graph.Snapshot, string) {
	if req.Graph == nil {
		return graph.Snapshot{}, "empty"
	}
	return *req.Graph, "request"
}

func checkLimits(s graph.Snapshot, settings AnalyticsSettings) error {
	details := map[string]any{}
	if settings.MaxNodes > 0 && s.Nodes.Len() > settings.MaxNodes {
		details["nodes"] = fmt.Sprintf("%d exceeds limit of %d", s.Nodes.Len(), settings.MaxNodes)
	}
	if settings.MaxEdges > 0 && len(s.Edges) > settings.MaxEdges {
		details["edges"] = fmt.Sprintf("%d exceeds limit of %d", len(s.Edges), settings.MaxEdges)
	}
	if len(details) == 0 {
		return nil
	}
	return appErrors.NewValidationError("graph exceeds analysis limits").
		WithCode("GRAPH_TOO_LARGE").
		WithDetails(details)
}

func (s *AnalyticsService) lookup(ctx context.Context, key string) (*analytics.Result, bool) {
	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		if s.metrics != nil {
			s.metrics.CacheMisses.Inc()
		}
		return nil, false
	}

	var result analytics.Result
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("Discarding corrupt cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}

	if s.metrics != nil {
		s.metrics.CacheHits.Inc()
	}
	return &result, true
}

func (s *AnalyticsService) store(ctx context.Context, key string, result *analytics.Result, ttl time.Duration) {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn("Failed to encode result for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *AnalyticsService) finish(
	ctx context.Context,
	span trace.Span,
	snapshot graph.Snapshot,
	algorithm string,
	result *analytics.Result,
	cached bool,
	start time.Time,
) {
	elapsed := time.Since(start)
	outcome := result.Outcome()

	span.SetAttributes(
		attribute.String("analytics.outcome", outcome),
		attribute.Bool("analytics.cached", cached),
		attribute.Int("analytics.components", result.Stats.Components),
	)
	if result.Path != nil {
		span.SetAttributes(attribute.Int("analytics.path_hops", result.Path.Hops()))
	}

	if s.metrics != nil {
		s.metrics.AnalyticsRuns.WithLabelValues(algorithm, outcome, fmt.Sprint(cached)).Inc()
		s.metrics.AnalyticsDuration.WithLabelValues(algorithm).Observe(elapsed.Seconds())
		s.metrics.AnalyzedNodes.Observe(float64(snapshot.Nodes.Len()))
		s.metrics.AnalyzedEdges.Observe(float64(len(snapshot.Edges)))
	}

	s.logger.Debug("Analysis completed",
		zap.Int("nodes", snapshot.Nodes.Len()),
		zap.Int("edges", len(snapshot.Edges)),
		zap.String("algorithm", algorithm),
		zap.String("outcome", outcome),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	if s.publisher == nil {
		return
	}
	event := messaging.NewEvent(messaging.EventAnalyticsCompleted, "", messaging.AnalyticsCompletedPayload{
		NodeCount:  snapshot.Nodes.Len(),
		EdgeCount:  len(snapshot.Edges),
		Algorithm:  algorithm,
		Outcome:    outcome,
		Cached:     cached,
		DurationMS: float64(elapsed.Microseconds()) / 1000,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish analytics event", zap.Error(err))
	}
}

// algorithmLabel names the procedure a query selects, or "none" when no
// path was requested.
func algorithmLabel(q analytics.Query) string {
	if !q.HasEndpoints() {
		return "none"
	}
	return string(analytics.ParseAlgorithm(q.Algorithm))
}

// cacheKey hashes the canonical JSON encoding of the snapshot and query.
// Node and edge order are part of the encoding since they affect results.
func cacheKey(s graph.Snapshot, q analytics.Query) (string, error) {
	payload := struct {
		Graph     graph.Snapshot `json:"graph"`
		Start     string         `json:"start"`
		End       string         `json:"end"`
		Algorithm string         `json:"algorithm"`
	}{
		Graph:     s,
		Start:     q.Start,
		End:       q.End,
		Algorithm: algorithmLabel(q),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return CacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
