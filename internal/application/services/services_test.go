package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/infrastructure/cache"
	"nodemapper-backend/internal/infrastructure/messaging"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/repository"
	"nodemapper-backend/internal/repository/memory"
	"nodemapper-backend/pkg/api"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) CreateNode(ctx context.Context, in repository.NodeInput) (graph.Node, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(graph.Node), args.Error(1)
}

func (m *mockRepository) CreateEdge(ctx context.Context, e graph.Edge) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockRepository) GetNode(ctx context.Context, id string) (graph.Node, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(graph.Node), args.Error(1)
}

func (m *mockRepository) Snapshot(ctx context.Context) (graph.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(graph.Snapshot), args.Error(1)
}

func (m *mockRepository) NodeCount() int { return m.Called().Int(0) }
func (m *mockRepository) EdgeCount() int { return m.Called().Int(0) }

func strPtr(s string) *string { return &s }

func lineGraph() *graph.Snapshot {
	s := graph.NewSnapshot(
		[]graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]graph.Edge{
			{Source: "a", Target: "b"},
			{Source: "b", Target: "c", Weight: graph.Float64(2)},
		},
	)
	return &s
}

// GraphService

func TestGraphService_CreateNode(t *testing.T) {
	store := memory.NewGraphStore()
	pub := &recordingPublisher{}
	metrics := observability.NewCollector("test")
	svc := NewGraphService(store, pub, metrics, zaptest.NewLogger(t))

	node, err := svc.CreateNode(context.Background(), api.CreateNodeRequest{Label: strPtr("Alpha")})
	require.NoError(t, err)

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "Alpha", node.Label)
	assert.Equal(t, graph.DefaultNodeX, node.X)
	assert.Equal(t, 1, store.NodeCount())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NodesCreated))
	assert.Equal(t, []string{messaging.EventNodeCreated}, pub.types())
	assert.Equal(t, node.ID, pub.events[0].AggregateID)
}

func TestGraphService_CreateNode_Validation(t *testing.T) {
	svc := NewGraphService(memory.NewGraphStore(), nil, nil, nil)

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}

	_, err := svc.CreateNode(context.Background(), api.CreateNodeRequest{Label: strPtr(string(long))})

	require.True(t, appErrors.IsValidation(err))
	appErr := appErrors.GetAppError(err)
	assert.Equal(t, "must be at most 256", appErr.Details["label"])
}

func TestGraphService_CreateEdge(t *testing.T) {
	store := memory.NewGraphStore()
	pub := &recordingPublisher{}
	metrics := observability.NewCollector("test")
	svc := NewGraphService(store, pub, metrics, zap.NewNop())

	err := svc.CreateEdge(context.Background(), api.CreateEdgeRequest{
		Edge: graph.Edge{Source: "a", Target: "ghost", Directed: true},
	})
	require.NoError(t, err)

	snapshot, err := svc.Graph(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Edges, 1)
	assert.Equal(t, "ghost", snapshot.Edges[0].Target)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EdgesCreated))
	assert.Equal(t, []string{messaging.EventEdgeCreated}, pub.types())
}

func TestGraphService_CreateEdge_RequiresEndpoints(t *testing.T) {
	store := memory.NewGraphStore()
	svc := NewGraphService(store, nil, nil, nil)

	err := svc.CreateEdge(context.Background(), api.CreateEdgeRequest{Edge: graph.Edge{Source: "a"}})

	require.True(t, appErrors.IsValidation(err))
	assert.Equal(t, map[string]any{"target": "is required"}, appErrors.GetAppError(err).Details)
	assert.Equal(t, 0, store.EdgeCount())
}

func TestGraphService_PublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus down")}
	svc := NewGraphService(memory.NewGraphStore(), pub, nil, zap.NewNop())

	_, err := svc.CreateNode(context.Background(), api.CreateNodeRequest{})
	assert.NoError(t, err)
}

func TestGraphService_RepositoryErrors(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CreateNode", mock.Anything, mock.Anything).Return(graph.Node{}, errors.New("disk full"))
	repo.On("CreateEdge", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	repo.On("Snapshot", mock.Anything).Return(graph.Snapshot{}, errors.New("disk full"))
	svc := NewGraphService(repo, nil, nil, nil)

	_, err := svc.CreateNode(context.Background(), api.CreateNodeRequest{})
	assert.True(t, appErrors.IsInternal(err))

	err = svc.CreateEdge(context.Background(), api.CreateEdgeRequest{Edge: graph.Edge{Source: "a", Target: "b"}})
	assert.True(t, appErrors.IsInternal(err))

	_, err = svc.Graph(context.Background())
	assert.True(t, appErrors.IsInternal(err))
}

func TestGraphService_GetNode(t *testing.T) {
	svc := NewGraphService(memory.NewGraphStore(), nil, nil, nil)

	node, err := svc.CreateNode(context.Background(), api.CreateNodeRequest{})
	require.NoError(t, err)

	got, err := svc.GetNode(context.Background(), node.ID)
	require.NoError(t, err)
	assert.Equal(t, node, got)

	_, err = svc.GetNode(context.Background(), "missing")
	assert.True(t, appErrors.IsNotFound(err))
}

// AnalyticsService

func newAnalyticsService(t *testing.T, c cache.Cache, settings AnalyticsSettings) (*AnalyticsService, *observability.Collector, *recordingPublisher) {
	t.Helper()
	metrics := observability.NewCollector("test")
	pub := &recordingPublisher{}
	svc := NewAnalyticsService(nil, c, pub, metrics, nil, settings, zaptest.NewLogger(t))
	return svc, metrics, pub
}

func TestAnalyticsService_SuppliedGraph(t *testing.T) {
	svc, metrics, pub := newAnalyticsService(t, nil, AnalyticsSettings{})

	result, err := svc.Analyze(context.Background(), api.AnalyticsRequest{
		Graph: lineGraph(),
		Start: "a",
		End:   "c",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Stats.NodeCount)
	require.NotNil(t, result.Path)
	assert.Equal(t, []string{"a", "b", "c"}, result.Path.Nodes)
	assert.Equal(t, analytics.AlgorithmDijkstra, result.Path.Algorithm)
	require.NotNil(t, result.Path.Cost)
	assert.InDelta(t, 3.0, *result.Path.Cost, 1e-9)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalyticsRuns.WithLabelValues("auto", "path_found", "false")))
	assert.Equal(t, []string{messaging.EventAnalyticsCompleted}, pub.types())

	payload := pub.events[0].Payload.(messaging.AnalyticsCompletedPayload)
	assert.Equal(t, 3, payload.NodeCount)
	assert.Equal(t, "path_found", payload.Outcome)
}

func TestAnalyticsService_MissingGraphIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "graph omitted", body: `{"start":"a","end":"a"}`},
		{name: "graph null", body: `{"graph":null,"start":"a","end":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, metrics, _ := newAnalyticsService(t, nil, AnalyticsSettings{})

			var req api.AnalyticsRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			result, err := svc.Analyze(context.Background(), req)
			require.NoError(t, err)

			assert.Equal(t, analytics.Stats{}, result.Stats)
			assert.Nil(t, result.Path)
			require.NotNil(t, result.PathError)
			assert.Equal(t, analytics.PathErrorNodeNotFound, *result.PathError)
			assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalyticsRuns.WithLabelValues("auto", "node_not_found", "false")))
		})
	}
}

func TestAnalyticsService_PathErrorsAreNotErrors(t *testing.T) {
	svc, metrics, _ := newAnalyticsService(t, nil, AnalyticsSettings{})

	result, err := svc.Analyze(context.Background(), api.AnalyticsRequest{
		Graph: lineGraph(),
		Start: "a",
		End:   "zzz",
	})
	require.NoError(t, err)
	require.NotNil(t, result.PathError)
	assert.Equal(t, analytics.PathErrorNodeNotFound, *result.PathError)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalyticsRuns.WithLabelValues("auto", "node_not_found", "false")))
}

func TestAnalyticsService_EmptyRequest(t *testing.T) {
	svc, _, _ := newAnalyticsService(t, nil, AnalyticsSettings{})

	result, err := svc.Analyze(context.Background(), api.AnalyticsRequest{})
	require.NoError(t, err)
	assert.Equal(t, analytics.Stats{}, result.Stats)
	assert.Nil(t, result.Path)
	assert.Nil(t, result.PathError)
}

func TestAnalyticsService_Limits(t *testing.T) {
	tests := []struct {
		name     string
		settings AnalyticsSettings
		field    string
	}{
		{name: "too many nodes", settings: AnalyticsSettings{MaxNodes: 2}, field: "nodes"},
		{name: "too many edges", settings: AnalyticsSettings{MaxNodes: 10, MaxEdges: 1}, field: "edges"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, pub := newAnalyticsService(t, nil, tt.settings)

			_, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph()})

			require.True(t, appErrors.IsValidation(err))
			appErr := appErrors.GetAppError(err)
			assert.Equal(t, "GRAPH_TOO_LARGE", appErr.Code)
			assert.Contains(t, appErr.Details, tt.field)
			assert.Empty(t, pub.types())
		})
	}
}

func TestAnalyticsService_UpdateSettings(t *testing.T) {
	svc, _, _ := newAnalyticsService(t, nil, AnalyticsSettings{MaxNodes: 1})

	_, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph()})
	require.Error(t, err)

	svc.UpdateSettings(AnalyticsSettings{MaxNodes: 100})
	assert.Equal(t, 100, svc.Settings().MaxNodes)

	_, err = svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph()})
	assert.NoError(t, err)
}

func TestAnalyticsService_RequestValidation(t *testing.T) {
	svc, _, _ := newAnalyticsService(t, nil, AnalyticsSettings{})

	long := string(make([]byte, 257))
	_, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Start: long, End: "a"})

	require.True(t, appErrors.IsValidation(err))
	assert.Contains(t, appErrors.GetAppError(err).Details, "start")
}

func TestAnalyticsService_Cache(t *testing.T) {
	c := cache.NewMemoryCache(100, 0, zap.NewNop())
	svc, metrics, pub := newAnalyticsService(t, c, AnalyticsSettings{CacheEnabled: true, CacheTTL: time.Minute})

	req := api.AnalyticsRequest{Graph: lineGraph(), Start: "a", End: "c"}

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalyticsRuns.WithLabelValues("auto", "path_found", "true")))
	assert.Equal(t, 1, c.Stats().Items)
	assert.Len(t, pub.types(), 2)

	// A different selector is a different cache entry.
	req.Algorithm = "bfs"
	third, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, analytics.AlgorithmBFS, third.Path.Algorithm)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheMisses))
}

func TestAnalyticsService_CacheDisabled(t *testing.T) {
	c := cache.NewMemoryCache(100, 0, zap.NewNop())
	svc, metrics, _ := newAnalyticsService(t, c, AnalyticsSettings{CacheEnabled: false})

	_, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph()})
	require.NoError(t, err)

	assert.Equal(t, 0, c.Stats().Items)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CacheMisses))
}

func TestAnalyticsService_CorruptCacheEntry(t *testing.T) {
	c := cache.NewMemoryCache(100, 0, zap.NewNop())
	svc, _, _ := newAnalyticsService(t, c, AnalyticsSettings{CacheEnabled: true})

	req := api.AnalyticsRequest{Graph: lineGraph()}
	key, err := cacheKey(*req.Graph, req.Query())
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), key, []byte("not json"), 0))

	result, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.NodeCount)

	data, found, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, json.Valid(data))
}

func TestCacheKey(t *testing.T) {
	g := *lineGraph()

	k1, err := cacheKey(g, analytics.Query{Start: "a", End: "c"})
	require.NoError(t, err)
	assert.Regexp(t, `^analytics:[0-9a-f]{64}$`, k1)

	k2, err := cacheKey(g.Clone(), analytics.Query{Start: "a", End: "c", Algorithm: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, k1, k2, "unknown selectors dispatch like auto")

	k3, err := cacheKey(g, analytics.Query{Start: "c", End: "a"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	reordered := graph.NewSnapshot(
		[]graph.Node{{ID: "b"}, {ID: "a"}, {ID: "c"}},
		g.Edges,
	)
	k4, err := cacheKey(reordered, analytics.Query{Start: "a", End: "c"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4, "node order is significant")
}

func TestAnalyticsService_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc := NewAnalyticsService(nil, nil, nil, nil, tp.Tracer("test"), AnalyticsSettings{MaxNodes: 1}, nil)

	_, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: &graph.Snapshot{}})
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph()})
	require.Error(t, err)
	_, err = svc.Analyze(context.Background(), api.AnalyticsRequest{})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "analytics.Analyze", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "none", attrs["analytics.algorithm"])
	assert.Equal(t, "stats_only", attrs["analytics.outcome"])
	assert.Equal(t, "request", attrs["graph.source"])

	assert.Equal(t, codes.Error, spans[1].Status().Code)

	for _, kv := range spans[2].Attributes() {
		if kv.Key == "graph.source" {
			assert.Equal(t, "empty", kv.Value.AsString())
		}
	}
}

func TestAnalyticsService_ConcurrentRequests(t *testing.T) {
	c := cache.NewMemoryCache(100, 0, zap.NewNop())
	svc, _, _ := newAnalyticsService(t, c, AnalyticsSettings{CacheEnabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Analyze(context.Background(), api.AnalyticsRequest{Graph: lineGraph(), Start: "a", End: "c"})
			assert.NoError(t, err)
			assert.NotNil(t, result.Path)
		}()
	}
	wg.Wait()
}

func TestNewValidator(t *testing.T) {
	type position struct {
		X float64 `json:"x"`
	}
	type payload struct {
		Where position `json:"where" validate:"required"`
		Label string   `json:"label,omitempty" validate:"max=3"`
	}

	v := newValidator()

	assert.NoError(t, v.Struct(payload{Where: position{X: 1}}))

	err := v.Struct(payload{Label: "toolong"})
	require.Error(t, err)
	appErr := appErrors.FromValidation(err)
	assert.Contains(t, appErr.Details, "where", "required applies to struct fields")
	assert.Contains(t, appErr.Details, "label", "errors use JSON names")
}
