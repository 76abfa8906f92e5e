package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nodemapper-backend/internal/application/services"
	"nodemapper-backend/internal/config"
	"nodemapper-backend/internal/domain/analytics"
	"nodemapper-backend/internal/domain/graph"
	"nodemapper-backend/internal/infrastructure/cache"
	"nodemapper-backend/internal/infrastructure/observability"
	"nodemapper-backend/internal/interfaces/http/rest/handlers"
	"nodemapper-backend/internal/repository/memory"
	"nodemapper-backend/pkg/api"
	appErrors "nodemapper-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	store   *memory.GraphStore
	metrics *observability.Collector
}

func newTestServer(t *testing.T, mutate func(*config.Config), checks map[string]handlers.ReadinessCheck) *testServer {
	t.Helper()

	cfg := config.DefaultConfig(config.Development)
	if mutate != nil {
		mutate(cfg)
	}

	logger := zap.NewNop()
	store := memory.NewGraphStore()
	metrics := observability.NewCollector("test")
	errorHandler := appErrors.NewErrorHandler(logger, false)

	graphService := services.NewGraphService(store, nil, metrics, logger)
	analyticsService := services.NewAnalyticsService(
		analytics.NewAnalyzer(), cache.NewMemoryCache(100, 0, logger), nil, metrics, nil,
		services.AnalyticsSettings{
			MaxNodes:     cfg.Analytics.MaxNodes,
			MaxEdges:     cfg.Analytics.MaxEdges,
			CacheEnabled: cfg.Features.EnableCaching,
			CacheTTL:     cfg.Cache.TTL,
		},
		logger,
	)

	router := NewRouter(
		cfg,
		handlers.NewGraphHandler(graphService, logger, errorHandler),
		handlers.NewAnalyticsHandler(analyticsService, logger, errorHandler),
		handlers.NewHealthHandler("test", checks, logger),
		metrics,
		noop.NewTracerProvider(),
		errorHandler,
		logger,
	)

	return &testServer{handler: router.Setup(), store: store, metrics: metrics}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateNode(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	t.Run("defaults", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/nodes", `{}`)
		require.Equal(t, http.StatusOK, w.Code)

		node := decode[graph.Node](t, w)
		assert.NotEmpty(t, node.ID)
		assert.Equal(t, 100.0, node.X)
		assert.Equal(t, 100.0, node.Y)
		assert.Equal(t, "Node", node.Label)
	})

	t.Run("explicit values", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/nodes", `{"x":5,"y":-2.5,"label":"Hub"}`)
		require.Equal(t, http.StatusOK, w.Code)

		node := decode[graph.Node](t, w)
		assert.Equal(t, 5.0, node.X)
		assert.Equal(t, -2.5, node.Y)
		assert.Equal(t, "Hub", node.Label)
	})

	t.Run("empty body takes defaults", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/nodes", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Node", decode[graph.Node](t, w).Label)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/nodes", `{"x":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION", decode[appErrors.ErrorResponse](t, w).Type)
	})

	t.Run("wrong field type", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/nodes", `{"x":"left"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[appErrors.ErrorResponse](t, w).Details, "x")
	})

	assert.Equal(t, 3, srv.store.NodeCount())
}

func TestGetNode(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	created := decode[graph.Node](t, srv.do(http.MethodPost, "/nodes", `{"label":"A"}`))

	w := srv.do(http.MethodGet, "/nodes/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[graph.Node](t, w))

	missing := srv.do(http.MethodGet, "/nodes/nope", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestCreateEdgeAndGetGraph(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	a := decode[graph.Node](t, srv.do(http.MethodPost, "/nodes", `{"label":"A"}`))
	b := decode[graph.Node](t, srv.do(http.MethodPost, "/nodes", `{"label":"B"}`))

	w := srv.do(http.MethodPost, "/edges", `{"source":"`+a.ID+`","target":"`+b.ID+`","weight":"2.5"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	missing := srv.do(http.MethodPost, "/edges", `{"source":"`+a.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	w = srv.do(http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Less(t, strings.Index(body, a.ID), strings.Index(body, b.ID), "nodes keep insertion order")

	snapshot := decode[graph.Snapshot](t, w)
	assert.Equal(t, []string{a.ID, b.ID}, snapshot.Nodes.IDs())
	require.Len(t, snapshot.Edges, 1)
	require.NotNil(t, snapshot.Edges[0].Weight)
	assert.Equal(t, 2.5, *snapshot.Edges[0].Weight)
}

func TestGetGraph_Empty(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(http.MethodGet, "/graph", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nodes":{},"edges":[]}`, w.Body.String())
}

func TestAnalytics_SuppliedGraph(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	body := `{
		"graph": {
			"nodes": {"a": {"id":"a"}, "b": {"id":"b"}, "c": {"id":"c"}},
			"edges": [
				{"source":"a","target":"b"},
				{"source":"b","target":"c","weight":2}
			]
		},
		"start": "a",
		"end": "c"
	}`

	for _, path := range []string{"/analytics", "/api/v1/analytics"} {
		w := srv.do(http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{
			"stats": {"nodeCount":3,"edgeCount":2,"components":1,"averageDegree":1.33,"maxDegree":2,"isolated":0},
			"path": {"nodes":["a","b","c"],"edges":["e0","e1"],"algorithm":"dijkstra","cost":3},
			"pathError": null
		}`, w.Body.String())
	}
}

func TestAnalytics_StatsOnlyAndPathErrors(t *testing.T) {
	srv := newTestServer(t, nil, nil)
	graphJSON := `{"nodes":{"a":{"id":"a"},"b":{"id":"b"}},"edges":[]}`

	tests := []struct {
		name      string
		body      string
		pathError any
	}{
		{name: "no endpoints", body: `{"graph":` + graphJSON + `}`, pathError: nil},
		{name: "only start", body: `{"graph":` + graphJSON + `,"start":"a"}`, pathError: nil},
		{name: "unknown node", body: `{"graph":` + graphJSON + `,"start":"a","end":"zz"}`, pathError: string(analytics.PathErrorNodeNotFound)},
		{name: "unreachable", body: `{"graph":` + graphJSON + `,"start":"a","end":"b","algorithm":"bfs"}`, pathError: string(analytics.PathErrorNoPath)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/analytics", tt.body)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decode[map[string]any](t, w)
			assert.Nil(t, resp["path"])
			assert.Equal(t, tt.pathError, resp["pathError"])
			assert.Contains(t, resp, "pathError")
		})
	}
}

func TestAnalytics_MissingGraphIgnoresStore(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	a := decode[graph.Node](t, srv.do(http.MethodPost, "/nodes", `{}`))
	b := decode[graph.Node](t, srv.do(http.MethodPost, "/nodes", `{}`))
	srv.do(http.MethodPost, "/edges", `{"source":"`+a.ID+`","target":"`+b.ID+`"}`)

	bodies := map[string]string{
		"empty body":    "",
		"empty object":  `{}`,
		"graph omitted": `{"start":"` + a.ID + `","end":"` + b.ID + `"}`,
		"graph null":    `{"graph":null,"start":"` + a.ID + `","end":"` + b.ID + `"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := srv.do(http.MethodPost, "/analytics", body)
			require.Equal(t, http.StatusOK, w.Code)

			result := decode[analytics.Result](t, w)
			assert.Equal(t, analytics.Stats{}, result.Stats)
			assert.Nil(t, result.Path)
			if body == "" || body == `{}` {
				assert.Nil(t, result.PathError)
				return
			}
			require.NotNil(t, result.PathError)
			assert.Equal(t, analytics.PathErrorNodeNotFound, *result.PathError)
		})
	}

	assert.Equal(t, 2, srv.store.NodeCount())
}

func TestAnalytics_BadRequests(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		body   string
		status int
	}{
		{name: "start must be a string", body: `{"start":5,"end":"a"}`, status: http.StatusBadRequest},
		{name: "malformed graph", body: `{"graph":{"nodes":[1,2]}}`, status: http.StatusBadRequest},
		{
			name:   "graph over node limit",
			mutate: func(c *config.Config) { c.Analytics.MaxNodes = 1 },
			body:   `{"graph":{"nodes":{"a":{"id":"a"},"b":{"id":"b"}},"edges":[]}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "body over size limit",
			mutate: func(c *config.Config) { c.Server.MaxRequestSize = 16 },
			body:   `{"graph":{"nodes":{"a":{"id":"a"}},"edges":[]}}`,
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.mutate, nil)
			w := srv.do(http.MethodPost, "/analytics", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.True(t, decode[appErrors.ErrorResponse](t, w).Error)
		})
	}
}

func TestHealthAndReady(t *testing.T) {
	checks := map[string]handlers.ReadinessCheck{
		"store": func(ctx context.Context) error { return nil },
	}
	srv := newTestServer(t, nil, checks)

	w := srv.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","version":"test"}`, w.Body.String())

	w = srv.do(http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","version":"test","checks":{"store":"ok"}}`, w.Body.String())

	checks["events"] = func(ctx context.Context) error { return errors.New("bus unreachable") }
	failing := newTestServer(t, nil, checks)

	w = failing.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "not ready", resp["status"])
	assert.Equal(t, "bus unreachable", resp["checks"].(map[string]any)["events"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	srv.do(http.MethodPost, "/nodes", `{}`)
	w := srv.do(http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="POST",route="/nodes",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "test_nodes_created_total 1")

	disabled := newTestServer(t, func(c *config.Config) { c.Features.EnableMetrics = false }, nil)
	assert.Equal(t, http.StatusNotFound, disabled.do(http.MethodGet, "/metrics", "").Code)
}

func TestSwaggerDoc(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), `"/analytics"`)

	disabled := newTestServer(t, func(c *config.Config) { c.Features.EnableSwagger = false }, nil)
	assert.Equal(t, http.StatusNotFound, disabled.do(http.MethodGet, "/swagger/doc.json", "").Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.True(t, decode[appErrors.ErrorResponse](t, w).Error)

	w = srv.do(http.MethodDelete, "/graph", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestIDAndCORS(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(appErrors.RequestIDHeader, "abc-123")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	srv.handler.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(appErrors.RequestIDHeader))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/analytics", nil)
	preflight.Header.Set("Origin", "http://example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	srv.handler.ServeHTTP(w, preflight)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestPanicsBecomeInternalErrors(t *testing.T) {
	logger := zap.NewNop()
	errorHandler := appErrors.NewErrorHandler(logger, false)
	cfg := config.DefaultConfig(config.Development)

	router := NewRouter(cfg,
		handlers.NewGraphHandler(panickingGraphService{}, logger, errorHandler),
		handlers.NewAnalyticsHandler(nil, logger, errorHandler),
		handlers.NewHealthHandler("test", nil, logger),
		nil, nil, errorHandler, logger,
	).Setup()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/graph", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL", decode[appErrors.ErrorResponse](t, w).Type)
}

type panickingGraphService struct{}

func (panickingGraphService) CreateNode(context.Context, api.CreateNodeRequest) (graph.Node, error) {
	panic("create node")
}

func (panickingGraphService) CreateEdge(context.Context, api.CreateEdgeRequest) error {
	panic("create edge")
}

func (panickingGraphService) GetNode(context.Context, string) (graph.Node, error) {
	panic("get node")
}

func (panickingGraphService) Graph(context.Context) (graph.Snapshot, error) {
	panic("graph")
}
