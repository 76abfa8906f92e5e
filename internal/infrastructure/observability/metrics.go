package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns a private registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Analytics metrics
	AnalyticsRuns     *prometheus.CounterVec
	AnalyticsDuration *prometheus.HistogramVec
	AnalyzedNodes     prometheus.Histogram
	AnalyzedEdges     prometheus.Histogram

	// Store metrics
	NodesCreated prometheus.Counter
	EdgesCreated prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Event metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec

	// Circuit breaker state: 0 closed, 1 half-open, 2 open
	BreakerState *prometheus.GaugeVec
}

// graphSizeBuckets spans a handful of nodes up to the default analytics limit.
var graphSizeBuckets = prometheus.ExponentialBuckets(1, 4, 9)

// NewCollector creates a collector registering its metrics under namespace.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AnalyticsRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analytics_runs_total",
				Help:      "Analyses performed, by requested algorithm and outcome",
			},
			[]string{"algorithm", "outcome", "cached"},
		),
		AnalyticsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analytics_duration_seconds",
				Help:      "Time spent computing analyses",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"algorithm"},
		),
		AnalyzedNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analytics_graph_nodes",
				Help:      "Node count of analysed graphs",
				Buckets:   graphSizeBuckets,
			},
		),
		AnalyzedEdges: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analytics_graph_edges",
				Help:      "Edge count of analysed graphs",
				Buckets:   graphSizeBuckets,
			},
		),
		NodesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_created_total",
				Help:      "Total number of nodes created",
			},
		),
		EdgesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_created_total",
				Help:      "Total number of edges created",
			},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events accepted by the event bus",
			},
			[]string{"event_type"},
		),
		EventsFailed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_failed_total",
				Help:      "Domain events the event bus rejected",
			},
			[]string{"event_type"},
		),
		BreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"name"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.AnalyticsRuns,
		c.AnalyticsDuration,
		c.AnalyzedNodes,
		c.AnalyzedEdges,
		c.NodesCreated,
		c.EdgesCreated,
		c.CacheHits,
		c.CacheMisses,
		c.EventsPublished,
		c.EventsFailed,
		c.BreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// GraphSizer reports the size of the stored graph.
type GraphSizer interface {
	NodeCount() int
	EdgeCount() int
}

// RegisterStoreGauges exposes the stored graph's size, sampled at scrape time.
func (c *Collector) RegisterStoreGauges(namespace string, store GraphSizer) error {
	nodes := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_nodes",
			Help:      "Nodes currently held by the graph store",
		},
		func() float64 { return float64(store.NodeCount()) },
	)
	edges := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_edges",
			Help:      "Edges currently held by the graph store",
		},
		func() float64 { return float64(store.EdgeCount()) },
	)

	if err := c.registry.Register(nodes); err != nil {
		return err
	}
	return c.registry.Register(edges)
}

// Registry returns the Prometheus registry for this collector
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		Registry:          c.registry,
		EnableOpenMetrics: true,
	})
}
