// Package metrics exports observability hook events as Prometheus metrics.
//
// [Hooks] implements every hook interface of the observability package.
// Register it once at startup and serve [Hooks.Handler] on /metrics:
//
//	reg := prometheus.NewRegistry()
//	h := metrics.New(reg)
//	h.Install()
//	mux.Handle("/metrics", h.Handler())
//
// All metrics live under the "sptree" namespace.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/sptree/pkg/observability"
)

const namespace = "sptree"

// Hooks records hook events into Prometheus collectors.
type Hooks struct {
	gatherer prometheus.Gatherer

	mutations     *prometheus.CounterVec
	graphVertices prometheus.Gauge
	forestBuilds  *prometheus.HistogramVec

	stageDuration *prometheus.HistogramVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	inFlight        prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg uses
// the default Prometheus registry.
func New(reg *prometheus.Registry) *Hooks {
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	f := promauto.With(registerer)

	return &Hooks{
		gatherer: gatherer,

		// =====================================================================
		// Engine
		// =====================================================================
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "mutations_total",
			Help:      "Graph mutations by operation",
		}, []string{"op"}),
		graphVertices: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "graph_vertices",
			Help:      "Vertex count after the most recent mutation",
		}),
		forestBuilds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "forest_build_seconds",
			Help:      "Breadth-first forest construction time",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"status"}),

		// =====================================================================
		// Pipeline
		// =====================================================================
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_seconds",
			Help:      "Pipeline stage duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage", "detail", "status"}),

		// =====================================================================
		// Cache
		// =====================================================================
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type",
		}, []string{"key_type"}),

		// =====================================================================
		// HTTP
		// =====================================================================
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served",
		}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
		requestErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Requests that failed with a server error",
		}, []string{"method", "route"}),
	}
}

// Install registers h as the engine, pipeline, cache and HTTP hooks.
func (h *Hooks) Install() {
	observability.SetEngineHooks(h)
	observability.SetPipelineHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

// Handler serves the registered metrics in the Prometheus text format.
func (h *Hooks) Handler() http.Handler {
	return promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnMutation implements observability.EngineHooks.
func (h *Hooks) OnMutation(op string, vertices, edges int) {
	h.mutations.WithLabelValues(op).Inc()
	h.graphVertices.Set(float64(vertices))
}

// OnForestBuild implements observability.EngineHooks.
func (h *Hooks) OnForestBuild(root, vertices int, d time.Duration, err error) {
	h.forestBuilds.WithLabelValues(status(err)).Observe(d.Seconds())
}

// OnLoadStart implements observability.PipelineHooks.
func (h *Hooks) OnLoadStart(context.Context, string) {}

// OnLoadComplete implements observability.PipelineHooks. File paths are
// collapsed to "file" to bound label cardinality.
func (h *Hooks) OnLoadComplete(_ context.Context, source string, _ int, d time.Duration, err error) {
	if source != "generate" {
		source = "file"
	}
	h.stageDuration.WithLabelValues("load", source, status(err)).Observe(d.Seconds())
}

// OnAnalyzeStart implements observability.PipelineHooks.
func (h *Hooks) OnAnalyzeStart(context.Context, int) {}

// OnAnalyzeComplete implements observability.PipelineHooks.
func (h *Hooks) OnAnalyzeComplete(_ context.Context, _ int, d time.Duration, err error) {
	h.stageDuration.WithLabelValues("analyze", "", status(err)).Observe(d.Seconds())
}

// OnRenderStart implements observability.PipelineHooks.
func (h *Hooks) OnRenderStart(context.Context, string) {}

// OnRenderComplete implements observability.PipelineHooks.
func (h *Hooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.stageDuration.WithLabelValues("render", format, status(err)).Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements observability.HTTPHooks. The path is not used as a
// label; requests are labelled by route pattern once they complete.
func (h *Hooks) OnRequest(context.Context, string, string) {
	h.inFlight.Inc()
}

// OnResponse implements observability.HTTPHooks.
func (h *Hooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.inFlight.Dec()
	h.requestDuration.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

// OnError implements observability.HTTPHooks.
func (h *Hooks) OnError(_ context.Context, method, route string, _ error) {
	h.requestErrors.WithLabelValues(method, route).Inc()
}

var (
	_ observability.EngineHooks   = (*Hooks)(nil)
	_ observability.PipelineHooks = (*Hooks)(nil)
	_ observability.CacheHooks    = (*Hooks)(nil)
	_ observability.HTTPHooks     = (*Hooks)(nil)
)
