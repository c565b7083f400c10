package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/matzehuels/sptree/pkg/observability"
)

func TestEngineMetrics(t *testing.T) {
	h := New(prometheus.NewRegistry())

	h.OnMutation("add_vertex", 1, 0)
	h.OnMutation("add_vertex", 2, 0)
	h.OnMutation("add_edge", 2, 1)
	h.OnForestBuild(0, 2, time.Millisecond, nil)
	h.OnForestBuild(5, 2, time.Millisecond, errors.New("bad root"))

	if got := testutil.ToFloat64(h.mutations.WithLabelValues("add_vertex")); got != 2 {
		t.Errorf("add_vertex mutations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(h.graphVertices); got != 2 {
		t.Errorf("graph_vertices = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(h.forestBuilds); got != 2 {
		t.Errorf("forest build series = %d, want ok and error", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	h := New(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnCacheMiss(ctx, "render")
	h.OnCacheSet(ctx, "render", 512)
	h.OnCacheHit(ctx, "render")
	h.OnCacheHit(ctx, "render")

	tests := []struct {
		event string
		want  float64
	}{
		{"hit", 2},
		{"miss", 1},
		{"set", 1},
	}
	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			if got := testutil.ToFloat64(h.cacheEvents.WithLabelValues("render", tt.event)); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
	if got := testutil.ToFloat64(h.cacheBytes.WithLabelValues("render")); got != 512 {
		t.Errorf("written bytes = %v, want 512", got)
	}
}

func TestHTTPMetrics(t *testing.T) {
	h := New(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnRequest(ctx, "GET", "/sessions/abc/depth/3")
	if got := testutil.ToFloat64(h.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	h.OnError(ctx, "GET", "/sessions/{id}/depth/{v}", errors.New("boom"))
	h.OnResponse(ctx, "GET", "/sessions/{id}/depth/{v}", 500, time.Millisecond)

	if got := testutil.ToFloat64(h.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(h.requestErrors.WithLabelValues("GET", "/sessions/{id}/depth/{v}")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestLoadSourceLabel(t *testing.T) {
	h := New(prometheus.NewRegistry())
	ctx := context.Background()

	h.OnLoadComplete(ctx, "/tmp/a.txt", 10, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "/tmp/b.txt", 10, time.Millisecond, nil)
	h.OnLoadComplete(ctx, "generate", 10, time.Millisecond, nil)

	// One series per source kind, not per path.
	if got := testutil.CollectAndCount(h.stageDuration); got != 2 {
		t.Errorf("stage series = %d, want 2", got)
	}
}

func TestInstallAndHandler(t *testing.T) {
	t.Cleanup(observability.Reset)

	h := New(prometheus.NewRegistry())
	h.Install()
	observability.Engine().OnMutation("reset", 0, 0)

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(string(body), `sptree_engine_mutations_total{op="reset"} 1`) {
		t.Errorf("installed hooks should feed the handler:\n%s", body)
	}
}
