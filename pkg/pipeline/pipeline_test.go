package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/generate"
	"github.com/matzehuels/sptree/pkg/graph"
	sptreeio "github.com/matzehuels/sptree/pkg/io"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/render"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// chain builds the path 0-1-...-(n-1).
func chain(t *testing.T, n int) *planar.Graph {
	t.Helper()
	g := planar.New()
	for i := 0; i < n; i++ {
		g.AddVertex(planar.Point{X: float64(20 * i), Y: 10})
		if i > 0 {
			if err := g.AddEdge(i-1, i); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
		}
	}
	return g
}

func TestOptionsSource(t *testing.T) {
	if got := (&Options{}).Source(); got != SourceGenerate {
		t.Errorf("Source() = %q, want %q", got, SourceGenerate)
	}
	if got := (&Options{Input: "g.txt"}).Source(); got != "g.txt" {
		t.Errorf("Source() = %q, want g.txt", got)
	}
}

func TestOptionsValidateForLoad(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForLoad(); err != nil {
		t.Fatalf("ValidateForLoad() = %v", err)
	}
	if opts.Generate.N != generate.DefaultN || opts.Generate.Canvas != generate.DefaultCanvas {
		t.Errorf("generator defaults not applied: %+v", opts.Generate)
	}

	bad := Options{Generate: generate.Options{N: -1}}
	if err := bad.ValidateForLoad(); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ValidateForLoad(N=-1) = %v, want INVALID_INPUT", err)
	}

	// Input paths skip generator validation.
	withInput := Options{Input: "g.txt", Generate: generate.Options{N: -1}}
	if err := withInput.ValidateForLoad(); err != nil {
		t.Errorf("ValidateForLoad(input) = %v", err)
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"valid", Options{Format: render.FormatSVG}, ""},
		{"negative root", Options{Root: -1, Format: render.FormatDOT}, errs.ErrCodeInvalidVertexID},
		{"negative root2", Options{Root2: -2, Format: render.FormatDOT}, errs.ErrCodeInvalidVertexID},
		{"bad format", Options{Format: "gif"}, errs.ErrCodeInvalidFormat},
		{"empty format", Options{}, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForRender()
			if tt.code == "" {
				if err != nil {
					t.Errorf("ValidateForRender() = %v", err)
				}
				return
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("ValidateForRender() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestAnalyzeChain(t *testing.T) {
	report, err := Analyze(chain(t, 5), 4, 0, quietLogger())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Vertices != 5 || report.Edges != 4 {
		t.Errorf("counts = %d vertices, %d edges", report.Vertices, report.Edges)
	}
	if !slices.Equal(report.Primary.Depth, []int{4, 3, 2, 1, 0}) {
		t.Errorf("primary depths = %v", report.Primary.Depth)
	}
	if !slices.Equal(report.Diff.Values, []int{4, 2, 0, -2, -4}) {
		t.Errorf("diff = %v", report.Diff.Values)
	}
	if report.Diff.Primary != 4 || report.Diff.Secondary != 0 {
		t.Errorf("diff roots = %d, %d", report.Diff.Primary, report.Diff.Secondary)
	}
	if report.Primary.Height != 4 || report.Secondary.Reached != 5 {
		t.Errorf("height = %d, reached = %d", report.Primary.Height, report.Secondary.Reached)
	}

	if d, err := report.Depth(1); err != nil || d != 3 {
		t.Errorf("Depth(1) = %d, %v", d, err)
	}
	if d, err := report.DiffAt(3); err != nil || d != -2 {
		t.Errorf("DiffAt(3) = %d, %v", d, err)
	}
	if _, err := report.Depth(5); !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("Depth(5) = %v, want INVALID_VERTEX_ID", err)
	}
}

func TestAnalyzeRootOutOfRange(t *testing.T) {
	_, err := Analyze(chain(t, 3), 0, 3, quietLogger())
	if !errs.Is(err, errs.ErrCodeInvalidVertexID) {
		t.Errorf("Analyze(root2=3) = %v, want INVALID_VERTEX_ID", err)
	}
}

func TestAnalyzeDoesNotModifyGraph(t *testing.T) {
	g := chain(t, 4)
	before := g.Version()
	if _, err := Analyze(g, 1, 2, quietLogger()); err != nil {
		t.Fatal(err)
	}
	if g.Version() != before {
		t.Error("Analyze should work on a copy of the graph")
	}
}

func TestReportRoundTrip(t *testing.T) {
	report, err := Analyze(chain(t, 6), 2, 5, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalReport(report)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalReport(data)
	if err != nil {
		t.Fatalf("UnmarshalReport: %v", err)
	}
	if !slices.Equal(got.Diff.Values, report.Diff.Values) || got.Diff.Scale != report.Diff.Scale {
		t.Errorf("diff changed in round trip: %+v", got.Diff)
	}
}

func TestUnmarshalReportMismatch(t *testing.T) {
	data := []byte(`{"vertices":2,"primary":{"depth":[0,1]},"secondary":{"depth":[1,0]},"diff":{"values":[1]}}`)
	if _, err := UnmarshalReport(data); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("UnmarshalReport() = %v, want INVALID_INPUT", err)
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	g := chain(t, 7)

	txt := filepath.Join(dir, "g.txt")
	if err := sptreeio.ExportFile(g, txt); err != nil {
		t.Fatal(err)
	}
	js := filepath.Join(dir, "g.json")
	if err := graph.WriteGraphFile(g, js); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{txt, js} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			got, err := Load(Options{Input: path})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got.Len() != 7 || got.EdgeCount() != 6 {
				t.Errorf("loaded %d vertices, %d edges", got.Len(), got.EdgeCount())
			}
		})
	}

	if _, err := Load(Options{Input: filepath.Join(dir, "missing.txt")}); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())
	ctx := context.Background()
	opts := Options{
		Generate: generate.Options{N: 60, Seed: 3},
		Root:     0,
		Root2:    10,
		Format:   render.FormatDOT,
	}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LoadHit || first.CacheInfo.AnalyzeHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss every stage: %+v", first.CacheInfo)
	}
	if first.Stats.Vertices != 60 {
		t.Errorf("Stats.Vertices = %d, want 60", first.Stats.Vertices)
	}
	if !strings.HasPrefix(string(first.Artifact), "graph G {") {
		t.Errorf("artifact is not DOT: %.40q", first.Artifact)
	}
	if c.sets != 3 {
		t.Errorf("cache writes = %d, want 3", c.sets)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LoadHit || !second.CacheInfo.AnalyzeHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage: %+v", second.CacheInfo)
	}
	if second.GraphHash != first.GraphHash {
		t.Error("cached graph should hash like the generated one")
	}
	if string(second.Artifact) != string(first.Artifact) {
		t.Error("cached artifact differs")
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Generate: generate.Options{N: 30, Seed: 1}}

	if _, err := r.Execute(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.LoadHit || res.CacheInfo.AnalyzeHit {
		t.Errorf("refresh should bypass the cache: %+v", res.CacheInfo)
	}
	if res.Artifact != nil {
		t.Error("no format means no render")
	}
}

func TestRunnerAnalyzeDifferentRootsMiss(t *testing.T) {
	r := NewRunner(newMemCache(), nil, quietLogger())
	ctx := context.Background()
	g := chain(t, 5)

	if _, hit, err := r.AnalyzeWithCacheInfo(ctx, g, Options{Root: 0, Root2: 4}); err != nil || hit {
		t.Fatalf("first analyze: hit=%v err=%v", hit, err)
	}
	if _, hit, err := r.AnalyzeWithCacheInfo(ctx, g, Options{Root: 1, Root2: 4}); err != nil || hit {
		t.Errorf("other roots should miss: hit=%v err=%v", hit, err)
	}

	// A mutation changes the graph hash.
	g.AddVertex(planar.Point{X: 500, Y: 500})
	if _, hit, err := r.AnalyzeWithCacheInfo(ctx, g, Options{Root: 0, Root2: 4}); err != nil || hit {
		t.Errorf("mutated graph should miss: hit=%v err=%v", hit, err)
	}
}

func TestRunnerCorruptCacheFallsThrough(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, quietLogger())
	ctx := context.Background()
	g := chain(t, 4)
	opts := Options{Root: 0, Root2: 3}

	if _, err := r.Analyze(ctx, g, opts); err != nil {
		t.Fatal(err)
	}
	for k := range c.data {
		c.data[k] = []byte("not json")
	}
	report, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		t.Fatalf("Analyze with corrupt cache: %v", err)
	}
	if hit || report.Vertices != 4 {
		t.Errorf("corrupt entry should be recomputed: hit=%v vertices=%d", hit, report.Vertices)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Fatal("NewRunner should fill nil dependencies")
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}
