package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sptree/pkg/cache"
	sptreeio "github.com/matzehuels/sptree/pkg/io"
	"github.com/matzehuels/sptree/pkg/observability"
	"github.com/matzehuels/sptree/pkg/planar"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → analyze → render pipeline with caching.
// Rendering is skipped when opts.Format is empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	g, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Graph = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Vertices = g.Len()
	result.Stats.Edges = g.EdgeCount()
	result.CacheInfo.LoadHit = loadHit

	r.Logger.Info("loaded graph",
		"source", opts.Source(),
		"vertices", g.Len(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	hash, err := GraphHash(g)
	if err != nil {
		return nil, err
	}
	result.GraphHash = hash

	// Stage 2: Analyze
	analyzeStart := time.Now()
	report, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Report = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = analyzeHit

	r.Logger.Info("built forests",
		"root", opts.Root,
		"root2", opts.Root2,
		"reached", report.Primary.Reached,
		"height", report.Primary.Height,
		"duration", result.Stats.AnalyzeTime)

	if opts.Format == "" {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	data, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifact = data
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered output",
		"format", opts.Format,
		"bytes", len(data),
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the graph and reports whether it came from cache.
// Only generated graphs are cached; input files are always read.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (*planar.Graph, bool, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	source := opts.Source()
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, source)

	if opts.Input != "" {
		g, err := Load(opts)
		observability.Pipeline().OnLoadComplete(ctx, source, graphLen(g), time.Since(start), err)
		return g, false, err
	}

	gen := opts.Generate
	cacheKey := r.Keyer.GraphKey(cache.GraphKeyOpts{
		N:      gen.N,
		Seed:   gen.Seed,
		Canvas: gen.Canvas,
		Margin: gen.Margin,
	})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			g, err := sptreeio.ReadGraph(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				observability.Pipeline().OnLoadComplete(ctx, source, g.Len(), time.Since(start), nil)
				return g, true, nil // Cache hit
			}
			r.Logger.Warn("discarding unreadable cached graph", "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	g, err := Load(opts)
	observability.Pipeline().OnLoadComplete(ctx, source, graphLen(g), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := sptreeio.WriteGraph(g, &buf); err == nil {
		r.set(ctx, "graph", cacheKey, buf.Bytes(), cache.GraphTTL)
	}
	return g, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*planar.Graph, error) {
	g, _, err := r.LoadWithCacheInfo(ctx, opts)
	return g, err
}

// AnalyzeWithCacheInfo builds both forests of g from opts.Root and
// opts.Root2 and reports whether the result came from cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *planar.Graph, opts Options) (*Report, bool, error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, false, err
	}

	hash, err := GraphHash(g)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.ReportKey(hash, cache.ReportKeyOpts{Primary: opts.Root, Secondary: opts.Root2})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			report, err := UnmarshalReport(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return report, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	start := time.Now()
	observability.Pipeline().OnAnalyzeStart(ctx, g.Len())
	report, err := Analyze(g, opts.Root, opts.Root2, r.Logger)
	observability.Pipeline().OnAnalyzeComplete(ctx, g.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := MarshalReport(report); err == nil {
		r.set(ctx, "report", cacheKey, data, cache.ReportTTL)
	}
	return report, false, nil // Cache miss
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *planar.Graph, opts Options) (*Report, error) {
	report, _, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	return report, err
}

// RenderWithCacheInfo renders g in opts.Format and reports whether the
// output came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *planar.Graph, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hash, err := GraphHash(g)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.RenderKey(hash, cache.RenderKeyOpts{
		Format:        opts.Format,
		Primary:       opts.Root,
		Secondary:     opts.Root2,
		MaxLabels:     opts.MaxLabels,
		SecondaryTree: opts.SecondaryTree,
	})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "render")
			return data, true, nil // Cache hit
		}
		observability.Cache().OnCacheMiss(ctx, "render")
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Format)
	data, err := Render(ctx, g, opts, r.Logger)
	observability.Pipeline().OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.set(ctx, "render", cacheKey, data, cache.RenderTTL)
	return data, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *planar.Graph, opts Options) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// GraphHash fingerprints g by its exported records, so any mutation
// produces a new hash.
func GraphHash(g *planar.Graph) (string, error) {
	return cache.HashJSON(g.Export())
}

// set writes a cache entry. Cache write failures are logged, never fatal.
func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func graphLen(g *planar.Graph) int {
	if g == nil {
		return 0
	}
	return g.Len()
}
