// Package pipeline provides the load → analyze → render pipeline for sptree.
//
// This package implements the data flow that both the CLI and the HTTP API
// use. By centralizing it, every entry point loads, caches and reports
// graphs the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a saved graph (text records or JSON) or generate one
//  2. Analyze: build the primary and secondary forests and their diff
//  3. Render: draw the view as DOT, SVG, PDF or PNG
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Generate: generate.Options{N: 500, Seed: 1},
//	    Root:     0,
//	    Root2:    42,
//	    Format:   "svg",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifact
//
// Run individual stages:
//
//	g, err := runner.Load(ctx, opts)
//	report, err := runner.Analyze(ctx, g, opts)
//	data, err := runner.Render(ctx, g, opts)
package pipeline

import (
	"time"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/generate"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/render"
	"github.com/matzehuels/sptree/pkg/render/nodelink"
)

// SourceGenerate names the generator as a load source in logs and hooks.
const SourceGenerate = "generate"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. A non-empty Input is read from disk; otherwise a graph
	// is generated from Generate.
	Input    string           `json:"input,omitempty"`
	Generate generate.Options `json:"generate"`
	Refresh  bool             `json:"refresh,omitempty"`

	// Analyze options
	Root  int `json:"root"`
	Root2 int `json:"root2"`

	// Render options. An empty Format skips rendering in Execute.
	Format        string `json:"format,omitempty"`
	MaxLabels     int    `json:"max_labels,omitempty"`
	SecondaryTree bool   `json:"secondary_tree,omitempty"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded planar graph.
	Graph *planar.Graph

	// GraphHash is the content hash of the graph's records.
	GraphHash string

	// Report holds both forests and their diff.
	Report *Report

	// Artifact is the rendered output in Options.Format, if any.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices    int
	Edges       int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LoadHit    bool // Whether the generated graph came from cache
	AnalyzeHit bool // Whether the report came from cache
	RenderHit  bool // Whether the artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// Source names where the graph comes from: the input path or "generate".
func (o *Options) Source() string {
	if o.Input != "" {
		return o.Input
	}
	return SourceGenerate
}

// ValidateForLoad applies generator defaults and checks them. Options
// with an Input path skip generator validation.
func (o *Options) ValidateForLoad() error {
	if o.Input != "" {
		return nil
	}
	o.Generate.SetDefaults()
	return o.Generate.Validate()
}

// ValidateForAnalyze checks that both roots are non-negative. The upper
// bound depends on the graph and is checked during analysis.
func (o *Options) ValidateForAnalyze() error {
	for _, r := range []int{o.Root, o.Root2} {
		if r < 0 {
			return errs.New(errs.ErrCodeInvalidVertexID, "root %d is negative", r)
		}
	}
	return nil
}

// ValidateForRender checks the analyze options and the output format.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	return render.ValidateFormat(o.Format)
}

// RenderOptions returns the node-link options for this run.
func (o *Options) RenderOptions() nodelink.Options {
	return nodelink.Options{MaxLabels: o.MaxLabels, Secondary: o.SecondaryTree}
}
