// Package cache provides caching for graphs, forests and analysis reports.
//
// # Backends
//
//   - [FileCache]: JSON envelopes in a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used by the HTTP server
//   - [NullCache]: never stores anything (caching disabled)
//
// # Keys
//
// Keys are derived by a [Keyer] from a content hash of the graph plus the
// parameters of the computation, so any mutation of the graph produces a
// new key and stale entries are never served:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ReportKey(cache.Hash(records), cache.ReportKeyOpts{Primary: 0, Secondary: 7})
//
// [ScopedKeyer] prefixes every key for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok == false and a nil error. Implementations must
// be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs for cached artifacts.
const (
	GraphTTL  = 7 * 24 * time.Hour
	ReportTTL = 24 * time.Hour
	RenderTTL = 24 * time.Hour
)

// GraphKeyOpts identifies a generated graph.
type GraphKeyOpts struct {
	N      int    `json:"n"`
	Seed   uint64 `json:"seed"`
	Canvas int    `json:"canvas"`
	Margin int    `json:"margin"`
}

// ReportKeyOpts identifies a dual-root analysis of a graph.
type ReportKeyOpts struct {
	Primary   int `json:"primary"`
	Secondary int `json:"secondary"`
}

// RenderKeyOpts identifies a rendered view of a graph.
type RenderKeyOpts struct {
	Format        string `json:"format"`
	Primary       int    `json:"primary"`
	Secondary     int    `json:"secondary"`
	MaxLabels     int    `json:"max_labels"`
	SecondaryTree bool   `json:"secondary_tree"`
}

// Keyer derives cache keys.
type Keyer interface {
	// GraphKey keys a generated graph by its generator options.
	GraphKey(opts GraphKeyOpts) string
	// ForestKey keys a single forest of the graph with the given hash.
	ForestKey(graphHash string, root int) string
	// ReportKey keys a dual-root analysis of the graph with the given hash.
	ReportKey(graphHash string, opts ReportKeyOpts) string
	// RenderKey keys a rendered view of the graph with the given hash.
	RenderKey(graphHash string, opts RenderKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(opts GraphKeyOpts) string {
	return hashKey("graph", opts)
}

// ForestKey implements Keyer.
func (DefaultKeyer) ForestKey(graphHash string, root int) string {
	return hashKey("forest", graphHash, root)
}

// ReportKey implements Keyer.
func (DefaultKeyer) ReportKey(graphHash string, opts ReportKeyOpts) string {
	return hashKey("report", graphHash, opts)
}

// RenderKey implements Keyer.
func (DefaultKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return hashKey("render", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
