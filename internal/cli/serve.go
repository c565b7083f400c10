package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/internal/server"
	"github.com/matzehuels/sptree/pkg/cache"
	"github.com/matzehuels/sptree/pkg/config"
	"github.com/matzehuels/sptree/pkg/observability"
	"github.com/matzehuels/sptree/pkg/observability/metrics"
	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/retry"
	"github.com/matzehuels/sptree/pkg/session"
	"github.com/matzehuels/sptree/pkg/storage"
)

// redisKeyPrefix namespaces server cache keys in a shared Redis.
const redisKeyPrefix = appName + ":"

// defaultConnectPolicy covers backends that start after the server.
var defaultConnectPolicy = retry.Policy{Attempts: 5, Delay: 500 * time.Millisecond}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Each API session holds one graph with a primary and a secondary root; see
the server package documentation for the routes. Sessions live in memory and
expire after [server] session_ttl without use.

Backends follow the [server] config section, overridden by flags:
  - Rendered output is cached in Redis when --redis-addr is set, otherwise
    in the local cache directory.
  - Saved graphs go to MongoDB when --mongo-uri is set, otherwise to the
    local storage directory.

Prometheus metrics are served on /metrics unless --no-metrics is given.`,
		Example: `  sptree serve --addr :9000
  sptree serve --redis-addr localhost:6379 --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("redis-addr") {
				cfg.RedisAddr = redisAddr
			}
			if cmd.Flags().Changed("mongo-uri") {
				cfg.MongoURI = mongoURI
			}
			if cmd.Flags().Changed("no-metrics") {
				cfg.NoMetrics = noMetrics
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the render cache")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI for saved graphs")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not serve Prometheus metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig) error {
	runner, err := c.newServerRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	graphs, err := c.newServerGraphStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer graphs.Close()

	opts := server.Options{
		Sessions: session.NewMemoryStore(cfg.SessionTTL.Duration),
		Graphs:   graphs,
		Runner:   runner,
		Logger:   c.Logger,
	}
	if !cfg.NoMetrics {
		hooks := metrics.New(prometheus.NewRegistry())
		hooks.Install()
		defer observability.Reset()
		opts.Metrics = hooks.Handler()
	}
	return server.New(opts).ListenAndServe(ctx, cfg.Addr)
}

func (c *CLI) newServerRunner(ctx context.Context, cfg config.ServerConfig) (*pipeline.Runner, error) {
	if cfg.RedisAddr == "" {
		return c.newRunner(false)
	}
	var rc cache.Cache
	err := retry.Do(ctx, c.connectPolicy("redis"), func() error {
		var err error
		rc, err = cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Timeout:  config.DefaultRedisTimeout,
		})
		return retry.Transient(err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}
	c.Logger.Info("using redis cache", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	return pipeline.NewRunner(rc, cache.NewScopedKeyer(nil, redisKeyPrefix), c.Logger), nil
}

func (c *CLI) newServerGraphStore(ctx context.Context, cfg config.ServerConfig) (storage.Store, error) {
	if cfg.MongoURI == "" {
		fs, err := c.newGraphStore()
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using file graph store", "dir", fs.Dir())
		return fs, nil
	}
	var ms *storage.MongoStore
	err := retry.Do(ctx, c.connectPolicy("mongodb"), func() error {
		var err error
		ms, err = storage.NewMongoStore(ctx, storage.MongoOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		return retry.Transient(err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.Logger.Info("using mongodb graph store", "database", cfg.MongoDatabase)
	return ms, nil
}

// connectPolicy logs each failed connection attempt to backend.
func (c *CLI) connectPolicy(backend string) retry.Policy {
	p := defaultConnectPolicy
	p.OnRetry = func(attempt int, err error) {
		c.Logger.Warn("backend not ready", "backend", backend, "attempt", attempt, "error", err)
	}
	return p
}
