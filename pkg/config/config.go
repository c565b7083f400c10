// Package config loads sptree's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/sptree/config.toml (falling back to
// ~/.config/sptree/config.toml) unless a path is given explicitly. A missing
// file is not an error: every field has a default, and command-line flags
// override whatever the file sets.
//
//	[generate]
//	points = 5000
//	seed = 1
//
//	[cache]
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/generate"
)

// AppName names the configuration, cache and data directories.
const AppName = "sptree"

// Defaults for fields the file leaves unset.
const (
	DefaultAddr          = ":8080"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultCacheTTL      = 24 * time.Hour
	DefaultMongoDatabase = "sptree"
	DefaultRedisTimeout  = 5 * time.Second
)

// Config is the decoded configuration file.
type Config struct {
	Generate generate.Options `toml:"generate"`
	Cache    CacheConfig      `toml:"cache"`
	Storage  StorageConfig    `toml:"storage"`
	Server   ServerConfig     `toml:"server"`
	Render   RenderConfig     `toml:"render"`
}

// CacheConfig configures the CLI's file cache.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// StorageConfig configures where named graphs are saved.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// ServerConfig configures the HTTP API and its backends.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	SessionTTL    Duration `toml:"session_ttl"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	NoMetrics     bool     `toml:"no_metrics"`
}

// RenderConfig configures rendered output.
type RenderConfig struct {
	MaxLabels int  `toml:"max_labels"`
	Secondary bool `toml:"secondary_tree"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	c.Generate.SetDefaults()
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.SessionTTL.Duration == 0 {
		c.Server.SessionTTL.Duration = DefaultSessionTTL
	}
	if c.Server.MongoDatabase == "" {
		c.Server.MongoDatabase = DefaultMongoDatabase
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := c.Generate.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "[generate]")
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "[cache] ttl cannot be negative: %s", c.Cache.TTL)
	}
	if c.Server.SessionTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "[server] session_ttl cannot be negative: %s", c.Server.SessionTTL)
	}
	if c.Server.RedisDB < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "[server] redis_db cannot be negative: %d", c.Server.RedisDB)
	}
	return nil
}

// Load reads the file at path, or at [DefaultPath] when path is empty.
// A missing default file yields [Default]; a missing explicit path is an
// error. Unknown keys are rejected so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, errs.New(errs.ErrCodeInvalidConfig,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the configuration file path using XDG standard
// (~/.config/sptree/config.toml).
func DefaultPath() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one, or the XDG
// default (~/.cache/sptree/).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// StorageDir returns the directory for saved graphs: the configured one,
// or the XDG default (~/.local/share/sptree/graphs/).
func (c *Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "graphs"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}
