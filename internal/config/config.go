// Package config loads eveshow settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. The TOML file at ~/.config/eveshow/config.toml
//  3. EVESHOW_* environment variables ([Config.ApplyEnv])
//
// Command-line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/incept5/eve-showcase/pkg/theme"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config is the full eveshow configuration.
type Config struct {
	Content ContentConfig `toml:"content"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
}

// ContentConfig selects the capability catalog.
type ContentConfig struct {
	// Source is "" for the embedded catalog, a file path or an http(s) URL.
	Source string `toml:"source"`
	// Watch reloads a file source when it changes.
	Watch bool `toml:"watch"`
}

// ServerConfig configures "eveshow serve".
type ServerConfig struct {
	Listen string `toml:"listen"`
	// Theme is the theme served to visitors without a cookie. Empty means
	// the local theme preference.
	Theme string `toml:"theme"`
	// RateLimit is the sustained diagram requests per second allowed per
	// client; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// CacheConfig configures the rendered diagram cache.
type CacheConfig struct {
	Backend    string        `toml:"backend"`
	Dir        string        `toml:"dir"`
	RedisURL   string        `toml:"redis_url"`
	TTL        time.Duration `toml:"ttl"`
	MaxEntries int           `toml:"max_entries"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          "127.0.0.1:8080",
			RateLimit:       10,
			RateBurst:       20,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend:    CacheFile,
			TTL:        7 * 24 * time.Hour,
			MaxEntries: 512,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := theme.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path (the default location when empty),
// applies environment overrides and validates the result. A missing file is
// not an error unless path was given explicitly.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return nil, fmt.Errorf("config file %s not found", path)
	default:
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables:
//
//   - EVESHOW_CONTENT: content.source
//   - EVESHOW_WATCH: content.watch
//   - EVESHOW_LISTEN: server.listen
//   - EVESHOW_SERVER_THEME: server.theme
//   - EVESHOW_RATE_LIMIT: server.rate_limit
//   - EVESHOW_CACHE: cache.backend
//   - EVESHOW_CACHE_DIR: cache.dir
//   - EVESHOW_REDIS_URL: cache.redis_url
//   - EVESHOW_CACHE_TTL: cache.ttl
//
// lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("EVESHOW_CONTENT", &c.Content.Source)
	str("EVESHOW_LISTEN", &c.Server.Listen)
	str("EVESHOW_SERVER_THEME", &c.Server.Theme)
	str("EVESHOW_CACHE", &c.Cache.Backend)
	str("EVESHOW_CACHE_DIR", &c.Cache.Dir)
	str("EVESHOW_REDIS_URL", &c.Cache.RedisURL)

	if v, ok := lookup("EVESHOW_WATCH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("EVESHOW_WATCH: %w", err)
		}
		c.Content.Watch = b
	}
	if v, ok := lookup("EVESHOW_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("EVESHOW_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = f
	}
	if v, ok := lookup("EVESHOW_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EVESHOW_CACHE_TTL: %w", err)
		}
		c.Cache.TTL = d
	}
	return nil
}

// Validate checks field values and normalizes the cache backend name.
func (c *Config) Validate() error {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.backend is redis but cache.redis_url is empty")
		}
	case "":
		c.Cache.Backend = CacheFile
	default:
		return fmt.Errorf("unknown cache.backend %q (want file, memory, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		c.Server.RateBurst = 1
	}
	if c.Server.Theme != "" {
		if _, err := theme.Parse(c.Server.Theme); err != nil {
			return fmt.Errorf("server.theme: %w", err)
		}
	}
	if c.Content.Watch && (c.Content.Source == "" || isURL(c.Content.Source)) {
		return fmt.Errorf("content.watch requires a file source, got %q", c.Content.Source)
	}
	return nil
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/eveshow (~/.cache/eveshow).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "eveshow"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "eveshow"), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
