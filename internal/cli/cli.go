package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/incept5/eve-showcase/internal/config"
	"github.com/incept5/eve-showcase/pkg/cache"
	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/observability"
	"github.com/incept5/eve-showcase/pkg/render"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "eveshow"

	// themeEnv seeds the theme preference when nothing is stored yet.
	themeEnv = "EVESHOW_THEME"

	// redisConnectTimeout bounds the initial redis handshake.
	redisConnectTimeout = 5 * time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags.
	configPath string
	contentSrc string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches to debug logging and reports render, cache and HTTP
// events through the logger.
func (c *CLI) SetVerbose(verbose bool) {
	if !verbose {
		c.SetLogLevel(LogInfo)
		return
	}
	c.SetLogLevel(LogDebug)
	observability.NewLogHooks(c.Logger).Install()
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the config file and applies the --content flag.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.contentSrc != "" {
		cfg.Content.Source = c.contentSrc
	}
	if c.noCache {
		cfg.Cache.Backend = config.CacheNone
	}
	return cfg, nil
}

// openCatalog loads the configured catalog. Remote catalogs keep a fallback
// copy in the file cache when one is available.
func (c *CLI) openCatalog(ctx context.Context, cfg *config.Config) (*content.Catalog, error) {
	opts := content.LoaderOptions{Logger: c.Logger}
	if cfg.Cache.Backend != config.CacheNone {
		if dir, err := cfg.CacheDir(); err == nil {
			if fc, err := cache.NewFileCache(dir); err == nil {
				opts.Cache = fc
				opts.Keyer = cache.NewScopedKeyer(nil, "content")
			}
		}
	}
	return content.NewLoader(opts).Open(ctx, cfg.Content.Source)
}

// newCache opens the configured diagram cache backend.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.MaxEntries), nil
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
		defer cancel()
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL, Prefix: appName + ":"})
	default:
		dir, err := cfg.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// engine bundles the render engine with the resources it holds.
type engine struct {
	render.Engine
	gv    *render.GraphvizEngine
	cache cache.Cache
}

func (e *engine) Close() error {
	return errors.Join(e.gv.Close(), e.cache.Close())
}

// newEngine builds the cached Graphviz engine.
func (c *CLI) newEngine(ctx context.Context, cfg *config.Config) (*engine, error) {
	store, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gv := render.NewGraphvizEngine()
	cached := render.NewCachedEngine(gv, store, render.CacheOptions{
		TTL:    cfg.Cache.TTL,
		Logger: c.Logger,
	})
	return &engine{Engine: cached, gv: gv, cache: store}, nil
}

// preference opens the persisted theme preference. When nothing is stored,
// EVESHOW_THEME is used, then the terminal background.
func (c *CLI) preference(ctx context.Context) (*theme.Preference, error) {
	store, err := theme.NewFileStore("")
	if err != nil {
		c.Logger.Debug("no config dir, theme preference is not persisted", "err", err)
		return theme.Init(ctx, theme.NewMemoryStore(), fallbackTheme())
	}
	return theme.Init(ctx, store, fallbackTheme())
}

func fallbackTheme() theme.Theme {
	if t, err := theme.Parse(os.Getenv(themeEnv)); err == nil {
		return t
	}
	return theme.Detect()
}
