package render

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/incept5/eve-showcase/pkg/cache"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/observability"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// DefaultCacheTTL is how long rendered diagrams are kept.
const DefaultCacheTTL = 7 * 24 * time.Hour

// CacheOptions configures a CachedEngine.
type CacheOptions struct {
	Keyer  cache.Keyer   // defaults to cache.NewDefaultKeyer()
	TTL    time.Duration // defaults to DefaultCacheTTL
	Name   string        // engine identity in cache keys; defaults to "graphviz"
	Logger *log.Logger   // defaults to log.Default()
}

// CachedEngine serves renders from a cache and collapses concurrent renders
// of the same (source, palette) into one call of the inner engine. Failed
// renders are not cached.
type CachedEngine struct {
	inner  Engine
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	name   string
	logger *log.Logger
	group  singleflight.Group
}

// NewCachedEngine wraps inner with c.
func NewCachedEngine(inner Engine, c cache.Cache, opts CacheOptions) *CachedEngine {
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.Name == "" {
		opts.Name = "graphviz"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &CachedEngine{
		inner:  inner,
		cache:  c,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
		name:   opts.Name,
		logger: opts.Logger,
	}
}

// Key returns the cache key for a render.
func (e *CachedEngine) Key(source string, p theme.Palette) string {
	return e.keyer.DiagramKey(cache.Hash([]byte(source)), cache.DiagramKeyOpts{
		Theme:   paletteTheme(p),
		Palette: paletteFingerprint(p),
		Engine:  e.name,
	})
}

// Render returns cached markup or renders it with the inner engine.
//
// The shared render runs detached from ctx so one caller giving up does
// not fail the others; ctx only bounds how long this caller waits.
func (e *CachedEngine) Render(ctx context.Context, source string, p theme.Palette) ([]byte, error) {
	key := e.Key(source, p)

	data, hit, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("diagram cache read failed", "err", err)
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, "diagram")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "diagram")

	ch := e.group.DoChan(key, func() (_ any, err error) {
		// DoChan re-panics on its own goroutine, out of reach of callers.
		defer func() {
			if v := recover(); v != nil {
				err = errors.New(errors.ErrCodeRenderFailed, "renderer panicked: %v", v)
			}
		}()
		rctx := context.WithoutCancel(ctx)
		start := time.Now()
		svg, err := e.inner.Render(rctx, source, p)
		if err != nil {
			return nil, err
		}
		e.logger.Debug("diagram rendered", "bytes", len(svg), "duration", time.Since(start))
		if err := e.cache.Set(rctx, key, svg, e.ttl); err != nil {
			e.logger.Warn("diagram cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(rctx, "diagram", len(svg))
		}
		return svg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

var _ Engine = (*CachedEngine)(nil)

func paletteTheme(p theme.Palette) string {
	for _, t := range theme.All {
		if theme.PaletteFor(t) == p {
			return t.String()
		}
	}
	return "custom"
}

func paletteFingerprint(p theme.Palette) string {
	values := p.Colors()
	if p.Transparent {
		values = append(values, "transparent")
	}
	return cache.Fingerprint(values...)
}
