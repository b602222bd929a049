package render

import (
	"context"
	goerrors "errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/incept5/eve-showcase/pkg/cache"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/theme"
)

type countingEngine struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
}

func (e *countingEngine) Render(ctx context.Context, src string, p theme.Palette) ([]byte, error) {
	e.calls.Add(1)
	if e.release != nil {
		<-e.release
	}
	if e.err != nil {
		return nil, e.err
	}
	return []byte("<svg>" + src + p.Background + "</svg>"), nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(discard{}, log.Options{})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestCachedEngineServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingEngine{}
	e := NewCachedEngine(inner, cache.NewMemoryCache(0), CacheOptions{Logger: quietLogger()})

	dark := theme.PaletteFor(theme.Dark)
	first, err := e.Render(ctx, "graph TD\nA", dark)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, _ := e.Render(ctx, "graph TD\nA", dark)
	if string(first) != string(second) {
		t.Error("cached result differs from first render")
	}
	if n := inner.calls.Load(); n != 1 {
		t.Errorf("inner engine called %d times, want 1", n)
	}

	// A different palette is a different artifact.
	if _, err := e.Render(ctx, "graph TD\nA", theme.PaletteFor(theme.Light)); err != nil {
		t.Fatal(err)
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner engine called %d times after theme change, want 2", n)
	}
}

func TestCachedEngineDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	inner := &countingEngine{err: goerrors.New("layout failed")}
	e := NewCachedEngine(inner, cache.NewMemoryCache(0), CacheOptions{Logger: quietLogger()})

	for i := 0; i < 2; i++ {
		if _, err := e.Render(ctx, "x", theme.PaletteFor(theme.Dark)); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := inner.calls.Load(); n != 2 {
		t.Errorf("inner engine called %d times, want 2", n)
	}
}

func TestCachedEngineRecoversPanics(t *testing.T) {
	ctx := context.Background()
	calls := 0
	inner := EngineFunc(func(ctx context.Context, src string, p theme.Palette) ([]byte, error) {
		calls++
		if calls == 1 {
			panic("layout exploded")
		}
		return []byte("<svg/>"), nil
	})
	e := NewCachedEngine(inner, cache.NewMemoryCache(0), CacheOptions{Logger: quietLogger()})

	_, err := e.Render(ctx, "x", theme.PaletteFor(theme.Dark))
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeRenderFailed)
	}
	if !strings.Contains(err.Error(), "layout exploded") {
		t.Errorf("err = %q, want panic value in message", err)
	}

	// The panic is not cached; the next render goes through.
	svg, err := e.Render(ctx, "x", theme.PaletteFor(theme.Dark))
	if err != nil || string(svg) != "<svg/>" {
		t.Errorf("second render = %q, %v", svg, err)
	}
}

func TestCachedEngineCollapsesConcurrentRenders(t *testing.T) {
	ctx := context.Background()
	inner := &countingEngine{release: make(chan struct{})}
	e := NewCachedEngine(inner, cache.NewNullCache(), CacheOptions{Logger: quietLogger()})

	const n = 8
	var wg sync.WaitGroup
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = e.Render(ctx, "same", theme.PaletteFor(theme.Dark))
		}(i)
	}

	// Give the callers time to join the in-flight render.
	time.Sleep(50 * time.Millisecond)
	close(inner.release)
	wg.Wait()

	if c := inner.calls.Load(); c != 1 {
		t.Errorf("inner engine called %d times, want 1", c)
	}
	for i, r := range results {
		if string(r) != string(results[0]) || len(r) == 0 {
			t.Errorf("caller %d got %q", i, r)
		}
	}
}

func TestCachedEngineCallerCancellation(t *testing.T) {
	inner := &countingEngine{release: make(chan struct{})}
	c := cache.NewMemoryCache(0)
	e := NewCachedEngine(inner, c, CacheOptions{Logger: quietLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := e.Render(ctx, "slow", theme.PaletteFor(theme.Dark))
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	if err := <-done; !goerrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	// The detached render still completes and fills the cache.
	close(inner.release)
	key := e.Key("slow", theme.PaletteFor(theme.Dark))
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, hit, _ := c.Get(context.Background(), key); hit {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("detached render never populated the cache")
}

func TestPaletteTheme(t *testing.T) {
	if got := paletteTheme(theme.PaletteFor(theme.Dark)); got != "dark" {
		t.Errorf("paletteTheme(dark) = %s", got)
	}
	p := theme.PaletteFor(theme.Light)
	p.Accent = "#000000"
	if got := paletteTheme(p); got != "custom" {
		t.Errorf("paletteTheme(modified) = %s, want custom", got)
	}
}
