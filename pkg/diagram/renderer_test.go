package diagram

import (
	"context"
	goerrors "errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/goleak"

	"github.com/incept5/eve-showcase/pkg/cache"
	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/observability"
	"github.com/incept5/eve-showcase/pkg/render"
	"github.com/incept5/eve-showcase/pkg/theme"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Test engine
// =============================================================================

// call is one engine invocation waiting for the test to resolve it.
type call struct {
	source  string
	palette theme.Palette
	ctx     context.Context
	reply   chan reply
}

type reply struct {
	out   []byte
	err   error
	panic any
}

func (c *call) succeed(markup string) { c.reply <- reply{out: []byte(markup)} }
func (c *call) fail(msg string)       { c.reply <- reply{err: goerrors.New(msg)} }

// manualEngine blocks every render until the test resolves it, ignoring
// context cancellation like a collaborator that takes unbounded time.
type manualEngine struct {
	calls chan *call
}

func newManualEngine() *manualEngine {
	return &manualEngine{calls: make(chan *call, 64)}
}

func (e *manualEngine) Render(ctx context.Context, source string, p theme.Palette) ([]byte, error) {
	c := &call{source: source, palette: p, ctx: ctx, reply: make(chan reply, 1)}
	e.calls <- c
	r := <-c.reply
	if r.panic != nil {
		panic(r.panic)
	}
	return r.out, r.err
}

func (e *manualEngine) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-e.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("engine was not called")
		return nil
	}
}

// recorder collects observed states.
type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) observe(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func quiet() Option {
	return WithLogger(log.NewWithOptions(discard{}, log.Options{}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func settle(t *testing.T, r *Renderer) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := r.Settle(ctx)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	return st
}

// =============================================================================
// Tests
// =============================================================================

func TestRenderSettlesWithSuccess(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	if err := r.Render(context.Background(), "  graph TD\nA-->B  ", theme.Dark); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Loading is visible before the engine has done anything.
	st := r.State()
	if !st.Loading || st.Result != nil {
		t.Fatalf("immediately after Render: %+v, want loading with no result", st)
	}

	c := eng.next(t)
	if c.source != "graph TD\nA-->B" {
		t.Errorf("engine got source %q, want it trimmed", c.source)
	}
	if c.palette != theme.PaletteFor(theme.Dark) {
		t.Errorf("engine got palette %+v, want dark palette", c.palette)
	}
	c.succeed("<svg>ok</svg>")

	st = settle(t, r)
	if st.Loading || st.Result == nil || st.Result.Failed() {
		t.Fatalf("settled state = %+v, want success", st)
	}
	if string(st.Result.Markup) != "<svg>ok</svg>" {
		t.Errorf("Markup = %q", st.Result.Markup)
	}
	if st.Request.Theme != theme.Dark {
		t.Errorf("Request.Theme = %s", st.Request.Theme)
	}
}

func TestRenderSettlesWithFailure(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	_ = r.Render(context.Background(), "graph TD\nA[oops", theme.Light)
	eng.next(t).fail("line 2: <unterminated> label")

	st := settle(t, r)
	if !st.Result.Failed() || st.Loading {
		t.Fatalf("settled state = %+v, want failure", st)
	}
	if st.Result.Err == "" {
		t.Error("failure message must not be empty")
	}
	markup := string(st.Result.Markup)
	if !strings.HasPrefix(markup, `<pre class="diagram-error">`) {
		t.Errorf("failure markup = %q", markup)
	}
	if strings.Contains(markup, "<unterminated>") {
		t.Error("failure message must be escaped in markup")
	}
}

func TestEmptyErrorMessageIsReplaced(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	_ = r.Render(context.Background(), "x", theme.Light)
	eng.next(t).fail("")

	if st := settle(t, r); st.Result.Err == "" {
		t.Error("failure message must not be empty")
	}
}

func TestPanickingEngineBecomesFailure(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	_ = r.Render(context.Background(), "x", theme.Dark)
	eng.next(t).reply <- reply{panic: "layout exploded"}

	st := settle(t, r)
	if !st.Result.Failed() || !strings.Contains(st.Result.Err, "layout exploded") {
		t.Errorf("settled state = %+v, want failure mentioning the panic", st)
	}
}

func TestPanickingCachedEngineBecomesFailure(t *testing.T) {
	inner := render.EngineFunc(func(ctx context.Context, src string, p theme.Palette) ([]byte, error) {
		panic("layout exploded")
	})
	eng := render.NewCachedEngine(inner, cache.NewNullCache(), render.CacheOptions{
		Logger: log.NewWithOptions(discard{}, log.Options{}),
	})
	r := NewRenderer(eng, quiet())
	defer r.Close()

	if err := r.Render(context.Background(), "graph TD\nA", theme.Light); err != nil {
		t.Fatal(err)
	}
	st := settle(t, r)
	if st.Loading || !st.Result.Failed() || !strings.Contains(st.Result.Err, "layout exploded") {
		t.Errorf("settled state = %+v, want failure mentioning the panic", st)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	tests := []struct {
		name       string
		resolveOld bool // resolve the superseded request first
		oldFails   bool
	}{
		{"newer resolves first", false, false},
		{"older resolves first", true, false},
		{"older failure resolves first", true, true},
		{"older failure resolves last", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discards := watchDiscards(t)
			eng := newManualEngine()
			rec := &recorder{}
			r := NewRenderer(eng, quiet(), WithObserver(rec.observe))
			defer r.Close()

			ctx := context.Background()
			_ = r.Render(ctx, "A", theme.Light)
			oldCall := eng.next(t)
			_ = r.Render(ctx, "B", theme.Dark)
			newCall := eng.next(t)

			resolveOld := func() {
				if tt.oldFails {
					oldCall.fail("old failure")
				} else {
					oldCall.succeed("<svg>A</svg>")
				}
			}
			if tt.resolveOld {
				resolveOld()
				waitDiscard(t, discards, "superseded")
				if st := r.State(); !st.Loading || st.Request.Source != "B" {
					t.Fatalf("stale completion changed state: %+v", st)
				}
				newCall.succeed("<svg>B</svg>")
			} else {
				newCall.succeed("<svg>B</svg>")
				settle(t, r)
				resolveOld()
			}
			r.wg.Wait()

			st := r.State()
			if string(st.Result.Markup) != "<svg>B</svg>" || st.Request.Source != "B" {
				t.Errorf("final state = %+v, want B", st)
			}
			for _, s := range rec.all() {
				if s.Request.Source == "A" && s.Result != nil {
					t.Errorf("observer saw a result for the superseded request: %+v", s)
				}
			}
		})
	}
}

func TestSupersededRequestIsCancelled(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	_ = r.Render(context.Background(), "A", theme.Dark)
	first := eng.next(t)
	_ = r.Render(context.Background(), "B", theme.Dark)
	second := eng.next(t)

	if first.ctx.Err() == nil {
		t.Error("superseded request context should be cancelled")
	}
	if second.ctx.Err() != nil {
		t.Error("current request context should be live")
	}
	first.succeed("a")
	second.succeed("b")
	settle(t, r)
}

func TestRandomResolutionOrder(t *testing.T) {
	const n = 20
	eng := newManualEngine()
	rec := &recorder{}
	r := NewRenderer(eng, quiet(), WithObserver(rec.observe))
	defer r.Close()

	calls := make([]*call, n)
	for i := 0; i < n; i++ {
		th := theme.All[i%2]
		_ = r.Render(context.Background(), fmt.Sprintf("src-%d", i), th)
		calls[i] = eng.next(t)
	}

	rng := rand.New(rand.NewSource(42))
	var wg sync.WaitGroup
	for _, i := range rng.Perm(n) {
		wg.Add(1)
		go func(c *call, i int) {
			defer wg.Done()
			if i%3 == 0 {
				c.fail(fmt.Sprintf("fail-%d", i))
				return
			}
			c.succeed(fmt.Sprintf("svg-%d", i))
		}(calls[i], i)
	}
	wg.Wait()
	r.wg.Wait()

	st := r.State()
	want := fmt.Sprintf("svg-%d", n-1)
	if st.Result == nil || string(st.Result.Markup) != want {
		t.Fatalf("final state = %+v, want markup %s", st, want)
	}

	var lastGen uint64
	for _, s := range rec.all() {
		if s.Generation < lastGen {
			t.Errorf("observer saw generation %d after %d", s.Generation, lastGen)
		}
		lastGen = s.Generation
		if s.Result != nil && s.Request.Source != fmt.Sprintf("src-%d", n-1) {
			t.Errorf("observer saw a stale result for %s", s.Request.Source)
		}
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	ignore := cmpopts.IgnoreFields(State{}, "Generation", "RequestID")

	once := func() State {
		eng := newManualEngine()
		r := NewRenderer(eng, quiet())
		defer r.Close()
		_ = r.Render(context.Background(), "A", theme.Dark)
		eng.next(t).succeed("<svg>A</svg>")
		return settle(t, r)
	}()

	twice := func() State {
		eng := newManualEngine()
		r := NewRenderer(eng, quiet())
		defer r.Close()
		_ = r.Render(context.Background(), "A", theme.Dark)
		_ = r.Render(context.Background(), "A", theme.Dark)
		eng.next(t).succeed("<svg>A</svg>")
		eng.next(t).succeed("<svg>A</svg>")
		st := settle(t, r)
		r.wg.Wait()
		return st
	}()

	if diff := cmp.Diff(once, twice, ignore); diff != "" {
		t.Errorf("settled state differs (-once +twice):\n%s", diff)
	}
}

func TestCloseDiscardsInFlightCompletion(t *testing.T) {
	discards := watchDiscards(t)
	eng := newManualEngine()
	rec := &recorder{}
	r := NewRenderer(eng, quiet(), WithObserver(rec.observe))

	_ = r.Render(context.Background(), "A", theme.Dark)
	c := eng.next(t)

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if c.ctx.Err() == nil {
		t.Error("Close should cancel the in-flight request")
	}
	before := r.State()
	seen := len(rec.all())

	c.succeed("<svg>late</svg>")
	waitDiscard(t, discards, "closed")
	r.wg.Wait()

	if diff := cmp.Diff(before, r.State()); diff != "" {
		t.Errorf("completion after Close changed state:\n%s", diff)
	}
	if got := len(rec.all()); got != seen {
		t.Errorf("observer called %d times after Close", got-seen)
	}

	err := r.Render(context.Background(), "B", theme.Dark)
	if !errors.Is(err, errors.ErrCodeRendererClosed) {
		t.Errorf("Render after Close = %v, want RENDERER_CLOSED", err)
	}
	if _, err := r.Settle(context.Background()); !errors.Is(err, errors.ErrCodeRendererClosed) {
		t.Errorf("Settle after Close = %v, want RENDERER_CLOSED", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestCloseWakesSettle(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())

	_ = r.Render(context.Background(), "A", theme.Dark)
	c := eng.next(t)

	errc := make(chan error, 1)
	go func() {
		_, err := r.Settle(context.Background())
		errc <- err
	}()
	time.Sleep(10 * time.Millisecond)
	_ = r.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, errors.ErrCodeRendererClosed) {
			t.Errorf("Settle = %v, want RENDERER_CLOSED", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Settle did not return after Close")
	}
	c.succeed("x")
	r.wg.Wait()
}

func TestSettleHonorsContext(t *testing.T) {
	eng := newManualEngine()
	r := NewRenderer(eng, quiet())
	defer r.Close()

	_ = r.Render(context.Background(), "A", theme.Dark)
	c := eng.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := r.Settle(ctx)
	if !goerrors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Settle = %v, want deadline exceeded", err)
	}
	if !st.Loading {
		t.Error("state should still be loading")
	}
	c.succeed("x")
	settle(t, r)
}

func TestSettleWithoutRequest(t *testing.T) {
	r := NewRenderer(newManualEngine(), quiet())
	defer r.Close()

	st, err := r.Settle(context.Background())
	if err != nil || st.Generation != 0 || st.Result != nil {
		t.Errorf("Settle on fresh renderer = %+v, %v", st, err)
	}
}

func TestRenderRejectsInvalidTheme(t *testing.T) {
	rec := &recorder{}
	r := NewRenderer(newManualEngine(), quiet(), WithObserver(rec.observe))
	defer r.Close()

	err := r.Render(context.Background(), "A", theme.Theme("sepia"))
	if !errors.Is(err, errors.ErrCodeInvalidTheme) {
		t.Errorf("Render = %v, want INVALID_THEME", err)
	}
	if st := r.State(); st.Generation != 0 || st.Loading {
		t.Errorf("invalid request changed state: %+v", st)
	}
	if len(rec.all()) != 0 {
		t.Error("observer notified for an invalid request")
	}
}

func TestObserverSeesLoadingThenResult(t *testing.T) {
	eng := newManualEngine()
	rec := &recorder{}
	r := NewRenderer(eng, quiet(), WithObserver(func(s State) {
		rec.observe(s)
	}))
	defer r.Close()

	_ = r.Render(context.Background(), "A", theme.Light)
	eng.next(t).succeed("<svg/>")
	settle(t, r)

	got := rec.all()
	if len(got) != 2 {
		t.Fatalf("observer called %d times, want 2", len(got))
	}
	if !got[0].Loading || got[0].Result != nil {
		t.Errorf("first notification = %+v, want loading", got[0])
	}
	if got[1].Loading || got[1].Result == nil || got[1].Generation != got[0].Generation {
		t.Errorf("second notification = %+v, want settled result for the same generation", got[1])
	}
}

// discardHooks reports discarded completions on a channel.
type discardHooks struct {
	observability.NoopRenderHooks
	reasons chan string
}

func (h discardHooks) OnRenderDiscarded(_ context.Context, _ string, reason string) {
	h.reasons <- reason
}

func watchDiscards(t *testing.T) <-chan string {
	t.Helper()
	h := discardHooks{reasons: make(chan string, 64)}
	observability.SetRenderHooks(h)
	t.Cleanup(observability.Reset)
	return h.reasons
}

func waitDiscard(t *testing.T, reasons <-chan string, want string) {
	t.Helper()
	select {
	case got := <-reasons:
		if got != want {
			t.Errorf("discard reason = %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stale completion was never processed")
	}
}
