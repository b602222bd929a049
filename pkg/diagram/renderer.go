package diagram

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/observability"
	"github.com/incept5/eve-showcase/pkg/render"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithObserver registers fn to be called on every state change.
func WithObserver(fn Observer) Option {
	return func(r *Renderer) { r.observer = fn }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// Renderer coordinates render requests for one consumer. It is safe for
// concurrent use.
type Renderer struct {
	engine   render.Engine
	observer Observer
	logger   *log.Logger

	// emitMu is taken before mu by every state change so observers see
	// changes in the order they were applied.
	emitMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	state  State
	cancel context.CancelFunc // cancels the in-flight request, if any
	closed bool
	wake   chan struct{} // closed and replaced on every state change

	wg sync.WaitGroup
}

// NewRenderer creates a Renderer that delegates to engine.
func NewRenderer(engine render.Engine, opts ...Option) *Renderer {
	r := &Renderer{
		engine: engine,
		wake:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// Render starts a request for source in theme t. Before it returns the state
// is loading with no result, and any request still in flight is superseded:
// its context is cancelled and whatever it produces is discarded.
//
// Render fails only for an invalid theme or a closed renderer; rendering
// errors are reported through the state. The source is trimmed. ctx bounds
// the engine call.
func (r *Renderer) Render(ctx context.Context, source string, t theme.Theme) error {
	if !t.Valid() {
		_, err := theme.Parse(string(t))
		return err
	}
	req := Request{Source: strings.TrimSpace(source), Theme: t}

	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.New(errors.ErrCodeRendererClosed, "renderer is closed")
	}
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	gen := r.gen
	id := uuid.NewString()
	rctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = State{Request: req, Loading: true, Generation: gen, RequestID: id}
	r.broadcast()
	snap := r.state
	r.wg.Add(1)
	r.mu.Unlock()

	r.notify(snap)

	r.logger.Debug("render requested", "request", id, "generation", gen, "theme", t)
	go r.run(rctx, cancel, gen, id, req)
	return nil
}

func (r *Renderer) run(ctx context.Context, cancel context.CancelFunc, gen uint64, id string, req Request) {
	defer r.wg.Done()
	defer cancel()

	start := time.Now()
	observability.Render().OnRenderStart(ctx, id, req.Theme.String())
	markup, err := r.invoke(ctx, req)
	r.complete(gen, id, req, markup, err, time.Since(start))
}

// invoke calls the engine, converting a panic into an error.
func (r *Renderer) invoke(ctx context.Context, req Request) (out []byte, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.New(errors.ErrCodeRenderFailed, "renderer panicked: %v", v)
		}
	}()
	return r.engine.Render(ctx, req.Source, theme.PaletteFor(req.Theme))
}

func (r *Renderer) complete(gen uint64, id string, req Request, markup []byte, err error, elapsed time.Duration) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	if gen != r.gen || r.closed {
		reason := "superseded"
		if r.closed {
			reason = "closed"
		}
		r.mu.Unlock()
		r.logger.Debug("render discarded", "request", id, "generation", gen, "reason", reason)
		observability.Render().OnRenderDiscarded(context.Background(), id, reason)
		return
	}

	res := &Result{Markup: markup}
	if err != nil {
		res.Err = render.FailureMessage(err)
		res.Markup = render.FailureMarkup(res.Err)
	}
	r.state = State{Request: req, Result: res, Generation: gen, RequestID: id}
	r.cancel = nil
	r.broadcast()
	snap := r.state
	r.mu.Unlock()

	if err != nil {
		r.logger.Debug("render failed", "request", id, "err", res.Err, "duration", elapsed)
	} else {
		r.logger.Debug("render complete", "request", id, "bytes", len(markup), "duration", elapsed)
	}
	observability.Render().OnRenderComplete(context.Background(), id, req.Theme.String(), elapsed, err)
	r.notify(snap)
}

// State returns the current state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Settle waits until the latest request has a result and returns the state.
// If no request was ever made it returns the zero State immediately. It
// fails when ctx is done or the renderer is closed while waiting.
func (r *Renderer) Settle(ctx context.Context) (State, error) {
	for {
		r.mu.Lock()
		st, closed, wake := r.state, r.closed, r.wake
		r.mu.Unlock()

		if closed {
			return st, errors.New(errors.ErrCodeRendererClosed, "renderer is closed")
		}
		if st.Generation == 0 || st.Settled() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-wake:
		}
	}
}

// Close tears the renderer down. The in-flight request, if any, is marked
// stale and cancelled; its completion changes nothing and notifies nobody.
// Close does not wait for the engine to return. Calling Close twice is a
// no-op.
func (r *Renderer) Close() error {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.gen++
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.broadcast()
	return nil
}

// broadcast wakes Settle callers. Callers hold mu.
func (r *Renderer) broadcast() {
	close(r.wake)
	r.wake = make(chan struct{})
}

// notify calls the observer. Callers hold emitMu.
func (r *Renderer) notify(s State) {
	if r.observer != nil {
		r.observer(s)
	}
}
