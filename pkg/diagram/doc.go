// Package diagram keeps a view's rendered diagram in step with the latest
// request for it.
//
// A [Renderer] belongs to one consumer (a page view, a TUI pane, a CLI
// command). Each call to [Renderer.Render] starts a new request: the state
// switches to loading synchronously, the work is handed to a [render.Engine]
// on a goroutine, and when it finishes the result is written to the state
// only if no newer request has started in the meantime. Results of
// superseded requests, successful or not, are dropped without notifying
// anyone. After [Renderer.Close] nothing is written or notified at all.
//
// Staleness is decided by a generation number compared under the
// renderer's lock, so the outcome does not depend on the order in which
// engine calls return.
//
//	r := diagram.NewRenderer(engine, diagram.WithObserver(func(s diagram.State) {
//	    if !s.Loading {
//	        show(s.Result.Markup)
//	    }
//	}))
//	defer r.Close()
//
//	_ = r.Render(ctx, src, theme.Dark)
//	st, err := r.Settle(ctx)
//
// [render.Engine]: github.com/incept5/eve-showcase/pkg/render.Engine
package diagram
