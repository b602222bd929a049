package diagram

import "github.com/incept5/eve-showcase/pkg/theme"

// Request identifies what to draw. Two requests are the same diagram when
// both fields are equal.
type Request struct {
	Source string
	Theme  theme.Theme
}

// Result is the outcome of a render. Exactly one of the two forms is set:
// on success Err is empty and Markup holds the diagram; on failure Err holds
// a non-empty message and Markup the inline diagnostic for it.
//
// Results are shared between observers and must not be modified.
type Result struct {
	Markup []byte
	Err    string
}

// Failed reports whether the render failed.
func (r *Result) Failed() bool {
	return r != nil && r.Err != ""
}

// State is what a consumer shows. While Loading is true, Result is nil.
type State struct {
	Request    Request
	Result     *Result
	Loading    bool
	Generation uint64 // increases with every Render call
	RequestID  string // correlates log lines and hooks for one request
}

// Settled reports whether the state holds a result for its request.
func (s State) Settled() bool {
	return !s.Loading && s.Result != nil
}

// Observer is notified of every state change in generation order. Calls are
// serialized. An observer may call [Renderer.State] but must not call
// Render, Settle or Close on the same renderer.
type Observer func(State)
