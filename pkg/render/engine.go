package render

import (
	"context"
	"html"
	"strings"

	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// Engine produces markup from diagram source and a palette. Render may
// block for an unbounded time; implementations should return early when
// ctx is done but callers must not rely on it.
type Engine interface {
	Render(ctx context.Context, source string, p theme.Palette) ([]byte, error)
}

// EngineFunc adapts a function to [Engine].
type EngineFunc func(ctx context.Context, source string, p theme.Palette) ([]byte, error)

// Render calls f.
func (f EngineFunc) Render(ctx context.Context, source string, p theme.Palette) ([]byte, error) {
	return f(ctx, source, p)
}

// FailureMessage returns the text shown for a failed render. It is never
// empty.
func FailureMessage(err error) string {
	if err == nil {
		return "diagram rendering failed"
	}
	msg := strings.TrimSpace(errors.UserMessage(err))
	if msg == "" {
		return "diagram rendering failed"
	}
	return msg
}

// FailureMarkup is the inline diagnostic shown in place of a diagram.
func FailureMarkup(msg string) []byte {
	return []byte(`<pre class="diagram-error">` + html.EscapeString(msg) + `</pre>`)
}
