package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/goccy/go-graphviz"

	"github.com/incept5/eve-showcase/pkg/errors"
	"github.com/incept5/eve-showcase/pkg/mermaid"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// GraphvizEngine renders diagrams with an embedded Graphviz. The Graphviz
// instance is created on first use and renders are serialized through it.
type GraphvizEngine struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

// NewGraphvizEngine creates an engine. Call Close to release Graphviz.
func NewGraphvizEngine() *GraphvizEngine {
	return &GraphvizEngine{}
}

// Render parses source, lays it out and returns SVG markup.
func (e *GraphvizEngine) Render(ctx context.Context, source string, p theme.Palette) ([]byte, error) {
	d, err := mermaid.Parse(source)
	if err != nil {
		return nil, err
	}
	svg, err := e.RenderDOT(ctx, ToDOT(d, p))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "render diagram")
	}
	return svg, nil
}

// RenderDOT lays out a DOT graph and returns normalized SVG.
func (e *GraphvizEngine) RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A request may have been superseded while it waited for the lock.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.gv == nil {
		gv, err := graphviz.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("init graphviz: %w", err)
		}
		e.gv = gv
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := e.gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return normalizeSVG(buf.Bytes()), nil
}

// Close releases the Graphviz instance.
func (e *GraphvizEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gv == nil {
		return nil
	}
	err := e.gv.Close()
	e.gv = nil
	return err
}

var _ Engine = (*GraphvizEngine)(nil)

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeSVG drops the XML prolog and doctype so the markup can be
// inlined, and rewrites the root element to a unit-less viewBox that
// scales with its container.
func normalizeSVG(svg []byte) []byte {
	if i := bytes.Index(svg, []byte("<svg")); i > 0 {
		svg = svg[i:]
	}

	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" class="diagram-svg" role="img" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
