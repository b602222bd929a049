// Package pkg provides the libraries behind the Eve Horizon capability
// showcase.
//
// # Overview
//
// The showcase is a catalog of platform capabilities. Each capability has a
// card on the home page and a detail page with an architecture diagram
// written in a small mermaid dialect. Diagrams are drawn by Graphviz in the
// colors of the current light or dark theme. The pkg directory is organized
// by concern:
//
//  1. [content] - The catalog: types, validation, YAML loading, llms.txt
//  2. [diagram] - The diagram renderer state machine used by every consumer
//  3. [mermaid], [render] - Parsing and drawing diagram source
//  4. [site] - The HTTP site and its static export
//  5. [theme], [cache], [observability], [errors] - Shared infrastructure
//
// # Architecture
//
// The data flow for one diagram on a page:
//
//	catalog.yaml
//	     ↓
//	[content] Catalog → Capability.Diagram (mermaid source)
//	     ↓
//	[diagram] Renderer.Render(ctx, source, theme)
//	     ↓
//	[render] CachedEngine → GraphvizEngine
//	     ↓           ↑
//	[mermaid] Parse → DOT (palette from [theme])
//	     ↓
//	SVG markup, or an inline diagnostic on failure
//
// # Quick Start
//
// Render one capability diagram:
//
//	import (
//	    "github.com/incept5/eve-showcase/pkg/content"
//	    "github.com/incept5/eve-showcase/pkg/diagram"
//	    "github.com/incept5/eve-showcase/pkg/render"
//	    "github.com/incept5/eve-showcase/pkg/theme"
//	)
//
//	engine := render.NewGraphvizEngine()
//	defer engine.Close()
//
//	cp, _ := content.Default().Get("onboarding")
//
//	r := diagram.NewRenderer(engine)
//	defer r.Close()
//	_ = r.Render(ctx, cp.Diagram, theme.Dark)
//	st, _ := r.Settle(ctx)
//	svg := st.Result.Markup
//
// Serve the site:
//
//	s, _ := site.New(site.Options{
//	    Store:  content.NewStore(content.Default()),
//	    Engine: engine,
//	})
//	http.ListenAndServe(":8080", s.Handler())
//
// # Main Packages
//
// [content] - Capability and Catalog types. The default catalog is embedded;
// others load from a file or an http(s) URL with retries and a cached
// fallback. A Store swaps catalogs atomically and can watch a file.
//
// [diagram] - Renderer coordinates render requests for one consumer: only
// the latest request may change the visible state, superseded requests are
// cancelled and discarded, and Close tears everything down.
//
// [mermaid] - Parser for flowchart and state diagrams into a Diagram model.
//
// [render] - The Engine interface, DOT generation, a Graphviz engine and a
// cached engine that deduplicates concurrent identical renders.
//
// [site] - chi router serving the home, detail and llms pages, diagram
// endpoints and the theme toggle; Export writes the same pages as files.
//
// [theme] - Light and dark themes, their palettes and the persisted
// preference.
//
// [cache] - Cache interface with file, memory, redis and null backends.
//
// [observability] - Render, cache and HTTP hooks.
//
// [errors] - Structured errors with codes.
//
// # Testing
//
// Run tests:
//
//	go test ./...                 # All tests
//	go test ./pkg/diagram/...     # Specific package
//	go test -run Example ./pkg/...
//
// [content]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/content
// [diagram]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/diagram
// [mermaid]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/mermaid
// [render]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/render
// [site]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/site
// [theme]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/theme
// [cache]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/cache
// [observability]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/observability
// [errors]: https://pkg.go.dev/github.com/incept5/eve-showcase/pkg/errors
package pkg
