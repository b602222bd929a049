// Package render turns diagram source into SVG markup.
//
// # Overview
//
// The [Engine] interface is the rendering collaborator used by package
// diagram: given source text and a theme palette it produces markup or an
// error, possibly after a long time. Implementations:
//
//   - [GraphvizEngine]: parses the source with package mermaid, converts it
//     to Graphviz DOT with [ToDOT] and lays it out with go-graphviz.
//   - [CachedEngine]: wraps another engine with a [cache.Cache] and
//     de-duplicates concurrent identical renders.
//
// # Usage
//
//	gv := render.NewGraphvizEngine()
//	defer gv.Close()
//
//	eng := render.NewCachedEngine(gv, cache.NewMemoryCache(0), render.CacheOptions{})
//	svg, err := eng.Render(ctx, src, theme.PaletteFor(theme.Dark))
//	if err != nil {
//	    return render.FailureMarkup(render.FailureMessage(err))
//	}
//
// [cache.Cache]: github.com/incept5/eve-showcase/pkg/cache.Cache
package render
