package site

import (
	"html"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/incept5/eve-showcase/pkg/theme"
)

var highlightStyles = map[theme.Theme]string{
	theme.Light: "github",
	theme.Dark:  "github-dark",
}

var highlightFormatter = chromahtml.New(
	chromahtml.WithClasses(false),
	chromahtml.PreventSurroundingPre(false),
	chromahtml.TabWidth(2),
)

// highlightYAML returns code as highlighted HTML using the chroma style for
// t. On a highlighter error the code is returned escaped in a plain <pre>.
func highlightYAML(code string, t theme.Theme) template.HTML {
	lexer := lexers.Get("yaml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyles[t])
	if style == nil {
		style = styles.Fallback
	}

	iter, err := lexer.Tokenise(nil, code)
	if err == nil {
		var b strings.Builder
		if err = highlightFormatter.Format(&b, style, iter); err == nil {
			return template.HTML(b.String())
		}
	}
	return template.HTML("<pre>" + html.EscapeString(code) + "</pre>")
}
