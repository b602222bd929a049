package site

import (
	"html/template"
	"strings"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/theme"
)

var funcMap = template.FuncMap{
	"accentStyle": accentStyle,
	"card":        card,
	"themeIcon":   themeIcon,
	"upper":       strings.ToUpper,
}

// accentStyle sets the --card-accent custom property for a capability card.
func accentStyle(color string, t theme.Theme) template.CSS {
	return template.CSS("--card-accent: " + content.Accent(color, t))
}

// themeIcon is the toggle glyph: a sun offers light mode, a moon dark mode.
func themeIcon(t theme.Theme) string {
	if t == theme.Dark {
		return "☀"
	}
	return "☾"
}

type cardView struct {
	Href  string
	Cap   *content.Capability
	Theme theme.Theme
}

func card(p homePage, c *content.Capability) cardView {
	return cardView{Href: "/" + c.ID, Cap: c, Theme: p.Theme}
}
