package content

import (
	_ "embed"
	"strings"
)

//go:embed preamble.md
var preamble string

// Links listed at the end of llms.txt.
var Links = []struct{ Name, URL string }{
	{"Showcase", "https://web.incept5-evshow-staging.eh1.incept5.dev"},
	{"GitHub", "https://github.com/incept5/eve-horizon-showcase"},
	{"Incept5", "https://github.com/incept5"},
}

// LLMsTxt renders the plain-text platform reference: the fixed platform
// overview, one section per capability and the project links.
func LLMsTxt(c *Catalog) string {
	lines := []string{"## Capability Reference", ""}
	for _, cp := range c.All() {
		lines = append(lines, "### "+cp.Title, "")
		lines = append(lines, cp.Summary, "")
		for _, d := range cp.Details {
			lines = append(lines, "- "+d)
		}
		lines = append(lines, "")
		if len(cp.Commands) > 0 {
			lines = append(lines, "Commands:")
			for _, cmd := range cp.Commands {
				lines = append(lines, "  "+cmd.Cmd+" — "+cmd.Desc)
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, "## Links", "")
	for _, l := range Links {
		lines = append(lines, "- "+l.Name+": "+l.URL)
	}
	lines = append(lines, "")

	return preamble + strings.Join(lines, "\n")
}
