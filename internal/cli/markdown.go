package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/incept5/eve-showcase/pkg/content"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// capabilityMarkdown renders a capability as a markdown document for the
// terminal views.
func capabilityMarkdown(c *content.Capability) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.Title)
	if c.Subtitle != "" {
		fmt.Fprintf(&b, "_%s_\n\n", c.Subtitle)
	}
	if c.Summary != "" {
		b.WriteString(c.Summary + "\n\n")
	}

	if len(c.Details) > 0 {
		b.WriteString("## How It Works\n\n")
		for _, d := range c.Details {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\n")
	}

	if src := strings.TrimSpace(c.Diagram); src != "" {
		b.WriteString("## Architecture\n\n")
		fence(&b, "mermaid", src)
	}

	if src := strings.TrimSpace(c.ManifestExample); src != "" {
		b.WriteString("## Manifest\n\n")
		fence(&b, "yaml", src)
	}

	if len(c.Commands) > 0 {
		b.WriteString("## Commands\n\n")
		b.WriteString("| Command | Description |\n")
		b.WriteString("| --- | --- |\n")
		for _, cmd := range c.Commands {
			fmt.Fprintf(&b, "| `%s` | %s |\n", cell(cmd.Cmd), cell(cmd.Desc))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// fence writes a fenced code block, lengthening the fence when the body
// itself contains backticks.
func fence(b *strings.Builder, lang, body string) {
	marker := "```"
	for strings.Contains(body, marker) {
		marker += "`"
	}
	fmt.Fprintf(b, "%s%s\n%s\n%s\n\n", marker, lang, body, marker)
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// newMarkdownRenderer creates a glamour renderer styled for t.
func newMarkdownRenderer(t theme.Theme, width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}
	return glamour.NewTermRenderer(
		glamour.WithStylePath(t.String()),
		glamour.WithWordWrap(width),
	)
}
