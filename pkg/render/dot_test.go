package render

import (
	"strings"
	"testing"

	"github.com/incept5/eve-showcase/pkg/mermaid"
	"github.com/incept5/eve-showcase/pkg/theme"
)

func mustParse(t *testing.T, src string) *mermaid.Diagram {
	t.Helper()
	d, err := mermaid.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestToDOTUsesPalette(t *testing.T) {
	d := mustParse(t, "graph LR\nA[Start] --> B{Check}")

	for _, th := range theme.All {
		t.Run(th.String(), func(t *testing.T) {
			p := theme.PaletteFor(th)
			dot := ToDOT(d, p)

			for _, want := range []string{
				"rankdir=LR",
				`bgcolor="transparent"`,
				`fillcolor="` + p.Surface + `"`,
				`fontcolor="` + p.Foreground + `"`,
				`edge [color="` + p.Line + `"`,
				`shape=diamond`,
				`color="` + p.Accent + `"`,
				`"A" -> "B"`,
			} {
				if !strings.Contains(dot, want) {
					t.Errorf("DOT missing %q:\n%s", want, dot)
				}
			}
		})
	}
}

func TestToDOTOpaqueBackground(t *testing.T) {
	p := theme.PaletteFor(theme.Light)
	p.Transparent = false
	dot := ToDOT(mustParse(t, "graph TD\nA"), p)
	if !strings.Contains(dot, `bgcolor="#f8fafc"`) {
		t.Errorf("opaque palette should set bgcolor:\n%s", dot)
	}
}

func TestToDOTClustersAndCompoundEdges(t *testing.T) {
	d := mustParse(t, `graph TD
  subgraph Jobs["Job Engine"]
    subgraph Workers
      W1[Worker]
    end
  end
  subgraph Empty
  end
  API --> Jobs
  Jobs -.-> Empty`)

	dot := ToDOT(d, theme.PaletteFor(theme.Dark))

	for _, want := range []string{
		"compound=true",
		`subgraph "cluster_Jobs" {`,
		`label="Job Engine"`,
		`    subgraph "cluster_Workers" {`,
		`"API" -> "W1" [lhead="cluster_Jobs"]`,
		`"W1" -> "__anchor_Empty" [style=dashed, ltail="cluster_Jobs", lhead="cluster_Empty"]`,
		`"__anchor_Empty" [shape=point, style=invis`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTEdgeStyles(t *testing.T) {
	dot := ToDOT(mustParse(t, `graph TD
  A -->|"says hi"| B
  B ==> C
  C --- D`), theme.PaletteFor(theme.Light))

	for _, want := range []string{
		`label=" says hi "`,
		`"B" -> "C" [penwidth=2]`,
		`"C" -> "D" [arrowhead=none]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTStatePseudoStates(t *testing.T) {
	dot := ToDOT(mustParse(t, "stateDiagram-v2\n[*] --> a\na --> [*]"), theme.PaletteFor(theme.Dark))
	if !strings.Contains(dot, `"__start" [label="", shape=circle`) {
		t.Errorf("start state not drawn as filled circle:\n%s", dot)
	}
	if !strings.Contains(dot, `"__end" [label="", shape=doublecircle`) {
		t.Errorf("end state not drawn as double circle:\n%s", dot)
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{`a "b"`, `"a \"b\""`},
		{"two\nlines", `"two\nlines"`},
		{`C:\dir`, `"C:\\dir"`},
		{"${org}|x", `"${org}|x"`},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
