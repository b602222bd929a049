package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/incept5/eve-showcase/pkg/mermaid"
	"github.com/incept5/eve-showcase/pkg/theme"
)

// ToDOT converts a parsed diagram to Graphviz DOT using the palette's
// colors. Subgraphs become clusters; edges that end on a subgraph are drawn
// to its border using compound edges.
func ToDOT(d *mermaid.Diagram, p theme.Palette) string {
	w := &dotWriter{d: d, p: p, anchors: make(map[string]string)}
	w.computeAnchors()
	return w.write()
}

type dotWriter struct {
	d       *mermaid.Diagram
	p       theme.Palette
	buf     bytes.Buffer
	anchors map[string]string // subgraph id -> node id used as edge endpoint
	hollow  []string          // subgraphs that need an invisible anchor node
}

func (w *dotWriter) write() string {
	bg := `"transparent"`
	if !w.p.Transparent {
		bg = dotQuote(w.p.Background)
	}

	fmt.Fprintf(&w.buf, "digraph G {\n")
	fmt.Fprintf(&w.buf, "  rankdir=%s;\n", rankdir(w.d.Direction))
	fmt.Fprintf(&w.buf, "  bgcolor=%s;\n", bg)
	w.buf.WriteString("  compound=true;\n")
	w.buf.WriteString("  ranksep=0.5;\n")
	w.buf.WriteString("  nodesep=0.3;\n")
	fmt.Fprintf(&w.buf, "  fontname=%s;\n", dotQuote(fontName))
	fmt.Fprintf(&w.buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%s, color=%s, fontcolor=%s, fontname=%s, fontsize=12, margin=\"0.2,0.1\"];\n",
		dotQuote(w.p.Surface), dotQuote(w.p.Border), dotQuote(w.p.Foreground), dotQuote(fontName))
	fmt.Fprintf(&w.buf, "  edge [color=%s, fontcolor=%s, fontname=%s, fontsize=10, arrowsize=0.7];\n",
		dotQuote(w.p.Line), dotQuote(w.p.Muted), dotQuote(fontName))
	w.buf.WriteString("\n")

	for _, sg := range w.d.Roots() {
		w.writeCluster(sg, 1)
	}
	for _, n := range w.d.TopLevelNodes() {
		w.writeNode(n, "  ")
	}

	if len(w.d.Edges) > 0 {
		w.buf.WriteString("\n")
	}
	for _, e := range w.d.Edges {
		w.writeEdge(e)
	}
	w.buf.WriteString("}\n")
	return w.buf.String()
}

const fontName = "Helvetica,Arial,sans-serif"

func rankdir(d mermaid.Direction) string {
	switch d {
	case mermaid.BottomTop, mermaid.LeftRight, mermaid.RightLeft:
		return string(d)
	}
	return "TB"
}

func (w *dotWriter) writeCluster(sg *mermaid.Subgraph, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(&w.buf, "%ssubgraph %s {\n", indent, dotQuote(clusterName(sg.ID)))
	fmt.Fprintf(&w.buf, "%s  label=%s;\n", indent, dotQuote(sg.Label))
	fmt.Fprintf(&w.buf, "%s  style=\"rounded,dashed\";\n", indent)
	fmt.Fprintf(&w.buf, "%s  color=%s;\n", indent, dotQuote(w.p.Border))
	fmt.Fprintf(&w.buf, "%s  fontcolor=%s;\n", indent, dotQuote(w.p.Muted))
	fmt.Fprintf(&w.buf, "%s  fontsize=11;\n", indent)

	for _, child := range sg.Children {
		if c := w.d.Subgraph(child); c != nil {
			w.writeCluster(c, depth+1)
		}
	}
	for _, id := range sg.Nodes {
		if n := w.d.Node(id); n != nil {
			w.writeNode(n, indent+"  ")
		}
	}
	for _, id := range w.hollow {
		if id == sg.ID {
			fmt.Fprintf(&w.buf, "%s  %s [shape=point, style=invis, width=0.01, label=\"\"];\n", indent, dotQuote(anchorName(sg.ID)))
		}
	}
	fmt.Fprintf(&w.buf, "%s}\n", indent)
}

func (w *dotWriter) writeNode(n *mermaid.Node, indent string) {
	attrs := []string{"label=" + dotQuote(n.Label)}
	attrs = append(attrs, w.shapeAttrs(n.Shape)...)
	fmt.Fprintf(&w.buf, "%s%s [%s];\n", indent, dotQuote(n.ID), strings.Join(attrs, ", "))
}

func (w *dotWriter) shapeAttrs(s mermaid.Shape) []string {
	switch s {
	case mermaid.ShapeRect:
		return []string{`style="filled"`}
	case mermaid.ShapeStadium:
		return []string{`shape=box`, `style="rounded,filled,bold"`}
	case mermaid.ShapeCylinder:
		return []string{`shape=cylinder`, `style="filled"`}
	case mermaid.ShapeDiamond:
		return []string{`shape=diamond`, `style="filled"`, "color=" + dotQuote(w.p.Accent)}
	case mermaid.ShapeCircle:
		return []string{`shape=circle`, `style="filled"`}
	case mermaid.ShapeStart:
		return []string{`shape=circle`, `style="filled"`, "fillcolor=" + dotQuote(w.p.Foreground), `width=0.2`, `fixedsize=true`}
	case mermaid.ShapeEnd:
		return []string{`shape=doublecircle`, `style="filled"`, "fillcolor=" + dotQuote(w.p.Foreground), `width=0.15`, `fixedsize=true`}
	}
	return nil // rounded box from the node defaults
}

func (w *dotWriter) writeEdge(e *mermaid.Edge) {
	from, ltail := w.endpoint(e.From)
	to, lhead := w.endpoint(e.To)

	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, "label="+dotQuote(" "+e.Label+" "))
	}
	switch e.Style {
	case mermaid.LineDotted:
		attrs = append(attrs, `style=dashed`)
	case mermaid.LineThick:
		attrs = append(attrs, `penwidth=2`)
	}
	if !e.Arrow {
		attrs = append(attrs, `arrowhead=none`)
	}
	if ltail != "" {
		attrs = append(attrs, "ltail="+dotQuote(ltail))
	}
	if lhead != "" {
		attrs = append(attrs, "lhead="+dotQuote(lhead))
	}

	fmt.Fprintf(&w.buf, "  %s -> %s", dotQuote(from), dotQuote(to))
	if len(attrs) > 0 {
		fmt.Fprintf(&w.buf, " [%s]", strings.Join(attrs, ", "))
	}
	w.buf.WriteString(";\n")
}

// endpoint maps an edge end to a node id and, for subgraphs, the cluster
// name used for lhead/ltail.
func (w *dotWriter) endpoint(id string) (node, cluster string) {
	if w.d.Node(id) != nil {
		return id, ""
	}
	if anchor, ok := w.anchors[id]; ok {
		return anchor, clusterName(id)
	}
	return id, ""
}

// computeAnchors picks a representative node for every subgraph that is an
// edge endpoint.
func (w *dotWriter) computeAnchors() {
	for _, e := range w.d.Edges {
		for _, id := range []string{e.From, e.To} {
			if w.d.Node(id) != nil || w.d.Subgraph(id) == nil {
				continue
			}
			if _, done := w.anchors[id]; done {
				continue
			}
			if n := w.firstNode(id); n != "" {
				w.anchors[id] = n
				continue
			}
			w.anchors[id] = anchorName(id)
			w.hollow = append(w.hollow, id)
		}
	}
}

func (w *dotWriter) firstNode(sgID string) string {
	sg := w.d.Subgraph(sgID)
	if sg == nil {
		return ""
	}
	if len(sg.Nodes) > 0 {
		return sg.Nodes[0]
	}
	for _, child := range sg.Children {
		if n := w.firstNode(child); n != "" {
			return n
		}
	}
	return ""
}

func clusterName(id string) string { return "cluster_" + id }
func anchorName(id string) string  { return "__anchor_" + id }

// dotQuote returns s as a DOT double-quoted string. Newlines become
// centered line breaks.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
