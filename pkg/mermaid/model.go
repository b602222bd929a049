package mermaid

// Kind identifies the diagram family declared in the header line.
type Kind int

const (
	// Flowchart is a "graph" or "flowchart" diagram.
	Flowchart Kind = iota
	// State is a "stateDiagram" or "stateDiagram-v2" diagram.
	State
)

func (k Kind) String() string {
	if k == State {
		return "state"
	}
	return "flowchart"
}

// Direction is the primary layout direction.
type Direction string

// Layout directions. TD is normalized to TB.
const (
	TopBottom Direction = "TB"
	BottomTop Direction = "BT"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
)

// Shape is the visual outline of a node.
type Shape int

const (
	ShapeRect     Shape = iota // A[text]
	ShapeRound                 // A(text)
	ShapeStadium               // A([text])
	ShapeCylinder              // A[(text)]
	ShapeDiamond               // A{text}
	ShapeCircle                // A((text))
	ShapeStart                 // [*] as a transition source
	ShapeEnd                   // [*] as a transition target
)

// LineStyle is the stroke of an edge.
type LineStyle int

const (
	LineSolid  LineStyle = iota // -->
	LineDotted                  // -.->
	LineThick                   // ==>
)

// Node is a vertex of the diagram.
type Node struct {
	ID       string
	Label    string
	Shape    Shape
	Subgraph string // innermost enclosing subgraph id, "" at top level

	declared bool // label or shape given explicitly
}

// Edge connects two nodes or subgraphs. From and To may name a subgraph;
// use [Diagram.Subgraph] to tell them apart.
type Edge struct {
	From  string
	To    string
	Label string
	Style LineStyle
	Arrow bool
}

// Subgraph groups nodes and nested subgraphs.
type Subgraph struct {
	ID       string
	Label    string
	Parent   string
	Nodes    []string
	Children []string
}

// Diagram is the parsed form of a diagram source.
type Diagram struct {
	Kind      Kind
	Direction Direction
	Nodes     []*Node
	Edges     []*Edge
	Subgraphs []*Subgraph

	nodes     map[string]*Node
	subgraphs map[string]*Subgraph
}

func newDiagram(kind Kind, dir Direction) *Diagram {
	return &Diagram{
		Kind:      kind,
		Direction: dir,
		nodes:     make(map[string]*Node),
		subgraphs: make(map[string]*Subgraph),
	}
}

// Node returns the node with the given id, or nil.
func (d *Diagram) Node(id string) *Node {
	return d.nodes[id]
}

// Subgraph returns the subgraph with the given id, or nil.
func (d *Diagram) Subgraph(id string) *Subgraph {
	return d.subgraphs[id]
}

// Roots returns the top-level subgraphs in declaration order.
func (d *Diagram) Roots() []*Subgraph {
	var out []*Subgraph
	for _, sg := range d.Subgraphs {
		if sg.Parent == "" {
			out = append(out, sg)
		}
	}
	return out
}

// TopLevelNodes returns the nodes outside any subgraph in declaration order.
func (d *Diagram) TopLevelNodes() []*Node {
	var out []*Node
	for _, n := range d.Nodes {
		if n.Subgraph == "" {
			out = append(out, n)
		}
	}
	return out
}

// touch returns the node for id, creating it inside sg on first sight.
func (d *Diagram) touch(id, sg string) *Node {
	if n, ok := d.nodes[id]; ok {
		return n
	}
	n := &Node{ID: id, Label: id, Shape: ShapeRect, Subgraph: sg}
	if d.Kind == State {
		n.Shape = ShapeRound
	}
	d.nodes[id] = n
	d.Nodes = append(d.Nodes, n)
	if sg != "" {
		if s := d.subgraphs[sg]; s != nil {
			s.Nodes = append(s.Nodes, id)
		}
	}
	return n
}

// declare records an explicit label and shape for id.
func (d *Diagram) declare(id, label string, shape Shape, sg string) *Node {
	n := d.touch(id, sg)
	n.Label = label
	n.Shape = shape
	n.declared = true
	return n
}

func (d *Diagram) openSubgraph(id, label, parent string) *Subgraph {
	if s, ok := d.subgraphs[id]; ok {
		return s
	}
	s := &Subgraph{ID: id, Label: label, Parent: parent}
	d.subgraphs[id] = s
	d.Subgraphs = append(d.Subgraphs, s)
	if p := d.subgraphs[parent]; p != nil {
		p.Children = append(p.Children, id)
	}
	return s
}

// finish drops placeholder nodes that turned out to be subgraph references.
func (d *Diagram) finish() {
	kept := d.Nodes[:0]
	for _, n := range d.Nodes {
		if _, isSub := d.subgraphs[n.ID]; isSub && !n.declared {
			delete(d.nodes, n.ID)
			if s := d.subgraphs[n.Subgraph]; s != nil {
				s.Nodes = removeString(s.Nodes, n.ID)
			}
			continue
		}
		kept = append(kept, n)
	}
	d.Nodes = kept
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
