// Package mermaid parses the subset of Mermaid diagram syntax used by the
// capability catalog.
//
// Two diagram families are understood:
//
//   - Flowcharts ("graph TD", "flowchart LR"): nodes with rect, round,
//     stadium, cylinder, diamond and circle shapes, nested subgraphs,
//     solid/dotted/thick links with optional labels, chains and "&" groups.
//   - State diagrams ("stateDiagram-v2"): transitions with labels, the [*]
//     start and end pseudo-states, aliases and composite states.
//
// Styling directives (classDef, class, style, linkStyle, click) are accepted
// and ignored. [Parse] returns a [Diagram] that package render turns into
// Graphviz DOT.
package mermaid
