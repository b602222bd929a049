package mermaid

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/incept5/eve-showcase/pkg/errors"
)

// Parse reads a diagram source and returns its model.
//
// The source is trimmed first; an empty source is an error. All errors carry
// [errors.ErrCodeInvalidDiagram] and name the offending line.
func Parse(src string) (*Diagram, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "empty diagram source")
	}

	p := &parser{}
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDiagram, err, "read diagram source")
	}
	if p.d == nil {
		return nil, errors.New(errors.ErrCodeInvalidDiagram, "missing diagram header")
	}
	if len(p.stack) > 0 {
		return nil, p.errorf("subgraph %q is never closed", p.stack[len(p.stack)-1])
	}
	p.d.finish()
	return p.d, nil
}

type parser struct {
	d     *Diagram
	line  int
	stack []string // open subgraph ids
	anon  int      // counter for generated ids
}

func (p *parser) errorf(format string, args ...any) error {
	args = append([]any{p.line}, args...)
	return errors.New(errors.ErrCodeInvalidDiagram, "line %d: "+format, args...)
}

func (p *parser) scope() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

var ignoredPrefixes = []string{"classDef ", "class ", "style ", "linkStyle ", "click ", "direction ", "note ", "accTitle", "accDescr"}

func (p *parser) parseLine(raw string) error {
	line := strings.TrimSpace(raw)
	line = strings.TrimSuffix(line, ";")
	if line == "" || strings.HasPrefix(line, "%%") {
		return nil
	}
	if p.d == nil {
		return p.parseHeader(line)
	}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(line, prefix) {
			return nil
		}
	}
	if p.d.Kind == State {
		return p.parseStateLine(line)
	}
	return p.parseFlowLine(line)
}

func (p *parser) parseHeader(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "graph", "flowchart":
		dir := TopBottom
		if len(fields) > 1 {
			d, ok := parseDirection(fields[1])
			if !ok {
				return p.errorf("unknown direction %q", fields[1])
			}
			dir = d
		}
		p.d = newDiagram(Flowchart, dir)
		return nil
	case "stateDiagram", "stateDiagram-v2":
		p.d = newDiagram(State, TopBottom)
		return nil
	}
	return p.errorf("unsupported diagram type %q", fields[0])
}

func parseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(s) {
	case "TB", "TD":
		return TopBottom, true
	case "BT":
		return BottomTop, true
	case "LR":
		return LeftRight, true
	case "RL":
		return RightLeft, true
	}
	return "", false
}

// =============================================================================
// Flowcharts
// =============================================================================

func (p *parser) parseFlowLine(line string) error {
	if line == "end" {
		if len(p.stack) == 0 {
			return p.errorf("'end' without matching subgraph")
		}
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	}
	if rest, ok := strings.CutPrefix(line, "subgraph"); ok && (rest == "" || rest[0] == ' ') {
		return p.parseSubgraph(strings.TrimSpace(rest))
	}
	return p.parseStatement(line)
}

func (p *parser) parseSubgraph(rest string) error {
	var id, label string
	switch {
	case rest == "":
		p.anon++
		id = "subgraph" + itoa(p.anon)
	case rest[0] == '"':
		label = strings.Trim(rest, `"`)
		id = sanitizeID(label)
	default:
		s := &scanner{src: rest}
		id = s.ident()
		if id == "" {
			return p.errorf("invalid subgraph name %q", rest)
		}
		s.skipSpace()
		if !s.eof() {
			if s.peek() != '[' {
				return p.errorf("unexpected %q after subgraph id", s.rest())
			}
			s.pos++
			text, err := s.until("]")
			if err != nil {
				return p.errorf("subgraph %s: %v", id, err)
			}
			label = text
		}
	}
	if label == "" {
		label = id
	}
	p.d.openSubgraph(id, cleanLabel(label), p.scope())
	p.stack = append(p.stack, id)
	return nil
}

// parseStatement handles "A", "A[label]", "A --> B", "A & B -->|x| C --> D".
func (p *parser) parseStatement(line string) error {
	s := &scanner{src: line}

	left, err := p.nodeGroup(s)
	if err != nil {
		return err
	}
	for {
		s.skipSpace()
		if s.eof() {
			return nil
		}
		link, ok, err := s.link()
		if err != nil {
			return p.errorf("%v", err)
		}
		if !ok {
			return p.errorf("unexpected %q", s.rest())
		}
		s.skipSpace()
		right, err := p.nodeGroup(s)
		if err != nil {
			return err
		}
		for _, from := range left {
			for _, to := range right {
				e := link
				e.From, e.To = from, to
				p.d.Edges = append(p.d.Edges, &e)
			}
		}
		left = right
	}
}

// nodeGroup reads one or more node references joined by "&".
func (p *parser) nodeGroup(s *scanner) ([]string, error) {
	var ids []string
	for {
		s.skipSpace()
		id, err := p.nodeRef(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
		s.skipSpace()
		if s.peek() != '&' {
			return ids, nil
		}
		s.pos++
	}
}

// shapeDelims lists opening/closing delimiters, longest first.
var shapeDelims = []struct {
	open, close string
	shape       Shape
}{
	{"([", "])", ShapeStadium},
	{"[(", ")]", ShapeCylinder},
	{"((", "))", ShapeCircle},
	{"[", "]", ShapeRect},
	{"(", ")", ShapeRound},
	{"{", "}", ShapeDiamond},
	{">", "]", ShapeRect},
}

func (p *parser) nodeRef(s *scanner) (string, error) {
	id := s.ident()
	if id == "" {
		if s.eof() {
			return "", p.errorf("expected node id at end of line")
		}
		return "", p.errorf("expected node id at %q", s.rest())
	}
	for _, d := range shapeDelims {
		if !strings.HasPrefix(s.rest(), d.open) {
			continue
		}
		s.pos += len(d.open)
		label, err := s.until(d.close)
		if err != nil {
			return "", p.errorf("node %s: %v", id, err)
		}
		p.d.declare(id, cleanLabel(label), d.shape, p.scope())
		return id, nil
	}
	p.d.touch(id, p.scope())
	return id, nil
}

// =============================================================================
// State diagrams
// =============================================================================

var (
	stateTransitionRe = regexp.MustCompile(`^(\[\*\]|[\w.-]+)\s*-->\s*(\[\*\]|[\w.-]+)\s*(?::\s*(.*))?$`)
	stateAliasRe      = regexp.MustCompile(`^state\s+"([^"]*)"\s+as\s+([\w.-]+)\s*(\{)?$`)
	stateCompositeRe  = regexp.MustCompile(`^state\s+([\w.-]+)\s*\{$`)
	stateDescRe       = regexp.MustCompile(`^([\w.-]+)\s*:\s*(.+)$`)
	stateBareRe       = regexp.MustCompile(`^[\w.-]+$`)
)

func (p *parser) parseStateLine(line string) error {
	if line == "}" {
		if len(p.stack) == 0 {
			return p.errorf("'}' without matching state block")
		}
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	}
	if m := stateTransitionRe.FindStringSubmatch(line); m != nil {
		from := p.stateRef(m[1], true)
		to := p.stateRef(m[2], false)
		p.d.Edges = append(p.d.Edges, &Edge{
			From:  from,
			To:    to,
			Label: strings.TrimSpace(m[3]),
			Style: LineSolid,
			Arrow: true,
		})
		return nil
	}
	if m := stateAliasRe.FindStringSubmatch(line); m != nil {
		if m[3] == "{" {
			p.d.openSubgraph(m[2], m[1], p.scope())
			p.stack = append(p.stack, m[2])
			return nil
		}
		p.d.declare(m[2], m[1], ShapeRound, p.scope())
		return nil
	}
	if m := stateCompositeRe.FindStringSubmatch(line); m != nil {
		p.d.openSubgraph(m[1], m[1], p.scope())
		p.stack = append(p.stack, m[1])
		return nil
	}
	if m := stateDescRe.FindStringSubmatch(line); m != nil {
		p.d.declare(m[1], strings.TrimSpace(m[2]), ShapeRound, p.scope())
		return nil
	}
	if stateBareRe.MatchString(line) {
		p.d.touch(line, p.scope())
		return nil
	}
	return p.errorf("unrecognized state statement %q", line)
}

// stateRef resolves a transition endpoint. "[*]" becomes a start node when
// it is the source and an end node when it is the target; each scope gets
// its own pair.
func (p *parser) stateRef(ref string, source bool) string {
	if ref != "[*]" {
		p.d.touch(ref, p.scope())
		return ref
	}
	id, shape := "__start", ShapeStart
	if !source {
		id, shape = "__end", ShapeEnd
	}
	if sc := p.scope(); sc != "" {
		id += "_" + sc
	}
	if n := p.d.Node(id); n == nil {
		p.d.declare(id, "", shape, p.scope())
	}
	return id
}

// =============================================================================
// Helpers
// =============================================================================

// cleanLabel strips surrounding quotes and turns <br> variants into newlines.
func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	for _, br := range []string{"<br/>", "<br />", "<br>"} {
		s = strings.ReplaceAll(s, br, "\n")
	}
	return s
}

func sanitizeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isIdentRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
