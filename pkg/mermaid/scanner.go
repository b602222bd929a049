package mermaid

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// scanner walks a single statement line.
type scanner struct {
	src string
	pos int
}

func (s *scanner) eof() bool    { return s.pos >= len(s.src) }
func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// ident reads a node id. Hyphens and dots are allowed inside an id as long
// as they are followed by another id character, so "a-b" is one id while
// "a-->b" is an edge.
func (s *scanner) ident() string {
	start := s.pos
	for !s.eof() {
		r, size := utf8.DecodeRuneInString(s.rest())
		if isIdentRune(r) {
			s.pos += size
			continue
		}
		if (r == '-' || r == '.') && s.pos > start {
			next, _ := utf8.DecodeRuneInString(s.src[s.pos+1:])
			if s.pos+1 < len(s.src) && isIdentRune(next) {
				s.pos++
				continue
			}
		}
		break
	}
	return s.src[start:s.pos]
}

// until reads up to the closing delimiter, skipping over double-quoted text,
// and consumes the delimiter.
func (s *scanner) until(closer string) (string, error) {
	start := s.pos
	inQuote := false
	for i := s.pos; i < len(s.src); i++ {
		c := s.src[i]
		if c == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && strings.HasPrefix(s.src[i:], closer) {
			s.pos = i + len(closer)
			return s.src[start:i], nil
		}
	}
	if inQuote {
		return "", fmt.Errorf("unterminated quote")
	}
	return "", fmt.Errorf("missing closing %q", closer)
}

var linkRe = regexp.MustCompile(`^(?:-\.+->|-\.+-|={2,}>|={3,}|-{2,}>|-{3,})`)

// inlineLinks maps the opening of "A -- text --> B" forms to their closers.
var inlineLinks = []struct {
	open   string
	closer []string
	style  LineStyle
}{
	{"-- ", []string{"-->", "---"}, LineSolid},
	{"-. ", []string{".->", ".-"}, LineDotted},
	{"== ", []string{"==>", "==="}, LineThick},
}

// link reads an edge operator with its optional label. ok is false when the
// input does not start with a link.
func (s *scanner) link() (Edge, bool, error) {
	rest := s.rest()

	for _, il := range inlineLinks {
		if !strings.HasPrefix(rest, il.open) {
			continue
		}
		body := rest[len(il.open):]
		for _, c := range il.closer {
			if i := strings.Index(body, c); i >= 0 {
				s.pos += len(il.open) + i + len(c)
				return Edge{
					Label: cleanLabel(body[:i]),
					Style: il.style,
					Arrow: strings.HasSuffix(c, ">"),
				}, true, nil
			}
		}
		return Edge{}, false, fmt.Errorf("unterminated link label in %q", rest)
	}

	op := linkRe.FindString(rest)
	if op == "" {
		return Edge{}, false, nil
	}
	s.pos += len(op)

	e := Edge{Style: LineSolid, Arrow: strings.HasSuffix(op, ">")}
	switch {
	case strings.Contains(op, "."):
		e.Style = LineDotted
	case strings.HasPrefix(op, "="):
		e.Style = LineThick
	}

	s.skipSpace()
	if s.peek() == '|' {
		s.pos++
		label, err := s.until("|")
		if err != nil {
			return Edge{}, false, fmt.Errorf("edge label: %v", err)
		}
		e.Label = cleanLabel(label)
	}
	return e, true, nil
}
