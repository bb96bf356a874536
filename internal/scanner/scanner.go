// Package scanner locates tagged blocks in composite source files.
//
// The scanner is a permissive streaming tokenizer specialized to three tag
// names (style, script, chop) and one marker attribute (chopper:file). It
// tracks exact line/column positions so later stages can slice and splice
// the source text byte-accurately. Everything else in the input is ignored.
package scanner

import (
	"strings"

	"github.com/chopper-dev/chopper/pkg/types"
)

// MarkerAttr is the attribute that declares a block's destination path.
const MarkerAttr = "chopper:file"

// Scan tokenizes src and returns the tagged blocks in source order.
//
// The three recognized kinds share a single nesting depth counter: a block
// is emitted when a recognized closing tag returns the counter to zero and
// a marker attribute was seen since the last emit. Unbalanced closing tags
// are discarded; Scan never fails on malformed markup. Each call uses fresh
// state, so scanning the same text twice yields identical results.
func Scan(src string) []types.Block {
	s := &scanner{src: src, line: 1}
	return s.run()
}

type pending struct {
	path  string
	start types.Pos
}

type scanner struct {
	src  string
	i    int
	line int // 1-based
	col  int // 0-based byte offset within line

	depth   int
	pending *pending
	blocks  []types.Block
}

func (s *scanner) run() []types.Block {
	for s.i < len(s.src) {
		if s.src[s.i] != '<' {
			s.advance(1)
			continue
		}
		switch {
		case strings.HasPrefix(s.src[s.i:], "<!--"):
			s.skipComment()
		case strings.HasPrefix(s.src[s.i:], "</"):
			s.closeTag()
		case s.i+1 < len(s.src) && isNameStart(s.src[s.i+1]):
			s.openTag()
		default:
			s.advance(1)
		}
	}
	return s.blocks
}

// pos returns the current position.
func (s *scanner) pos() types.Pos {
	return types.Pos{Line: s.line, Col: s.col}
}

// advance consumes n bytes, updating line/column tracking.
func (s *scanner) advance(n int) {
	for ; n > 0 && s.i < len(s.src); n-- {
		if s.src[s.i] == '\n' {
			s.line++
			s.col = 0
		} else {
			s.col++
		}
		s.i++
	}
}

func (s *scanner) skipComment() {
	end := strings.Index(s.src[s.i:], "-->")
	if end < 0 {
		s.advance(len(s.src) - s.i)
		return
	}
	s.advance(end + len("-->"))
}

// closeTag handles "</name ...>". The recorded end position is the '<' of
// the closing tag.
func (s *scanner) closeTag() {
	at := s.pos()
	s.advance(2) // "</"
	name := s.readName()
	s.skipTo('>')

	kind, ok := types.KindForTag(name)
	if !ok {
		return
	}
	if s.depth == 0 {
		// Unmatched closing tag; tolerated, never an error.
		return
	}
	s.depth--
	if s.depth == 0 && s.pending != nil {
		s.blocks = append(s.blocks, types.Block{
			Kind:     kind,
			Path:     s.pending.path,
			FileType: types.FileTypeForPath(s.pending.path),
			Start:    s.pending.start,
			End:      at,
		})
		s.pending = nil
	}
}

// openTag handles "<name attr=... >". For recognized kinds the depth counter
// is incremented and, when the marker attribute is present, the position
// immediately after the (possibly multi-line) opening tag is recorded.
func (s *scanner) openTag() {
	s.advance(1) // '<'
	name := s.readName()

	var markerPath string
	var hasMarker bool
	selfClosing := false

	for s.i < len(s.src) {
		s.skipSpace()
		if s.i >= len(s.src) {
			break
		}
		c := s.src[s.i]
		if c == '>' {
			s.advance(1)
			break
		}
		if c == '/' {
			s.advance(1)
			if s.i < len(s.src) && s.src[s.i] == '>' {
				selfClosing = true
				s.advance(1)
				break
			}
			continue
		}
		attr, val := s.readAttr()
		if attr == MarkerAttr {
			markerPath = val
			hasMarker = true
		}
	}

	if _, ok := types.KindForTag(name); !ok || selfClosing {
		return
	}
	s.depth++
	if hasMarker {
		s.pending = &pending{path: markerPath, start: s.pos()}
	}
}

// readAttr reads one attribute and its optional value. Quoted values may
// span lines; unquoted values end at whitespace, '/', or '>'.
func (s *scanner) readAttr() (name, value string) {
	start := s.i
	for s.i < len(s.src) {
		c := s.src[s.i]
		if c == '=' || c == '>' || c == '/' || isSpace(c) {
			break
		}
		s.advance(1)
	}
	name = strings.ToLower(s.src[start:s.i])

	s.skipSpace()
	if s.i >= len(s.src) || s.src[s.i] != '=' {
		return name, ""
	}
	s.advance(1) // '='
	s.skipSpace()
	if s.i >= len(s.src) {
		return name, ""
	}

	if q := s.src[s.i]; q == '"' || q == '\'' {
		s.advance(1)
		vstart := s.i
		for s.i < len(s.src) && s.src[s.i] != q {
			s.advance(1)
		}
		value = s.src[vstart:s.i]
		s.advance(1) // closing quote
		return name, value
	}

	vstart := s.i
	for s.i < len(s.src) {
		c := s.src[s.i]
		if isSpace(c) || c == '>' || c == '/' {
			break
		}
		s.advance(1)
	}
	return name, s.src[vstart:s.i]
}

// readName reads a tag name, lowercased.
func (s *scanner) readName() string {
	start := s.i
	for s.i < len(s.src) && isNameByte(s.src[s.i]) {
		s.advance(1)
	}
	return strings.ToLower(s.src[start:s.i])
}

func (s *scanner) skipSpace() {
	for s.i < len(s.src) && isSpace(s.src[s.i]) {
		s.advance(1)
	}
}

// skipTo consumes input up to and including the next occurrence of c.
func (s *scanner) skipTo(c byte) {
	for s.i < len(s.src) && s.src[s.i] != c {
		s.advance(1)
	}
	s.advance(1)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9') || c == '-'
}
