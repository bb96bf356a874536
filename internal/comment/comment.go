// Package comment provides the provenance-comment syntax tables and the
// helpers that inject and strip provenance comments.
package comment

import (
	"strings"

	"github.com/chopper-dev/chopper/pkg/types"
)

// Mode selects which comment table is used for provenance comments.
type Mode string

const (
	// ModeNone disables provenance comments.
	ModeNone Mode = "none"
	// ModeClient uses comment syntax that survives in the browser.
	ModeClient Mode = "client"
	// ModeServer uses template-engine comment syntax that is stripped
	// during server-side rendering.
	ModeServer Mode = "server"
)

// ParseMode validates a mode string. ok is false for unknown values.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(s); m {
	case ModeNone, ModeClient, ModeServer:
		return m, true
	}
	return "", false
}

// Style is a comment open/close delimiter pair.
type Style struct {
	Open  string
	Close string
}

var clientStyles = map[types.FileType]Style{
	types.FileTypePHP:     {"<!-- ", " -->"},
	types.FileTypeHTML:    {"<!-- ", " -->"},
	types.FileTypeAntlers: {"<!-- ", " -->"},
	types.FileTypeTwig:    {"<!-- ", " -->"},
	types.FileTypeJS:      {"// ", ""},
	types.FileTypeMJS:     {"// ", ""},
	types.FileTypeTS:      {"// ", ""},
	types.FileTypeTSX:     {"// ", ""},
	types.FileTypeJSX:     {"// ", ""},
	types.FileTypeCSS:     {"/* ", " */"},
	types.FileTypeSCSS:    {"/* ", " */"},
	types.FileTypeNone:    {"", ""},
}

var serverStyles = map[types.FileType]Style{
	types.FileTypePHP:     {"/* ", " */"},
	types.FileTypeHTML:    {"{# ", " #}"},
	types.FileTypeAntlers: {"{{# ", " #}}"},
	types.FileTypeTwig:    {"{# ", " #}"},
	types.FileTypeJS:      {"// ", ""},
	types.FileTypeMJS:     {"// ", ""},
	types.FileTypeTS:      {"// ", ""},
	types.FileTypeTSX:     {"// ", ""},
	types.FileTypeJSX:     {"// ", ""},
	types.FileTypeCSS:     {"/* ", " */"},
	types.FileTypeSCSS:    {"/* ", " */"},
	types.FileTypeNone:    {"", ""},
}

// For returns the comment style for a destination file type under the given
// mode. ModeNone and unknown file types yield an empty style.
func For(mode Mode, ft types.FileType) Style {
	var table map[types.FileType]Style
	switch mode {
	case ModeClient:
		table = clientStyles
	case ModeServer:
		table = serverStyles
	default:
		return Style{}
	}
	if st, ok := table[ft]; ok {
		return st
	}
	return Style{}
}

// Line renders the provenance comment line recording the source to
// destination mapping.
func Line(st Style, source, dest string) string {
	return st.Open + source + " -> " + dest + st.Close
}

// Inject prepends the provenance line to content, separated by a blank
// line. Content with an empty style is returned unchanged.
func Inject(content string, st Style, source, dest string) string {
	if st.Open == "" && st.Close == "" {
		return content
	}
	return "\n" + Line(st, source, dest) + "\n\n" + content
}

// Strip removes an injected provenance comment from the head of content.
// It recognizes a first non-blank line delimited by the style's markers and
// containing the " -> " mapping arrow, and also removes the blank lines
// surrounding it. Content without such a line is returned unchanged.
func Strip(content string, st Style) string {
	if st.Open == "" && st.Close == "" {
		return content
	}
	rest := strings.TrimLeft(content, "\n")
	line := rest
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		line = rest[:idx]
	}

	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasPrefix(trimmed, strings.TrimRight(st.Open, " ")) ||
		!strings.Contains(trimmed, " -> ") ||
		!strings.HasSuffix(trimmed, strings.TrimLeft(st.Close, " ")) {
		return content
	}

	rest = strings.TrimPrefix(rest, line)
	return strings.TrimLeft(rest, "\n")
}
