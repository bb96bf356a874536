// Package extract slices block content out of source text and normalizes
// its indentation.
package extract

import (
	"strings"

	"github.com/chopper-dev/chopper/pkg/types"
)

// Block returns the normalized text between start and end, taken from the
// source split into lines.
//
// Re-extracting the same positions from unmodified text always yields
// byte-identical output.
func Block(start, end types.Pos, lines []string) string {
	return Normalize(Raw(start, end, lines))
}

// Raw returns the exact text between start and end without normalization:
// the tail of the start line, the full lines in between, and the head of
// the end line. A single-line range is sliced by both columns.
func Raw(start, end types.Pos, lines []string) string {
	startLine := clamp(start.Line-1, 0, len(lines))
	endLine := clamp(end.Line, startLine, len(lines))

	extracted := make([]string, endLine-startLine)
	copy(extracted, lines[startLine:endLine])

	if len(extracted) == 0 {
		return ""
	}
	if len(extracted) == 1 {
		extracted[0] = sliceLine(extracted[0], start.Col, end.Col)
	} else {
		extracted[0] = sliceLine(extracted[0], start.Col, len(extracted[0]))
		last := len(extracted) - 1
		extracted[last] = sliceLine(extracted[last], 0, end.Col)
	}

	return strings.Join(extracted, "\n")
}

// Normalize dedents raw block text by the longest common leading whitespace
// of its non-blank lines, trims surrounding whitespace, and appends exactly
// one newline.
func Normalize(raw string) string {
	text := Dedent(raw)
	text = strings.TrimSpace(text)
	return text + "\n"
}

// Dedent removes the longest leading whitespace prefix common to all
// non-blank lines. Blank lines do not contribute to the margin and are left
// untouched when they do not carry it.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")

	var margin string
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			margin = indent
			first = false
			continue
		}
		margin = commonPrefix(margin, indent)
	}
	if margin == "" {
		return text
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

func sliceLine(line string, from, to int) string {
	from = clamp(from, 0, len(line))
	to = clamp(to, from, len(line))
	return line[from:to]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
