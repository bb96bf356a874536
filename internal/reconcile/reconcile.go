// Package reconcile copies destination-file edits back into the source
// file's block region. It is only invoked on a warn-mode conflict with
// interactive update enabled, and it is the one place in chopper that
// mutates source files.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chopper-dev/chopper/internal/comment"
	"github.com/chopper-dev/chopper/internal/report"
	"github.com/chopper-dev/chopper/pkg/types"
)

// ErrCancelled aborts the entire multi-file run. Earlier accepted updates
// have already been committed to disk and are not rolled back.
var ErrCancelled = errors.New("operation cancelled")

// Decision is the operator's answer to an update prompt.
type Decision int

const (
	Accept Decision = iota
	Decline
	Cancel
)

// Decider is the synchronous decision port. Injecting it keeps the core
// testable without a real terminal.
type Decider interface {
	Decide(destPath, sourcePath string) (Decision, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(destPath, sourcePath string) (Decision, error)

// Decide calls f.
func (f DeciderFunc) Decide(destPath, sourcePath string) (Decision, error) {
	return f(destPath, sourcePath)
}

// Synchronizer splices accepted destination content back into source files.
type Synchronizer struct {
	decider  Decider
	mode     comment.Mode
	indent   string
	dryRun   bool
	reporter *report.Reporter
}

// New creates a Synchronizer. indent is prepended to every non-blank line
// spliced into the source.
func New(decider Decider, mode comment.Mode, indent string, dryRun bool, rep *report.Reporter) *Synchronizer {
	if indent == "" {
		indent = "  "
	}
	return &Synchronizer{decider: decider, mode: mode, indent: indent, dryRun: dryRun, reporter: rep}
}

// Reconcile asks the operator what to do about a drifted destination.
//
// Decline leaves both files untouched and fails the block. Cancel returns
// ErrCancelled, which aborts the whole run. Accept splices destContent into
// the source file at the block's recorded positions; the caller must then
// discard every remaining block from the current scan and re-scan the
// mutated source. The destination is never overwritten here: after an
// accepted splice it already holds the agreed content.
func (s *Synchronizer) Reconcile(b *types.Block, destContent string) (overwriteDest, ok, mutated bool, err error) {
	// Strip any injected provenance comment first so it can never
	// round-trip into the source as literal content.
	style := comment.For(s.mode, b.FileType)
	stripped := comment.Strip(destContent, style)

	dest := filepath.Join(b.BasePath, b.Path)
	decision, err := s.decider.Decide(dest, b.SourceFile)
	if err != nil {
		return false, false, false, err
	}

	switch decision {
	case Decline:
		return false, false, false, nil
	case Cancel:
		return false, false, false, ErrCancelled
	}

	if s.dryRun {
		s.reporter.Action(types.ActionUpdate, b.SourceFile, false)
		return false, true, false, nil
	}

	if err := s.splice(b, stripped); err != nil {
		s.reporter.Error(types.ActionUpdate, b.SourceFile, err.Error())
		return false, false, false, nil
	}
	s.reporter.Action(types.ActionUpdate, b.SourceFile, false)
	return false, true, true, nil
}

func (s *Synchronizer) splice(b *types.Block, content string) error {
	data, err := os.ReadFile(b.SourceFile) //nolint:gosec // source path came from file discovery
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	updated := Splice(string(data), b.Start, b.End, content, s.indent)

	if err := os.WriteFile(b.SourceFile, []byte(updated), 0600); err != nil {
		return fmt.Errorf("failed to write source file: %w", err)
	}
	return nil
}

// Splice replaces the region between start and end of src with content.
// Each non-blank content line is re-indented by indent; blank lines are
// inserted bare. Text before start on the start line and from end on the
// end line (the surrounding tags) is preserved byte-for-byte, so sibling
// blocks are never touched.
func Splice(src string, start, end types.Pos, content, indent string) string {
	lines := strings.Split(src, "\n")

	startLine := clamp(start.Line, 1, len(lines))
	endLine := clamp(end.Line, startLine, len(lines))

	head := lines[startLine-1]
	prefix := head[:clamp(start.Col, 0, len(head))]
	tail := lines[endLine-1]
	suffix := tail[clamp(end.Col, 0, len(tail)):]

	body := strings.TrimRight(content, "\n")
	indented := make([]string, 0, strings.Count(body, "\n")+1)
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			indented = append(indented, "")
		} else {
			indented = append(indented, indent+line)
		}
	}

	region := prefix + "\n" + strings.Join(indented, "\n") + "\n" + suffix

	out := make([]string, 0, len(lines))
	out = append(out, lines[:startLine-1]...)
	out = append(out, strings.Split(region, "\n")...)
	out = append(out, lines[endLine:]...)
	return strings.Join(out, "\n")
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
