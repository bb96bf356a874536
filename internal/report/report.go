// Package report renders chopper's console output: the per-file header,
// the tree of per-block action lines, and unified diffs on content drift.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/chopper-dev/chopper/pkg/types"
)

var (
	prefixColor = color.New(color.FgMagenta, color.Bold)
	actionColor = color.New(color.FgGreen, color.Bold)
	errColor    = color.New(color.BgRed, color.Bold)
	warnColor   = color.New(color.FgYellow, color.Bold)
	pathColor   = color.New(color.FgBlue)
	dimColor    = color.New(color.Faint)
)

// Reporter writes action events as they happen. It is not safe for
// concurrent use; the pipeline is single-threaded by design.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	dryRun bool
	now    func() time.Time
}

// New creates a Reporter. out receives action lines, errOut failures.
func New(out, errOut io.Writer, dryRun bool) *Reporter {
	return &Reporter{out: out, errOut: errOut, dryRun: dryRun, now: time.Now}
}

func (r *Reporter) dry() string {
	if r.dryRun {
		return " (DRY RUN)"
	}
	return ""
}

// Chop prints the per-file header line with a timestamp.
func (r *Reporter) Chop(source string) {
	stamp := dimColor.Sprint(r.now().Format("2006-01-02,15:04:05"))
	fmt.Fprintf(r.out, "%s %s %s  %s\n",
		prefixColor.Sprint("CHOPPER:"),
		actionColor.Sprintf("%s%s", types.ActionChop, r.dry()),
		pathColor.Sprint(source),
		stamp)
}

// Action prints one block-level action line as a tree branch. last selects
// the closing branch glyph.
func (r *Reporter) Action(a types.Action, path string, last bool) {
	branch := "├─ "
	if last {
		branch = "└─ "
	}
	fmt.Fprintf(r.out, "%s %s%s %s\n",
		prefixColor.Sprint("CHOPPER:"),
		branch,
		actionColor.Sprintf("%s%s", a, r.dry()),
		pathColor.Sprint(path))
}

// Error prints a block- or file-level failure on the error stream.
func (r *Reporter) Error(a types.Action, path, msg string) {
	fmt.Fprintf(r.errOut, "%s %s %s %s\n",
		errColor.Sprint("CHOPPER:"),
		errColor.Sprintf("%s%s", a, r.dry()),
		msg,
		pathColor.Sprint(path))
}

// Warning prints a non-fatal notice on the error stream.
func (r *Reporter) Warning(a types.Action, msg string) {
	fmt.Fprintf(r.errOut, "%s %s %s\n",
		warnColor.Sprint("CHOPPER:"),
		warnColor.Sprint(string(a)),
		msg)
}

// Diff prints a unified diff between the destination's current content
// (old) and the freshly extracted content (new).
func (r *Reporter) Diff(newContent, oldContent, newLabel, oldLabel string) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: oldLabel,
		ToFile:   newLabel,
		Context:  0,
	})
	if err != nil {
		fmt.Fprintf(r.errOut, "failed to render diff: %v\n", err)
		return
	}
	fmt.Fprintln(r.out)
	fmt.Fprint(r.out, text)
	fmt.Fprintln(r.out)
}
