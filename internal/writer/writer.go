// Package writer creates and updates destination files from extracted
// blocks. It compares before writing so unchanged destinations are never
// touched, and in warn mode it reports drift instead of overwriting.
package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/chopper-dev/chopper/internal/comment"
	"github.com/chopper-dev/chopper/internal/report"
	"github.com/chopper-dev/chopper/internal/validation"
	"github.com/chopper-dev/chopper/pkg/types"
)

// Reconciler resolves a content conflict between a block and its
// destination file, possibly by splicing the destination content back into
// the source. mutated reports that the source file changed, which
// invalidates every remaining block position from the current scan.
type Reconciler interface {
	Reconcile(block *types.Block, destContent string) (overwriteDest, ok, mutated bool, err error)
}

// Result is the outcome of writing one block.
type Result struct {
	OK      bool
	Mutated bool // source file was spliced; caller must rescan
}

// Writer writes extracted blocks to their destination files.
type Writer struct {
	warn        bool
	dryRun      bool
	commentMode comment.Mode
	reconciler  Reconciler // nil unless interactive update is enabled
	reporter    *report.Reporter
	madeDirs    map[string]bool
}

// New creates a Writer. reconciler may be nil, in which case warn-mode
// conflicts are reported and fail without prompting.
func New(warn, dryRun bool, mode comment.Mode, reconciler Reconciler, rep *report.Reporter) *Writer {
	return &Writer{
		warn:        warn,
		dryRun:      dryRun,
		commentMode: mode,
		reconciler:  reconciler,
		reporter:    rep,
		madeDirs:    make(map[string]bool),
	}
}

// Write creates or updates the destination file for a block. The returned
// error is non-nil only for operator cancellation, which must abort the
// whole run; every other failure is reported, logged, and returned as
// Result.OK == false so sibling blocks keep processing.
func (w *Writer) Write(b *types.Block, log *types.ChopLog, last bool) (Result, error) {
	if b.Path == "" {
		log.Add(types.ActionUnchanged, "", "no destination defined")
		w.reporter.Action(types.ActionUnchanged, "No destination defined", last)
		return Result{OK: true}, nil
	}

	dest, err := validation.ResolveOutputPath(b.Path, b.BasePath)
	if err != nil {
		log.Add(types.ActionReject, b.Path, err.Error())
		w.reporter.Error(types.ActionReject, b.Path, err.Error())
		return Result{}, nil
	}

	style := comment.For(w.commentMode, b.FileType)
	payload := comment.Inject(b.Content, style, b.SourceFile, dest)

	if ok := w.ensureParent(dest, log); !ok {
		return Result{}, nil
	}

	stat, statErr := os.Stat(dest)
	exists := statErr == nil
	if exists && stat.IsDir() {
		log.Add(types.ActionReject, dest, "destination is a directory")
		w.reporter.Error(types.ActionChop, b.SourceFile, "Destination is a directory.")
		return Result{}, nil
	}

	if !exists {
		if w.warn {
			// Warn mode never creates files; a missing destination is drift.
			log.Add(types.ActionDoesNotExist, dest, "")
			w.reporter.Action(types.ActionDoesNotExist, dest, last)
			return Result{}, nil
		}
		if err := w.writeFile(dest, payload); err != nil {
			log.Add(types.ActionReject, dest, err.Error())
			w.reporter.Error(types.ActionNew, dest, err.Error())
			return Result{}, nil
		}
		log.Add(types.ActionNew, dest, "")
		w.reporter.Action(types.ActionNew, dest, last)
		return Result{OK: true}, nil
	}

	current, err := os.ReadFile(dest) //nolint:gosec // dest is confined to the output root
	if err != nil {
		log.Add(types.ActionReject, dest, err.Error())
		w.reporter.Error(types.ActionWrite, dest, err.Error())
		return Result{}, nil
	}

	if string(current) == payload {
		log.Add(types.ActionUnchanged, dest, "")
		w.reporter.Action(types.ActionUnchanged, dest, last)
		return Result{OK: true}, nil
	}

	if !w.warn {
		if err := w.writeFile(dest, payload); err != nil {
			log.Add(types.ActionReject, dest, err.Error())
			w.reporter.Error(types.ActionWrite, dest, err.Error())
			return Result{}, nil
		}
		log.Add(types.ActionWrite, dest, "")
		w.reporter.Action(types.ActionWrite, dest, last)
		return Result{OK: true}, nil
	}

	// Warn mode: report the drift with a diff, then hand off to the
	// reconciler when interactive update is enabled.
	w.reporter.Error(types.ActionWrite, dest, "File contents differ")
	w.reporter.Diff(payload, string(current), b.SourceFile, dest)
	log.Add(types.ActionWrite, dest, "contents differ")

	if w.reconciler == nil {
		return Result{}, nil
	}

	overwrite, ok, mutated, err := w.reconciler.Reconcile(b, string(current))
	if err != nil {
		return Result{}, err
	}
	if overwrite {
		if werr := w.writeFile(dest, payload); werr != nil {
			w.reporter.Error(types.ActionWrite, dest, werr.Error())
			return Result{}, nil
		}
	}
	if mutated {
		log.Add(types.ActionUpdate, b.SourceFile, "")
	}
	return Result{OK: ok, Mutated: mutated}, nil
}

// ensureParent creates the destination's parent directory when missing,
// reporting the creation once per directory.
func (w *Writer) ensureParent(dest string, log *types.ChopLog) bool {
	parent := filepath.Dir(dest)
	if _, err := os.Stat(parent); err == nil {
		return true
	}
	if !w.dryRun {
		if err := os.MkdirAll(parent, 0750); err != nil {
			log.Add(types.ActionReject, parent, err.Error())
			w.reporter.Error(types.ActionMkdir, parent, err.Error())
			return false
		}
	}
	if !w.madeDirs[parent] {
		w.madeDirs[parent] = true
		log.Add(types.ActionMkdir, parent, "")
		w.reporter.Action(types.ActionMkdir, parent, false)
	}
	return true
}

func (w *Writer) writeFile(dest, content string) error {
	if w.dryRun {
		return nil
	}
	if err := os.WriteFile(dest, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", dest, err)
	}
	return nil
}
