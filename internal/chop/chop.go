// Package chop drives the parse-extract-write pipeline: once per source
// file, once more after every accepted reverse sync.
package chop

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/chopper-dev/chopper/internal/config"
	"github.com/chopper-dev/chopper/internal/extract"
	"github.com/chopper-dev/chopper/internal/report"
	"github.com/chopper-dev/chopper/internal/scanner"
	"github.com/chopper-dev/chopper/internal/writer"
	"github.com/chopper-dev/chopper/pkg/types"
)

// BlockWriter abstracts the destination writer for testing.
type BlockWriter interface {
	Write(b *types.Block, log *types.ChopLog, last bool) (writer.Result, error)
}

// Chopper processes source files one at a time.
type Chopper struct {
	opts     *config.Options
	writer   BlockWriter
	reporter *report.Reporter
}

// New creates a Chopper.
func New(opts *config.Options, w BlockWriter, rep *report.Reporter) *Chopper {
	return &Chopper{opts: opts, writer: w, reporter: rep}
}

// File processes a single source file and reports whether every block
// succeeded. The error is non-nil only for operator cancellation.
func (c *Chopper) File(path string) (bool, error) {
	return c.FileWithLog(path, &types.ChopLog{})
}

// FileWithLog is File with a caller-supplied ChopLog, so tests and the
// watcher can inspect the ordered outcomes. The log is discarded by the
// caller once the file is done; it is never persisted.
func (c *Chopper) FileWithLog(path string, log *types.ChopLog) (bool, error) {
	c.reporter.Chop(path)

	text, err := c.readSource(path)
	if err != nil {
		c.reporter.Error(types.ActionChop, path, err.Error())
		return false, nil
	}

	blocks := c.scan(path, text)
	success := true

	// Blocks are processed by index. After any splice the recorded
	// positions of every remaining block are stale, so the mutated source
	// is re-scanned and processing resumes from the next index: the splice
	// only ever touches text strictly between the current block's
	// positions, so already-processed blocks are unaffected.
	for i := 0; i < len(blocks); i++ {
		res, werr := c.writer.Write(&blocks[i], log, i == len(blocks)-1)
		if werr != nil {
			return false, werr
		}
		if !res.OK {
			success = false
		}
		if res.Mutated {
			text, err = c.readSource(path)
			if err != nil {
				c.reporter.Error(types.ActionChop, path, err.Error())
				return false, nil
			}
			rescanned := c.scan(path, text)
			if len(rescanned) != len(blocks) {
				c.reporter.Error(types.ActionChop, path, "block structure changed during update")
				return false, nil
			}
			blocks = rescanned
		}
	}

	return success, nil
}

// Batch processes every source file, aggregating per-file success. Only
// cancellation short-circuits; any other failure moves on to the next file.
func (c *Chopper) Batch(paths []string) (bool, error) {
	all := true
	for _, p := range paths {
		ok, err := c.File(p)
		if err != nil {
			return false, err
		}
		if !ok {
			all = false
		}
	}
	return all, nil
}

// scan tokenizes text and fills in everything the scanner itself does not
// know: source file, output root, and extracted content.
func (c *Chopper) scan(path, text string) []types.Block {
	blocks := scanner.Scan(text)
	lines := strings.Split(text, "\n")
	for i := range blocks {
		b := &blocks[i]
		b.SourceFile = path
		b.BasePath = c.opts.DirFor(b.Kind)
		b.RawContent = extract.Raw(b.Start, b.End, lines)
		b.Content = extract.Normalize(b.RawContent)
	}
	return blocks
}

func (c *Chopper) readSource(path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access source file: %w", err)
	}
	if stat.Size() > config.MaxSourceFileSize {
		return "", fmt.Errorf("source file too large (max %d bytes): %s", int64(config.MaxSourceFileSize), path)
	}

	data, err := os.ReadFile(path) //nolint:gosec // path came from file discovery
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid text: %s", path)
	}
	return string(data), nil
}

// Discover returns the source files under root, identified by suffix. A
// root that is itself a file is returned as-is. Symbolic links are skipped.
func Discover(root, suffix string) ([]string, error) {
	stat, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to access source path: %w", err)
	}
	if !stat.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan source directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
