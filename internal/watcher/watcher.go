// Package watcher re-chops source files when they change on disk.
//
// Change notifications for the same path are debounced within a quiet
// window so editor save churn (temp files, double writes) cannot trigger
// re-entrant processing of the same file.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window before a changed file is processed.
const DefaultDebounce = time.Second

// Watcher watches a source tree and invokes an action for changed files.
type Watcher struct {
	root     string
	suffix   string
	debounce time.Duration
	action   func(path string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a Watcher over root. Only files ending in suffix trigger
// action. A non-positive debounce falls back to DefaultDebounce.
func New(root, suffix string, debounce time.Duration, action func(string)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     root,
		suffix:   suffix,
		debounce: debounce,
		action:   action,
		timers:   make(map[string]*time.Timer),
	}
}

// Run watches until ctx is cancelled. Directories created while watching
// are added to the watch set.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch source tree: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)
		case _, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			// Watch errors are transient (e.g. a directory vanished
			// mid-walk); keep watching.
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			_ = fw.Add(event.Name)
			return
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	if !strings.HasSuffix(event.Name, w.suffix) {
		return
	}
	w.schedule(event.Name)
}

// schedule arms the per-path debounce timer, resetting it if the path is
// already pending.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.action(path)
	})
}

// drain stops all pending timers on shutdown.
func (w *Watcher) drain() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}
