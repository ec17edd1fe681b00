// Package watch re-runs the analysis pipeline when files under the scan root
// change. Every trigger is a full pipeline pass; there is no incremental
// analysis. Events are debounced so a burst of writes produces one run.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/harrison/codedigest/internal/logger"
)

// DefaultDebounce is the quiet period required after the last event before a
// run is triggered.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a directory tree and invokes a run function on changes.
type Watcher struct {
	root       string
	ignoreDirs map[string]bool
	artifacts  map[string]bool
	debounce   time.Duration
	run        func(context.Context)
	log        logger.Logger
	fsw        *fsnotify.Watcher
}

// New creates a Watcher over root.
//
// ignoreDirs are directory names never watched (matching the scanner's
// deny-list). artifacts are file paths whose events are ignored, so the
// tool's own digest and report writes don't retrigger runs. run is invoked
// after each debounced change burst.
func New(root string, ignoreDirs []string, artifacts []string, debounce time.Duration, run func(context.Context), log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		root:       root,
		ignoreDirs: make(map[string]bool),
		artifacts:  make(map[string]bool),
		debounce:   debounce,
		run:        run,
		log:        log,
		fsw:        fsw,
	}
	for _, dir := range ignoreDirs {
		w.ignoreDirs[dir] = true
	}
	for _, a := range artifacts {
		if abs, err := filepath.Abs(a); err == nil {
			w.artifacts[abs] = true
		}
		w.artifacts[a] = true
	}

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoriesRecursively registers root and every non-ignored
// subdirectory with the underlying watcher.
func (w *Watcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal: the watcher
			// should keep covering the rest of the tree
			w.log.Warnf("watch: skipping %s: %v", path, err)
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignoreDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warnf("watch: failed to watch %s: %v", path, err)
		}
		return nil
	})
}

// Start blocks, dispatching debounced runs until ctx is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	defer w.fsw.Close()

	w.log.Infof("watching %s for changes", w.root)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event) {
				continue
			}

			// New directories need to be picked up for future events
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.ignoreDirs[filepath.Base(event.Name)] {
						if err := w.addDirectoriesRecursively(event.Name); err != nil {
							w.log.Warnf("watch: failed to add %s: %v", event.Name, err)
						}
					}
					continue
				}
			}

			w.log.Debugf("watch: change detected: %s (%s)", event.Name, event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				// A fired-but-unconsumed timer leaves a stale tick in the
				// channel; drain it so Reset opens a full quiet window
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnf("watch: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.run(ctx)
		}
	}
}

// shouldIgnore filters events for artifacts, lock files, and paths inside
// ignored directories.
func (w *Watcher) shouldIgnore(event fsnotify.Event) bool {
	name := event.Name

	if w.artifacts[name] {
		return true
	}
	if abs, err := filepath.Abs(name); err == nil && w.artifacts[abs] {
		return true
	}
	if strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, ".db") ||
		strings.HasSuffix(name, ".db-wal") || strings.HasSuffix(name, ".db-shm") {
		return true
	}
	// Temp files from atomic writes
	if strings.HasPrefix(filepath.Base(name), ".tmp-") {
		return true
	}

	// The deny-list names directories under the scan root; components of
	// the root's own path must not match (a root living under a directory
	// called "build" is still watched)
	rel, err := filepath.Rel(w.root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if w.ignoreDirs[part] {
			return true
		}
	}

	return false
}
