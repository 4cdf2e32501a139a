// Package watch re-runs a build when files under a source tree change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Filter selects the paths that matter, using slash-separated paths
// relative to the watched root. *discovery.Discoverer satisfies it.
type Filter interface {
	Excluded(rel string) bool
	Included(rel string) bool
}

// RebuildFunc performs one full build.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers a rebuild after a burst of relevant file changes has
// settled for the debounce interval.
type Watcher struct {
	root     string
	filter   Filter
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *slog.Logger
}

// New creates a Watcher. It does not start watching until Run.
func New(root string, filter Filter, debounce time.Duration, rebuild RebuildFunc, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	return &Watcher{root: abs, filter: filter, debounce: debounce, rebuild: rebuild, logger: logger}, nil
}

// Run watches until ctx is cancelled. Rebuilds run on the watching
// goroutine, so they never overlap; a failed rebuild is logged and the
// watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fw.Close()

	if err := w.addDirsRecursive(fw, w.root); err != nil {
		return fmt.Errorf("watch: add %s: %w", w.root, err)
	}
	w.logger.Info("watcher: started", slog.String("root", w.root), slog.Duration("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			w.logger.Info("watcher: change detected, rebuilding")
			if err := w.rebuild(ctx); err != nil {
				w.logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.relevant(fw, ev) {
				timer.Reset(w.debounce)
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// relevant reports whether ev should schedule a rebuild. New directories
// are added to the watch list as a side effect.
func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	rel, err := w.rel(ev.Name)
	if err != nil || w.filter.Excluded(rel) {
		return false
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			if addErr := w.addDirsRecursive(fw, ev.Name); addErr != nil {
				w.logger.Warn("watcher: add new dir failed",
					slog.String("path", rel),
					slog.String("error", addErr.Error()))
			} else {
				w.logger.Debug("watcher: watching new dir", slog.String("path", rel))
			}
			// Files may already be inside before the watch was added.
			return true
		}
	}

	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !w.filter.Included(rel) {
		return false
	}
	w.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
	return true
}

func (w *Watcher) rel(abs string) (string, error) {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// addDirsRecursive adds dir and all its subdirectories that are not
// excluded to the watcher.
func (w *Watcher) addDirsRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root {
			if rel, relErr := w.rel(p); relErr == nil && w.filter.Excluded(rel) {
				return filepath.SkipDir
			}
		}
		return fw.Add(p)
	})
}
