// Package watch reloads a keypoint dataset when its file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
)

// Swapper receives each successfully reloaded dataset. engine.Engine satisfies it.
type Swapper interface {
	Swap(ds *dataset.Dataset) error
}

// Watcher follows one dataset file and hands every valid rewrite of it to a Swapper.
// Bursts of events are collapsed into a single reload once the file has been quiet for the
// debounce period. A rewrite that fails to decode is logged and the current dataset stays.
type Watcher struct {
	path     string
	target   Swapper
	debounce time.Duration
	load     func(path string) (*dataset.Dataset, error)
	onReload func(ds *dataset.Dataset, err error)
	logger   *slog.Logger

	fsw *fsnotify.Watcher
}

// NewWatcher starts watching the directory that holds path. Watching the directory
// rather than the file keeps the watch alive across editors that save by rename.
//
// Parameters:
//   - path: the dataset file
//   - target: receives reloaded datasets
//   - options: functional options to configure the watcher
//
// Returns:
//   - *Watcher: the watcher; call Run to start delivering reloads
//   - error: non-nil if the OS watch could not be set up
func NewWatcher(path string, target Swapper, options ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		target:   target,
		debounce: 200 * time.Millisecond,
		load: func(p string) (*dataset.Dataset, error) {
			return dataset.LoadFile(p)
		},
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers reloads until ctx is cancelled, then closes the OS watch.
//
// Parameters:
//   - ctx: cancels the watch
//
// Returns:
//   - error: nil on cancellation, or the watcher's terminal error
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	w.logger.Info("watching dataset", "path", w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "path", w.path, "error", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	ds, err := w.load(w.path)
	if err == nil {
		err = w.target.Swap(ds)
	}
	if err != nil {
		w.logger.Warn("dataset reload failed", "path", w.path, "error", err)
		ds = nil
	} else {
		w.logger.Info("dataset reloaded", "path", w.path, "frames", ds.FrameCount(), "joints", ds.JointCount())
	}
	if w.onReload != nil {
		w.onReload(ds, err)
	}
}
