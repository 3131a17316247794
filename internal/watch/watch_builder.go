package watch

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
)

// WatcherOption is a functional option for configuring a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the file must be quiet before it is reloaded.
// Values <= 0 are ignored.
//
// Parameters:
//   - d: quiet period (default 200ms)
//
// Returns:
//   - WatcherOption: option function to apply
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithDecodeOptions passes options to dataset.LoadFile on every reload.
//
// Parameters:
//   - options: decode options
//
// Returns:
//   - WatcherOption: option function to apply
func WithDecodeOptions(options ...dataset.DecodeOption) WatcherOption {
	return func(w *Watcher) {
		w.load = func(p string) (*dataset.Dataset, error) {
			return dataset.LoadFile(p, options...)
		}
	}
}

// WithReloadCallback registers a function called after every reload attempt with either
// the new dataset or the error that kept the old one in place.
//
// Parameters:
//   - callback: receives the outcome
//
// Returns:
//   - WatcherOption: option function to apply
func WithReloadCallback(callback func(ds *dataset.Dataset, err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = callback
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil keeps the default
//
// Returns:
//   - WatcherOption: option function to apply
func WithLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}
