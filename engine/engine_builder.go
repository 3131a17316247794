package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/playback"
	"github.com/Carmen-Shannon/oxy-mocap/engine/profiler"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/scene"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithRenderer sets the renderer the engine draws through. Required.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets a pre-configured scene. Defaults to scene.NewScene over the engine's renderer.
//
// Parameters:
//   - s: the scene; must draw through the same renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithCamera sets a pre-configured camera. Defaults to a camera at (0, 0.5, 2) looking at the origin.
//
// Parameters:
//   - c: the camera; must carry a controller
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithRefreshSource sets what paces the render loop. Defaults to a ticker at the refresh rate.
//
// Parameters:
//   - s: the refresh source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRefreshSource(s RefreshSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = s
	}
}

// WithRefreshRate sets the rate of the default ticker refresh source.
// Values <= 0 will be treated as the default (60Hz). Ignored when WithRefreshSource is used.
//
// Parameters:
//   - hz: ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRefreshRate(hz float64) EngineBuilderOption {
	return func(e *engine) {
		if hz <= 0 {
			hz = 60
		}
		e.refreshRate = hz
	}
}

// WithTimeSource sets the clock read at each tick. Defaults to the system clock.
//
// Parameters:
//   - ts: the time source
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTimeSource(ts playback.TimeSource) EngineBuilderOption {
	return func(e *engine) {
		if ts != nil {
			e.timeSource = ts
		}
	}
}

// WithAutoplay starts playback as soon as the loop runs.
//
// Parameters:
//   - enabled: true to start playing
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAutoplay(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.playing.Store(enabled)
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets a pre-configured profiler; implies nothing about WithProfiling.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithStatusCallback registers a function called from the loop goroutine whenever the
// displayed frame or the play state changes. Calling Shutdown or Swap from the callback panics;
// the loop recovers, logs the panic and ends Run.
//
// Parameters:
//   - callback: receives the new status
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStatusCallback(callback func(Status)) EngineBuilderOption {
	return func(e *engine) {
		e.onStatus = callback
	}
}

// WithLogger sets the logger for lifecycle events. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil keeps the default
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
