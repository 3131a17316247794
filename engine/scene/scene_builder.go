package scene

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/light"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithLights replaces the default light rig.
//
// Parameters:
//   - lights: the lights to use; the first enabled point light and all ambient lights are uploaded
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLights(lights ...light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lights = lights
	}
}

// WithPointSize sets the world-space diameter of each joint point. Non-positive values are ignored.
//
// Parameters:
//   - size: point diameter in world units
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPointSize(size float32) SceneBuilderOption {
	return func(s *scene) {
		if size > 0 {
			s.pointSize = size
		}
	}
}

// WithPointColor sets the joint point color from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the color
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPointColor(hex uint32) SceneBuilderOption {
	return func(s *scene) {
		s.pointColor = common.RGB(hex)
	}
}

// WithLogger sets the logger for lifecycle events. Defaults to slog.Default().
//
// Parameters:
//   - logger: the logger; nil keeps the default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
