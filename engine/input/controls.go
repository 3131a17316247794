// Package input maps window events to playback and camera commands.
package input

import (
	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/window"
)

// Target is the command surface the controls drive. engine.Engine satisfies it.
type Target interface {
	TogglePlay() bool
	Reset()
	Step(delta int)
	SetCameraView(name string)
	Camera() camera.Camera
}

// presetKeys binds the number row to the presets in camera.Presets order.
var presetKeys = map[uint32]camera.Preset{
	common.Key1: camera.PresetFront,
	common.Key2: camera.PresetBack,
	common.Key3: camera.PresetRight,
	common.Key4: camera.PresetLeft,
	common.Key5: camera.PresetTopFront,
	common.Key6: camera.PresetIsometric,
}

// Controls translates raw window input into Target calls:
//
//	Space        toggle play/pause
//	R            reset to frame 0
//	Left/Right   step one frame (pauses)
//	1-6          camera presets
//	left drag    orbit
//	right drag   pan
//	scroll       zoom
//
// Not safe for concurrent use; window callbacks all arrive on the window's thread.
type Controls struct {
	target Target

	panPerPixel float32

	orbiting bool
	panning  bool
	lastX    int32
	lastY    int32
}

// NewControls creates Controls driving the given target.
//
// Parameters:
//   - target: the engine to control
//   - options: functional options to configure the controls
//
// Returns:
//   - *Controls: the controls, not yet attached to a window
func NewControls(target Target, options ...ControlsOption) *Controls {
	c := &Controls{
		target:      target,
		panPerPixel: 0.002,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Attach registers the controls as the window's key, mouse and scroll callbacks.
//
// Parameters:
//   - w: the window to listen to
func (c *Controls) Attach(w window.Window) {
	w.SetKeyDownCallback(c.KeyDown)
	w.SetMouseButtonCallback(c.MouseButton)
	w.SetMouseMoveCallback(c.MouseMove)
	w.SetScrollCallback(c.Scroll)
}

// KeyDown handles a key press or repeat.
//
// Parameters:
//   - keyCode: the key code (see common.Key*)
func (c *Controls) KeyDown(keyCode uint32) {
	switch keyCode {
	case common.KeySpace:
		c.target.TogglePlay()
	case common.KeyR:
		c.target.Reset()
	case common.KeyLeft:
		c.target.Step(-1)
	case common.KeyRight:
		c.target.Step(1)
	default:
		if p, ok := presetKeys[keyCode]; ok {
			c.target.SetCameraView(p.String())
		}
	}
}

// MouseButton starts or ends a drag.
//
// Parameters:
//   - button: the button
//   - pressed: true on press, false on release
//   - x, y: the cursor position
func (c *Controls) MouseButton(button window.MouseButton, pressed bool, x, y int32) {
	switch button {
	case window.MouseButtonLeft:
		c.orbiting = pressed
	case window.MouseButtonRight:
		c.panning = pressed
	default:
		return
	}
	c.lastX, c.lastY = x, y
}

// MouseMove converts drag motion into orbit or pan input.
//
// Parameters:
//   - x, y: the cursor position
func (c *Controls) MouseMove(x, y int32) {
	dx := float32(x - c.lastX)
	dy := float32(y - c.lastY)
	c.lastX, c.lastY = x, y

	if !c.orbiting && !c.panning {
		return
	}
	ctrl := c.target.Camera().Controller()
	if c.orbiting {
		s := ctrl.MouseSensitivity()
		ctrl.Rotate(-dx*s, dy*s)
	}
	if c.panning {
		// Dragging moves the scene with the cursor.
		ctrl.Pan(-dx*c.panPerPixel, dy*c.panPerPixel)
	}
}

// Scroll converts wheel motion into zoom; positive delta moves toward the target.
//
// Parameters:
//   - delta: wheel offset
func (c *Controls) Scroll(delta float32) {
	c.target.Camera().Controller().Dolly(delta)
}

// ControlsOption is a functional option for configuring Controls.
type ControlsOption func(c *Controls)

// WithPanPerPixel sets the pan distance per dragged pixel, as a fraction of the orbit radius.
//
// Parameters:
//   - v: pan fraction per pixel; non-positive values are ignored
//
// Returns:
//   - ControlsOption: option function to apply
func WithPanPerPixel(v float32) ControlsOption {
	return func(c *Controls) {
		if v > 0 {
			c.panPerPixel = v
		}
	}
}
