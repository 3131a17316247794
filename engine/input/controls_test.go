package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/window"
)

type fakeTarget struct {
	cam     camera.Camera
	toggles int
	resets  int
	steps   []int
	views   []string
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{cam: camera.NewCamera(camera.WithController(camera.NewCameraController()))}
}

func (f *fakeTarget) TogglePlay() bool          { f.toggles++; return f.toggles%2 == 1 }
func (f *fakeTarget) Reset()                    { f.resets++ }
func (f *fakeTarget) Step(delta int)            { f.steps = append(f.steps, delta) }
func (f *fakeTarget) SetCameraView(name string) { f.views = append(f.views, name) }
func (f *fakeTarget) Camera() camera.Camera     { return f.cam }

func TestControls_Keys(t *testing.T) {
	target := newFakeTarget()
	c := NewControls(target)

	c.KeyDown(common.KeySpace)
	c.KeyDown(common.KeyR)
	c.KeyDown(common.KeyLeft)
	c.KeyDown(common.KeyRight)
	c.KeyDown(common.KeyRight)
	c.KeyDown(common.KeyEsc) // unbound

	assert.Equal(t, 1, target.toggles)
	assert.Equal(t, 1, target.resets)
	assert.Equal(t, []int{-1, 1, 1}, target.steps)
	assert.Empty(t, target.views)
}

func TestControls_PresetKeys(t *testing.T) {
	target := newFakeTarget()
	c := NewControls(target)

	for _, k := range []uint32{common.Key1, common.Key2, common.Key3, common.Key4, common.Key5, common.Key6} {
		c.KeyDown(k)
	}
	assert.Equal(t, camera.PresetNames(), target.views)
}

func TestControls_LeftDragOrbits(t *testing.T) {
	target := newFakeTarget()
	c := NewControls(target)
	ctrl := target.cam.Controller()

	c.MouseMove(100, 100) // hover does nothing
	assert.True(t, ctrl.Settled())

	c.MouseButton(window.MouseButtonLeft, true, 100, 100)
	c.MouseMove(120, 100)
	assert.False(t, ctrl.Settled())

	before := ctrl.Azimuth()
	for range 600 {
		ctrl.Update(1.0 / 60.0)
	}
	assert.InDelta(t, before-20*ctrl.MouseSensitivity(), ctrl.Azimuth(), 1e-4)

	c.MouseButton(window.MouseButtonLeft, false, 120, 100)
	c.MouseMove(200, 200)
	assert.True(t, ctrl.Settled())
}

func TestControls_RightDragPans(t *testing.T) {
	target := newFakeTarget()
	c := NewControls(target, WithPanPerPixel(0.01))
	ctrl := target.cam.Controller()

	c.MouseButton(window.MouseButtonRight, true, 0, 0)
	c.MouseMove(0, 10)
	for range 600 {
		ctrl.Update(1.0 / 60.0)
	}

	_, ty, _ := ctrl.Target()
	assert.Greater(t, ty, float32(0), "dragging down raises the target")
}

func TestControls_ScrollDollies(t *testing.T) {
	target := newFakeTarget()
	c := NewControls(target)
	ctrl := target.cam.Controller()
	start := ctrl.Radius()

	c.Scroll(2)
	for range 600 {
		ctrl.Update(1.0 / 60.0)
	}
	assert.Less(t, ctrl.Radius(), start)
}
