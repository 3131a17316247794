package scene

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
	"github.com/Carmen-Shannon/oxy-mocap/engine/light"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer/renderertest"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *renderertest.Renderer) {
	t.Helper()
	fake := renderertest.New(800, 600)
	return NewScene(fake, options...), fake
}

func decodePosition(data []byte) [3]float32 {
	return [3]float32{common.Float32At(data, 0), common.Float32At(data, 1), common.Float32At(data, 2)}
}

func TestScene_AllocateCreatesOnePrimitivePerJoint(t *testing.T) {
	s, fake := newTestScene(t)

	require.NoError(t, s.Allocate(17))

	assert.True(t, s.Allocated())
	assert.Equal(t, 17, s.JointCount())
	handles := s.Handles()
	require.Len(t, handles, 17)
	for i, h := range handles {
		assert.True(t, h.Initialized(), "joint %d", i)
	}
	// Scene uniforms plus one provider per joint.
	assert.Len(t, fake.Providers(), 18)
}

func TestScene_AllocateStartsAtOrigin(t *testing.T) {
	s, fake := newTestScene(t)
	require.NoError(t, s.Allocate(3))

	for _, label := range []string{"Joint 0", "Joint 1", "Joint 2"} {
		writes := fake.WritesTo(label)
		require.Len(t, writes, 1, label)
		assert.Equal(t, [3]float32{0, 0, 0}, decodePosition(writes[0].Data))
		assert.Equal(t, renderer.JointBindingPosition, writes[0].Binding)
	}
	assert.Equal(t, 0, s.Flush(), "allocation leaves nothing dirty")
}

func TestScene_AllocateUploadsLightingAndMaterial(t *testing.T) {
	s, fake := newTestScene(t, WithPointColor(0xff0000))
	require.NoError(t, s.Allocate(1))

	var lighting, material []byte
	for _, w := range fake.WritesTo("Scene") {
		switch w.Binding {
		case renderer.SceneBindingLighting:
			lighting = w.Data
		case renderer.SceneBindingMaterial:
			material = w.Data
		}
	}
	require.Len(t, lighting, light.GPULightUniformSize)
	require.Len(t, material, renderer.MaterialUniformSize)

	assert.Equal(t, float32(5), common.Float32At(lighting, 0))
	assert.Equal(t, float32(1), common.Float32At(lighting, 3))
	assert.InDelta(t, 0.5, common.Float32At(lighting, 8), 1e-6)
	assert.Equal(t, float32(1), common.Float32At(material, 0))
	assert.Equal(t, float32(0), common.Float32At(material, 1))
}

func TestScene_DoubleAllocatePanics(t *testing.T) {
	s, _ := newTestScene(t)
	require.NoError(t, s.Allocate(2))

	assert.Panics(t, func() { _ = s.Allocate(2) })
}

func TestScene_AllocateZeroJointsPanics(t *testing.T) {
	s, _ := newTestScene(t)
	assert.Panics(t, func() { _ = s.Allocate(0) })
}

func TestScene_AllocateFailureReleasesPartialWork(t *testing.T) {
	s, fake := newTestScene(t)
	fake.FailInitAt = 4 // scene uniforms, joint 0, joint 1, then joint 2 fails

	err := s.Allocate(5)
	require.Error(t, err)

	var re *renderer.ResourceError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Joint 2", re.Label)
	assert.ErrorIs(t, err, renderertest.ErrInjected)

	assert.False(t, s.Allocated())
	assert.Empty(t, s.Handles())
	for _, p := range fake.Providers() {
		assert.True(t, p.Released(), p.Label())
	}

	// A failed allocation leaves the scene ready for another attempt.
	fake.FailInitAt = 0
	assert.NoError(t, s.Allocate(5))
}

func TestScene_ReleaseIsIdempotent(t *testing.T) {
	s, fake := newTestScene(t)
	require.NoError(t, s.Allocate(4))

	s.Release()
	s.Release()

	assert.False(t, s.Allocated())
	assert.Empty(t, s.Handles())
	assert.Equal(t, 0, s.JointCount())
	for _, p := range fake.Providers() {
		assert.True(t, p.Released(), p.Label())
	}

	// Release then Allocate is a valid cycle.
	require.NoError(t, s.Allocate(2))
	assert.Equal(t, 2, s.JointCount())
}

func TestScene_ReleaseBeforeAllocate(t *testing.T) {
	s, _ := newTestScene(t)
	assert.NotPanics(t, s.Release)
}

func TestScene_WritePositionIsDeferredUntilFlush(t *testing.T) {
	s, fake := newTestScene(t)
	require.NoError(t, s.Allocate(3))
	fake.Reset()

	s.WritePosition(1, 0.1, 0.2, 0.3)
	assert.Empty(t, fake.Writes())
	assert.Equal(t, [3]float32{0.1, 0.2, 0.3}, s.Position(1))

	// Rewriting a dirty joint replaces the value without a second upload.
	s.WritePosition(1, 0.4, 0.5, 0.6)
	assert.Equal(t, 1, s.Flush())

	writes := fake.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "Joint 1", writes[0].Label)
	assert.Equal(t, [3]float32{0.4, 0.5, 0.6}, decodePosition(writes[0].Data))

	assert.Equal(t, 0, s.Flush())
}

func TestScene_WritePositionDoesNotAllocate(t *testing.T) {
	s, _ := newTestScene(t)
	require.NoError(t, s.Allocate(8))

	allocs := testing.AllocsPerRun(100, func() {
		for i := range 8 {
			s.WritePosition(i, 1, 2, 3)
		}
	})
	assert.Zero(t, allocs)
}

func TestScene_WritePositionOutOfRangePanics(t *testing.T) {
	s, _ := newTestScene(t)
	require.NoError(t, s.Allocate(2))

	assert.Panics(t, func() { s.WritePosition(2, 0, 0, 0) })
	assert.Panics(t, func() { s.WritePosition(-1, 0, 0, 0) })
}

func TestScene_DrawWritesCameraAndDrawsEveryJoint(t *testing.T) {
	s, fake := newTestScene(t, WithPointSize(0.1))
	require.NoError(t, s.Allocate(3))
	fake.Reset()

	cam := camera.NewCamera(camera.WithController(camera.NewCameraController()))
	s.Draw(cam)

	writes := fake.WritesTo("Scene")
	require.Len(t, writes, 1)
	assert.Equal(t, renderer.SceneBindingCamera, writes[0].Binding)
	require.Len(t, writes[0].Data, camera.GPUCameraUniformSize)
	assert.InDelta(t, 0.1, common.Float32At(writes[0].Data, 35), 1e-6)

	draws := fake.Draws()
	require.Len(t, draws, 3)
	for i, d := range draws {
		assert.Equal(t, "Scene", d.Scene)
		assert.Equal(t, fmt.Sprintf("Joint %d", i), d.Joint)
		assert.Greater(t, d.Seq, writes[0].Seq, "the camera is written before the draws")
	}
}

func TestScene_DrawAfterReleaseIsNoop(t *testing.T) {
	s, fake := newTestScene(t)
	require.NoError(t, s.Allocate(3))
	s.Release()
	fake.Reset()

	s.Draw(camera.NewCamera(camera.WithController(camera.NewCameraController())))
	assert.Empty(t, fake.Draws())
	assert.Empty(t, fake.Writes())
}

func TestScene_Defaults(t *testing.T) {
	s, _ := newTestScene(t)

	assert.Equal(t, float32(0.05), s.PointSize())
	lights := s.Lights()
	require.Len(t, lights, 2)
	assert.Equal(t, light.LightTypePoint, lights[0].Type())
	assert.Equal(t, light.LightTypeAmbient, lights[1].Type())
	assert.Equal(t, float32(0.5), lights[1].Intensity())
}

func TestNewScene_NilRendererPanics(t *testing.T) {
	assert.Panics(t, func() { NewScene(nil) })
}

type recorder struct {
	positions map[int][3]float32
}

func (r *recorder) WritePosition(i int, x, y, z float32) {
	r.positions[i] = [3]float32{x, y, z}
}

func TestApplyFrame(t *testing.T) {
	ds, err := dataset.New(
		[]string{"Pelvis", "Neck"},
		30,
		[]dataset.Frame{
			{Number: 0, Keypoints: []dataset.Keypoint{{0, 0, 0}, {0, 1, 0}}},
			{Number: 1, Keypoints: []dataset.Keypoint{{1, 2, 3}, {4, 5, 6}}},
		},
	)
	require.NoError(t, err)

	rec := &recorder{positions: map[int][3]float32{}}
	ApplyFrame(ds, 1, rec)

	assert.Equal(t, map[int][3]float32{0: {1, 2, 3}, 1: {4, 5, 6}}, rec.positions)
}

func TestApplyFrame_IntoScene(t *testing.T) {
	ds, err := dataset.New(
		[]string{"A", "B", "C"},
		10,
		[]dataset.Frame{
			{Keypoints: []dataset.Keypoint{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}},
		},
	)
	require.NoError(t, err)

	s, fake := newTestScene(t)
	require.NoError(t, s.Allocate(ds.JointCount()))
	fake.Reset()

	ApplyFrame(ds, 0, s)
	assert.Equal(t, 3, s.Flush())
	assert.Equal(t, [3]float32{3, 3, 3}, s.Position(2))
}
