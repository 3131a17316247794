// Package scene owns the GPU-resident primitives that represent a keypoint dataset: one
// point per joint plus the shared camera, lighting and material uniforms.
package scene

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/light"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer/bind_group_provider"
)

// PositionWriter receives joint positions. Scene implements it; tests substitute recorders.
type PositionWriter interface {
	// WritePosition sets joint i's position.
	//
	// Parameters:
	//   - i: joint index in [0, JointCount)
	//   - x, y, z: world-space position
	WritePosition(i int, x, y, z float32)
}

// Scene manages the per-joint point primitives and the fixed light rig for one dataset load.
// Resources are created by Allocate, mutated in place every frame through WritePosition and
// Flush, and released deterministically by Release.
// Thread-safe for concurrent access, though the render loop is expected to be its only writer.
type Scene interface {
	PositionWriter

	// Allocate creates jointCount point primitives, each with its own position buffer set to
	// the origin, plus the shared scene uniforms. If any GPU object cannot be created,
	// everything created so far is released and the error is returned.
	//
	// Panics if the scene is already allocated or jointCount is not positive.
	//
	// Parameters:
	//   - jointCount: number of joints in the dataset
	//
	// Returns:
	//   - error: a *renderer.ResourceError on GPU failure
	Allocate(jointCount int) error

	// Release frees every primitive, buffer and the lighting uniform. Safe to call more than
	// once or before Allocate.
	Release()

	// Allocated reports whether resources are currently held.
	Allocated() bool

	// JointCount returns the number of allocated joint primitives, 0 when released.
	JointCount() int

	// Handles returns the joint providers in joint order. Empty after Release.
	//
	// Returns:
	//   - []bind_group_provider.BindGroupProvider: a copy of the joint handle list
	Handles() []bind_group_provider.BindGroupProvider

	// Position returns the staged position of joint i.
	//
	// Parameters:
	//   - i: joint index in [0, JointCount)
	//
	// Returns:
	//   - [3]float32: the last written position
	Position(i int) [3]float32

	// Flush uploads every joint written since the previous Flush, one queue write per dirty
	// joint, and clears the dirty set.
	//
	// Returns:
	//   - int: the number of joints uploaded
	Flush() int

	// Draw writes the camera uniform and issues one point draw per joint. Must be called
	// between renderer BeginFrame and EndFrame.
	//
	// Parameters:
	//   - cam: the camera whose matrices and position are uploaded
	Draw(cam camera.Camera)

	// Lights returns the scene's light rig.
	Lights() []light.Light

	// PointSize returns the world-space diameter of each joint point.
	PointSize() float32
}

// jointStride is the byte size of one joint's staging slot (vec4<f32>).
const jointStride = renderer.JointUniformSize

type scene struct {
	mu       *sync.Mutex
	renderer renderer.Renderer
	logger   *slog.Logger

	lights     []light.Light
	pointSize  float32
	pointColor [3]float32

	allocated     bool
	sceneProvider bind_group_provider.BindGroupProvider
	joints        []bind_group_provider.BindGroupProvider

	// staging holds every joint's position uniform back to back; dirty/dirtyList track which
	// slots changed since the last Flush. All are sized once in Allocate.
	staging   []byte
	dirty     []bool
	dirtyList []int
	writes    []bind_group_provider.BufferWrite

	cameraBuf   []byte
	cameraWrite []bind_group_provider.BufferWrite
}

var _ Scene = &scene{}

// NewScene creates a new, unallocated Scene drawing through the given renderer.
// Defaults to green 0.05-unit points lit by a white point light at (5, 5, 5) and a
// half-intensity white ambient light.
//
// Panics if r is nil.
//
// Parameters:
//   - r: the renderer that owns the GPU device
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if r == nil {
		panic("scene: NewScene requires a renderer")
	}

	s := &scene{
		mu:         &sync.Mutex{},
		renderer:   r,
		logger:     slog.Default(),
		pointSize:  0.05,
		pointColor: common.RGB(0x00ff00),
		lights: []light.Light{
			light.NewLight(light.LightTypePoint,
				light.WithPosition(5, 5, 5),
				light.WithHexColor(0xffffff),
				light.WithIntensity(1),
			),
			light.NewLight(light.LightTypeAmbient,
				light.WithHexColor(0xffffff),
				light.WithIntensity(0.5),
			),
		},
		cameraBuf:   make([]byte, camera.GPUCameraUniformSize),
		cameraWrite: make([]bind_group_provider.BufferWrite, 1),
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Allocate(jointCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocated {
		panic("scene: Allocate called on an allocated scene; call Release first")
	}
	if jointCount <= 0 {
		panic(fmt.Sprintf("scene: Allocate requires at least one joint, got %d", jointCount))
	}

	sceneProvider := bind_group_provider.NewBindGroupProvider("Scene")
	if err := s.renderer.InitBindGroup(sceneProvider, renderer.BindGroupSlotScene); err != nil {
		sceneProvider.Release()
		return err
	}

	joints := make([]bind_group_provider.BindGroupProvider, 0, jointCount)
	for i := range jointCount {
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Joint %d", i))
		if err := s.renderer.InitBindGroup(p, renderer.BindGroupSlotJoint); err != nil {
			p.Release()
			for _, created := range joints {
				created.Release()
			}
			sceneProvider.Release()
			s.logger.Error("scene allocation failed", slog.Int("joint", i), slog.Any("error", err))
			return err
		}
		joints = append(joints, p)
	}

	s.sceneProvider = sceneProvider
	s.joints = joints
	s.staging = make([]byte, jointCount*jointStride)
	s.dirty = make([]bool, jointCount)
	s.dirtyList = make([]int, 0, jointCount)
	s.writes = make([]bind_group_provider.BufferWrite, 0, jointCount)
	s.allocated = true

	// Every joint starts at the origin; w is unused by the shader.
	for i := range jointCount {
		s.stage(i, 0, 0, 0)
	}
	s.flush()
	s.writeSceneUniforms()

	s.logger.Info("scene resources allocated", slog.Int("joints", jointCount))
	return nil
}

// writeSceneUniforms uploads the lighting and material uniforms.
// Caller must hold the mutex.
func (s *scene) writeSceneUniforms() {
	lighting := light.BuildLightUniform(s.lights)
	material := make([]byte, renderer.MaterialUniformSize)
	common.PutFloat32s(material, s.pointColor[0], s.pointColor[1], s.pointColor[2], 1)

	s.renderer.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.sceneProvider, Binding: renderer.SceneBindingLighting, Data: lighting.Marshal()},
		{Provider: s.sceneProvider, Binding: renderer.SceneBindingMaterial, Data: material},
	})
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allocated {
		return
	}
	for _, p := range s.joints {
		p.Release()
	}
	s.sceneProvider.Release()

	count := len(s.joints)
	s.joints = nil
	s.sceneProvider = nil
	s.staging = nil
	s.dirty = nil
	s.dirtyList = nil
	s.writes = nil
	s.allocated = false

	s.logger.Info("scene resources released", slog.Int("joints", count))
}

func (s *scene) Allocated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocated
}

func (s *scene) JointCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.joints)
}

func (s *scene) Handles() []bind_group_provider.BindGroupProvider {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bind_group_provider.BindGroupProvider, len(s.joints))
	copy(out, s.joints)
	return out
}

// checkIndex panics when i does not name an allocated joint.
// Caller must hold the mutex.
func (s *scene) checkIndex(i int) {
	if i < 0 || i >= len(s.joints) {
		panic(fmt.Sprintf("scene: joint index %d out of range [0, %d)", i, len(s.joints)))
	}
}

// stage writes a position into joint i's staging slot and marks it dirty.
// Caller must hold the mutex.
func (s *scene) stage(i int, x, y, z float32) {
	common.PutFloat32s(s.staging[i*jointStride:(i+1)*jointStride], x, y, z, 1)
	if !s.dirty[i] {
		s.dirty[i] = true
		s.dirtyList = append(s.dirtyList, i)
	}
}

func (s *scene) WritePosition(i int, x, y, z float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIndex(i)
	s.stage(i, x, y, z)
}

func (s *scene) Position(i int) [3]float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIndex(i)
	slot := s.staging[i*jointStride:]
	return [3]float32{common.Float32At(slot, 0), common.Float32At(slot, 1), common.Float32At(slot, 2)}
}

// flush uploads dirty joints.
// Caller must hold the mutex.
func (s *scene) flush() int {
	if len(s.dirtyList) == 0 {
		return 0
	}
	s.writes = s.writes[:0]
	for _, i := range s.dirtyList {
		s.writes = append(s.writes, bind_group_provider.BufferWrite{
			Provider: s.joints[i],
			Binding:  renderer.JointBindingPosition,
			Data:     s.staging[i*jointStride : (i+1)*jointStride],
		})
		s.dirty[i] = false
	}
	n := len(s.dirtyList)
	s.dirtyList = s.dirtyList[:0]
	s.renderer.WriteBuffers(s.writes)
	return n
}

func (s *scene) Flush() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.allocated {
		return 0
	}
	return s.flush()
}

func (s *scene) Draw(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allocated {
		return
	}

	u := cam.Uniform(s.pointSize)
	u.MarshalInto(s.cameraBuf)
	s.cameraWrite[0] = bind_group_provider.BufferWrite{
		Provider: s.sceneProvider,
		Binding:  renderer.SceneBindingCamera,
		Data:     s.cameraBuf,
	}
	s.renderer.WriteBuffers(s.cameraWrite)

	for _, j := range s.joints {
		s.renderer.DrawPoint(s.sceneProvider, j)
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) PointSize() float32 {
	return s.pointSize
}
