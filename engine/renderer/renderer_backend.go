package renderer

import "github.com/Carmen-Shannon/oxy-mocap/engine/renderer/bind_group_provider"

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode maps "vsync" or "uncapped" to a PresentMode.
//
// Parameters:
//   - name: the mode name
//
// Returns:
//   - PresentMode: the mode
//   - bool: false if the name is unknown
func ParsePresentMode(name string) (PresentMode, bool) {
	switch name {
	case "vsync":
		return PresentModeVSync, true
	case "uncapped":
		return PresentModeUncapped, true
	}
	return PresentModeVSync, false
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// BindGroupSlot identifies one of the two bind group layouts of the point pipeline.
type BindGroupSlot int

const (
	// BindGroupSlotScene is group 0: camera, lighting and point material uniforms shared by
	// every draw.
	BindGroupSlotScene BindGroupSlot = iota

	// BindGroupSlotJoint is group 1: one joint's position uniform.
	BindGroupSlotJoint
)

// Binding indices within BindGroupSlotScene.
const (
	SceneBindingCamera   = 0
	SceneBindingLighting = 1
	SceneBindingMaterial = 2
)

// Binding indices within BindGroupSlotJoint.
const (
	JointBindingPosition = 0
)

// JointUniformSize is the byte size of one joint's position uniform (vec4<f32>).
const JointUniformSize = 16

// MaterialUniformSize is the byte size of the point material uniform (vec4<f32>).
const MaterialUniformSize = 16

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// backendOps is the API-neutral surface shared by every backend.
type backendOps interface {
	ConfigureSurface(width, height int) error
	SetPresentMode(mode PresentMode)
	SetClearColor(rgb [3]float32)
	InitBindGroup(provider bind_group_provider.BindGroupProvider, slot BindGroupSlot) error
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame() error
	DrawPoint(scene, joint bind_group_provider.BindGroupProvider)
	EndFrame()
	Present()
	Release()
}
