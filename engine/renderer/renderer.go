package renderer

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer/bind_group_provider"
)

// SurfaceSource supplies the native surface the renderer presents to.
// window.Window satisfies this interface.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	width  int
	height int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *[3]float32
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the GPU device, the presentation surface and the single point pipeline
// that draws every joint as a shaded sphere impostor. Per-frame work is split into
// BeginFrame, any number of DrawPoint calls, EndFrame and Present.
type Renderer interface {
	// Resize reconfigures the surface for a new size. A zero or negative dimension
	// (a minimized window) is ignored and the previous configuration is kept.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	//
	// Returns:
	//   - error: a *ResourceError if the depth or MSAA attachments cannot be recreated
	Resize(width, height int) error

	// Size returns the most recently applied surface size.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (int, int)

	// SetPresentMode changes the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color the main pass clears to.
	//
	// Parameters:
	//   - rgb: linear color components in [0, 1]
	SetClearColor(rgb [3]float32)

	// InitBindGroup creates the uniform buffers and bind group for one slot of the point pipeline
	// and stores them on the given provider. Buffers already present on the provider are reused.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to populate
	//   - slot: which bind group layout the provider follows
	//
	// Returns:
	//   - error: a *ResourceError if any GPU object cannot be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, slot BindGroupSlot) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface image and opens the main render pass.
	//
	// Returns:
	//   - error: an error if the surface image cannot be acquired
	BeginFrame() error

	// DrawPoint draws one joint using the shared scene bind group and the joint's own bind group.
	//
	// Parameters:
	//   - scene: provider holding camera, lighting and material uniforms
	//   - joint: provider holding the joint position uniform
	DrawPoint(scene, joint bind_group_provider.BindGroupProvider)

	// EndFrame closes the render pass and submits the recorded commands.
	EndFrame()

	// Present displays the submitted frame.
	Present()

	// Release frees every GPU object the renderer owns. Safe to call more than once.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer with the specified backend type, presenting to the given surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - source: provides the native surface descriptor and its initial size
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: a *ResourceError if the adapter, device or surface cannot be acquired
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      slog.Default(),
	}

	// Apply options first so pre-creation config (e.g. forceFallbackAdapter) is
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		backend, err := newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	default:
		return nil, newResourceError("select backend", "", fmt.Errorf("unknown backend type %d", backendType))
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.Resize(source.Width(), source.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}

	r.logger.Debug("renderer ready",
		slog.Int("width", source.Width()),
		slog.Int("height", source.Height()),
		slog.Int("msaa", int(msaa)),
		slog.Bool("software", r.forceFallbackAdapter),
	)
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := r.backend.ConfigureSurface(width, height); err != nil {
		r.logger.Error("surface configuration failed", slog.Any("error", err))
		return err
	}

	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(rgb [3]float32) {
	r.backend.SetClearColor(rgb)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, slot BindGroupSlot) error {
	return r.backend.InitBindGroup(provider, slot)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) == 0 {
		return
	}
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawPoint(scene, joint bind_group_provider.BindGroupProvider) {
	r.backend.DrawPoint(scene, joint)
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.backend.Release()
}
