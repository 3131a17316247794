// Package renderertest provides an in-memory renderer.Renderer for tests that must not touch a GPU.
package renderertest

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer/bind_group_provider"
)

// ErrInjected is the cause wrapped by failures requested through FailInitAt.
var ErrInjected = errors.New("injected failure")

// Write is a recorded buffer write with its data copied at the time of the call.
// Seq orders writes and draws against each other.
type Write struct {
	Seq     int
	Label   string
	Binding int
	Offset  uint64
	Data    []byte
}

// Draw is a recorded DrawPoint call.
type Draw struct {
	Seq   int
	Scene string
	Joint string
}

// Renderer records every call instead of issuing GPU work.
type Renderer struct {
	mu sync.Mutex

	// FailInitAt makes the n-th InitBindGroup call (1-based) fail with a *renderer.ResourceError.
	// Zero never fails.
	FailInitAt int

	// BeginErr is returned by BeginFrame when non-nil.
	BeginErr error

	initCalls int
	seq       int
	providers []bind_group_provider.BindGroupProvider
	writes    []Write
	draws     []Draw
	resizes   [][2]int
	clear     [3]float32
	mode      renderer.PresentMode
	width     int
	height    int
	frames    int
	presented int
	inFrame   bool
	released  int
}

var _ renderer.Renderer = &Renderer{}

// New returns a fake renderer reporting the given surface size.
func New(width, height int) *Renderer {
	return &Renderer{width: width, height: height}
}

func (f *Renderer) Resize(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if width <= 0 || height <= 0 {
		return nil
	}
	f.width, f.height = width, height
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

func (f *Renderer) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height
}

func (f *Renderer) SetPresentMode(mode renderer.PresentMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = mode
}

func (f *Renderer) SetClearColor(rgb [3]float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clear = rgb
}

func (f *Renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, slot renderer.BindGroupSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.initCalls++
	if f.FailInitAt > 0 && f.initCalls == f.FailInitAt {
		return &renderer.ResourceError{Op: "create bind group", Label: provider.Label(), Err: ErrInjected}
	}
	provider.MarkInitialized()
	f.providers = append(f.providers, provider)
	return nil
}

func (f *Renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range writes {
		f.seq++
		f.writes = append(f.writes, Write{
			Seq:     f.seq,
			Label:   w.Provider.Label(),
			Binding: w.Binding,
			Offset:  w.Offset,
			Data:    slices.Clone(w.Data),
		})
	}
}

func (f *Renderer) BeginFrame() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BeginErr != nil {
		return f.BeginErr
	}
	f.inFrame = true
	return nil
}

func (f *Renderer) DrawPoint(scene, joint bind_group_provider.BindGroupProvider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.draws = append(f.draws, Draw{Seq: f.seq, Scene: scene.Label(), Joint: joint.Label()})
}

func (f *Renderer) EndFrame() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFrame {
		f.frames++
		f.inFrame = false
	}
}

func (f *Renderer) Present() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presented++
}

func (f *Renderer) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
}

// Providers returns every provider successfully initialized so far.
func (f *Renderer) Providers() []bind_group_provider.BindGroupProvider {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.providers)
}

// Writes returns the recorded buffer writes.
func (f *Renderer) Writes() []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.writes)
}

// WritesTo returns the recorded writes whose provider label matches.
func (f *Renderer) WritesTo(label string) []Write {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Write
	for _, w := range f.writes {
		if w.Label == label {
			out = append(out, w)
		}
	}
	return out
}

// Draws returns the recorded draw calls.
func (f *Renderer) Draws() []Draw {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.draws)
}

// Resizes returns the sizes applied through Resize, skipping ignored calls.
func (f *Renderer) Resizes() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.resizes)
}

// ClearColor returns the last clear color set.
func (f *Renderer) ClearColor() [3]float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clear
}

// PresentMode returns the last present mode set.
func (f *Renderer) PresentMode() renderer.PresentMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// Frames returns the number of completed BeginFrame/EndFrame pairs.
func (f *Renderer) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Presented returns the number of Present calls.
func (f *Renderer) Presented() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.presented
}

// ReleaseCount returns the number of Release calls.
func (f *Renderer) ReleaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// Reset clears recorded writes and draws.
func (f *Renderer) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.draws = nil
}
