// Package engine drives playback of a keypoint dataset: it owns the playback state, paces frame
// advance against the dataset's frame rate, pushes positions into the scene and renders one
// frame per refresh tick.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
	"github.com/Carmen-Shannon/oxy-mocap/engine/playback"
	"github.com/Carmen-Shannon/oxy-mocap/engine/profiler"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/scene"
)

// State is the engine lifecycle state.
type State int32

const (
	// StateUninitialized is the state before Init succeeds.
	StateUninitialized State = iota

	// StateRunning means a dataset is loaded and its resources are allocated. The render
	// loop runs while Run is active.
	StateRunning

	// StateStopped is terminal; entered by Shutdown.
	StateStopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

var (
	// ErrNotInitialized is returned by Run and Swap before Init has succeeded.
	ErrNotInitialized = errors.New("engine: not initialized")

	// ErrStopped is returned by Run and Swap after Shutdown.
	ErrStopped = errors.New("engine: stopped")
)

// Status is a snapshot of the playback position, delivered to the status callback whenever
// the displayed frame or the play state changes.
type Status struct {
	Frame   int
	Total   int
	Time    float64 // seconds, Frame / FPS
	Playing bool
}

// String formats the status as the viewer's status line.
func (s Status) String() string {
	return fmt.Sprintf("Frame: %d / %d | Time: %.2fs", s.Frame, s.Total-1, s.Time)
}

// Engine is the render loop driver and the only owner of playback state.
// UI code holds an Engine and calls its control methods from any goroutine; the loop goroutine
// is the sole writer of scene resources and camera integration.
type Engine interface {
	// Init loads the dataset, allocates one point per joint and moves to StateRunning.
	// The loop does not start until Run is called.
	//
	// Panics if called more than once.
	//
	// Parameters:
	//   - ds: the decoded dataset
	//
	// Returns:
	//   - error: a *renderer.ResourceError if GPU resources cannot be created
	Init(ds *dataset.Dataset) error

	// Run drives ticks from the refresh source until ctx is cancelled, Shutdown is called or
	// the loop stops on its own. Shutdown is performed before Run returns.
	//
	// Parameters:
	//   - ctx: cancellation for the whole run
	//
	// Returns:
	//   - error: ErrNotInitialized or ErrStopped if the engine cannot run, ctx.Err() on cancellation
	Run(ctx context.Context) error

	// Shutdown cancels the loop, waits for an in-flight tick to finish, then releases scene
	// resources. Safe to call more than once and from any goroutine except the status
	// callback, where it panics.
	Shutdown()

	// Swap replaces the dataset. The loop is stopped, resources are released and reallocated
	// for the new joint count, the clock and frame index are reset, and the loop restarts
	// while Run is active. The play state is kept. If allocation fails the previous dataset
	// stays loaded and its resources are allocated again. Panics when called from the status
	// callback.
	//
	// Parameters:
	//   - ds: the new dataset
	//
	// Returns:
	//   - error: a *renderer.ResourceError on allocation failure, ErrNotInitialized or ErrStopped
	Swap(ds *dataset.Dataset) error

	// State returns the lifecycle state.
	State() State

	// LoadID returns the identifier of the current dataset generation, empty before Init.
	LoadID() string

	// Play resumes frame advance.
	Play()

	// Pause stops frame advance. The displayed frame and camera motion continue to render.
	Pause()

	// TogglePlay flips between Play and Pause.
	//
	// Returns:
	//   - bool: the new play state
	TogglePlay() bool

	// Seek jumps to frame k, clamped to [0, TotalFrames-1], and pauses playback. A Seek
	// always wins over a concurrent frame advance.
	//
	// Parameters:
	//   - k: the target frame index
	Seek(k int)

	// Step seeks relative to the current frame.
	//
	// Parameters:
	//   - delta: frames to move; negative steps back
	Step(delta int)

	// Reset is Seek(0).
	Reset()

	// SetCameraView applies a named preset ("front", "back", "right", "left", "top-front",
	// "isometric"). Panics on an unknown name.
	//
	// Parameters:
	//   - name: the preset name
	SetCameraView(name string)

	// Resize updates the camera aspect and the renderer surface. A zero dimension skips both.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// Camera returns the engine's camera.
	Camera() camera.Camera

	// Dataset returns the loaded dataset, nil before Init.
	Dataset() *dataset.Dataset

	// CurrentFrame returns the current frame index.
	CurrentFrame() int

	// TotalFrames returns the dataset's frame count, 0 before Init.
	TotalFrames() int

	// FPS returns the dataset's frame rate, 0 before Init.
	FPS() float64

	// JointNames returns the dataset's joint names, nil before Init.
	JointNames() []string

	// IsPlaying reports whether frames advance.
	IsPlaying() bool

	// CurrentTime returns the current frame's time in seconds (frame / fps).
	CurrentTime() float64

	// Status returns a snapshot of the playback position.
	Status() Status
}

// loopToken is the handle of one running loop goroutine.
type loopToken struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// framePosition packs the frame index (low 32 bits) with a seek generation (high 32 bits) so a
// frame advance computed before a Seek can never overwrite it, even when both name the same
// index.
type framePosition uint64

func packFrame(frame int, gen uint32) framePosition {
	return framePosition(uint64(gen)<<32 | uint64(uint32(frame)))
}

func (p framePosition) frame() int {
	return int(uint32(p))
}

func (p framePosition) gen() uint32 {
	return uint32(p >> 32)
}

// engine implements the Engine interface.
type engine struct {
	mu *sync.Mutex // guards lifecycle transitions: state, token, runCtx

	state  atomic.Int32
	token  *loopToken
	runCtx context.Context
	quit   chan struct{}
	quitMu sync.Once

	loopGoroutine atomic.Uint64 // id of the running loop goroutine, 0 when none

	renderer   renderer.Renderer
	scene      scene.Scene
	camera     camera.Camera
	clock      playback.Clock
	source     RefreshSource
	timeSource playback.TimeSource
	logger     *slog.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool
	refreshRate      float64

	data     atomic.Pointer[dataset.Dataset]
	position atomic.Uint64 // framePosition
	playing  atomic.Bool
	loadID   atomic.Value // string

	// Loop-goroutine state. Written only by the loop, or by Init/Swap while no loop runs.
	appliedFrame int
	lastTick     time.Time
	lastStatus   Status
	hasStatus    bool

	onStatus func(Status)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine drawing through the given renderer.
// A Scene, Camera and RefreshSource are created with defaults unless supplied through options.
//
// Panics if no renderer is configured via WithRenderer.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine in StateUninitialized
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:           &sync.Mutex{},
		quit:         make(chan struct{}),
		timeSource:   playback.SystemTime(),
		logger:       slog.Default(),
		refreshRate:  60,
		appliedFrame: -1,
	}
	e.loadID.Store("")

	for _, opt := range options {
		opt(e)
	}

	if e.renderer == nil {
		panic("engine: NewEngine requires WithRenderer")
	}
	if e.scene == nil {
		e.scene = scene.NewScene(e.renderer, scene.WithLogger(e.logger))
	}
	if e.camera == nil {
		aspect := float32(16.0 / 9.0)
		if w, h := e.renderer.Size(); w > 0 && h > 0 {
			aspect = float32(w) / float32(h)
		}
		e.camera = camera.NewCamera(
			camera.WithController(camera.NewCameraController()),
			camera.WithAspect(aspect),
		)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	return e
}

func (e *engine) Init(ds *dataset.Dataset) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if State(e.state.Load()) != StateUninitialized {
		panic("engine: Init called more than once")
	}
	if err := e.load(ds); err != nil {
		return err
	}
	e.state.Store(int32(StateRunning))
	return nil
}

// load allocates resources for ds and resets playback state. No loop may be running.
// Caller must hold the mutex.
func (e *engine) load(ds *dataset.Dataset) error {
	if err := e.scene.Allocate(ds.JointCount()); err != nil {
		return err
	}

	if e.clock == nil {
		e.clock = playback.NewClock(ds.FPS())
	} else {
		e.clock.SetFPS(ds.FPS())
	}
	e.clock.Reset()

	e.data.Store(ds)
	e.position.Store(uint64(packFrame(0, framePosition(e.position.Load()).gen()+1)))
	e.appliedFrame = -1
	e.lastTick = time.Time{}
	e.hasStatus = false

	id := uuid.NewString()
	e.loadID.Store(id)
	e.logger.Info("dataset loaded",
		slog.String("load_id", id),
		slog.Int("joints", ds.JointCount()),
		slog.Int("frames", ds.FrameCount()),
		slog.Float64("fps", ds.FPS()),
	)
	return nil
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	switch State(e.state.Load()) {
	case StateUninitialized:
		e.mu.Unlock()
		return ErrNotInitialized
	case StateStopped:
		e.mu.Unlock()
		return ErrStopped
	}
	if e.source == nil {
		e.source = NewTickerSource(e.refreshRate)
	}
	e.runCtx = ctx
	e.startLoop()
	e.mu.Unlock()

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case <-e.quit:
	}
	e.Shutdown()
	return err
}

// startLoop launches the loop goroutine under a fresh token.
// Caller must hold the mutex.
func (e *engine) startLoop() {
	ctx, cancel := context.WithCancel(e.runCtx)
	tok := &loopToken{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	e.token = tok
	go e.loop(tok)
	e.logger.Info("render loop started", slog.String("load_id", e.LoadID()))
}

// resumeLoop starts the loop again while Run is active.
// Caller must hold the mutex.
func (e *engine) resumeLoop() {
	if e.runCtx != nil && e.runCtx.Err() == nil {
		e.startLoop()
	}
}

// stopLoop cancels the running loop, if any, and waits for its goroutine to exit.
// Caller must hold the mutex.
func (e *engine) stopLoop() {
	tok := e.token
	if tok == nil {
		return
	}
	tok.cancel()
	<-tok.done
	e.token = nil
	e.logger.Info("render loop stopped", slog.String("load_id", e.LoadID()))
}

// checkNotLoop panics when called from the loop goroutine, which stopLoop would wait on forever.
func (e *engine) checkNotLoop(op string) {
	if id := e.loopGoroutine.Load(); id != 0 && id == goroutineID() {
		panic(fmt.Sprintf("engine: %s called from the status callback", op))
	}
}

// signalQuit ends Run. Safe to call from the loop goroutine.
func (e *engine) signalQuit() {
	e.quitMu.Do(func() {
		close(e.quit)
	})
}

func (e *engine) loop(tok *loopToken) {
	defer close(tok.done)
	e.loopGoroutine.Store(goroutineID())
	defer e.loopGoroutine.Store(0)
	// Recover from panics inside the loop goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render loop recovered from panic", slog.Any("panic", r))
			e.signalQuit()
		}
	}()

	ticks := e.source.Ticks()
	for {
		select {
		case <-tok.ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				e.signalQuit()
				return
			}
			if tok.ctx.Err() != nil {
				return
			}
			e.tick(e.timeSource.Now())
		}
	}
}

// tick runs one iteration of the render loop: frame advance (if playing), frame apply,
// camera update, draw and profiling. Called only from the loop goroutine.
func (e *engine) tick(now time.Time) {
	ds := e.data.Load()
	total := ds.FrameCount()

	if e.playing.Load() {
		pos := framePosition(e.position.Load())
		if next, advanced := e.clock.Tick(now, pos.frame(), total); advanced {
			// A failed swap means a Seek landed in between; the Seek wins.
			e.position.CompareAndSwap(uint64(pos), uint64(packFrame(next, pos.gen())))
		}
	}

	frame := playback.Clamp(framePosition(e.position.Load()).frame(), total)
	if frame != e.appliedFrame && e.scene.Allocated() {
		scene.ApplyFrame(ds, frame, e.scene)
		e.scene.Flush()
		e.appliedFrame = frame
	}

	var dt float32
	if !e.lastTick.IsZero() {
		dt = float32(now.Sub(e.lastTick).Seconds())
	}
	e.lastTick = now
	e.camera.Update(dt)

	if err := e.renderer.BeginFrame(); err == nil {
		e.scene.Draw(e.camera)
		e.renderer.EndFrame()
		e.renderer.Present()
	} else {
		e.logger.Debug("frame skipped", slog.Any("error", err))
	}

	e.reportStatus()

	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

// reportStatus notifies the status callback when the frame or play state changed.
// Called only from the loop goroutine.
func (e *engine) reportStatus() {
	if e.onStatus == nil {
		return
	}
	st := e.Status()
	if e.hasStatus && st == e.lastStatus {
		return
	}
	e.lastStatus = st
	e.hasStatus = true
	e.onStatus(st)
}

func (e *engine) Shutdown() {
	e.checkNotLoop("Shutdown")
	e.mu.Lock()
	defer e.mu.Unlock()

	if State(e.state.Load()) == StateStopped {
		return
	}
	e.stopLoop()
	e.scene.Release()
	if e.source != nil {
		e.source.Stop()
	}
	e.state.Store(int32(StateStopped))
	e.signalQuit()
	e.logger.Info("engine stopped", slog.String("load_id", e.LoadID()))
}

func (e *engine) Swap(ds *dataset.Dataset) error {
	e.checkNotLoop("Swap")
	e.mu.Lock()
	defer e.mu.Unlock()

	switch State(e.state.Load()) {
	case StateUninitialized:
		return ErrNotInitialized
	case StateStopped:
		return ErrStopped
	}

	previous := e.LoadID()
	e.stopLoop()
	e.scene.Release()

	if err := e.load(ds); err != nil {
		e.logger.Error("dataset swap failed", slog.String("previous_load_id", previous), slog.Any("error", err))
		e.restore()
		e.resumeLoop()
		return err
	}
	e.logger.Info("dataset swapped", slog.String("previous_load_id", previous), slog.String("load_id", e.LoadID()))

	e.resumeLoop()
	return nil
}

// restore allocates resources for the dataset still loaded after a failed load. The clock
// and frame index are left as they were.
// Caller must hold the mutex.
func (e *engine) restore() {
	ds := e.data.Load()
	if err := e.scene.Allocate(ds.JointCount()); err != nil {
		e.logger.Error("dataset restore failed", slog.String("load_id", e.LoadID()), slog.Any("error", err))
		return
	}
	e.appliedFrame = -1
	e.logger.Warn("previous dataset restored", slog.String("load_id", e.LoadID()))
}

func (e *engine) State() State {
	return State(e.state.Load())
}

func (e *engine) LoadID() string {
	return e.loadID.Load().(string)
}

func (e *engine) Play() {
	e.playing.Store(true)
}

func (e *engine) Pause() {
	e.playing.Store(false)
}

func (e *engine) TogglePlay() bool {
	for {
		cur := e.playing.Load()
		if e.playing.CompareAndSwap(cur, !cur) {
			return !cur
		}
	}
}

func (e *engine) Seek(k int) {
	e.playing.Store(false)
	for {
		pos := framePosition(e.position.Load())
		// Swap publishes its dataset before resetting the position, so a total read after
		// the position is never older than it.
		target := playback.Clamp(k, e.TotalFrames())
		if e.position.CompareAndSwap(uint64(pos), uint64(packFrame(target, pos.gen()+1))) {
			return
		}
	}
}

func (e *engine) Step(delta int) {
	e.Seek(e.CurrentFrame() + delta)
}

func (e *engine) Reset() {
	e.Seek(0)
}

func (e *engine) SetCameraView(name string) {
	preset, err := camera.ParsePreset(name)
	if err != nil {
		panic(fmt.Sprintf("engine: %v", err))
	}
	e.camera.Controller().SetView(preset)
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.camera.SetAspect(float32(width) / float32(height))
	if err := e.renderer.Resize(width, height); err != nil {
		e.logger.Error("resize failed", slog.Int("width", width), slog.Int("height", height), slog.Any("error", err))
	}
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Dataset() *dataset.Dataset {
	return e.data.Load()
}

func (e *engine) CurrentFrame() int {
	return framePosition(e.position.Load()).frame()
}

func (e *engine) TotalFrames() int {
	if ds := e.data.Load(); ds != nil {
		return ds.FrameCount()
	}
	return 0
}

func (e *engine) FPS() float64 {
	if ds := e.data.Load(); ds != nil {
		return ds.FPS()
	}
	return 0
}

func (e *engine) JointNames() []string {
	if ds := e.data.Load(); ds != nil {
		return ds.JointNames()
	}
	return nil
}

func (e *engine) IsPlaying() bool {
	return e.playing.Load()
}

func (e *engine) CurrentTime() float64 {
	fps := e.FPS()
	if fps <= 0 {
		return 0
	}
	return float64(e.CurrentFrame()) / fps
}

func (e *engine) Status() Status {
	frame := e.CurrentFrame()
	st := Status{
		Frame:   frame,
		Total:   e.TotalFrames(),
		Playing: e.IsPlaying(),
	}
	if fps := e.FPS(); fps > 0 {
		st.Time = float64(frame) / fps
	}
	return st
}
