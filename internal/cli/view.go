package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
	"github.com/Carmen-Shannon/oxy-mocap/engine/input"
	"github.com/Carmen-Shannon/oxy-mocap/engine/light"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
	"github.com/Carmen-Shannon/oxy-mocap/engine/scene"
	"github.com/Carmen-Shannon/oxy-mocap/engine/window"
	"github.com/Carmen-Shannon/oxy-mocap/internal/config"
	"github.com/Carmen-Shannon/oxy-mocap/internal/watch"
)

// ViewOptions holds flags for the view command. Each flag, when set, overrides the
// matching config value.
type ViewOptions struct {
	*RootOptions
	Autoplay    bool
	Watch       bool
	Software    bool
	View        string
	PresentMode string
	RefreshRate float64
}

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ViewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "view <keypoints.json>",
		Short: "Open a window and play back a keypoint file",
		Long: `Open a window and play back a keypoint file at its recorded frame rate.

Controls:
  Space        play / pause
  R            reset to the first frame
  Left/Right   step one frame
  1-6          front, back, right, left, top-front, isometric views
  left drag    orbit    right drag  pan    scroll  zoom
  Esc          quit

Example:
  oxy-mocap view walk.json
  oxy-mocap view --autoplay --watch --view isometric walk.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.applyOverrides(cmd); err != nil {
				return err
			}
			return runView(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Autoplay, "autoplay", false, "start playing immediately")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "reload the file when it changes")
	cmd.Flags().BoolVar(&opts.Software, "software", false, "force the software GPU adapter")
	cmd.Flags().StringVar(&opts.View, "view", "", "initial camera preset")
	cmd.Flags().StringVar(&opts.PresentMode, "present-mode", "", "surface present mode (vsync|uncapped)")
	cmd.Flags().Float64Var(&opts.RefreshRate, "refresh-rate", 0, "display loop rate in Hz")

	return cmd
}

// applyOverrides copies explicitly set flags into the loaded config and revalidates it.
func (o *ViewOptions) applyOverrides(cmd *cobra.Command) error {
	cfg := o.Config
	flags := cmd.Flags()
	if flags.Changed("autoplay") {
		cfg.Playback.Autoplay = o.Autoplay
	}
	if flags.Changed("watch") {
		cfg.Playback.Watch = o.Watch
	}
	if flags.Changed("software") {
		cfg.Render.Software = o.Software
	}
	if flags.Changed("view") {
		cfg.Camera.View = o.View
	}
	if flags.Changed("present-mode") {
		cfg.Render.PresentMode = o.PresentMode
	}
	if flags.Changed("refresh-rate") {
		cfg.Render.RefreshRate = o.RefreshRate
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return nil
}

func runView(opts *ViewOptions, path string, cmd *cobra.Command) error {
	cfg, logger := opts.Config, opts.Logger

	ds, err := dataset.LoadFile(path)
	if err != nil {
		return loadError(path, err)
	}
	logger.Info("dataset loaded", "path", path, "joints", ds.JointCount(), "frames", ds.FrameCount(), "fps", ds.FPS())

	win, err := openWindow(cfg)
	if err != nil {
		return startupError("failed to open window", err)
	}
	defer win.Close()

	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
		renderer.WithPresentMode(cfg.PresentMode()),
		renderer.WithMSAA(cfg.MSAASampleCount()),
		renderer.WithForceSoftwareRenderer(cfg.Render.Software),
		renderer.WithClearColor(cfg.BackgroundRGB()),
		renderer.WithLogger(logger),
	)
	if err != nil {
		return startupError("failed to create renderer", err)
	}
	defer r.Release()

	eng := engine.NewEngine(
		engine.WithRenderer(r),
		engine.WithScene(newScene(r, cfg, opts)),
		engine.WithCamera(newCamera(cfg, win.Width(), win.Height())),
		engine.WithRefreshRate(cfg.Render.RefreshRate),
		engine.WithAutoplay(cfg.Playback.Autoplay),
		engine.WithProfiling(opts.Verbose),
		engine.WithStatusCallback(statusPrinter(opts.Verbose, cmd.ErrOrStderr())),
		engine.WithLogger(logger),
	)
	if err := eng.Init(ds); err != nil {
		return startupError("failed to allocate scene", err)
	}

	controls := input.NewControls(eng)
	controls.Attach(win)
	win.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyEsc {
			win.RequestClose()
			return
		}
		controls.KeyDown(keyCode)
	})
	win.SetResizeCallback(eng.Resize)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Playback.Watch {
		w, err := watch.NewWatcher(path, eng, watch.WithLogger(logger))
		if err != nil {
			logger.Warn("hot reload disabled", "error", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Warn("file watcher stopped", "error", err)
				}
			}()
		}
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- eng.Run(ctx)
		win.RequestClose()
	}()

	// The window message loop must stay on the main thread; it exits once the window is
	// closed or the engine stops.
	win.SetUpdateCallback(func() {
		if ctx.Err() != nil {
			win.RequestClose()
		}
	})
	win.ProcessMessages()
	cancel()

	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "render loop failed", err)
	}
	logger.Info("viewer closed")
	return nil
}

// openWindow converts the window constructor's panic into an error.
func openWindow(cfg *config.Config) (win window.Window, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	), nil
}

func newScene(r renderer.Renderer, cfg *config.Config, opts *ViewOptions) scene.Scene {
	p := cfg.Light.Position
	return scene.NewScene(r,
		scene.WithPointSize(cfg.Points.Size),
		scene.WithPointColor(cfg.Points.Color),
		scene.WithLights(
			light.NewLight(light.LightTypePoint,
				light.WithPosition(p[0], p[1], p[2]),
				light.WithHexColor(0xffffff),
				light.WithIntensity(cfg.Light.Intensity),
			),
			light.NewLight(light.LightTypeAmbient,
				light.WithHexColor(0xffffff),
				light.WithIntensity(cfg.Light.Ambient),
			),
		),
		scene.WithLogger(opts.Logger),
	)
}

func newCamera(cfg *config.Config, width, height int) camera.Camera {
	ctrlOpts := []camera.CameraControllerOption{camera.WithDamping(cfg.Camera.Damping)}
	if preset, ok, _ := cfg.InitialView(); ok {
		ctrlOpts = append(ctrlOpts, camera.WithInitialView(preset))
	}

	aspect := float32(16.0 / 9.0)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	return camera.NewCamera(
		camera.WithFovDegrees(cfg.Camera.Fov),
		camera.WithAspect(aspect),
		camera.WithNear(0.1),
		camera.WithFar(1000),
		camera.WithController(camera.NewCameraController(ctrlOpts...)),
	)
}

// statusPrinter returns the engine status callback. The status line is printed only in
// verbose mode.
func statusPrinter(verbose bool, out io.Writer) func(engine.Status) {
	if !verbose {
		return nil
	}
	return func(s engine.Status) {
		state := "paused"
		if s.Playing {
			state = "playing"
		}
		fmt.Fprintf(out, "%s (%s)\n", s, state)
	}
}
