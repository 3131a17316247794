// Package config holds the viewer settings read from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/oxy-mocap/common"
	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
)

// Config is the full set of viewer settings. Fields omitted from a file keep their defaults.
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Render   RenderConfig   `yaml:"render"`
	Points   PointConfig    `yaml:"points"`
	Camera   CameraConfig   `yaml:"camera"`
	Light    LightConfig    `yaml:"light"`
	Playback PlaybackConfig `yaml:"playback"`
}

// WindowConfig sizes and names the viewer window.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	// MaxWidth and MaxHeight cap resizing; 0 leaves an axis unlimited.
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// RenderConfig controls the GPU surface and the display refresh loop.
type RenderConfig struct {
	// RefreshRate is the display loop rate in Hz; it is independent of the dataset fps.
	RefreshRate float64 `yaml:"refresh_rate"`
	MSAA        int     `yaml:"msaa"`
	PresentMode string  `yaml:"present_mode"`
	Background  uint32  `yaml:"background"`
	Software    bool    `yaml:"software"`
}

// PointConfig styles the joint points.
type PointConfig struct {
	Size  float32 `yaml:"size"`
	Color uint32  `yaml:"color"`
}

// CameraConfig sets the lens and the starting view.
type CameraConfig struct {
	Fov     float32 `yaml:"fov"` // degrees
	Damping float32 `yaml:"damping"`
	// View names a starting preset; empty starts at (0, 0.5, 2) facing the origin.
	View string `yaml:"view"`
}

// LightConfig places the point light and scales both lights.
type LightConfig struct {
	Position  [3]float32 `yaml:"position"`
	Intensity float32    `yaml:"intensity"`
	Ambient   float32    `yaml:"ambient"`
}

// PlaybackConfig sets the initial play state and hot reload.
type PlaybackConfig struct {
	Autoplay bool `yaml:"autoplay"`
	Watch    bool `yaml:"watch"`
}

// Default returns the settings the viewer uses when no file is given.
//
// Returns:
//   - *Config: a new config holding default values
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "oxy-mocap",
			Width:     1280,
			Height:    720,
			MinWidth:  320,
			MinHeight: 240,
		},
		Render: RenderConfig{
			RefreshRate: 60,
			MSAA:        4,
			PresentMode: "vsync",
			Background:  0x1a1a1a,
		},
		Points: PointConfig{
			Size:  0.05,
			Color: 0x00ff00,
		},
		Camera: CameraConfig{
			Fov:     75,
			Damping: 0.05,
		},
		Light: LightConfig{
			Position:  [3]float32{5, 5, 5},
			Intensity: 1,
			Ambient:   0.5,
		},
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// Unknown keys are rejected. An empty file yields the defaults.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Config: the loaded config
//   - error: a read, parse or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data over the defaults and validates the result.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - *Config: the parsed config
//   - error: a parse or validation error
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// limitProblems checks the resize limits against each other and the initial size.
func (w WindowConfig) limitProblems() []string {
	var problems []string
	if w.MinWidth <= 0 || w.MinHeight <= 0 {
		problems = append(problems, fmt.Sprintf("window minimum size must be positive, got %dx%d", w.MinWidth, w.MinHeight))
	} else if w.Width < w.MinWidth || w.Height < w.MinHeight {
		problems = append(problems, fmt.Sprintf("window size %dx%d is below the minimum %dx%d", w.Width, w.Height, w.MinWidth, w.MinHeight))
	}
	if w.MaxWidth < 0 || w.MaxHeight < 0 {
		problems = append(problems, fmt.Sprintf("window maximum size must not be negative, got %dx%d", w.MaxWidth, w.MaxHeight))
	}
	if w.MaxWidth > 0 && w.MaxWidth < w.Width {
		problems = append(problems, fmt.Sprintf("window.max_width %d is below window.width %d", w.MaxWidth, w.Width))
	}
	if w.MaxHeight > 0 && w.MaxHeight < w.Height {
		problems = append(problems, fmt.Sprintf("window.max_height %d is below window.height %d", w.MaxHeight, w.Height))
	}
	return problems
}

// Validate checks every field and reports all problems at once.
//
// Returns:
//   - error: nil, or an error listing each invalid field
func (c *Config) Validate() error {
	var problems []string
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		problems = append(problems, fmt.Sprintf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	problems = append(problems, c.Window.limitProblems()...)
	if c.Render.RefreshRate <= 0 {
		problems = append(problems, fmt.Sprintf("render.refresh_rate must be positive, got %v", c.Render.RefreshRate))
	}
	switch c.Render.MSAA {
	case 1, 4, 8, 16:
	default:
		problems = append(problems, fmt.Sprintf("render.msaa must be 1, 4, 8 or 16, got %d", c.Render.MSAA))
	}
	if _, ok := renderer.ParsePresentMode(c.Render.PresentMode); !ok {
		problems = append(problems, fmt.Sprintf("render.present_mode must be vsync or uncapped, got %q", c.Render.PresentMode))
	}
	if c.Points.Size <= 0 {
		problems = append(problems, fmt.Sprintf("points.size must be positive, got %v", c.Points.Size))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		problems = append(problems, fmt.Sprintf("camera.fov must be in (0, 180), got %v", c.Camera.Fov))
	}
	if c.Camera.Damping <= 0 || c.Camera.Damping > 1 {
		problems = append(problems, fmt.Sprintf("camera.damping must be in (0, 1], got %v", c.Camera.Damping))
	}
	if _, _, err := c.InitialView(); err != nil {
		problems = append(problems, fmt.Sprintf("camera.view: %v", err))
	}
	if c.Light.Intensity < 0 || c.Light.Ambient < 0 {
		problems = append(problems, "light intensities must not be negative")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// MSAASampleCount returns the configured sample count as a renderer value.
func (c *Config) MSAASampleCount() renderer.MSAASampleCount {
	return renderer.MSAASampleCount(c.Render.MSAA)
}

// PresentMode returns the configured present mode; invalid names fall back to vsync.
func (c *Config) PresentMode() renderer.PresentMode {
	mode, _ := renderer.ParsePresentMode(c.Render.PresentMode)
	return mode
}

// InitialView resolves the configured starting preset.
//
// Returns:
//   - camera.Preset: the preset
//   - bool: false when no view is configured
//   - error: non-nil if the name matches no preset
func (c *Config) InitialView() (camera.Preset, bool, error) {
	if c.Camera.View == "" {
		return 0, false, nil
	}
	p, err := camera.ParsePreset(c.Camera.View)
	if err != nil {
		return 0, false, err
	}
	return p, true, nil
}

// BackgroundRGB returns the background color as normalized RGB.
func (c *Config) BackgroundRGB() [3]float32 {
	return common.RGB(c.Render.Background)
}
