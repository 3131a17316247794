package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-mocap/engine/camera"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, uint32(0x00ff00), cfg.Points.Color)
	assert.InDelta(t, 0.05, cfg.Points.Size, 1e-6)
	assert.Equal(t, uint32(0x1a1a1a), cfg.Render.Background)
	assert.Equal(t, float32(75), cfg.Camera.Fov)
	assert.Equal(t, renderer.MSAA4x, cfg.MSAASampleCount())
	assert.Equal(t, renderer.PresentModeVSync, cfg.PresentMode())

	_, ok, err := cfg.InitialView()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParse_OverridesDefaults(t *testing.T) {
	data := []byte(`
window:
  title: walk
  width: 800
render:
  msaa: 1
  present_mode: uncapped
  background: 0x000000
points:
  color: 0xff0000
camera:
  view: top-front
playback:
  autoplay: true
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "walk", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height, "unset fields keep defaults")
	assert.Equal(t, renderer.MSAAOff, cfg.MSAASampleCount())
	assert.Equal(t, renderer.PresentModeUncapped, cfg.PresentMode())
	assert.Equal(t, [3]float32{0, 0, 0}, cfg.BackgroundRGB())
	assert.Equal(t, uint32(0xff0000), cfg.Points.Color)
	assert.True(t, cfg.Playback.Autoplay)

	view, ok, err := cfg.InitialView()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, camera.PresetTopFront, view)
}

func TestParse_EmptyDocument(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("window:\n  titel: typo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_ReportsEveryInvalidField(t *testing.T) {
	data := []byte(`
render:
  refresh_rate: 0
  msaa: 3
  present_mode: fast
camera:
  fov: 190
  view: sideways
`)
	_, err := Parse(data)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "invalid config")
	assert.Contains(t, msg, "refresh_rate")
	assert.Contains(t, msg, "msaa")
	assert.Contains(t, msg, "present_mode")
	assert.Contains(t, msg, "camera.fov")
	assert.Contains(t, msg, `unknown camera preset "sideways"`)
}

func TestParse_WindowLimits(t *testing.T) {
	cfg, err := Parse([]byte("window:\n  min_width: 640\n  min_height: 360\n  max_width: 1920\n"))
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.Window.MinWidth)
	assert.Equal(t, 360, cfg.Window.MinHeight)
	assert.Equal(t, 1920, cfg.Window.MaxWidth)
	assert.Equal(t, 0, cfg.Window.MaxHeight, "unset maximum stays unlimited")

	cases := map[string]string{
		"zero minimum":      "window:\n  min_width: 0\n",
		"below minimum":     "window:\n  width: 300\n",
		"negative maximum":  "window:\n  max_height: -1\n",
		"maximum too small": "window:\n  max_width: 1000\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "window")
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("points:\n  size: 0.1\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cfg.Points.Size, 1e-6)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
