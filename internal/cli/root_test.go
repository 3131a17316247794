package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-mocap/engine"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
)

// execute runs the root command with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "oxy-mocap", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"view", "inspect"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)
}

func TestViewCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	view, _, err := cmd.Find([]string{"view"})
	require.NoError(t, err)

	for _, name := range []string{"autoplay", "watch", "software", "view", "present-mode", "refresh-rate"} {
		assert.NotNil(t, view.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "w", view.Flags().Lookup("watch").Shorthand)
}

func TestInspect_TextGolden(t *testing.T) {
	out, err := execute(t, "inspect", filepath.Join("testdata", "walk.json"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "inspect_text", []byte(out))
}

func TestInspect_JSONGolden(t *testing.T) {
	out, err := execute(t, "inspect", "--format", "json", filepath.Join("testdata", "walk.json"))
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "inspect_json", []byte(out))
}

func TestInspect_InvalidFormat(t *testing.T) {
	_, err := execute(t, "inspect", "--format", "yaml", filepath.Join("testdata", "walk.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInspect_DataError(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join("testdata", "bad_fps.json"))
	require.Error(t, err)
	assert.Equal(t, ExitDataError, GetExitCode(err))
	assert.Contains(t, err.Error(), "fps must be positive")
}

func TestInspect_MissingFile(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join("testdata", "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigFlag_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("points:\n  size: -1\n"), 0o644))

	_, err := execute(t, "--config", path, "inspect", filepath.Join("testdata", "walk.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "points.size")
}

func TestViewOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback:\n  autoplay: true\nrender:\n  refresh_rate: 30\n"), 0o644))

	root := &RootOptions{ConfigPath: path}
	require.NoError(t, root.setup(&bytes.Buffer{}))
	opts := &ViewOptions{RootOptions: root}

	cmd := NewViewCommand(root)
	require.NoError(t, cmd.ParseFlags([]string{"--autoplay=false", "--view", "left"}))
	opts.Autoplay = false
	opts.View = "left"
	require.NoError(t, opts.applyOverrides(cmd))

	assert.False(t, root.Config.Playback.Autoplay, "flag overrides file")
	assert.Equal(t, "left", root.Config.Camera.View)
	assert.Equal(t, 30.0, root.Config.Render.RefreshRate, "unset flags keep file values")
}

func TestViewOverrides_Invalid(t *testing.T) {
	root := &RootOptions{}
	require.NoError(t, root.setup(&bytes.Buffer{}))
	opts := &ViewOptions{RootOptions: root}

	cmd := NewViewCommand(root)
	require.NoError(t, cmd.ParseFlags([]string{"--present-mode", "fast"}))
	opts.PresentMode = "fast"

	err := opts.applyOverrides(cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitDataError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitDataError, "bad"))))
}

func TestStartupError_Classification(t *testing.T) {
	resErr := &renderer.ResourceError{Op: "request adapter", Err: errors.New("no adapter")}
	assert.Equal(t, ExitResourceError, startupError("failed", resErr).Code)
	assert.Equal(t, ExitFailure, startupError("failed", errors.New("other")).Code)
}

func TestStatusPrinter(t *testing.T) {
	assert.Nil(t, statusPrinter(false, &bytes.Buffer{}))

	var buf bytes.Buffer
	statusPrinter(true, &buf)(engine.Status{Frame: 3, Total: 10, Time: 0.1, Playing: true})
	assert.Equal(t, "Frame: 3 / 9 | Time: 0.10s (playing)\n", buf.String())
}
