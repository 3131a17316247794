// Package cli implements the oxy-mocap command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-mocap/internal/config"
)

// RootOptions holds global flags for all commands and the state derived from them.
type RootOptions struct {
	Verbose    bool
	ConfigPath string

	// Config is loaded in PersistentPreRunE: the file at ConfigPath, or defaults.
	Config *config.Config
	// Logger writes to the command's stderr at Info, or Debug with --verbose.
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the oxy-mocap CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "oxy-mocap",
		Short: "Motion-capture keypoint viewer",
		Long: `oxy-mocap plays back 3D keypoint recordings: one point per joint, advanced at
the recording's own frame rate, with an orbit camera and preset views.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML viewer config")

	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))

	return cmd
}

// setup builds the logger and loads the config.
func (o *RootOptions) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.Logger)

	if o.ConfigPath == "" {
		o.Config = config.Default()
		return nil
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load config %s", o.ConfigPath), err)
	}
	o.Config = cfg
	o.Logger.Debug("config loaded", "path", o.ConfigPath)
	return nil
}
