package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Format string // "text" | "json"
}

// ValidFormats defines the allowed inspect output formats.
var ValidFormats = []string{"text", "json"}

// inspectReport is the JSON shape of the inspect output.
type inspectReport struct {
	Joints   []string   `json:"joints"`
	FPS      float64    `json:"fps"`
	Frames   int        `json:"frames"`
	Duration float64    `json:"duration_seconds"`
	Min      [3]float32 `json:"bounds_min"`
	Max      [3]float32 `json:"bounds_max"`
	Center   [3]float32 `json:"bounds_center"`
	Size     [3]float32 `json:"bounds_size"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <keypoints.json>",
		Short: "Validate a keypoint file and print its summary",
		Long: `Decode and validate a keypoint file without opening a window, then print the
joint list, frame rate, frame count, duration and the spatial bounds with their
center and size.

Example:
  oxy-mocap inspect walk.json
  oxy-mocap inspect --format json walk.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	return cmd
}

func runInspect(opts *InspectOptions, path string, out io.Writer) error {
	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	ds, err := dataset.LoadFile(path)
	if err != nil {
		return loadError(path, err)
	}
	opts.Logger.Debug("dataset decoded", "path", path, "frames", ds.FrameCount(), "joints", ds.JointCount())

	if opts.Format == "json" {
		return writeInspectJSON(out, ds)
	}
	return writeInspectText(out, ds)
}

func writeInspectText(out io.Writer, ds *dataset.Dataset) error {
	b := ds.Bounds()
	w := &errWriter{w: out}
	w.printf("Joints:   %d\n", ds.JointCount())
	for i, name := range ds.JointNames() {
		w.printf("  %2d. %s\n", i+1, name)
	}
	w.printf("FPS:      %g\n", ds.FPS())
	w.printf("Frames:   %d\n", ds.FrameCount())
	w.printf("Duration: %.3fs\n", ds.Duration().Seconds())
	w.printf("Bounds:   min (%.3f, %.3f, %.3f)  max (%.3f, %.3f, %.3f)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
	c, s := b.Center(), b.Size()
	w.printf("Center:   (%.3f, %.3f, %.3f)  size (%.3f, %.3f, %.3f)\n", c[0], c[1], c[2], s[0], s[1], s[2])
	return w.err
}

func writeInspectJSON(out io.Writer, ds *dataset.Dataset) error {
	b := ds.Bounds()
	report := inspectReport{
		Joints:   ds.JointNames(),
		FPS:      ds.FPS(),
		Frames:   ds.FrameCount(),
		Duration: ds.Duration().Seconds(),
		Min:      b.Min,
		Max:      b.Max,
		Center:   b.Center(),
		Size:     b.Size(),
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// errWriter keeps the first write error so a run of prints can be checked once.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
