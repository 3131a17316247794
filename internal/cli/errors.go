package cli

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-mocap/engine/dataset"
	"github.com/Carmen-Shannon/oxy-mocap/engine/renderer"
)

// Exit codes for CLI commands.
const (
	ExitSuccess       = 0 // Clean exit, including a closed window or Ctrl-C
	ExitFailure       = 1 // Unexpected failure
	ExitCommandError  = 2 // Bad flags or an unreadable config file
	ExitDataError     = 3 // The keypoint file failed to load
	ExitResourceError = 4 // Window, GPU device, surface or buffer acquisition failed
)

// ExitError carries the process exit code for an error returned by a command.
type ExitError struct {
	Code    int    // Exit code
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// loadError classifies a dataset load failure.
func loadError(path string, err error) *ExitError {
	var dfe *dataset.DataFormatError
	if errors.As(err, &dfe) {
		return WrapExitError(ExitDataError, fmt.Sprintf("invalid keypoint file %s", path), err)
	}
	return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read keypoint file %s", path), err)
}

// startupError classifies a failure while bringing up the window, GPU or engine.
func startupError(message string, err error) *ExitError {
	var re *renderer.ResourceError
	if errors.As(err, &re) {
		return WrapExitError(ExitResourceError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}
