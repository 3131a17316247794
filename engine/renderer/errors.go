package renderer

import "fmt"

// ResourceError reports a failure to acquire a GPU resource (adapter, device, surface,
// buffer, bind group or pipeline). It is fatal for the current load and never retried.
type ResourceError struct {
	// Op names the acquisition step that failed, e.g. "request adapter" or "create buffer".
	Op string

	// Label is the debug label of the resource, if any.
	Label string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("renderer: %s %q: %v", e.Op, e.Label, e.Err)
	}
	return fmt.Sprintf("renderer: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

func newResourceError(op, label string, err error) *ResourceError {
	return &ResourceError{Op: op, Label: label, Err: err}
}
