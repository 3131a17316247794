package dataset

import "fmt"

// DataFormatErrorCode categorizes dataset decode failures.
type DataFormatErrorCode string

const (
	// ErrCodeMalformed indicates the input is not a valid keypoint document (bad JSON, wrong types).
	ErrCodeMalformed DataFormatErrorCode = "MALFORMED"

	// ErrCodeMissingField indicates a required top-level field is absent.
	ErrCodeMissingField DataFormatErrorCode = "MISSING_FIELD"

	// ErrCodeNonPositiveFPS indicates fps <= 0.
	ErrCodeNonPositiveFPS DataFormatErrorCode = "NON_POSITIVE_FPS"

	// ErrCodeNoJoints indicates the joints list is empty.
	ErrCodeNoJoints DataFormatErrorCode = "NO_JOINTS"

	// ErrCodeNoFrames indicates the frames list is empty.
	ErrCodeNoFrames DataFormatErrorCode = "NO_FRAMES"

	// ErrCodeKeypointCount indicates a frame whose keypoint count differs from the joint count.
	ErrCodeKeypointCount DataFormatErrorCode = "KEYPOINT_COUNT"

	// ErrCodeKeypointShape indicates a keypoint that is not an (x, y, z) triple.
	ErrCodeKeypointShape DataFormatErrorCode = "KEYPOINT_SHAPE"

	// ErrCodeNonFinite indicates a coordinate that does not fit a finite float32.
	ErrCodeNonFinite DataFormatErrorCode = "NON_FINITE"
)

// DataFormatError reports a malformed or inconsistent keypoint dataset.
// It is returned by the decode step only; once a Dataset exists it is valid.
type DataFormatError struct {
	// Code identifies the error category.
	Code DataFormatErrorCode

	// Message is a human-readable description.
	Message string

	// Frame is the offending frame index, or -1 when the error is not frame specific.
	Frame int

	// Err is the underlying cause, if any (e.g. a JSON syntax error).
	Err error
}

// Error implements the error interface.
func (e *DataFormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Frame >= 0 {
		msg = fmt.Sprintf("%s (frame=%d)", msg, e.Frame)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// newFormatError builds a DataFormatError that is not tied to a frame.
func newFormatError(code DataFormatErrorCode, format string, args ...any) *DataFormatError {
	return &DataFormatError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Frame:   -1,
	}
}

// newFrameError builds a DataFormatError for a specific frame.
func newFrameError(code DataFormatErrorCode, frame int, format string, args ...any) *DataFormatError {
	return &DataFormatError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Frame:   frame,
	}
}
