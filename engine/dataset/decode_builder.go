package dataset

// DecodeOption is a functional option for configuring Decode.
type DecodeOption func(*decoder)

// WithWorkers sets the maximum number of goroutines used to convert frames.
// Values <= 1 convert on the calling goroutine.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - DecodeOption: option function to apply
func WithWorkers(n int) DecodeOption {
	return func(d *decoder) {
		d.workers = n
	}
}

// WithChunkSize sets how many frames each worker task converts.
//
// Parameters:
//   - n: frames per task (values < 1 are treated as 1)
//
// Returns:
//   - DecodeOption: option function to apply
func WithChunkSize(n int) DecodeOption {
	return func(d *decoder) {
		d.chunkSize = n
	}
}
