package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// defaultChunkSize is the number of frames converted per worker task.
const defaultChunkSize = 1024

// document mirrors the on-disk JSON layout. Pointer fields distinguish a missing field from an
// empty one.
type document struct {
	Joints *[]string   `json:"joints"`
	FPS    *float64    `json:"fps"`
	Frames *[]rawFrame `json:"frames"`
}

type rawFrame struct {
	Frame     int         `json:"frame"`
	Keypoints [][]float64 `json:"keypoints"`
}

// decoder holds decode configuration collected from DecodeOptions.
type decoder struct {
	workers   int
	chunkSize int
}

// Decode reads a keypoint JSON document from r and validates it.
//
// Parameters:
//   - r: the source of the JSON document
//   - options: functional options tuning the decode (worker count, chunk size)
//
// Returns:
//   - *Dataset: the validated dataset
//   - error: a *DataFormatError when the document is malformed or inconsistent, or the read error
func Decode(r io.Reader, options ...DecodeOption) (*Dataset, error) {
	d := &decoder{
		workers:   max(runtime.NumCPU()-1, 1),
		chunkSize: defaultChunkSize,
	}
	for _, opt := range options {
		opt(d)
	}

	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, &DataFormatError{
			Code:    ErrCodeMalformed,
			Message: "invalid keypoint document",
			Frame:   -1,
			Err:     err,
		}
	}

	if doc.Joints == nil {
		return nil, newFormatError(ErrCodeMissingField, "missing field %q", "joints")
	}
	if doc.FPS == nil {
		return nil, newFormatError(ErrCodeMissingField, "missing field %q", "fps")
	}
	if doc.Frames == nil {
		return nil, newFormatError(ErrCodeMissingField, "missing field %q", "frames")
	}
	if fps := *doc.FPS; !(fps > 0) || math.IsInf(fps, 0) {
		return nil, newFormatError(ErrCodeNonPositiveFPS, "fps must be positive, got %v", fps)
	}
	if len(*doc.Frames) == 0 {
		return nil, newFormatError(ErrCodeNoFrames, "frames must not be empty")
	}
	if len(*doc.Joints) == 0 {
		return nil, newFormatError(ErrCodeNoJoints, "joints must not be empty")
	}

	joints := make([]string, len(*doc.Joints))
	copy(joints, *doc.Joints)

	frames, err := d.convertFrames(*doc.Frames, len(joints))
	if err != nil {
		return nil, err
	}

	return &Dataset{
		joints: joints,
		fps:    *doc.FPS,
		frames: frames,
		bounds: computeBounds(frames, len(joints)),
	}, nil
}

// DecodeBytes decodes a keypoint JSON document held in memory.
//
// Parameters:
//   - data: the JSON document
//   - options: functional decode options
//
// Returns:
//   - *Dataset: the validated dataset
//   - error: a *DataFormatError when the document is malformed or inconsistent
func DecodeBytes(data []byte, options ...DecodeOption) (*Dataset, error) {
	return Decode(bytes.NewReader(data), options...)
}

// LoadFile opens and decodes the keypoint JSON document at path.
//
// Parameters:
//   - path: filesystem path of the document
//   - options: functional decode options
//
// Returns:
//   - *Dataset: the validated dataset
//   - error: the open error, or a *DataFormatError
func LoadFile(path string, options ...DecodeOption) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keypoint file %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, options...)
}

// New builds a Dataset from in-memory values, applying the same validation as Decode.
// The inputs are copied.
//
// Parameters:
//   - joints: joint names in canonical order
//   - fps: playback rate, must be positive
//   - frames: frames in temporal order, each with len(joints) keypoints
//
// Returns:
//   - *Dataset: the validated dataset
//   - error: a *DataFormatError when the values are inconsistent
func New(joints []string, fps float64, frames []Frame) (*Dataset, error) {
	if !(fps > 0) || math.IsInf(fps, 0) {
		return nil, newFormatError(ErrCodeNonPositiveFPS, "fps must be positive, got %v", fps)
	}
	if len(frames) == 0 {
		return nil, newFormatError(ErrCodeNoFrames, "frames must not be empty")
	}
	if len(joints) == 0 {
		return nil, newFormatError(ErrCodeNoJoints, "joints must not be empty")
	}

	j := len(joints)
	backing := make([]Keypoint, len(frames)*j)
	out := make([]Frame, len(frames))
	for i, f := range frames {
		if len(f.Keypoints) != j {
			return nil, newFrameError(ErrCodeKeypointCount, i, "expected %d keypoints, got %d", j, len(f.Keypoints))
		}
		dst := backing[i*j : (i+1)*j : (i+1)*j]
		for k, kp := range f.Keypoints {
			for axis, v := range kp {
				if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
					return nil, newFrameError(ErrCodeNonFinite, i, "joint %d axis %d is not finite", k, axis)
				}
			}
			dst[k] = kp
		}
		out[i] = Frame{Number: f.Number, Keypoints: dst}
	}

	names := make([]string, j)
	copy(names, joints)

	return &Dataset{
		joints: names,
		fps:    fps,
		frames: out,
		bounds: computeBounds(out, j),
	}, nil
}

// convertFrames validates and converts raw frames into Frames backed by a single contiguous
// keypoint slice. Work is split into chunks; when more than one chunk exists the chunks are
// converted concurrently on a worker pool. The reported error is always the one for the
// lowest failing frame so results do not depend on scheduling.
func (d *decoder) convertFrames(raw []rawFrame, jointCount int) ([]Frame, error) {
	backing := make([]Keypoint, len(raw)*jointCount)
	frames := make([]Frame, len(raw))

	chunkSize := max(d.chunkSize, 1)
	chunks := (len(raw) + chunkSize - 1) / chunkSize
	errs := make([]error, chunks)

	convert := func(c int) error {
		start := c * chunkSize
		end := min(start+chunkSize, len(raw))
		for i := start; i < end; i++ {
			rf := raw[i]
			if len(rf.Keypoints) != jointCount {
				return newFrameError(ErrCodeKeypointCount, i, "expected %d keypoints, got %d", jointCount, len(rf.Keypoints))
			}
			dst := backing[i*jointCount : (i+1)*jointCount : (i+1)*jointCount]
			for k, triple := range rf.Keypoints {
				if len(triple) != 3 {
					return newFrameError(ErrCodeKeypointShape, i, "joint %d has %d components, expected 3", k, len(triple))
				}
				for axis, v := range triple {
					f := float32(v)
					if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
						return newFrameError(ErrCodeNonFinite, i, "joint %d axis %d value %v does not fit float32", k, axis, v)
					}
					dst[k][axis] = f
				}
			}
			frames[i] = Frame{Number: rf.Frame, Keypoints: dst}
		}
		return nil
	}

	if chunks == 1 || d.workers <= 1 {
		for c := range chunks {
			if err := convert(c); err != nil {
				return nil, err
			}
		}
		return frames, nil
	}

	pool := worker.NewDynamicWorkerPool(min(d.workers, chunks), chunks, 1*time.Second)

	// A WaitGroup gives a barrier over exactly this batch of tasks.
	var wg sync.WaitGroup
	for c := range chunks {
		wg.Add(1)
		id := c
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				errs[id] = convert(id)
				return nil, errs[id]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// computeBounds returns the box enclosing every keypoint in frames.
func computeBounds(frames []Frame, jointCount int) Bounds {
	if jointCount == 0 {
		return Bounds{}
	}
	b := Bounds{
		Min: frames[0].Keypoints[0],
		Max: frames[0].Keypoints[0],
	}
	for _, f := range frames {
		for _, kp := range f.Keypoints {
			for axis := range 3 {
				b.Min[axis] = min(b.Min[axis], kp[axis])
				b.Max[axis] = max(b.Max[axis], kp[axis])
			}
		}
	}
	return b
}
