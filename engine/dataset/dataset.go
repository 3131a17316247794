// Package dataset decodes and holds time-sequenced 3D keypoint data.
//
// A Dataset is immutable once decoded: every frame carries exactly one position per joint,
// fps is positive and at least one frame exists. Downstream packages rely on those guarantees
// and never re-validate.
package dataset

import (
	"time"
)

// Keypoint is a single joint position (x, y, z) in world units.
type Keypoint [3]float32

// Frame is one discrete time sample holding one Keypoint per joint.
type Frame struct {
	// Number is the frame number recorded in the source file. Informational only; the
	// frame's position in the dataset is its playback index.
	Number int

	// Keypoints holds one position per joint, aligned by index with the dataset's joints.
	Keypoints []Keypoint
}

// Bounds is an axis-aligned box enclosing every keypoint of a dataset.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b.Min[0] + b.Max[0]) / 2,
		(b.Min[1] + b.Max[1]) / 2,
		(b.Min[2] + b.Max[2]) / 2,
	}
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{
		b.Max[0] - b.Min[0],
		b.Max[1] - b.Min[1],
		b.Max[2] - b.Min[2],
	}
}

// Dataset is the decoded, validated keypoint recording.
// All accessors are safe for concurrent use because the value never changes after decode.
type Dataset struct {
	joints []string
	fps    float64
	frames []Frame
	bounds Bounds
}

// JointNames returns a copy of the joint names in canonical index order.
//
// Returns:
//   - []string: joint names, index i naming joint i
func (d *Dataset) JointNames() []string {
	out := make([]string, len(d.joints))
	copy(out, d.joints)
	return out
}

// JointCount returns the number of joints (J).
func (d *Dataset) JointCount() int {
	return len(d.joints)
}

// JointIndex looks up a joint by name.
//
// Parameters:
//   - name: the joint name
//
// Returns:
//   - int: the joint index
//   - bool: false if no joint has that name
func (d *Dataset) JointIndex(name string) (int, bool) {
	for i, j := range d.joints {
		if j == name {
			return i, true
		}
	}
	return 0, false
}

// FPS returns the intended playback rate in frames per second.
func (d *Dataset) FPS() float64 {
	return d.fps
}

// FrameInterval returns the wall-clock duration of one frame (1s / fps).
func (d *Dataset) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / d.fps)
}

// FrameCount returns the number of frames (F). Always at least 1.
func (d *Dataset) FrameCount() int {
	return len(d.frames)
}

// Duration returns the playback length of the recording (F / fps).
func (d *Dataset) Duration() time.Duration {
	return time.Duration(float64(len(d.frames)) / d.fps * float64(time.Second))
}

// Frame returns the frame at the given playback index.
// The returned Keypoints slice is shared with the dataset and must not be modified.
// Panics if i is out of range.
//
// Parameters:
//   - i: playback index in [0, FrameCount())
//
// Returns:
//   - Frame: the frame
func (d *Dataset) Frame(i int) Frame {
	return d.frames[i]
}

// Bounds returns the axis-aligned box enclosing every keypoint in every frame.
func (d *Dataset) Bounds() Bounds {
	return d.bounds
}
