package scene

import "github.com/Carmen-Shannon/oxy-mocap/engine/dataset"

// ApplyFrame writes every keypoint of the given frame to w, joint i receiving keypoint i.
// The frame index must already be in range; the dataset guarantees one keypoint per joint.
//
// Parameters:
//   - ds: the loaded dataset
//   - frame: playback index in [0, ds.FrameCount())
//   - w: the destination, usually the Scene
func ApplyFrame(ds *dataset.Dataset, frame int, w PositionWriter) {
	for i, kp := range ds.Frame(frame).Keypoints {
		w.WritePosition(i, kp[0], kp[1], kp[2])
	}
}
