package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `{
  "joints": ["Pelvis", "Neck", "Head"],
  "fps": 60,
  "frames": [
    {"frame": 10, "keypoints": [[0, 1, 0], [0, 1.5, 0], [0, 1.7, 0.1]]},
    {"frame": 11, "keypoints": [[0.1, 1, 0], [0.1, 1.5, 0], [0.1, 1.7, 0.1]]}
  ]
}`

// buildDoc renders a synthetic document with the given shape.
func buildDoc(joints, frames int) string {
	var sb strings.Builder
	sb.WriteString(`{"joints": [`)
	for j := range joints {
		if j > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"j%d"`, j)
	}
	sb.WriteString(`], "fps": 30, "frames": [`)
	for f := range frames {
		if f > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"frame": %d, "keypoints": [`, f)
		for j := range joints {
			if j > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, "[%d, %d, %d]", f, j, -f)
		}
		sb.WriteString("]}")
	}
	sb.WriteString("]}")
	return sb.String()
}

func requireFormatError(t *testing.T, err error, code DataFormatErrorCode) *DataFormatError {
	t.Helper()
	require.Error(t, err)
	var dfe *DataFormatError
	require.True(t, errors.As(err, &dfe), "expected *DataFormatError, got %T", err)
	assert.Equal(t, code, dfe.Code)
	return dfe
}

func TestDecode_Valid(t *testing.T) {
	ds, err := DecodeBytes([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"Pelvis", "Neck", "Head"}, ds.JointNames())
	assert.Equal(t, 3, ds.JointCount())
	assert.Equal(t, 2, ds.FrameCount())
	assert.Equal(t, 60.0, ds.FPS())
	assert.Equal(t, 10, ds.Frame(0).Number)
	assert.Equal(t, 11, ds.Frame(1).Number)
	assert.Equal(t, Keypoint{0.1, 1.7, 0.1}, ds.Frame(1).Keypoints[2])
}

func TestDecode_RoundTripCounts(t *testing.T) {
	cases := []struct{ joints, frames int }{
		{1, 1},
		{23, 5},
		{4, 300},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%dx%d", tc.joints, tc.frames), func(t *testing.T) {
			ds, err := DecodeBytes([]byte(buildDoc(tc.joints, tc.frames)))
			require.NoError(t, err)
			assert.Len(t, ds.JointNames(), tc.joints)
			assert.Equal(t, tc.frames, ds.FrameCount())
		})
	}
}

func TestDecode_ParallelMatchesSerial(t *testing.T) {
	doc := []byte(buildDoc(5, 97))

	serial, err := DecodeBytes(doc, WithWorkers(1))
	require.NoError(t, err)
	parallel, err := DecodeBytes(doc, WithWorkers(4), WithChunkSize(8))
	require.NoError(t, err)

	require.Equal(t, serial.FrameCount(), parallel.FrameCount())
	for i := range serial.FrameCount() {
		assert.Equal(t, serial.Frame(i), parallel.Frame(i), "frame %d", i)
	}
	assert.Equal(t, serial.Bounds(), parallel.Bounds())
}

func TestDecode_NonPositiveFPS(t *testing.T) {
	for _, fps := range []string{"0", "-30"} {
		doc := strings.Replace(validDoc, `"fps": 60`, `"fps": `+fps, 1)
		_, err := DecodeBytes([]byte(doc))
		requireFormatError(t, err, ErrCodeNonPositiveFPS)
	}
}

func TestDecode_EmptyFrames(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"joints": ["a"], "fps": 30, "frames": []}`))
	requireFormatError(t, err, ErrCodeNoFrames)
}

func TestDecode_EmptyJoints(t *testing.T) {
	_, err := DecodeBytes([]byte(`{"joints": [], "fps": 30, "frames": [{"frame": 0, "keypoints": []}]}`))
	requireFormatError(t, err, ErrCodeNoJoints)

	_, err = New(nil, 30, []Frame{{Number: 0}})
	requireFormatError(t, err, ErrCodeNoJoints)
}

func TestDecode_MissingFields(t *testing.T) {
	cases := map[string]string{
		"joints": `{"fps": 30, "frames": [{"frame": 0, "keypoints": []}]}`,
		"fps":    `{"joints": [], "frames": [{"frame": 0, "keypoints": []}]}`,
		"frames": `{"joints": [], "fps": 30}`,
	}
	for field, doc := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := DecodeBytes([]byte(doc))
			dfe := requireFormatError(t, err, ErrCodeMissingField)
			assert.Contains(t, dfe.Message, field)
		})
	}
}

func TestDecode_KeypointCountMismatch(t *testing.T) {
	doc := `{"joints": ["a", "b"], "fps": 30, "frames": [
		{"frame": 0, "keypoints": [[0,0,0],[1,1,1]]},
		{"frame": 1, "keypoints": [[0,0,0]]}
	]}`
	_, err := DecodeBytes([]byte(doc))
	dfe := requireFormatError(t, err, ErrCodeKeypointCount)
	assert.Equal(t, 1, dfe.Frame)
}

func TestDecode_ReportsLowestFailingFrame(t *testing.T) {
	// Corrupt frames 40 and 90 of a document split into many chunks.
	ds := buildDoc(2, 120)
	ds = strings.Replace(ds, `{"frame": 90, "keypoints": [[90, 0, -90],`, `{"frame": 90, "keypoints": [`, 1)
	ds = strings.Replace(ds, `{"frame": 40, "keypoints": [[40, 0, -40],`, `{"frame": 40, "keypoints": [`, 1)

	for range 5 {
		_, err := DecodeBytes([]byte(ds), WithWorkers(4), WithChunkSize(10))
		dfe := requireFormatError(t, err, ErrCodeKeypointCount)
		assert.Equal(t, 40, dfe.Frame)
	}
}

func TestDecode_KeypointShape(t *testing.T) {
	doc := `{"joints": ["a"], "fps": 30, "frames": [{"frame": 0, "keypoints": [[1, 2]]}]}`
	_, err := DecodeBytes([]byte(doc))
	requireFormatError(t, err, ErrCodeKeypointShape)
}

func TestDecode_NonFinite(t *testing.T) {
	doc := `{"joints": ["a"], "fps": 30, "frames": [{"frame": 0, "keypoints": [[1e300, 0, 0]]}]}`
	_, err := DecodeBytes([]byte(doc))
	requireFormatError(t, err, ErrCodeNonFinite)
}

func TestDecode_Malformed(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":     `{"joints": [`,
		"wrong type": `{"joints": "a", "fps": 30, "frames": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(doc))
			dfe := requireFormatError(t, err, ErrCodeMalformed)
			assert.NotNil(t, dfe.Unwrap())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypoints_data.json")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.FrameCount())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	var dfe *DataFormatError
	assert.False(t, errors.As(err, &dfe), "a missing file is not a format error")
}

func TestDataset_Timing(t *testing.T) {
	ds, err := DecodeBytes([]byte(buildDoc(1, 90)))
	require.NoError(t, err)

	assert.Equal(t, time.Duration(33333333), ds.FrameInterval())
	assert.Equal(t, 3*time.Second, ds.Duration())
}

func TestDataset_Bounds(t *testing.T) {
	ds, err := DecodeBytes([]byte(validDoc))
	require.NoError(t, err)

	b := ds.Bounds()
	assert.Equal(t, [3]float32{0, 1, 0}, b.Min)
	assert.Equal(t, [3]float32{0.1, 1.7, 0.1}, b.Max)
	assert.InDelta(t, 0.05, b.Center()[0], 1e-6)
	assert.InDelta(t, 0.7, b.Size()[1], 1e-6)
}

func TestDataset_JointIndex(t *testing.T) {
	ds, err := DecodeBytes([]byte(validDoc))
	require.NoError(t, err)

	i, ok := ds.JointIndex("Head")
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = ds.JointIndex("Tail")
	assert.False(t, ok)
}

func TestDataset_JointNamesIsACopy(t *testing.T) {
	ds, err := DecodeBytes([]byte(validDoc))
	require.NoError(t, err)

	names := ds.JointNames()
	names[0] = "mutated"
	assert.Equal(t, "Pelvis", ds.JointNames()[0])
}

func TestNew_Validates(t *testing.T) {
	_, err := New([]string{"a"}, 0, []Frame{{Keypoints: []Keypoint{{}}}})
	requireFormatError(t, err, ErrCodeNonPositiveFPS)

	_, err = New([]string{"a"}, 30, nil)
	requireFormatError(t, err, ErrCodeNoFrames)

	_, err = New([]string{"a", "b"}, 30, []Frame{{Keypoints: []Keypoint{{}}}})
	requireFormatError(t, err, ErrCodeKeypointCount)

	ds, err := New([]string{"a"}, 30, []Frame{{Number: 3, Keypoints: []Keypoint{{1, 2, 3}}}})
	require.NoError(t, err)
	assert.Equal(t, []Keypoint{{1, 2, 3}}, ds.Frame(0).Keypoints)
	assert.Equal(t, 3, ds.Frame(0).Number)
}

func TestDataFormatError_Message(t *testing.T) {
	err := newFrameError(ErrCodeKeypointCount, 7, "expected %d keypoints, got %d", 3, 2)
	assert.Equal(t, "KEYPOINT_COUNT: expected 3 keypoints, got 2 (frame=7)", err.Error())

	err = newFormatError(ErrCodeNoFrames, "frames must not be empty")
	assert.Equal(t, "NO_FRAMES: frames must not be empty", err.Error())
}
