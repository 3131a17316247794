package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMul4_Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestLookAt_EyeMapsToOrigin(t *testing.T) {
	var view [16]float32
	LookAt(view[:], 2, 0.5, 0, 0, 0, 0, 0, 1, 0)

	// Transform the eye position; it must land on the view-space origin.
	x := view[0]*2 + view[4]*0.5 + view[8]*0 + view[12]
	y := view[1]*2 + view[5]*0.5 + view[9]*0 + view[13]
	z := view[2]*2 + view[6]*0.5 + view[10]*0 + view[14]
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-5)

	// The target sits in front of the camera (negative view-space z).
	tz := view[14]
	assert.Less(t, tz, float32(0))
}

func TestPutFloat32s_RoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	PutFloat32s(buf, 1.5, -2, 0.25, 1)

	assert.Equal(t, float32(1.5), Float32At(buf, 0))
	assert.Equal(t, float32(-2), Float32At(buf, 1))
	assert.Equal(t, float32(0.25), Float32At(buf, 2))
	assert.Equal(t, float32(1), Float32At(buf, 3))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 9))
	assert.Equal(t, 9, Clamp(12, 0, 9))
	assert.Equal(t, 4, Clamp(4, 0, 9))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))
}

func TestRGB(t *testing.T) {
	assert.Equal(t, [3]float32{0, 1, 0}, RGB(0x00ff00))
	c := RGB(0x1a1a1a)
	assert.InDelta(t, 26.0/255.0, c[0], 1e-6)
	assert.Equal(t, c[0], c[1])
	assert.Equal(t, c[1], c[2])
}
