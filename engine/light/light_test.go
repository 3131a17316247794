package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-mocap/common"
)

func TestNewLight_Defaults(t *testing.T) {
	l := NewLight(LightTypePoint)

	assert.Equal(t, LightTypePoint, l.Type())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.True(t, l.Enabled())
}

func TestNewLight_Options(t *testing.T) {
	l := NewLight(LightTypeAmbient,
		WithHexColor(0xff0000),
		WithIntensity(-2),
		WithEnabled(false),
	)

	assert.Equal(t, [3]float32{1, 0, 0}, l.Color())
	assert.Equal(t, float32(0), l.Intensity())
	assert.False(t, l.Enabled())
	assert.Equal(t, "ambient", l.Type().String())
}

func TestBuildLightUniform_Rig(t *testing.T) {
	lights := []Light{
		NewLight(LightTypePoint, WithPosition(5, 5, 5), WithIntensity(1)),
		NewLight(LightTypePoint, WithPosition(-1, -1, -1)),
		NewLight(LightTypeAmbient, WithIntensity(0.5)),
	}

	u := BuildLightUniform(lights)
	assert.Equal(t, [3]float32{5, 5, 5}, u.PointPosition)
	assert.Equal(t, float32(1), u.PointIntensity)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, u.AmbientColor)
	assert.Equal(t, float32(1), u.AmbientIntensity)
}

func TestBuildLightUniform_SkipsDisabled(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(1, 2, 3))
	l.SetEnabled(false)

	u := BuildLightUniform([]Light{l, nil})
	assert.Equal(t, float32(0), u.PointIntensity)
	assert.Equal(t, float32(0), u.AmbientIntensity)
}

func TestGPULightUniform_Marshal(t *testing.T) {
	u := GPULightUniform{
		PointPosition:    [3]float32{1, 2, 3},
		PointIntensity:   4,
		PointColor:       [3]float32{5, 6, 7},
		AmbientColor:     [3]float32{8, 9, 10},
		AmbientIntensity: 11,
	}

	buf := u.Marshal()
	require.Len(t, buf, GPULightUniformSize)
	assert.Equal(t, GPULightUniformSize, u.Size())
	assert.Equal(t, float32(4), common.Float32At(buf, 3))
	assert.Equal(t, float32(0), common.Float32At(buf, 7))
	assert.Equal(t, float32(11), common.Float32At(buf, 11))
	assert.Contains(t, GPULightingSource, "struct Lighting")
}
