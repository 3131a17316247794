package light

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-mocap/common"
)

// GPULightingSource is the canonical WGSL definition of the Lighting struct.
// Matches GPULightUniform layout exactly (48 bytes, uniform aligned).
//
//go:embed assets/lighting.wgsl
var GPULightingSource string

// GPULightUniformSize is the byte size of a marshaled GPULightUniform.
const GPULightUniformSize = 48

// GPULightUniform is the GPU-aligned representation of the scene's light rig.
// Matches the WGSL Lighting struct layout exactly (see GPULightingSource).
type GPULightUniform struct {
	PointPosition    [3]float32 // offset  0
	PointIntensity   float32    // offset 12: 0 when no point light is enabled
	PointColor       [3]float32 // offset 16
	_pad0            float32    // offset 28
	AmbientColor     [3]float32 // offset 32
	AmbientIntensity float32    // offset 44
}

// Size returns the size of the GPULightUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULightUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULightUniform) Marshal() []byte {
	buf := make([]byte, GPULightUniformSize)
	common.PutFloat32s(buf,
		g.PointPosition[0], g.PointPosition[1], g.PointPosition[2], g.PointIntensity,
		g.PointColor[0], g.PointColor[1], g.PointColor[2], 0,
		g.AmbientColor[0], g.AmbientColor[1], g.AmbientColor[2], g.AmbientIntensity,
	)
	return buf
}

// BuildLightUniform packs a light list into a GPULightUniform.
// The first enabled point light is used; further point lights are ignored. Enabled ambient
// lights are summed into a single pre-multiplied color with unit intensity.
//
// Parameters:
//   - lights: the scene's lights
//
// Returns:
//   - GPULightUniform: the packed uniform
func BuildLightUniform(lights []Light) GPULightUniform {
	var u GPULightUniform
	havePoint := false
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		switch l.Type() {
		case LightTypePoint:
			if havePoint {
				continue
			}
			havePoint = true
			u.PointPosition = l.Position()
			u.PointColor = l.Color()
			u.PointIntensity = l.Intensity()
		case LightTypeAmbient:
			c, k := l.Color(), l.Intensity()
			u.AmbientColor[0] += c[0] * k
			u.AmbientColor[1] += c[1] * k
			u.AmbientColor[2] += c[2] * k
			u.AmbientIntensity = 1
		}
	}
	return u
}
