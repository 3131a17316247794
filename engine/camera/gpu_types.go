package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-mocap/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (144 bytes, uniform aligned).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniformSize is the byte size of a marshaled GPUCameraUniform.
const GPUCameraUniformSize = 144

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// View and projection are kept separate because points are expanded into billboards in
// view space.
type GPUCameraUniform struct {
	View           [16]float32 // offset   0: view matrix (mat4x4<f32>)
	Proj           [16]float32 // offset  64: projection matrix (mat4x4<f32>)
	CameraPosition [3]float32  // offset 128: world-space camera position (vec3<f32>)
	PointSize      float32     // offset 140: point diameter in world units
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto serializes the uniform into dst without allocating.
// dst must hold at least GPUCameraUniformSize bytes.
//
// Parameters:
//   - dst: destination buffer
func (g *GPUCameraUniform) MarshalInto(dst []byte) {
	common.PutFloat32s(dst[0:], g.View[:]...)
	common.PutFloat32s(dst[64:], g.Proj[:]...)
	common.PutFloat32s(dst[128:], g.CameraPosition[0], g.CameraPosition[1], g.CameraPosition[2], g.PointSize)
}
