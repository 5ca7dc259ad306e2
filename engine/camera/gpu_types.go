package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUViewUniformSource is the canonical WGSL definition of the View struct.
// Matches GPUViewUniform layout exactly (144 bytes, WGSL aligned).
//
//go:embed assets/view_uniform.wgsl
var GPUViewUniformSource string

// ViewUniformByteSize is the byte size of GPUViewUniform as laid out in WGSL.
const ViewUniformByteSize = 144

// GPUViewUniform is the GPU-aligned representation of the per-view uniform
// buffer. Matches the WGSL View struct layout exactly (see
// GPUViewUniformSource). Size: 144 bytes.
type GPUViewUniform struct {
	ViewProj         [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	PreviousViewProj [16]float32 // offset  64: previous frame's view-projection matrix (mat4x4<f32>)
	WorldPosition    [3]float32  // offset 128: world-space camera position (vec3<f32>)
	_pad             float32     // offset 140: padding to 144 bytes
}

// Size returns the size of the GPUViewUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUViewUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUViewUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.PreviousViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.WorldPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[140:], 0) // _pad
	return buf
}
