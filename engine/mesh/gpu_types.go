package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
)

// MeshUniformSource is the WGSL declaration of the per-instance mesh uniform.
// Shaders that bind the mesh uniform splice this in so the Go and WGSL
// layouts cannot drift apart.
//
//go:embed assets/mesh_uniform.wgsl
var MeshUniformSource string

// UniformByteSize is the byte size of GPUMeshUniform as laid out in WGSL.
const UniformByteSize = 192

// GPUMeshUniform is the per-instance record uploaded for every visible mesh.
// It matches the WGSL Mesh struct: two column-major mat4x4 transforms, the
// inverse transpose of the model's upper 3x3 stored as three vec4-aligned
// columns, and the instance flags. 192 bytes.
type GPUMeshUniform struct {
	// Model is the column-major model matrix for the current frame.
	Model [16]float32
	// PreviousModel is the model matrix from the previous frame, used for
	// motion vectors. On an instance's first frame it equals Model.
	PreviousModel [16]float32
	// InverseTransposeModel is the inverse transpose of Model's upper 3x3,
	// stored as three columns padded to vec4 alignment.
	InverseTransposeModel [12]float32
	// Flags is the instance bitset, see Flags.
	Flags uint32
	// _pad keeps the struct at a 16 byte multiple for uniform buffers.
	_pad [3]uint32
}

// Size returns the byte size of the uniform as laid out in WGSL.
//
// Returns:
//   - int: total byte size
func (g *GPUMeshUniform) Size() int {
	return UniformByteSize
}

// Marshal packs the uniform into little-endian bytes suitable for a buffer
// write.
//
// Returns:
//   - []byte: the packed uniform, len == Size()
func (g *GPUMeshUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	offset := 0
	for _, f := range g.Model {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(f))
		offset += 4
	}
	for _, f := range g.PreviousModel {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(f))
		offset += 4
	}
	for _, f := range g.InverseTransposeModel {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(f))
		offset += 4
	}
	binary.LittleEndian.PutUint32(buf[offset:], g.Flags)
	return buf
}
