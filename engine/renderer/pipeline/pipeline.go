package pipeline

import (
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Render target formats shared by every specialized pipeline.
const (
	// DepthFormat is the depth attachment format. Depth is reversed
	// (cleared to 0, compared greater-equal) for floating point precision.
	DepthFormat = wgpu.TextureFormatDepth32Float
	// HDRFormat is the color target format when FeatureHDR is set.
	HDRFormat = wgpu.TextureFormatRGBA16Float
)

// VariantID identifies one specialized pipeline: the feature key plus the
// vertex layout identity. Two draws with equal VariantIDs can share a
// pipeline object.
type VariantID struct {
	// Key is the feature key the variant was specialized for.
	Key FeatureKey
	// Layout is the attribute bitset of the vertex layout.
	Layout mesh.Attribute
}

// Config is the complete CPU-side description of one specialized render
// pipeline. It is pure data: the renderer turns it into GPU objects by
// processing the shader source with Defs, creating the bind group layouts and
// building the pipeline from the states below.
type Config struct {
	// Label names the pipeline for debugging, derived from the key.
	Label string
	// ID is the cache identity of the variant.
	ID VariantID
	// Defs drive shader pre-processing for this variant.
	Defs []shader.Def
	// VertexBuffers describes the vertex buffer the variant consumes.
	VertexBuffers []wgpu.VertexBufferLayout
	// BindGroupLayouts holds the bind group layout descriptors by group
	// index.
	BindGroupLayouts []wgpu.BindGroupLayoutDescriptor
	// Primitive carries topology, winding and culling.
	Primitive wgpu.PrimitiveState
	// DepthStencil is the depth state, always present for the forward pass.
	DepthStencil *wgpu.DepthStencilState
	// ColorTarget is the single color attachment state.
	ColorTarget wgpu.ColorTargetState
	// Multisample carries the sample count from the key's MSAA field.
	Multisample wgpu.MultisampleState
	// Skinned records that the mesh group carries the joint matrix binding.
	Skinned bool
	// Morphed records that the mesh group carries the morph weight binding.
	Morphed bool
}
