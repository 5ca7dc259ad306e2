package morph

import (
	_ "embed"
)

// MorphWeightsSource is the WGSL declaration of the morph weight binding.
// Shaders that apply morph targets splice this in so the Go and WGSL layouts
// cannot drift apart.
//
//go:embed assets/morph_weights.wgsl
var MorphWeightsSource string

const (
	// MaxMorphWeights is the fixed number of weights one morph binding
	// exposes to the shader.
	MaxMorphWeights = 64
	// WeightByteSize is the byte size of one f32 weight.
	WeightByteSize = 4
	// BindingByteSize is the fixed size of the weight uniform binding. It
	// equals the 256 byte dynamic offset alignment, so full-stride
	// allocations keep every start offset bindable.
	BindingByteSize = MaxMorphWeights * WeightByteSize
)
