package skin

import (
	_ "embed"
)

// JointMatricesSource is the WGSL declaration of the joint matrix binding.
// Shaders that skin vertices splice this in so the Go and WGSL layouts cannot
// drift apart.
//
//go:embed assets/joint_matrices.wgsl
var JointMatricesSource string

const (
	// MaxJoints is the fixed number of joint matrices one skin binding
	// exposes to the shader.
	MaxJoints = 256
	// JointByteSize is the byte size of one column-major mat4x4 joint
	// matrix.
	JointByteSize = 64
	// BindingByteSize is the fixed size of the joint uniform binding.
	BindingByteSize = MaxJoints * JointByteSize
)
