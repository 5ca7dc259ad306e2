package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// SpecializerOption is a functional option for configuring a Specializer.
// Use the With* functions to create options that are applied directly to the
// specializer instance.
type SpecializerOption func(*specializer)

// WithSurfaceFormat sets the color target format used by non-HDR variants.
//
// Parameters:
//   - format: the surface texture format
//
// Returns:
//   - SpecializerOption: option function to apply
func WithSurfaceFormat(format wgpu.TextureFormat) SpecializerOption {
	return func(s *specializer) {
		s.surfaceFormat = format
	}
}

// WithPerObjectBinding sets how the per-object uniform array is bound, which
// shapes the mesh bind group layout of every variant.
//
// Parameters:
//   - mode: storage buffer, or uniform batches with a dynamic offset
//
// Returns:
//   - SpecializerOption: option function to apply
func WithPerObjectBinding(mode PerObjectBinding) SpecializerOption {
	return func(s *specializer) {
		s.perObject = mode
	}
}

// NewSpecializer creates a Specializer with the given options applied.
// Defaults: BGRA8 unorm sRGB surface and the storage buffer per-object path.
//
// Parameters:
//   - opts: optional configuration, see the With* functions
//
// Returns:
//   - Specializer: the configured specializer
func NewSpecializer(opts ...SpecializerOption) Specializer {
	s := &specializer{
		surfaceFormat: wgpu.TextureFormatBGRA8UnormSrgb,
		perObject:     PerObjectBinding{Storage: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
