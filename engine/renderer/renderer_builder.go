package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the renderer.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
// Counts that no sample count constant names are normalized to the nearest
// valid value, so raw configuration values are safe to pass through.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA2x, MSAA4x, or MSAA8x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Useful for benchmarking CPU vs GPU rendering performance.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithBatchedUniformFallback forces the per-object uniform array onto the batched
// uniform binding path even when the adapter supports vertex-stage storage buffers.
// Useful for exercising the downlevel path on hardware that would otherwise take
// the storage buffer path.
//
// Parameters:
//   - force: true to force the batched uniform path, false to probe the adapter (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the fallback option to a renderer
func WithBatchedUniformFallback(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceUniformPath = force
	}
}

// WithShaderSource replaces the WGSL source the renderer processes when registering
// pipeline variants. The source must declare the vs_main and fs_main entry points
// and may use the full pre-processor directive set. Defaults to the engine's
// forward pass shader.
//
// Parameters:
//   - source: the raw WGSL source containing pre-processor directives
//
// Returns:
//   - RendererBuilderOption: a function that applies the shader source option to a renderer
func WithShaderSource(source string) RendererBuilderOption {
	return func(r *renderer) {
		r.shaderSource = source
	}
}
