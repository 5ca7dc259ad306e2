package renderer

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; 2 and 8 are adapter-dependent. The count is
// baked into every pipeline variant key, so changing it invalidates cached pipelines.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA2x enables 2× multisample anti-aliasing. Adapter-dependent.
	MSAA2x MSAASampleCount = 2

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8
)

// Normalize maps an arbitrary count onto the nearest valid sample count, so
// values coming straight from configuration cannot produce an unconfigurable
// render target.
//
// Returns:
//   - MSAASampleCount: MSAAOff, MSAA2x, MSAA4x or MSAA8x
func (c MSAASampleCount) Normalize() MSAASampleCount {
	switch {
	case c <= 1:
		return MSAAOff
	case c == 2:
		return MSAA2x
	case c <= 4:
		return MSAA4x
	default:
		return MSAA8x
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
