package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/prism-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[pipeline.VariantID]*wgpu.RenderPipeline
	shaderSource  string
	sampleCount   MSAASampleCount

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	forceUniformPath     bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer owns the GPU device and surface, caches specialized render pipelines by variant,
// and exposes the per-frame render pass that draw dispatch encodes into. The Renderer also
// implements a backend which allows for multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the cached render pipeline for one specialized variant.
	// If the variant has not been registered, this will return nil.
	//
	// Parameters:
	//   - id: the variant identity (feature key + vertex layout) to retrieve
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline object for the variant, or nil if not registered
	Pipeline(id pipeline.VariantID) *wgpu.RenderPipeline

	// Pipelines retrieves the entire cache of registered pipeline objects.
	//
	// Returns:
	//   - map[pipeline.VariantID]*wgpu.RenderPipeline: the cache keyed by variant identity
	Pipelines() map[pipeline.VariantID]*wgpu.RenderPipeline

	// RegisterPipelines registers one or more specialized pipeline configs by creating the
	// corresponding GPU pipeline objects via the backend, then caching them by variant identity.
	// Configs whose variants are already registered are skipped to avoid duplicate GPU resource
	// creation, which is what makes pipeline specialization cacheable: equal configs produce
	// equal variant identities.
	//
	// Parameters:
	//   - configs: the specialized pipeline descriptions to register
	//
	// Returns:
	//   - error: an error if shader processing or pipeline creation fails
	RegisterPipelines(configs ...pipeline.Config) error

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Device returns the GPU device. The per-frame bind group cache creates
	// its groups directly on it.
	//
	// Returns:
	//   - *wgpu.Device: the device owned by the backend
	Device() *wgpu.Device

	// SurfaceFormat returns the texture format the surface was configured with.
	// Pipeline specialization targets this format for non-HDR variants.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	SurfaceFormat() wgpu.TextureFormat

	// SampleCount returns the MSAA sample count of the main render pass.
	// Pipeline feature keys must carry the same count to be compatible with the pass.
	//
	// Returns:
	//   - MSAASampleCount: the configured sample count
	SampleCount() MSAASampleCount

	// SupportsStorageBuffers reports whether the vertex stage can read the per-object
	// uniform array through a storage buffer. When false the per-object data falls back
	// to a batched uniform binding with dynamic offsets.
	//
	// Returns:
	//   - bool: true when the storage buffer path is available
	SupportsStorageBuffers() bool

	// PerObjectBatchSize returns the per-object record count of one uniform binding window
	// on the batched uniform fallback path, derived from the device's maximum uniform
	// binding size.
	//
	// Returns:
	//   - uint32: records per batch, 0 on the storage path
	//   - bool: false when the storage path is active and no batching applies
	PerObjectBatchSize() (uint32, bool)

	// CreateBuffer creates an uninitialized GPU buffer. Callers upload data through
	// staged BufferWrites flushed by WriteBuffers.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - size: buffer size in bytes
	//   - usage: buffer usage flags
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: an error if buffer creation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// CreateBindGroupLayout creates a bind group layout from a descriptor. Layout
	// compatibility in WebGPU is structural, so layouts created here from the same
	// descriptors the pipelines were registered with bind interchangeably.
	//
	// Parameters:
	//   - descriptor: the layout descriptor
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the created layout
	//   - error: an error if layout creation fails
	CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and
	// uploads the data in place. The index buffer is nil for non-indexed meshes.
	//
	// Parameters:
	//   - label: debug label prefix for the buffers
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU, may be empty
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	//   - *wgpu.Buffer: the index buffer, nil when indexData is empty
	//   - error: an error if buffer creation fails
	InitMeshBuffers(label string, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error)

	// InitBindGroup creates GPU buffers and a bind group from a layout descriptor and
	// stores them on the given BindGroupProvider. Buffer usage and size can be overridden
	// per binding.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created bind group on
	//   - descriptor: the layout descriptor defining the bind group entries
	//   - bufferUsageOverrides: additional buffer usage flags to OR into the derived usage, keyed by binding index (nil safe)
	//   - bufferSizeOverrides: custom buffer sizes to use instead of MinBindingSize, keyed by binding index (nil safe)
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	// Each BufferWrite targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	// Must be paired with EndFrame after the frame's draws are recorded.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Pass returns the render pass encoder of the current frame, nil outside a
	// BeginFrame/EndFrame pair. Draw dispatch encodes into it.
	//
	// Returns:
	//   - *wgpu.RenderPassEncoder: the current frame's render pass
	Pass() *wgpu.RenderPassEncoder

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	// Must be called after BeginFrame once the frame's draws are recorded.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and window.
// The window provides the platform-specific surface descriptor for WebGPU surface creation.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface the renderer draws to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[pipeline.VariantID]*wgpu.RenderPipeline),
		shaderSource:  shader.ForwardSource,
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	r.sampleCount = MSAA4x // default
	if r.pendingMSAA != nil {
		r.sampleCount = r.pendingMSAA.Normalize()
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, r.forceUniformPath, r.sampleCount)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(id pipeline.VariantID) *wgpu.RenderPipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[id]
}

func (r *renderer) Pipelines() map[pipeline.VariantID]*wgpu.RenderPipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache
}

func (r *renderer) RegisterPipelines(configs ...pipeline.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range configs {
		if _, exists := r.pipelineCache[cfg.ID]; exists {
			continue
		}
		created, err := r.backend.RegisterPipeline(cfg, r.shaderSource)
		if err != nil {
			return err
		}
		r.pipelineCache[cfg.ID] = created
	}
	return nil
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.sampleCount
}

func (r *renderer) SupportsStorageBuffers() bool {
	return r.backend.SupportsStorageBuffers()
}

func (r *renderer) PerObjectBatchSize() (uint32, bool) {
	return r.backend.PerObjectBatchSize()
}

func (r *renderer) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	return r.backend.CreateBuffer(label, size, usage)
}

func (r *renderer) CreateBindGroupLayout(descriptor wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return r.backend.CreateBindGroupLayout(descriptor)
}

func (r *renderer) InitMeshBuffers(label string, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error) {
	return r.backend.InitMeshBuffers(label, vertexData, indexData)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Pass() *wgpu.RenderPassEncoder {
	return r.backend.Pass()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
