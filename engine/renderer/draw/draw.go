package draw

import (
	"errors"

	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/array_buffer"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMeshNotReady marks a draw whose mesh asset has not finished uploading.
// The item is skipped silently and retried next frame.
var ErrMeshNotReady = errors.New("mesh not ready")

// ErrMissingBindGroup marks a draw whose bind group is absent from the frame
// cache. The queue stage builds a group for every queued combination, so a
// miss here is a stage inconsistency and is logged as an error before the
// item is failed.
var ErrMissingBindGroup = errors.New("missing mesh bind group")

// Pass is the slice of the render pass encoder that draw commands record
// into. *wgpu.RenderPassEncoder satisfies it; tests substitute a recorder.
type Pass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

var _ Pass = &wgpu.RenderPassEncoder{}

// Item is one queued draw: the entity it renders, the mesh asset it uses and
// the entity's record slot in the frame's per-object buffer.
type Item struct {
	Entity mesh.Entity
	Handle mesh.Handle
	// BufferIndex is the global index returned when the entity's uniform was
	// pushed into the per-object array buffer.
	BufferIndex uint32
}

// Frame is the read-only prepared state of one frame, shared by every draw
// command. It is assembled after the prepare and queue stages complete and
// must not change while dispatch records.
type Frame struct {
	// Store resolves mesh handles to uploaded assets.
	Store *mesh.Store
	// Cache holds the frame's mesh bind groups.
	Cache bind_group_cache.Cache
	// ViewGroup is the camera bind group, bound once per item at the view
	// slot with ViewOffset as its dynamic offset.
	ViewGroup *wgpu.BindGroup
	// ViewOffset selects the active view inside the view uniform buffer.
	ViewOffset uint32
	// PerObject is the frame's mesh uniform buffer. Its mode decides whether
	// mesh bind calls carry a batch dynamic offset.
	PerObject array_buffer.ArrayBuffer[*mesh.GPUMeshUniform]
	// Skins holds this frame's joint allocations, nil when nothing skinned.
	Skins *skin.Allocated
	// Morphs holds this frame's weight allocations, nil when nothing morphs.
	Morphs *morph.Allocated
}

// skinFor resolves the item's joint record, absent when the frame staged no
// skin for the entity.
func (f *Frame) skinFor(e mesh.Entity) (skin.Joints, bool) {
	if f.Skins == nil {
		return skin.Joints{}, false
	}
	return f.Skins.Lookup(e)
}

// morphFor resolves the item's weight record, absent when the frame staged no
// weights for the entity.
func (f *Frame) morphFor(e mesh.Entity) (morph.Index, bool) {
	if f.Morphs == nil {
		return morph.Index{}, false
	}
	return f.Morphs.Lookup(e)
}

// perObjectOffset returns the batch dynamic offset for a record slot. The
// second return is false in storage mode, where the shader indexes the full
// array and bind calls carry no per-object offset.
func (f *Frame) perObjectOffset(index uint32) (uint32, bool) {
	if f.PerObject == nil {
		return 0, false
	}
	if _, batched := f.PerObject.BatchSize(); !batched {
		return 0, false
	}
	return f.PerObject.DynamicOffset(index), true
}

// instanceIndex returns the first-instance value addressing a record slot.
func (f *Frame) instanceIndex(index uint32) uint32 {
	if f.PerObject == nil {
		return index
	}
	return f.PerObject.InstanceIndex(index)
}
