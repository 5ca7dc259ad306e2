package draw

import (
	"github.com/Carmen-Shannon/prism-go/internal/logger"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Command is one step of the per-item draw sequence. The set is closed:
// SetViewBindGroup, SetMeshBindGroup and DrawMesh, run in that order by the
// dispatcher. Commands hold no per-frame state; everything they need arrives
// through the item and the frame.
type Command interface {
	// Render records the command for one item. A non-nil error abandons that
	// item; the dispatcher carries on with the next one.
	//
	// Parameters:
	//   - item: the queued draw being recorded
	//   - frame: the frame's prepared state
	//   - pass: the render pass encoder
	//
	// Returns:
	//   - error: ErrMeshNotReady, ErrMissingBindGroup, or nil
	Render(item *Item, frame *Frame, pass Pass) error
}

// SetViewBindGroup binds the view bind group with the frame's view uniform
// dynamic offset.
type SetViewBindGroup struct {
	// Slot is the bind group index the view group occupies.
	Slot uint32
}

var _ Command = SetViewBindGroup{}

func (c SetViewBindGroup) Render(_ *Item, frame *Frame, pass Pass) error {
	pass.SetBindGroup(c.Slot, frame.ViewGroup, []uint32{frame.ViewOffset})
	return nil
}

// SetMeshBindGroup resolves the item's bind group from the frame cache and
// binds it with the item's dynamic offsets in fixed order: per-object batch
// offset (batched-uniform mode only), then skin offset, then morph offset.
// Offsets that do not apply are omitted, so the count always matches the
// layout's dynamic binding count.
type SetMeshBindGroup struct {
	// Slot is the bind group index the mesh group occupies.
	Slot uint32
}

var _ Command = SetMeshBindGroup{}

func (c SetMeshBindGroup) Render(item *Item, frame *Frame, pass Pass) error {
	joints, skinned := frame.skinFor(item.Entity)
	weights, morphed := frame.morphFor(item.Entity)

	group, ok := frame.Cache.Lookup(item.Handle, skinned, morphed)
	if !ok {
		logger.Error("mesh bind group missing, prepare and queue stages disagree",
			zap.Uint64("entity", uint64(item.Entity)),
			zap.Uint64("mesh", uint64(item.Handle)),
			zap.Bool("skinned", skinned),
			zap.Bool("morphed", morphed),
		)
		return ErrMissingBindGroup
	}

	offsets := make([]uint32, 0, 3)
	if offset, batched := frame.perObjectOffset(item.BufferIndex); batched {
		offsets = append(offsets, offset)
	}
	if skinned {
		offsets = append(offsets, joints.ByteOffset())
	}
	if morphed {
		offsets = append(offsets, weights.ByteOffset())
	}
	pass.SetBindGroup(c.Slot, group, offsets)
	return nil
}

// DrawMesh binds the mesh's vertex data and issues the draw call for one
// instance addressed at the item's record slot.
type DrawMesh struct{}

var _ Command = DrawMesh{}

func (DrawMesh) Render(item *Item, frame *Frame, pass Pass) error {
	m, ok := frame.Store.Get(item.Handle)
	if !ok {
		// Asset not uploaded yet, retry next frame.
		return ErrMeshNotReady
	}

	instance := frame.instanceIndex(item.BufferIndex)
	pass.SetVertexBuffer(0, m.VertexBuffer, 0, wgpu.WholeSize)
	if m.Indexed() {
		pass.SetIndexBuffer(m.IndexBuffer, m.IndexFormat, 0, wgpu.WholeSize)
		pass.DrawIndexed(m.IndexCount, 1, 0, 0, instance)
		return nil
	}
	pass.Draw(m.VertexCount, 1, 0, instance)
	return nil
}
