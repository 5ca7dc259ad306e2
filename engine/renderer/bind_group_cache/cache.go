package bind_group_cache

import (
	"fmt"

	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Device is the subset of the GPU device the cache needs to build binding
// objects. *wgpu.Device satisfies it; tests substitute a fake.
type Device interface {
	CreateBindGroup(descriptor *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)
}

var _ Device = &wgpu.Device{}

// Layouts carries the four mesh-group layout objects a frame's bind groups
// are built against, one per skinned/morphed combination.
type Layouts struct {
	Model          *wgpu.BindGroupLayout
	Skinned        *wgpu.BindGroupLayout
	Morphed        *wgpu.BindGroupLayout
	SkinnedMorphed *wgpu.BindGroupLayout
}

// BufferBinding names one frame buffer and the binding window each draw sees.
// A nil BufferBinding (or nil Buffer) means the resource was not produced
// this frame.
type BufferBinding struct {
	Buffer *wgpu.Buffer
	// Size is the binding window in bytes. Pass wgpu.WholeSize to bind the
	// full buffer, or the batch window when dynamic offsets select batches.
	Size uint64
}

// cache is the implementation of the Cache interface.
type cache struct {
	rebuilt   bool
	modelOnly *wgpu.BindGroup
	skinned   *wgpu.BindGroup
	morphed   map[mesh.Handle]*wgpu.BindGroup
}

// Cache holds the frame's mesh bind groups: one shared model-only group, one
// shared skinned group, and one group per morphed mesh. Rebuild runs in the
// queue stage with a single writer; Lookup runs read-only during dispatch.
// The two never overlap, frame stages are strictly ordered.
type Cache interface {
	// Rebuild discards the previous frame's groups and builds this frame's
	// set. When model is absent the cache stays empty and every Lookup
	// reports not ready, which callers treat as "skip the draw", not as an
	// error.
	//
	// Parameters:
	//   - device: bind group factory
	//   - layouts: the four mesh-group layouts
	//   - model: per-object uniform buffer binding, nil when no visible meshes
	//   - skin: joint matrix buffer binding, nil when nothing is skinned
	//   - morphWeights: morph weight buffer binding, nil when nothing morphs
	//   - store: mesh assets, iterated for per-mesh morph groups
	//
	// Returns:
	//   - error: bind group creation failure
	Rebuild(device Device, layouts Layouts, model, skin, morphWeights *BufferBinding, store *mesh.Store) error

	// Lookup resolves the bind group for one draw. The morph flag takes
	// priority: a morphed draw either hits its mesh's per-mesh group or
	// misses entirely, even when the shared groups exist.
	//
	// Parameters:
	//   - h: the mesh the draw renders
	//   - isSkinned: whether the draw carries a skin record
	//   - isMorphed: whether the draw carries a morph weight record
	//
	// Returns:
	//   - *wgpu.BindGroup: the group to bind
	//   - bool: false when no matching group exists this frame
	Lookup(h mesh.Handle, isSkinned, isMorphed bool) (*wgpu.BindGroup, bool)
}

var _ Cache = &cache{}

// NewCache creates an empty bind group cache. Every Lookup misses until the
// first Rebuild.
//
// Returns:
//   - Cache: the initialized cache
func NewCache() Cache {
	return &cache{
		morphed: make(map[mesh.Handle]*wgpu.BindGroup),
	}
}

func (c *cache) Rebuild(device Device, layouts Layouts, model, skin, morphWeights *BufferBinding, store *mesh.Store) error {
	c.modelOnly = nil
	c.skinned = nil
	clear(c.morphed)
	c.rebuilt = true

	if model == nil || model.Buffer == nil {
		// Nothing visible this frame, leave the cache empty.
		return nil
	}

	modelEntry := wgpu.BindGroupEntry{
		Binding: pipeline.BindingMeshUniform,
		Buffer:  model.Buffer,
		Offset:  0,
		Size:    model.Size,
	}

	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "mesh_bind_group",
		Layout:  layouts.Model,
		Entries: []wgpu.BindGroupEntry{modelEntry},
	})
	if err != nil {
		return fmt.Errorf("rebuild mesh bind group: %w", err)
	}
	c.modelOnly = group

	var skinEntry wgpu.BindGroupEntry
	hasSkin := skin != nil && skin.Buffer != nil
	if hasSkin {
		skinEntry = wgpu.BindGroupEntry{
			Binding: pipeline.BindingJointMatrices,
			Buffer:  skin.Buffer,
			Offset:  0,
			Size:    skin.Size,
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "skinned_mesh_bind_group",
			Layout:  layouts.Skinned,
			Entries: []wgpu.BindGroupEntry{modelEntry, skinEntry},
		})
		if err != nil {
			return fmt.Errorf("rebuild skinned mesh bind group: %w", err)
		}
		c.skinned = group
	}

	if morphWeights == nil || morphWeights.Buffer == nil {
		return nil
	}
	weightEntry := wgpu.BindGroupEntry{
		Binding: pipeline.BindingMorphWeights,
		Buffer:  morphWeights.Buffer,
		Offset:  0,
		Size:    morphWeights.Size,
	}
	for h, m := range store.Meshes() {
		if !m.HasMorphTargets() {
			continue
		}
		layout := layouts.Morphed
		entries := []wgpu.BindGroupEntry{modelEntry, weightEntry}
		label := m.Label + "_morphed_bind_group"
		if hasSkin && m.Layout.HasJoints() {
			layout = layouts.SkinnedMorphed
			entries = []wgpu.BindGroupEntry{modelEntry, skinEntry, weightEntry}
			label = m.Label + "_morphed_skinned_bind_group"
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   label,
			Layout:  layout,
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("rebuild %s: %w", label, err)
		}
		c.morphed[h] = group
	}

	return nil
}

func (c *cache) Lookup(h mesh.Handle, isSkinned, isMorphed bool) (*wgpu.BindGroup, bool) {
	if !c.rebuilt {
		return nil, false
	}
	if isMorphed {
		group, ok := c.morphed[h]
		return group, ok
	}
	if isSkinned {
		if c.skinned == nil {
			return nil, false
		}
		return c.skinned, true
	}
	if c.modelOnly == nil {
		return nil, false
	}
	return c.modelOnly, true
}
