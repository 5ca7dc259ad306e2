package morph

import (
	"github.com/Carmen-Shannon/prism-go/common"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
)

// Index is the per-entity record of where an instance's morph weights begin
// inside the frame's weight arena. Presence of this record is what marks an
// entity as morphed for the rest of the frame.
type Index struct {
	// First is the float index of the entity's first weight.
	First uint32
}

// ByteOffset returns the dynamic offset used when binding the weight buffer
// for this instance. The arena stride keeps it 256 byte aligned.
//
// Returns:
//   - uint32: byte offset of the instance's first weight
func (i Index) ByteOffset() uint32 {
	return i.First * WeightByteSize
}

// Source is the allocator's view of one potentially morphed object.
type Source struct {
	// Entity is the stable identifier of the object.
	Entity mesh.Entity
	// Visible is the result of visibility determination for this frame.
	Visible bool
	// Weights holds the object's morph target weights, nil or empty for
	// unmorphed objects.
	Weights []float32
}

// Allocated is one frame's morph output: the staged weight arena plus the
// per-entity start records. The backing storage is reused by the allocator,
// so a given Allocated is valid only until the next Allocate call.
type Allocated struct {
	weights []float32
	indices map[mesh.Entity]Index
}

// Lookup finds the weight record allocated for an entity this frame.
//
// Parameters:
//   - e: entity identifier
//
// Returns:
//   - Index: the instance's start record
//   - bool: false when the entity received no weight allocation
func (a *Allocated) Lookup(e mesh.Entity) (Index, bool) {
	i, ok := a.indices[e]
	return i, ok
}

// Len returns the number of entities that received a weight allocation.
func (a *Allocated) Len() int {
	return len(a.indices)
}

// WeightCount returns the total number of staged weights, padding included.
func (a *Allocated) WeightCount() int {
	return len(a.weights)
}

// Bytes returns the staged weights for a buffer upload. The slice is valid
// until the next Allocate call.
//
// Returns:
//   - []byte: little-endian packed weights
func (a *Allocated) Bytes() []byte {
	return common.SliceToBytes(a.weights)
}

// Allocator stages morph target weights for all visible morphed instances of
// a frame into a shared arena and records where each instance's weights
// begin. Every allocation occupies a full MaxMorphWeights stride so start
// offsets stay aligned for dynamic uniform binding.
type Allocator interface {
	// Allocate walks the sources and stages weights for each visible
	// morphed entity. Entities with more than MaxMorphWeights weights are
	// skipped. The returned value is valid until the next Allocate call.
	Allocate(sources []Source) *Allocated
}

type allocator struct {
	weights []float32
	indices map[mesh.Entity]Index
	out     Allocated
}

var _ Allocator = &allocator{}

// NewAllocator creates an Allocator with an empty arena.
//
// Returns:
//   - Allocator: the initialized allocator
func NewAllocator() Allocator {
	return &allocator{
		indices: make(map[mesh.Entity]Index),
	}
}

// Allocate implements Allocator.
func (al *allocator) Allocate(sources []Source) *Allocated {
	al.weights = al.weights[:0]
	clear(al.indices)

	for i := range sources {
		src := &sources[i]
		if !src.Visible || len(src.Weights) == 0 || len(src.Weights) > MaxMorphWeights {
			continue
		}

		start := len(al.weights)
		al.weights = append(al.weights, src.Weights...)
		for len(al.weights)-start < MaxMorphWeights {
			al.weights = append(al.weights, 0)
		}
		al.indices[src.Entity] = Index{First: uint32(start)}
	}

	al.out = Allocated{weights: al.weights, indices: al.indices}
	return &al.out
}
