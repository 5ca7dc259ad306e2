package skin

import (
	"github.com/Carmen-Shannon/prism-go/common"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
)

// Skin describes one skinned instance: the joint entities in skinning order
// and the matching inverse bindpose matrices. The two slices must be the same
// length.
type Skin struct {
	// Joints lists the skeleton's joint entities in the order the mesh's
	// joint indices refer to them.
	Joints []mesh.Entity
	// InverseBindposes holds one column-major matrix per joint.
	InverseBindposes [][16]float32
}

// Joints is the per-entity record of where an instance's joint matrices begin
// inside the frame's arena. Presence of this record is what marks an entity
// as skinned for the rest of the frame.
type Joints struct {
	// Index is the matrix index of the skin's first joint.
	Index uint32
}

// ByteOffset returns the dynamic offset used when binding the joint buffer
// for this skin. Arena padding keeps it 256 byte aligned.
//
// Returns:
//   - uint32: byte offset of the skin's first joint matrix
func (j Joints) ByteOffset() uint32 {
	return j.Index * JointByteSize
}

// Source is the allocator's view of one potentially skinned object.
type Source struct {
	// Entity is the stable identifier of the object.
	Entity mesh.Entity
	// Visible is the result of visibility determination for this frame.
	Visible bool
	// Skin is the object's skin description, nil for unskinned objects.
	Skin *Skin
}

// TransformFn resolves a joint entity to its world transform. The second
// return is false when the entity has no transform this frame.
type TransformFn func(mesh.Entity) ([16]float32, bool)

// Allocated is one frame's skinning output: the staged joint arena plus the
// per-entity start records. The backing storage is reused by the allocator,
// so a given Allocated is valid only until the next Allocate call.
type Allocated struct {
	arena   *JointArena
	indices map[mesh.Entity]Joints
}

// Lookup finds the joint record allocated for an entity this frame.
//
// Parameters:
//   - e: entity identifier
//
// Returns:
//   - Joints: the skin's start record
//   - bool: false when the entity received no skin allocation
func (a *Allocated) Lookup(e mesh.Entity) (Joints, bool) {
	j, ok := a.indices[e]
	return j, ok
}

// Len returns the number of entities that received a skin allocation.
func (a *Allocated) Len() int {
	return len(a.indices)
}

// JointCount returns the total number of staged joint matrices, padding
// included.
func (a *Allocated) JointCount() int {
	return a.arena.Len()
}

// Bytes returns the staged joint matrices for a buffer upload. The slice is
// valid until the next Allocate call.
//
// Returns:
//   - []byte: little-endian packed joint matrices
func (a *Allocated) Bytes() []byte {
	return a.arena.Bytes()
}

// Allocator stages joint matrices for all visible skinned instances of a
// frame into a shared arena and records where each skin begins.
type Allocator interface {
	// Allocate walks the sources, computes joint matrices for each visible
	// skinned entity and stages them contiguously. An entity whose joints
	// cannot all be resolved is rolled back and skipped, leaving it
	// unskinned for the frame. The returned value is valid until the next
	// Allocate call.
	Allocate(sources []Source, transform TransformFn) *Allocated
}

type allocator struct {
	arena   *JointArena
	indices map[mesh.Entity]Joints
	out     Allocated
}

var _ Allocator = &allocator{}

// NewAllocator creates an Allocator with an empty arena.
//
// Returns:
//   - Allocator: the initialized allocator
func NewAllocator() Allocator {
	return &allocator{
		arena:   NewJointArena(),
		indices: make(map[mesh.Entity]Joints),
	}
}

// Allocate implements Allocator.
func (al *allocator) Allocate(sources []Source, transform TransformFn) *Allocated {
	al.arena.Clear()
	clear(al.indices)

	lastStart := 0
	staged := false
	var joint [16]float32
	for i := range sources {
		src := &sources[i]
		if !src.Visible || src.Skin == nil {
			continue
		}
		s := src.Skin
		if len(s.Joints) == 0 || len(s.Joints) > MaxJoints || len(s.Joints) != len(s.InverseBindposes) {
			continue
		}

		start := al.arena.Len()
		ok := true
		for j, je := range s.Joints {
			world, found := transform(je)
			if !found {
				ok = false
				break
			}
			common.Mul4(joint[:], world[:], s.InverseBindposes[j][:])
			al.arena.Push(joint)
		}
		if !ok {
			// A skeleton missing any joint transform skins nothing this
			// frame; partial staging must not leak into the arena.
			al.arena.TruncateTo(start)
			continue
		}

		al.indices[src.Entity] = Joints{Index: uint32(start)}
		if start > lastStart {
			lastStart = start
		}
		staged = true
		al.arena.PadToMultipleOf4()
	}

	if staged {
		al.arena.EnsureHeadroom(lastStart)
	}

	al.out = Allocated{arena: al.arena, indices: al.indices}
	return &al.out
}
