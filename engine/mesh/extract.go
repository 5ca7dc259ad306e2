package mesh

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/prism-go/common"
)

// Source is the extractor's view of one renderable object on the simulation
// side. Transforms are column-major mat4x4.
type Source struct {
	// Entity is the stable identifier of the object.
	Entity Entity
	// Visible is the result of visibility determination for this frame.
	Visible bool
	// Handle names the mesh asset the object draws with.
	Handle Handle
	// Transform is the object's model matrix for this frame.
	Transform [16]float32
	// PreviousTransform is last frame's model matrix, nil on the object's
	// first extracted frame.
	PreviousTransform *[16]float32
	// NotShadowCaster excludes the object from shadow casting.
	NotShadowCaster bool
	// NotShadowReceiver excludes the object from sampling shadow maps.
	NotShadowReceiver bool
}

// Instance is the draw-ready record produced for one visible mesh. It carries
// the packed uniform plus the bookkeeping later stages attach.
type Instance struct {
	// Entity is the identifier the record was extracted from.
	Entity Entity
	// Handle names the mesh asset.
	Handle Handle
	// Caster is true when the instance casts shadows.
	Caster bool
	// Uniform is the per-instance GPU record.
	Uniform GPUMeshUniform
	// BatchIndex is the instance's slot in the per-object uniform array.
	// It is assigned during buffer preparation, not extraction.
	BatchIndex uint32
}

// Extracted is one frame's extraction output: visible instances routed into
// the shadow caster and non-caster groups, plus an entity index over both.
// The backing storage is reused by the extractor, so a given Extracted is
// valid only until the next Extract call.
type Extracted struct {
	// Casters holds instances that cast shadows.
	Casters []Instance
	// NonCasters holds instances excluded from shadow casting.
	NonCasters []Instance

	byEntity map[Entity]*Instance
}

// Lookup finds the instance extracted for an entity this frame.
//
// Parameters:
//   - e: entity identifier
//
// Returns:
//   - *Instance: the instance record, or nil
//   - bool: false when the entity was not extracted
func (x *Extracted) Lookup(e Entity) (*Instance, bool) {
	inst, ok := x.byEntity[e]
	return inst, ok
}

// Len returns the total number of extracted instances across both groups.
func (x *Extracted) Len() int {
	return len(x.Casters) + len(x.NonCasters)
}

// Extractor snapshots visible renderables into draw-ready instance records at
// the start of a frame. Implementations reuse their output storage across
// frames, replacing the prior frame's records outright.
type Extractor interface {
	// Extract filters sources down to the visible set, computes each
	// instance's uniform and routes it into the caster or non-caster
	// group. The returned value is valid until the next Extract call.
	Extract(sources []Source) *Extracted
}

type extractor struct {
	pool      worker.DynamicWorkerPool
	chunkSize int

	casters    []Instance
	nonCasters []Instance
	byEntity   map[Entity]*Instance
	out        Extracted
}

var _ Extractor = &extractor{}

// Extract implements Extractor.
func (e *extractor) Extract(sources []Source) *Extracted {
	// Retain capacity from prior frames; steady-state scenes extract with
	// no allocation.
	e.casters = e.casters[:0]
	e.nonCasters = e.nonCasters[:0]
	clear(e.byEntity)

	for i := range sources {
		src := &sources[i]
		if !src.Visible {
			continue
		}
		inst := Instance{
			Entity: src.Entity,
			Handle: src.Handle,
			Caster: !src.NotShadowCaster,
		}
		inst.Uniform.Model = src.Transform
		if src.PreviousTransform != nil {
			inst.Uniform.PreviousModel = *src.PreviousTransform
		} else {
			inst.Uniform.PreviousModel = src.Transform
		}
		if !src.NotShadowReceiver {
			inst.Uniform.Flags = uint32(FlagShadowReceiver)
		}
		if inst.Caster {
			e.casters = append(e.casters, inst)
		} else {
			e.nonCasters = append(e.nonCasters, inst)
		}
	}

	// Slot math is independent per instance, so it can fan out across the
	// compute pool once routing has fixed the slot positions.
	if e.pool != nil && len(e.casters)+len(e.nonCasters) >= e.chunkSize*2 {
		e.finishParallel()
	} else {
		finishChunk(e.casters)
		finishChunk(e.nonCasters)
	}

	for i := range e.casters {
		e.byEntity[e.casters[i].Entity] = &e.casters[i]
	}
	for i := range e.nonCasters {
		e.byEntity[e.nonCasters[i].Entity] = &e.nonCasters[i]
	}

	e.out = Extracted{
		Casters:    e.casters,
		NonCasters: e.nonCasters,
		byEntity:   e.byEntity,
	}
	return &e.out
}

// finishParallel fans finishChunk out over the compute pool in fixed size
// chunks. A WaitGroup provides the frame barrier since pool.Wait() blocks
// until workers idle-exit, which is unsuitable for per-frame workloads.
func (e *extractor) finishParallel() {
	var wg sync.WaitGroup
	taskID := 0
	for _, group := range [][]Instance{e.casters, e.nonCasters} {
		for start := 0; start < len(group); start += e.chunkSize {
			end := min(start+e.chunkSize, len(group))
			chunk := group[start:end]
			wg.Add(1)
			id := taskID
			taskID++
			e.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					finishChunk(chunk)
					return nil, nil
				},
			})
		}
	}
	wg.Wait()
}

// finishChunk completes the expensive per-instance uniform math: the inverse
// transpose of the model's upper 3x3 and the determinant sign flag.
func finishChunk(instances []Instance) {
	for i := range instances {
		u := &instances[i].Uniform
		common.InverseTranspose3(u.InverseTransposeModel[:], u.Model[:])
		if common.Det3(u.Model[:]) >= 0 {
			u.Flags |= uint32(FlagSignDeterminantModel3x3)
		}
	}
}
