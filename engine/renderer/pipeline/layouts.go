package pipeline

import (
	"github.com/Carmen-Shannon/prism-go/engine/camera"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group indices for the forward pass. The view group binds once per
// pass; the mesh group rebinds per draw with dynamic offsets.
const (
	GroupView = 0
	GroupMesh = 1
)

// Binding indices inside the mesh bind group.
const (
	BindingMeshUniform   = 0
	BindingJointMatrices = 1
	BindingMorphWeights  = 2
)

// Binding indices inside the view bind group.
const (
	BindingViewUniform = 0
)

// PerObjectBinding describes how the per-object uniform array reaches the
// shader: as a read-only storage buffer indexed by instance, or as a uniform
// binding of BatchSize records rebound per batch through a dynamic offset on
// hardware without vertex-stage storage buffers.
type PerObjectBinding struct {
	// Storage selects the storage buffer path.
	Storage bool
	// BatchSize is the number of per-object records per uniform binding.
	// Ignored on the storage path.
	BatchSize uint32
}

// BindingByteSize returns the size of one mesh uniform binding under this
// mode.
//
// Returns:
//   - uint64: byte size of the binding
func (p PerObjectBinding) BindingByteSize() uint64 {
	if p.Storage {
		return mesh.UniformByteSize
	}
	return uint64(p.BatchSize) * mesh.UniformByteSize
}

// ViewBindGroupLayout returns the descriptor for the view group: the per-view
// uniform bound with a dynamic offset so several views can share one buffer.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the view group layout
func ViewBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "view_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    BindingViewUniform,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   camera.ViewUniformByteSize,
				},
			},
		},
	}
}

// MeshBindGroupLayout returns the descriptor for the mesh group of one
// pipeline variant. The mesh uniform entry follows the per-object binding
// mode; skinned variants add the joint matrix binding and morphed variants
// add the weight binding, both uniform buffers with dynamic offsets.
//
// Parameters:
//   - perObject: how the per-object uniform array is bound
//   - skinned: include the joint matrix binding
//   - morphed: include the morph weight binding
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the mesh group layout
func MeshBindGroupLayout(perObject PerObjectBinding, skinned, morphed bool) wgpu.BindGroupLayoutDescriptor {
	label := "mesh_layout"
	switch {
	case skinned && morphed:
		label = "morphed_skinned_mesh_layout"
	case skinned:
		label = "skinned_mesh_layout"
	case morphed:
		label = "morphed_mesh_layout"
	}

	meshEntry := wgpu.BindGroupLayoutEntry{
		Binding:    BindingMeshUniform,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: mesh.UniformByteSize,
		},
	}
	if !perObject.Storage {
		meshEntry.Buffer = wgpu.BufferBindingLayout{
			Type:             wgpu.BufferBindingTypeUniform,
			HasDynamicOffset: true,
			MinBindingSize:   perObject.BindingByteSize(),
		}
	}

	entries := []wgpu.BindGroupLayoutEntry{meshEntry}
	if skinned {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    BindingJointMatrices,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   skin.BindingByteSize,
			},
		})
	}
	if morphed {
		entries = append(entries, wgpu.BindGroupLayoutEntry{
			Binding:    BindingMorphWeights,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   morph.BindingByteSize,
			},
		})
	}

	return wgpu.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: entries,
	}
}
