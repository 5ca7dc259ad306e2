package mesh

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// Handle identifies a mesh asset held by a Store. The zero value is never a
// valid handle.
type Handle uint64

// Entity identifies a renderable object on the render side. Identifiers are
// stable across frames so per-frame records can be correlated.
type Entity uint64

// Attribute is a bitset of canonical vertex attributes. Each attribute has a
// fixed shader location, format and ordering inside the interleaved vertex
// buffer, so the bitset alone identifies a layout.
type Attribute uint32

const (
	AttrPosition Attribute = 1 << iota
	AttrNormal
	AttrUV
	AttrTangent
	AttrColor
	AttrJointIndices
	AttrJointWeights
)

// Shader locations for the canonical attributes. Skinning data sits above the
// geometry attributes so unskinned and skinned layouts share locations 0-4.
const (
	LocationPosition     uint32 = 0
	LocationNormal       uint32 = 1
	LocationUV           uint32 = 2
	LocationTangent      uint32 = 3
	LocationColor        uint32 = 4
	LocationJointIndices uint32 = 5
	LocationJointWeights uint32 = 6
)

// canonicalOrder fixes the packing order of attributes inside the interleaved
// vertex buffer.
var canonicalOrder = []Attribute{
	AttrPosition,
	AttrNormal,
	AttrUV,
	AttrTangent,
	AttrColor,
	AttrJointIndices,
	AttrJointWeights,
}

// attributeFormat returns the wgpu vertex format used for a canonical
// attribute.
//
// Parameters:
//   - a: single attribute bit
//
// Returns:
//   - wgpu.VertexFormat: format of the attribute's data
func attributeFormat(a Attribute) wgpu.VertexFormat {
	switch a {
	case AttrPosition, AttrNormal:
		return wgpu.VertexFormatFloat32x3
	case AttrUV:
		return wgpu.VertexFormatFloat32x2
	case AttrTangent, AttrColor, AttrJointWeights:
		return wgpu.VertexFormatFloat32x4
	case AttrJointIndices:
		return wgpu.VertexFormatUint16x4
	default:
		return wgpu.VertexFormatFloat32x3
	}
}

// attributeSize returns the byte size of a canonical attribute.
//
// Parameters:
//   - a: single attribute bit
//
// Returns:
//   - uint64: byte size of one element
func attributeSize(a Attribute) uint64 {
	switch attributeFormat(a) {
	case wgpu.VertexFormatFloat32x2:
		return 8
	case wgpu.VertexFormatFloat32x3:
		return 12
	case wgpu.VertexFormatFloat32x4:
		return 16
	case wgpu.VertexFormatUint16x4:
		return 8
	default:
		return 12
	}
}

// attributeName returns a human readable name for error messages.
func attributeName(a Attribute) string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrUV:
		return "uv"
	case AttrTangent:
		return "tangent"
	case AttrColor:
		return "color"
	case AttrJointIndices:
		return "joint_indices"
	case AttrJointWeights:
		return "joint_weights"
	default:
		return fmt.Sprintf("attribute(%#x)", uint32(a))
	}
}

// MissingAttributeError reports a vertex layout that lacks an attribute the
// requested pipeline variant needs.
type MissingAttributeError struct {
	// Attribute is the attribute that was requested but absent.
	Attribute Attribute
	// Layout is the label of the offending layout.
	Layout string
}

// Error implements the error interface.
func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("vertex layout %q is missing attribute %s", e.Layout, attributeName(e.Attribute))
}

// VertexLayout describes the interleaved vertex buffer of a mesh: which
// canonical attributes are present, their byte offsets and the total stride.
// Layouts with the same attribute set are interchangeable, so Attributes also
// serves as the layout's identity for caching.
type VertexLayout struct {
	label      string
	attributes Attribute
	offsets    map[Attribute]uint64
	stride     uint64
}

// NewVertexLayout builds a layout from an attribute set, packing the present
// attributes in canonical order.
//
// Parameters:
//   - label: name used in error messages
//   - attrs: bitset of attributes present in the vertex buffer
//
// Returns:
//   - VertexLayout: the populated layout
func NewVertexLayout(label string, attrs Attribute) VertexLayout {
	l := VertexLayout{
		label:      label,
		attributes: attrs,
		offsets:    make(map[Attribute]uint64),
	}
	var offset uint64
	for _, a := range canonicalOrder {
		if attrs&a == 0 {
			continue
		}
		l.offsets[a] = offset
		offset += attributeSize(a)
	}
	l.stride = offset
	return l
}

// Label returns the layout's name.
func (l VertexLayout) Label() string {
	return l.label
}

// Attributes returns the attribute bitset, which doubles as the layout's
// cache identity.
func (l VertexLayout) Attributes() Attribute {
	return l.attributes
}

// Stride returns the byte stride of one interleaved vertex.
func (l VertexLayout) Stride() uint64 {
	return l.stride
}

// Has reports whether every attribute in the set is present.
//
// Parameters:
//   - attrs: bitset of attributes to test
//
// Returns:
//   - bool: true when all requested attributes are present
func (l VertexLayout) Has(attrs Attribute) bool {
	return l.attributes&attrs == attrs
}

// HasJoints reports whether the layout carries both skinning attributes.
func (l VertexLayout) HasJoints() bool {
	return l.Has(AttrJointIndices | AttrJointWeights)
}

// AttributeRequest names one attribute a pipeline variant reads and the
// shader location it must be bound to.
type AttributeRequest struct {
	Attribute Attribute
	Location  uint32
}

// BuildBufferLayout resolves a list of attribute requests against the layout,
// producing the vertex buffer layout a render pipeline consumes. The request
// order fixes the order of the resulting attribute descriptors.
//
// Parameters:
//   - requests: attributes the pipeline variant reads, with shader locations
//
// Returns:
//   - wgpu.VertexBufferLayout: buffer layout covering the requests
//   - error: *MissingAttributeError when a requested attribute is absent
func (l VertexLayout) BuildBufferLayout(requests []AttributeRequest) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(requests))
	for _, req := range requests {
		offset, ok := l.offsets[req.Attribute]
		if !ok {
			return wgpu.VertexBufferLayout{}, &MissingAttributeError{Attribute: req.Attribute, Layout: l.label}
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         attributeFormat(req.Attribute),
			Offset:         offset,
			ShaderLocation: req.Location,
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}

// Mesh is a GPU-resident mesh asset: vertex and index buffers plus the layout
// describing them. IndexBuffer is nil for non-indexed meshes.
type Mesh struct {
	Label        string
	Layout       VertexLayout
	Topology     wgpu.PrimitiveTopology
	VertexBuffer *wgpu.Buffer
	VertexCount  uint32
	IndexBuffer  *wgpu.Buffer
	IndexCount   uint32
	IndexFormat  wgpu.IndexFormat
	// MorphTargetCount is non-zero when the mesh carries morph target
	// displacement data.
	MorphTargetCount uint32
}

// Indexed reports whether the mesh draws through an index buffer.
func (m *Mesh) Indexed() bool {
	return m.IndexBuffer != nil && m.IndexCount > 0
}

// HasMorphTargets reports whether the mesh carries morph target data.
func (m *Mesh) HasMorphTargets() bool {
	return m.MorphTargetCount > 0
}

// Store holds uploaded mesh assets keyed by handle. It is safe for concurrent
// use; draw recording reads while asset uploads insert.
type Store struct {
	mu     *sync.RWMutex
	next   Handle
	meshes map[Handle]*Mesh
}

// NewStore creates an empty mesh store.
//
// Returns:
//   - *Store: the initialized store
func NewStore() *Store {
	return &Store{
		mu:     &sync.RWMutex{},
		meshes: make(map[Handle]*Mesh),
	}
}

// Insert registers a mesh asset and returns its handle.
//
// Parameters:
//   - m: the uploaded mesh
//
// Returns:
//   - Handle: stable identifier for later lookup
func (s *Store) Insert(m *Mesh) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.meshes[s.next] = m
	return s.next
}

// Get looks up a mesh by handle.
//
// Parameters:
//   - h: handle returned by Insert
//
// Returns:
//   - *Mesh: the mesh, or nil
//   - bool: false when the handle is unknown
func (s *Store) Get(h Handle) (*Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[h]
	return m, ok
}

// Remove drops a mesh from the store. The caller owns releasing the GPU
// buffers.
//
// Parameters:
//   - h: handle to remove
func (s *Store) Remove(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meshes, h)
}

// Len returns the number of stored meshes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}

// Meshes returns a snapshot of the stored meshes keyed by handle. The map is
// a copy, so callers may iterate it while uploads insert concurrently.
//
// Returns:
//   - map[Handle]*Mesh: handle to mesh snapshot
func (s *Store) Meshes() map[Handle]*Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Handle]*Mesh, len(s.meshes))
	for h, m := range s.meshes {
		out[h] = m
	}
	return out
}
