package mesh

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestVertexLayoutOffsets(t *testing.T) {
	l := NewVertexLayout("full", AttrPosition|AttrNormal|AttrUV|AttrTangent|AttrColor)

	if l.Stride() != 12+12+8+16+16 {
		t.Errorf("expected stride 64, got %d", l.Stride())
	}

	layout, err := l.BuildBufferLayout([]AttributeRequest{
		{AttrPosition, LocationPosition},
		{AttrNormal, LocationNormal},
		{AttrUV, LocationUV},
		{AttrTangent, LocationTangent},
		{AttrColor, LocationColor},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantOffsets := []uint64{0, 12, 24, 32, 48}
	for i, attr := range layout.Attributes {
		if attr.Offset != wantOffsets[i] {
			t.Errorf("attribute %d: expected offset %d, got %d", i, wantOffsets[i], attr.Offset)
		}
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d: expected location %d, got %d", i, i, attr.ShaderLocation)
		}
	}
	if layout.ArrayStride != l.Stride() {
		t.Errorf("expected array stride %d, got %d", l.Stride(), layout.ArrayStride)
	}
}

func TestVertexLayoutPackingSkipsAbsent(t *testing.T) {
	l := NewVertexLayout("pos_uv", AttrPosition|AttrUV)

	layout, err := l.BuildBufferLayout([]AttributeRequest{
		{AttrPosition, LocationPosition},
		{AttrUV, LocationUV},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if layout.Attributes[1].Offset != 12 {
		t.Errorf("expected uv offset 12 when normal is absent, got %d", layout.Attributes[1].Offset)
	}
	if l.Stride() != 20 {
		t.Errorf("expected stride 20, got %d", l.Stride())
	}
}

func TestVertexLayoutMissingAttribute(t *testing.T) {
	l := NewVertexLayout("bare", AttrPosition)

	_, err := l.BuildBufferLayout([]AttributeRequest{
		{AttrPosition, LocationPosition},
		{AttrNormal, LocationNormal},
	})
	if err == nil {
		t.Fatal("expected an error for a missing attribute")
	}
	var missing *MissingAttributeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *MissingAttributeError, got %T", err)
	}
	if missing.Attribute != AttrNormal {
		t.Errorf("expected missing attribute normal, got %s", attributeName(missing.Attribute))
	}
	if missing.Layout != "bare" {
		t.Errorf("expected layout label bare, got %q", missing.Layout)
	}
}

func TestVertexLayoutJoints(t *testing.T) {
	skinned := NewVertexLayout("skinned", AttrPosition|AttrNormal|AttrUV|AttrJointIndices|AttrJointWeights)
	if !skinned.HasJoints() {
		t.Error("expected skinned layout to report joints")
	}

	half := NewVertexLayout("half", AttrPosition|AttrJointIndices)
	if half.HasJoints() {
		t.Error("expected layout with only joint indices to not report joints")
	}

	layout, err := skinned.BuildBufferLayout([]AttributeRequest{
		{AttrJointIndices, LocationJointIndices},
		{AttrJointWeights, LocationJointWeights},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if layout.Attributes[0].Format != wgpu.VertexFormatUint16x4 {
		t.Errorf("expected joint indices format Uint16x4, got %v", layout.Attributes[0].Format)
	}
	if layout.Attributes[1].Format != wgpu.VertexFormatFloat32x4 {
		t.Errorf("expected joint weights format Float32x4, got %v", layout.Attributes[1].Format)
	}
}

func TestVertexLayoutIdentity(t *testing.T) {
	a := NewVertexLayout("a", AttrPosition|AttrNormal|AttrUV)
	b := NewVertexLayout("b", AttrPosition|AttrNormal|AttrUV)
	if a.Attributes() != b.Attributes() {
		t.Error("expected layouts with the same attribute set to share an identity")
	}
}

func TestGPUMeshUniformMarshal(t *testing.T) {
	u := GPUMeshUniform{Flags: uint32(FlagShadowReceiver)}
	for i := range u.Model {
		u.Model[i] = float32(i)
	}

	if u.Size() != 192 {
		t.Errorf("expected size 192, got %d", u.Size())
	}
	buf := u.Marshal()
	if len(buf) != 192 {
		t.Fatalf("expected 192 bytes, got %d", len(buf))
	}
	// Flags land after both mat4x4 transforms and the padded mat3x3.
	if buf[176] != 1 {
		t.Errorf("expected flags byte at offset 176 to be 1, got %d", buf[176])
	}
}

func TestStoreInsertGet(t *testing.T) {
	s := NewStore()

	h := s.Insert(&Mesh{Label: "tri", VertexCount: 3})
	if h == 0 {
		t.Fatal("expected a non-zero handle")
	}

	m, ok := s.Get(h)
	if !ok {
		t.Fatal("expected to find inserted mesh")
	}
	if m.Label != "tri" {
		t.Errorf("expected label tri, got %q", m.Label)
	}

	if _, ok := s.Get(h + 1); ok {
		t.Error("expected unknown handle to miss")
	}

	s.Remove(h)
	if _, ok := s.Get(h); ok {
		t.Error("expected removed handle to miss")
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}
