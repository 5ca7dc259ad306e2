package skin

import (
	"testing"

	"github.com/Carmen-Shannon/prism-go/common"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
)

// testSkeleton builds a skin over joint entities [base, base+count) with
// identity bindposes, plus a transform resolver that translates each joint by
// its entity id on x.
func testSkeleton(base mesh.Entity, count int) (*Skin, TransformFn) {
	s := &Skin{}
	for i := 0; i < count; i++ {
		s.Joints = append(s.Joints, base+mesh.Entity(i))
		var bind [16]float32
		common.Identity(bind[:])
		s.InverseBindposes = append(s.InverseBindposes, bind)
	}
	transform := func(e mesh.Entity) ([16]float32, bool) {
		var m [16]float32
		common.Identity(m[:])
		m[12] = float32(e)
		return m, true
	}
	return s, transform
}

func TestAllocateStagesJointMatrices(t *testing.T) {
	al := NewAllocator()
	s, transform := testSkeleton(10, 4)

	out := al.Allocate([]Source{{Entity: 1, Visible: true, Skin: s}}, transform)

	j, ok := out.Lookup(1)
	if !ok {
		t.Fatal("expected a joint record for entity 1")
	}
	if j.Index != 0 {
		t.Errorf("expected first skin at index 0, got %d", j.Index)
	}
	if j.ByteOffset() != 0 {
		t.Errorf("expected byte offset 0, got %d", j.ByteOffset())
	}
	// world * identity bindpose keeps the joint translation.
	bytes := out.Bytes()
	if len(bytes) < 4*JointByteSize {
		t.Fatalf("expected at least 4 staged matrices, got %d bytes", len(bytes))
	}
}

func TestAllocatePadsToFourMatrixBoundary(t *testing.T) {
	al := NewAllocator()
	first, transform := testSkeleton(10, 5)
	second, _ := testSkeleton(20, 4)

	out := al.Allocate([]Source{
		{Entity: 1, Visible: true, Skin: first},
		{Entity: 2, Visible: true, Skin: second},
	}, transform)

	j1, _ := out.Lookup(1)
	j2, ok := out.Lookup(2)
	if !ok {
		t.Fatal("expected a joint record for entity 2")
	}
	// 5 joints pad up to 8, so the second skin starts at matrix 8.
	if j2.Index != 8 {
		t.Errorf("expected second skin at index 8, got %d", j2.Index)
	}
	if j1.ByteOffset()%256 != 0 || j2.ByteOffset()%256 != 0 {
		t.Errorf("expected 256 byte aligned offsets, got %d and %d", j1.ByteOffset(), j2.ByteOffset())
	}
}

func TestAllocateExactGrowthBetweenAlignedSkins(t *testing.T) {
	al := NewAllocator()
	first, transform := testSkeleton(10, 4)
	second, _ := testSkeleton(20, 4)

	out := al.Allocate([]Source{
		{Entity: 1, Visible: true, Skin: first},
		{Entity: 2, Visible: true, Skin: second},
	}, transform)

	j1, _ := out.Lookup(1)
	j2, _ := out.Lookup(2)
	if j2.Index-j1.Index != 4 {
		t.Errorf("expected a 4 joint skin to advance the arena by exactly 4 matrices, got %d", j2.Index-j1.Index)
	}
}

func TestAllocateRollsBackOnMissingJoint(t *testing.T) {
	al := NewAllocator()
	intact, _ := testSkeleton(10, 4)
	broken, _ := testSkeleton(20, 4)

	// Joint 22 resolves no transform, so entity 2's skin must roll back.
	transform := func(e mesh.Entity) ([16]float32, bool) {
		if e == 22 {
			return [16]float32{}, false
		}
		var m [16]float32
		common.Identity(m[:])
		return m, true
	}

	out := al.Allocate([]Source{
		{Entity: 2, Visible: true, Skin: broken},
		{Entity: 1, Visible: true, Skin: intact},
	}, transform)

	if _, ok := out.Lookup(2); ok {
		t.Error("expected no joint record for the rolled back entity")
	}
	j, ok := out.Lookup(1)
	if !ok {
		t.Fatal("expected a joint record for the intact entity")
	}
	// The rollback left no partial matrices behind.
	if j.Index != 0 {
		t.Errorf("expected intact skin at index 0 after rollback, got %d", j.Index)
	}
}

func TestAllocateHeadroomPastLastSkin(t *testing.T) {
	al := NewAllocator()
	first, transform := testSkeleton(10, 4)
	second, _ := testSkeleton(20, 4)

	out := al.Allocate([]Source{
		{Entity: 1, Visible: true, Skin: first},
		{Entity: 2, Visible: true, Skin: second},
	}, transform)

	j2, _ := out.Lookup(2)
	remaining := len(out.Bytes()) - int(j2.ByteOffset())
	if remaining < BindingByteSize {
		t.Errorf("expected at least %d bytes past the last skin offset, got %d", BindingByteSize, remaining)
	}
}

func TestAllocateSkipsInvisibleAndMalformed(t *testing.T) {
	al := NewAllocator()
	s, transform := testSkeleton(10, 4)

	hidden := Source{Entity: 1, Visible: false, Skin: s}
	unskinned := Source{Entity: 2, Visible: true}
	mismatched := Source{Entity: 3, Visible: true, Skin: &Skin{Joints: s.Joints}}
	oversized := Source{Entity: 4, Visible: true, Skin: func() *Skin {
		big, _ := testSkeleton(100, MaxJoints+1)
		return big
	}()}

	out := al.Allocate([]Source{hidden, unskinned, mismatched, oversized}, transform)

	if out.Len() != 0 {
		t.Errorf("expected no allocations, got %d", out.Len())
	}
	if len(out.Bytes()) != 0 {
		t.Errorf("expected an empty arena, got %d bytes", len(out.Bytes()))
	}
}

func TestAllocateReusesArenaAcrossFrames(t *testing.T) {
	al := NewAllocator()
	s, transform := testSkeleton(10, 4)

	first := al.Allocate([]Source{{Entity: 1, Visible: true, Skin: s}}, transform)
	firstLen := first.JointCount()

	second := al.Allocate([]Source{{Entity: 1, Visible: true, Skin: s}}, transform)
	if second.JointCount() != firstLen {
		t.Errorf("expected identical arena growth across frames, got %d then %d", firstLen, second.JointCount())
	}
	if _, ok := second.Lookup(1); !ok {
		t.Error("expected entity 1 allocated in the second frame")
	}
}

func TestJointArenaTruncate(t *testing.T) {
	a := NewJointArena()
	var m [16]float32
	a.Push(m)
	a.Push(m)
	a.Push(m)

	a.TruncateTo(1)
	if a.Len() != 1 {
		t.Errorf("expected length 1 after truncate, got %d", a.Len())
	}

	a.TruncateTo(5)
	if a.Len() != 1 {
		t.Errorf("expected out of range truncate to be ignored, got %d", a.Len())
	}

	a.Clear()
	if a.Len() != 0 {
		t.Errorf("expected empty arena after clear, got %d", a.Len())
	}
}
