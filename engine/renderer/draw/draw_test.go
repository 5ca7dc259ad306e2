package draw

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/prism-go/common"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/array_buffer"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/bind_group_cache"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
	"github.com/cogentcore/webgpu/wgpu"
)

type passCall struct {
	op            string
	slot          uint32
	group         *wgpu.BindGroup
	offsets       []uint32
	buffer        *wgpu.Buffer
	format        wgpu.IndexFormat
	indexCount    uint32
	vertexCount   uint32
	instanceCount uint32
	firstInstance uint32
	baseVertex    int32
}

type fakePass struct {
	calls []passCall
}

func (p *fakePass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.calls = append(p.calls, passCall{op: "pipeline"})
}

func (p *fakePass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32) {
	offsets := append([]uint32(nil), dynamicOffsets...)
	p.calls = append(p.calls, passCall{op: "bind_group", slot: groupIndex, group: group, offsets: offsets})
}

func (p *fakePass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64) {
	p.calls = append(p.calls, passCall{op: "vertex_buffer", slot: slot, buffer: buffer})
}

func (p *fakePass) SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	p.calls = append(p.calls, passCall{op: "index_buffer", buffer: buffer, format: format})
}

func (p *fakePass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.calls = append(p.calls, passCall{
		op:            "draw_indexed",
		indexCount:    indexCount,
		instanceCount: instanceCount,
		baseVertex:    baseVertex,
		firstInstance: firstInstance,
	})
}

func (p *fakePass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.calls = append(p.calls, passCall{
		op:            "draw",
		vertexCount:   vertexCount,
		instanceCount: instanceCount,
		firstInstance: firstInstance,
	})
}

func (p *fakePass) last(t *testing.T, op string) passCall {
	t.Helper()
	for i := len(p.calls) - 1; i >= 0; i-- {
		if p.calls[i].op == op {
			return p.calls[i]
		}
	}
	t.Fatalf("expected a %s call", op)
	return passCall{}
}

type fakeDevice struct{}

func (fakeDevice) CreateBindGroup(*wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return &wgpu.BindGroup{}, nil
}

func identityTransform(mesh.Entity) ([16]float32, bool) {
	var m [16]float32
	common.Identity(m[:])
	return m, true
}

func fourJointSkin() *skin.Skin {
	s := &skin.Skin{}
	var bindpose [16]float32
	common.Identity(bindpose[:])
	for i := range 4 {
		s.Joints = append(s.Joints, mesh.Entity(100+i))
		s.InverseBindposes = append(s.InverseBindposes, bindpose)
	}
	return s
}

func cacheLayouts() bind_group_cache.Layouts {
	return bind_group_cache.Layouts{
		Model:          &wgpu.BindGroupLayout{},
		Skinned:        &wgpu.BindGroupLayout{},
		Morphed:        &wgpu.BindGroupLayout{},
		SkinnedMorphed: &wgpu.BindGroupLayout{},
	}
}

func TestSetViewBindGroup(t *testing.T) {
	frame := &Frame{ViewGroup: &wgpu.BindGroup{}, ViewOffset: 144}
	pass := &fakePass{}

	if err := (SetViewBindGroup{Slot: 0}).Render(&Item{}, frame, pass); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := pass.last(t, "bind_group")
	if call.slot != 0 || call.group != frame.ViewGroup {
		t.Error("expected the view group at slot 0")
	}
	if len(call.offsets) != 1 || call.offsets[0] != 144 {
		t.Errorf("expected the view dynamic offset, got %v", call.offsets)
	}
}

func TestSetMeshBindGroupOffsetOrder(t *testing.T) {
	store := mesh.NewStore()
	handle := store.Insert(&mesh.Mesh{
		Label: "body",
		Layout: mesh.NewVertexLayout("body",
			mesh.AttrPosition|mesh.AttrJointIndices|mesh.AttrJointWeights),
		MorphTargetCount: 2,
	})

	// Entity 2's skin starts at matrix 4, its weights at float 64.
	skins := skin.NewAllocator().Allocate([]skin.Source{
		{Entity: 1, Visible: true, Skin: fourJointSkin()},
		{Entity: 2, Visible: true, Skin: fourJointSkin()},
	}, identityTransform)
	morphs := morph.NewAllocator().Allocate([]morph.Source{
		{Entity: 1, Visible: true, Weights: []float32{1}},
		{Entity: 2, Visible: true, Weights: []float32{0.25, 0.75}},
	})

	cache := bind_group_cache.NewCache()
	err := cache.Rebuild(fakeDevice{}, cacheLayouts(),
		&bind_group_cache.BufferBinding{Buffer: &wgpu.Buffer{}, Size: wgpu.WholeSize},
		&bind_group_cache.BufferBinding{Buffer: &wgpu.Buffer{}, Size: skin.BindingByteSize},
		&bind_group_cache.BufferBinding{Buffer: &wgpu.Buffer{}, Size: morph.BindingByteSize},
		store)
	if err != nil {
		t.Fatalf("expected no rebuild error, got %v", err)
	}

	// Batched-uniform mode, 2 records per batch: record 2 opens batch 1.
	batched := array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](
		mesh.UniformByteSize, array_buffer.WithUniformBatching(2))
	for range 3 {
		batched.Push(&mesh.GPUMeshUniform{})
	}

	frame := &Frame{
		Store:     store,
		Cache:     cache,
		PerObject: batched,
		Skins:     skins,
		Morphs:    morphs,
	}
	pass := &fakePass{}
	item := &Item{Entity: 2, Handle: handle, BufferIndex: 2}

	if err := (SetMeshBindGroup{Slot: 1}).Render(item, frame, pass); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := pass.last(t, "bind_group")
	if call.slot != 1 {
		t.Errorf("expected slot 1, got %d", call.slot)
	}
	want := []uint32{512, 256, 256}
	if len(call.offsets) != len(want) {
		t.Fatalf("expected %d offsets, got %v", len(want), call.offsets)
	}
	for i := range want {
		if call.offsets[i] != want[i] {
			t.Errorf("offset %d: expected %d, got %d", i, want[i], call.offsets[i])
		}
	}

	// Storage mode drops the per-object offset but keeps skin and morph.
	frame.PerObject = array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](mesh.UniformByteSize)
	pass = &fakePass{}
	if err := (SetMeshBindGroup{Slot: 1}).Render(item, frame, pass); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	call = pass.last(t, "bind_group")
	if len(call.offsets) != 2 || call.offsets[0] != 256 || call.offsets[1] != 256 {
		t.Errorf("expected skin and morph offsets only, got %v", call.offsets)
	}
}

func TestSetMeshBindGroupMissFailsItem(t *testing.T) {
	frame := &Frame{
		Store: mesh.NewStore(),
		Cache: bind_group_cache.NewCache(),
	}
	pass := &fakePass{}

	err := (SetMeshBindGroup{Slot: 1}).Render(&Item{Entity: 1, Handle: 1}, frame, pass)
	if !errors.Is(err, ErrMissingBindGroup) {
		t.Fatalf("expected ErrMissingBindGroup, got %v", err)
	}
	if len(pass.calls) != 0 {
		t.Error("expected no pass calls for a failed bind")
	}
}

func TestDrawMeshIndexed(t *testing.T) {
	store := mesh.NewStore()
	vertexBuffer := &wgpu.Buffer{}
	indexBuffer := &wgpu.Buffer{}
	handle := store.Insert(&mesh.Mesh{
		Label:        "cube",
		Layout:       mesh.NewVertexLayout("cube", mesh.AttrPosition),
		VertexBuffer: vertexBuffer,
		VertexCount:  24,
		IndexBuffer:  indexBuffer,
		IndexCount:   36,
		IndexFormat:  wgpu.IndexFormatUint16,
	})

	perObject := array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](mesh.UniformByteSize)
	for range 5 {
		perObject.Push(&mesh.GPUMeshUniform{})
	}
	frame := &Frame{Store: store, PerObject: perObject}
	pass := &fakePass{}

	if err := (DrawMesh{}).Render(&Item{Handle: handle, BufferIndex: 3}, frame, pass); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if call := pass.last(t, "vertex_buffer"); call.buffer != vertexBuffer || call.slot != 0 {
		t.Error("expected the vertex buffer at slot 0")
	}
	if call := pass.last(t, "index_buffer"); call.buffer != indexBuffer || call.format != wgpu.IndexFormatUint16 {
		t.Error("expected the index buffer with its format")
	}
	call := pass.last(t, "draw_indexed")
	if call.indexCount != 36 || call.instanceCount != 1 || call.baseVertex != 0 {
		t.Errorf("unexpected draw args: %+v", call)
	}
	if call.firstInstance != 3 {
		t.Errorf("expected first instance 3, got %d", call.firstInstance)
	}
}

func TestDrawMeshNonIndexedUsesBatchInstance(t *testing.T) {
	store := mesh.NewStore()
	handle := store.Insert(&mesh.Mesh{
		Label:        "tri",
		Layout:       mesh.NewVertexLayout("tri", mesh.AttrPosition),
		VertexBuffer: &wgpu.Buffer{},
		VertexCount:  3,
	})

	batched := array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](
		mesh.UniformByteSize, array_buffer.WithUniformBatching(2))
	for range 4 {
		batched.Push(&mesh.GPUMeshUniform{})
	}
	frame := &Frame{Store: store, PerObject: batched}
	pass := &fakePass{}

	if err := (DrawMesh{}).Render(&Item{Handle: handle, BufferIndex: 3}, frame, pass); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	call := pass.last(t, "draw")
	if call.vertexCount != 3 || call.instanceCount != 1 {
		t.Errorf("unexpected draw args: %+v", call)
	}
	if call.firstInstance != 1 {
		t.Errorf("expected instance 1 within batch, got %d", call.firstInstance)
	}
}

func TestDrawMeshNotReady(t *testing.T) {
	frame := &Frame{Store: mesh.NewStore()}
	pass := &fakePass{}

	err := (DrawMesh{}).Render(&Item{Handle: 42}, frame, pass)
	if !errors.Is(err, ErrMeshNotReady) {
		t.Fatalf("expected ErrMeshNotReady, got %v", err)
	}
	if len(pass.calls) != 0 {
		t.Error("expected no pass calls for a missing mesh")
	}
}

func TestDispatcherAccounting(t *testing.T) {
	store := mesh.NewStore()
	readyHandle := store.Insert(&mesh.Mesh{
		Label:        "ready",
		Layout:       mesh.NewVertexLayout("ready", mesh.AttrPosition),
		VertexBuffer: &wgpu.Buffer{},
		VertexCount:  3,
	})
	goneHandle := store.Insert(&mesh.Mesh{
		Label:        "gone",
		Layout:       mesh.NewVertexLayout("gone", mesh.AttrPosition),
		VertexBuffer: &wgpu.Buffer{},
		VertexCount:  3,
	})

	cache := bind_group_cache.NewCache()
	err := cache.Rebuild(fakeDevice{}, cacheLayouts(),
		&bind_group_cache.BufferBinding{Buffer: &wgpu.Buffer{}, Size: wgpu.WholeSize},
		nil, nil, store)
	if err != nil {
		t.Fatalf("expected no rebuild error, got %v", err)
	}

	// Item 2's mesh vanishes between prepare and dispatch: the shared model
	// group still resolves but the store lookup misses.
	store.Remove(goneHandle)

	// Entity 3 carries a morph record the cache has no group for.
	morphs := morph.NewAllocator().Allocate([]morph.Source{
		{Entity: 3, Visible: true, Weights: []float32{1}},
	})

	perObject := array_buffer.NewArrayBuffer[*mesh.GPUMeshUniform](mesh.UniformByteSize)
	for range 3 {
		perObject.Push(&mesh.GPUMeshUniform{})
	}
	frame := &Frame{
		Store:     store,
		Cache:     cache,
		ViewGroup: &wgpu.BindGroup{},
		PerObject: perObject,
		Morphs:    morphs,
	}

	items := []Item{
		{Entity: 1, Handle: readyHandle, BufferIndex: 0},
		{Entity: 2, Handle: goneHandle, BufferIndex: 1},
		{Entity: 3, Handle: readyHandle, BufferIndex: 2},
	}
	pass := &fakePass{}
	stats := NewDispatcher().Draw(items, frame, pass)

	if stats.Drawn != 1 || stats.Skipped != 1 || stats.Failed != 1 {
		t.Errorf("expected 1 drawn, 1 skipped, 1 failed, got %+v", stats)
	}
	if call := pass.last(t, "draw"); call.firstInstance != 0 {
		t.Errorf("expected the surviving draw at instance 0, got %d", call.firstInstance)
	}
}
