package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/cogentcore/webgpu/wgpu"
)

func fullLayout() mesh.VertexLayout {
	return mesh.NewVertexLayout("full", mesh.AttrPosition|mesh.AttrNormal|mesh.AttrUV)
}

func skinnedLayout() mesh.VertexLayout {
	return mesh.NewVertexLayout("skinned",
		mesh.AttrPosition|mesh.AttrNormal|mesh.AttrUV|mesh.AttrJointIndices|mesh.AttrJointWeights)
}

func hasDef(cfg Config, name string) bool {
	for _, d := range cfg.Defs {
		if d.Name == name {
			return true
		}
	}
	return false
}

func defValue(cfg Config, name string) string {
	for _, d := range cfg.Defs {
		if d.Name == name {
			return d.Value
		}
	}
	return ""
}

func TestSpecializeDeterministic(t *testing.T) {
	s := NewSpecializer()
	key := MSAAKey(4) | BlendKey(BlendAlpha) | FeatureTonemapInShader | TonemapKey(TonemapReinhardLuminance) | FeatureMorphTargets

	a, err := s.Specialize(key, skinnedLayout())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b, err := s.Specialize(key, skinnedLayout())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical configs for identical inputs")
	}
	if a.ID != b.ID {
		t.Error("expected identical variant identities")
	}
}

func TestSpecializeDepthWriteOnlyOpaque(t *testing.T) {
	s := NewSpecializer()

	for _, mode := range []BlendMode{BlendOpaque, BlendPremultiplied, BlendMultiply, BlendAlpha} {
		cfg, err := s.Specialize(BlendKey(mode)|MSAAKey(1), fullLayout())
		if err != nil {
			t.Fatalf("mode %d: expected no error, got %v", mode, err)
		}
		want := mode == BlendOpaque
		if cfg.DepthStencil.DepthWriteEnabled != want {
			t.Errorf("mode %d: expected depth write %v, got %v", mode, want, cfg.DepthStencil.DepthWriteEnabled)
		}
		if cfg.DepthStencil.DepthCompare != wgpu.CompareFunctionGreaterEqual {
			t.Errorf("mode %d: expected greater-equal depth compare", mode)
		}
		if cfg.DepthStencil.Format != DepthFormat {
			t.Errorf("mode %d: expected depth format %v, got %v", mode, DepthFormat, cfg.DepthStencil.Format)
		}
	}
}

func TestSpecializeBlendStates(t *testing.T) {
	s := NewSpecializer()

	opaque, _ := s.Specialize(BlendKey(BlendOpaque)|MSAAKey(1), fullLayout())
	if opaque.ColorTarget.Blend != nil {
		t.Error("expected nil blend state for opaque")
	}

	multiply, _ := s.Specialize(BlendKey(BlendMultiply)|MSAAKey(1), fullLayout())
	blend := multiply.ColorTarget.Blend
	if blend == nil {
		t.Fatal("expected a blend state for multiply")
	}
	if blend.Color.SrcFactor != wgpu.BlendFactorDst || blend.Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("unexpected multiply color factors: %v/%v", blend.Color.SrcFactor, blend.Color.DstFactor)
	}
	if blend.Alpha.SrcFactor != wgpu.BlendFactorOne || blend.Alpha.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Errorf("unexpected multiply alpha factors: %v/%v", blend.Alpha.SrcFactor, blend.Alpha.DstFactor)
	}

	alpha, _ := s.Specialize(BlendKey(BlendAlpha)|MSAAKey(1), fullLayout())
	if alpha.ColorTarget.Blend.Color.SrcFactor != wgpu.BlendFactorSrcAlpha {
		t.Error("expected source-alpha factor for alpha blending")
	}
}

func TestSpecializeHDRTargetFormat(t *testing.T) {
	s := NewSpecializer(WithSurfaceFormat(wgpu.TextureFormatBGRA8Unorm))

	ldr, _ := s.Specialize(MSAAKey(1), fullLayout())
	if ldr.ColorTarget.Format != wgpu.TextureFormatBGRA8Unorm {
		t.Errorf("expected surface format, got %v", ldr.ColorTarget.Format)
	}

	hdr, _ := s.Specialize(MSAAKey(1)|FeatureHDR, fullLayout())
	if hdr.ColorTarget.Format != HDRFormat {
		t.Errorf("expected HDR format, got %v", hdr.ColorTarget.Format)
	}
	if !hasDef(hdr, "HDR") {
		t.Error("expected HDR def")
	}
}

func TestSpecializeMultisampleAndTopology(t *testing.T) {
	s := NewSpecializer()

	cfg, _ := s.Specialize(MSAAKey(4)|TopologyKey(wgpu.PrimitiveTopologyLineStrip), fullLayout())
	if cfg.Multisample.Count != 4 {
		t.Errorf("expected sample count 4, got %d", cfg.Multisample.Count)
	}
	if cfg.Primitive.Topology != wgpu.PrimitiveTopologyLineStrip {
		t.Errorf("expected line strip topology, got %v", cfg.Primitive.Topology)
	}
	if !hasDef(cfg, "MULTISAMPLED") {
		t.Error("expected MULTISAMPLED def for msaa > 1")
	}

	single, _ := s.Specialize(MSAAKey(1), fullLayout())
	if hasDef(single, "MULTISAMPLED") {
		t.Error("expected no MULTISAMPLED def for msaa 1")
	}
}

func TestSpecializeTonemapDefs(t *testing.T) {
	s := NewSpecializer()

	plain, _ := s.Specialize(MSAAKey(1)|TonemapKey(TonemapAgX), fullLayout())
	if hasDef(plain, "TONEMAP_METHOD_AGX") {
		t.Error("expected no method def without the tonemap toggle")
	}

	toneMapped, _ := s.Specialize(MSAAKey(1)|FeatureTonemapInShader|TonemapKey(TonemapAgX), fullLayout())
	if !hasDef(toneMapped, "TONEMAP_IN_SHADER") || !hasDef(toneMapped, "TONEMAP_METHOD_AGX") {
		t.Errorf("expected tonemap defs, got %v", toneMapped.Defs)
	}
}

func TestSpecializeSkinnedVariant(t *testing.T) {
	s := NewSpecializer()

	cfg, err := s.Specialize(MSAAKey(1), skinnedLayout())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Skinned {
		t.Error("expected a skinned variant for a layout with joints")
	}
	if !hasDef(cfg, "SKINNED") {
		t.Error("expected SKINNED def")
	}
	if defValue(cfg, "MAX_JOINTS") != "256" {
		t.Errorf("expected MAX_JOINTS 256, got %q", defValue(cfg, "MAX_JOINTS"))
	}

	meshGroup := cfg.BindGroupLayouts[GroupMesh]
	foundJoints := false
	for _, e := range meshGroup.Entries {
		if e.Binding == BindingJointMatrices {
			foundJoints = true
			if !e.Buffer.HasDynamicOffset {
				t.Error("expected dynamic offset on the joint binding")
			}
			if e.Buffer.MinBindingSize != 256*64 {
				t.Errorf("expected joint binding size 16384, got %d", e.Buffer.MinBindingSize)
			}
		}
	}
	if !foundJoints {
		t.Error("expected a joint matrix binding in the mesh group")
	}

	// Skinning attributes ride at fixed locations above the geometry.
	attrs := cfg.VertexBuffers[0].Attributes
	last := attrs[len(attrs)-1]
	if last.ShaderLocation != mesh.LocationJointWeights {
		t.Errorf("expected joint weights at location %d, got %d", mesh.LocationJointWeights, last.ShaderLocation)
	}
}

func TestSpecializeMorphedVariant(t *testing.T) {
	s := NewSpecializer()

	cfg, err := s.Specialize(MSAAKey(1)|FeatureMorphTargets, fullLayout())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cfg.Morphed {
		t.Error("expected a morphed variant")
	}
	if !hasDef(cfg, "MORPH_TARGETS") {
		t.Error("expected MORPH_TARGETS def")
	}
	if defValue(cfg, "MAX_MORPH_WEIGHTS") != "64" {
		t.Errorf("expected MAX_MORPH_WEIGHTS 64, got %q", defValue(cfg, "MAX_MORPH_WEIGHTS"))
	}

	meshGroup := cfg.BindGroupLayouts[GroupMesh]
	found := false
	for _, e := range meshGroup.Entries {
		if e.Binding == BindingMorphWeights {
			found = true
			if e.Buffer.MinBindingSize != 256 {
				t.Errorf("expected weight binding size 256, got %d", e.Buffer.MinBindingSize)
			}
		}
	}
	if !found {
		t.Error("expected a morph weight binding in the mesh group")
	}
}

func TestSpecializePerObjectBindingModes(t *testing.T) {
	storage := NewSpecializer(WithPerObjectBinding(PerObjectBinding{Storage: true}))
	cfg, _ := storage.Specialize(MSAAKey(1), fullLayout())
	meshEntry := cfg.BindGroupLayouts[GroupMesh].Entries[0]
	if meshEntry.Buffer.Type != wgpu.BufferBindingTypeReadOnlyStorage {
		t.Errorf("expected read-only storage binding, got %v", meshEntry.Buffer.Type)
	}
	if meshEntry.Buffer.HasDynamicOffset {
		t.Error("expected no dynamic offset on the storage path")
	}
	if !hasDef(cfg, "PER_OBJECT_STORAGE") {
		t.Error("expected PER_OBJECT_STORAGE def")
	}

	batched := NewSpecializer(WithPerObjectBinding(PerObjectBinding{BatchSize: 85}))
	cfg, _ = batched.Specialize(MSAAKey(1), fullLayout())
	meshEntry = cfg.BindGroupLayouts[GroupMesh].Entries[0]
	if meshEntry.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("expected uniform binding, got %v", meshEntry.Buffer.Type)
	}
	if !meshEntry.Buffer.HasDynamicOffset {
		t.Error("expected dynamic offset on the batched path")
	}
	if meshEntry.Buffer.MinBindingSize != 85*192 {
		t.Errorf("expected binding size %d, got %d", 85*192, meshEntry.Buffer.MinBindingSize)
	}
	if defValue(cfg, "PER_OBJECT_BUFFER_BATCH_SIZE") != "85" {
		t.Errorf("expected batch size def 85, got %q", defValue(cfg, "PER_OBJECT_BUFFER_BATCH_SIZE"))
	}
}

func TestSpecializeMissingAttribute(t *testing.T) {
	s := NewSpecializer()

	// A layout without positions cannot serve any variant.
	bare := mesh.NewVertexLayout("bare", mesh.AttrUV)
	_, err := s.Specialize(MSAAKey(1), bare)
	if err == nil {
		t.Fatal("expected an error for a layout without positions")
	}
	var missing *mesh.MissingAttributeError
	if !errors.As(err, &missing) {
		t.Fatalf("expected *mesh.MissingAttributeError, got %T", err)
	}
	if missing.Attribute != mesh.AttrPosition {
		t.Errorf("expected missing position attribute, got %v", missing.Attribute)
	}
}

func TestFeatureKeyString(t *testing.T) {
	key := MSAAKey(4) | BlendKey(BlendAlpha) | FeatureHDR | FeatureTonemapInShader
	got := key.String()
	want := "msaa4|alpha|point_list|hdr|tonemap"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
