package shader

import (
	"strings"
	"testing"
)

func fullyFeaturedDefs() []Def {
	return []Def{
		{Name: "MAX_JOINTS", Value: "256"},
		{Name: "PER_OBJECT_STORAGE"},
		{Name: "VERTEX_NORMALS"},
		{Name: "VERTEX_UVS"},
		{Name: "VERTEX_TANGENTS"},
		{Name: "VERTEX_COLORS"},
		{Name: "SKINNED"},
		{Name: "MORPH_TARGETS"},
		{Name: "MAX_MORPH_WEIGHTS", Value: "64"},
		{Name: "TONEMAP_IN_SHADER"},
		{Name: "TONEMAP_METHOD_ACES_FITTED"},
		{Name: "DEBAND_DITHER"},
		{Name: "MAY_DISCARD"},
	}
}

func TestForwardSourceFullyFeaturedVariant(t *testing.T) {
	got, err := NewPreProcessor().Process(ForwardSource, fullyFeaturedDefs())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, leftover := range []string{"#ifdef", "#ifndef", "#else", "#endif", "#{", "@prism:include"} {
		if strings.Contains(got, leftover) {
			t.Errorf("expected %q to be fully resolved", leftover)
		}
	}
	for _, want := range []string{
		"var<storage> meshes: array<Mesh>",
		"struct View",
		"struct Mesh",
		"struct SkinnedMesh",
		"struct MorphWeights",
		"const MAX_JOINTS: u32 = 256u;",
		"const MAX_MORPH_WEIGHTS: u32 = 64u;",
		"fn skin_model",
		"fn morph_weight_at",
		"fn aces_fitted",
		"fn vs_main",
		"fn fs_main",
		"discard;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected processed source to contain %q", want)
		}
	}
}

func TestForwardSourceBatchedUniformVariant(t *testing.T) {
	got, err := NewPreProcessor().Process(ForwardSource, []Def{
		{Name: "MAX_JOINTS", Value: "256"},
		{Name: "PER_OBJECT_BUFFER_BATCH_SIZE", Value: "341"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(got, "var<uniform> meshes: array<Mesh, 341u>;") {
		t.Error("expected a fixed-size uniform mesh array")
	}
	if strings.Contains(got, "var<storage>") {
		t.Error("expected no storage bindings on the batched path")
	}
}

func TestForwardSourceMinimalVariantDropsOptionalBindings(t *testing.T) {
	got, err := NewPreProcessor().Process(ForwardSource, []Def{
		{Name: "MAX_JOINTS", Value: "256"},
		{Name: "PER_OBJECT_STORAGE"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, dropped := range []string{
		"joint_matrices",
		"morph_weights",
		"world_normal",
		"tonemap",
		"screen_space_dither",
		"discard",
	} {
		if strings.Contains(got, dropped) {
			t.Errorf("expected %q to be stripped from the minimal variant", dropped)
		}
	}
	if !strings.Contains(got, "@location(0) position: vec3<f32>") {
		t.Error("expected the position attribute to survive")
	}
}
