package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestMSAARoundTrip(t *testing.T) {
	for _, samples := range []uint32{1, 2, 4, 8, 16, 32, 64, 128} {
		k := MSAAKey(samples)
		if got := k.MSAASamples(); got != samples {
			t.Errorf("MSAA round trip: got %d, want %d", got, samples)
		}
	}
}

func TestFieldMasksDisjoint(t *testing.T) {
	toggleMask := FeatureHDR | FeatureTonemapInShader | FeatureDebandDither |
		FeatureDepthPrepass | FeatureNormalPrepass | FeatureMotionVectorPrepass |
		FeatureMayDiscard | FeatureEnvironmentMap | FeatureScreenSpaceAmbientOcclusion |
		FeatureDepthClampOrtho | FeatureTAA | FeatureMorphTargets

	masks := []struct {
		name string
		mask FeatureKey
	}{
		{"toggles", toggleMask},
		{"msaa", MSAAMask},
		{"topology", TopologyMask},
		{"blend", BlendMask},
		{"tonemap", TonemapMask},
	}
	for i := 0; i < len(masks); i++ {
		for j := i + 1; j < len(masks); j++ {
			if masks[i].mask&masks[j].mask != 0 {
				t.Errorf("fields %s and %s overlap: %08x & %08x", masks[i].name, masks[j].name,
					uint32(masks[i].mask), uint32(masks[j].mask))
			}
		}
	}
}

func TestFieldShifts(t *testing.T) {
	// The coded fields tile the high end of the word: 3+3+2+3 bits down from 31.
	if MSAAMask != 0b111<<29 {
		t.Errorf("msaa mask misplaced: %08x", uint32(MSAAMask))
	}
	if TopologyMask != 0b111<<26 {
		t.Errorf("topology mask misplaced: %08x", uint32(TopologyMask))
	}
	if BlendMask != 0b11<<24 {
		t.Errorf("blend mask misplaced: %08x", uint32(BlendMask))
	}
	if TonemapMask != 0b111<<21 {
		t.Errorf("tonemap mask misplaced: %08x", uint32(TonemapMask))
	}
}

func TestTopologyRoundTrip(t *testing.T) {
	topologies := []wgpu.PrimitiveTopology{
		wgpu.PrimitiveTopologyPointList,
		wgpu.PrimitiveTopologyLineList,
		wgpu.PrimitiveTopologyLineStrip,
		wgpu.PrimitiveTopologyTriangleList,
		wgpu.PrimitiveTopologyTriangleStrip,
	}
	for _, topo := range topologies {
		k := TopologyKey(topo)
		if got := k.Topology(); got != topo {
			t.Errorf("topology round trip: got %v, want %v", got, topo)
		}
	}
}

func TestTopologyUnknownOrdinalDefaults(t *testing.T) {
	// Ordinals past the known topologies must decode to triangle list, never fail.
	for ord := uint32(5); ord <= 7; ord++ {
		k := FeatureKey(ord) << topologyShift
		if got := k.Topology(); got != wgpu.PrimitiveTopologyTriangleList {
			t.Errorf("ordinal %d: got %v, want triangle list", ord, got)
		}
	}
}

func TestBlendRoundTrip(t *testing.T) {
	for _, b := range []BlendMode{BlendOpaque, BlendPremultiplied, BlendMultiply, BlendAlpha} {
		if got := BlendKey(b).Blend(); got != b {
			t.Errorf("blend round trip: got %d, want %d", got, b)
		}
	}
}

func TestTonemapRoundTrip(t *testing.T) {
	methods := []TonemapMethod{
		TonemapNone, TonemapReinhard, TonemapReinhardLuminance, TonemapACESFitted,
		TonemapAgX, TonemapSomewhatBoringDisplayTransform, TonemapTonyMcMapface,
		TonemapBlenderFilmic,
	}
	for _, m := range methods {
		if got := TonemapKey(m).Tonemap(); got != m {
			t.Errorf("tonemap round trip: got %d, want %d", got, m)
		}
	}
}

func TestParseTonemap(t *testing.T) {
	names := map[string]TonemapMethod{
		"none":               TonemapNone,
		"reinhard":           TonemapReinhard,
		"reinhard_luminance": TonemapReinhardLuminance,
		"aces_fitted":        TonemapACESFitted,
		"agx":                TonemapAgX,
		"sbdt":               TonemapSomewhatBoringDisplayTransform,
		"tony_mc_mapface":    TonemapTonyMcMapface,
		"blender_filmic":     TonemapBlenderFilmic,
	}
	for name, want := range names {
		got, ok := ParseTonemap(name)
		if !ok || got != want {
			t.Errorf("ParseTonemap(%q): got %d ok=%v, want %d", name, got, ok, want)
		}
	}
	if _, ok := ParseTonemap("filmic_extra"); ok {
		t.Error("unknown name should not parse")
	}
}

func TestEncodePreservesForeignBits(t *testing.T) {
	k := MSAAKey(8) | TopologyKey(wgpu.PrimitiveTopologyLineStrip) |
		BlendKey(BlendMultiply) | TonemapKey(TonemapAgX) |
		FeatureHDR | FeatureMorphTargets

	if got := k.MSAASamples(); got != 8 {
		t.Errorf("msaa field disturbed: got %d, want 8", got)
	}
	if got := k.Topology(); got != wgpu.PrimitiveTopologyLineStrip {
		t.Errorf("topology field disturbed: got %v", got)
	}
	if got := k.Blend(); got != BlendMultiply {
		t.Errorf("blend field disturbed: got %d", got)
	}
	if got := k.Tonemap(); got != TonemapAgX {
		t.Errorf("tonemap field disturbed: got %d", got)
	}
	if !k.Contains(FeatureHDR) || !k.Contains(FeatureMorphTargets) {
		t.Error("toggle bits disturbed by coded fields")
	}
	if k.Contains(FeatureTAA) {
		t.Error("unrelated toggle bit set")
	}
}

func TestSetAlgebra(t *testing.T) {
	k := FeatureHDR | FeatureTAA

	if !k.Contains(FeatureHDR) {
		t.Error("Contains should report a set bit")
	}
	if k.Contains(FeatureHDR | FeatureMorphTargets) {
		t.Error("Contains requires all bits")
	}
	if !k.Intersects(FeatureTAA | FeatureMorphTargets) {
		t.Error("Intersects should report any shared bit")
	}
	if k.Intersects(FeatureMorphTargets) {
		t.Error("Intersects with no shared bits should be false")
	}
	if got := k.Intersection(FeatureHDR); got != FeatureHDR {
		t.Errorf("Intersection: got %08x, want %08x", uint32(got), uint32(FeatureHDR))
	}
}

func TestZeroKeyDefaults(t *testing.T) {
	var k FeatureKey
	if got := k.MSAASamples(); got != 1 {
		t.Errorf("zero key msaa: got %d, want 1", got)
	}
	// Field value 0 is the point-list ordinal, a known topology.
	if got := k.Topology(); got != wgpu.PrimitiveTopologyPointList {
		t.Errorf("zero key topology: got %v, want point list", got)
	}
	if got := k.Blend(); got != BlendOpaque {
		t.Errorf("zero key blend: got %d, want opaque", got)
	}
}
