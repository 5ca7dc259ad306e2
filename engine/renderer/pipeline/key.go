package pipeline

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// FeatureKey is a bit-packed descriptor of the rendering feature variant a
// draw requires. Single-bit toggles occupy the low end of the word; multi-bit
// coded fields are packed downward from bit 31, each field's shift derived
// from the cumulative width of the fields above it, so no two fields can
// overlap. Key equality implies specialized-pipeline equality, which lets
// callers cache built pipeline objects keyed by (FeatureKey, vertex layout).
type FeatureKey uint32

// Single-bit feature toggles.
const (
	FeatureHDR FeatureKey = 1 << iota
	FeatureTonemapInShader
	FeatureDebandDither
	FeatureDepthPrepass
	FeatureNormalPrepass
	FeatureMotionVectorPrepass
	FeatureMayDiscard
	FeatureEnvironmentMap
	FeatureScreenSpaceAmbientOcclusion
	FeatureDepthClampOrtho
	FeatureTAA
	FeatureMorphTargets

	FeatureNone FeatureKey = 0
)

// Coded field widths. Shifts are computed from the cumulative widths so the
// fields tile the high end of the word without gaps or overlap.
const (
	msaaFieldBits     = 3
	topologyFieldBits = 3
	blendFieldBits    = 2
	tonemapFieldBits  = 3

	msaaShift     = 32 - msaaFieldBits
	topologyShift = msaaShift - topologyFieldBits
	blendShift    = topologyShift - blendFieldBits
	tonemapShift  = blendShift - tonemapFieldBits

	msaaFieldMask     = 1<<msaaFieldBits - 1
	topologyFieldMask = 1<<topologyFieldBits - 1
	blendFieldMask    = 1<<blendFieldBits - 1
	tonemapFieldMask  = 1<<tonemapFieldBits - 1

	// Reserved-bit masks, positioned at each field's window.
	MSAAMask     FeatureKey = msaaFieldMask << msaaShift
	TopologyMask FeatureKey = topologyFieldMask << topologyShift
	BlendMask    FeatureKey = blendFieldMask << blendShift
	TonemapMask  FeatureKey = tonemapFieldMask << tonemapShift
)

// BlendMode selects one of the four mutually exclusive blending
// configurations a specialized pipeline can use. The zero value is opaque,
// which is also the decode fallback.
type BlendMode uint32

const (
	BlendOpaque BlendMode = iota
	BlendPremultiplied
	BlendMultiply
	BlendAlpha
)

// TonemapMethod selects the tonemapping operator applied in the fragment
// shader when FeatureTonemapInShader is set.
type TonemapMethod uint32

const (
	TonemapNone TonemapMethod = iota
	TonemapReinhard
	TonemapReinhardLuminance
	TonemapACESFitted
	TonemapAgX
	TonemapSomewhatBoringDisplayTransform
	TonemapTonyMcMapface
	TonemapBlenderFilmic
)

// ParseTonemap resolves a tonemap method from its configuration name.
//
// Parameters:
//   - name: the method name, e.g. "reinhard" or "aces_fitted"
//
// Returns:
//   - TonemapMethod: the matching method
//   - bool: false when the name is unknown
func ParseTonemap(name string) (TonemapMethod, bool) {
	switch name {
	case "none":
		return TonemapNone, true
	case "reinhard":
		return TonemapReinhard, true
	case "reinhard_luminance":
		return TonemapReinhardLuminance, true
	case "aces_fitted":
		return TonemapACESFitted, true
	case "agx":
		return TonemapAgX, true
	case "sbdt":
		return TonemapSomewhatBoringDisplayTransform, true
	case "tony_mc_mapface":
		return TonemapTonyMcMapface, true
	case "blender_filmic":
		return TonemapBlenderFilmic, true
	default:
		return TonemapNone, false
	}
}

// MSAAKey encodes a sample count as its power-of-two exponent in the MSAA
// field. Sample counts are always powers of two, so the exponent is the
// trailing-zero count; it is masked to the field width before shifting so a
// degenerate input can never spill into neighboring fields.
//
// Parameters:
//   - samples: the MSAA sample count (1, 2, 4, ... 128)
//
// Returns:
//   - FeatureKey: a key with only the MSAA field populated
func MSAAKey(samples uint32) FeatureKey {
	exp := uint32(bits.TrailingZeros32(samples)) & msaaFieldMask
	return FeatureKey(exp) << msaaShift
}

// MSAASamples decodes the MSAA field back into a sample count.
//
// Returns:
//   - uint32: 1 << stored exponent
func (k FeatureKey) MSAASamples() uint32 {
	return 1 << ((uint32(k) >> msaaShift) & msaaFieldMask)
}

// TopologyKey encodes a primitive topology ordinal in the topology field,
// masked to the field width.
//
// Parameters:
//   - t: the primitive topology to encode
//
// Returns:
//   - FeatureKey: a key with only the topology field populated
func TopologyKey(t wgpu.PrimitiveTopology) FeatureKey {
	return FeatureKey(uint32(t)&topologyFieldMask) << topologyShift
}

// Topology decodes the topology field. An ordinal that does not match a
// known topology decodes to triangle list instead of failing; callers depend
// on this silent fallback.
//
// Returns:
//   - wgpu.PrimitiveTopology: the stored topology, or triangle list
func (k FeatureKey) Topology() wgpu.PrimitiveTopology {
	t := wgpu.PrimitiveTopology((uint32(k) >> topologyShift) & topologyFieldMask)
	switch t {
	case wgpu.PrimitiveTopologyPointList,
		wgpu.PrimitiveTopologyLineList,
		wgpu.PrimitiveTopologyLineStrip,
		wgpu.PrimitiveTopologyTriangleList,
		wgpu.PrimitiveTopologyTriangleStrip:
		return t
	default:
		return wgpu.PrimitiveTopologyTriangleList
	}
}

// BlendKey encodes a blend mode in the blend field.
//
// Parameters:
//   - b: the blend mode to encode
//
// Returns:
//   - FeatureKey: a key with only the blend field populated
func BlendKey(b BlendMode) FeatureKey {
	return FeatureKey(uint32(b)&blendFieldMask) << blendShift
}

// Blend decodes the blend field.
//
// Returns:
//   - BlendMode: the stored blend mode
func (k FeatureKey) Blend() BlendMode {
	return BlendMode((uint32(k) >> blendShift) & blendFieldMask)
}

// TonemapKey encodes a tonemap method in the tonemap field.
//
// Parameters:
//   - m: the tonemap method to encode
//
// Returns:
//   - FeatureKey: a key with only the tonemap field populated
func TonemapKey(m TonemapMethod) FeatureKey {
	return FeatureKey(uint32(m)&tonemapFieldMask) << tonemapShift
}

// Tonemap decodes the tonemap method field. Only meaningful when
// FeatureTonemapInShader is set.
//
// Returns:
//   - TonemapMethod: the stored tonemap method
func (k FeatureKey) Tonemap() TonemapMethod {
	return TonemapMethod((uint32(k) >> tonemapShift) & tonemapFieldMask)
}

// Contains reports whether every set bit of other is also set in k.
//
// Parameters:
//   - other: the bits to test for
//
// Returns:
//   - bool: true if k is a superset of other
func (k FeatureKey) Contains(other FeatureKey) bool {
	return k&other == other
}

// Intersects reports whether k and other share any set bit.
//
// Parameters:
//   - other: the bits to test against
//
// Returns:
//   - bool: true if any bit is common
func (k FeatureKey) Intersects(other FeatureKey) bool {
	return k&other != 0
}

// Intersection returns the sub-key restricted to the bits of mask.
//
// Parameters:
//   - mask: the bits to keep
//
// Returns:
//   - FeatureKey: k with all bits outside mask cleared
func (k FeatureKey) Intersection(mask FeatureKey) FeatureKey {
	return k & mask
}

// toggleNames maps each feature toggle to the short name used in labels.
var toggleNames = []struct {
	bit  FeatureKey
	name string
}{
	{FeatureHDR, "hdr"},
	{FeatureTonemapInShader, "tonemap"},
	{FeatureDebandDither, "dither"},
	{FeatureDepthPrepass, "depth_prepass"},
	{FeatureNormalPrepass, "normal_prepass"},
	{FeatureMotionVectorPrepass, "motion_vectors"},
	{FeatureMayDiscard, "may_discard"},
	{FeatureEnvironmentMap, "env_map"},
	{FeatureScreenSpaceAmbientOcclusion, "ssao"},
	{FeatureDepthClampOrtho, "depth_clamp_ortho"},
	{FeatureTAA, "taa"},
	{FeatureMorphTargets, "morph"},
}

// blendNames indexes BlendMode values for labels.
var blendNames = [...]string{"opaque", "premultiplied", "multiply", "alpha"}

// topologyName returns the label fragment for a topology.
func topologyName(t wgpu.PrimitiveTopology) string {
	switch t {
	case wgpu.PrimitiveTopologyPointList:
		return "point_list"
	case wgpu.PrimitiveTopologyLineList:
		return "line_list"
	case wgpu.PrimitiveTopologyLineStrip:
		return "line_strip"
	case wgpu.PrimitiveTopologyTriangleStrip:
		return "triangle_strip"
	default:
		return "triangle_list"
	}
}

// String renders the key as a readable label for pipeline names and logs,
// e.g. "msaa4|opaque|triangle_list|hdr|tonemap".
//
// Returns:
//   - string: the formatted key
func (k FeatureKey) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "msaa%d", k.MSAASamples())
	b.WriteByte('|')
	b.WriteString(blendNames[k.Blend()])
	b.WriteByte('|')
	b.WriteString(topologyName(k.Topology()))
	for _, t := range toggleNames {
		if k.Contains(t.bit) {
			b.WriteByte('|')
			b.WriteString(t.name)
		}
	}
	return b.String()
}
