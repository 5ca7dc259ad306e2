package pipeline

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
	"github.com/cogentcore/webgpu/wgpu"
)

// tonemapDefs maps each tonemap method to its shader def, emitted only when
// FeatureTonemapInShader is set.
var tonemapDefs = [...]string{
	TonemapNone:                          "TONEMAP_METHOD_NONE",
	TonemapReinhard:                      "TONEMAP_METHOD_REINHARD",
	TonemapReinhardLuminance:             "TONEMAP_METHOD_REINHARD_LUMINANCE",
	TonemapACESFitted:                    "TONEMAP_METHOD_ACES_FITTED",
	TonemapAgX:                           "TONEMAP_METHOD_AGX",
	TonemapSomewhatBoringDisplayTransform: "TONEMAP_METHOD_SOMEWHAT_BORING_DISPLAY_TRANSFORM",
	TonemapTonyMcMapface:                 "TONEMAP_METHOD_TONY_MC_MAPFACE",
	TonemapBlenderFilmic:                 "TONEMAP_METHOD_BLENDER_FILMIC",
}

// toggleDefs maps feature toggles to their shader defs, in bit order so def
// lists are deterministic for equal keys.
var toggleDefs = []struct {
	bit FeatureKey
	def string
}{
	{FeatureTonemapInShader, "TONEMAP_IN_SHADER"},
	{FeatureDebandDither, "DEBAND_DITHER"},
	{FeatureDepthPrepass, "DEPTH_PREPASS"},
	{FeatureNormalPrepass, "NORMAL_PREPASS"},
	{FeatureMotionVectorPrepass, "MOTION_VECTOR_PREPASS"},
	{FeatureMayDiscard, "MAY_DISCARD"},
	{FeatureEnvironmentMap, "ENVIRONMENT_MAP"},
	{FeatureScreenSpaceAmbientOcclusion, "SCREEN_SPACE_AMBIENT_OCCLUSION"},
	{FeatureDepthClampOrtho, "DEPTH_CLAMP_ORTHO"},
	{FeatureTAA, "TEMPORAL_ANTI_ALIASING"},
}

// Specializer turns a feature key and a mesh vertex layout into a complete
// pipeline Config. Specialization is pure: equal inputs produce identical
// configs, so callers may cache the resulting pipeline objects by VariantID.
type Specializer interface {
	// Specialize builds the Config for one variant. It fails with a
	// *mesh.MissingAttributeError (wrapped) when the layout lacks an
	// attribute the key's features require.
	//
	// Parameters:
	//   - key: the feature key describing the variant
	//   - layout: the vertex layout of the meshes this variant draws
	//
	// Returns:
	//   - Config: the complete pipeline description
	//   - error: layout incompatibility, nil otherwise
	Specialize(key FeatureKey, layout mesh.VertexLayout) (Config, error)
}

type specializer struct {
	surfaceFormat wgpu.TextureFormat
	perObject     PerObjectBinding
}

var _ Specializer = &specializer{}

// Specialize implements Specializer.
func (s *specializer) Specialize(key FeatureKey, layout mesh.VertexLayout) (Config, error) {
	skinned := layout.HasJoints()
	morphed := key.Contains(FeatureMorphTargets)

	cfg := Config{
		Label: key.String(),
		ID: VariantID{
			Key:    key,
			Layout: layout.Attributes(),
		},
		Skinned: skinned,
		Morphed: morphed,
	}

	// Step 1: shader defs, in a fixed order keyed only by the inputs.
	defs := []shader.Def{
		{Name: "MAX_JOINTS", Value: strconv.Itoa(skin.MaxJoints)},
	}
	if key.Contains(FeatureHDR) {
		defs = append(defs, shader.Def{Name: "HDR"})
	}
	for _, t := range toggleDefs {
		if key.Contains(t.bit) {
			defs = append(defs, shader.Def{Name: t.def})
		}
	}
	if key.Contains(FeatureTonemapInShader) {
		defs = append(defs, shader.Def{Name: tonemapDefs[key.Tonemap()]})
	}
	if key.MSAASamples() > 1 {
		defs = append(defs, shader.Def{Name: "MULTISAMPLED"})
	}
	if layout.Has(mesh.AttrNormal) {
		defs = append(defs, shader.Def{Name: "VERTEX_NORMALS"})
	}
	if layout.Has(mesh.AttrUV) {
		defs = append(defs, shader.Def{Name: "VERTEX_UVS"})
	}
	if layout.Has(mesh.AttrTangent) {
		defs = append(defs, shader.Def{Name: "VERTEX_TANGENTS"})
	}
	if layout.Has(mesh.AttrColor) {
		defs = append(defs, shader.Def{Name: "VERTEX_COLORS"})
	}
	if skinned {
		defs = append(defs, shader.Def{Name: "SKINNED"})
	}
	if morphed {
		defs = append(defs,
			shader.Def{Name: "MORPH_TARGETS"},
			shader.Def{Name: "MAX_MORPH_WEIGHTS", Value: strconv.Itoa(morph.MaxMorphWeights)},
		)
	}
	if s.perObject.Storage {
		defs = append(defs, shader.Def{Name: "PER_OBJECT_STORAGE"})
	} else {
		defs = append(defs, shader.Def{
			Name:  "PER_OBJECT_BUFFER_BATCH_SIZE",
			Value: strconv.FormatUint(uint64(s.perObject.BatchSize), 10),
		})
	}
	cfg.Defs = defs

	// Step 2: vertex buffer layout from the attributes the variant reads.
	requests := []mesh.AttributeRequest{
		{Attribute: mesh.AttrPosition, Location: mesh.LocationPosition},
	}
	if layout.Has(mesh.AttrNormal) {
		requests = append(requests, mesh.AttributeRequest{Attribute: mesh.AttrNormal, Location: mesh.LocationNormal})
	}
	if layout.Has(mesh.AttrUV) {
		requests = append(requests, mesh.AttributeRequest{Attribute: mesh.AttrUV, Location: mesh.LocationUV})
	}
	if layout.Has(mesh.AttrTangent) {
		requests = append(requests, mesh.AttributeRequest{Attribute: mesh.AttrTangent, Location: mesh.LocationTangent})
	}
	if layout.Has(mesh.AttrColor) {
		requests = append(requests, mesh.AttributeRequest{Attribute: mesh.AttrColor, Location: mesh.LocationColor})
	}
	if skinned {
		requests = append(requests,
			mesh.AttributeRequest{Attribute: mesh.AttrJointIndices, Location: mesh.LocationJointIndices},
			mesh.AttributeRequest{Attribute: mesh.AttrJointWeights, Location: mesh.LocationJointWeights},
		)
	}
	buffer, err := layout.BuildBufferLayout(requests)
	if err != nil {
		return Config{}, fmt.Errorf("specialize %s: %w", cfg.Label, err)
	}
	cfg.VertexBuffers = []wgpu.VertexBufferLayout{buffer}

	// Step 3: bind group layouts for the variant.
	cfg.BindGroupLayouts = []wgpu.BindGroupLayoutDescriptor{
		ViewBindGroupLayout(),
		MeshBindGroupLayout(s.perObject, skinned, morphed),
	}

	// Step 4: primitive state from the topology field.
	cfg.Primitive = wgpu.PrimitiveState{
		Topology:  key.Topology(),
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeBack,
	}

	// Step 5: color target and blending.
	cfg.ColorTarget = wgpu.ColorTargetState{
		Format:    s.surfaceFormat,
		Blend:     blendStateFor(key.Blend()),
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if key.Contains(FeatureHDR) {
		cfg.ColorTarget.Format = HDRFormat
	}

	// Step 6: depth and multisample state. Depth is reversed and only
	// opaque draws write it; stencil faces are set to Always so stencil is
	// ignored.
	cfg.DepthStencil = &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: key.Blend() == BlendOpaque,
		DepthCompare:      wgpu.CompareFunctionGreaterEqual,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
	cfg.Multisample = wgpu.MultisampleState{
		Count: key.MSAASamples(),
		Mask:  0xFFFFFFFF,
	}

	return cfg, nil
}

// blendStateFor returns the blend state for a blend mode, nil for opaque.
func blendStateFor(mode BlendMode) *wgpu.BlendState {
	switch mode {
	case BlendPremultiplied:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case BlendMultiply:
		// Multiplicative color with standard over on alpha so coverage
		// still accumulates.
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorDst,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case BlendAlpha:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	default:
		return nil
	}
}
