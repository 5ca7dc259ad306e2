package shader

// shaderBuilderConfig collects options applied during NewShader.
type shaderBuilderConfig struct {
	defs       []Def
	entryPoint string
}

// ShaderBuilderOption is a functional option for configuring a Shader.
// Use the With* functions to create options that are applied during
// construction.
type ShaderBuilderOption func(*shaderBuilderConfig)

// WithDefs sets the pre-processor definitions for this shader variant.
//
// Parameters:
//   - defs: the definitions active for this variant
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithDefs(defs []Def) ShaderBuilderOption {
	return func(c *shaderBuilderConfig) {
		c.defs = defs
	}
}

// WithEntryPoint overrides the default entry point name ("vs_main" for vertex
// shaders, "fs_main" for fragment shaders).
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(c *shaderBuilderConfig) {
		c.entryPoint = name
	}
}
