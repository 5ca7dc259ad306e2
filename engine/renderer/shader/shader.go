package shader

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which pipeline stage a shader variant serves.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds one processed shader variant ready for module creation.
type shader struct {
	key        string
	source     string
	shaderType ShaderType
	entryPoint string
	module     *wgpu.ShaderModuleDescriptor
}

// Shader is one processed WGSL shader variant: the source after pre-processing
// with a specific def list, plus the module descriptor used to create the GPU
// shader module.
type Shader interface {
	// Key retrieves the unique identifier for this shader variant, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader variant
	Source() string

	// EntryPoint returns the entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// ShaderType returns the type of the shader (vertex or fragment).
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// Module returns the wgpu.ShaderModuleDescriptor for this shader variant.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes the given WGSL source against the def list and
// wraps the result as a Shader variant. The same source produces different
// variants under different def lists; the key should identify the variant,
// not just the source.
//
// Parameters:
//   - key: a unique identifier for the shader variant, used for caching and labels
//   - shaderType: the pipeline stage the shader serves
//   - source: the raw WGSL source containing pre-processor directives
//   - options: functional options to configure the shader
//
// Returns:
//   - Shader: the processed shader variant
//   - error: an error if pre-processing fails
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) (Shader, error) {
	if source == "" {
		return nil, fmt.Errorf("shader %s: no source provided", key)
	}
	s := &shader{
		key:        key,
		shaderType: shaderType,
	}
	switch shaderType {
	case ShaderTypeVertex:
		s.entryPoint = "vs_main"
	case ShaderTypeFragment:
		s.entryPoint = "fs_main"
	}

	cfg := &shaderBuilderConfig{}
	for _, option := range options {
		option(cfg)
	}
	if cfg.entryPoint != "" {
		s.entryPoint = cfg.entryPoint
	}

	processed, err := NewPreProcessor().Process(source, cfg.defs)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = processed
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
