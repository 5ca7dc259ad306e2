package shader

import (
	"strings"
	"testing"
)

func TestProcessIfdefKeepsActiveBranch(t *testing.T) {
	source := "a\n#ifdef SKINNED\nskinned\n#else\nstatic\n#endif\nb"

	got, err := NewPreProcessor().Process(source, []Def{{Name: "SKINNED"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "a\nskinned\nb" {
		t.Errorf("expected skinned branch, got %q", got)
	}

	got, err = NewPreProcessor().Process(source, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "a\nstatic\nb" {
		t.Errorf("expected static branch, got %q", got)
	}
}

func TestProcessIfndef(t *testing.T) {
	source := "#ifndef HDR\nldr\n#endif"

	got, err := NewPreProcessor().Process(source, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "ldr" {
		t.Errorf("expected ldr line, got %q", got)
	}

	got, err = NewPreProcessor().Process(source, []Def{{Name: "HDR"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestProcessNestedBlocks(t *testing.T) {
	source := strings.Join([]string{
		"#ifdef OUTER",
		"#ifdef INNER",
		"both",
		"#else",
		"outer only",
		"#endif",
		"#endif",
	}, "\n")

	got, err := NewPreProcessor().Process(source, []Def{{Name: "OUTER"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "outer only" {
		t.Errorf("expected outer only, got %q", got)
	}

	// The inner block must stay suppressed when the outer condition fails,
	// including its #else branch.
	got, err = NewPreProcessor().Process(source, []Def{{Name: "INNER"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestProcessValueExpansion(t *testing.T) {
	source := "var<uniform> joints: array<mat4x4<f32>, #{MAX_JOINTS}u>;"

	got, err := NewPreProcessor().Process(source, []Def{{Name: "MAX_JOINTS", Value: "256"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "var<uniform> joints: array<mat4x4<f32>, 256u>;" {
		t.Errorf("unexpected expansion: %q", got)
	}
}

func TestProcessExpansionInsideInactiveBlockIgnored(t *testing.T) {
	source := "#ifdef MORPH_TARGETS\nlet n = #{UNDEFINED};\n#endif"

	got, err := NewPreProcessor().Process(source, nil)
	if err != nil {
		t.Fatalf("expected no error for inactive expansion, got %v", err)
	}
	if got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestProcessErrorsCarryLineNumbers(t *testing.T) {
	cases := []struct {
		name   string
		source string
		defs   []Def
		want   string
	}{
		{"unterminated block", "a\n#ifdef X\nb", []Def{{Name: "X"}}, "line 2"},
		{"stray else", "a\n\n#else", nil, "line 3"},
		{"stray endif", "#endif", nil, "line 1"},
		{"duplicate else", "#ifdef X\n#else\n#else\n#endif", nil, "line 3"},
		{"missing name", "#ifdef\n#endif", nil, "line 1"},
		{"unknown expansion", "a\nlet n = #{NOPE};", nil, "line 2"},
		{"flag expansion", "let n = #{FLAG};", []Def{{Name: "FLAG"}}, "line 1"},
		{"unterminated expansion", "let n = #{OOPS;", []Def{{Name: "OOPS", Value: "1"}}, "line 1"},
		{"unknown include", "@prism:include nope", nil, "line 1"},
	}

	p := NewPreProcessor()
	for _, tc := range cases {
		_, err := p.Process(tc.source, tc.defs)
		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: expected error mentioning %q, got %q", tc.name, tc.want, err.Error())
		}
	}
}

func TestProcessIncludeSplicesStructSource(t *testing.T) {
	got, err := NewPreProcessor().Process("@prism:include mesh", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "struct Mesh") {
		t.Errorf("expected spliced Mesh struct, got %q", got)
	}
}

func TestNewShaderProcessesVariants(t *testing.T) {
	source := "#ifdef VERTEX_UVS\nuv\n#endif\n@vertex fn vs_main() {}"

	withUVs, err := NewShader("mesh|uvs", ShaderTypeVertex, source, WithDefs([]Def{{Name: "VERTEX_UVS"}}))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(withUVs.Source(), "uv") {
		t.Error("expected uv line in processed source")
	}
	if withUVs.EntryPoint() != "vs_main" {
		t.Errorf("expected vs_main entry point, got %q", withUVs.EntryPoint())
	}
	if withUVs.Module() == nil || withUVs.Module().WGSLDescriptor.Code != withUVs.Source() {
		t.Error("expected module descriptor to carry the processed source")
	}

	without, err := NewShader("mesh|plain", ShaderTypeVertex, source)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(without.Source(), "uv") {
		t.Error("expected uv line to be stripped")
	}
}

func TestNewShaderPropagatesProcessErrors(t *testing.T) {
	_, err := NewShader("broken", ShaderTypeFragment, "#ifdef X\n")
	if err == nil {
		t.Fatal("expected an error for an unterminated block")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("expected error to name the shader, got %q", err.Error())
	}
}
