// defs.go implements the prism WGSL shader pre-processor. Pipeline
// specialization compiles one shader source into many variants by passing a
// def list: #ifdef/#ifndef/#else/#endif blocks gate variant-specific code,
// #{NAME} expansions splice def values into the source, and @prism:include
// lines inject the engine's canonical GPU struct declarations so the Go and
// WGSL layouts cannot drift apart.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/prism-go/engine/camera"
	"github.com/Carmen-Shannon/prism-go/engine/mesh"
	"github.com/Carmen-Shannon/prism-go/engine/morph"
	"github.com/Carmen-Shannon/prism-go/engine/skin"
)

// Def is one pre-processor definition. A Def with an empty Value acts as a
// flag for #ifdef gating; a Def with a Value additionally expands #{Name}
// occurrences in emitted lines.
type Def struct {
	// Name is the identifier tested by #ifdef/#ifndef and referenced by
	// #{Name} expansions.
	Name string
	// Value is the replacement text for #{Name} expansions, empty for pure
	// flag defs.
	Value string
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// structRegistry maps @prism:include argument keys to the embedded WGSL
	// struct sources from the engine's GPU type packages.
	structRegistry map[string]string
}

// PreProcessor processes raw WGSL shader source containing pre-processor
// directives, resolving conditional blocks and value expansions against a def
// list and replacing @prism:include lines with embedded struct sources.
type PreProcessor interface {
	// Process resolves the source against the given defs. Conditional
	// blocks may nest; lines inside inactive blocks are dropped without
	// expansion. Errors carry the 1-based source line number.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//   - defs: the definitions active for this variant
	//
	// Returns:
	//   - string: the processed WGSL shader source code
	//   - error: an error if a directive is malformed, unbalanced or
	//     references an unknown name
	Process(source string, defs []Def) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the engine's canonical GPU
// struct sources registered for @prism:include.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[string]string{
			"view":           camera.GPUViewUniformSource,
			"mesh":           mesh.MeshUniformSource,
			"joint_matrices": skin.JointMatricesSource,
			"morph_weights":  morph.MorphWeightsSource,
		},
	}
}

// cond tracks one open conditional block during processing.
type cond struct {
	// parentActive is whether the enclosing block emits lines.
	parentActive bool
	// active is whether the current branch emits lines.
	active bool
	// taken is whether the #ifdef/#ifndef branch condition held.
	taken bool
	// seenElse guards against duplicate #else directives.
	seenElse bool
	// line is where the block opened, for unterminated-block errors.
	line int
}

func (p *preProcessor) Process(source string, defs []Def) (string, error) {
	defined := make(map[string]string, len(defs))
	for _, d := range defs {
		defined[d.Name] = d.Value
	}

	var stack []cond
	isActive := func() bool {
		return len(stack) == 0 || stack[len(stack)-1].active
	}

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	// iterate through each line of the source: directives manipulate the
	// conditional stack, include lines splice registry sources, and every
	// other line is emitted (with value expansion) when the current block
	// is active.
	for i, line := range lines {
		fields := strings.Fields(line)
		directive := ""
		if len(fields) > 0 {
			directive = fields[0]
		}

		switch directive {
		case "#ifdef", "#ifndef":
			if len(fields) != 2 {
				return "", fmt.Errorf("line %d: %s expects exactly one name", i+1, directive)
			}
			_, ok := defined[fields[1]]
			if directive == "#ifndef" {
				ok = !ok
			}
			parent := isActive()
			stack = append(stack, cond{
				parentActive: parent,
				active:       parent && ok,
				taken:        ok,
				line:         i + 1,
			})
		case "#else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without an open #ifdef", i+1)
			}
			top := &stack[len(stack)-1]
			if top.seenElse {
				return "", fmt.Errorf("line %d: duplicate #else for the block opened on line %d", i+1, top.line)
			}
			top.seenElse = true
			top.active = top.parentActive && !top.taken
		case "#endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without an open #ifdef", i+1)
			}
			stack = stack[:len(stack)-1]
		case "@prism:include":
			if !isActive() {
				continue
			}
			if len(fields) != 2 {
				return "", fmt.Errorf("line %d: @prism:include expects exactly one argument", i+1)
			}
			src, ok := p.structRegistry[fields[1]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @prism:include argument %q", i+1, fields[1])
			}
			out = append(out, src)
		default:
			if !isActive() {
				continue
			}
			expanded, err := expandValues(line, defined, i+1)
			if err != nil {
				return "", err
			}
			out = append(out, expanded)
		}
	}

	if len(stack) > 0 {
		return "", fmt.Errorf("line %d: unterminated #ifdef", stack[len(stack)-1].line)
	}
	return strings.Join(out, "\n"), nil
}

// expandValues replaces every #{NAME} occurrence in the line with the def's
// value. Expansion of an unknown name or a pure flag def is an error, as the
// emitted WGSL would be malformed either way.
func expandValues(line string, defined map[string]string, lineNo int) (string, error) {
	if !strings.Contains(line, "#{") {
		return line, nil
	}
	var b strings.Builder
	rest := line
	for {
		idx := strings.Index(rest, "#{")
		if idx < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:idx])
		end := strings.Index(rest[idx:], "}")
		if end < 0 {
			return "", fmt.Errorf("line %d: unterminated #{ expansion", lineNo)
		}
		name := rest[idx+2 : idx+end]
		val, ok := defined[name]
		if !ok {
			return "", fmt.Errorf("line %d: unknown name %q in #{ expansion", lineNo, name)
		}
		if val == "" {
			return "", fmt.Errorf("line %d: def %q has no value to expand", lineNo, name)
		}
		b.WriteString(val)
		rest = rest[idx+end+1:]
	}
	return b.String(), nil
}
