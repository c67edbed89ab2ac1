package shader

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(2) var source_tex: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// BindingKind classifies a resource binding declared in WGSL source.
type BindingKind int

const (
	// BindingKindBuffer is a uniform or storage buffer binding.
	BindingKindBuffer BindingKind = iota
	// BindingKindSampler is a sampler or comparison sampler binding.
	BindingKindSampler
	// BindingKindTexture is a sampled texture binding.
	BindingKindTexture
)

// Binding is one @group/@binding declaration found in WGSL source.
type Binding struct {
	Group   int
	Binding int
	Name    string
	Type    string
	Kind    BindingKind
}

// parseEntryPoint returns the name of the first function carrying the attribute matched by re,
// or an empty string.
func parseEntryPoint(source string, re *regexp.Regexp) string {
	if match := re.FindStringSubmatch(stripComments(source)); match != nil {
		return match[1]
	}
	return ""
}

// parseBindings extracts every @group/@binding declaration from WGSL source in source order.
//
// Parameters:
//   - source: the WGSL source
//
// Returns:
//   - []Binding: the declared bindings
func parseBindings(source string) []Binding {
	matches := bindGroupDeclRegex.FindAllStringSubmatch(stripComments(source), -1)
	bindings := make([]Binding, 0, len(matches))
	for _, m := range matches {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		b := Binding{
			Group:   group,
			Binding: binding,
			Name:    m[4],
			Type:    strings.TrimSpace(m[5]),
		}
		switch {
		case strings.HasPrefix(b.Type, "sampler"):
			b.Kind = BindingKindSampler
		case strings.HasPrefix(b.Type, "texture_"):
			b.Kind = BindingKindTexture
		default:
			b.Kind = BindingKindBuffer
		}
		bindings = append(bindings, b)
	}
	return bindings
}

// stripComments removes line (//) and block (/* */) comments from WGSL source. Block comments nest.
func stripComments(source string) string {
	var b strings.Builder
	b.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case depth == 0 && strings.HasPrefix(source[i:], "//"):
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				b.WriteByte('\n')
			}
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth == 0:
			b.WriteByte(source[i])
		}
	}
	return b.String()
}
