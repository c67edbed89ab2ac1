// pre_processor.go implements the WGSL include pre-processor. Shader sources reference shared
// declarations with single-line comments of the form
//
//	//@oxy:include <name>
//
// which are replaced with the registered WGSL source. The registry always carries the focus uniform
// block and the full-screen triangle vertex stage so kernel authors never restate them.
package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
)

// includePrefix marks an include annotation inside a WGSL line comment.
const includePrefix = "@oxy:include"

const (
	// IncludeFocusUniform injects the FocusUniform struct declaration.
	IncludeFocusUniform = "focus_uniform"
	// IncludeFullscreenVertex injects the full-screen triangle vertex stage.
	IncludeFullscreenVertex = "fullscreen_vertex"
)

// ErrUnknownInclude is returned when an include annotation names an unregistered source.
var ErrUnknownInclude = errors.New("unknown include")

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	includes map[string]string
}

// PreProcessor expands include annotations in WGSL source.
type PreProcessor interface {
	// Process replaces every include annotation in source with the registered WGSL text.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error if an annotation is malformed or names an unknown include
	Process(source string) (string, error)

	// Includes returns the names of all registered includes.
	//
	// Returns:
	//   - []string: the registered include names
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the built-in includes plus any given options.
//
// Parameters:
//   - options: functional options that register extra includes
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor(options ...PreProcessorBuilderOption) PreProcessor {
	p := &preProcessor{
		includes: map[string]string{
			IncludeFocusUniform:     focus.GPUFocusUniformSource,
			IncludeFullscreenVertex: FullscreenVertexSource,
		},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		rest, isComment := strings.CutPrefix(trimmed, "//")
		if !isComment {
			out = append(out, line)
			continue
		}
		arg, isInclude := strings.CutPrefix(strings.TrimSpace(rest), includePrefix)
		if !isInclude {
			out = append(out, line)
			continue
		}
		name := strings.TrimSpace(arg)
		if name == "" || strings.ContainsAny(name, " \t") {
			return "", fmt.Errorf("line %d: malformed include %q", i+1, trimmed)
		}
		src, ok := p.includes[name]
		if !ok {
			return "", fmt.Errorf("line %d: %q: %w", i+1, name, ErrUnknownInclude)
		}
		out = append(out, src)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	names := make([]string, 0, len(p.includes))
	for name := range p.includes {
		names = append(names, name)
	}
	return names
}

// PreProcessorBuilderOption is a functional option applied to a pre-processor via NewPreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithInclude registers an extra include.
//
// Parameters:
//   - name: the include name used in annotations
//   - source: the WGSL text injected in place of the annotation
//
// Returns:
//   - PreProcessorBuilderOption: a function that registers the include
func WithInclude(name, source string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.includes[name] = source
	}
}
