package shader

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// FullscreenVertexSource is a vertex stage that covers the target with one oversized triangle and
// passes UVs with (0,0) at the top-left. Draw it with three vertices and no vertex buffers.
//
//go:embed assets/fullscreen_vertex.wgsl
var FullscreenVertexSource string

// shader is the implementation of the Shader interface.
type shader struct {
	key                string
	source             string
	vertexEntryPoint   string
	fragmentEntryPoint string
	bindings           []Binding
	module             *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL shading program holding one vertex and one fragment entry point.
// The kernel math is supplied by the host; the shader only records what pipeline creation needs.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// Bindings returns every @group/@binding declaration in the source.
	//
	// Returns:
	//   - []Binding: the declared bindings in source order
	Bindings() []Binding

	// TextureBindings returns how many sampled textures group 0 declares.
	//
	// Returns:
	//   - int: the number of texture inputs the program can sample
	TextureBindings() int

	// Module returns the wgpu.ShaderModuleDescriptor built from the source.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader pre-processes WGSL source and parses its entry points and bindings.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: the raw WGSL source
//   - pp: the pre-processor to expand includes with, nil for the default
//
// Returns:
//   - Shader: the new shader
//   - error: an error if pre-processing fails or an entry point is missing
func NewShader(key, source string, pp PreProcessor) (Shader, error) {
	if pp == nil {
		pp = NewPreProcessor()
	}
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s := &shader{
		key:                key,
		source:             processed,
		vertexEntryPoint:   parseEntryPoint(processed, vertexEntryRegex),
		fragmentEntryPoint: parseEntryPoint(processed, fragmentEntryRegex),
		bindings:           parseBindings(processed),
	}
	if s.vertexEntryPoint == "" || s.fragmentEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: both @vertex and @fragment entry points are required", key)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: processed,
		},
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from a file and creates a Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//   - pp: the pre-processor to expand includes with, nil for the default
//
// Returns:
//   - Shader: the new shader
//   - error: an error if the file cannot be read or the source is invalid
func NewShaderFromPath(key, path string, pp PreProcessor) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader %s: failed to read source file %q: %w", key, path, err)
	}
	return NewShader(key, string(data), pp)
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) Bindings() []Binding {
	return s.bindings
}

func (s *shader) TextureBindings() int {
	n := 0
	for _, b := range s.bindings {
		if b.Group == 0 && b.Kind == BindingKindTexture {
			n++
		}
	}
	return n
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
