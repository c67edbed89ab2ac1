package bokeh

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultFloatFormat is the wide-range format of the circular kernel's partial-sum targets.
const DefaultFloatFormat = wgpu.TextureFormatRGBA16Float

var (
	// ErrUnsupportedTopology is returned when no pass chain exists for a mode combination.
	ErrUnsupportedTopology = errors.New("unsupported bokeh topology")
	// ErrNarrowFormat is returned when the partial-sum format cannot hold signed values beyond unit range.
	ErrNarrowFormat = errors.New("partial-sum format is not a filterable wide-range format")
)

// Builder records the bokeh passes for one camera into a frame's render graph.
type Builder interface {
	// Build appends the pass chain selected by params to g, reading source and leaving the blurred
	// image as the graph's active color. When params is not ready nothing is allocated or recorded and
	// source is returned unchanged.
	//
	// On error some textures or passes may already be in g, so a later Compile of g fails. The host
	// must discard g and skip the effect for the frame.
	//
	// Parameters:
	//   - g: the frame's render graph
	//   - source: the camera's color buffer, already imported into g
	//   - params: the evaluated focus parameters for this camera
	//
	// Returns:
	//   - render_graph.TextureHandle: the handle that now holds the camera color
	//   - error: an error if the graph rejects an allocation or pass
	Build(g render_graph.Graph, source render_graph.TextureHandle, params focus.Parameters) (render_graph.TextureHandle, error)

	// FloatFormat returns the format used for the partial-sum render targets.
	//
	// Returns:
	//   - wgpu.TextureFormat: the float format
	FloatFormat() wgpu.TextureFormat
}

type builder struct {
	floatFormat wgpu.TextureFormat
}

var _ Builder = &builder{}

// NewBuilder creates a new Builder with the given options.
//
// Parameters:
//   - options: functional options applied to the builder
//
// Returns:
//   - Builder: the new builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{
		floatFormat: DefaultFloatFormat,
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *builder) FloatFormat() wgpu.TextureFormat {
	return b.floatFormat
}

func (b *builder) Build(g render_graph.Graph, source render_graph.TextureHandle, params focus.Parameters) (render_graph.TextureHandle, error) {
	if !params.Ready {
		return source, nil
	}

	topo, ok := lookupTopology(params.BokehMode, params.ResolutionMode)
	if !ok {
		return source, fmt.Errorf("%w: %s/%s", ErrUnsupportedTopology, params.BokehMode, params.ResolutionMode)
	}

	if topo.usesFloat() && !render_graph.IsWideFormat(b.floatFormat) {
		return source, fmt.Errorf("%w: %v", ErrNarrowFormat, b.floatFormat)
	}

	srcDesc, err := g.TextureDesc(source)
	if err != nil {
		return source, fmt.Errorf("failed to resolve source texture: %w", err)
	}

	handles := make(map[string]render_graph.TextureHandle, len(topo.textures)+1)
	handles[sourceRef] = source
	for _, spec := range topo.textures {
		h, err := g.CreateTexture(b.intermediateDesc(srcDesc, spec))
		if err != nil {
			return source, fmt.Errorf("failed to allocate %s: %w", spec.name, err)
		}
		handles[spec.name] = h
	}

	// every pass of the chain binds the same uniform block
	uniform := focus.NewGPUFocusUniform(params)
	uniformBytes := uniform.Marshal()

	for _, s := range topo.steps {
		pass := render_graph.Pass{
			Name:     s.name,
			Program:  uint32(s.program),
			Inputs:   resolve(handles, s.inputs),
			Outputs:  resolve(handles, s.outputs),
			Uniforms: uniformBytes,
		}
		if err := g.AddPass(pass); err != nil {
			return source, fmt.Errorf("failed to record %s: %w", s.name, err)
		}
	}

	result := handles[topo.result]
	if err := g.SetActiveColor(result); err != nil {
		return source, fmt.Errorf("failed to set active color: %w", err)
	}

	common.Logger().Debug("bokeh passes recorded",
		"mode", params.BokehMode.String(),
		"resolution", params.ResolutionMode.String(),
		"passes", len(topo.steps),
		"textures", len(topo.textures),
		"focus_distance", params.FocusDistance,
	)
	return result, nil
}

// intermediateDesc derives an intermediate texture descriptor from the source. Intermediates are never
// cleared and carry no depth.
func (b *builder) intermediateDesc(src render_graph.TextureDesc, spec textureSpec) render_graph.TextureDesc {
	desc := src.WithLabel(spec.name)
	desc.ClearBuffer = false
	desc.DepthBufferBits = 0
	if spec.half {
		desc = desc.Half()
	}
	if spec.float {
		desc = desc.WithFormat(b.floatFormat)
	}
	return desc
}

func resolve(handles map[string]render_graph.TextureHandle, names []string) []render_graph.TextureHandle {
	out := make([]render_graph.TextureHandle, len(names))
	for i, name := range names {
		out[i] = handles[name]
	}
	return out
}
