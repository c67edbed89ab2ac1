package pipeline

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Bind group 0 layout shared by every full-screen pass.
const (
	// UniformBinding holds the pass's uniform block.
	UniformBinding = 0
	// SamplerBinding holds the linear clamp sampler.
	SamplerBinding = 1
	// FirstInputBinding is the binding of input texture 0; input i binds at FirstInputBinding+i.
	FirstInputBinding = 2
)

// Key identifies a full-screen pipeline: the program it runs, how many textures it samples, and the
// formats of the render targets it writes. One program used with different targets needs one
// pipeline per target combination.
type Key struct {
	Program uint32
	Inputs  int
	Formats []wgpu.TextureFormat
}

// NewKey creates a pipeline key.
//
// Parameters:
//   - program: the shading program selector
//   - inputs: the number of sampled textures
//   - formats: the render target formats in attachment order
//
// Returns:
//   - Key: the key
func NewKey(program uint32, inputs int, formats ...wgpu.TextureFormat) Key {
	return Key{Program: program, Inputs: inputs, Formats: formats}
}

// String returns a stable textual form used for caching and labels.
func (k Key) String() string {
	parts := make([]string, len(k.Formats))
	for i, f := range k.Formats {
		parts[i] = fmt.Sprintf("%v", f)
	}
	return fmt.Sprintf("program=%d inputs=%d targets=[%s]", k.Program, k.Inputs, strings.Join(parts, ","))
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key    Key
	shader shader.Shader

	// GPU objects, populated by the renderer.
	renderPipeline  *wgpu.RenderPipeline
	bindGroupLayout *wgpu.BindGroupLayout

	blendEnabled bool
	blendState   *wgpu.BlendState
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
}

// Pipeline describes a full-screen render pipeline: one shading program drawn as a single triangle
// into one or more color targets, with no depth and no vertex buffers.
type Pipeline interface {
	// Key returns the key this pipeline was created for.
	//
	// Returns:
	//   - Key: the pipeline key
	Key() Key

	// PipelineKey returns the key's string form, used for caching and labels.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader returns the shading program.
	//
	// Returns:
	//   - shader.Shader: the shader
	Shader() shader.Shader

	// Pipeline returns the GPU render pipeline, nil until the renderer creates it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the render pipeline
	Pipeline() *wgpu.RenderPipeline

	// BindGroupLayout returns the GPU layout of bind group 0, nil until the renderer creates it.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the bind group layout
	BindGroupLayout() *wgpu.BindGroupLayout

	// BindGroupLayoutDescriptor describes bind group 0: the uniform block, the sampler, then one
	// filterable 2D float texture per input.
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
	BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor

	// ColorTargets returns one color target state per render target format.
	//
	// Returns:
	//   - []wgpu.ColorTargetState: the fragment targets
	ColorTargets() []wgpu.ColorTargetState

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// BlendState returns the blend state applied to every target when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask applied to every target.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask
	WriteMask() wgpu.ColorWriteMask

	// SetRenderPipeline sets the GPU render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetBindGroupLayout sets the GPU layout of bind group 0.
	//
	// Parameters:
	//   - l: the bind group layout
	SetBindGroupLayout(l *wgpu.BindGroupLayout)

	// Release releases the GPU objects held by this pipeline.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a full-screen Pipeline for the given key and shader.
//
// Parameters:
//   - key: the pipeline key
//   - s: the shading program
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance
func NewPipeline(key Key, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:          key,
		shader:       s,
		blendEnabled: false,
		cullMode:     wgpu.CullModeNone,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
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
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() Key {
	return p.key
}

func (p *pipeline) PipelineKey() string {
	return p.key.String()
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *pipeline) BindGroupLayoutDescriptor() wgpu.BindGroupLayoutDescriptor {
	entries := make([]wgpu.BindGroupLayoutEntry, FirstInputBinding+p.key.Inputs)
	for i := range entries {
		entries[i].Binding = uint32(i)
		entries[i].Visibility = wgpu.ShaderStageFragment
		switch {
		case i == UniformBinding:
			entries[i].Buffer.Type = wgpu.BufferBindingTypeUniform
		case i == SamplerBinding:
			entries[i].Sampler.Type = wgpu.SamplerBindingTypeFiltering
		default:
			entries[i].Texture.SampleType = wgpu.TextureSampleTypeFloat
			entries[i].Texture.ViewDimension = wgpu.TextureViewDimension2D
		}
	}
	return wgpu.BindGroupLayoutDescriptor{
		Label:   p.PipelineKey() + " Layout",
		Entries: entries,
	}
}

func (p *pipeline) ColorTargets() []wgpu.ColorTargetState {
	targets := make([]wgpu.ColorTargetState, len(p.key.Formats))
	for i, format := range p.key.Formats {
		targets[i] = wgpu.ColorTargetState{
			Format:    format,
			WriteMask: p.writeMask,
		}
		if p.blendEnabled {
			targets[i].Blend = p.blendState
		}
	}
	return targets
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetBindGroupLayout(l *wgpu.BindGroupLayout) {
	p.bindGroupLayout = l
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
}
