package renderer

import (
	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/pipeline"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithProgramLibrary sets the library that resolves pass program selectors to shaders.
//
// Parameters:
//   - l: the ProgramLibrary to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the program library option to a renderer
func WithProgramLibrary(l ProgramLibrary) RendererBuilderOption {
	return func(r *renderer) {
		r.programs = l
	}
}

// WithSampler sets the configuration of the sampler shared by every pass.
// Zero-valued fields fall back to clamp-to-edge linear filtering.
//
// Parameters:
//   - data: the sampler configuration
//
// Returns:
//   - RendererBuilderOption: a function that applies the sampler option to a renderer
func WithSampler(data common.SamplerStagingData) RendererBuilderOption {
	return func(r *renderer) {
		r.samplerData = data
	}
}

// WithPipelineOptions sets options applied to every pipeline the renderer registers, such as blending
// or the color write mask. Pipelines already in the cache keep the options they were built with.
//
// Parameters:
//   - opts: the pipeline options
//
// Returns:
//   - RendererBuilderOption: a function that applies the pipeline options to a renderer
func WithPipelineOptions(opts ...pipeline.PipelineBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.pipelineOpts = append(r.pipelineOpts, opts...)
	}
}

// WithMaxIdleFrames sets how many frames a pooled texture may stay unused before it is freed.
//
// Parameters:
//   - frames: the idle frame limit; values below 1 use DefaultMaxIdleFrames
//
// Returns:
//   - RendererBuilderOption: a function that applies the idle frame option to a renderer
func WithMaxIdleFrames(frames int) RendererBuilderOption {
	return func(r *renderer) {
		r.maxIdleFrames = frames
	}
}

// WithLabel sets the prefix used for GPU object debug labels.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - RendererBuilderOption: a function that applies the label option to a renderer
func WithLabel(label string) RendererBuilderOption {
	return func(r *renderer) {
		r.label = label
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to request the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
