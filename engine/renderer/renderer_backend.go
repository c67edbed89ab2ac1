package renderer

import (
	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// ColorTarget is one color attachment of an encoded pass.
type ColorTarget struct {
	// View is the render target.
	View *wgpu.TextureView
	// Clear selects LoadOpClear over LoadOpLoad.
	Clear bool
}

// gpuTexture is a pooled transient render target.
type gpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// Release releases the view and texture.
func (t *gpuTexture) Release() {
	if t == nil {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// RendererBackend is the device-facing half of the Renderer. The Renderer owns graph execution
// policy (pooling, pipeline caching, bind group assembly); the backend owns GPU object creation and
// command encoding.
type RendererBackend interface {
	// Device returns the GPU device.
	//
	// Returns:
	//   - *wgpu.Device: the device, nil for backends without one
	Device() *wgpu.Device

	// Queue returns the device queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue, nil for backends without one
	Queue() *wgpu.Queue

	// CreateTexture creates a 2D render target that can also be sampled.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *gpuTexture: the texture and its default view
	//   - error: an error if the device rejects the allocation
	CreateTexture(desc render_graph.TextureDesc) (*gpuTexture, error)

	// CreateSampler creates a sampler, filling zero fields with clamp-to-edge linear defaults.
	//
	// Parameters:
	//   - label: a debug label
	//   - data: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: an error if sampler creation fails
	CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error)

	// CreateUniformBuffer creates a uniform buffer that can be written from the CPU.
	//
	// Parameters:
	//   - label: a debug label
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if buffer creation fails
	CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// WriteBuffers uploads all staged buffer writes through the queue.
	//
	// Parameters:
	//   - writes: the staged writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// RegisterRenderPipeline creates the bind group layout and render pipeline for p and stores them on it.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// CreateBindGroup creates the bind group for provider against p's layout and stores it on provider.
	//
	// Parameters:
	//   - p: the pipeline whose layout the bind group must match
	//   - provider: the pass resources
	//
	// Returns:
	//   - error: an error if bind group creation fails
	CreateBindGroup(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) error

	// BeginFrame creates the command encoder for one graph execution.
	//
	// Returns:
	//   - error: an error if the encoder could not be created
	BeginFrame() error

	// EncodePass records one full-screen draw into targets.
	//
	// Parameters:
	//   - label: the pass debug label
	//   - p: the pipeline to draw with
	//   - provider: the pass resources, with the bind group created
	//   - targets: the color attachments in order
	EncodePass(label string, p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, targets []ColorTarget)

	// EndFrame finishes the encoder and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the encoder could not be finished
	EndFrame() error

	// Release releases the device and everything created from the instance.
	Release()
}
