package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingImport is returned by Execute when an imported texture has no view in the import map.
var ErrMissingImport = errors.New("imported texture has no view")

// uniformAlignment is the size granularity of uniform buffers.
const uniformAlignment = 16

// FrameStats describes the most recent Execute call.
type FrameStats struct {
	// Passes is the number of passes encoded.
	Passes int
	// Textures is the number of transient textures the graph declared.
	Textures int
	// Slots is the number of physical slots the compiled graph needed.
	Slots int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	label         string
	pipelineCache map[string]pipeline.Pipeline
	pipelineOpts  []pipeline.PipelineBuilderOption
	programs      ProgramLibrary
	pool          TexturePool[*gpuTexture]
	maxIdleFrames int

	backendType RendererBackendType
	backend     RendererBackend

	samplerData common.SamplerStagingData
	sampler     *wgpu.Sampler
	// nullInput is bound to input slots recorded as render_graph.NullHandle.
	nullInput *gpuTexture

	held      []heldTexture
	lastFrame FrameStats

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
}

type heldTexture struct {
	desc    render_graph.TextureDesc
	texture *gpuTexture
}

// passPlan is one graph pass with every GPU object it needs resolved.
type passPlan struct {
	name     string
	pipeline pipeline.Pipeline
	provider bind_group_provider.BindGroupProvider
	targets  []ColorTarget
}

// Renderer executes render graphs on a GPU device.
//
// The Renderer owns the transient texture pool, the pipeline cache and the shared sampler. Hosts hand it
// a recorded graph plus views for every imported texture and receive the view holding the graph's
// active color.
type Renderer interface {
	// Device returns the GPU device used by the backend.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Queue returns the GPU queue used by the backend.
	//
	// Returns:
	//   - *wgpu.Queue: the queue
	Queue() *wgpu.Queue

	// Programs returns the library mapping pass program selectors to shaders.
	//
	// Returns:
	//   - ProgramLibrary: the program library
	Programs() ProgramLibrary

	// Execute compiles g, resolves every pass to a pipeline and bind group, and submits all passes in
	// one command buffer. Transient textures come from the pool and go back to it after their last use,
	// so later passes of the same frame may reuse them.
	//
	// The view returned for a transient active color stays valid until EndFrame.
	//
	// Parameters:
	//   - g: the recorded graph
	//   - imports: views for every imported texture
	//
	// Returns:
	//   - *wgpu.TextureView: the view of the graph's active color, nil if none is set
	//   - error: an error if compilation, resolution or submission fails
	Execute(g render_graph.Graph, imports map[render_graph.TextureHandle]*wgpu.TextureView) (*wgpu.TextureView, error)

	// EndFrame returns held active color textures to the pool and ages idle pool entries.
	// This should be called once per frame after the host is done with the views returned by Execute.
	EndFrame()

	// PoolStats returns the transient texture pool counters.
	//
	// Returns:
	//   - PoolStats: the counters
	PoolStats() PoolStats

	// FrameStats returns statistics for the most recent Execute call.
	//
	// Returns:
	//   - FrameStats: the statistics
	FrameStats() FrameStats

	// PipelineCount returns the number of cached pipelines.
	//
	// Returns:
	//   - int: the cache size
	PipelineCount() int

	// Release releases every pooled texture, cached pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer on a headless device of the requested backend type.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g. BackendTypeWGPU)
//   - options: a variadic list of RendererBuilderOption functions to configure the renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: an error if no device could be created
func NewRenderer(backendType RendererBackendType, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType, options...)

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		b, err := newWGPURendererBackend(r.forceFallbackAdapter)
		if err != nil {
			return nil, err
		}
		r.backend = b
	}

	r.pool = NewTexturePool[*gpuTexture](backendAllocator{backend: r.backend}, r.maxIdleFrames)
	return r, nil
}

// newRendererWithBackend creates a Renderer over an existing backend.
func newRendererWithBackend(backend RendererBackend, options ...RendererBuilderOption) *renderer {
	r := newRenderer(BackendTypeWGPU, options...)
	r.backend = backend
	r.pool = NewTexturePool[*gpuTexture](backendAllocator{backend: backend}, r.maxIdleFrames)
	return r
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		label:         "Bokeh",
		pipelineCache: make(map[string]pipeline.Pipeline),
		maxIdleFrames: DefaultMaxIdleFrames,
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	if r.programs == nil {
		r.programs = NewProgramLibrary(nil)
	}
	return r
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Queue() *wgpu.Queue {
	return r.backend.Queue()
}

func (r *renderer) Programs() ProgramLibrary {
	return r.programs
}

func (r *renderer) Execute(g render_graph.Graph, imports map[render_graph.TextureHandle]*wgpu.TextureView) (*wgpu.TextureView, error) {
	cg, err := g.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", g.Label(), err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	views := make(map[render_graph.TextureHandle]*wgpu.TextureView, len(cg.Textures))
	descs := make(map[render_graph.TextureHandle]render_graph.TextureDesc, len(cg.Textures))
	transient := 0
	for _, info := range cg.Textures {
		descs[info.Handle] = info.Desc
		if !info.Imported {
			transient++
			continue
		}
		v := imports[info.Handle]
		if v == nil {
			return nil, fmt.Errorf("texture %q (%s): %w", info.Desc.Label, info.Handle, ErrMissingImport)
		}
		views[info.Handle] = v
	}

	r.lastFrame = FrameStats{Passes: len(cg.Passes), Textures: transient, Slots: cg.SlotCount}
	if len(cg.Passes) == 0 {
		return views[cg.ActiveColor], nil
	}

	live := make(map[render_graph.TextureHandle]*gpuTexture)
	plans := make([]passPlan, 0, len(cg.Passes))
	abort := func() {
		for _, pp := range plans {
			pp.provider.Release()
		}
		for h, t := range live {
			r.pool.Release(descs[h], t)
		}
	}

	for i, p := range cg.Passes {
		plan, err := r.planPass(i, p, descs, views, live)
		if err != nil {
			abort()
			return nil, err
		}
		plans = append(plans, plan)

		for _, h := range cg.ReleasedAfter(i) {
			if t, ok := live[h]; ok {
				r.pool.Release(descs[h], t)
				delete(live, h)
			}
		}
	}

	writes := make([]bind_group_provider.BufferWrite, 0, len(plans))
	for i, pp := range plans {
		writes = append(writes, bind_group_provider.BufferWrite{
			Provider: pp.provider,
			Binding:  pipeline.UniformBinding,
			Data:     padUniforms(cg.Passes[i].Uniforms),
		})
	}
	r.backend.WriteBuffers(writes)

	if err := r.backend.BeginFrame(); err != nil {
		abort()
		return nil, fmt.Errorf("begin frame: %w", err)
	}
	for _, pp := range plans {
		r.backend.EncodePass(pp.name, pp.pipeline, pp.provider, pp.targets)
	}
	err = r.backend.EndFrame()
	for _, pp := range plans {
		pp.provider.Release()
	}
	if err != nil {
		for h, t := range live {
			r.pool.Release(descs[h], t)
		}
		return nil, fmt.Errorf("submit %s: %w", g.Label(), err)
	}

	// Only the active color can still be live here.
	for h, t := range live {
		r.held = append(r.held, heldTexture{desc: descs[h], texture: t})
	}

	common.Logger().Debug("render graph executed",
		"graph", g.Label(),
		"passes", len(plans),
		"transient_textures", transient,
		"slots", cg.SlotCount,
	)
	return views[cg.ActiveColor], nil
}

// planPass acquires the outputs of pass i and builds its pipeline and bind group.
func (r *renderer) planPass(
	i int,
	p render_graph.Pass,
	descs map[render_graph.TextureHandle]render_graph.TextureDesc,
	views map[render_graph.TextureHandle]*wgpu.TextureView,
	live map[render_graph.TextureHandle]*gpuTexture,
) (passPlan, error) {
	name := fmt.Sprintf("%s #%d", p.Name, i)

	formats := make([]wgpu.TextureFormat, len(p.Outputs))
	targets := make([]ColorTarget, len(p.Outputs))
	for o, h := range p.Outputs {
		desc := descs[h]
		formats[o] = desc.Format

		clearFirst := false
		if _, ok := views[h]; !ok {
			t, err := r.pool.Acquire(desc)
			if err != nil {
				return passPlan{}, fmt.Errorf("pass %s: %w", name, err)
			}
			live[h] = t
			views[h] = t.view
			clearFirst = desc.ClearBuffer
		}
		targets[o] = ColorTarget{View: views[h], Clear: clearFirst}
	}

	pl, err := r.pipelineFor(p, formats)
	if err != nil {
		return passPlan{}, fmt.Errorf("pass %s: %w", name, err)
	}

	sampler, err := r.sharedSampler()
	if err != nil {
		return passPlan{}, fmt.Errorf("pass %s: %w", name, err)
	}

	size := uint64(len(padUniforms(p.Uniforms)))
	buf, err := r.backend.CreateUniformBuffer(name+" Uniforms", size)
	if err != nil {
		return passPlan{}, fmt.Errorf("pass %s: uniform buffer: %w", name, err)
	}

	provider := bind_group_provider.NewBindGroupProvider(name,
		bind_group_provider.WithBuffer(pipeline.UniformBinding, buf),
		bind_group_provider.WithSampler(pipeline.SamplerBinding, sampler),
	)
	for slot, h := range p.Inputs {
		view := views[h]
		if !h.IsValid() {
			null, err := r.nullInputView()
			if err != nil {
				provider.Release()
				return passPlan{}, fmt.Errorf("pass %s: %w", name, err)
			}
			view = null
		}
		provider.SetTextureView(pipeline.FirstInputBinding+slot, view)
	}

	if err := r.backend.CreateBindGroup(pl, provider); err != nil {
		provider.Release()
		return passPlan{}, fmt.Errorf("pass %s: bind group: %w", name, err)
	}

	return passPlan{name: name, pipeline: pl, provider: provider, targets: targets}, nil
}

// pipelineFor returns the cached pipeline for a pass, registering it on first use.
func (r *renderer) pipelineFor(p render_graph.Pass, formats []wgpu.TextureFormat) (pipeline.Pipeline, error) {
	key := pipeline.NewKey(p.Program, len(p.Inputs), formats...)
	if pl, ok := r.pipelineCache[key.String()]; ok {
		return pl, nil
	}

	s, err := resolveProgram(r.programs, p.Program, len(p.BoundInputs()))
	if err != nil {
		return nil, err
	}

	pl := pipeline.NewPipeline(key, s, r.pipelineOpts...)
	if err := r.backend.RegisterRenderPipeline(pl); err != nil {
		return nil, fmt.Errorf("register pipeline %s: %w", key, err)
	}
	r.pipelineCache[key.String()] = pl
	common.Logger().Debug("pipeline registered", "key", key.String(), "shader", s.Key())
	return pl, nil
}

func (r *renderer) sharedSampler() (*wgpu.Sampler, error) {
	if r.sampler != nil {
		return r.sampler, nil
	}
	s, err := r.backend.CreateSampler(r.label+" Sampler", r.samplerData)
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	r.sampler = s
	return s, nil
}

func (r *renderer) nullInputView() (*wgpu.TextureView, error) {
	if r.nullInput != nil {
		return r.nullInput.view, nil
	}
	t, err := r.backend.CreateTexture(render_graph.TextureDesc{
		Label:  r.label + " Null Input",
		Width:  1,
		Height: 1,
		Format: wgpu.TextureFormatRGBA8Unorm,
	})
	if err != nil {
		return nil, fmt.Errorf("null input texture: %w", err)
	}
	r.nullInput = t
	return t.view, nil
}

// padUniforms returns data padded to a non-empty multiple of uniformAlignment bytes.
func padUniforms(data []byte) []byte {
	size := max(common.AlignUp(len(data), uniformAlignment), uniformAlignment)
	if size == len(data) {
		return data
	}
	out := make([]byte, size)
	copy(out, data)
	return out
}

func (r *renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.held {
		r.pool.Release(h.desc, h.texture)
	}
	r.held = r.held[:0]
	r.pool.EndFrame()
}

func (r *renderer) PoolStats() PoolStats {
	return r.pool.Stats()
}

func (r *renderer) FrameStats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFrame
}

func (r *renderer) PipelineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pipelineCache)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, h := range r.held {
		h.texture.Release()
	}
	r.held = nil
	r.pool.Clear()

	for k, pl := range r.pipelineCache {
		pl.Release()
		delete(r.pipelineCache, k)
	}
	if r.sampler != nil {
		r.sampler.Release()
		r.sampler = nil
	}
	r.nullInput.Release()
	r.nullInput = nil

	r.backend.Release()
}

// backendAllocator adapts a RendererBackend to the TexturePool allocator contract.
type backendAllocator struct {
	backend RendererBackend
}

func (a backendAllocator) Allocate(desc render_graph.TextureDesc) (*gpuTexture, error) {
	return a.backend.CreateTexture(desc)
}

func (a backendAllocator) Free(t *gpuTexture) {
	t.Release()
}
