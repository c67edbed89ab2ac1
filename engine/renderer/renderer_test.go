package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/bokeh"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeBackend records what the renderer asks of the device without touching a GPU. Every GPU object
// it hands out is nil or empty so that releasing it is a no-op.
type fakeBackend struct {
	textures     []render_graph.TextureDesc
	samplers     int
	buffers      []uint64
	pipelines    []string
	registered   []pipeline.Pipeline
	bindGroups   int
	frames       int
	passes       []string
	targets      [][]ColorTarget
	writes       []bind_group_provider.BufferWrite
	failTextures error
	inFrame      bool
}

var _ RendererBackend = &fakeBackend{}

func (b *fakeBackend) Device() *wgpu.Device { return nil }
func (b *fakeBackend) Queue() *wgpu.Queue   { return nil }

func (b *fakeBackend) CreateTexture(desc render_graph.TextureDesc) (*gpuTexture, error) {
	if b.failTextures != nil {
		return nil, b.failTextures
	}
	b.textures = append(b.textures, desc)
	return &gpuTexture{}, nil
}

func (b *fakeBackend) CreateSampler(label string, data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.samplers++
	return nil, nil
}

func (b *fakeBackend) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	b.buffers = append(b.buffers, size)
	return nil, nil
}

func (b *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.writes = append(b.writes, writes...)
}

func (b *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.pipelines = append(b.pipelines, p.PipelineKey())
	b.registered = append(b.registered, p)
	return nil
}

func (b *fakeBackend) CreateBindGroup(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider) error {
	b.bindGroups++
	return nil
}

func (b *fakeBackend) BeginFrame() error {
	if b.inFrame {
		return errors.New("frame already open")
	}
	b.inFrame = true
	return nil
}

func (b *fakeBackend) EncodePass(label string, p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, targets []ColorTarget) {
	b.passes = append(b.passes, label)
	b.targets = append(b.targets, targets)
}

func (b *fakeBackend) EndFrame() error {
	b.inFrame = false
	b.frames++
	return nil
}

func (b *fakeBackend) Release() {}

func bokehLibrary(t *testing.T) ProgramLibrary {
	t.Helper()
	l := NewProgramLibrary(nil)
	for i := range bokeh.ShaderPassCount {
		p := bokeh.ShaderPass(i)
		if err := l.RegisterSource(uint32(p), p.String(), testKernel(p.Inputs())); err != nil {
			t.Fatalf("RegisterSource(%s): %v", p, err)
		}
	}
	return l
}

func recordBokeh(t *testing.T, mode focus.BokehMode, res focus.ResolutionMode) (render_graph.Graph, render_graph.TextureHandle) {
	t.Helper()
	cfg := focus.DefaultConfig()
	cfg.BokehMode = mode
	cfg.ResolutionMode = res
	params := focus.Evaluate(mgl32.Vec3{}, mgl32.Vec3{0, 0, -1},
		common.NewTransform(mgl32.Vec3{0, 0, -10}, mgl32.Vec3{0, 0, 1}), cfg)

	g := render_graph.NewGraph(render_graph.WithLabel("frame"))
	src := g.ImportTexture(render_graph.TextureDesc{
		Label:  "Camera Color",
		Width:  1920,
		Height: 1080,
		Format: wgpu.TextureFormatRGBA8Unorm,
	})
	if _, err := bokeh.NewBuilder().Build(g, src, params); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g, src
}

func TestExecuteCircularHalf(t *testing.T) {
	backend := &fakeBackend{}
	r := newRendererWithBackend(backend, WithProgramLibrary(bokehLibrary(t)))

	g, src := recordBokeh(t, focus.BokehModeCircular, focus.ResolutionHalf)
	imports := map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}
	if _, err := r.Execute(g, imports); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(backend.passes) != 4 || backend.frames != 1 {
		t.Fatalf("encoded %d passes in %d frames, want 4 in 1", len(backend.passes), backend.frames)
	}
	if got := len(backend.targets[1]); got != 3 {
		t.Fatalf("MRT pass has %d color targets, want 3", got)
	}
	if len(backend.writes) != 4 {
		t.Fatalf("%d uniform writes, want 4", len(backend.writes))
	}
	for i, w := range backend.writes {
		if len(w.Data) != 32 || w.Binding != pipeline.UniformBinding {
			t.Fatalf("write %d: %d bytes at binding %d", i, len(w.Data), w.Binding)
		}
	}
	if len(backend.pipelines) != 4 {
		t.Fatalf("registered %d pipelines, want 4", len(backend.pipelines))
	}
	if stats := r.FrameStats(); stats.Passes != 4 || stats.Textures != 6 {
		t.Fatalf("FrameStats = %+v", stats)
	}
	if stats := r.PoolStats(); stats.Allocations != 6 || stats.Reuses != 0 {
		t.Fatalf("first frame pool stats = %+v", stats)
	}
	r.EndFrame()

	g, src = recordBokeh(t, focus.BokehModeCircular, focus.ResolutionHalf)
	imports = map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}
	if _, err := r.Execute(g, imports); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	r.EndFrame()

	if stats := r.PoolStats(); stats.Allocations != 6 || stats.Reuses != 6 {
		t.Fatalf("second frame pool stats = %+v", stats)
	}
	if r.PipelineCount() != 4 || len(backend.pipelines) != 4 {
		t.Fatalf("pipelines rebuilt on the second frame: cache %d, registered %d", r.PipelineCount(), len(backend.pipelines))
	}
	if backend.samplers != 1 {
		t.Fatalf("created %d samplers, want 1", backend.samplers)
	}
}

func TestExecuteAliasesWithinFrame(t *testing.T) {
	backend := &fakeBackend{}
	r := newRendererWithBackend(backend, WithProgramLibrary(bokehLibrary(t)))

	g, src := recordBokeh(t, focus.BokehModeHexagonal, focus.ResolutionHalf)
	if _, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// The half-res source is done after the horizontal blur, so the diagonal blur reuses it.
	if stats := r.PoolStats(); stats.Allocations != 3 || stats.Reuses != 1 {
		t.Fatalf("pool stats = %+v, want 3 allocations and 1 reuse", stats)
	}
}

func TestExecuteHexagonalFullWritesSource(t *testing.T) {
	backend := &fakeBackend{}
	r := newRendererWithBackend(backend, WithProgramLibrary(bokehLibrary(t)))

	g, src := recordBokeh(t, focus.BokehModeHexagonal, focus.ResolutionFull)
	view := &wgpu.TextureView{}
	got, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: view})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got != view {
		t.Fatal("active color is not the imported view")
	}
	last := backend.targets[len(backend.targets)-1]
	if len(last) != 1 || last[0].View != view || last[0].Clear {
		t.Fatalf("diagonal pass targets = %+v, want the source loaded in place", last)
	}
}

func TestExecuteErrors(t *testing.T) {
	t.Run("missing import", func(t *testing.T) {
		r := newRendererWithBackend(&fakeBackend{}, WithProgramLibrary(bokehLibrary(t)))
		g, _ := recordBokeh(t, focus.BokehModeCircular, focus.ResolutionFull)
		if _, err := r.Execute(g, nil); !errors.Is(err, ErrMissingImport) {
			t.Fatalf("err = %v, want ErrMissingImport", err)
		}
	})

	t.Run("unknown program", func(t *testing.T) {
		backend := &fakeBackend{}
		r := newRendererWithBackend(backend)
		g, src := recordBokeh(t, focus.BokehModeCircular, focus.ResolutionFull)
		_, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}})
		if !errors.Is(err, ErrUnknownProgram) {
			t.Fatalf("err = %v, want ErrUnknownProgram", err)
		}
		if backend.frames != 0 || len(backend.passes) != 0 {
			t.Fatal("passes were submitted for a failed frame")
		}
		if stats := r.PoolStats(); stats.Idle != stats.Allocations {
			t.Fatalf("acquired textures not returned to the pool: %+v", stats)
		}
	})

	t.Run("allocation failure", func(t *testing.T) {
		backend := &fakeBackend{failTextures: errors.New("device lost")}
		r := newRendererWithBackend(backend, WithProgramLibrary(bokehLibrary(t)))
		g, src := recordBokeh(t, focus.BokehModeHexagonal, focus.ResolutionHalf)
		_, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}})
		if !errors.Is(err, render_graph.ErrAllocationFailed) {
			t.Fatalf("err = %v, want ErrAllocationFailed", err)
		}
	})
}

func TestExecuteBindsNullInputs(t *testing.T) {
	backend := &fakeBackend{}
	l := NewProgramLibrary(nil)
	if err := l.RegisterSource(0, "one-input", testKernel(1)); err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}
	r := newRendererWithBackend(backend, WithProgramLibrary(l))

	for range 2 {
		g := render_graph.NewGraph()
		src := g.ImportTexture(render_graph.TextureDesc{Label: "src", Width: 64, Height: 64, Format: wgpu.TextureFormatRGBA8Unorm})
		out, err := g.CreateTexture(render_graph.TextureDesc{Label: "out", Width: 64, Height: 64, Format: wgpu.TextureFormatRGBA8Unorm})
		if err != nil {
			t.Fatalf("CreateTexture: %v", err)
		}
		if err := g.AddPass(render_graph.Pass{
			Name:    "sparse",
			Inputs:  []render_graph.TextureHandle{src, render_graph.NullHandle},
			Outputs: []render_graph.TextureHandle{out},
		}); err != nil {
			t.Fatalf("AddPass: %v", err)
		}
		if _, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		r.EndFrame()
	}

	nullTextures := 0
	for _, d := range backend.textures {
		if d.Width == 1 && d.Height == 1 {
			nullTextures++
		}
	}
	if nullTextures != 1 {
		t.Fatalf("created %d null input textures, want 1", nullTextures)
	}
	if backend.pipelines[0] != pipeline.NewKey(0, 2, wgpu.TextureFormatRGBA8Unorm).String() {
		t.Fatalf("pipeline key = %q", backend.pipelines[0])
	}
	for _, size := range backend.buffers {
		if size != uniformAlignment {
			t.Fatalf("empty uniform block allocated %d bytes, want %d", size, uniformAlignment)
		}
	}
}

func TestExecuteAppliesPipelineOptions(t *testing.T) {
	backend := &fakeBackend{}
	r := newRendererWithBackend(backend,
		WithProgramLibrary(bokehLibrary(t)),
		WithPipelineOptions(
			pipeline.WithBlendEnabled(true),
			pipeline.WithWriteMask(wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
	)

	g, src := recordBokeh(t, focus.BokehModeHexagonal, focus.ResolutionFull)
	if _, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(backend.registered) != 2 {
		t.Fatalf("registered %d pipelines, want 2", len(backend.registered))
	}
	for _, pl := range backend.registered {
		if !pl.BlendEnabled() || pl.CullMode() != wgpu.CullModeBack {
			t.Fatalf("pipeline %s: blend=%v cull=%v, want options applied", pl.PipelineKey(), pl.BlendEnabled(), pl.CullMode())
		}
		for _, ts := range pl.ColorTargets() {
			if ts.Blend == nil || ts.WriteMask != wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskGreen {
				t.Fatalf("pipeline %s target = %+v", pl.PipelineKey(), ts)
			}
		}
	}
}

func TestMaxIdleFramesEvictsPool(t *testing.T) {
	tests := []struct {
		name          string
		options       []RendererBuilderOption
		wantEvictions int
	}{
		{name: "default keeps textures", wantEvictions: 0},
		{name: "one idle frame", options: []RendererBuilderOption{WithMaxIdleFrames(1)}, wantEvictions: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			r := newRendererWithBackend(backend, append(tt.options, WithProgramLibrary(bokehLibrary(t)))...)

			g, src := recordBokeh(t, focus.BokehModeCircular, focus.ResolutionHalf)
			if _, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: {}}); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			r.EndFrame()
			r.EndFrame()

			stats := r.PoolStats()
			if stats.Evictions != tt.wantEvictions || stats.Idle != 6-tt.wantEvictions {
				t.Fatalf("stats = %+v, want %d evictions", stats, tt.wantEvictions)
			}
		})
	}
}

func TestPadUniforms(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 16}, {4, 16}, {16, 16}, {17, 32}, {32, 32},
	}
	for _, tt := range tests {
		if got := len(padUniforms(make([]byte, tt.in))); got != tt.want {
			t.Errorf("padUniforms(%d bytes) = %d bytes, want %d", tt.in, got, tt.want)
		}
	}
}
