package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/bokeh"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// execute runs g on a headless device. The scene color is a blank texture owned by this function.
func execute(s *scene, g render_graph.Graph, src render_graph.TextureHandle, opts options) error {
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU,
		renderer.WithLabel("bokehgraph"),
		renderer.WithForceSoftwareRenderer(opts.software),
		renderer.WithMaxIdleFrames(opts.maxIdle),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	if err := bokeh.LoadPrograms(r.Programs(), opts.kernelsDir); err != nil {
		return err
	}

	color, err := r.Device().CreateTexture(&wgpu.TextureDescriptor{
		Label: s.colorDesc.Label,
		Size: wgpu.Extent3D{
			Width:              s.colorDesc.Width,
			Height:             s.colorDesc.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        s.colorDesc.Format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("failed to create scene color: %w", err)
	}
	defer color.Release()

	view, err := color.CreateView(nil)
	if err != nil {
		return fmt.Errorf("failed to create scene color view: %w", err)
	}
	defer view.Release()

	if _, err := r.Execute(g, map[render_graph.TextureHandle]*wgpu.TextureView{src: view}); err != nil {
		return err
	}
	r.EndFrame()

	stats := r.PoolStats()
	common.Logger().Info("graph executed",
		"passes", r.FrameStats().Passes,
		"pipelines", r.PipelineCount(),
		"allocations", stats.Allocations,
		"reuses", stats.Reuses,
	)
	return nil
}
