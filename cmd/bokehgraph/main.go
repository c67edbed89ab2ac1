// Command bokehgraph records the bokeh pass graph for one camera and prints the compiled plan.
//
// It evaluates the focus parameters for a demo camera looking at a reference plane, builds the passes for
// the selected bokeh and resolution modes, and writes a text listing (and optionally a Graphviz file).
// With -frames it replays graph construction under the profiler; with -kernels it also executes the
// graph on a headless GPU device using WGSL kernels loaded from a directory.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/bokeh"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/camera"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

type options struct {
	configPath string
	mode       string
	resolution string
	width      int
	height     int
	planeZ     float64
	dotPath    string
	frames     int
	kernelsDir string
	software   bool
	maxIdle    int
}

func main() {
	var (
		opts    options
		verbose bool
	)

	flag.StringVar(&opts.configPath, "config", "", "Optional path to a focus config JSON file")
	flag.StringVar(&opts.mode, "mode", "", "Bokeh mode override: hexagonal or circular")
	flag.StringVar(&opts.resolution, "resolution", "", "Resolution mode override: full or half")
	flag.IntVar(&opts.width, "width", 1920, "Scene color width")
	flag.IntVar(&opts.height, "height", 1080, "Scene color height")
	flag.Float64Var(&opts.planeZ, "plane-z", -10, "Z position of the reference plane (camera at origin looking down -Z)")
	flag.StringVar(&opts.dotPath, "dot", "", "Optional path to write the graph as Graphviz DOT")
	flag.IntVar(&opts.frames, "frames", 0, "Replay graph construction this many times under the profiler")
	flag.StringVar(&opts.kernelsDir, "kernels", "", "Optional directory of WGSL kernels; executes the graph on the GPU")
	flag.IntVar(&opts.maxIdle, "max-idle-frames", renderer.DefaultMaxIdleFrames, "Frames a pooled texture may stay unused before it is freed")
	flag.BoolVar(&opts.software, "software", false, "Request the software fallback adapter when executing")
	flag.BoolVar(&verbose, "v", false, "Log graph construction at debug level")
	flag.Parse()

	if opts.width <= 0 || opts.height <= 0 {
		fmt.Fprintln(os.Stderr, "Error: -width and -height must be positive")
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(opts, os.Stdout); err != nil {
		log.Fatalf("bokehgraph: %v", err)
	}
}

// scene is the fixed demo setup the graph is recorded for.
type scene struct {
	cam        camera.Camera
	controller focus.Controller
	feature    bokeh.Feature
	colorDesc  render_graph.TextureDesc
	planeZ     float32
}

func loadConfig(opts options) (focus.Config, error) {
	cfg := focus.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := focus.LoadConfig(opts.configPath)
		if err != nil {
			return focus.Config{}, err
		}
		cfg = loaded
	}
	if opts.mode != "" {
		m, err := focus.ParseBokehMode(opts.mode)
		if err != nil {
			return focus.Config{}, err
		}
		cfg.BokehMode = m
	}
	if opts.resolution != "" {
		r, err := focus.ParseResolutionMode(opts.resolution)
		if err != nil {
			return focus.Config{}, err
		}
		cfg.ResolutionMode = r
	}
	return cfg, nil
}

func newScene(opts options, cfg focus.Config) *scene {
	return &scene{
		cam: camera.NewCamera(
			camera.WithName("Main Camera"),
			camera.WithType(camera.CameraTypeGame),
			camera.WithPosition(mgl32.Vec3{0, 0, 0}),
			camera.WithTarget(mgl32.Vec3{0, 0, -1}),
		),
		controller: focus.NewController(
			focus.WithConfig(cfg),
			focus.WithReferencePlane(common.NewTransform(mgl32.Vec3{0, 0, float32(opts.planeZ)}, mgl32.Vec3{0, 0, 1})),
		),
		feature: bokeh.NewFeature(),
		colorDesc: render_graph.TextureDesc{
			Label:  "Camera Color",
			Width:  uint32(opts.width),
			Height: uint32(opts.height),
			Format: wgpu.TextureFormatRGBA8Unorm,
		},
		planeZ: float32(opts.planeZ),
	}
}

// record builds one frame's graph and returns it with the imported scene color handle.
func (s *scene) record() (render_graph.Graph, render_graph.TextureHandle, error) {
	g := render_graph.NewGraph(render_graph.WithLabel(s.cam.Name()))
	src := g.ImportTexture(s.colorDesc)

	params := s.controller.Evaluate(s.cam)
	out, err := s.feature.Record(g, s.cam, params, src)
	if err != nil {
		return nil, render_graph.NullHandle, err
	}
	if err := g.SetActiveColor(out); err != nil {
		return nil, render_graph.NullHandle, err
	}
	return g, src, nil
}

func run(opts options, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	s := newScene(opts, cfg)

	params := s.controller.Evaluate(s.cam)
	fmt.Fprintf(stdout, "mode=%s resolution=%s focus_distance=%.3f plane_distance=%.3f strength=%.2f max_blur=%.2f\n",
		cfg.BokehMode, cfg.ResolutionMode, params.FocusDistance,
		common.PlaneDistance(params.PlaneEquation, s.cam.Position()), params.BokehStrength, params.MaxBlurRadius)

	g, src, err := s.record()
	if err != nil {
		return err
	}
	cg, err := g.Compile()
	if err != nil {
		return err
	}
	if err := cg.WriteText(stdout); err != nil {
		return err
	}

	if opts.dotPath != "" {
		f, err := os.Create(opts.dotPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.dotPath, err)
		}
		if err := cg.WriteDOT(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if opts.frames > 0 {
		if _, err := replay(s, opts.frames); err != nil {
			return err
		}
	}

	if opts.kernelsDir != "" {
		return execute(s, g, src, opts)
	}
	return nil
}

// replay records the frame graph repeatedly to profile CPU-side construction. The camera dollies
// halfway toward the reference plane over the run so auto focus is re-evaluated every frame, then
// returns to its starting pose.
func replay(s *scene, frames int) ([]float32, error) {
	start, forward := s.cam.Position(), s.cam.Forward()
	defer func() {
		s.cam.SetPosition(start)
		s.cam.SetTarget(start.Add(forward))
	}()

	travel := s.planeZ - start.Z()
	distances := make([]float32, 0, frames)
	p := profiler.NewProfiler()
	for i := range frames {
		pos := mgl32.Vec3{start.X(), start.Y(), start.Z() + travel*float32(i)/float32(2*frames)}
		s.cam.SetPosition(pos)
		s.cam.SetTarget(pos.Add(forward))

		g, _, err := s.record()
		if err != nil {
			return nil, err
		}
		distances = append(distances, s.controller.Evaluate(s.cam).FocusDistance)
		p.Tick(len(g.Passes()), g.CreatedTextureCount())
	}
	return distances, nil
}
