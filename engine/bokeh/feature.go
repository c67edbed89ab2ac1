package bokeh

import (
	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/camera"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/render_graph"
)

// Feature is the per-camera entry point the host calls once per camera per frame. It filters cameras
// the effect does not apply to and hands the rest to a Builder.
type Feature interface {
	// Record appends the bokeh passes for cam to g. Cameras that are disabled or not of an accepted type
	// are skipped, as are not-ready parameters; in those cases source is returned and g is untouched.
	//
	// Parameters:
	//   - g: the frame's render graph
	//   - cam: the camera being rendered
	//   - params: the focus parameters evaluated for cam this frame
	//   - source: the camera's color buffer, already imported into g
	//
	// Returns:
	//   - render_graph.TextureHandle: the handle that now holds the camera color
	//   - error: an error if graph construction fails
	Record(g render_graph.Graph, cam camera.Camera, params focus.Parameters, source render_graph.TextureHandle) (render_graph.TextureHandle, error)

	// Builder returns the builder the feature delegates to.
	//
	// Returns:
	//   - Builder: the pass graph builder
	Builder() Builder

	// Accepts reports whether the feature applies to cam.
	//
	// Parameters:
	//   - cam: the camera to test
	//
	// Returns:
	//   - bool: true if cam is enabled and of an accepted type
	Accepts(cam camera.Camera) bool
}

type feature struct {
	builder     Builder
	cameraTypes map[camera.CameraType]struct{}
}

var _ Feature = &feature{}

// NewFeature creates a new Feature. By default only game cameras are accepted and a default Builder is
// used.
//
// Parameters:
//   - options: functional options applied to the feature
//
// Returns:
//   - Feature: the new feature
func NewFeature(options ...FeatureBuilderOption) Feature {
	f := &feature{
		cameraTypes: map[camera.CameraType]struct{}{camera.CameraTypeGame: {}},
	}
	for _, opt := range options {
		opt(f)
	}
	if f.builder == nil {
		f.builder = NewBuilder()
	}
	return f
}

func (f *feature) Builder() Builder {
	return f.builder
}

func (f *feature) Accepts(cam camera.Camera) bool {
	if cam == nil || !cam.Enabled() {
		return false
	}
	_, ok := f.cameraTypes[cam.Type()]
	return ok
}

func (f *feature) Record(g render_graph.Graph, cam camera.Camera, params focus.Parameters, source render_graph.TextureHandle) (render_graph.TextureHandle, error) {
	if !f.Accepts(cam) {
		if cam != nil {
			common.Logger().Debug("bokeh skipped camera", "camera", cam.Name(), "type", cam.Type().String())
		}
		return source, nil
	}
	return f.builder.Build(g, source, params)
}
