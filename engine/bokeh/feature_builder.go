package bokeh

import "github.com/Carmen-Shannon/oxy-bokeh/engine/camera"

// FeatureBuilderOption is a functional option applied to a feature during construction via NewFeature.
type FeatureBuilderOption func(*feature)

// WithBuilder sets the Builder the feature delegates to.
//
// Parameters:
//   - b: the pass graph builder
//
// Returns:
//   - FeatureBuilderOption: a function that sets the builder
func WithBuilder(b Builder) FeatureBuilderOption {
	return func(f *feature) {
		f.builder = b
	}
}

// WithCameraTypes replaces the set of camera types the feature applies to.
//
// Parameters:
//   - types: the accepted camera types
//
// Returns:
//   - FeatureBuilderOption: a function that sets the accepted camera types
func WithCameraTypes(types ...camera.CameraType) FeatureBuilderOption {
	return func(f *feature) {
		f.cameraTypes = make(map[camera.CameraType]struct{}, len(types))
		for _, t := range types {
			f.cameraTypes[t] = struct{}{}
		}
	}
}
