package focus

import "github.com/Carmen-Shannon/oxy-bokeh/common"

// ControllerBuilderOption is a functional option applied to a controller during construction via NewController.
type ControllerBuilderOption func(*controller)

// WithConfig sets the controller's tunables.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - ControllerBuilderOption: a function that sets the configuration
func WithConfig(cfg Config) ControllerBuilderOption {
	return func(c *controller) {
		c.config = cfg
	}
}

// WithReferencePlane sets the reference plane the focal plane is derived from.
//
// Parameters:
//   - plane: the plane transform
//
// Returns:
//   - ControllerBuilderOption: a function that sets the reference plane
func WithReferencePlane(plane *common.Transform) ControllerBuilderOption {
	return func(c *controller) {
		c.referencePlane = plane
	}
}

// WithEnabled sets whether the effect runs.
//
// Parameters:
//   - enabled: true to enable
//
// Returns:
//   - ControllerBuilderOption: a function that sets the enabled flag
func WithEnabled(enabled bool) ControllerBuilderOption {
	return func(c *controller) {
		c.enabled = enabled
	}
}
