package focus

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/Carmen-Shannon/oxy-bokeh/engine/camera"
)

type controller struct {
	mu *sync.Mutex

	config         Config
	referencePlane *common.Transform
	enabled        bool
}

// Controller holds the user-configured tunables of the effect for one camera: the reference plane,
// the Config and an enabled flag. It is the only state kept between frames; every frame the
// renderer asks it for a fresh Parameters value.
type Controller interface {
	// Config returns the current tunables.
	//
	// Returns:
	//   - Config: the configuration
	Config() Config

	// ReferencePlane returns the reference plane transform, or nil when unset.
	//
	// Returns:
	//   - *common.Transform: the plane transform or nil
	ReferencePlane() *common.Transform

	// Enabled reports whether the effect runs.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Ready reports whether the effect can run this frame (enabled and a reference plane is set).
	//
	// Returns:
	//   - bool: true if ready
	Ready() bool

	// Evaluate computes this frame's parameters for the given camera.
	// Returns the not-ready zero value when the controller is disabled or has no reference plane.
	//
	// Parameters:
	//   - cam: the camera being rendered
	//
	// Returns:
	//   - Parameters: the evaluated parameters
	Evaluate(cam camera.Camera) Parameters

	// SetConfig replaces the tunables. Tuning warnings are logged.
	//
	// Parameters:
	//   - cfg: the new configuration
	SetConfig(cfg Config)

	// SetReferencePlane sets or clears (nil) the reference plane.
	//
	// Parameters:
	//   - plane: the plane transform
	SetReferencePlane(plane *common.Transform)

	// SetEnabled toggles the effect.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Controller = &controller{}

// NewController creates an enabled Controller with DefaultConfig and no reference plane.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:      &sync.Mutex{},
		config:  DefaultConfig(),
		enabled: true,
	}
	for _, option := range options {
		option(c)
	}
	logWarnings(c.config)
	return c
}

func (c *controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

func (c *controller) ReferencePlane() *common.Transform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.referencePlane
}

func (c *controller) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled && c.referencePlane != nil
}

func (c *controller) Evaluate(cam camera.Camera) Parameters {
	c.mu.Lock()
	enabled, plane, cfg := c.enabled, c.referencePlane, c.config
	c.mu.Unlock()

	if !enabled || plane == nil || cam == nil {
		return Parameters{}
	}
	planeCopy := *plane
	return Evaluate(cam.Position(), cam.Forward(), &planeCopy, cfg)
}

func (c *controller) SetConfig(cfg Config) {
	c.mu.Lock()
	c.config = cfg
	c.mu.Unlock()
	logWarnings(cfg)
}

func (c *controller) SetReferencePlane(plane *common.Transform) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.referencePlane = plane
}

func (c *controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func logWarnings(cfg Config) {
	for _, w := range cfg.Warnings() {
		common.Logger().Warn("focus config", "warning", w)
	}
}
