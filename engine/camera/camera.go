package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraType identifies what a camera renders for. Post-processing effects only run for game cameras.
type CameraType int

const (
	// CameraTypeGame is a camera rendering the running scene to the player.
	CameraTypeGame CameraType = iota

	// CameraTypeSceneView is an editor/inspection viewport camera.
	CameraTypeSceneView

	// CameraTypePreview is an offscreen thumbnail or material preview camera.
	CameraTypePreview
)

// String returns a human-readable name for the camera type.
func (t CameraType) String() string {
	switch t {
	case CameraTypeGame:
		return "game"
	case CameraTypeSceneView:
		return "scene_view"
	case CameraTypePreview:
		return "preview"
	default:
		return "unknown"
	}
}

type cameraImpl struct {
	mu *sync.Mutex

	name       string
	cameraType CameraType
	enabled    bool

	position mgl32.Vec3
	target   mgl32.Vec3
}

// Camera defines the interface for a camera pose consumed by per-frame effects.
// The camera owns its world-space position and look-at target; the forward vector is derived from them.
type Camera interface {
	// Name returns the debug name of the camera.
	//
	// Returns:
	//   - string: the camera name
	Name() string

	// Type returns what the camera renders for.
	//
	// Returns:
	//   - CameraType: the camera type
	Type() CameraType

	// Enabled reports whether the camera currently renders.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: world-space position
	Position() mgl32.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl32.Vec3: world-space target
	Target() mgl32.Vec3

	// Forward returns the unit vector from the position to the target.
	// When position and target coincide the camera looks down -Z.
	//
	// Returns:
	//   - mgl32.Vec3: unit forward vector
	Forward() mgl32.Vec3

	// SetPosition sets the camera's world-space position.
	//
	// Parameters:
	//   - p: world-space coordinates
	SetPosition(p mgl32.Vec3)

	// SetTarget sets the look-at point.
	//
	// Parameters:
	//   - t: world-space coordinates
	SetTarget(t mgl32.Vec3)

	// SetEnabled toggles rendering for this camera.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new enabled game Camera at the origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		name:       "camera",
		cameraType: CameraTypeGame,
		enabled:    true,
		target:     mgl32.Vec3{0, 0, -1},
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *cameraImpl) Type() CameraType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraType
}

func (c *cameraImpl) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := c.target.Sub(c.position)
	if dir.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return dir.Normalize()
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
}

func (c *cameraImpl) SetTarget(t mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = t
}

func (c *cameraImpl) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}
