package focus

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FallbackFocusDistance is the focus distance used when the camera's forward ray never reaches the
// reference plane (parallel, or the plane is behind the camera). Everything in view is then nearer than the
// focal distance, so blur is driven by the plane distance alone.
const FallbackFocusDistance float32 = 1e6

// ErrUnknownMode is returned when a bokeh or resolution mode name is not recognized.
var ErrUnknownMode = errors.New("unknown mode")

// Parameters is the per-frame output of the evaluator. It is a plain value rebuilt every frame and
// shared read-only by every pass of that frame's graph. The zero value means "not ready".
type Parameters struct {
	// Ready is false when the reference plane is unset or the effect is disabled; no passes are recorded.
	Ready bool
	// PlaneEquation is the reference plane (nx, ny, nz, d) with a unit normal.
	PlaneEquation mgl32.Vec4
	// FocusDistance is the effective focus distance, always >= 0.
	FocusDistance float32
	// BokehStrength is the clamped blur growth factor.
	BokehStrength float32
	// MaxBlurRadius is the clamped kernel extent cap in working-resolution texels.
	MaxBlurRadius float32
	// BokehMode selects the pass topology.
	BokehMode BokehMode
	// ResolutionMode selects the working resolution.
	ResolutionMode ResolutionMode
}

// Evaluate computes the focus parameters for one camera and frame. It is a pure function: nothing
// is retained between calls.
//
// Parameters:
//   - cameraPosition: world-space camera position
//   - cameraForward: unit forward vector of the camera
//   - plane: the reference plane transform, nil when unset
//   - cfg: the user tunables
//
// Returns:
//   - Parameters: the evaluated parameters, or the not-ready zero value when plane is nil
func Evaluate(cameraPosition, cameraForward mgl32.Vec3, plane *common.Transform, cfg Config) Parameters {
	if plane == nil {
		return Parameters{}
	}
	cfg = cfg.Clamped()

	return Parameters{
		Ready:          true,
		PlaneEquation:  common.PlaneEquation(plane.Up, plane.Position),
		FocusDistance:  effectiveFocusDistance(cameraPosition, cameraForward, plane, cfg),
		BokehStrength:  cfg.BokehStrength,
		MaxBlurRadius:  cfg.MaxBlurRadius,
		BokehMode:      cfg.BokehMode,
		ResolutionMode: cfg.ResolutionMode,
	}
}

// effectiveFocusDistance returns the fixed distance when auto focus is off, otherwise the distance
// along the camera ray to the plane, or FallbackFocusDistance on a miss.
func effectiveFocusDistance(position, forward mgl32.Vec3, plane *common.Transform, cfg Config) float32 {
	if !cfg.AutoFocus {
		return cfg.FocusDistance
	}
	if d, ok := common.RaycastPlane(position, forward, plane.Up, plane.Position); ok {
		return d
	}
	return FallbackFocusDistance
}
