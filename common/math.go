package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RayPlaneEpsilon is the smallest |dot(normal, direction)| for which a ray is not treated as parallel to a plane.
const RayPlaneEpsilon = 1e-6

// Number is the set of scalar types accepted by Clamp.
type Number interface {
	~int | ~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Clamp restricts v to the closed range [lo, hi]. NaN float inputs are returned as lo.
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound
//   - hi: upper bound
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T Number](v, lo, hi T) T {
	if v != v { // NaN
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlaneEquation builds the 4-component plane (nx, ny, nz, d) through point with the given normal,
// where d = -dot(normal, point). Points p on the plane satisfy dot(n, p) + d == 0.
//
// Parameters:
//   - normal: plane normal, expected to be unit length
//   - point: any point on the plane
//
// Returns:
//   - mgl32.Vec4: the plane equation
func PlaneEquation(normal, point mgl32.Vec3) mgl32.Vec4 {
	return normal.Vec4(-normal.Dot(point))
}

// PlaneDistance returns the signed distance from p to the plane. Positive values lie on the side the normal points to.
//
// Parameters:
//   - plane: plane equation with a unit normal
//   - p: world-space point
//
// Returns:
//   - float32: signed distance
func PlaneDistance(plane mgl32.Vec4, p mgl32.Vec3) float32 {
	return plane.Vec3().Dot(p) + plane[3]
}

// RaycastPlane intersects the ray origin + t*direction (t >= 0) with the plane through point with normal.
// The ray is considered parallel when |dot(normal, direction)| is below RayPlaneEpsilon; hits behind the
// origin are reported as misses.
//
// Parameters:
//   - origin: ray origin
//   - direction: ray direction, expected to be unit length so t is a distance
//   - normal: plane normal
//   - point: any point on the plane
//
// Returns:
//   - float32: the distance along the ray to the hit, 0 on a miss
//   - bool: true if the ray hits the plane
func RaycastPlane(origin, direction, normal, point mgl32.Vec3) (float32, bool) {
	denom := normal.Dot(direction)
	if float32(math.Abs(float64(denom))) < RayPlaneEpsilon {
		return 0, false
	}
	t := normal.Dot(point.Sub(origin)) / denom
	if t < 0 || math.IsInf(float64(t), 0) || math.IsNaN(float64(t)) {
		return 0, false
	}
	return t, true
}
