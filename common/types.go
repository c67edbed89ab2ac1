// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is the world-space placement of a reference object, reduced to what plane-based effects need.
// A nil *Transform means the reference object is unset.
type Transform struct {
	// Position is the world-space origin of the transform.
	Position mgl32.Vec3
	// Up is the transform's local +Y axis expressed in world space. Consumers assume it is unit length.
	Up mgl32.Vec3
}

// NewTransform creates a Transform from a position and an up axis. The up axis is normalized so the
// resulting plane equation always carries a unit normal; a zero up axis falls back to world +Y.
//
// Parameters:
//   - position: world-space origin
//   - up: world-space up axis, any length
//
// Returns:
//   - *Transform: the new transform
func NewTransform(position, up mgl32.Vec3) *Transform {
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return &Transform{
		Position: position,
		Up:       up.Normalize(),
	}
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields are replaced with clamp-to-edge / linear defaults by the renderer.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy caps anisotropic filtering; zero means 1.
	MaxAnisotropy uint16
}
