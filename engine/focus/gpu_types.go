package focus

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFocusUniformSource is the canonical WGSL definition of the FocusUniform struct.
// Matches GPUFocusUniform layout exactly (32 bytes). Shading programs bind it at @group(0) @binding(0).
//
//go:embed assets/focus_uniform.wgsl
var GPUFocusUniformSource string

// GPUFocusUniform is the GPU-aligned uniform block shared by every pass of a frame.
// Size: 32 bytes (WGSL uniform aligned).
type GPUFocusUniform struct {
	PlaneEquation [4]float32 // offset  0: plane (nx, ny, nz, d)
	FocusDistance float32    // offset 16
	BokehStrength float32    // offset 20
	MaxBlurRadius float32    // offset 24
	BokehMode     uint32     // offset 28
}

// NewGPUFocusUniform packs evaluated parameters into the uniform layout.
//
// Parameters:
//   - p: the frame's focus parameters
//
// Returns:
//   - GPUFocusUniform: the packed uniform block
func NewGPUFocusUniform(p Parameters) GPUFocusUniform {
	return GPUFocusUniform{
		PlaneEquation: [4]float32(p.PlaneEquation),
		FocusDistance: p.FocusDistance,
		BokehStrength: p.BokehStrength,
		MaxBlurRadius: p.MaxBlurRadius,
		BokehMode:     uint32(p.BokehMode),
	}
}

// Size returns the size of the GPUFocusUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (32)
func (g *GPUFocusUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFocusUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFocusUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.PlaneEquation[i]))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.FocusDistance))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.BokehStrength))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.MaxBlurRadius))
	binary.LittleEndian.PutUint32(buf[28:], g.BokehMode)
	return buf
}
