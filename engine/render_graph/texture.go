package render_graph

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureHandle is an opaque reference to a texture declared in a Graph. Handles are only meaningful
// inside the graph that issued them and only for the frame the graph is recorded in.
type TextureHandle uint64

// NullHandle is the empty handle. Passes use it to leave an input slot unbound.
const NullHandle TextureHandle = 0

// IsValid reports whether h refers to a texture rather than being the empty handle.
func (h TextureHandle) IsValid() bool {
	return h != NullHandle
}

// String returns a short debug form such as "#3".
func (h TextureHandle) String() string {
	if !h.IsValid() {
		return "#null"
	}
	return fmt.Sprintf("#%d", uint64(h))
}

// TextureDesc describes a 2D color texture. Intermediate textures are usually derived from the scene
// color buffer's descriptor and then overridden.
type TextureDesc struct {
	// Label is a debug name.
	Label string
	// Width and Height are the texture dimensions in texels.
	Width, Height uint32
	// Format is the pixel format.
	Format wgpu.TextureFormat
	// ClearBuffer requests a clear before first use. Fully overwritten intermediates leave it off.
	ClearBuffer bool
	// DepthBufferBits is the depth attachment precision; zero for color-only textures.
	DepthBufferBits uint32
}

// Half returns the descriptor with width and height floor-divided by two. Neither dimension drops
// below one texel, so a 1xN source still yields a valid half-resolution chain.
//
// Returns:
//   - TextureDesc: the half-resolution descriptor
func (d TextureDesc) Half() TextureDesc {
	d.Width = max(d.Width/2, 1)
	d.Height = max(d.Height/2, 1)
	return d
}

// WithFormat returns the descriptor with the pixel format replaced.
//
// Parameters:
//   - format: the new pixel format
//
// Returns:
//   - TextureDesc: the modified descriptor
func (d TextureDesc) WithFormat(format wgpu.TextureFormat) TextureDesc {
	d.Format = format
	return d
}

// WithLabel returns the descriptor with the debug label replaced.
//
// Parameters:
//   - label: the new label
//
// Returns:
//   - TextureDesc: the modified descriptor
func (d TextureDesc) WithLabel(label string) TextureDesc {
	d.Label = label
	return d
}

// SameShape reports whether two descriptors can share backing storage (same size and format).
//
// Parameters:
//   - other: the descriptor to compare against
//
// Returns:
//   - bool: true if the backing storage is interchangeable
func (d TextureDesc) SameShape(other TextureDesc) bool {
	return d.Width == other.Width && d.Height == other.Height && d.Format == other.Format
}

// TextureInfo is the graph's record of one declared texture.
type TextureInfo struct {
	// Handle identifies the texture in the graph.
	Handle TextureHandle
	// Desc is the texture's descriptor.
	Desc TextureDesc
	// Imported is true for textures owned by the host (such as the scene color buffer) rather than created by the graph.
	Imported bool
	// Writer is the index of the pass that writes the texture, or -1 if no pass writes it.
	Writer int
}

// IsWideFormat reports whether a format stores signed values beyond unit range and can still be read
// through a filtering sampler. 32-bit float formats are excluded: they are unfilterable without the
// float32-filterable device feature, and every pass input is bound as a filterable float texture.
//
// Parameters:
//   - format: the pixel format
//
// Returns:
//   - bool: true for filterable signed float formats
func IsWideFormat(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRG16Float, wgpu.TextureFormatR16Float:
		return true
	default:
		return false
	}
}
