package bokeh

import "fmt"

// ShaderPass selects one of the fixed kernel variants of the bokeh shading program. The values are
// the pass indices of the shading program and are recorded as render_graph.Pass.Program.
type ShaderPass uint32

const (
	// ShaderPassDownsample reduces the source to half resolution.
	ShaderPassDownsample ShaderPass = iota

	// ShaderPassUpsampleComposite upsamples the half-resolution blur (input 0) and composites it over the
	// full-resolution source (input 1) by per-pixel blur radius.
	ShaderPassUpsampleComposite

	// ShaderPassHexagonalHorizontal is the first directional blur of the hexagonal bokeh.
	ShaderPassHexagonalHorizontal

	// ShaderPassHexagonalDiagonal is the second directional blur of the hexagonal bokeh.
	ShaderPassHexagonalDiagonal

	// ShaderPassCircularHorizontalMRT convolves each color channel horizontally with the complex disc
	// kernel and writes the three partial sums to three float render targets.
	ShaderPassCircularHorizontalMRT

	// ShaderPassCircularVerticalComposite convolves the three partial sums vertically, recombines them
	// into color and clamps to display range. Input 0 is the pass's color source, inputs 1-3 the partial sums.
	ShaderPassCircularVerticalComposite

	shaderPassCount
)

// ShaderPassCount is the number of kernel variants a shading program must provide.
const ShaderPassCount = int(shaderPassCount)

// String returns the kernel variant name.
func (p ShaderPass) String() string {
	switch p {
	case ShaderPassDownsample:
		return "Downsample"
	case ShaderPassUpsampleComposite:
		return "UpsampleComposite"
	case ShaderPassHexagonalHorizontal:
		return "HexagonalHorizontal"
	case ShaderPassHexagonalDiagonal:
		return "HexagonalDiagonal"
	case ShaderPassCircularHorizontalMRT:
		return "CircularHorizontalMRT"
	case ShaderPassCircularVerticalComposite:
		return "CircularVerticalComposite"
	default:
		return fmt.Sprintf("ShaderPass(%d)", uint32(p))
	}
}

// Inputs returns how many texture inputs the kernel variant samples.
func (p ShaderPass) Inputs() int {
	switch p {
	case ShaderPassUpsampleComposite:
		return 2
	case ShaderPassCircularVerticalComposite:
		return 4
	default:
		return 1
	}
}

// Outputs returns how many render targets the kernel variant writes.
func (p ShaderPass) Outputs() int {
	if p == ShaderPassCircularHorizontalMRT {
		return 3
	}
	return 1
}
