package bokeh

import "github.com/cogentcore/webgpu/wgpu"

// BuilderOption is a functional option applied to a builder during construction via NewBuilder.
type BuilderOption func(*builder)

// WithFloatFormat overrides the format of the circular kernel's partial-sum targets. Build rejects
// formats for which render_graph.IsWideFormat is false with ErrNarrowFormat.
//
// Parameters:
//   - format: a filterable wide-range float texture format
//
// Returns:
//   - BuilderOption: a function that sets the float format
func WithFloatFormat(format wgpu.TextureFormat) BuilderOption {
	return func(b *builder) {
		b.floatFormat = format
	}
}
