package render_graph

// GraphBuilderOption is a functional option applied to a graph during construction via NewGraph.
type GraphBuilderOption func(*graph)

// WithLabel sets the graph's debug label.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - GraphBuilderOption: a function that sets the label
func WithLabel(label string) GraphBuilderOption {
	return func(g *graph) {
		g.label = label
	}
}

// WithMaxTextures caps how many transient textures the graph may create. CreateTexture fails with
// ErrAllocationFailed beyond the cap. Zero means unlimited.
//
// Parameters:
//   - n: the texture budget
//
// Returns:
//   - GraphBuilderOption: a function that sets the budget
func WithMaxTextures(n int) GraphBuilderOption {
	return func(g *graph) {
		g.maxTextures = n
	}
}
