package bokeh

import "github.com/Carmen-Shannon/oxy-bokeh/engine/focus"

// sourceRef names the scene color texture in a topology.
const sourceRef = "source"

// textureSpec declares one intermediate texture of a topology.
type textureSpec struct {
	name  string
	half  bool // width and height floor-divided by two
	float bool // wide-range float format instead of the source format
}

// step is one pass of a topology. Inputs and outputs name either sourceRef or a textureSpec.
type step struct {
	name    string
	program ShaderPass
	inputs  []string
	outputs []string
}

// topology is the fixed pass chain for one (bokeh mode, resolution mode) pair.
type topology struct {
	textures []textureSpec
	steps    []step
	// result names the texture that becomes the camera color buffer.
	result string
}

type topologyKey struct {
	bokeh      focus.BokehMode
	resolution focus.ResolutionMode
}

var topologies = map[topologyKey]topology{
	// Two directional blurs at full resolution. The second pass writes back into the scene color
	// buffer, which the first pass has finished reading, so only one intermediate is needed.
	{focus.BokehModeHexagonal, focus.ResolutionFull}: {
		textures: []textureSpec{
			{name: "MiniBokeh Temp"},
		},
		steps: []step{
			{"MiniBokeh Horizontal", ShaderPassHexagonalHorizontal, []string{sourceRef}, []string{"MiniBokeh Temp"}},
			{"MiniBokeh Diagonal", ShaderPassHexagonalDiagonal, []string{"MiniBokeh Temp"}, []string{sourceRef}},
		},
		result: sourceRef,
	},
	{focus.BokehModeHexagonal, focus.ResolutionHalf}: {
		textures: []textureSpec{
			{name: "MiniBokeh Half Source", half: true},
			{name: "MiniBokeh Half Temp", half: true},
			{name: "MiniBokeh Half Blurred", half: true},
			{name: "MiniBokeh Composite"},
		},
		steps: []step{
			{"MiniBokeh Downsample", ShaderPassDownsample, []string{sourceRef}, []string{"MiniBokeh Half Source"}},
			{"MiniBokeh Horizontal Half", ShaderPassHexagonalHorizontal, []string{"MiniBokeh Half Source"}, []string{"MiniBokeh Half Temp"}},
			{"MiniBokeh Diagonal Half", ShaderPassHexagonalDiagonal, []string{"MiniBokeh Half Temp"}, []string{"MiniBokeh Half Blurred"}},
			{"MiniBokeh Upsample", ShaderPassUpsampleComposite, []string{"MiniBokeh Half Blurred", sourceRef}, []string{"MiniBokeh Composite"}},
		},
		result: "MiniBokeh Composite",
	},
	{focus.BokehModeCircular, focus.ResolutionFull}: {
		textures: []textureSpec{
			{name: "CircularDOF HorizR", float: true},
			{name: "CircularDOF HorizG", float: true},
			{name: "CircularDOF HorizB", float: true},
			{name: "CircularDOF Final"},
		},
		steps: []step{
			{"CircularDOF HorizMRT", ShaderPassCircularHorizontalMRT,
				[]string{sourceRef},
				[]string{"CircularDOF HorizR", "CircularDOF HorizG", "CircularDOF HorizB"}},
			{"CircularDOF Vertical", ShaderPassCircularVerticalComposite,
				[]string{sourceRef, "CircularDOF HorizR", "CircularDOF HorizG", "CircularDOF HorizB"},
				[]string{"CircularDOF Final"}},
		},
		result: "CircularDOF Final",
	},
	{focus.BokehModeCircular, focus.ResolutionHalf}: {
		textures: []textureSpec{
			{name: "CircularDOF Downsampled", half: true},
			{name: "CircularDOF HorizR Half", half: true, float: true},
			{name: "CircularDOF HorizG Half", half: true, float: true},
			{name: "CircularDOF HorizB Half", half: true, float: true},
			{name: "CircularDOF Blurred Half", half: true},
			{name: "CircularDOF Final"},
		},
		steps: []step{
			{"CircularDOF Downsample", ShaderPassDownsample, []string{sourceRef}, []string{"CircularDOF Downsampled"}},
			{"CircularDOF HorizMRT Half", ShaderPassCircularHorizontalMRT,
				[]string{"CircularDOF Downsampled"},
				[]string{"CircularDOF HorizR Half", "CircularDOF HorizG Half", "CircularDOF HorizB Half"}},
			{"CircularDOF Vertical Half", ShaderPassCircularVerticalComposite,
				[]string{"CircularDOF Downsampled", "CircularDOF HorizR Half", "CircularDOF HorizG Half", "CircularDOF HorizB Half"},
				[]string{"CircularDOF Blurred Half"}},
			{"CircularDOF Upsample", ShaderPassUpsampleComposite, []string{"CircularDOF Blurred Half", sourceRef}, []string{"CircularDOF Final"}},
		},
		result: "CircularDOF Final",
	},
}

// lookupTopology returns the pass chain for the given modes.
func lookupTopology(bokeh focus.BokehMode, resolution focus.ResolutionMode) (topology, bool) {
	t, ok := topologies[topologyKey{bokeh, resolution}]
	return t, ok
}

// usesFloat reports whether any intermediate of the chain takes the wide-range float format.
func (t topology) usesFloat() bool {
	for _, spec := range t.textures {
		if spec.float {
			return true
		}
	}
	return false
}
