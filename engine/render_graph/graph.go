package render_graph

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bokeh/common"
)

// MaxColorAttachments is the most outputs a single pass may write (MRT).
const MaxColorAttachments = 4

// MaxPassInputs is the most texture inputs a single pass may bind.
const MaxPassInputs = 4

var (
	// ErrInvalidHandle is returned when a pass or query names a handle the graph never issued.
	ErrInvalidHandle = errors.New("invalid texture handle")
	// ErrForwardReference is returned when a pass reads a texture no earlier pass has produced.
	ErrForwardReference = errors.New("texture read before it is produced")
	// ErrReadWriteHazard is returned when a pass reads and writes the same texture.
	ErrReadWriteHazard = errors.New("texture read and written by the same pass")
	// ErrMultipleWriters is returned when a texture is written by more than one pass.
	ErrMultipleWriters = errors.New("texture written by more than one pass")
	// ErrAttachmentCount is returned when a pass has no outputs, too many outputs or too many inputs.
	ErrAttachmentCount = errors.New("invalid attachment count")
	// ErrAttachmentSize is returned when the outputs of one pass differ in size.
	ErrAttachmentSize = errors.New("render attachments differ in size")
	// ErrInvalidDescriptor is returned when a texture descriptor has a zero dimension.
	ErrInvalidDescriptor = errors.New("invalid texture descriptor")
	// ErrAllocationFailed is returned when the graph's texture budget is exhausted.
	ErrAllocationFailed = errors.New("texture allocation failed")
	// ErrUnwrittenTexture is returned by Compile when a created texture is never written.
	ErrUnwrittenTexture = errors.New("texture created but never written")
)

// Pass is one full-screen pass: a shading program reading up to MaxPassInputs textures and writing
// one to MaxColorAttachments outputs. Input slots holding NullHandle are left unbound; output i binds
// to color attachment i.
type Pass struct {
	// Name is a debug name.
	Name string
	// Program selects which of the host's shading programs runs.
	Program uint32
	// Inputs are the textures bound for sampling, in slot order.
	Inputs []TextureHandle
	// Outputs are the render targets, in attachment order.
	Outputs []TextureHandle
	// Uniforms is the uniform block bound for the pass. Passes of one effect share the same slice.
	Uniforms []byte
}

// BoundInputs returns the valid input handles in slot order.
//
// Returns:
//   - []TextureHandle: the inputs that are bound
func (p Pass) BoundInputs() []TextureHandle {
	bound := make([]TextureHandle, 0, len(p.Inputs))
	for _, h := range p.Inputs {
		if h.IsValid() {
			bound = append(bound, h)
		}
	}
	return bound
}

type graph struct {
	label       string
	maxTextures int

	textures    []TextureInfo
	passes      []Pass
	activeColor TextureHandle
	created     int
}

// Graph records the passes of one frame and the textures they read and write. It is built,
// executed and discarded within a single frame; handles must not be kept across frames.
// A Graph is not safe for concurrent use.
type Graph interface {
	// Label returns the graph's debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// ImportTexture declares a host-owned texture, such as the current scene color buffer.
	// Imported textures count as produced before the first pass.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - TextureHandle: the handle for the imported texture
	ImportTexture(desc TextureDesc) TextureHandle

	// CreateTexture declares a transient texture owned by the graph.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - TextureHandle: the handle of the new texture
	//   - error: ErrInvalidDescriptor or ErrAllocationFailed
	CreateTexture(desc TextureDesc) (TextureHandle, error)

	// TextureDesc returns the descriptor of a declared texture.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - TextureDesc: the descriptor
	//   - error: ErrInvalidHandle if h is unknown
	TextureDesc(h TextureHandle) (TextureDesc, error)

	// AddPass validates and appends a pass.
	//
	// Parameters:
	//   - p: the pass to record
	//
	// Returns:
	//   - error: a wrapped validation error; the graph is unchanged on error
	AddPass(p Pass) error

	// Passes returns the recorded passes in execution order.
	//
	// Returns:
	//   - []Pass: the passes
	Passes() []Pass

	// Textures returns every declared texture in declaration order.
	//
	// Returns:
	//   - []TextureInfo: the textures
	Textures() []TextureInfo

	// CreatedTextureCount returns how many transient textures were created.
	//
	// Returns:
	//   - int: the number of CreateTexture calls that succeeded
	CreatedTextureCount() int

	// SetActiveColor designates the texture that is the camera's color buffer after this graph runs.
	//
	// Parameters:
	//   - h: the texture handle
	//
	// Returns:
	//   - error: ErrInvalidHandle if h is unknown
	SetActiveColor(h TextureHandle) error

	// ActiveColor returns the designated color texture, NullHandle if none was set.
	//
	// Returns:
	//   - TextureHandle: the active color texture
	ActiveColor() TextureHandle

	// Compile checks the graph is complete and computes texture lifetimes and aliasing slots.
	//
	// Returns:
	//   - *CompiledGraph: the compiled graph
	//   - error: ErrUnwrittenTexture if a created texture is never written
	Compile() (*CompiledGraph, error)
}

var _ Graph = &graph{}

// NewGraph creates an empty Graph.
//
// Parameters:
//   - options: functional options to configure the graph
//
// Returns:
//   - Graph: the new graph
func NewGraph(options ...GraphBuilderOption) Graph {
	g := &graph{
		label: "frame",
	}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *graph) Label() string {
	return g.label
}

func (g *graph) ImportTexture(desc TextureDesc) TextureHandle {
	h := TextureHandle(len(g.textures) + 1)
	g.textures = append(g.textures, TextureInfo{
		Handle:   h,
		Desc:     desc,
		Imported: true,
		Writer:   -1,
	})
	return h
}

func (g *graph) CreateTexture(desc TextureDesc) (TextureHandle, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return NullHandle, fmt.Errorf("texture %q is %dx%d: %w", desc.Label, desc.Width, desc.Height, ErrInvalidDescriptor)
	}
	if g.maxTextures > 0 && g.created >= g.maxTextures {
		return NullHandle, fmt.Errorf("texture %q exceeds budget of %d: %w", desc.Label, g.maxTextures, ErrAllocationFailed)
	}
	h := TextureHandle(len(g.textures) + 1)
	g.textures = append(g.textures, TextureInfo{
		Handle: h,
		Desc:   desc,
		Writer: -1,
	})
	g.created++
	common.Logger().Debug("render graph texture",
		"graph", g.label, "texture", desc.Label, "handle", h.String(),
		"width", desc.Width, "height", desc.Height)
	return h, nil
}

func (g *graph) TextureDesc(h TextureHandle) (TextureDesc, error) {
	info, err := g.info(h)
	if err != nil {
		return TextureDesc{}, err
	}
	return info.Desc, nil
}

func (g *graph) AddPass(p Pass) error {
	if len(p.Outputs) == 0 || len(p.Outputs) > MaxColorAttachments {
		return fmt.Errorf("pass %q has %d outputs: %w", p.Name, len(p.Outputs), ErrAttachmentCount)
	}
	if len(p.Inputs) > MaxPassInputs {
		return fmt.Errorf("pass %q has %d inputs: %w", p.Name, len(p.Inputs), ErrAttachmentCount)
	}

	reads := make(map[TextureHandle]struct{}, len(p.Inputs))
	for slot, h := range p.Inputs {
		if !h.IsValid() {
			continue
		}
		info, err := g.info(h)
		if err != nil {
			return fmt.Errorf("pass %q input %d: %w", p.Name, slot, err)
		}
		if !info.Imported && info.Writer < 0 {
			return fmt.Errorf("pass %q input %d (%s): %w", p.Name, slot, info.Desc.Label, ErrForwardReference)
		}
		reads[h] = struct{}{}
	}

	var first TextureDesc
	seen := make(map[TextureHandle]struct{}, len(p.Outputs))
	for slot, h := range p.Outputs {
		info, err := g.info(h)
		if err != nil {
			return fmt.Errorf("pass %q output %d: %w", p.Name, slot, err)
		}
		if _, ok := reads[h]; ok {
			return fmt.Errorf("pass %q output %d (%s): %w", p.Name, slot, info.Desc.Label, ErrReadWriteHazard)
		}
		if _, ok := seen[h]; ok || info.Writer >= 0 {
			return fmt.Errorf("pass %q output %d (%s): %w", p.Name, slot, info.Desc.Label, ErrMultipleWriters)
		}
		seen[h] = struct{}{}
		if slot == 0 {
			first = info.Desc
		} else if info.Desc.Width != first.Width || info.Desc.Height != first.Height {
			return fmt.Errorf("pass %q output %d is %dx%d, attachment 0 is %dx%d: %w",
				p.Name, slot, info.Desc.Width, info.Desc.Height, first.Width, first.Height, ErrAttachmentSize)
		}
	}

	index := len(g.passes)
	for _, h := range p.Outputs {
		g.textures[h-1].Writer = index
	}
	p.Inputs = append([]TextureHandle(nil), p.Inputs...)
	p.Outputs = append([]TextureHandle(nil), p.Outputs...)
	g.passes = append(g.passes, p)

	common.Logger().Debug("render graph pass",
		"graph", g.label, "pass", p.Name, "index", index, "program", p.Program,
		"inputs", len(reads), "outputs", len(p.Outputs))
	return nil
}

func (g *graph) Passes() []Pass {
	return append([]Pass(nil), g.passes...)
}

func (g *graph) Textures() []TextureInfo {
	return append([]TextureInfo(nil), g.textures...)
}

func (g *graph) CreatedTextureCount() int {
	return g.created
}

func (g *graph) SetActiveColor(h TextureHandle) error {
	if _, err := g.info(h); err != nil {
		return fmt.Errorf("active color: %w", err)
	}
	g.activeColor = h
	return nil
}

func (g *graph) ActiveColor() TextureHandle {
	return g.activeColor
}

// info returns the record for h, or ErrInvalidHandle.
func (g *graph) info(h TextureHandle) (TextureInfo, error) {
	if !h.IsValid() || int(h) > len(g.textures) {
		return TextureInfo{}, fmt.Errorf("%s: %w", h, ErrInvalidHandle)
	}
	return g.textures[h-1], nil
}
