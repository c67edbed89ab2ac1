package render_graph

import "fmt"

// Lifetime is the span of passes during which a texture's contents must be kept.
type Lifetime struct {
	// FirstPass is the index of the pass that writes the texture, or 0 for imported textures.
	FirstPass int
	// LastPass is the index of the last pass that reads or writes the texture.
	LastPass int
}

// CompiledGraph is the execution plan derived from a Graph: the passes in order, every texture's
// lifetime, and an aliasing assignment for transient textures.
type CompiledGraph struct {
	// Passes are the recorded passes in execution order.
	Passes []Pass
	// Textures are all declared textures in declaration order.
	Textures []TextureInfo
	// Lifetimes maps each used texture to its lifetime.
	Lifetimes map[TextureHandle]Lifetime
	// Slots maps each transient texture to a physical slot. Textures with the same slot never overlap in
	// lifetime and share size and format, so the host may back them with one allocation.
	Slots map[TextureHandle]int
	// SlotCount is the number of physical slots the transient textures need.
	SlotCount int
	// ActiveColor is the texture designated as the camera color buffer.
	ActiveColor TextureHandle
}

// ReleasedAfter returns the transient textures whose last use is pass index i.
//
// Parameters:
//   - i: the pass index
//
// Returns:
//   - []TextureHandle: textures that can be returned to the host allocator after pass i
func (c *CompiledGraph) ReleasedAfter(i int) []TextureHandle {
	var out []TextureHandle
	for _, info := range c.Textures {
		if info.Imported || info.Handle == c.ActiveColor {
			continue
		}
		if lt, ok := c.Lifetimes[info.Handle]; ok && lt.LastPass == i {
			out = append(out, info.Handle)
		}
	}
	return out
}

func (g *graph) Compile() (*CompiledGraph, error) {
	for _, info := range g.textures {
		if !info.Imported && info.Writer < 0 {
			return nil, fmt.Errorf("texture %q (%s): %w", info.Desc.Label, info.Handle, ErrUnwrittenTexture)
		}
	}

	lifetimes := make(map[TextureHandle]Lifetime, len(g.textures))
	touch := func(h TextureHandle, i int) {
		lt, ok := lifetimes[h]
		if !ok {
			first := i
			if g.textures[h-1].Imported {
				first = 0
			}
			lt = Lifetime{FirstPass: first, LastPass: i}
		}
		if i > lt.LastPass {
			lt.LastPass = i
		}
		lifetimes[h] = lt
	}
	for i, p := range g.passes {
		for _, h := range p.Inputs {
			if h.IsValid() {
				touch(h, i)
			}
		}
		for _, h := range p.Outputs {
			touch(h, i)
		}
	}
	if g.activeColor.IsValid() && len(g.passes) > 0 {
		// The active color outlives the graph.
		touch(g.activeColor, len(g.passes)-1)
	}

	slots, slotCount := assignSlots(g.textures, lifetimes, g.activeColor)

	return &CompiledGraph{
		Passes:      g.Passes(),
		Textures:    g.Textures(),
		Lifetimes:   lifetimes,
		Slots:       slots,
		SlotCount:   slotCount,
		ActiveColor: g.activeColor,
	}, nil
}

// assignSlots greedily packs transient textures into physical slots in declaration order. A slot is
// reusable once its previous occupant's last pass is strictly before the new texture's first pass.
// The active color texture always gets its own slot.
func assignSlots(textures []TextureInfo, lifetimes map[TextureHandle]Lifetime, active TextureHandle) (map[TextureHandle]int, int) {
	type slot struct {
		desc     TextureDesc
		lastPass int
		pinned   bool
	}
	var pool []slot
	out := make(map[TextureHandle]int)

	for _, info := range textures {
		if info.Imported {
			continue
		}
		lt, ok := lifetimes[info.Handle]
		if !ok {
			continue
		}
		chosen := -1
		if info.Handle != active {
			for i := range pool {
				if !pool[i].pinned && pool[i].desc.SameShape(info.Desc) && pool[i].lastPass < lt.FirstPass {
					chosen = i
					break
				}
			}
		}
		if chosen < 0 {
			pool = append(pool, slot{desc: info.Desc})
			chosen = len(pool) - 1
		}
		pool[chosen].lastPass = lt.LastPass
		pool[chosen].pinned = info.Handle == active
		out[info.Handle] = chosen
	}
	return out, len(pool)
}
