package render_graph

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes the compiled graph as a Graphviz digraph: textures are boxes, passes are ellipses,
// edges follow reads and writes.
//
// Parameters:
//   - w: the destination writer
//
// Returns:
//   - error: the first write error
func (c *CompiledGraph) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("digraph render_graph {\n  rankdir=LR;\n")
	for _, info := range c.Textures {
		style := ""
		if info.Imported {
			style = ", style=dashed"
		}
		if info.Handle == c.ActiveColor {
			style += ", peripheries=2"
		}
		fmt.Fprintf(&b, "  t%d [shape=box, label=\"%s\\n%dx%d\"%s];\n",
			info.Handle, info.Desc.Label, info.Desc.Width, info.Desc.Height, style)
	}
	for i, p := range c.Passes {
		fmt.Fprintf(&b, "  p%d [shape=ellipse, label=\"%d: %s\\nprogram %d\"];\n", i, i, p.Name, p.Program)
		for slot, h := range p.Inputs {
			if h.IsValid() {
				fmt.Fprintf(&b, "  t%d -> p%d [label=\"in%d\"];\n", h, i, slot)
			}
		}
		for slot, h := range p.Outputs {
			fmt.Fprintf(&b, "  p%d -> t%d [label=\"rt%d\"];\n", i, h, slot)
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes a human-readable listing of passes, textures, lifetimes and aliasing slots.
//
// Parameters:
//   - w: the destination writer
//
// Returns:
//   - error: the first write error
func (c *CompiledGraph) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "passes (%d):\n", len(c.Passes))
	for i, p := range c.Passes {
		fmt.Fprintf(&b, "  %d  %-32s program=%d in=%v out=%v\n", i, p.Name, p.Program, p.BoundInputs(), p.Outputs)
	}
	fmt.Fprintf(&b, "textures (%d, %d physical slots):\n", len(c.Textures), c.SlotCount)
	for _, info := range c.Textures {
		kind := "transient"
		if info.Imported {
			kind = "imported"
		}
		lt, used := c.Lifetimes[info.Handle]
		span := "unused"
		if used {
			span = fmt.Sprintf("passes %d..%d", lt.FirstPass, lt.LastPass)
		}
		slot := "-"
		if s, ok := c.Slots[info.Handle]; ok {
			slot = fmt.Sprintf("%d", s)
		}
		active := ""
		if info.Handle == c.ActiveColor {
			active = " (active color)"
		}
		fmt.Fprintf(&b, "  %-4s %-28s %5dx%-5d format=%v %-9s slot=%s %s%s\n",
			info.Handle, info.Desc.Label, info.Desc.Width, info.Desc.Height, info.Desc.Format, kind, slot, span, active)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
