package render_graph

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func sourceDesc() TextureDesc {
	return TextureDesc{Label: "Scene Color", Width: 1920, Height: 1080, Format: wgpu.TextureFormatRGBA8Unorm}
}

func mustCreate(t *testing.T, g Graph, desc TextureDesc) TextureHandle {
	t.Helper()
	h, err := g.CreateTexture(desc)
	if err != nil {
		t.Fatalf("CreateTexture(%s): %v", desc.Label, err)
	}
	return h
}

func TestHalfFloorDivides(t *testing.T) {
	d := TextureDesc{Width: 1921, Height: 1081}.Half()
	if d.Width != 960 || d.Height != 540 {
		t.Fatalf("Half() = %dx%d, want 960x540", d.Width, d.Height)
	}
	tiny := TextureDesc{Width: 1, Height: 3}.Half()
	if tiny.Width != 1 || tiny.Height != 1 {
		t.Fatalf("Half() = %dx%d, want 1x1", tiny.Width, tiny.Height)
	}
}

func TestIsWideFormat(t *testing.T) {
	tests := []struct {
		format wgpu.TextureFormat
		want   bool
	}{
		{wgpu.TextureFormatRGBA16Float, true},
		{wgpu.TextureFormatRG16Float, true},
		{wgpu.TextureFormatR16Float, true},
		{wgpu.TextureFormatRGBA32Float, false},
		{wgpu.TextureFormatR32Float, false},
		{wgpu.TextureFormatRGBA8Unorm, false},
		{wgpu.TextureFormatBGRA8UnormSrgb, false},
	}
	for _, tt := range tests {
		if got := IsWideFormat(tt.format); got != tt.want {
			t.Errorf("IsWideFormat(%v) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestAddPassValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func(g Graph, src, a, b TextureHandle) Pass
		wantErr error
	}{
		{
			name: "forward reference",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "reads a", Inputs: []TextureHandle{a}, Outputs: []TextureHandle{b}}
			},
			wantErr: ErrForwardReference,
		},
		{
			name: "read write hazard",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "in place", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{src}}
			},
			wantErr: ErrReadWriteHazard,
		},
		{
			name: "unknown handle",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "bogus", Inputs: []TextureHandle{99}, Outputs: []TextureHandle{a}}
			},
			wantErr: ErrInvalidHandle,
		},
		{
			name: "no outputs",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "sink", Inputs: []TextureHandle{src}}
			},
			wantErr: ErrAttachmentCount,
		},
		{
			name: "too many inputs",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "wide", Inputs: []TextureHandle{src, src, src, src, src}, Outputs: []TextureHandle{a}}
			},
			wantErr: ErrAttachmentCount,
		},
		{
			name: "duplicate output",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				return Pass{Name: "twice", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{a, a}}
			},
			wantErr: ErrMultipleWriters,
		},
		{
			name: "mismatched MRT sizes",
			build: func(g Graph, src, a, b TextureHandle) Pass {
				half, _ := g.CreateTexture(sourceDesc().Half().WithLabel("half"))
				return Pass{Name: "mrt", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{a, half}}
			},
			wantErr: ErrAttachmentSize,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			src := g.ImportTexture(sourceDesc())
			a := mustCreate(t, g, sourceDesc().WithLabel("a"))
			b := mustCreate(t, g, sourceDesc().WithLabel("b"))
			err := g.AddPass(tt.build(g, src, a, b))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddPass error = %v, want %v", err, tt.wantErr)
			}
			if len(g.Passes()) != 0 {
				t.Fatal("a rejected pass must not be recorded")
			}
		})
	}
}

func TestSecondWriterRejected(t *testing.T) {
	g := NewGraph()
	src := g.ImportTexture(sourceDesc())
	a := mustCreate(t, g, sourceDesc().WithLabel("a"))
	if err := g.AddPass(Pass{Name: "first", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{a}}); err != nil {
		t.Fatal(err)
	}
	err := g.AddPass(Pass{Name: "second", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{a}})
	if !errors.Is(err, ErrMultipleWriters) {
		t.Fatalf("error = %v, want ErrMultipleWriters", err)
	}
}

func TestNullInputsAreSkipped(t *testing.T) {
	g := NewGraph()
	src := g.ImportTexture(sourceDesc())
	a := mustCreate(t, g, sourceDesc().WithLabel("a"))
	p := Pass{Name: "sparse", Inputs: []TextureHandle{src, NullHandle, NullHandle}, Outputs: []TextureHandle{a}}
	if err := g.AddPass(p); err != nil {
		t.Fatalf("AddPass: %v", err)
	}
	if got := g.Passes()[0].BoundInputs(); len(got) != 1 || got[0] != src {
		t.Fatalf("BoundInputs() = %v, want [%v]", got, src)
	}
}

func TestAllocationBudget(t *testing.T) {
	g := NewGraph(WithMaxTextures(1))
	mustCreate(t, g, sourceDesc())
	if _, err := g.CreateTexture(sourceDesc()); !errors.Is(err, ErrAllocationFailed) {
		t.Fatalf("error = %v, want ErrAllocationFailed", err)
	}
	if _, err := NewGraph().CreateTexture(TextureDesc{Width: 0, Height: 4}); !errors.Is(err, ErrInvalidDescriptor) {
		t.Fatalf("error = %v, want ErrInvalidDescriptor", err)
	}
}

func TestCompileLifetimesAndSlots(t *testing.T) {
	g := NewGraph(WithLabel("chain"))
	src := g.ImportTexture(sourceDesc())
	half := sourceDesc().Half()
	a := mustCreate(t, g, half.WithLabel("a"))
	b := mustCreate(t, g, half.WithLabel("b"))
	c := mustCreate(t, g, half.WithLabel("c"))
	final := mustCreate(t, g, sourceDesc().WithLabel("final"))

	passes := []Pass{
		{Name: "down", Inputs: []TextureHandle{src}, Outputs: []TextureHandle{a}},
		{Name: "h", Inputs: []TextureHandle{a}, Outputs: []TextureHandle{b}},
		{Name: "d", Inputs: []TextureHandle{b}, Outputs: []TextureHandle{c}},
		{Name: "up", Inputs: []TextureHandle{c, src}, Outputs: []TextureHandle{final}},
	}
	for _, p := range passes {
		if err := g.AddPass(p); err != nil {
			t.Fatalf("AddPass(%s): %v", p.Name, err)
		}
	}
	if err := g.SetActiveColor(final); err != nil {
		t.Fatal(err)
	}

	cg, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if lt := cg.Lifetimes[a]; lt.FirstPass != 0 || lt.LastPass != 1 {
		t.Fatalf("lifetime of a = %+v, want 0..1", lt)
	}
	if lt := cg.Lifetimes[src]; lt.FirstPass != 0 || lt.LastPass != 3 {
		t.Fatalf("lifetime of source = %+v, want 0..3", lt)
	}
	// a (0..1) is dead before c is written at pass 2, so they alias.
	if cg.Slots[a] != cg.Slots[c] {
		t.Fatalf("expected a and c to share a slot, got %d and %d", cg.Slots[a], cg.Slots[c])
	}
	if cg.Slots[a] == cg.Slots[b] {
		t.Fatal("a and b overlap and must not share a slot")
	}
	if cg.SlotCount != 3 {
		t.Fatalf("SlotCount = %d, want 3", cg.SlotCount)
	}
	if got := cg.ReleasedAfter(1); len(got) != 1 || got[0] != a {
		t.Fatalf("ReleasedAfter(1) = %v, want [%v]", got, a)
	}
	if got := cg.ReleasedAfter(3); len(got) != 1 || got[0] != c {
		t.Fatalf("ReleasedAfter(3) = %v, want [%v] (final stays alive)", got, c)
	}

	var buf bytes.Buffer
	if err := cg.WriteDOT(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "digraph render_graph") || !strings.Contains(buf.String(), "p3 -> t5") {
		t.Fatalf("unexpected DOT output:\n%s", buf.String())
	}
}

func TestCompileRejectsUnwrittenTexture(t *testing.T) {
	g := NewGraph()
	mustCreate(t, g, sourceDesc())
	if _, err := g.Compile(); !errors.Is(err, ErrUnwrittenTexture) {
		t.Fatalf("error = %v, want ErrUnwrittenTexture", err)
	}
}
