package pipeline

import (
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestKeyString(t *testing.T) {
	a := NewKey(4, 1, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA16Float)
	b := NewKey(4, 1, wgpu.TextureFormatRGBA8Unorm)
	if a.String() == b.String() {
		t.Fatal("keys with different target formats must differ")
	}
	if !strings.HasPrefix(a.String(), "program=4 inputs=1 ") {
		t.Fatalf("unexpected key %q", a.String())
	}
}

func TestBindGroupLayoutDescriptor(t *testing.T) {
	p := NewPipeline(NewKey(5, 4, wgpu.TextureFormatRGBA8Unorm), nil)
	desc := p.BindGroupLayoutDescriptor()
	if len(desc.Entries) != FirstInputBinding+4 {
		t.Fatalf("layout has %d entries, want %d", len(desc.Entries), FirstInputBinding+4)
	}
	if desc.Entries[UniformBinding].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Fatal("binding 0 must be the uniform block")
	}
	if desc.Entries[SamplerBinding].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Fatal("binding 1 must be a filtering sampler")
	}
	for i, e := range desc.Entries[FirstInputBinding:] {
		if e.Binding != uint32(FirstInputBinding+i) || e.Texture.SampleType != wgpu.TextureSampleTypeFloat {
			t.Fatalf("input entry %d = %+v", i, e)
		}
	}
}

func TestColorTargets(t *testing.T) {
	key := NewKey(4, 1, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA16Float)
	targets := NewPipeline(key, nil).ColorTargets()
	if len(targets) != 3 {
		t.Fatalf("got %d targets, want 3", len(targets))
	}
	for _, ts := range targets {
		if ts.Blend != nil || ts.WriteMask != wgpu.ColorWriteMaskAll {
			t.Fatalf("default target = %+v, want opaque with full write mask", ts)
		}
	}

	blended := NewPipeline(NewKey(1, 2, wgpu.TextureFormatRGBA8Unorm), nil, WithBlendEnabled(true)).ColorTargets()
	if blended[0].Blend == nil {
		t.Fatal("WithBlendEnabled(true) must attach the blend state")
	}
}

func TestPipelineOptions(t *testing.T) {
	additive := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	}
	p := NewPipeline(NewKey(2, 1, wgpu.TextureFormatRGBA8Unorm), nil,
		WithBlendEnabled(true),
		WithBlendState(additive),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithFrontFace(wgpu.FrontFaceCW),
		WithCullMode(wgpu.CullModeFront),
		WithWriteMask(wgpu.ColorWriteMaskAlpha),
	)

	if p.Topology() != wgpu.PrimitiveTopologyTriangleStrip || p.FrontFace() != wgpu.FrontFaceCW || p.CullMode() != wgpu.CullModeFront {
		t.Fatalf("primitive state = %v/%v/%v", p.Topology(), p.FrontFace(), p.CullMode())
	}
	if p.BlendState() != additive || p.WriteMask() != wgpu.ColorWriteMaskAlpha {
		t.Fatal("blend state or write mask not applied")
	}
	ts := p.ColorTargets()[0]
	if ts.Blend != additive || ts.WriteMask != wgpu.ColorWriteMaskAlpha {
		t.Fatalf("target = %+v", ts)
	}
}
