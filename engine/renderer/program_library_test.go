package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testKernel returns a minimal full-screen kernel sampling the given number of textures.
func testKernel(inputs int) string {
	var b strings.Builder
	b.WriteString("//@oxy:include focus_uniform\n//@oxy:include fullscreen_vertex\n\n")
	b.WriteString("@group(0) @binding(0) var<uniform> params: FocusUniform;\n")
	b.WriteString("@group(0) @binding(1) var linear_sampler: sampler;\n")
	for i := range inputs {
		fmt.Fprintf(&b, "@group(0) @binding(%d) var input%d: texture_2d<f32>;\n", i+2, i)
	}
	b.WriteString("\n@fragment\nfn fs_main(in: FullscreenOutput) -> @location(0) vec4<f32> {\n")
	b.WriteString("    return textureSample(input0, linear_sampler, in.uv);\n}\n")
	return b.String()
}

func TestProgramLibrary(t *testing.T) {
	l := NewProgramLibrary(nil)
	if err := l.RegisterSource(3, "blur", testKernel(1)); err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}
	if err := l.RegisterSource(5, "composite", testKernel(4)); err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	s, ok := l.Program(5)
	if !ok || s.Key() != "composite" {
		t.Fatalf("Program(5) = %v, %v", s, ok)
	}
	if _, ok := l.Program(4); ok {
		t.Fatal("Program(4) found an unregistered selector")
	}
	if err := l.Register(7, nil); err == nil {
		t.Fatal("Register accepted a nil shader")
	}
	if err := l.RegisterSource(8, "no-entry", "fn helper() {}"); err == nil {
		t.Fatal("RegisterSource accepted a kernel without entry points")
	}
}

func TestProgramLibraryRegisterPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downsample.wgsl")
	if err := os.WriteFile(path, []byte(testKernel(1)), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewProgramLibrary(nil)
	if err := l.RegisterPath(0, "bokeh/Downsample", path); err != nil {
		t.Fatalf("RegisterPath: %v", err)
	}
	s, ok := l.Program(0)
	if !ok || s.Key() != "bokeh/Downsample" || s.TextureBindings() != 1 {
		t.Fatalf("Program(0) = %v, %v", s, ok)
	}

	err := l.RegisterPath(1, "missing", filepath.Join(t.TempDir(), "missing.wgsl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestResolveProgram(t *testing.T) {
	l := NewProgramLibrary(nil)
	if err := l.RegisterSource(1, "upsample", testKernel(2)); err != nil {
		t.Fatalf("RegisterSource: %v", err)
	}

	tests := []struct {
		name    string
		program uint32
		inputs  int
		wantErr error
	}{
		{name: "exact", program: 1, inputs: 2},
		{name: "fewer bound", program: 1, inputs: 1},
		{name: "too many bound", program: 1, inputs: 3, wantErr: ErrProgramInputs},
		{name: "unknown", program: 9, inputs: 1, wantErr: ErrUnknownProgram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveProgram(l, tt.program, tt.inputs)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("resolveProgram: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
