package bokeh

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type recordingRegistry struct {
	keys map[uint32]string
	fail error
}

func (r *recordingRegistry) RegisterPath(program uint32, key, path string) error {
	if r.fail != nil {
		return r.fail
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	r.keys[program] = key
	return nil
}

func TestShaderPassFileName(t *testing.T) {
	tests := map[ShaderPass]string{
		ShaderPassDownsample:                "downsample.wgsl",
		ShaderPassUpsampleComposite:         "upsample_composite.wgsl",
		ShaderPassHexagonalHorizontal:       "hexagonal_horizontal.wgsl",
		ShaderPassHexagonalDiagonal:         "hexagonal_diagonal.wgsl",
		ShaderPassCircularHorizontalMRT:     "circular_horizontal_mrt.wgsl",
		ShaderPassCircularVerticalComposite: "circular_vertical_composite.wgsl",
	}
	for p, want := range tests {
		if got := p.FileName(); got != want {
			t.Errorf("%s.FileName() = %q, want %q", p, got, want)
		}
	}
}

func TestLoadPrograms(t *testing.T) {
	dir := t.TempDir()
	for i := range ShaderPassCount {
		path := filepath.Join(dir, ShaderPass(i).FileName())
		if err := os.WriteFile(path, []byte("// kernel"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := &recordingRegistry{keys: make(map[uint32]string)}
	if err := LoadPrograms(reg, dir); err != nil {
		t.Fatalf("LoadPrograms: %v", err)
	}
	if len(reg.keys) != ShaderPassCount {
		t.Fatalf("registered %d programs, want %d", len(reg.keys), ShaderPassCount)
	}
	if reg.keys[uint32(ShaderPassCircularHorizontalMRT)] != "bokeh/CircularHorizontalMRT" {
		t.Fatalf("MRT key = %q", reg.keys[uint32(ShaderPassCircularHorizontalMRT)])
	}

	cause := errors.New("bad kernel")
	if err := LoadPrograms(&recordingRegistry{fail: cause}, dir); !errors.Is(err, cause) {
		t.Fatalf("err = %v, want registry error", err)
	}

	if err := os.Remove(filepath.Join(dir, ShaderPassDownsample.FileName())); err != nil {
		t.Fatal(err)
	}
	if err := LoadPrograms(reg, dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}
