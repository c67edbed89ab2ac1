package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-bokeh/engine/focus"
)

func TestRun(t *testing.T) {
	tests := []struct {
		mode, resolution string
		wantPasses       string
	}{
		{"hexagonal", "full", "passes (2):"},
		{"hex", "half", "passes (4):"},
		{"circular", "full", "passes (2):"},
		{"circular", "half", "passes (4):"},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.resolution, func(t *testing.T) {
			var out bytes.Buffer
			opts := options{mode: tt.mode, resolution: tt.resolution, width: 640, height: 360, planeZ: -10, frames: 3}
			if err := run(opts, &out); err != nil {
				t.Fatalf("run: %v", err)
			}
			if !strings.Contains(out.String(), tt.wantPasses) {
				t.Fatalf("output missing %q:\n%s", tt.wantPasses, out.String())
			}
			if !strings.Contains(out.String(), "focus_distance=10.000 plane_distance=10.000") {
				t.Fatalf("output missing focus and plane distance:\n%s", out.String())
			}
		})
	}
}

func TestRunWritesDOTAndReadsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "focus.json")
	if err := os.WriteFile(cfgPath, []byte(`{"bokeh_mode":"circular","resolution_mode":"half"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	dotPath := filepath.Join(dir, "graph.dot")

	var out bytes.Buffer
	opts := options{configPath: cfgPath, width: 320, height: 240, planeZ: -10, dotPath: dotPath}
	if err := run(opts, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "mode=circular resolution=half") {
		t.Fatalf("config not applied:\n%s", out.String())
	}
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatalf("read DOT: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph") {
		t.Fatalf("DOT output = %q", dot)
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	err := run(options{mode: "octagonal", width: 64, height: 64}, &bytes.Buffer{})
	if !errors.Is(err, focus.ErrUnknownMode) {
		t.Fatalf("err = %v, want ErrUnknownMode", err)
	}
}

func TestReplayDolliesTowardPlane(t *testing.T) {
	opts := options{width: 320, height: 240, planeZ: -10}
	s := newScene(opts, focus.DefaultConfig())

	got, err := replay(s, 4)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	want := []float32{10, 8.75, 7.5, 6.25}
	if len(got) != len(want) {
		t.Fatalf("got %d distances, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-4 {
			t.Fatalf("frame %d focus distance = %v, want %v", i, got[i], want[i])
		}
	}
	if p := s.cam.Position(); p.Z() != 0 {
		t.Fatalf("camera left at %v, want it restored to the origin", p)
	}
}
