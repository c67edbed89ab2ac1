package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()
	if c.Type() != CameraTypeGame || !c.Enabled() {
		t.Fatalf("default camera should be an enabled game camera, got %v enabled=%v", c.Type(), c.Enabled())
	}
	if f := c.Forward(); f != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("default forward = %v, want -Z", f)
	}
}

func TestForward(t *testing.T) {
	c := NewCamera(
		WithPosition(mgl32.Vec3{1, 2, 3}),
		WithTarget(mgl32.Vec3{1, 2, -7}),
	)
	if f := c.Forward(); !f.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("forward = %v, want -Z", f)
	}

	c.SetTarget(c.Position())
	if f := c.Forward(); f != (mgl32.Vec3{0, 0, -1}) {
		t.Fatalf("degenerate forward = %v, want -Z fallback", f)
	}
}

func TestOptions(t *testing.T) {
	c := NewCamera(WithName("preview"), WithType(CameraTypePreview), WithEnabled(false))
	if c.Name() != "preview" || c.Type() != CameraTypePreview || c.Enabled() {
		t.Fatalf("options not applied: %s %v %v", c.Name(), c.Type(), c.Enabled())
	}
	c.SetEnabled(true)
	if !c.Enabled() {
		t.Fatal("SetEnabled(true) did not enable the camera")
	}
	if CameraTypeSceneView.String() != "scene_view" {
		t.Fatalf("unexpected String(): %s", CameraTypeSceneView)
	}
}
