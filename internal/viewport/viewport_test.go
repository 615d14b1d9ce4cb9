package viewport

import (
	"math"
	"testing"

	"github.com/msalah0e/horizon/internal/workflow"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestNewIsIdentity(t *testing.T) {
	v := New()
	p := workflow.Point{X: 12, Y: -7}
	got := v.ToCanvasSpace(p)
	if got != p {
		t.Errorf("identity viewport moved point: %v -> %v", p, got)
	}
}

func TestPanBy(t *testing.T) {
	v := New()
	v.PanBy(10, -5)
	v.PanBy(2.5, 1)
	if v.PanX != 12.5 || v.PanY != -4 {
		t.Errorf("pan = (%v, %v), want (12.5, -4)", v.PanX, v.PanY)
	}
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	cases := []struct {
		name  string
		start Viewport
		p     workflow.Point
		sign  float64
	}{
		{"zoom in at origin", Viewport{Scale: 1}, workflow.Point{X: 0, Y: 0}, 1},
		{"zoom in off center", Viewport{PanX: 40, PanY: -30, Scale: 1}, workflow.Point{X: 300, Y: 200}, 1},
		{"zoom out scaled", Viewport{PanX: -120, PanY: 75, Scale: 2.2}, workflow.Point{X: 640, Y: 360}, -1},
		{"zoom in near max", Viewport{PanX: 5, PanY: 5, Scale: 2.95}, workflow.Point{X: 100, Y: 50}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.start
			before := v.ToCanvasSpace(tc.p)
			v.ZoomAt(tc.p, tc.sign)
			after := v.ToCanvasSpace(tc.p)
			if !near(before.X, after.X) || !near(before.Y, after.Y) {
				t.Errorf("canvas point under cursor moved: %v -> %v", before, after)
			}
		})
	}
}

func TestZoomStepIsExponential(t *testing.T) {
	v := New()
	v.ZoomAt(workflow.Point{}, 1)
	if !near(v.Scale, math.Exp(0.1)) {
		t.Errorf("scale after one notch = %v, want %v", v.Scale, math.Exp(0.1))
	}
}

func TestZoomClamped(t *testing.T) {
	v := New()
	for i := 0; i < 200; i++ {
		v.ZoomAt(workflow.Point{X: 10, Y: 10}, 1)
		if v.Scale > MaxScale+eps {
			t.Fatalf("scale exceeded max: %v", v.Scale)
		}
	}
	if !near(v.Scale, MaxScale) {
		t.Errorf("scale should saturate at %v, got %v", MaxScale, v.Scale)
	}

	for i := 0; i < 400; i++ {
		v.ZoomAt(workflow.Point{X: 10, Y: 10}, -1)
		if v.Scale < MinScale-eps {
			t.Fatalf("scale below min: %v", v.Scale)
		}
	}
	if !near(v.Scale, MinScale) {
		t.Errorf("scale should saturate at %v, got %v", MinScale, v.Scale)
	}
}

func TestSetClampsScale(t *testing.T) {
	v := New()
	v.Set(1, 2, 10)
	if v.Scale != MaxScale {
		t.Errorf("expected %v, got %v", MaxScale, v.Scale)
	}
	v.Set(1, 2, 0)
	if v.Scale != 1 {
		t.Errorf("zero scale should fall back to 1, got %v", v.Scale)
	}
	v.Set(1, 2, -3)
	if v.Scale != 1 {
		t.Errorf("negative scale should fall back to 1, got %v", v.Scale)
	}
}

func TestScreenCanvasInverse(t *testing.T) {
	v := &Viewport{PanX: 33, PanY: -12, Scale: 1.7}
	p := workflow.Point{X: 250, Y: 410}
	back := v.ToScreenSpace(v.ToCanvasSpace(p))
	if !near(back.X, p.X) || !near(back.Y, p.Y) {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}

func TestDefaultCardOrigin(t *testing.T) {
	v := &Viewport{PanX: 100, PanY: 50, Scale: 2}
	got := v.DefaultCardOrigin(1280, 720)
	// ((640-100)/2 - 100, (360-50)/2 - 60)
	if !near(got.X, 170) || !near(got.Y, 95) {
		t.Errorf("origin = %v, want (170, 95)", got)
	}
}

func TestTransform(t *testing.T) {
	v := &Viewport{PanX: 10.5, PanY: -3, Scale: 1.25}
	if got, want := v.Transform(), "translate(10.5, -3) scale(1.25)"; got != want {
		t.Errorf("Transform() = %q, want %q", got, want)
	}
}
