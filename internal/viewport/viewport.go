// Package viewport holds the pan/zoom transform between screen space and
// canvas space.
package viewport

import (
	"fmt"
	"math"

	"github.com/msalah0e/horizon/internal/workflow"
)

// Scale bounds and the per-notch zoom exponent.
const (
	MinScale = 0.1
	MaxScale = 3.0
	ZoomStep = 0.1
)

// Viewport is the pan offset and scale of the canvas.
type Viewport struct {
	PanX  float64
	PanY  float64
	Scale float64
}

// New returns the identity viewport.
func New() *Viewport {
	return &Viewport{Scale: 1}
}

func clamp(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// Set replaces the whole transform. Scale is clamped, a non-positive scale
// falls back to 1.
func (v *Viewport) Set(panX, panY, scale float64) {
	v.PanX = panX
	v.PanY = panY
	v.Scale = clamp(scale)
}

// Reset returns to the identity transform.
func (v *Viewport) Reset() {
	v.Set(0, 0, 1)
}

// PanBy translates the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// ZoomAt rescales by exp(sign*ZoomStep) while keeping the canvas point under
// p fixed on screen. sign is usually +1 (in) or -1 (out).
func (v *Viewport) ZoomAt(p workflow.Point, sign float64) {
	old := clamp(v.Scale)
	next := clamp(old * math.Exp(sign*ZoomStep))
	ratio := next / old
	v.PanX = p.X - (p.X-v.PanX)*ratio
	v.PanY = p.Y - (p.Y-v.PanY)*ratio
	v.Scale = next
}

// ToCanvasSpace maps a screen point into canvas space.
func (v *Viewport) ToCanvasSpace(p workflow.Point) workflow.Point {
	s := clamp(v.Scale)
	return workflow.Point{X: (p.X - v.PanX) / s, Y: (p.Y - v.PanY) / s}
}

// ToScreenSpace maps a canvas point onto the screen.
func (v *Viewport) ToScreenSpace(p workflow.Point) workflow.Point {
	s := clamp(v.Scale)
	return workflow.Point{X: p.X*s + v.PanX, Y: p.Y*s + v.PanY}
}

// DefaultCardOrigin is where a new card lands when no position is given:
// centered in a view of width×height, offset by half a default card.
func (v *Viewport) DefaultCardOrigin(width, height float64) workflow.Point {
	c := v.ToCanvasSpace(workflow.Point{X: width / 2, Y: height / 2})
	return workflow.Point{X: c.X - 100, Y: c.Y - 60}
}

// Transform is the SVG transform attribute applied to the whole scene.
func (v *Viewport) Transform() string {
	return fmt.Sprintf("translate(%s, %s) scale(%s)", num(v.PanX), num(v.PanY), num(clamp(v.Scale)))
}

func num(f float64) string {
	return fmt.Sprintf("%g", math.Round(f*1000)/1000)
}
