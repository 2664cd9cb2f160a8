// Package camera provides the fixed perspective camera over the box field.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera looks down the Z axis at the scene origin from a distance
// proportional to the viewport height. Scene coordinates are centered:
// the viewport spans [-W/2, W/2] x [-H/2, H/2].
type Camera struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Eye distance as a multiple of viewport height
	DistanceFactor float32

	// Vertical field of view in degrees
	FovY float32
}

// New creates a camera for the given viewport.
func New(viewportW, viewportH, distanceFactor, fovY float32) *Camera {
	return &Camera{
		ViewportW:      viewportW,
		ViewportH:      viewportH,
		DistanceFactor: distanceFactor,
		FovY:           fovY,
	}
}

// EyeZ returns the camera distance from the scene plane.
func (c *Camera) EyeZ() float32 {
	return c.ViewportH * c.DistanceFactor
}

// ScreenToScene converts screen pixels to centered scene coordinates.
func (c *Camera) ScreenToScene(sx, sy float32) (x, y float32) {
	return sx - c.ViewportW/2, sy - c.ViewportH/2
}

// SceneToScreen converts centered scene coordinates to screen pixels.
func (c *Camera) SceneToScreen(x, y float32) (sx, sy float32) {
	return x + c.ViewportW/2, y + c.ViewportH/2
}

// SceneBounds returns the scene rectangle covered by the viewport.
func (c *Camera) SceneBounds() r2.Box {
	return c.CullBounds(0)
}

// CullBounds returns the scene rectangle outside of which boxes are not
// drawn: the viewport extended by margin on every side.
func (c *Camera) CullBounds(margin float32) r2.Box {
	halfW := float64(c.ViewportW/2 + margin)
	halfH := float64(c.ViewportH/2 + margin)
	return r2.Box{
		Min: r2.Vec{X: -halfW, Y: -halfH},
		Max: r2.Vec{X: halfW, Y: halfH},
	}
}

// IsVisible returns true if (x, y) lies within the viewport extended by margin.
func (c *Camera) IsVisible(x, y, margin float32) bool {
	return absf(x) <= c.ViewportW/2+margin && absf(y) <= c.ViewportH/2+margin
}

// PlaneHalfHeight returns half the height of the scene plane (z = 0) seen
// through the perspective projection.
func (c *Camera) PlaneHalfHeight() float32 {
	halfFov := float64(c.FovY) * math.Pi / 360
	return c.EyeZ() * float32(math.Tan(halfFov))
}

// Resize updates the viewport dimensions. Returns false if nothing changed.
func (c *Camera) Resize(viewportW, viewportH float32) bool {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return false
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	return true
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
