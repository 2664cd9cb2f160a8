package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

// Renderable is the draw-ready view of one box.
type Renderable struct {
	X, Y, Z     float32
	Alpha       uint8
	StrokeWidth float32
}

// RenderParams maps box state to drawing attributes.
type RenderParams struct {
	Scale          float32 // displacement amplitude that spans the stroke range
	StrokeWidthMin float32
	StrokeWidthMax float32
}

// NewRenderParams extracts render parameters from the config.
func NewRenderParams(cfg *config.Config) RenderParams {
	return RenderParams{
		Scale:          float32(cfg.Box.SpacingScale),
		StrokeWidthMin: float32(cfg.Render.StrokeWidthMin),
		StrokeWidthMax: float32(cfg.Render.StrokeWidthMax),
	}
}

// StrokeWidth maps a depth in [-Scale, Scale] to a stroke width, clamped to
// the configured range.
func (p RenderParams) StrokeWidth(z float32) float32 {
	if p.Scale <= 0 {
		return p.StrokeWidthMin
	}
	w := remap(z, -p.Scale, p.Scale, p.StrokeWidthMin, p.StrokeWidthMax)
	return clampf(w, p.StrokeWidthMin, p.StrokeWidthMax)
}

// CollectRenderables appends a renderable for every live box inside bounds.
// Boxes outside bounds are neither drawn nor removed.
func CollectRenderables(dst []Renderable, live []*components.Box, bounds r2.Box, p RenderParams) []Renderable {
	for _, b := range live {
		if b.IsDead() {
			continue
		}
		if !bounds.Contains(r2.Vec{X: float64(b.X), Y: float64(b.Y)}) {
			continue
		}
		z := b.RenderZ()
		dst = append(dst, Renderable{
			X:           b.X,
			Y:           b.Y,
			Z:           z,
			Alpha:       uint8(clampf(b.Alpha, 0, 255)),
			StrokeWidth: p.StrokeWidth(z),
		})
	}
	return dst
}
