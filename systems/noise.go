package systems

import (
	"github.com/ojrac/opensimplex-go"
)

// NoiseField samples smooth 2D noise in [0, 1].
type NoiseField struct {
	noise opensimplex.Noise32
}

// NewNoiseField creates a noise field for the given seed.
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{noise: opensimplex.NewNormalized32(seed)}
}

// Sample returns the noise value at (x, y), clamped to [0, 1].
func (n *NoiseField) Sample(x, y float32) float32 {
	return clamp01(n.noise.Eval2(x, y))
}

// Height maps the sample at (x+t, y+t) onto [-scale, scale]. x and y are in
// noise space.
func (n *NoiseField) Height(x, y, t, scale float32) float32 {
	return lerp(-scale, scale, n.Sample(x+t, y+t))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
