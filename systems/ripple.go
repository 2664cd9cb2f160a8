package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

// RippleParams controls the random area impulse.
type RippleParams struct {
	Chance        float32
	MinPopulation int
	Radius        float32
	CellSpan      int
	Strength      float32
}

// NewRippleParams extracts ripple parameters from the config.
func NewRippleParams(cfg *config.Config) RippleParams {
	return RippleParams{
		Chance:        float32(cfg.Ripple.Chance),
		MinPopulation: cfg.Ripple.MinPopulation,
		Radius:        float32(cfg.Ripple.Radius),
		CellSpan:      cfg.Ripple.CellSpan,
		Strength:      float32(cfg.Ripple.Strength),
	}
}

// RippleSystem occasionally pushes boxes around a random point upward.
type RippleSystem struct {
	grid    *Grid
	rng     *rand.Rand
	params  RippleParams
	scratch []*components.Box
}

// NewRippleSystem creates a ripple system over grid.
func NewRippleSystem(grid *Grid, params RippleParams, rng *rand.Rand) *RippleSystem {
	return &RippleSystem{
		grid:    grid,
		rng:     rng,
		params:  params,
		scratch: make([]*components.Box, 0, 64),
	}
}

// SetParams replaces the ripple parameters.
func (r *RippleSystem) SetParams(params RippleParams) {
	r.params = params
}

// Params returns the current ripple parameters.
func (r *RippleSystem) Params() RippleParams {
	return r.params
}

// Roll decides whether a ripple fires this tick and picks a random live box
// as its center. Populations at or below MinPopulation never ripple.
func (r *RippleSystem) Roll(live []*components.Box) (r2.Vec, bool) {
	if len(live) <= r.params.MinPopulation {
		return r2.Vec{}, false
	}
	if r.rng.Float32() >= r.params.Chance {
		return r2.Vec{}, false
	}
	center := live[r.rng.Intn(len(live))]
	return r2.Vec{X: float64(center.X), Y: float64(center.Y)}, true
}

// Apply raises every box closer than Radius to center, with an effect that
// falls off linearly from Strength at the center to zero at the edge.
// Returns the number of boxes touched.
func (r *RippleSystem) Apply(center r2.Vec) int {
	p := &r.params
	cx, cy := float32(center.X), float32(center.Y)
	r.scratch = r.grid.QueryRadiusInto(r.scratch[:0], cx, cy, p.Radius, p.CellSpan)

	touched := 0
	for _, b := range r.scratch {
		if b.IsDead() {
			continue
		}
		d := float32(math.Hypot(float64(b.X-cx), float64(b.Y-cy)))
		influence := remap(d, 0, p.Radius, p.Strength, 0)
		if influence <= 0 {
			continue
		}
		b.Z += influence
		b.Impulse += influence
		touched++
	}
	clear(r.scratch)
	return touched
}
