package systems

import (
	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

// UpdateParams holds the per-tick box update parameters.
type UpdateParams struct {
	NoiseScale      float32
	FadeTicks       int32
	MaxAlpha        float32
	SettleDecay     float32
	SettleEpsilon   float32
	NeighborRadius  float32
	NeighborMax     int
	NeighborRefresh int64 // cache is stale once older than this many ticks
	NeighborBlend   float32
	ImpulseDecay    float32
}

// NewUpdateParams extracts update parameters from the config.
func NewUpdateParams(cfg *config.Config) UpdateParams {
	return UpdateParams{
		NoiseScale:      float32(cfg.Box.NoiseScale),
		FadeTicks:       int32(cfg.Box.FadeTicks),
		MaxAlpha:        float32(cfg.Box.MaxAlpha),
		SettleDecay:     float32(cfg.Box.SettleDecay),
		SettleEpsilon:   float32(cfg.Box.SettleEpsilon),
		NeighborRadius:  float32(cfg.Neighbors.Radius),
		NeighborMax:     cfg.Neighbors.MaxResults,
		NeighborRefresh: int64(cfg.Neighbors.RefreshTicks),
		NeighborBlend:   float32(cfg.Neighbors.Blend),
		ImpulseDecay:    float32(cfg.Ripple.Decay),
	}
}

// BoxUpdater advances box state one tick at a time.
type BoxUpdater struct {
	grid    *Grid
	noise   *NoiseField
	params  UpdateParams
	scratch []*components.Box

	// Neighbor queries issued since the last DrainQueries call
	queries int
}

// NewBoxUpdater creates an updater reading neighbors from grid.
func NewBoxUpdater(grid *Grid, noise *NoiseField, params UpdateParams) *BoxUpdater {
	return &BoxUpdater{
		grid:    grid,
		noise:   noise,
		params:  params,
		scratch: make([]*components.Box, 0, 16),
	}
}

// SetParams replaces the update parameters.
func (u *BoxUpdater) SetParams(params UpdateParams) {
	u.params = params
}

// Params returns the current update parameters.
func (u *BoxUpdater) Params() UpdateParams {
	return u.params
}

// DrainQueries returns and resets the neighbor query counter.
func (u *BoxUpdater) DrainQueries() int {
	n := u.queries
	u.queries = 0
	return n
}

// Update advances b by one tick at global time t.
func (u *BoxUpdater) Update(b *components.Box, tick int64, t float32) {
	p := &u.params

	if b.Lifetime > 0 {
		b.Lifetime--
	}

	if !b.Settled {
		b.SpawnOffset *= p.SettleDecay
		if b.SpawnOffset < p.SettleEpsilon {
			b.Settled = true
		}
	}

	if b.Lifetime < p.FadeTicks {
		b.Alpha = float32(b.Lifetime) / float32(p.FadeTicks) * p.MaxAlpha
	}

	if len(b.Neighbors) == 0 || tick-b.NeighborTick > p.NeighborRefresh {
		u.refreshNeighbors(b)
		b.NeighborTick = tick
	}

	// Noise field height plus a phase-shifted oscillation
	z := u.noise.Height(b.X*p.NoiseScale+b.NoiseOffsetX, b.Y*p.NoiseScale+b.NoiseOffsetY, t, b.Scale) * b.RandomFactor
	z += fastSin(b.Angle+t*2) * (b.Scale / 3)

	z += b.Impulse
	b.Impulse *= p.ImpulseDecay

	// Gentle pull toward the neighborhood average
	var sum float32
	active := 0
	for _, ref := range b.Neighbors {
		if ref.Live() {
			sum += ref.Box.Z
			active++
		}
	}
	if active > 0 {
		avg := sum / float32(active)
		z = lerp(z, (z+avg)/2, p.NeighborBlend)
	}

	b.Z = z
	b.Angle = wrapAngle(b.Angle + b.Speed*b.RandomFactor)
}

// refreshNeighbors replaces the neighbor cache with a fresh grid query.
func (u *BoxUpdater) refreshNeighbors(b *components.Box) {
	u.queries++
	u.scratch = u.grid.QueryNeighborsInto(u.scratch[:0], b, u.params.NeighborRadius, u.params.NeighborMax)
	b.Neighbors = b.Neighbors[:0]
	for _, other := range u.scratch {
		b.Neighbors = append(b.Neighbors, components.NeighborRef{Box: other, Gen: other.Gen})
	}
	clear(u.scratch)
}
