package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

// SpawnParams holds the ranges a box draws its per-life parameters from.
type SpawnParams struct {
	Scale            float32
	Speed            float32
	NoiseOffsetRange float32
	RandomFactorMin  float32
	RandomFactorMax  float32
	Lifetime         int32
	MaxAlpha         float32
	SpawnOffsetMin   float32
	SpawnOffsetMax   float32
}

// NewSpawnParams extracts spawn parameters from the config.
func NewSpawnParams(cfg *config.Config) SpawnParams {
	return SpawnParams{
		Scale:            float32(cfg.Box.SpacingScale),
		Speed:            float32(cfg.Box.PhaseSpeed),
		NoiseOffsetRange: float32(cfg.Box.NoiseOffsetRange),
		RandomFactorMin:  float32(cfg.Box.RandomFactorMin),
		RandomFactorMax:  float32(cfg.Box.RandomFactorMax),
		Lifetime:         int32(cfg.Box.LifetimeTicks),
		MaxAlpha:         float32(cfg.Box.MaxAlpha),
		SpawnOffsetMin:   float32(cfg.Box.SpawnOffsetMin),
		SpawnOffsetMax:   float32(cfg.Box.SpawnOffsetMax),
	}
}

// BoxPool recycles boxes across lifetimes.
// The pool owns every box it ever allocated; callers hold *Box handles.
type BoxPool struct {
	grid    *Grid
	rng     *rand.Rand
	params  SpawnParams
	all     []*components.Box
	retired []*components.Box
}

// NewBoxPool creates an empty pool that registers acquired boxes in grid.
func NewBoxPool(grid *Grid, params SpawnParams, rng *rand.Rand) *BoxPool {
	return &BoxPool{
		grid:    grid,
		rng:     rng,
		params:  params,
		all:     make([]*components.Box, 0, 256),
		retired: make([]*components.Box, 0, 256),
	}
}

// SetParams replaces the spawn parameters used by later acquisitions.
func (p *BoxPool) SetParams(params SpawnParams) {
	p.params = params
}

// Params returns the current spawn parameters.
func (p *BoxPool) Params() SpawnParams {
	return p.params
}

// Acquire returns a freshly reset box at (x, y, z), registered in the grid.
// The most recently retired box is reused first.
func (p *BoxPool) Acquire(x, y, z float32) *components.Box {
	var b *components.Box
	if n := len(p.retired); n > 0 {
		b = p.retired[n-1]
		p.retired[n-1] = nil
		p.retired = p.retired[:n-1]
	} else {
		b = &components.Box{ID: uint32(len(p.all))}
		p.all = append(p.all, b)
	}

	b.Reset(x, y, z, p.randomInit())
	p.grid.Insert(b)
	return b
}

// Release parks a box for reuse. The caller must already have removed it from
// the grid and the live set. Releasing an already retired box does nothing.
func (p *BoxPool) Release(b *components.Box) {
	if b.Retired {
		return
	}
	b.Retired = true
	p.retired = append(p.retired, b)
}

// Retired returns the boxes awaiting reuse, oldest first.
func (p *BoxPool) Retired() []*components.Box {
	return p.retired
}

// Allocated returns how many boxes the pool has ever created.
func (p *BoxPool) Allocated() int {
	return len(p.all)
}

// IsRetired reports whether b is parked in the pool.
func (p *BoxPool) IsRetired(b *components.Box) bool {
	for _, r := range p.retired {
		if r == b {
			return true
		}
	}
	return false
}

func (p *BoxPool) randomInit() components.BoxInit {
	prm := &p.params
	return components.BoxInit{
		Angle:        p.rng.Float32() * 2 * math.Pi,
		Scale:        prm.Scale,
		Speed:        prm.Speed,
		NoiseOffsetX: p.rng.Float32() * prm.NoiseOffsetRange,
		NoiseOffsetY: p.rng.Float32() * prm.NoiseOffsetRange,
		RandomFactor: randRange(p.rng, prm.RandomFactorMin, prm.RandomFactorMax),
		Lifetime:     prm.Lifetime,
		Alpha:        prm.MaxAlpha,
		SpawnOffset:  randRange(p.rng, prm.SpawnOffsetMin, prm.SpawnOffsetMax),
	}
}

// randRange returns a uniform value in [lo, hi).
func randRange(rng *rand.Rand, lo, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
