// Package components defines the plain data types shared by the simulation systems.
package components

// BoxState is the lifecycle stage of a box.
type BoxState uint8

const (
	StateSpawning BoxState = iota // sinking into place, settle offset still decaying
	StateAlive                    // settled, ageing
	StateExpired                  // lifetime exhausted, awaiting the sweep
	StateRetired                  // parked in the pool
)

func (s BoxState) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateAlive:
		return "alive"
	case StateExpired:
		return "expired"
	case StateRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// NeighborRef is a cached reference to another box.
// Gen pins the reference to one life of the target; after the target is
// recycled the reference no longer counts.
type NeighborRef struct {
	Box *Box
	Gen uint32
}

// Live reports whether the referenced box is still the same, undead box.
func (n NeighborRef) Live() bool {
	return n.Box != nil && n.Box.Gen == n.Gen && !n.Box.IsDead()
}

// BoxInit carries the randomized parameters for one life of a box.
type BoxInit struct {
	Angle        float32
	Scale        float32
	Speed        float32
	NoiseOffsetX float32
	NoiseOffsetY float32
	RandomFactor float32
	Lifetime     int32
	Alpha        float32
	SpawnOffset  float32
}

// Box is one simulated particle.
type Box struct {
	ID  uint32 // stable for the lifetime of the program
	Gen uint32 // incremented on every reset

	X, Y, Z float32

	Angle        float32 // oscillation phase
	Scale        float32 // displacement amplitude
	Speed        float32 // phase advance per tick
	NoiseOffsetX float32
	NoiseOffsetY float32
	RandomFactor float32

	Lifetime int32
	Alpha    float32

	SpawnOffset float32
	Settled     bool

	// Residual ripple displacement, decays every update
	Impulse float32

	Neighbors    []NeighborRef
	NeighborTick int64

	Retired bool
}

// Reset reinitializes every transient field for a new life at (x, y, z).
// Only ID survives; Gen is advanced so stale neighbor references lapse.
func (b *Box) Reset(x, y, z float32, init BoxInit) {
	b.Gen++
	b.X, b.Y, b.Z = x, y, z
	b.Angle = init.Angle
	b.Scale = init.Scale
	b.Speed = init.Speed
	b.NoiseOffsetX = init.NoiseOffsetX
	b.NoiseOffsetY = init.NoiseOffsetY
	b.RandomFactor = init.RandomFactor
	b.Lifetime = init.Lifetime
	b.Alpha = init.Alpha
	b.SpawnOffset = init.SpawnOffset
	b.Settled = false
	b.Impulse = 0
	b.Neighbors = b.Neighbors[:0]
	b.NeighborTick = 0
	b.Retired = false
}

// IsDead reports whether the lifetime is exhausted.
func (b *Box) IsDead() bool {
	return b.Lifetime <= 0
}

// State derives the lifecycle stage from the box fields.
func (b *Box) State() BoxState {
	switch {
	case b.Retired:
		return StateRetired
	case b.IsDead():
		return StateExpired
	case !b.Settled:
		return StateSpawning
	default:
		return StateAlive
	}
}

// RenderZ is the displayed depth, including the settle offset while spawning.
func (b *Box) RenderZ() float32 {
	if !b.Settled {
		return b.Z - b.SpawnOffset
	}
	return b.Z
}
