package systems

import (
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/config"
)

// PointerTracker derives pointer velocity from position samples, resampling
// at most once per interval.
type PointerTracker struct {
	interval   time.Duration
	last       r2.Vec
	velocity   r2.Vec
	lastSample time.Duration
}

// NewPointerTracker creates a tracker anchored at the initial pointer position.
func NewPointerTracker(interval time.Duration, start r2.Vec, now time.Duration) *PointerTracker {
	return &PointerTracker{
		interval:   interval,
		last:       start,
		lastSample: now,
	}
}

// Sample records the pointer at time now. Velocity is only recomputed once
// more than the sampling interval has passed since the previous sample.
// Returns true if a new velocity was taken.
func (p *PointerTracker) Sample(pos r2.Vec, now time.Duration) bool {
	if now-p.lastSample <= p.interval {
		return false
	}
	p.velocity = r2.Sub(pos, p.last)
	p.last = pos
	p.lastSample = now
	return true
}

// Velocity returns the last sampled per-interval velocity.
func (p *PointerTracker) Velocity() r2.Vec {
	return p.velocity
}

// Speed returns the Manhattan length of the last sampled velocity.
func (p *PointerTracker) Speed() float32 {
	return manhattan(p.velocity)
}

func manhattan(v r2.Vec) float32 {
	return float32(math.Abs(v.X) + math.Abs(v.Y))
}

// PointerSpeed returns the Manhattan distance between two pointer positions.
func PointerSpeed(from, to r2.Vec) float32 {
	return manhattan(r2.Sub(to, from))
}

// SpawnGate decides whether a spawn burst is admitted. The per-tick path and
// the pointer event path share it; they differ only in MinGap.
type SpawnGate struct {
	Threshold float32       // speed must exceed this
	Interval  int64         // tick must be a multiple of this
	MinGap    time.Duration // minimum time since the previous admitted event
}

// Admit reports whether a spawn may happen for the given pointer speed, tick
// and time since lastEvent.
func (g SpawnGate) Admit(speed float32, tick int64, now, lastEvent time.Duration) bool {
	if g.MinGap > 0 && now-lastEvent < g.MinGap {
		return false
	}
	if g.Interval > 0 && tick%g.Interval != 0 {
		return false
	}
	return speed > g.Threshold
}

// SpawnSource identifies what triggered a spawn burst.
type SpawnSource uint8

const (
	SourceTick SpawnSource = iota
	SourceMove
	SourceDrag
)

func (s SpawnSource) String() string {
	switch s {
	case SourceTick:
		return "tick"
	case SourceMove:
		return "move"
	case SourceDrag:
		return "drag"
	default:
		return "unknown"
	}
}

// SpawnBurst describes how many boxes to place around the pointer.
type SpawnBurst struct {
	Count   int
	Scatter float32 // uniform jitter half-width
}

// SpawnPlanner turns an admitted pointer speed into a spawn burst.
type SpawnPlanner struct {
	Threshold         float32
	SpeedMax          float32
	SingleSpawnChance float32
	ScatterMin        float32
	ScatterMax        float32
	MoveScatter       float32
	DragScatter       float32
	DragSpeedPerBox   float32
	DragMaxBoxes      int
}

// NewSpawnPlanner extracts spawn planning parameters from the config.
func NewSpawnPlanner(cfg *config.Config) SpawnPlanner {
	return SpawnPlanner{
		Threshold:         float32(cfg.Spawn.Threshold),
		SpeedMax:          float32(cfg.Spawn.SpeedMax),
		SingleSpawnChance: float32(cfg.Spawn.SingleSpawnChance),
		ScatterMin:        float32(cfg.Spawn.ScatterMin),
		ScatterMax:        float32(cfg.Spawn.ScatterMax),
		MoveScatter:       float32(cfg.Spawn.MoveScatter),
		DragScatter:       float32(cfg.Spawn.DragScatter),
		DragSpeedPerBox:   float32(cfg.Spawn.DragSpeedPerBox),
		DragMaxBoxes:      cfg.Spawn.DragMaxBoxes,
	}
}

// Plan returns the burst for an admitted speed from the given source.
func (s SpawnPlanner) Plan(src SpawnSource, speed float32, rng *rand.Rand) SpawnBurst {
	switch src {
	case SourceMove:
		return SpawnBurst{Count: 1, Scatter: s.MoveScatter}
	case SourceDrag:
		n := 0
		if s.DragSpeedPerBox > 0 {
			n = int(speed / s.DragSpeedPerBox)
		}
		return SpawnBurst{Count: min(s.DragMaxBoxes, n), Scatter: s.DragScatter}
	}

	count := int(remap(speed, s.Threshold, s.SpeedMax, 1, 2))
	count = max(1, min(2, count))
	if rng.Float32() < s.SingleSpawnChance {
		count = 1
	}
	scatter := clampf(remap(speed, 0, s.SpeedMax, s.ScatterMin, s.ScatterMax), s.ScatterMin, s.ScatterMax)
	return SpawnBurst{Count: count, Scatter: scatter}
}
