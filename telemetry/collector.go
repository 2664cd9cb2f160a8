// Package telemetry provides population stats windows, perf timing, and bookmarks.
package telemetry

import (
	"time"

	"github.com/pthm-cable/boxfield/components"
)

// Counters are event counts accumulated by the simulation between drains.
type Counters struct {
	Spawned         int
	Reused          int // spawns served from the retired stack
	Recycled        int
	Ripples         int
	SkippedTicks    int
	NeighborQueries int
}

// Add accumulates other into c.
func (c *Counters) Add(other Counters) {
	c.Spawned += other.Spawned
	c.Reused += other.Reused
	c.Recycled += other.Recycled
	c.Ripples += other.Ripples
	c.SkippedTicks += other.SkippedTicks
	c.NeighborQueries += other.NeighborQueries
}

// PoolState describes pool and grid occupancy at flush time.
type PoolState struct {
	Retired   int
	Allocated int
	GridCells int
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64
	dt                  time.Duration

	// Current window tracking
	windowStartTick int64
	counters        Counters

	// Scratch buffers for distribution sampling
	lifetimes []float64
	heights   []float64
	alphas    []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: duration of one tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt time.Duration) *Collector {
	ticksPerWindow := int64(windowDurationSec / dt.Seconds())
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}
	return &Collector{
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record adds drained simulation counters to the current window.
func (c *Collector) Record(counts Counters) {
	c.counters.Add(counts)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// live is sampled for the lifetime, height, alpha and neighbor distributions.
func (c *Collector) Flush(currentTick int64, waveTime float32, live []*components.Box, pool PoolState) WindowStats {
	c.lifetimes = c.lifetimes[:0]
	c.heights = c.heights[:0]
	c.alphas = c.alphas[:0]
	spawning := 0
	neighbors := 0
	for _, b := range live {
		c.lifetimes = append(c.lifetimes, float64(b.Lifetime))
		c.heights = append(c.heights, float64(b.Z))
		c.alphas = append(c.alphas, float64(b.Alpha))
		neighbors += len(b.Neighbors)
		if b.State() == components.StateSpawning {
			spawning++
		}
	}

	var reuseRate, neighborMean float64
	if c.counters.Spawned > 0 {
		reuseRate = float64(c.counters.Reused) / float64(c.counters.Spawned)
	}
	if len(live) > 0 {
		neighborMean = float64(neighbors) / float64(len(live))
	}

	zMean, zStd := ComputeSpread(c.heights)
	alphaMean, _ := ComputeSpread(c.alphas)
	lifeMean, lifeP10, lifeP50, lifeP90 := ComputeLifetimeStats(c.lifetimes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt.Seconds(),
		WaveTime:        float64(waveTime),

		Live:      len(live),
		Spawning:  spawning,
		Retired:   pool.Retired,
		Allocated: pool.Allocated,
		GridCells: pool.GridCells,

		Spawned:         c.counters.Spawned,
		Recycled:        c.counters.Recycled,
		Ripples:         c.counters.Ripples,
		SkippedTicks:    c.counters.SkippedTicks,
		NeighborQueries: c.counters.NeighborQueries,
		ReuseRate:       reuseRate,

		LifetimeMean: lifeMean,
		LifetimeP10:  lifeP10,
		LifetimeP50:  lifeP50,
		LifetimeP90:  lifeP90,

		ZMean: zMean,
		ZStd:  zStd,

		AlphaMean:    alphaMean,
		NeighborMean: neighborMean,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.counters = Counters{}

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
