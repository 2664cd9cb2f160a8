package game

import (
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/camera"
	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/systems"
	"github.com/pthm-cable/boxfield/telemetry"
)

// Input is the pointer and clock state for one frame.
type Input struct {
	PointerX, PointerY float32       // screen pixels
	Pressed            bool          // primary button held
	Now                time.Duration // monotonic time since start
}

// Simulation owns the box field and advances it one tick per Step.
// It holds no window or GPU state and can run headless.
type Simulation struct {
	cfg *config.Config
	rng *rand.Rand
	cam *camera.Camera

	grid    *systems.Grid
	pool    *systems.BoxPool
	updater *systems.BoxUpdater
	ripple  *systems.RippleSystem
	tracker *systems.PointerTracker

	planner      systems.SpawnPlanner
	tickGate     systems.SpawnGate
	eventGate    systems.SpawnGate
	renderParams systems.RenderParams

	live        []*components.Box
	renderables []systems.Renderable

	tick      int64
	time      float32
	pointer   r2.Vec // screen position at the previous frame
	lastEvent time.Duration

	counters telemetry.Counters
	perf     *telemetry.PerfCollector
}

// NewSimulation creates an empty field for the configured viewport.
func NewSimulation(cfg *config.Config, seed int64) *Simulation {
	rng := rand.New(rand.NewSource(seed))
	grid := systems.NewGrid(float32(cfg.Grid.CellSize))

	s := &Simulation{
		cfg: cfg,
		rng: rng,
		cam: camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
			float32(cfg.Camera.DistanceFactor), float32(cfg.Camera.FovY)),
		grid:        grid,
		pool:        systems.NewBoxPool(grid, systems.NewSpawnParams(cfg), rng),
		updater:     systems.NewBoxUpdater(grid, systems.NewNoiseField(seed), systems.NewUpdateParams(cfg)),
		ripple:      systems.NewRippleSystem(grid, systems.NewRippleParams(cfg), rng),
		live:        make([]*components.Box, 0, cfg.Population.MaxBoxes),
		renderables: make([]systems.Renderable, 0, cfg.Population.MaxBoxes),
		lastEvent:   -cfg.Derived.EventInterval,
	}
	s.pointer = r2.Vec{X: float64(cfg.Derived.ScreenW32 / 2), Y: float64(cfg.Derived.ScreenH32 / 2)}
	s.tracker = systems.NewPointerTracker(cfg.Derived.SampleInterval, s.pointer, 0)
	s.applyParams(cfg)
	return s
}

// applyParams copies the tunable parameters out of cfg.
func (s *Simulation) applyParams(cfg *config.Config) {
	s.planner = systems.NewSpawnPlanner(cfg)
	s.tickGate = systems.SpawnGate{
		Threshold: float32(cfg.Spawn.Threshold),
		Interval:  int64(cfg.Spawn.Interval),
	}
	s.eventGate = s.tickGate
	s.eventGate.MinGap = cfg.Derived.EventInterval
	s.renderParams = systems.NewRenderParams(cfg)
}

// SetConfig swaps in a new configuration. Live boxes keep their current
// per-life parameters; later spawns use the new ones. A changed cell size
// re-buckets the grid.
func (s *Simulation) SetConfig(cfg *config.Config) {
	s.cfg = cfg
	s.pool.SetParams(systems.NewSpawnParams(cfg))
	s.updater.SetParams(systems.NewUpdateParams(cfg))
	s.ripple.SetParams(systems.NewRippleParams(cfg))
	s.cam.DistanceFactor = float32(cfg.Camera.DistanceFactor)
	s.cam.FovY = float32(cfg.Camera.FovY)
	if cell := float32(cfg.Grid.CellSize); cell != s.grid.CellSize() {
		s.grid.Rebuild(cell, s.live)
	}
	s.applyParams(cfg)
}

// SetPerf attaches a collector that times each step phase.
func (s *Simulation) SetPerf(perf *telemetry.PerfCollector) {
	s.perf = perf
}

func (s *Simulation) phase(ph telemetry.Phase) {
	if s.perf != nil {
		s.perf.StartPhase(ph)
	}
}

// Step runs one frame: pointer events, then a tick.
func (s *Simulation) Step(in Input) {
	pos := r2.Vec{X: float64(in.PointerX), Y: float64(in.PointerY)}
	if pos != s.pointer {
		if in.Pressed {
			s.OnPointerDrag(in.PointerX, in.PointerY, in.Now)
		} else {
			s.OnPointerMove(in.PointerX, in.PointerY, in.Now)
		}
		s.pointer = pos
	}

	s.tick++

	// Under heavy load every other tick only advances time
	if len(s.live) > s.cfg.Population.HeavyLoadThreshold && s.tick%2 == 1 {
		s.time += float32(s.cfg.Box.WaveSpeed)
		s.counters.SkippedTicks++
		return
	}

	s.phase(telemetry.PhasePointer)
	s.tracker.Sample(pos, in.Now)

	s.phase(telemetry.PhaseSpawn)
	if speed := s.tracker.Speed(); s.tickGate.Admit(speed, s.tick, in.Now, s.lastEvent) {
		s.spawnBurst(s.planner.Plan(systems.SourceTick, speed, s.rng), in.PointerX, in.PointerY)
	}

	s.phase(telemetry.PhaseUpdate)
	for _, b := range s.live {
		s.updater.Update(b, s.tick, s.time)
	}
	s.counters.NeighborQueries += s.updater.DrainQueries()

	s.phase(telemetry.PhaseCollect)
	s.renderables = systems.CollectRenderables(s.renderables[:0], s.live,
		s.cam.CullBounds(float32(s.cfg.Render.CullMargin)), s.renderParams)

	s.phase(telemetry.PhaseSweep)
	s.sweep()

	s.phase(telemetry.PhaseRipple)
	if center, ok := s.ripple.Roll(s.live); ok {
		s.ripple.Apply(center)
		s.counters.Ripples++
	}

	s.time += float32(s.cfg.Box.WaveSpeed)
}

// sweep retires dead boxes, walking backward so removal keeps indices valid.
func (s *Simulation) sweep() {
	for i := len(s.live) - 1; i >= 0; i-- {
		b := s.live[i]
		if !b.IsDead() {
			continue
		}
		s.grid.Remove(b)
		s.pool.Release(b)
		last := len(s.live) - 1
		copy(s.live[i:], s.live[i+1:])
		s.live[last] = nil
		s.live = s.live[:last]
		s.counters.Recycled++
	}
}

// OnPointerMove handles a pointer move to screen position (x, y) at now.
// Throttled to the event interval; spawns a single box when admitted.
func (s *Simulation) OnPointerMove(x, y float32, now time.Duration) {
	s.pointerEvent(systems.SourceMove, x, y, now)
}

// OnPointerDrag handles a pointer drag to screen position (x, y) at now.
func (s *Simulation) OnPointerDrag(x, y float32, now time.Duration) {
	s.pointerEvent(systems.SourceDrag, x, y, now)
}

func (s *Simulation) pointerEvent(src systems.SpawnSource, x, y float32, now time.Duration) {
	speed := systems.PointerSpeed(s.pointer, r2.Vec{X: float64(x), Y: float64(y)})
	if !s.eventGate.Admit(speed, s.tick, now, s.lastEvent) {
		return
	}
	s.lastEvent = now
	s.spawnBurst(s.planner.Plan(src, speed, s.rng), x, y)
}

// spawnBurst places boxes around the screen position (sx, sy), stopping at
// the population cap.
func (s *Simulation) spawnBurst(burst systems.SpawnBurst, sx, sy float32) {
	x, y := s.cam.ScreenToScene(sx, sy)
	for i := 0; i < burst.Count; i++ {
		if len(s.live) >= s.cfg.Population.MaxBoxes {
			return
		}
		bx := x + (s.rng.Float32()*2-1)*burst.Scatter
		by := y + (s.rng.Float32()*2-1)*burst.Scatter
		reused := len(s.pool.Retired()) > 0
		s.live = append(s.live, s.pool.Acquire(bx, by, 0))
		s.counters.Spawned++
		if reused {
			s.counters.Reused++
		}
	}
}

// Resize updates the viewport used for pointer mapping and culling.
func (s *Simulation) Resize(w, h float32) bool {
	return s.cam.Resize(w, h)
}

// Live returns the live boxes in spawn order. The slice is owned by the
// simulation and valid until the next Step.
func (s *Simulation) Live() []*components.Box {
	return s.live
}

// Renderables returns the draw list produced by the last processed tick.
func (s *Simulation) Renderables() []systems.Renderable {
	return s.renderables
}

// Tick returns the number of ticks stepped so far.
func (s *Simulation) Tick() int64 {
	return s.tick
}

// Time returns the global animation time.
func (s *Simulation) Time() float32 {
	return s.time
}

// Grid returns the spatial index.
func (s *Simulation) Grid() *systems.Grid {
	return s.grid
}

// Pool returns the box pool.
func (s *Simulation) Pool() *systems.BoxPool {
	return s.pool
}

// Camera returns the viewport model.
func (s *Simulation) Camera() *camera.Camera {
	return s.cam
}

// Config returns the active configuration.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Counters returns the event counts accumulated since the last drain.
func (s *Simulation) Counters() telemetry.Counters {
	return s.counters
}

// DrainCounters returns the accumulated event counts and resets them.
func (s *Simulation) DrainCounters() telemetry.Counters {
	c := s.counters
	s.counters = telemetry.Counters{}
	return c
}

// PoolState summarizes pool and grid occupancy for telemetry.
func (s *Simulation) PoolState() telemetry.PoolState {
	return telemetry.PoolState{
		Retired:   len(s.pool.Retired()),
		Allocated: s.pool.Allocated(),
		GridCells: s.grid.Cells(),
	}
}
