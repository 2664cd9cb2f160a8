package game

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

const frame = 17 * time.Millisecond

func newTestSimulation(t *testing.T, mutate func(*config.Config)) *Simulation {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
		if err := cfg.Revalidate(); err != nil {
			t.Fatalf("invalid test config: %v", err)
		}
	}
	return NewSimulation(cfg, 7)
}

// still returns an input holding the pointer at the screen center.
func still(n int) Input {
	return Input{PointerX: 640, PointerY: 360, Now: time.Duration(n) * frame}
}

// inject adds a live box directly, bypassing spawn admission.
func inject(s *Simulation, x, y float32) *components.Box {
	b := s.pool.Acquire(x, y, 0)
	s.live = append(s.live, b)
	return b
}

// spawnOneAtTick4 drives three still frames and a speed-15 move on the fourth.
func spawnOneAtTick4(t *testing.T, s *Simulation) *components.Box {
	t.Helper()
	for n := 1; n <= 3; n++ {
		s.Step(still(n))
	}
	s.Step(Input{PointerX: 650, PointerY: 365, Now: 4 * frame})

	if s.Tick() != 4 {
		t.Fatalf("tick = %d, want 4", s.Tick())
	}
	if len(s.Live()) != 1 {
		t.Fatalf("live = %d after speed-15 tick, want 1", len(s.Live()))
	}
	return s.Live()[0]
}

func TestSpawnAtTickFour(t *testing.T) {
	s := newTestSimulation(t, nil)
	b := spawnOneAtTick4(t, s)

	// Pointer (650, 365) maps to scene (10, 5); scatter at speed 15 is 14.375
	if math.Abs(float64(b.X-10)) > 14.375 || math.Abs(float64(b.Y-5)) > 14.375 {
		t.Errorf("box at (%v, %v), want within scatter of (10, 5)", b.X, b.Y)
	}
	if !s.Grid().Contains(b) || s.Grid().Memberships(b) != 1 {
		t.Errorf("box not registered exactly once in cell %v", s.Grid().KeyFor(b.X, b.Y))
	}
	if c := s.Counters(); c.Spawned != 1 || c.Reused != 0 {
		t.Errorf("counters = %+v, want one fresh spawn", c)
	}
	if b.Lifetime != 69 {
		t.Errorf("lifetime = %d, want 69 after its first update", b.Lifetime)
	}
}

func TestSlowPointerNeverSpawns(t *testing.T) {
	s := newTestSimulation(t, nil)
	x := float32(640)
	for n := 1; n <= 40; n++ {
		x += 2
		s.Step(Input{PointerX: x, PointerY: 360, Now: time.Duration(n) * frame})
	}
	if len(s.Live()) != 0 {
		t.Errorf("slow pointer spawned %d boxes", len(s.Live()))
	}
}

func TestLifetimeSweepIntoPool(t *testing.T) {
	s := newTestSimulation(t, nil)
	b := spawnOneAtTick4(t, s)

	// Spawned and first updated on tick 4; its 70th update is tick 73
	for n := 5; n <= 72; n++ {
		s.Step(Input{PointerX: 650, PointerY: 365, Now: time.Duration(n) * frame})
	}
	if len(s.Live()) != 1 || b.Lifetime != 1 {
		t.Fatalf("after tick 72: live %d lifetime %d, want 1 and 1", len(s.Live()), b.Lifetime)
	}

	s.Step(Input{PointerX: 650, PointerY: 365, Now: 73 * frame})
	if len(s.Live()) != 0 {
		t.Fatalf("live = %d after tick 73, want 0", len(s.Live()))
	}
	if !s.Pool().IsRetired(b) || b.State() != components.StateRetired {
		t.Error("expired box is not in the pool")
	}
	if s.Grid().Memberships(b) != 0 || s.Grid().Len() != 0 {
		t.Error("expired box still registered in the grid")
	}
	if c := s.Counters(); c.Recycled != 1 {
		t.Errorf("recycled = %d, want 1", c.Recycled)
	}

	// Extra ticks never release it twice
	for n := 74; n <= 80; n++ {
		s.Step(Input{PointerX: 650, PointerY: 365, Now: time.Duration(n) * frame})
	}
	if got := len(s.Pool().Retired()); got != 1 {
		t.Errorf("retired = %d, want 1", got)
	}
}

func TestRecycledBoxIsReused(t *testing.T) {
	s := newTestSimulation(t, nil)
	b := inject(s, 0, 0)
	b.Lifetime = 1
	gen := b.Gen

	s.Step(still(1))
	if !s.Pool().IsRetired(b) {
		t.Fatal("box not retired")
	}

	// Advance to a spawn tick
	for n := 2; n <= 4; n++ {
		s.Step(still(n))
	}
	s.OnPointerMove(700, 360, time.Second)
	if len(s.Live()) != 1 || s.Live()[0] != b {
		t.Fatal("spawn did not reuse the retired box")
	}
	if b.Gen != gen+1 || b.Lifetime != 70 || b.Retired {
		t.Errorf("reused box not reset: gen %d lifetime %d retired %v", b.Gen, b.Lifetime, b.Retired)
	}
	if c := s.Counters(); c.Reused != 1 {
		t.Errorf("reused = %d, want 1", c.Reused)
	}
}

func TestPopulationCap(t *testing.T) {
	s := newTestSimulation(t, func(c *config.Config) {
		c.Population.MaxBoxes = 5
	})

	for n := 1; n <= 400; n++ {
		angle := float64(n) * 0.7
		in := Input{
			PointerX: 640 + float32(300*math.Cos(angle)),
			PointerY: 360 + float32(200*math.Sin(angle)),
			Pressed:  n%3 == 0,
			Now:      time.Duration(n) * frame,
		}
		s.Step(in)

		live := len(s.Live())
		if live > 5 {
			t.Fatalf("frame %d: live = %d exceeds cap", n, live)
		}
		if s.Grid().Len() != live {
			t.Fatalf("frame %d: grid holds %d boxes, live %d", n, s.Grid().Len(), live)
		}
		if got := live + len(s.Pool().Retired()); got != s.Pool().Allocated() {
			t.Fatalf("frame %d: live %d + retired %d != allocated %d", n, live, len(s.Pool().Retired()), s.Pool().Allocated())
		}
	}
	if s.Counters().Spawned == 0 {
		t.Error("fast pointer never spawned")
	}
}

func TestHeavyLoadSkipsOddTicks(t *testing.T) {
	s := newTestSimulation(t, func(c *config.Config) {
		c.Population.HeavyLoadThreshold = 2
	})
	boxes := []*components.Box{inject(s, 0, 0), inject(s, 100, 0), inject(s, 200, 0)}

	s.Step(still(1))
	for _, b := range boxes {
		if b.Lifetime != 70 {
			t.Fatalf("odd tick updated a box: lifetime %d", b.Lifetime)
		}
	}
	if math.Abs(float64(s.Time()-0.01)) > 1e-6 {
		t.Errorf("time = %v, want 0.01 after skipped tick", s.Time())
	}
	if s.Counters().SkippedTicks != 1 {
		t.Errorf("skipped = %d, want 1", s.Counters().SkippedTicks)
	}

	s.Step(still(2))
	for _, b := range boxes {
		if b.Lifetime != 69 {
			t.Fatalf("even tick did not update: lifetime %d", b.Lifetime)
		}
	}
	if len(s.Renderables()) != 3 {
		t.Errorf("renderables = %d, want 3", len(s.Renderables()))
	}
}

func TestLightLoadUpdatesEveryTick(t *testing.T) {
	s := newTestSimulation(t, nil)
	b := inject(s, 0, 0)

	for n := 1; n <= 5; n++ {
		s.Step(still(n))
	}
	if b.Lifetime != 65 {
		t.Errorf("lifetime = %d, want 65", b.Lifetime)
	}
	if s.Counters().SkippedTicks != 0 {
		t.Errorf("skipped %d ticks under light load", s.Counters().SkippedTicks)
	}
}

func TestPointerEventThrottle(t *testing.T) {
	s := newTestSimulation(t, nil)

	// Tick 0 satisfies the interval; the pointer starts at the screen center
	s.OnPointerMove(700, 360, 0)
	if len(s.Live()) != 1 {
		t.Fatalf("first move spawned %d, want 1", len(s.Live()))
	}
	b := s.Live()[0]
	if math.Abs(float64(b.X-60)) > 10 || math.Abs(float64(b.Y)) > 10 {
		t.Errorf("move spawn at (%v, %v), want within 10 of (60, 0)", b.X, b.Y)
	}

	s.OnPointerMove(760, 360, 20*time.Millisecond)
	if len(s.Live()) != 1 {
		t.Fatalf("move within 32ms spawned")
	}

	s.OnPointerDrag(760, 360, 40*time.Millisecond)
	if len(s.Live()) != 3 {
		t.Fatalf("drag at speed 120 should spawn 2, live = %d", len(s.Live()))
	}

	s.OnPointerMove(641, 360, 100*time.Millisecond)
	if len(s.Live()) != 3 {
		t.Error("slow move spawned")
	}
}

func TestPointerEventsRespectInterval(t *testing.T) {
	s := newTestSimulation(t, nil)
	s.Step(still(1)) // tick 1

	s.OnPointerMove(700, 360, time.Second)
	s.OnPointerDrag(700, 360, 2*time.Second)
	if len(s.Live()) != 0 {
		t.Errorf("events off the spawn interval spawned %d boxes", len(s.Live()))
	}
}

func TestCullingSkipsButUpdates(t *testing.T) {
	s := newTestSimulation(t, nil)
	inside := inject(s, 100, 100)
	outside := inject(s, 2000, 0)

	s.Step(still(1))
	r := s.Renderables()
	if len(r) != 1 || r[0].X != inside.X || r[0].Y != inside.Y {
		t.Fatalf("renderables = %+v, want only the inside box", r)
	}
	if outside.Lifetime != 69 {
		t.Errorf("culled box lifetime = %d, want 69", outside.Lifetime)
	}

	// A wider viewport brings it into view
	s.Resize(4000, 720)
	s.Step(still(2))
	if len(s.Renderables()) != 2 {
		t.Errorf("renderables after resize = %d, want 2", len(s.Renderables()))
	}
}

func TestResizeRemapsPointer(t *testing.T) {
	s := newTestSimulation(t, nil)
	if !s.Resize(800, 600) {
		t.Fatal("resize reported no change")
	}

	s.OnPointerMove(430, 300, 0)
	if len(s.Live()) != 1 {
		t.Fatalf("live = %d, want 1", len(s.Live()))
	}
	b := s.Live()[0]
	if math.Abs(float64(b.X-30)) > 10 || math.Abs(float64(b.Y)) > 10 {
		t.Errorf("spawn at (%v, %v), want within 10 of (30, 0)", b.X, b.Y)
	}
}

func TestRippleLiftsNeighborhood(t *testing.T) {
	s := newTestSimulation(t, func(c *config.Config) {
		c.Ripple.Chance = 1
		c.Ripple.MinPopulation = 2
	})
	// Every box is within the radius of every other, so any center lifts all
	near := []*components.Box{inject(s, 0, 0), inject(s, 20, 0), inject(s, 0, 30)}

	s.Step(still(1))
	if s.Counters().Ripples != 1 {
		t.Fatalf("ripples = %d, want 1", s.Counters().Ripples)
	}
	for i, b := range near {
		if b.Impulse <= 0 {
			t.Errorf("box %d impulse = %v, want lifted", i, b.Impulse)
		}
	}
}

func TestRippleSparesDistantBoxes(t *testing.T) {
	s := newTestSimulation(t, nil)
	near := []*components.Box{inject(s, 0, 0), inject(s, 20, 0), inject(s, 0, 30)}
	far := inject(s, 1000, 1000)

	if touched := s.ripple.Apply(r2.Vec{}); touched != len(near) {
		t.Errorf("touched = %d, want %d", touched, len(near))
	}
	if near[0].Impulse != float32(s.Config().Ripple.Strength) {
		t.Errorf("center impulse = %v, want full strength %v", near[0].Impulse, s.Config().Ripple.Strength)
	}
	if near[1].Impulse <= 0 || near[1].Impulse >= near[0].Impulse {
		t.Errorf("impulse at 20 = %v, want between 0 and %v", near[1].Impulse, near[0].Impulse)
	}
	if far.Impulse != 0 {
		t.Errorf("far impulse = %v, want 0", far.Impulse)
	}
}

func TestSetConfigRebucketsGrid(t *testing.T) {
	s := newTestSimulation(t, nil)
	boxes := []*components.Box{inject(s, 10, 10), inject(s, 70, 10), inject(s, -130, 50)}

	cfg := s.Config().Clone()
	cfg.Grid.CellSize = 250
	cfg.Box.LifetimeTicks = 30
	if err := cfg.Revalidate(); err != nil {
		t.Fatal(err)
	}
	s.SetConfig(cfg)

	if s.Grid().CellSize() != 250 {
		t.Errorf("cell size = %v, want 250", s.Grid().CellSize())
	}
	for _, b := range boxes {
		if s.Grid().Memberships(b) != 1 || !s.Grid().Contains(b) {
			t.Errorf("box %d not re-registered", b.ID)
		}
		if b.Lifetime != 70 {
			t.Errorf("live box lifetime changed to %d", b.Lifetime)
		}
	}

	if fresh := inject(s, 0, 0); fresh.Lifetime != 30 {
		t.Errorf("new box lifetime = %d, want 30", fresh.Lifetime)
	}
}

func TestDeterministicWithSeed(t *testing.T) {
	run := func() []*components.Box {
		s := newTestSimulation(t, nil)
		for n := 1; n <= 120; n++ {
			angle := float64(n) * 0.3
			s.Step(Input{
				PointerX: 640 + float32(250*math.Cos(angle)),
				PointerY: 360 + float32(150*math.Sin(angle)),
				Now:      time.Duration(n) * frame,
			})
		}
		return s.Live()
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("live counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y || a[i].Z != b[i].Z {
			t.Fatalf("box %d differs between runs", i)
		}
	}
}

func TestDrainCounters(t *testing.T) {
	s := newTestSimulation(t, nil)
	s.OnPointerMove(700, 360, 0)

	if c := s.DrainCounters(); c.Spawned != 1 {
		t.Errorf("drained spawned = %d, want 1", c.Spawned)
	}
	if c := s.Counters(); c.Spawned != 0 {
		t.Errorf("counters not reset: %+v", c)
	}
	if ps := s.PoolState(); ps.Allocated != 1 || ps.GridCells != 1 {
		t.Errorf("pool state = %+v", ps)
	}
}
