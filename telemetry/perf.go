package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed stage of a simulation step.
type Phase uint8

// Step phases, in execution order.
const (
	PhasePointer Phase = iota
	PhaseSpawn
	PhaseUpdate
	PhaseCollect
	PhaseSweep
	PhaseRipple
	PhaseTelemetry

	numPhases
)

var phaseNames = [numPhases]string{
	PhasePointer:   "pointer",
	PhaseSpawn:     "spawn",
	PhaseUpdate:    "update",
	PhaseCollect:   "collect",
	PhaseSweep:     "sweep",
	PhaseRipple:    "ripple",
	PhaseTelemetry: "telemetry",
}

func (p Phase) String() string {
	if p >= numPhases {
		return "unknown"
	}
	return phaseNames[p]
}

// Phases returns every step phase in execution order.
func Phases() []Phase {
	out := make([]Phase, numPhases)
	for i := range out {
		out[i] = Phase(i)
	}
	return out
}

// PhaseTimes holds one duration per phase, indexed by Phase.
type PhaseTimes [numPhases]time.Duration

type tickSample struct {
	total  time.Duration
	phases PhaseTimes
}

// PerfCollector times step phases over a ring of recent ticks.
// Time spent before the first StartPhase of a tick counts toward the tick
// but no phase.
type PerfCollector struct {
	now func() time.Duration

	ring  []tickSample
	next  int
	count int

	cur        tickSample
	tickStart  time.Duration
	phaseStart time.Duration
	phase      Phase
	inPhase    bool

	lastFrame time.Duration
	frame     time.Duration

	scratch []float64
}

// NewPerfCollector creates a collector averaging over the last windowSize
// ticks, timed on the monotonic clock.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	start := time.Now()
	return &PerfCollector{
		now:       func() time.Duration { return time.Since(start) },
		ring:      make([]tickSample, windowSize),
		scratch:   make([]float64, 0, windowSize),
		lastFrame: -1,
	}
}

// StartTick opens a new tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickSample{}
	p.tickStart = p.now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and opens ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	t := p.now()
	p.closePhase(t)
	p.phase = ph
	p.phaseStart = t
	p.inPhase = ph < numPhases
}

func (p *PerfCollector) closePhase(t time.Duration) {
	if p.inPhase {
		p.cur.phases[p.phase] += t - p.phaseStart
	}
}

// EndTick closes the tick and stores it in the ring.
func (p *PerfCollector) EndTick() {
	t := p.now()
	p.closePhase(t)
	p.inPhase = false
	p.cur.total = t - p.tickStart

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	t := p.now()
	if p.lastFrame >= 0 {
		p.frame = t - p.lastFrame
	}
	p.lastFrame = t
}

// PerfStats summarizes the ticks in the ring.
type PerfStats struct {
	AvgTick        time.Duration
	P95Tick        time.Duration
	TicksPerSecond float64
	FPS            float64 // 0 until two frames were recorded

	// Share of tick time per phase, in percent
	PhasePct [numPhases]float64
}

// Stats computes the summary over the current ring contents.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	var phases PhaseTimes
	p.scratch = p.scratch[:0]
	for _, smp := range p.ring[:p.count] {
		total += smp.total
		for i, d := range smp.phases {
			phases[i] += d
		}
		p.scratch = append(p.scratch, float64(smp.total))
	}

	s.AvgTick = total / time.Duration(p.count)
	sort.Float64s(p.scratch)
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, p.scratch, nil))

	if total > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
		for i, d := range phases {
			s.PhasePct[i] = float64(d) / float64(total) * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4+numPhases)
	attrs = append(attrs,
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	)
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PointerPct   float64 `csv:"pointer_pct"`
	SpawnPct     float64 `csv:"spawn_pct"`
	UpdatePct    float64 `csv:"update_pct"`
	CollectPct   float64 `csv:"collect_pct"`
	SweepPct     float64 `csv:"sweep_pct"`
	RipplePct    float64 `csv:"ripple_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTick.Microseconds(),
		P95TickUS:    s.P95Tick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PointerPct:   pct[PhasePointer],
		SpawnPct:     pct[PhaseSpawn],
		UpdatePct:    pct[PhaseUpdate],
		CollectPct:   pct[PhaseCollect],
		SweepPct:     pct[PhaseSweep],
		RipplePct:    pct[PhaseRipple],
		TelemetryPct: pct[PhaseTelemetry],
	}
}
