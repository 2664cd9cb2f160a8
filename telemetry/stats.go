package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	WaveTime        float64 `csv:"wave_time"`

	// Population at window end
	Live      int `csv:"live"`
	Spawning  int `csv:"spawning"`
	Retired   int `csv:"retired"`
	Allocated int `csv:"allocated"`
	GridCells int `csv:"grid_cells"`

	// Events during window
	Spawned         int     `csv:"spawned"`
	Recycled        int     `csv:"recycled"`
	Ripples         int     `csv:"ripples"`
	SkippedTicks    int     `csv:"skipped_ticks"`
	NeighborQueries int     `csv:"neighbor_queries"`
	ReuseRate       float64 `csv:"reuse_rate"` // spawns served from the pool

	// Lifetime distribution (sampled at window end)
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeP10  float64 `csv:"lifetime_p10"`
	LifetimeP50  float64 `csv:"lifetime_p50"`
	LifetimeP90  float64 `csv:"lifetime_p90"`

	// Height distribution
	ZMean float64 `csv:"z_mean"`
	ZStd  float64 `csv:"z_std"`

	AlphaMean    float64 `csv:"alpha_mean"`
	NeighborMean float64 `csv:"neighbor_mean"` // cached neighbors per box
}

// Quantiles returns the p10, p50 and p90 empirical quantiles of values.
// values is sorted in place. Returns zeros if values is empty.
func Quantiles(values []float64) (p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sort.Float64s(values)
	p10 = stat.Quantile(0.10, stat.Empirical, values, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, values, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, values, nil)
	return p10, p50, p90
}

// ComputeLifetimeStats calculates mean and quantiles from lifetimes.
func ComputeLifetimeStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)
	p10, p50, p90 = Quantiles(values)
	return mean, p10, p50, p90
}

// ComputeSpread calculates the mean and population standard deviation.
func ComputeSpread(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Float64("wave_time", s.WaveTime),
		slog.Int("live", s.Live),
		slog.Int("spawning", s.Spawning),
		slog.Int("retired", s.Retired),
		slog.Int("allocated", s.Allocated),
		slog.Int("grid_cells", s.GridCells),
		slog.Int("spawned", s.Spawned),
		slog.Int("recycled", s.Recycled),
		slog.Int("ripples", s.Ripples),
		slog.Int("skipped_ticks", s.SkippedTicks),
		slog.Int("neighbor_queries", s.NeighborQueries),
		slog.Float64("reuse_rate", s.ReuseRate),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("lifetime_p10", s.LifetimeP10),
		slog.Float64("lifetime_p50", s.LifetimeP50),
		slog.Float64("lifetime_p90", s.LifetimeP90),
		slog.Float64("z_mean", s.ZMean),
		slog.Float64("z_std", s.ZStd),
		slog.Float64("alpha_mean", s.AlphaMean),
		slog.Float64("neighbor_mean", s.NeighborMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"live", s.Live,
		"spawning", s.Spawning,
		"retired", s.Retired,
		"allocated", s.Allocated,
		"grid_cells", s.GridCells,
		"spawned", s.Spawned,
		"recycled", s.Recycled,
		"ripples", s.Ripples,
		"skipped_ticks", s.SkippedTicks,
		"neighbor_queries", s.NeighborQueries,
		"reuse_rate", s.ReuseRate,
		"lifetime_mean", s.LifetimeMean,
		"lifetime_p50", s.LifetimeP50,
		"z_mean", s.ZMean,
		"z_std", s.ZStd,
		"alpha_mean", s.AlphaMean,
		"neighbor_mean", s.NeighborMean,
	)
}
