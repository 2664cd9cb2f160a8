package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/game"
	"github.com/pthm-cable/boxfield/telemetry"
)

// Score weights
const (
	spreadWeight = 0.5 // squared coefficient of variation of the population
	skipWeight   = 2.0 // fraction of ticks lost to the heavy-load skip
	emptyPenalty = 10.0
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int64
	seeds       []int64
	baseConfig  *config.Config
	target      float64 // desired mean live population
	statsWindow float64

	mu          sync.Mutex
	lastMean    float64
	bestFitness float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		target:      target,
		statsWindow: 2.0,
		bestFitness: math.Inf(1),
	}
}

// LastMean returns the mean live population of the most recent evaluation.
func (fe *FitnessEvaluator) LastMean() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMean
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel; the result is their average.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return emptyPenalty
	}

	type seedResult struct {
		fitness, mean float64
	}
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows := fe.runSimulation(cfg, s)
			f, m := fe.score(windows)
			results[idx] = seedResult{fitness: f, mean: m}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalMean float64
	for _, r := range results {
		totalFitness += r.fitness
		totalMean += r.mean
	}
	n := float64(len(fe.seeds))
	avg := totalFitness / n

	fe.mu.Lock()
	fe.lastMean = totalMean / n
	if avg < fe.bestFitness {
		fe.bestFitness = avg
	}
	fe.mu.Unlock()

	return avg
}

// runSimulation executes one headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var windows []telemetry.WindowStats
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// score rates a run by how closely the population holds the target.
// The first window is warm-up and ignored.
func (fe *FitnessEvaluator) score(windows []telemetry.WindowStats) (fitness, mean float64) {
	if len(windows) < 2 {
		return emptyPenalty, 0
	}
	windows = windows[1:]

	live := make([]float64, len(windows))
	var skipped, ticks int64
	for i, w := range windows {
		live[i] = float64(w.Live)
		skipped += int64(w.SkippedTicks)
		ticks += w.WindowEndTick - w.WindowStartTick
	}

	mean, variance := stat.PopMeanVariance(live, nil)
	if mean == 0 {
		return emptyPenalty, 0
	}

	miss := (mean - fe.target) / fe.target
	fitness = miss*miss + spreadWeight*variance/(mean*mean)
	if ticks > 0 {
		fitness += skipWeight * float64(skipped) / float64(ticks)
	}
	return fitness, mean
}
