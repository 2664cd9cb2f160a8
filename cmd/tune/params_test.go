package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.Default())

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVectorDefaultsInBounds(t *testing.T) {
	pv := NewParamVector()
	for i, v := range pv.ExtractFromConfig(config.Default()) {
		s := pv.Specs[i]
		if v < s.Min || v > s.Max {
			t.Errorf("%s default %v outside [%v, %v]", s.Name, v, s.Min, s.Max)
		}
	}
}

func TestApplyToConfigClampsAndRounds(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	// threshold, interval, lifetime, single chance, drag speed
	if err := pv.ApplyToConfig(cfg, []float64{-3, 4.6, 1000, 1.5, 12}); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}

	if cfg.Spawn.Threshold != 2 {
		t.Errorf("threshold = %v, want clamped 2", cfg.Spawn.Threshold)
	}
	if cfg.Spawn.Interval != 5 {
		t.Errorf("interval = %d, want rounded 5", cfg.Spawn.Interval)
	}
	if cfg.Box.LifetimeTicks != 300 {
		t.Errorf("lifetime = %d, want clamped 300", cfg.Box.LifetimeTicks)
	}
	if cfg.Spawn.SingleSpawnChance != 1 {
		t.Errorf("single chance = %v, want 1", cfg.Spawn.SingleSpawnChance)
	}
}

func TestScore(t *testing.T) {
	fe := NewFitnessEvaluator(NewParamVector(), 0, nil, config.Default(), 100)

	window := func(end int64, live, skipped int) telemetry.WindowStats {
		return telemetry.WindowStats{WindowStartTick: end - 120, WindowEndTick: end, Live: live, SkippedTicks: skipped}
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		want    float64
	}{
		{"too short", []telemetry.WindowStats{window(120, 100, 0)}, emptyPenalty},
		{"empty field", []telemetry.WindowStats{window(120, 5, 0), window(240, 0, 0), window(360, 0, 0)}, emptyPenalty},
		{"on target", []telemetry.WindowStats{window(120, 0, 0), window(240, 100, 0), window(360, 100, 0)}, 0},
		// mean 50: miss 0.25, no spread
		{"half target", []telemetry.WindowStats{window(120, 0, 0), window(240, 50, 0), window(360, 50, 0)}, 0.25},
		// on target, a quarter of the ticks skipped: 2 * 0.25
		{"skipping", []telemetry.WindowStats{window(120, 0, 0), window(240, 100, 60), window(360, 100, 0)}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := fe.score(tt.windows)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("score = %v, want %v", got, tt.want)
			}
		})
	}
}
