// Package main searches spawn and lifetime parameters with CMA-ES so the
// autopilot-driven field holds a target population.
package main

import (
	"math"

	"github.com/pthm-cable/boxfield/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Integer bool    // rounded before it is applied

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "spawn_threshold", Path: "spawn.threshold", Min: 2, Max: 30,
				get: func(c *config.Config) float64 { return c.Spawn.Threshold },
				set: func(c *config.Config, v float64) { c.Spawn.Threshold = v },
			},
			{
				Name: "spawn_interval", Path: "spawn.interval", Min: 1, Max: 10, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Spawn.Interval) },
				set: func(c *config.Config, v float64) { c.Spawn.Interval = int(v) },
			},
			{
				Name: "lifetime_ticks", Path: "box.lifetime_ticks", Min: 30, Max: 300, Integer: true,
				get: func(c *config.Config) float64 { return float64(c.Box.LifetimeTicks) },
				set: func(c *config.Config, v float64) { c.Box.LifetimeTicks = int(v) },
			},
			{
				Name: "single_spawn_chance", Path: "spawn.single_spawn_chance", Min: 0, Max: 1,
				get: func(c *config.Config) float64 { return c.Spawn.SingleSpawnChance },
				set: func(c *config.Config, v float64) { c.Spawn.SingleSpawnChance = v },
			},
			{
				Name: "drag_speed_per_box", Path: "spawn.drag_speed_per_box", Min: 5, Max: 40,
				get: func(c *config.Config) float64 { return c.Spawn.DragSpeedPerBox },
				set: func(c *config.Config, v float64) { c.Spawn.DragSpeedPerBox = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds, rounding integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Max(spec.Min, math.Min(spec.Max, v[i]))
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg and recomputes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
	return cfg.Revalidate()
}

// ExtractFromConfig extracts current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		out[i] = spec.get(cfg)
	}
	return out
}
