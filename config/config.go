// Package config provides configuration loading and access for the box field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Camera     CameraConfig     `yaml:"camera"`
	Box        BoxConfig        `yaml:"box"`
	Neighbors  NeighborsConfig  `yaml:"neighbors"`
	Population PopulationConfig `yaml:"population"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Ripple     RippleConfig     `yaml:"ripple"`
	Grid       GridConfig       `yaml:"grid"`
	Render     RenderConfig     `yaml:"render"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// CameraConfig describes the fixed perspective camera.
type CameraConfig struct {
	DistanceFactor float64 `yaml:"distance_factor"` // eye distance = viewport height * this
	FovY           float64 `yaml:"fovy"`            // degrees
}

// BoxConfig holds per-box appearance and motion parameters.
type BoxConfig struct {
	Size             float64 `yaml:"size"`          // cube edge before the 0.9 draw factor
	SpacingScale     float64 `yaml:"spacing_scale"` // vertical displacement amplitude (scl)
	PhaseSpeed       float64 `yaml:"phase_speed"`
	NoiseScale       float64 `yaml:"noise_scale"`
	NoiseOffsetRange float64 `yaml:"noise_offset_range"`
	RandomFactorMin  float64 `yaml:"random_factor_min"`
	RandomFactorMax  float64 `yaml:"random_factor_max"`
	LifetimeTicks    int     `yaml:"lifetime_ticks"`
	MaxAlpha         float64 `yaml:"max_alpha"`
	FadeTicks        int     `yaml:"fade_ticks"` // alpha follows lifetime below this
	SpawnOffsetMin   float64 `yaml:"spawn_offset_min"`
	SpawnOffsetMax   float64 `yaml:"spawn_offset_max"`
	SettleDecay      float64 `yaml:"settle_decay"`
	SettleEpsilon    float64 `yaml:"settle_epsilon"`
	WaveSpeed        float64 `yaml:"wave_speed"` // global time advance per tick
}

// NeighborsConfig controls the cohesion term.
type NeighborsConfig struct {
	Radius       float64 `yaml:"radius"`
	MaxResults   int     `yaml:"max_results"`
	RefreshTicks int     `yaml:"refresh_ticks"` // cache is stale after this many ticks
	Blend        float64 `yaml:"blend"`
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	MaxBoxes           int `yaml:"max_boxes"`
	HeavyLoadThreshold int `yaml:"heavy_load_threshold"` // alternate ticks are skipped above this
}

// SpawnConfig holds spawn admission parameters.
type SpawnConfig struct {
	Threshold         float64 `yaml:"threshold"` // pointer speed that must be exceeded
	Interval          int     `yaml:"interval"`  // spawn only on ticks divisible by this
	SpeedMax          float64 `yaml:"speed_max"` // upper end of the speed mapping
	SingleSpawnChance float64 `yaml:"single_spawn_chance"`
	ScatterMin        float64 `yaml:"scatter_min"`
	ScatterMax        float64 `yaml:"scatter_max"`
	MoveScatter       float64 `yaml:"move_scatter"`
	DragScatter       float64 `yaml:"drag_scatter"`
	DragSpeedPerBox   float64 `yaml:"drag_speed_per_box"`
	DragMaxBoxes      int     `yaml:"drag_max_boxes"`
}

// PointerConfig holds pointer sampling intervals in milliseconds.
type PointerConfig struct {
	SampleIntervalMS int `yaml:"sample_interval_ms"`
	EventIntervalMS  int `yaml:"event_interval_ms"`
}

// RippleConfig holds parameters of the area impulse.
type RippleConfig struct {
	Chance        float64 `yaml:"chance"`
	MinPopulation int     `yaml:"min_population"`
	Radius        float64 `yaml:"radius"`
	CellSpan      int     `yaml:"cell_span"`
	Strength      float64 `yaml:"strength"`
	Decay         float64 `yaml:"decay"` // residual impulse multiplier per tick
}

// GridConfig holds spatial index parameters.
type GridConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// RenderConfig holds drawing parameters.
type RenderConfig struct {
	CullMargin     float64 `yaml:"cull_margin"`
	StrokeColor    RGB     `yaml:"stroke_color"`
	StrokeWidthMin float64 `yaml:"stroke_width_min"`
	StrokeWidthMax float64 `yaml:"stroke_width_max"`
	DrawScale      float64 `yaml:"draw_scale"` // cube edge = size * draw_scale
}

// RGB is an opaque 8-bit colour.
type RGB struct {
	R uint8 `yaml:"r"`
	G uint8 `yaml:"g"`
	B uint8 `yaml:"b"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow   float64 `yaml:"stats_window"` // seconds
	PerfWindow    int     `yaml:"perf_window"`  // ticks
	HeadlessFPS   int     `yaml:"headless_fps"` // simulated clock rate in headless mode
	AutopilotSpan float64 `yaml:"autopilot_span"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32      float32
	ScreenH32      float32
	DT             time.Duration // headless tick duration
	SampleInterval time.Duration
	EventInterval  time.Duration
	StatsTicks     int
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Grid.CellSize <= 0 {
		errs = append(errs, fmt.Errorf("grid.cell_size must be positive, got %v", c.Grid.CellSize))
	}
	if c.Population.MaxBoxes <= 0 {
		errs = append(errs, fmt.Errorf("population.max_boxes must be positive, got %d", c.Population.MaxBoxes))
	}
	if c.Box.LifetimeTicks <= 0 {
		errs = append(errs, fmt.Errorf("box.lifetime_ticks must be positive, got %d", c.Box.LifetimeTicks))
	}
	if c.Box.SpacingScale <= 0 {
		errs = append(errs, fmt.Errorf("box.spacing_scale must be positive, got %v", c.Box.SpacingScale))
	}
	if c.Box.FadeTicks <= 0 {
		errs = append(errs, fmt.Errorf("box.fade_ticks must be positive, got %d", c.Box.FadeTicks))
	}
	if c.Spawn.Interval <= 0 {
		errs = append(errs, fmt.Errorf("spawn.interval must be positive, got %d", c.Spawn.Interval))
	}
	if c.Spawn.SpeedMax <= c.Spawn.Threshold {
		errs = append(errs, fmt.Errorf("spawn.speed_max (%v) must exceed spawn.threshold (%v)", c.Spawn.SpeedMax, c.Spawn.Threshold))
	}
	if c.Neighbors.RefreshTicks <= 0 {
		errs = append(errs, fmt.Errorf("neighbors.refresh_ticks must be positive, got %d", c.Neighbors.RefreshTicks))
	}
	if c.Ripple.Radius <= 0 {
		errs = append(errs, fmt.Errorf("ripple.radius must be positive, got %v", c.Ripple.Radius))
	}
	return errors.Join(errs...)
}

// Clone returns an independent copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Revalidate checks a config edited in place and recomputes derived values.
func (c *Config) Revalidate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	fps := c.Telemetry.HeadlessFPS
	if fps <= 0 {
		fps = c.Screen.TargetFPS
	}
	if fps <= 0 {
		fps = 60
	}
	c.Derived.DT = time.Second / time.Duration(fps)
	c.Derived.SampleInterval = time.Duration(c.Pointer.SampleIntervalMS) * time.Millisecond
	c.Derived.EventInterval = time.Duration(c.Pointer.EventIntervalMS) * time.Millisecond

	c.Derived.StatsTicks = int(c.Telemetry.StatsWindow * float64(fps))
	if c.Derived.StatsTicks < 1 {
		c.Derived.StatsTicks = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
