package game

import (
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/renderer"
	"github.com/pthm-cable/boxfield/telemetry"
	"github.com/pthm-cable/boxfield/ui"
)

const controlsLegend = "[T] Tuning  [P] Perf  [A] Autopilot  [Space] Pause  [F11] Fullscreen"

// Options configures a new Game.
type Options struct {
	Seed           int64
	LogStats       bool    // output stats via slog
	StatsWindowSec float64 // stats window in simulated seconds
	OutputDir      string  // directory for CSV logs (empty = disabled)
	Headless       bool    // no window, pointer driven by the autopilot
	StepsPerUpdate int     // ticks per UpdateHeadless call

	// Config overrides the global config when set.
	Config *config.Config

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game wires the simulation to the window, input and telemetry.
type Game struct {
	cfg *config.Config
	sim *Simulation

	autopilot    *Autopilot
	useAutopilot bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	// Graphics (nil when headless)
	boxes     *renderer.BoxRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	tuning    *ui.TuningPanel
	showPerf  bool

	paused         bool
	stepsPerUpdate int

	screenWidth, screenHeight float32
}

// NewGameWithOptions creates a game from opts.Config, or the global config.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:            cfg,
		sim:            NewSimulation(cfg, opts.Seed),
		autopilot:      NewAutopilot(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32, float32(cfg.Telemetry.AutopilotSpan), opts.Seed),
		useAutopilot:   opts.Headless,
		collector:      telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarks:      telemetry.NewBookmarkDetector(10, cfg.Population.HeavyLoadThreshold, cfg.Population.MaxBoxes),
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		stepsPerUpdate: steps,
		screenWidth:    cfg.Derived.ScreenW32,
		screenHeight:   cfg.Derived.ScreenH32,
	}
	g.sim.SetPerf(g.perfCollector)

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	if !opts.Headless {
		g.boxes = renderer.NewBoxRenderer(cfg)
		g.hud = ui.NewHUD()
		g.perfPanel = ui.NewPerfPanel(int32(g.screenWidth)-260, 10)
		g.tuning = ui.NewTuningPanel(cfg, 10, 140, 300)
	}

	return g
}

// Update reads window input and advances one tick.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()
	if g.paused {
		return
	}

	now := time.Duration(rl.GetTime() * float64(time.Second))
	var in Input
	if g.useAutopilot {
		in = g.autopilot.Input(now)
	} else {
		in = g.pointerInput(now)
	}
	g.step(in)
}

// UpdateHeadless advances stepsPerUpdate ticks driven by the autopilot on a
// simulated clock.
func (g *Game) UpdateHeadless() {
	for i := 0; i < g.stepsPerUpdate; i++ {
		now := time.Duration(g.sim.Tick()+1) * g.cfg.Derived.DT
		g.step(g.autopilot.Input(now))
	}
}

// step runs one simulation tick with timing and telemetry.
func (g *Game) step(in Input) {
	g.perfCollector.StartTick()
	g.sim.Step(in)
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.perfCollector.EndTick()
}

// Draw renders the field and the overlays.
func (g *Game) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(rl.Black)
	g.boxes.Draw(g.sim.Camera(), g.sim.Renderables())
	g.drawUI()
}

func (g *Game) drawUI() {
	pool := g.sim.PoolState()
	spawning := 0
	for _, b := range g.sim.Live() {
		if b.State() == components.StateSpawning {
			spawning++
		}
	}

	g.hud.Draw(ui.HUDData{
		Title:     g.cfg.Screen.Title,
		Live:      len(g.sim.Live()),
		Spawning:  spawning,
		Retired:   pool.Retired,
		Allocated: pool.Allocated,
		MaxBoxes:  g.cfg.Population.MaxBoxes,
		HeavyLoad: g.cfg.Population.HeavyLoadThreshold,
		GridCells: pool.GridCells,
		Tick:      g.sim.Tick(),
		FPS:       rl.GetFPS(),
		WaveTime:  g.sim.Time(),
	})
	if g.paused {
		rl.DrawText("PAUSED", 10, 118, 16, rl.Yellow)
	}
	if g.useAutopilot {
		rl.DrawText("AUTOPILOT", int32(g.screenWidth)-110, int32(g.screenHeight)-25, 14, rl.Gray)
	}

	if g.showPerf {
		g.perfPanel.Draw(g.perfCollector.Stats())
	}

	if next, ok := g.tuning.Draw(g.cfg); ok {
		g.applyConfig(next)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}

// applyConfig switches every consumer to cfg.
func (g *Game) applyConfig(cfg *config.Config) {
	g.cfg = cfg
	g.sim.SetConfig(cfg)
	g.bookmarks.SetLimits(cfg.Population.HeavyLoadThreshold, cfg.Population.MaxBoxes)
	if g.boxes != nil {
		g.boxes.SetConfig(cfg)
	}
	slog.Debug("config updated",
		"box_size", cfg.Box.Size,
		"max_boxes", cfg.Population.MaxBoxes,
		"cell_size", cfg.Grid.CellSize,
	)
}

// Unload flushes and closes run output.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the number of simulation ticks run.
func (g *Game) Tick() int64 {
	return g.sim.Tick()
}

// Simulation returns the underlying simulation.
func (g *Game) Simulation() *Simulation {
	return g.sim
}
