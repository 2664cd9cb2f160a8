package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boxfield/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Live      int
	Spawning  int
	Retired   int
	Allocated int
	MaxBoxes  int
	HeavyLoad int // population above which alternate ticks are skipped
	GridCells int
	Tick      int64
	FPS       int32
	WaveTime  float32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Live: %d | Spawning: %d | Pooled: %d | Allocated: %d",
			data.Live, data.Spawning, data.Retired, data.Allocated),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Cells: %d | t=%.2f", data.Tick, data.FPS, data.GridCells, data.WaveTime),
		10, 55, 16, rl.LightGray,
	)

	warn := float32(0)
	if data.MaxBoxes > 0 {
		warn = float32(data.HeavyLoad) / float32(data.MaxBoxes)
	}
	h.renderer.DrawOccupancyBar(10, 78, "Population", data.Live, data.MaxBoxes, warn, 320)

	if data.Live > data.HeavyLoad {
		rl.DrawText("HEAVY LOAD: half-rate updates", 10, 98, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase step timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel. Phases are listed in step order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  p95: %s",
		stats.AvgTick.Round(time.Microsecond),
		stats.P95Tick.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, ph := range telemetry.Phases() {
		pct := stats.PhasePct[ph]

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %5.1f%%", ph, pct),
			x, y, 12, color,
		)
		y += 14
	}
}
