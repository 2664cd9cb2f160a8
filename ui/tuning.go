package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/boxfield/config"
)

// Tunable describes one config value exposed as a slider.
type Tunable struct {
	Label   string
	Min     float32
	Max     float32
	Integer bool
	Format  string
	Get     func(*config.Config) float32
	Set     func(*config.Config, float32)
}

// DefaultTunables returns the sliders shown by the tuning panel.
func DefaultTunables() []Tunable {
	return []Tunable{
		{
			Label: "Box size", Min: 5, Max: 40, Format: "%.1f",
			Get: func(c *config.Config) float32 { return float32(c.Box.Size) },
			Set: func(c *config.Config, v float32) { c.Box.Size = float64(v) },
		},
		{
			Label: "Spacing scale", Min: 10, Max: 250, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Box.SpacingScale) },
			Set: func(c *config.Config, v float32) { c.Box.SpacingScale = float64(v) },
		},
		{
			Label: "Phase speed", Min: 0, Max: 0.05, Format: "%.4f",
			Get: func(c *config.Config) float32 { return float32(c.Box.PhaseSpeed) },
			Set: func(c *config.Config, v float32) { c.Box.PhaseSpeed = float64(v) },
		},
		{
			Label: "Noise scale", Min: 0.0001, Max: 0.01, Format: "%.4f",
			Get: func(c *config.Config) float32 { return float32(c.Box.NoiseScale) },
			Set: func(c *config.Config, v float32) { c.Box.NoiseScale = float64(v) },
		},
		{
			Label: "Wave speed", Min: 0, Max: 0.05, Format: "%.4f",
			Get: func(c *config.Config) float32 { return float32(c.Box.WaveSpeed) },
			Set: func(c *config.Config, v float32) { c.Box.WaveSpeed = float64(v) },
		},
		{
			Label: "Lifetime (ticks)", Min: 10, Max: 600, Integer: true, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Box.LifetimeTicks) },
			Set: func(c *config.Config, v float32) { c.Box.LifetimeTicks = int(v) },
		},
		{
			Label: "Max boxes", Min: 50, Max: 2000, Integer: true, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Population.MaxBoxes) },
			Set: func(c *config.Config, v float32) { c.Population.MaxBoxes = int(v) },
		},
		{
			Label: "Spawn threshold", Min: 0, Max: 30, Format: "%.1f",
			Get: func(c *config.Config) float32 { return float32(c.Spawn.Threshold) },
			Set: func(c *config.Config, v float32) { c.Spawn.Threshold = float64(v) },
		},
		{
			Label: "Spawn interval", Min: 1, Max: 10, Integer: true, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Spawn.Interval) },
			Set: func(c *config.Config, v float32) { c.Spawn.Interval = int(v) },
		},
		{
			Label: "Cell size", Min: 10, Max: 200, Format: "%.0f",
			Get: func(c *config.Config) float32 { return float32(c.Grid.CellSize) },
			Set: func(c *config.Config, v float32) { c.Grid.CellSize = float64(v) },
		},
	}
}

// ApplyTunable returns a copy of cfg with t set to v. Integer tunables are
// rounded and every value is clamped to the slider range. The original
// config is never modified.
func ApplyTunable(cfg *config.Config, t Tunable, v float32) (*config.Config, error) {
	v = max(t.Min, min(t.Max, v))
	if t.Integer {
		v = float32(math.Round(float64(v)))
	}
	next := cfg.Clone()
	t.Set(next, v)
	if err := next.Revalidate(); err != nil {
		return nil, fmt.Errorf("%s: %w", t.Label, err)
	}
	return next, nil
}

// TuningPanel edits a copy of the active config with raygui sliders.
type TuningPanel struct {
	renderer *Renderer
	tunables []Tunable
	base     *config.Config // restored by Reset
	x, y     int32
	width    int32
	visible  bool
	lastErr  error
}

// NewTuningPanel creates a hidden panel. Reset restores base.
func NewTuningPanel(base *config.Config, x, y, width int32) *TuningPanel {
	return &TuningPanel{
		renderer: NewRenderer(),
		tunables: DefaultTunables(),
		base:     base.Clone(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *TuningPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// IsVisible returns whether the panel is shown.
func (p *TuningPanel) IsVisible() bool {
	return p.visible
}

// Toggle switches panel visibility.
func (p *TuningPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Height returns the panel height in pixels.
func (p *TuningPanel) Height() int32 {
	return int32(len(p.tunables))*38 + 110
}

// Contains reports whether the screen point lies on the panel, so pointer
// input over it can be kept away from the field.
func (p *TuningPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return x >= float32(p.x) && x <= float32(p.x+p.width) &&
		y >= float32(p.y) && y <= float32(p.y+p.Height())
}

// Draw renders the sliders for cfg. When a slider moves to a valid value or
// Reset is pressed it returns the new config and true.
func (p *TuningPanel) Draw(cfg *config.Config) (*config.Config, bool) {
	if !p.visible {
		return nil, false
	}

	r := p.renderer
	pad := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, p.Height())

	x := float32(p.x + pad)
	y := p.y + pad
	y = r.DrawSectionHeader(p.x+pad, y, "Tuning")
	y += 4

	sliderW := float32(p.width - 2*pad - 70)
	var next *config.Config
	changed := false

	for _, t := range p.tunables {
		rl.DrawText(t.Label, int32(x), y, r.Theme.FontSize, r.Theme.LabelColor)
		y += 14

		cur := t.Get(cfg)
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: 16},
			"", "",
			cur, t.Min, t.Max,
		)
		rl.DrawText(fmt.Sprintf(t.Format, cur), int32(x+sliderW+8), y+2, r.Theme.FontSize, r.Theme.ValueColor)
		y += 24

		if v != cur && !changed {
			applied, err := ApplyTunable(cfg, t, v)
			p.lastErr = err
			if err == nil {
				next, changed = applied, true
			}
		}
	}

	y += 6
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: 100, Height: 26}, "Reset") {
		next, changed = p.base.Clone(), true
		p.lastErr = nil
	}
	y += 34

	if p.lastErr != nil {
		rl.DrawText(p.lastErr.Error(), int32(x), y, 10, rl.Red)
	}

	return next, changed
}
