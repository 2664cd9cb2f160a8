// Height field preview tool - interactive visualization of the box
// displacement field with sliders.
//
// Usage: go run ./cmd/heightpreview [-config file.yaml]
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/boxfield/config"
	"github.com/pthm-cable/boxfield/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 640
	previewW     = 640
	previewH     = 360
	gridW        = 256
	gridH        = 144
	panelWidth   = windowWidth - previewW - 30
)

// FieldParams holds the parameters the preview edits.
type FieldParams struct {
	NoiseScale   float32 `yaml:"noise_scale"`
	SpacingScale float32 `yaml:"spacing_scale"`
	WaveSpeed    float32 `yaml:"wave_speed"`
	Seed         int64   `yaml:"-"`
}

func paramsFromConfig(cfg *config.Config) FieldParams {
	return FieldParams{
		NoiseScale:   float32(cfg.Box.NoiseScale),
		SpacingScale: float32(cfg.Box.SpacingScale),
		WaveSpeed:    float32(cfg.Box.WaveSpeed),
		Seed:         42,
	}
}

// overridesYAML renders params as a box: section for a config file.
func overridesYAML(p FieldParams) (string, error) {
	out, err := yaml.Marshal(map[string]FieldParams{"box": p})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	defaults := paramsFromConfig(cfg)
	params := defaults

	rl.InitWindow(windowWidth, windowHeight, "Height Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	field := systems.NewNoiseField(params.Seed)
	grid := make([]float32, gridW*gridH)
	img := rl.GenImageColor(gridW, gridH, rl.Black)
	texture := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(texture)

	// Grid cells map onto a viewport of the configured size.
	viewW := float32(cfg.Screen.Width)
	viewH := float32(cfg.Screen.Height)

	var t float32
	animating := true
	needsRegen := true

	for !rl.WindowShouldClose() {
		if animating {
			t += params.WaveSpeed
			needsRegen = true
		}
		if needsRegen {
			generateHeights(grid, field, params, t, viewW, viewH)
			updateTexture(texture, grid)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawTexturePro(
			texture,
			rl.Rectangle{X: 0, Y: 0, Width: gridW, Height: gridH},
			rl.Rectangle{X: 10, Y: 10, Width: previewW, Height: previewH},
			rl.Vector2{},
			0,
			rl.White,
		)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		minVal, maxVal, avg := gridStats(grid)
		statsY := int32(previewH + 25)
		rl.DrawText(fmt.Sprintf("Min: %.1f  Max: %.1f  Avg: %.2f", minVal, maxVal, avg), 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Time: %.2f", t), 15, statsY+20, 16, rl.DarkGray)

		panelX := float32(previewW + 20)
		panelY := float32(10)

		rl.DrawText("Height Field Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		var changed bool
		params.NoiseScale, changed = slider(panelX, &panelY, "Noise scale", "%.4f", params.NoiseScale, 0.0005, 0.02)
		needsRegen = needsRegen || changed
		params.SpacingScale, changed = slider(panelX, &panelY, "Spacing scale (height amplitude)", "%.0f", params.SpacingScale, 10, 400)
		needsRegen = needsRegen || changed
		params.WaveSpeed, _ = slider(panelX, &panelY, "Wave speed (time per tick)", "%.4f", params.WaveSpeed, 0, 0.05)

		seed, seedChanged := slider(panelX, &panelY, "Seed", "%.0f", float32(params.Seed), 0, 99999)
		if seedChanged && int64(seed) != params.Seed {
			params.Seed = int64(seed)
			field = systems.NewNoiseField(params.Seed)
			needsRegen = true
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Stop", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset Time") {
			t = 0
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			field = systems.NewNoiseField(params.Seed)
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			field = systems.NewNoiseField(params.Seed)
			t = 0
			needsRegen = true
		}
		panelY += 50

		overrides, err := overridesYAML(params)
		if err != nil {
			overrides = err.Error()
		}
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		rl.DrawText(overrides, int32(panelX), int32(panelY)+25, 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), windowHeight-30, 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(overrides)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and advances y past it.
func slider(x float32, y *float32, label, format string, value, lo, hi float32) (float32, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: panelWidth - 80, Height: 20},
		"", "",
		value, lo, hi,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x+panelWidth-70), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v, v != value
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

// generateHeights samples the displacement at each grid cell centre, the
// way boxes at those screen positions would see it with no per-box offset.
func generateHeights(grid []float32, field *systems.NoiseField, p FieldParams, t, viewW, viewH float32) {
	for gy := 0; gy < gridH; gy++ {
		y := (float32(gy) + 0.5) / gridH * viewH
		for gx := 0; gx < gridW; gx++ {
			x := (float32(gx) + 0.5) / gridW * viewW
			grid[gy*gridW+gx] = field.Height(x*p.NoiseScale, y*p.NoiseScale, t, p.SpacingScale)
		}
	}
}

func gridStats(grid []float32) (minVal, maxVal, avg float32) {
	if len(grid) == 0 {
		return 0, 0, 0
	}
	minVal, maxVal = grid[0], grid[0]
	var sum float32
	for _, v := range grid {
		sum += v
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	return minVal, maxVal, sum / float32(len(grid))
}

// updateTexture maps heights to a blue (low) to orange (high) gradient.
func updateTexture(texture rl.Texture2D, grid []float32) {
	minVal, maxVal, _ := gridStats(grid)
	span := max(maxVal-minVal, 1e-6)

	pixels := make([]color.RGBA, len(grid))
	for i, v := range grid {
		u := (v - minVal) / span
		pixels[i] = color.RGBA{
			R: uint8(30 + u*210),
			G: uint8(60 + u*100),
			B: uint8(200 - u*170),
			A: 255,
		}
	}
	rl.UpdateTexture(texture, pixels)
}
