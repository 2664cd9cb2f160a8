package game

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyT) {
		g.tuning.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}
	if rl.IsKeyPressed(rl.KeyA) {
		g.useAutopilot = !g.useAutopilot
	}
}

// pointerInput samples the mouse. While the pointer is over the tuning
// panel the field sees it parked at its last position.
func (g *Game) pointerInput(now time.Duration) Input {
	mouse := rl.GetMousePosition()
	if g.tuning.Contains(mouse.X, mouse.Y) {
		last := g.sim.pointer
		return Input{PointerX: float32(last.X), PointerY: float32(last.Y), Now: now}
	}
	return Input{
		PointerX: mouse.X,
		PointerY: mouse.Y,
		Pressed:  rl.IsMouseButtonDown(rl.MouseButtonLeft),
		Now:      now,
	}
}

// handleResize checks for window resize and propagates new dimensions.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	g.sim.Resize(w, h)
	g.autopilot.Resize(w, h)
	g.perfPanel.SetPosition(int32(w)-260, 10)
}
