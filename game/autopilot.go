package game

import (
	"math"
	"time"

	"github.com/pthm-cable/boxfield/systems"
)

// Autopilot synthesizes a wandering pointer for headless runs: an ellipse
// around the viewport center whose radius and button state drift with noise.
type Autopilot struct {
	w, h  float32
	span  float32 // ellipse radius as a fraction of the viewport
	noise *systems.NoiseField
}

// NewAutopilot creates an autopilot for a w x h viewport.
func NewAutopilot(w, h, span float32, seed int64) *Autopilot {
	return &Autopilot{
		w:     w,
		h:     h,
		span:  span,
		noise: systems.NewNoiseField(seed + 1),
	}
}

// Resize updates the viewport the path is laid out in.
func (a *Autopilot) Resize(w, h float32) {
	a.w, a.h = w, h
}

// Input returns the pointer state at time now.
func (a *Autopilot) Input(now time.Duration) Input {
	t := float32(now.Seconds())
	angle := float64(t * 1.3)

	wobble := 0.6 + 0.4*a.noise.Sample(t*0.5, 0)
	rx := a.w * a.span * wobble
	ry := a.h * a.span * wobble

	return Input{
		PointerX: a.w/2 + rx*float32(math.Cos(angle)),
		PointerY: a.h/2 + ry*float32(math.Sin(angle*1.7)),
		Pressed:  a.noise.Sample(t*0.2, 7) > 0.6,
		Now:      now,
	}
}
