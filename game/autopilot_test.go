package game

import (
	"testing"
	"time"
)

func TestAutopilotStaysInViewport(t *testing.T) {
	a := NewAutopilot(1280, 720, 0.35, 3)

	for n := 0; n < 3600; n++ {
		in := a.Input(time.Duration(n) * frame)
		if in.PointerX < 0 || in.PointerX > 1280 || in.PointerY < 0 || in.PointerY > 720 {
			t.Fatalf("frame %d: pointer (%v, %v) left the viewport", n, in.PointerX, in.PointerY)
		}
	}
}

func TestAutopilotDeterministic(t *testing.T) {
	a := NewAutopilot(1280, 720, 0.35, 3)
	b := NewAutopilot(1280, 720, 0.35, 3)

	for n := 0; n < 100; n++ {
		now := time.Duration(n) * frame
		if a.Input(now) != b.Input(now) {
			t.Fatalf("frame %d: autopilots with the same seed diverged", n)
		}
	}
}

func TestAutopilotDrivesSpawns(t *testing.T) {
	s := newTestSimulation(t, nil)
	a := NewAutopilot(1280, 720, 0.35, 3)

	for n := 1; n <= 600; n++ {
		s.Step(a.Input(time.Duration(n) * frame))
	}
	if s.Counters().Spawned == 0 {
		t.Error("autopilot never spawned a box")
	}
	if s.Counters().Recycled == 0 {
		t.Error("no box completed its lifetime in 600 ticks")
	}
}
