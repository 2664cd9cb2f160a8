package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/boxfield/components"
	"github.com/pthm-cable/boxfield/config"
)

func TestStrokeWidth(t *testing.T) {
	p := NewRenderParams(config.Default())

	tests := []struct {
		z    float32
		want float32
	}{
		{-100, 0.8},
		{0, 1.65},
		{100, 2.5},
		{-500, 0.8},
		{500, 2.5},
	}
	for _, tt := range tests {
		if got := p.StrokeWidth(tt.z); math.Abs(float64(got-tt.want)) > 1e-4 {
			t.Errorf("StrokeWidth(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
}

func TestStrokeWidthFlatField(t *testing.T) {
	cfg := config.Default()
	cfg.Box.SpacingScale = 0
	p := NewRenderParams(cfg)

	for _, z := range []float32{-1, 0, 1} {
		got := p.StrokeWidth(z)
		if math.IsNaN(float64(got)) || got != p.StrokeWidthMin {
			t.Errorf("StrokeWidth(%v) with zero scale = %v, want %v", z, got, p.StrokeWidthMin)
		}
	}
}

func TestCollectRenderablesCulls(t *testing.T) {
	p := NewRenderParams(config.Default())
	bounds := r2.Box{Min: r2.Vec{X: -690, Y: -410}, Max: r2.Vec{X: 690, Y: 410}}

	inside := &components.Box{ID: 1, X: 100, Y: -50, Z: 10, Lifetime: 20, Alpha: 160, Settled: true}
	edge := &components.Box{ID: 2, X: 690, Y: 0, Lifetime: 20, Alpha: 40, Settled: true}
	outside := &components.Box{ID: 3, X: 700, Y: 0, Lifetime: 20, Alpha: 160, Settled: true}
	dead := &components.Box{ID: 4, X: 0, Y: 0, Lifetime: 0, Alpha: 0, Settled: true}
	spawning := &components.Box{ID: 5, X: 0, Y: 0, Z: 10, Lifetime: 20, Alpha: 160, SpawnOffset: 30}

	out := CollectRenderables(nil, []*components.Box{inside, edge, outside, dead, spawning}, bounds, p)
	if len(out) != 3 {
		t.Fatalf("collected %d renderables, want 3", len(out))
	}

	if out[0].X != 100 || out[0].Y != -50 || out[0].Z != 10 || out[0].Alpha != 160 {
		t.Errorf("inside renderable = %+v", out[0])
	}
	if out[1].Alpha != 40 {
		t.Errorf("edge alpha = %d, want 40", out[1].Alpha)
	}
	if out[2].Z != -20 {
		t.Errorf("spawning box z = %v, want settle offset applied (-20)", out[2].Z)
	}
}

func TestCollectRenderablesReusesBuffer(t *testing.T) {
	p := NewRenderParams(config.Default())
	bounds := r2.Box{Min: r2.Vec{X: -10, Y: -10}, Max: r2.Vec{X: 10, Y: 10}}
	live := []*components.Box{{X: 1, Y: 1, Lifetime: 5, Alpha: 100, Settled: true}}

	buf := make([]Renderable, 0, 8)
	buf = CollectRenderables(buf[:0], live, bounds, p)
	buf = CollectRenderables(buf[:0], live, bounds, p)
	if len(buf) != 1 || cap(buf) != 8 {
		t.Errorf("len %d cap %d, want 1 and 8", len(buf), cap(buf))
	}
}
