package systems

import "testing"

func TestNoiseFieldRangeAndDeterminism(t *testing.T) {
	a := NewNoiseField(42)
	b := NewNoiseField(42)

	for i := 0; i < 200; i++ {
		x := float32(i) * 0.37
		y := float32(i) * -0.11
		va := a.Sample(x, y)
		if va < 0 || va > 1 {
			t.Fatalf("Sample(%v, %v) = %v, outside [0, 1]", x, y, va)
		}
		if vb := b.Sample(x, y); va != vb {
			t.Fatalf("same seed diverged at (%v, %v): %v vs %v", x, y, va, vb)
		}
	}
}

func TestNoiseFieldIsSmooth(t *testing.T) {
	n := NewNoiseField(7)
	const step = 0.001

	prev := n.Sample(0, 0)
	for i := 1; i < 500; i++ {
		v := n.Sample(float32(i)*step, 0)
		if d := v - prev; d > 0.05 || d < -0.05 {
			t.Fatalf("jump of %v between adjacent samples at step %d", d, i)
		}
		prev = v
	}
}
