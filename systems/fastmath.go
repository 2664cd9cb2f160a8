package systems

import "math"

// Fast math functions for the per-box hot path.
// These avoid float32->float64 conversions that Go's math package requires.

// fastSin approximates sin(x) using a polynomial. Accurate to ~0.001 for all x.
func fastSin(x float32) float32 {
	x = wrapAngle(x)
	const pi = math.Pi
	const pi2 = pi * pi
	ax := absf(x)
	y := 4 * x * (pi - ax) / pi2
	// Correction: improves accuracy
	return 0.225*(y*absf(y)-y) + y
}

// wrapAngle maps any angle into [-pi, pi].
// Phases grow without bound, so a single-step correction is not enough.
func wrapAngle(a float32) float32 {
	if a >= -math.Pi && a <= math.Pi {
		return a
	}
	return float32(math.Remainder(float64(a), 2*math.Pi))
}

// lerp interpolates from a to b by t.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// remap maps v from [inLo, inHi] onto [outLo, outHi] without clamping.
func remap(v, inLo, inHi, outLo, outHi float32) float32 {
	return outLo + (v-inLo)/(inHi-inLo)*(outHi-outLo)
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
