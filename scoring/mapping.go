package scoring

import "math"

// ramp maps v linearly from [lo, hi] onto [0, 1], clamping outside the range
func ramp(v, lo, hi float64) float64 {
	if hi <= lo {
		if v >= hi {
			return 1
		}
		return 0
	}
	return clamp((v-lo)/(hi-lo), 0, 1)
}

// plateau rises over [rise0, rise1], stays at 1 until fall0 and falls back
// to 0 at fall1.
func plateau(v, rise0, rise1, fall0, fall1 float64) float64 {
	if v <= fall0 {
		return ramp(v, rise0, rise1)
	}
	return 1 - ramp(v, fall0, fall1)
}

// clamp bounds v to [lo, hi]; NaN maps to lo
func clamp(v, lo, hi float64) float64 {
	if v < lo || math.IsNaN(v) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
