package stabilizer

import "math"

// SpringEase is the underdamped spring curve driving the unlock animation:
//
//	f(t) = -2^(-6t)/2 * (-2*2^(6t) + sin(12t) + 2*cos(12t))
//
// f(0) = 0 exactly and f(t) settles at 1 well before t = 1; the bounce on the
// way encodes the intended release feel, so the constants are load-bearing.
func SpringEase(t float64) float64 {
	return -math.Exp2(-6*t) / 2 * (-2*math.Exp2(6*t) + math.Sin(12*t) + 2*math.Cos(12*t))
}
