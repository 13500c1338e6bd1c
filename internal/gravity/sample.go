package gravity

import "math"

// Sample is a 2D projection of the device's sensed gravity vector onto its
// screen plane, components normalized to roughly [-1, 1]. It is the tilt
// proxy that drives the stabilizer.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Flat reports whether the sample is too close to level to yield a reliable
// rotation. Flat readings are discarded by the stabilizer: no smoothing
// update, no transform for that tick.
func (s Sample) Flat(threshold float64) bool {
	return math.Abs(s.X) < threshold && math.Abs(s.Y) < threshold
}

// Source is anything that can provide gravity samples over time.
// A nil sample with a nil error means "no reading this tick" and must be
// skipped by the caller, not treated as zero.
type Source interface {
	Next() (*Sample, error)
}
