package stabilizer

import "math"

// RawAngle derives the instantaneous tilt angle from a smoothed gravity
// vector: atan2(x, y) - pi.
func RawAngle(x, y float64) float64 {
	return math.Atan2(x, y) - math.Pi
}

// DisplayAngle maps a raw angle to the angle actually displayed, applying
// lock-band quantization while locked. The snap is hard, re-evaluated fresh
// on every tick; crossing the band midpoint jumps discontinuously between
// the two bounds, and leaving the band falls back to live tracking even
// while nominally locked.
func (p Params) DisplayAngle(state LockState, rawAngle float64) float64 {
	if state != LockLocked {
		return rawAngle
	}

	mid := (p.MinLockAngle + p.MaxLockAngle) / 2
	switch {
	case p.MinLockAngle < rawAngle && rawAngle <= mid:
		return p.MinLockAngle
	case mid < rawAngle && rawAngle < p.MaxLockAngle:
		return p.MaxLockAngle
	default:
		return rawAngle
	}
}
