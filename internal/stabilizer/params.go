package stabilizer

import "time"

// Params holds every tunable of the stabilizer. They are injected at engine
// construction rather than read from globals so tests and callers can vary
// them.
type Params struct {
	// MinDecay is the smoothing decay floor, used when the device is held
	// perfectly upright (x = 0).
	MinDecay float64

	// FlatThreshold is the per-axis magnitude below which a gravity sample
	// counts as a flat reading and is discarded.
	FlatThreshold float64

	// MinLockAngle and MaxLockAngle bound the lock band. While Locked, raw
	// angles inside the band snap to whichever bound is nearer the midpoint
	// side they fall on. Both must lie in (-pi, pi) with MinLockAngle <
	// MaxLockAngle.
	MinLockAngle float64
	MaxLockAngle float64

	// UnlockDuration is the length of the unlock window during which the
	// spring animation, not the sensor, drives the displayed angle.
	UnlockDuration time.Duration

	// SampleInterval is the sensor polling cadence.
	SampleInterval time.Duration

	// FrameInterval is the unlock animation cadence, nominally once per
	// rendered frame.
	FrameInterval time.Duration
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		MinDecay:       0.15,
		FlatThreshold:  0.2,
		MinLockAngle:   -3.135,
		MaxLockAngle:   -2.09,
		UnlockDuration: time.Second,
		SampleInterval: 33 * time.Millisecond,
		FrameInterval:  16 * time.Millisecond,
	}
}
