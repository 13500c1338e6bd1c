package gravity

import "math"

// Smoother is an adaptive exponential decay filter over gravity samples.
// The decay factor grows with tilt magnitude, so large confident tilts track
// fast while gentle ones are heavily averaged.
type Smoother struct {
	minDecay float64
	cur      Sample
}

// NewSmoother creates a smoother with the given minimum decay factor.
// The internal state starts at the -1 warm-up sentinel on both axes; the
// first real sample is blended against it. This nonphysical warm-up is kept
// on purpose: convergence timing downstream depends on it.
func NewSmoother(minDecay float64) *Smoother {
	return &Smoother{
		minDecay: minDecay,
		cur:      Sample{X: -1, Y: -1},
	}
}

// Update folds a sample into the filter state and returns the new smoothed
// value. The decay factor is d = minDecay + |x|*(1-minDecay), applied to both
// axes independently. Flat samples must be filtered out by the caller before
// reaching Update.
func (sm *Smoother) Update(s Sample) Sample {
	d := sm.minDecay + math.Abs(s.X)*(1-sm.minDecay)
	sm.cur.X = s.X*d + sm.cur.X*(1-d)
	sm.cur.Y = s.Y*d + sm.cur.Y*(1-d)
	return sm.cur
}

// Current returns the smoothed state without updating it.
func (sm *Smoother) Current() Sample {
	return sm.cur
}
