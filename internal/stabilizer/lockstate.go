package stabilizer

import "time"

// LockState is the stabilizer's angle-locking mode. Exactly one value is
// live at a time.
type LockState int

const (
	// LockFree tracks the live raw angle.
	LockFree LockState = iota
	// LockLocked quantizes raw angles inside the lock band to its bounds.
	LockLocked
	// LockUnlocking animates from the last locked angle back to the live
	// raw angle over a fixed window, then returns to LockFree.
	LockUnlocking
)

func (s LockState) String() string {
	switch s {
	case LockFree:
		return "free"
	case LockLocked:
		return "locked"
	case LockUnlocking:
		return "unlocking"
	}
	return "unknown"
}

// UnlockContext is captured once at the instant of an unlock request and is
// read-only thereafter. It exists exactly while the state is LockUnlocking.
type UnlockContext struct {
	Start        time.Time
	InitialAngle float64
	DeltaAngle   float64
}

// Angle samples the animation at the given elapsed time in seconds.
func (c UnlockContext) Angle(elapsed float64) float64 {
	return c.InitialAngle + c.DeltaAngle*SpringEase(elapsed)
}

// Machine holds the three-state lock model and its transition rules.
// It is not safe for concurrent use; the engine drives it from its single
// run-loop goroutine.
type Machine struct {
	state LockState
	ctx   *UnlockContext
}

func NewMachine() *Machine {
	return &Machine{state: LockFree}
}

// State returns the current lock state.
func (m *Machine) State() LockState {
	return m.state
}

// Context returns the in-flight unlock context, or nil unless the state is
// LockUnlocking.
func (m *Machine) Context() *UnlockContext {
	return m.ctx
}

// Lock transitions to LockLocked from any state. Locking while an unlock
// animation is in flight abandons the animation and snaps on the next tick
// (abandon-and-snap policy). Locking twice is a no-op.
func (m *Machine) Lock() {
	m.state = LockLocked
	m.ctx = nil
}

// Unlock transitions to LockUnlocking from any state, capturing the current
// displayed angle as the animation start and the distance to the live raw
// angle as its travel.
func (m *Machine) Unlock(displayedAngle, rawAngle float64, now time.Time) {
	m.state = LockUnlocking
	m.ctx = &UnlockContext{
		Start:        now,
		InitialAngle: displayedAngle,
		DeltaAngle:   rawAngle - displayedAngle,
	}
}

// Finish completes the unlock window, returning to LockFree. It is a no-op
// in any other state.
func (m *Machine) Finish() {
	if m.state != LockUnlocking {
		return
	}
	m.state = LockFree
	m.ctx = nil
}
