package stabilizer

import (
	"testing"
	"time"
)

func TestMachineInitialState(t *testing.T) {
	m := NewMachine()
	if m.State() != LockFree {
		t.Errorf("initial state = %v, want free", m.State())
	}
	if m.Context() != nil {
		t.Error("context must be nil outside the unlock window")
	}
}

func TestMachineLockFromFree(t *testing.T) {
	m := NewMachine()
	m.Lock()
	if m.State() != LockLocked {
		t.Errorf("state after Lock = %v, want locked", m.State())
	}
}

func TestMachineLockIdempotent(t *testing.T) {
	m := NewMachine()
	m.Lock()
	m.Lock()
	if m.State() != LockLocked {
		t.Errorf("state after double Lock = %v, want locked", m.State())
	}
	if m.Context() != nil {
		t.Error("double Lock must not create an unlock context")
	}
}

func TestMachineUnlockCapturesContext(t *testing.T) {
	m := NewMachine()
	m.Lock()

	now := time.Now()
	m.Unlock(-3.135, 1.2, now)

	if m.State() != LockUnlocking {
		t.Fatalf("state after Unlock = %v, want unlocking", m.State())
	}
	ctx := m.Context()
	if ctx == nil {
		t.Fatal("unlock context missing")
	}
	if ctx.InitialAngle != -3.135 {
		t.Errorf("InitialAngle = %v, want the displayed angle at the call", ctx.InitialAngle)
	}
	if want := 1.2 - (-3.135); ctx.DeltaAngle != want {
		t.Errorf("DeltaAngle = %v, want %v", ctx.DeltaAngle, want)
	}
	if !ctx.Start.Equal(now) {
		t.Errorf("Start = %v, want %v", ctx.Start, now)
	}
}

func TestMachineLockAbandonsUnlock(t *testing.T) {
	m := NewMachine()
	m.Lock()
	m.Unlock(-3.135, 1.2, time.Now())

	// Abandon-and-snap: a lock request during the window wins.
	m.Lock()
	if m.State() != LockLocked {
		t.Errorf("state = %v, want locked", m.State())
	}
	if m.Context() != nil {
		t.Error("abandoned unlock must drop its context")
	}
}

func TestMachineFinish(t *testing.T) {
	m := NewMachine()
	m.Unlock(0.5, 1.0, time.Now())
	m.Finish()
	if m.State() != LockFree {
		t.Errorf("state after Finish = %v, want free", m.State())
	}
	if m.Context() != nil {
		t.Error("context must be dropped on Finish")
	}

	// Finish outside the window is a no-op.
	m.Lock()
	m.Finish()
	if m.State() != LockLocked {
		t.Errorf("Finish from locked moved state to %v", m.State())
	}
}
