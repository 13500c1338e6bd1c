package stabilizer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/relabs-tech/videolevel/internal/diag"
	"github.com/relabs-tech/videolevel/internal/gravity"
	"github.com/relabs-tech/videolevel/internal/transform"
)

// ErrSensorUnavailable is returned by Start when the gravity source cannot
// deliver samples.
var ErrSensorUnavailable = errors.New("stabilizer: sensor unavailable")

// ErrAlreadyStarted is returned by Start while the engine is running.
var ErrAlreadyStarted = errors.New("stabilizer: already started")

// TransformFunc receives every emitted transform. It is invoked synchronously
// on the engine's run loop; callers must not block in it.
type TransformFunc func(transform.Affine)

// Engine wires the motion-to-transform pipeline: per sensor tick, flat guard,
// smoother update, raw angle, lock-state quantization (or the unlock
// animation during its window), transform build, callback.
//
// All shared state lives on a single run-loop goroutine. The sensor ticker,
// the animation ticker and external control requests (Lock, Unlock,
// TakeDiagnostics) are multiplexed onto that one goroutine, so the filter
// memory, lock state and unlock context need no locking of their own.
type Engine struct {
	params   Params
	src      gravity.Source
	counter  *diag.Counter
	smoother *gravity.Smoother
	machine  *Machine

	videoWidth  float64
	videoHeight float64
	viewWidth   float64
	viewHeight  float64
	onTransform TransformFunc

	lastRaw       float64
	lastDisplayed float64

	// pending holds the sample consumed by Start's probe read, fed to the
	// first sensor tick so it is not lost.
	pending *gravity.Sample

	// now is the animation clock; tests substitute it.
	now func() time.Time

	// state mirrors the machine's state for lock-free reads, including
	// from within the transform callback.
	state atomic.Int32

	animTicker *time.Ticker

	mu      sync.Mutex
	running bool
	cmds    chan func()
	quit    chan struct{}
	done    chan struct{}
}

// NewEngine creates an engine over the given gravity source. The counter may
// be nil if no diagnostics are wanted.
func NewEngine(params Params, src gravity.Source, counter *diag.Counter) *Engine {
	return &Engine{
		params:   params,
		src:      src,
		counter:  counter,
		smoother: gravity.NewSmoother(params.MinDecay),
		machine:  NewMachine(),
		now:      time.Now,
	}
}

// Start validates the surface dimensions, probes the sensor once, and begins
// sampling. onTransform fires for every non-flat tick until Stop.
func (e *Engine) Start(videoWidth, videoHeight, viewWidth, viewHeight float64, onTransform TransformFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrAlreadyStarted
	}

	// Fail fast on degenerate surfaces rather than emitting NaN scales.
	if _, err := transform.Scale(viewWidth, viewHeight, videoWidth, videoHeight, 0); err != nil {
		return err
	}

	// One probe read surfaces SensorUnavailable at start instead of as a
	// silent stream of per-tick errors. A nil sample is a valid "nothing
	// yet" answer; a real one is kept for the first tick.
	probed, err := e.src.Next()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	e.pending = probed

	e.videoWidth = videoWidth
	e.videoHeight = videoHeight
	e.viewWidth = viewWidth
	e.viewHeight = viewHeight
	e.onTransform = onTransform

	e.cmds = make(chan func())
	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true

	// An unlock requested while stopped is resumed here; the run loop owns
	// the animation ticker.
	if e.machine.State() == LockUnlocking {
		e.animTicker = time.NewTicker(e.params.FrameInterval)
	}

	go e.run()
	return nil
}

// Stop synchronously halts sensor delivery and releases the animation tick
// source if an unlock is in flight. No transform callback fires after Stop
// returns. Stopping a stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.mu.Unlock()

	close(e.quit)
	<-e.done
}

// Lock snaps the displayed angle to the lock band on subsequent ticks. An
// in-flight unlock animation is abandoned.
func (e *Engine) Lock() {
	e.do(func() {
		e.machine.Lock()
		e.state.Store(int32(e.machine.State()))
		e.stopAnimation()
	})
}

// Unlock starts the spring animation from the current displayed angle back
// to the live raw angle.
func (e *Engine) Unlock() {
	e.do(func() {
		e.stopAnimation()
		e.machine.Unlock(e.lastDisplayed, e.lastRaw, e.now())
		e.state.Store(int32(e.machine.State()))

		// Only a live run loop can serve the ticker; on a stopped
		// engine the window is resumed by the next Start.
		e.mu.Lock()
		running := e.running
		e.mu.Unlock()
		if running {
			e.animTicker = time.NewTicker(e.params.FrameInterval)
		}
	})
}

// State returns the current lock state.
func (e *Engine) State() LockState {
	return LockState(e.state.Load())
}

// TakeDiagnostics reads and resets the rotation statistics.
func (e *Engine) TakeDiagnostics() diag.Snapshot {
	var snap diag.Snapshot
	e.do(func() {
		if e.counter != nil {
			snap = e.counter.TakeSnapshot()
		}
	})
	return snap
}

// ZeroRotationTransform returns the baseline transform for the configured
// surfaces, for layout before any sensor data arrives.
func (e *Engine) ZeroRotationTransform() (transform.Affine, error) {
	return transform.ZeroRotation(e.viewWidth, e.viewHeight, e.videoWidth, e.videoHeight)
}

// do runs fn on the engine queue, waiting for completion. Before Start and
// after Stop it runs fn inline, which keeps the control surface usable for
// setup and tests.
func (e *Engine) do(fn func()) {
	e.mu.Lock()
	running := e.running
	e.mu.Unlock()

	if !running {
		fn()
		return
	}

	donec := make(chan struct{})
	select {
	case e.cmds <- func() { fn(); close(donec) }:
		<-donec
	case <-e.quit:
		// The loop is shutting down; wait for it, then apply inline.
		<-e.done
		fn()
	}
}

func (e *Engine) run() {
	defer close(e.done)

	sensor := time.NewTicker(e.params.SampleInterval)
	defer sensor.Stop()
	defer e.stopAnimation()

	for {
		// A nil channel blocks forever, so the animation case is inert
		// outside the unlock window.
		var animC <-chan time.Time
		if e.animTicker != nil {
			animC = e.animTicker.C
		}

		select {
		case <-e.quit:
			return
		case <-sensor.C:
			e.onSensorTick()
		case <-animC:
			e.onAnimationTick()
		case fn := <-e.cmds:
			fn()
		}
	}
}

// onSensorTick pulls one sample through the pipeline. A sample held over
// from Start's probe read is consumed before the source is asked again.
func (e *Engine) onSensorTick() {
	s := e.pending
	e.pending = nil
	if s == nil {
		var err error
		s, err = e.src.Next()
		if err != nil {
			log.Printf("stabilizer: sensor read error: %v", err)
			return
		}
	}
	if s == nil {
		// No reading this tick.
		return
	}
	if s.Flat(e.params.FlatThreshold) {
		// Gravity direction is ill-defined; keep the last-known-good
		// transform on screen.
		return
	}

	sm := e.smoother.Update(*s)
	e.lastRaw = RawAngle(sm.X, sm.Y)

	if e.machine.State() == LockUnlocking {
		// The animation clock owns the displayed angle for now; the raw
		// angle stays current for when the window ends.
		return
	}

	e.lastDisplayed = e.params.DisplayAngle(e.machine.State(), e.lastRaw)
	e.emit(e.lastDisplayed)
}

// onAnimationTick samples the unlock animation, terminating the window once
// elapsed time exceeds the unlock duration, even if a tick was missed and the
// overrun is observed late.
func (e *Engine) onAnimationTick() {
	ctx := e.machine.Context()
	if ctx == nil {
		e.stopAnimation()
		return
	}

	elapsed := e.now().Sub(ctx.Start).Seconds()
	if elapsed > e.params.UnlockDuration.Seconds() {
		e.stopAnimation()
		e.machine.Finish()
		e.state.Store(int32(e.machine.State()))
		e.lastDisplayed = e.lastRaw
		e.emit(e.lastDisplayed)
		return
	}

	e.lastDisplayed = ctx.Angle(elapsed)
	e.emit(e.lastDisplayed)
}

func (e *Engine) emit(angle float64) {
	tf, err := transform.Build(e.viewWidth, e.viewHeight, e.videoWidth, e.videoHeight, angle)
	if err != nil {
		log.Printf("stabilizer: transform build error: %v", err)
		return
	}

	if e.counter != nil {
		deg := tf.Rotation * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		e.counter.Record(deg)
	}

	if e.onTransform != nil {
		e.onTransform(tf)
	}
}

func (e *Engine) stopAnimation() {
	if e.animTicker == nil {
		return
	}
	e.animTicker.Stop()
	e.animTicker = nil
}
