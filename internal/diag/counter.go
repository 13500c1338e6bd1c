package diag

import "sync"

const histogramBuckets = 12 // 30 degrees per bucket

// Counter accumulates rotation statistics, one Record call per emitted
// transform. It is the "frameless counter" the stabilizer reports through;
// reads are destructive by way of ResetCount so each snapshot covers a fresh
// window.
type Counter struct {
	mu        sync.Mutex
	count     int
	angleSum  float64
	histogram [histogramBuckets]int
}

// Snapshot is a read-and-reset view of the counter.
type Snapshot struct {
	SampleCount  int                   `json:"sample_count"`
	MeanAngleDeg float64               `json:"mean_angle_deg"`
	Histogram    [histogramBuckets]int `json:"histogram"`
}

// Record registers one displayed angle, in degrees [0, 360).
func (c *Counter) Record(angleDeg float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count++
	c.angleSum += angleDeg

	bucket := int(angleDeg / (360.0 / histogramBuckets))
	if bucket < 0 {
		bucket = 0
	}
	if bucket >= histogramBuckets {
		bucket = histogramBuckets - 1
	}
	c.histogram[bucket]++
}

// TrackingProperties returns the accumulated statistics without resetting.
func (c *Counter) TrackingProperties() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	mean := 0.0
	if c.count > 0 {
		mean = c.angleSum / float64(c.count)
	}
	return map[string]any{
		"sample_count":   c.count,
		"mean_angle_deg": mean,
		"histogram":      c.histogram,
	}
}

// ResetCount clears the accumulated statistics.
func (c *Counter) ResetCount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	c.angleSum = 0
	c.histogram = [histogramBuckets]int{}
}

// TakeSnapshot reads the current statistics and resets the counter in one
// step.
func (c *Counter) TakeSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	mean := 0.0
	if c.count > 0 {
		mean = c.angleSum / float64(c.count)
	}
	snap := Snapshot{
		SampleCount:  c.count,
		MeanAngleDeg: mean,
		Histogram:    c.histogram,
	}
	c.count = 0
	c.angleSum = 0
	c.histogram = [histogramBuckets]int{}
	return snap
}
