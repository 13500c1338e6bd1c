package diag

import "testing"

func TestCounterRecordAndSnapshot(t *testing.T) {
	c := &Counter{}
	c.Record(10)
	c.Record(20)
	c.Record(350)

	snap := c.TakeSnapshot()
	if snap.SampleCount != 3 {
		t.Errorf("count = %d, want 3", snap.SampleCount)
	}
	if want := (10.0 + 20 + 350) / 3; snap.MeanAngleDeg != want {
		t.Errorf("mean = %v, want %v", snap.MeanAngleDeg, want)
	}
	if snap.Histogram[0] != 2 || snap.Histogram[11] != 1 {
		t.Errorf("histogram = %v, want 2 in bucket 0 and 1 in bucket 11", snap.Histogram)
	}

	// Snapshot is read-and-reset.
	again := c.TakeSnapshot()
	if again.SampleCount != 0 || again.MeanAngleDeg != 0 {
		t.Errorf("counter not reset: %+v", again)
	}
}

func TestCounterTrackingPropertiesNonDestructive(t *testing.T) {
	c := &Counter{}
	c.Record(90)

	props := c.TrackingProperties()
	if props["sample_count"] != 1 {
		t.Errorf("sample_count = %v, want 1", props["sample_count"])
	}

	if c.TakeSnapshot().SampleCount != 1 {
		t.Error("TrackingProperties must not reset the counter")
	}
}

func TestCounterResetCount(t *testing.T) {
	c := &Counter{}
	c.Record(45)
	c.ResetCount()
	if snap := c.TakeSnapshot(); snap.SampleCount != 0 {
		t.Errorf("count after reset = %d, want 0", snap.SampleCount)
	}
}

func TestCounterBucketClamping(t *testing.T) {
	c := &Counter{}
	// 360 should never be recorded, but a boundary value must not panic or
	// fall outside the last bucket.
	c.Record(359.999)
	c.Record(0)
	snap := c.TakeSnapshot()
	if snap.Histogram[11] != 1 || snap.Histogram[0] != 1 {
		t.Errorf("histogram = %v", snap.Histogram)
	}
}
