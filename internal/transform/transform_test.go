package transform

import (
	"errors"
	"math"
	"testing"
)

func TestScaleRejectsDegenerateDimensions(t *testing.T) {
	cases := [][4]float64{
		{0, 200, 1280, 720},
		{390, 0, 1280, 720},
		{390, 200, 0, 720},
		{390, 200, 1280, 0},
		{-390, 200, 1280, 720},
	}
	for _, c := range cases {
		if _, err := Scale(c[0], c[1], c[2], c[3], 0); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Scale(%v) err = %v, want ErrInvalidDimensions", c, err)
		}
	}
}

func TestScaleZeroRotation(t *testing.T) {
	// Unrotated, the fit reduces to max of the per-axis ratios.
	got, err := Scale(390, 200, 1280, 720, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Max(390.0/1280, 200.0/720)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Scale = %v, want %v", got, want)
	}
}

func TestScaleQuarterTurnSwapsAxes(t *testing.T) {
	a, err := Scale(390, 200, 1280, 720, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Scale(390, 200, 1280, 720, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Max(200.0/1280, 390.0/720)
	if math.Abs(b-want) > 1e-12 {
		t.Errorf("quarter-turn scale = %v, want %v", b, want)
	}
	if b <= a {
		t.Errorf("rotating a wide video into a wide view should need more scale: %v <= %v", b, a)
	}
}

func TestScaleCoversRotatedView(t *testing.T) {
	// At any rotation the scaled video's half-extents must dominate the
	// view's projections.
	for rot := -math.Pi; rot <= math.Pi; rot += 0.1 {
		s, err := Scale(390, 200, 1280, 720, rot)
		if err != nil {
			t.Fatal(err)
		}
		if s <= 0 {
			t.Fatalf("scale %v at rotation %v", s, rot)
		}
		sin, cos := math.Sincos(rot)
		sin, cos = math.Abs(sin), math.Abs(cos)
		needW := 390*cos + 200*sin
		needH := 390*sin + 200*cos
		if s*1280 < needW-1e-9 || s*720 < needH-1e-9 {
			t.Errorf("rotation %v: scale %v does not cover the view", rot, s)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
		{2 * math.Pi, 0},
		{-1.736, -1.736},
	}
	for _, c := range cases {
		if got := Normalize(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Normalize(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestBuildNormalizesRotation(t *testing.T) {
	tf, err := Build(390, 200, 1280, 720, -5.5)
	if err != nil {
		t.Fatal(err)
	}
	if tf.Rotation <= -math.Pi || tf.Rotation > math.Pi {
		t.Errorf("rotation %v outside (-pi, pi]", tf.Rotation)
	}
	if tf.ScaleX != tf.ScaleY || tf.ScaleX <= 0 {
		t.Errorf("scale not uniform positive: %+v", tf)
	}
}

func TestZeroRotationMatchesBuild(t *testing.T) {
	zero, err := ZeroRotation(390, 200, 1280, 720)
	if err != nil {
		t.Fatal(err)
	}
	built, err := Build(390, 200, 1280, 720, 0)
	if err != nil {
		t.Fatal(err)
	}
	if zero != built {
		t.Errorf("ZeroRotation %+v != Build(0) %+v", zero, built)
	}
	if zero.Rotation != 0 {
		t.Errorf("ZeroRotation rotation = %v", zero.Rotation)
	}
}
