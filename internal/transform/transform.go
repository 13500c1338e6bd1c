package transform

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions is returned when a zero or negative width/height would
// produce a degenerate scale.
var ErrInvalidDimensions = errors.New("transform: non-positive dimension")

// Affine is the scale+rotation transform applied to the video surface.
// Rotation is in radians, normalized to (-pi, pi]. It is rebuilt on every
// tick and never mutated after construction.
type Affine struct {
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
	Rotation float64 `json:"rotation"`
}

// Normalize maps an angle into (-pi, pi].
func Normalize(angle float64) float64 {
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return angle
}

// Scale computes the oval-fit scale: the minimal uniform factor such that the
// video rectangle, rotated by rotation, still covers the view rectangle. The
// view's half-extents are projected onto the rotated video axes; whichever
// video dimension is tighter decides the factor.
func Scale(viewWidth, viewHeight, videoWidth, videoHeight, rotation float64) (float64, error) {
	if viewWidth <= 0 || viewHeight <= 0 || videoWidth <= 0 || videoHeight <= 0 {
		return 0, fmt.Errorf("%w: view %gx%g video %gx%g",
			ErrInvalidDimensions, viewWidth, viewHeight, videoWidth, videoHeight)
	}

	sin, cos := math.Sincos(rotation)
	sin, cos = math.Abs(sin), math.Abs(cos)

	needW := viewWidth*cos + viewHeight*sin
	needH := viewWidth*sin + viewHeight*cos

	return math.Max(needW/videoWidth, needH/videoHeight), nil
}

// Build combines the oval-fit scale with a rotation angle into the final
// transform delivered to the caller.
func Build(viewWidth, viewHeight, videoWidth, videoHeight, rotation float64) (Affine, error) {
	rotation = Normalize(rotation)
	scale, err := Scale(viewWidth, viewHeight, videoWidth, videoHeight, rotation)
	if err != nil {
		return Affine{}, err
	}
	return Affine{
		ScaleX:   scale,
		ScaleY:   scale,
		Rotation: rotation,
	}, nil
}

// ZeroRotation builds the baseline transform used before any sensor data
// arrives.
func ZeroRotation(viewWidth, viewHeight, videoWidth, videoHeight float64) (Affine, error) {
	return Build(viewWidth, viewHeight, videoWidth, videoHeight, 0)
}
