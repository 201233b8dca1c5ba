package calibration

import (
	"math"

	"touch-calibrator/pkg/geometry"
)

// ToNormalized converts a raw touch reading to a normalized screen
// coordinate. Both results are clamped to [0,1] however far outside the
// calibrated region the reading falls; a NaN intermediate maps to 0.
func ToNormalized(touchX, touchY float64, c Calibration) (rx, ry float64) {
	return clamp01(c.X.Eval(touchX, touchY)), clamp01(c.Y.Eval(touchX, touchY))
}

// ToScreen converts a raw touch reading to pixel coordinates on a
// width x height screen: px = min(width, floor(width*rx)).
//
// A reading that normalizes to exactly 1 yields px == width (or
// py == height), one past the last zero-based pixel index. Callers that
// index a pixel buffer must clamp to width-1 themselves.
func ToScreen(touchX, touchY float64, width, height int, c Calibration) (px, py int) {
	rx, ry := ToNormalized(touchX, touchY, c)
	return scale(rx, width), scale(ry, height)
}

// Map is ToScreen for point values.
func (c Calibration) Map(touch geometry.Point2D, width, height int) geometry.PointInt {
	px, py := ToScreen(touch.X, touch.Y, width, height, c)
	return geometry.PointInt{X: px, Y: py}
}

func scale(r float64, span int) int {
	return min(span, int(math.Floor(float64(span)*r)))
}

// clamp01 bounds v to [0,1].
func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v > 0 {
		return v
	}
	return 0
}
