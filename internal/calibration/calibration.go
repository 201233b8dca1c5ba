package calibration

import (
	"fmt"
	"math"

	"touch-calibrator/pkg/geometry"
)

// AxisCoefficients defines one output axis: out = A*touchX + B*touchY + C.
type AxisCoefficients struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
}

// Eval applies the coefficients to a raw touch reading.
func (k AxisCoefficients) Eval(touchX, touchY float64) float64 {
	return k.A*touchX + k.B*touchY + k.C
}

func (k AxisCoefficients) isFinite() bool {
	for _, v := range [...]float64{k.A, k.B, k.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Calibration maps raw touch readings to normalized screen coordinates.
// It is a plain value; copies can be shared freely between goroutines.
type Calibration struct {
	X AxisCoefficients `json:"x"`
	Y AxisCoefficients `json:"y"`
}

// Identity returns the calibration that passes readings through unchanged.
// It serves as the uncalibrated fallback for panels that already report
// normalized coordinates.
func Identity() Calibration {
	return FromTransform(geometry.Identity())
}

// FromTransform converts an affine transform to a Calibration.
func FromTransform(t geometry.AffineTransform) Calibration {
	return Calibration{
		X: AxisCoefficients{A: t.A, B: t.B, C: t.TX},
		Y: AxisCoefficients{A: t.C, B: t.D, C: t.TY},
	}
}

// Transform returns the calibration as an affine transform.
func (c Calibration) Transform() geometry.AffineTransform {
	return geometry.AffineTransform{
		A: c.X.A, B: c.X.B, TX: c.X.C,
		C: c.Y.A, D: c.Y.B, TY: c.Y.C,
	}
}

// Apply maps a touch reading without clamping. Use ToNormalized on the
// input path.
func (c Calibration) Apply(touch geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: c.X.Eval(touch.X, touch.Y),
		Y: c.Y.Eval(touch.X, touch.Y),
	}
}

// ToTouch maps a normalized screen point back to the raw touch reading that
// would produce it, e.g. to draw where a calibrated panel reports a target.
func (c Calibration) ToTouch(screen geometry.Point2D) (geometry.Point2D, error) {
	inv, ok := c.Transform().Inverse()
	if !ok {
		return geometry.Point2D{}, fmt.Errorf("%w: calibration is not invertible", ErrSingularSystem)
	}
	return inv.Apply(screen), nil
}

// Coefficients returns ax, bx, cx, ay, by, cy.
func (c Calibration) Coefficients() [6]float64 {
	return [6]float64{c.X.A, c.X.B, c.X.C, c.Y.A, c.Y.B, c.Y.C}
}

// IsFinite reports whether every coefficient is finite.
func (c Calibration) IsFinite() bool {
	return c.X.isFinite() && c.Y.isFinite()
}

// Result is the outcome of a calibration attempt.
type Result struct {
	Calibration Calibration `json:"calibration"`

	// MaxDeviation is the largest Euclidean distance, in normalized screen
	// units, between a sample's screen point and its fitted prediction.
	MaxDeviation float64 `json:"max_deviation"`

	// Residuals holds the per-sample distance in input order.
	Residuals []float64 `json:"residuals"`

	// Coverage is the area of the convex hull of the screen samples, as a
	// fraction of the normalized screen. Fits are extrapolated outside it.
	Coverage float64 `json:"coverage"`
}

// Acceptable reports whether the worst sample error is within maxDeviation.
func (r *Result) Acceptable(maxDeviation float64) bool {
	return r != nil && r.MaxDeviation <= maxDeviation
}
