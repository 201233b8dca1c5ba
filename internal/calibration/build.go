package calibration

import (
	"fmt"
	"math"

	"touch-calibrator/pkg/geometry"
)

// Build fits a calibration from sample pairs. screen[i] is the normalized
// position of the i-th target and touch[i] the raw reading collected for
// it. The x and y screen axes are fitted independently, each as a function
// of both touch coordinates.
//
// Build fails with ErrInvalidInput for fewer than three pairs, mismatched
// lengths or non-finite samples, and with ErrSingularSystem for degenerate
// touch geometry.
func Build(screen, touch []geometry.Point2D, opts ...Option) (*Result, error) {
	n := len(screen)
	if n != len(touch) {
		return nil, fmt.Errorf("%w: %d screen points vs %d touch points",
			ErrInvalidInput, n, len(touch))
	}
	if n < minSamples {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d",
			ErrInvalidInput, minSamples, n)
	}

	screenX, screenY := make([]float64, n), make([]float64, n)
	touchX, touchY := make([]float64, n), make([]float64, n)
	for i := range screen {
		if !screen[i].IsFinite() || !touch[i].IsFinite() {
			return nil, fmt.Errorf("%w: sample %d is not finite", ErrInvalidInput, i)
		}
		screenX[i], screenY[i] = screen[i].X, screen[i].Y
		touchX[i], touchY[i] = touch[i].X, touch[i].Y
	}

	o := buildOptions(opts)
	kx, err := fitAxis(screenX, touchX, touchY, o.epsilon)
	if err != nil {
		return nil, fmt.Errorf("fit x axis: %w", err)
	}
	ky, err := fitAxis(screenY, touchX, touchY, o.epsilon)
	if err != nil {
		return nil, fmt.Errorf("fit y axis: %w", err)
	}

	res := &Result{
		Calibration: Calibration{X: kx, Y: ky},
		Residuals:   make([]float64, n),
		Coverage:    geometry.PolygonArea(geometry.ConvexHull(screen)),
	}
	for i := range touch {
		d := res.Calibration.Apply(touch[i]).Distance(screen[i])
		res.Residuals[i] = d
		res.MaxDeviation = math.Max(res.MaxDeviation, d)
	}
	return res, nil
}
