package calibration

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FitAxis finds (a, b, c) minimizing sum((a*x[i] + b*y[i] + c - f[i])^2).
//
// f is the target axis (normalized screen coordinate), x and y are the raw
// touch coordinates. All three slices must have the same length of at
// least three. A degenerate sample set fails with ErrSingularSystem.
func FitAxis(f, x, y []float64, opts ...Option) (AxisCoefficients, error) {
	if len(x) != len(f) || len(y) != len(f) {
		return AxisCoefficients{}, fmt.Errorf("%w: length mismatch f=%d x=%d y=%d",
			ErrInvalidInput, len(f), len(x), len(y))
	}
	if len(f) < minSamples {
		return AxisCoefficients{}, fmt.Errorf("%w: need at least %d samples, got %d",
			ErrInvalidInput, minSamples, len(f))
	}

	o := buildOptions(opts)
	return fitAxis(f, x, y, o.epsilon)
}

func fitAxis(f, x, y []float64, eps float64) (AxisCoefficients, error) {
	a, b := normalEquations(f, x, y)
	v, err := SolveCramer(a, b, spreadScale(x, y), eps)
	if err != nil {
		return AxisCoefficients{}, err
	}
	return AxisCoefficients{A: v[0], B: v[1], C: v[2]}, nil
}

// spreadScale returns n*Sxx*Syy, where Sxx and Syy are the sums of squares
// of x and y about their means. The normal matrix has determinant
// n*(Sxx*Syy - Sxy^2), so |det|/spreadScale is 1 - r^2 for the correlation
// r of the touch coordinates. It does not depend on the panel's raw
// offset or range.
func spreadScale(x, y []float64) float64 {
	n := float64(len(x))
	sxx := stat.Variance(x, nil) * (n - 1)
	syy := stat.Variance(y, nil) * (n - 1)
	return n * sxx * syy
}

// normalEquations assembles the least-squares system for one axis. The
// rows are the partial derivatives of the squared error with respect to
// c, a and b, with the unknowns ordered (a, b, c):
//
//	| Σx   Σy   n  |   | a |   | Σf  |
//	| Σx²  Σxy  Σx | * | b | = | Σfx |
//	| Σxy  Σy²  Σy |   | c |   | Σfy |
func normalEquations(f, x, y []float64) (*mat.Dense, *mat.VecDense) {
	n := float64(len(f))
	sx, sy, sf := floats.Sum(x), floats.Sum(y), floats.Sum(f)
	sx2, sy2, sxy := floats.Dot(x, x), floats.Dot(y, y), floats.Dot(x, y)
	sfx, sfy := floats.Dot(f, x), floats.Dot(f, y)

	a := mat.NewDense(3, 3, []float64{
		sx, sy, n,
		sx2, sxy, sx,
		sxy, sy2, sy,
	})
	b := mat.NewVecDense(3, []float64{sf, sfx, sfy})
	return a, b
}
