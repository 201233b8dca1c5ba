package calibration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Det3 returns the determinant of the 3x3 matrix m, expanded directly
// along the rule of Sarrus.
func Det3(m mat.Matrix) float64 {
	a11, a12, a13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	a21, a22, a23 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	a31, a32, a33 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	return a11*a22*a33 + a12*a23*a31 + a13*a21*a32 -
		a12*a21*a33 - a11*a23*a32 - a13*a22*a31
}

// SolveCramer solves a*v = b for a 3x3 system with Cramer's rule:
// v[k] = det(a with column k replaced by b) / det(a).
//
// scale is the magnitude |det(a)| would have if the system were perfectly
// conditioned. The system is rejected as ErrSingularSystem before any
// division when |det(a)| <= eps * scale, or when |det(a)| is within the
// rounding error of the Sarrus expansion. A non-positive scale selects
// Hadamard's bound, the product of the row 2-norms of a.
func SolveCramer(a mat.Matrix, b mat.Vector, scale, eps float64) ([3]float64, error) {
	var v [3]float64

	r, c := a.Dims()
	if r != 3 || c != 3 || b.Len() != 3 {
		return v, fmt.Errorf("%w: need a 3x3 system, got %dx%d with %d right-hand values",
			ErrInvalidInput, r, c, b.Len())
	}

	if !(scale > 0) {
		scale = hadamardBound(a)
	}
	det := Det3(a)
	if !(math.Abs(det) > eps*scale) || !(math.Abs(det) > detRoundoff*det3Magnitude(a)) {
		return v, fmt.Errorf("%w: det=%g (scale %g)", ErrSingularSystem, det, scale)
	}

	rhs := mat.Col(nil, 0, b)
	replaced := mat.NewDense(3, 3, nil)
	for k := range v {
		replaced.Copy(a)
		replaced.SetCol(k, rhs)
		v[k] = Det3(replaced) / det
	}
	return v, nil
}

// detRoundoff bounds the relative error of Det3 on entries that are
// themselves rounded sums.
const detRoundoff = 0x1p-40

// det3Magnitude returns the sum of the absolute Sarrus terms of m.
func det3Magnitude(m mat.Matrix) float64 {
	a11, a12, a13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	a21, a22, a23 := m.At(1, 0), m.At(1, 1), m.At(1, 2)
	a31, a32, a33 := m.At(2, 0), m.At(2, 1), m.At(2, 2)

	return math.Abs(a11*a22*a33) + math.Abs(a12*a23*a31) + math.Abs(a13*a21*a32) +
		math.Abs(a12*a21*a33) + math.Abs(a11*a23*a32) + math.Abs(a13*a22*a31)
}

// hadamardBound returns the product of the row 2-norms of a.
func hadamardBound(a mat.Matrix) float64 {
	bound := 1.0
	row := make([]float64, 3)
	for i := 0; i < 3; i++ {
		mat.Row(row, i, a)
		bound *= floats.Norm(row, 2)
	}
	return bound
}
