package calibration_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touch-calibrator/internal/calibration"
	"touch-calibrator/pkg/geometry"
)

func pts(xy ...float64) []geometry.Point2D {
	out := make([]geometry.Point2D, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geometry.NewPoint2D(xy[i], xy[i+1]))
	}
	return out
}

func TestBuildThreeCorners(t *testing.T) {
	t.Parallel()

	screen := pts(0, 0, 1, 0, 0, 1)
	touch := pts(0, 0, 100, 0, 0, 100)

	res, err := calibration.Build(screen, touch)
	require.NoError(t, err)

	c := res.Calibration
	assert.InDelta(t, 0.01, c.X.A, 1e-12)
	assert.InDelta(t, 0.0, c.X.B, 1e-12)
	assert.InDelta(t, 0.0, c.X.C, 1e-12)
	assert.InDelta(t, 0.0, c.Y.A, 1e-12)
	assert.InDelta(t, 0.01, c.Y.B, 1e-12)
	assert.InDelta(t, 0.0, c.Y.C, 1e-12)
	assert.InDelta(t, 0.0, res.MaxDeviation, 1e-12)
	assert.Len(t, res.Residuals, 3)
	assert.InDelta(t, 0.5, res.Coverage, 1e-12)

	px, py := calibration.ToScreen(50, 50, 480, 320, c)
	assert.Equal(t, 240, px)
	assert.Equal(t, 160, py)
}

// Noise-free samples of a known affine map must give the map back.
func TestBuildRecoversKnownMap(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		want := calibration.Calibration{
			X: calibration.AxisCoefficients{A: 1 / (800 + rng.Float64()*3000), B: (rng.Float64() - 0.5) * 1e-4, C: rng.Float64() - 0.5},
			Y: calibration.AxisCoefficients{A: (rng.Float64() - 0.5) * 1e-4, B: -1 / (800 + rng.Float64()*3000), C: 0.5 + rng.Float64()},
		}

		n := 5 + rng.Intn(12)
		touch := make([]geometry.Point2D, n)
		screen := make([]geometry.Point2D, n)
		for i := range touch {
			touch[i] = geometry.NewPoint2D(100+rng.Float64()*3800, 100+rng.Float64()*3800)
			screen[i] = want.Apply(touch[i])
		}

		res, err := calibration.Build(screen, touch)
		require.NoError(t, err, "trial %d", trial)

		got := res.Calibration.Coefficients()
		for k, w := range want.Coefficients() {
			assert.InDelta(t, w, got[k], 1e-9*math.Max(1, math.Abs(w)), "trial %d coefficient %d", trial, k)
		}
		assert.Less(t, res.MaxDeviation, 1e-9, "trial %d", trial)
	}
}

// Panels often report a small window of a wide raw range. The fit must not
// depend on how far that window sits from the origin.
func TestBuildOffsetTouchWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		offset, span float64
	}{
		{"16-bit subregion", 40000, 8000},
		{"16-bit edge region", 60000, 5000},
		{"20-bit digitizer subregion", 5e5, 1e5},
	}
	screen := pts(0.1, 0.1, 0.9, 0.1, 0.9, 0.9, 0.1, 0.9, 0.5, 0.5)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			touch := make([]geometry.Point2D, len(screen))
			for i, s := range screen {
				touch[i] = geometry.NewPoint2D(tc.offset+s.X*tc.span, tc.offset+s.Y*tc.span)
			}

			res, err := calibration.Build(screen, touch)
			require.NoError(t, err)

			want := calibration.Calibration{
				X: calibration.AxisCoefficients{A: 1 / tc.span, C: -tc.offset / tc.span},
				Y: calibration.AxisCoefficients{B: 1 / tc.span, C: -tc.offset / tc.span},
			}
			got := res.Calibration.Coefficients()
			for k, w := range want.Coefficients() {
				assert.InDelta(t, w, got[k], 1e-6*math.Max(1/tc.span, math.Abs(w)), "coefficient %d", k)
			}
			assert.Less(t, res.MaxDeviation, 1e-6)
		})
	}
}

func TestBuildResiduals(t *testing.T) {
	t.Parallel()

	screen := pts(0.1, 0.1, 0.9, 0.1, 0.9, 0.9, 0.1, 0.9, 0.5, 0.5)
	touch := pts(400, 3600, 3600, 3600, 3600, 400, 400, 400, 2000, 2000)
	// The center reading is off by 80 raw units.
	touch[4].X += 80

	res, err := calibration.Build(screen, touch)
	require.NoError(t, err)
	require.Len(t, res.Residuals, len(screen))

	var maxRes float64
	for i, r := range res.Residuals {
		assert.GreaterOrEqual(t, r, 0.0)
		want := res.Calibration.Apply(touch[i]).Distance(screen[i])
		assert.InDelta(t, want, r, 1e-15)
		maxRes = math.Max(maxRes, r)
	}
	assert.Equal(t, maxRes, res.MaxDeviation)
	assert.Greater(t, res.MaxDeviation, 0.001)
	assert.InDelta(t, 0.64, res.Coverage, 1e-12)

	assert.True(t, res.Acceptable(0.1))
	assert.False(t, res.Acceptable(res.MaxDeviation/2))
	var none *calibration.Result
	assert.False(t, none.Acceptable(1))
}

func TestBuildInvalidInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name          string
		screen, touch []geometry.Point2D
	}{
		{"none", nil, nil},
		{"two pairs", pts(0, 0, 1, 1), pts(0, 0, 100, 100)},
		{"mismatched", pts(0, 0, 1, 0, 0, 1), pts(0, 0, 100, 0)},
		{"nan touch", pts(0, 0, 1, 0, 0, 1), pts(0, 0, math.NaN(), 0, 0, 100)},
		{"inf screen", pts(0, 0, math.Inf(1), 0, 0, 1), pts(0, 0, 100, 0, 0, 100)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := calibration.Build(tc.screen, tc.touch)
			require.ErrorIs(t, err, calibration.ErrInvalidInput)
			assert.Nil(t, res)
		})
	}
}

func TestBuildDegenerateTouches(t *testing.T) {
	t.Parallel()

	screen := pts(0, 0, 1, 0, 0, 1, 1, 1)

	res, err := calibration.Build(screen, pts(512, 512, 512, 512, 512, 512, 512, 512))
	require.ErrorIs(t, err, calibration.ErrSingularSystem)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "fit x axis")

	_, err = calibration.Build(screen, pts(0, 0, 100, 100, 200, 200, 300, 300))
	require.ErrorIs(t, err, calibration.ErrSingularSystem)
}

func TestBuildEpsilonOption(t *testing.T) {
	t.Parallel()

	screen := pts(0, 0, 1, 0, 0, 1)
	touch := pts(0, 0, 100, 0, 0, 100)

	// 1 - r^2 is 0.75 for these touches.
	_, err := calibration.Build(screen, touch, calibration.WithEpsilon(0.8))
	require.ErrorIs(t, err, calibration.ErrSingularSystem)
	_, err = calibration.Build(screen, touch, calibration.WithEpsilon(0.7))
	require.NoError(t, err)

	_, err = calibration.Build(screen, touch, calibration.WithEpsilon(-1))
	require.NoError(t, err)
}
