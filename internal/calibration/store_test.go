package calibration_test

import (
	"errors"
	"io/fs"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"touch-calibrator/internal/calibration"
)

func randomCalibration(rng *rand.Rand) calibration.Calibration {
	v := func() float64 { return (rng.Float64() - 0.5) * 20 }
	return calibration.Calibration{
		X: calibration.AxisCoefficients{A: v(), B: v(), C: v()},
		Y: calibration.AxisCoefficients{A: v(), B: v(), C: v()},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "config")
	s := calibration.NewStore(dir, "calibration")
	assert.False(t, s.Exists())

	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 25; i++ {
		want := randomCalibration(rng)
		require.NoError(t, s.Save(want))
		assert.True(t, s.Exists())

		got, err := s.Load()
		require.NoError(t, err)
		w, g := want.Coefficients(), got.Coefficients()
		for k := range w {
			assert.InDelta(t, w[k], g[k], 6e-7, "coefficient %d", k)
		}
	}
}

func TestStorePrecision(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore(t.TempDir(), "cal", calibration.WithPrecision(12))
	want := calibration.Calibration{
		X: calibration.AxisCoefficients{A: 1.0 / 3777, B: -2.5e-6, C: -0.0421},
		Y: calibration.AxisCoefficients{A: 3.1e-7, B: -1.0 / 3541, C: 1.0375},
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	w, g := want.Coefficients(), got.Coefficients()
	for k := range w {
		assert.InDelta(t, w[k], g[k], 6e-13, "coefficient %d", k)
	}
}

func TestStoreArtifactLayout(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore(t.TempDir(), "calibration")
	require.NoError(t, s.Save(cornerCalibration))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "# Autogenerated touch-screen calibration coefficients"))
	assert.Equal(t, "calib=((0.010000, 0.000000, 0.000000), (0.000000, 0.010000, 0.000000))", lines[1])

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o644), info.Mode().Perm())
}

func TestStoreSaveLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := calibration.NewStore(dir, "calibration")
	require.NoError(t, s.Save(cornerCalibration))
	require.NoError(t, s.Save(calibration.Identity()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "calibration", entries[0].Name())

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, calibration.Identity(), got)
}

func TestStoreLoadMissing(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore(filepath.Join(t.TempDir(), "absent"), "calibration")
	_, err := s.Load()
	require.ErrorIs(t, err, calibration.ErrNotFound)
	assert.NotErrorIs(t, err, calibration.ErrParse)
}

func TestStoreLoadMalformed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := calibration.NewStore(dir, "calibration")
	require.NoError(t, os.WriteFile(s.Path(), []byte("# header\ncalib=open('/etc/passwd').read()\n"), 0o644))

	_, err := s.Load()
	require.ErrorIs(t, err, calibration.ErrParse)
	assert.NotErrorIs(t, err, calibration.ErrNotFound)

	var pe *calibration.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, err.Error(), s.Path())
}

func TestStoreSaveDirFailure(t *testing.T) {
	t.Parallel()

	// A regular file where a parent directory should be makes directory
	// creation fail regardless of the user the tests run as.
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := calibration.NewStore(filepath.Join(blocker, "config"), "calibration")
	err := s.Save(cornerCalibration)
	require.ErrorIs(t, err, calibration.ErrIO)
	assert.NotErrorIs(t, err, calibration.ErrNotFound)

	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr))
}

func TestStoreSaveExistingDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	s := calibration.NewStore(dir, "calibration")
	require.NoError(t, s.Save(cornerCalibration))
}

func TestStoreSaveRejectsNonFinite(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore(t.TempDir(), "calibration")
	bad := cornerCalibration
	bad.Y.C = math.NaN()
	err := s.Save(bad)
	require.ErrorIs(t, err, calibration.ErrInvalidInput)
	assert.False(t, s.Exists())
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore(t.TempDir(), "calibration")
	require.NoError(t, s.Remove())
	require.NoError(t, s.Save(cornerCalibration))
	require.NoError(t, s.Remove())
	assert.False(t, s.Exists())

	_, err := s.Load()
	require.ErrorIs(t, err, calibration.ErrNotFound)
}

func TestNewStoreDefaults(t *testing.T) {
	t.Parallel()

	s := calibration.NewStore("", "")
	assert.Equal(t, calibration.DefaultFileName, filepath.Base(s.Path()))
	assert.Equal(t, calibration.DefaultDir(), filepath.Dir(s.Path()))
}
