// Package live holds the calibration used on the input path.
//
// The active calibration is loaded once at startup and replaced only when a
// calibration run produces a new one, either in this process (Set) or in
// another process that rewrites the artifact (Watcher). Readers on the input
// path take a snapshot with Current and never block writers.
package live

import (
	"sync/atomic"

	"touch-calibrator/internal/calibration"
)

// Loader loads a calibration. *calibration.Store implements it.
type Loader interface {
	Load() (calibration.Calibration, error)
}

// Active is the process-wide calibration holder. It is safe for concurrent
// use.
type Active struct {
	loader     Loader
	current    atomic.Pointer[calibration.Calibration]
	calibrated atomic.Bool
	onChange   atomic.Pointer[func(calibration.Calibration)]
}

// New returns a holder serving fallback until a calibration is loaded or set.
func New(loader Loader, fallback calibration.Calibration) *Active {
	a := &Active{loader: loader}
	a.current.Store(&fallback)
	return a
}

// OnChange registers a callback run after every successful Reload or Set.
// It runs on the goroutine that made the change.
func (a *Active) OnChange(fn func(calibration.Calibration)) {
	a.onChange.Store(&fn)
}

// Current returns the active calibration.
func (a *Active) Current() calibration.Calibration {
	return *a.current.Load()
}

// Calibrated reports whether the active calibration came from a load or
// Set rather than the fallback.
func (a *Active) Calibrated() bool {
	return a.calibrated.Load()
}

// Set replaces the active calibration.
func (a *Active) Set(c calibration.Calibration) {
	a.current.Store(&c)
	a.calibrated.Store(true)
	if fn := a.onChange.Load(); fn != nil && *fn != nil {
		(*fn)(c)
	}
}

// Reload loads the calibration and makes it active. On error the active
// calibration is left unchanged and the loader's error is returned.
func (a *Active) Reload() error {
	c, err := a.loader.Load()
	if err != nil {
		return err
	}
	a.Set(c)
	return nil
}

// ToScreen maps a raw reading with the active calibration.
func (a *Active) ToScreen(touchX, touchY float64, width, height int) (px, py int) {
	return calibration.ToScreen(touchX, touchY, width, height, a.Current())
}
