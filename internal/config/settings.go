package config

import (
	"touch-calibrator/internal/calibration"
)

// Settings is the typed view of the calibration preferences.
type Settings struct {
	Dir          string
	File         string
	Precision    int
	Epsilon      float64
	MaxDeviation float64
	ScreenWidth  int
	ScreenHeight int
}

// Settings returns the calibration settings with defaults filled in.
func (p *Prefs) Settings() Settings {
	return Settings{
		Dir:          p.String(KeyCalibrationDir, calibration.DefaultDir()),
		File:         p.String(KeyCalibrationFile, calibration.DefaultFileName),
		Precision:    p.Int(KeyPrecision, calibration.DefaultPrecision),
		Epsilon:      p.FloatWithFallback(KeyEpsilon, calibration.DefaultEpsilon),
		MaxDeviation: p.FloatWithFallback(KeyMaxDeviation, DefaultMaxDeviation),
		ScreenWidth:  p.Int(KeyScreenWidth, 800),
		ScreenHeight: p.Int(KeyScreenHeight, 480),
	}
}

// Store records s in p. Call Save to persist it.
func (p *Prefs) Store(s Settings) {
	p.SetString(KeyCalibrationDir, s.Dir)
	p.SetString(KeyCalibrationFile, s.File)
	p.SetInt(KeyPrecision, s.Precision)
	p.SetFloat(KeyEpsilon, s.Epsilon)
	p.SetFloat(KeyMaxDeviation, s.MaxDeviation)
	p.SetInt(KeyScreenWidth, s.ScreenWidth)
	p.SetInt(KeyScreenHeight, s.ScreenHeight)
}

// Options returns the fitting and persistence options for s.
func (s Settings) Options() []calibration.Option {
	return []calibration.Option{
		calibration.WithEpsilon(s.Epsilon),
		calibration.WithPrecision(s.Precision),
	}
}

// NewStore returns the calibration store described by s.
func (s Settings) NewStore() *calibration.Store {
	return calibration.NewStore(s.Dir, s.File, s.Options()...)
}
