// Package session records calibration attempts as JSON files.
//
// A session is what the calibration UI hands over: the target positions it
// showed, the raw readings it collected, and, once fitted, the result. The
// files let an attempt be replayed offline with different thresholds.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"touch-calibrator/internal/calibration"
	"touch-calibrator/pkg/geometry"
)

// CurrentVersion is the session file format version.
const CurrentVersion = 1

// Sample is one target/reading pair.
type Sample struct {
	Screen geometry.Point2D `json:"screen"` // normalized target position
	Touch  geometry.Point2D `json:"touch"`  // raw reading
}

// File represents a calibration session file.
type File struct {
	Version  int       `json:"version"`
	Device   string    `json:"device,omitempty"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	ScreenWidth  int `json:"screen_width"`
	ScreenHeight int `json:"screen_height"`

	Samples []Sample `json:"samples"`

	// Filled in by Calibrate.
	Result       *calibration.Result `json:"result,omitempty"`
	MaxDeviation float64             `json:"max_deviation,omitempty"`
	Accepted     bool                `json:"accepted"`
}

// New creates an empty session for a screen of the given size.
func New(device string, width, height int) *File {
	now := time.Now()
	return &File{
		Version:      CurrentVersion,
		Device:       device,
		Created:      now,
		Modified:     now,
		ScreenWidth:  width,
		ScreenHeight: height,
	}
}

// Load loads a session from a JSON file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	if f.Version < 1 || f.Version > CurrentVersion {
		return nil, fmt.Errorf("session %s: unsupported version %d", path, f.Version)
	}
	return &f, nil
}

// Save saves the session to a file, creating the parent directory.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Add appends a sample and invalidates any previous result.
func (f *File) Add(screen, touch geometry.Point2D) {
	f.Samples = append(f.Samples, Sample{Screen: screen, Touch: touch})
	f.Result = nil
	f.Accepted = false
	f.Modified = time.Now()
}

// Points splits the samples into parallel screen and touch slices.
func (f *File) Points() (screen, touch []geometry.Point2D) {
	screen = make([]geometry.Point2D, len(f.Samples))
	touch = make([]geometry.Point2D, len(f.Samples))
	for i, s := range f.Samples {
		screen[i], touch[i] = s.Screen, s.Touch
	}
	return screen, touch
}

// Calibrate fits the samples and records the result. The attempt is
// accepted when the worst sample error is within maxDeviation.
func (f *File) Calibrate(maxDeviation float64, opts ...calibration.Option) (*calibration.Result, error) {
	screen, touch := f.Points()
	res, err := calibration.Build(screen, touch, opts...)
	if err != nil {
		return nil, err
	}

	f.Result = res
	f.MaxDeviation = maxDeviation
	f.Accepted = res.Acceptable(maxDeviation)
	f.Modified = time.Now()
	return res, nil
}

// Worst returns the index of the sample with the largest residual, or -1
// if the session has no result.
func (f *File) Worst() int {
	if f.Result == nil || len(f.Result.Residuals) == 0 {
		return -1
	}
	worst := 0
	for i, r := range f.Result.Residuals {
		if r > f.Result.Residuals[worst] {
			worst = i
		}
	}
	return worst
}
