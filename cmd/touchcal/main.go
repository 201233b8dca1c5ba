// Command touchcal fits a touch-screen calibration from a recorded session
// and manages the stored calibration.
//
//	touchcal -s session.json -save     fit, report and store if accepted
//	touchcal -map 2048,1900            map a raw reading with the stored calibration
//	touchcal -targets                  print the five-point target layout
//	touchcal -targets -grid 3x3        print a 3x3 grid layout instead
//	touchcal -reset                    remove the stored calibration
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"touch-calibrator/internal/calibration"
	"touch-calibrator/internal/config"
	"touch-calibrator/internal/live"
	"touch-calibrator/internal/session"
	"touch-calibrator/internal/version"
	"touch-calibrator/pkg/geometry"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	prefsPath := flag.String("config", config.DefaultPath(), "Path to preferences.json")
	sessionPath := flag.String("s", "", "Session file with target/reading samples")
	dir := flag.String("dir", "", "Calibration directory (overrides preferences)")
	name := flag.String("name", "", "Calibration file name (overrides preferences)")
	maxDev := flag.Float64("max-dev", 0, "Acceptance threshold in normalized units (overrides preferences)")
	doSave := flag.Bool("save", false, "Store the calibration if it is accepted")
	record := flag.Bool("record", false, "Write the fit result back into the session file")
	mapPoint := flag.String("map", "", "Map a raw reading 'x,y' to pixels")
	size := flag.String("size", "", "Screen size 'WxH' (overrides preferences)")
	targets := flag.Bool("targets", false, "Print the target layout for the screen size")
	grid := flag.String("grid", "", "Target grid 'RxC' (default: four corners and center)")
	margin := flag.Float64("margin", 0.1, "Target inset from the screen edges, normalized")
	reset := flag.Bool("reset", false, "Remove the stored calibration")
	writeConfig := flag.Bool("write-config", false, "Persist the effective settings to the preferences file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	prefs, err := config.LoadFrom(*prefsPath)
	if err != nil {
		log.Printf("touchcal: using default preferences: %v", err)
	}
	settings := prefs.Settings()
	if *dir != "" {
		settings.Dir = *dir
	}
	if *name != "" {
		settings.File = *name
	}
	if *maxDev > 0 {
		settings.MaxDeviation = *maxDev
	}
	if *size != "" {
		w, h, err := parsePair(*size, "x")
		if err == nil && (w < 1 || h < 1) {
			err = fmt.Errorf("%q: width and height must be positive", *size)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -size: %v\n", err)
			os.Exit(2)
		}
		settings.ScreenWidth, settings.ScreenHeight = int(w), int(h)
	}
	store := settings.NewStore()

	layout, err := targetLayout(*grid, *margin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -grid: %v\n", err)
		os.Exit(2)
	}

	if *writeConfig {
		prefs.Store(settings)
		if err := prefs.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Saving preferences failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", prefs.Path())
	}

	if *sessionPath == "" && *mapPoint == "" && !*targets && !*reset && !*writeConfig {
		fmt.Println("Usage: touchcal [-s <session.json> [-save] [-record]] [-map x,y] [-targets [-grid RxC]] [-reset]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *reset {
		if err := store.Remove(); err != nil {
			fmt.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Removed %s\n", store.Path())
	}

	if *targets {
		printTargets(layout, settings, store)
	}

	if *sessionPath != "" {
		if err := calibrate(*sessionPath, settings, store, *doSave, *record); err != nil {
			fmt.Fprintf(os.Stderr, "Calibration failed: %v\n", err)
			os.Exit(1)
		}
	}

	if *mapPoint != "" {
		x, y, err := parsePair(*mapPoint, ",")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -map: %v\n", err)
			os.Exit(2)
		}
		c, err := store.Load()
		if err != nil {
			live.LogLoadError(store.Path(), err)
			c = calibration.Identity()
		}
		area := layout
		if *sessionPath != "" {
			if sess, err := session.Load(*sessionPath); err == nil && len(sess.Samples) > 0 {
				area, _ = sess.Points()
			}
		}
		printMapping(geometry.NewPoint2D(x, y), c, settings, area)
	}
}

// printMapping shows where a raw reading lands, and warns when it falls
// outside the targets the calibration was fitted on.
func printMapping(touch geometry.Point2D, c calibration.Calibration, settings config.Settings, area []geometry.Point2D) {
	rx, ry := calibration.ToNormalized(touch.X, touch.Y, c)
	p := c.Map(touch, settings.ScreenWidth, settings.ScreenHeight)
	fmt.Printf("(%g, %g) -> normalized (%.4f, %.4f) -> pixel (%d, %d) on %dx%d\n",
		touch.X, touch.Y, rx, ry, p.X, p.Y, settings.ScreenWidth, settings.ScreenHeight)
	if extrapolated(c.Apply(touch), area) {
		fmt.Println("Warning: reading is outside the calibration targets, the mapping is extrapolated")
	}
}

// extrapolated reports whether the normalized point p lies outside the
// convex hull of the target positions.
func extrapolated(p geometry.Point2D, targets []geometry.Point2D) bool {
	return !geometry.PointInPolygon(p, geometry.ConvexHull(targets))
}

// targetLayout returns the five-point layout, or a rows x cols grid when
// grid is "RxC".
func targetLayout(grid string, margin float64) ([]geometry.Point2D, error) {
	if grid == "" {
		return session.FivePointTargets(margin), nil
	}
	r, c, err := parsePair(grid, "x")
	if err != nil {
		return nil, err
	}
	if r < 2 || c < 2 || r != float64(int(r)) || c != float64(int(c)) {
		return nil, fmt.Errorf("%q: need at least 2x2 whole targets", grid)
	}
	return session.GridTargets(int(r), int(c), margin), nil
}

func calibrate(path string, settings config.Settings, store *calibration.Store, doSave, record bool) error {
	sess, err := session.Load(path)
	if err != nil {
		return err
	}
	fmt.Printf("=== Session %s ===\n", path)
	fmt.Printf("Device: %s, screen %dx%d, %d samples\n",
		valueOr(sess.Device, "unknown"), sess.ScreenWidth, sess.ScreenHeight, len(sess.Samples))

	res, err := sess.Calibrate(settings.MaxDeviation, settings.Options()...)
	switch {
	case errors.Is(err, calibration.ErrInvalidInput):
		return fmt.Errorf("%w (collect at least 3 samples)", err)
	case errors.Is(err, calibration.ErrSingularSystem):
		return fmt.Errorf("%w (touch points are collinear, retry with spread-out targets)", err)
	case err != nil:
		return err
	}

	c := res.Calibration
	fmt.Printf("\n=== Calibration ===\n")
	fmt.Printf("x = %.6g*tx + %.6g*ty + %.6g\n", c.X.A, c.X.B, c.X.C)
	fmt.Printf("y = %.6g*tx + %.6g*ty + %.6g\n", c.Y.A, c.Y.B, c.Y.C)
	fmt.Printf("Max deviation: %.5f (limit %.5f)\n", res.MaxDeviation, settings.MaxDeviation)
	fmt.Printf("Target coverage: %.1f%% of the screen\n", res.Coverage*100)
	_, touch := sess.Points()
	span := geometry.BoundingBox(touch)
	fmt.Printf("Raw span: x %.1f..%.1f, y %.1f..%.1f\n", span.X, span.X+span.Width, span.Y, span.Y+span.Height)

	fmt.Printf("\nPer-sample residuals:\n")
	worst := sess.Worst()
	for i, s := range sess.Samples {
		mark := ""
		if i == worst {
			mark = "  <- worst"
		}
		fmt.Printf("  target (%.3f, %.3f)  touch (%7.1f, %7.1f)  err=%.5f%s\n",
			s.Screen.X, s.Screen.Y, s.Touch.X, s.Touch.Y, res.Residuals[i], mark)
	}

	if record {
		if err := sess.Save(path); err != nil {
			return fmt.Errorf("record session: %w", err)
		}
	}

	if !sess.Accepted {
		return fmt.Errorf("rejected: max deviation %.5f exceeds %.5f", res.MaxDeviation, settings.MaxDeviation)
	}
	fmt.Println("\nAccepted.")

	if doSave {
		if err := store.Save(c); err != nil {
			return err
		}
		fmt.Printf("Saved to %s\n", store.Path())
	}
	return nil
}

// printTargets lists where to draw each target and, when a calibration is
// stored, the raw reading it predicts for that target.
func printTargets(targets []geometry.Point2D, settings config.Settings, store *calibration.Store) {
	var (
		c          calibration.Calibration
		calibrated bool
	)
	if store.Exists() {
		var err error
		if c, err = store.Load(); err != nil {
			live.LogLoadError(store.Path(), err)
		} else {
			calibrated = true
		}
	} else {
		fmt.Printf("No calibration stored at %s\n", store.Path())
	}

	pixels := session.TargetPixels(targets, settings.ScreenWidth, settings.ScreenHeight)
	fmt.Printf("Targets for %dx%d:\n", settings.ScreenWidth, settings.ScreenHeight)
	for i, t := range targets {
		fmt.Printf("  %d: (%.3f, %.3f) -> pixel (%d, %d)", i+1, t.X, t.Y, pixels[i].X, pixels[i].Y)
		if calibrated {
			if raw, err := c.ToTouch(t); err == nil {
				fmt.Printf("  expect raw (%.1f, %.1f)", raw.X, raw.Y)
			}
		}
		fmt.Println()
	}
}

// parsePair parses "a<sep>b" into two numbers.
func parsePair(s, sep string) (float64, float64, error) {
	a, b, ok := strings.Cut(s, sep)
	if !ok {
		return 0, 0, fmt.Errorf("%q: expected two values separated by %q", s, sep)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
