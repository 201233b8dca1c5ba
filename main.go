// Package main provides touchmap, which converts raw touch readings to
// screen pixels with the stored calibration.
//
// Readings are read from stdin as "x y" lines, as produced by a touch
// controller driver, and printed back as "px py". The calibration is
// reloaded whenever touchcal stores a new one.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"touch-calibrator/internal/calibration"
	"touch-calibrator/internal/config"
	"touch-calibrator/internal/live"
	"touch-calibrator/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	prefsPath := flag.String("config", config.DefaultPath(), "Path to preferences.json")
	watch := flag.Bool("watch", true, "Reload the calibration when it changes on disk")
	flag.Parse()

	log.Printf("Starting %s", version.String())

	prefs, err := config.LoadFrom(*prefsPath)
	if err != nil {
		log.Printf("Preferences: %v", err)
	}
	settings := prefs.Settings()
	store := settings.NewStore()

	active := live.New(store, calibration.Identity())
	if err := active.Reload(); err != nil {
		live.LogLoadError(store.Path(), err)
	} else {
		log.Printf("Calibration: loaded %s", store.Path())
	}
	active.OnChange(func(c calibration.Calibration) {
		k := c.Coefficients()
		log.Printf("Calibration: now x=(%g, %g, %g) y=(%g, %g, %g)", k[0], k[1], k[2], k[3], k[4], k[5])
	})

	if *watch {
		w, err := live.NewWatcher(active, store.Path(), live.DefaultDebounce)
		if err != nil {
			log.Printf("Calibration watch disabled: %v", err)
		} else {
			w.Start()
			defer w.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		mapReadings(active, settings.ScreenWidth, settings.ScreenHeight)
		close(done)
	}()

	select {
	case <-sigCh:
		log.Println("Shutting down")
	case <-done:
	}
}

// mapReadings converts "x y" lines from stdin until EOF.
func mapReadings(active *live.Active, width, height int) {
	sc := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[0], 64)
		y, errY := strconv.ParseFloat(fields[1], 64)
		if errX != nil || errY != nil {
			log.Printf("Skipping malformed reading %q", sc.Text())
			continue
		}
		px, py := active.ToScreen(x, y, width, height)
		fmt.Fprintf(out, "%d %d\n", px, py)
		out.Flush()
	}
	if err := sc.Err(); err != nil {
		log.Printf("Reading input: %v", err)
	}
}
