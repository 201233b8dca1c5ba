package session

import (
	"touch-calibrator/pkg/geometry"
)

// FivePointTargets returns the usual target layout: the four corners inset
// by margin, then the center. margin is in normalized units.
func FivePointTargets(margin float64) []geometry.Point2D {
	lo, hi := margin, 1-margin
	return []geometry.Point2D{
		{X: lo, Y: lo},
		{X: hi, Y: lo},
		{X: hi, Y: hi},
		{X: lo, Y: hi},
		{X: 0.5, Y: 0.5},
	}
}

// GridTargets returns rows x cols targets evenly spaced inside the margin,
// row by row. Fewer than two rows or columns yield a centered line.
func GridTargets(rows, cols int, margin float64) []geometry.Point2D {
	if rows < 1 || cols < 1 {
		return nil
	}
	pos := func(i, n int) float64 {
		if n == 1 {
			return 0.5
		}
		return margin + (1-2*margin)*float64(i)/float64(n-1)
	}
	out := make([]geometry.Point2D, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out = append(out, geometry.Point2D{X: pos(c, cols), Y: pos(r, rows)})
		}
	}
	return out
}

// TargetPixels places normalized targets on a width x height screen, for
// the UI to draw crosshairs at.
func TargetPixels(targets []geometry.Point2D, width, height int) []geometry.PointInt {
	out := make([]geometry.PointInt, len(targets))
	for i, t := range targets {
		out[i] = geometry.PointInt{
			X: min(width-1, int(t.X*float64(width))),
			Y: min(height-1, int(t.Y*float64(height))),
		}
	}
	return out
}
