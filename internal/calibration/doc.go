// Package calibration fits and applies touch-screen calibrations.
//
// A calibration maps raw touch-sensor readings to normalized screen
// coordinates in [0,1]x[0,1] with one affine map per output axis:
//
//	screenX = ax*touchX + bx*touchY + cx
//	screenY = ay*touchX + by*touchY + cy
//
// Build fits both maps from three or more (screen, touch) sample pairs by
// ordinary least squares. The normal equations of each axis form a 3x3 system
// that is solved in closed form with Cramer's rule. Degenerate sample
// geometry (for example collinear touch points) is reported as
// ErrSingularSystem instead of producing NaN or Inf coefficients.
//
// ToNormalized and ToScreen apply a Calibration on the live input path. They
// are pure functions and safe for concurrent use; a Calibration is an
// immutable value.
//
// Store persists a Calibration as a small text artifact:
//
//	# touch-screen calibration coefficients
//	calib=((ax, bx, cx), (ay, by, cy))
//
// The artifact is parsed against that fixed grammar and never evaluated.
package calibration
