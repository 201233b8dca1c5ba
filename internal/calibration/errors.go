package calibration

import (
	"errors"
	"fmt"
)

// Every message is prefixed with "calibration: ". Callers match with
// errors.Is; the sentinels are wrapped with context at the boundary.
var (
	// ErrInvalidInput is returned when fewer than three sample pairs are
	// given, the screen and touch sequences differ in length, or a sample
	// is not finite.
	ErrInvalidInput = errors.New("calibration: invalid input")

	// ErrSingularSystem is returned when the normal equations have a zero
	// or near-zero determinant, i.e. the touch samples are degenerate.
	ErrSingularSystem = errors.New("calibration: singular system")

	// ErrNotFound is returned by Store.Load when no artifact exists.
	ErrNotFound = errors.New("calibration: artifact not found")

	// ErrParse is returned when an artifact does not match the grammar
	// or holds a coefficient that is not a finite float.
	ErrParse = errors.New("calibration: parse error")

	// ErrIO is returned for directory or file failures other than a
	// missing artifact. The underlying OS error stays in the chain.
	ErrIO = errors.New("calibration: i/o error")
)

// ParseError describes where an artifact failed to parse.
type ParseError struct {
	Line int    // 1-based line number, 0 when the data line is missing
	Msg  string // what was wrong
	Err  error  // underlying strconv or bufio error, if any
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%v: %s", ErrParse, e.Msg)
	}
	return fmt.Sprintf("%v: line %d: %s", ErrParse, e.Line, e.Msg)
}

// Is reports ErrParse so callers can match without a type assertion.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// ioError wraps an OS error so that both ErrIO and the original error match.
func ioError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}
