package calibration

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Artifact layout: '#' comment lines, then exactly one data line
//
//	calib=((ax, bx, cx), (ay, by, cy))
//
// Whitespace around the punctuation is optional. Each field is anything
// strconv.ParseFloat accepts, but it must be finite.
var dataLine = regexp.MustCompile(`^calib\s*=\s*\(\s*\(` +
	field + `,` + field + `,` + field + `\)\s*,\s*\(` +
	field + `,` + field + `,` + field + `\)\s*\)$`)

const field = `\s*([^\s,()]+)\s*`

// maxLineSize caps a single artifact line. Longer lines are malformed.
const maxLineSize = 4096

// Encode writes c in the artifact layout with the given number of decimal
// digits. header, if not empty, is written as a leading comment line.
func Encode(w io.Writer, c Calibration, precision int, header string) error {
	if header != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", header); err != nil {
			return err
		}
	}
	k := c.Coefficients()
	p := precision
	_, err := fmt.Fprintf(w, "calib=((%.*f, %.*f, %.*f), (%.*f, %.*f, %.*f))\n",
		p, k[0], p, k[1], p, k[2], p, k[3], p, k[4], p, k[5])
	return err
}

// Decode parses an artifact. It fails with a *ParseError (matching
// ErrParse) when the content does not follow the layout.
func Decode(r io.Reader) (Calibration, error) {
	var (
		c     Calibration
		found bool
		line  int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), maxLineSize)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if found {
			return Calibration{}, &ParseError{Line: line, Msg: "unexpected content after calib line"}
		}

		m := dataLine.FindStringSubmatch(text)
		if m == nil {
			return Calibration{}, &ParseError{Line: line, Msg: fmt.Sprintf("malformed calib line %q", text)}
		}
		var k [6]float64
		for i, s := range m[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Calibration{}, &ParseError{Line: line, Msg: fmt.Sprintf("coefficient %d: %q", i+1, s), Err: err}
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Calibration{}, &ParseError{Line: line, Msg: fmt.Sprintf("coefficient %d is not finite", i+1)}
			}
			k[i] = v
		}
		c = Calibration{
			X: AxisCoefficients{A: k[0], B: k[1], C: k[2]},
			Y: AxisCoefficients{A: k[3], B: k[4], C: k[5]},
		}
		found = true
	}
	if err := sc.Err(); errors.Is(err, bufio.ErrTooLong) {
		return Calibration{}, &ParseError{Line: line + 1, Msg: fmt.Sprintf("line longer than %d bytes", maxLineSize), Err: err}
	} else if err != nil {
		return Calibration{}, ioError("read artifact", err)
	}
	if !found {
		return Calibration{}, &ParseError{Msg: "missing calib line"}
	}
	return c, nil
}
