package calibration

const (
	// DefaultEpsilon is the default singularity threshold. A fit is
	// singular when 1 - r^2 <= eps, r being the correlation of the touch
	// x and y coordinates.
	DefaultEpsilon = 1e-9

	// DefaultPrecision is the number of decimal digits written per
	// coefficient.
	DefaultPrecision = 6

	// minSamples is the number of unknowns per axis.
	minSamples = 3
)

type options struct {
	epsilon   float64
	precision int
}

// Option configures fitting and persistence.
type Option func(*options)

// WithEpsilon sets the relative singularity threshold used by the solver.
// Non-positive values restrict detection to a determinant lost in rounding.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		if eps < 0 {
			eps = 0
		}
		o.epsilon = eps
	}
}

// WithPrecision sets how many decimal digits Store writes per coefficient.
// Values outside [1, 17] are ignored.
func WithPrecision(digits int) Option {
	return func(o *options) {
		if digits >= 1 && digits <= 17 {
			o.precision = digits
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		epsilon:   DefaultEpsilon,
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
