package engine

import (
	"datacleaner/pkg/dataprep"
	"datacleaner/pkg/logging"
)

type options struct {
	logger          *logging.Logger
	coerceTolerance float64
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger used for per-operation debug output.
//
// If nil is passed, logging is disabled.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = logging.NoopLogger()
		}
		o.logger = l
	}
}

// WithCoerceTolerance sets the largest share of unparseable values a text
// column may hold and still be converted by ConvertDataTypes.
// Values outside [0, 1] are ignored.
func WithCoerceTolerance(tol float64) Option {
	return func(o *options) {
		if tol >= 0 && tol <= 1 {
			o.coerceTolerance = tol
		}
	}
}

func defaultOptions() options {
	return options{
		logger:          logging.NoopLogger(),
		coerceTolerance: dataprep.DefaultCoerceTolerance,
	}
}
