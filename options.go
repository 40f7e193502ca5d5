package colgo

import (
	"github.com/hupe1980/colgo/internal/index"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/rowsource"
)

// Options configures a DB.
type Options struct {
	// Radix is the branching factor of the column index trees. The useful
	// range is small; 4 and 8 are the well-trodden settings.
	Radix int

	// Source supplies rows to Ingest. Required for ingestion; a DB without
	// a source can still be queried (it just holds no tables).
	Source rowsource.Source

	// Logger receives structured operation logs. Defaults to a noop logger.
	Logger *Logger

	// Controller enforces memory and IO limits. Nil means unlimited.
	Controller *resource.Controller
}

// Option is a configuration option for a DB.
type Option func(*Options)

// WithRadix sets the branching factor of the column index trees.
func WithRadix(radix int) Option {
	return func(o *Options) {
		o.Radix = radix
	}
}

// WithSource sets the row source used by Ingest.
func WithSource(source rowsource.Source) Option {
	return func(o *Options) {
		o.Source = source
	}
}

// WithLogger sets the logger.
func WithLogger(logger *Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithResourceController sets the resource controller gating arena memory
// and row source IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *Options) {
		o.Controller = rc
	}
}

func defaultOptions() Options {
	return Options{
		Radix:  index.DefaultRadix,
		Logger: NoopLogger(),
	}
}
