package buffalo

import (
	"fmt"
)

// Options for the Word2Vec facade.
type Options struct {
	// MinCount prunes items seen fewer times from the vocabulary.
	MinCount int64

	// Sample is the subsampling ratio for frequent words. 0 disables
	// subsampling.
	Sample float64

	// Dim is the embedding dimension.
	Dim int

	// Workers is the engine worker count. <= 0 lets the engine pick.
	Workers int

	// OptionPath is passed to the engine's option parser. Optional;
	// the in-process engine ignores it.
	OptionPath string

	// Seed drives the deterministic matrix initialization.
	Seed int64

	// Logger for pipeline diagnostics.
	Logger *Logger

	// Metrics collector. Defaults to a no-op collector.
	Metrics MetricsCollector
}

// DefaultOptions returns the default facade configuration.
func DefaultOptions() Options {
	return Options{
		MinCount: 5,
		Sample:   1e-3,
		Dim:      100,
		Seed:     1,
		Logger:   NoopLogger(),
		Metrics:  NoopMetricsCollector{},
	}
}

func (o Options) validate() error {
	if o.MinCount < 1 {
		return fmt.Errorf("%w: min count must be >= 1, got %d", ErrConfiguration, o.MinCount)
	}
	if o.Sample < 0 || o.Sample >= 1 {
		return fmt.Errorf("%w: sample must be in [0, 1), got %g", ErrConfiguration, o.Sample)
	}
	if o.Dim <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrConfiguration, o.Dim)
	}
	if o.Logger == nil {
		return fmt.Errorf("%w: logger must not be nil", ErrConfiguration)
	}
	if o.Metrics == nil {
		return fmt.Errorf("%w: metrics collector must not be nil", ErrConfiguration)
	}
	return nil
}

// WithMinCount sets the vocabulary pruning threshold.
func WithMinCount(n int64) func(*Options) {
	return func(o *Options) {
		o.MinCount = n
	}
}

// WithSample sets the frequent-word subsampling ratio.
func WithSample(s float64) func(*Options) {
	return func(o *Options) {
		o.Sample = s
	}
}

// WithDim sets the embedding dimension.
func WithDim(d int) func(*Options) {
	return func(o *Options) {
		o.Dim = d
	}
}

// WithWorkers sets the engine worker count.
func WithWorkers(n int) func(*Options) {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithOptionPath sets the engine option file path.
func WithOptionPath(path string) func(*Options) {
	return func(o *Options) {
		o.OptionPath = path
	}
}

// WithSeed sets the matrix initialization seed.
func WithSeed(seed int64) func(*Options) {
	return func(o *Options) {
		o.Seed = seed
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) func(*Options) {
	return func(o *Options) {
		o.Metrics = m
	}
}
