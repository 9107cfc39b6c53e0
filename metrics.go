package buffalo

import (
	"sync/atomic"
	"time"

	"github.com/DragonCP/buffalo/train"
)

// MetricsCollector defines an interface for collecting operational
// metrics from the preprocessing and training pipeline. Implement it
// to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordCount is called after the corpus counting pass.
	RecordCount(tokens int64, duration time.Duration, err error)

	// RecordVocabBuild is called after vocabulary and sampling-table
	// construction. size is the vocabulary size, downsampled the
	// number of words subject to probabilistic exclusion.
	RecordVocabBuild(size, downsampled int, duration time.Duration, err error)

	// RecordEpoch is called after each streamed epoch.
	RecordEpoch(stats train.EpochStats, err error)

	// RecordJoin is called after the final blocking drain.
	RecordJoin(loss float64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCount(int64, time.Duration, error)           {}
func (NoopMetricsCollector) RecordVocabBuild(int, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordEpoch(train.EpochStats, error)               {}
func (NoopMetricsCollector) RecordJoin(float64, time.Duration, error)          {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging without external dependencies.
type BasicMetricsCollector struct {
	CountTokens      atomic.Int64
	CountErrors      atomic.Int64
	VocabSize        atomic.Int64
	VocabDownsampled atomic.Int64
	VocabErrors      atomic.Int64
	EpochCount       atomic.Int64
	EpochJobs        atomic.Int64
	EpochTokens      atomic.Int64
	EpochErrors      atomic.Int64
	JoinCount        atomic.Int64
	JoinErrors       atomic.Int64
	JoinTotalNanos   atomic.Int64
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(tokens int64, _ time.Duration, err error) {
	b.CountTokens.Add(tokens)
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// RecordVocabBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVocabBuild(size, downsampled int, _ time.Duration, err error) {
	b.VocabSize.Store(int64(size))
	b.VocabDownsampled.Store(int64(downsampled))
	if err != nil {
		b.VocabErrors.Add(1)
	}
}

// RecordEpoch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEpoch(stats train.EpochStats, err error) {
	b.EpochCount.Add(1)
	b.EpochJobs.Add(stats.Jobs)
	b.EpochTokens.Add(stats.Tokens)
	if err != nil {
		b.EpochErrors.Add(1)
	}
}

// RecordJoin implements MetricsCollector.
func (b *BasicMetricsCollector) RecordJoin(_ float64, duration time.Duration, err error) {
	b.JoinCount.Add(1)
	b.JoinTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.JoinErrors.Add(1)
	}
}
