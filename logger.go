package buffalo

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/DragonCP/buffalo/train"
)

// Logger wraps slog.Logger with consistent field names for the
// preprocessing and training pipeline.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses the default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))}
}

// WithVocabSize adds a vocabulary size field to the logger.
func (l *Logger) WithVocabSize(size int) *Logger {
	return &Logger{Logger: l.Logger.With("vocab_size", size)}
}

// WithEpoch adds an epoch field to the logger.
func (l *Logger) WithEpoch(epoch int) *Logger {
	return &Logger{Logger: l.Logger.With("epoch", epoch)}
}

// LogCount logs the corpus counting pass.
func (l *Logger) LogCount(ctx context.Context, tokens int64, items int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "frequency count failed",
			"items", items,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "frequency count completed",
			"tokens", tokens,
			"items", items,
		)
	}
}

// LogVocab logs vocabulary and sampling-table construction.
func (l *Logger) LogVocab(ctx context.Context, size, downsampled int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "vocabulary build failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "vocabulary built",
			"vocab_size", size,
			"downsampled", downsampled,
		)
	}
}

// LogEpoch logs one streamed epoch with feed diagnostics.
func (l *Logger) LogEpoch(ctx context.Context, epoch int, stats train.EpochStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "epoch failed",
			"epoch", epoch,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "epoch streamed",
			"epoch", epoch,
			"jobs", stats.Jobs,
			"rows", stats.Rows,
			"tokens", stats.Tokens,
			"fetch", stats.FetchTime,
			"submit", stats.SubmitTime,
		)
	}
}

// LogJoin logs the blocking drain of the worker pool.
func (l *Logger) LogJoin(ctx context.Context, loss float64, waited time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "join failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training joined",
			"loss", loss,
			"waited", waited,
		)
	}
}
