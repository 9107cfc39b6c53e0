package buffalo

import (
	"errors"
	"fmt"

	"github.com/DragonCP/buffalo/train"
	"github.com/DragonCP/buffalo/vocab"
)

var (
	// ErrConfiguration is returned for invalid construction options.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmptyVocabulary is returned when no item survives the
	// minimum-count threshold.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrDegenerateDistribution is returned when the retained counts
	// carry no sampling mass.
	ErrDegenerateDistribution = errors.New("degenerate sampling distribution")

	// ErrDataExhaustion is returned when the corpus violates its own
	// declared item-space bound.
	ErrDataExhaustion = errors.New("corpus exceeds declared item space")

	// ErrEngineInit is returned when the engine rejects its options or
	// the prepared tables.
	ErrEngineInit = errors.New("engine initialization failed")

	// ErrNoVocabulary is returned when training starts before
	// BuildVocab.
	ErrNoVocabulary = errors.New("vocabulary not built")
)

// fmtConfig wraps a message in ErrConfiguration.
func fmtConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, msg)
}

// translateError funnels subsystem errors into the package-level
// taxonomy. The original error stays reachable via errors.Unwrap.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var empty *vocab.ErrEmptyVocabulary
	if errors.As(err, &empty) {
		return fmt.Errorf("%w: %w", ErrEmptyVocabulary, err)
	}
	var degenerate *vocab.ErrDegenerateDistribution
	if errors.As(err, &degenerate) {
		return fmt.Errorf("%w: %w", ErrDegenerateDistribution, err)
	}
	var exhausted *vocab.ErrDataExhaustion
	if errors.As(err, &exhausted) {
		return fmt.Errorf("%w: %w", ErrDataExhaustion, err)
	}
	var initErr *train.ErrEngineInit
	if errors.As(err, &initErr) {
		return fmt.Errorf("%w: %w", ErrEngineInit, err)
	}
	var shape *train.ErrModelShape
	if errors.As(err, &shape) {
		return fmt.Errorf("%w: %w", ErrEngineInit, err)
	}

	return err
}
