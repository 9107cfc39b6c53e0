package vocab

import "fmt"

// ErrDataExhaustion indicates the corpus produced an item id outside
// its declared item space during the counting pass. The upstream data
// source violated its own contract; this is not recoverable here.
type ErrDataExhaustion struct {
	ItemID int32
	Items  int
	Row    int
}

func (e *ErrDataExhaustion) Error() string {
	return fmt.Sprintf("vocab: item id %d exceeds declared item space %d (row %d)", e.ItemID, e.Items, e.Row)
}

// ErrEmptyVocabulary indicates that no item met the minimum-count
// threshold. Training with an empty vocabulary is a configuration
// error, never silently proceeded with.
type ErrEmptyVocabulary struct {
	MinCount int64
	Items    int
	MaxCount int64
}

func (e *ErrEmptyVocabulary) Error() string {
	return fmt.Sprintf("vocab: no item of %d reaches min count %d (max observed count %d)", e.Items, e.MinCount, e.MaxCount)
}

// ErrDegenerateDistribution indicates the retained counts cannot form
// a valid sampling distribution (non-positive mass).
type ErrDegenerateDistribution struct {
	Sum  float64
	Size int
}

func (e *ErrDegenerateDistribution) Error() string {
	return fmt.Sprintf("vocab: degenerate distribution over %d entries (mass %g)", e.Size, e.Sum)
}
