package vocab

import (
	"math"
)

// negativePower is the smoothing exponent for the negative-sampling
// unigram distribution, from the word2vec paper.
const negativePower = 0.75

// SamplingTables are the fixed-point tables the training engine
// consumes, both indexed by dense vocabulary id (0-based).
//
// SubsampleScale holds per-word retention probabilities quantized to
// the full uint32 range; MaxUint32 means "always keep". NegativeCDF is
// the cumulative unigram^0.75 distribution quantized to the positive
// int31 range; it is non-decreasing and its last entry is exactly
// MaxInt32, so an inverse-CDF binary search always terminates.
type SamplingTables struct {
	SubsampleScale []uint32
	NegativeCDF    []int32

	// Downsampled counts the words whose unclamped retention
	// probability fell below 1, i.e. candidates for probabilistic
	// exclusion during training.
	Downsampled int
}

// BuildTables computes both sampling tables for a vocabulary.
//
// sample is the subsampling ratio: 0 disables subsampling entirely
// (every retention value is MaxUint32). The retention formula
// (sqrt(c/T)+1) * (T/c) with T = retained tokens * sample is kept
// exactly as word2vec defines it; it intentionally differs from the
// sqrt(T/c)+T/c variant seen in some references.
func BuildTables(v *Vocabulary, sample float64) (*SamplingTables, error) {
	t := &SamplingTables{
		SubsampleScale: make([]uint32, v.Size),
		NegativeCDF:    make([]int32, v.Size),
	}

	if err := t.buildSubsample(v, sample); err != nil {
		return nil, err
	}
	if err := t.buildNegativeCDF(v); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *SamplingTables) buildSubsample(v *Vocabulary, sample float64) error {
	if sample == 0 {
		for i := range t.SubsampleScale {
			t.SubsampleScale[i] = math.MaxUint32
		}
		return nil
	}

	// T is computed from retained counts only; pruned items must not
	// contribute mass.
	threshold := float64(v.RetainedTokens()) * sample
	if threshold <= 0 {
		return &ErrDegenerateDistribution{Sum: threshold, Size: v.Size}
	}

	for i, c := range v.Counts {
		cf := float64(c)
		p := (math.Sqrt(cf/threshold) + 1) * (threshold / cf)
		if p < 1 {
			t.Downsampled++
		} else {
			p = 1
		}
		t.SubsampleScale[i] = uint32(p * math.MaxUint32)
	}
	return nil
}

func (t *SamplingTables) buildNegativeCDF(v *Vocabulary) error {
	powered := make([]float64, v.Size)
	var sum float64
	for i, c := range v.Counts {
		powered[i] = math.Pow(float64(c), negativePower)
		sum += powered[i]
	}
	if sum <= 0 {
		return &ErrDegenerateDistribution{Sum: sum, Size: v.Size}
	}

	var cum float64
	for i, p := range powered {
		cum += p / sum
		q := cum * math.MaxInt32
		if q >= math.MaxInt32 {
			// Accumulated rounding can overshoot 1.0 as well.
			t.NegativeCDF[i] = math.MaxInt32
		} else {
			t.NegativeCDF[i] = int32(q)
		}
	}

	// Floating-point accumulation may undershoot the bound; the last
	// entry must equal MaxInt32 exactly or the engine's binary search
	// can fail to terminate.
	t.NegativeCDF[v.Size-1] = math.MaxInt32
	return nil
}
