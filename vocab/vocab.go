package vocab

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Vocabulary maps between raw item ids and dense vocabulary ids.
//
// Forward has one entry per raw item: 0 for pruned items, otherwise
// the item's 1-based dense id. Inverse has one entry per dense id and
// returns the raw item id, so Inverse[Forward[r]-1] == r for every
// retained raw item r. Dense ids are assigned in raw-id order, which
// keeps vocabulary ordering deterministic and aligned with raw-item
// iteration order.
type Vocabulary struct {
	Forward  []int32
	Inverse  []int32
	Counts   []int64 // retained counts, indexed by dense id - 1
	Retained *roaring.Bitmap
	Size     int
}

// Build prunes items below minCount and assigns dense ids.
// Returns ErrEmptyVocabulary if nothing survives the threshold.
func Build(freq *RawFrequency, minCount int64) (*Vocabulary, error) {
	v := &Vocabulary{
		Forward:  make([]int32, len(freq.Counts)),
		Retained: roaring.New(),
	}

	var next int32
	var maxCount int64
	for raw, c := range freq.Counts {
		if c > maxCount {
			maxCount = c
		}
		if c < minCount {
			continue
		}
		next++
		v.Forward[raw] = next
		v.Inverse = append(v.Inverse, int32(raw))
		v.Counts = append(v.Counts, c)
		v.Retained.Add(uint32(raw))
	}

	v.Size = int(next)
	if v.Size == 0 {
		return nil, &ErrEmptyVocabulary{MinCount: minCount, Items: len(freq.Counts), MaxCount: maxCount}
	}
	return v, nil
}

// RetainedTokens returns the total count over retained items only.
func (v *Vocabulary) RetainedTokens() int64 {
	var sum int64
	for _, c := range v.Counts {
		sum += c
	}
	return sum
}
