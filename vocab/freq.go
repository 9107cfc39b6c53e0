package vocab

import (
	"context"
	"errors"
	"io"

	"github.com/DragonCP/buffalo/corpus"
)

// RawFrequency holds per-item occurrence counts over the raw item-id
// space, plus the total token count. It is produced by a single
// counting pass and immutable thereafter.
type RawFrequency struct {
	Counts []int64
	Total  int64
}

// CountFrequencies scans the source once and counts every token.
//
// Counting is commutative, so batch order does not affect the result.
// An id outside the declared item space fails with ErrDataExhaustion.
// The source is left exhausted; callers Reset it before reuse.
func CountFrequencies(ctx context.Context, src corpus.BatchSource) (*RawFrequency, error) {
	items := src.Header().Items
	freq := &RawFrequency{Counts: make([]int64, items)}

	for {
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return freq, nil
		}
		if err != nil {
			return nil, err
		}
		for i, id := range batch.IDs {
			if id < 0 || int(id) >= items {
				return nil, &ErrDataExhaustion{ItemID: id, Items: items, Row: rowOf(batch, i)}
			}
			freq.Counts[id]++
			freq.Total++
		}
	}
}

func rowOf(b *corpus.Batch, i int) int {
	for r := 0; r < b.Len(); r++ {
		if int64(i) < b.Indptr[r+1] {
			return b.StartRow + r
		}
	}
	return b.NextRow - 1
}
