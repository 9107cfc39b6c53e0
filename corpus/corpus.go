package corpus

import (
	"context"
	"fmt"
)

// Header describes a corpus: the size of the item-id space, the number
// of rows, and the total number of ids across all rows.
type Header struct {
	Items int
	Rows  int
	NNZ   int64
}

// Batch is a contiguous range of corpus rows [StartRow, NextRow).
//
// Indptr has length NextRow-StartRow+1 with Indptr[0] == 0; row i of
// the batch spans IDs[Indptr[i]:Indptr[i+1]]. A batch is owned by its
// receiver; sources never reuse the backing slices of a returned batch.
type Batch struct {
	StartRow int
	NextRow  int
	Indptr   []int64
	IDs      []int32
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return b.NextRow - b.StartRow
}

// BatchSource yields the batches of a corpus, in row order.
type BatchSource interface {
	// Header returns the corpus header.
	Header() Header

	// Next fetches the next batch. It returns io.EOF once the corpus
	// is exhausted for the current epoch.
	Next(ctx context.Context) (*Batch, error)

	// Reset restarts the source from the first row for a new epoch.
	Reset(ctx context.Context) error
}

// ErrItemOutOfRange indicates a corpus row contained an id outside the
// declared item space. The corpus violates its own header; this is not
// recoverable at this layer.
type ErrItemOutOfRange struct {
	ID    int32
	Items int
	Row   int
}

func (e *ErrItemOutOfRange) Error() string {
	return fmt.Sprintf("corpus: item id %d out of range [0, %d) at row %d", e.ID, e.Items, e.Row)
}
