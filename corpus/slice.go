package corpus

import (
	"context"
	"io"
)

// DefaultBatchSize is the number of rows per batch when not configured.
const DefaultBatchSize = 1024

// SliceSource is an in-memory BatchSource over pre-tokenized rows.
type SliceSource struct {
	rows      [][]int32
	items     int
	batchSize int
	nnz       int64
	pos       int
}

// NewSliceSource creates a SliceSource. items is the declared size of
// the item-id space; batchSize <= 0 selects DefaultBatchSize.
func NewSliceSource(rows [][]int32, items, batchSize int) *SliceSource {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	var nnz int64
	for _, row := range rows {
		nnz += int64(len(row))
	}
	return &SliceSource{
		rows:      rows,
		items:     items,
		batchSize: batchSize,
		nnz:       nnz,
	}
}

// Header returns the corpus header.
func (s *SliceSource) Header() Header {
	return Header{Items: s.items, Rows: len(s.rows), NNZ: s.nnz}
}

// Next fetches the next batch of rows.
func (s *SliceSource) Next(_ context.Context) (*Batch, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}

	start := s.pos
	end := start + s.batchSize
	if end > len(s.rows) {
		end = len(s.rows)
	}
	s.pos = end

	batch := &Batch{
		StartRow: start,
		NextRow:  end,
		Indptr:   make([]int64, 1, end-start+1),
	}
	for _, row := range s.rows[start:end] {
		batch.IDs = append(batch.IDs, row...)
		batch.Indptr = append(batch.Indptr, int64(len(batch.IDs)))
	}
	return batch, nil
}

// Reset restarts the source from the first row.
func (s *SliceSource) Reset(_ context.Context) error {
	s.pos = 0
	return nil
}
