package corpus

import "context"

// MappedSource translates the raw item ids of an underlying source to
// dense vocabulary ids through a forward index.
//
// The forward index maps raw id -> dense id, where 0 means "pruned".
// Pruned ids are kept in place as zeros so row offsets stay aligned;
// training engines skip zero ids. Dense ids on the wire are therefore
// 1-based.
type MappedSource struct {
	src     BatchSource
	forward []int32
	items   int
}

// Compile-time interface check
var _ BatchSource = (*MappedSource)(nil)

// NewMappedSource wraps src with the given forward index.
func NewMappedSource(src BatchSource, forward []int32) *MappedSource {
	maxDense := int32(0)
	for _, d := range forward {
		if d > maxDense {
			maxDense = d
		}
	}
	return &MappedSource{
		src:     src,
		forward: forward,
		items:   int(maxDense) + 1,
	}
}

// Header returns the underlying header with the item space replaced by
// the dense id space [0, vocabulary size].
func (m *MappedSource) Header() Header {
	h := m.src.Header()
	h.Items = m.items
	return h
}

// Next fetches the next batch and maps its ids.
func (m *MappedSource) Next(ctx context.Context) (*Batch, error) {
	raw, err := m.src.Next(ctx)
	if err != nil {
		return nil, err
	}

	mapped := &Batch{
		StartRow: raw.StartRow,
		NextRow:  raw.NextRow,
		Indptr:   raw.Indptr,
		IDs:      make([]int32, len(raw.IDs)),
	}
	for i, id := range raw.IDs {
		if id < 0 || int(id) >= len(m.forward) {
			return nil, &ErrItemOutOfRange{ID: id, Items: len(m.forward), Row: rowOf(raw, i)}
		}
		mapped.IDs[i] = m.forward[id]
	}
	return mapped, nil
}

// Reset restarts the underlying source.
func (m *MappedSource) Reset(ctx context.Context) error {
	return m.src.Reset(ctx)
}

// rowOf locates the corpus row owning flat position i.
func rowOf(b *Batch, i int) int {
	for r := 0; r < b.Len(); r++ {
		if int64(i) < b.Indptr[r+1] {
			return b.StartRow + r
		}
	}
	return b.NextRow - 1
}
