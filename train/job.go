package train

import (
	"fmt"

	"github.com/DragonCP/buffalo/corpus"
)

// Job is one unit of streamed work: a half-open range of corpus rows
// [StartRow, NextRow), the per-row offset table, and the flat
// concatenation of the rows' dense vocabulary ids (0 = pruned, skip).
//
// A job is built once by the coordinator and consumed exactly once by
// the engine; after Submit the engine owns the buffers and the caller
// must not mutate them.
type Job struct {
	StartRow   int
	NextRow    int
	RowOffsets []int64
	TokenIDs   []int32
}

// ErrJobBounds indicates a job that violates the offset-table
// contract. Such jobs are rejected, never truncated.
type ErrJobBounds struct {
	StartRow int
	NextRow  int
	Offsets  int
	Tokens   int
	Reason   string
}

func (e *ErrJobBounds) Error() string {
	return fmt.Sprintf("train: invalid job [%d, %d) with %d offsets over %d tokens: %s",
		e.StartRow, e.NextRow, e.Offsets, e.Tokens, e.Reason)
}

// NewJob builds a job from a corpus batch, copying the batch buffers
// so the caller's staging memory stays independent of what the engine
// consumes asynchronously.
func NewJob(b *corpus.Batch) *Job {
	return &Job{
		StartRow:   b.StartRow,
		NextRow:    b.NextRow,
		RowOffsets: append([]int64(nil), b.Indptr...),
		TokenIDs:   append([]int32(nil), b.IDs...),
	}
}

// Validate checks the offset-table contract:
// len(RowOffsets) == NextRow-StartRow+1, offsets start at 0, are
// non-decreasing, and end at len(TokenIDs).
func (j *Job) Validate() error {
	rows := j.NextRow - j.StartRow
	if rows < 0 {
		return j.boundsErr("row range is negative")
	}
	if len(j.RowOffsets) != rows+1 {
		return j.boundsErr("offset table length must be row count + 1")
	}
	if j.RowOffsets[0] != 0 {
		return j.boundsErr("offset table must start at 0")
	}
	for i := 1; i < len(j.RowOffsets); i++ {
		if j.RowOffsets[i] < j.RowOffsets[i-1] {
			return j.boundsErr("offset table must be non-decreasing")
		}
	}
	if j.RowOffsets[rows] != int64(len(j.TokenIDs)) {
		return j.boundsErr("offset table must end at the token count")
	}
	return nil
}

// SizeBytes estimates the job's buffer footprint for memory accounting.
func (j *Job) SizeBytes() int64 {
	return int64(len(j.RowOffsets))*8 + int64(len(j.TokenIDs))*4
}

// Row returns the token ids of batch-local row i.
func (j *Job) Row(i int) []int32 {
	return j.TokenIDs[j.RowOffsets[i]:j.RowOffsets[i+1]]
}

func (j *Job) boundsErr(reason string) error {
	return &ErrJobBounds{
		StartRow: j.StartRow,
		NextRow:  j.NextRow,
		Offsets:  len(j.RowOffsets),
		Tokens:   len(j.TokenIDs),
		Reason:   reason,
	}
}
