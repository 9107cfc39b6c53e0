package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_PrunesAndAssignsDenseIDs(t *testing.T) {
	freq := &RawFrequency{Counts: []int64{5, 5, 0, 10}, Total: 20}

	v, err := Build(freq, 1)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Size)
	assert.Equal(t, []int32{1, 2, 0, 3}, v.Forward)
	assert.Equal(t, []int32{0, 1, 3}, v.Inverse)
	assert.Equal(t, []int64{5, 5, 10}, v.Counts)
	assert.Equal(t, int64(20), v.RetainedTokens())

	assert.True(t, v.Retained.Contains(0))
	assert.True(t, v.Retained.Contains(1))
	assert.False(t, v.Retained.Contains(2))
	assert.True(t, v.Retained.Contains(3))
	assert.Equal(t, uint64(3), v.Retained.GetCardinality())
}

func TestBuild_ForwardIndexContiguous(t *testing.T) {
	freq := &RawFrequency{Counts: []int64{3, 0, 7, 1, 0, 2, 9}}

	v, err := Build(freq, 2)
	require.NoError(t, err)

	// Non-zero forward values must be exactly {1..Size} with no repeats,
	// assigned in raw-id order.
	seen := make(map[int32]bool)
	prev := int32(0)
	for raw, dense := range v.Forward {
		if dense == 0 {
			continue
		}
		assert.False(t, seen[dense], "dense id %d repeated", dense)
		seen[dense] = true
		assert.Equal(t, prev+1, dense, "dense ids must increase in raw order")
		prev = dense
		assert.Equal(t, int32(raw), v.Inverse[dense-1])
	}
	assert.Len(t, seen, v.Size)
}

func TestBuild_EmptyVocabulary(t *testing.T) {
	freq := &RawFrequency{Counts: []int64{1, 2, 3}}

	_, err := Build(freq, 100)
	var empty *ErrEmptyVocabulary
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, int64(100), empty.MinCount)
	assert.Equal(t, int64(3), empty.MaxCount)
}
