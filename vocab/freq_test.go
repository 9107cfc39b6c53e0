package vocab

import (
	"context"
	"testing"

	"github.com/DragonCP/buffalo/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountFrequencies_SumEqualsTotal(t *testing.T) {
	rows := [][]int32{{0, 0, 1}, {3, 3, 3}, {}, {1, 3}}
	src := corpus.NewSliceSource(rows, 4, 2)

	freq, err := CountFrequencies(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, []int64{2, 2, 0, 4}, freq.Counts)

	var sum int64
	for _, c := range freq.Counts {
		sum += c
	}
	assert.Equal(t, freq.Total, sum)
	assert.Equal(t, int64(8), freq.Total)
}

func TestCountFrequencies_OutOfBounds(t *testing.T) {
	src := corpus.NewSliceSource([][]int32{{0}, {7}}, 4, 8)

	_, err := CountFrequencies(context.Background(), src)
	var exhausted *ErrDataExhaustion
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, int32(7), exhausted.ItemID)
	assert.Equal(t, 4, exhausted.Items)
	assert.Equal(t, 1, exhausted.Row)
}

func TestCountFrequencies_EmptyCorpus(t *testing.T) {
	src := corpus.NewSliceSource(nil, 3, 8)

	freq, err := CountFrequencies(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(0), freq.Total)
	assert.Equal(t, []int64{0, 0, 0}, freq.Counts)
}
