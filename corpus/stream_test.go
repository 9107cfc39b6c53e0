package corpus

import (
	"context"
	"io"
	"testing"

	"github.com/DragonCP/buffalo/blobstore"
	"github.com/DragonCP/buffalo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var streamRows = [][]int32{
	{0, 1, 2},
	{3},
	{},
	{1, 1, 4},
	{2, 0},
}

func drain(t *testing.T, src BatchSource) [][]int32 {
	t.Helper()
	var rows [][]int32
	ctx := context.Background()
	for {
		b, err := src.Next(ctx)
		if err == io.EOF {
			return rows
		}
		require.NoError(t, err)
		for r := 0; r < b.Len(); r++ {
			row := append([]int32(nil), b.IDs[b.Indptr[r]:b.Indptr[r+1]]...)
			rows = append(rows, row)
		}
	}
}

func TestStreamSource_RoundTrip(t *testing.T) {
	for _, name := range []string{"corpus.bin", "corpus.bin.zst", "corpus.bin.lz4"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			require.NoError(t, WriteStream(ctx, store, name, 5, streamRows))

			src, err := OpenStream(ctx, store, name, WithBatchSize(2))
			require.NoError(t, err)
			defer src.Close()

			h := src.Header()
			assert.Equal(t, Header{Items: 5, Rows: 5, NNZ: 9}, h)

			got := drain(t, src)
			require.Len(t, got, len(streamRows))
			for i, row := range streamRows {
				if len(row) == 0 {
					assert.Empty(t, got[i])
					continue
				}
				assert.Equal(t, row, got[i], "row %d", i)
			}
		})
	}
}

func TestStreamSource_ResetRestarts(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, WriteStream(ctx, store, "c.bin.zst", 5, streamRows))

	src, err := OpenStream(ctx, store, "c.bin.zst")
	require.NoError(t, err)
	defer src.Close()

	first := drain(t, src)
	require.NoError(t, src.Reset(ctx))
	second := drain(t, src)
	assert.Equal(t, len(first), len(second))
}

func TestStreamSource_RateLimited(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, WriteStream(ctx, store, "c.bin", 5, streamRows))

	ctrl := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	src, err := OpenStream(ctx, store, "c.bin", WithController(ctrl))
	require.NoError(t, err)
	defer src.Close()

	got := drain(t, src)
	assert.Len(t, got, len(streamRows))
}

func TestStreamSource_BadMagic(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "junk.bin", []byte("not a stream at all")))

	_, err := OpenStream(ctx, store, "junk.bin")
	assert.ErrorIs(t, err, ErrBadStream)
}

func TestStreamSource_OutOfRangeID(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	// Declared item space of 2 cannot hold id 3.
	require.NoError(t, WriteStream(ctx, store, "c.bin", 2, [][]int32{{0, 3}}))

	src, err := OpenStream(ctx, store, "c.bin")
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next(ctx)
	var oor *ErrItemOutOfRange
	assert.ErrorAs(t, err, &oor)
}
