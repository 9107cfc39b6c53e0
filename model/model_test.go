package model

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/DragonCP/buffalo/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEmbeddings() *Embeddings {
	return &Embeddings{
		Words:   []string{"alpha", "beta", "gamma"},
		Vectors: []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		Dim:     4,
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	e := testEmbeddings()

	var buf bytes.Buffer
	require.NoError(t, e.SaveBinary(&buf))

	got, err := LoadBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, e.Words, got.Words)
	assert.Equal(t, e.Dim, got.Dim)
	assert.Equal(t, e.Vectors, got.Vectors)
}

func TestSaveText(t *testing.T) {
	e := &Embeddings{
		Words:   []string{"a", "b"},
		Vectors: []float32{0.5, -1, 2, 0.25},
		Dim:     2,
	}

	var buf bytes.Buffer
	require.NoError(t, e.SaveText(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "2 2", lines[0])
	assert.Equal(t, "a 0.5 -1", lines[1])
	assert.Equal(t, "b 2 0.25", lines[2])
}

func TestSaveRejectsBadShape(t *testing.T) {
	e := testEmbeddings()
	e.Vectors = e.Vectors[:5]

	var shape *ErrShape
	assert.ErrorAs(t, e.SaveBinary(&bytes.Buffer{}), &shape)
	assert.ErrorAs(t, e.SaveText(&bytes.Buffer{}), &shape)
}

func TestLoadBinaryBadHeader(t *testing.T) {
	_, err := LoadBinary(strings.NewReader("not a header"))
	assert.Error(t, err)
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	e := testEmbeddings()

	require.NoError(t, e.SaveBinaryToStore(ctx, store, "runs/w2v.bin"))

	got, err := LoadBinaryFromStore(ctx, store, "runs/w2v.bin")
	require.NoError(t, err)
	assert.Equal(t, e.Words, got.Words)
	assert.Equal(t, e.Vectors, got.Vectors)
}

func TestItemWords(t *testing.T) {
	assert.Equal(t, []string{"item-0", "item-1", "item-3"}, ItemWords([]int32{0, 1, 3}))
}
