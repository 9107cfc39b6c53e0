package buffalo

import (
	"context"
	"testing"

	"github.com/DragonCP/buffalo/corpus"
	"github.com/DragonCP/buffalo/train"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRows is a tiny corpus with a clear frequency skew: item 0 is
// frequent, items 1-4 co-occur with it, item 5 appears once.
func testRows() [][]int32 {
	return [][]int32{
		{0, 1, 0, 2},
		{0, 3, 0, 4},
		{1, 0, 2, 0},
		{3, 0, 4, 0},
		{0, 1, 2, 3, 4},
		{5},
	}
}

func testSource() *corpus.SliceSource {
	return corpus.NewSliceSource(testRows(), 6, 2)
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(train.NewInProc(), WithDim(0))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New(train.NewInProc(), WithSample(1.5))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New(train.NewInProc(), WithMinCount(0))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestBuildVocab(t *testing.T) {
	ctx := context.Background()
	w, err := New(train.NewInProc(), WithMinCount(2), WithSample(0))
	require.NoError(t, err)

	require.NoError(t, w.BuildVocab(ctx, testSource()))

	v := w.Vocabulary()
	require.NotNil(t, v)
	// Item 5 appears once and is pruned by minCount 2.
	assert.Equal(t, 5, v.Size)
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 0}, v.Forward)
	assert.Equal(t, []int32{0, 1, 2, 3, 4}, v.Inverse)

	tab := w.Tables()
	require.NotNil(t, tab)
	assert.Len(t, tab.SubsampleScale, 5)
	assert.Len(t, tab.NegativeCDF, 5)
}

func TestBuildVocabEmpty(t *testing.T) {
	w, err := New(train.NewInProc(), WithMinCount(100))
	require.NoError(t, err)

	err = w.BuildVocab(context.Background(), testSource())
	assert.ErrorIs(t, err, ErrEmptyVocabulary)
}

func TestBuildVocabOutOfRange(t *testing.T) {
	w, err := New(train.NewInProc(), WithMinCount(1))
	require.NoError(t, err)

	// Declared item space of 3 is smaller than the ids actually seen.
	src := corpus.NewSliceSource(testRows(), 3, 0)
	err = w.BuildVocab(context.Background(), src)
	assert.ErrorIs(t, err, ErrDataExhaustion)
}

func TestTrainRequiresVocab(t *testing.T) {
	w, err := New(train.NewInProc())
	require.NoError(t, err)

	_, err = w.Train(context.Background(), testSource(), 1)
	assert.ErrorIs(t, err, ErrNoVocabulary)
}

func TestTrainEndToEnd(t *testing.T) {
	ctx := context.Background()
	engine := train.NewInProc(
		train.WithInProcWindow(2),
		train.WithInProcNegatives(3),
		train.WithInProcSeed(7),
	)
	w, err := New(engine,
		WithMinCount(1),
		WithSample(0),
		WithDim(8),
		WithWorkers(2),
		WithSeed(42),
	)
	require.NoError(t, err)

	src := testSource()
	require.NoError(t, w.BuildVocab(ctx, src))

	loss, err := w.Train(ctx, src, 2)
	require.NoError(t, err)
	assert.Greater(t, loss, 0.0)

	e, err := w.Embeddings()
	require.NoError(t, err)
	assert.Len(t, e.Words, 6)
	assert.Len(t, e.Vectors, 6*8)
	assert.Equal(t, 8, e.Dim)
}

func TestTrainRejectsBadEpochs(t *testing.T) {
	ctx := context.Background()
	w, err := New(train.NewInProc(), WithMinCount(1), WithSample(0), WithDim(4))
	require.NoError(t, err)

	src := testSource()
	require.NoError(t, w.BuildVocab(ctx, src))

	_, err = w.Train(ctx, src, 0)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestMetricsCollection(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	w, err := New(train.NewInProc(),
		WithMinCount(1),
		WithSample(0),
		WithDim(4),
		WithMetrics(metrics),
	)
	require.NoError(t, err)

	src := testSource()
	require.NoError(t, w.BuildVocab(ctx, src))
	_, err = w.Train(ctx, src, 1)
	require.NoError(t, err)

	assert.Equal(t, int64(22), metrics.CountTokens.Load())
	assert.Equal(t, int64(6), metrics.VocabSize.Load())
	assert.Equal(t, int64(1), metrics.EpochCount.Load())
	assert.Equal(t, int64(22), metrics.EpochTokens.Load())
	assert.Equal(t, int64(1), metrics.JoinCount.Load())
}

func TestEmbeddingsBeforeTrain(t *testing.T) {
	w, err := New(train.NewInProc())
	require.NoError(t, err)

	_, err = w.Embeddings()
	assert.ErrorIs(t, err, ErrNoVocabulary)
}
