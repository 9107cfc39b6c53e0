package train

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/DragonCP/buffalo/corpus"
	"github.com/DragonCP/buffalo/resource"
	"github.com/DragonCP/buffalo/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildInProcModel derives a full model from raw counts, the same way
// the facade wires the pipeline together.
func buildInProcModel(t *testing.T, counts []int64, dim int) Model {
	t.Helper()

	v, err := vocab.Build(&vocab.RawFrequency{Counts: counts}, 1)
	require.NoError(t, err)
	tables, err := vocab.BuildTables(v, 0) // keep every token: deterministic sentences
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	matrix := make([]float32, v.Size*dim)
	for i := range matrix {
		matrix[i] = (rng.Float32() - 0.5) / float32(dim)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return Model{
		Matrix:         matrix,
		Dim:            dim,
		Forward:        v.Forward,
		SubsampleScale: tables.SubsampleScale,
		NegativeCDF:    tables.NegativeCDF,
		TotalTokens:    total,
	}
}

func TestInProc_EndToEnd(t *testing.T) {
	counts := []int64{5, 5, 0, 10}
	m := buildInProcModel(t, counts, 8)
	before := append([]float32(nil), m.Matrix...)

	engine := NewInProc(WithInProcSeed(7), WithInProcWindow(2), WithInProcNegatives(3))
	c := NewCoordinator(engine, WithWorkers(2))
	require.NoError(t, c.Initialize("", m))
	require.NoError(t, c.LaunchWorkers())

	rows := [][]int32{
		{1, 2, 3, 1, 2},
		{3, 3, 1},
		{2, 1, 3, 3},
	}
	_, err := c.RunEpoch(context.Background(), corpus.NewSliceSource(rows, 4, 2))
	require.NoError(t, err)

	loss, err := c.Join()
	require.NoError(t, err)
	assert.Greater(t, loss, 0.0)
	assert.False(t, math.IsNaN(loss))

	// The engine trains in place on the caller's buffer.
	assert.NotEqual(t, before, m.Matrix)
}

func TestInProc_JoinWithoutJobsIsNeutral(t *testing.T) {
	engine := NewInProc()
	require.NoError(t, engine.InitializeModel(buildInProcModel(t, []int64{3, 4}, 4)))
	engine.LaunchWorkers(2)

	assert.Equal(t, 0.0, engine.Join())
}

func TestInProc_AddJobsBeforeLaunch(t *testing.T) {
	engine := NewInProc()
	require.NoError(t, engine.InitializeModel(buildInProcModel(t, []int64{3, 4}, 4)))

	job := &Job{NextRow: 1, RowOffsets: []int64{0, 1}, TokenIDs: []int32{1}}
	assert.ErrorIs(t, engine.AddJobs(job), ErrWorkersNotLaunched)
}

func TestInProc_RejectsBadJob(t *testing.T) {
	engine := NewInProc()
	require.NoError(t, engine.InitializeModel(buildInProcModel(t, []int64{3, 4}, 4)))
	engine.LaunchWorkers(1)
	defer engine.Join()

	bad := &Job{StartRow: 0, NextRow: 2, RowOffsets: []int64{0, 1}, TokenIDs: []int32{1}}
	var bounds *ErrJobBounds
	assert.ErrorAs(t, engine.AddJobs(bad), &bounds)
}

func TestInProc_OptionFileMustExist(t *testing.T) {
	engine := NewInProc()
	require.NoError(t, engine.Init(""))
	assert.Error(t, engine.Init("/nonexistent/engine-options.json"))
}

func TestInProc_PrunedIDsAreSkipped(t *testing.T) {
	m := buildInProcModel(t, []int64{3, 4}, 4)
	engine := NewInProc(WithInProcSeed(1))
	require.NoError(t, engine.InitializeModel(m))
	engine.LaunchWorkers(1)

	// Rows of only zeros (pruned items) produce no training pairs.
	job := &Job{NextRow: 2, RowOffsets: []int64{0, 2, 4}, TokenIDs: []int32{0, 0, 0, 0}}
	require.NoError(t, engine.AddJobs(job))
	assert.Equal(t, 0.0, engine.Join())
}

func TestInProc_MemoryBoundReleases(t *testing.T) {
	ctrl := resource.NewController(resource.Config{JobMemoryLimitBytes: 1 << 20})
	m := buildInProcModel(t, []int64{5, 5, 0, 10}, 4)

	engine := NewInProc(WithInProcSeed(3), WithInProcController(ctrl))
	require.NoError(t, engine.InitializeModel(m))
	engine.LaunchWorkers(2)

	for i := 0; i < 10; i++ {
		job := &Job{
			StartRow:   i,
			NextRow:    i + 1,
			RowOffsets: []int64{0, 3},
			TokenIDs:   []int32{1, 3, 2},
		}
		require.NoError(t, engine.AddJobs(job))
	}
	engine.Join()

	// All queued-job memory is returned once workers drain.
	assert.Equal(t, int64(0), ctrl.JobMemoryUsage())
}

func TestInProc_ReuseAcrossRuns(t *testing.T) {
	m := buildInProcModel(t, []int64{5, 5, 0, 10}, 4)
	engine := NewInProc(WithInProcSeed(11))

	for run := 0; run < 2; run++ {
		require.NoError(t, engine.InitializeModel(m))
		engine.LaunchWorkers(2)
		job := &Job{NextRow: 1, RowOffsets: []int64{0, 4}, TokenIDs: []int32{1, 3, 2, 1}}
		require.NoError(t, engine.AddJobs(job))
		loss := engine.Join()
		assert.False(t, math.IsNaN(loss))
	}
}
