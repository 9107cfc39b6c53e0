package train

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsAllTasks(t *testing.T) {
	wp := newWorkerPool(4)
	defer wp.close()

	var counter atomic.Int64
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, wp.submit(ctx, func() {
			defer wg.Done()
			counter.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int64(100), counter.Load())
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	wp := newWorkerPool(1)
	wp.close()

	err := wp.submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_CloseIsIdempotent(t *testing.T) {
	wp := newWorkerPool(2)
	wp.close()
	wp.close()
}
