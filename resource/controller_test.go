package resource

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_JobMemoryTracking(t *testing.T) {
	c := NewController(Config{})
	ctx := context.Background()

	require.NoError(t, c.AcquireJobMemory(ctx, 100))
	assert.Equal(t, int64(100), c.JobMemoryUsage())

	c.ReleaseJobMemory(100)
	assert.Equal(t, int64(0), c.JobMemoryUsage())
}

func TestController_JobMemoryLimitBlocks(t *testing.T) {
	c := NewController(Config{JobMemoryLimitBytes: 10})

	require.NoError(t, c.AcquireJobMemory(context.Background(), 10))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.AcquireJobMemory(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	c.ReleaseJobMemory(10)
	require.NoError(t, c.AcquireJobMemory(context.Background(), 10))
	c.ReleaseJobMemory(10)
}

func TestController_NilIsNoop(t *testing.T) {
	var c *Controller
	require.NoError(t, c.AcquireJobMemory(context.Background(), 1<<30))
	c.ReleaseJobMemory(1 << 30)
	assert.Equal(t, int64(0), c.JobMemoryUsage())
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestRateLimitedReader_ReadsAll(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	r := NewRateLimitedReader(context.Background(), strings.NewReader("abcdef"), c)

	buf := make([]byte, 4)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abcd", string(buf[:n]))
}
