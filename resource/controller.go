// Package resource bounds memory and IO used by corpus streaming.
//
// The training coordinator feeds jobs ahead of the workers; without a
// bound, a fast corpus reader can stage an unbounded number of job
// buffers while workers lag. Controller provides that bound plus an
// optional read-throughput limit for shared storage backends.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// JobMemoryLimitBytes caps the total bytes of jobs queued but not
	// yet processed by engine workers. If 0, only tracking is done.
	JobMemoryLimitBytes int64

	// IOLimitBytesPerSec caps corpus read throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller tracks and limits job memory and corpus IO.
// A nil Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	jobSem  *semaphore.Weighted // nil if unlimited
	jobUsed atomic.Int64

	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.JobMemoryLimitBytes > 0 {
		c.jobSem = semaphore.NewWeighted(cfg.JobMemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}
	return c
}

// AcquireJobMemory reserves bytes for a queued job. If a hard limit is
// configured and usage would exceed it, this blocks until workers
// drain enough jobs or ctx is canceled.
func (c *Controller) AcquireJobMemory(ctx context.Context, bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.jobSem != nil {
		if err := c.jobSem.Acquire(ctx, bytes); err != nil {
			return err
		}
	}
	c.jobUsed.Add(bytes)
	return nil
}

// ReleaseJobMemory releases bytes reserved for a processed job.
func (c *Controller) ReleaseJobMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.jobSem != nil {
		c.jobSem.Release(bytes)
	}
	c.jobUsed.Add(-bytes)
}

// JobMemoryUsage returns the bytes currently reserved for queued jobs.
func (c *Controller) JobMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.jobUsed.Load()
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil || bytes <= 0 {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}
