package train

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DragonCP/buffalo/corpus"
)

// State is the coordinator lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitialized
	StateWorkersLaunched
	StateStreaming
	StateJoined
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateWorkersLaunched:
		return "workers-launched"
	case StateStreaming:
		return "streaming"
	case StateJoined:
		return "joined"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ErrInvalidState indicates an operation called outside its allowed
// lifecycle states.
type ErrInvalidState struct {
	Op    string
	State State
}

func (e *ErrInvalidState) Error() string {
	return fmt.Sprintf("train: %s not allowed in state %s", e.Op, e.State)
}

// ErrEngineInit indicates the engine rejected its options or the
// prepared model tables. Fatal for the run.
type ErrEngineInit struct {
	Stage string
	cause error
}

func (e *ErrEngineInit) Error() string {
	return fmt.Sprintf("train: engine %s failed: %v", e.Stage, e.cause)
}

func (e *ErrEngineInit) Unwrap() error { return e.cause }

// ErrModelShape indicates the embedding matrix does not match the
// vocabulary size and embedding dimension.
type ErrModelShape struct {
	Matrix int
	Vocab  int
	Dim    int
}

func (e *ErrModelShape) Error() string {
	return fmt.Sprintf("train: matrix of %d floats does not hold %d x %d embeddings", e.Matrix, e.Vocab, e.Dim)
}

// EpochStats are feed diagnostics for one streamed epoch: how long the
// control thread spent waiting on the batch source versus handing jobs
// to the engine.
type EpochStats struct {
	Jobs       int64
	Rows       int64
	Tokens     int64
	FetchTime  time.Duration
	SubmitTime time.Duration
}

// Options configure a Coordinator.
type Options struct {
	// Workers is passed to the engine's LaunchWorkers. <= 0 lets the
	// engine pick.
	Workers int

	// Logger receives per-epoch feed diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Coordinator owns the lifecycle of an engine handle and streams jobs
// into it. All methods are called from a single control goroutine; the
// engine's worker pool runs concurrently behind the interface.
type Coordinator struct {
	engine Engine
	opts   Options
	state  State
}

// NewCoordinator creates a coordinator around an engine handle.
func NewCoordinator(engine Engine, optFns ...func(*Options)) *Coordinator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coordinator{engine: engine, opts: opts}
}

// WithWorkers sets the engine worker count.
func WithWorkers(n int) func(*Options) {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) func(*Options) {
	return func(o *Options) {
		o.Logger = l
	}
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	return c.state
}

// Initialize parses the engine options and hands over the model.
//
// Valid from Uninitialized, or from Joined to start a fresh run; prior
// embedding contents are then owned by the caller, who is responsible
// for re-seeding the matrix.
func (c *Coordinator) Initialize(optionPath string, m Model) error {
	if c.state != StateUninitialized && c.state != StateJoined {
		return &ErrInvalidState{Op: "initialize", State: c.state}
	}

	vocabSize := len(m.NegativeCDF)
	if m.Dim <= 0 || len(m.Matrix) != vocabSize*m.Dim || len(m.SubsampleScale) != vocabSize {
		return &ErrModelShape{Matrix: len(m.Matrix), Vocab: vocabSize, Dim: m.Dim}
	}

	if err := c.engine.Init(optionPath); err != nil {
		return &ErrEngineInit{Stage: "option parse", cause: err}
	}
	if err := c.engine.InitializeModel(m); err != nil {
		return &ErrEngineInit{Stage: "model setup", cause: err}
	}

	c.state = StateInitialized
	return nil
}

// LaunchWorkers starts the engine's worker pool. Called exactly once
// per run, before any job is submitted.
func (c *Coordinator) LaunchWorkers() error {
	if c.state != StateInitialized {
		return &ErrInvalidState{Op: "launch workers", State: c.state}
	}
	c.engine.LaunchWorkers(c.opts.Workers)
	c.state = StateWorkersLaunched
	return nil
}

// Submit validates and enqueues one job. It does not wait for the job
// to be processed; ownership of the job's buffers transfers to the
// engine.
func (c *Coordinator) Submit(job *Job) error {
	if c.state != StateWorkersLaunched && c.state != StateStreaming {
		return &ErrInvalidState{Op: "submit", State: c.state}
	}
	if err := job.Validate(); err != nil {
		return err
	}
	if err := c.engine.AddJobs(job); err != nil {
		return err
	}
	c.state = StateStreaming
	return nil
}

// RunEpoch pulls batches from the source and submits each as a job
// until the source is exhausted, tracking time spent fetching versus
// submitting.
func (c *Coordinator) RunEpoch(ctx context.Context, src corpus.BatchSource) (EpochStats, error) {
	var stats EpochStats

	if c.state != StateWorkersLaunched && c.state != StateStreaming {
		return stats, &ErrInvalidState{Op: "run epoch", State: c.state}
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fetchStart := time.Now()
		batch, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			stats.FetchTime += time.Since(fetchStart)
			break
		}
		if err != nil {
			return stats, err
		}
		stats.FetchTime += time.Since(fetchStart)

		submitStart := time.Now()
		if err := c.Submit(NewJob(batch)); err != nil {
			return stats, err
		}
		stats.SubmitTime += time.Since(submitStart)

		stats.Jobs++
		stats.Rows += int64(batch.Len())
		stats.Tokens += int64(len(batch.IDs))
	}

	if c.opts.Logger != nil {
		c.opts.Logger.Debug("epoch streamed",
			"jobs", stats.Jobs,
			"rows", stats.Rows,
			"tokens", stats.Tokens,
			"fetch", stats.FetchTime,
			"submit", stats.SubmitTime,
		)
	}
	return stats, nil
}

// Join blocks until the engine has drained all submitted jobs and
// returns the aggregate loss. Valid right after LaunchWorkers as well;
// with no jobs submitted the loss is 0.
func (c *Coordinator) Join() (float64, error) {
	if c.state != StateWorkersLaunched && c.state != StateStreaming {
		return 0, &ErrInvalidState{Op: "join", State: c.state}
	}
	loss := c.engine.Join()
	c.state = StateJoined
	return loss, nil
}
