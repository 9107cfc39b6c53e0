package train

// Model is the one-time setup handed to an engine before workers are
// launched.
//
// Matrix is row-major, one row of Dim float32s per dense vocabulary
// id. The engine mutates it in place during training; the caller keeps
// the same buffer and must not touch it until Join returns. Forward,
// SubsampleScale and NegativeCDF are the vocabulary and sampling
// tables, read-only for the duration of the run.
type Model struct {
	Matrix         []float32
	Dim            int
	Forward        []int32
	SubsampleScale []uint32
	NegativeCDF    []int32
	TotalTokens    int64
}

// Engine is the native training engine boundary.
//
// Implementations accept an option blob, the model tables, and a
// stream of jobs, and report a single aggregate loss at Join. Engine
// failures are fatal for the run; nothing at this layer retries.
type Engine interface {
	// Init parses the engine's option file. Failure aborts the run.
	Init(optionPath string) error

	// InitializeModel hands the embedding matrix and tables to the
	// engine. Called once per run, before LaunchWorkers.
	InitializeModel(m Model) error

	// LaunchWorkers starts the engine's internal worker pool.
	LaunchWorkers(numWorkers int)

	// AddJobs enqueues one job for asynchronous processing. Ownership
	// of the job's buffers transfers to the engine.
	AddJobs(job *Job) error

	// Join blocks until all submitted jobs are processed and returns
	// the aggregate loss. With no jobs submitted it returns 0.
	Join() float64
}
