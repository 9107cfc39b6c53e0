package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/DragonCP/buffalo/resource"
	"github.com/viterin/vek/vek32"
)

// ErrWorkersNotLaunched is returned when jobs are added before
// LaunchWorkers.
var ErrWorkersNotLaunched = errors.New("train: workers not launched")

const lockStripes = 1024 // power of 2

// InProcOptions configure the in-process engine.
type InProcOptions struct {
	// Window is the maximum skip-gram context radius. The effective
	// radius per center word is drawn uniformly from [1, Window].
	Window int

	// Negatives is the number of negative samples per context pair.
	Negatives int

	// Alpha is the initial learning rate, decayed linearly over
	// TotalTokens down to Alpha/10000.
	Alpha float64

	// Seed makes the per-job RNG streams reproducible.
	Seed int64

	// Controller, if set, bounds the bytes of queued, unprocessed jobs.
	Controller *resource.Controller
}

// InProc is a pure-Go skip-gram negative-sampling engine.
//
// It implements the same four-call protocol a native engine exposes
// and consumes the fixed-point tables exactly as the native sampler
// would: retention by uint32 threshold compare, negatives by binary
// search over the int32 cumulative distribution.
//
// Parameter rows are guarded by striped locks; the input and context
// matrices have independent stripe sets, always acquired input-first,
// so concurrent workers cannot deadlock.
type InProc struct {
	opts InProcOptions

	model  Model
	ctxVec []float32
	size   int

	pool    *workerPool
	pending sync.WaitGroup

	inLocks  [lockStripes]sync.Mutex
	outLocks [lockStripes]sync.Mutex

	lossBits  atomic.Uint64 // float64 bits of summed loss
	pairs     atomic.Int64
	processed atomic.Int64
	jobSeq    atomic.Int64
}

// Compile-time interface check
var _ Engine = (*InProc)(nil)

// NewInProc creates an in-process engine.
func NewInProc(optFns ...func(*InProcOptions)) *InProc {
	opts := InProcOptions{
		Window:    5,
		Negatives: 5,
		Alpha:     0.025,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InProc{opts: opts}
}

// WithInProcWindow sets the maximum context radius.
func WithInProcWindow(n int) func(*InProcOptions) {
	return func(o *InProcOptions) {
		o.Window = n
	}
}

// WithInProcNegatives sets the negative samples per pair.
func WithInProcNegatives(n int) func(*InProcOptions) {
	return func(o *InProcOptions) {
		o.Negatives = n
	}
}

// WithInProcAlpha sets the initial learning rate.
func WithInProcAlpha(a float64) func(*InProcOptions) {
	return func(o *InProcOptions) {
		o.Alpha = a
	}
}

// WithInProcSeed sets the RNG seed.
func WithInProcSeed(seed int64) func(*InProcOptions) {
	return func(o *InProcOptions) {
		o.Seed = seed
	}
}

// WithInProcController sets the queued-job memory bound.
func WithInProcController(c *resource.Controller) func(*InProcOptions) {
	return func(o *InProcOptions) {
		o.Controller = c
	}
}

// Init checks that the option file exists. The in-process engine has
// no file-backed options of its own; an empty path is accepted.
func (e *InProc) Init(optionPath string) error {
	if optionPath == "" {
		return nil
	}
	if _, err := os.Stat(optionPath); err != nil {
		return fmt.Errorf("train: option file: %w", err)
	}
	return nil
}

// InitializeModel adopts the caller's embedding matrix for in-place
// mutation and allocates the engine-owned context matrix.
func (e *InProc) InitializeModel(m Model) error {
	size := len(m.NegativeCDF)
	if m.Dim <= 0 || len(m.Matrix) != size*m.Dim || len(m.SubsampleScale) != size {
		return &ErrModelShape{Matrix: len(m.Matrix), Vocab: size, Dim: m.Dim}
	}

	e.model = m
	e.size = size
	e.ctxVec = make([]float32, size*m.Dim)
	e.lossBits.Store(0)
	e.pairs.Store(0)
	e.processed.Store(0)
	return nil
}

// LaunchWorkers starts the worker pool.
func (e *InProc) LaunchWorkers(numWorkers int) {
	e.pool = newWorkerPool(numWorkers)
}

// AddJobs enqueues one job. Ownership of the job's buffers transfers
// to the engine; the call blocks only on queue backpressure or the
// configured job-memory bound.
func (e *InProc) AddJobs(job *Job) error {
	if e.pool == nil {
		return ErrWorkersNotLaunched
	}
	if err := job.Validate(); err != nil {
		return err
	}

	bytes := job.SizeBytes()
	if err := e.opts.Controller.AcquireJobMemory(context.Background(), bytes); err != nil {
		return err
	}

	seed := e.opts.Seed + e.jobSeq.Add(1)
	e.pending.Add(1)
	err := e.pool.submit(context.Background(), func() {
		defer e.pending.Done()
		defer e.opts.Controller.ReleaseJobMemory(bytes)
		e.processJob(job, seed)
	})
	if err != nil {
		e.pending.Done()
		e.opts.Controller.ReleaseJobMemory(bytes)
		return err
	}
	return nil
}

// Join drains all submitted jobs, stops the pool, and returns the mean
// loss per trained pair. With no pairs trained it returns 0.
func (e *InProc) Join() float64 {
	e.pending.Wait()
	if e.pool != nil {
		e.pool.close()
		e.pool = nil
	}

	pairs := e.pairs.Load()
	if pairs == 0 {
		return 0
	}
	return math.Float64frombits(e.lossBits.Load()) / float64(pairs)
}

func (e *InProc) processJob(job *Job, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	sentence := make([]int32, 0, 64)
	var loss float64
	var pairs int64

	for r := 0; r < job.NextRow-job.StartRow; r++ {
		row := job.Row(r)

		// Subsample: keep a token when the draw lands under its
		// retention scale. Zero ids are pruned items.
		sentence = sentence[:0]
		for _, id := range row {
			if id <= 0 {
				continue
			}
			if rng.Uint32() > e.model.SubsampleScale[id-1] {
				continue
			}
			sentence = append(sentence, id)
		}

		for pos, center := range sentence {
			radius := rng.Intn(e.opts.Window) + 1
			for off := -radius; off <= radius; off++ {
				ctxPos := pos + off
				if off == 0 || ctxPos < 0 || ctxPos >= len(sentence) {
					continue
				}
				l, n := e.trainPair(center-1, sentence[ctxPos]-1, rng)
				loss += l
				pairs += n
			}
		}
	}

	e.addLoss(loss)
	e.pairs.Add(pairs)
	e.processed.Add(int64(len(job.TokenIDs)))
}

// trainPair updates the pair (center, target) plus sampled negatives
// and returns the summed loss and pair count.
func (e *InProc) trainPair(center, target int32, rng *rand.Rand) (float64, int64) {
	alpha := float32(e.alpha())
	var loss float64
	var pairs int64

	l, ok := e.updateOne(center, target, 1, alpha)
	if ok {
		loss += l
		pairs++
	}
	for n := 0; n < e.opts.Negatives; n++ {
		neg := e.sampleNegative(rng)
		if neg == target {
			continue
		}
		l, ok := e.updateOne(center, neg, 0, alpha)
		if ok {
			loss += l
			pairs++
		}
	}
	return loss, pairs
}

// updateOne performs one SGD step on an (input, output, label) triple.
func (e *InProc) updateOne(in, out int32, label float32, alpha float32) (float64, bool) {
	dim := e.model.Dim
	iv := e.model.Matrix[int(in)*dim : int(in+1)*dim]
	ov := e.ctxVec[int(out)*dim : int(out+1)*dim]

	e.inLocks[uint32(in)&(lockStripes-1)].Lock()
	defer e.inLocks[uint32(in)&(lockStripes-1)].Unlock()
	e.outLocks[uint32(out)&(lockStripes-1)].Lock()
	defer e.outLocks[uint32(out)&(lockStripes-1)].Unlock()

	dot := vek32.Dot(iv, ov)
	pred := sigmoid(dot)
	g := (label - pred) * alpha

	for k := 0; k < dim; k++ {
		iv[k], ov[k] = iv[k]+g*ov[k], ov[k]+g*iv[k]
	}

	if label == 1 {
		return -math.Log(float64(pred) + 1e-10), true
	}
	return -math.Log(1 - float64(pred) + 1e-10), true
}

// sampleNegative draws a dense id (0-based) by inverse-CDF search.
// The last table entry is exactly MaxInt32, so the search always
// terminates inside the table.
func (e *InProc) sampleNegative(rng *rand.Rand) int32 {
	r := rng.Int31()
	cdf := e.model.NegativeCDF
	return int32(sort.Search(len(cdf), func(i int) bool { return cdf[i] >= r }))
}

// alpha returns the linearly decayed learning rate with a 1e-4 floor.
func (e *InProc) alpha() float64 {
	total := e.model.TotalTokens
	if total <= 0 {
		return e.opts.Alpha
	}
	frac := float64(e.processed.Load()) / float64(total)
	if frac > 1 {
		frac = 1
	}
	a := e.opts.Alpha * (1 - frac)
	if floor := e.opts.Alpha * 1e-4; a < floor {
		a = floor
	}
	return a
}

func (e *InProc) addLoss(l float64) {
	for {
		old := e.lossBits.Load()
		next := math.Float64bits(math.Float64frombits(old) + l)
		if e.lossBits.CompareAndSwap(old, next) {
			return
		}
	}
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(-float64(x))))
}
