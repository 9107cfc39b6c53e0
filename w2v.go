package buffalo

import (
	"context"
	"math/rand"
	"time"

	"github.com/DragonCP/buffalo/corpus"
	"github.com/DragonCP/buffalo/model"
	"github.com/DragonCP/buffalo/train"
	"github.com/DragonCP/buffalo/vocab"
)

// Word2Vec drives the full pipeline: a counting pass over the corpus,
// vocabulary and sampling-table construction, and streamed epochs
// through a training engine.
//
// The type is not safe for concurrent use; run one pipeline per
// instance.
type Word2Vec struct {
	engine train.Engine
	opts   Options

	vocab  *vocab.Vocabulary
	tables *vocab.SamplingTables
	matrix []float32
}

// New creates a Word2Vec pipeline around an engine handle.
func New(engine train.Engine, optFns ...func(*Options)) (*Word2Vec, error) {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if engine == nil {
		return nil, fmtConfig("engine must not be nil")
	}
	return &Word2Vec{engine: engine, opts: opts}, nil
}

// BuildVocab runs the counting pass and builds the vocabulary and
// sampling tables. The source is reset afterwards so it can be reused
// for training.
func (w *Word2Vec) BuildVocab(ctx context.Context, src corpus.BatchSource) error {
	countStart := time.Now()
	freq, err := vocab.CountFrequencies(ctx, src)
	w.opts.Metrics.RecordCount(totalOf(freq), time.Since(countStart), err)
	w.opts.Logger.LogCount(ctx, totalOf(freq), src.Header().Items, err)
	if err != nil {
		return translateError(err)
	}

	buildStart := time.Now()
	v, err := vocab.Build(freq, w.opts.MinCount)
	if err != nil {
		w.opts.Metrics.RecordVocabBuild(0, 0, time.Since(buildStart), err)
		w.opts.Logger.LogVocab(ctx, 0, 0, err)
		return translateError(err)
	}

	tables, err := vocab.BuildTables(v, w.opts.Sample)
	if err != nil {
		w.opts.Metrics.RecordVocabBuild(v.Size, 0, time.Since(buildStart), err)
		w.opts.Logger.LogVocab(ctx, v.Size, 0, err)
		return translateError(err)
	}
	w.opts.Metrics.RecordVocabBuild(v.Size, tables.Downsampled, time.Since(buildStart), nil)
	w.opts.Logger.LogVocab(ctx, v.Size, tables.Downsampled, nil)

	w.vocab = v
	w.tables = tables
	return src.Reset(ctx)
}

// Train streams the corpus through the engine for the given number of
// epochs and returns the aggregate loss.
//
// The embedding matrix is freshly seeded on every call, so repeated
// Train calls start independent runs over the same vocabulary. The
// source is wrapped so that raw item ids are mapped to dense
// vocabulary ids on the fly; it must be positioned at the start (as
// BuildVocab leaves it).
func (w *Word2Vec) Train(ctx context.Context, src corpus.BatchSource, epochs int) (float64, error) {
	if w.vocab == nil {
		return 0, ErrNoVocabulary
	}
	if epochs < 1 {
		return 0, fmtConfig("epochs must be >= 1")
	}

	w.seedMatrix()
	mapped := corpus.NewMappedSource(src, w.vocab.Forward)

	coord := train.NewCoordinator(w.engine,
		train.WithWorkers(w.opts.Workers),
		train.WithLogger(w.opts.Logger.Logger),
	)

	m := train.Model{
		Matrix:         w.matrix,
		Dim:            w.opts.Dim,
		Forward:        w.vocab.Forward,
		SubsampleScale: w.tables.SubsampleScale,
		NegativeCDF:    w.tables.NegativeCDF,
		TotalTokens:    w.vocab.RetainedTokens() * int64(epochs),
	}
	if err := coord.Initialize(w.opts.OptionPath, m); err != nil {
		return 0, translateError(err)
	}
	if err := coord.LaunchWorkers(); err != nil {
		return 0, translateError(err)
	}

	for epoch := 0; epoch < epochs; epoch++ {
		if epoch > 0 {
			if err := mapped.Reset(ctx); err != nil {
				return 0, translateError(err)
			}
		}
		stats, err := coord.RunEpoch(ctx, mapped)
		w.opts.Metrics.RecordEpoch(stats, err)
		w.opts.Logger.LogEpoch(ctx, epoch, stats, err)
		if err != nil {
			return 0, translateError(err)
		}
	}

	joinStart := time.Now()
	loss, err := coord.Join()
	w.opts.Metrics.RecordJoin(loss, time.Since(joinStart), err)
	w.opts.Logger.LogJoin(ctx, loss, time.Since(joinStart), err)
	if err != nil {
		return 0, translateError(err)
	}
	return loss, nil
}

// seedMatrix initializes the embedding matrix with uniform noise in
// (-0.5/dim, 0.5/dim), the standard word2vec initialization.
func (w *Word2Vec) seedMatrix() {
	size := w.vocab.Size * w.opts.Dim
	if len(w.matrix) != size {
		w.matrix = make([]float32, size)
	}

	rng := rand.New(rand.NewSource(w.opts.Seed))
	scale := 0.5 / float64(w.opts.Dim)
	for i := range w.matrix {
		w.matrix[i] = float32((rng.Float64() - 0.5) * 2 * scale)
	}
}

// Vocabulary returns the built vocabulary, or nil before BuildVocab.
func (w *Word2Vec) Vocabulary() *vocab.Vocabulary {
	return w.vocab
}

// Tables returns the built sampling tables, or nil before BuildVocab.
func (w *Word2Vec) Tables() *vocab.SamplingTables {
	return w.tables
}

// Matrix returns the embedding matrix, or nil before the first Train.
func (w *Word2Vec) Matrix() []float32 {
	return w.matrix
}

// Embeddings exports the trained matrix with per-item labels derived
// from the raw item ids.
func (w *Word2Vec) Embeddings() (*model.Embeddings, error) {
	if w.vocab == nil {
		return nil, ErrNoVocabulary
	}
	if w.matrix == nil {
		return nil, fmtConfig("no trained matrix")
	}
	return &model.Embeddings{
		Words:   model.ItemWords(w.vocab.Inverse),
		Vectors: w.matrix,
		Dim:     w.opts.Dim,
	}, nil
}

func totalOf(f *vocab.RawFrequency) int64 {
	if f == nil {
		return 0
	}
	return f.Total
}
