// Package buffalo prepares streaming corpora for word-embedding
// training and drives a negative-sampling engine through a
// producer/consumer job protocol.
//
// The package owns two tightly coupled pieces: the vocabulary and
// sampling pipeline that turns raw token-frequency statistics into the
// fixed-point tables an engine requires, and the coordination protocol
// that streams variable-length token sequences into the engine's
// worker pool while corpus IO overlaps training compute.
//
// The engine itself is a consumed capability behind train.Engine; the
// embedding update math is not reimplemented here. train.InProc is a
// reference engine for running the whole pipeline in pure Go:
//
//	w2v, err := buffalo.New(train.NewInProc(),
//	    buffalo.WithMinCount(5),
//	    buffalo.WithSample(0.001),
//	    buffalo.WithDim(128),
//	)
//	if err != nil { ... }
//
//	if err := w2v.BuildVocab(ctx, source); err != nil { ... }
//	loss, err := w2v.Train(ctx, source, 5)
package buffalo
