// Package vocab turns raw token-frequency statistics into the dense
// vocabulary and fixed-point sampling tables a negative-sampling
// training engine consumes.
//
// The pipeline is three steps, each pure given its inputs:
//
//	counts := vocab.CountFrequencies(ctx, source)
//	v      := vocab.Build(counts, minCount)
//	tables := vocab.BuildTables(v, sample)
//
// Dense vocabulary ids are 1-based and contiguous; 0 marks a pruned
// item in the forward index. The tables package both quantizes with
// explicit boundary snapping so the engine's inverse-CDF search always
// terminates.
package vocab
