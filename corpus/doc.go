// Package corpus provides batch sources for row-wise token sequences.
//
// A corpus is a finite sequence of rows, each row a sequence of item
// ids. Sources hand the data out in batches: a contiguous row range,
// an offset table, and the flat concatenation of the rows' ids. A
// source is single-pass per epoch and restartable via Reset.
//
// Three implementations:
//
//   - SliceSource: in-memory rows, used in tests and small corpora
//   - StreamSource: binary row stream read from a blobstore, with
//     transparent zstd/lz4 decompression and optional IO rate limiting
//   - MappedSource: decorator translating raw item ids to dense
//     vocabulary ids through a forward index
package corpus
