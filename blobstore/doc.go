// Package blobstore abstracts access to immutable data blobs.
//
// Corpus shards and persisted models are stored as named blobs. The
// package ships four backends:
//
//   - LocalStore: local file system, memory-mapped for zero-copy reads
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: AWS S3
//
// Blobs are immutable once written; Create/Put replace whole objects.
package blobstore
