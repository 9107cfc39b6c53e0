// Package s3 implements blobstore.Store for AWS S3.
//
// Construct a client from the ambient AWS configuration:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(s3sdk.NewFromConfig(cfg), "my-bucket", "corpora/")
package s3
