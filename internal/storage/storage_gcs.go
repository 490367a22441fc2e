package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSStorage keeps units and reports in one Cloud Storage bucket, with the
// same key layout and object metadata as S3Storage.
type GCSStorage struct {
	blobClient
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// NewGCSStorage creates a GCS-backed Client using Application Default
// Credentials.
func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs storage requires a bucket")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	s := &GCSStorage{client: client, bucket: client.Bucket(bucket)}
	s.blobClient = blobClient{store: s}
	return s, nil
}

// Close releases the underlying client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) put(ctx context.Context, b blob, data []byte) error {
	w := s.bucket.Object(b.key()).NewWriter(ctx)
	w.ObjectAttrs.ContentType = b.contentType()
	w.ObjectAttrs.Metadata = b.metadata()
	// A write error surfaces again from Close, which also aborts the upload.
	_, _ = w.Write(data)
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs put %s %s: %w", b.kind, b.id, err)
	}
	return nil
}

func (s *GCSStorage) get(ctx context.Context, b blob) ([]byte, error) {
	r, err := s.bucket.Object(b.key()).NewReader(ctx)
	switch {
	case errors.Is(err, gcs.ErrObjectNotExist):
		return nil, fmt.Errorf("gcs %s %s: %w", b.kind, b.id, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("gcs get %s %s: %w", b.kind, b.id, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s %s: %w", b.kind, b.id, err)
	}
	return data, nil
}
