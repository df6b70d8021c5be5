package archive

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSink writes documents into a Cloud Storage bucket.
type GCSSink struct {
	client *storage.Client
	bucket *storage.BucketHandle
	prefix string
}

// NewGCSSink returns nil when bucket is empty.
func NewGCSSink(ctx context.Context, bucket, prefix string, opts ...option.ClientOption) (*GCSSink, error) {
	if bucket == "" {
		return nil, nil
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSSink{client: client, bucket: client.Bucket(bucket), prefix: prefix}, nil
}

func (s *GCSSink) Name() string { return "gcs" }

func (s *GCSSink) Put(ctx context.Context, name string, data []byte) error {
	w := s.bucket.Object(s.prefix + name).NewWriter(ctx)
	w.ContentType = "application/pdf"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func (s *GCSSink) Close() error {
	return s.client.Close()
}
