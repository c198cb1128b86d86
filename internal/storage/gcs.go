package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCSStore stores objects in a Google Cloud Storage bucket. Objects
// are assumed publicly readable (the bucket carries the ACL); the
// returned URL is the canonical public one.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(name)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", name, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
