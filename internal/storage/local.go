package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes objects under a base directory and serves them
// from a base URL. Development fallback when no GCS bucket is
// configured.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir, baseURL: baseURL}, nil
}

func (s *LocalStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	path := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", name, err)
	}
	return s.baseURL + "/" + name, nil
}
