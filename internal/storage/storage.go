// Package storage abstracts the blob store that holds encoded units and
// archived study reports.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get methods when the blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Client abstracts blob storage for units and reports. Blobs are grouped
// by project and keyed by id.
type Client interface {
	PutUnit(ctx context.Context, project, unitID string, data []byte) error
	GetUnit(ctx context.Context, project, unitID string) ([]byte, error)
	PutReport(ctx context.Context, project, runID string, data []byte) error
	GetReport(ctx context.Context, project, runID string) ([]byte, error)
}

// UnitID derives a blob id from a source path so that nested paths map to
// a single flat key segment.
func UnitID(sourcePath string) string {
	id := filepath.ToSlash(sourcePath)
	id = strings.TrimPrefix(id, "./")
	id = strings.TrimPrefix(id, "/")
	return strings.ReplaceAll(id, "/", "__")
}

// LocalStorage implements Client using the local filesystem.
// Useful for development and testing. Content type and metadata are
// not kept on disk.
type LocalStorage struct {
	blobClient
	BaseDir string
}

// NewLocalStorage creates a LocalStorage rooted at the given directory.
func NewLocalStorage(baseDir string) *LocalStorage {
	s := &LocalStorage{BaseDir: baseDir}
	s.blobClient = blobClient{store: s}
	return s
}

func (s *LocalStorage) path(b blob) string {
	return filepath.Join(s.BaseDir, filepath.FromSlash(b.key()))
}

func (s *LocalStorage) put(_ context.Context, b blob, data []byte) error {
	path := s.path(b)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *LocalStorage) get(_ context.Context, b blob) ([]byte, error) {
	data, err := os.ReadFile(s.path(b))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s %s: %w", b.kind, b.id, ErrNotFound)
	}
	return data, err
}
