package sentinel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	printinfra "github.com/shipprint/backend/internal/infrastructure/printing"
)

// FileStore keeps each marker as <dir>/<key>.pdf. The stored content is the
// delivered document, so the scratch directory doubles as a print archive.
type FileStore struct {
	files *printinfra.FileSpool
}

// NewFileStore creates a file-backed store rooted at dir
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	files, err := printinfra.NewFileSpool(&printinfra.FileSpoolConfig{Dir: dir, Logger: logger})
	if err != nil {
		return nil, err
	}
	return &FileStore{files: files}, nil
}

// Has implements printing.SentinelStore
func (s *FileStore) Has(ctx context.Context, key string) (bool, error) {
	if err := printing.ValidateKey(key); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, err := os.Stat(s.files.Path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat sentinel %s: %w", key, err)
}

// Put implements printing.SentinelStore. The marker appears atomically.
func (s *FileStore) Put(ctx context.Context, key string, content []byte) error {
	if len(content) == 0 {
		content = []byte(time.Now().UTC().Format(time.RFC3339))
	}
	_, err := s.files.Write(ctx, key, content)
	return err
}

// Remove implements printing.SentinelStore
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}
	return s.files.Remove(ctx, s.files.Path(key))
}

// CleanupOlderThan removes markers older than age
func (s *FileStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	return s.files.CleanupOlderThan(ctx, age)
}

// Dir returns the marker directory
func (s *FileStore) Dir() string {
	return s.files.Dir()
}

// Close implements printing.SentinelStore
func (s *FileStore) Close() error {
	return nil
}

var _ printing.SentinelStore = (*FileStore)(nil)
