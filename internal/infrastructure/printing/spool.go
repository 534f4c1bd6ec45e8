package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
)

// ErrInvalidPath is returned for paths outside the spool directory
var ErrInvalidPath = errors.New("path is outside the spool directory")

// FileSpoolConfig contains configuration for a file spool
type FileSpoolConfig struct {
	// Dir is the directory documents are written to
	Dir string
	// Logger for operations
	Logger *zap.Logger
}

// FileSpool stores documents as <dir>/<key>.pdf so that a file path can be
// handed to the print spooler
type FileSpool struct {
	dir    string
	logger *zap.Logger
}

// NewFileSpool creates the spool directory if needed
func NewFileSpool(config *FileSpoolConfig) (*FileSpool, error) {
	if config == nil || config.Dir == "" {
		return nil, errors.New("spool directory is required")
	}
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create spool directory %s: %w", config.Dir, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileSpool{
		dir:    config.Dir,
		logger: logger,
	}, nil
}

// Dir returns the spool directory
func (s *FileSpool) Dir() string {
	return s.dir
}

// Path returns the file path a document key is stored under
func (s *FileSpool) Path(key string) string {
	return filepath.Join(s.dir, printing.FileName(key))
}

// Write stores data under key and returns the file path.
// The file is written under a temporary name and renamed into place.
func (s *FileSpool) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := printing.ValidateKey(key); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("document is empty")
	}

	path := s.Path(key)
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}

	s.logger.Debug("document spooled",
		zap.String("path", path),
		zap.Int("size", len(data)))
	return path, nil
}

// Remove deletes a spooled file. A missing file is not an error.
func (s *FileSpool) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.contains(path) {
		s.logger.Warn("blocked removal outside spool directory", zap.String("path", path))
		return ErrInvalidPath
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// CleanupOlderThan removes documents older than age, such as leftovers of an
// interrupted run. It returns the number of files removed.
func (s *FileSpool) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read spool directory: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != printing.DocumentExtension {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		s.logger.Info("spool cleanup completed",
			zap.Int("deleted", deleted),
			zap.Duration("age", age))
	}
	return deleted, nil
}

// contains checks that path resolves to a file directly inside the spool directory
func (s *FileSpool) contains(path string) bool {
	absBase, err := filepath.Abs(s.dir)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return filepath.Dir(absPath) == absBase && !strings.HasPrefix(filepath.Base(absPath), ".")
}

// writeFileAtomic writes data to a temp file in the target directory and renames it
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
