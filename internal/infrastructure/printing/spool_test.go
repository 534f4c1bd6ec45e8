package printing

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipprint/backend/internal/domain/printing"
)

func newTestSpool(t *testing.T) *FileSpool {
	t.Helper()
	spool, err := NewFileSpool(&FileSpoolConfig{Dir: filepath.Join(t.TempDir(), "spool")})
	require.NoError(t, err)
	return spool
}

func TestNewFileSpool_RequiresDir(t *testing.T) {
	_, err := NewFileSpool(nil)
	assert.Error(t, err)

	_, err = NewFileSpool(&FileSpoolConfig{})
	assert.Error(t, err)
}

func TestFileSpool_WriteAndRemove(t *testing.T) {
	ctx := context.Background()
	spool := newTestSpool(t)

	path, err := spool.Write(ctx, "packing-slip-2026-02-02-_1068", []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(spool.Dir(), "packing-slip-2026-02-02-_1068.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))

	// no temp files left behind
	entries, err := os.ReadDir(spool.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, spool.Remove(ctx, path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, spool.Remove(ctx, path))
}

func TestFileSpool_WriteRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	spool := newTestSpool(t)

	_, err := spool.Write(ctx, "../escape", []byte("x"))
	assert.ErrorIs(t, err, printing.ErrInvalidKey)

	_, err = spool.Write(ctx, "label-2026-02-02-1Z", nil)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = spool.Write(cancelled, "label-2026-02-02-1Z", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSpool_RemoveOutsideDir(t *testing.T) {
	spool := newTestSpool(t)
	outside := filepath.Join(t.TempDir(), "keep.pdf")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	err := spool.Remove(context.Background(), outside)
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = spool.Remove(context.Background(), filepath.Join(spool.Dir(), "..", "keep.pdf"))
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, statErr := os.Stat(outside)
	assert.NoError(t, statErr)
}

func TestFileSpool_CleanupOlderThan(t *testing.T) {
	ctx := context.Background()
	spool := newTestSpool(t)

	oldPath, err := spool.Write(ctx, "label-2026-01-01-old", []byte("old"))
	require.NoError(t, err)
	newPath, err := spool.Write(ctx, "label-2026-02-02-new", []byte("new"))
	require.NoError(t, err)
	other := filepath.Join(spool.Dir(), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))
	require.NoError(t, os.Chtimes(other, past, past))

	deleted, err := spool.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, newPath)
	assert.FileExists(t, other)
}
