package sentinel

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/infrastructure/config"
)

func TestFactory_CreateStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewFactory(config.SentinelConfig{Backend: "file"}, dir, WithLogger(zap.NewNop())).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		require.IsType(t, &FileStore{}, store)
		assert.Equal(t, dir, store.(*FileStore).Dir())
	})

	t.Run("memory", func(t *testing.T) {
		store, err := NewFactory(config.SentinelConfig{Backend: "memory"}, "").CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("sql", func(t *testing.T) {
		cfg := config.SentinelConfig{
			Backend: "sql",
			SQL: config.SQLConfig{
				Driver:      "sqlite",
				DSN:         filepath.Join(t.TempDir(), "s.db"),
				AutoMigrate: true,
			},
		}
		store, err := NewFactory(cfg, "", WithSQLTracing(true)).CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &GormStore{}, store)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := config.SentinelConfig{
			Backend: "redis",
			Redis:   config.RedisConfig{Host: mr.Host(), Port: mustPort(t, mr.Port())},
		}
		store, err := NewFactory(cfg, "").CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &RedisStore{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewFactory(config.SentinelConfig{Backend: "etcd"}, "").CreateStore(ctx)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		_, err := NewFactory(config.SentinelConfig{Backend: "s3"}, "").CreateStore(ctx)
		assert.Error(t, err)
	})
}

func TestFactory_RedisFallback(t *testing.T) {
	ctx := context.Background()
	cfg := config.SentinelConfig{
		Backend: "redis",
		Redis:   config.RedisConfig{Host: "127.0.0.1", Port: 1},
	}

	t.Run("disabled by default", func(t *testing.T) {
		_, err := NewFactory(cfg, "").CreateStore(ctx)
		assert.Error(t, err)
	})

	t.Run("from option", func(t *testing.T) {
		store, err := NewFactory(cfg, "", WithInMemoryFallback(true)).CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})

	t.Run("from config", func(t *testing.T) {
		withFallback := cfg
		withFallback.AllowMemoryFallback = true
		store, err := NewFactory(withFallback, "").CreateStore(ctx)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	})
}

func mustPort(t *testing.T, port string) int {
	t.Helper()
	n, err := strconv.Atoi(port)
	require.NoError(t, err)
	return n
}
