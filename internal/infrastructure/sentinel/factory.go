package sentinel

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shipprint/backend/internal/domain/printing"
	"github.com/shipprint/backend/internal/infrastructure/config"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

// Factory creates sentinel stores based on configuration
type Factory struct {
	cfg                   config.SentinelConfig
	scratchDir            string
	logger                *zap.Logger
	allowInMemoryFallback bool
	sqlTracing            bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the memory store. Default is false.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSQLTracing spans the statements of the sql backend
func WithSQLTracing(enabled bool) FactoryOption {
	return func(f *Factory) {
		f.sqlTracing = enabled
	}
}

// NewFactory creates a new factory. scratchDir roots the file backend.
func NewFactory(cfg config.SentinelConfig, scratchDir string, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		scratchDir:            scratchDir,
		logger:                zap.NewNop(),
		allowInMemoryFallback: cfg.AllowMemoryFallback,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the store selected by cfg.Backend
func (f *Factory) CreateStore(ctx context.Context) (printing.SentinelStore, error) {
	switch f.cfg.Backend {
	case "", "file":
		store, err := NewFileStore(f.scratchDir, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file sentinel store: %w", err)
		}
		f.logger.Info("using file sentinel store", zap.String("dir", store.Dir()))
		return store, nil

	case "redis":
		return f.createRedisStore(ctx)

	case "s3":
		store, err := NewS3Store(ctx, S3Config{
			Endpoint:     f.cfg.S3.Endpoint,
			Region:       f.cfg.S3.Region,
			Bucket:       f.cfg.S3.Bucket,
			Prefix:       f.cfg.S3.Prefix,
			AccessKey:    f.cfg.S3.AccessKey,
			SecretKey:    f.cfg.S3.SecretKey,
			UseSSL:       f.cfg.S3.UseSSL,
			UsePathStyle: f.cfg.S3.UsePathStyle,
		}, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 sentinel store: %w", err)
		}
		f.logger.Info("using S3 sentinel store",
			zap.String("bucket", f.cfg.S3.Bucket),
			zap.String("prefix", f.cfg.S3.Prefix),
		)
		return store, nil

	case "sql":
		store, err := OpenGormStore(SQLConfig{
			Driver:      f.cfg.SQL.Driver,
			DSN:         f.cfg.SQL.DSN,
			AutoMigrate: f.cfg.SQL.AutoMigrate,
			TTL:         f.cfg.TTL,
			Logger:      f.logger,
			LogLevel:    f.cfg.SQL.LogLevel,
			Tracing: telemetry.SQLTracingConfig{
				Enabled:   f.sqlTracing,
				SlowQuery: telemetry.DefaultSQLTracingConfig().SlowQuery,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SQL sentinel store: %w", err)
		}
		f.logger.Info("using SQL sentinel store", zap.String("driver", f.cfg.SQL.Driver))
		return store, nil

	case "memory":
		f.logger.Warn("using in-memory sentinel store; documents will be reprinted on every run")
		return NewMemoryStore(f.cfg.TTL), nil
	}

	return nil, fmt.Errorf("%w: unknown sentinel backend %q", config.ErrInvalidConfig, f.cfg.Backend)
}

func (f *Factory) createRedisStore(ctx context.Context) (printing.SentinelStore, error) {
	store, err := NewRedisStore(ctx, RedisConfig{
		Addr:      f.cfg.Redis.Addr(),
		Password:  f.cfg.Redis.Password,
		DB:        f.cfg.Redis.DB,
		KeyPrefix: f.cfg.Redis.KeyPrefix,
		TTL:       f.cfg.TTL,
	})
	if err == nil {
		f.logger.Info("using Redis sentinel store", zap.String("addr", f.cfg.Redis.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for sentinels but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory sentinel store. "+
		"Documents printed in this run will be reprinted by the next one.",
		zap.Error(err),
	)
	return NewMemoryStore(f.cfg.TTL), nil
}
