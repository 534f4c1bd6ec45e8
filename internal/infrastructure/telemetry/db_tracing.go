package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SQLTracingConfig configures spans for sentinel SQL statements.
type SQLTracingConfig struct {
	Enabled bool
	// DBSystem names the database in span attributes (sqlite, postgresql)
	DBSystem string
	// SlowQuery flags statements slower than this; 0 disables the check
	SlowQuery time.Duration
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// DefaultSQLTracingConfig returns tracing disabled with a 200ms slow threshold.
func DefaultSQLTracingConfig() SQLTracingConfig {
	return SQLTracingConfig{SlowQuery: 200 * time.Millisecond}
}

type sqlStartKey struct{}

// InstrumentGorm registers otelgorm on db. Query variables are never copied
// into spans because marker keys carry order numbers.
func InstrumentGorm(db *gorm.DB, cfg SQLTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []otelgorm.Option{otelgorm.WithoutQueryVariables()}
	if cfg.DBSystem != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBSystem))
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to register SQL tracing: %w", err)
	}

	if cfg.SlowQuery > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.SlowQuery, logger); err != nil {
			return fmt.Errorf("failed to register slow query check: %w", err)
		}
	}

	logger.Debug("SQL tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query", cfg.SlowQuery),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration, logger *zap.Logger) error {
	start := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, sqlStartKey{}, time.Now())
		}
	}
	finish := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		began, ok := ctx.Value(sqlStartKey{}).(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(began)
		if elapsed < threshold {
			return
		}
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
		logger.Warn("slow sentinel query",
			zap.String("table", tx.Statement.Table),
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", threshold),
		)
	}

	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("shipprint:sql_start_create", start),
		cb.Query().Before("gorm:query").Register("shipprint:sql_start_query", start),
		cb.Delete().Before("gorm:delete").Register("shipprint:sql_start_delete", start),
		cb.Row().Before("gorm:row").Register("shipprint:sql_start_row", start),
		cb.Create().After("gorm:create").Before("otel:after_create").Register("shipprint:sql_slow_create", finish),
		cb.Query().After("gorm:query").Before("otel:after_query").Register("shipprint:sql_slow_query", finish),
		cb.Delete().After("gorm:delete").Before("otel:after_delete").Register("shipprint:sql_slow_delete", finish),
		cb.Row().After("gorm:row").Before("otel:after_row").Register("shipprint:sql_slow_row", finish),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
