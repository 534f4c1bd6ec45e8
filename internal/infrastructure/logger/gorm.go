package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogger reports marker table statements through zap. Each line names the
// statement verb and carries the run ID and marker key from the context, so a
// failed lookup can be traced to the record it was deciding on.
type SQLLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slow          time.Duration
	statementText bool
}

// SQLLoggerOption configures an SQLLogger
type SQLLoggerOption func(*SQLLogger)

// WithSlowStatement sets the duration above which a statement is reported; 0 disables it
func WithSlowStatement(d time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.slow = d
	}
}

// WithStatementText includes the rendered SQL, bound values and all
func WithStatementText(include bool) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.statementText = include
	}
}

// NewSQLLogger creates a GORM logger for the sentinel store
func NewSQLLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	l := &SQLLogger{
		logger: base.Named("sentinel.sql"),
		level:  level,
		slow:   200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface. GORM uses it for migration notices.
func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.withRun(ctx).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.withRun(ctx).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.withRun(ctx).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface. A missing row is how the store
// learns a record was never printed, so it is not an error here.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if errors.Is(err, gormlogger.ErrRecordNotFound) {
		err = nil
	}

	elapsed := time.Since(begin)
	slow := l.slow > 0 && elapsed > l.slow
	switch {
	case err != nil && l.level >= gormlogger.Error:
	case slow && l.level >= gormlogger.Warn:
	case l.level >= gormlogger.Info:
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("statement", statementVerb(sql)),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if l.statementText {
		fields = append(fields, zap.String("sql", sql))
	}
	log := l.withRun(ctx)

	switch {
	case err != nil:
		log.Error("sentinel statement failed", append(fields, zap.Error(err))...)
	case slow:
		log.Warn("sentinel statement slow", append(fields, zap.Duration("threshold", l.slow))...)
	default:
		log.Debug("sentinel statement", fields...)
	}
}

func (l *SQLLogger) withRun(ctx context.Context) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if key := GetRecordKey(ctx); key != "" {
		fields = append(fields, zap.String("key", key))
	}
	return l.logger.With(fields...)
}

// statementVerb returns the lower-cased leading SQL keyword
func statementVerb(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	return strings.ToLower(verb)
}

// ParseSQLLogLevel maps sentinel.sql.log_level to a GORM level; debug and
// info both log every statement.
func ParseSQLLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
