package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const countMarker = `SELECT count(*) FROM "print_sentinels" WHERE sentinel_key = 'packing-slip-2026-02-02-_1068'`

func statement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestNewSQLLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewSQLLogger(zap.New(core), gormlogger.Info, WithSlowStatement(time.Second), WithStatementText(true))

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, time.Second, l.slow)
	assert.True(t, l.statementText)

	l.Trace(context.Background(), time.Now(), statement(countMarker, 1), nil)
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "sentinel.sql", recorded.All()[0].LoggerName)

	var _ gormlogger.Interface = l
}

func TestSQLLogger_LogModeCopies(t *testing.T) {
	l := NewSQLLogger(zap.NewNop(), gormlogger.Info)
	quiet, ok := l.LogMode(gormlogger.Silent).(*SQLLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, l.level)
	assert.Equal(t, gormlogger.Silent, quiet.level)
}

func TestSQLLogger_Trace(t *testing.T) {
	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		message string
		zapLvl  zapcore.Level
	}{
		{
			name:    "failure",
			level:   gormlogger.Error,
			begin:   time.Now(),
			err:     errors.New("database is locked"),
			message: "sentinel statement failed",
			zapLvl:  zapcore.ErrorLevel,
		},
		{
			name:    "slow",
			level:   gormlogger.Warn,
			begin:   time.Now().Add(-time.Second),
			message: "sentinel statement slow",
			zapLvl:  zapcore.WarnLevel,
		},
		{
			name:    "every statement at info",
			level:   gormlogger.Info,
			begin:   time.Now(),
			message: "sentinel statement",
			zapLvl:  zapcore.DebugLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			l := NewSQLLogger(zap.New(core), tt.level, WithSlowStatement(100*time.Millisecond))

			l.Trace(context.Background(), tt.begin, statement(countMarker, 1), tt.err)

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.message, entries[0].Message)
			assert.Equal(t, tt.zapLvl, entries[0].Level)
			fields := entries[0].ContextMap()
			assert.Equal(t, "select", fields["statement"])
			assert.NotContains(t, fields, "sql", "statement text is opt-in")
		})
	}
}

func TestSQLLogger_Trace_Quiet(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := context.Background()

	NewSQLLogger(zap.New(core), gormlogger.Silent).
		Trace(ctx, time.Now(), statement(countMarker, 1), errors.New("boom"))
	NewSQLLogger(zap.New(core), gormlogger.Warn).
		Trace(ctx, time.Now(), statement(countMarker, 1), nil)
	NewSQLLogger(zap.New(core), gormlogger.Error).
		Trace(ctx, time.Now(), statement("SELECT * FROM print_sentinels LIMIT 1", 0), gormlogger.ErrRecordNotFound)
	NewSQLLogger(zap.New(core), gormlogger.Warn, WithSlowStatement(0)).
		Trace(ctx, time.Now().Add(-time.Hour), statement(countMarker, 1), nil)

	assert.Zero(t, recorded.Len())
}

func TestSQLLogger_CarriesRunAndKey(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewSQLLogger(zap.New(core), gormlogger.Info, WithStatementText(true))

	ctx, _ := WithRunID(context.Background(), zap.NewNop(), "run-42")
	ctx, _ = WithRecord(ctx, zap.NewNop(), "order_1", "packing-slip-2026-02-02-_1068")

	l.Trace(ctx, time.Now(), statement(countMarker, 1), nil)
	l.Warn(ctx, "failed to migrate %s", "print_sentinels")

	entries := recorded.All()
	require.Len(t, entries, 2)
	fields := entries[0].ContextMap()
	assert.Equal(t, "run-42", fields["run_id"])
	assert.Equal(t, "packing-slip-2026-02-02-_1068", fields["key"])
	assert.Equal(t, countMarker, fields["sql"])
	assert.EqualValues(t, 1, fields["rows"])

	assert.Equal(t, "failed to migrate print_sentinels", entries[1].Message)
	assert.Equal(t, "run-42", entries[1].ContextMap()["run_id"])
}

func TestStatementVerb(t *testing.T) {
	assert.Equal(t, "insert", statementVerb(`INSERT INTO "print_sentinels" ("sentinel_key") VALUES ('k')`))
	assert.Equal(t, "delete", statementVerb("  DELETE FROM print_sentinels"))
	assert.Equal(t, "", statementVerb(""))
}

func TestParseSQLLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"INFO", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSQLLogLevel(tt.level))
		})
	}
}
