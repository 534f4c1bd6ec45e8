package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogExportConfig holds settings for shipping run logs to the collector.
type LogExportConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	ServiceVersion    string
	Insecure          bool
}

// LogExporter owns the OpenTelemetry LoggerProvider for one print run.
// A disabled exporter leaves loggers untouched.
type LogExporter struct {
	provider *sdklog.LoggerProvider
	logger   *zap.Logger
	config   LogExportConfig
}

// NewLogExporter creates the OTLP log pipeline and installs it globally.
func NewLogExporter(ctx context.Context, cfg LogExportConfig, logger *zap.Logger) (*LogExporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &LogExporter{logger: logger, config: cfg}
	if !cfg.Enabled {
		logger.Debug("Log export disabled")
		return e, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	version := cfg.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	e.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(e.provider)

	logger.Info("Log export enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)
	return e, nil
}

// Enabled reports whether records are exported
func (e *LogExporter) Enabled() bool {
	return e != nil && e.provider != nil
}

// Bridge returns base teed into the collector at level and above. With
// export disabled base is returned as is.
func (e *LogExporter) Bridge(base *zap.Logger, level zapcore.Level) *zap.Logger {
	if !e.Enabled() {
		return base
	}
	otelCore := &levelFilterCore{
		Core:     otelzap.NewCore(e.config.ServiceName, otelzap.WithLoggerProvider(e.provider)),
		minLevel: level,
	}
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, otelCore)
	}))
}

// Shutdown flushes pending records. A short-lived run must call it before
// exiting or the batch processor drops the tail of the log.
func (e *LogExporter) Shutdown(ctx context.Context) error {
	if !e.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown log exporter: %w", err)
	}
	return nil
}

// levelFilterCore applies a minimum level to the otelzap core, which has none.
type levelFilterCore struct {
	zapcore.Core
	minLevel zapcore.Level
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.minLevel && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{Core: c.Core.With(fields), minLevel: c.minLevel}
}
