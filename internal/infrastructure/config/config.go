package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is wrapped by every configuration validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Shippo    ShippoConfig
	Printer   PrinterConfig
	Window    WindowConfig
	Orders    OrdersConfig
	Render    RenderConfig
	Business  BusinessConfig
	Sentinel  SentinelConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Metrics   MetricsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name       string
	Env        string
	ScratchDir string        `validate:"required"`
	OutputDir  string        // dry-run and preview output
	DryRun     bool          // render but never submit or mark delivered
	RunTimeout time.Duration `validate:"gt=0"`
}

// ShippoConfig holds the order platform API settings
type ShippoConfig struct {
	APIToken string
	BaseURL  string        `validate:"required,url"`
	PageSize int           `validate:"min=1,max=100"`
	Timeout  time.Duration `validate:"gt=0"`
}

// PrinterConfig holds the CUPS destination settings
type PrinterConfig struct {
	Name    string
	LPPath  string        `validate:"required"`
	Timeout time.Duration `validate:"gt=0"`
}

// WindowConfig holds the run window alignment. Divisibility of the interval
// into a day is checked by the scheduler.
type WindowConfig struct {
	IntervalMinutes int `validate:"min=1"`
	Lookback        int `validate:"min=1"`
}

// OrdersConfig holds order selection settings
type OrdersConfig struct {
	IncludeAllStatuses bool // print every order, not only PAID ones
}

// RenderConfig holds document rendering settings
type RenderConfig struct {
	Backend string        `validate:"oneof=fpdf chromedp wkhtmltopdf"`
	Timeout time.Duration `validate:"gt=0"`
}

// BusinessConfig holds the sender identity printed on packing slips
type BusinessConfig struct {
	Name   string
	Street string
	City   string
	State  string
	Zip    string
}

// SentinelConfig holds delivery marker storage settings
type SentinelConfig struct {
	Backend             string        `validate:"oneof=file redis s3 sql memory"`
	ConsumeOnSkip       bool          // delete a marker in the last window holding its record
	TTL                 time.Duration // 0 keeps markers until pruned; otherwise at least MarkerRetention
	AllowMemoryFallback bool          // use memory when Redis is unreachable
	Redis               RedisConfig
	S3                  S3Config
	SQL                 SQLConfig
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
}

// SQLConfig holds database settings for the SQL marker table
type SQLConfig struct {
	Driver      string `validate:"oneof=sqlite postgres"`
	DSN         string
	AutoMigrate bool
	LogLevel    string `validate:"omitempty,oneof=silent error warn info debug"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 `validate:"gte=0,lte=1"`
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	ExportLogs        bool // Also ship log records to the collector
	TraceSQL          bool // Span every sentinel SQL statement
}

// MetricsConfig holds Prometheus Pushgateway settings
type MetricsConfig struct {
	PushgatewayURL string `validate:"omitempty,url"`
	Job            string
}

// Load loads configuration from .env files, TOML file and environment variables
// Priority (highest to lowest):
// 1. .env.local
// 2. Environment variables with SHIPPRINT_ prefix (e.g., SHIPPRINT_PRINTER_NAME),
// plus SHIPPO_API_TOKEN and CUPS_PRINTER_NAME
// 3. .env
// 4. config.toml
// 5. Built-in defaults
func Load() (*Config, error) {
	if err := loadDotEnv(".env", ".env.local"); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/shipprint")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SHIPPRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("shippo.api_token", "SHIPPRINT_SHIPPO_API_TOKEN", "SHIPPO_API_TOKEN")
	_ = v.BindEnv("printer.name", "SHIPPRINT_PRINTER_NAME", "CUPS_PRINTER_NAME")

	// booleans whose zero value is not the default
	v.SetDefault("sentinel.sql.auto_migrate", true)
	v.SetDefault("telemetry.export_logs", true)
	v.SetDefault("telemetry.trace_sql", true)

	cfg := &Config{
		App: AppConfig{
			Name:       v.GetString("app.name"),
			Env:        v.GetString("app.env"),
			ScratchDir: v.GetString("app.scratch_dir"),
			OutputDir:  v.GetString("app.output_dir"),
			DryRun:     v.GetBool("app.dry_run"),
			RunTimeout: v.GetDuration("app.run_timeout"),
		},
		Shippo: ShippoConfig{
			APIToken: v.GetString("shippo.api_token"),
			BaseURL:  v.GetString("shippo.base_url"),
			PageSize: v.GetInt("shippo.page_size"),
			Timeout:  v.GetDuration("shippo.timeout"),
		},
		Printer: PrinterConfig{
			Name:    v.GetString("printer.name"),
			LPPath:  v.GetString("printer.lp_path"),
			Timeout: v.GetDuration("printer.timeout"),
		},
		Window: WindowConfig{
			IntervalMinutes: v.GetInt("window.interval_minutes"),
			Lookback:        v.GetInt("window.lookback"),
		},
		Orders: OrdersConfig{
			IncludeAllStatuses: v.GetBool("orders.include_all_statuses"),
		},
		Render: RenderConfig{
			Backend: v.GetString("render.backend"),
			Timeout: v.GetDuration("render.timeout"),
		},
		Business: BusinessConfig{
			Name:   v.GetString("business.name"),
			Street: v.GetString("business.street"),
			City:   v.GetString("business.city"),
			State:  v.GetString("business.state"),
			Zip:    v.GetString("business.zip"),
		},
		Sentinel: SentinelConfig{
			Backend:             v.GetString("sentinel.backend"),
			ConsumeOnSkip:       v.GetBool("sentinel.consume_on_skip"),
			TTL:                 v.GetDuration("sentinel.ttl"),
			AllowMemoryFallback: v.GetBool("sentinel.allow_memory_fallback"),
			Redis: RedisConfig{
				Host:      v.GetString("sentinel.redis.host"),
				Port:      v.GetInt("sentinel.redis.port"),
				Password:  v.GetString("sentinel.redis.password"),
				DB:        v.GetInt("sentinel.redis.db"),
				KeyPrefix: v.GetString("sentinel.redis.key_prefix"),
			},
			S3: S3Config{
				Endpoint:     v.GetString("sentinel.s3.endpoint"),
				Region:       v.GetString("sentinel.s3.region"),
				Bucket:       v.GetString("sentinel.s3.bucket"),
				Prefix:       v.GetString("sentinel.s3.prefix"),
				AccessKey:    v.GetString("sentinel.s3.access_key"),
				SecretKey:    v.GetString("sentinel.s3.secret_key"),
				UseSSL:       v.GetBool("sentinel.s3.use_ssl"),
				UsePathStyle: v.GetBool("sentinel.s3.use_path_style"),
			},
			SQL: SQLConfig{
				Driver:      v.GetString("sentinel.sql.driver"),
				DSN:         v.GetString("sentinel.sql.dsn"),
				AutoMigrate: v.GetBool("sentinel.sql.auto_migrate"),
				LogLevel:    v.GetString("sentinel.sql.log_level"),
			},
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportLogs:        v.GetBool("telemetry.export_logs"),
			TraceSQL:          v.GetBool("telemetry.trace_sql"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("metrics.pushgateway_url"),
			Job:            v.GetString("metrics.job"),
		},
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv loads the first file without overriding the process environment,
// then lets each later file override what came before. Missing files are skipped.
func loadDotEnv(base string, overrides ...string) error {
	if err := godotenv.Load(base); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading %s: %w", base, err)
	}
	for _, path := range overrides {
		if err := godotenv.Overload(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading %s: %w", path, err)
		}
	}
	return nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shipprint"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.ScratchDir == "" {
		cfg.App.ScratchDir = "./scratch"
	}
	if cfg.App.OutputDir == "" {
		cfg.App.OutputDir = "./output"
	}
	if cfg.App.RunTimeout == 0 {
		cfg.App.RunTimeout = 10 * time.Minute
	}
	if cfg.Shippo.BaseURL == "" {
		cfg.Shippo.BaseURL = "https://api.goshippo.com"
	}
	if cfg.Shippo.PageSize == 0 {
		cfg.Shippo.PageSize = 25
	}
	if cfg.Shippo.Timeout == 0 {
		cfg.Shippo.Timeout = 30 * time.Second
	}
	if cfg.Printer.LPPath == "" {
		cfg.Printer.LPPath = "lp"
	}
	if cfg.Printer.Timeout == 0 {
		cfg.Printer.Timeout = 30 * time.Second
	}
	if cfg.Window.IntervalMinutes == 0 {
		cfg.Window.IntervalMinutes = 30
	}
	if cfg.Window.Lookback == 0 {
		cfg.Window.Lookback = 2
	}
	if cfg.Render.Backend == "" {
		cfg.Render.Backend = "fpdf"
	}
	if cfg.Render.Timeout == 0 {
		cfg.Render.Timeout = 30 * time.Second
	}
	if cfg.Sentinel.Backend == "" {
		cfg.Sentinel.Backend = "file"
	}
	if cfg.Sentinel.Redis.Host == "" {
		cfg.Sentinel.Redis.Host = "localhost"
	}
	if cfg.Sentinel.Redis.Port == 0 {
		cfg.Sentinel.Redis.Port = 6379
	}
	if cfg.Sentinel.Redis.KeyPrefix == "" {
		cfg.Sentinel.Redis.KeyPrefix = "shipprint:sentinel:"
	}
	if cfg.Sentinel.S3.Region == "" {
		cfg.Sentinel.S3.Region = "us-east-1"
	}
	if cfg.Sentinel.S3.Prefix == "" {
		cfg.Sentinel.S3.Prefix = "sentinels/"
	}
	if cfg.Sentinel.SQL.Driver == "" {
		cfg.Sentinel.SQL.Driver = "sqlite"
	}
	if cfg.Sentinel.SQL.LogLevel == "" {
		cfg.Sentinel.SQL.LogLevel = "warn"
	}
	if cfg.Sentinel.SQL.DSN == "" && cfg.Sentinel.SQL.Driver == "sqlite" {
		cfg.Sentinel.SQL.DSN = "shipprint.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "shipprint"
	}
	if cfg.Metrics.Job == "" {
		cfg.Metrics.Job = "shipprint"
	}
}

var validate = validator.New()

// MarkerRetention is how long a delivery marker must survive: a record stays
// inside lookback+1 consecutive windows at most
func (c *Config) MarkerRetention() time.Duration {
	return time.Duration(c.Window.Lookback+1) * time.Duration(c.Window.IntervalMinutes) * time.Minute
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q (got %v)", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Sentinel.Backend == "s3" && c.Sentinel.S3.Bucket == "" {
		return fmt.Errorf("%w: sentinel.s3.bucket is required for the s3 backend", ErrInvalidConfig)
	}
	if c.Sentinel.Backend == "sql" && c.Sentinel.SQL.DSN == "" {
		return fmt.Errorf("%w: sentinel.sql.dsn is required for the sql backend", ErrInvalidConfig)
	}
	if c.Sentinel.TTL < 0 {
		return fmt.Errorf("%w: sentinel.ttl cannot be negative", ErrInvalidConfig)
	}
	if c.Sentinel.TTL > 0 && c.Sentinel.TTL < c.MarkerRetention() {
		return fmt.Errorf("%w: sentinel.ttl %s expires markers while their record is still in the window (need at least %s)",
			ErrInvalidConfig, c.Sentinel.TTL, c.MarkerRetention())
	}

	return nil
}

// RequireShippo checks the settings needed to fetch from the order platform
func (c *Config) RequireShippo() error {
	if strings.TrimSpace(c.Shippo.APIToken) == "" {
		return fmt.Errorf("%w: SHIPPO_API_TOKEN (shippo.api_token) is required", ErrInvalidConfig)
	}
	return nil
}

// RequirePrinting checks the settings needed for a printing run.
// A dry run needs no printer.
func (c *Config) RequirePrinting() error {
	if err := c.RequireShippo(); err != nil {
		return err
	}
	if !c.App.DryRun && strings.TrimSpace(c.Printer.Name) == "" {
		return fmt.Errorf("%w: CUPS_PRINTER_NAME (printer.name) is required", ErrInvalidConfig)
	}
	return nil
}
