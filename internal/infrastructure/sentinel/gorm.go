package sentinel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shipprint/backend/internal/domain/printing"
	applog "github.com/shipprint/backend/internal/infrastructure/logger"
	"github.com/shipprint/backend/internal/infrastructure/telemetry"
)

// SentinelModel is one row of the print_sentinels table
type SentinelModel struct {
	Key       string `gorm:"column:sentinel_key;primaryKey;size:255"`
	Content   []byte
	CreatedAt time.Time
	ExpiresAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SentinelModel) TableName() string {
	return "print_sentinels"
}

// SQLConfig holds database settings for the sentinel table
type SQLConfig struct {
	Driver      string // sqlite or postgres
	DSN         string
	AutoMigrate bool
	TTL         time.Duration
	// Logger receives slow and failed statements; nil keeps GORM silent
	Logger *zap.Logger
	// LogLevel is silent, error, warn (default) or info
	LogLevel string
	// Tracing spans every statement; DBSystem defaults to the driver
	Tracing telemetry.SQLTracingConfig
}

// GormStore keeps markers in a SQL table
type GormStore struct {
	db     *gorm.DB
	ttl    time.Duration
	ownsDB bool
	now    func() time.Time
}

// OpenGormStore opens the configured database and optionally creates the table
func OpenGormStore(cfg SQLConfig) (*GormStore, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sentinel driver %q", cfg.Driver)
	}

	gormLog := gormlogger.Default.LogMode(gormlogger.Silent)
	if cfg.Logger != nil {
		gormLog = applog.NewSQLLogger(cfg.Logger, applog.ParseSQLLogLevel(cfg.LogLevel))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLog,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sentinel database: %w", err)
	}

	tracing := cfg.Tracing
	if tracing.DBSystem == "" {
		tracing.DBSystem = dbSystemFor(cfg.Driver)
	}
	if err := telemetry.InstrumentGorm(db, tracing, cfg.Logger); err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(&SentinelModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate sentinel table: %w", err)
		}
	}

	store := NewGormStore(db, cfg.TTL)
	store.ownsDB = true
	return store, nil
}

func dbSystemFor(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// NewGormStore creates a store on an existing connection. The caller keeps
// ownership of db.
func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
}

// Has implements printing.SentinelStore
func (s *GormStore) Has(ctx context.Context, key string) (bool, error) {
	if err := printing.ValidateKey(key); err != nil {
		return false, err
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&SentinelModel{}).
		Where("sentinel_key = ? AND (expires_at IS NULL OR expires_at > ?)", key, s.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sentinel: %w", err)
	}
	return count > 0, nil
}

// Put implements printing.SentinelStore. The upsert is a single statement.
func (s *GormStore) Put(ctx context.Context, key string, content []byte) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}

	now := s.now().UTC()
	model := SentinelModel{
		Key:       key,
		Content:   content,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		expires := now.Add(s.ttl)
		model.ExpiresAt = &expires
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sentinel_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "created_at", "expires_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to write sentinel: %w", err)
	}
	return nil
}

// Remove implements printing.SentinelStore
func (s *GormStore) Remove(ctx context.Context, key string) error {
	if err := printing.ValidateKey(key); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("sentinel_key = ?", key).
		Delete(&SentinelModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove sentinel: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed
func (s *GormStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&SentinelModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sentinels: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Close closes the database when the store opened it
func (s *GormStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Join(errors.New("failed to get sentinel database"), err)
	}
	return sqlDB.Close()
}

var _ printing.SentinelStore = (*GormStore)(nil)
