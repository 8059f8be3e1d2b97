package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecosystem-hub/internal/logging"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// kvEntry is the row layout shared by the SQLite and Postgres backends
type kvEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// SQLiteBackend is the on-device durable backend
type SQLiteBackend struct {
	db *gorm.DB
}

// NewSQLiteBackend opens (creating if needed) the database at path.
// Use "file::memory:?cache=shared" for an in-memory database.
func NewSQLiteBackend(path string, logger *logging.Logger) (*SQLiteBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Name identifies the backend in logs
func (s *SQLiteBackend) Name() string { return "sqlite" }

// Get retrieves a value by key
func (s *SQLiteBackend) Get(ctx context.Context, key string) (string, error) {
	var entry kvEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

// Set upserts a value
func (s *SQLiteBackend) Set(ctx context.Context, key, value string) error {
	entry := kvEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// Remove deletes a key
func (s *SQLiteBackend) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&kvEntry{}).Error
}

// Clear deletes every key
func (s *SQLiteBackend) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&kvEntry{}).Error
}

// Close closes the underlying database handle
func (s *SQLiteBackend) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const gormSlowThreshold = 200 * time.Millisecond

// gormLogger routes gorm diagnostics into the hub logger. Only errors and
// slow queries are reported; record-not-found is an expected miss.
type gormLogger struct {
	logger   *logging.Logger
	logLevel gormlogger.LogLevel
}

func newGormLogger(logger *logging.Logger) gormlogger.Interface {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &gormLogger{logger: logger.WithComponent("sqlite"), logLevel: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.logger.WithFields(map[string]interface{}{
			"elapsed": elapsed.String(),
			"rows":    rows,
			"sql":     sql,
		}).WithError(err).Error("gorm query error")
	case elapsed > gormSlowThreshold && l.logLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.WithFields(map[string]interface{}{
			"elapsed": elapsed.String(),
			"rows":    rows,
			"sql":     sql,
		}).Warn("gorm slow query")
	}
}
