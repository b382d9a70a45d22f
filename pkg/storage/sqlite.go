package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/smartcafe/smartcafe-client/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type kvEntry struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"column:value"`
}

func (kvEntry) TableName() string {
	return "kv_entries"
}

// SQLiteStore persists entries in a single-file sqlite database.
type SQLiteStore struct {
	conn *gorm.DB
}

// OpenSQLite opens (or creates) the database file and migrates the kv table.
func OpenSQLite(ctx context.Context, path string, logg *logger.Logger) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite storage: %w", err)
	}
	if err := conn.WithContext(ctx).AutoMigrate(&kvEntry{}); err != nil {
		return nil, fmt.Errorf("migrating kv table: %w", err)
	}

	if logg != nil {
		logg.Info(ctx, "local storage opened")
	}
	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry kvEntry
	err := s.conn.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %q: %w", key, err)
	}
	return entry.Value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	err := s.conn.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&kvEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if err := s.conn.WithContext(ctx).Delete(&kvEntry{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
