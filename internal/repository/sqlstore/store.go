// Package sqlstore implements the metadata store on an embedded SQLite
// database through gorm. It backs single-host deployments and the
// integration tests of the service layer.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"docserver/internal/repository"
)

// Config holds SQLite-specific configuration.
type Config struct {
	Path     string
	LogLevel logger.LogLevel
}

// Store implements repository.Store using SQLite.
type Store struct {
	db   *gorm.DB
	inTx bool
}

var _ repository.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at cfg.Path.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = logger.Silent
	}

	db, err := gorm.Open(sqlite.Open(dsn(cfg.Path)), &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// SQLite only supports one writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	return &Store{db: db}, nil
}

// dsn appends the pragmas every connection needs. SQLite leaves foreign keys
// unenforced unless asked.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allRows()...); err != nil {
		return fmt.Errorf("sqlite migrate: %w", err)
	}
	return nil
}

// Health checks database connectivity.
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

func (s *Store) Applications() repository.ApplicationRepository {
	return &applicationRepo{db: s.db}
}

func (s *Store) DocumentTypes() repository.DocumentTypeRepository {
	return &documentTypeRepo{db: s.db}
}

func (s *Store) StorageNodes() repository.StorageNodeRepository {
	return &storageNodeRepo{db: s.db}
}

func (s *Store) StoredDocuments() repository.StoredDocumentRepository {
	return &storedDocumentRepo{db: s.db}
}

func (s *Store) ExpiringDocuments() repository.ExpiringDocumentRepository {
	return &expiringDocumentRepo{db: s.db}
}

// WithinTx runs fn inside a gorm transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// requireOneRow turns a zero-row update into sentinel.
func requireOneRow(res *gorm.DB, sentinel error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sentinel
	}
	return nil
}
