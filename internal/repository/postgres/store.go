package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"docserver/internal/repository"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on PostgreSQL using database/sql.
type Store struct {
	db *sql.DB // nil inside a transaction
	q  dbtx
}

// NewStore constructs a Store over an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Applications() repository.ApplicationRepository {
	return &ApplicationPostgres{q: s.q}
}

func (s *Store) DocumentTypes() repository.DocumentTypeRepository {
	return &DocumentTypePostgres{q: s.q}
}

func (s *Store) StorageNodes() repository.StorageNodeRepository {
	return &StorageNodePostgres{q: s.q}
}

func (s *Store) StoredDocuments() repository.StoredDocumentRepository {
	return &DocumentPostgres{q: s.q}
}

func (s *Store) ExpiringDocuments() repository.ExpiringDocumentRepository {
	return &ExpiringPostgres{q: s.q}
}

// WithinTx runs fn inside a database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w; rollback failed: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// notFound maps sql.ErrNoRows to repository.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// requireOneRow turns a zero-row update into sentinel.
func requireOneRow(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
