// Package repository contains the metadata store abstractions.
// Implementations live in subpackages (postgres, sqlstore) inside this directory.
package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a lookup by identity matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrStale is returned when a conditional update matched no row because
	// the record changed since it was read.
	ErrStale = errors.New("record changed concurrently")
)

// Store groups the repositories of one metadata store. Repositories obtained
// from the Store passed to WithinTx's callback share that transaction.
type Store interface {
	Applications() ApplicationRepository
	DocumentTypes() DocumentTypeRepository
	StorageNodes() StorageNodeRepository
	StoredDocuments() StoredDocumentRepository
	ExpiringDocuments() ExpiringDocumentRepository

	// WithinTx runs fn in a single transaction. It commits when fn returns nil
	// and rolls back otherwise. Nested calls reuse the outer transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
