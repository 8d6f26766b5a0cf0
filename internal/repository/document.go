package repository

import (
	"context"
	"time"

	"docserver/internal/model"
)

// ApplicationRepository persists applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) (*model.Application, error)
	FindByID(ctx context.Context, id int64) (*model.Application, error)
	Update(ctx context.Context, app *model.Application) error
}

// StorageNodeRepository persists storage nodes and serves as the node registry.
type StorageNodeRepository interface {
	Create(ctx context.Context, node *model.StorageNode) (*model.StorageNode, error)
	// FindByID returns ErrNotFound when no node has the id.
	FindByID(ctx context.Context, id int64) (*model.StorageNode, error)
	Update(ctx context.Context, node *model.StorageNode) error
	List(ctx context.Context) ([]model.StorageNode, error)
}

// DocumentTypeRepository persists document types together with their node references.
type DocumentTypeRepository interface {
	Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error)
	FindByID(ctx context.Context, id int64) (*model.DocumentType, error)
	// Update rewrites the type and replaces its node references.
	Update(ctx context.Context, dt *model.DocumentType) error
	// ListByStorageNode returns the types referencing nodeID in any role.
	ListByStorageNode(ctx context.Context, nodeID int64) ([]model.DocumentType, error)
}

// StoredDocumentRepository defines data access for stored documents using queries only.
// No business logic here, strictly persistence operations.
type StoredDocumentRepository interface {
	// Create inserts a new document record and returns the stored record.
	Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.StoredDocument, error)

	// Replace rewrites the content-derived columns of doc in place. The update
	// only applies while the row still records previousFileName; otherwise it
	// returns ErrStale. ID and CreatedAt are never written.
	Replace(ctx context.Context, doc *model.StoredDocument, previousFileName string) error

	// RecordAccess increments the access count and sets the last access time.
	RecordAccess(ctx context.Context, id string, at time.Time) error

	// ListByDocumentType returns a page of documents of one type, newest first.
	ListByDocumentType(ctx context.Context, documentTypeID int64, pq PageQuery) (*PageResult[model.StoredDocument], error)
}

// ExpiringDocumentRepository persists expiration records. Rows are consumed by an
// external purge process; nothing here deletes them.
type ExpiringDocumentRepository interface {
	// Upsert creates the record or moves its expiration.
	Upsert(ctx context.Context, exp *model.ExpiringDocument) error
	FindByDocumentID(ctx context.Context, storedDocumentID string) (*model.ExpiringDocument, error)
	// ListExpired returns up to limit records expiring at or before before, oldest first.
	ListExpired(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error)
}
