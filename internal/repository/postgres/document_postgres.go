package postgres

import (
	"context"
	"time"

	"docserver/internal/model"
	"docserver/internal/repository"
)

const storedDocumentColumns = `id, status, description, storage_folder, file_name, size, is_alive, access_count, last_accessed_at,
		       document_type_id, primary_storage_node_id, secondary_storage_node_id, created_at, modified_at`

// DocumentPostgres implements repository.StoredDocumentRepository.
type DocumentPostgres struct {
	q dbtx
}

var _ repository.StoredDocumentRepository = (*DocumentPostgres)(nil)

func scanStoredDocument(row scanner) (*model.StoredDocument, error) {
	var d model.StoredDocument
	if err := row.Scan(
		&d.ID,
		&d.Status,
		&d.Description,
		&d.StorageFolder,
		&d.FileName,
		&d.Size,
		&d.IsAlive,
		&d.AccessCount,
		&d.LastAccessedAt,
		&d.DocumentTypeID,
		&d.PrimaryStorageNodeID,
		&d.SecondaryStorageNodeID,
		&d.CreatedAt,
		&d.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error) {
	q := `
		INSERT INTO stored_documents (id, status, description, storage_folder, file_name, size, is_alive,
		                              document_type_id, primary_storage_node_id, secondary_storage_node_id,
		                              created_at, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + storedDocumentColumns
	row := r.q.QueryRowContext(ctx, q,
		doc.ID,
		doc.Status,
		doc.Description,
		doc.StorageFolder,
		doc.FileName,
		doc.Size,
		doc.IsAlive,
		doc.DocumentTypeID,
		doc.PrimaryStorageNodeID,
		doc.SecondaryStorageNodeID,
		doc.CreatedAt,
		doc.ModifiedAt,
	)
	return scanStoredDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	q := `SELECT ` + storedDocumentColumns + ` FROM stored_documents WHERE id = $1`
	d, err := scanStoredDocument(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// Replace rewrites the content-derived columns while the row still points at previousFileName.
func (r *DocumentPostgres) Replace(ctx context.Context, doc *model.StoredDocument, previousFileName string) error {
	const q = `
		UPDATE stored_documents
		SET description = $3, storage_folder = $4, file_name = $5, size = $6,
		    primary_storage_node_id = $7, secondary_storage_node_id = $8, modified_at = $9
		WHERE id = $1 AND file_name = $2
	`
	res, err := r.q.ExecContext(ctx, q,
		doc.ID,
		previousFileName,
		doc.Description,
		doc.StorageFolder,
		doc.FileName,
		doc.Size,
		doc.PrimaryStorageNodeID,
		doc.SecondaryStorageNodeID,
		doc.ModifiedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, repository.ErrStale)
}

// RecordAccess bumps the access counter.
func (r *DocumentPostgres) RecordAccess(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE stored_documents SET access_count = access_count + 1, last_accessed_at = $2 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, q, id, at)
	if err != nil {
		return err
	}
	return requireOneRow(res, repository.ErrNotFound)
}

// ListByDocumentType returns documents of one type using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) ListByDocumentType(ctx context.Context, documentTypeID int64, pq repository.PageQuery) (*repository.PageResult[model.StoredDocument], error) {
	const qCount = `SELECT COUNT(*) FROM stored_documents WHERE document_type_id = $1`
	var total int
	if err := r.q.QueryRowContext(ctx, qCount, documentTypeID).Scan(&total); err != nil {
		return nil, err
	}

	qList := `
		SELECT ` + storedDocumentColumns + `
		FROM stored_documents
		WHERE document_type_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.q.QueryContext(ctx, qList, documentTypeID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StoredDocument, 0)
	for rows.Next() {
		d, err := scanStoredDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.StoredDocument]{
		Items: items,
		Total: total,
	}, nil
}
