package postgres

import (
	"context"
	"time"

	"docserver/internal/model"
	"docserver/internal/repository"
)

// ExpiringPostgres implements repository.ExpiringDocumentRepository.
type ExpiringPostgres struct {
	q dbtx
}

var _ repository.ExpiringDocumentRepository = (*ExpiringPostgres)(nil)

func (r *ExpiringPostgres) Upsert(ctx context.Context, exp *model.ExpiringDocument) error {
	const q = `
		INSERT INTO expiring_documents (stored_document_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (stored_document_id) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	_, err := r.q.ExecContext(ctx, q, exp.StoredDocumentID, exp.ExpiresAt)
	return err
}

func (r *ExpiringPostgres) FindByDocumentID(ctx context.Context, storedDocumentID string) (*model.ExpiringDocument, error) {
	const q = `SELECT stored_document_id, expires_at FROM expiring_documents WHERE stored_document_id = $1`
	var out model.ExpiringDocument
	if err := r.q.QueryRowContext(ctx, q, storedDocumentID).Scan(&out.StoredDocumentID, &out.ExpiresAt); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *ExpiringPostgres) ListExpired(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error) {
	const q = `
		SELECT stored_document_id, expires_at
		FROM expiring_documents
		WHERE expires_at <= $1
		ORDER BY expires_at, stored_document_id
		LIMIT $2
	`
	rows, err := r.q.QueryContext(ctx, q, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ExpiringDocument, 0)
	for rows.Next() {
		var e model.ExpiringDocument
		if err := rows.Scan(&e.StoredDocumentID, &e.ExpiresAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
