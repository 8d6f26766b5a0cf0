package postgres

import (
	"context"
	"fmt"

	"docserver/internal/model"
	"docserver/internal/repository"
)

const documentTypeColumns = `id, application_id, name, description, folder_name, storage_mode, inactive_lifetime, is_active, created_at, modified_at`

// DocumentTypePostgres implements repository.DocumentTypeRepository. Node
// references live in document_type_nodes, one row per (role, slot).
type DocumentTypePostgres struct {
	q dbtx
}

var _ repository.DocumentTypeRepository = (*DocumentTypePostgres)(nil)

func scanDocumentType(row scanner) (*model.DocumentType, error) {
	var d model.DocumentType
	if err := row.Scan(
		&d.ID,
		&d.ApplicationID,
		&d.Name,
		&d.Description,
		&d.FolderName,
		&d.StorageMode,
		&d.InactiveLifetime,
		&d.IsActive,
		&d.CreatedAt,
		&d.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentTypePostgres) Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error) {
	q := `
		INSERT INTO document_types (application_id, name, description, folder_name, storage_mode, inactive_lifetime, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + documentTypeColumns
	out, err := scanDocumentType(r.q.QueryRowContext(ctx, q,
		dt.ApplicationID,
		dt.Name,
		dt.Description,
		dt.FolderName,
		dt.StorageMode,
		dt.InactiveLifetime,
		dt.IsActive,
		dt.CreatedAt,
	))
	if err != nil {
		return nil, err
	}
	if err := r.insertNodes(ctx, out.ID, dt.Nodes); err != nil {
		return nil, err
	}
	out.Nodes = append([]model.NodeRef(nil), dt.Nodes...)
	return out, nil
}

func (r *DocumentTypePostgres) FindByID(ctx context.Context, id int64) (*model.DocumentType, error) {
	q := `SELECT ` + documentTypeColumns + ` FROM document_types WHERE id = $1`
	dt, err := scanDocumentType(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	if dt.Nodes, err = r.loadNodes(ctx, dt.ID); err != nil {
		return nil, err
	}
	return dt, nil
}

func (r *DocumentTypePostgres) Update(ctx context.Context, dt *model.DocumentType) error {
	const q = `
		UPDATE document_types
		SET application_id = $2, name = $3, description = $4, folder_name = $5,
		    storage_mode = $6, inactive_lifetime = $7, is_active = $8, modified_at = $9
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, q,
		dt.ID,
		dt.ApplicationID,
		dt.Name,
		dt.Description,
		dt.FolderName,
		dt.StorageMode,
		dt.InactiveLifetime,
		dt.IsActive,
		dt.ModifiedAt,
	)
	if err != nil {
		return err
	}
	if err := requireOneRow(res, repository.ErrNotFound); err != nil {
		return err
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM document_type_nodes WHERE document_type_id = $1`, dt.ID); err != nil {
		return fmt.Errorf("clear node refs: %w", err)
	}
	return r.insertNodes(ctx, dt.ID, dt.Nodes)
}

func (r *DocumentTypePostgres) ListByStorageNode(ctx context.Context, nodeID int64) ([]model.DocumentType, error) {
	q := `
		SELECT ` + documentTypeColumns + `
		FROM document_types
		WHERE id IN (SELECT document_type_id FROM document_type_nodes WHERE storage_node_id = $1)
		ORDER BY id
	`
	rows, err := r.q.QueryContext(ctx, q, nodeID)
	if err != nil {
		return nil, err
	}
	items := make([]model.DocumentType, 0)
	for rows.Next() {
		dt, err := scanDocumentType(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, *dt)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range items {
		if items[i].Nodes, err = r.loadNodes(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *DocumentTypePostgres) insertNodes(ctx context.Context, typeID int64, refs []model.NodeRef) error {
	const q = `
		INSERT INTO document_type_nodes (document_type_id, role, slot, storage_node_id)
		VALUES ($1, $2, $3, $4)
	`
	for _, ref := range refs {
		if _, err := r.q.ExecContext(ctx, q, typeID, ref.Role, ref.Slot, ref.NodeID); err != nil {
			return fmt.Errorf("insert node ref %s/%d: %w", ref.Role, ref.Slot, err)
		}
	}
	return nil
}

func (r *DocumentTypePostgres) loadNodes(ctx context.Context, typeID int64) ([]model.NodeRef, error) {
	const q = `
		SELECT role, slot, storage_node_id
		FROM document_type_nodes
		WHERE document_type_id = $1
		ORDER BY role, slot
	`
	rows, err := r.q.QueryContext(ctx, q, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]model.NodeRef, 0, 2*model.MaxNodeSlots)
	for rows.Next() {
		var ref model.NodeRef
		if err := rows.Scan(&ref.Role, &ref.Slot, &ref.NodeID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
