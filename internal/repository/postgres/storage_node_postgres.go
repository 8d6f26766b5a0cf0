package postgres

import (
	"context"

	"docserver/internal/model"
	"docserver/internal/repository"
)

const storageNodeColumns = `id, name, description, root_path, location, speed, is_active, is_test_node, created_at, modified_at`

// StorageNodePostgres implements repository.StorageNodeRepository.
type StorageNodePostgres struct {
	q dbtx
}

var _ repository.StorageNodeRepository = (*StorageNodePostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanStorageNode(row scanner) (*model.StorageNode, error) {
	var n model.StorageNode
	if err := row.Scan(
		&n.ID,
		&n.Name,
		&n.Description,
		&n.RootPath,
		&n.Location,
		&n.Speed,
		&n.IsActive,
		&n.IsTestNode,
		&n.CreatedAt,
		&n.ModifiedAt,
	); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *StorageNodePostgres) Create(ctx context.Context, node *model.StorageNode) (*model.StorageNode, error) {
	q := `
		INSERT INTO storage_nodes (name, description, root_path, location, speed, is_active, is_test_node, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + storageNodeColumns
	row := r.q.QueryRowContext(ctx, q,
		node.Name,
		node.Description,
		node.RootPath,
		node.Location,
		node.Speed,
		node.IsActive,
		node.IsTestNode,
		node.CreatedAt,
	)
	return scanStorageNode(row)
}

func (r *StorageNodePostgres) FindByID(ctx context.Context, id int64) (*model.StorageNode, error) {
	q := `SELECT ` + storageNodeColumns + ` FROM storage_nodes WHERE id = $1`
	n, err := scanStorageNode(r.q.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (r *StorageNodePostgres) Update(ctx context.Context, node *model.StorageNode) error {
	const q = `
		UPDATE storage_nodes
		SET name = $2, description = $3, root_path = $4, location = $5, speed = $6,
		    is_active = $7, is_test_node = $8, modified_at = $9
		WHERE id = $1
	`
	res, err := r.q.ExecContext(ctx, q,
		node.ID,
		node.Name,
		node.Description,
		node.RootPath,
		node.Location,
		node.Speed,
		node.IsActive,
		node.IsTestNode,
		node.ModifiedAt,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, repository.ErrNotFound)
}

func (r *StorageNodePostgres) List(ctx context.Context) ([]model.StorageNode, error) {
	q := `SELECT ` + storageNodeColumns + ` FROM storage_nodes ORDER BY id`
	rows, err := r.q.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.StorageNode, 0)
	for rows.Next() {
		n, err := scanStorageNode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}
