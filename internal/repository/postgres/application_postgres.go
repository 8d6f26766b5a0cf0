package postgres

import (
	"context"

	"docserver/internal/model"
	"docserver/internal/repository"
)

// ApplicationPostgres implements repository.ApplicationRepository.
type ApplicationPostgres struct {
	q dbtx
}

var _ repository.ApplicationRepository = (*ApplicationPostgres)(nil)

func (r *ApplicationPostgres) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	const q = `
		INSERT INTO applications (name, is_active, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, name, is_active, created_at, modified_at
	`
	var out model.Application
	err := r.q.QueryRowContext(ctx, q, app.Name, app.IsActive, app.CreatedAt).
		Scan(&out.ID, &out.Name, &out.IsActive, &out.CreatedAt, &out.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicationPostgres) FindByID(ctx context.Context, id int64) (*model.Application, error) {
	const q = `SELECT id, name, is_active, created_at, modified_at FROM applications WHERE id = $1`
	var out model.Application
	err := r.q.QueryRowContext(ctx, q, id).
		Scan(&out.ID, &out.Name, &out.IsActive, &out.CreatedAt, &out.ModifiedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (r *ApplicationPostgres) Update(ctx context.Context, app *model.Application) error {
	const q = `UPDATE applications SET name = $2, is_active = $3, modified_at = $4 WHERE id = $1`
	res, err := r.q.ExecContext(ctx, q, app.ID, app.Name, app.IsActive, app.ModifiedAt)
	if err != nil {
		return err
	}
	return requireOneRow(res, repository.ErrNotFound)
}
