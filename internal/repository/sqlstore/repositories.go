package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"docserver/internal/model"
	"docserver/internal/repository"
)

// Application operations

type applicationRepo struct {
	db *gorm.DB
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	row := toApplicationRow(app)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *applicationRepo) FindByID(ctx context.Context, id int64) (*model.Application, error) {
	var row applicationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (r *applicationRepo) Update(ctx context.Context, app *model.Application) error {
	res := r.db.WithContext(ctx).Model(&applicationRow{}).Where("id = ?", app.ID).Updates(map[string]any{
		"name":        app.Name,
		"is_active":   app.IsActive,
		"modified_at": utcPtr(app.ModifiedAt),
	})
	return requireOneRow(res, repository.ErrNotFound)
}

// Storage node operations

type storageNodeRepo struct {
	db *gorm.DB
}

func (r *storageNodeRepo) Create(ctx context.Context, node *model.StorageNode) (*model.StorageNode, error) {
	row := toStorageNodeRow(node)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *storageNodeRepo) FindByID(ctx context.Context, id int64) (*model.StorageNode, error) {
	var row storageNodeRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (r *storageNodeRepo) Update(ctx context.Context, node *model.StorageNode) error {
	res := r.db.WithContext(ctx).Model(&storageNodeRow{}).Where("id = ?", node.ID).Updates(map[string]any{
		"name":         node.Name,
		"description":  node.Description,
		"root_path":    node.RootPath,
		"location":     uint8(node.Location),
		"speed":        uint8(node.Speed),
		"is_active":    node.IsActive,
		"is_test_node": node.IsTestNode,
		"modified_at":  utcPtr(node.ModifiedAt),
	})
	return requireOneRow(res, repository.ErrNotFound)
}

func (r *storageNodeRepo) List(ctx context.Context) ([]model.StorageNode, error) {
	var rows []storageNodeRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.StorageNode, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row.toModel())
	}
	return out, nil
}

// Document type operations

type documentTypeRepo struct {
	db *gorm.DB
}

func (r *documentTypeRepo) Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error) {
	row := toDocumentTypeRow(dt)
	db := r.db.WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		return nil, err
	}
	nodes, err := r.insertNodes(db, row.ID, dt.Nodes)
	if err != nil {
		return nil, err
	}
	return row.toModel(nodes), nil
}

func (r *documentTypeRepo) FindByID(ctx context.Context, id int64) (*model.DocumentType, error) {
	db := r.db.WithContext(ctx)
	var row documentTypeRow
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	nodes, err := r.loadNodes(db, row.ID)
	if err != nil {
		return nil, err
	}
	return row.toModel(nodes), nil
}

func (r *documentTypeRepo) Update(ctx context.Context, dt *model.DocumentType) error {
	db := r.db.WithContext(ctx)
	res := db.Model(&documentTypeRow{}).Where("id = ?", dt.ID).Updates(map[string]any{
		"application_id":    dt.ApplicationID,
		"name":              dt.Name,
		"description":       dt.Description,
		"folder_name":       dt.FolderName,
		"storage_mode":      uint8(dt.StorageMode),
		"inactive_lifetime": uint8(dt.InactiveLifetime),
		"is_active":         dt.IsActive,
		"modified_at":       utcPtr(dt.ModifiedAt),
	})
	if err := requireOneRow(res, repository.ErrNotFound); err != nil {
		return err
	}
	if err := db.Where("document_type_id = ?", dt.ID).Delete(&documentTypeNodeRow{}).Error; err != nil {
		return fmt.Errorf("clear node refs: %w", err)
	}
	_, err := r.insertNodes(db, dt.ID, dt.Nodes)
	return err
}

func (r *documentTypeRepo) ListByStorageNode(ctx context.Context, nodeID int64) ([]model.DocumentType, error) {
	db := r.db.WithContext(ctx)
	var rows []documentTypeRow
	sub := db.Model(&documentTypeNodeRow{}).Select("document_type_id").Where("storage_node_id = ?", nodeID)
	if err := db.Where("id IN (?)", sub).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]model.DocumentType, 0, len(rows))
	for _, row := range rows {
		nodes, err := r.loadNodes(db, row.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *row.toModel(nodes))
	}
	return out, nil
}

func (r *documentTypeRepo) insertNodes(db *gorm.DB, typeID int64, refs []model.NodeRef) ([]documentTypeNodeRow, error) {
	rows := make([]documentTypeNodeRow, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, documentTypeNodeRow{
			DocumentTypeID: typeID,
			Role:           uint8(ref.Role),
			Slot:           ref.Slot,
			StorageNodeID:  ref.NodeID,
		})
	}
	if len(rows) == 0 {
		return rows, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("insert node refs: %w", err)
	}
	return rows, nil
}

func (r *documentTypeRepo) loadNodes(db *gorm.DB, typeID int64) ([]documentTypeNodeRow, error) {
	var rows []documentTypeNodeRow
	err := db.Where("document_type_id = ?", typeID).Order("role, slot").Find(&rows).Error
	return rows, err
}

// Stored document operations

type storedDocumentRepo struct {
	db *gorm.DB
}

func (r *storedDocumentRepo) Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error) {
	row := toStoredDocumentRow(doc)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (r *storedDocumentRepo) FindByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	var row storedDocumentRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return row.toModel(), nil
}

func (r *storedDocumentRepo) Replace(ctx context.Context, doc *model.StoredDocument, previousFileName string) error {
	res := r.db.WithContext(ctx).Model(&storedDocumentRow{}).
		Where("id = ? AND file_name = ?", doc.ID, previousFileName).
		Updates(map[string]any{
			"description":               doc.Description,
			"storage_folder":            doc.StorageFolder,
			"file_name":                 doc.FileName,
			"size":                      doc.Size,
			"primary_storage_node_id":   doc.PrimaryStorageNodeID,
			"secondary_storage_node_id": doc.SecondaryStorageNodeID,
			"modified_at":               doc.ModifiedAt.UTC(),
		})
	return requireOneRow(res, repository.ErrStale)
}

func (r *storedDocumentRepo) RecordAccess(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&storedDocumentRow{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": at.UTC(),
		})
	return requireOneRow(res, repository.ErrNotFound)
}

func (r *storedDocumentRepo) ListByDocumentType(ctx context.Context, documentTypeID int64, pq repository.PageQuery) (*repository.PageResult[model.StoredDocument], error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&storedDocumentRow{}).Where("document_type_id = ?", documentTypeID).Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []storedDocumentRow
	query := db.Where("document_type_id = ?", documentTypeID).Order("created_at DESC, id DESC")
	if pq.Limit > 0 {
		query = query.Limit(pq.Limit)
	}
	if pq.Offset > 0 {
		query = query.Offset(pq.Offset)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]model.StoredDocument, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row.toModel())
	}
	return &repository.PageResult[model.StoredDocument]{Items: items, Total: int(total)}, nil
}

// Expiration operations

type expiringDocumentRepo struct {
	db *gorm.DB
}

func (r *expiringDocumentRepo) Upsert(ctx context.Context, exp *model.ExpiringDocument) error {
	row := expiringDocumentRow{StoredDocumentID: exp.StoredDocumentID, ExpiresAt: exp.ExpiresAt.UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stored_document_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at"}),
	}).Create(&row).Error
}

func (r *expiringDocumentRepo) FindByDocumentID(ctx context.Context, storedDocumentID string) (*model.ExpiringDocument, error) {
	var row expiringDocumentRow
	if err := r.db.WithContext(ctx).Where("stored_document_id = ?", storedDocumentID).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	return &model.ExpiringDocument{StoredDocumentID: row.StoredDocumentID, ExpiresAt: row.ExpiresAt.UTC()}, nil
}

func (r *expiringDocumentRepo) ListExpired(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error) {
	var rows []expiringDocumentRow
	query := r.db.WithContext(ctx).Where("expires_at <= ?", before.UTC()).Order("expires_at, stored_document_id")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.ExpiringDocument, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.ExpiringDocument{StoredDocumentID: row.StoredDocumentID, ExpiresAt: row.ExpiresAt.UTC()})
	}
	return out, nil
}
