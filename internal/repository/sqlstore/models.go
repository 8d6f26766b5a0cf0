package sqlstore

import (
	"time"

	"docserver/internal/model"
)

// Row types mirror the postgres schema. They stay private so gorm tags never
// leak into the domain model. The pointer fields are never loaded; they only
// declare foreign keys for AutoMigrate.

type applicationRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"type:text;not null;uniqueIndex"`
	IsActive   bool   `gorm:"not null"`
	CreatedAt  time.Time
	ModifiedAt *time.Time
}

func (applicationRow) TableName() string { return "applications" }

type storageNodeRow struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"type:text;not null;uniqueIndex"`
	Description string `gorm:"type:text;not null;default:''"`
	RootPath    string `gorm:"type:text;not null"`
	Location    uint8  `gorm:"not null"`
	Speed       uint8  `gorm:"not null"`
	IsActive    bool   `gorm:"not null"`
	IsTestNode  bool   `gorm:"not null"`
	CreatedAt   time.Time
	ModifiedAt  *time.Time
}

func (storageNodeRow) TableName() string { return "storage_nodes" }

type documentTypeRow struct {
	ID               int64  `gorm:"primaryKey;autoIncrement"`
	ApplicationID    int64  `gorm:"not null;uniqueIndex:idx_document_types_app_name"`
	Name             string `gorm:"type:text;not null;uniqueIndex:idx_document_types_app_name"`
	Description      string `gorm:"type:text;not null;default:''"`
	FolderName       string `gorm:"type:varchar(10);not null"`
	StorageMode      uint8  `gorm:"not null"`
	InactiveLifetime uint8  `gorm:"not null"`
	IsActive         bool   `gorm:"not null"`
	CreatedAt        time.Time
	ModifiedAt       *time.Time

	Application *applicationRow `gorm:"foreignKey:ApplicationID;constraint:OnDelete:RESTRICT"`
}

func (documentTypeRow) TableName() string { return "document_types" }

type documentTypeNodeRow struct {
	DocumentTypeID int64 `gorm:"primaryKey;autoIncrement:false"`
	Role           uint8 `gorm:"primaryKey;autoIncrement:false"`
	Slot           int   `gorm:"primaryKey;autoIncrement:false"`
	StorageNodeID  int64 `gorm:"not null;index"`

	DocumentType *documentTypeRow `gorm:"foreignKey:DocumentTypeID;constraint:OnDelete:CASCADE"`
	StorageNode  *storageNodeRow  `gorm:"foreignKey:StorageNodeID;constraint:OnDelete:RESTRICT"`
}

func (documentTypeNodeRow) TableName() string { return "document_type_nodes" }

type storedDocumentRow struct {
	ID                     string `gorm:"primaryKey;type:text"`
	Status                 uint8  `gorm:"not null"`
	Description            string `gorm:"type:text;not null;default:''"`
	StorageFolder          string `gorm:"type:text;not null"`
	FileName               string `gorm:"type:text;not null"`
	Size                   int64  `gorm:"not null"`
	IsAlive                bool   `gorm:"not null"`
	AccessCount            int64  `gorm:"not null;default:0"`
	LastAccessedAt         *time.Time
	DocumentTypeID         int64 `gorm:"not null;index:idx_stored_documents_type_created"`
	PrimaryStorageNodeID   int64 `gorm:"not null"`
	SecondaryStorageNodeID *int64
	CreatedAt              time.Time `gorm:"index:idx_stored_documents_type_created"`
	ModifiedAt             time.Time

	DocumentType  *documentTypeRow `gorm:"foreignKey:DocumentTypeID;constraint:OnDelete:RESTRICT"`
	PrimaryNode   *storageNodeRow  `gorm:"foreignKey:PrimaryStorageNodeID;constraint:OnDelete:RESTRICT"`
	SecondaryNode *storageNodeRow  `gorm:"foreignKey:SecondaryStorageNodeID;constraint:OnDelete:RESTRICT"`
}

func (storedDocumentRow) TableName() string { return "stored_documents" }

type expiringDocumentRow struct {
	StoredDocumentID string    `gorm:"primaryKey;type:text"`
	ExpiresAt        time.Time `gorm:"not null;index"`

	StoredDocument *storedDocumentRow `gorm:"foreignKey:StoredDocumentID;constraint:OnDelete:CASCADE"`
}

func (expiringDocumentRow) TableName() string { return "expiring_documents" }

// allRows lists the tables in dependency order.
func allRows() []any {
	return []any{
		&applicationRow{},
		&storageNodeRow{},
		&documentTypeRow{},
		&documentTypeNodeRow{},
		&storedDocumentRow{},
		&expiringDocumentRow{},
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toApplicationRow(a *model.Application) applicationRow {
	return applicationRow{
		ID:         a.ID,
		Name:       a.Name,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt.UTC(),
		ModifiedAt: utcPtr(a.ModifiedAt),
	}
}

func (r applicationRow) toModel() *model.Application {
	return &model.Application{
		ID:         r.ID,
		Name:       r.Name,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt.UTC(),
		ModifiedAt: utcPtr(r.ModifiedAt),
	}
}

func toStorageNodeRow(n *model.StorageNode) storageNodeRow {
	return storageNodeRow{
		ID:          n.ID,
		Name:        n.Name,
		Description: n.Description,
		RootPath:    n.RootPath,
		Location:    uint8(n.Location),
		Speed:       uint8(n.Speed),
		IsActive:    n.IsActive,
		IsTestNode:  n.IsTestNode,
		CreatedAt:   n.CreatedAt.UTC(),
		ModifiedAt:  utcPtr(n.ModifiedAt),
	}
}

func (r storageNodeRow) toModel() *model.StorageNode {
	return &model.StorageNode{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		RootPath:    r.RootPath,
		Location:    model.StorageNodeLocation(r.Location),
		Speed:       model.StorageNodeSpeed(r.Speed),
		IsActive:    r.IsActive,
		IsTestNode:  r.IsTestNode,
		CreatedAt:   r.CreatedAt.UTC(),
		ModifiedAt:  utcPtr(r.ModifiedAt),
	}
}

func toDocumentTypeRow(d *model.DocumentType) documentTypeRow {
	return documentTypeRow{
		ID:               d.ID,
		ApplicationID:    d.ApplicationID,
		Name:             d.Name,
		Description:      d.Description,
		FolderName:       d.FolderName,
		StorageMode:      uint8(d.StorageMode),
		InactiveLifetime: uint8(d.InactiveLifetime),
		IsActive:         d.IsActive,
		CreatedAt:        d.CreatedAt.UTC(),
		ModifiedAt:       utcPtr(d.ModifiedAt),
	}
}

func (r documentTypeRow) toModel(nodes []documentTypeNodeRow) *model.DocumentType {
	refs := make([]model.NodeRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, model.NodeRef{Role: model.NodeRole(n.Role), Slot: n.Slot, NodeID: n.StorageNodeID})
	}
	return &model.DocumentType{
		ID:               r.ID,
		ApplicationID:    r.ApplicationID,
		Name:             r.Name,
		Description:      r.Description,
		FolderName:       r.FolderName,
		StorageMode:      model.StorageMode(r.StorageMode),
		InactiveLifetime: model.DocumentLifetime(r.InactiveLifetime),
		Nodes:            refs,
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt.UTC(),
		ModifiedAt:       utcPtr(r.ModifiedAt),
	}
}

func toStoredDocumentRow(d *model.StoredDocument) storedDocumentRow {
	return storedDocumentRow{
		ID:                     d.ID,
		Status:                 uint8(d.Status),
		Description:            d.Description,
		StorageFolder:          d.StorageFolder,
		FileName:               d.FileName,
		Size:                   d.Size,
		IsAlive:                d.IsAlive,
		AccessCount:            d.AccessCount,
		LastAccessedAt:         utcPtr(d.LastAccessedAt),
		DocumentTypeID:         d.DocumentTypeID,
		PrimaryStorageNodeID:   d.PrimaryStorageNodeID,
		SecondaryStorageNodeID: d.SecondaryStorageNodeID,
		CreatedAt:              d.CreatedAt.UTC(),
		ModifiedAt:             d.ModifiedAt.UTC(),
	}
}

func (r storedDocumentRow) toModel() *model.StoredDocument {
	return &model.StoredDocument{
		ID:                     r.ID,
		Status:                 model.DocumentStatus(r.Status),
		Description:            r.Description,
		StorageFolder:          r.StorageFolder,
		FileName:               r.FileName,
		Size:                   r.Size,
		IsAlive:                r.IsAlive,
		AccessCount:            r.AccessCount,
		LastAccessedAt:         utcPtr(r.LastAccessedAt),
		DocumentTypeID:         r.DocumentTypeID,
		PrimaryStorageNodeID:   r.PrimaryStorageNodeID,
		SecondaryStorageNodeID: r.SecondaryStorageNodeID,
		CreatedAt:              r.CreatedAt.UTC(),
		ModifiedAt:             r.ModifiedAt.UTC(),
	}
}
