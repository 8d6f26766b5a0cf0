package model

import (
	"path/filepath"
	"time"
)

// StoredDocument is one logical document. Its ID is stable across content replacement.
// This is a pure domain model with no database-specific dependencies or tags.
type StoredDocument struct {
	ID                     string         `json:"id"`
	Status                 DocumentStatus `json:"status"`
	Description            string         `json:"description"`
	StorageFolder          string         `json:"storage_folder"`
	FileName               string         `json:"file_name"`
	Size                   int64          `json:"size"`
	IsAlive                bool           `json:"is_alive"`
	AccessCount            int64          `json:"access_count"`
	LastAccessedAt         *time.Time     `json:"last_accessed_at,omitempty"`
	DocumentTypeID         int64          `json:"document_type_id"`
	PrimaryStorageNodeID   int64          `json:"primary_storage_node_id"`
	SecondaryStorageNodeID *int64         `json:"secondary_storage_node_id,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	ModifiedAt             time.Time      `json:"modified_at"`
}

// FullPath is the recorded location of the document's bytes.
func (d *StoredDocument) FullPath() string {
	return filepath.Join(d.StorageFolder, d.FileName)
}

// ExpiringDocument marks a stored document as time-bounded.
type ExpiringDocument struct {
	StoredDocumentID string    `json:"stored_document_id"`
	ExpiresAt        time.Time `json:"expires_at"`
}
