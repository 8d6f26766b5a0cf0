package model

import "time"

// StorageNode is a named root location that document bytes are written under.
type StorageNode struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	RootPath    string              `json:"root_path"`
	Location    StorageNodeLocation `json:"location"`
	Speed       StorageNodeSpeed    `json:"speed"`
	IsActive    bool                `json:"is_active"`
	IsTestNode  bool                `json:"is_test_node"`
	CreatedAt   time.Time           `json:"created_at"`
	ModifiedAt  *time.Time          `json:"modified_at,omitempty"`
}
