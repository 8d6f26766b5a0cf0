package model

import "time"

// Application owns a set of document types.
type Application struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
}
