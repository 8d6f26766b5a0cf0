// Package storage moves document bytes to and from storage nodes. Paths are
// the full locations computed by the placement resolver; adapters never
// touch metadata.
package storage

import (
	"context"
	"errors"
	"fmt"

	"docserver/internal/model"
)

// ErrNoAdapter is returned for nodes whose location has no configured adapter.
var ErrNoAdapter = errors.New("no storage adapter for node location")

// Storage is the byte-level adapter for one kind of storage medium.
// Implementations must be safe for concurrent use.
type Storage interface {
	// WriteFile stores data at path, creating missing parent folders.
	WriteFile(ctx context.Context, path string, data []byte) error
	// ReadFile returns the content at path. A missing file fails with
	// errs.FileNotFound, any other failure with errs.StorageReadFailed.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// DeleteFile removes path. Deleting an absent file is not an error.
	DeleteFile(ctx context.Context, path string) error
	// Exists reports whether a file is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// Provider selects the adapter serving a storage node.
type Provider interface {
	ForNode(node *model.StorageNode) (Storage, error)
}

// Registry maps node locations to adapters.
type Registry struct {
	byLocation map[model.StorageNodeLocation]Storage
}

// NewRegistry serves hosted (local and SMB) nodes from files. objects may be
// nil when no object store is configured.
func NewRegistry(files Storage, objects Storage) *Registry {
	r := &Registry{byLocation: make(map[model.StorageNodeLocation]Storage, 3)}
	if files != nil {
		r.byLocation[model.LocationHostedLocal] = files
		r.byLocation[model.LocationHostedSMB] = files
	}
	if objects != nil {
		r.byLocation[model.LocationObjectStore] = objects
	}
	return r
}

// ForNode returns the adapter for node.Location.
func (r *Registry) ForNode(node *model.StorageNode) (Storage, error) {
	s, ok := r.byLocation[node.Location]
	if !ok {
		return nil, fmt.Errorf("%w: %s node %q", ErrNoAdapter, node.Location, node.Name)
	}
	return s, nil
}
