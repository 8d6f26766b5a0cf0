// Package placement computes where a document's bytes live: the storage node
// root, the mode letter, the type's folder name, then year and month.
package placement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"docserver/internal/errs"
	"docserver/internal/model"
	"docserver/internal/policy"
	"docserver/internal/repository"
)

// NodeLookup is the storage node registry.
type NodeLookup interface {
	FindByID(ctx context.Context, id int64) (*model.StorageNode, error)
}

// Placement is the outcome of resolving a document type against a node.
type Placement struct {
	Node   *model.StorageNode
	Letter string
	Folder string
	// Instant supplies the folder's year and month. For Temporary types it
	// is also the document's expiration.
	Instant time.Time
}

// Resolver computes canonical storage folders. It keeps no state between calls.
type Resolver struct {
	nodes NodeLookup
	now   func() time.Time
}

// NewResolver returns a Resolver reading the clock from now. A nil now uses time.Now.
func NewResolver(nodes NodeLookup, now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{nodes: nodes, now: now}
}

// ComputeStorageFullName returns root/letter/folderName/yyyy/MM for dt on nodeID.
func (r *Resolver) ComputeStorageFullName(ctx context.Context, dt *model.DocumentType, nodeID int64) (string, error) {
	p, err := r.Resolve(ctx, dt, nodeID)
	if err != nil {
		return "", err
	}
	return p.Folder, nil
}

// Resolve computes the full placement of dt on nodeID using the current time.
func (r *Resolver) Resolve(ctx context.Context, dt *model.DocumentType, nodeID int64) (*Placement, error) {
	return r.ResolveAt(ctx, dt, nodeID, r.now())
}

// ResolveAt is Resolve with an explicit instant.
func (r *Resolver) ResolveAt(ctx context.Context, dt *model.DocumentType, nodeID int64, now time.Time) (*Placement, error) {
	const op = "placement.Resolve"

	node, err := r.nodes.FindByID(ctx, nodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.E(errs.NodeNotFound, op, fmt.Errorf("storage node %d", nodeID))
		}
		return nil, errs.E(errs.MetadataFailed, op, err)
	}

	if !dt.References(nodeID) {
		return nil, errs.E(errs.NodeNotAssociated, op,
			fmt.Errorf("storage node %d is not configured for document type %d", nodeID, dt.ID))
	}

	letter, err := policy.ModeLetter(dt.StorageMode)
	if err != nil {
		return nil, err
	}

	if err := checkFolderName(dt.FolderName); err != nil {
		return nil, errs.E(errs.ValidationFailed, op, fmt.Errorf("document type %d: %w", dt.ID, err))
	}

	instant, err := policy.FolderInstant(dt, now)
	if err != nil {
		return nil, err
	}

	return &Placement{
		Node:    node,
		Letter:  letter,
		Folder:  Folder(node.RootPath, letter, dt.FolderName, instant),
		Instant: instant,
	}, nil
}

// Folder joins the path segments of a placement.
func Folder(root, letter, folderName string, instant time.Time) string {
	return filepath.Join(
		root,
		letter,
		folderName,
		fmt.Sprintf("%04d", instant.Year()),
		fmt.Sprintf("%02d", int(instant.Month())),
	)
}

func checkFolderName(name string) error {
	switch {
	case name == "":
		return errors.New("folder name is required")
	case len(name) > model.MaxFolderNameLength:
		return fmt.Errorf("folder name %q longer than %d characters", name, model.MaxFolderNameLength)
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return fmt.Errorf("folder name %q must be a single path segment", name)
	}
	return nil
}
