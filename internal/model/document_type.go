package model

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"docserver/internal/errs"
)

const (
	// MaxNodeSlots is the number of storage node slots per role.
	MaxNodeSlots = 2
	// MaxFolderNameLength bounds DocumentType.FolderName.
	MaxFolderNameLength = 10
)

// NodeRef associates a storage node with a document type in a given role and slot.
// Slots are 1-based; slot 1 of the active role is the primary node.
type NodeRef struct {
	Role   NodeRole `json:"role"`
	Slot   int      `json:"slot"`
	NodeID int64    `json:"node_id"`
}

// DocumentType is the storage policy shared by all documents of that type.
type DocumentType struct {
	ID               int64            `json:"id"`
	ApplicationID    int64            `json:"application_id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	FolderName       string           `json:"folder_name"`
	StorageMode      StorageMode      `json:"storage_mode"`
	InactiveLifetime DocumentLifetime `json:"inactive_lifetime"`
	Nodes            []NodeRef        `json:"nodes"`
	IsActive         bool             `json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	ModifiedAt       *time.Time       `json:"modified_at,omitempty"`
}

// NodesFor returns the node ids configured for role, ordered by slot.
func (d *DocumentType) NodesFor(role NodeRole) []int64 {
	refs := make([]NodeRef, 0, MaxNodeSlots)
	for _, r := range d.Nodes {
		if r.Role == role {
			refs = append(refs, r)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Slot < refs[j].Slot })

	ids := make([]int64, len(refs))
	for i, r := range refs {
		ids[i] = r.NodeID
	}
	return ids
}

// References reports whether nodeID is one of the type's active or archival nodes.
func (d *DocumentType) References(nodeID int64) bool {
	for _, r := range d.Nodes {
		if r.NodeID == nodeID {
			return true
		}
	}
	return false
}

// Validate checks the policy for internal consistency.
func (d *DocumentType) Validate() error {
	const op = "model.DocumentType.Validate"
	var problems []string

	if strings.TrimSpace(d.Name) == "" {
		problems = append(problems, "name is required")
	}
	switch {
	case d.FolderName == "":
		problems = append(problems, "folder name is required")
	case len(d.FolderName) > MaxFolderNameLength:
		problems = append(problems, fmt.Sprintf("folder name longer than %d characters", MaxFolderNameLength))
	case strings.ContainsAny(d.FolderName, `/\`) || d.FolderName == "." || d.FolderName == "..":
		problems = append(problems, "folder name must be a single path segment")
	}
	if _, ok := storageModeNames[d.StorageMode]; !ok {
		problems = append(problems, fmt.Sprintf("invalid storage mode %d", d.StorageMode))
	}
	if !d.InactiveLifetime.Valid() {
		problems = append(problems, fmt.Sprintf("invalid inactive lifetime %d", d.InactiveLifetime))
	}
	if d.StorageMode == StorageModeTemporary && d.InactiveLifetime == LifetimeParentDetermined {
		problems = append(problems, "temporary document types need a concrete lifetime")
	}

	seen := make(map[NodeRef]bool, len(d.Nodes))
	for _, r := range d.Nodes {
		if r.Role != NodeRoleActive && r.Role != NodeRoleArchival {
			problems = append(problems, fmt.Sprintf("invalid node role %d", r.Role))
			continue
		}
		if r.Slot < 1 || r.Slot > MaxNodeSlots {
			problems = append(problems, fmt.Sprintf("%s node slot %d out of range 1..%d", r.Role, r.Slot, MaxNodeSlots))
			continue
		}
		key := NodeRef{Role: r.Role, Slot: r.Slot}
		if seen[key] {
			problems = append(problems, fmt.Sprintf("%s node slot %d assigned twice", r.Role, r.Slot))
		}
		seen[key] = true
	}

	if len(problems) > 0 {
		return errs.E(errs.ValidationFailed, op, fmt.Errorf("document type %q: %s", d.Name, strings.Join(problems, "; ")))
	}
	return nil
}
