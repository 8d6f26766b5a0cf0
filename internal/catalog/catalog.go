// Package catalog seeds applications, storage nodes and document types from a
// YAML file. Entries reference each other by name; ids are assigned by the
// metadata store.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"docserver/internal/errs"
	"docserver/internal/logging"
	"docserver/internal/model"
	"docserver/internal/repository"
)

// Catalog is the document form of a seed file.
type Catalog struct {
	Applications  []Application  `yaml:"applications"`
	StorageNodes  []StorageNode  `yaml:"storage_nodes"`
	DocumentTypes []DocumentType `yaml:"document_types"`
}

type Application struct {
	Name     string `yaml:"name"`
	Disabled bool   `yaml:"disabled"`
}

type StorageNode struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	RootPath    string `yaml:"root_path"`
	Location    string `yaml:"location"`
	Speed       string `yaml:"speed"`
	Test        bool   `yaml:"test"`
	Disabled    bool   `yaml:"disabled"`
}

type DocumentType struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Application   string   `yaml:"application"`
	Folder        string   `yaml:"folder"`
	Mode          string   `yaml:"mode"`
	Lifetime      string   `yaml:"lifetime"`
	ActiveNodes   []string `yaml:"active_nodes"`
	ArchivalNodes []string `yaml:"archival_nodes"`
	Disabled      bool     `yaml:"disabled"`
}

// Result maps catalog names to the ids the store assigned.
type Result struct {
	Applications  map[string]int64
	StorageNodes  map[string]int64
	DocumentTypes map[string]int64
}

// Load reads and decodes a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a catalog. Unknown keys are rejected.
func Decode(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return nil, errs.E(errs.ValidationFailed, "catalog.Decode", err)
	}
	return &c, nil
}

// Seeder writes catalogs into a metadata store.
type Seeder struct {
	store repository.Store
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewSeeder creates a Seeder. A nil clock defaults to time.Now.
func NewSeeder(store repository.Store, log logrus.FieldLogger, now func() time.Time) *Seeder {
	if now == nil {
		now = time.Now
	}
	return &Seeder{store: store, log: logging.Component(log, "catalog"), now: now}
}

// Apply validates the whole catalog and then creates every entry in a single
// transaction. Nothing is written if any entry is invalid.
func (s *Seeder) Apply(ctx context.Context, c *Catalog) (*Result, error) {
	const op = "catalog.Apply"

	plan, err := c.plan()
	if err != nil {
		return nil, errs.E(errs.ValidationFailed, op, err)
	}

	res := &Result{
		Applications:  make(map[string]int64, len(c.Applications)),
		StorageNodes:  make(map[string]int64, len(c.StorageNodes)),
		DocumentTypes: make(map[string]int64, len(c.DocumentTypes)),
	}
	now := s.now().UTC()

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		for _, a := range plan.apps {
			a.CreatedAt = now
			created, err := tx.Applications().Create(ctx, a)
			if err != nil {
				return fmt.Errorf("create application %q: %w", a.Name, err)
			}
			res.Applications[a.Name] = created.ID
		}
		for _, n := range plan.nodes {
			n.CreatedAt = now
			created, err := tx.StorageNodes().Create(ctx, n)
			if err != nil {
				return fmt.Errorf("create storage node %q: %w", n.Name, err)
			}
			res.StorageNodes[n.Name] = created.ID
		}
		for i, dt := range plan.types {
			spec := c.DocumentTypes[i]
			dt.ApplicationID = res.Applications[spec.Application]
			dt.Nodes = nodeRefs(spec, res.StorageNodes)
			dt.CreatedAt = now
			created, err := tx.DocumentTypes().Create(ctx, dt)
			if err != nil {
				return fmt.Errorf("create document type %q: %w", dt.Name, err)
			}
			res.DocumentTypes[dt.Name] = created.ID
		}
		return nil
	})
	if err != nil {
		return nil, errs.E(errs.MetadataFailed, op, err)
	}

	s.log.WithFields(logrus.Fields{
		"applications":   len(res.Applications),
		"storage_nodes":  len(res.StorageNodes),
		"document_types": len(res.DocumentTypes),
	}).Info("catalog applied")
	return res, nil
}

type plan struct {
	apps  []*model.Application
	nodes []*model.StorageNode
	types []*model.DocumentType
}

// plan converts the catalog into model values and checks references.
// Document type node references are filled in after nodes get ids.
func (c *Catalog) plan() (*plan, error) {
	p := &plan{}

	apps := make(map[string]bool, len(c.Applications))
	for _, a := range c.Applications {
		if a.Name == "" {
			return nil, fmt.Errorf("application without name")
		}
		if apps[a.Name] {
			return nil, fmt.Errorf("application %q declared twice", a.Name)
		}
		apps[a.Name] = true
		p.apps = append(p.apps, &model.Application{Name: a.Name, IsActive: !a.Disabled})
	}

	nodes := make(map[string]bool, len(c.StorageNodes))
	for _, n := range c.StorageNodes {
		if n.Name == "" || n.RootPath == "" {
			return nil, fmt.Errorf("storage node %q needs a name and a root_path", n.Name)
		}
		if nodes[n.Name] {
			return nil, fmt.Errorf("storage node %q declared twice", n.Name)
		}
		nodes[n.Name] = true

		loc, err := model.ParseStorageNodeLocation(n.Location)
		if err != nil {
			return nil, fmt.Errorf("storage node %q: %w", n.Name, err)
		}
		speed := model.SpeedHot
		if n.Speed != "" {
			if speed, err = model.ParseStorageNodeSpeed(n.Speed); err != nil {
				return nil, fmt.Errorf("storage node %q: %w", n.Name, err)
			}
		}
		p.nodes = append(p.nodes, &model.StorageNode{
			Name:        n.Name,
			Description: n.Description,
			RootPath:    n.RootPath,
			Location:    loc,
			Speed:       speed,
			IsActive:    !n.Disabled,
			IsTestNode:  n.Test,
		})
	}

	types := make(map[string]bool, len(c.DocumentTypes))
	for _, t := range c.DocumentTypes {
		if types[t.Name] {
			return nil, fmt.Errorf("document type %q declared twice", t.Name)
		}
		types[t.Name] = true

		if !apps[t.Application] {
			return nil, fmt.Errorf("document type %q: unknown application %q", t.Name, t.Application)
		}
		for _, n := range append(append([]string{}, t.ActiveNodes...), t.ArchivalNodes...) {
			if !nodes[n] {
				return nil, fmt.Errorf("document type %q: unknown storage node %q", t.Name, n)
			}
		}

		mode, err := model.ParseStorageMode(t.Mode)
		if err != nil {
			return nil, fmt.Errorf("document type %q: %w", t.Name, err)
		}
		lifetime := model.LifetimeNever
		if t.Lifetime != "" {
			if lifetime, err = model.ParseDocumentLifetime(t.Lifetime); err != nil {
				return nil, fmt.Errorf("document type %q: %w", t.Name, err)
			}
		}

		dt := &model.DocumentType{
			Name:             t.Name,
			Description:      t.Description,
			FolderName:       t.Folder,
			StorageMode:      mode,
			InactiveLifetime: lifetime,
			IsActive:         !t.Disabled,
		}
		// Placeholder ids only size and slot-check the references.
		dt.Nodes = nodeRefs(t, placeholderIDs(t))
		if err := dt.Validate(); err != nil {
			return nil, err
		}
		p.types = append(p.types, dt)
	}

	return p, nil
}

func nodeRefs(t DocumentType, ids map[string]int64) []model.NodeRef {
	refs := make([]model.NodeRef, 0, len(t.ActiveNodes)+len(t.ArchivalNodes))
	for i, n := range t.ActiveNodes {
		refs = append(refs, model.NodeRef{Role: model.NodeRoleActive, Slot: i + 1, NodeID: ids[n]})
	}
	for i, n := range t.ArchivalNodes {
		refs = append(refs, model.NodeRef{Role: model.NodeRoleArchival, Slot: i + 1, NodeID: ids[n]})
	}
	return refs
}

func placeholderIDs(t DocumentType) map[string]int64 {
	ids := make(map[string]int64)
	for _, n := range append(append([]string{}, t.ActiveNodes...), t.ArchivalNodes...) {
		if _, ok := ids[n]; !ok {
			ids[n] = int64(len(ids) + 1)
		}
	}
	return ids
}
