package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docserver/internal/errs"
	"docserver/internal/logging"
	"docserver/internal/model"
	"docserver/internal/placement"
	"docserver/internal/repository"
	"docserver/internal/storage"
)

const (
	defaultPageSize    = 10
	defaultExpiredPage = 100
	maxExtensionLength = 16
)

// UploadRequest carries a new document in transfer form.
type UploadRequest struct {
	DocumentTypeID     int64  `json:"document_type_id"`
	Description        string `json:"description"`
	FileExtension      string `json:"file_extension"`
	FileInBase64Format string `json:"file_in_base64_format"`
}

// ReplacementRequest carries new content for an existing document.
type ReplacementRequest struct {
	CurrentID          string `json:"current_id"`
	Description        string `json:"description"`
	FileExtension      string `json:"file_extension"`
	FileInBase64Format string `json:"file_in_base64_format"`
}

// StoreFileRequest writes content for a document type onto an explicit node.
type StoreFileRequest struct {
	DocumentTypeID     int64  `json:"document_type_id"`
	StorageNodeID      int64  `json:"storage_node_id"`
	FileName           string `json:"file_name"`
	FileInBase64Format string `json:"file_in_base64_format"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.StoredDocument `json:"data"`
	Total int                    `json:"total"`
}

// DocumentService is the document lifecycle manager.
type DocumentService interface {
	// StoreDocumentFirstTime writes the content under the type's primary node,
	// then records it. A failed write leaves no metadata behind.
	StoreDocumentFirstTime(ctx context.Context, req UploadRequest) (*model.StoredDocument, error)

	// StoreReplacementDocument swaps the content of an existing document in
	// place, keeping its identity. The previous file is deleted after commit.
	StoreReplacementDocument(ctx context.Context, req ReplacementRequest) (*model.StoredDocument, error)

	// ReadStoredDocument returns the document content in transfer form.
	ReadStoredDocument(ctx context.Context, id string) (string, error)

	// GetStoredDocument returns the metadata of a document.
	GetStoredDocument(ctx context.Context, id string) (*model.StoredDocument, error)

	// ListDocuments returns documents of one type, newest first.
	ListDocuments(ctx context.Context, documentTypeID int64, limit, offset int) (*DocumentListResult, error)

	// ListExpiredDocuments returns expiration records due at or before before.
	// A zero before means now; a non-positive limit means 100.
	ListExpiredDocuments(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error)

	// StoreFileOnStorageMedia resolves the folder of a document type on the
	// given node and writes the file there. It records nothing.
	StoreFileOnStorageMedia(ctx context.Context, req StoreFileRequest) (string, error)
}

// Option configures a documentService.
type Option func(*documentService)

// WithLogger sets the logger. Defaults to the logrus standard logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *documentService) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

// WithMetrics sets the metric collectors.
func WithMetrics(m *Metrics) Option {
	return func(s *documentService) { s.metrics = m }
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store    repository.Store
	files    storage.Provider
	resolver *placement.Resolver
	log      logrus.FieldLogger
	now      func() time.Time
	metrics  *Metrics
	tracer   trace.Tracer
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store repository.Store, files storage.Provider, opts ...Option) DocumentService {
	s := &documentService{
		store:  store,
		files:  files,
		log:    logrus.StandardLogger(),
		now:    time.Now,
		tracer: otel.Tracer("docserver/internal/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics, _ = NewMetrics(nil)
	}
	s.log = logging.Component(s.log, "lifecycle")
	s.resolver = placement.NewResolver(store.StorageNodes(), s.now)
	return s
}

func (s *documentService) StoreDocumentFirstTime(ctx context.Context, req UploadRequest) (doc *model.StoredDocument, err error) {
	const op = "service.StoreDocumentFirstTime"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("document_type_id", req.DocumentTypeID)))
	defer func() { s.finish(span, "store_first_time", err) }()

	now := s.now().UTC()
	content, ext, err := decodeContent(op, req.FileInBase64Format, req.FileExtension)
	if err != nil {
		return nil, err
	}

	dt, err := s.loadType(ctx, op, req.DocumentTypeID)
	if err != nil {
		return nil, err
	}
	primary, secondary, err := selectNodes(op, dt)
	if err != nil {
		return nil, err
	}

	p, files, err := s.place(ctx, op, dt, primary, now)
	if err != nil {
		return nil, err
	}
	fileName := newFileName(ext)
	path := filepath.Join(p.Folder, fileName)
	if err := s.write(ctx, files, path, content); err != nil {
		return nil, err
	}

	doc = &model.StoredDocument{
		ID:                     uuid.NewString(),
		Status:                 model.DocumentStatusActive,
		Description:            req.Description,
		StorageFolder:          p.Folder,
		FileName:               fileName,
		Size:                   int64(len(content)),
		IsAlive:                dt.StorageMode != model.StorageModeTemporary,
		DocumentTypeID:         dt.ID,
		PrimaryStorageNodeID:   primary,
		SecondaryStorageNodeID: secondary,
		CreatedAt:              now,
		ModifiedAt:             now,
	}

	var stored *model.StoredDocument
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		created, err := tx.StoredDocuments().Create(ctx, doc)
		if err != nil {
			return fmt.Errorf("create stored document: %w", err)
		}
		if dt.StorageMode == model.StorageModeTemporary {
			exp := &model.ExpiringDocument{StoredDocumentID: created.ID, ExpiresAt: p.Instant}
			if err := tx.ExpiringDocuments().Upsert(ctx, exp); err != nil {
				return fmt.Errorf("create expiring document: %w", err)
			}
		}
		stored = created
		return nil
	})
	if err != nil {
		s.discard(ctx, files, path, "metadata_rollback")
		return nil, errs.E(errs.MetadataFailed, op, err)
	}

	s.log.WithFields(logrus.Fields{
		"document_id":      stored.ID,
		"document_type_id": dt.ID,
		"storage_node_id":  primary,
		"path":             path,
		"size":             stored.Size,
	}).Info("document stored")
	return stored, nil
}

func (s *documentService) StoreReplacementDocument(ctx context.Context, req ReplacementRequest) (doc *model.StoredDocument, err error) {
	const op = "service.StoreReplacementDocument"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("document_id", req.CurrentID)))
	defer func() { s.finish(span, "store_replacement", err) }()

	now := s.now().UTC()
	content, ext, err := decodeContent(op, req.FileInBase64Format, req.FileExtension)
	if err != nil {
		return nil, err
	}

	existing, err := s.loadDocument(ctx, op, req.CurrentID)
	if err != nil {
		return nil, err
	}
	dt, err := s.loadType(ctx, op, existing.DocumentTypeID)
	if err != nil {
		return nil, err
	}
	primary, secondary, err := selectNodes(op, dt)
	if err != nil {
		return nil, err
	}

	p, files, err := s.place(ctx, op, dt, primary, now)
	if err != nil {
		return nil, err
	}
	fileName := newFileName(ext)
	path := filepath.Join(p.Folder, fileName)
	if err := s.write(ctx, files, path, content); err != nil {
		return nil, err
	}

	updated := *existing
	updated.Description = req.Description
	updated.StorageFolder = p.Folder
	updated.FileName = fileName
	updated.Size = int64(len(content))
	updated.PrimaryStorageNodeID = primary
	updated.SecondaryStorageNodeID = secondary
	updated.ModifiedAt = now

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.StoredDocuments().Replace(ctx, &updated, existing.FileName); err != nil {
			return err
		}
		if dt.StorageMode == model.StorageModeTemporary {
			exp := &model.ExpiringDocument{StoredDocumentID: updated.ID, ExpiresAt: p.Instant}
			if err := tx.ExpiringDocuments().Upsert(ctx, exp); err != nil {
				return fmt.Errorf("move expiration: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.discard(ctx, files, path, "metadata_rollback")
		if errors.Is(err, repository.ErrStale) {
			return nil, errs.E(errs.ReplacementConflict, op,
				fmt.Errorf("document %s was replaced concurrently", existing.ID))
		}
		return nil, errs.E(errs.MetadataFailed, op, err)
	}

	s.removeSuperseded(ctx, existing)

	s.log.WithFields(logrus.Fields{
		"document_id":      updated.ID,
		"document_type_id": dt.ID,
		"storage_node_id":  primary,
		"path":             path,
		"previous_path":    existing.FullPath(),
		"size":             updated.Size,
	}).Info("document replaced")
	return &updated, nil
}

// removeSuperseded deletes the file a replacement made obsolete. Failures
// leave an orphan file and are only logged.
func (s *documentService) removeSuperseded(ctx context.Context, old *model.StoredDocument) {
	log := s.log.WithFields(logrus.Fields{
		"document_id":     old.ID,
		"storage_node_id": old.PrimaryStorageNodeID,
		"path":            old.FullPath(),
	})

	node, err := s.store.StorageNodes().FindByID(ctx, old.PrimaryStorageNodeID)
	if err != nil {
		s.metrics.orphanFiles.WithLabelValues("superseded").Inc()
		log.WithError(err).Warn("superseded file kept: storage node lookup failed")
		return
	}
	files, err := s.files.ForNode(node)
	if err != nil {
		s.metrics.orphanFiles.WithLabelValues("superseded").Inc()
		log.WithError(err).Warn("superseded file kept: no storage adapter")
		return
	}
	if err := files.DeleteFile(ctx, old.FullPath()); err != nil {
		s.metrics.orphanFiles.WithLabelValues("superseded").Inc()
		log.WithError(err).Warn("superseded file kept: delete failed")
	}
}

func (s *documentService) ReadStoredDocument(ctx context.Context, id string) (content string, err error) {
	const op = "service.ReadStoredDocument"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("document_id", id)))
	defer func() { s.finish(span, "read", err) }()

	doc, err := s.loadDocument(ctx, op, id)
	if err != nil {
		return "", err
	}

	node, err := s.store.StorageNodes().FindByID(ctx, doc.PrimaryStorageNodeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", errs.E(errs.NodeNotFound, op, fmt.Errorf("storage node %d of document %s", doc.PrimaryStorageNodeID, doc.ID))
		}
		return "", errs.E(errs.MetadataFailed, op, err)
	}
	files, err := s.files.ForNode(node)
	if err != nil {
		return "", errs.E(errs.StorageReadFailed, op, err)
	}

	data, err := files.ReadFile(ctx, doc.FullPath())
	if err != nil {
		// A metadata row without its file is an inconsistency the caller must see.
		s.log.WithFields(logrus.Fields{
			"document_id": doc.ID,
			"path":        doc.FullPath(),
		}).WithError(err).Error("stored document content unreadable")
		return "", err
	}

	if err := s.store.StoredDocuments().RecordAccess(ctx, doc.ID, s.now().UTC()); err != nil {
		s.log.WithField("document_id", doc.ID).WithError(err).Warn("access bookkeeping failed")
	}
	return storage.EncodeTransfer(data), nil
}

func (s *documentService) GetStoredDocument(ctx context.Context, id string) (*model.StoredDocument, error) {
	return s.loadDocument(ctx, "service.GetStoredDocument", id)
}

// ListDocuments returns paginated documents without exposing repository types.
func (s *documentService) ListDocuments(ctx context.Context, documentTypeID int64, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.store.StoredDocuments().ListByDocumentType(ctx, documentTypeID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, errs.E(errs.MetadataFailed, "service.ListDocuments", err)
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) ListExpiredDocuments(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error) {
	if before.IsZero() {
		before = s.now()
	}
	if limit <= 0 {
		limit = defaultExpiredPage
	}
	items, err := s.store.ExpiringDocuments().ListExpired(ctx, before.UTC(), limit)
	if err != nil {
		return nil, errs.E(errs.MetadataFailed, "service.ListExpiredDocuments", err)
	}
	return items, nil
}

func (s *documentService) StoreFileOnStorageMedia(ctx context.Context, req StoreFileRequest) (path string, err error) {
	const op = "service.StoreFileOnStorageMedia"
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.Int64("document_type_id", req.DocumentTypeID),
		attribute.Int64("storage_node_id", req.StorageNodeID),
	))
	defer func() { s.finish(span, "store_file", err) }()

	if err := checkFileName(req.FileName); err != nil {
		return "", errs.E(errs.ValidationFailed, op, err)
	}
	content, err := storage.DecodeTransfer(req.FileInBase64Format)
	if err != nil {
		return "", err
	}
	dt, err := s.loadType(ctx, op, req.DocumentTypeID)
	if err != nil {
		return "", err
	}

	p, files, err := s.place(ctx, op, dt, req.StorageNodeID, s.now().UTC())
	if err != nil {
		return "", err
	}
	path = filepath.Join(p.Folder, req.FileName)
	if err := s.write(ctx, files, path, content); err != nil {
		return "", err
	}
	return path, nil
}

func (s *documentService) loadType(ctx context.Context, op string, id int64) (*model.DocumentType, error) {
	dt, err := s.store.DocumentTypes().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.E(errs.DocumentTypeNotFound, op, fmt.Errorf("document type %d", id))
		}
		return nil, errs.E(errs.MetadataFailed, op, err)
	}
	if !dt.IsActive {
		return nil, errs.E(errs.DocumentTypeNotFound, op, fmt.Errorf("document type %d is inactive", id))
	}
	if err := dt.Validate(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (s *documentService) loadDocument(ctx context.Context, op, id string) (*model.StoredDocument, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errs.E(errs.ValidationFailed, op, errors.New("document id is required"))
	}
	// Ids are UUIDs; anything else cannot name a stored document on either driver.
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.E(errs.DocumentNotFound, op, fmt.Errorf("document %s", id))
	}
	doc, err := s.store.StoredDocuments().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.E(errs.DocumentNotFound, op, fmt.Errorf("document %s", id))
		}
		return nil, errs.E(errs.MetadataFailed, op, err)
	}
	return doc, nil
}

// place resolves the folder on nodeID and the adapter serving that node.
func (s *documentService) place(ctx context.Context, op string, dt *model.DocumentType, nodeID int64, now time.Time) (*placement.Placement, storage.Storage, error) {
	p, err := s.resolver.ResolveAt(ctx, dt, nodeID, now)
	if err != nil {
		return nil, nil, err
	}
	files, err := s.files.ForNode(p.Node)
	if err != nil {
		return nil, nil, errs.E(errs.StorageWriteFailed, op, err)
	}
	return p, files, nil
}

func (s *documentService) write(ctx context.Context, files storage.Storage, path string, content []byte) error {
	if err := files.WriteFile(ctx, path, content); err != nil {
		s.log.WithField("path", path).WithError(err).Error("storage write failed")
		return err
	}
	s.metrics.bytesWritten.Add(float64(len(content)))
	return nil
}

// discard removes a file whose metadata never committed.
func (s *documentService) discard(ctx context.Context, files storage.Storage, path, reason string) {
	if err := files.DeleteFile(context.WithoutCancel(ctx), path); err != nil {
		s.metrics.orphanFiles.WithLabelValues(reason).Inc()
		s.log.WithField("path", path).WithError(err).Warn("orphan file left after failed metadata commit")
	}
}

func (s *documentService) finish(span trace.Span, operation string, err error) {
	s.metrics.observe(operation, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// selectNodes returns the first active node as primary and the second, if
// configured, as secondary. Archival nodes are never written.
func selectNodes(op string, dt *model.DocumentType) (int64, *int64, error) {
	active := dt.NodesFor(model.NodeRoleActive)
	if len(active) == 0 {
		return 0, nil, errs.E(errs.NoStorageNodeConfigured, op, fmt.Errorf("document type %d has no active storage node", dt.ID))
	}
	var secondary *int64
	if len(active) > 1 {
		id := active[1]
		secondary = &id
	}
	return active[0], secondary, nil
}

func decodeContent(op, b64, ext string) ([]byte, string, error) {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if !validExtension(ext) {
		return nil, "", errs.E(errs.ValidationFailed, op, fmt.Errorf("invalid file extension %q", ext))
	}
	content, err := storage.DecodeTransfer(b64)
	if err != nil {
		return nil, "", err
	}
	return content, ext, nil
}

// validExtension accepts "", "pdf" and compound forms such as "tar.gz".
// Every dot-separated segment must be non-empty and free of separators.
func validExtension(ext string) bool {
	if ext == "" {
		return true
	}
	if len(ext) > maxExtensionLength || strings.ContainsAny(ext, `/\ `) {
		return false
	}
	for _, seg := range strings.Split(ext, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// newFileName returns a random UUID file name keeping ext.
func newFileName(ext string) string {
	name := uuid.NewString()
	if ext == "" {
		return name
	}
	return name + "." + ext
}

func checkFileName(name string) error {
	switch {
	case name == "":
		return errors.New("file name is required")
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return fmt.Errorf("file name %q must be a single path segment", name)
	}
	return nil
}
