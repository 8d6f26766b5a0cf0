package mocks

import (
	"context"
	"time"

	"docserver/internal/model"
	"docserver/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockApplicationRepository struct {
	mock.Mock
}

func (m *MockApplicationRepository) Create(ctx context.Context, app *model.Application) (*model.Application, error) {
	args := m.Called(ctx, app)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockApplicationRepository) FindByID(ctx context.Context, id int64) (*model.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Application), args.Error(1)
}

func (m *MockApplicationRepository) Update(ctx context.Context, app *model.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

type MockStorageNodeRepository struct {
	mock.Mock
}

func (m *MockStorageNodeRepository) Create(ctx context.Context, node *model.StorageNode) (*model.StorageNode, error) {
	args := m.Called(ctx, node)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageNode), args.Error(1)
}

func (m *MockStorageNodeRepository) FindByID(ctx context.Context, id int64) (*model.StorageNode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageNode), args.Error(1)
}

func (m *MockStorageNodeRepository) Update(ctx context.Context, node *model.StorageNode) error {
	args := m.Called(ctx, node)
	return args.Error(0)
}

func (m *MockStorageNodeRepository) List(ctx context.Context) ([]model.StorageNode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StorageNode), args.Error(1)
}

type MockDocumentTypeRepository struct {
	mock.Mock
}

func (m *MockDocumentTypeRepository) Create(ctx context.Context, dt *model.DocumentType) (*model.DocumentType, error) {
	args := m.Called(ctx, dt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) FindByID(ctx context.Context, id int64) (*model.DocumentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentType), args.Error(1)
}

func (m *MockDocumentTypeRepository) Update(ctx context.Context, dt *model.DocumentType) error {
	args := m.Called(ctx, dt)
	return args.Error(0)
}

func (m *MockDocumentTypeRepository) ListByStorageNode(ctx context.Context, nodeID int64) ([]model.DocumentType, error) {
	args := m.Called(ctx, nodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentType), args.Error(1)
}

type MockStoredDocumentRepository struct {
	mock.Mock
}

func (m *MockStoredDocumentRepository) Create(ctx context.Context, doc *model.StoredDocument) (*model.StoredDocument, error) {
	args := m.Called(ctx, doc)
	if f, ok := args.Get(0).(func(context.Context, *model.StoredDocument) *model.StoredDocument); ok {
		return f(ctx, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockStoredDocumentRepository) FindByID(ctx context.Context, id string) (*model.StoredDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockStoredDocumentRepository) Replace(ctx context.Context, doc *model.StoredDocument, previousFileName string) error {
	args := m.Called(ctx, doc, previousFileName)
	return args.Error(0)
}

func (m *MockStoredDocumentRepository) RecordAccess(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockStoredDocumentRepository) ListByDocumentType(ctx context.Context, documentTypeID int64, pq repository.PageQuery) (*repository.PageResult[model.StoredDocument], error) {
	args := m.Called(ctx, documentTypeID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.StoredDocument]), args.Error(1)
}

type MockExpiringDocumentRepository struct {
	mock.Mock
}

func (m *MockExpiringDocumentRepository) Upsert(ctx context.Context, exp *model.ExpiringDocument) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

func (m *MockExpiringDocumentRepository) FindByDocumentID(ctx context.Context, storedDocumentID string) (*model.ExpiringDocument, error) {
	args := m.Called(ctx, storedDocumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ExpiringDocument), args.Error(1)
}

func (m *MockExpiringDocumentRepository) ListExpired(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpiringDocument), args.Error(1)
}
