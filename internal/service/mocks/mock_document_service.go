package mocks

import (
	"context"
	"time"

	"docserver/internal/model"
	"docserver/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) StoreDocumentFirstTime(ctx context.Context, req service.UploadRequest) (*model.StoredDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) StoreReplacementDocument(ctx context.Context, req service.ReplacementRequest) (*model.StoredDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) ReadStoredDocument(ctx context.Context, id string) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) GetStoredDocument(ctx context.Context, id string) (*model.StoredDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, documentTypeID int64, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, documentTypeID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) ListExpiredDocuments(ctx context.Context, before time.Time, limit int) ([]model.ExpiringDocument, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ExpiringDocument), args.Error(1)
}

func (m *MockDocumentService) StoreFileOnStorageMedia(ctx context.Context, req service.StoreFileRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
