package mocks

import (
	"context"

	"docserver/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockStore hands out the embedded repository mocks. WithinTx runs the callback
// against the same mocks, then returns the configured commit error.
type MockStore struct {
	mock.Mock

	Apps     *MockApplicationRepository
	Types    *MockDocumentTypeRepository
	Nodes    *MockStorageNodeRepository
	Docs     *MockStoredDocumentRepository
	Expiring *MockExpiringDocumentRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		Apps:     &MockApplicationRepository{},
		Types:    &MockDocumentTypeRepository{},
		Nodes:    &MockStorageNodeRepository{},
		Docs:     &MockStoredDocumentRepository{},
		Expiring: &MockExpiringDocumentRepository{},
	}
}

func (m *MockStore) Applications() repository.ApplicationRepository           { return m.Apps }
func (m *MockStore) DocumentTypes() repository.DocumentTypeRepository         { return m.Types }
func (m *MockStore) StorageNodes() repository.StorageNodeRepository           { return m.Nodes }
func (m *MockStore) StoredDocuments() repository.StoredDocumentRepository     { return m.Docs }
func (m *MockStore) ExpiringDocuments() repository.ExpiringDocumentRepository { return m.Expiring }

func (m *MockStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	args := m.Called(ctx)
	if err := fn(m); err != nil {
		return err
	}
	return args.Error(0)
}

// AssertAll checks the expectations of the store and every repository.
func (m *MockStore) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Apps.AssertExpectations(t)
	m.Types.AssertExpectations(t)
	m.Nodes.AssertExpectations(t)
	m.Docs.AssertExpectations(t)
	m.Expiring.AssertExpectations(t)
}
