package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"docserver/internal/model"
	"docserver/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "metadata.db")})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type fixture struct {
	app  *model.Application
	node *model.StorageNode
	dt   *model.DocumentType
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	app, err := s.Applications().Create(ctx, &model.Application{Name: "billing", IsActive: true})
	require.NoError(t, err)

	node, err := s.StorageNodes().Create(ctx, &model.StorageNode{
		Name:     "node1",
		RootPath: "/data/node1",
		Location: model.LocationHostedLocal,
		Speed:    model.SpeedHot,
		IsActive: true,
	})
	require.NoError(t, err)

	dt, err := s.DocumentTypes().Create(ctx, &model.DocumentType{
		ApplicationID:    app.ID,
		Name:             "Invoices",
		FolderName:       "INV",
		StorageMode:      model.StorageModeReplaceable,
		InactiveLifetime: model.LifetimeNever,
		Nodes:            []model.NodeRef{{Role: model.NodeRoleActive, Slot: 1, NodeID: node.ID}},
		IsActive:         true,
	})
	require.NoError(t, err)

	return fixture{app: app, node: node, dt: dt}
}

func newDocument(f fixture, name string, created time.Time) *model.StoredDocument {
	return &model.StoredDocument{
		ID:                   uuid.NewString(),
		Status:               model.DocumentStatusActive,
		Description:          "scan",
		StorageFolder:        "/data/node1/R/INV/2026/10",
		FileName:             name,
		Size:                 42,
		IsAlive:              true,
		DocumentTypeID:       f.dt.ID,
		PrimaryStorageNodeID: f.node.ID,
		CreatedAt:            created,
		ModifiedAt:           created,
	}
}

func TestApplications(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	app, err := s.Applications().Create(ctx, &model.Application{Name: "hr", IsActive: false})
	require.NoError(t, err)
	assert.NotZero(t, app.ID)
	assert.False(t, app.IsActive)
	assert.False(t, app.CreatedAt.IsZero())

	now := time.Now().UTC()
	app.Name = "human-resources"
	app.ModifiedAt = &now
	require.NoError(t, s.Applications().Update(ctx, app))

	got, err := s.Applications().FindByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "human-resources", got.Name)
	require.NotNil(t, got.ModifiedAt)

	_, err = s.Applications().FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Applications().Update(ctx, &model.Application{ID: 999}), repository.ErrNotFound)
}

func TestStorageNodes(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	got, err := s.StorageNodes().FindByID(ctx, f.node.ID)
	require.NoError(t, err)
	assert.Equal(t, "/data/node1", got.RootPath)
	assert.Equal(t, model.LocationHostedLocal, got.Location)
	assert.Equal(t, model.SpeedHot, got.Speed)

	got.Speed = model.SpeedCold
	got.IsActive = false
	require.NoError(t, s.StorageNodes().Update(ctx, got))

	nodes, err := s.StorageNodes().List(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, model.SpeedCold, nodes[0].Speed)
	assert.False(t, nodes[0].IsActive)

	_, err = s.StorageNodes().FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentTypes(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	archive, err := s.StorageNodes().Create(ctx, &model.StorageNode{
		Name:     "vault",
		RootPath: "/archive",
		Location: model.LocationHostedSMB,
		Speed:    model.SpeedCold,
		IsActive: true,
	})
	require.NoError(t, err)

	got, err := s.DocumentTypes().FindByID(ctx, f.dt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StorageModeReplaceable, got.StorageMode)
	assert.Equal(t, []int64{f.node.ID}, got.NodesFor(model.NodeRoleActive))

	got.InactiveLifetime = model.LifetimeYearsSeven
	got.Nodes = append(got.Nodes, model.NodeRef{Role: model.NodeRoleArchival, Slot: 1, NodeID: archive.ID})
	require.NoError(t, s.DocumentTypes().Update(ctx, got))

	reloaded, err := s.DocumentTypes().FindByID(ctx, f.dt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LifetimeYearsSeven, reloaded.InactiveLifetime)
	assert.Equal(t, []int64{archive.ID}, reloaded.NodesFor(model.NodeRoleArchival))

	byNode, err := s.DocumentTypes().ListByStorageNode(ctx, archive.ID)
	require.NoError(t, err)
	require.Len(t, byNode, 1)
	assert.Equal(t, f.dt.ID, byNode[0].ID)
	assert.Len(t, byNode[0].Nodes, 2)

	_, err = s.DocumentTypes().FindByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoredDocuments_CreateFindReplace(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	created := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	doc, err := s.StoredDocuments().Create(ctx, newDocument(f, "a.pdf", created))
	require.NoError(t, err)

	got, err := s.StoredDocuments().FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", got.FileName)
	assert.Equal(t, model.DocumentStatusActive, got.Status)
	assert.Nil(t, got.SecondaryStorageNodeID)
	assert.True(t, created.Equal(got.CreatedAt))

	replacement := *got
	replacement.FileName = "b.pdf"
	replacement.Size = 7
	replacement.Description = "rescan"
	replacement.ModifiedAt = created.Add(time.Hour)
	require.NoError(t, s.StoredDocuments().Replace(ctx, &replacement, "a.pdf"))

	// A second writer still holding the old file name loses.
	loser := replacement
	loser.FileName = "c.pdf"
	err = s.StoredDocuments().Replace(ctx, &loser, "a.pdf")
	assert.ErrorIs(t, err, repository.ErrStale)

	got, err = s.StoredDocuments().FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "b.pdf", got.FileName)
	assert.Equal(t, int64(7), got.Size)
	assert.Equal(t, "rescan", got.Description)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = s.StoredDocuments().FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoredDocuments_RecordAccess(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	doc, err := s.StoredDocuments().Create(ctx, newDocument(f, "a.pdf", time.Now().UTC()))
	require.NoError(t, err)

	at := time.Now().UTC()
	require.NoError(t, s.StoredDocuments().RecordAccess(ctx, doc.ID, at))
	require.NoError(t, s.StoredDocuments().RecordAccess(ctx, doc.ID, at))

	got, err := s.StoredDocuments().FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.AccessCount)
	require.NotNil(t, got.LastAccessedAt)
	assert.WithinDuration(t, at, *got.LastAccessedAt, time.Millisecond)

	err = s.StoredDocuments().RecordAccess(ctx, uuid.NewString(), at)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoredDocuments_ListByDocumentType(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"1.pdf", "2.pdf", "3.pdf"} {
		_, err := s.StoredDocuments().Create(ctx, newDocument(f, name, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}

	page, err := s.StoredDocuments().ListByDocumentType(ctx, f.dt.ID, repository.PageQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "3.pdf", page.Items[0].FileName)
	assert.Equal(t, "2.pdf", page.Items[1].FileName)

	page, err = s.StoredDocuments().ListByDocumentType(ctx, f.dt.ID, repository.PageQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "1.pdf", page.Items[0].FileName)
}

func TestExpiringDocuments(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	soon, err := s.StoredDocuments().Create(ctx, newDocument(f, "soon.tmp", time.Now().UTC()))
	require.NoError(t, err)
	later, err := s.StoredDocuments().Create(ctx, newDocument(f, "later.tmp", time.Now().UTC()))
	require.NoError(t, err)

	t0 := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: soon.ID, ExpiresAt: t0.Add(time.Hour)}))
	require.NoError(t, s.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: later.ID, ExpiresAt: t0.Add(48 * time.Hour)}))

	// Upserting again moves the expiration instead of adding a row.
	require.NoError(t, s.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: soon.ID, ExpiresAt: t0.Add(2 * time.Hour)}))

	got, err := s.ExpiringDocuments().FindByDocumentID(ctx, soon.ID)
	require.NoError(t, err)
	assert.True(t, t0.Add(2*time.Hour).Equal(got.ExpiresAt))

	expired, err := s.ExpiringDocuments().ListExpired(ctx, t0.Add(24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, soon.ID, expired[0].StoredDocumentID)

	_, err = s.ExpiringDocuments().FindByDocumentID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	doc := newDocument(f, "a.pdf", time.Now().UTC())
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.StoredDocuments().Create(ctx, doc); err != nil {
			return err
		}
		return tx.WithinTx(ctx, func(inner repository.Store) error {
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.StoredDocuments().FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTx_Commits(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()
	doc := newDocument(f, "a.pdf", time.Now().UTC())

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.StoredDocuments().Create(ctx, doc); err != nil {
			return err
		}
		return tx.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: doc.ID, ExpiresAt: time.Now().Add(time.Hour)})
	})
	require.NoError(t, err)

	_, err = s.StoredDocuments().FindByID(ctx, doc.ID)
	assert.NoError(t, err)
	_, err = s.ExpiringDocuments().FindByDocumentID(ctx, doc.ID)
	assert.NoError(t, err)
}

func TestForeignKeys(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	orphan := newDocument(f, "orphan.pdf", time.Now().UTC())
	orphan.DocumentTypeID = f.dt.ID + 100
	_, err := s.StoredDocuments().Create(ctx, orphan)
	assert.Error(t, err, "a document needs an existing type")

	err = s.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: uuid.NewString(), ExpiresAt: time.Now().UTC()})
	assert.Error(t, err, "an expiration needs an existing document")

	doc, err := s.StoredDocuments().Create(ctx, newDocument(f, "a.tmp", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, s.ExpiringDocuments().Upsert(ctx, &model.ExpiringDocument{StoredDocumentID: doc.ID, ExpiresAt: time.Now().UTC()}))

	require.NoError(t, s.db.WithContext(ctx).Delete(&storedDocumentRow{ID: doc.ID}).Error)
	_, err = s.ExpiringDocuments().FindByDocumentID(ctx, doc.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound, "deleting a document cascades to its expiration")

	err = s.db.WithContext(ctx).Delete(&storageNodeRow{ID: f.node.ID}).Error
	assert.Error(t, err, "a node referenced by a document type cannot be deleted")
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "/data/meta.db?_pragma=foreign_keys(1)", dsn("/data/meta.db"))
	assert.Equal(t, "file:meta.db?mode=rwc&_pragma=foreign_keys(1)", dsn("file:meta.db?mode=rwc"))
}
