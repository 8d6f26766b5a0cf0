package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"docserver/internal/config"
	"docserver/internal/database"
	"docserver/internal/database/migration"
	"docserver/internal/repository"
	"docserver/internal/repository/postgres"
	"docserver/internal/repository/sqlstore"
	"docserver/internal/service"
	"docserver/internal/storage"
)

// environment is filled by the root command before any subcommand runs.
type environment struct {
	cfg *config.AppConfig
	log *logrus.Logger
}

// metadata is an open metadata store plus what the commands need around it.
type metadata struct {
	store   repository.Store
	ping    func(context.Context) error
	migrate func(context.Context) error
	close   func() error
}

func (e *environment) openMetadata(ctx context.Context) (*metadata, error) {
	switch e.cfg.MetadataDriver {
	case config.DriverSQLite:
		s, err := sqlstore.Open(ctx, sqlstore.Config{Path: e.cfg.SQLitePath})
		if err != nil {
			return nil, err
		}
		return &metadata{store: s, ping: s.Health, migrate: s.Migrate, close: s.Close}, nil
	default:
		db, err := database.NewPostgres(ctx, e.cfg.Database, e.log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &metadata{
			store: postgres.NewStore(db),
			ping:  db.PingContext,
			migrate: func(ctx context.Context) error {
				return migration.EnsureMigrated(ctx, db, e.log, e.cfg.Database.Host)
			},
			close: db.Close,
		}, nil
	}
}

// storageProvider serves hosted nodes from the local filesystem and object
// store nodes from MinIO when an endpoint is configured.
func (e *environment) storageProvider(ctx context.Context) (storage.Provider, error) {
	var objects storage.Storage
	if e.cfg.MinIO.Enabled() {
		m, err := storage.NewMinIO(ctx, e.cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize object storage: %w", err)
		}
		objects = m
	}
	return storage.NewRegistry(storage.NewLocal(), objects), nil
}

func (e *environment) documentService(ctx context.Context, md *metadata, opts ...service.Option) (service.DocumentService, error) {
	files, err := e.storageProvider(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]service.Option{service.WithLogger(e.log)}, opts...)
	return service.NewDocumentService(md.store, files, opts...), nil
}
