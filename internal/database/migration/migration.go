package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"docserver/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
  id          BIGSERIAL   PRIMARY KEY,
  name        TEXT        NOT NULL UNIQUE,
  is_active   BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_at TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_storage_nodes",
		SQL: `CREATE TABLE IF NOT EXISTS storage_nodes (
  id           BIGSERIAL   PRIMARY KEY,
  name         TEXT        NOT NULL UNIQUE,
  description  TEXT        NOT NULL DEFAULT '',
  root_path    TEXT        NOT NULL,
  location     SMALLINT    NOT NULL CHECK (location BETWEEN 1 AND 3),
  speed        SMALLINT    NOT NULL CHECK (speed BETWEEN 1 AND 3),
  is_active    BOOLEAN     NOT NULL DEFAULT TRUE,
  is_test_node BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_document_types",
		SQL: `CREATE TABLE IF NOT EXISTS document_types (
  id                BIGSERIAL   PRIMARY KEY,
  application_id    BIGINT      NOT NULL REFERENCES applications (id),
  name              TEXT        NOT NULL,
  description       TEXT        NOT NULL DEFAULT '',
  folder_name       VARCHAR(10) NOT NULL,
  storage_mode      SMALLINT    NOT NULL CHECK (storage_mode BETWEEN 1 AND 5),
  inactive_lifetime SMALLINT    NOT NULL CHECK (inactive_lifetime BETWEEN 0 AND 15),
  is_active         BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_at       TIMESTAMPTZ,
  UNIQUE (application_id, name)
);`,
	},
	{
		Name: "create_table_document_type_nodes",
		SQL: `CREATE TABLE IF NOT EXISTS document_type_nodes (
  document_type_id BIGINT   NOT NULL REFERENCES document_types (id) ON DELETE CASCADE,
  role             SMALLINT NOT NULL CHECK (role IN (1, 2)),
  slot             SMALLINT NOT NULL CHECK (slot IN (1, 2)),
  storage_node_id  BIGINT   NOT NULL REFERENCES storage_nodes (id),
  PRIMARY KEY (document_type_id, role, slot)
);`,
	},
	{
		Name: "create_index_document_type_nodes_node",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_type_nodes_node ON document_type_nodes (storage_node_id);`,
	},
	{
		Name: "create_table_stored_documents",
		SQL: `CREATE TABLE IF NOT EXISTS stored_documents (
  id                        UUID        PRIMARY KEY,
  status                    SMALLINT    NOT NULL DEFAULT 1,
  description               TEXT        NOT NULL DEFAULT '',
  storage_folder            TEXT        NOT NULL,
  file_name                 TEXT        NOT NULL,
  size                      BIGINT      NOT NULL CHECK (size >= 0),
  is_alive                  BOOLEAN     NOT NULL,
  access_count              BIGINT      NOT NULL DEFAULT 0,
  last_accessed_at          TIMESTAMPTZ,
  document_type_id          BIGINT      NOT NULL REFERENCES document_types (id),
  primary_storage_node_id   BIGINT      NOT NULL REFERENCES storage_nodes (id),
  secondary_storage_node_id BIGINT      REFERENCES storage_nodes (id),
  created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
  modified_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_stored_documents_type_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_stored_documents_type_created ON stored_documents (document_type_id, created_at DESC);`,
	},
	{
		Name: "create_table_expiring_documents",
		SQL: `CREATE TABLE IF NOT EXISTS expiring_documents (
  stored_document_id UUID        PRIMARY KEY REFERENCES stored_documents (id) ON DELETE CASCADE,
  expires_at         TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_expiring_documents_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_expiring_documents_expires_at ON expiring_documents (expires_at);`,
	},
}

// EnsureMigrated checks if the 'stored_documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log logrus.FieldLogger, dbHost string) error {
	start := time.Now()
	log = logging.Component(log, "migration").WithField("db_host", dbHost)

	log.WithField("event", "db_migration_check").Info("checking schema")

	var exists bool
	query := "SELECT to_regclass('public.stored_documents') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}).WithError(err).Error("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.WithFields(logrus.Fields{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("schema already exists, skipping migration")
		return nil
	}

	log.WithField("event", "db_migration_start").Info("applying schema")

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.WithFields(logrus.Fields{
				"event":            "db_migration_failed",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}).WithError(err).Error("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.WithFields(logrus.Fields{
			"event":            "db_migration_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}).Debug("migration step applied")
	}

	log.WithFields(logrus.Fields{
		"event":       "db_migration_success",
		"steps":       len(steps),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("schema migrated")

	return nil
}
