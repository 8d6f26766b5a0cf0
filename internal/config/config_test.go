package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.MetadataDriver)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 300, cfg.Database.ConnMaxLifetimeSec)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)
	assert.False(t, cfg.MinIO.Enabled())
}

func TestLoad_InvalidNumberFallsBackToZero(t *testing.T) {
	t.Setenv("DB_MAX_IDLE_CONNS", "invalid")

	cfg := Load()
	assert.Equal(t, 0, cfg.Database.MaxIdleConns)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docserver.yaml")
	content := []byte(`metadata_driver: sqlite
sqlite_path: /var/lib/docserver/meta.db
port: "9090"
minio_endpoint: minio:9000
minio_bucket: documents
log_file: /var/log/docserver.log
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PORT", "7070")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.MetadataDriver)
	assert.Equal(t, "/var/lib/docserver/meta.db", cfg.SQLitePath)
	assert.Equal(t, "7070", cfg.Port, "environment wins over file")
	assert.True(t, cfg.MinIO.Enabled())
	assert.Equal(t, "/var/log/docserver.log", cfg.Log.File)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("metadata_driver: mongo\n"), 0o600))

		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "METADATA_DRIVER")
	})
}

func TestAppConfig_Validate(t *testing.T) {
	cfg := Load()
	assert.NoError(t, cfg.Validate())

	cfg.MetadataDriver = DriverSQLite
	cfg.SQLitePath = ""
	assert.Error(t, cfg.Validate())
}
