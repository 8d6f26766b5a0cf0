package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Metadata store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object store endpoint is configured.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// LogConfig controls the process logger and its optional rotating file sink.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables and, optionally, a config file.
type AppConfig struct {
	AppHost        string
	Port           string
	MetadataDriver string
	SQLitePath     string
	Database       DatabaseConfig
	MinIO          MinIOConfig
	Log            LogConfig
}

var defaults = map[string]any{
	"APP_HOST":                 "localhost:8080",
	"PORT":                     "8080",
	"METADATA_DRIVER":          DriverPostgres,
	"SQLITE_PATH":              "docserver.db",
	"DB_HOST":                  "",
	"DB_PORT":                  "5432",
	"DB_USER":                  "",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "",
	"DB_SSLMODE":               "disable",
	"DB_MAX_OPEN_CONNS":        10,
	"DB_MAX_IDLE_CONNS":        5,
	"DB_CONN_MAX_LIFETIME_SEC": 300,
	"MINIO_ENDPOINT":           "",
	"MINIO_ACCESS_KEY":         "",
	"MINIO_SECRET_KEY":         "",
	"MINIO_BUCKET":             "",
	"MINIO_USE_SSL":            false,
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
	"LOG_FILE":                 "",
	"LOG_MAX_SIZE_MB":          100,
	"LOG_MAX_BACKUPS":          3,
	"LOG_MAX_AGE_DAYS":         28,
	"LOG_COMPRESS":             false,
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return fromViper(newViper())
}

// LoadFile reads configuration from the given YAML, TOML or JSON file.
// Keys use the same names as the environment variables; environment
// variables still win over file values.
func LoadFile(path string) (*AppConfig, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c *AppConfig) Validate() error {
	switch c.MetadataDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported METADATA_DRIVER %q", c.MetadataDriver)
	}
	if c.MetadataDriver == DriverSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
	}
	return nil
}

func fromViper(v *viper.Viper) *AppConfig {
	return &AppConfig{
		AppHost:        v.GetString("APP_HOST"),
		Port:           v.GetString("PORT"),
		MetadataDriver: strings.ToLower(v.GetString("METADATA_DRIVER")),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		Database: DatabaseConfig{
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetString("DB_PORT"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			Name:               v.GetString("DB_NAME"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetimeSec: v.GetInt("DB_CONN_MAX_LIFETIME_SEC"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
			Compress:   v.GetBool("LOG_COMPRESS"),
		},
	}
}
