package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, 3, cfg.Database.ConnectRetries)
	require.Equal(t, 5*time.Second, cfg.Database.ConnectBackoff)
	require.Equal(t, "https://datasets.imdbws.com/", cfg.ETL.BaseURL)
	require.Equal(t, 100, cfg.ETL.BatchSize)
	require.Equal(t, 1000, cfg.ETL.ProgressInterval)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  mode: release
database:
  driver: sqlite
  path: /tmp/app.db
etl:
  batch_size: 500
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 500, cfg.ETL.BatchSize)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("ETL_BASE_URL", "http://mirror.local/")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "http://mirror.local/", cfg.ETL.BaseURL)
}

func TestDSN(t *testing.T) {
	pg := DatabaseConfig{
		Driver: "postgres", Host: "localhost", Port: 5432,
		User: "screenrank", Password: "secret", Name: "screenrank", SSLMode: "disable",
	}
	require.Equal(t,
		"host=localhost port=5432 user=screenrank password=secret dbname=screenrank sslmode=disable",
		pg.DSN())

	lite := DatabaseConfig{Driver: "sqlite", Path: "/tmp/app.db"}
	require.Equal(t, "/tmp/app.db", lite.DSN())
}
