package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/member-crm/internal/config"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

// clearSecrets keeps variables from the developer's shell out of the test.
func clearSecrets(t *testing.T) {
	for _, k := range []string{
		"APP_POSTGRES_USER", "APP_POSTGRES_PASSWORD", "APP_POSTGRES_DB",
		"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
		"DB_USER", "DB_PASSWORD", "DB_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearSecrets(t)
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "member-crm.db", cfg.Database.SQLitePath)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "log", cfg.Events.Driver)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
}

func TestLoad_PostgresFromYAMLAndEnv(t *testing.T) {
	clearSecrets(t)
	path := writeTempConfig(t, `
app:
  env: test
  port: 18080

logger:
  level: info
  format: json

database:
  driver: postgres

postgres:
  host: 127.0.0.1
  port: 5432
  sslmode: disable
  max_conns: 5
  min_conns: 1
  max_conn_lifetime: 60
  max_conn_idle_time: 30
  health_check_period: 15

pagination:
  default_page_size: 25
  max_page_size: 50
`)
	t.Setenv("APP_POSTGRES_USER", "testuser")
	t.Setenv("POSTGRES_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18080, cfg.App.Port)
	assert.Equal(t, "testuser", cfg.Postgres.User)
	assert.Equal(t, "testpass", cfg.Postgres.Password)
	assert.Equal(t, "testdb", cfg.Postgres.DBName)
	assert.Equal(t, "127.0.0.1", cfg.Postgres.Host)
	assert.Equal(t, int32(5), cfg.Postgres.MaxConns)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 25, cfg.Pagination.DefaultPageSize)
}

func TestLoad_EnvOverridesNestedKeys(t *testing.T) {
	clearSecrets(t)
	t.Setenv("APP_DATABASE_DRIVER", "memory")
	t.Setenv("APP_CACHE_DRIVER", "none")
	t.Setenv("APP_LOGGER_LEVEL", "warn")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Cache.Driver)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"postgres without secrets", "database:\n  driver: postgres\n"},
		{"unknown driver", "database:\n  driver: mongo\n"},
		{"default page above max", "pagination:\n  default_page_size: 200\n  max_page_size: 100\n"},
		{"kafka without topic", "events:\n  driver: kafka\nkafka:\n  topic: \"\"\n"},
		{"bad gin mode", "app:\n  gin_mode: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearSecrets(t)
			_, err := config.Load(writeTempConfig(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "config file not found")
}
