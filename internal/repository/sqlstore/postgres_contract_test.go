package sqlstore_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/repository"
	"github.com/maxviazov/member-crm/internal/repository/contract"
	"github.com/maxviazov/member-crm/internal/repository/sqlstore"
)

var (
	pg     *repository.Database
	skippy bool
)

func TestMain(m *testing.M) {
	if os.Getenv("CONTRACT_TESTS") != "1" {
		// Postgres suites are opt-in; SQLite ones always run.
		skippy = true
		os.Exit(m.Run())
	}

	pc, ok := postgresFromEnv()
	if !ok {
		fmt.Println("[contract] APP_POSTGRES_* env not set; skipping postgres")
		skippy = true
		os.Exit(m.Run())
	}

	ctx := context.Background()
	logger := zerolog.Nop()
	var err error
	pg, err = repository.Open(ctx, &config.Config{Database: config.DatabaseConfig{Driver: config.DriverPostgres}, Postgres: pc}, &logger)
	if err != nil {
		fmt.Println("[contract] open error:", err)
		os.Exit(1)
	}
	migrator, err := repository.NewMigrator(pg, logger)
	if err != nil {
		fmt.Println("[contract] migrator error:", err)
		os.Exit(1)
	}
	if err := migrator.Up(ctx); err != nil {
		fmt.Println("[contract] goose up error:", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = pg.Close()
	os.Exit(code)
}

func postgresFromEnv() (config.PostgresConfig, bool) {
	port, _ := strconv.Atoi(firstNonEmpty(os.Getenv("APP_POSTGRES_PORT"), os.Getenv("POSTGRES_PORT"), "5432"))
	pc := config.PostgresConfig{
		Host:     firstNonEmpty(os.Getenv("APP_POSTGRES_HOST"), os.Getenv("POSTGRES_HOST"), "localhost"),
		Port:     port,
		User:     firstNonEmpty(os.Getenv("APP_POSTGRES_USER"), os.Getenv("POSTGRES_USER"), os.Getenv("DB_USER")),
		Password: firstNonEmpty(os.Getenv("APP_POSTGRES_PASSWORD"), os.Getenv("POSTGRES_PASSWORD"), os.Getenv("DB_PASSWORD")),
		DBName:   firstNonEmpty(os.Getenv("APP_POSTGRES_DB"), os.Getenv("POSTGRES_DB"), os.Getenv("DB_NAME")),
		SSLMode:  firstNonEmpty(os.Getenv("APP_POSTGRES_SSLMODE"), os.Getenv("POSTGRES_SSLMODE"), "disable"),
		MaxConns: 4,
	}
	return pc, pc.User != "" && pc.Password != "" && pc.DBName != ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := pg.DB.Exec(`TRUNCATE TABLE notes, cancellations, interactions, opportunities, contacts, members,
		organizations, naics_codes, membership_types, production_emails RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate failed: %v", err)
	}
}

func makePostgresRegistry(t *testing.T) (*repository.Registry, func()) {
	if skippy {
		t.Skip("contract tests skipped; set CONTRACT_TESTS=1 and provide DB env")
	}
	truncateAll(t)
	return sqlstore.NewRegistry(pg), func() { truncateAll(t) }
}

func TestRepositories_PostgresContract(t *testing.T) {
	contract.Run(t, makePostgresRegistry, contract.Capabilities{Constraints: true, Transactional: true})
}
