package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"modernc.org/sqlite"

	"github.com/maxviazov/member-crm/internal/config"
	"github.com/maxviazov/member-crm/internal/query"
)

// Database is an opened SQL backend: the *sql.DB handle the stores share plus the dialect
// used to render their statements.
type Database struct {
	DB      *sql.DB
	Dialect query.Dialect
	pool    *pgxpool.Pool
}

// Open connects to the configured SQL driver. The memory driver has no database and is rejected.
func Open(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Database, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.Postgres, logger)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Database.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("driver %q has no SQL database", cfg.Database.Driver)
	}
}

// PostgresDSN builds the connection URL so credentials are escaped properly.
func PostgresDSN(pc config.PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", pc.Host, pc.Port),
		Path:   pc.DBName,
	}
	if pc.User != "" || pc.Password != "" {
		u.User = url.UserPassword(pc.User, pc.Password)
	}
	q := u.Query()
	if pc.SSLMode != "" {
		q.Set("sslmode", pc.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func openPostgres(ctx context.Context, pc config.PostgresConfig, logger *zerolog.Logger) (*Database, error) {
	poolConfig, err := pgxpool.ParseConfig(PostgresDSN(pc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newPgxLogger(*logger),
		LogLevel: traceLevel(logger.GetLevel()),
	}

	if pc.MaxConns > 0 {
		poolConfig.MaxConns = pc.MaxConns
	}
	poolConfig.MinConns = pc.MinConns
	poolConfig.MaxConnLifetime = time.Duration(pc.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = time.Duration(pc.MaxConnIdleTime) * time.Second
	if pc.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = time.Duration(pc.HealthCheckPeriod) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Ping with a timeout so start-up does not hang on a dead host.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info().
		Str("host", pc.Host).
		Int("port", pc.Port).
		Str("user", pc.User).
		Str("db", pc.DBName).
		Msg("Successfully connected to PostgreSQL")

	return &Database{DB: stdlib.OpenDBFromPool(pool), Dialect: query.Postgres, pool: pool}, nil
}

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(query.SQLiteFold, 1, foldText)
}

// foldText is the Unicode lower() used by case-insensitive search and text ordering on SQLite.
// Non-text values pass through so LIKE can apply its usual coercion.
func foldText(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// OpenSQLite opens (or creates) a SQLite database with foreign keys enforced.
// ":memory:" gives a private database that lives as long as the returned handle.
func OpenSQLite(ctx context.Context, path string, logger *zerolog.Logger) (*Database, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := "file:" + path
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	// ISO timestamps keep text ordering equal to time ordering for UTC values.
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and an in-memory database is per connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	if logger != nil {
		logger.Info().Str("path", path).Msg("Opened SQLite database")
	}
	return &Database{DB: db, Dialect: query.SQLite}, nil
}

// Ping implements Pinger.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return errors.New("database is not open")
	}
	return d.DB.PingContext(ctx)
}

// Close releases the handle and, for Postgres, the underlying pool.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	var err error
	if d.DB != nil {
		err = d.DB.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch {
	case l <= zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case l <= zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case l <= zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case l <= zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	default:
		return tracelog.LogLevelError
	}
}

var _ Pinger = (*Database)(nil)
