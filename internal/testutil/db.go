package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	// Register the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/crimetracker/crimetracker-api/internal/migrate"
)

// TestingTB is the subset of testing.TB the helpers need.
type TestingTB interface {
	Helper()
	Cleanup(func())
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// InfraConfig describes the test infrastructure. Integration tests skip when
// it is unreachable unless the matching Require flag is set.
type InfraConfig struct {
	DBHost     string `env:"TEST_DB_HOST"     envDefault:"localhost"`
	DBPort     string `env:"TEST_DB_PORT"     envDefault:"55432"`
	DBUser     string `env:"TEST_DB_USER"     envDefault:"crimetracker"`
	DBPassword string `env:"TEST_DB_PASSWORD" envDefault:"crimetracker"`
	DBName     string `env:"TEST_DB_NAME"     envDefault:"crimetracker"`
	DBSSLMode  string `env:"DB_SSL_MODE"      envDefault:"disable"`
	// Ephemeral gives every test its own schema instead of truncating shared tables.
	Ephemeral  bool   `env:"TEST_DB_EPHEMERAL"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:56379"`
	RedisDB   int    `env:"TEST_REDIS_DB" envDefault:"1"`

	RequireInfra bool `env:"TEST_REQUIRE_INFRA"`
	RequireDB    bool `env:"TEST_REQUIRE_DB"`
	RequireRedis bool `env:"TEST_REQUIRE_REDIS"`
}

// LoadInfraConfig reads InfraConfig from the environment.
func LoadInfraConfig() (InfraConfig, error) {
	return env.ParseAs[InfraConfig]()
}

// DSN builds the postgres URL, optionally pinning search_path to schema.
func (c InfraConfig) DSN(schema string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)
	if schema != "" {
		q.Set("search_path", schema+",public")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (c InfraConfig) dbRequired() bool    { return c.RequireDB || c.RequireInfra }
func (c InfraConfig) redisRequired() bool { return c.RequireRedis || c.RequireInfra }

func mustInfraConfig(t TestingTB) InfraConfig {
	t.Helper()
	cfg, err := LoadInfraConfig()
	if err != nil {
		t.Fatalf("parse test infra config: %v", err)
	}
	return cfg
}

// cleanupTables lists tables in child-before-parent order.
var cleanupTables = []string{ //nolint:gochecknoglobals // fixed table order
	"report_comments",
	"notifications",
	"witness_reports",
	"audit_logs",
	"reports",
	"feedback",
	"profiles",
}

// SkipIfNoTestDB skips the test when Postgres is unreachable.
func SkipIfNoTestDB(t TestingTB) {
	t.Helper()
	cfg := mustInfraConfig(t)
	db, err := openAndPing(cfg.DSN(""), 2*time.Second)
	if err != nil {
		if cfg.dbRequired() {
			t.Fatal("test database not available:", err)
		}
		t.Skip("test database not available:", err)
	}
	closeAndLog(t, "availability check db", db)
}

// WithAutoDB runs fn against a migrated, empty database. Shared mode truncates
// tables before and after; ephemeral mode drops its schema on cleanup.
func WithAutoDB(t TestingTB, fn func(*sql.DB)) {
	t.Helper()
	SkipIfNoTestDB(t)
	cfg := mustInfraConfig(t)
	if cfg.Ephemeral {
		fn(setupEphemeralDB(t, cfg))
		return
	}
	fn(setupSharedDB(t, cfg))
}

func setupSharedDB(t TestingTB, cfg InfraConfig) *sql.DB {
	t.Helper()
	db, err := openAndPing(cfg.DSN(""), 5*time.Second)
	if err != nil {
		t.Fatal("connect test database:", err)
	}
	migrateOrFail(t, db)
	truncateAll(t, db)
	t.Cleanup(func() {
		truncateAll(t, db)
		closeAndLog(t, "test db", db)
	})
	return db
}

func setupEphemeralDB(t TestingTB, cfg InfraConfig) *sql.DB {
	t.Helper()
	admin, err := openAndPing(cfg.DSN(""), 5*time.Second)
	if err != nil {
		t.Fatal("connect admin database:", err)
	}
	schema := schemaName()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		closeAndLog(t, "admin db", admin)
		t.Fatalf("create schema %s: %v", schema, err)
	}

	db, err := openAndPing(cfg.DSN(schema), 5*time.Second)
	if err != nil {
		closeAndLog(t, "admin db", admin)
		t.Fatal("connect schema database:", err)
	}
	t.Logf("using ephemeral schema %s", schema)
	t.Cleanup(func() {
		closeAndLog(t, "schema db", db)
		dropCtx, dropCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dropCancel()
		if _, dropErr := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); dropErr != nil {
			t.Logf("warning: drop schema %s: %v", schema, dropErr)
		}
		closeAndLog(t, "admin db", admin)
	})
	migrateOrFail(t, db)
	return db
}

func openAndPing(dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateOrFail(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := migrate.Run(ctx, db); err != nil {
		t.Fatal("run migrations:", err)
	}
}

func truncateAll(t TestingTB, db *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "TRUNCATE "+strings.Join(cleanupTables, ", ")+" CASCADE"); err != nil {
		t.Fatalf("truncate test tables: %v", err)
	}
}

// schemaName returns "t_" plus 8 random hex characters.
func schemaName() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b) // never fails since Go 1.24
	return "t_" + hex.EncodeToString(b)
}

func closeAndLog(t TestingTB, name string, c interface{ Close() error }) {
	if err := c.Close(); err != nil {
		t.Logf("warning: close %s: %v", name, err)
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }
