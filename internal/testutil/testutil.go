package testutil

// Package testutil provides shared helpers for integration tests. Database
// and Redis helpers skip the calling test when the backing service is not
// reachable, so unit test runs stay green without local infrastructure.

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/taxlink/partner-portal/internal/migrate"
)

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns the test database configuration, honoring
// TEST_DB_* environment overrides.
func DefaultTestDBConfig() TestDBConfig {
	cfg := TestDBConfig{
		Host:     "localhost",
		Port:     "55432",
		User:     "portal",
		Password: "portal",
		DBName:   "portal_test",
	}
	if v := os.Getenv("TEST_DB_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("TEST_DB_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("TEST_DB_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("TEST_DB_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("TEST_DB_NAME"); v != "" {
		cfg.DBName = v
	}
	return cfg
}

// DSN renders the config as a postgres connection URL.
func (c TestDBConfig) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String()
}

// SetupTestDB opens the test database, applies migrations, and truncates
// portal tables. The test is skipped when the database is unreachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := DefaultTestDBConfig()
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		t.Skipf("test database not available at %s:%s: %v", cfg.Host, cfg.Port, pingErr)
	}

	if migrateErr := migrate.Run(context.Background(), db); migrateErr != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", migrateErr)
	}

	if _, truncErr := db.ExecContext(context.Background(),
		`TRUNCATE TABLE bank_accounts, partners CASCADE`); truncErr != nil {
		_ = db.Close()
		t.Fatalf("truncate tables: %v", truncErr)
	}

	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("warning: close test db: %v", cerr)
		}
	})
	return db
}

// SetupTestRedis creates a Redis client for testing.
// The test is skipped when Redis is not available.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	dbIndex := 9
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			dbIndex = n
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: close redis client after ping error: %v", cerr)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	return client
}

// StringPtr returns a pointer to the given string value.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool { return &b }
