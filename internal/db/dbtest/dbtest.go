// Package dbtest opens a migrated, empty Postgres database for repository integration tests.
// Tests are skipped unless TEST_DATABASE_URL is set.
package dbtest

import (
	"database/sql"
	"os"
	"testing"

	"taskhub/backend/internal/db"
	"taskhub/backend/internal/db/migrate"
)

// EnvVar names the DSN of a disposable test database.
const EnvVar = "TEST_DATABASE_URL"

const truncateAll = `TRUNCATE audit_log, share_tokens, attachments, comments, tasks, projects,
	sessions, users_organizations, users, organizations CASCADE`

// Open migrates the test database up, truncates every table and returns a pool closed on cleanup.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv(EnvVar)
	if dsn == "" {
		t.Skipf("%s not set, skipping integration test", EnvVar)
	}
	if _, err := migrate.Run(dsn, migrate.Up); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := conn.Exec(truncateAll); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn
}

// SeedOrg inserts an organization and returns its id.
func SeedOrg(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()
	var id string
	if err := conn.QueryRow(`INSERT INTO organizations (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return id
}

// SeedUser inserts a user with a placeholder password and returns its id.
func SeedUser(t *testing.T, conn *sql.DB, email string) string {
	t.Helper()
	var id string
	if err := conn.QueryRow(
		`INSERT INTO users (email, password_hash, salt) VALUES ($1, 'x', 'x') RETURNING id`, email,
	).Scan(&id); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return id
}
