// Package testdb provides utilities for tests that run against a real
// database.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"
)

// DatabaseURLEnvVars are checked in order for a test database URL.
var DatabaseURLEnvVars = []string{"SCRY_TEST_DATABASE_URL", "SCRY_TEST_DB_URL"}

// DatabaseURL returns the first test database URL found in the environment,
// or an empty string.
func DatabaseURL() string {
	for _, name := range DatabaseURLEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// RequireDatabaseURL returns the test database URL, skipping the test when
// none is configured.
func RequireDatabaseURL(t testing.TB) string {
	t.Helper()
	url := DatabaseURL()
	if url == "" {
		t.Skipf("no test database configured; set one of %v", DatabaseURLEnvVars)
	}
	return url
}

// WithTx runs fn within a transaction that is always rolled back, so tests
// can modify the database without persisting anything.
func WithTx(t testing.TB, db *sql.DB, fn func(tx *sql.Tx)) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back transaction: %v", err)
		}
	}()

	fn(tx)
}
