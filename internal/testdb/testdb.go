package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/flowregistry/internal/ciutil"
	"github.com/phrazzld/flowregistry/internal/config"
	"github.com/phrazzld/flowregistry/internal/platform/database"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds fixture setup.
const TestTimeout = 10 * time.Second

// Config returns the configuration of a private in-memory SQLite database.
func Config() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:       database.DriverSQLite,
		URL:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// Open returns a new in-memory database with every migration applied.
// The database is closed when the test finishes.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, _, err := database.Open(ctx, Config(), nil)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	require.NoError(t, database.Migrate(ctx, db, database.DriverSQLite, database.MigrateUp, nil),
		"failed to migrate test database")
	return db
}

// Template returns a statement template over db configured like production code.
func Template(db *sql.DB) *sqlexec.Template {
	return database.NewTemplate(db, sqlexec.Question, nil)
}

// WithTx runs fn in a transaction that is rolled back afterwards.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}

// Count returns the number of rows in table.
func Count(t testing.TB, db store.DBTX, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// OpenPostgres connects to the PostgreSQL database named by
// REGISTRY_TEST_POSTGRES_URL (or DATABASE_URL) and rebuilds the schema from
// scratch. The test is skipped when neither variable is set. Every table in
// the target database is dropped, before the test and again after it.
func OpenPostgres(t testing.TB) *sql.DB {
	t.Helper()

	url := ciutil.TestPostgresURL(nil)
	if url == "" {
		t.Skipf("set %s to run PostgreSQL integration tests", ciutil.EnvTestPostgresURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	cfg := config.DatabaseConfig{
		Driver:       database.DriverPostgres,
		URL:          url,
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}
	db, _, err := database.Open(ctx, cfg, nil)
	require.NoError(t, err, "failed to open postgres test database")

	require.NoError(t, database.Migrate(ctx, db, database.DriverPostgres, database.MigrateReset, nil),
		"failed to reset postgres test database")
	require.NoError(t, database.Migrate(ctx, db, database.DriverPostgres, database.MigrateUp, nil),
		"failed to migrate postgres test database")

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
		defer cancel()
		if err := database.Migrate(ctx, db, database.DriverPostgres, database.MigrateReset, nil); err != nil {
			t.Logf("warning: failed to reset postgres test database: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close postgres test database: %v", err)
		}
	})
	return db
}
