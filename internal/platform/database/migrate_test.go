package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var registryTables = []string{
	"bucket",
	"bucket_item",
	"extension",
	"extension_bundle",
	"extension_bundle_version",
	"extension_bundle_version_dependency",
	"extension_tag",
	"flow",
	"flow_snapshot",
}

func listTables(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name <> ? ORDER BY name`,
		MigrationTableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrateUpAndDown(t *testing.T) {
	ctx := context.Background()
	log, buf := logger.GetTestLogger(t)

	db, _, err := Open(ctx, memoryConfig(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, DriverSQLite, MigrateUp, log))
	assert.Equal(t, registryTables, listTables(t, db))

	version, err := SchemaVersion(ctx, db, DriverSQLite, log)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// applying again is a no-op
	require.NoError(t, Migrate(ctx, db, DriverSQLite, MigrateUp, log))
	require.NoError(t, Migrate(ctx, db, DriverSQLite, MigrateStatus, log))

	require.NoError(t, Migrate(ctx, db, DriverSQLite, MigrateDown, log))
	assert.Empty(t, listTables(t, db))

	version, err = SchemaVersion(ctx, db, DriverSQLite, log)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)

	logger.AssertLogContains(t, buf, "migration command executed successfully")
	logger.AssertLogField(t, buf, "component", "migrations")
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	ctx := context.Background()
	db, _, err := Open(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = Migrate(ctx, db, DriverSQLite, "sideways", nil)
	assert.ErrorContains(t, err, "unknown migration command: sideways")

	err = Migrate(ctx, db, "oracle", MigrateUp, nil)
	assert.ErrorContains(t, err, `unsupported database driver "oracle"`)
}

// TestMigratedSchemaEnforcesConstraints checks that foreign keys are enforced
// and that nothing cascades: a bucket with items cannot be deleted.
func TestMigratedSchemaEnforcesConstraints(t *testing.T) {
	ctx := context.Background()
	db, _, err := Open(ctx, memoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(ctx, db, DriverSQLite, MigrateUp, nil))

	_, err = db.Exec(`INSERT INTO bucket (id, name, created) VALUES ('b1', 'bucket', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO bucket_item (id, name, created, modified, item_type, bucket_id)
		VALUES ('i1', 'flow', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 'FLOW', 'b1')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM bucket WHERE id = 'b1'`)
	assert.True(t, IsForeignKeyViolation(err))

	_, err = db.Exec(`INSERT INTO bucket (id, name, created) VALUES ('b2', 'bucket', CURRENT_TIMESTAMP)`)
	assert.True(t, IsUniqueViolation(err))

	_, err = db.Exec(`INSERT INTO bucket_item (id, name, created, modified, item_type, bucket_id)
		VALUES ('i2', 'x', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 'WIDGET', 'b1')`)
	assert.True(t, IsCheckConstraintViolation(err))
}
