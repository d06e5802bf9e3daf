package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/service"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useTestDatabase points the CLI at a fresh sqlite file through the environment.
func useTestDatabase(t *testing.T, migrateOnStart bool) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registry.db")
	t.Setenv("REGISTRY_DATABASE_DRIVER", "sqlite")
	t.Setenv("REGISTRY_DATABASE_URL", path)
	t.Setenv("REGISTRY_LOG_LEVEL", "error")
	if migrateOnStart {
		t.Setenv("REGISTRY_DATABASE_MIGRATE_ON_START", "true")
	} else {
		t.Setenv("REGISTRY_DATABASE_MIGRATE_ON_START", "false")
	}
	return path
}

// runCLI executes the root command with args and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}
	return stdout.String(), err
}

// runJSON executes the command with JSON output and decodes the result into out.
func runJSON(t *testing.T, out any, args ...string) {
	t.Helper()

	stdout, err := runCLI(t, append(args, "--output", "json")...)
	require.NoError(t, err, "command %v failed", args)
	require.NoError(t, json.Unmarshal([]byte(stdout), out), "invalid JSON output: %s", stdout)
}

func TestMigrateCommand(t *testing.T) {
	useTestDatabase(t, false)

	t.Run("up then version", func(t *testing.T) {
		_, err := runCLI(t, "migrate", "up")
		require.NoError(t, err)

		var v schemaVersion
		runJSON(t, &v, "migrate", "version")
		assert.Equal(t, int64(1), v.Version)
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := runCLI(t, "migrate", "sideways")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown migration command")
	})

	t.Run("requires a command", func(t *testing.T) {
		_, err := runCLI(t, "migrate")
		require.Error(t, err)
	})
}

func TestOutputFlagValidation(t *testing.T) {
	useTestDatabase(t, true)

	_, err := runCLI(t, "bucket", "list", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestBucketCommands(t *testing.T) {
	useTestDatabase(t, true)

	var created domain.Bucket
	runJSON(t, &created, "bucket", "create", "--name", "team-a", "--description", "first")
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "team-a", created.Name)
	assert.Equal(t, domain.Bool(false), created.AllowExtensionBundleRedeploy)

	var fetched domain.Bucket
	runJSON(t, &fetched, "bucket", "get", created.ID)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "first", fetched.Description)

	var updated domain.Bucket
	runJSON(t, &updated, "bucket", "update", created.ID, "--name", "team-b", "--allow-redeploy")
	assert.Equal(t, "team-b", updated.Name)
	assert.Equal(t, "first", updated.Description)
	assert.Equal(t, domain.Bool(true), updated.AllowExtensionBundleRedeploy)

	runJSON(t, &updated, "bucket", "update", created.ID, "--description", "second")
	assert.Equal(t, "team-b", updated.Name)
	assert.Equal(t, domain.Bool(true), updated.AllowExtensionBundleRedeploy, "unset flags keep their stored value")

	var byName []domain.Bucket
	runJSON(t, &byName, "bucket", "list", "--name", "team-b")
	require.Len(t, byName, 1)
	assert.Equal(t, created.ID, byName[0].ID)

	stdout, err := runCLI(t, "bucket", "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "deleted bucket "+created.ID)

	_, err = runCLI(t, "bucket", "get", created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrBucketNotFound)
}

func TestBucketCreate_Duplicate(t *testing.T) {
	useTestDatabase(t, true)

	_, err := runCLI(t, "bucket", "create", "--name", "dup")
	require.NoError(t, err)

	_, err = runCLI(t, "bucket", "create", "--name", "dup")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrBucketNameExists)
}

func TestFlowAndSnapshotCommands(t *testing.T) {
	useTestDatabase(t, true)

	var bucket domain.Bucket
	runJSON(t, &bucket, "bucket", "create", "--name", "flows")

	var flow domain.Flow
	runJSON(t, &flow, "flow", "create", "--bucket", bucket.ID, "--name", "ingest", "--description", "reads files")
	require.NotEmpty(t, flow.ID)
	assert.Equal(t, domain.BucketItemTypeFlow, flow.Type)

	var first, second domain.FlowSnapshot
	runJSON(t, &first, "snapshot", "create", "--flow", flow.ID, "--author", "alice")
	runJSON(t, &second, "snapshot", "create", "--flow", flow.ID, "--author", "bob", "--comments", "tuned")
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, 2, second.Version)

	var latest domain.FlowSnapshot
	runJSON(t, &latest, "snapshot", "latest", flow.ID)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, "bob", latest.CreatedBy)

	var fetched domain.Flow
	runJSON(t, &fetched, "flow", "get", flow.ID)
	assert.Equal(t, int64(2), fetched.SnapshotCount)
	assert.Equal(t, bucket.Name, fetched.BucketName)

	var renamed domain.Flow
	runJSON(t, &renamed, "flow", "update", flow.ID, "--name", "ingest-v2")
	assert.Equal(t, "ingest-v2", renamed.Name)

	var listed []domain.Flow
	runJSON(t, &listed, "flow", "list", "--bucket", bucket.ID)
	require.Len(t, listed, 1)
	assert.Equal(t, "ingest-v2", listed[0].Name)

	runJSON(t, &listed, "flow", "list", "--name", "ingest-v2")
	require.Len(t, listed, 1)
	assert.Equal(t, flow.ID, listed[0].ID)

	_, err := runCLI(t, "flow", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--bucket or --name")

	stdout, err := runCLI(t, "bucket", "items", bucket.ID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: ingest-v2")
	assert.Contains(t, stdout, "type: FLOW")

	_, err = runCLI(t, "snapshot", "delete", flow.ID, "1")
	require.NoError(t, err)

	var snaps []domain.FlowSnapshot
	runJSON(t, &snaps, "snapshot", "list", flow.ID)
	require.Len(t, snaps, 1)
	assert.Equal(t, 2, snaps[0].Version)

	_, err = runCLI(t, "snapshot", "delete", flow.ID, "two")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid snapshot version")

	_, err = runCLI(t, "flow", "delete", flow.ID)
	require.NoError(t, err)

	_, err = runCLI(t, "flow", "get", flow.ID)
	assert.ErrorIs(t, err, store.ErrFlowNotFound)

	_, err = runCLI(t, "snapshot", "latest", flow.ID)
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
}

func TestFlowCreate_MissingFlags(t *testing.T) {
	useTestDatabase(t, true)

	_, err := runCLI(t, "flow", "create", "--name", "orphan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket")
}

func TestBundleAndExtensionCommands(t *testing.T) {
	useTestDatabase(t, true)

	var bucket domain.Bucket
	runJSON(t, &bucket, "bucket", "create", "--name", "extensions")

	var bundle domain.ExtensionBundle
	runJSON(t, &bundle, "bundle", "create",
		"--bucket", bucket.ID, "--group", "org.example", "--artifact", "example-nar")
	require.NotEmpty(t, bundle.ID)
	assert.Equal(t, domain.BundleTypeNiFiNar, bundle.BundleType)
	assert.Equal(t, "org.example:example-nar", bundle.Name)

	var version domain.ExtensionBundleVersion
	runJSON(t, &version, "bundle", "version", "create",
		"--bundle", bundle.ID, "--version", "1.0.0", "--author", "alice", "--sha256", "abc123",
		"--size", "2048",
		"--extension", "org.example.ConvertRecord", "--extension", "org.example.PutFile",
		"--tag", "Record", "--tag", "json")
	require.NotEmpty(t, version.ID)
	assert.True(t, version.SHA256Supplied)

	var got domain.ExtensionBundleVersion
	runJSON(t, &got, "bundle", "version", "get", bundle.ID, "1.0.0")
	assert.Equal(t, version.ID, got.ID)
	assert.Equal(t, int64(2048), got.ContentSize)

	var versions []domain.ExtensionBundleVersion
	runJSON(t, &versions, "bundle", "version", "list", bundle.ID)
	require.Len(t, versions, 1)

	var fetched domain.ExtensionBundle
	runJSON(t, &fetched, "bundle", "get", bundle.ID)
	assert.Equal(t, int64(1), fetched.VersionCount)

	var filtered []domain.ExtensionBundle
	runJSON(t, &filtered, "bundle", "filter", "--bucket", bucket.ID, "--group", "org.%")
	require.Len(t, filtered, 1)
	assert.Equal(t, bundle.ID, filtered[0].ID)

	runJSON(t, &filtered, "bundle", "filter", "--bucket", bucket.ID, "--artifact", "other%")
	assert.Empty(t, filtered)

	var tags []string
	runJSON(t, &tags, "extension", "tags")
	assert.Equal(t, []string{"json", "record"}, tags)

	var exts []domain.Extension
	runJSON(t, &exts, "extension", "list", "--bundle-version", version.ID)
	require.Len(t, exts, 2)
	assert.Equal(t, "org.example.ConvertRecord", exts[0].Type)

	runJSON(t, &exts, "extension", "list", "--tag", "RECORD")
	assert.Len(t, exts, 2)

	var ext domain.Extension
	runJSON(t, &ext, "extension", "get", exts[0].ID)
	assert.Equal(t, version.ID, ext.ExtensionBundleVersionID)

	var added domain.Extension
	runJSON(t, &added, "extension", "create", "--bundle-version", version.ID,
		"--type", "org.example.RouteOnAttribute", "--category", "PROCESSOR", "--restricted", "--tag", "routing")
	assert.True(t, added.Restricted)
	assert.Equal(t, []string{"routing"}, added.Tags)

	runJSON(t, &tags, "extension", "tags")
	assert.Equal(t, []string{"json", "record", "routing"}, tags)

	_, err := runCLI(t, "extension", "list", "--tag", "json", "--bundle-version", version.ID)
	require.Error(t, err)

	runJSON(t, &exts, "extension", "list", "--category", "PROCESSOR")
	require.Len(t, exts, 1)
	assert.Equal(t, added.ID, exts[0].ID)

	runJSON(t, &exts, "extension", "list",
		"--bucket", bucket.ID, "--group", "org.example", "--artifact", "example-nar", "--version", "1.0.0")
	assert.Len(t, exts, 3)

	_, err = runCLI(t, "extension", "list", "--bucket", bucket.ID, "--version", "1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be given together")

	_, err = runCLI(t, "extension", "delete", added.ID)
	require.NoError(t, err)
	_, err = runCLI(t, "extension", "get", added.ID)
	assert.ErrorIs(t, err, service.ErrExtensionNotFound)
	_, err = runCLI(t, "extension", "delete", added.ID)
	assert.ErrorIs(t, err, service.ErrExtensionNotFound)

	runJSON(t, &tags, "extension", "tags")
	assert.Equal(t, []string{"json", "record"}, tags)

	runJSON(t, &got, "bundle", "version", "get",
		"--bucket", bucket.ID, "--group", "org.example", "--artifact", "example-nar", "1.0.0")
	assert.Equal(t, version.ID, got.ID)
	assert.Equal(t, bucket.ID, got.BucketID)

	runJSON(t, &versions, "bundle", "version", "list",
		"--bucket", bucket.ID, "--group", "org.example", "--artifact", "example-nar")
	require.Len(t, versions, 1)
	assert.Equal(t, version.ID, versions[0].ID)

	runJSON(t, &versions, "bundle", "version", "list", "--global",
		"--group", "org.example", "--artifact", "example-nar", "--version", "1.0.0")
	require.Len(t, versions, 1)
	assert.Equal(t, bucket.ID, versions[0].BucketID)

	_, err = runCLI(t, "bundle", "version", "list", "--global", "--group", "org.example")
	require.Error(t, err)

	runJSON(t, &versions, "bundle", "version", "filter", "--bucket", bucket.ID, "--version", "1.%")
	require.Len(t, versions, 1)
	runJSON(t, &versions, "bundle", "version", "filter", "--bucket", bucket.ID, "--version", "2.%")
	assert.Empty(t, versions)

	_, err = runCLI(t, "bundle", "version", "get",
		"--bucket", bucket.ID, "--group", "org.example", "--artifact", "example-nar", "9.9.9")
	assert.ErrorIs(t, err, service.ErrBundleVersionNotFound)

	_, err = runCLI(t, "bundle", "delete", bundle.ID)
	require.NoError(t, err)

	runJSON(t, &exts, "extension", "list")
	assert.Empty(t, exts)

	_, err = runCLI(t, "bundle", "get", bundle.ID)
	assert.ErrorIs(t, err, store.ErrBundleNotFound)
}

func TestConfigFlag(t *testing.T) {
	for _, name := range []string{"REGISTRY_DATABASE_DRIVER", "REGISTRY_DATABASE_URL",
		"REGISTRY_DATABASE_MIGRATE_ON_START", "REGISTRY_LOG_LEVEL"} {
		t.Setenv(name, "")
	}

	dir := t.TempDir()
	configPath := filepath.Join(dir, "registry.yaml")
	contents := "database:\n" +
		"  driver: sqlite\n" +
		"  url: " + filepath.Join(dir, "from-file.db") + "\n" +
		"  migrate_on_start: true\n" +
		"log:\n" +
		"  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(contents), 0o600))

	_, err := runCLI(t, "--config", configPath, "bucket", "create", "--name", "configured")
	require.NoError(t, err)

	var buckets []domain.Bucket
	runJSON(t, &buckets, "--config", configPath, "bucket", "list")
	require.Len(t, buckets, 1)
	assert.Equal(t, "configured", buckets[0].Name)

	_, err = os.Stat(filepath.Join(dir, "from-file.db"))
	assert.NoError(t, err, "database file should be created at the configured path")

	_, err = runCLI(t, "--config", filepath.Join(dir, "missing.yaml"), "bucket", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
