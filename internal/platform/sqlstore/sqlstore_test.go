package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
	"github.com/phrazzld/flowregistry/internal/testdb"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) (*sql.DB, *sqlstore.Stores) {
	t.Helper()
	db := testdb.Open(t)
	stores, err := sqlstore.NewStoresWithTemplate(db, testdb.Template(db), sqlstore.NewRegistry(), nil)
	require.NoError(t, err)
	return db, stores
}

func createBucket(t *testing.T, s *sqlstore.Stores, name string) *domain.Bucket {
	t.Helper()
	b, err := s.Buckets.Create(context.Background(), &domain.Bucket{Name: name})
	require.NoError(t, err)
	return b
}

func createFlow(t *testing.T, s *sqlstore.Stores, bucketID, name string) *domain.Flow {
	t.Helper()
	f, err := s.Flows.Create(context.Background(), domain.NewFlow(bucketID, name, ""))
	require.NoError(t, err)
	return f
}

func createBundle(t *testing.T, s *sqlstore.Stores, bucketID, group, artifact string) *domain.ExtensionBundle {
	t.Helper()
	b, err := s.Bundles.Create(context.Background(), &domain.ExtensionBundle{
		BucketItem: domain.BucketItem{Name: group + ":" + artifact, BucketID: bucketID},
		BundleType: domain.BundleTypeNiFiNar,
		GroupID:    group,
		ArtifactID: artifact,
	})
	require.NoError(t, err)
	return b
}

func createVersion(t *testing.T, s *sqlstore.Stores, bundleID, version string, deps ...*domain.ExtensionBundleVersionDependency) *domain.ExtensionBundleVersion {
	t.Helper()
	v, err := s.BundleVersions.Create(context.Background(), &domain.ExtensionBundleVersion{
		ExtensionBundleID: bundleID,
		Version:           version,
		CreatedBy:         "alice",
		SHA256Hex:         "abc123",
		ContentSize:       1024,
		Dependencies:      deps,
	})
	require.NoError(t, err)
	return v
}
