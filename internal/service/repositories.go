package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
)

// BucketRepository stores buckets.
type BucketRepository interface {
	Create(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error)
	Update(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error)
	FindByID(ctx context.Context, id string) (*domain.Bucket, bool, error)
	FindByName(ctx context.Context, name string) ([]*domain.Bucket, error)
	FindAll(ctx context.Context) ([]*domain.Bucket, error)
	FindAllByID(ctx context.Context, ids []string) ([]*domain.Bucket, error)
	Delete(ctx context.Context, id string) error
}

// BucketItemRepository lists the items of buckets.
type BucketItemRepository interface {
	ListByBucket(ctx context.Context, bucketID string) ([]domain.Item, error)
	ListByBuckets(ctx context.Context, bucketIDs []string) ([]domain.Item, error)
}

// FlowRepository stores flows.
type FlowRepository interface {
	Create(ctx context.Context, f *domain.Flow) (*domain.Flow, error)
	Update(ctx context.Context, f *domain.Flow) (*domain.Flow, error)
	UpdateIfUnmodified(ctx context.Context, f *domain.Flow, lastModified time.Time) (*domain.Flow, error)
	FindByID(ctx context.Context, id string) (*domain.Flow, bool, error)
	FindByIDWithSnapshotCount(ctx context.Context, id string) (*domain.Flow, bool, error)
	FindByBucket(ctx context.Context, bucketID string) ([]*domain.Flow, error)
	FindByName(ctx context.Context, bucketID, name string) ([]*domain.Flow, error)
	FindAllByName(ctx context.Context, name string) ([]*domain.Flow, error)
	FindAll(ctx context.Context) ([]*domain.Flow, error)
	Delete(ctx context.Context, id string) error
}

// SnapshotRepository stores flow snapshots.
type SnapshotRepository interface {
	Create(ctx context.Context, s *domain.FlowSnapshot) (*domain.FlowSnapshot, error)
	FindByID(ctx context.Context, key domain.SnapshotKey) (*domain.FlowSnapshot, bool, error)
	Latest(ctx context.Context, flowID string) (*domain.FlowSnapshot, bool, error)
	ListByFlow(ctx context.Context, flowID string) ([]*domain.FlowSnapshot, error)
	Delete(ctx context.Context, key domain.SnapshotKey) error
}

// BundleRepository stores extension bundles.
type BundleRepository interface {
	Create(ctx context.Context, b *domain.ExtensionBundle) (*domain.ExtensionBundle, error)
	FindByID(ctx context.Context, id string) (*domain.ExtensionBundle, bool, error)
	FindByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) (*domain.ExtensionBundle, bool, error)
	ListByBucket(ctx context.Context, bucketID string) ([]*domain.ExtensionBundle, error)
	Filter(ctx context.Context, f sqlstore.BundleFilter) ([]*domain.ExtensionBundle, error)
	Delete(ctx context.Context, id string) error
}

// BundleVersionRepository stores extension bundle versions.
type BundleVersionRepository interface {
	Create(ctx context.Context, v *domain.ExtensionBundleVersion) (*domain.ExtensionBundleVersion, error)
	FindByID(ctx context.Context, id string) (*domain.ExtensionBundleVersion, bool, error)
	FindByBundleAndVersion(ctx context.Context, bundleID, version string) (*domain.ExtensionBundleVersion, bool, error)
	FindByCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) (*domain.ExtensionBundleVersion, bool, error)
	ListByBundle(ctx context.Context, bundleID string) ([]*domain.ExtensionBundleVersion, error)
	ListByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) ([]*domain.ExtensionBundleVersion, error)
	ListGlobal(ctx context.Context, groupID, artifactID, version string) ([]*domain.ExtensionBundleVersion, error)
	Filter(ctx context.Context, f sqlstore.BundleVersionFilter) ([]*domain.ExtensionBundleVersion, error)
	Delete(ctx context.Context, id string) error
}

// ExtensionRepository stores extensions and their tags.
type ExtensionRepository interface {
	Create(ctx context.Context, e *domain.Extension) (*domain.Extension, error)
	FindByID(ctx context.Context, id string) (*domain.Extension, bool, error)
	ListAll(ctx context.Context) ([]*domain.Extension, error)
	ListByBundleVersion(ctx context.Context, versionID string) ([]*domain.Extension, error)
	ListByTag(ctx context.Context, tag string) ([]*domain.Extension, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Extension, error)
	ListByBundleCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) ([]*domain.Extension, error)
	ListTags(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// Stores gives the service access to every repository over one database.
type Stores interface {
	Buckets() BucketRepository
	Items() BucketItemRepository
	Flows() FlowRepository
	Snapshots() SnapshotRepository
	Bundles() BundleRepository
	BundleVersions() BundleVersionRepository
	Extensions() ExtensionRepository

	// WithTx returns stores whose repositories all run on tx.
	WithTx(tx *sql.Tx) Stores

	// DB returns the underlying database connection.
	DB() *sql.DB
}
