package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
	"github.com/phrazzld/flowregistry/internal/store"
)

// MetadataService provides the registry metadata operations.
type MetadataService struct {
	stores Stores
	logger *slog.Logger
}

// NewMetadataService creates a MetadataService.
// It returns an error if stores is nil. If logger is nil, the default logger is used.
func NewMetadataService(stores Stores, logger *slog.Logger) (*MetadataService, error) {
	if stores == nil {
		return nil, &MetadataServiceError{
			Operation: "create_service",
			Message:   "stores cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataService{
		stores: stores,
		logger: logger.With(slog.String("component", "metadata_service")),
	}, nil
}

func (s *MetadataService) inTx(ctx context.Context, fn func(ctx context.Context, tx Stores) error) error {
	return store.RunInTransaction(ctx, s.stores.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.stores.WithTx(tx))
	})
}

// Buckets

// CreateBucket stores a new bucket.
func (s *MetadataService) CreateBucket(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created, err := s.stores.Buckets().Create(ctx, b)
	if err != nil {
		log.Error("failed to create bucket",
			slog.String("error", err.Error()),
			slog.String("bucket_name", b.Name))
		return nil, NewMetadataServiceError("create_bucket", "failed to save bucket", err)
	}
	return created, nil
}

// GetBucket returns a bucket or store.ErrBucketNotFound.
func (s *MetadataService) GetBucket(ctx context.Context, id string) (*domain.Bucket, error) {
	b, found, err := s.stores.Buckets().FindByID(ctx, id)
	if err != nil {
		return nil, NewMetadataServiceError("get_bucket", "failed to load bucket", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", store.ErrBucketNotFound, id)
	}
	return b, nil
}

// GetBucketsByName returns the buckets with the given name.
func (s *MetadataService) GetBucketsByName(ctx context.Context, name string) ([]*domain.Bucket, error) {
	buckets, err := s.stores.Buckets().FindByName(ctx, name)
	if err != nil {
		return nil, NewMetadataServiceError("get_buckets_by_name", "failed to load buckets", err)
	}
	return buckets, nil
}

// UpdateBucket writes the non-empty fields of b.
func (s *MetadataService) UpdateBucket(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error) {
	if _, err := s.stores.Buckets().Update(ctx, b); err != nil {
		return nil, NewMetadataServiceError("update_bucket", "failed to update bucket", err)
	}
	return s.GetBucket(ctx, b.ID)
}

// DeleteBucket removes a bucket together with its flows and extension bundles.
func (s *MetadataService) DeleteBucket(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		if _, found, err := tx.Buckets().FindByID(ctx, id); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: %s", store.ErrBucketNotFound, id)
		}

		flows, err := tx.Flows().FindByBucket(ctx, id)
		if err != nil {
			return err
		}
		for _, f := range flows {
			if err := tx.Flows().Delete(ctx, f.ID); err != nil {
				return err
			}
		}

		bundles, err := tx.Bundles().ListByBucket(ctx, id)
		if err != nil {
			return err
		}
		for _, b := range bundles {
			if err := tx.Bundles().Delete(ctx, b.ID); err != nil {
				return err
			}
		}

		log.Debug("deleted bucket contents",
			slog.String("bucket_id", id),
			slog.Int("flows", len(flows)),
			slog.Int("bundles", len(bundles)))
		return tx.Buckets().Delete(ctx, id)
	})
	if err != nil {
		log.Error("failed to delete bucket", slog.String("error", err.Error()), slog.String("bucket_id", id))
		return NewMetadataServiceError("delete_bucket", "failed to delete bucket", err)
	}

	log.Info("bucket deleted", slog.String("bucket_id", id))
	return nil
}

// ListBuckets returns every bucket ordered by name.
func (s *MetadataService) ListBuckets(ctx context.Context) ([]*domain.Bucket, error) {
	buckets, err := s.stores.Buckets().FindAll(ctx)
	if err != nil {
		return nil, NewMetadataServiceError("list_buckets", "failed to list buckets", err)
	}
	return buckets, nil
}

// ListBucketsByID returns the buckets whose id is in ids.
func (s *MetadataService) ListBucketsByID(ctx context.Context, ids []string) ([]*domain.Bucket, error) {
	buckets, err := s.stores.Buckets().FindAllByID(ctx, ids)
	if err != nil {
		return nil, NewMetadataServiceError("list_buckets", "failed to list buckets", err)
	}
	return buckets, nil
}

// ListBucketItems returns the flows and bundles of one bucket.
func (s *MetadataService) ListBucketItems(ctx context.Context, bucketID string) ([]domain.Item, error) {
	items, err := s.stores.Items().ListByBucket(ctx, bucketID)
	if err != nil {
		return nil, NewMetadataServiceError("list_bucket_items", "failed to list items", err)
	}
	return items, nil
}

// ListItemsInBuckets returns the flows and bundles of several buckets.
func (s *MetadataService) ListItemsInBuckets(ctx context.Context, bucketIDs []string) ([]domain.Item, error) {
	items, err := s.stores.Items().ListByBuckets(ctx, bucketIDs)
	if err != nil {
		return nil, NewMetadataServiceError("list_bucket_items", "failed to list items", err)
	}
	return items, nil
}

// Flows

// CreateFlow stores a new flow in an existing bucket.
func (s *MetadataService) CreateFlow(ctx context.Context, f *domain.Flow) (*domain.Flow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		_, err := tx.Flows().Create(ctx, f)
		return err
	})
	if err != nil {
		log.Error("failed to create flow",
			slog.String("error", err.Error()),
			slog.String("bucket_id", f.BucketID),
			slog.String("flow_name", f.Name))
		return nil, NewMetadataServiceError("create_flow", "failed to save flow", err)
	}
	return f, nil
}

// GetFlow returns a flow with its snapshot count, or store.ErrFlowNotFound.
func (s *MetadataService) GetFlow(ctx context.Context, id string) (*domain.Flow, error) {
	f, found, err := s.stores.Flows().FindByIDWithSnapshotCount(ctx, id)
	if err != nil {
		return nil, NewMetadataServiceError("get_flow", "failed to load flow", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", store.ErrFlowNotFound, id)
	}
	return f, nil
}

// GetFlowsByName returns the flows of a bucket with the given name.
func (s *MetadataService) GetFlowsByName(ctx context.Context, bucketID, name string) ([]*domain.Flow, error) {
	flows, err := s.stores.Flows().FindByName(ctx, bucketID, name)
	if err != nil {
		return nil, NewMetadataServiceError("get_flows_by_name", "failed to load flows", err)
	}
	return flows, nil
}

// GetFlowsByNameGlobal returns the flows with the given name in any bucket.
func (s *MetadataService) GetFlowsByNameGlobal(ctx context.Context, name string) ([]*domain.Flow, error) {
	flows, err := s.stores.Flows().FindAllByName(ctx, name)
	if err != nil {
		return nil, NewMetadataServiceError("get_flows_by_name", "failed to load flows", err)
	}
	return flows, nil
}

// ListFlows returns the flows of a bucket with snapshot counts.
func (s *MetadataService) ListFlows(ctx context.Context, bucketID string) ([]*domain.Flow, error) {
	flows, err := s.stores.Flows().FindByBucket(ctx, bucketID)
	if err != nil {
		return nil, NewMetadataServiceError("list_flows", "failed to list flows", err)
	}
	return flows, nil
}

// UpdateFlow writes the non-empty name and description of f and stamps its
// modification time.
func (s *MetadataService) UpdateFlow(ctx context.Context, f *domain.Flow) (*domain.Flow, error) {
	f.Modified = domain.Now()
	if _, err := s.stores.Flows().Update(ctx, f); err != nil {
		return nil, NewMetadataServiceError("update_flow", "failed to update flow", err)
	}
	return s.GetFlow(ctx, f.ID)
}

// UpdateFlowIfUnmodified is UpdateFlow guarded by the modification time the
// caller last saw. It fails with store.ErrConflict when the flow changed since.
func (s *MetadataService) UpdateFlowIfUnmodified(ctx context.Context, f *domain.Flow, lastModified time.Time) (*domain.Flow, error) {
	f.Modified = domain.Now()
	if _, err := s.stores.Flows().UpdateIfUnmodified(ctx, f, lastModified); err != nil {
		return nil, NewMetadataServiceError("update_flow", "failed to update flow", err)
	}
	return s.GetFlow(ctx, f.ID)
}

// DeleteFlow removes a flow and its snapshots.
func (s *MetadataService) DeleteFlow(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		return tx.Flows().Delete(ctx, id)
	})
	if err != nil {
		return NewMetadataServiceError("delete_flow", "failed to delete flow", err)
	}
	return nil
}

// Snapshots

// CreateSnapshot stores a snapshot of an existing flow and stamps the flow's
// modification time.
func (s *MetadataService) CreateSnapshot(ctx context.Context, snap *domain.FlowSnapshot) (*domain.FlowSnapshot, error) {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		f, found, err := tx.Flows().FindByID(ctx, snap.FlowID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", store.ErrFlowNotFound, snap.FlowID)
		}
		if _, err := tx.Snapshots().Create(ctx, snap); err != nil {
			return err
		}
		_, err = tx.Flows().Update(ctx, &domain.Flow{BucketItem: domain.BucketItem{ID: f.ID, Modified: snap.Created}})
		return err
	})
	if err != nil {
		return nil, NewMetadataServiceError("create_snapshot", "failed to save snapshot", err)
	}
	return snap, nil
}

// GetSnapshot returns one snapshot or store.ErrSnapshotNotFound.
func (s *MetadataService) GetSnapshot(ctx context.Context, flowID string, version int) (*domain.FlowSnapshot, error) {
	snap, found, err := s.stores.Snapshots().FindByID(ctx, domain.SnapshotKey{FlowID: flowID, Version: version})
	if err != nil {
		return nil, NewMetadataServiceError("get_snapshot", "failed to load snapshot", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s version %d", store.ErrSnapshotNotFound, flowID, version)
	}
	return snap, nil
}

// GetLatestSnapshot returns the newest snapshot of a flow or store.ErrSnapshotNotFound.
func (s *MetadataService) GetLatestSnapshot(ctx context.Context, flowID string) (*domain.FlowSnapshot, error) {
	snap, found, err := s.stores.Snapshots().Latest(ctx, flowID)
	if err != nil {
		return nil, NewMetadataServiceError("get_latest_snapshot", "failed to load snapshot", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s has no snapshots", store.ErrSnapshotNotFound, flowID)
	}
	return snap, nil
}

// ListSnapshots returns the snapshots of a flow, newest first.
func (s *MetadataService) ListSnapshots(ctx context.Context, flowID string) ([]*domain.FlowSnapshot, error) {
	snaps, err := s.stores.Snapshots().ListByFlow(ctx, flowID)
	if err != nil {
		return nil, NewMetadataServiceError("list_snapshots", "failed to list snapshots", err)
	}
	return snaps, nil
}

// DeleteSnapshot removes one snapshot.
func (s *MetadataService) DeleteSnapshot(ctx context.Context, flowID string, version int) error {
	if err := s.stores.Snapshots().Delete(ctx, domain.SnapshotKey{FlowID: flowID, Version: version}); err != nil {
		return NewMetadataServiceError("delete_snapshot", "failed to delete snapshot", err)
	}
	return nil
}

// Extension bundles

// CreateBundle stores a new extension bundle in an existing bucket.
func (s *MetadataService) CreateBundle(ctx context.Context, b *domain.ExtensionBundle) (*domain.ExtensionBundle, error) {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		_, err := tx.Bundles().Create(ctx, b)
		return err
	})
	if err != nil {
		return nil, NewMetadataServiceError("create_bundle", "failed to save bundle", err)
	}
	return b, nil
}

// GetBundle returns a bundle or store.ErrBundleNotFound.
func (s *MetadataService) GetBundle(ctx context.Context, id string) (*domain.ExtensionBundle, error) {
	b, found, err := s.stores.Bundles().FindByID(ctx, id)
	if err != nil {
		return nil, NewMetadataServiceError("get_bundle", "failed to load bundle", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", store.ErrBundleNotFound, id)
	}
	return b, nil
}

// GetBundleByCoordinate returns the bundle of a bucket with the given group and
// artifact, or store.ErrBundleNotFound.
func (s *MetadataService) GetBundleByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) (*domain.ExtensionBundle, error) {
	b, found, err := s.stores.Bundles().FindByCoordinate(ctx, bucketID, groupID, artifactID)
	if err != nil {
		return nil, NewMetadataServiceError("get_bundle", "failed to load bundle", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s:%s", store.ErrBundleNotFound, groupID, artifactID)
	}
	return b, nil
}

// ListBundles returns the bundles of a bucket.
func (s *MetadataService) ListBundles(ctx context.Context, bucketID string) ([]*domain.ExtensionBundle, error) {
	bundles, err := s.stores.Bundles().ListByBucket(ctx, bucketID)
	if err != nil {
		return nil, NewMetadataServiceError("list_bundles", "failed to list bundles", err)
	}
	return bundles, nil
}

// FilterBundles returns the bundles matching f.
func (s *MetadataService) FilterBundles(ctx context.Context, f sqlstore.BundleFilter) ([]*domain.ExtensionBundle, error) {
	bundles, err := s.stores.Bundles().Filter(ctx, f)
	if err != nil {
		return nil, NewMetadataServiceError("filter_bundles", "failed to filter bundles", err)
	}
	return bundles, nil
}

// DeleteBundle removes a bundle with all of its versions and extensions.
func (s *MetadataService) DeleteBundle(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		return tx.Bundles().Delete(ctx, id)
	})
	if err != nil {
		return NewMetadataServiceError("delete_bundle", "failed to delete bundle", err)
	}
	return nil
}

// Bundle versions and extensions

// CreateBundleVersion stores a version of an existing bundle together with its
// dependencies and the extensions it provides.
func (s *MetadataService) CreateBundleVersion(ctx context.Context, v *domain.ExtensionBundleVersion, extensions []*domain.Extension) (*domain.ExtensionBundleVersion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		if _, found, err := tx.Bundles().FindByID(ctx, v.ExtensionBundleID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: %s", store.ErrBundleNotFound, v.ExtensionBundleID)
		}
		if _, err := tx.BundleVersions().Create(ctx, v); err != nil {
			return err
		}
		for _, e := range extensions {
			e.ExtensionBundleVersionID = v.ID
			if _, err := tx.Extensions().Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create bundle version",
			slog.String("error", err.Error()),
			slog.String("bundle_id", v.ExtensionBundleID),
			slog.String("version", v.Version))
		return nil, NewMetadataServiceError("create_bundle_version", "failed to save bundle version", err)
	}

	log.Info("bundle version created",
		slog.String("bundle_id", v.ExtensionBundleID),
		slog.String("version", v.Version),
		slog.Int("extensions", len(extensions)))
	return v, nil
}

// GetBundleVersion returns a bundle version with its dependencies.
func (s *MetadataService) GetBundleVersion(ctx context.Context, id string) (*domain.ExtensionBundleVersion, error) {
	v, found, err := s.stores.BundleVersions().FindByID(ctx, id)
	if err != nil {
		return nil, NewMetadataServiceError("get_bundle_version", "failed to load bundle version", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrBundleVersionNotFound, id)
	}
	return v, nil
}

// GetBundleVersionByVersion returns a bundle's version by its version string.
func (s *MetadataService) GetBundleVersionByVersion(ctx context.Context, bundleID, version string) (*domain.ExtensionBundleVersion, error) {
	v, found, err := s.stores.BundleVersions().FindByBundleAndVersion(ctx, bundleID, version)
	if err != nil {
		return nil, NewMetadataServiceError("get_bundle_version", "failed to load bundle version", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s %s", ErrBundleVersionNotFound, bundleID, version)
	}
	return v, nil
}

// GetBundleVersionByCoordinate returns the version of the bundle identified by
// bucket, group and artifact.
func (s *MetadataService) GetBundleVersionByCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) (*domain.ExtensionBundleVersion, error) {
	v, found, err := s.stores.BundleVersions().FindByCoordinate(ctx, bucketID, groupID, artifactID, version)
	if err != nil {
		return nil, NewMetadataServiceError("get_bundle_version", "failed to load bundle version", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s %s:%s:%s", ErrBundleVersionNotFound, bucketID, groupID, artifactID, version)
	}
	return v, nil
}

// ListBundleVersionsByCoordinate returns the versions of the bundle identified
// by bucket, group and artifact.
func (s *MetadataService) ListBundleVersionsByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) ([]*domain.ExtensionBundleVersion, error) {
	versions, err := s.stores.BundleVersions().ListByCoordinate(ctx, bucketID, groupID, artifactID)
	if err != nil {
		return nil, NewMetadataServiceError("list_bundle_versions", "failed to list bundle versions", err)
	}
	return versions, nil
}

// ListBundleVersionsGlobal returns every version with the given coordinate in any bucket.
func (s *MetadataService) ListBundleVersionsGlobal(ctx context.Context, groupID, artifactID, version string) ([]*domain.ExtensionBundleVersion, error) {
	versions, err := s.stores.BundleVersions().ListGlobal(ctx, groupID, artifactID, version)
	if err != nil {
		return nil, NewMetadataServiceError("list_bundle_versions", "failed to list bundle versions", err)
	}
	return versions, nil
}

// FilterBundleVersions returns the versions held in f.BucketIDs matching the
// group, artifact and version patterns.
func (s *MetadataService) FilterBundleVersions(ctx context.Context, f sqlstore.BundleVersionFilter) ([]*domain.ExtensionBundleVersion, error) {
	versions, err := s.stores.BundleVersions().Filter(ctx, f)
	if err != nil {
		return nil, NewMetadataServiceError("filter_bundle_versions", "failed to filter bundle versions", err)
	}
	return versions, nil
}

// ListBundleVersions returns the versions of a bundle.
func (s *MetadataService) ListBundleVersions(ctx context.Context, bundleID string) ([]*domain.ExtensionBundleVersion, error) {
	versions, err := s.stores.BundleVersions().ListByBundle(ctx, bundleID)
	if err != nil {
		return nil, NewMetadataServiceError("list_bundle_versions", "failed to list bundle versions", err)
	}
	return versions, nil
}

// DeleteBundleVersion removes a bundle version with its extensions.
func (s *MetadataService) DeleteBundleVersion(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		err := tx.BundleVersions().Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBundleVersionNotFound, id)
		}
		return err
	})
	if err != nil {
		return NewMetadataServiceError("delete_bundle_version", "failed to delete bundle version", err)
	}
	return nil
}

// CreateExtension adds an extension to an existing bundle version.
func (s *MetadataService) CreateExtension(ctx context.Context, e *domain.Extension) (*domain.Extension, error) {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		if _, found, err := tx.BundleVersions().FindByID(ctx, e.ExtensionBundleVersionID); err != nil {
			return err
		} else if !found {
			return fmt.Errorf("%w: %s", ErrBundleVersionNotFound, e.ExtensionBundleVersionID)
		}
		_, err := tx.Extensions().Create(ctx, e)
		return err
	})
	if err != nil {
		return nil, NewMetadataServiceError("create_extension", "failed to save extension", err)
	}
	return e, nil
}

// GetExtension returns one extension or ErrExtensionNotFound.
func (s *MetadataService) GetExtension(ctx context.Context, id string) (*domain.Extension, error) {
	e, found, err := s.stores.Extensions().FindByID(ctx, id)
	if err != nil {
		return nil, NewMetadataServiceError("get_extension", "failed to load extension", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrExtensionNotFound, id)
	}
	return e, nil
}

// ListExtensions returns every extension.
func (s *MetadataService) ListExtensions(ctx context.Context) ([]*domain.Extension, error) {
	exts, err := s.stores.Extensions().ListAll(ctx)
	if err != nil {
		return nil, NewMetadataServiceError("list_extensions", "failed to list extensions", err)
	}
	return exts, nil
}

// ListExtensionsByBundleVersion returns the extensions of one bundle version.
func (s *MetadataService) ListExtensionsByBundleVersion(ctx context.Context, versionID string) ([]*domain.Extension, error) {
	exts, err := s.stores.Extensions().ListByBundleVersion(ctx, versionID)
	if err != nil {
		return nil, NewMetadataServiceError("list_extensions", "failed to list extensions", err)
	}
	return exts, nil
}

// ListExtensionsByTag returns the extensions carrying tag.
func (s *MetadataService) ListExtensionsByTag(ctx context.Context, tag string) ([]*domain.Extension, error) {
	exts, err := s.stores.Extensions().ListByTag(ctx, tag)
	if err != nil {
		return nil, NewMetadataServiceError("list_extensions", "failed to list extensions", err)
	}
	return exts, nil
}

// ListExtensionsByCategory returns the extensions in category.
func (s *MetadataService) ListExtensionsByCategory(ctx context.Context, category string) ([]*domain.Extension, error) {
	exts, err := s.stores.Extensions().ListByCategory(ctx, category)
	if err != nil {
		return nil, NewMetadataServiceError("list_extensions", "failed to list extensions", err)
	}
	return exts, nil
}

// ListExtensionsByBundleCoordinate returns the extensions of the bundle version
// identified by bucket, group, artifact and version.
func (s *MetadataService) ListExtensionsByBundleCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) ([]*domain.Extension, error) {
	exts, err := s.stores.Extensions().ListByBundleCoordinate(ctx, bucketID, groupID, artifactID, version)
	if err != nil {
		return nil, NewMetadataServiceError("list_extensions", "failed to list extensions", err)
	}
	return exts, nil
}

// DeleteExtension removes an extension with its tags.
func (s *MetadataService) DeleteExtension(ctx context.Context, id string) error {
	err := s.inTx(ctx, func(ctx context.Context, tx Stores) error {
		err := tx.Extensions().Delete(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrExtensionNotFound, id)
		}
		return err
	})
	if err != nil {
		return NewMetadataServiceError("delete_extension", "failed to delete extension", err)
	}
	return nil
}

// ListTags returns every distinct extension tag.
func (s *MetadataService) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.stores.Extensions().ListTags(ctx)
	if err != nil {
		return nil, NewMetadataServiceError("list_tags", "failed to list tags", err)
	}
	return tags, nil
}
