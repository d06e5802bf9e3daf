package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/repository"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

func bundlesQuery() *query.Builder {
	return query.New().
		Select(BucketName).
		Select(BucketItemTable.Columns()...).
		Select(ExtensionBundleType, ExtensionBundleGroupID, ExtensionBundleArtifactID).
		From(BucketItemTable).
		InnerJoin(ExtensionBundleTable, BucketItemID, ExtensionBundleID).
		InnerJoin(BucketTable, BucketItemBucketID, BucketID)
}

// BundleFilter narrows Filter. GroupID and ArtifactID are LIKE patterns and
// are ignored when blank.
type BundleFilter struct {
	BucketIDs  []string
	GroupID    string
	ArtifactID string
}

// ExtensionBundleStore persists extension bundles, which span a bucket_item
// row and an extension_bundle row sharing the same id. Bundles cannot be updated.
type ExtensionBundleStore struct {
	items    *repository.Repository[string, *domain.ExtensionBundle]
	bundles  *repository.Repository[string, *domain.ExtensionBundle]
	versions *ExtensionBundleVersionStore
	base     *query.Builder
	logger   *slog.Logger
}

// NewExtensionBundleStore creates a bundle store on tmpl. Deleting a bundle
// deletes its versions through versions. If logger is nil, the default logger is used.
func NewExtensionBundleStore(tmpl *sqlexec.Template, reg *schema.Registry, versions *ExtensionBundleVersionStore, logger *slog.Logger) (*ExtensionBundleStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	items, err := repository.New[string, *domain.ExtensionBundle](tmpl, reg, EntityBucketItem,
		stringID(), bundleItemValues, bundleRows,
		repository.WithUpdateColumns(),
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	bundles, err := repository.New[string, *domain.ExtensionBundle](tmpl, reg, EntityExtensionBundle,
		stringID(), bundleValues, bundleRows,
		repository.WithIDGenerator(nil),
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &ExtensionBundleStore{
		items:    items,
		bundles:  bundles,
		versions: versions,
		base:     bundlesQuery(),
		logger:   logger.With(slog.String("component", "extension_bundle_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *ExtensionBundleStore) WithTx(tx *sql.Tx) *ExtensionBundleStore {
	return &ExtensionBundleStore{
		items:    s.items.WithTx(tx),
		bundles:  s.bundles.WithTx(tx),
		versions: s.versions.WithTx(tx),
		base:     s.base,
		logger:   s.logger,
	}
}

// Create inserts the bucket item and extension bundle rows of b. Creation
// and modification times default to now.
func (s *ExtensionBundleStore) Create(ctx context.Context, b *domain.ExtensionBundle) (*domain.ExtensionBundle, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if b.Type == "" {
		b.Type = domain.BucketItemTypeBundle
	}
	if err := b.Validate(); err != nil {
		log.Warn("bundle validation failed during create",
			slog.String("error", err.Error()),
			slog.String("group_id", b.GroupID),
			slog.String("artifact_id", b.ArtifactID))
		return nil, err
	}
	if b.Created.IsZero() {
		b.Created = domain.Now()
	}
	if b.Modified.IsZero() {
		b.Modified = b.Created
	}

	if _, err := s.items.Create(ctx, b); err != nil {
		return nil, err
	}
	if _, err := s.bundles.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update always fails with store.ErrUnsupportedOperation.
func (s *ExtensionBundleStore) Update(ctx context.Context, b *domain.ExtensionBundle) (*domain.ExtensionBundle, error) {
	return s.items.Update(ctx, b)
}

// FindByID returns the bundle with the given id, reporting whether it exists.
func (s *ExtensionBundleStore) FindByID(ctx context.Context, id string) (*domain.ExtensionBundle, bool, error) {
	return s.findOne(ctx, s.base.Copy().WhereEqual(BucketItemID), id)
}

// FindByCoordinate returns the bundle of a bucket with the given group and artifact.
func (s *ExtensionBundleStore) FindByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) (*domain.ExtensionBundle, bool, error) {
	q := s.base.Copy().
		WhereEqual(BucketItemBucketID).
		WhereEqual(ExtensionBundleGroupID).
		WhereEqual(ExtensionBundleArtifactID)
	return s.findOne(ctx, q, bucketID, groupID, artifactID)
}

// ListByBucket returns the bundles of one bucket ordered by name, with version counts.
func (s *ExtensionBundleStore) ListByBucket(ctx context.Context, bucketID string) ([]*domain.ExtensionBundle, error) {
	q := s.base.Copy().WhereEqual(BucketItemBucketID).OrderBy(BucketItemName, query.Asc)
	return s.list(ctx, q, bucketID)
}

// ListByBucketAndGroup returns the bundles of one bucket and group ordered by artifact.
func (s *ExtensionBundleStore) ListByBucketAndGroup(ctx context.Context, bucketID, groupID string) ([]*domain.ExtensionBundle, error) {
	q := s.base.Copy().
		WhereEqual(BucketItemBucketID).
		WhereEqual(ExtensionBundleGroupID).
		OrderBy(ExtensionBundleArtifactID, query.Asc)
	return s.list(ctx, q, bucketID, groupID)
}

// Filter returns the bundles of the given buckets matching f, ordered by
// group then artifact. No bucket ids means no bundles.
func (s *ExtensionBundleStore) Filter(ctx context.Context, f BundleFilter) ([]*domain.ExtensionBundle, error) {
	if len(f.BucketIDs) == 0 {
		return []*domain.ExtensionBundle{}, nil
	}

	params := []query.Parameter{query.InSlice(BucketItemBucketID, f.BucketIDs)}
	if strings.TrimSpace(f.GroupID) != "" {
		params = append(params, query.Like(ExtensionBundleGroupID, f.GroupID))
	}
	if strings.TrimSpace(f.ArtifactID) != "" {
		params = append(params, query.Like(ExtensionBundleArtifactID, f.ArtifactID))
	}

	q := s.base.Copy()
	args, err := query.Apply(q, query.NewParameters(params...))
	if err != nil {
		return nil, err
	}
	q.OrderBy(ExtensionBundleGroupID, query.Asc).OrderBy(ExtensionBundleArtifactID, query.Asc)
	return s.list(ctx, q, args...)
}

// Delete removes a bundle with all of its versions, their extensions and dependencies.
func (s *ExtensionBundleStore) Delete(ctx context.Context, id string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	versions, err := s.versions.ListByBundle(ctx, id)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := s.versions.Delete(ctx, v.ID); err != nil {
			log.Error("failed to delete bundle version",
				slog.String("bundle_id", id),
				slog.String("version", v.Version),
				slog.String("error", err.Error()))
			return err
		}
	}
	if err := s.bundles.DeleteByID(ctx, id); err != nil {
		return notFound(err, store.ErrBundleNotFound, id)
	}
	if err := s.items.DeleteByID(ctx, id); err != nil {
		return notFound(err, store.ErrBundleNotFound, id)
	}
	log.Info("extension bundle deleted",
		slog.String("bundle_id", id),
		slog.Int("versions", len(versions)))
	return nil
}

func (s *ExtensionBundleStore) findOne(ctx context.Context, q *query.Builder, args ...any) (*domain.ExtensionBundle, bool, error) {
	b, found, err := s.bundles.FindOneByQuery(ctx, q, args...)
	if err != nil || !found {
		return b, found, err
	}
	if err := s.fillVersionCounts(ctx, []*domain.ExtensionBundle{b}); err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *ExtensionBundleStore) list(ctx context.Context, q *query.Builder, args ...any) ([]*domain.ExtensionBundle, error) {
	bundles, err := s.bundles.FindByQuery(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := s.fillVersionCounts(ctx, bundles); err != nil {
		return nil, err
	}
	return bundles, nil
}

func (s *ExtensionBundleStore) fillVersionCounts(ctx context.Context, bundles []*domain.ExtensionBundle) error {
	ids := make([]string, len(bundles))
	for i, b := range bundles {
		ids[i] = b.ID
	}
	counts, err := versionCounts(ctx, s.bundles.Template(), ids)
	if err != nil {
		return err
	}
	for _, b := range bundles {
		b.VersionCount = counts[b.ID]
	}
	return nil
}
