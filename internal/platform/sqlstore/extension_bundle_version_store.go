package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/repository"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// bundleVersionsQuery selects every version column plus the bucket of the
// owning bundle, which also makes the bundle coordinate available to predicates.
func bundleVersionsQuery() *query.Builder {
	return query.New().
		Select(BundleVersionTable.Columns()...).
		Select(ExtensionBundleBucketID).
		From(BundleVersionTable).
		InnerJoin(ExtensionBundleTable, BundleVersionBundleID, ExtensionBundleID)
}

// BundleVersionFilter narrows Filter. GroupID, ArtifactID and Version are LIKE
// patterns and are ignored when blank.
type BundleVersionFilter struct {
	BucketIDs  []string
	GroupID    string
	ArtifactID string
	Version    string
}

// ExtensionBundleVersionStore persists bundle versions with their dependencies.
// Versions cannot be updated.
type ExtensionBundleVersionStore struct {
	repo       *repository.Repository[string, *domain.ExtensionBundleVersion]
	deps       *repository.Repository[string, *domain.ExtensionBundleVersionDependency]
	extensions *ExtensionStore
	base       *query.Builder
	logger     *slog.Logger
}

// NewExtensionBundleVersionStore creates a bundle version store on tmpl. Deleting a
// version also deletes its extensions through extensions. If logger is nil, the
// default logger is used.
func NewExtensionBundleVersionStore(tmpl *sqlexec.Template, reg *schema.Registry, extensions *ExtensionStore, logger *slog.Logger) (*ExtensionBundleVersionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := repository.New[string, *domain.ExtensionBundleVersion](tmpl, reg, EntityExtensionBundleVersion,
		stringID(), bundleVersionValues, bundleVersionRows,
		repository.WithDependents(repository.Dependent{Table: DependencyTable, Column: DependencyBundleVersionID}),
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	deps, err := repository.New[string, *domain.ExtensionBundleVersionDependency](tmpl, reg, EntityBundleDependency,
		stringID(), dependencyValues, dependencyRows,
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &ExtensionBundleVersionStore{
		repo:       repo,
		deps:       deps,
		extensions: extensions,
		base:       bundleVersionsQuery(),
		logger:     logger.With(slog.String("component", "extension_bundle_version_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *ExtensionBundleVersionStore) WithTx(tx *sql.Tx) *ExtensionBundleVersionStore {
	return &ExtensionBundleVersionStore{
		repo:       s.repo.WithTx(tx),
		deps:       s.deps.WithTx(tx),
		extensions: s.extensions.WithTx(tx),
		base:       s.base,
		logger:     s.logger,
	}
}

// Create inserts v followed by its dependencies. The creation time defaults to now.
func (s *ExtensionBundleVersionStore) Create(ctx context.Context, v *domain.ExtensionBundleVersion) (*domain.ExtensionBundleVersion, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := v.Validate(); err != nil {
		log.Warn("bundle version validation failed during create",
			slog.String("error", err.Error()),
			slog.String("bundle_id", v.ExtensionBundleID),
			slog.String("version", v.Version))
		return nil, err
	}
	if v.Created.IsZero() {
		v.Created = domain.Now()
	}

	if _, err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	for _, d := range v.Dependencies {
		d.ExtensionBundleVersionID = v.ID
		if _, err := s.deps.Create(ctx, d); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Update always fails with store.ErrUnsupportedOperation.
func (s *ExtensionBundleVersionStore) Update(ctx context.Context, v *domain.ExtensionBundleVersion) (*domain.ExtensionBundleVersion, error) {
	return s.repo.Update(ctx, v)
}

// FindByID returns the version with its dependencies, reporting whether it exists.
func (s *ExtensionBundleVersionStore) FindByID(ctx context.Context, id string) (*domain.ExtensionBundleVersion, bool, error) {
	return s.findOne(ctx, s.base.Copy().WhereEqual(BundleVersionID), id)
}

// FindByBundleAndVersion returns a bundle's version by its version string.
func (s *ExtensionBundleVersionStore) FindByBundleAndVersion(ctx context.Context, bundleID, version string) (*domain.ExtensionBundleVersion, bool, error) {
	q := s.base.Copy().
		WhereEqual(BundleVersionBundleID).
		WhereEqual(BundleVersionVersion)
	return s.findOne(ctx, q, bundleID, version)
}

// FindByCoordinate returns the version of the bundle identified by bucket,
// group and artifact.
func (s *ExtensionBundleVersionStore) FindByCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) (*domain.ExtensionBundleVersion, bool, error) {
	q := s.base.Copy().
		WhereEqual(ExtensionBundleBucketID).
		WhereEqual(ExtensionBundleGroupID).
		WhereEqual(ExtensionBundleArtifactID).
		WhereEqual(BundleVersionVersion)
	return s.findOne(ctx, q, bucketID, groupID, artifactID, version)
}

// ListByBundle returns the versions of a bundle ordered by version, with dependencies.
func (s *ExtensionBundleVersionStore) ListByBundle(ctx context.Context, bundleID string) ([]*domain.ExtensionBundleVersion, error) {
	q := s.base.Copy().
		WhereEqual(BundleVersionBundleID).
		OrderBy(BundleVersionVersion, query.Asc)
	return s.list(ctx, q, bundleID)
}

// ListByCoordinate returns the versions of the bundle identified by bucket,
// group and artifact, ordered by version.
func (s *ExtensionBundleVersionStore) ListByCoordinate(ctx context.Context, bucketID, groupID, artifactID string) ([]*domain.ExtensionBundleVersion, error) {
	q := s.base.Copy().
		WhereEqual(ExtensionBundleBucketID).
		WhereEqual(ExtensionBundleGroupID).
		WhereEqual(ExtensionBundleArtifactID).
		OrderBy(BundleVersionVersion, query.Asc)
	return s.list(ctx, q, bucketID, groupID, artifactID)
}

// ListGlobal returns every version with the given group, artifact and version,
// whichever bucket holds it.
func (s *ExtensionBundleVersionStore) ListGlobal(ctx context.Context, groupID, artifactID, version string) ([]*domain.ExtensionBundleVersion, error) {
	q := s.base.Copy().
		WhereEqual(ExtensionBundleGroupID).
		WhereEqual(ExtensionBundleArtifactID).
		WhereEqual(BundleVersionVersion).
		OrderBy(ExtensionBundleBucketID, query.Asc)
	return s.list(ctx, q, groupID, artifactID, version)
}

// Filter returns the versions held in the given buckets matching f, ordered by
// group, artifact and version. No bucket ids means no versions.
func (s *ExtensionBundleVersionStore) Filter(ctx context.Context, f BundleVersionFilter) ([]*domain.ExtensionBundleVersion, error) {
	if len(f.BucketIDs) == 0 {
		return []*domain.ExtensionBundleVersion{}, nil
	}

	params := []query.Parameter{query.InSlice(ExtensionBundleBucketID, f.BucketIDs)}
	if strings.TrimSpace(f.GroupID) != "" {
		params = append(params, query.Like(ExtensionBundleGroupID, f.GroupID))
	}
	if strings.TrimSpace(f.ArtifactID) != "" {
		params = append(params, query.Like(ExtensionBundleArtifactID, f.ArtifactID))
	}
	if strings.TrimSpace(f.Version) != "" {
		params = append(params, query.Like(BundleVersionVersion, f.Version))
	}

	q := s.base.Copy()
	args, err := query.Apply(q, query.NewParameters(params...))
	if err != nil {
		return nil, err
	}
	q.OrderBy(ExtensionBundleGroupID, query.Asc).
		OrderBy(ExtensionBundleArtifactID, query.Asc).
		OrderBy(BundleVersionVersion, query.Asc)
	return s.list(ctx, q, args...)
}

func (s *ExtensionBundleVersionStore) findOne(ctx context.Context, q *query.Builder, args ...any) (*domain.ExtensionBundleVersion, bool, error) {
	v, found, err := s.repo.FindOneByQuery(ctx, q, args...)
	if err != nil || !found {
		return v, found, err
	}
	if err := s.attachDependencies(ctx, []*domain.ExtensionBundleVersion{v}); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *ExtensionBundleVersionStore) list(ctx context.Context, q *query.Builder, args ...any) ([]*domain.ExtensionBundleVersion, error) {
	versions, err := s.repo.FindByQuery(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := s.attachDependencies(ctx, versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// Dependencies returns the dependencies of one version.
func (s *ExtensionBundleVersionStore) Dependencies(ctx context.Context, versionID string) ([]*domain.ExtensionBundleVersionDependency, error) {
	return s.deps.FindByQueryParams(ctx, query.NewParameters(query.Eq(DependencyBundleVersionID, versionID)))
}

// Delete removes a version after its extensions, their tags and its dependencies.
func (s *ExtensionBundleVersionStore) Delete(ctx context.Context, id string) error {
	if err := s.extensions.DeleteByBundleVersion(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteByID(ctx, id)
}

// attachDependencies loads the dependencies of every version in one query.
func (s *ExtensionBundleVersionStore) attachDependencies(ctx context.Context, versions []*domain.ExtensionBundleVersion) error {
	if len(versions) == 0 {
		return nil
	}
	ids := make([]string, len(versions))
	byID := make(map[string]*domain.ExtensionBundleVersion, len(versions))
	for i, v := range versions {
		ids[i] = v.ID
		byID[v.ID] = v
		v.Dependencies = nil
	}
	deps, err := s.deps.FindByQueryParams(ctx, query.NewParameters(query.InSlice(DependencyBundleVersionID, ids)))
	if err != nil {
		return err
	}
	for _, d := range deps {
		if v, ok := byID[d.ExtensionBundleVersionID]; ok {
			v.Dependencies = append(v.Dependencies, d)
		}
	}
	return nil
}
