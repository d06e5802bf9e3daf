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

// ExtensionStore persists extensions and their tags. Extensions are immutable;
// Create writes one extension_tag row per normalized tag next to the
// comma-joined tags column.
type ExtensionStore struct {
	repo   *repository.Repository[string, *domain.Extension]
	tags   *repository.Repository[string, *domain.ExtensionTag]
	base   *query.Builder
	logger *slog.Logger
}

// NewExtensionStore creates an extension store on tmpl. If logger is nil, the default logger is used.
func NewExtensionStore(tmpl *sqlexec.Template, reg *schema.Registry, logger *slog.Logger) (*ExtensionStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := repository.New[string, *domain.Extension](tmpl, reg, EntityExtension,
		stringID(), extensionValues, extensionRows,
		repository.WithDependents(repository.Dependent{Table: ExtensionTagTable, Column: ExtensionTagExtensionID}),
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	tags, err := repository.New[string, *domain.ExtensionTag](tmpl, reg, EntityExtensionTag,
		stringID(), tagValues, tagRows,
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &ExtensionStore{
		repo:   repo,
		tags:   tags,
		base:   sqlexec.SelectAllQuery(ExtensionTable),
		logger: logger.With(slog.String("component", "extension_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *ExtensionStore) WithTx(tx *sql.Tx) *ExtensionStore {
	return &ExtensionStore{repo: s.repo.WithTx(tx), tags: s.tags.WithTx(tx), base: s.base, logger: s.logger}
}

// Create inserts e and its tags.
func (s *ExtensionStore) Create(ctx context.Context, e *domain.Extension) (*domain.Extension, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := e.Validate(); err != nil {
		log.Warn("extension validation failed during create",
			slog.String("error", err.Error()),
			slog.String("extension_type", e.Type))
		return nil, err
	}
	e.Tags = NormalizeTags(e.Tags)

	if _, err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	for _, tag := range e.Tags {
		if _, err := s.tags.Create(ctx, &domain.ExtensionTag{ExtensionID: e.ID, Tag: tag}); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// FindByID returns the extension with the given id, reporting whether it exists.
func (s *ExtensionStore) FindByID(ctx context.Context, id string) (*domain.Extension, bool, error) {
	return s.repo.FindByID(ctx, id)
}

// ListAll returns every extension ordered by type.
func (s *ExtensionStore) ListAll(ctx context.Context) ([]*domain.Extension, error) {
	b := s.base.Copy().OrderBy(ExtensionType, query.Asc)
	return s.repo.FindByQuery(ctx, b)
}

// ListByBundleVersion returns the extensions of one bundle version ordered by type.
func (s *ExtensionStore) ListByBundleVersion(ctx context.Context, versionID string) ([]*domain.Extension, error) {
	b := s.base.Copy().
		WhereEqual(ExtensionBundleVersionID).
		OrderBy(ExtensionType, query.Asc)
	return s.repo.FindByQuery(ctx, b, versionID)
}

// ListByTag returns the extensions carrying tag, compared case-insensitively.
func (s *ExtensionStore) ListByTag(ctx context.Context, tag string) ([]*domain.Extension, error) {
	b := s.base.Copy().
		InnerJoin(ExtensionTagTable, ExtensionID, ExtensionTagExtensionID).
		WhereEqual(ExtensionTagTag).
		OrderBy(ExtensionType, query.Asc)
	return s.repo.FindByQuery(ctx, b, strings.ToLower(strings.TrimSpace(tag)))
}

// ListByCategory returns the extensions in category ordered by type.
func (s *ExtensionStore) ListByCategory(ctx context.Context, category string) ([]*domain.Extension, error) {
	b := s.base.Copy().
		WhereEqual(ExtensionCategory).
		OrderBy(ExtensionType, query.Asc)
	return s.repo.FindByQuery(ctx, b, category)
}

// ListByBundleCoordinate returns the extensions of the bundle version
// identified by bucket, group, artifact and version, ordered by type.
func (s *ExtensionStore) ListByBundleCoordinate(ctx context.Context, bucketID, groupID, artifactID, version string) ([]*domain.Extension, error) {
	b := s.base.Copy().
		InnerJoin(BundleVersionTable, ExtensionBundleVersionID, BundleVersionID).
		InnerJoin(ExtensionBundleTable, BundleVersionBundleID, ExtensionBundleID).
		WhereEqual(ExtensionBundleBucketID).
		WhereEqual(ExtensionBundleGroupID).
		WhereEqual(ExtensionBundleArtifactID).
		WhereEqual(BundleVersionVersion).
		OrderBy(ExtensionType, query.Asc)
	return s.repo.FindByQuery(ctx, b, bucketID, groupID, artifactID, version)
}

// FindByQueryParams returns the extensions matching params.
func (s *ExtensionStore) FindByQueryParams(ctx context.Context, params query.Parameters) ([]*domain.Extension, error) {
	return s.repo.FindByQueryParams(ctx, params)
}

// ListTags returns every distinct tag in ascending order.
func (s *ExtensionStore) ListTags(ctx context.Context) ([]string, error) {
	stmt, err := query.New().
		Select(ExtensionTagTag).
		From(ExtensionTagTable).
		GroupBy(ExtensionTagTag).
		OrderBy(ExtensionTagTag, query.Asc).
		Build()
	if err != nil {
		return nil, err
	}
	tags := []string{}
	err = s.tags.Template().QueryEach(ctx, stmt, nil, func(rec *sqlexec.Record) error {
		tags = append(tags, rec.String(ExtensionTagTag))
		return rec.Err()
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Delete removes an extension and its tags.
func (s *ExtensionStore) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// DeleteByBundleVersion removes every extension of a bundle version with its tags.
func (s *ExtensionStore) DeleteByBundleVersion(ctx context.Context, versionID string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tmpl := s.repo.Template()
	stmt := "DELETE FROM " + ExtensionTagTable.Name() +
		" WHERE " + ExtensionTagExtensionID.Name() + " IN (SELECT " + ExtensionID.Name() +
		" FROM " + ExtensionTable.Name() + " WHERE " + ExtensionBundleVersionID.Name() + " = ?)"
	tagCount, err := tmpl.Exec(ctx, stmt, versionID)
	if err != nil {
		return err
	}
	extCount, err := sqlexec.DeleteWhere(ctx, tmpl, ExtensionTable, ExtensionBundleVersionID, versionID)
	if err != nil {
		return err
	}
	log.Debug("deleted bundle version extensions",
		slog.String("bundle_version_id", versionID),
		slog.Int64("extensions", extCount),
		slog.Int64("tags", tagCount))
	return nil
}
