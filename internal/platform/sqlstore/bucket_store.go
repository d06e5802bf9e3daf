package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/database"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/repository"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// notFound replaces a store.ErrNotFound with the entity-specific sentinel.
func notFound(err error, sentinel error, id any) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", sentinel, id)
	}
	return err
}

// BucketStore persists buckets.
type BucketStore struct {
	repo   *repository.Repository[string, *domain.Bucket]
	logger *slog.Logger
}

// NewBucketStore creates a bucket store on tmpl. If logger is nil, the default logger is used.
func NewBucketStore(tmpl *sqlexec.Template, reg *schema.Registry, logger *slog.Logger) (*BucketStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := repository.New[string, *domain.Bucket](tmpl, reg, EntityBucket,
		stringID(), bucketValues, bucketRows,
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &BucketStore{
		repo:   repo,
		logger: logger.With(slog.String("component", "bucket_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *BucketStore) WithTx(tx *sql.Tx) *BucketStore {
	return &BucketStore{repo: s.repo.WithTx(tx), logger: s.logger}
}

// Create validates and inserts b, generating its id when unset, stamping the
// creation time when zero and defaulting an unset redeploy flag to false. A name already in use yields store.ErrBucketNameExists.
func (s *BucketStore) Create(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := b.Validate(); err != nil {
		log.Warn("bucket validation failed during create",
			slog.String("error", err.Error()),
			slog.String("bucket_name", b.Name))
		return nil, err
	}
	if b.Created.IsZero() {
		b.Created = domain.Now()
	}
	if b.AllowExtensionBundleRedeploy == nil {
		b.AllowExtensionBundleRedeploy = domain.Bool(false)
	}

	created, err := s.repo.Create(ctx, b)
	if err != nil {
		return nil, database.MapUniqueViolation(err, "bucket", store.ErrBucketNameExists)
	}
	return created, nil
}

// Update writes the non-empty fields of b. Empty fields and a nil redeploy
// flag keep their stored value.
func (s *BucketStore) Update(ctx context.Context, b *domain.Bucket) (*domain.Bucket, error) {
	updated, err := s.repo.Update(ctx, b)
	if err != nil {
		err = database.MapUniqueViolation(err, "bucket", store.ErrBucketNameExists)
		return nil, notFound(err, store.ErrBucketNotFound, b.ID)
	}
	return updated, nil
}

// FindByID returns the bucket with the given id, reporting whether it exists.
func (s *BucketStore) FindByID(ctx context.Context, id string) (*domain.Bucket, bool, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByName returns the buckets named name.
func (s *BucketStore) FindByName(ctx context.Context, name string) ([]*domain.Bucket, error) {
	return s.repo.FindByQueryParams(ctx, query.NewParameters(query.Eq(BucketName, name)))
}

// FindAll returns every bucket ordered by name.
func (s *BucketStore) FindAll(ctx context.Context) ([]*domain.Bucket, error) {
	b := sqlexec.SelectAllQuery(BucketTable).OrderBy(BucketName, query.Asc)
	return s.repo.FindByQuery(ctx, b)
}

// FindAllByID returns the buckets whose id is in ids.
func (s *BucketStore) FindAllByID(ctx context.Context, ids []string) ([]*domain.Bucket, error) {
	return s.repo.FindAllByID(ctx, ids)
}

// FindByQueryParams returns the buckets matching params.
func (s *BucketStore) FindByQueryParams(ctx context.Context, params query.Parameters) ([]*domain.Bucket, error) {
	return s.repo.FindByQueryParams(ctx, params)
}

// Delete removes the bucket. Items still stored in it make the delete fail
// with store.ErrInvalidEntity.
func (s *BucketStore) Delete(ctx context.Context, id string) error {
	return notFound(s.repo.DeleteByID(ctx, id), store.ErrBucketNotFound, id)
}
