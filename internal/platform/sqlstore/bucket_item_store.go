package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// itemsQuery selects every bucket item with its bucket name and, for bundles,
// the extension_bundle columns.
func itemsQuery() *query.Builder {
	return query.New().
		Select(BucketName).
		Select(BucketItemTable.Columns()...).
		Select(ExtensionBundleType, ExtensionBundleGroupID, ExtensionBundleArtifactID).
		From(BucketItemTable).
		InnerJoin(BucketTable, BucketItemBucketID, BucketID).
		LeftJoin(ExtensionBundleTable, BucketItemID, ExtensionBundleID)
}

// BucketItemStore lists the flows and extension bundles stored in buckets.
type BucketItemStore struct {
	tmpl   *sqlexec.Template
	base   *query.Builder
	logger *slog.Logger
}

// NewBucketItemStore creates a bucket item store on tmpl. If logger is nil, the default logger is used.
func NewBucketItemStore(tmpl *sqlexec.Template, logger *slog.Logger) *BucketItemStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BucketItemStore{
		tmpl:   tmpl,
		base:   itemsQuery(),
		logger: logger.With(slog.String("component", "bucket_item_store")),
	}
}

// WithTx returns a store that runs on tx.
func (s *BucketItemStore) WithTx(tx *sql.Tx) *BucketItemStore {
	return &BucketItemStore{tmpl: s.tmpl.WithTx(tx), base: s.base, logger: s.logger}
}

// ListByBucket returns the items of one bucket ordered by name.
func (s *BucketItemStore) ListByBucket(ctx context.Context, bucketID string) ([]domain.Item, error) {
	b := s.base.Copy().WhereEqual(BucketItemBucketID).OrderBy(BucketItemName, query.Asc)
	return s.list(ctx, b, []any{bucketID})
}

// ListByBuckets returns the items of every bucket in bucketIDs ordered by name.
// No bucket ids means no items.
func (s *BucketItemStore) ListByBuckets(ctx context.Context, bucketIDs []string) ([]domain.Item, error) {
	if len(bucketIDs) == 0 {
		return []domain.Item{}, nil
	}
	args := make([]any, len(bucketIDs))
	for i, id := range bucketIDs {
		args[i] = id
	}
	b := s.base.Copy().WhereIn(BucketItemBucketID, len(bucketIDs)).OrderBy(BucketItemName, query.Asc)
	return s.list(ctx, b, args)
}

func (s *BucketItemStore) list(ctx context.Context, b *query.Builder, args []any) ([]domain.Item, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := sqlexec.QueryBuilder(ctx, s.tmpl, b, args, itemRows)
	if err != nil {
		log.Error("failed to list bucket items", slog.String("error", err.Error()))
		return nil, err
	}
	if err := countItems(ctx, s.tmpl, items); err != nil {
		log.Error("failed to count item versions", slog.String("error", err.Error()))
		return nil, err
	}
	log.Debug("listed bucket items", slog.Int("count", len(items)))
	return items, nil
}
