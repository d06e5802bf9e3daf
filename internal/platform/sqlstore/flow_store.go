package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/repository"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

func flowsQuery() *query.Builder {
	return query.New().
		Select(BucketName).
		Select(BucketItemTable.Columns()...).
		From(BucketItemTable).
		InnerJoin(FlowTable, BucketItemID, FlowID).
		InnerJoin(BucketTable, BucketItemBucketID, BucketID)
}

// FlowStore persists flows, which span a bucket_item row and a flow row
// sharing the same id. Create and Delete touch both tables and should run
// inside a transaction.
type FlowStore struct {
	items  *repository.Repository[string, *domain.Flow]
	flows  *repository.Repository[string, *domain.Flow]
	base   *query.Builder
	logger *slog.Logger
}

// NewFlowStore creates a flow store on tmpl. If logger is nil, the default logger is used.
func NewFlowStore(tmpl *sqlexec.Template, reg *schema.Registry, logger *slog.Logger) (*FlowStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	items, err := repository.New[string, *domain.Flow](tmpl, reg, EntityBucketItem,
		stringID(), flowItemValues, flowRows,
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	flows, err := repository.New[string, *domain.Flow](tmpl, reg, EntityFlow,
		stringID(), flowValues, flowKeyRows,
		repository.WithIDGenerator(nil),
		repository.WithDependents(repository.Dependent{Table: FlowSnapshotTable, Column: FlowSnapshotFlowID}),
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &FlowStore{
		items:  items,
		flows:  flows,
		base:   flowsQuery(),
		logger: logger.With(slog.String("component", "flow_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *FlowStore) WithTx(tx *sql.Tx) *FlowStore {
	return &FlowStore{
		items:  s.items.WithTx(tx),
		flows:  s.flows.WithTx(tx),
		base:   s.base,
		logger: s.logger,
	}
}

// Create inserts the bucket item and flow rows of f. Creation and
// modification times default to now.
func (s *FlowStore) Create(ctx context.Context, f *domain.Flow) (*domain.Flow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if f.Type == "" {
		f.Type = domain.BucketItemTypeFlow
	}
	if err := f.Validate(); err != nil {
		log.Warn("flow validation failed during create",
			slog.String("error", err.Error()),
			slog.String("bucket_id", f.BucketID))
		return nil, err
	}
	if f.Type != domain.BucketItemTypeFlow {
		return nil, domain.ErrInvalidItemType
	}
	now := domain.Now()
	if f.Created.IsZero() {
		f.Created = now
	}
	if f.Modified.IsZero() {
		f.Modified = f.Created
	}

	if _, err := s.items.Create(ctx, f); err != nil {
		return nil, err
	}
	if _, err := s.flows.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Update writes the non-empty name, description and modified values of f.
func (s *FlowStore) Update(ctx context.Context, f *domain.Flow) (*domain.Flow, error) {
	if _, err := s.items.Update(ctx, f); err != nil {
		return nil, notFound(err, store.ErrFlowNotFound, f.ID)
	}
	return f, nil
}

// UpdateIfUnmodified is Update guarded by the stored modification time: the
// row is written only while its modified column still equals lastModified.
// A flow changed in the meantime yields store.ErrConflict.
func (s *FlowStore) UpdateIfUnmodified(ctx context.Context, f *domain.Flow, lastModified time.Time) (*domain.Flow, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	n, err := s.items.UpdateColumnsWhere(ctx, f, s.items.UpdateColumns(),
		query.Eq(BucketItemModified, lastModified))
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return f, nil
	}

	exists, err := s.items.ExistsByID(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", store.ErrFlowNotFound, f.ID)
	}
	log.Warn("flow modified concurrently",
		slog.String("flow_id", f.ID),
		slog.Time("last_modified", lastModified))
	return nil, fmt.Errorf("%w: flow %s", store.ErrConflict, f.ID)
}

// FindByID returns the flow with the given id, reporting whether it exists.
func (s *FlowStore) FindByID(ctx context.Context, id string) (*domain.Flow, bool, error) {
	return s.items.FindOneByQuery(ctx, s.base.Copy().WhereEqual(BucketItemID), id)
}

// FindByIDWithSnapshotCount is FindByID with SnapshotCount filled in.
func (s *FlowStore) FindByIDWithSnapshotCount(ctx context.Context, id string) (*domain.Flow, bool, error) {
	f, found, err := s.FindByID(ctx, id)
	if err != nil || !found {
		return f, found, err
	}
	if err := s.fillSnapshotCounts(ctx, []*domain.Flow{f}); err != nil {
		return nil, false, err
	}
	return f, true, nil
}

// FindByBucket returns the flows of a bucket ordered by name, with snapshot counts.
func (s *FlowStore) FindByBucket(ctx context.Context, bucketID string) ([]*domain.Flow, error) {
	b := s.base.Copy().WhereEqual(BucketItemBucketID).OrderBy(BucketItemName, query.Asc)
	flows, err := s.items.FindByQuery(ctx, b, bucketID)
	if err != nil {
		return nil, err
	}
	if err := s.fillSnapshotCounts(ctx, flows); err != nil {
		return nil, err
	}
	return flows, nil
}

// FindByName returns the flows of a bucket with the given name.
func (s *FlowStore) FindByName(ctx context.Context, bucketID, name string) ([]*domain.Flow, error) {
	b := s.base.Copy().WhereEqual(BucketItemBucketID).WhereEqual(BucketItemName)
	return s.items.FindByQuery(ctx, b, bucketID, name)
}

// FindAllByName returns the flows with the given name across every bucket,
// ordered by bucket.
func (s *FlowStore) FindAllByName(ctx context.Context, name string) ([]*domain.Flow, error) {
	b := s.base.Copy().WhereEqual(BucketItemName).OrderBy(BucketItemBucketID, query.Asc)
	return s.items.FindByQuery(ctx, b, name)
}

// FindAll returns every flow ordered by name.
func (s *FlowStore) FindAll(ctx context.Context) ([]*domain.Flow, error) {
	return s.items.FindByQuery(ctx, s.base.Copy().OrderBy(BucketItemName, query.Asc))
}

// FindAllByID returns the flows whose id is in ids.
func (s *FlowStore) FindAllByID(ctx context.Context, ids []string) ([]*domain.Flow, error) {
	if len(ids) == 0 {
		return []*domain.Flow{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return s.items.FindByQuery(ctx, s.base.Copy().WhereIn(BucketItemID, len(ids)), args...)
}

// FindByQueryParams returns the flows matching params, which may name
// bucket_item and bucket columns.
func (s *FlowStore) FindByQueryParams(ctx context.Context, params query.Parameters) ([]*domain.Flow, error) {
	b := s.base.Copy()
	args, err := query.Apply(b, params)
	if err != nil {
		return nil, err
	}
	return s.items.FindByQuery(ctx, b, args...)
}

// Delete removes the flow with its snapshots.
func (s *FlowStore) Delete(ctx context.Context, id string) error {
	if err := s.flows.DeleteByID(ctx, id); err != nil {
		return notFound(err, store.ErrFlowNotFound, id)
	}
	if err := s.items.DeleteByID(ctx, id); err != nil {
		return notFound(err, store.ErrFlowNotFound, id)
	}
	return nil
}

func (s *FlowStore) fillSnapshotCounts(ctx context.Context, flows []*domain.Flow) error {
	ids := make([]string, len(flows))
	for i, f := range flows {
		ids[i] = f.ID
	}
	counts, err := snapshotCounts(ctx, s.items.Template(), ids)
	if err != nil {
		return err
	}
	for _, f := range flows {
		f.SnapshotCount = counts[f.ID]
	}
	return nil
}
