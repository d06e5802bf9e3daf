package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/repository"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// FlowSnapshotStore persists flow snapshots keyed by (flow id, version).
// Snapshots are immutable.
type FlowSnapshotStore struct {
	repo   *repository.Repository[domain.SnapshotKey, *domain.FlowSnapshot]
	logger *slog.Logger
}

// NewFlowSnapshotStore creates a snapshot store on tmpl. If logger is nil, the default logger is used.
func NewFlowSnapshotStore(tmpl *sqlexec.Template, reg *schema.Registry, logger *slog.Logger) (*FlowSnapshotStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo, err := repository.New[domain.SnapshotKey, *domain.FlowSnapshot](tmpl, reg, EntityFlowSnapshot,
		snapshotIDs, snapshotValues, snapshotRows,
		repository.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return &FlowSnapshotStore{
		repo:   repo,
		logger: logger.With(slog.String("component", "flow_snapshot_store")),
	}, nil
}

// WithTx returns a store that runs on tx.
func (s *FlowSnapshotStore) WithTx(tx *sql.Tx) *FlowSnapshotStore {
	return &FlowSnapshotStore{repo: s.repo.WithTx(tx), logger: s.logger}
}

// Create inserts a snapshot. The creation time defaults to now.
func (s *FlowSnapshotStore) Create(ctx context.Context, snap *domain.FlowSnapshot) (*domain.FlowSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := snap.Validate(); err != nil {
		log.Warn("snapshot validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flow_id", snap.FlowID),
			slog.Int("version", snap.Version))
		return nil, err
	}
	if snap.Created.IsZero() {
		snap.Created = domain.Now()
	}
	return s.repo.Create(ctx, snap)
}

// FindByID returns the snapshot with the given key, reporting whether it exists.
func (s *FlowSnapshotStore) FindByID(ctx context.Context, key domain.SnapshotKey) (*domain.FlowSnapshot, bool, error) {
	return s.repo.FindByID(ctx, key)
}

// FindAllByID returns the snapshots whose key is in keys.
func (s *FlowSnapshotStore) FindAllByID(ctx context.Context, keys []domain.SnapshotKey) ([]*domain.FlowSnapshot, error) {
	return s.repo.FindAllByID(ctx, keys)
}

// Latest returns the highest-versioned snapshot of a flow.
func (s *FlowSnapshotStore) Latest(ctx context.Context, flowID string) (*domain.FlowSnapshot, bool, error) {
	b := sqlexec.SelectAllQuery(FlowSnapshotTable).
		WhereEqual(FlowSnapshotFlowID).
		OrderBy(FlowSnapshotVersion, query.Desc).
		Limit(1)
	return s.repo.FindOneByQuery(ctx, b, flowID)
}

// ListByFlow returns the snapshots of a flow, newest first.
func (s *FlowSnapshotStore) ListByFlow(ctx context.Context, flowID string) ([]*domain.FlowSnapshot, error) {
	b := sqlexec.SelectAllQuery(FlowSnapshotTable).
		WhereEqual(FlowSnapshotFlowID).
		OrderBy(FlowSnapshotVersion, query.Desc)
	return s.repo.FindByQuery(ctx, b, flowID)
}

// Delete removes one snapshot.
func (s *FlowSnapshotStore) Delete(ctx context.Context, key domain.SnapshotKey) error {
	return notFound(s.repo.DeleteByID(ctx, key), store.ErrSnapshotNotFound, key)
}
