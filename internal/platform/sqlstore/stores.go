package sqlstore

import (
	"database/sql"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/platform/database"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// Stores bundles every registry store over one database handle.
type Stores struct {
	db       *sql.DB
	registry *schema.Registry

	Buckets        *BucketStore
	Items          *BucketItemStore
	Flows          *FlowStore
	Snapshots      *FlowSnapshotStore
	Bundles        *ExtensionBundleStore
	BundleVersions *ExtensionBundleVersionStore
	Extensions     *ExtensionStore
}

// NewStores builds every store on db using the given placeholder dialect.
// If logger is nil, the default logger is used.
func NewStores(db *sql.DB, dialect sqlexec.Dialect, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return NewStoresWithTemplate(db, database.NewTemplate(db, dialect, logger), NewRegistry(), logger)
}

// NewStoresWithTemplate builds every store on an existing template and registry.
func NewStoresWithTemplate(db *sql.DB, tmpl *sqlexec.Template, reg *schema.Registry, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}

	buckets, err := NewBucketStore(tmpl, reg, logger)
	if err != nil {
		return nil, err
	}
	flows, err := NewFlowStore(tmpl, reg, logger)
	if err != nil {
		return nil, err
	}
	snapshots, err := NewFlowSnapshotStore(tmpl, reg, logger)
	if err != nil {
		return nil, err
	}
	extensions, err := NewExtensionStore(tmpl, reg, logger)
	if err != nil {
		return nil, err
	}
	versions, err := NewExtensionBundleVersionStore(tmpl, reg, extensions, logger)
	if err != nil {
		return nil, err
	}
	bundles, err := NewExtensionBundleStore(tmpl, reg, versions, logger)
	if err != nil {
		return nil, err
	}

	return &Stores{
		db:             db,
		registry:       reg,
		Buckets:        buckets,
		Items:          NewBucketItemStore(tmpl, logger),
		Flows:          flows,
		Snapshots:      snapshots,
		Bundles:        bundles,
		BundleVersions: versions,
		Extensions:     extensions,
	}, nil
}

// DB returns the underlying database handle.
func (s *Stores) DB() *sql.DB { return s.db }

// Registry returns the schema registry the stores were built from.
func (s *Stores) Registry() *schema.Registry { return s.registry }

// WithTx returns stores that all run on tx.
func (s *Stores) WithTx(tx *sql.Tx) *Stores {
	return &Stores{
		db:             s.db,
		registry:       s.registry,
		Buckets:        s.Buckets.WithTx(tx),
		Items:          s.Items.WithTx(tx),
		Flows:          s.Flows.WithTx(tx),
		Snapshots:      s.Snapshots.WithTx(tx),
		Bundles:        s.Bundles.WithTx(tx),
		BundleVersions: s.BundleVersions.WithTx(tx),
		Extensions:     s.Extensions.WithTx(tx),
	}
}
