package service

import (
	"database/sql"

	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
)

// SQLStores adapts *sqlstore.Stores to Stores.
type SQLStores struct {
	stores *sqlstore.Stores
}

// NewSQLStores wraps the SQL store implementations.
func NewSQLStores(s *sqlstore.Stores) *SQLStores {
	return &SQLStores{stores: s}
}

var _ Stores = (*SQLStores)(nil)

func (a *SQLStores) Buckets() BucketRepository               { return a.stores.Buckets }
func (a *SQLStores) Items() BucketItemRepository             { return a.stores.Items }
func (a *SQLStores) Flows() FlowRepository                   { return a.stores.Flows }
func (a *SQLStores) Snapshots() SnapshotRepository           { return a.stores.Snapshots }
func (a *SQLStores) Bundles() BundleRepository               { return a.stores.Bundles }
func (a *SQLStores) BundleVersions() BundleVersionRepository { return a.stores.BundleVersions }
func (a *SQLStores) Extensions() ExtensionRepository         { return a.stores.Extensions }

// WithTx implements Stores.
func (a *SQLStores) WithTx(tx *sql.Tx) Stores {
	return &SQLStores{stores: a.stores.WithTx(tx)}
}

// DB implements Stores.
func (a *SQLStores) DB() *sql.DB { return a.stores.DB() }
