package sqlstore

import (
	"context"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// countBy returns count(counted) grouped by key for the given key values.
// Keys without rows are absent from the result.
func countBy(ctx context.Context, tmpl *sqlexec.Template, key, counted *schema.Column, ids []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	b := query.New().
		Select(key).
		SelectCount(counted).
		From(key.Table()).
		WhereIn(key, len(ids)).
		GroupBy(key)
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	err = tmpl.QueryEach(ctx, stmt, args, func(rec *sqlexec.Record) error {
		counts[rec.String(key)] = rec.Int64(query.Count(counted))
		return rec.Err()
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// snapshotCounts returns the number of snapshots per flow id.
func snapshotCounts(ctx context.Context, tmpl *sqlexec.Template, flowIDs []string) (map[string]int64, error) {
	return countBy(ctx, tmpl, FlowSnapshotFlowID, FlowSnapshotVersion, flowIDs)
}

// versionCounts returns the number of versions per bundle id.
func versionCounts(ctx context.Context, tmpl *sqlexec.Template, bundleIDs []string) (map[string]int64, error) {
	return countBy(ctx, tmpl, BundleVersionBundleID, BundleVersionID, bundleIDs)
}

// countItems fills in the snapshot and version counts of items.
func countItems(ctx context.Context, tmpl *sqlexec.Template, items []domain.Item) error {
	var flowIDs, bundleIDs []string
	for _, it := range items {
		switch v := it.(type) {
		case *domain.Flow:
			flowIDs = append(flowIDs, v.ID)
		case *domain.ExtensionBundle:
			bundleIDs = append(bundleIDs, v.ID)
		}
	}
	snaps, err := snapshotCounts(ctx, tmpl, flowIDs)
	if err != nil {
		return err
	}
	versions, err := versionCounts(ctx, tmpl, bundleIDs)
	if err != nil {
		return err
	}
	for _, it := range items {
		switch v := it.(type) {
		case *domain.Flow:
			v.SnapshotCount = snaps[v.ID]
		case *domain.ExtensionBundle:
			v.VersionCount = versions[v.ID]
		}
	}
	return nil
}
