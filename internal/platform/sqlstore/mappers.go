package sqlstore

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// Empty strings and zero times are written as NULL, which keeps them out of
// partial-patch updates.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}

func optionalBool(rec *sqlexec.Record, col *schema.Column) *bool {
	if rec.IsNull(col) {
		return nil
	}
	return domain.Bool(rec.Bool(col))
}

func stringID() sqlexec.IDMapper[string] { return sqlexec.ScalarID[string]() }

// bucket

var bucketValues sqlexec.ValueMapper[*domain.Bucket] = sqlexec.ValueMapperFunc[*domain.Bucket](
	func(col *schema.Column, b *domain.Bucket) (any, error) {
		switch col {
		case BucketID:
			return nullable(b.ID), nil
		case BucketName:
			return nullable(b.Name), nil
		case BucketDescription:
			return nullable(b.Description), nil
		case BucketCreated:
			return nullableTime(b.Created), nil
		case BucketAllowRedeploy:
			return nullableBool(b.AllowExtensionBundleRedeploy), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var bucketRows sqlexec.RowMapper[*domain.Bucket] = sqlexec.RowMapperFunc[*domain.Bucket](
	func(rec *sqlexec.Record) (*domain.Bucket, error) {
		b := &domain.Bucket{
			ID:                           rec.String(BucketID),
			Name:                         rec.String(BucketName),
			Description:                  rec.String(BucketDescription),
			Created:                      rec.Time(BucketCreated),
			AllowExtensionBundleRedeploy: optionalBool(rec, BucketAllowRedeploy),
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return b, nil
	})

// bucket_item

func bucketItemValue(col *schema.Column, i *domain.BucketItem) (any, error) {
	switch col {
	case BucketItemID:
		return nullable(i.ID), nil
	case BucketItemName:
		return nullable(i.Name), nil
	case BucketItemDescription:
		return nullable(i.Description), nil
	case BucketItemCreated:
		return nullableTime(i.Created), nil
	case BucketItemModified:
		return nullableTime(i.Modified), nil
	case BucketItemType:
		return nullable(string(i.Type)), nil
	case BucketItemBucketID:
		return nullable(i.BucketID), nil
	}
	return nil, sqlexec.UnexpectedColumn(col)
}

// readBucketItem reads the bucket_item columns of rec, plus the bucket name
// when the query joined it.
func readBucketItem(rec *sqlexec.Record) domain.BucketItem {
	item := domain.BucketItem{
		ID:          rec.String(BucketItemID),
		Name:        rec.String(BucketItemName),
		Description: rec.String(BucketItemDescription),
		Created:     rec.Time(BucketItemCreated),
		Modified:    rec.Time(BucketItemModified),
		Type:        domain.BucketItemType(rec.String(BucketItemType)),
		BucketID:    rec.String(BucketItemBucketID),
	}
	if rec.Has(BucketName) {
		item.BucketName = rec.String(BucketName)
	}
	return item
}

var itemRows sqlexec.RowMapper[domain.Item] = sqlexec.RowMapperFunc[domain.Item](
	func(rec *sqlexec.Record) (domain.Item, error) {
		base := readBucketItem(rec)
		if err := rec.Err(); err != nil {
			return nil, err
		}
		switch base.Type {
		case domain.BucketItemTypeFlow:
			return &domain.Flow{BucketItem: base}, nil
		case domain.BucketItemTypeBundle:
			b, err := readBundle(rec, base)
			if err != nil {
				return nil, err
			}
			return b, nil
		}
		return nil, fmt.Errorf("%w: bucket item %s has unknown type %q", store.ErrMapping, base.ID, base.Type)
	})

// flow

var flowItemValues sqlexec.ValueMapper[*domain.Flow] = sqlexec.ValueMapperFunc[*domain.Flow](
	func(col *schema.Column, f *domain.Flow) (any, error) {
		return bucketItemValue(col, &f.BucketItem)
	})

var flowValues sqlexec.ValueMapper[*domain.Flow] = sqlexec.ValueMapperFunc[*domain.Flow](
	func(col *schema.Column, f *domain.Flow) (any, error) {
		if col == FlowID {
			return nullable(f.ID), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

// flowKeyRows reads rows of the flow table alone, which only hold the id.
var flowKeyRows sqlexec.RowMapper[*domain.Flow] = sqlexec.RowMapperFunc[*domain.Flow](
	func(rec *sqlexec.Record) (*domain.Flow, error) {
		f := &domain.Flow{BucketItem: domain.BucketItem{ID: rec.String(FlowID), Type: domain.BucketItemTypeFlow}}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return f, nil
	})

var flowRows sqlexec.RowMapper[*domain.Flow] = sqlexec.RowMapperFunc[*domain.Flow](
	func(rec *sqlexec.Record) (*domain.Flow, error) {
		f := &domain.Flow{BucketItem: readBucketItem(rec)}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return f, nil
	})

// flow_snapshot

var snapshotIDs sqlexec.IDMapper[domain.SnapshotKey] = sqlexec.IDMapperFunc[domain.SnapshotKey](
	func(col *schema.Column, k domain.SnapshotKey) (any, error) {
		switch col {
		case FlowSnapshotFlowID:
			return k.FlowID, nil
		case FlowSnapshotVersion:
			return k.Version, nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var snapshotValues sqlexec.ValueMapper[*domain.FlowSnapshot] = sqlexec.ValueMapperFunc[*domain.FlowSnapshot](
	func(col *schema.Column, s *domain.FlowSnapshot) (any, error) {
		switch col {
		case FlowSnapshotFlowID:
			return nullable(s.FlowID), nil
		case FlowSnapshotVersion:
			return s.Version, nil
		case FlowSnapshotCreated:
			return nullableTime(s.Created), nil
		case FlowSnapshotCreatedBy:
			return nullable(s.CreatedBy), nil
		case FlowSnapshotComments:
			return nullable(s.Comments), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var snapshotRows sqlexec.RowMapper[*domain.FlowSnapshot] = sqlexec.RowMapperFunc[*domain.FlowSnapshot](
	func(rec *sqlexec.Record) (*domain.FlowSnapshot, error) {
		s := &domain.FlowSnapshot{
			FlowID:    rec.String(FlowSnapshotFlowID),
			Version:   rec.Int(FlowSnapshotVersion),
			Created:   rec.Time(FlowSnapshotCreated),
			CreatedBy: rec.String(FlowSnapshotCreatedBy),
			Comments:  rec.String(FlowSnapshotComments),
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return s, nil
	})

// extension_bundle

var bundleItemValues sqlexec.ValueMapper[*domain.ExtensionBundle] = sqlexec.ValueMapperFunc[*domain.ExtensionBundle](
	func(col *schema.Column, b *domain.ExtensionBundle) (any, error) {
		return bucketItemValue(col, &b.BucketItem)
	})

var bundleValues sqlexec.ValueMapper[*domain.ExtensionBundle] = sqlexec.ValueMapperFunc[*domain.ExtensionBundle](
	func(col *schema.Column, b *domain.ExtensionBundle) (any, error) {
		switch col {
		case ExtensionBundleID:
			return nullable(b.ID), nil
		case ExtensionBundleBucketID:
			return nullable(b.BucketID), nil
		case ExtensionBundleType:
			return nullable(string(b.BundleType)), nil
		case ExtensionBundleGroupID:
			return nullable(b.GroupID), nil
		case ExtensionBundleArtifactID:
			return nullable(b.ArtifactID), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

func readBundle(rec *sqlexec.Record, base domain.BucketItem) (*domain.ExtensionBundle, error) {
	b := &domain.ExtensionBundle{
		BucketItem: base,
		BundleType: domain.BundleType(rec.String(ExtensionBundleType)),
		GroupID:    rec.String(ExtensionBundleGroupID),
		ArtifactID: rec.String(ExtensionBundleArtifactID),
	}
	if err := rec.Err(); err != nil {
		return nil, err
	}
	return b, nil
}

var bundleRows sqlexec.RowMapper[*domain.ExtensionBundle] = sqlexec.RowMapperFunc[*domain.ExtensionBundle](
	func(rec *sqlexec.Record) (*domain.ExtensionBundle, error) {
		return readBundle(rec, readBucketItem(rec))
	})

// extension_bundle_version

var bundleVersionValues sqlexec.ValueMapper[*domain.ExtensionBundleVersion] = sqlexec.ValueMapperFunc[*domain.ExtensionBundleVersion](
	func(col *schema.Column, v *domain.ExtensionBundleVersion) (any, error) {
		switch col {
		case BundleVersionID:
			return nullable(v.ID), nil
		case BundleVersionBundleID:
			return nullable(v.ExtensionBundleID), nil
		case BundleVersionVersion:
			return nullable(v.Version), nil
		case BundleVersionCreated:
			return nullableTime(v.Created), nil
		case BundleVersionCreatedBy:
			return nullable(v.CreatedBy), nil
		case BundleVersionDescription:
			return nullable(v.Description), nil
		case BundleVersionSHA256Hex:
			return nullable(v.SHA256Hex), nil
		case BundleVersionSHA256Supplied:
			return v.SHA256Supplied, nil
		case BundleVersionContentSize:
			return v.ContentSize, nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var bundleVersionRows sqlexec.RowMapper[*domain.ExtensionBundleVersion] = sqlexec.RowMapperFunc[*domain.ExtensionBundleVersion](
	func(rec *sqlexec.Record) (*domain.ExtensionBundleVersion, error) {
		v := &domain.ExtensionBundleVersion{
			ID:                rec.String(BundleVersionID),
			ExtensionBundleID: rec.String(BundleVersionBundleID),
			Version:           rec.String(BundleVersionVersion),
			Created:           rec.Time(BundleVersionCreated),
			CreatedBy:         rec.String(BundleVersionCreatedBy),
			Description:       rec.String(BundleVersionDescription),
			SHA256Hex:         rec.String(BundleVersionSHA256Hex),
			SHA256Supplied:    rec.Bool(BundleVersionSHA256Supplied),
			ContentSize:       rec.Int64(BundleVersionContentSize),
		}
		if rec.Has(ExtensionBundleBucketID) {
			v.BucketID = rec.String(ExtensionBundleBucketID)
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return v, nil
	})

// extension_bundle_version_dependency

var dependencyValues sqlexec.ValueMapper[*domain.ExtensionBundleVersionDependency] = sqlexec.ValueMapperFunc[*domain.ExtensionBundleVersionDependency](
	func(col *schema.Column, d *domain.ExtensionBundleVersionDependency) (any, error) {
		switch col {
		case DependencyID:
			return nullable(d.ID), nil
		case DependencyBundleVersionID:
			return nullable(d.ExtensionBundleVersionID), nil
		case DependencyGroupID:
			return nullable(d.GroupID), nil
		case DependencyArtifactID:
			return nullable(d.ArtifactID), nil
		case DependencyVersion:
			return nullable(d.Version), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var dependencyRows sqlexec.RowMapper[*domain.ExtensionBundleVersionDependency] = sqlexec.RowMapperFunc[*domain.ExtensionBundleVersionDependency](
	func(rec *sqlexec.Record) (*domain.ExtensionBundleVersionDependency, error) {
		d := &domain.ExtensionBundleVersionDependency{
			ID:                       rec.String(DependencyID),
			ExtensionBundleVersionID: rec.String(DependencyBundleVersionID),
			GroupID:                  rec.String(DependencyGroupID),
			ArtifactID:               rec.String(DependencyArtifactID),
			Version:                  rec.String(DependencyVersion),
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return d, nil
	})

// extension

// NormalizeTags trims and lower-cases tags, dropping empty and repeated ones.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return NormalizeTags(strings.Split(s, ","))
}

var extensionValues sqlexec.ValueMapper[*domain.Extension] = sqlexec.ValueMapperFunc[*domain.Extension](
	func(col *schema.Column, e *domain.Extension) (any, error) {
		switch col {
		case ExtensionID:
			return nullable(e.ID), nil
		case ExtensionBundleVersionID:
			return nullable(e.ExtensionBundleVersionID), nil
		case ExtensionType:
			return nullable(e.Type), nil
		case ExtensionTypeDescription:
			return nullable(e.TypeDescription), nil
		case ExtensionRestricted:
			return e.Restricted, nil
		case ExtensionCategory:
			return nullable(e.Category), nil
		case ExtensionTags:
			return nullable(strings.Join(e.Tags, ",")), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var extensionRows sqlexec.RowMapper[*domain.Extension] = sqlexec.RowMapperFunc[*domain.Extension](
	func(rec *sqlexec.Record) (*domain.Extension, error) {
		e := &domain.Extension{
			ID:                       rec.String(ExtensionID),
			ExtensionBundleVersionID: rec.String(ExtensionBundleVersionID),
			Type:                     rec.String(ExtensionType),
			TypeDescription:          rec.String(ExtensionTypeDescription),
			Restricted:               rec.Bool(ExtensionRestricted),
			Category:                 rec.String(ExtensionCategory),
			Tags:                     splitTags(rec.String(ExtensionTags)),
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return e, nil
	})

// extension_tag

var tagValues sqlexec.ValueMapper[*domain.ExtensionTag] = sqlexec.ValueMapperFunc[*domain.ExtensionTag](
	func(col *schema.Column, t *domain.ExtensionTag) (any, error) {
		switch col {
		case ExtensionTagID:
			return nullable(t.ID), nil
		case ExtensionTagExtensionID:
			return nullable(t.ExtensionID), nil
		case ExtensionTagTag:
			return nullable(t.Tag), nil
		}
		return nil, sqlexec.UnexpectedColumn(col)
	})

var tagRows sqlexec.RowMapper[*domain.ExtensionTag] = sqlexec.RowMapperFunc[*domain.ExtensionTag](
	func(rec *sqlexec.Record) (*domain.ExtensionTag, error) {
		t := &domain.ExtensionTag{
			ID:          rec.String(ExtensionTagID),
			ExtensionID: rec.String(ExtensionTagExtensionID),
			Tag:         rec.String(ExtensionTagTag),
		}
		if err := rec.Err(); err != nil {
			return nil, err
		}
		return t, nil
	})
