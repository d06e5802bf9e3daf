package service

import (
	"strings"

	"github.com/phrazzld/flowregistry/internal/platform/sqlstore"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

func fieldNames(cols ...*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = strings.ToUpper(c.Name())
	}
	return out
}

// BucketFields returns the bucket fields clients may sort or filter on.
func (s *MetadataService) BucketFields() []string {
	return fieldNames(sqlstore.BucketID, sqlstore.BucketName, sqlstore.BucketDescription, sqlstore.BucketCreated)
}

// BucketItemFields returns the bucket item fields clients may sort or filter on.
func (s *MetadataService) BucketItemFields() []string {
	return fieldNames(sqlstore.BucketItemID, sqlstore.BucketItemName, sqlstore.BucketItemDescription,
		sqlstore.BucketItemCreated, sqlstore.BucketItemModified, sqlstore.BucketItemType, sqlstore.BucketItemBucketID)
}

// FlowFields returns the flow fields clients may sort or filter on. Flows
// expose the bucket item fields.
func (s *MetadataService) FlowFields() []string {
	return s.BucketItemFields()
}
