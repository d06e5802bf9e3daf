package domain_test

import (
	"errors"
	"testing"

	"github.com/phrazzld/flowregistry/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	validItem := domain.BucketItem{Name: "bundle", BucketID: "b1", Type: domain.BucketItemTypeBundle}

	tests := []struct {
		name    string
		entity  interface{ Validate() error }
		wantErr error
	}{
		{"bucket ok", &domain.Bucket{Name: "bucket-a"}, nil},
		{"bucket without name", &domain.Bucket{Name: "  "}, domain.ErrEmptyName},
		{"flow ok", domain.NewFlow("b1", "flow", ""), nil},
		{"flow without bucket", domain.NewFlow("", "flow", ""), domain.ErrEmptyBucketID},
		{"item with bad type", &domain.BucketItem{Name: "x", BucketID: "b1", Type: "OTHER"}, domain.ErrInvalidItemType},
		{"snapshot version zero", &domain.FlowSnapshot{FlowID: "f1"}, domain.ErrInvalidVersion},
		{"snapshot ok", &domain.FlowSnapshot{FlowID: "f1", Version: 1}, nil},
		{
			"bundle ok",
			&domain.ExtensionBundle{BucketItem: validItem, BundleType: domain.BundleTypeNiFiNar, GroupID: "g", ArtifactID: "a"},
			nil,
		},
		{
			"bundle with flow item type",
			&domain.ExtensionBundle{
				BucketItem: domain.BucketItem{Name: "x", BucketID: "b1", Type: domain.BucketItemTypeFlow},
				BundleType: domain.BundleTypeNiFiNar, GroupID: "g", ArtifactID: "a",
			},
			domain.ErrInvalidItemType,
		},
		{
			"bundle with unknown type",
			&domain.ExtensionBundle{BucketItem: validItem, BundleType: "JAR", GroupID: "g", ArtifactID: "a"},
			domain.ErrInvalidBundleType,
		},
		{
			"bundle without artifact",
			&domain.ExtensionBundle{BucketItem: validItem, BundleType: domain.BundleTypeMiNiFiCpp, GroupID: "g"},
			domain.ErrEmptyCoordinate,
		},
		{
			"version with bad dependency",
			&domain.ExtensionBundleVersion{
				ExtensionBundleID: "eb1", Version: "1.0.0",
				Dependencies: []*domain.ExtensionBundleVersionDependency{{GroupID: "g", ArtifactID: "a"}},
			},
			domain.ErrEmptyCoordinate,
		},
		{"extension without type", &domain.Extension{ExtensionBundleVersionID: "v1"}, domain.ErrEmptyType},
		{"extension ok", &domain.Extension{ExtensionBundleVersionID: "v1", Type: "org.example.Proc"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entity.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, domain.ErrValidation))
		})
	}
}

func TestCompositeKeys(t *testing.T) {
	s := &domain.FlowSnapshot{}
	s.SetID(domain.SnapshotKey{FlowID: "f1", Version: 3})
	assert.Equal(t, "f1", s.FlowID)
	assert.Equal(t, domain.SnapshotKey{FlowID: "f1", Version: 3}, s.GetID())
}

func TestFlowPromotesItemIdentity(t *testing.T) {
	f := domain.NewFlow("b1", "flow", "desc")
	f.SetID("f1")
	assert.Equal(t, "f1", f.GetID())
	assert.Equal(t, domain.BucketItemTypeFlow, f.Type)
	assert.Equal(t, f.Created, f.Modified)

	var item domain.Item = f
	assert.Equal(t, "f1", item.Base().ID)
}
