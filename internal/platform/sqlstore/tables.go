package sqlstore

import (
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// Entity types registered by NewRegistry.
const (
	EntityBucket                 schema.EntityType = "bucket"
	EntityBucketItem             schema.EntityType = "bucket_item"
	EntityFlow                   schema.EntityType = "flow"
	EntityFlowSnapshot           schema.EntityType = "flow_snapshot"
	EntityExtensionBundle        schema.EntityType = "extension_bundle"
	EntityExtensionBundleVersion schema.EntityType = "extension_bundle_version"
	EntityBundleDependency       schema.EntityType = "extension_bundle_version_dependency"
	EntityExtension              schema.EntityType = "extension"
	EntityExtensionTag           schema.EntityType = "extension_tag"
)

var uuidGenerator = schema.UUIDStringGenerator{}

// bucket
var (
	BucketTable = schema.NewTable("bucket", "b").
		Column("id", "created").
		Updatable("name", "description", "allow_extension_bundle_redeploy").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	BucketID            = BucketTable.MustColumn("id")
	BucketName          = BucketTable.MustColumn("name")
	BucketDescription   = BucketTable.MustColumn("description")
	BucketCreated       = BucketTable.MustColumn("created")
	BucketAllowRedeploy = BucketTable.MustColumn("allow_extension_bundle_redeploy")
)

// bucket_item
var (
	BucketItemTable = schema.NewTable("bucket_item", "bi").
		Column("id", "created", "item_type", "bucket_id").
		Updatable("name", "description", "modified").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	BucketItemID          = BucketItemTable.MustColumn("id")
	BucketItemName        = BucketItemTable.MustColumn("name")
	BucketItemDescription = BucketItemTable.MustColumn("description")
	BucketItemCreated     = BucketItemTable.MustColumn("created")
	BucketItemModified    = BucketItemTable.MustColumn("modified")
	BucketItemType        = BucketItemTable.MustColumn("item_type")
	BucketItemBucketID    = BucketItemTable.MustColumn("bucket_id")
)

// flow
var (
	FlowTable = schema.NewTable("flow", "f").
		Column("id").
		ID("id").
		MustBuild()

	FlowID = FlowTable.MustColumn("id")
)

// flow_snapshot
var (
	FlowSnapshotTable = schema.NewTable("flow_snapshot", "fs").
		Column("flow_id", "version", "created", "created_by", "comments").
		ID("flow_id", "version").
		MustBuild()

	FlowSnapshotFlowID    = FlowSnapshotTable.MustColumn("flow_id")
	FlowSnapshotVersion   = FlowSnapshotTable.MustColumn("version")
	FlowSnapshotCreated   = FlowSnapshotTable.MustColumn("created")
	FlowSnapshotCreatedBy = FlowSnapshotTable.MustColumn("created_by")
	FlowSnapshotComments  = FlowSnapshotTable.MustColumn("comments")
)

// extension_bundle
var (
	ExtensionBundleTable = schema.NewTable("extension_bundle", "eb").
		Column("id", "bucket_id", "bundle_type", "group_id", "artifact_id").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	ExtensionBundleID         = ExtensionBundleTable.MustColumn("id")
	ExtensionBundleBucketID   = ExtensionBundleTable.MustColumn("bucket_id")
	ExtensionBundleType       = ExtensionBundleTable.MustColumn("bundle_type")
	ExtensionBundleGroupID    = ExtensionBundleTable.MustColumn("group_id")
	ExtensionBundleArtifactID = ExtensionBundleTable.MustColumn("artifact_id")
)

// extension_bundle_version
var (
	BundleVersionTable = schema.NewTable("extension_bundle_version", "ebv").
		Column("id", "extension_bundle_id", "version", "created", "created_by",
			"description", "sha_256_hex", "sha_256_supplied", "content_size").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	BundleVersionID             = BundleVersionTable.MustColumn("id")
	BundleVersionBundleID       = BundleVersionTable.MustColumn("extension_bundle_id")
	BundleVersionVersion        = BundleVersionTable.MustColumn("version")
	BundleVersionCreated        = BundleVersionTable.MustColumn("created")
	BundleVersionCreatedBy      = BundleVersionTable.MustColumn("created_by")
	BundleVersionDescription    = BundleVersionTable.MustColumn("description")
	BundleVersionSHA256Hex      = BundleVersionTable.MustColumn("sha_256_hex")
	BundleVersionSHA256Supplied = BundleVersionTable.MustColumn("sha_256_supplied")
	BundleVersionContentSize    = BundleVersionTable.MustColumn("content_size")
)

// extension_bundle_version_dependency
var (
	DependencyTable = schema.NewTable("extension_bundle_version_dependency", "ebvd").
		Column("id", "extension_bundle_version_id", "group_id", "artifact_id", "version").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	DependencyID              = DependencyTable.MustColumn("id")
	DependencyBundleVersionID = DependencyTable.MustColumn("extension_bundle_version_id")
	DependencyGroupID         = DependencyTable.MustColumn("group_id")
	DependencyArtifactID      = DependencyTable.MustColumn("artifact_id")
	DependencyVersion         = DependencyTable.MustColumn("version")
)

// extension
var (
	ExtensionTable = schema.NewTable("extension", "ext").
		Column("id", "extension_bundle_version_id", "type", "type_description",
			"is_restricted", "category", "tags").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	ExtensionID              = ExtensionTable.MustColumn("id")
	ExtensionBundleVersionID = ExtensionTable.MustColumn("extension_bundle_version_id")
	ExtensionType            = ExtensionTable.MustColumn("type")
	ExtensionTypeDescription = ExtensionTable.MustColumn("type_description")
	ExtensionRestricted      = ExtensionTable.MustColumn("is_restricted")
	ExtensionCategory        = ExtensionTable.MustColumn("category")
	ExtensionTags            = ExtensionTable.MustColumn("tags")
)

// extension_tag
var (
	ExtensionTagTable = schema.NewTable("extension_tag", "etag").
		Column("id", "extension_id", "tag").
		ID("id").
		Generator(uuidGenerator).
		MustBuild()

	ExtensionTagID          = ExtensionTagTable.MustColumn("id")
	ExtensionTagExtensionID = ExtensionTagTable.MustColumn("extension_id")
	ExtensionTagTag         = ExtensionTagTable.MustColumn("tag")
)

// NewRegistry returns a frozen registry holding every registry table.
func NewRegistry() *schema.Registry {
	r := schema.NewRegistry()
	r.MustRegister(EntityBucket, BucketTable)
	r.MustRegister(EntityBucketItem, BucketItemTable)
	r.MustRegister(EntityFlow, FlowTable)
	r.MustRegister(EntityFlowSnapshot, FlowSnapshotTable)
	r.MustRegister(EntityExtensionBundle, ExtensionBundleTable)
	r.MustRegister(EntityExtensionBundleVersion, BundleVersionTable)
	r.MustRegister(EntityBundleDependency, DependencyTable)
	r.MustRegister(EntityExtension, ExtensionTable)
	r.MustRegister(EntityExtensionTag, ExtensionTagTable)
	r.Freeze()
	return r
}
