package domain

import (
	"strings"
	"time"
)

// BundleType identifies the packaging format of an extension bundle.
type BundleType string

const (
	BundleTypeNiFiNar   BundleType = "NIFI_NAR"
	BundleTypeMiNiFiCpp BundleType = "MINIFI_CPP"
)

// Valid reports whether t is a known bundle type.
func (t BundleType) Valid() bool {
	return t == BundleTypeNiFiNar || t == BundleTypeMiNiFiCpp
}

// ExtensionBundle is a bucket item identified by its group and artifact.
type ExtensionBundle struct {
	BucketItem `yaml:",inline"`

	BundleType BundleType `json:"bundleType" yaml:"bundleType"`
	GroupID    string     `json:"groupId" yaml:"groupId"`
	ArtifactID string     `json:"artifactId" yaml:"artifactId"`

	// VersionCount is the number of stored versions, when the query computed it.
	VersionCount int64 `json:"versionCount" yaml:"versionCount"`
}

// Validate checks that the bundle can be stored.
func (b *ExtensionBundle) Validate() error {
	if err := b.BucketItem.Validate(); err != nil {
		return err
	}
	if b.Type != BucketItemTypeBundle {
		return ErrInvalidItemType
	}
	if !b.BundleType.Valid() {
		return ErrInvalidBundleType
	}
	if strings.TrimSpace(b.GroupID) == "" || strings.TrimSpace(b.ArtifactID) == "" {
		return ErrEmptyCoordinate
	}
	return nil
}

// ExtensionBundleVersion is one released version of an extension bundle.
type ExtensionBundleVersion struct {
	ID                string    `json:"id" yaml:"id"`
	ExtensionBundleID string    `json:"extensionBundleId" yaml:"extensionBundleId"`
	Version           string    `json:"version" yaml:"version"`
	Created           time.Time `json:"created" yaml:"created"`
	CreatedBy         string    `json:"createdBy" yaml:"createdBy"`
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	SHA256Hex         string    `json:"sha256" yaml:"sha256"`
	SHA256Supplied    bool      `json:"sha256Supplied" yaml:"sha256Supplied"`
	ContentSize       int64     `json:"contentSize" yaml:"contentSize"`

	// BucketID is the bucket of the owning bundle, filled in by queries that join it.
	BucketID string `json:"bucketId,omitempty" yaml:"bucketId,omitempty"`

	Dependencies []*ExtensionBundleVersionDependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// GetID returns the version identifier.
func (v *ExtensionBundleVersion) GetID() string { return v.ID }

// SetID sets the version identifier.
func (v *ExtensionBundleVersion) SetID(id string) { v.ID = id }

// Validate checks that the version can be stored.
func (v *ExtensionBundleVersion) Validate() error {
	if strings.TrimSpace(v.ExtensionBundleID) == "" || strings.TrimSpace(v.Version) == "" {
		return ErrEmptyCoordinate
	}
	for _, d := range v.Dependencies {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ExtensionBundleVersionDependency is a bundle a version depends on.
type ExtensionBundleVersionDependency struct {
	ID                       string `json:"id" yaml:"id"`
	ExtensionBundleVersionID string `json:"extensionBundleVersionId" yaml:"extensionBundleVersionId"`
	GroupID                  string `json:"groupId" yaml:"groupId"`
	ArtifactID               string `json:"artifactId" yaml:"artifactId"`
	Version                  string `json:"version" yaml:"version"`
}

// GetID returns the dependency identifier.
func (d *ExtensionBundleVersionDependency) GetID() string { return d.ID }

// SetID sets the dependency identifier.
func (d *ExtensionBundleVersionDependency) SetID(id string) { d.ID = id }

// Validate checks the dependency coordinate.
func (d *ExtensionBundleVersionDependency) Validate() error {
	if strings.TrimSpace(d.GroupID) == "" || strings.TrimSpace(d.ArtifactID) == "" || strings.TrimSpace(d.Version) == "" {
		return ErrEmptyCoordinate
	}
	return nil
}

// Extension is a processor, controller service or reporting task provided by a bundle version.
type Extension struct {
	ID                       string   `json:"id" yaml:"id"`
	ExtensionBundleVersionID string   `json:"extensionBundleVersionId" yaml:"extensionBundleVersionId"`
	Type                     string   `json:"type" yaml:"type"`
	TypeDescription          string   `json:"typeDescription,omitempty" yaml:"typeDescription,omitempty"`
	Restricted               bool     `json:"restricted" yaml:"restricted"`
	Category                 string   `json:"category,omitempty" yaml:"category,omitempty"`
	Tags                     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// GetID returns the extension identifier.
func (e *Extension) GetID() string { return e.ID }

// SetID sets the extension identifier.
func (e *Extension) SetID(id string) { e.ID = id }

// Validate checks that the extension can be stored.
func (e *Extension) Validate() error {
	if strings.TrimSpace(e.ExtensionBundleVersionID) == "" {
		return ErrEmptyCoordinate
	}
	if strings.TrimSpace(e.Type) == "" {
		return ErrEmptyType
	}
	return nil
}

// ExtensionTag is one searchable tag of an extension. A tag appears at most
// once per extension.
type ExtensionTag struct {
	ID          string `json:"id" yaml:"id"`
	ExtensionID string `json:"extensionId" yaml:"extensionId"`
	Tag         string `json:"tag" yaml:"tag"`
}

// GetID returns the tag row identifier.
func (t *ExtensionTag) GetID() string { return t.ID }

// SetID sets the tag row identifier.
func (t *ExtensionTag) SetID(id string) { t.ID = id }
