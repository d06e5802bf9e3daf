package domain

import (
	"strings"
	"time"
)

// Bucket is a named container of versioned items.
type Bucket struct {
	ID                           string    `json:"id" yaml:"id"`
	Name                         string    `json:"name" yaml:"name"`
	Description                  string    `json:"description,omitempty" yaml:"description,omitempty"`
	Created                      time.Time `json:"created" yaml:"created"`

	// AllowExtensionBundleRedeploy is nil when unset, which leaves the stored
	// value untouched on update. Create stores an unset flag as false.
	AllowExtensionBundleRedeploy *bool `json:"allowExtensionBundleRedeploy,omitempty" yaml:"allowExtensionBundleRedeploy,omitempty"`
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// GetID returns the bucket identifier.
func (b *Bucket) GetID() string { return b.ID }

// SetID sets the bucket identifier.
func (b *Bucket) SetID(id string) { b.ID = id }

// Validate checks that the bucket can be stored.
func (b *Bucket) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
