package domain

import (
	"strings"
	"time"
)

// BucketItemType tells which kind of versioned item a bucket item row describes.
type BucketItemType string

const (
	BucketItemTypeFlow   BucketItemType = "FLOW"
	BucketItemTypeBundle BucketItemType = "EXTENSION_BUNDLE"
)

// Valid reports whether t is a known item type.
func (t BucketItemType) Valid() bool {
	return t == BucketItemTypeFlow || t == BucketItemTypeBundle
}

// BucketItem holds the attributes shared by every item stored in a bucket.
type BucketItem struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Created     time.Time      `json:"created" yaml:"created"`
	Modified    time.Time      `json:"modified" yaml:"modified"`
	Type        BucketItemType `json:"type" yaml:"type"`
	BucketID    string         `json:"bucketId" yaml:"bucketId"`

	// BucketName is filled in by queries that join the owning bucket.
	BucketName string `json:"bucketName,omitempty" yaml:"bucketName,omitempty"`
}

// GetID returns the item identifier.
func (i *BucketItem) GetID() string { return i.ID }

// SetID sets the item identifier.
func (i *BucketItem) SetID(id string) { i.ID = id }

// Validate checks the shared item attributes.
func (i *BucketItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(i.BucketID) == "" {
		return ErrEmptyBucketID
	}
	if !i.Type.Valid() {
		return ErrInvalidItemType
	}
	return nil
}

// Item is a flow or an extension bundle listed from a bucket.
type Item interface {
	Base() *BucketItem
}

// Base implements Item.
func (i *BucketItem) Base() *BucketItem { return i }
