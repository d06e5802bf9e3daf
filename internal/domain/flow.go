package domain

import "time"

// Flow is a versioned flow definition stored in a bucket.
type Flow struct {
	BucketItem `yaml:",inline"`

	// SnapshotCount is the number of stored snapshots, when the query computed it.
	SnapshotCount int64 `json:"versionCount" yaml:"versionCount"`
}

// NewFlow returns a flow in bucketID with creation and modification set to now.
func NewFlow(bucketID, name, description string) *Flow {
	now := Now()
	return &Flow{BucketItem: BucketItem{
		Name:        name,
		Description: description,
		Created:     now,
		Modified:    now,
		Type:        BucketItemTypeFlow,
		BucketID:    bucketID,
	}}
}

// SnapshotKey identifies a flow snapshot.
type SnapshotKey struct {
	FlowID  string
	Version int
}

// FlowSnapshot records one saved version of a flow.
type FlowSnapshot struct {
	FlowID    string    `json:"flowId" yaml:"flowId"`
	Version   int       `json:"version" yaml:"version"`
	Created   time.Time `json:"created" yaml:"created"`
	CreatedBy string    `json:"createdBy" yaml:"createdBy"`
	Comments  string    `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// GetID returns the composite snapshot key.
func (s *FlowSnapshot) GetID() SnapshotKey {
	return SnapshotKey{FlowID: s.FlowID, Version: s.Version}
}

// SetID sets the composite snapshot key.
func (s *FlowSnapshot) SetID(k SnapshotKey) {
	s.FlowID = k.FlowID
	s.Version = k.Version
}

// Validate checks that the snapshot can be stored.
func (s *FlowSnapshot) Validate() error {
	if s.FlowID == "" {
		return ErrEmptyFlowID
	}
	if s.Version < 1 {
		return ErrInvalidVersion
	}
	return nil
}

// Now returns the current UTC time truncated to the microsecond precision
// timestamps survive a round trip through every supported database.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
