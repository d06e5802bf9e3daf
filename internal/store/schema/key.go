package schema

import "slices"

// Key identifies the primary key of a table. It is either a SingleKey or a
// CompositeKey; no other implementations exist.
type Key interface {
	// Columns returns the key columns in declared order.
	Columns() []*Column
	isKey()
}

// SingleKey is a primary key made of one column.
type SingleKey struct {
	Column *Column
}

// Columns implements Key.
func (k SingleKey) Columns() []*Column { return []*Column{k.Column} }

func (SingleKey) isKey() {}

// CompositeKey is a primary key spanning several columns, e.g. (flow_id, version).
type CompositeKey struct {
	cols []*Column
}

// Columns implements Key.
func (k CompositeKey) Columns() []*Column { return slices.Clone(k.cols) }

// Len returns the number of key columns.
func (k CompositeKey) Len() int { return len(k.cols) }

func (CompositeKey) isKey() {}
