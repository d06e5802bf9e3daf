package schema

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/flowregistry/internal/store"
)

// Table is an immutable description of one relational table.
type Table struct {
	name      string
	alias     string
	columns   []*Column
	byName    map[string]*Column
	updatable []*Column
	key       Key
	generator IDGenerator
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Alias returns the SQL alias used when the table appears in a FROM or JOIN clause.
func (t *Table) Alias() string { return t.alias }

// Columns returns every column sorted by name.
func (t *Table) Columns() []*Column { return slices.Clone(t.columns) }

// UpdatableColumns returns the sorted subset of columns eligible for SET clauses.
func (t *Table) UpdatableColumns() []*Column { return slices.Clone(t.updatable) }

// Key returns the primary key.
func (t *Table) Key() Key { return t.key }

// IDColumns returns the key columns in declared order.
func (t *Table) IDColumns() []*Column { return t.key.Columns() }

// IDColumn returns the key column of a single-key table.
// The second return value is false for composite keys.
func (t *Table) IDColumn() (*Column, bool) {
	k, ok := t.key.(SingleKey)
	if !ok {
		return nil, false
	}
	return k.Column, true
}

// IDGenerator returns the identifier generation strategy, or nil when the
// caller is expected to supply identifiers.
func (t *Table) IDGenerator() IDGenerator { return t.generator }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	c, ok := t.byName[name]
	return c, ok
}

// MustColumn looks up a column by name and panics if it does not exist.
// It is meant for package-level column declarations next to the table.
func (t *Table) MustColumn(name string) *Column {
	c, ok := t.byName[name]
	if !ok {
		panic(fmt.Sprintf("schema: table %s has no column %q", t.name, name))
	}
	return c
}

func (t *Table) String() string {
	return t.name + " " + t.alias
}

// TableBuilder collects the declaration of a Table.
type TableBuilder struct {
	name      string
	alias     string
	columns   []string
	updatable []string
	id        []string
	generator IDGenerator
}

// NewTable starts the declaration of a table.
func NewTable(name, alias string) *TableBuilder {
	return &TableBuilder{name: name, alias: alias}
}

// Column declares non-updatable columns.
func (b *TableBuilder) Column(names ...string) *TableBuilder {
	b.columns = append(b.columns, names...)
	return b
}

// Updatable declares columns that may be changed by an update.
func (b *TableBuilder) Updatable(names ...string) *TableBuilder {
	b.columns = append(b.columns, names...)
	b.updatable = append(b.updatable, names...)
	return b
}

// ID sets the primary key columns. Each must also be declared as a column.
// More than one name produces a CompositeKey in the given order.
func (b *TableBuilder) ID(names ...string) *TableBuilder {
	b.id = append([]string(nil), names...)
	return b
}

// Generator sets the identifier generation strategy.
func (b *TableBuilder) Generator(g IDGenerator) *TableBuilder {
	b.generator = g
	return b
}

// Build validates the declaration and returns the table.
func (b *TableBuilder) Build() (*Table, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, fmt.Errorf("%w: table name is required", store.ErrConfiguration)
	}
	if strings.TrimSpace(b.alias) == "" {
		return nil, fmt.Errorf("%w: table %s: alias is required", store.ErrConfiguration, b.name)
	}
	if len(b.columns) == 0 {
		return nil, fmt.Errorf("%w: table %s: no columns declared", store.ErrConfiguration, b.name)
	}
	if len(b.id) == 0 {
		return nil, fmt.Errorf("%w: table %s: no id column declared", store.ErrConfiguration, b.name)
	}

	t := &Table{
		name:      b.name,
		alias:     b.alias,
		byName:    make(map[string]*Column, len(b.columns)),
		generator: b.generator,
	}

	updatable := make(map[string]bool, len(b.updatable))
	for _, name := range b.updatable {
		updatable[name] = true
	}

	for _, name := range b.columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: table %s: empty column name", store.ErrConfiguration, b.name)
		}
		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("%w: table %s: duplicate column %q", store.ErrConfiguration, b.name, name)
		}
		c := &Column{name: name, table: t, updatable: updatable[name]}
		t.byName[name] = c
		t.columns = append(t.columns, c)
		if c.updatable {
			t.updatable = append(t.updatable, c)
		}
	}
	SortColumns(t.columns)
	SortColumns(t.updatable)

	keyCols := make([]*Column, 0, len(b.id))
	for _, name := range b.id {
		c, ok := t.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: table %s: id column %q is not declared", store.ErrConfiguration, b.name, name)
		}
		if slices.Contains(keyCols, c) {
			return nil, fmt.Errorf("%w: table %s: id column %q repeated", store.ErrConfiguration, b.name, name)
		}
		keyCols = append(keyCols, c)
	}
	if len(keyCols) == 1 {
		t.key = SingleKey{Column: keyCols[0]}
	} else {
		t.key = CompositeKey{cols: keyCols}
	}

	return t, nil
}

// MustBuild is like Build but panics on an invalid declaration.
func (b *TableBuilder) MustBuild() *Table {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
