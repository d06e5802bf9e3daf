package schema

import (
	"cmp"
	"slices"
)

// Column is a single relational attribute of a Table.
type Column struct {
	name      string
	table     *Table
	updatable bool
}

// Name returns the unqualified column name.
func (c *Column) Name() string { return c.name }

// Table returns the table the column belongs to.
func (c *Column) Table() *Table { return c.table }

// Updatable reports whether the column may appear in an UPDATE SET list.
func (c *Column) Updatable() bool { return c.updatable }

// Qualified returns the column prefixed with its table alias, e.g. "b.name".
func (c *Column) Qualified() string {
	return c.table.alias + "." + c.name
}

// Alias returns the label the column is selected under, e.g. "b_name".
// Labels stay unique when several tables are joined in one result.
func (c *Column) Alias() string {
	return c.table.alias + "_" + c.name
}

func (c *Column) String() string { return c.Qualified() }

// Compare orders columns by table name, then column name.
func Compare(a, b *Column) int {
	if n := cmp.Compare(a.table.name, b.table.name); n != 0 {
		return n
	}
	return cmp.Compare(a.name, b.name)
}

// SortColumns sorts cols in place using Compare.
func SortColumns(cols []*Column) {
	slices.SortFunc(cols, Compare)
}
