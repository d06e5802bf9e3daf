package sqlexec

import (
	"strings"

	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// InsertSQL returns an INSERT with one placeholder per column, in column order.
func InsertSQL(table *schema.Table) string {
	cols := table.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	return "INSERT INTO " + table.Name() +
		" (" + strings.Join(names, ", ") + ")" +
		" VALUES (" + strings.Repeat("?, ", len(cols)-1) + "?)"
}

// UpdateSQL returns an UPDATE setting cols, keyed by the table's id column(s).
// Key placeholders follow the SET placeholders; each extra column adds one more
// equality predicate after the key.
func UpdateSQL(table *schema.Table, cols []*schema.Column, extra ...*schema.Column) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c.Name() + " = ?"
	}
	where := keyClause(table)
	for _, c := range extra {
		where += " AND " + c.Name() + " = ?"
	}
	return "UPDATE " + table.Name() + " SET " + strings.Join(sets, ", ") + " WHERE " + where
}

// DeleteSQL returns a DELETE keyed by the table's id column(s).
func DeleteSQL(table *schema.Table) string {
	return "DELETE FROM " + table.Name() + " WHERE " + keyClause(table)
}

// SelectAllQuery returns a builder selecting every column of table.
func SelectAllQuery(table *schema.Table) *query.Builder {
	return query.New().Select(table.Columns()...).From(table)
}

// SelectByIDSQL returns a SELECT of every column keyed by the table's id column(s).
func SelectByIDSQL(table *schema.Table) (string, error) {
	return SelectAllQuery(table).WhereEqualAll(table.IDColumns()...).Build()
}

func keyClause(table *schema.Table) string {
	ids := table.IDColumns()
	preds := make([]string, len(ids))
	for i, c := range ids {
		preds[i] = c.Name() + " = ?"
	}
	return strings.Join(preds, " AND ")
}
