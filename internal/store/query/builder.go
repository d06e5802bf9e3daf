package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// SortOrder is the direction of an ORDER BY term.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

func (o SortOrder) String() string {
	if o == Desc {
		return "DESC"
	}
	return "ASC"
}

// Labeled is anything selected under a result label, such as a *schema.Column or a CountExpr.
type Labeled interface {
	Alias() string
}

// CountExpr is a count(...) aggregate over a column.
type CountExpr struct {
	col *schema.Column
}

// Count returns the aggregate count(alias.column).
func Count(col *schema.Column) CountExpr { return CountExpr{col: col} }

// SQL returns the aggregate expression.
func (c CountExpr) SQL() string { return "count(" + c.col.Qualified() + ")" }

// Alias returns the result label, e.g. "fs_version_count".
func (c CountExpr) Alias() string { return c.col.Alias() + "_count" }

type joinKind string

const (
	innerJoin joinKind = "INNER JOIN"
	leftJoin  joinKind = "LEFT JOIN"
	rightJoin joinKind = "RIGHT JOIN"
	outerJoin joinKind = "FULL OUTER JOIN"
)

type join struct {
	kind  joinKind
	table *schema.Table
	left  *schema.Column
	right *schema.Column
}

type orderTerm struct {
	col   *schema.Column
	order SortOrder
}

// Builder accumulates the parts of one SELECT statement.
type Builder struct {
	selects      []string
	tables       []*schema.Table
	joins        []join
	wheres       []string
	groupBy      []*schema.Column
	orderBy      []orderTerm
	limit        int
	placeholders int
	err          error
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Select adds columns to the select list, each labeled with its Alias.
func (b *Builder) Select(cols ...*schema.Column) *Builder {
	for _, c := range cols {
		b.selects = append(b.selects, c.Qualified()+" AS "+c.Alias())
	}
	return b
}

// SelectCount adds count(col) to the select list, labeled as Count(col).Alias().
func (b *Builder) SelectCount(col *schema.Column) *Builder {
	c := Count(col)
	b.selects = append(b.selects, c.SQL()+" AS "+c.Alias())
	return b
}

// From sets the source tables.
func (b *Builder) From(tables ...*schema.Table) *Builder {
	b.tables = append(b.tables, tables...)
	return b
}

// InnerJoin joins table on left = right.
func (b *Builder) InnerJoin(table *schema.Table, left, right *schema.Column) *Builder {
	return b.join(innerJoin, table, left, right)
}

// LeftJoin left-joins table on left = right.
func (b *Builder) LeftJoin(table *schema.Table, left, right *schema.Column) *Builder {
	return b.join(leftJoin, table, left, right)
}

// RightJoin right-joins table on left = right.
func (b *Builder) RightJoin(table *schema.Table, left, right *schema.Column) *Builder {
	return b.join(rightJoin, table, left, right)
}

// OuterJoin full-outer-joins table on left = right.
func (b *Builder) OuterJoin(table *schema.Table, left, right *schema.Column) *Builder {
	return b.join(outerJoin, table, left, right)
}

func (b *Builder) join(kind joinKind, table *schema.Table, left, right *schema.Column) *Builder {
	b.joins = append(b.joins, join{kind: kind, table: table, left: left, right: right})
	return b
}

// WhereEqual adds "col = ?".
func (b *Builder) WhereEqual(col *schema.Column) *Builder {
	return b.predicate(col.Qualified()+" = ?", 1)
}

// WhereEqualColumns adds "left = right" with no placeholder.
func (b *Builder) WhereEqualColumns(left, right *schema.Column) *Builder {
	return b.predicate(left.Qualified()+" = "+right.Qualified(), 0)
}

// WhereEqualAll adds "col = ?" for each column, in the given order.
func (b *Builder) WhereEqualAll(cols ...*schema.Column) *Builder {
	for _, c := range cols {
		b.WhereEqual(c)
	}
	return b
}

// WhereNotEqual adds "col <> ?".
func (b *Builder) WhereNotEqual(col *schema.Column) *Builder {
	return b.predicate(col.Qualified()+" <> ?", 1)
}

// WhereNotEqualColumns adds "left <> right" with no placeholder.
func (b *Builder) WhereNotEqualColumns(left, right *schema.Column) *Builder {
	return b.predicate(left.Qualified()+" <> "+right.Qualified(), 0)
}

// WhereLike adds "col LIKE ?".
func (b *Builder) WhereLike(col *schema.Column) *Builder {
	return b.predicate(col.Qualified()+" LIKE ?", 1)
}

// WhereIn adds "col IN (?, ...)" with exactly count placeholders.
// A count below one makes Build fail.
func (b *Builder) WhereIn(col *schema.Column, count int) *Builder {
	if count < 1 {
		if b.err == nil {
			b.err = fmt.Errorf("%w: IN predicate on %s needs at least one value, got %d",
				store.ErrQueryBuild, col.Qualified(), count)
		}
		return b
	}
	marks := strings.Repeat("?, ", count-1) + "?"
	return b.predicate(col.Qualified()+" IN ("+marks+")", count)
}

// Where adds a raw predicate. Each "?" outside a quoted literal counts as one
// placeholder.
func (b *Builder) Where(clause string) *Builder {
	return b.predicate(clause, CountPlaceholders(clause))
}

func (b *Builder) predicate(clause string, placeholders int) *Builder {
	b.wheres = append(b.wheres, clause)
	b.placeholders += placeholders
	return b
}

// GroupBy adds GROUP BY columns.
func (b *Builder) GroupBy(cols ...*schema.Column) *Builder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

// OrderBy adds an ORDER BY term.
func (b *Builder) OrderBy(col *schema.Column, order SortOrder) *Builder {
	b.orderBy = append(b.orderBy, orderTerm{col: col, order: order})
	return b
}

// Limit caps the number of returned rows. Zero or less means no limit.
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Placeholders returns the number of arguments the built statement expects.
func (b *Builder) Placeholders() int {
	return b.placeholders
}

// Copy returns an independent builder with the same state.
func (b *Builder) Copy() *Builder {
	return &Builder{
		selects:      slices.Clone(b.selects),
		tables:       slices.Clone(b.tables),
		joins:        slices.Clone(b.joins),
		wheres:       slices.Clone(b.wheres),
		groupBy:      slices.Clone(b.groupBy),
		orderBy:      slices.Clone(b.orderBy),
		limit:        b.limit,
		placeholders: b.placeholders,
		err:          b.err,
	}
}

// Build renders the statement.
func (b *Builder) Build() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	if len(b.selects) == 0 {
		return "", fmt.Errorf("%w: no columns selected", store.ErrQueryBuild)
	}
	if len(b.tables) == 0 {
		return "", fmt.Errorf("%w: no table to select from", store.ErrQueryBuild)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.selects, ", "))

	sb.WriteString(" FROM ")
	for i, t := range b.tables {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.Name() + " " + t.Alias())
	}

	for _, j := range b.joins {
		fmt.Fprintf(&sb, " %s %s %s ON %s = %s",
			j.kind, j.table.Name(), j.table.Alias(), j.left.Qualified(), j.right.Qualified())
	}

	if len(b.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.wheres, " AND "))
	}

	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		for i, c := range b.groupBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.Qualified())
		}
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range b.orderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(o.col.Qualified() + " " + o.order.String())
		}
	}

	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}

	return sb.String(), nil
}
