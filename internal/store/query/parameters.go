package query

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// Operator is the comparison used by a Parameter.
type Operator int

const (
	EQ Operator = iota
	NEQ
	LIKE
	IN
)

// String returns the SQL text of the operator.
func (o Operator) String() string {
	switch o {
	case EQ:
		return "="
	case NEQ:
		return "<>"
	case LIKE:
		return "LIKE"
	case IN:
		return "IN"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// Parameter is an immutable column, operator and value predicate.
type Parameter struct {
	column *schema.Column
	op     Operator
	values []any
}

// Eq returns a "column = value" parameter.
func Eq(col *schema.Column, value any) Parameter {
	return Parameter{column: col, op: EQ, values: []any{value}}
}

// Neq returns a "column <> value" parameter.
func Neq(col *schema.Column, value any) Parameter {
	return Parameter{column: col, op: NEQ, values: []any{value}}
}

// Like returns a "column LIKE pattern" parameter.
func Like(col *schema.Column, pattern any) Parameter {
	return Parameter{column: col, op: LIKE, values: []any{pattern}}
}

// In returns a "column IN (values...)" parameter.
func In(col *schema.Column, values ...any) Parameter {
	return Parameter{column: col, op: IN, values: slices.Clone(values)}
}

// InSlice is In for a typed slice.
func InSlice[T any](col *schema.Column, values []T) Parameter {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Parameter{column: col, op: IN, values: vals}
}

// Column returns the filtered column.
func (p Parameter) Column() *schema.Column { return p.column }

// Operator returns the comparison operator.
func (p Parameter) Operator() Operator { return p.op }

// Value returns the single bound value of an EQ, NEQ or LIKE parameter.
func (p Parameter) Value() any {
	if len(p.values) == 0 {
		return nil
	}
	return p.values[0]
}

// Values returns every bound value.
func (p Parameter) Values() []any { return slices.Clone(p.values) }

// Parameters is an ordered, immutable set of parameters. They are sorted by
// column, then operator text, so the generated SQL is deterministic.
type Parameters struct {
	params []Parameter
}

// NewParameters returns the sorted collection of params.
func NewParameters(params ...Parameter) Parameters {
	sorted := slices.Clone(params)
	slices.SortStableFunc(sorted, func(a, b Parameter) int {
		if n := schema.Compare(a.column, b.column); n != 0 {
			return n
		}
		return cmp.Compare(a.op.String(), b.op.String())
	})
	return Parameters{params: sorted}
}

// Params returns the parameters in order.
func (ps Parameters) Params() []Parameter { return slices.Clone(ps.params) }

// Columns returns the column of each parameter, in order.
func (ps Parameters) Columns() []*schema.Column {
	cols := make([]*schema.Column, len(ps.params))
	for i, p := range ps.params {
		cols[i] = p.column
	}
	return cols
}

// Values returns the bound values in order, with IN values flattened.
func (ps Parameters) Values() []any {
	var vals []any
	for _, p := range ps.params {
		vals = append(vals, p.values...)
	}
	return vals
}

// Len returns the number of parameters.
func (ps Parameters) Len() int { return len(ps.params) }

// Empty reports whether there are no parameters.
func (ps Parameters) Empty() bool { return len(ps.params) == 0 }

// Apply adds one predicate per parameter to b and returns the arguments to bind,
// in the same order as the placeholders it appended. On error b is left as it was.
func Apply(b *Builder, ps Parameters) ([]any, error) {
	next := b.Copy()
	args := make([]any, 0, len(ps.params))
	for _, p := range ps.params {
		switch p.op {
		case EQ:
			next.WhereEqual(p.column)
		case NEQ:
			next.WhereNotEqual(p.column)
		case LIKE:
			next.WhereLike(p.column)
		case IN:
			if len(p.values) == 0 {
				return nil, fmt.Errorf("%w: IN parameter on %s has no values", store.ErrQueryBuild, p.column.Qualified())
			}
			next.WhereIn(p.column, len(p.values))
		default:
			return nil, fmt.Errorf("%w: unsupported operator %s", store.ErrQueryBuild, p.op)
		}
		args = append(args, p.values...)
	}
	*b = *next
	return args, nil
}
