package sqlexec

import (
	"fmt"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// RowMapper reconstructs an entity from a result row.
type RowMapper[E any] interface {
	MapRow(rec *Record) (E, error)
}

// RowMapperFunc adapts a function to RowMapper.
type RowMapperFunc[E any] func(rec *Record) (E, error)

// MapRow implements RowMapper.
func (f RowMapperFunc[E]) MapRow(rec *Record) (E, error) { return f(rec) }

// ValueMapper returns the value an entity holds for a column.
// A nil value is bound as SQL NULL. Columns the mapper does not know must be
// rejected with UnexpectedColumn.
type ValueMapper[E any] interface {
	MapValue(col *schema.Column, e E) (any, error)
}

// ValueMapperFunc adapts a function to ValueMapper.
type ValueMapperFunc[E any] func(col *schema.Column, e E) (any, error)

// MapValue implements ValueMapper.
func (f ValueMapperFunc[E]) MapValue(col *schema.Column, e E) (any, error) { return f(col, e) }

// IDMapper returns the value an identifier holds for one key column.
type IDMapper[ID any] interface {
	MapID(col *schema.Column, id ID) (any, error)
}

// IDMapperFunc adapts a function to IDMapper.
type IDMapperFunc[ID any] func(col *schema.Column, id ID) (any, error)

// MapID implements IDMapper.
func (f IDMapperFunc[ID]) MapID(col *schema.Column, id ID) (any, error) { return f(col, id) }

// ScalarID returns an IDMapper for single-column keys that binds the id itself.
func ScalarID[ID any]() IDMapper[ID] {
	return IDMapperFunc[ID](func(_ *schema.Column, id ID) (any, error) { return id, nil })
}

// UnexpectedColumn reports a column unknown to a mapper.
func UnexpectedColumn(col *schema.Column) error {
	return fmt.Errorf("%w: unexpected column %s", store.ErrMapping, col.Qualified())
}

func mapKey[ID any](table *schema.Table, id ID, idm IDMapper[ID]) ([]any, error) {
	cols := table.IDColumns()
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		v, err := idm.MapID(c, id)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func mapEntityKey[E any](table *schema.Table, e E, vm ValueMapper[E]) ([]any, error) {
	cols := table.IDColumns()
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		v, err := vm.MapValue(c, e)
		if err != nil {
			return nil, err
		}
		if isNull(v) {
			return nil, fmt.Errorf("%w: %s: id column %s is unset", store.ErrInvalidEntity, table.Name(), c.Name())
		}
		args = append(args, v)
	}
	return args, nil
}
