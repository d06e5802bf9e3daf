package sqlexec

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
)

// Insert writes e as a new row of table and returns it unchanged.
// Every column is bound, so the identifier must already be assigned.
func Insert[E any](ctx context.Context, t *Template, table *schema.Table, e E, vm ValueMapper[E]) (E, error) {
	cols := table.Columns()
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		v, err := vm.MapValue(c, e)
		if err != nil {
			return e, fmt.Errorf("insert into %s: %w", table.Name(), err)
		}
		args = append(args, v)
	}

	if _, err := t.Exec(ctx, InsertSQL(table), args...); err != nil {
		return e, fmt.Errorf("insert into %s: %w", table.Name(), err)
	}
	return e, nil
}

// Update writes the non-NULL values of cols for the row identified by e's key.
//
// Columns whose mapped value is NULL are dropped from the SET list, leaving the stored
// value untouched. If nothing remains the call fails with store.ErrQueryBuild.
// Each where parameter (equality only) is added to the key clause, which lets callers
// implement version-checked updates. The number of rows affected is returned so callers
// can detect a missing or concurrently modified row.
func Update[E any](ctx context.Context, t *Template, table *schema.Table, e E, cols []*schema.Column, vm ValueMapper[E], where ...query.Parameter) (E, int64, error) {
	set := make([]*schema.Column, 0, len(cols))
	args := make([]any, 0, len(cols)+len(table.IDColumns()))
	for _, c := range cols {
		v, err := vm.MapValue(c, e)
		if err != nil {
			return e, 0, fmt.Errorf("update %s: %w", table.Name(), err)
		}
		if isNull(v) {
			continue
		}
		set = append(set, c)
		args = append(args, v)
	}
	if len(set) == 0 {
		return e, 0, fmt.Errorf("%w: update %s: no non-null columns to set", store.ErrQueryBuild, table.Name())
	}

	keyArgs, err := mapEntityKey(table, e, vm)
	if err != nil {
		return e, 0, fmt.Errorf("update %s: %w", table.Name(), err)
	}
	args = append(args, keyArgs...)

	extra := make([]*schema.Column, 0, len(where))
	for _, p := range where {
		if p.Operator() != query.EQ {
			return e, 0, fmt.Errorf("%w: update %s: only equality predicates are supported, got %s",
				store.ErrQueryBuild, table.Name(), p.Operator())
		}
		extra = append(extra, p.Column())
		args = append(args, p.Value())
	}

	n, err := t.Exec(ctx, UpdateSQL(table, set, extra...), args...)
	if err != nil {
		return e, 0, fmt.Errorf("update %s: %w", table.Name(), err)
	}
	return e, n, nil
}

// QueryForObject loads the row of table identified by id.
// A missing row is reported as (zero, false, nil).
func QueryForObject[ID, E any](ctx context.Context, t *Template, table *schema.Table, id ID, idm IDMapper[ID], rm RowMapper[E]) (E, bool, error) {
	var zero E
	stmt, err := SelectByIDSQL(table)
	if err != nil {
		return zero, false, err
	}
	args, err := mapKey(table, id, idm)
	if err != nil {
		return zero, false, fmt.Errorf("select from %s: %w", table.Name(), err)
	}
	e, found, err := QueryObject(ctx, t, stmt, args, rm)
	if err != nil {
		return zero, false, fmt.Errorf("select from %s: %w", table.Name(), err)
	}
	return e, found, nil
}

// QueryObject runs a query expected to return at most one row.
func QueryObject[E any](ctx context.Context, t *Template, stmt string, args []any, rm RowMapper[E]) (E, bool, error) {
	var zero E
	rows, err := Query(ctx, t, stmt, args, rm)
	if err != nil {
		return zero, false, err
	}
	switch len(rows) {
	case 0:
		return zero, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return zero, false, fmt.Errorf("%w: expected at most one row, got %d", store.ErrIllegalState, len(rows))
	}
}

// Query runs a query and maps every row. No rows yields an empty, non-nil slice.
func Query[E any](ctx context.Context, t *Template, stmt string, args []any, rm RowMapper[E]) ([]E, error) {
	out := make([]E, 0)
	err := t.QueryEach(ctx, stmt, args, func(rec *Record) error {
		e, err := rm.MapRow(rec)
		if err == nil {
			err = rec.Err()
		}
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryBuilder builds b and runs it with args. The argument count must match the
// placeholders b has accumulated.
func QueryBuilder[E any](ctx context.Context, t *Template, b *query.Builder, args []any, rm RowMapper[E]) ([]E, error) {
	stmt, err := b.Build()
	if err != nil {
		return nil, err
	}
	if b.Placeholders() != len(args) {
		return nil, fmt.Errorf("%w: query expects %d arguments, got %d", store.ErrQueryBuild, b.Placeholders(), len(args))
	}
	return Query(ctx, t, stmt, args, rm)
}

// QueryParams selects every column of table filtered by params.
func QueryParams[E any](ctx context.Context, t *Template, table *schema.Table, params query.Parameters, rm RowMapper[E]) ([]E, error) {
	b := SelectAllQuery(table)
	args, err := query.Apply(b, params)
	if err != nil {
		return nil, err
	}
	rows, err := QueryBuilder(ctx, t, b, args, rm)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table.Name(), err)
	}
	return rows, nil
}

// DeleteByID deletes the row of table identified by id and returns the rows affected.
func DeleteByID[ID any](ctx context.Context, t *Template, table *schema.Table, id ID, idm IDMapper[ID]) (int64, error) {
	args, err := mapKey(table, id, idm)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table.Name(), err)
	}
	return deleteRow(ctx, t, table, args)
}

// DeleteByEntity deletes the row of table whose key matches e.
func DeleteByEntity[E any](ctx context.Context, t *Template, table *schema.Table, e E, vm ValueMapper[E]) (int64, error) {
	args, err := mapEntityKey(table, e, vm)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table.Name(), err)
	}
	return deleteRow(ctx, t, table, args)
}

func deleteRow(ctx context.Context, t *Template, table *schema.Table, args []any) (int64, error) {
	n, err := t.Exec(ctx, DeleteSQL(table), args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table.Name(), err)
	}
	logger.FromContextOrDefault(ctx, t.logger).Debug("deleted rows",
		slog.String("table", table.Name()),
		slog.Int64("rows", n))
	return n, nil
}

// DeleteWhere deletes the rows of table whose col equals value.
// It is used for explicit child deletes ahead of a parent row.
func DeleteWhere(ctx context.Context, t *Template, table *schema.Table, col *schema.Column, value any) (int64, error) {
	n, err := t.Exec(ctx, "DELETE FROM "+table.Name()+" WHERE "+col.Name()+" = ?", value)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table.Name(), err)
	}
	return n, nil
}
