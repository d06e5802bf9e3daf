package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
)

// Entity is a value object with a gettable and settable identifier.
// The zero value of ID means the identifier is unset.
type Entity[ID comparable] interface {
	GetID() ID
	SetID(id ID)
}

// CRUD is the contract every entity repository offers.
type CRUD[ID comparable, E Entity[ID]] interface {
	Create(ctx context.Context, e E) (E, error)
	Update(ctx context.Context, e E) (E, error)
	FindByID(ctx context.Context, id ID) (E, bool, error)
	ExistsByID(ctx context.Context, id ID) (bool, error)
	FindAll(ctx context.Context) ([]E, error)
	FindAllByID(ctx context.Context, ids []ID) ([]E, error)
	FindByQueryParams(ctx context.Context, params query.Parameters) ([]E, error)
	DeleteByID(ctx context.Context, id ID) error
	Delete(ctx context.Context, e E) error
}

// Dependent names child rows that reference the parent's id and must be deleted
// before it: rows of Table whose Column equals the parent id.
type Dependent struct {
	Table  *schema.Table
	Column *schema.Column
}

type options struct {
	updateCols    []*schema.Column
	updateColsSet bool
	generator     schema.IDGenerator
	generatorSet  bool
	dependents    []Dependent
	logger        *slog.Logger
}

// Option configures a Repository.
type Option func(*options)

// WithUpdateColumns overrides the table's updatable columns. Calling it with no
// columns makes the repository reject updates.
func WithUpdateColumns(cols ...*schema.Column) Option {
	return func(o *options) {
		o.updateCols = slices.Clone(cols)
		o.updateColsSet = true
	}
}

// WithIDGenerator overrides the table's id generator. A nil generator disables generation.
func WithIDGenerator(g schema.IDGenerator) Option {
	return func(o *options) {
		o.generator = g
		o.generatorSet = true
	}
}

// WithDependents lists child rows deleted, in order, before the parent row.
func WithDependents(deps ...Dependent) Option {
	return func(o *options) { o.dependents = append(o.dependents, deps...) }
}

// WithLogger sets the repository logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Repository implements CRUD for one entity type.
type Repository[ID comparable, E Entity[ID]] struct {
	entityType schema.EntityType
	table      *schema.Table
	tmpl       *sqlexec.Template
	idm        sqlexec.IDMapper[ID]
	vm         sqlexec.ValueMapper[E]
	rm         sqlexec.RowMapper[E]
	updateCols []*schema.Column
	generator  schema.IDGenerator
	dependents []Dependent
	logger     *slog.Logger
}

// New builds a repository for entityType, resolving its table from registry.
func New[ID comparable, E Entity[ID]](
	tmpl *sqlexec.Template,
	registry *schema.Registry,
	entityType schema.EntityType,
	idm sqlexec.IDMapper[ID],
	vm sqlexec.ValueMapper[E],
	rm sqlexec.RowMapper[E],
	opts ...Option,
) (*Repository[ID, E], error) {
	if tmpl == nil || registry == nil || idm == nil || vm == nil || rm == nil {
		return nil, fmt.Errorf("%w: repository for %s: template, registry and mappers are required",
			store.ErrConfiguration, entityType)
	}

	table, err := registry.Table(entityType)
	if err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	updateCols := table.UpdatableColumns()
	if o.updateColsSet {
		for _, c := range o.updateCols {
			if c.Table() != table {
				return nil, fmt.Errorf("%w: update column %s does not belong to table %s",
					store.ErrConfiguration, c.Qualified(), table.Name())
			}
		}
		updateCols = o.updateCols
		schema.SortColumns(updateCols)
	}

	generator := table.IDGenerator()
	if o.generatorSet {
		generator = o.generator
	}

	if len(o.dependents) > 0 {
		if _, single := table.IDColumn(); !single {
			return nil, fmt.Errorf("%w: dependents require a single-column key on %s",
				store.ErrConfiguration, table.Name())
		}
	}

	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	return &Repository[ID, E]{
		entityType: entityType,
		table:      table,
		tmpl:       tmpl,
		idm:        idm,
		vm:         vm,
		rm:         rm,
		updateCols: updateCols,
		generator:  generator,
		dependents: o.dependents,
		logger: log.With(
			slog.String("component", "repository"),
			slog.String("entity", string(entityType)),
		),
	}, nil
}

// WithTx returns a repository that runs on tx.
func (r *Repository[ID, E]) WithTx(tx *sql.Tx) *Repository[ID, E] {
	cp := *r
	cp.tmpl = r.tmpl.WithTx(tx)
	return &cp
}

// Table returns the repository's table.
func (r *Repository[ID, E]) Table() *schema.Table { return r.table }

// Template returns the template the repository executes on.
func (r *Repository[ID, E]) Template() *sqlexec.Template { return r.tmpl }

// RowMapper returns the entity row mapper.
func (r *Repository[ID, E]) RowMapper() sqlexec.RowMapper[E] { return r.rm }

// UpdateColumns returns the columns Update may set.
func (r *Repository[ID, E]) UpdateColumns() []*schema.Column { return slices.Clone(r.updateCols) }

// Create inserts e. When e has no id and a generator is configured, a generated id is
// assigned first; a caller-supplied id is never replaced.
func (r *Repository[ID, E]) Create(ctx context.Context, e E) (E, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	var zero ID
	if e.GetID() == zero && r.generator != nil {
		raw, err := r.generator.Generate()
		if err != nil {
			return e, fmt.Errorf("generate id for %s: %w", r.table.Name(), err)
		}
		id, ok := raw.(ID)
		if !ok {
			return e, fmt.Errorf("%w: generator for %s produced %T, want %T",
				store.ErrConfiguration, r.table.Name(), raw, zero)
		}
		e.SetID(id)
	}

	if _, err := sqlexec.Insert(ctx, r.tmpl, r.table, e, r.vm); err != nil {
		log.Error("failed to create entity",
			slog.String("error", err.Error()),
			slog.Any("id", e.GetID()))
		return e, err
	}

	log.Info("entity created", slog.Any("id", e.GetID()))
	return e, nil
}

// Update writes e's updatable columns under the partial-patch policy of sqlexec.Update.
// It fails with store.ErrUnsupportedOperation when the entity has no updatable columns
// and with store.ErrNotFound when no row matched e's id.
func (r *Repository[ID, E]) Update(ctx context.Context, e E) (E, error) {
	if len(r.updateCols) == 0 {
		return e, store.NewStoreError(string(r.entityType), "update",
			"no updatable columns", store.ErrUnsupportedOperation)
	}
	_, err := r.UpdateColumnsWhere(ctx, e, r.updateCols)
	return e, err
}

// UpdateColumnsWhere is Update restricted to cols, with extra equality predicates
// added to the key clause. It returns the rows affected. Zero rows is reported as
// store.ErrNotFound only when no extra predicate was given; otherwise the caller
// decides what a miss means (e.g. a concurrent modification).
func (r *Repository[ID, E]) UpdateColumnsWhere(ctx context.Context, e E, cols []*schema.Column, where ...query.Parameter) (int64, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	_, n, err := sqlexec.Update(ctx, r.tmpl, r.table, e, cols, r.vm, where...)
	if err != nil {
		log.Error("failed to update entity", slog.String("error", err.Error()), slog.Any("id", e.GetID()))
		return 0, err
	}
	if n == 0 && len(where) == 0 {
		return 0, fmt.Errorf("%w: %s %v", store.ErrNotFound, r.entityType, e.GetID())
	}
	log.Info("entity updated", slog.Any("id", e.GetID()), slog.Int64("rows", n))
	return n, nil
}

// FindByID loads the entity with the given id. A missing row yields (zero, false, nil).
func (r *Repository[ID, E]) FindByID(ctx context.Context, id ID) (E, bool, error) {
	return sqlexec.QueryForObject(ctx, r.tmpl, r.table, id, r.idm, r.rm)
}

// ExistsByID reports whether a row with the given id exists.
func (r *Repository[ID, E]) ExistsByID(ctx context.Context, id ID) (bool, error) {
	_, found, err := r.FindByID(ctx, id)
	return found, err
}

// FindAll returns every entity.
func (r *Repository[ID, E]) FindAll(ctx context.Context) ([]E, error) {
	return sqlexec.QueryBuilder(ctx, r.tmpl, sqlexec.SelectAllQuery(r.table), nil, r.rm)
}

// FindAllByID returns the entities whose id is in ids, using a single IN predicate
// (or an OR of key tuples for composite keys). An empty ids runs no statement.
func (r *Repository[ID, E]) FindAllByID(ctx context.Context, ids []ID) ([]E, error) {
	if len(ids) == 0 {
		return []E{}, nil
	}

	b := sqlexec.SelectAllQuery(r.table)
	keyCols := r.table.IDColumns()
	args := make([]any, 0, len(ids)*len(keyCols))

	if idCol, single := r.table.IDColumn(); single {
		for _, id := range ids {
			v, err := r.idm.MapID(idCol, id)
			if err != nil {
				return nil, err
			}
			args = append(args, v)
		}
		b.WhereIn(idCol, len(ids))
	} else {
		tuple := make([]string, len(keyCols))
		for i, c := range keyCols {
			tuple[i] = c.Qualified() + " = ?"
		}
		clause := "(" + strings.Join(tuple, " AND ") + ")"
		alts := make([]string, len(ids))
		for i, id := range ids {
			alts[i] = clause
			for _, c := range keyCols {
				v, err := r.idm.MapID(c, id)
				if err != nil {
					return nil, err
				}
				args = append(args, v)
			}
		}
		b.Where("(" + strings.Join(alts, " OR ") + ")")
	}

	return sqlexec.QueryBuilder(ctx, r.tmpl, b, args, r.rm)
}

// FindByQueryParams returns the entities matching every parameter.
func (r *Repository[ID, E]) FindByQueryParams(ctx context.Context, params query.Parameters) ([]E, error) {
	return sqlexec.QueryParams(ctx, r.tmpl, r.table, params, r.rm)
}

// FindByQuery runs a custom query through the entity row mapper.
func (r *Repository[ID, E]) FindByQuery(ctx context.Context, b *query.Builder, args ...any) ([]E, error) {
	return sqlexec.QueryBuilder(ctx, r.tmpl, b, args, r.rm)
}

// FindOneByQuery runs a custom query expected to match at most one row.
func (r *Repository[ID, E]) FindOneByQuery(ctx context.Context, b *query.Builder, args ...any) (E, bool, error) {
	var zero E
	rows, err := r.FindByQuery(ctx, b, args...)
	if err != nil {
		return zero, false, err
	}
	switch len(rows) {
	case 0:
		return zero, false, nil
	case 1:
		return rows[0], true, nil
	default:
		return zero, false, fmt.Errorf("%w: %s: expected at most one row, got %d",
			store.ErrIllegalState, r.entityType, len(rows))
	}
}

// DeleteByID deletes the entity with the given id after its dependents.
// It returns store.ErrNotFound when no row was deleted.
func (r *Repository[ID, E]) DeleteByID(ctx context.Context, id ID) error {
	if err := r.deleteDependents(ctx, func(c *schema.Column) (any, error) { return r.idm.MapID(c, id) }); err != nil {
		return err
	}
	n, err := sqlexec.DeleteByID(ctx, r.tmpl, r.table, id, r.idm)
	return r.checkDeleted(ctx, n, err, id)
}

// Delete deletes e by its key after its dependents.
// It returns store.ErrNotFound when no row was deleted.
func (r *Repository[ID, E]) Delete(ctx context.Context, e E) error {
	if err := r.deleteDependents(ctx, func(c *schema.Column) (any, error) { return r.vm.MapValue(c, e) }); err != nil {
		return err
	}
	n, err := sqlexec.DeleteByEntity(ctx, r.tmpl, r.table, e, r.vm)
	return r.checkDeleted(ctx, n, err, e.GetID())
}

func (r *Repository[ID, E]) deleteDependents(ctx context.Context, keyValue func(*schema.Column) (any, error)) error {
	if len(r.dependents) == 0 {
		return nil
	}
	idCol, _ := r.table.IDColumn()
	v, err := keyValue(idCol)
	if err != nil {
		return err
	}
	log := logger.FromContextOrDefault(ctx, r.logger)
	for _, d := range r.dependents {
		n, err := sqlexec.DeleteWhere(ctx, r.tmpl, d.Table, d.Column, v)
		if err != nil {
			log.Error("failed to delete dependent rows",
				slog.String("table", d.Table.Name()),
				slog.String("error", err.Error()))
			return err
		}
		log.Debug("deleted dependent rows", slog.String("table", d.Table.Name()), slog.Int64("rows", n))
	}
	return nil
}

func (r *Repository[ID, E]) checkDeleted(ctx context.Context, n int64, err error, id any) error {
	log := logger.FromContextOrDefault(ctx, r.logger)
	if err != nil {
		log.Error("failed to delete entity", slog.String("error", err.Error()), slog.Any("id", id))
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %v", store.ErrNotFound, r.entityType, id)
	}
	log.Info("entity deleted", slog.Any("id", id))
	return nil
}
