package sqlexec

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/redact"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
)

// Dialect selects the placeholder style understood by the driver.
type Dialect int

const (
	// Question keeps "?" placeholders (sqlite, mysql).
	Question Dialect = iota
	// Dollar rewrites placeholders to "$1", "$2", ... (postgres).
	Dollar
)

func (d Dialect) String() string {
	if d == Dollar {
		return "dollar"
	}
	return "question"
}

// Rebind rewrites "?" placeholders for the dialect. Quoted literals are left alone.
func (d Dialect) Rebind(stmt string) string {
	if d != Dollar {
		return stmt
	}
	offsets := query.PlaceholderOffsets(stmt)
	if len(offsets) == 0 {
		return stmt
	}
	var sb strings.Builder
	sb.Grow(len(stmt) + 2*len(offsets))
	last := 0
	for i, off := range offsets {
		sb.WriteString(stmt[last:off])
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(i + 1))
		last = off + 1
	}
	sb.WriteString(stmt[last:])
	return sb.String()
}

// Template executes statements against a store.DBTX.
type Template struct {
	db       store.DBTX
	dialect  Dialect
	logger   *slog.Logger
	mapDBErr func(error) error
}

// Option configures a Template.
type Option func(*Template)

// WithDialect sets the placeholder dialect. The default is Question.
func WithDialect(d Dialect) Option {
	return func(t *Template) { t.dialect = d }
}

// WithLogger sets the logger statements are logged to.
func WithLogger(l *slog.Logger) Option {
	return func(t *Template) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithErrorMapper translates driver errors (e.g. unique violations) before they are returned.
func WithErrorMapper(fn func(error) error) Option {
	return func(t *Template) { t.mapDBErr = fn }
}

// NewTemplate returns a template bound to db.
func NewTemplate(db store.DBTX, opts ...Option) *Template {
	t := &Template{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With(slog.String("component", "sql_template"))
	return t
}

// WithTx returns a template that runs its statements on tx.
func (t *Template) WithTx(tx *sql.Tx) *Template {
	return &Template{
		db:       tx,
		dialect:  t.dialect,
		logger:   t.logger,
		mapDBErr: t.mapDBErr,
	}
}

// DB returns the underlying connection or transaction.
func (t *Template) DB() store.DBTX { return t.db }

// Dialect returns the placeholder dialect.
func (t *Template) Dialect() Dialect { return t.dialect }

func (t *Template) prepare(ctx context.Context, stmt string, args []any) (string, *slog.Logger, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)
	if want := query.CountPlaceholders(stmt); want != len(args) {
		log.Error("placeholder count mismatch",
			slog.String("sql", stmt),
			slog.Int("placeholders", want),
			slog.Int("args", len(args)))
		return "", log, fmt.Errorf("%w: statement expects %d arguments, got %d: %s",
			store.ErrQueryBuild, want, len(args), stmt)
	}
	log.Debug("executing statement", slog.String("sql", stmt), slog.Int("args", len(args)))
	return t.dialect.Rebind(stmt), log, nil
}

func (t *Template) dbErr(err error) error {
	if t.mapDBErr != nil {
		return t.mapDBErr(err)
	}
	return err
}

// Exec runs a statement that returns no rows and reports the number of rows affected.
func (t *Template) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	stmt, log, err := t.prepare(ctx, query, args)
	if err != nil {
		return 0, err
	}
	res, err := t.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("statement failed", slog.String("sql", query), slog.String("error", redact.Error(err)))
		return 0, t.dbErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, t.dbErr(err)
	}
	return n, nil
}

// QueryEach runs a query and calls fn for every row, stopping at the first error.
func (t *Template) QueryEach(ctx context.Context, query string, args []any, fn func(*Record) error) error {
	stmt, log, err := t.prepare(ctx, query, args)
	if err != nil {
		return err
	}
	rows, err := t.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("query failed", slog.String("sql", query), slog.String("error", redact.Error(err)))
		return t.dbErr(err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return t.dbErr(err)
	}
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = strings.ToLower(c)
	}

	for rows.Next() {
		rec, err := scanRecord(rows, labels)
		if err != nil {
			return t.dbErr(err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return t.dbErr(err)
	}
	return nil
}

// QueryRecords runs a query and returns every row.
func (t *Template) QueryRecords(ctx context.Context, query string, args ...any) ([]*Record, error) {
	var out []*Record
	err := t.QueryEach(ctx, query, args, func(rec *Record) error {
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// isNull reports whether v binds as SQL NULL.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	if valuer, ok := v.(driver.Valuer); ok {
		dv, err := valuer.Value()
		return err == nil && dv == nil
	}
	return false
}
