package sqlexec_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/flowregistry/internal/platform/logger"
	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/phrazzld/flowregistry/internal/store/sqlexec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID    string
	Name  string
	Note  string
	Count int64
}

type part struct {
	WidgetID string
	Seq      int
	Label    string
}

type partKey struct {
	WidgetID string
	Seq      int
}

var (
	widgetTable = schema.NewTable("widget", "w").
			Column("id", "count").
			Updatable("name", "note").
			ID("id").
			MustBuild()
	partTable = schema.NewTable("part", "p").
			Column("widget_id", "seq", "label").
			ID("widget_id", "seq").
			MustBuild()
)

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var widgetValues sqlexec.ValueMapper[*widget] = sqlexec.ValueMapperFunc[*widget](
	func(col *schema.Column, w *widget) (any, error) {
		switch col.Name() {
		case "id":
			return nilIfEmpty(w.ID), nil
		case "name":
			return nilIfEmpty(w.Name), nil
		case "note":
			return nilIfEmpty(w.Note), nil
		case "count":
			return w.Count, nil
		default:
			return nil, sqlexec.UnexpectedColumn(col)
		}
	})

var widgetRows sqlexec.RowMapper[*widget] = sqlexec.RowMapperFunc[*widget](
	func(rec *sqlexec.Record) (*widget, error) {
		return &widget{
			ID:    rec.String(widgetTable.MustColumn("id")),
			Name:  rec.String(widgetTable.MustColumn("name")),
			Note:  rec.String(widgetTable.MustColumn("note")),
			Count: rec.Int64(widgetTable.MustColumn("count")),
		}, nil
	})

var partValues sqlexec.ValueMapper[*part] = sqlexec.ValueMapperFunc[*part](
	func(col *schema.Column, p *part) (any, error) {
		switch col.Name() {
		case "widget_id":
			return p.WidgetID, nil
		case "seq":
			return p.Seq, nil
		case "label":
			return nilIfEmpty(p.Label), nil
		default:
			return nil, sqlexec.UnexpectedColumn(col)
		}
	})

var partIDs sqlexec.IDMapper[partKey] = sqlexec.IDMapperFunc[partKey](
	func(col *schema.Column, k partKey) (any, error) {
		switch col.Name() {
		case "widget_id":
			return k.WidgetID, nil
		case "seq":
			return k.Seq, nil
		default:
			return nil, sqlexec.UnexpectedColumn(col)
		}
	})

func newTemplate(t *testing.T, opts ...sqlexec.Option) (*sqlexec.Template, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log, _ := logger.GetTestLogger(t)
	opts = append([]sqlexec.Option{sqlexec.WithLogger(log)}, opts...)
	return sqlexec.NewTemplate(db, opts...), mock
}

func TestStatements(t *testing.T) {
	assert.Equal(t, "INSERT INTO widget (count, id, name, note) VALUES (?, ?, ?, ?)", sqlexec.InsertSQL(widgetTable))
	assert.Equal(t, "UPDATE widget SET name = ?, note = ? WHERE id = ?",
		sqlexec.UpdateSQL(widgetTable, widgetTable.UpdatableColumns()))
	assert.Equal(t, "DELETE FROM part WHERE widget_id = ? AND seq = ?", sqlexec.DeleteSQL(partTable))

	stmt, err := sqlexec.SelectByIDSQL(partTable)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT p.label AS p_label, p.seq AS p_seq, p.widget_id AS p_widget_id FROM part p WHERE p.widget_id = ? AND p.seq = ?",
		stmt)
}

func TestInsert(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectExec("INSERT INTO widget (count, id, name, note) VALUES (?, ?, ?, ?)").
		WithArgs(int64(3), "w1", "first", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := &widget{ID: "w1", Name: "first", Count: 3}
	got, err := sqlexec.Insert(context.Background(), tmpl, widgetTable, w, widgetValues)
	require.NoError(t, err)
	assert.Same(t, w, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DollarDialect(t *testing.T) {
	tmpl, mock := newTemplate(t, sqlexec.WithDialect(sqlexec.Dollar))
	mock.ExpectExec("INSERT INTO widget (count, id, name, note) VALUES ($1, $2, $3, $4)").
		WithArgs(int64(0), "w1", "first", "n").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := sqlexec.Insert(context.Background(), tmpl, widgetTable, &widget{ID: "w1", Name: "first", Note: "n"}, widgetValues)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_PartialPatch(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectExec("UPDATE widget SET name = ? WHERE id = ?").
		WithArgs("renamed", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, n, err := sqlexec.Update(context.Background(), tmpl, widgetTable,
		&widget{ID: "w1", Name: "renamed"}, widgetTable.UpdatableColumns(), widgetValues)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Errors(t *testing.T) {
	other := schema.NewTable("gadget", "g").Column("id", "size").ID("id").MustBuild()

	tests := []struct {
		name    string
		entity  *widget
		cols    []*schema.Column
		wantErr error
	}{
		{"every value null", &widget{ID: "w1"}, widgetTable.UpdatableColumns(), store.ErrQueryBuild},
		{"unknown column", &widget{ID: "w1"}, other.Columns(), store.ErrMapping},
		{"missing id", &widget{Name: "x"}, widgetTable.UpdatableColumns(), store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, mock := newTemplate(t)
			_, _, err := sqlexec.Update(context.Background(), tmpl, widgetTable, tt.entity, tt.cols, widgetValues)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestQueryForObject(t *testing.T) {
	stmt := "SELECT w.count AS w_count, w.id AS w_id, w.name AS w_name, w.note AS w_note FROM widget w WHERE w.id = ?"
	cols := []string{"w_count", "w_id", "w_name", "w_note"}

	t.Run("found", func(t *testing.T) {
		tmpl, mock := newTemplate(t)
		mock.ExpectQuery(stmt).WithArgs("w1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(7), "w1", "first", nil))

		w, found, err := sqlexec.QueryForObject(context.Background(), tmpl, widgetTable, "w1",
			sqlexec.ScalarID[string](), widgetRows)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, &widget{ID: "w1", Name: "first", Count: 7}, w)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent is not an error", func(t *testing.T) {
		tmpl, mock := newTemplate(t)
		mock.ExpectQuery(stmt).WithArgs("nope").WillReturnRows(sqlmock.NewRows(cols))

		w, found, err := sqlexec.QueryForObject(context.Background(), tmpl, widgetTable, "nope",
			sqlexec.ScalarID[string](), widgetRows)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, w)
	})

	t.Run("more than one row", func(t *testing.T) {
		tmpl, mock := newTemplate(t)
		mock.ExpectQuery(stmt).WithArgs("dup").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "dup", "a", nil).AddRow(int64(2), "dup", "b", nil))

		_, _, err := sqlexec.QueryForObject(context.Background(), tmpl, widgetTable, "dup",
			sqlexec.ScalarID[string](), widgetRows)
		assert.ErrorIs(t, err, store.ErrIllegalState)
	})
}

func TestQuery_EmptyResultIsEmptySlice(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectQuery("SELECT w.id AS w_id FROM widget w").
		WillReturnRows(sqlmock.NewRows([]string{"w_id"}))

	rows, err := sqlexec.Query(context.Background(), tmpl, "SELECT w.id AS w_id FROM widget w", nil, widgetRows)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQuery_MissingColumnIsMappingError(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectQuery("SELECT w.id AS w_id FROM widget w").
		WillReturnRows(sqlmock.NewRows([]string{"w_id"}).AddRow("w1"))

	_, err := sqlexec.Query(context.Background(), tmpl, "SELECT w.id AS w_id FROM widget w", nil, widgetRows)
	assert.ErrorIs(t, err, store.ErrMapping)
}

func TestQueryParams(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectQuery("SELECT w.count AS w_count, w.id AS w_id, w.name AS w_name, w.note AS w_note FROM widget w" +
		" WHERE w.id IN (?, ?) AND w.name LIKE ?").
		WithArgs("w1", "w2", "f%").
		WillReturnRows(sqlmock.NewRows([]string{"w_count", "w_id", "w_name", "w_note"}).
			AddRow(int64(1), "w1", "first", "n"))

	params := query.NewParameters(
		query.Like(widgetTable.MustColumn("name"), "f%"),
		query.In(widgetTable.MustColumn("id"), "w1", "w2"),
	)
	rows, err := sqlexec.QueryParams(context.Background(), tmpl, widgetTable, params, widgetRows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "n", rows[0].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArgumentCountMismatchIsCaughtBeforeExecution(t *testing.T) {
	tmpl, mock := newTemplate(t)

	_, err := tmpl.Exec(context.Background(), "DELETE FROM widget WHERE id = ?")
	assert.ErrorIs(t, err, store.ErrQueryBuild)

	b := sqlexec.SelectAllQuery(widgetTable).WhereIn(widgetTable.MustColumn("id"), 3)
	_, err = sqlexec.QueryBuilder(context.Background(), tmpl, b, []any{"a", "b"}, widgetRows)
	assert.ErrorIs(t, err, store.ErrQueryBuild)

	b = sqlexec.SelectAllQuery(widgetTable).WhereIn(widgetTable.MustColumn("id"), 2)
	mock.ExpectQuery("SELECT w.count AS w_count, w.id AS w_id, w.name AS w_name, w.note AS w_note FROM widget w WHERE w.id IN (?, ?)").
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"w_count", "w_id", "w_name", "w_note"}))
	_, err = sqlexec.QueryBuilder(context.Background(), tmpl, b, []any{"a", "b"}, widgetRows)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryBuilder_QuotedLiteralInRawWhere(t *testing.T) {
	tmpl, mock := newTemplate(t)

	b := sqlexec.SelectAllQuery(widgetTable).
		Where("w.name <> '?'").
		WhereEqual(widgetTable.MustColumn("id"))
	mock.ExpectQuery("SELECT w.count AS w_count, w.id AS w_id, w.name AS w_name, w.note AS w_note FROM widget w WHERE w.name <> '?' AND w.id = ?").
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"w_count", "w_id", "w_name", "w_note"}).AddRow(int64(1), "a", "x", nil))

	rows, err := sqlexec.QueryBuilder(context.Background(), tmpl, b, []any{"a"}, widgetRows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByIDAndEntity_CompositeKey(t *testing.T) {
	tmpl, mock := newTemplate(t)
	mock.ExpectExec("DELETE FROM part WHERE widget_id = ? AND seq = ?").
		WithArgs("w1", int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM part WHERE widget_id = ? AND seq = ?").
		WithArgs("w1", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := sqlexec.DeleteByID(context.Background(), tmpl, partTable, partKey{WidgetID: "w1", Seq: 2}, partIDs)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = sqlexec.DeleteByEntity(context.Background(), tmpl, partTable, &part{WidgetID: "w1", Seq: 3}, partValues)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverErrorsAreMapped(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: widget.name")
	tmpl, mock := newTemplate(t, sqlexec.WithErrorMapper(func(err error) error {
		return errors.Join(store.ErrDuplicate, err)
	}))
	mock.ExpectExec("INSERT INTO widget (count, id, name, note) VALUES (?, ?, ?, ?)").
		WillReturnError(driverErr)

	_, err := sqlexec.Insert(context.Background(), tmpl, widgetTable, &widget{ID: "w1"}, widgetValues)
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.ErrorIs(t, err, driverErr)
	assert.ErrorContains(t, err, "insert into widget")
}

func TestDriverErrorsAreRedactedInLogs(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	log, logBuf := logger.GetTestLogger(t)
	tmpl := sqlexec.NewTemplate(db, sqlexec.WithLogger(log))
	mock.ExpectExec("DELETE FROM widget WHERE id = ?").WithArgs("w1").
		WillReturnError(errors.New("conn to postgres://app:hunter2@db/registry reset"))

	_, err = sqlexec.DeleteByID(context.Background(), tmpl, widgetTable, "w1", sqlexec.ScalarID[string]())
	require.Error(t, err)

	assert.NotContains(t, logBuf.String(), "hunter2")
	logger.AssertLogContains(t, logBuf, "postgres://[REDACTED_CREDENTIAL]@db/registry")
}

func TestTemplate_WithTx(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM widget WHERE id = $1").WithArgs("w1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tmpl := sqlexec.NewTemplate(db, sqlexec.WithDialect(sqlexec.Dollar))
	err = store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		txTmpl := tmpl.WithTx(tx)
		assert.Equal(t, sqlexec.Dollar, txTmpl.Dialect())
		_, err := sqlexec.DeleteByID(ctx, txTmpl, widgetTable, "w1", sqlexec.ScalarID[string]())
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
