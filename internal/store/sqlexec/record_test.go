package sqlexec

import (
	"testing"
	"time"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/stretchr/testify/assert"
)

var recordTable = schema.NewTable("thing", "t").
	Column("id", "flag", "created", "size", "label", "missing").
	ID("id").
	MustBuild()

func TestRecord_DriverNeutralCoercion(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	rec := NewRecord(map[string]any{
		"T_ID":      []byte("abc"),
		"t_flag":    int64(1),
		"t_created": "2024-03-01T12:30:00Z",
		"t_size":    "42",
		"t_label":   nil,
	})

	assert.Equal(t, "abc", rec.String(recordTable.MustColumn("id")))
	assert.True(t, rec.Bool(recordTable.MustColumn("flag")))
	assert.True(t, created.Equal(rec.Time(recordTable.MustColumn("created"))))
	assert.Equal(t, int64(42), rec.Int64(recordTable.MustColumn("size")))
	assert.Equal(t, 42, rec.Int(recordTable.MustColumn("size")))
	assert.True(t, rec.IsNull(recordTable.MustColumn("label")))
	assert.Equal(t, "", rec.String(recordTable.MustColumn("label")))
	assert.True(t, rec.Time(recordTable.MustColumn("label")).IsZero())
	assert.NoError(t, rec.Err())
}

func TestRecord_FirstErrorWins(t *testing.T) {
	rec := NewRecord(map[string]any{"t_size": "not a number"})

	assert.Equal(t, int64(0), rec.Int64(recordTable.MustColumn("size")))
	_ = rec.String(recordTable.MustColumn("missing"))

	assert.ErrorIs(t, rec.Err(), store.ErrMapping)
	assert.ErrorContains(t, rec.Err(), "t_size")
	assert.False(t, rec.Has(recordTable.MustColumn("missing")))
}

func TestRecord_CountLabel(t *testing.T) {
	version := recordTable.MustColumn("size")
	rec := NewRecord(map[string]any{query.Count(version).Alias(): int64(3)})
	assert.Equal(t, int64(3), rec.Int64(query.Count(version)))
	assert.NoError(t, rec.Err())
}

func TestDialect_Rebind(t *testing.T) {
	stmt := "SELECT a FROM t WHERE a = ? AND b = '?' AND c IN (?, ?)"
	assert.Equal(t, stmt, Question.Rebind(stmt))
	assert.Equal(t, "SELECT a FROM t WHERE a = $1 AND b = '?' AND c IN ($2, $3)", Dollar.Rebind(stmt))
	assert.Equal(t, "dollar", Dollar.String())
}
