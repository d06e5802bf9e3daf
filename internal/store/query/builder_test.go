package query_test

import (
	"strings"
	"testing"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/query"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bucketTable = schema.NewTable("bucket", "b").
			Column("id", "created").
			Updatable("name", "description").
			ID("id").
			MustBuild()
	itemTable = schema.NewTable("bucket_item", "bi").
			Column("id", "bucket_id", "item_type").
			Updatable("name").
			ID("id").
			MustBuild()
	snapshotTable = schema.NewTable("flow_snapshot", "fs").
			Column("flow_id", "version").
			ID("flow_id", "version").
			MustBuild()
)

func col(t *schema.Table, name string) *schema.Column { return t.MustColumn(name) }

func TestBuild_RequiresSelectAndFrom(t *testing.T) {
	t.Run("no select", func(t *testing.T) {
		_, err := query.New().From(bucketTable).Build()
		assert.ErrorIs(t, err, store.ErrQueryBuild)
		assert.ErrorContains(t, err, "no columns selected")
	})

	t.Run("no from", func(t *testing.T) {
		_, err := query.New().Select(col(bucketTable, "id")).Build()
		assert.ErrorIs(t, err, store.ErrQueryBuild)
		assert.ErrorContains(t, err, "no table")
	})

	t.Run("select and from", func(t *testing.T) {
		sql, err := query.New().
			Select(col(bucketTable, "id"), col(bucketTable, "name")).
			From(bucketTable).
			WhereEqual(col(bucketTable, "name")).
			Build()
		require.NoError(t, err)
		assert.Equal(t, "SELECT b.id AS b_id, b.name AS b_name FROM bucket b WHERE b.name = ?", sql)
	})
}

func TestBuild_FullStatement(t *testing.T) {
	b := query.New().
		Select(col(bucketTable, "name")).
		Select(itemTable.Columns()...).
		From(itemTable).
		InnerJoin(bucketTable, col(itemTable, "bucket_id"), col(bucketTable, "id")).
		LeftJoin(snapshotTable, col(itemTable, "id"), col(snapshotTable, "flow_id")).
		WhereEqual(col(itemTable, "item_type")).
		WhereIn(col(itemTable, "bucket_id"), 3).
		WhereLike(col(itemTable, "name")).
		WhereNotEqual(col(itemTable, "id")).
		OrderBy(col(itemTable, "name"), query.Asc).
		OrderBy(col(itemTable, "id"), query.Desc).
		Limit(10)

	sql, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT b.name AS b_name, bi.bucket_id AS bi_bucket_id, bi.id AS bi_id, bi.item_type AS bi_item_type, bi.name AS bi_name"+
			" FROM bucket_item bi"+
			" INNER JOIN bucket b ON bi.bucket_id = b.id"+
			" LEFT JOIN flow_snapshot fs ON bi.id = fs.flow_id"+
			" WHERE bi.item_type = ? AND bi.bucket_id IN (?, ?, ?) AND bi.name LIKE ? AND bi.id <> ?"+
			" ORDER BY bi.name ASC, bi.id DESC LIMIT 10",
		sql)
	assert.Equal(t, 6, b.Placeholders())
	assert.Equal(t, 6, strings.Count(sql, "?"))
}

func TestBuild_CountAndGroupBy(t *testing.T) {
	flowID := col(snapshotTable, "flow_id")
	version := col(snapshotTable, "version")

	sql, err := query.New().
		Select(flowID).
		SelectCount(version).
		From(snapshotTable).
		WhereIn(flowID, 2).
		GroupBy(flowID).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT fs.flow_id AS fs_flow_id, count(fs.version) AS fs_version_count FROM flow_snapshot fs"+
			" WHERE fs.flow_id IN (?, ?) GROUP BY fs.flow_id",
		sql)
	assert.Equal(t, "fs_version_count", query.Count(version).Alias())
}

func TestBuild_JoinKinds(t *testing.T) {
	left := col(itemTable, "bucket_id")
	right := col(bucketTable, "id")

	tests := []struct {
		name string
		join func(b *query.Builder) *query.Builder
		want string
	}{
		{"inner", func(b *query.Builder) *query.Builder { return b.InnerJoin(bucketTable, left, right) }, "INNER JOIN"},
		{"left", func(b *query.Builder) *query.Builder { return b.LeftJoin(bucketTable, left, right) }, "LEFT JOIN"},
		{"right", func(b *query.Builder) *query.Builder { return b.RightJoin(bucketTable, left, right) }, "RIGHT JOIN"},
		{"outer", func(b *query.Builder) *query.Builder { return b.OuterJoin(bucketTable, left, right) }, "FULL OUTER JOIN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := tt.join(query.New().Select(left).From(itemTable)).Build()
			require.NoError(t, err)
			assert.Contains(t, sql, " "+tt.want+" bucket b ON bi.bucket_id = b.id")
		})
	}
}

func TestBuild_ColumnPredicatesAndRawWhere(t *testing.T) {
	b := query.New().
		Select(col(itemTable, "id")).
		From(itemTable, bucketTable).
		WhereEqualColumns(col(itemTable, "bucket_id"), col(bucketTable, "id")).
		WhereNotEqualColumns(col(itemTable, "name"), col(bucketTable, "name")).
		WhereEqualAll(col(bucketTable, "id"), col(bucketTable, "name")).
		Where("bi.created > ? OR bi.created < ?")

	sql, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT bi.id AS bi_id FROM bucket_item bi, bucket b"+
			" WHERE bi.bucket_id = b.id AND bi.name <> b.name AND b.id = ? AND b.name = ? AND bi.created > ? OR bi.created < ?",
		sql)
	assert.Equal(t, 4, b.Placeholders())
}

func TestWhere_QuotedQuestionMarkIsNotAPlaceholder(t *testing.T) {
	b := query.New().
		Select(col(bucketTable, "id")).
		From(bucketTable).
		Where("b.name <> '?'").
		WhereEqual(col(bucketTable, "id"))

	sql, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "SELECT b.id AS b_id FROM bucket b WHERE b.name <> '?' AND b.id = ?", sql)
	assert.Equal(t, 1, b.Placeholders())
	assert.Equal(t, b.Placeholders(), query.CountPlaceholders(sql))
}

func TestPlaceholderOffsets(t *testing.T) {
	tests := []struct {
		name string
		stmt string
		want []int
	}{
		{"none", "SELECT 1", nil},
		{"plain", "a = ? AND b = ?", []int{4, 14}},
		{"quoted", "a = '?' AND b = ?", []int{16}},
		{"escaped quote", "a = 'it''s ?' AND b = ?", []int{22}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, query.PlaceholderOffsets(tt.stmt))
			assert.Equal(t, len(tt.want), query.CountPlaceholders(tt.stmt))
		})
	}
}

func TestWhereIn_EmptyFailsBuild(t *testing.T) {
	b := query.New().Select(col(bucketTable, "id")).From(bucketTable).WhereIn(col(bucketTable, "id"), 0)
	_, err := b.Build()
	assert.ErrorIs(t, err, store.ErrQueryBuild)
	assert.Equal(t, 0, b.Placeholders())

	_, err = b.Copy().Build()
	assert.ErrorIs(t, err, store.ErrQueryBuild)
}

func TestCopy_Independence(t *testing.T) {
	base := query.New().
		Select(bucketTable.Columns()...).
		From(bucketTable).
		OrderBy(col(bucketTable, "name"), query.Asc)

	before, err := base.Build()
	require.NoError(t, err)

	branch := base.Copy().
		WhereEqual(col(bucketTable, "id")).
		Select(col(bucketTable, "created")).
		GroupBy(col(bucketTable, "id")).
		OrderBy(col(bucketTable, "id"), query.Desc).
		Limit(1)
	other := base.Copy().WhereIn(col(bucketTable, "id"), 2)

	after, err := base.Build()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 0, base.Placeholders())

	branchSQL, err := branch.Build()
	require.NoError(t, err)
	assert.Contains(t, branchSQL, "WHERE b.id = ?")
	assert.NotContains(t, branchSQL, "IN (")
	assert.Equal(t, 1, branch.Placeholders())

	otherSQL, err := other.Build()
	require.NoError(t, err)
	assert.Contains(t, otherSQL, "WHERE b.id IN (?, ?)")
	assert.NotContains(t, otherSQL, "b.id = ?")
	assert.Equal(t, 2, other.Placeholders())
}
