package schema_test

import (
	"sync"
	"testing"

	"github.com/phrazzld/flowregistry/internal/store"
	"github.com/phrazzld/flowregistry/internal/store/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	bucket := schema.NewTable("bucket", "b").Column("id").ID("id").MustBuild()
	flow := schema.NewTable("flow", "f").Column("id").ID("id").MustBuild()

	r := schema.NewRegistry()
	require.NoError(t, r.Register("flow", flow))
	require.NoError(t, r.Register("bucket", bucket))

	t.Run("duplicate registration", func(t *testing.T) {
		err := r.Register("bucket", flow)
		assert.ErrorIs(t, err, store.ErrConfiguration)
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("invalid registration", func(t *testing.T) {
		assert.ErrorIs(t, r.Register("", bucket), store.ErrConfiguration)
		assert.ErrorIs(t, r.Register("other", nil), store.ErrConfiguration)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := r.Table("bucket")
		require.NoError(t, err)
		assert.Same(t, bucket, got)
	})

	t.Run("unregistered type names the mapping", func(t *testing.T) {
		_, err := r.Table("extension")
		assert.ErrorIs(t, err, store.ErrIllegalState)
		assert.ErrorContains(t, err, "extension")
	})

	t.Run("tables sorted by name", func(t *testing.T) {
		tables := r.Tables()
		require.Len(t, tables, 2)
		assert.Equal(t, "bucket", tables[0].Name())
		assert.Equal(t, "flow", tables[1].Name())
	})

	t.Run("frozen registry rejects registration", func(t *testing.T) {
		r.Freeze()
		assert.True(t, r.Frozen())
		err := r.Register("snapshot", flow)
		assert.ErrorIs(t, err, store.ErrConfiguration)
		assert.Panics(t, func() { r.MustRegister("snapshot", flow) })
	})
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	r := schema.NewRegistry()
	r.MustRegister("bucket", schema.NewTable("bucket", "b").Column("id").ID("id").MustBuild())
	r.Freeze()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := r.Table("bucket")
			assert.NoError(t, err)
			assert.Equal(t, "bucket", table.Name())
		}()
	}
	wg.Wait()
}
