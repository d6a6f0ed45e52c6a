package tableheap_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/catalog"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/tableheap"
	"github.com/novasql/core/internal/types"
)

func newTestPool(t *testing.T, poolSize int) *buffer.Pool {
	t.Helper()
	mgr, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 16)
	t.Cleanup(func() { _ = sched.Shutdown() })
	return buffer.NewPool(sched, poolSize, 2)
}

func testSchema() catalog.Schema {
	return catalog.Schema{Columns: []catalog.Column{
		{Name: "id", Type: types.Integer},
		{Name: "name", Type: types.Varchar, Nullable: true},
	}}
}

func TestTableHeap_InsertAndGetTuple(t *testing.T) {
	pool := newTestPool(t, 4)
	heap, _, err := tableheap.Create(pool)
	require.NoError(t, err)

	schema := testSchema()
	data, err := tableheap.Encode(schema, []types.Value{types.NewInteger(1), types.NewVarchar("alice")})
	require.NoError(t, err)

	rid, err := heap.InsertTuple(data)
	require.NoError(t, err)

	got, meta, err := heap.GetTuple(rid)
	require.NoError(t, err)
	require.False(t, meta.IsDeleted)

	values, err := tableheap.Decode(schema, got)
	require.NoError(t, err)
	require.Equal(t, "1", values[0].String())
	require.Equal(t, "alice", values[1].String())
}

func TestTableHeap_MarkDeleteTombstones(t *testing.T) {
	pool := newTestPool(t, 4)
	heap, _, err := tableheap.Create(pool)
	require.NoError(t, err)

	data, err := tableheap.Encode(testSchema(), []types.Value{types.NewInteger(7), types.NullValue(types.Varchar)})
	require.NoError(t, err)
	rid, err := heap.InsertTuple(data)
	require.NoError(t, err)

	require.NoError(t, heap.MarkDelete(rid))

	_, meta, err := heap.GetTuple(rid)
	require.ErrorIs(t, err, tableheap.ErrTupleDeleted)
	require.True(t, meta.IsDeleted)
}

func TestTableHeap_SpillsAcrossPages(t *testing.T) {
	pool := newTestPool(t, 4)
	heap, _, err := tableheap.Create(pool)
	require.NoError(t, err)

	schema := testSchema()
	longName := make([]byte, 512)
	for i := range longName {
		longName[i] = 'x'
	}

	var rids []tableheap.RID
	for i := 0; i < 40; i++ {
		data, err := tableheap.Encode(schema, []types.Value{types.NewInteger(int32(i)), types.NewVarchar(string(longName))})
		require.NoError(t, err)
		rid, err := heap.InsertTuple(data)
		require.NoError(t, err)
		rids = append(rids, rid)
	}

	pages := map[disk.PageId]bool{}
	for _, rid := range rids {
		pages[rid.PageID] = true
	}
	require.Greater(t, len(pages), 1)

	for i, rid := range rids {
		got, _, err := heap.GetTuple(rid)
		require.NoError(t, err)
		values, err := tableheap.Decode(schema, got)
		require.NoError(t, err)
		require.Equal(t, int32(i), int32(values[0].AsFloat64()))
	}
}

func TestTableHeap_IteratorWalksAllTuples(t *testing.T) {
	pool := newTestPool(t, 4)
	heap, _, err := tableheap.Create(pool)
	require.NoError(t, err)
	schema := testSchema()

	for i := 0; i < 5; i++ {
		data, err := tableheap.Encode(schema, []types.Value{types.NewInteger(int32(i)), types.NewVarchar("row")})
		require.NoError(t, err)
		_, err = heap.InsertTuple(data)
		require.NoError(t, err)
	}

	it := heap.Begin()
	count := 0
	for {
		_, data, meta, ok := it.Next()
		if !ok {
			break
		}
		require.False(t, meta.IsDeleted)
		values, err := tableheap.Decode(schema, data)
		require.NoError(t, err)
		require.Equal(t, "row", values[1].String())
		count++
	}
	require.Equal(t, 5, count)
}
