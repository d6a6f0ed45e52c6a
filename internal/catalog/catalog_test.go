package catalog_test

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

func newTestPool(t *testing.T) *buffer.Pool {
	t.Helper()
	mgr, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 16)
	t.Cleanup(func() { _ = sched.Shutdown() })
	return buffer.NewPool(sched, 8, 2)
}

func testSchema() catalog.Schema {
	return catalog.Schema{Columns: []catalog.Column{
		{Name: "id", Type: types.Integer, Nullable: false},
		{Name: "name", Type: types.Varchar, Nullable: true},
	}}
}

func createTestTable(t *testing.T, pool *buffer.Pool, cat *catalog.Catalog, name string) *catalog.TableInfo {
	t.Helper()
	_, firstPageID, err := tableheap.Create(pool)
	require.NoError(t, err)
	ti, err := cat.CreateTable(name, testSchema(), firstPageID)
	require.NoError(t, err)
	return ti
}

func TestCatalog_CreateAndGetTable(t *testing.T) {
	pool := newTestPool(t)
	cat, err := catalog.New(t.TempDir())
	require.NoError(t, err)

	ti := createTestTable(t, pool, cat, "users")
	require.Equal(t, "users", ti.Name)
	require.NotEqual(t, disk.InvalidPageId, ti.FirstPageID)

	got, err := cat.GetTable("users")
	require.NoError(t, err)
	require.Equal(t, ti.OID, got.OID)

	_, err = cat.CreateTable("users", testSchema(), ti.FirstPageID)
	require.ErrorIs(t, err, catalog.ErrTableExists)
}

func TestCatalog_PersistsAcrossReopen(t *testing.T) {
	pool := newTestPool(t)
	dir := t.TempDir()

	cat, err := catalog.New(dir)
	require.NoError(t, err)
	createTestTable(t, pool, cat, "orders")

	reopened, err := catalog.New(dir)
	require.NoError(t, err)
	ti, err := reopened.GetTable("orders")
	require.NoError(t, err)
	require.Equal(t, "orders", ti.Name)
	require.Len(t, ti.Schema.Columns, 2)
}

func TestCatalog_DropTableRemovesIndexes(t *testing.T) {
	pool := newTestPool(t)
	cat, err := catalog.New(t.TempDir())
	require.NoError(t, err)

	createTestTable(t, pool, cat, "users")
	_, err = cat.CreateIndex("users", "by_id", []string{"id"}, disk.PageId(42))
	require.NoError(t, err)

	require.NoError(t, cat.DropTable("users"))

	_, err = cat.GetTable("users")
	require.ErrorIs(t, err, catalog.ErrTableNotFound)
	_, err = cat.GetIndex("users", "by_id")
	require.ErrorIs(t, err, catalog.ErrIndexNotFound)
}

func TestCatalog_CreateIndexUnknownColumnFails(t *testing.T) {
	pool := newTestPool(t)
	cat, err := catalog.New(t.TempDir())
	require.NoError(t, err)

	createTestTable(t, pool, cat, "users")

	_, err = cat.CreateIndex("users", "bad", []string{"nope"}, disk.PageId(1))
	require.ErrorIs(t, err, catalog.ErrUnknownColumn)
}
