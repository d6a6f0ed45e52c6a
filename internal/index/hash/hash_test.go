package hash_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
	hashtable "github.com/novasql/core/internal/index/hash"
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

func newTestTable(t *testing.T, poolSize int) *hashtable.HashTable {
	t.Helper()
	pool := newTestPool(t, poolSize)
	ht, _, err := hashtable.Create(pool, 4, 0, hashtable.FNVHasher{}, hashtable.BytesComparator{})
	require.NoError(t, err)
	return ht
}

func keyOf(n int) []byte {
	return []byte(fmt.Sprintf("%04d", n))
}

func TestHashTable_InsertAndGetValue(t *testing.T) {
	ht := newTestTable(t, 16)

	require.NoError(t, ht.Insert(keyOf(1), tableheap.RID{PageID: 10, Slot: 0}))
	require.NoError(t, ht.Insert(keyOf(2), tableheap.RID{PageID: 10, Slot: 1}))

	rids, err := ht.GetValue(keyOf(1))
	require.NoError(t, err)
	require.Len(t, rids, 1)
	require.Equal(t, tableheap.RID{PageID: 10, Slot: 0}, rids[0])

	rids, err = ht.GetValue(keyOf(2))
	require.NoError(t, err)
	require.Len(t, rids, 1)
	require.Equal(t, tableheap.RID{PageID: 10, Slot: 1}, rids[0])
}

func TestHashTable_GetValueMissingKey(t *testing.T) {
	ht := newTestTable(t, 16)
	require.NoError(t, ht.Insert(keyOf(1), tableheap.RID{PageID: 1, Slot: 0}))

	rids, err := ht.GetValue(keyOf(99))
	require.NoError(t, err)
	require.Empty(t, rids)
}

func TestHashTable_InsertDuplicateKeyFails(t *testing.T) {
	ht := newTestTable(t, 16)
	require.NoError(t, ht.Insert(keyOf(1), tableheap.RID{PageID: 1, Slot: 0}))

	err := ht.Insert(keyOf(1), tableheap.RID{PageID: 2, Slot: 0})
	require.ErrorIs(t, err, hashtable.ErrDuplicateKey)
}

func TestHashTable_UpdateExistingKey(t *testing.T) {
	ht := newTestTable(t, 16)
	require.NoError(t, ht.Insert(keyOf(1), tableheap.RID{PageID: 1, Slot: 0}))

	require.NoError(t, ht.Update(keyOf(1), tableheap.RID{PageID: 5, Slot: 9}))

	rids, err := ht.GetValue(keyOf(1))
	require.NoError(t, err)
	require.Equal(t, tableheap.RID{PageID: 5, Slot: 9}, rids[0])
}

func TestHashTable_UpdateMissingKeyFails(t *testing.T) {
	ht := newTestTable(t, 16)
	err := ht.Update(keyOf(1), tableheap.RID{PageID: 1, Slot: 0})
	require.ErrorIs(t, err, hashtable.ErrKeyMissing)
}

func TestHashTable_RemoveKey(t *testing.T) {
	ht := newTestTable(t, 16)
	require.NoError(t, ht.Insert(keyOf(1), tableheap.RID{PageID: 1, Slot: 0}))
	require.NoError(t, ht.Insert(keyOf(2), tableheap.RID{PageID: 1, Slot: 1}))

	ok, err := ht.Remove(keyOf(1))
	require.NoError(t, err)
	require.True(t, ok)

	rids, err := ht.GetValue(keyOf(1))
	require.NoError(t, err)
	require.Empty(t, rids)

	rids, err = ht.GetValue(keyOf(2))
	require.NoError(t, err)
	require.Len(t, rids, 1)
}

func TestHashTable_RemoveMissingKeyReportsFalse(t *testing.T) {
	ht := newTestTable(t, 16)
	ok, err := ht.Remove(keyOf(42))
	require.NoError(t, err)
	require.False(t, ok)
}

// TestHashTable_SplitOnOverflow fills enough distinct keys into the same
// index that at least one bucket is forced to split and the directory's
// global depth grows past 0, then verifies every key originally inserted
// is still retrievable afterward.
func TestHashTable_SplitOnOverflow(t *testing.T) {
	ht := newTestTable(t, 32)

	// A 4-byte key plus the 8-byte RID value gives ~681 entries per bucket,
	// so 1500 inserts force at least one split and a directory-depth bump.
	const n = 1500
	for i := 0; i < n; i++ {
		require.NoError(t, ht.Insert(keyOf(i), tableheap.RID{PageID: disk.PageId(i), Slot: uint16(i % 1000)}))
	}

	for i := 0; i < n; i++ {
		rids, err := ht.GetValue(keyOf(i))
		require.NoError(t, err, "key %d", i)
		require.Len(t, rids, 1, "key %d", i)
		require.Equal(t, tableheap.RID{PageID: disk.PageId(i), Slot: uint16(i % 1000)}, rids[0])
	}
}

func TestHashTable_MergeAfterBulkRemoval(t *testing.T) {
	ht := newTestTable(t, 32)

	// Enough keys to split the initial bucket first, so the removals below
	// walk the merge path (empty bucket + same-depth sibling) back down.
	const n = 800
	for i := 0; i < n; i++ {
		require.NoError(t, ht.Insert(keyOf(i), tableheap.RID{PageID: disk.PageId(i)}))
	}
	for i := 0; i < n-1; i++ {
		ok, err := ht.Remove(keyOf(i))
		require.NoError(t, err)
		require.True(t, ok)
	}

	rids, err := ht.GetValue(keyOf(n - 1))
	require.NoError(t, err)
	require.Len(t, rids, 1)

	for i := 0; i < n-1; i++ {
		rids, err := ht.GetValue(keyOf(i))
		require.NoError(t, err)
		require.Empty(t, rids)
	}
}

func TestHashTable_DeleteCompletely(t *testing.T) {
	ht := newTestTable(t, 32)
	for i := 0; i < 50; i++ {
		require.NoError(t, ht.Insert(keyOf(i), tableheap.RID{PageID: disk.PageId(i)}))
	}
	require.NoError(t, ht.DeleteCompletely())
}

func TestEncodeKey_FixedWidthAndEquality(t *testing.T) {
	colTypes := []types.TypeID{types.Integer, types.Varchar}
	a, err := hashtable.EncodeKey([]types.Value{types.NewInteger(7), types.NewVarchar("alice")}, colTypes)
	require.NoError(t, err)
	b, err := hashtable.EncodeKey([]types.Value{types.NewInteger(7), types.NewVarchar("alice")}, colTypes)
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, hashtable.KeyWidth(colTypes))

	c, err := hashtable.EncodeKey([]types.Value{types.NewInteger(8), types.NewVarchar("alice")}, colTypes)
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
