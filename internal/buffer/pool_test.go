package buffer_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
)

func newTestPool(t *testing.T, poolSize, k int) (*buffer.Pool, *disk.Scheduler) {
	t.Helper()
	mgr, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 16)
	t.Cleanup(func() { _ = sched.Shutdown() })
	return buffer.NewPool(sched, poolSize, k), sched
}

// Boundary behavior from spec.md §8: pool size 1 with a pinned page.
func TestPool_AllFramesPinned(t *testing.T) {
	pool, _ := newTestPool(t, 1, 2)

	f, err := pool.NewPage()
	require.NoError(t, err)
	require.Equal(t, int32(1), f.PinCnt)

	_, err = pool.NewPage()
	require.ErrorIs(t, err, buffer.ErrAllFramesPinned)

	_, err = pool.FetchPage(f.PageID+1, buffer.AccessUnknown)
	require.ErrorIs(t, err, buffer.ErrAllFramesPinned)
}

// Scenario 4 from spec.md §8: pin/unpin accounting across a pool of 3.
func TestPool_PinUnpinAccounting(t *testing.T) {
	pool, _ := newTestPool(t, 3, 2)

	var pageIDs []disk.PageId
	for i := 0; i < 3; i++ {
		f, err := pool.NewPage()
		require.NoError(t, err)
		pageIDs = append(pageIDs, f.PageID)
		require.NoError(t, pool.Unpin(f.PageID, false, buffer.AccessUnknown))
	}

	for _, id := range pageIDs {
		f, err := pool.FetchPage(id, buffer.AccessUnknown)
		require.NoError(t, err)
		cnt, ok := pool.GetPinCount(f.PageID)
		require.True(t, ok)
		require.Equal(t, int32(1), cnt)
	}

	for _, id := range pageIDs {
		require.NoError(t, pool.Unpin(id, false, buffer.AccessUnknown))
	}

	_, err := pool.NewPage()
	require.NoError(t, err)
}

func TestPool_DirtyEvictionWritesBack(t *testing.T) {
	pool, sched := newTestPool(t, 1, 2)

	f, err := pool.NewPage()
	require.NoError(t, err)
	pageID := f.PageID
	f.Page.Data[10] = 0xAB
	require.NoError(t, pool.Unpin(pageID, true, buffer.AccessUnknown))

	// Force an eviction by fetching a second page into the single frame.
	f2, err := pool.NewPage()
	require.NoError(t, err)
	require.NoError(t, pool.Unpin(f2.PageID, false, buffer.AccessUnknown))

	var buf [disk.PageSize]byte
	require.True(t, sched.ReadPage(pageID, &buf))
	require.Equal(t, byte(0xAB), buf[10])
}

func TestPool_DeletePinnedFails(t *testing.T) {
	pool, _ := newTestPool(t, 2, 2)

	f, err := pool.NewPage()
	require.NoError(t, err)
	require.False(t, pool.DeletePage(f.PageID))

	require.NoError(t, pool.Unpin(f.PageID, false, buffer.AccessUnknown))
	require.True(t, pool.DeletePage(f.PageID))

	_, ok := pool.GetPinCount(f.PageID)
	require.False(t, ok)
}

func TestPool_ConcurrentFetchDeduplicates(t *testing.T) {
	pool, _ := newTestPool(t, 4, 2)

	f, err := pool.NewPage()
	require.NoError(t, err)
	pageID := f.PageID
	require.NoError(t, pool.Unpin(pageID, false, buffer.AccessUnknown))

	// Evict it so the next fetches are genuine misses.
	for i := 0; i < 4; i++ {
		nf, err := pool.NewPage()
		require.NoError(t, err)
		require.NoError(t, pool.Unpin(nf.PageID, false, buffer.AccessUnknown))
	}

	done := make(chan struct{}, 8)
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			fr, err := pool.FetchPage(pageID, buffer.AccessUnknown)
			require.NoError(t, err)
			_ = pool.Unpin(fr.PageID, false, buffer.AccessUnknown)
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
