package guard_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/guard"
)

func newTestPool(t *testing.T, poolSize int) *buffer.Pool {
	t.Helper()
	mgr, err := disk.NewManager(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 16)
	t.Cleanup(func() { _ = sched.Shutdown() })
	return buffer.NewPool(sched, poolSize, 2)
}

func TestGuard_WriteThenReadRoundTrip(t *testing.T) {
	pool := newTestPool(t, 4)

	wg, err := guard.NewPage(pool)
	require.NoError(t, err)
	pageID := wg.PageID()
	copy(wg.DataMut(), []byte("hello"))
	wg.Drop()

	rg, err := guard.FetchRead(pool, pageID)
	require.NoError(t, err)
	require.Equal(t, byte('h'), rg.Data()[0])
	rg.Drop()

	cnt, ok := pool.GetPinCount(pageID)
	require.True(t, ok)
	require.Equal(t, int32(0), cnt)
}

func TestGuard_UpgradeDowngrade(t *testing.T) {
	pool := newTestPool(t, 4)

	wg, err := guard.NewPage(pool)
	require.NoError(t, err)
	pageID := wg.PageID()
	wg.Drop()

	rg, err := guard.FetchRead(pool, pageID)
	require.NoError(t, err)
	wg2 := rg.Upgrade()
	copy(wg2.DataMut(), []byte("upgraded"))
	rg2 := wg2.Downgrade()
	require.Equal(t, byte('u'), rg2.Data()[0])
	rg2.Drop()

	cnt, ok := pool.GetPinCount(pageID)
	require.True(t, ok)
	require.Equal(t, int32(0), cnt)
}

func TestGuard_TryWriteForTimesOutWhenHeld(t *testing.T) {
	pool := newTestPool(t, 4)

	wg, err := guard.NewPage(pool)
	require.NoError(t, err)
	pageID := wg.PageID()
	defer wg.Drop()

	_, ok := guard.TryWriteFor(pool, pageID, 20*time.Millisecond)
	require.False(t, ok)
}

func TestGuard_TryWriteForSucceedsWhenFree(t *testing.T) {
	pool := newTestPool(t, 4)

	wg, err := guard.NewPage(pool)
	require.NoError(t, err)
	pageID := wg.PageID()
	wg.Drop()

	wg2, ok := guard.TryWriteFor(pool, pageID, 20*time.Millisecond)
	require.True(t, ok)
	wg2.Drop()
}
