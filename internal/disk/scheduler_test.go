package disk_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/disk"
)

func newTestScheduler(t *testing.T) *disk.Scheduler {
	t.Helper()
	mgr, err := disk.NewManager(filepath.Join(t.TempDir(), "novasql.db"))
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 8)
	t.Cleanup(func() { _ = sched.Shutdown() })
	return sched
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	sched := newTestScheduler(t)

	pid := sched.AllocatePageID()
	var out [disk.PageSize]byte
	for i := range out {
		out[i] = byte(i % 251)
	}
	require.True(t, sched.WritePage(pid, &out))

	var in [disk.PageSize]byte
	require.True(t, sched.ReadPage(pid, &in))
	require.Equal(t, out, in)
}

func TestUnwrittenAllocatedPageReadsAsZero(t *testing.T) {
	sched := newTestScheduler(t)

	pid := sched.AllocatePageID()
	var data [disk.PageSize]byte
	require.True(t, sched.ReadPage(pid, &data))
	for _, b := range data {
		require.Equal(t, byte(0), b)
	}
}

func TestAllocatePageIDIsMonotonic(t *testing.T) {
	sched := newTestScheduler(t)

	a := sched.AllocatePageID()
	b := sched.AllocatePageID()
	c := sched.AllocatePageID()
	require.Equal(t, a+1, b)
	require.Equal(t, b+1, c)
}

func TestManagerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "novasql.db")

	mgr, err := disk.NewManager(path)
	require.NoError(t, err)
	sched := disk.NewScheduler(mgr, 8)

	pid := sched.AllocatePageID()
	var out [disk.PageSize]byte
	out[0] = 0xAB
	require.True(t, sched.WritePage(pid, &out))
	require.NoError(t, sched.Shutdown())

	mgr2, err := disk.NewManager(path)
	require.NoError(t, err)
	sched2 := disk.NewScheduler(mgr2, 8)
	defer func() { _ = sched2.Shutdown() }()

	var in [disk.PageSize]byte
	require.True(t, sched2.ReadPage(pid, &in))
	require.Equal(t, out, in)
}
