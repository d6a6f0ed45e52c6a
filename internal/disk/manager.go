package disk

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

var (
	// ErrPageOutOfBounds is returned when reading a page_id the file has
	// never been extended to cover.
	ErrPageOutOfBounds = errors.New("disk: page_id out of bounds")
)

// Manager owns a single contiguous paged file. Only the disk scheduler's
// worker goroutine is meant to call into it directly; every other caller
// goes through Scheduler.
type Manager struct {
	mu   sync.Mutex
	file *os.File
	path string

	nextPageID atomic.Int32
}

// NewManager opens (creating if necessary) the paged file at path.
func NewManager(path string) (*Manager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}

	m := &Manager{file: f, path: path}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}
	m.nextPageID.Store(int32(info.Size() / PageSize))

	return m, nil
}

// AllocatePage reserves the next monotonic PageId. The page is not written
// to disk until the first WritePage call for it.
func (m *Manager) AllocatePage() PageId {
	return PageId(m.nextPageID.Add(1) - 1)
}

// ReadPage reads PageSize bytes for pageID into data.
func (m *Manager) ReadPage(pageID PageId, data *[PageSize]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	off := int64(pageID) * PageSize
	n, err := m.file.ReadAt(data[:], off)
	if err != nil {
		// A page that was allocated but never written reads as zeroes:
		// a read that returned no bytes yields a zeroed page whatever the
		// error; a partial read is returned as an error.
		if n == 0 {
			for i := range data {
				data[i] = 0
			}
			return nil
		}
		return fmt.Errorf("disk: read page %d: %w", pageID, err)
	}
	return nil
}

// WritePage writes data as pageID, extending the file if necessary.
func (m *Manager) WritePage(pageID PageId, data *[PageSize]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	off := int64(pageID) * PageSize
	if _, err := m.file.WriteAt(data[:], off); err != nil {
		return fmt.Errorf("disk: write page %d: %w", pageID, err)
	}
	return nil
}

// Shutdown flushes and closes the underlying file.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.file.Sync(); err != nil {
		slog.Warn("disk: sync failed during shutdown", "path", m.path, "err", err)
	}
	return m.file.Close()
}
