// Package guard implements scoped page guards that bind the lifetimes of a
// buffer pool pin and a page latch together, so callers cannot forget to
// release either one.
package guard

import (
	"sync"
	"time"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
)

// BasicPageGuard pins a frame without taking any latch. It is the common
// base embedded by ReadPageGuard and WritePageGuard.
type BasicPageGuard struct {
	pool    *buffer.Pool
	frame   *buffer.Frame
	pageID  disk.PageId
	dropped bool
}

// newBasic wraps an already-pinned frame in the guard base; the pin was
// taken by the Fetch*/NewPage call that produced frame.
func newBasic(pool *buffer.Pool, frame *buffer.Frame, pageID disk.PageId) *BasicPageGuard {
	return &BasicPageGuard{pool: pool, frame: frame, pageID: pageID}
}

// PageID returns the identity of the guarded page.
func (g *BasicPageGuard) PageID() disk.PageId { return g.pageID }

// Frame exposes the underlying buffer frame for callers in internal
// packages (table heap, hash index) that need direct byte access once a
// latch is already held.
func (g *BasicPageGuard) Frame() *buffer.Frame { return g.frame }

// Drop releases the pin. It is idempotent.
func (g *BasicPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	_ = g.pool.Unpin(g.pageID, false, buffer.AccessUnknown)
}

// ReadPageGuard pins a frame and holds its latch in shared (read) mode.
type ReadPageGuard struct {
	BasicPageGuard
	latch *sync.RWMutex
}

// FetchRead fetches page_id, pins it and takes a shared latch.
func FetchRead(pool *buffer.Pool, pageID disk.PageId) (*ReadPageGuard, error) {
	f, err := pool.FetchPage(pageID, buffer.AccessUnknown)
	if err != nil {
		return nil, err
	}
	l := pool.Latch(f)
	l.RLock()
	return &ReadPageGuard{BasicPageGuard: *newBasic(pool, f, pageID), latch: l}, nil
}

// Data returns the page's bytes for reading.
func (g *ReadPageGuard) Data() []byte { return g.frame.Page.Data[:] }

// Drop releases the shared latch, then the pin (in that order, as required
// by the page-guard contract).
func (g *ReadPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.latch.RUnlock()
	g.BasicPageGuard.Drop()
}

// Upgrade releases the read latch and acquires a write latch on the same
// pinned frame, transferring the pin without re-fetching it. This avoids
// the self-deadlock of taking a write lock while still holding a read
// lock.
func (g *ReadPageGuard) Upgrade() *WritePageGuard {
	g.latch.RUnlock()
	g.latch.Lock()
	wg := &WritePageGuard{BasicPageGuard: g.BasicPageGuard, latch: g.latch}
	g.dropped = true // ownership transferred; the source guard is now inert
	return wg
}

// WritePageGuard pins a frame and holds its latch exclusively.
type WritePageGuard struct {
	BasicPageGuard
	latch *sync.RWMutex
}

// FetchWrite fetches page_id, pins it and takes an exclusive latch.
func FetchWrite(pool *buffer.Pool, pageID disk.PageId) (*WritePageGuard, error) {
	f, err := pool.FetchPage(pageID, buffer.AccessUnknown)
	if err != nil {
		return nil, err
	}
	l := pool.Latch(f)
	l.Lock()
	return &WritePageGuard{BasicPageGuard: *newBasic(pool, f, pageID), latch: l}, nil
}

// NewPage allocates a fresh page, pinned and already latched exclusively
// (new pages are always handed out for writing).
func NewPage(pool *buffer.Pool) (*WritePageGuard, error) {
	f, err := pool.NewPage()
	if err != nil {
		return nil, err
	}
	l := pool.Latch(f)
	l.Lock()
	return &WritePageGuard{BasicPageGuard: *newBasic(pool, f, f.PageID), latch: l}, nil
}

// Data returns the page's bytes for reading.
func (g *WritePageGuard) Data() []byte { return g.frame.Page.Data[:] }

// DataMut returns the page's bytes for mutation and marks the frame dirty,
// implementing the guard contract's implicit "any mutable access dirties
// the page" rule.
func (g *WritePageGuard) DataMut() []byte {
	g.frame.IsDirty = true
	return g.frame.Page.Data[:]
}

// Downgrade releases the write latch and acquires a read latch on the same
// pinned frame, transferring the pin without re-fetching it.
func (g *WritePageGuard) Downgrade() *ReadPageGuard {
	g.latch.Unlock()
	g.latch.RLock()
	rg := &ReadPageGuard{BasicPageGuard: g.BasicPageGuard, latch: g.latch}
	g.dropped = true
	return rg
}

// TryWriteFor attempts to fetch page_id and take its exclusive latch within
// d, polling rather than blocking indefinitely. It is used to avoid
// deadlocks in upgrade paths where an unconditional Lock could wait
// forever on a reader that itself wants to upgrade.
func TryWriteFor(pool *buffer.Pool, pageID disk.PageId, d time.Duration) (*WritePageGuard, bool) {
	f, err := pool.FetchPage(pageID, buffer.AccessUnknown)
	if err != nil {
		return nil, false
	}
	l := pool.Latch(f)

	deadline := time.Now().Add(d)
	const pollInterval = time.Millisecond
	for {
		if l.TryLock() {
			return &WritePageGuard{BasicPageGuard: *newBasic(pool, f, pageID), latch: l}, true
		}
		if time.Now().After(deadline) {
			_ = pool.Unpin(pageID, false, buffer.AccessUnknown)
			return nil, false
		}
		time.Sleep(pollInterval)
	}
}

// Drop releases the exclusive latch, then the pin.
func (g *WritePageGuard) Drop() {
	if g.dropped {
		return
	}
	g.latch.Unlock()
	g.BasicPageGuard.Drop()
}
