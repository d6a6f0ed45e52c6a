// Package buffer implements the buffer pool manager: bounded, cached access
// to an unbounded paged file, backed by the LRU-K replacer and the disk
// scheduler.
package buffer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/replacer"
)

var (
	// ErrAllFramesPinned is returned when every frame is pinned and no
	// victim can be produced for a new or missing page.
	ErrAllFramesPinned = errors.New("buffer: all frames are pinned")

	// ErrPageNotResident is returned by operations that require the page
	// to already be loaded.
	ErrPageNotResident = errors.New("buffer: page is not resident")
)

// AccessType hints at why a page is being touched. The LRU-K replacer in
// this implementation does not discriminate by access type, but the
// parameter is threaded through the API to match the BPM's contract.
type AccessType int

const (
	AccessUnknown AccessType = iota
	AccessScan
	AccessLookup
	AccessIndex
)

// Pool is the fixed-size buffer pool manager. Its root latch (mu) guards
// the page table, free list, pending-fetch map and replacer mutations
// only; it is never held across disk I/O (spec.md §5 ordering guarantee).
type Pool struct {
	mu sync.Mutex

	sched *disk.Scheduler
	repl  *replacer.LRUKReplacer

	frames    []*Frame
	pageTable map[disk.PageId]replacer.FrameId
	freeList  []replacer.FrameId

	// pendingFetch deduplicates concurrent misses on the same page_id: the
	// first fetcher installs a WaitGroup and loads the page; followers
	// wait on it, then pin the now-resident frame.
	pendingFetch map[disk.PageId]*sync.WaitGroup

	latches []sync.RWMutex // one per frame slot, indexed by FrameId
}

// NewPool creates a pool of poolSize frames backed by sched, with an
// LRU-K replacer using the given K.
func NewPool(sched *disk.Scheduler, poolSize int, k int) *Pool {
	if poolSize <= 0 {
		poolSize = 16
	}
	p := &Pool{
		sched:        sched,
		repl:         replacer.NewLRUKReplacer(k),
		frames:       make([]*Frame, poolSize),
		pageTable:    make(map[disk.PageId]replacer.FrameId),
		pendingFetch: make(map[disk.PageId]*sync.WaitGroup),
		latches:      make([]sync.RWMutex, poolSize),
	}
	for i := 0; i < poolSize; i++ {
		fid := replacer.FrameId(i)
		p.frames[i] = &Frame{ID: fid, PageID: disk.InvalidPageId}
		p.freeList = append(p.freeList, fid)
	}
	return p
}

// PoolSize returns the number of frames managed by the pool.
func (p *Pool) PoolSize() int {
	return len(p.frames)
}

// Latch returns the per-frame latch backing frame, for use by the guard
// package. It is stable for the lifetime of the pool regardless of which
// page currently occupies the frame.
func (p *Pool) Latch(frame *Frame) *sync.RWMutex {
	return &p.latches[frame.ID]
}

// NewPage allocates a fresh page_id, zeroes the frame and pins it at 1,
// marking it dirty. It fails only if every frame is pinned.
func (p *Pool) NewPage() (*Frame, error) {
	p.mu.Lock()

	fid, victimErr := p.acquireFrameLocked()
	if victimErr != nil {
		p.mu.Unlock()
		return nil, victimErr
	}

	f := p.frames[fid]
	pageID := p.sched.AllocatePageID()
	f.PageID = pageID
	f.Page.Reset()
	f.IsDirty = true
	f.PinCnt = 1

	p.pageTable[pageID] = fid
	p.repl.RecordAccess(fid)
	p.repl.SetEvictable(fid, false)
	p.logFrame("allocated new page", f)
	p.mu.Unlock()

	return f, nil
}

// FetchPage pins and returns the frame holding page_id, loading it from
// disk (via the scheduler) on a miss. Concurrent misses on the same
// page_id are deduplicated: only the first caller performs I/O.
func (p *Pool) FetchPage(pageID disk.PageId, _ AccessType) (*Frame, error) {
	for {
		p.mu.Lock()

		if fid, ok := p.pageTable[pageID]; ok {
			f := p.frames[fid]
			if f.PinCnt == 0 {
				p.repl.SetEvictable(fid, false)
			}
			f.PinCnt++
			p.repl.RecordAccess(fid)
			p.mu.Unlock()
			return f, nil
		}

		if wg, loading := p.pendingFetch[pageID]; loading {
			p.mu.Unlock()
			wg.Wait()
			continue // re-check the page table; it should now be resident
		}

		// We are the first fetcher: claim the load before hunting for a
		// victim, since acquireFrameLocked may release the root latch around
		// a dirty write-back and a concurrent fetcher of the same page must
		// see the claim during that window.
		wg := &sync.WaitGroup{}
		wg.Add(1)
		p.pendingFetch[pageID] = wg
		fid, victimErr := p.acquireFrameLocked()
		if victimErr != nil {
			delete(p.pendingFetch, pageID)
			p.mu.Unlock()
			wg.Done()
			return nil, victimErr
		}
		f := p.frames[fid]
		p.mu.Unlock()

		// I/O happens with the root latch released.
		var buf [disk.PageSize]byte
		ok := p.sched.ReadPage(pageID, &buf)

		p.mu.Lock()
		delete(p.pendingFetch, pageID)
		if !ok {
			// Load failed: return the claimed frame to the free list.
			f.reset()
			p.freeList = append(p.freeList, fid)
			p.repl.Remove(fid)
			p.mu.Unlock()
			wg.Done()
			return nil, fmt.Errorf("buffer: failed to read page %d", pageID)
		}

		f.PageID = pageID
		f.Page.Data = buf
		f.IsDirty = false
		f.PinCnt = 1
		p.pageTable[pageID] = fid
		p.repl.RecordAccess(fid)
		p.repl.SetEvictable(fid, false)
		p.mu.Unlock()
		wg.Done()

		return f, nil
	}
}

// acquireFrameLocked selects a frame to hold a new page: free list first,
// else an LRU-K evictable victim, flushing it first if dirty. Caller holds
// p.mu; I/O for a dirty victim write-back happens with the lock released.
func (p *Pool) acquireFrameLocked() (replacer.FrameId, error) {
	if len(p.freeList) > 0 {
		fid := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return fid, nil
	}

	fid, ok := p.repl.Evict()
	if !ok {
		return 0, ErrAllFramesPinned
	}

	victim := p.frames[fid]
	oldPageID := victim.PageID
	needsFlush := victim.IsDirty
	data := victim.Page.Data

	// Drop the victim's mapping before any I/O so no concurrent fetcher can
	// pin the frame while it is in transition; a pending-fetch claim on the
	// old page_id makes concurrent fetchers of that page wait for the
	// write-back and then reload from disk.
	delete(p.pageTable, oldPageID)

	if needsFlush {
		wg := &sync.WaitGroup{}
		wg.Add(1)
		p.pendingFetch[oldPageID] = wg

		p.mu.Unlock()
		ok := p.sched.WritePage(oldPageID, &data)
		p.mu.Lock()

		delete(p.pendingFetch, oldPageID)
		wg.Done()
		if !ok {
			// Put the victim back; the caller gets a hard failure rather
			// than silently losing data.
			p.pageTable[oldPageID] = fid
			p.repl.RecordAccess(fid)
			p.repl.SetEvictable(fid, true)
			return 0, fmt.Errorf("buffer: failed to flush dirty victim page %d", oldPageID)
		}
	}

	victim.reset()
	return fid, nil
}

// Unpin decreases pin count for page_id and optionally marks it dirty. It
// is a no-op if the page is not resident.
func (p *Pool) Unpin(pageID disk.PageId, isDirty bool, _ AccessType) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTable[pageID]
	if !ok {
		return nil
	}
	f := p.frames[fid]
	if isDirty {
		f.IsDirty = true
	}
	if f.PinCnt > 0 {
		f.PinCnt--
	}
	if f.PinCnt == 0 {
		p.repl.SetEvictable(fid, true)
	}
	return nil
}

// FlushPage writes the frame holding page_id to disk regardless of its
// dirty flag, and clears the flag. It is a no-op (returns false) if the
// page is not resident.
func (p *Pool) FlushPage(pageID disk.PageId) bool {
	p.mu.Lock()
	fid, ok := p.pageTable[pageID]
	if !ok {
		p.mu.Unlock()
		return false
	}
	f := p.frames[fid]
	data := f.Page.Data
	p.mu.Unlock()

	if !p.sched.WritePage(pageID, &data) {
		return false
	}

	p.mu.Lock()
	if fid, ok := p.pageTable[pageID]; ok {
		p.frames[fid].IsDirty = false
	}
	p.mu.Unlock()
	return true
}

// FlushAllPages flushes every resident page, dirty or not.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	ids := make([]disk.PageId, 0, len(p.pageTable))
	for id := range p.pageTable {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	for _, id := range ids {
		if !p.FlushPage(id) {
			return fmt.Errorf("buffer: failed to flush page %d", id)
		}
	}
	return nil
}

// DeletePage removes page_id from the pool if present and unpinned,
// returning it to the free list. It fails (false) if the page is pinned;
// disk space for the page is not reclaimed.
func (p *Pool) DeletePage(pageID disk.PageId) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, ok := p.pageTable[pageID]
	if !ok {
		return true
	}
	f := p.frames[fid]
	if f.PinCnt > 0 {
		return false
	}

	delete(p.pageTable, pageID)
	p.repl.Remove(fid)
	f.reset()
	p.freeList = append(p.freeList, fid)
	return true
}

// GetPinCount returns the pin count for page_id, or ok=false if it is not
// resident.
func (p *Pool) GetPinCount(pageID disk.PageId) (count int32, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fid, present := p.pageTable[pageID]
	if !present {
		return 0, false
	}
	return p.frames[fid].PinCnt, true
}

func (p *Pool) logFrame(msg string, f *Frame) {
	slog.Debug("buffer: "+msg, "pageID", f.PageID, "frameID", f.ID, "pin", f.PinCnt, "dirty", f.IsDirty)
}
