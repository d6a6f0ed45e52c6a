package tableheap

import (
	"sync"
	"time"

	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/guard"
)

// TableHeap owns a chain of table pages rooted at FirstPageID and
// exposes tuple-level operations over them. Grounded on the teacher's
// internal/heap.Table, generalized from the teacher's implicit
// "page N is table T's (N+1)th page" sequential-file convention to an
// explicit NextPageID chain, so pages need not be contiguous once the
// extendible hash index and other tables interleave allocations from
// the same buffer pool.
type TableHeap struct {
	pool        *buffer.Pool
	firstPageID disk.PageId

	mu         sync.Mutex
	lastPageID disk.PageId // append target; advanced when a page fills up
}

// Create allocates and initializes a brand-new table's first page,
// returning both the heap handle and the page's ID (for the caller to
// persist via catalog.CreateTable as TableInfo.FirstPageID).
func Create(pool *buffer.Pool) (*TableHeap, disk.PageId, error) {
	wg, err := guard.NewPage(pool)
	if err != nil {
		return nil, disk.InvalidPageId, err
	}
	NewTablePage(wg.DataMut(), disk.InvalidPageId)
	firstPageID := wg.PageID()
	wg.Drop()

	return &TableHeap{pool: pool, firstPageID: firstPageID, lastPageID: firstPageID}, firstPageID, nil
}

// Open binds a TableHeap to an already-initialized first page (created
// earlier by Create and persisted via catalog.CreateTable).
func Open(pool *buffer.Pool, firstPageID disk.PageId) *TableHeap {
	return &TableHeap{pool: pool, firstPageID: firstPageID, lastPageID: firstPageID}
}

// InsertTuple appends data as a new tuple, walking the page chain from
// the last known append point and allocating a new page if every
// existing page is full.
func (h *TableHeap) InsertTuple(data []byte) (RID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now().UnixMicro()
	pageID := h.lastPageID

	for {
		wg, err := guard.FetchWrite(h.pool, pageID)
		if err != nil {
			return RID{}, err
		}
		tp := ensureInitialized(wg)

		slot, err := tp.InsertTuple(data, now)
		if err == nil {
			wg.Drop()
			h.lastPageID = pageID
			return RID{PageID: pageID, Slot: uint16(slot)}, nil
		}
		if err != ErrNoSpace {
			wg.Drop()
			return RID{}, err
		}

		next := tp.NextPageID()
		if next != disk.InvalidPageId {
			wg.Drop()
			pageID = next
			continue
		}

		// Chain exhausted: allocate a new page and link it in.
		newGuard, err := guard.NewPage(h.pool)
		if err != nil {
			wg.Drop()
			return RID{}, err
		}
		NewTablePage(newGuard.DataMut(), disk.InvalidPageId)
		newPageID := newGuard.PageID()
		newGuard.Drop()

		tp.SetNextPageID(newPageID)
		wg.Drop()

		pageID = newPageID
	}
}

// ensureInitialized views guard's bytes as a TablePage. Every page
// reachable from firstPageID was already formatted by Create or by
// InsertTuple's new-page branch before being linked into the chain, so this is
// always a plain view, never a re-init.
func ensureInitialized(wg *guard.WritePageGuard) TablePage {
	return WrapTablePage(wg.DataMut())
}

// GetTuple fetches the tuple at rid. It returns ErrTupleDeleted (with the
// bytes still populated) if the slot has been tombstoned, so callers
// needing the last-known value (e.g. an UPDATE ... RETURNING) can still
// see it.
func (h *TableHeap) GetTuple(rid RID) ([]byte, TupleMeta, error) {
	rg, err := guard.FetchRead(h.pool, rid.PageID)
	if err != nil {
		return nil, TupleMeta{}, err
	}
	defer rg.Drop()

	tp := WrapTablePage(rg.Data())
	data, meta, err := tp.GetTuple(int(rid.Slot))
	if err != nil {
		return nil, TupleMeta{}, err
	}
	if meta.IsDeleted {
		return data, meta, ErrTupleDeleted
	}
	return data, meta, nil
}

// GetTupleMeta returns rid's metadata; it reads the tuple through
// GetTuple and discards the copied bytes.
func (h *TableHeap) GetTupleMeta(rid RID) (TupleMeta, error) {
	_, meta, err := h.GetTuple(rid)
	if err != nil && err != ErrTupleDeleted {
		return TupleMeta{}, err
	}
	return meta, nil
}

// MarkDelete tombstones rid without reclaiming its slot's bytes.
func (h *TableHeap) MarkDelete(rid RID) error {
	wg, err := guard.FetchWrite(h.pool, rid.PageID)
	if err != nil {
		return err
	}
	defer wg.Drop()

	tp := WrapTablePage(wg.DataMut())
	return tp.MarkDelete(int(rid.Slot))
}

// UpdateTupleMeta overwrites rid's metadata flags in place.
func (h *TableHeap) UpdateTupleMeta(rid RID, meta TupleMeta) error {
	wg, err := guard.FetchWrite(h.pool, rid.PageID)
	if err != nil {
		return err
	}
	defer wg.Drop()

	tp := WrapTablePage(wg.DataMut())
	return tp.UpdateTupleMeta(int(rid.Slot), meta)
}

// Iterator walks every tuple in the heap in (page, slot) order, including
// deleted ones; callers filter on TupleMeta.IsDeleted themselves (SeqScan
// does this per spec.md §4.6).
type Iterator struct {
	heap      *TableHeap
	pageID    disk.PageId
	slot      int
	numSlots  int
	exhausted bool
}

// Begin returns an iterator positioned before the heap's first tuple.
func (h *TableHeap) Begin() *Iterator {
	return &Iterator{heap: h, pageID: h.firstPageID, slot: -1}
}

// Next advances to the next tuple, returning ok=false once the chain is
// exhausted.
func (it *Iterator) Next() (RID, []byte, TupleMeta, bool) {
	if it.exhausted {
		return RID{}, nil, TupleMeta{}, false
	}
	for {
		rg, err := guard.FetchRead(it.heap.pool, it.pageID)
		if err != nil {
			it.exhausted = true
			return RID{}, nil, TupleMeta{}, false
		}
		tp := WrapTablePage(rg.Data())
		it.numSlots = tp.NumSlots()
		it.slot++

		if it.slot < it.numSlots {
			data, meta, err := tp.GetTuple(it.slot)
			rid := RID{PageID: it.pageID, Slot: uint16(it.slot)}
			rg.Drop()
			if err != nil {
				it.exhausted = true
				return RID{}, nil, TupleMeta{}, false
			}
			return rid, data, meta, true
		}

		next := tp.NextPageID()
		rg.Drop()
		if next == disk.InvalidPageId {
			it.exhausted = true
			return RID{}, nil, TupleMeta{}, false
		}
		it.pageID = next
		it.slot = -1
	}
}
