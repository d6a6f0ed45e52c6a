package tableheap

import (
	"github.com/novasql/core/internal/bx"
	"github.com/novasql/core/internal/disk"
)

// TablePage lays out a heap page over a guard's raw bytes, generalizing
// the teacher's internal/storage/page.go slotted format: a header, a
// forward-growing slot array, and tuple bytes packed backward from the
// end of the page.
//
//	[ disk.Page LSN header (4B) ]
//	[ NextPageID:4 | NumSlots:2 ]           <-- fixed header, right after LSN
//	[ slot 0 ][ slot 1 ] ...                <-- grows forward (new slots)
//	            free space
//	... [ tuple 1 ][ tuple 0 ]              <-- grows backward (insert)
//
// Each slot is: offset:2 size:2 deleted:1 insertedAtMicros:8 = 13 bytes.
type TablePage struct {
	buf []byte
}

const (
	thNextPageIDOff = disk.PageHeaderSize
	thNumSlotsOff   = thNextPageIDOff + 4
	thHeaderSize    = thNumSlotsOff + 2
	thSlotSize      = 2 + 2 + 1 + 8
)

// NewTablePage initializes buf (a fresh page's bytes) as an empty table
// page chained to next.
func NewTablePage(buf []byte, next disk.PageId) TablePage {
	p := TablePage{buf: buf}
	p.SetNextPageID(next)
	bx.PutU16(buf[thNumSlotsOff:], 0)
	return p
}

// WrapTablePage views an already-initialized page's bytes as a TablePage.
func WrapTablePage(buf []byte) TablePage { return TablePage{buf: buf} }

func (p TablePage) NextPageID() disk.PageId {
	return disk.PageId(bx.I32(p.buf[thNextPageIDOff:]))
}

func (p TablePage) SetNextPageID(id disk.PageId) {
	bx.PutI32(p.buf[thNextPageIDOff:], int32(id))
}

func (p TablePage) NumSlots() int {
	return int(bx.U16(p.buf[thNumSlotsOff:]))
}

func (p TablePage) setNumSlots(n int) {
	bx.PutU16(p.buf[thNumSlotsOff:], uint16(n))
}

func (p TablePage) slotOff(i int) int {
	return thHeaderSize + i*thSlotSize
}

func (p TablePage) slotsEnd() int {
	return p.slotOff(p.NumSlots())
}

// lowestTupleOffset finds the start of the free-space region (the
// smallest tuple offset currently in use), defaulting to len(buf) for an
// empty page.
func (p TablePage) lowestTupleOffset() int {
	low := len(p.buf)
	for i := 0; i < p.NumSlots(); i++ {
		off, size, _, _ := p.getSlot(i)
		if size == 0 {
			continue
		}
		if off < low {
			low = off
		}
	}
	return low
}

func (p TablePage) getSlot(i int) (offset, size int, deleted bool, insertedAtMicros int64) {
	o := p.slotOff(i)
	offset = int(bx.U16(p.buf[o:]))
	size = int(bx.U16(p.buf[o+2:]))
	deleted = p.buf[o+4] != 0
	insertedAtMicros = bx.I64(p.buf[o+5:])
	return
}

func (p TablePage) putSlot(i, offset, size int, deleted bool, insertedAtMicros int64) {
	o := p.slotOff(i)
	bx.PutU16(p.buf[o:], uint16(offset))
	bx.PutU16(p.buf[o+2:], uint16(size))
	if deleted {
		p.buf[o+4] = 1
	} else {
		p.buf[o+4] = 0
	}
	bx.PutI64(p.buf[o+5:], insertedAtMicros)
}

// InsertTuple appends data as a new slot, returning its slot index. It
// fails with ErrNoSpace if the page cannot fit the tuple plus one new
// slot entry.
func (p TablePage) InsertTuple(data []byte, insertedAtMicros int64) (slot int, err error) {
	need := len(data) + thSlotSize
	if p.lowestTupleOffset()-p.slotsEnd() < need {
		return 0, ErrNoSpace
	}
	newOff := p.lowestTupleOffset() - len(data)
	copy(p.buf[newOff:], data)

	idx := p.NumSlots()
	p.putSlot(idx, newOff, len(data), false, insertedAtMicros)
	p.setNumSlots(idx + 1)
	return idx, nil
}

// GetTuple returns slot's bytes and meta. It succeeds even for deleted
// tuples (callers check TupleMeta.IsDeleted themselves); an out-of-range
// slot is ErrSlotNotFound.
func (p TablePage) GetTuple(slot int) ([]byte, TupleMeta, error) {
	if slot < 0 || slot >= p.NumSlots() {
		return nil, TupleMeta{}, ErrSlotNotFound
	}
	off, size, deleted, ts := p.getSlot(slot)
	out := make([]byte, size)
	copy(out, p.buf[off:off+size])
	return out, TupleMeta{InsertedAtMicros: ts, IsDeleted: deleted}, nil
}

// MarkDelete tombstones slot without reclaiming its bytes.
func (p TablePage) MarkDelete(slot int) error {
	if slot < 0 || slot >= p.NumSlots() {
		return ErrSlotNotFound
	}
	off, size, _, ts := p.getSlot(slot)
	p.putSlot(slot, off, size, true, ts)
	return nil
}

// UpdateTupleMeta overwrites slot's metadata flags without touching its
// bytes (e.g. to undo a delete within the same statement).
func (p TablePage) UpdateTupleMeta(slot int, meta TupleMeta) error {
	if slot < 0 || slot >= p.NumSlots() {
		return ErrSlotNotFound
	}
	off, size, _, _ := p.getSlot(slot)
	p.putSlot(slot, off, size, meta.IsDeleted, meta.InsertedAtMicros)
	return nil
}
