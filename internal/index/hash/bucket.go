package hash

import (
	"github.com/novasql/core/internal/bx"
	"github.com/novasql/core/internal/disk"
)

// valueSize is the fixed width of a bucket entry's value: a tableheap.RID
// encoded as PageId (4 bytes) + slot (2 bytes) + 2 bytes padding, kept a
// constant power-of-two-friendly width so bucket capacity math stays
// simple.
const valueSize = 8

// bucketPage holds up to maxSize (key, value) entries, tracked by a dense
// unordered array (spec.md §4.5: "fixed array of (key, value) up to
// BUCKET_MAX_SIZE"). keySize is fixed per hash table instance and passed
// into every call rather than stored per-page, since it never varies
// across the pages of one index.
//
// Layout:
//
//	[ Size:4 ][ LocalDepth:4 ][ MaxSize:4 ][ entries: (keySize+valueSize) * MaxSize ]
type bucketPage struct {
	buf     []byte
	keySize int
}

const (
	bktSizeOff       = disk.PageHeaderSize
	bktLocalDepthOff = bktSizeOff + 4
	bktMaxSizeOff    = bktLocalDepthOff + 4
	bktEntriesOff    = bktMaxSizeOff + 4
)

func initBucketPage(buf []byte, keySize int, localDepth uint32) bucketPage {
	b := bucketPage{buf: buf, keySize: keySize}
	bx.PutU32(buf[bktSizeOff:], 0)
	bx.PutU32(buf[bktLocalDepthOff:], localDepth)
	bx.PutU32(buf[bktMaxSizeOff:], uint32(b.capacity()))
	return b
}

func wrapBucketPage(buf []byte, keySize int) bucketPage {
	return bucketPage{buf: buf, keySize: keySize}
}

func (b bucketPage) entrySize() int { return b.keySize + valueSize }

// capacity is how many entries fit in the page given keySize. It is the
// value recorded in the MaxSize field, which isFull reads back from the
// page.
func (b bucketPage) capacity() int {
	return (len(b.buf) - bktEntriesOff) / b.entrySize()
}

func (b bucketPage) size() int      { return int(bx.U32(b.buf[bktSizeOff:])) }
func (b bucketPage) setSize(n int)  { bx.PutU32(b.buf[bktSizeOff:], uint32(n)) }
func (b bucketPage) maxSize() int   { return int(bx.U32(b.buf[bktMaxSizeOff:])) }
func (b bucketPage) isFull() bool   { return b.size() >= b.maxSize() }
func (b bucketPage) isEmpty() bool  { return b.size() == 0 }
func (b bucketPage) localDepth() uint32 { return bx.U32(b.buf[bktLocalDepthOff:]) }
func (b bucketPage) setLocalDepth(d uint32) {
	bx.PutU32(b.buf[bktLocalDepthOff:], d)
}

func (b bucketPage) entryOff(i int) int { return bktEntriesOff + i*b.entrySize() }

func (b bucketPage) keyAt(i int) []byte {
	o := b.entryOff(i)
	return b.buf[o : o+b.keySize]
}

func (b bucketPage) valueAt(i int) []byte {
	o := b.entryOff(i) + b.keySize
	return b.buf[o : o+valueSize]
}

func (b bucketPage) setEntry(i int, key, value []byte) {
	o := b.entryOff(i)
	copy(b.buf[o:o+b.keySize], key)
	copy(b.buf[o+b.keySize:o+b.keySize+valueSize], value)
}

// find returns the index of key under cmp, or -1.
func (b bucketPage) find(key []byte, cmp Comparator) int {
	for i := 0; i < b.size(); i++ {
		if cmp.Compare(b.keyAt(i), key) == 0 {
			return i
		}
	}
	return -1
}

// lookup returns key's value, ok=false if absent.
func (b bucketPage) lookup(key []byte, cmp Comparator) ([]byte, bool) {
	i := b.find(key, cmp)
	if i < 0 {
		return nil, false
	}
	v := make([]byte, valueSize)
	copy(v, b.valueAt(i))
	return v, true
}

// insert appends (key, value); caller must have already checked !isFull()
// and that key is not a duplicate.
func (b bucketPage) insert(key, value []byte) {
	i := b.size()
	b.setEntry(i, key, value)
	b.setSize(i + 1)
}

// replace overwrites the value for an existing key, reporting whether key
// was found.
func (b bucketPage) replace(key, value []byte, cmp Comparator) bool {
	i := b.find(key, cmp)
	if i < 0 {
		return false
	}
	o := b.entryOff(i) + b.keySize
	copy(b.buf[o:o+valueSize], value)
	return true
}

// removeAt deletes entry i by swapping in the last entry (the array is
// unordered, so this is O(1) instead of shifting every later entry down).
func (b bucketPage) removeAt(i int) {
	last := b.size() - 1
	if i != last {
		b.setEntry(i, b.keyAt(last), b.valueAt(last))
	}
	b.setSize(last)
}

// remove deletes key if present, reporting whether it was found.
func (b bucketPage) remove(key []byte, cmp Comparator) bool {
	i := b.find(key, cmp)
	if i < 0 {
		return false
	}
	b.removeAt(i)
	return true
}

// entries returns a copy of every (key, value) pair currently stored,
// used when redistributing a bucket's contents across a split.
func (b bucketPage) entries() [][2][]byte {
	out := make([][2][]byte, b.size())
	for i := range out {
		k := make([]byte, b.keySize)
		v := make([]byte, valueSize)
		copy(k, b.keyAt(i))
		copy(v, b.valueAt(i))
		out[i] = [2][]byte{k, v}
	}
	return out
}
