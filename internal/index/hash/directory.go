package hash

import (
	"github.com/novasql/core/internal/bx"
	"github.com/novasql/core/internal/disk"
)

// maxDirectoryDepth bounds global_depth (spec.md §4.5's max_directory_depth):
// a directory page always reserves room for 1<<maxDirectoryDepth bucket
// pointers and local depths, even though only the first 1<<global_depth
// entries are meaningful at any given time (the rest mirror them after a
// future growth, per invariant I7).
const maxDirectoryDepth = 9

// directoryPage maps a key's post-header hash bits to a bucket page,
// tracking each slot's local depth alongside the global depth that
// currently governs how many low bits are consulted (spec.md §4.5).
//
// Layout:
//
//	[ GlobalDepth:4 ][ MaxDepth:4 ]
//	[ bucket_page_ids: 4 * (1<<maxDirectoryDepth) ]
//	[ local_depths: 1 * (1<<maxDirectoryDepth) ]
type directoryPage struct {
	buf []byte
}

const (
	dirGlobalDepthOff = disk.PageHeaderSize
	dirMaxDepthOff    = dirGlobalDepthOff + 4
	dirBucketIDsOff   = dirMaxDepthOff + 4
)

func dirLocalDepthsOff() int { return dirBucketIDsOff + 4*(1<<maxDirectoryDepth) }

func initDirectoryPage(buf []byte) directoryPage {
	d := directoryPage{buf: buf}
	bx.PutU32(buf[dirGlobalDepthOff:], 0)
	bx.PutU32(buf[dirMaxDepthOff:], maxDirectoryDepth)
	ldOff := dirLocalDepthsOff()
	for i := 0; i < (1 << maxDirectoryDepth); i++ {
		bx.PutI32(buf[dirBucketIDsOff+i*4:], int32(disk.InvalidPageId))
		buf[ldOff+i] = 0
	}
	return d
}

func wrapDirectoryPage(buf []byte) directoryPage { return directoryPage{buf: buf} }

func (d directoryPage) globalDepth() uint32 { return bx.U32(d.buf[dirGlobalDepthOff:]) }
func (d directoryPage) setGlobalDepth(v uint32) {
	bx.PutU32(d.buf[dirGlobalDepthOff:], v)
}

func (d directoryPage) maxDepth() uint32 { return bx.U32(d.buf[dirMaxDepthOff:]) }

// size returns the number of logical slots under the current global depth.
func (d directoryPage) size() uint32 { return 1 << d.globalDepth() }

// bucketIndex returns the directory slot keyHash maps to: its low
// global_depth bits (spec.md §4.5 / invariant I7: "two slots share a
// bucket iff they agree on their low-local_depth bits").
func (d directoryPage) bucketIndex(keyHash uint32) uint32 {
	gd := d.globalDepth()
	if gd == 0 {
		return 0
	}
	return keyHash & ((1 << gd) - 1)
}

func (d directoryPage) bucketPageID(idx uint32) disk.PageId {
	return disk.PageId(bx.I32(d.buf[dirBucketIDsOff+int(idx)*4:]))
}

func (d directoryPage) setBucketPageID(idx uint32, id disk.PageId) {
	bx.PutI32(d.buf[dirBucketIDsOff+int(idx)*4:], int32(id))
}

func (d directoryPage) localDepth(idx uint32) uint32 {
	return uint32(d.buf[dirLocalDepthsOff()+int(idx)])
}

func (d directoryPage) setLocalDepth(idx uint32, depth uint32) {
	d.buf[dirLocalDepthsOff()+int(idx)] = byte(depth)
}

// siblingIndex returns the directory slot that differs from idx only in
// the bit at position localDepth-1, the slot a bucket merges with
// (spec.md §4.5: "its sibling (the bucket differing only in the bit at
// position local_depth − 1)").
func siblingIndex(idx uint32, localDepth uint32) uint32 {
	return idx ^ (1 << (localDepth - 1))
}

// grow doubles the directory: every slot i gets a twin at i+oldSize with
// the same bucket pointer and local depth, then global depth increments.
// Caller must have already verified globalDepth() < maxDepth().
func (d directoryPage) grow() {
	oldSize := d.size()
	for i := uint32(0); i < oldSize; i++ {
		d.setBucketPageID(i+oldSize, d.bucketPageID(i))
		d.setLocalDepth(i+oldSize, d.localDepth(i))
	}
	d.setGlobalDepth(d.globalDepth() + 1)
}
