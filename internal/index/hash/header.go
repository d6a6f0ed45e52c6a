package hash

import (
	"github.com/novasql/core/internal/bx"
	"github.com/novasql/core/internal/disk"
)

// headerPage is the hash table's single top-level page: a static array of
// directory page ids, sliced by the top MaxDepth bits of a key's hash
// (spec.md §4.5). Most indexes in this engine use MaxDepth 0 (one
// directory for the whole index, grown only via the directory's own
// global depth); a larger MaxDepth is supported for completeness and
// lets a single header fan out to multiple independently-growing
// directories.
//
// Layout (within a page's bytes, after the LSN header):
//
//	[ MaxDepth:4 ][ directory_page_ids: 4 * (1<<MaxDepth) ]
type headerPage struct {
	buf []byte
}

const hdrMaxDepthOff = disk.PageHeaderSize
const hdrDirIDsOff = hdrMaxDepthOff + 4

// maxHeaderArraySize bounds how large MaxDepth may be for a single page:
// 4 + 4*2^d <= disk.PageSize-disk.PageHeaderSize, which is generous up to
// d=10. The engine never needs more than a handful of directories, so
// MaxDepth is kept small (0-2) in practice.
const maxHeaderArraySize = 1 << 10

func initHeaderPage(buf []byte, maxDepth uint32) headerPage {
	h := headerPage{buf: buf}
	bx.PutU32(buf[hdrMaxDepthOff:], maxDepth)
	n := 1 << maxDepth
	for i := 0; i < n; i++ {
		bx.PutI32(buf[hdrDirIDsOff+i*4:], int32(disk.InvalidPageId))
	}
	return h
}

func wrapHeaderPage(buf []byte) headerPage { return headerPage{buf: buf} }

func (h headerPage) maxDepth() uint32 { return bx.U32(h.buf[hdrMaxDepthOff:]) }

// directoryIndex returns the header slot keyHash is sliced to: its top
// maxDepth bits.
func (h headerPage) directoryIndex(keyHash uint32) uint32 {
	d := h.maxDepth()
	if d == 0 {
		return 0
	}
	return keyHash >> (32 - d)
}

func (h headerPage) directoryPageID(idx uint32) disk.PageId {
	return disk.PageId(bx.I32(h.buf[hdrDirIDsOff+int(idx)*4:]))
}

func (h headerPage) setDirectoryPageID(idx uint32, id disk.PageId) {
	bx.PutI32(h.buf[hdrDirIDsOff+int(idx)*4:], int32(id))
}
