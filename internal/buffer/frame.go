package buffer

import (
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/replacer"
)

// Frame is one in-memory slot that holds at most one page at a time. Pin
// count and dirty flag live here exclusively (see DESIGN.md's resolution of
// spec.md's pin/dirty Open Question), satisfying invariant I6: pin count
// equals the number of live guards referencing the frame.
type Frame struct {
	ID      replacer.FrameId
	PageID  disk.PageId
	Page    disk.Page
	PinCnt  int32
	IsDirty bool
}

// reset clears a frame back to the free-list state (invariant I3).
func (f *Frame) reset() {
	f.PageID = disk.InvalidPageId
	f.Page.Reset()
	f.PinCnt = 0
	f.IsDirty = false
}
