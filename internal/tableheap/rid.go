// Package tableheap implements row storage: a slotted table page format
// (generalized from the teacher's internal/storage/page.go layout) and
// TableHeap, the append-and-chain structure that owns a table's pages
// and exposes insert/delete/get/iterate over (Tuple, RID) pairs.
package tableheap

import (
	"fmt"

	"github.com/novasql/core/internal/disk"
)

// RID (Record IDentifier) locates one tuple: the page holding it and its
// slot index within that page (spec.md §3, §10 glossary).
type RID struct {
	PageID disk.PageId
	Slot   uint16
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.Slot)
}

// Invalid reports whether r's page id is disk.InvalidPageId, as in
// InvalidRID, which executors use for rows that have no heap location.
func (r RID) Invalid() bool { return r.PageID == disk.InvalidPageId }

var InvalidRID = RID{PageID: disk.InvalidPageId}
