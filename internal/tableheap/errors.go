package tableheap

import "errors"

var (
	errShortTuple = errors.New("tableheap: truncated tuple bytes")

	// ErrNoSpace signals a full page; TableHeap.InsertTuple retries on the
	// next page when it sees this.
	ErrNoSpace = errors.New("tableheap: page has no free space")

	// ErrSlotNotFound is returned when a RID's slot index is out of range
	// for its page.
	ErrSlotNotFound = errors.New("tableheap: slot not found")

	// ErrTupleDeleted is returned by GetTuple for a tombstoned slot.
	ErrTupleDeleted = errors.New("tableheap: tuple is deleted")
)
