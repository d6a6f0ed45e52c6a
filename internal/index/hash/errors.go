// Package hash implements the on-disk extendible hash index: a header
// page, one or more directory pages, and bucket pages holding fixed-width
// key/value entries, all fetched through the buffer pool like any other
// page. Grounded on original_source's
// crates/db_core/src/container/disk/hash/disk_extendible_hash_table and
// crates/db_core/src/storage/page/extendible_hash_table (the header/
// directory/bucket split, the top-bits-at-header/low-bits-at-directory
// bit-slicing scheme, and the split-on-full/merge-on-empty logic), since
// the teacher repo (tuannm99/novasql) has no extendible hash table of its
// own — it only ships a B-tree (internal/btree) — so the page-layout
// conventions here (fixed-size slotted-style pages addressed through
// disk.Page, mutated via guard.WritePageGuard) follow the teacher's
// tableheap/page.go idiom instead, generalized to the hash table's own
// header/directory/bucket record shapes.
package hash

import "errors"

var (
	// ErrDuplicateKey is returned by Insert when key is already present
	// (spec.md §4.5: this implementation assumes unique keys).
	ErrDuplicateKey = errors.New("hash: duplicate key")

	// ErrKeyMissing is returned by Update when key is not present.
	ErrKeyMissing = errors.New("hash: key is missing")

	// ErrTableIsFull is returned by Insert when the directory has grown
	// to maxDirectoryDepth and a bucket still cannot be split.
	ErrTableIsFull = errors.New("hash: table is full")
)
