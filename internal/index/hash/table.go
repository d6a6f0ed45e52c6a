package hash

import (
	"github.com/novasql/core/internal/buffer"
	"github.com/novasql/core/internal/disk"
	"github.com/novasql/core/internal/guard"
	"github.com/novasql/core/internal/tableheap"
)

// HashTable is the on-disk extendible hash index: a single header page
// pointing at one or more directory pages, each mapping a key's low bits
// to bucket pages holding the actual (key, RID) entries (spec.md §4.5).
// Traversal always goes header -> directory -> bucket, fetching each page
// through the buffer pool under a page guard, grounded on original_source's
// disk_extendible_hash_table/logic/{lookup,remove,update}.rs. Not every
// path releases a page before fetching the next: Insert keeps the
// directory page latched while it works on a bucket, and Remove keeps the
// header page latched for the whole removal.
type HashTable struct {
	pool           *buffer.Pool
	headerPageID   disk.PageId
	keySize        int
	maxHeaderDepth uint32
	hasher         KeyHasher
	cmp            Comparator
}

// Create allocates a fresh header page and returns a HashTable bound to
// it. maxHeaderDepth is normally 0 (a single directory), left pluggable
// for completeness.
func Create(pool *buffer.Pool, keySize int, maxHeaderDepth uint32, hasher KeyHasher, cmp Comparator) (*HashTable, disk.PageId, error) {
	g, err := guard.NewPage(pool)
	if err != nil {
		return nil, disk.InvalidPageId, err
	}
	initHeaderPage(g.DataMut(), maxHeaderDepth)
	id := g.PageID()
	g.Drop()

	return &HashTable{
		pool:           pool,
		headerPageID:   id,
		keySize:        keySize,
		maxHeaderDepth: maxHeaderDepth,
		hasher:         hasher,
		cmp:            cmp,
	}, id, nil
}

// Open binds a HashTable to an already-existing header page, e.g. after
// reloading an index's catalog entry.
func Open(pool *buffer.Pool, headerPageID disk.PageId, keySize int, maxHeaderDepth uint32, hasher KeyHasher, cmp Comparator) *HashTable {
	return &HashTable{
		pool:           pool,
		headerPageID:   headerPageID,
		keySize:        keySize,
		maxHeaderDepth: maxHeaderDepth,
		hasher:         hasher,
		cmp:            cmp,
	}
}

// GetValue returns every RID stored under key (at most one, since Insert
// rejects duplicates, but the slice shape mirrors spec.md §4.5's
// GetValue contract).
func (h *HashTable) GetValue(key []byte) ([]tableheap.RID, error) {
	keyHash := h.hasher.Hash(key)

	hg, err := guard.FetchRead(h.pool, h.headerPageID)
	if err != nil {
		return nil, err
	}
	hp := wrapHeaderPage(hg.Data())
	dirIdx := hp.directoryIndex(keyHash)
	dirPageID := hp.directoryPageID(dirIdx)
	hg.Drop()

	if dirPageID == disk.InvalidPageId {
		return nil, nil
	}

	dg, err := guard.FetchRead(h.pool, dirPageID)
	if err != nil {
		return nil, err
	}
	dp := wrapDirectoryPage(dg.Data())
	bktIdx := dp.bucketIndex(keyHash)
	bktPageID := dp.bucketPageID(bktIdx)
	dg.Drop()

	if bktPageID == disk.InvalidPageId {
		return nil, nil
	}

	bg, err := guard.FetchRead(h.pool, bktPageID)
	if err != nil {
		return nil, err
	}
	defer bg.Drop()
	bp := wrapBucketPage(bg.Data(), h.keySize)
	v, ok := bp.lookup(key, h.cmp)
	if !ok {
		return nil, nil
	}
	return []tableheap.RID{decodeRID(v)}, nil
}

// Insert adds (key, rid), splitting buckets and growing the directory as
// needed. It rejects duplicate keys (spec.md §4.5: unique keys only).
func (h *HashTable) Insert(key []byte, rid tableheap.RID) error {
	keyHash := h.hasher.Hash(key)
	value := encodeRID(rid)

	hg, err := guard.FetchWrite(h.pool, h.headerPageID)
	if err != nil {
		return err
	}
	hp := wrapHeaderPage(hg.Data())
	dirIdx := hp.directoryIndex(keyHash)
	dirPageID := hp.directoryPageID(dirIdx)

	if dirPageID == disk.InvalidPageId {
		dg, err := guard.NewPage(h.pool)
		if err != nil {
			hg.Drop()
			return err
		}
		initDirectoryPage(dg.DataMut())
		dirPageID = dg.PageID()
		hp2 := wrapHeaderPage(hg.DataMut())
		hp2.setDirectoryPageID(dirIdx, dirPageID)
		dg.Drop()
	}
	hg.Drop()

	return h.insertIntoDirectory(dirPageID, key, keyHash, value)
}

// insertIntoDirectory handles the bucket-allocate / split / directory-grow
// cases once a directory page is known to exist for key.
func (h *HashTable) insertIntoDirectory(dirPageID disk.PageId, key []byte, keyHash uint32, value []byte) error {
	dg, err := guard.FetchWrite(h.pool, dirPageID)
	if err != nil {
		return err
	}
	dp := wrapDirectoryPage(dg.DataMut())
	bktIdx := dp.bucketIndex(keyHash)
	bktPageID := dp.bucketPageID(bktIdx)

	if bktPageID == disk.InvalidPageId {
		bg, err := guard.NewPage(h.pool)
		if err != nil {
			dg.Drop()
			return err
		}
		initBucketPage(bg.DataMut(), h.keySize, dp.localDepth(bktIdx))
		bktPageID = bg.PageID()
		dp.setBucketPageID(bktIdx, bktPageID)
		bg.Drop()
	}

	bg, err := guard.FetchWrite(h.pool, bktPageID)
	if err != nil {
		dg.Drop()
		return err
	}
	bp := wrapBucketPage(bg.Data(), h.keySize)
	if bp.find(key, h.cmp) >= 0 {
		bg.Drop()
		dg.Drop()
		return ErrDuplicateKey
	}

	if !bp.isFull() {
		bp = wrapBucketPage(bg.DataMut(), h.keySize)
		bp.insert(key, value)
		bg.Drop()
		dg.Drop()
		return nil
	}

	// Bucket is full: split it.
	localDepth := bp.localDepth()
	if localDepth == dp.globalDepth() {
		if dp.globalDepth() >= maxDirectoryDepth {
			bg.Drop()
			dg.Drop()
			return ErrTableIsFull
		}
		dp.grow()
	}

	entries := bp.entries()
	newLocalDepth := localDepth + 1

	ng, err := guard.NewPage(h.pool)
	if err != nil {
		bg.Drop()
		dg.Drop()
		return err
	}
	np := initBucketPage(ng.DataMut(), h.keySize, newLocalDepth)
	newPageID := ng.PageID()

	// Repoint every directory slot that shares bktIdx's low newLocalDepth-1
	// bits but differs in the newly-significant bit to the new bucket.
	newBitMask := uint32(1) << (newLocalDepth - 1)
	size := dp.size()
	for i := uint32(0); i < size; i++ {
		if dp.localDepth(i) != localDepth {
			continue
		}
		if i&(newBitMask-1) != bktIdx&(newBitMask-1) {
			continue
		}
		dp.setLocalDepth(i, newLocalDepth)
		if i&newBitMask != 0 {
			dp.setBucketPageID(i, newPageID)
		}
	}

	// Redistribute: slots whose newly-significant bit is 0 still point at
	// the original bucket, so entries with that bit clear stay in place and
	// the rest move to np (whose slots all have the bit set).
	bp = wrapBucketPage(bg.DataMut(), h.keySize)
	bp.setLocalDepth(newLocalDepth)
	bp.setSize(0)
	for _, kv := range entries {
		if h.hasher.Hash(kv[0])&newBitMask == 0 {
			bp.insert(kv[0], kv[1])
		} else {
			np.insert(kv[0], kv[1])
		}
	}
	ng.Drop()
	bg.Drop()
	dg.Drop()

	return h.insertIntoDirectory(dirPageID, key, keyHash, value)
}

// Update overwrites the value stored for an existing key.
func (h *HashTable) Update(key []byte, rid tableheap.RID) error {
	keyHash := h.hasher.Hash(key)
	value := encodeRID(rid)

	hg, err := guard.FetchRead(h.pool, h.headerPageID)
	if err != nil {
		return err
	}
	hp := wrapHeaderPage(hg.Data())
	dirPageID := hp.directoryPageID(hp.directoryIndex(keyHash))
	hg.Drop()
	if dirPageID == disk.InvalidPageId {
		return ErrKeyMissing
	}

	dg, err := guard.FetchRead(h.pool, dirPageID)
	if err != nil {
		return err
	}
	dp := wrapDirectoryPage(dg.Data())
	bktPageID := dp.bucketPageID(dp.bucketIndex(keyHash))
	dg.Drop()
	if bktPageID == disk.InvalidPageId {
		return ErrKeyMissing
	}

	bg, err := guard.FetchWrite(h.pool, bktPageID)
	if err != nil {
		return err
	}
	defer bg.Drop()
	bp := wrapBucketPage(bg.DataMut(), h.keySize)
	if !bp.replace(key, value, h.cmp) {
		return ErrKeyMissing
	}
	return nil
}

// Remove deletes key, merging its bucket with its sibling whenever the
// sibling shares the same local depth and the merge empties a bucket
// (spec.md §4.5's merge-on-empty rule), and collapsing the directory
// entry entirely once the whole subtree merges back to nothing.
func (h *HashTable) Remove(key []byte) (bool, error) {
	keyHash := h.hasher.Hash(key)

	hg, err := guard.FetchWrite(h.pool, h.headerPageID)
	if err != nil {
		return false, err
	}
	hp := wrapHeaderPage(hg.Data())
	dirIdx := hp.directoryIndex(keyHash)
	dirPageID := hp.directoryPageID(dirIdx)
	if dirPageID == disk.InvalidPageId {
		hg.Drop()
		return false, nil
	}

	removed, collapse, err := h.removeFromDirectory(dirPageID, key, keyHash)
	if err != nil {
		hg.Drop()
		return false, err
	}
	if collapse {
		hp2 := wrapHeaderPage(hg.DataMut())
		hp2.setDirectoryPageID(dirIdx, disk.InvalidPageId)
		_ = h.pool.DeletePage(dirPageID)
	}
	hg.Drop()
	return removed, nil
}

// removeFromDirectory removes key from the bucket it hashes to, merging
// up the chain of equal-depth empty siblings. It reports whether key was
// found, and whether the directory has collapsed to nothing (its last
// bucket is empty and at local depth 0, so every slot points at it) and
// should itself be freed.
func (h *HashTable) removeFromDirectory(dirPageID disk.PageId, key []byte, keyHash uint32) (removed bool, collapse bool, err error) {
	dg, err := guard.FetchWrite(h.pool, dirPageID)
	if err != nil {
		return false, false, err
	}
	defer dg.Drop()
	dp := wrapDirectoryPage(dg.DataMut())

	bktIdx := dp.bucketIndex(keyHash)
	bktPageID := dp.bucketPageID(bktIdx)
	if bktPageID == disk.InvalidPageId {
		return false, false, nil
	}

	bg, err := guard.FetchWrite(h.pool, bktPageID)
	if err != nil {
		return false, false, err
	}
	bp := wrapBucketPage(bg.DataMut(), h.keySize)
	if !bp.remove(key, h.cmp) {
		bg.Drop()
		return false, false, nil
	}
	removed = true
	isEmpty := bp.isEmpty()
	localDepth := bp.localDepth()
	bg.Drop()

	// Merge while the bucket is empty, has depth > 0, and its sibling is
	// at the same local depth (so the two halves can become one).
	for isEmpty && localDepth > 0 {
		sibIdx := siblingIndex(bktIdx, localDepth)
		sibPageID := dp.bucketPageID(sibIdx)
		if sibPageID == disk.InvalidPageId || dp.localDepth(sibIdx) != localDepth {
			break
		}

		_ = h.pool.DeletePage(bktPageID)
		newLocalDepth := localDepth - 1
		size := dp.size()
		mergedMask := uint32(1) << newLocalDepth
		lowBits := bktIdx & (mergedMask - 1)
		for i := uint32(0); i < size; i++ {
			if i&(mergedMask-1) == lowBits {
				dp.setBucketPageID(i, sibPageID)
				dp.setLocalDepth(i, newLocalDepth)
			}
		}

		bktIdx = lowBits
		bktPageID = sibPageID

		sg, err := guard.FetchWrite(h.pool, bktPageID)
		if err != nil {
			return removed, false, err
		}
		sp := wrapBucketPage(sg.DataMut(), h.keySize)
		sp.setLocalDepth(newLocalDepth)
		isEmpty = sp.isEmpty()
		localDepth = newLocalDepth
		sg.Drop()
	}

	collapse = isEmpty && localDepth == 0
	return removed, collapse, nil
}

// DeleteCompletely frees every page owned by the hash table, including
// the header page itself, per original_source's delete_completely.rs.
// The caller must not use h afterward.
func (h *HashTable) DeleteCompletely() error {
	hg, err := guard.FetchWrite(h.pool, h.headerPageID)
	if err != nil {
		return err
	}
	hp := wrapHeaderPage(hg.Data())
	n := 1 << hp.maxDepth()
	dirIDs := make([]disk.PageId, 0, n)
	for i := 0; i < n; i++ {
		if id := hp.directoryPageID(uint32(i)); id != disk.InvalidPageId {
			dirIDs = append(dirIDs, id)
		}
	}
	hg.Drop()

	for _, dirPageID := range dirIDs {
		dg, err := guard.FetchWrite(h.pool, dirPageID)
		if err != nil {
			return err
		}
		dp := wrapDirectoryPage(dg.Data())
		size := dp.size()
		bktIDs := make([]disk.PageId, 0, size)
		for i := uint32(0); i < size; i++ {
			if id := dp.bucketPageID(i); id != disk.InvalidPageId {
				bktIDs = append(bktIDs, id)
			}
		}
		dg.Drop()

		seen := make(map[disk.PageId]bool, len(bktIDs))
		for _, id := range bktIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			_ = h.pool.DeletePage(id)
		}
		_ = h.pool.DeletePage(dirPageID)
	}

	_ = h.pool.DeletePage(h.headerPageID)
	return nil
}
