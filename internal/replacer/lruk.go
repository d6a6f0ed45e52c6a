// Package replacer implements the LRU-K eviction ordering used by the
// buffer pool manager to pick victim frames.
package replacer

import (
	"container/heap"
	"sync"
)

// FrameId indexes a slot in the buffer pool's frame array.
type FrameId int32

// node tracks one frame's access history for the heap.
type node struct {
	frame     FrameId
	history   []int64 // bounded to K entries, oldest first
	k         int
	evictable bool
	heapIdx   int // position in the heap slice, -1 when not present
}

// hasFullHistory reports whether K accesses have been recorded, i.e.
// whether this node has a finite K-distance.
func (n *node) hasFullHistory() bool {
	return len(n.history) >= n.k
}

// less reports whether n is a more eviction-worthy victim than other: a
// frame with fewer than K accesses (infinite K-distance) always outranks
// one with a full history; among two frames in the same category, the one
// whose oldest tracked access is further in the past (smaller counter
// value) wins, which is exactly K-distance comparison for full histories
// and the LRU tiebreak for partial ones.
func (n *node) less(other *node) bool {
	nFull, oFull := n.hasFullHistory(), other.hasFullHistory()
	if nFull != oFull {
		return oFull // n (partial history) outranks other (full history)
	}
	return n.history[0] < other.history[0]
}

// maxHeap is a max-heap over evictable nodes ordered by K-distance.
type maxHeap struct {
	nodes []*node
}

func (h *maxHeap) Len() int { return len(h.nodes) }

func (h *maxHeap) Less(i, j int) bool {
	return h.nodes[i].less(h.nodes[j])
}

func (h *maxHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.nodes[i].heapIdx = i
	h.nodes[j].heapIdx = j
}

func (h *maxHeap) Push(x any) {
	n := x.(*node)
	n.heapIdx = len(h.nodes)
	h.nodes = append(h.nodes, n)
}

func (h *maxHeap) Pop() any {
	old := h.nodes
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.heapIdx = -1
	h.nodes = old[:last]
	return n
}

// LRUKReplacer implements spec-mandated LRU-K eviction ordering (invariant
// I8): the victim is always the evictable frame whose Kth-most-recent
// access is furthest in the past, with frames holding fewer than K accesses
// evicted first and ties among those broken by plain LRU.
//
// All operations are called under the buffer pool's root latch, so this
// type does its own locking only for standalone use/testing.
type LRUKReplacer struct {
	mu sync.Mutex

	k       int
	nodes   map[FrameId]*node
	h       *maxHeap
	counter int64
}

// NewLRUKReplacer creates a replacer evicting by K-distance with the
// given K.
func NewLRUKReplacer(k int) *LRUKReplacer {
	if k <= 0 {
		k = 2
	}
	return &LRUKReplacer{
		k:     k,
		nodes: make(map[FrameId]*node),
		h:     &maxHeap{},
	}
}

func (r *LRUKReplacer) getOrCreate(frame FrameId) *node {
	n, ok := r.nodes[frame]
	if !ok {
		n = &node{frame: frame, k: r.k, heapIdx: -1}
		r.nodes[frame] = n
	}
	return n
}

// RecordAccess appends an access token to frame's history, dropping the
// oldest entry once the history exceeds K. If frame is currently in the
// eviction heap its position is resifted.
func (r *LRUKReplacer) RecordAccess(frame FrameId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counter++
	n := r.getOrCreate(frame)
	n.history = append(n.history, r.counter)
	if len(n.history) > r.k {
		n.history = n.history[len(n.history)-r.k:]
	}

	if n.heapIdx >= 0 {
		heap.Fix(r.h, n.heapIdx)
	}
}

// SetEvictable toggles whether frame may be chosen by Evict. Transitioning
// to evictable inserts it into the heap; transitioning away removes it.
func (r *LRUKReplacer) SetEvictable(frame FrameId, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.getOrCreate(frame)
	if n.evictable == evictable {
		return
	}
	n.evictable = evictable

	if evictable {
		heap.Push(r.h, n)
	} else if n.heapIdx >= 0 {
		heap.Remove(r.h, n.heapIdx)
	}
}

// Evict pops the current victim frame, clearing its history. ok is false if
// no frame is evictable.
func (r *LRUKReplacer) Evict() (frame FrameId, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.h.Len() == 0 {
		return 0, false
	}

	n := heap.Pop(r.h).(*node)
	n.evictable = false
	delete(r.nodes, n.frame)
	return n.frame, true
}

// Remove deletes frame's tracked history. It is only valid to call this on
// an evictable frame, matching the BusTub contract.
func (r *LRUKReplacer) Remove(frame FrameId) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.nodes[frame]
	if !ok {
		return
	}
	if n.heapIdx >= 0 {
		heap.Remove(r.h, n.heapIdx)
	}
	delete(r.nodes, frame)
}

// Size returns the number of currently evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.h.Len()
}
