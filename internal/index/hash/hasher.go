package hash

import "hash/fnv"

// KeyHasher yields the 32-bit hash a key is sliced by (spec.md §4.5: "a
// pluggable KeyHasher yields a u32"). It is a separate concern from
// Comparator so composite keys can hash and compare independently.
type KeyHasher interface {
	Hash(key []byte) uint32
}

// FNVHasher is the default KeyHasher: 32-bit FNV-1a over the key's raw
// bytes. Deterministic and allocation-free, unlike a generic hash/maphash
// seed-per-process hasher, which would make index contents
// non-reproducible across process runs of the same on-disk file.
type FNVHasher struct{}

func (FNVHasher) Hash(key []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(key)
	return h.Sum32()
}

// Comparator orders two fixed-width keys of the same encoded width,
// kept separate from KeyHasher per spec.md §4.5 so a composite key's
// hash identity and equality identity can differ if ever needed.
type Comparator interface {
	Compare(a, b []byte) int
}

// BytesComparator compares keys byte-for-byte, which is sufficient for
// equality-only semantics (the extendible hash table never needs
// ordering, only equality) and also gives a stable, reproducible order
// for tests that enumerate bucket contents.
type BytesComparator struct{}

func (BytesComparator) Compare(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
