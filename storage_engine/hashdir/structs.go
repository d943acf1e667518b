package hashdir

import "sync"

// Hasher maps a key to a deterministic 64-bit hash. The directory indexes on
// its low-order bits.
type Hasher[K any] func(K) uint64

// Directory is an extendible hash table: a directory of 2^globalDepth slots,
// each referencing a bucket that discriminates on localDepth low bits.
// Exactly 2^(globalDepth-localDepth) slots reference any given bucket.
type Directory[K comparable, V any] struct {
	dir         []*bucket[K, V]
	globalDepth int
	bucketSize  int
	numBuckets  int
	hash        Hasher[K]
	mu          sync.Mutex
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// bucket is a fixed-capacity set of entries; order is irrelevant.
type bucket[K comparable, V any] struct {
	items    []entry[K, V]
	capacity int
	depth    int
}
