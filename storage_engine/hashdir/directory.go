package hashdir

/*
Extendible hashing.

A key lives in the bucket referenced by directory slot hash(key) & (2^globalDepth - 1).
When an insert finds its bucket full:
  - localDepth < globalDepth: the bucket splits in place, the directory keeps its size;
  - localDepth == globalDepth: the directory doubles first (every slot duplicated), then the bucket splits.
The insert is retried until the key fits. Keys whose hashes agree on every
examined bit keep the directory growing; nothing caps that.

Buckets are never merged and the directory never shrinks.
*/

// New creates a directory with one empty bucket of bucketSize entries at depth 0.
func New[K comparable, V any](bucketSize int, hash Hasher[K]) *Directory[K, V] {
	if bucketSize < 1 {
		bucketSize = 1
	}
	return &Directory[K, V]{
		dir:        []*bucket[K, V]{newBucket[K, V](bucketSize, 0)},
		bucketSize: bucketSize,
		numBuckets: 1,
		hash:       hash,
	}
}

// IndexOf returns the directory slot for key.
func (d *Directory[K, V]) IndexOf(key K) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexOf(key)
}

func (d *Directory[K, V]) indexOf(key K) int {
	mask := uint64(1)<<uint(d.globalDepth) - 1
	return int(d.hash(key) & mask)
}

// Find returns the value stored for key.
func (d *Directory[K, V]) Find(key K) (V, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir[d.indexOf(key)].find(key)
}

// Remove deletes key and reports whether it was present.
func (d *Directory[K, V]) Remove(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir[d.indexOf(key)].remove(key)
}

// Insert stores value under key, overwriting any previous value. Growth
// rounds triggered by the insert run under the same critical section.
func (d *Directory[K, V]) Insert(key K, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for {
		index := d.indexOf(key)
		target := d.dir[index]
		if target.insert(key, value) {
			return
		}
		if target.depth == d.globalDepth {
			d.grow()
		}
		d.split(target)
	}
}

// grow doubles the directory: slot i+len references the same bucket as slot i.
func (d *Directory[K, V]) grow() {
	d.dir = append(d.dir, d.dir...)
	d.globalDepth++
}

// split raises the bucket's local depth and moves every entry whose hash has
// the newly significant bit set into a fresh sibling. Directory slots that
// referenced the bucket and carry that bit are repointed to the sibling.
func (d *Directory[K, V]) split(b *bucket[K, V]) {
	b.depth++
	highBit := uint64(1) << uint(b.depth-1)
	sibling := newBucket[K, V](d.bucketSize, b.depth)

	kept := b.items[:0]
	for _, e := range b.items {
		if d.hash(e.key)&highBit != 0 {
			sibling.items = append(sibling.items, e)
		} else {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(b.items); i++ {
		b.items[i] = entry[K, V]{}
	}
	b.items = kept

	for i, ref := range d.dir {
		if ref == b && uint64(i)&highBit != 0 {
			d.dir[i] = sibling
		}
	}
	d.numBuckets++
}

// GlobalDepth returns the number of hash bits used to index the directory.
func (d *Directory[K, V]) GlobalDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.globalDepth
}

// LocalDepth returns the depth of the bucket referenced by dirIndex.
func (d *Directory[K, V]) LocalDepth(dirIndex int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dir[dirIndex].depth
}

// NumBuckets returns the number of distinct buckets.
func (d *Directory[K, V]) NumBuckets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.numBuckets
}

// Len returns the number of stored keys.
func (d *Directory[K, V]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	seen := make(map[*bucket[K, V]]struct{}, d.numBuckets)
	for _, b := range d.dir {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		n += len(b.items)
	}
	return n
}
