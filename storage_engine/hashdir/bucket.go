package hashdir

func newBucket[K comparable, V any](capacity, depth int) *bucket[K, V] {
	return &bucket[K, V]{
		items:    make([]entry[K, V], 0, capacity),
		capacity: capacity,
		depth:    depth,
	}
}

func (b *bucket[K, V]) isFull() bool {
	return len(b.items) >= b.capacity
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for i := range b.items {
		if b.items[i].key == key {
			return b.items[i].value, true
		}
	}
	var zero V
	return zero, false
}

func (b *bucket[K, V]) remove(key K) bool {
	for i := range b.items {
		if b.items[i].key == key {
			last := len(b.items) - 1
			b.items[i] = b.items[last]
			b.items[last] = entry[K, V]{}
			b.items = b.items[:last]
			return true
		}
	}
	return false
}

// insert overwrites an existing key in place. It returns false only when the
// key is new and the bucket is full.
func (b *bucket[K, V]) insert(key K, value V) bool {
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return true
		}
	}
	if b.isFull() {
		return false
	}
	b.items = append(b.items, entry[K, V]{key: key, value: value})
	return true
}
