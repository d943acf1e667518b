package hashdir

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// IntegerHasher hashes the little-endian 8-byte form of an integer key.
func IntegerHasher[T integer]() Hasher[T] {
	return func(key T) uint64 {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(key))
		return xxhash.Sum64(buf[:])
	}
}

// StringHasher hashes string keys.
func StringHasher() Hasher[string] {
	return xxhash.Sum64String
}
