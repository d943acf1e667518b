package bplus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ValidKeyWidth reports whether keys of this byte width can be stored.
func ValidKeyWidth(width int) bool {
	switch width {
	case 4, 8, 16, 32, 64:
		return true
	}
	return false
}

// CompareKeys orders keys bytewise. It is the comparator for keys built by
// EncodeIntegerKey and EncodeStringKey.
func CompareKeys(a, b []byte) int {
	return bytes.Compare(a, b)
}

// EncodeIntegerKey encodes v so that bytewise order matches numeric order.
// The value is right aligned and big endian with the sign bit flipped; a
// 4 byte key holds the low 32 bits only, so v must fit in an int32.
func EncodeIntegerKey(v int64, width int) []byte {
	key := make([]byte, width)
	if width < 8 {
		binary.BigEndian.PutUint32(key[width-4:], uint32(int32(v))^(1<<31))
		return key
	}
	binary.BigEndian.PutUint64(key[width-8:], uint64(v)^(1<<63))
	return key
}

// DecodeIntegerKey reverses EncodeIntegerKey.
func DecodeIntegerKey(key []byte) int64 {
	if len(key) < 8 {
		return int64(int32(binary.BigEndian.Uint32(key[len(key)-4:]) ^ (1 << 31)))
	}
	return int64(binary.BigEndian.Uint64(key[len(key)-8:]) ^ (1 << 63))
}

// EncodeStringKey zero pads s to width bytes, truncating longer strings.
func EncodeStringKey(s string, width int) []byte {
	key := make([]byte, width)
	copy(key, s)
	return key
}

// FormatKey renders a key for dumps: quoted when it is printable text padded
// with zeros, as an integer when it round-trips through DecodeIntegerKey,
// otherwise as hex.
func FormatKey(key []byte) string {
	text := bytes.TrimRight(key, "\x00")
	if len(text) > 0 && isPrintable(text) {
		return fmt.Sprintf("%q", text)
	}
	if ValidKeyWidth(len(key)) {
		v := DecodeIntegerKey(key)
		if bytes.Equal(EncodeIntegerKey(v, len(key)), key) {
			return fmt.Sprintf("%d", v)
		}
	}
	return fmt.Sprintf("%x", key)
}

func isPrintable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
