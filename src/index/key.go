package index

import (
	"bytes"
	"encoding/binary"
)

// Key is a fixed-width byte-comparable index key. Keys are stored inline in
// fixed-stride page entries, so only the widths below are supported.
type Key interface {
	[4]byte | [8]byte | [16]byte | [32]byte | [64]byte
}

// Comparator orders two keys: negative when a < b, zero when equal, positive
// when a > b. It is supplied by the enclosing index.
type Comparator[K Key] func(a, b K) int

// Uint64Key packs v into a big-endian 8-byte key, so that byte order equals
// numeric order.
func Uint64Key(v uint64) [8]byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], v)
	return k
}

// KeyUint64 unpacks a key produced by Uint64Key.
func KeyUint64(k [8]byte) uint64 {
	return binary.BigEndian.Uint64(k[:])
}

// CompareUint64Keys orders big-endian 8-byte keys.
func CompareUint64Keys(a, b [8]byte) int {
	return bytes.Compare(a[:], b[:])
}
