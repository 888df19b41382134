package infrastructure

import (
	"encoding/binary"
	"math/bits"
)

// MaskBytes XORs b in place with key, starting at key offset pos. It returns
// the key offset following the last byte, so a payload can be masked in
// several calls.
func MaskBytes(key [4]byte, pos int, b []byte) int {
	if len(b) < 8 {
		for i := range b {
			b[i] ^= key[pos&3]
			pos++
		}
		return pos & 3
	}

	// Eight bytes at a time. Multiples of 8 leave pos unchanged.
	key64 := uint64(binary.LittleEndian.Uint32(key[:]))
	key64 |= key64 << 32
	key64 = bits.RotateLeft64(key64, -(pos&3)*8)

	i := 0
	for ; len(b)-i >= 8; i += 8 {
		binary.LittleEndian.PutUint64(b[i:], binary.LittleEndian.Uint64(b[i:])^key64)
	}
	for ; i < len(b); i++ {
		b[i] ^= key[pos&3]
		pos++
	}
	return pos & 3
}
