// Package util contains small helpers used across the module
package util

import "encoding/binary"

// BigEndianUint24 parses a big endian uint24.
func BigEndianUint24(raw []byte) uint32 {
	if len(raw) < 3 {
		return 0
	}

	rawCopy := make([]byte, 4)
	copy(rawCopy[1:], raw)

	return binary.BigEndian.Uint32(rawCopy)
}

// PutBigEndianUint24 writes val into the first 3 bytes of out.
func PutBigEndianUint24(out []byte, val uint32) {
	tmp := make([]byte, 4)
	binary.BigEndian.PutUint32(tmp, val)
	copy(out, tmp[1:])
}
