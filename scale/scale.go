// Package scale implements the small subset of the SCALE codec needed to
// decode values returned by runtime calls.
package scale

import (
	"errors"
)

var (
	ErrCompactTooShort = errors.New("not enough bytes for compact integer")
	ErrCompactTooLarge = errors.New("compact integer doesn't fit in 64 bits")
)

// DecodeCompact decodes a compact-encoded unsigned integer from the front of
// [b], returning the value and the number of bytes consumed.
func DecodeCompact(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrCompactTooShort
	}

	switch b[0] & 0x3 {
	case 0:
		return uint64(b[0] >> 2), 1, nil
	case 1:
		if len(b) < 2 {
			return 0, 0, ErrCompactTooShort
		}
		return (uint64(b[0]) | uint64(b[1])<<8) >> 2, 2, nil
	case 2:
		if len(b) < 4 {
			return 0, 0, ErrCompactTooShort
		}
		value := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24
		return value >> 2, 4, nil
	default:
		numBytes := int(b[0]>>2) + 4
		if numBytes > 8 {
			return 0, 0, ErrCompactTooLarge
		}
		if len(b) < 1+numBytes {
			return 0, 0, ErrCompactTooShort
		}
		var value uint64
		for i := 0; i < numBytes; i++ {
			value |= uint64(b[1+i]) << (8 * i)
		}
		return value, 1 + numBytes, nil
	}
}
