// Package executor holds the pieces shared by runtime-call entry points,
// independent of any particular engine.
package executor

import (
	"encoding/binary"
	"errors"
	"math"
)

// DefaultHeapPages is the number of heap pages granted to a runtime whose
// storage doesn't specify one.
const DefaultHeapPages = 2048

var (
	ErrHeapPagesWrongLength = errors.New("heap pages value must be exactly 8 bytes")
	ErrHeapPagesTooLarge    = errors.New("heap pages value doesn't fit in 32 bits")
)

// DecodeHeapPages interprets the raw ":heappages" storage value as a page
// count. A nil value means the key is absent and yields DefaultHeapPages; a
// present value must be a little-endian 64-bit integer that fits in 32 bits.
func DecodeHeapPages(value []byte) (uint32, error) {
	if value == nil {
		return DefaultHeapPages, nil
	}
	if len(value) != 8 {
		return 0, ErrHeapPagesWrongLength
	}
	pages := binary.LittleEndian.Uint64(value)
	if pages > math.MaxUint32 {
		return 0, ErrHeapPagesTooLarge
	}
	return uint32(pages), nil
}
