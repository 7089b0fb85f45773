package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeCompactSingleByte(t *testing.T) {
	assert := assert.New(t)

	value, read, err := DecodeCompact([]byte{0x00})
	assert.NoError(err)
	assert.Equal(uint64(0), value)
	assert.Equal(1, read)

	value, read, err = DecodeCompact([]byte{0x04})
	assert.NoError(err)
	assert.Equal(uint64(1), value)
	assert.Equal(1, read)

	// 63 is the largest single-byte value
	value, read, err = DecodeCompact([]byte{0xfc})
	assert.NoError(err)
	assert.Equal(uint64(63), value)
	assert.Equal(1, read)
}

func TestDecodeCompactTwoBytes(t *testing.T) {
	assert := assert.New(t)

	// 64 is the smallest two-byte value: 64<<2 | 0b01 = 0x0101
	value, read, err := DecodeCompact([]byte{0x01, 0x01})
	assert.NoError(err)
	assert.Equal(uint64(64), value)
	assert.Equal(2, read)

	// trailing bytes are left alone
	value, read, err = DecodeCompact([]byte{0x01, 0x01, 0xff})
	assert.NoError(err)
	assert.Equal(uint64(64), value)
	assert.Equal(2, read)
}

func TestDecodeCompactFourBytes(t *testing.T) {
	assert := assert.New(t)

	// 2^14 = 16384: 16384<<2 | 0b10 = 0x00010002
	value, read, err := DecodeCompact([]byte{0x02, 0x00, 0x01, 0x00})
	assert.NoError(err)
	assert.Equal(uint64(16384), value)
	assert.Equal(4, read)
}

func TestDecodeCompactBigInteger(t *testing.T) {
	assert := assert.New(t)

	// 2^30: prefix 0b11 with 4 following bytes
	value, read, err := DecodeCompact([]byte{0x03, 0x00, 0x00, 0x00, 0x40})
	assert.NoError(err)
	assert.Equal(uint64(1)<<30, value)
	assert.Equal(5, read)

	// full 8-byte payload
	value, read, err = DecodeCompact([]byte{0x13, 1, 2, 3, 4, 5, 6, 7, 8})
	assert.NoError(err)
	assert.Equal(uint64(0x0807060504030201), value)
	assert.Equal(9, read)
}

func TestDecodeCompactTooShort(t *testing.T) {
	assert := assert.New(t)

	_, _, err := DecodeCompact(nil)
	assert.ErrorIs(err, ErrCompactTooShort)

	_, _, err = DecodeCompact([]byte{0x01})
	assert.ErrorIs(err, ErrCompactTooShort)

	_, _, err = DecodeCompact([]byte{0x02, 0x00})
	assert.ErrorIs(err, ErrCompactTooShort)

	_, _, err = DecodeCompact([]byte{0x03, 0x00})
	assert.ErrorIs(err, ErrCompactTooShort)
}

func TestDecodeCompactTooLarge(t *testing.T) {
	assert := assert.New(t)

	// prefix asking for 9 following bytes
	_, _, err := DecodeCompact([]byte{0x17, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.ErrorIs(err, ErrCompactTooLarge)
}
