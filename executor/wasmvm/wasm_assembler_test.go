package wasmvm_test

// A tiny wasm assembler, just enough to build the fixture modules used by
// the tests in this package.

import "encoding/binary"

const (
	secType   = 1
	secImport = 2
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secCode   = 10
	secData   = 11

	valI32 = 0x7f
	valI64 = 0x7e

	kindFunc   = 0x00
	kindMemory = 0x02

	opUnreachable = 0x00
	opCall        = 0x10
	opDrop        = 0x1a
	opEnd         = 0x0b
	opI32Const    = 0x41
	opI64Const    = 0x42
)

func cat(chunks ...[]byte) []byte {
	var out []byte
	for _, chunk := range chunks {
		out = append(out, chunk...)
	}
	return out
}

func uleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func sleb(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func vec(items ...[]byte) []byte {
	return cat(append([][]byte{uleb(uint64(len(items)))}, items...)...)
}

func vecBytes(b []byte) []byte {
	return cat(uleb(uint64(len(b))), b)
}

func name(s string) []byte {
	return vecBytes([]byte(s))
}

func section(id byte, payload []byte) []byte {
	return cat([]byte{id}, uleb(uint64(len(payload))), payload)
}

func wasmModule(sections ...[]byte) []byte {
	header := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	return cat(append([][]byte{header}, sections...)...)
}

func funcType(params, results []byte) []byte {
	return cat([]byte{0x60}, vecBytes(params), vecBytes(results))
}

// funcBody wraps [instrs] (which must end with opEnd) into a code-section
// entry with no locals.
func funcBody(instrs []byte) []byte {
	body := cat([]byte{0x00}, instrs)
	return cat(uleb(uint64(len(body))), body)
}

func i32Const(v int32) []byte { return cat([]byte{opI32Const}, sleb(int64(v))) }
func i64Const(v int64) []byte { return cat([]byte{opI64Const}, sleb(v)) }
func call(idx uint64) []byte  { return cat([]byte{opCall}, uleb(idx)) }

func export(exportName string, kind byte, idx uint64) []byte {
	return cat(name(exportName), []byte{kind}, uleb(idx))
}

func funcImport(module, importName string, typeIdx uint64) []byte {
	return cat(name(module), name(importName), []byte{kindFunc}, uleb(typeIdx))
}

// dataSegment is an active segment written at [offset] in memory 0.
func dataSegment(offset int32, bytes []byte) []byte {
	return cat([]byte{0x00}, i32Const(offset), []byte{opEnd}, vecBytes(bytes))
}

// packed is the ABI encoding of a buffer address: len<<32 | ptr.
func packed(ptr, length uint32) int64 {
	return int64(uint64(length)<<32 | uint64(ptr))
}

func leU64(value uint64) []byte {
	encoded := make([]byte, 8)
	binary.LittleEndian.PutUint64(encoded, value)
	return encoded
}

// oneMemory is a memory section with a single 1-page memory and no maximum.
func oneMemory() []byte {
	return section(secMemory, vec([]byte{0x00, 0x01}))
}
