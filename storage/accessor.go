// Package storage defines how runtime calls read the key/value state of a
// block.
package storage

import (
	"github.com/ava-labs/avalanchego/database"
)

// Well-known storage keys.
var (
	// CodeKey holds the wasm bytecode of the runtime.
	CodeKey = []byte(":code")
	// HeapPagesKey holds the number of heap pages granted to the runtime.
	HeapPagesKey = []byte(":heappages")
)

// Accessor returns the value stored under [key]. found is false when the key
// has no value. An accessor must be side-effect free: it can be called any
// number of times per runtime call, once per storage read the runtime makes.
type Accessor func(key []byte) (value []byte, found bool)

// FromDatabase returns an accessor backed by [db]. Keys that are missing, or
// that fail to read, are reported as absent.
func FromDatabase(db database.Database) Accessor {
	return func(key []byte) ([]byte, bool) {
		value, err := db.Get(key)
		if err != nil {
			return nil, false
		}
		return value, true
	}
}

// FromMap returns an accessor backed by an in-memory map.
func FromMap(entries map[string][]byte) Accessor {
	return func(key []byte) ([]byte, bool) {
		value, found := entries[string(key)]
		return value, found
	}
}
