// Package aura retrieves the Aura consensus configuration of a chain by
// calling into its runtime. It can be used on any block.
//
// The way a chain configures Aura is stored in its runtime, so retrieving it
// means executing two runtime calls ("AuraApi_slot_duration" and
// "AuraApi_authorities") against the storage of a block.
package aura

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/version"

	"github.com/sabify/smoldot/executor"
	"github.com/sabify/smoldot/executor/host"
	"github.com/sabify/smoldot/executor/wasmvm"
	"github.com/sabify/smoldot/storage"
)

const (
	Name = "aura"

	slotDurationExport = "AuraApi_slot_duration"
	authoritiesExport  = "AuraApi_authorities"
)

// Version of this retrieval library.
var Version = version.NewDefaultVersion(0, 1, 0)

// Configuration is the Aura configuration of a chain, as extracted from a
// block.
type Configuration struct {
	// Authorities allowed to author blocks, in rotation order. The order is
	// significant and preserved exactly as the runtime returned it.
	Authorities []Authority

	// SlotDuration is the duration of a slot in milliseconds. Never zero.
	SlotDuration uint64
}

// FromStorage retrieves the configuration from the storage of a block. The
// runtime code is read from [access], compiled, and queried.
func FromStorage(access storage.Accessor) (Configuration, error) {
	code, found := access(storage.CodeKey)
	if !found {
		return Configuration{}, ErrRuntimeNotFound
	}

	heapPagesValue, found := access(storage.HeapPagesKey)
	if !found {
		// An accessor may report absence with a non-nil empty slice; only a
		// nil value selects the default page count in DecodeHeapPages.
		heapPagesValue = nil
	}
	heapPages, err := executor.DecodeHeapPages(heapPagesValue)
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %s", ErrInvalidHeapPages, err)
	}

	proto, err := wasmvm.NewPrototype(host.Config{
		Module:    code,
		HeapPages: heapPages,
		ExecHint:  host.ExecHintOneshot,
	})
	if err != nil {
		return Configuration{}, fmt.Errorf("%w: %s", ErrVMInitialization, err)
	}

	config, _, err := FromPrototype(proto, access)
	return config, err
}

// FromPrototype retrieves the configuration by querying an already-compiled
// runtime. On success the prototype is returned back, idle, so the same
// compiled module can be queried again without recompilation. If a call
// can't be started the error is a *StartError and [proto] remains usable.
func FromPrototype(proto host.Prototype, access storage.Accessor) (Configuration, host.Prototype, error) {
	slotValue, proto, err := call(proto, slotDurationExport, access)
	if err != nil {
		return Configuration{}, proto, err
	}
	if len(slotValue) != 8 {
		return Configuration{}, proto, ErrBadSlotDuration
	}
	slotDuration := binary.LittleEndian.Uint64(slotValue)
	if slotDuration == 0 {
		return Configuration{}, proto, ErrBadSlotDuration
	}

	authoritiesValue, proto, err := call(proto, authoritiesExport, access)
	if err != nil {
		return Configuration{}, proto, err
	}
	authorities, err := DecodeAuthorities(authoritiesValue)
	if err != nil {
		return Configuration{}, proto, fmt.Errorf("%w: %s", ErrAuthoritiesListDecode, err)
	}

	return Configuration{
		Authorities:  authorities,
		SlotDuration: slotDuration,
	}, proto, nil
}

// call starts the named export on [proto] and drives it to completion. Both
// runtime calls go through here so they can't diverge in how they answer
// host requests.
func call(proto host.Prototype, export string, access storage.Accessor) ([]byte, host.Prototype, error) {
	state, err := proto.Start(export)
	if err != nil {
		return nil, proto, &StartError{Export: export, Err: err}
	}
	return drive(state, access)
}
