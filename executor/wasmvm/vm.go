// Package wasmvm runs runtime calls on wasm modules through the wasmer
// engine, exposing them as the resumable states of executor/host.
//
// Host requests made by the guest are surfaced as suspended states instead of
// being serviced in place: the wasm call runs on its own goroutine and parks
// on a channel whenever it enters a host function, so the guest and the
// caller strictly alternate and never run at the same time.
//
// The host ABI lives in the "env" namespace. storage_get(ptr, len) returns
// the packed address (len<<32 | ptr) of a copy of the value, written to the
// heap granted by Config.HeapPages, or all-ones when the key has no value.
// Exports take no parameters and return their result the same packed way.
package wasmvm

import (
	"errors"
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/sabify/smoldot/executor/host"
)

const wasmPageSize = 64 * 1024

const (
	abiNamespace = "env"

	abiStorageGet  = "storage_get"
	abiStorageSet  = "storage_set"
	abiLogEmit     = "log_emit"
	abiMaxLogLevel = "max_log_level"
)

var abiFunctionNames = map[string]bool{
	abiStorageGet:  true,
	abiStorageSet:  true,
	abiLogEmit:     true,
	abiMaxLogLevel: true,
}

var (
	errNonFunctionImport = errors.New("module imports a non-function extern")
	errNoMemoryExport    = errors.New("module doesn't export its memory")
	errBadReturnValue    = errors.New("runtime call returned a malformed value")
	errOutOfHeap         = errors.New("out of heap space")
	errHeapTooLarge      = errors.New("requested heap doesn't fit in 32-bit memory")
	errMemoryGrowFailed  = errors.New("growing the guest memory failed")
	errAbandoned         = errors.New("call abandoned by the host")
)

var _ host.Prototype = (*prototype)(nil)

type prototype struct {
	store      *wasmer.Store
	module     *wasmer.Module
	config     host.Config
	unresolved []*wasmer.ImportType
}

// NewPrototype compiles [config.Module] into an idle, reusable prototype.
// Wasmer compiles ahead of time whatever the hint, so Config.ExecHint is
// accepted but has no effect here.
func NewPrototype(config host.Config) (host.Prototype, error) {
	store := wasmer.NewStore(wasmer.NewEngine())

	module, err := wasmer.NewModule(store, config.Module)
	if err != nil {
		return nil, fmt.Errorf("invalid module: %s", err)
	}

	var unresolved []*wasmer.ImportType
	for _, imported := range module.Imports() {
		if imported.Type().Kind() != wasmer.FUNCTION {
			return nil, fmt.Errorf("%w: %s.%s", errNonFunctionImport, imported.Module(), imported.Name())
		}
		if imported.Module() == abiNamespace && abiFunctionNames[imported.Name()] {
			continue
		}
		if !config.AllowUnresolvedImports {
			return nil, fmt.Errorf("unresolved import %s.%s", imported.Module(), imported.Name())
		}
		unresolved = append(unresolved, imported)
	}

	return &prototype{
		store:      store,
		module:     module,
		config:     config,
		unresolved: unresolved,
	}, nil
}

// Start implements host.Prototype. The returned state is a host.ReadyToRun;
// nothing executes until it is run. On error the prototype is untouched.
func (p *prototype) Start(export string) (host.State, error) {
	if err := p.checkExport(export); err != nil {
		return nil, err
	}

	r := &run{
		proto:    p,
		requests: make(chan hostRequest),
		result:   make(chan callResult, 1),
	}

	externs := map[string]map[string]wasmer.IntoExtern{
		abiNamespace: {
			abiStorageGet:  r.storageGetFunc(),
			abiStorageSet:  r.storageSetFunc(),
			abiLogEmit:     r.logEmitFunc(),
			abiMaxLogLevel: r.maxLogLevelFunc(),
		},
	}
	p.stubUnresolved(externs)

	imports := wasmer.NewImportObject()
	for namespace, functions := range externs {
		imports.Register(namespace, functions)
	}

	instance, err := wasmer.NewInstance(p.module, imports)
	if err != nil {
		return nil, fmt.Errorf("instantiation failed: %s", err)
	}

	memory, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, errNoMemoryExport
	}

	heapBase := uint64(memory.DataSize())
	heapLimit := heapBase + uint64(p.config.HeapPages)*wasmPageSize
	if heapLimit > 1<<32 {
		return nil, errHeapTooLarge
	}
	if p.config.HeapPages > 0 && !memory.Grow(wasmer.Pages(p.config.HeapPages)) {
		return nil, errMemoryGrowFailed
	}

	// checkExport already vouched for the export, so a failure here is an
	// instantiation problem, not a missing function.
	fn, err := instance.Exports.GetRawFunction(export)
	if err != nil {
		return nil, fmt.Errorf("retrieving export %q: %s", export, err)
	}

	r.instance = instance
	r.fn = fn
	r.memory = memory
	r.heapTop = heapBase
	r.heapLimit = heapLimit
	return &readyToRun{run: r}, nil
}

func (p *prototype) checkExport(export string) error {
	for _, exported := range p.module.Exports() {
		if exported.Name() != export {
			continue
		}
		if exported.Type().Kind() != wasmer.FUNCTION {
			return host.ErrNotAFunction
		}
		return nil
	}
	return host.ErrFunctionNotFound
}

// stubUnresolved fills every import outside the ABI with a function of the
// right signature that traps when called.
func (p *prototype) stubUnresolved(externs map[string]map[string]wasmer.IntoExtern) {
	for _, imported := range p.unresolved {
		namespace := externs[imported.Module()]
		if namespace == nil {
			namespace = make(map[string]wasmer.IntoExtern)
			externs[imported.Module()] = namespace
		}

		signature := imported.Type().IntoFunctionType()
		qualified := fmt.Sprintf("%s.%s", imported.Module(), imported.Name())
		namespace[imported.Name()] = wasmer.NewFunction(p.store,
			wasmer.NewFunctionType(signature.Params(), signature.Results()),
			func([]wasmer.Value) ([]wasmer.Value, error) {
				return nil, fmt.Errorf("unresolved import %s called", qualified)
			})
	}
}
