// Package host defines the surface between a compiled runtime module and the
// code that drives calls into it.
//
// A Prototype is an idle, reusable compiled module. Starting an export yields
// a State, a paused computation that is advanced one step at a time. Each
// State value is consumed by the step that observes it and replaced by the
// next one; a State must never be resumed twice.
package host

import "errors"

// ExecHint gives the engine a hint about how the module is going to be used.
type ExecHint uint8

const (
	// ExecHintOneshot hints that the module will be called a small number of
	// times, favoring cheap instantiation over compilation effort.
	ExecHintOneshot ExecHint = iota
	// ExecHintCompileAheadOfTime hints that the module will be called many
	// times.
	ExecHintCompileAheadOfTime
)

// Config describes how to compile a runtime module into a Prototype.
type Config struct {
	// Module is the wasm bytecode.
	Module []byte

	// HeapPages is the number of 64 KiB pages of linear memory granted to
	// the runtime on top of its initial memory.
	HeapPages uint32

	// ExecHint tunes the engine for the expected usage pattern.
	ExecHint ExecHint

	// AllowUnresolvedImports makes imports outside the host ABI resolve to
	// functions that trap when called, instead of failing compilation.
	AllowUnresolvedImports bool
}

var (
	// ErrFunctionNotFound is returned by Start when the module has no export
	// with the requested name.
	ErrFunctionNotFound = errors.New("function not found")

	// ErrNotAFunction is returned by Start when the requested export exists
	// but is not a function.
	ErrNotAFunction = errors.New("export is not a function")
)

// Prototype is an idle, reusable compiled runtime module.
type Prototype interface {
	// Start begins a call of the named no-argument export and returns the
	// initial state of the computation. On error the prototype is untouched
	// and remains usable.
	Start(export string) (State, error)
}

// State is one step of a paused runtime call. Exactly one of the variant
// interfaces below is implemented by any given value. Observing a state
// consumes it: call its resume method once and use the returned State from
// then on.
type State interface {
	isVMState()
}

// StateTag is embedded by engine implementations to mark a type as a State.
type StateTag struct{}

func (StateTag) isVMState() {}

// ReadyToRun is a computation that can be advanced with no external input.
type ReadyToRun interface {
	State
	Run() State
}

// Finished is a successfully completed call.
type Finished interface {
	State
	// Value returns the bytes produced by the call.
	Value() []byte
	// Prototype returns the module, idle again and ready for another call.
	Prototype() Prototype
}

// Trapped is a call that faulted during execution.
type Trapped interface {
	State
	Err() error
}

// ExternalStorageGet is a computation suspended on a storage lookup.
type ExternalStorageGet interface {
	State
	Key() []byte
	// Resume supplies the storage value. found is false when the key has no
	// value, which is distinct from an empty value.
	Resume(value []byte, found bool) State
}

// ExternalStorageSet is a computation suspended on a storage write.
type ExternalStorageSet interface {
	State
	Key() []byte
	Value() []byte
	Resume() State
}

// GetMaxLogLevel is a computation asking for the maximum log level the host
// wants to receive.
type GetMaxLogLevel interface {
	State
	Resume(level uint32) State
}

// LogEmit is a computation suspended on a log message.
type LogEmit interface {
	State
	Message() string
	Resume() State
}

// Abandoner is implemented by suspended states that can be terminated
// instead of resumed. Abandon ends the call and releases everything the
// paused computation holds; like a resume, it consumes the state. A driver
// that refuses to service a suspension must abandon it rather than drop it.
type Abandoner interface {
	Abandon()
}
