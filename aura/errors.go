package aura

import (
	"errors"
	"fmt"

	"github.com/sabify/smoldot/executor/host"
)

var (
	// ErrRuntimeNotFound means the storage has no runtime code under ":code".
	ErrRuntimeNotFound = errors.New("runtime code not found in storage")

	// ErrInvalidHeapPages means the ":heappages" storage value is malformed.
	ErrInvalidHeapPages = errors.New("failed to decode heap pages from storage")

	// ErrVMInitialization means the engine rejected the runtime module.
	ErrVMInitialization = errors.New("failed to initialize virtual machine")

	// ErrTrapped means the runtime faulted while executing.
	ErrTrapped = errors.New("runtime trapped during execution")

	// ErrHostFunctionNotAllowed means the runtime asked for a host capability
	// outside the small set this retrieval services.
	ErrHostFunctionNotAllowed = errors.New("runtime called a host function not allowed in this context")

	// ErrBadSlotDuration means the slot duration returned by the runtime is
	// not exactly 8 bytes or decodes to zero.
	ErrBadSlotDuration = errors.New("invalid slot duration returned by runtime")

	// ErrAuthoritiesListDecode means the authorities list returned by the
	// runtime can't be decoded.
	ErrAuthoritiesListDecode = errors.New("failed to decode authorities list returned by runtime")
)

// StartError is returned when a runtime call can't even be started. The
// prototype passed in is untouched and can be reused.
type StartError struct {
	// Export is the name of the runtime entry point that failed to start.
	Export string
	Err    error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("cannot start runtime call %q: %s", e.Export, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// IsFunctionNotFound reports whether [err] means the queried runtime entry
// point doesn't exist, as opposed to a genuine failure. Chains that don't use
// Aura at all are detected this way.
func IsFunctionNotFound(err error) bool {
	var startErr *StartError
	if !errors.As(err, &startErr) {
		return false
	}
	return errors.Is(startErr.Err, host.ErrFunctionNotFound) ||
		errors.Is(startErr.Err, host.ErrNotAFunction)
}
