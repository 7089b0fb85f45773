package aura

import (
	"fmt"

	"github.com/sabify/smoldot/executor/host"
	"github.com/sabify/smoldot/storage"
)

// Log level handed to the runtime for every call made by this package. The
// retrieval never wants runtime log output, so the level is pinned to "off"
// and emitted messages are discarded.
const maxLogLevelOff = 0

// drive advances [state] until the runtime call terminates, servicing
// storage reads from [access]. On success it returns the raw bytes produced
// by the call and the prototype, idle again.
//
// Each iteration consumes the current state and replaces it with the next
// one, so a state is never resumed twice.
func drive(state host.State, access storage.Accessor) ([]byte, host.Prototype, error) {
	for {
		switch current := state.(type) {
		case host.ReadyToRun:
			state = current.Run()

		case host.Finished:
			return current.Value(), current.Prototype(), nil

		case host.Trapped:
			if cause := current.Err(); cause != nil {
				return nil, nil, fmt.Errorf("%w: %s", ErrTrapped, cause)
			}
			return nil, nil, ErrTrapped

		case host.ExternalStorageGet:
			value, found := access(current.Key())
			state = current.Resume(value, found)

		case host.GetMaxLogLevel:
			state = current.Resume(maxLogLevelOff)

		case host.LogEmit:
			state = current.Resume()

		default:
			// Unserviced suspensions still hold the paused call's resources,
			// so terminate the run rather than walk away from it.
			if suspended, ok := state.(host.Abandoner); ok {
				suspended.Abandon()
			}
			return nil, nil, ErrHostFunctionNotAllowed
		}
	}
}
