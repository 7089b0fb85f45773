package wasmvm

import (
	"fmt"

	"github.com/wasmerio/wasmer-go/wasmer"

	"github.com/sabify/smoldot/executor/host"
)

// absentValue is what storage_get returns for a key with no value.
const absentValue = ^uint64(0)

type requestKind uint8

const (
	reqStorageGet requestKind = iota
	reqStorageSet
	reqLogEmit
	reqMaxLogLevel
)

type hostRequest struct {
	kind  requestKind
	key   []byte
	value []byte
	reply chan hostReply
}

type hostReply struct {
	packed uint64
	err    error
}

type callResult struct {
	value []byte
	err   error
}

// run is one in-flight call of an export. The wasm execution happens on its
// own goroutine; it parks on [requests] inside every host function while the
// driving side parks on the matching reply channel, so exactly one of the
// two is ever running.
type run struct {
	proto *prototype

	// instance is kept referenced for the whole run so its finalizer can't
	// free the wasm state while fn and memory are still in use.
	instance  *wasmer.Instance
	fn        *wasmer.Function
	memory    *wasmer.Memory
	heapTop   uint64
	heapLimit uint64
	requests  chan hostRequest
	result    chan callResult
	started   bool
}

func (r *run) call() {
	out, err := r.fn.Call()
	if err != nil {
		r.result <- callResult{err: err}
		return
	}
	packed, ok := out.(int64)
	if !ok {
		r.result <- callResult{err: errBadReturnValue}
		return
	}
	value, err := r.readMemory(uint32(packed), uint32(uint64(packed)>>32))
	r.result <- callResult{value: value, err: err}
}

// next parks until the guest either enters a host function or returns, and
// converts whichever happens into the corresponding state.
func (r *run) next() host.State {
	if !r.started {
		r.started = true
		go r.call()
	}

	select {
	case request := <-r.requests:
		switch request.kind {
		case reqStorageGet:
			return &externalStorageGet{run: r, request: request}
		case reqStorageSet:
			return &externalStorageSet{run: r, request: request}
		case reqLogEmit:
			return &logEmit{run: r, request: request}
		default:
			return &getMaxLogLevel{run: r, request: request}
		}
	case result := <-r.result:
		if result.err != nil {
			return &trapped{err: result.err}
		}
		return &finished{value: result.value, proto: r.proto}
	}
}

// ask hands a request to the driving side and parks the guest goroutine
// until the matching resume.
func (r *run) ask(request hostRequest) hostReply {
	request.reply = make(chan hostReply)
	r.requests <- request
	return <-request.reply
}

// abandon unparks the guest with an error so the pending host function
// traps, then waits for the call goroutine to finish. After abandon the run
// holds no goroutine and the instance can be collected.
func (r *run) abandon(request hostRequest) {
	request.reply <- hostReply{err: errAbandoned}
	<-r.result
}

func (r *run) readMemory(ptr, length uint32) ([]byte, error) {
	data := r.memory.Data()
	end := uint64(ptr) + uint64(length)
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("out-of-range memory read at %d+%d", ptr, length)
	}
	return append([]byte(nil), data[ptr:end]...), nil
}

// allocate copies [value] into the guest heap and returns its address.
func (r *run) allocate(value []byte) (uint32, error) {
	size := uint64(len(value))
	if r.heapTop+size > r.heapLimit {
		return 0, errOutOfHeap
	}
	ptr := uint32(r.heapTop)
	copy(r.memory.Data()[r.heapTop:r.heapTop+size], value)
	r.heapTop += size
	return ptr, nil
}

func (r *run) storageGetFunc() wasmer.IntoExtern {
	signature := wasmer.NewFunctionType(
		wasmer.NewValueTypes(wasmer.I32, wasmer.I32),
		wasmer.NewValueTypes(wasmer.I64),
	)
	return wasmer.NewFunction(r.proto.store, signature, func(args []wasmer.Value) ([]wasmer.Value, error) {
		key, err := r.readMemory(uint32(args[0].I32()), uint32(args[1].I32()))
		if err != nil {
			return nil, err
		}
		reply := r.ask(hostRequest{kind: reqStorageGet, key: key})
		if reply.err != nil {
			return nil, reply.err
		}
		return []wasmer.Value{wasmer.NewI64(int64(reply.packed))}, nil
	})
}

func (r *run) storageSetFunc() wasmer.IntoExtern {
	signature := wasmer.NewFunctionType(
		wasmer.NewValueTypes(wasmer.I32, wasmer.I32, wasmer.I32, wasmer.I32),
		wasmer.NewValueTypes(),
	)
	return wasmer.NewFunction(r.proto.store, signature, func(args []wasmer.Value) ([]wasmer.Value, error) {
		key, err := r.readMemory(uint32(args[0].I32()), uint32(args[1].I32()))
		if err != nil {
			return nil, err
		}
		value, err := r.readMemory(uint32(args[2].I32()), uint32(args[3].I32()))
		if err != nil {
			return nil, err
		}
		reply := r.ask(hostRequest{kind: reqStorageSet, key: key, value: value})
		if reply.err != nil {
			return nil, reply.err
		}
		return []wasmer.Value{}, nil
	})
}

func (r *run) logEmitFunc() wasmer.IntoExtern {
	signature := wasmer.NewFunctionType(
		wasmer.NewValueTypes(wasmer.I32, wasmer.I32),
		wasmer.NewValueTypes(),
	)
	return wasmer.NewFunction(r.proto.store, signature, func(args []wasmer.Value) ([]wasmer.Value, error) {
		message, err := r.readMemory(uint32(args[0].I32()), uint32(args[1].I32()))
		if err != nil {
			return nil, err
		}
		reply := r.ask(hostRequest{kind: reqLogEmit, value: message})
		if reply.err != nil {
			return nil, reply.err
		}
		return []wasmer.Value{}, nil
	})
}

func (r *run) maxLogLevelFunc() wasmer.IntoExtern {
	signature := wasmer.NewFunctionType(
		wasmer.NewValueTypes(),
		wasmer.NewValueTypes(wasmer.I32),
	)
	return wasmer.NewFunction(r.proto.store, signature, func([]wasmer.Value) ([]wasmer.Value, error) {
		reply := r.ask(hostRequest{kind: reqMaxLogLevel})
		if reply.err != nil {
			return nil, reply.err
		}
		return []wasmer.Value{wasmer.NewI32(int32(reply.packed))}, nil
	})
}
