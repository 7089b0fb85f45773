package wasmvm

import (
	"github.com/sabify/smoldot/executor/host"
)

var (
	_ host.ReadyToRun         = (*readyToRun)(nil)
	_ host.Finished           = (*finished)(nil)
	_ host.Trapped            = (*trapped)(nil)
	_ host.ExternalStorageGet = (*externalStorageGet)(nil)
	_ host.ExternalStorageSet = (*externalStorageSet)(nil)
	_ host.GetMaxLogLevel     = (*getMaxLogLevel)(nil)
	_ host.LogEmit            = (*logEmit)(nil)

	_ host.Abandoner = (*externalStorageGet)(nil)
	_ host.Abandoner = (*externalStorageSet)(nil)
	_ host.Abandoner = (*getMaxLogLevel)(nil)
	_ host.Abandoner = (*logEmit)(nil)
)

type readyToRun struct {
	host.StateTag
	run *run
}

func (s *readyToRun) Run() host.State { return s.run.next() }

type finished struct {
	host.StateTag
	value []byte
	proto *prototype
}

func (s *finished) Value() []byte             { return s.value }
func (s *finished) Prototype() host.Prototype { return s.proto }

type trapped struct {
	host.StateTag
	err error
}

func (s *trapped) Err() error { return s.err }

type externalStorageGet struct {
	host.StateTag
	run     *run
	request hostRequest
}

func (s *externalStorageGet) Key() []byte { return s.request.key }

func (s *externalStorageGet) Resume(value []byte, found bool) host.State {
	reply := hostReply{packed: absentValue}
	if found {
		if ptr, err := s.run.allocate(value); err != nil {
			reply = hostReply{err: err}
		} else {
			reply = hostReply{packed: uint64(len(value))<<32 | uint64(ptr)}
		}
	}
	s.request.reply <- reply
	return &readyToRun{run: s.run}
}

func (s *externalStorageGet) Abandon() { s.run.abandon(s.request) }

type externalStorageSet struct {
	host.StateTag
	run     *run
	request hostRequest
}

func (s *externalStorageSet) Key() []byte   { return s.request.key }
func (s *externalStorageSet) Value() []byte { return s.request.value }

func (s *externalStorageSet) Resume() host.State {
	s.request.reply <- hostReply{}
	return &readyToRun{run: s.run}
}

func (s *externalStorageSet) Abandon() { s.run.abandon(s.request) }

type getMaxLogLevel struct {
	host.StateTag
	run     *run
	request hostRequest
}

func (s *getMaxLogLevel) Resume(level uint32) host.State {
	s.request.reply <- hostReply{packed: uint64(level)}
	return &readyToRun{run: s.run}
}

func (s *getMaxLogLevel) Abandon() { s.run.abandon(s.request) }

type logEmit struct {
	host.StateTag
	run     *run
	request hostRequest
}

func (s *logEmit) Message() string { return string(s.request.value) }

func (s *logEmit) Resume() host.State {
	s.request.reply <- hostReply{}
	return &readyToRun{run: s.run}
}

func (s *logEmit) Abandon() { s.run.abandon(s.request) }
