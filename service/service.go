// Package service exposes the Aura configuration retrieval over JSON-RPC.
package service

import (
	"net/http"
	"sync"

	"github.com/gorilla/rpc/v2"

	"github.com/ava-labs/avalanchego/utils/formatting"
	cjson "github.com/ava-labs/avalanchego/utils/json"

	"github.com/sabify/smoldot/aura"
	"github.com/sabify/smoldot/executor/host"
	"github.com/sabify/smoldot/storage"
)

// Service answers requests about the Aura configuration of a chain, reading
// the chain state through a storage accessor.
type Service struct {
	access storage.Accessor

	// The compiled runtime is kept across requests; each retrieval hands the
	// prototype back so the module is only ever compiled once.
	lock  sync.Mutex
	proto host.Prototype
}

// New returns a service reading chain state from [access]. [proto] may be
// nil, in which case every request compiles the runtime from the ":code"
// storage entry instead of reusing a compiled module.
func New(access storage.Accessor, proto host.Prototype) *Service {
	return &Service{access: access, proto: proto}
}

// GetConfigurationArgs are the arguments to GetConfiguration
type GetConfigurationArgs struct{}

// GetConfigurationReply is the reply from GetConfiguration
type GetConfigurationReply struct {
	// SlotDuration of the chain, in milliseconds
	SlotDuration cjson.Uint64 `json:"slotDuration"`
	// Authorities allowed to author blocks, hex-encoded, in rotation order
	Authorities []string `json:"authorities"`
}

// GetConfiguration retrieves the Aura configuration of the chain
func (s *Service) GetConfiguration(_ *http.Request, _ *GetConfigurationArgs, reply *GetConfigurationReply) error {
	config, err := s.configuration()
	if err != nil {
		return err
	}

	reply.SlotDuration = cjson.Uint64(config.SlotDuration)
	reply.Authorities = make([]string, len(config.Authorities))
	for i, authority := range config.Authorities {
		encoded, err := formatting.EncodeWithChecksum(formatting.Hex, authority.PublicKey[:])
		if err != nil {
			return err
		}
		reply.Authorities[i] = encoded
	}
	return nil
}

func (s *Service) configuration() (aura.Configuration, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.proto == nil {
		return aura.FromStorage(s.access)
	}

	config, proto, err := aura.FromPrototype(s.proto, s.access)
	if proto != nil {
		s.proto = proto
	}
	return config, err
}

// NewHandler returns an HTTP handler answering requests to the "aura"
// JSON-RPC service.
func NewHandler(access storage.Accessor, proto host.Prototype) (http.Handler, error) {
	server := rpc.NewServer()
	codec := cjson.NewCodec()
	server.RegisterCodec(codec, "application/json")
	server.RegisterCodec(codec, "application/json;charset=UTF-8")
	return server, server.RegisterService(New(access, proto), aura.Name)
}
