// Package client talks to a node exposing the aura JSON-RPC service.
package client

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/formatting"
	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/sabify/smoldot/aura"
	"github.com/sabify/smoldot/service"
)

// Client defines aura service client operations.
type Client interface {
	// GetConfiguration fetches the Aura configuration of the chain.
	GetConfiguration(ctx context.Context) (aura.Configuration, error)
}

// New creates a new client object.
func New(uri string) Client {
	req := rpc.NewEndpointRequester(uri, "", aura.Name)
	return &client{req: req}
}

type client struct {
	req rpc.EndpointRequester
}

func (cli *client) GetConfiguration(ctx context.Context) (aura.Configuration, error) {
	resp := new(service.GetConfigurationReply)
	err := cli.req.SendRequest(ctx,
		"getConfiguration",
		&service.GetConfigurationArgs{},
		resp,
	)
	if err != nil {
		return aura.Configuration{}, err
	}

	config := aura.Configuration{
		SlotDuration: uint64(resp.SlotDuration),
		Authorities:  make([]aura.Authority, len(resp.Authorities)),
	}
	for i, encoded := range resp.Authorities {
		decoded, err := formatting.Decode(formatting.Hex, encoded)
		if err != nil {
			return aura.Configuration{}, err
		}
		if len(decoded) != aura.PublicKeyLen {
			return aura.Configuration{}, fmt.Errorf("authority %d has length %d, expected %d", i, len(decoded), aura.PublicKeyLen)
		}
		copy(config.Authorities[i].PublicKey[:], decoded)
	}
	return config, nil
}
