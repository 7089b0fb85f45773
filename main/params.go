package main

import (
	"flag"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey   = "version"
	wasmKey      = "wasm"
	snapshotKey  = "snapshot"
	heapPagesKey = "heap-pages"
	serveKey     = "serve"
)

// Params of the query binary.
type Params struct {
	// Version makes the binary print its version and quit.
	Version bool
	// WasmPath points at a runtime module, overriding the ":code" entry of
	// the snapshot.
	WasmPath string
	// SnapshotPath points at a JSON storage snapshot (hex keys to hex
	// values).
	SnapshotPath string
	// HeapPages overrides the ":heappages" entry of the snapshot when
	// non-negative.
	HeapPages int64
	// ServeAddr, when set, serves the aura JSON-RPC service on this address
	// instead of printing the configuration once.
	ServeAddr string
}

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("auraquery", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints version and quits")
	fs.String(wasmKey, "", "Path to a runtime wasm module, overriding the snapshot's :code entry")
	fs.String(snapshotKey, "", "Path to a JSON storage snapshot (hex keys to hex values)")
	fs.Int64(heapPagesKey, -1, "Heap pages granted to the runtime, overriding the snapshot's :heappages entry")
	fs.String(serveKey, "", "If set, serves the aura JSON-RPC service on this address")

	return fs
}

// getViper returns the viper environment for the query binary
func getViper() (*viper.Viper, error) {
	v := viper.New()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}

func GetParams() (Params, error) {
	v, err := getViper()
	if err != nil {
		return Params{}, err
	}

	return Params{
		Version:      v.GetBool(versionKey),
		WasmPath:     v.GetString(wasmKey),
		SnapshotPath: v.GetString(snapshotKey),
		HeapPages:    v.GetInt64(heapPagesKey),
		ServeAddr:    v.GetString(serveKey),
	}, nil
}
