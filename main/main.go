// auraquery retrieves the Aura consensus configuration from a chain state
// snapshot by executing the chain's own runtime, and either prints it or
// serves it over JSON-RPC.
package main

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	log "github.com/inconshreveable/log15"

	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/sabify/smoldot/aura"
	"github.com/sabify/smoldot/service"
	"github.com/sabify/smoldot/storage"
)

func main() {
	params, err := GetParams()
	if err != nil {
		fmt.Printf("couldn't get params: %s\n", err)
		os.Exit(1)
	}

	if params.Version {
		fmt.Printf("%s@%s\n", aura.Name, aura.Version)
		os.Exit(0)
	}

	access, err := buildAccessor(params)
	if err != nil {
		log.Error("couldn't load chain state", "error", err)
		os.Exit(1)
	}

	if params.ServeAddr != "" {
		handler, err := service.NewHandler(access, nil)
		if err != nil {
			log.Error("couldn't create handler", "error", err)
			os.Exit(1)
		}
		log.Info("serving aura service", "address", params.ServeAddr)
		if err := http.ListenAndServe(params.ServeAddr, handler); err != nil {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	config, err := aura.FromStorage(access)
	if err != nil {
		if aura.IsFunctionNotFound(err) {
			log.Error("this chain doesn't implement the Aura API")
		} else {
			log.Error("retrieval failed", "error", err)
		}
		os.Exit(1)
	}

	log.Info("retrieved aura configuration",
		"slotDurationMs", config.SlotDuration,
		"authorities", len(config.Authorities),
	)
	for i, authority := range config.Authorities {
		fmt.Printf("authority %d: %s\n", i, hex.EncodeToString(authority.PublicKey[:]))
	}
}

// buildAccessor loads the snapshot and the overrides into an in-memory
// database and wraps it in an accessor.
func buildAccessor(params Params) (storage.Accessor, error) {
	db := memdb.New()

	if params.SnapshotPath != "" {
		raw, err := os.ReadFile(params.SnapshotPath)
		if err != nil {
			return nil, err
		}
		entries := map[string]string{}
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("malformed snapshot: %s", err)
		}
		for hexKey, hexValue := range entries {
			key, err := decodeHex(hexKey)
			if err != nil {
				return nil, fmt.Errorf("malformed snapshot key %q: %s", hexKey, err)
			}
			value, err := decodeHex(hexValue)
			if err != nil {
				return nil, fmt.Errorf("malformed snapshot value for key %q: %s", hexKey, err)
			}
			if err := db.Put(key, value); err != nil {
				return nil, err
			}
		}
	}

	if params.WasmPath != "" {
		code, err := os.ReadFile(params.WasmPath)
		if err != nil {
			return nil, err
		}
		if err := db.Put(storage.CodeKey, code); err != nil {
			return nil, err
		}
	}

	if params.HeapPages >= 0 {
		encoded := make([]byte, 8)
		binary.LittleEndian.PutUint64(encoded, uint64(params.HeapPages))
		if err := db.Put(storage.HeapPagesKey, encoded); err != nil {
			return nil, err
		}
	}

	return storage.FromDatabase(db), nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
