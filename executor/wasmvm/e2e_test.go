package wasmvm_test

// End-to-end retrieval through the real engine.

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabify/smoldot/aura"
	"github.com/sabify/smoldot/storage"
)

func TestAuraFromPrototype(t *testing.T) {
	assert := assert.New(t)

	proto := newTestPrototype(t, hostCallModule(), 1)
	access := storage.FromMap(map[string][]byte{
		"slot": leU64(6000),
	})

	config, proto, err := aura.FromPrototype(proto, access)
	require.NoError(t, err)
	assert.Equal(uint64(6000), config.SlotDuration)
	require.Len(t, config.Authorities, 1)
	for _, b := range config.Authorities[0].PublicKey {
		assert.Equal(byte(0xaa), b)
	}

	// the prototype lineage survives a full retrieval
	config, _, err = aura.FromPrototype(proto, access)
	assert.NoError(err)
	assert.Equal(uint64(6000), config.SlotDuration)
}

func TestAuraFromStorage(t *testing.T) {
	assert := assert.New(t)

	access := storage.FromMap(map[string][]byte{
		string(storage.CodeKey): hostCallModule(),
		"slot":                  leU64(6000),
	})

	config, err := aura.FromStorage(access)
	require.NoError(t, err)
	assert.Equal(uint64(6000), config.SlotDuration)
	assert.Len(config.Authorities, 1)
}

func TestAuraFromStorageZeroSlotDuration(t *testing.T) {
	assert := assert.New(t)

	access := storage.FromMap(map[string][]byte{
		string(storage.CodeKey): hostCallModule(),
		"slot":                  leU64(0),
	})

	_, err := aura.FromStorage(access)
	assert.ErrorIs(err, aura.ErrBadSlotDuration)
}

func TestAuraFromStorageInvalidModule(t *testing.T) {
	assert := assert.New(t)

	access := storage.FromMap(map[string][]byte{
		string(storage.CodeKey): {0xde, 0xad},
	})

	_, err := aura.FromStorage(access)
	assert.ErrorIs(err, aura.ErrVMInitialization)
}

func TestAuraChainWithoutAura(t *testing.T) {
	assert := assert.New(t)

	// no exports at all
	proto := newTestPrototype(t, wasmModule(), 0)
	_, _, err := aura.FromPrototype(proto, storage.FromMap(nil))
	assert.True(aura.IsFunctionNotFound(err))

	// slot duration present but no authorities export
	proto = newTestPrototype(t, constSlotModule(), 0)
	_, _, err = aura.FromPrototype(proto, storage.FromMap(nil))
	assert.True(aura.IsFunctionNotFound(err))
}

func TestAuraHostFunctionNotAllowed(t *testing.T) {
	assert := assert.New(t)

	proto := newTestPrototype(t, storageSetModule(), 1)
	_, _, err := aura.FromPrototype(proto, storage.FromMap(nil))
	assert.ErrorIs(err, aura.ErrHostFunctionNotAllowed)
}

// A retrieval that fails on a disallowed host call must not leave the guest
// goroutine parked behind it; repeated failures would otherwise accumulate a
// goroutine and a live instance per attempt.
func TestHostFunctionNotAllowedReleasesRun(t *testing.T) {
	assert := assert.New(t)

	before := runtime.NumGoroutine()

	for i := 0; i < 10; i++ {
		proto := newTestPrototype(t, storageSetModule(), 1)
		_, _, err := aura.FromPrototype(proto, storage.FromMap(nil))
		assert.ErrorIs(err, aura.ErrHostFunctionNotAllowed)
	}

	// the abandoned call goroutines exit right after being unparked; give
	// the scheduler a moment to reap them. Polled from the test goroutine
	// itself: assert.Eventually runs its condition on a fresh goroutine,
	// which by itself keeps runtime.NumGoroutine() above the baseline.
	deadline := time.Now().Add(5 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(runtime.NumGoroutine(), before)
}

func TestAuraTrapped(t *testing.T) {
	assert := assert.New(t)

	proto := newTestPrototype(t, trapModule(), 0)
	_, _, err := aura.FromPrototype(proto, storage.FromMap(nil))
	assert.ErrorIs(err, aura.ErrTrapped)
}
