package aura

import (
	"errors"

	"github.com/sabify/smoldot/scale"
)

// PublicKeyLen is the length of an authority public key.
const PublicKeyLen = 32

var errAuthoritiesLength = errors.New("authorities list has wrong length")

// Authority is an identity allowed to author blocks during its assigned
// slots.
type Authority struct {
	// PublicKey is the sr25519 public key the authority seals blocks with.
	PublicKey [PublicKeyLen]byte
}

// DecodeAuthorities decodes the SCALE-encoded list of authorities returned
// by "AuraApi_authorities": a compact count followed by that many public
// keys. The whole of [b] must be consumed.
func DecodeAuthorities(b []byte) ([]Authority, error) {
	count, read, err := scale.DecodeCompact(b)
	if err != nil {
		return nil, err
	}
	b = b[read:]

	if count > uint64(len(b))/PublicKeyLen || uint64(len(b)) != count*PublicKeyLen {
		return nil, errAuthoritiesLength
	}

	authorities := make([]Authority, count)
	for i := range authorities {
		copy(authorities[i].PublicKey[:], b[:PublicKeyLen])
		b = b[PublicKeyLen:]
	}
	return authorities, nil
}
