package hdkeystore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
)

// HDPubKeyCurrentVersion is the version number written with serialized
// HDPubKey records.
const HDPubKeyCurrentVersion = 1

// KeyID is the 160-bit hash of a serialized compressed public key.
type KeyID [20]byte

// NewKeyID computes the key id of a serialized public key.
func NewKeyID(pubKey []byte) KeyID {
	var id KeyID
	copy(id[:], btcutil.Hash160(pubKey))
	return id
}

// HDPubKey is the public half of a derived hd key together with the
// coordinates needed to re-derive its private key from the master seed:
// the owning chain and the fully materialized keypath that produced it.
// Records are value types; once loaded into a keystore they are never
// mutated.
type HDPubKey struct {
	Version int32
	// PubKey is the 33-byte compressed EC point.
	PubKey []byte
	// ChildIndex is the final keypath segment, always below the hardened
	// key start since address-level public derivation is never hardened.
	ChildIndex uint32
	ChainID    ChainID
	// KeyPath is the materialized path of the key, chain switch already
	// substituted and hardened markers present, e.g. "m/44'/0'/0'/0/1".
	KeyPath  string
	Internal bool
}

// KeyID returns the catalog key of the record.
func (k HDPubKey) KeyID() KeyID {
	return NewKeyID(k.PubKey)
}

// Validate returns an error if the record cannot be loaded into a keystore.
func (k HDPubKey) Validate() error {
	if _, err := btcec.ParsePubKey(k.PubKey); err != nil {
		return ErrInvalidPubKey
	}
	if k.ChildIndex >= MaxChildIndex {
		return ErrIndexExhausted
	}
	path, err := ParseKeyPath(k.KeyPath)
	if err != nil {
		return err
	}
	if path.HasChainSwitch() {
		return fmt.Errorf(
			"%w: keypath must be materialized", ErrInvalidKeyPath,
		)
	}
	return nil
}

// copyHDPubKey deep-copies a record so callers never alias the catalog's
// pubkey bytes.
func copyHDPubKey(k HDPubKey) HDPubKey {
	out := k
	if k.PubKey != nil {
		out.PubKey = make([]byte, len(k.PubKey))
		copy(out.PubKey, k.PubKey)
	}
	return out
}
