package hdkeystore

import (
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// HDChainCurrentVersion is the version number written with serialized
// HDChain records.
const HDChainCurrentVersion = 1

// ChainID identifies a hd chain as the hash of its master extended public
// key. Two equal chain ids imply equal master seeds.
type ChainID chainhash.Hash

// String returns the chain id as a hex string.
func (id ChainID) String() string {
	hash := chainhash.Hash(id)
	return hash.String()
}

// NewChainID computes the chain id of the chain whose master key neuters to
// the given extended public key.
func NewChainID(masterPubKey *hdkeychain.ExtendedKey) (ChainID, error) {
	pubKey, err := masterPubKey.ECPubKey()
	if err != nil {
		return ChainID{}, err
	}
	return ChainID(chainhash.DoubleHashH(pubKey.SerializeCompressed())), nil
}

// HDChain describes a hd chain of keys: the keypath template all its keys
// share and, for chains supporting public-only derivation, the external and
// internal chain root extended public keys.
type HDChain struct {
	Version    int32
	CreateTime int64 // 0 means unknown
	ChainID    ChainID
	// KeypathTemplate is the shared keypath prefix, optionally containing
	// the chain-switch token, e.g. "m/44'/0'/0'/c".
	KeypathTemplate string
	// UsePubCKD marks chains whose address-level keys are derived from the
	// chain root extended public keys rather than from the master seed.
	UsePubCKD bool
	// ExternalPubKey and InternalPubKey are 74-byte encoded extended public
	// keys. InternalPubKey may be nil, in which case only the external
	// chain is available for public derivation.
	ExternalPubKey []byte
	InternalPubKey []byte
}

// NewHDChain returns an empty chain with the current version and the given
// creation time.
func NewHDChain(createTime int64) HDChain {
	return HDChain{
		Version:    HDChainCurrentVersion,
		CreateTime: createTime,
	}
}

// Validate returns an error if the chain cannot be added to a keystore: the
// keypath template must be non-empty and parse as a keypath, chain-switch
// token included, and a chain flagged for public derivation must carry a decodable external
// chain root.
func (c HDChain) Validate(net *chaincfg.Params) error {
	if c.KeypathTemplate == "" {
		return ErrInvalidChain
	}
	if _, err := ParseKeyPath(c.KeypathTemplate); err != nil {
		return err
	}
	if c.UsePubCKD {
		if _, err := DecodeExtendedPublicKey(c.ExternalPubKey, net); err != nil {
			return ErrInvalidChain
		}
	}
	return nil
}

// copyChain deep-copies a chain so callers never alias the registry's byte
// slices.
func copyChain(c HDChain) HDChain {
	out := c
	if c.ExternalPubKey != nil {
		out.ExternalPubKey = make([]byte, len(c.ExternalPubKey))
		copy(out.ExternalPubKey, c.ExternalPubKey)
	}
	if c.InternalPubKey != nil {
		out.InternalPubKey = make([]byte, len(c.InternalPubKey))
		copy(out.InternalPubKey, c.InternalPubKey)
	}
	return out
}
