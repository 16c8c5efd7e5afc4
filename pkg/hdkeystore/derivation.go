package hdkeystore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// privKeyDer executes a fully materialized keypath against the master seed
// of a chain and returns the resulting extended private key. The caller owns
// the returned key and must Zero it when done.
//
// No lock is held here: the keystore mutex is taken only inside
// GetMasterSeed, never across the EC math.
func (ks *HDKeyStore) privKeyDer(
	keypath string, chainID ChainID,
) (*hdkeychain.ExtendedKey, error) {
	path, err := ParseKeyPath(keypath)
	if err != nil {
		return nil, err
	}
	if path.HasChainSwitch() {
		return nil, fmt.Errorf(
			"%w: chain switch token not materialized", ErrInvalidKeyPath,
		)
	}

	seed, err := ks.GetMasterSeed(chainID)
	if err != nil {
		return nil, err
	}
	defer zeroBytes(seed)

	var key *hdkeychain.ExtendedKey
	if len(seed) == BIP32ExtKeySize {
		// A seed of exactly the extended key size is an encoded extended
		// private key, not raw entropy.
		key, err = DecodeExtendedPrivateKey(seed, ks.net)
		if err != nil {
			return nil, err
		}
	} else {
		key, err = hdkeychain.NewMaster(seed, ks.net)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSeedEncodingInvalid, err)
		}
	}

	for _, segment := range path[1:] {
		childKey, err := key.Derive(segment.childIndex())
		if err != nil {
			key.Zero()
			return nil, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
		}
		key.Zero()
		key = childKey
	}
	return key, nil
}

// deriveKey recovers the private key of a catalog record by re-deriving its
// stored keypath from the chain's master seed.
func (ks *HDKeyStore) deriveKey(hdPubKey HDPubKey) (*btcec.PrivateKey, error) {
	extKey, err := ks.privKeyDer(hdPubKey.KeyPath, hdPubKey.ChainID)
	if err != nil {
		return nil, err
	}
	defer extKey.Zero()

	return extKey.ECPrivKey()
}
