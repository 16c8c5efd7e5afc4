package hdkeystore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
)

// NewHDKeyStoreOpts is the struct given to NewHDKeyStore.
type NewHDKeyStoreOpts struct {
	// Cypher wraps master seeds at rest. Leave nil for a keystore that
	// keeps its seeds in plaintext for its whole lifetime.
	Cypher SeedCypher
	// BaseStore serves lookups for non-hd keys. Leave nil for an empty
	// in-memory store.
	BaseStore BaseKeyStore
	// Net selects the extended key version bytes. Leave nil for mainnet.
	Net *chaincfg.Params
}

func (o NewHDKeyStoreOpts) validate() error {
	return nil
}

// HDKeyStore is an in-memory custodian for BIP32 key trees. It owns the
// master seeds of one or more hd chains, the per-chain metadata, and a
// catalog of derived public keys addressable by key id; private keys are
// never stored but re-derived from the seed on demand.
//
// A single mutex serializes every access to the owned maps. Derivation
// itself runs outside the lock, it is pure CPU work over copied state.
type HDKeyStore struct {
	mtx sync.Mutex

	net    *chaincfg.Params
	cypher SeedCypher
	base   BaseKeyStore

	vault     *seedVault
	chains    map[ChainID]HDChain
	hdPubKeys map[KeyID]HDPubKey
}

// NewHDKeyStore returns an empty keystore composed with the given
// collaborators.
func NewHDKeyStore(opts NewHDKeyStoreOpts) (*HDKeyStore, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cypher := opts.Cypher
	if cypher == nil {
		cypher = plainCypher{}
	}
	base := opts.BaseStore
	if base == nil {
		base = NewMemoryKeyStore()
	}
	net := opts.Net
	if net == nil {
		net = &chaincfg.MainNetParams
	}

	return &HDKeyStore{
		net:       net,
		cypher:    cypher,
		base:      base,
		vault:     newSeedVault(cypher),
		chains:    make(map[ChainID]HDChain),
		hdPubKeys: make(map[KeyID]HDPubKey),
	}, nil
}

// AddMasterSeed stores the master seed of a chain, wrapping it first if the
// keystore is encrypted. Re-inserting a seed for a known chain overwrites
// the previous entry.
func (ks *HDKeyStore) AddMasterSeed(chainID ChainID, seed []byte) error {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	return ks.vault.addMasterSeed(chainID, seed)
}

// AddCryptedMasterSeed stores an already wrapped master seed, typically
// while loading a previously encrypted wallet.
func (ks *HDKeyStore) AddCryptedMasterSeed(
	chainID ChainID, cryptedSeed []byte,
) error {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	return ks.vault.addCryptedMasterSeed(chainID, cryptedSeed)
}

// GetMasterSeed returns a copy of the plaintext master seed of a chain,
// unwrapping it if the keystore is encrypted. The caller must wipe the
// returned buffer. Fails with ErrLocked while the cypher cannot decrypt and
// ErrUnknownChain for an unknown id.
func (ks *HDKeyStore) GetMasterSeed(chainID ChainID) ([]byte, error) {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	return ks.vault.masterSeed(chainID)
}

// GetCryptedMasterSeed returns a copy of the wrapped master seed of a chain.
// Fails with ErrNotCrypted while the keystore is in plaintext state.
func (ks *HDKeyStore) GetCryptedMasterSeed(chainID ChainID) ([]byte, error) {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	return ks.vault.cryptedMasterSeed(chainID)
}

// EncryptSeeds wraps every plaintext seed and drops the plaintext copies.
// The transition is one-way for the life of the keystore. If a single wrap
// fails the call aborts with the vault consistent; re-invoking resumes and
// converges.
func (ks *HDKeyStore) EncryptSeeds() error {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()

	count, err := ks.vault.encryptSeeds()
	if err != nil {
		return err
	}
	log.Debugf("hdkeystore: encrypted %d master seed(s)", count)
	return nil
}

// GetAvailableChainIDs enumerates the chain ids with a stored seed, sorted.
func (ks *HDKeyStore) GetAvailableChainIDs() []ChainID {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	return ks.vault.chainIDs()
}

// AddChain upserts the metadata of a chain.
func (ks *HDKeyStore) AddChain(chain HDChain) error {
	if err := chain.Validate(ks.net); err != nil {
		return err
	}

	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	ks.chains[chain.ChainID] = copyChain(chain)
	log.Debugf("hdkeystore: added chain %s", chain.ChainID)
	return nil
}

// GetChain returns a copy of the metadata of a chain.
func (ks *HDKeyStore) GetChain(chainID ChainID) (HDChain, error) {
	ks.mtx.Lock()
	defer ks.mtx.Unlock()

	chain, ok := ks.chains[chainID]
	if !ok {
		return HDChain{}, ErrUnknownChain
	}
	return copyChain(chain), nil
}

// LoadHDPubKey inserts a derived pubkey record into the catalog under the
// hash of its public key.
func (ks *HDKeyStore) LoadHDPubKey(hdPubKey HDPubKey) error {
	if err := hdPubKey.Validate(); err != nil {
		return err
	}

	ks.mtx.Lock()
	defer ks.mtx.Unlock()
	ks.hdPubKeys[hdPubKey.KeyID()] = copyHDPubKey(hdPubKey)
	return nil
}

// HaveKey returns whether a key id is known, either in the hd catalog or in
// the base store.
func (ks *HDKeyStore) HaveKey(keyID KeyID) bool {
	ks.mtx.Lock()
	_, ok := ks.hdPubKeys[keyID]
	ks.mtx.Unlock()
	if ok {
		return true
	}
	return ks.base.HaveKey(keyID)
}

// GetPubKey returns the public key of a key id, falling through to the base
// store on a catalog miss.
func (ks *HDKeyStore) GetPubKey(keyID KeyID) (*btcec.PublicKey, error) {
	ks.mtx.Lock()
	hdPubKey, ok := ks.hdPubKeys[keyID]
	ks.mtx.Unlock()

	if ok {
		return btcec.ParsePubKey(hdPubKey.PubKey)
	}
	return ks.base.GetPubKey(keyID)
}

// GetKey returns the private key of a key id. For catalog entries the key is
// re-derived from the chain's master seed via the record's keypath, so the
// call fails with ErrLocked while the keystore is encrypted and locked.
// Catalog misses fall through to the base store.
func (ks *HDKeyStore) GetKey(keyID KeyID) (*btcec.PrivateKey, error) {
	ks.mtx.Lock()
	hdPubKey, ok := ks.hdPubKeys[keyID]
	if ok {
		hdPubKey = copyHDPubKey(hdPubKey)
	}
	ks.mtx.Unlock()

	if ok {
		return ks.deriveKey(hdPubKey)
	}
	return ks.base.GetKey(keyID)
}

// DeriveHDPubKeyAtIndex derives the pubkey record of a chain at a child
// index, on the external (internal=false) or internal (internal=true)
// chain.
//
// Chains flagged for public derivation use non-hardened public CKD from the
// stored chain root. When public derivation is unavailable, because the
// chain keeps no usable root for the requested side, the key is instead
// derived hardened from the master seed and the keypath carries the
// hardened marker; such keys cannot be rediscovered from the chain root
// extended public keys alone.
//
// The record is returned without touching the catalog; callers persist it
// with LoadHDPubKey, which lets speculative derivations be discarded.
func (ks *HDKeyStore) DeriveHDPubKeyAtIndex(
	chainID ChainID, index uint32, internal bool,
) (HDPubKey, error) {
	if index >= MaxChildIndex {
		return HDPubKey{}, ErrIndexExhausted
	}

	chain, err := ks.GetChain(chainID)
	if err != nil {
		return HDPubKey{}, err
	}

	keypath := MaterializeTemplate(chain.KeypathTemplate, internal)

	rootPubKey := ks.chainRootPubKey(chain, internal)
	var pubKey *btcec.PublicKey
	if rootPubKey == nil {
		// No usable chain root for this side: fall back to hardened
		// derivation from the seed.
		keypath = appendChildIndex(keypath, index, true)

		extKey, err := ks.privKeyDer(keypath, chainID)
		if err != nil {
			return HDPubKey{}, err
		}
		// The public key is parsed out before the wipe; a neutered copy
		// of extKey would share its buffers and be wiped along with it.
		pubKey, err = extKey.ECPubKey()
		extKey.Zero()
		if err != nil {
			return HDPubKey{}, err
		}
	} else {
		keypath = appendChildIndex(keypath, index, false)

		childPubKey, err := rootPubKey.Derive(index)
		if err != nil {
			return HDPubKey{}, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
		}
		pubKey, err = childPubKey.ECPubKey()
		if err != nil {
			return HDPubKey{}, err
		}
	}

	return HDPubKey{
		Version:    HDPubKeyCurrentVersion,
		PubKey:     pubKey.SerializeCompressed(),
		ChildIndex: index,
		ChainID:    chainID,
		KeyPath:    keypath,
		Internal:   internal,
	}, nil
}

// chainRootPubKey returns the chain root to run public CKD from, or nil if
// the requested side has no usable root and derivation must fall back to
// the seed. The decision rests purely on whether the stored roots decode to
// valid extended public keys: the external root gates public derivation for
// both sides, and the internal side additionally needs its own root.
func (ks *HDKeyStore) chainRootPubKey(
	chain HDChain, internal bool,
) *hdkeychain.ExtendedKey {
	externalKey, err := DecodeExtendedPublicKey(chain.ExternalPubKey, ks.net)
	if err != nil {
		return nil
	}
	if !internal {
		return externalKey
	}
	internalKey, err := DecodeExtendedPublicKey(chain.InternalPubKey, ks.net)
	if err != nil {
		return nil
	}
	return internalKey
}

// GetNextChildIndex returns the smallest child index not yet present in the
// catalog for a chain side. Gaps are filled: with indexes {0, 1, 2, 100}
// allocated, the next index is 3. Two callers racing between this and
// LoadHDPubKey can observe the same index; serializing the pair is the
// caller's concern.
func (ks *HDKeyStore) GetNextChildIndex(chainID ChainID, internal bool) uint32 {
	ks.mtx.Lock()
	indexes := make([]uint32, 0, len(ks.hdPubKeys))
	for _, hdPubKey := range ks.hdPubKeys {
		if hdPubKey.ChainID == chainID && hdPubKey.Internal == internal {
			indexes = append(indexes, hdPubKey.ChildIndex)
		}
	}
	ks.mtx.Unlock()

	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	next := uint32(0)
	for _, index := range indexes {
		if index > next {
			break
		}
		if index == next {
			next++
		}
	}
	return next
}

// DeriveKeyAtPath derives the extended private key of an arbitrary
// materialized keypath against a chain's master seed. The caller owns the
// returned key and must Zero it when done.
func (ks *HDKeyStore) DeriveKeyAtPath(
	chainID ChainID, keypath string,
) (*hdkeychain.ExtendedKey, error) {
	return ks.privKeyDer(keypath, chainID)
}
