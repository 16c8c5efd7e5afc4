package hdkeystore

import (
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
)

// BaseKeyStore is the non-hd key store an HDKeyStore composes with. Lookups
// that miss the hd catalog fall through to it.
type BaseKeyStore interface {
	HaveKey(keyID KeyID) bool
	GetKey(keyID KeyID) (*btcec.PrivateKey, error)
	GetPubKey(keyID KeyID) (*btcec.PublicKey, error)
}

// MemoryKeyStore is a map-backed BaseKeyStore for plain, non-derived keys.
type MemoryKeyStore struct {
	mtx  sync.Mutex
	keys map[KeyID]*btcec.PrivateKey
}

// NewMemoryKeyStore returns an empty in-memory key store.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		keys: make(map[KeyID]*btcec.PrivateKey),
	}
}

// AddKey stores a private key under the hash of its compressed public key.
func (s *MemoryKeyStore) AddKey(privKey *btcec.PrivateKey) KeyID {
	keyID := NewKeyID(privKey.PubKey().SerializeCompressed())

	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.keys[keyID] = privKey
	return keyID
}

// HaveKey implements BaseKeyStore.
func (s *MemoryKeyStore) HaveKey(keyID KeyID) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	_, ok := s.keys[keyID]
	return ok
}

// GetKey implements BaseKeyStore.
func (s *MemoryKeyStore) GetKey(keyID KeyID) (*btcec.PrivateKey, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	privKey, ok := s.keys[keyID]
	if !ok {
		return nil, ErrUnknownKey
	}
	return privKey, nil
}

// GetPubKey implements BaseKeyStore.
func (s *MemoryKeyStore) GetPubKey(keyID KeyID) (*btcec.PublicKey, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	privKey, ok := s.keys[keyID]
	if !ok {
		return nil, ErrUnknownKey
	}
	return privKey.PubKey(), nil
}
