package hdkeystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"sync"

	"golang.org/x/crypto/scrypt"
)

const saltSize = 32

// PassphraseCypherOpts is the struct given to NewPassphraseCypher.
type PassphraseCypherOpts struct {
	// ScryptN, ScryptR, ScryptP override the key-stretching parameters.
	// Leave zeroed for the defaults; tests lower them to stay fast.
	ScryptN int
	ScryptR int
	ScryptP int
}

func (o PassphraseCypherOpts) validate() error {
	if o.ScryptN < 0 || o.ScryptR < 0 || o.ScryptP < 0 {
		return ErrInvalidPassphrase
	}
	return nil
}

// PassphraseCypher is a SeedCypher that wraps seeds with AES-256-GCM under a
// scrypt-derived key, binding every blob to its chain id through the GCM
// additional authenticated data.
//
// The cypher starts out inactive: a keystore using it stays in plaintext
// state until the first Unlock sets a passphrase. Lock wipes the derived key
// from memory; while locked, decryption fails with ErrLocked until the same
// passphrase is supplied again.
type PassphraseCypher struct {
	mtx sync.Mutex

	scryptN int
	scryptR int
	scryptP int

	salt []byte
	key  []byte
}

// NewPassphraseCypher returns an inactive cypher.
func NewPassphraseCypher(opts PassphraseCypherOpts) (*PassphraseCypher, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ScryptN == 0 {
		// 2^20, recommended for key-stretching at rest:
		// https://godoc.org/golang.org/x/crypto/scrypt
		opts.ScryptN = 1048576
	}
	if opts.ScryptR == 0 {
		opts.ScryptR = 8
	}
	if opts.ScryptP == 0 {
		opts.ScryptP = 1
	}
	return &PassphraseCypher{
		scryptN: opts.ScryptN,
		scryptR: opts.ScryptR,
		scryptP: opts.ScryptP,
	}, nil
}

// Unlock derives the encryption key from the passphrase. The first call
// activates the cypher and fixes its salt; later calls re-derive the key,
// and a wrong passphrase surfaces as an authentication failure on the next
// DecryptSeed.
func (c *PassphraseCypher) Unlock(passphrase []byte) error {
	if len(passphrase) == 0 {
		return ErrNullPassphrase
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.salt == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return err
		}
		c.salt = salt
	}

	key, err := scrypt.Key(
		passphrase, c.salt, c.scryptN, c.scryptR, c.scryptP, 32,
	)
	if err != nil {
		return err
	}

	zeroBytes(c.key)
	c.key = key
	return nil
}

// Lock wipes the derived key. The cypher stays active, so the owning vault
// remains in encrypted state and seed reads fail until the next Unlock.
func (c *PassphraseCypher) Lock() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	zeroBytes(c.key)
	c.key = nil
}

// IsLocked returns whether the derived key is unavailable.
func (c *PassphraseCypher) IsLocked() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.key == nil
}

// IsCrypted implements SeedCypher.
func (c *PassphraseCypher) IsCrypted() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.salt != nil
}

// EncryptSeed implements SeedCypher. The blob layout is nonce || ciphertext.
func (c *PassphraseCypher) EncryptSeed(
	plainSeed []byte, chainID ChainID,
) ([]byte, error) {
	if len(plainSeed) == 0 {
		return nil, ErrNullPlainText
	}

	aead, err := c.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plainSeed, chainID[:]), nil
}

// DecryptSeed implements SeedCypher.
func (c *PassphraseCypher) DecryptSeed(
	cryptedSeed []byte, chainID ChainID,
) ([]byte, error) {
	if len(cryptedSeed) == 0 {
		return nil, ErrNullCypherText
	}

	aead, err := c.aead()
	if err != nil {
		return nil, err
	}

	if len(cryptedSeed) < aead.NonceSize() {
		return nil, ErrInvalidCypherText
	}
	nonce, text := cryptedSeed[:aead.NonceSize()], cryptedSeed[aead.NonceSize():]
	plainSeed, err := aead.Open(nil, nonce, text, chainID[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPassphrase, err)
	}
	return plainSeed, nil
}

func (c *PassphraseCypher) aead() (cipher.AEAD, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.salt == nil {
		return nil, ErrNotCrypted
	}
	if c.key == nil {
		return nil, ErrLocked
	}

	blockCipher, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(blockCipher)
}

// plainCypher is the collaborator used when no cypher is injected: the vault
// never leaves plaintext state.
type plainCypher struct{}

func (plainCypher) IsCrypted() bool { return false }

func (plainCypher) EncryptSeed([]byte, ChainID) ([]byte, error) {
	return nil, ErrNotCrypted
}

func (plainCypher) DecryptSeed([]byte, ChainID) ([]byte, error) {
	return nil, ErrNotCrypted
}
