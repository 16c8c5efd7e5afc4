package hdkeystore

import (
	"errors"
)

var (
	// ErrInvalidKeyPath ...
	ErrInvalidKeyPath = errors.New("keypath is invalid")
	// ErrNullKeyPath ...
	ErrNullKeyPath = errors.New("keypath must not be null")
	// ErrUnknownChain ...
	ErrUnknownChain = errors.New("chain id not found in keystore")
	// ErrUnknownKey ...
	ErrUnknownKey = errors.New("key id not found in keystore")
	// ErrIndexExhausted ...
	ErrIndexExhausted = errors.New("no more available child indexes")
	// ErrLocked ...
	ErrLocked = errors.New("keystore is locked")
	// ErrNotCrypted ...
	ErrNotCrypted = errors.New("keystore is not encrypted")
	// ErrDerivationFailed ...
	ErrDerivationFailed = errors.New("child key derivation failed")
	// ErrSeedEncodingInvalid ...
	ErrSeedEncodingInvalid = errors.New("master seed encoding is invalid")

	// ErrInvalidChain ...
	ErrInvalidChain = errors.New("chain is invalid")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("master seed must not be null")
	// ErrNullCryptedSeed ...
	ErrNullCryptedSeed = errors.New("crypted master seed must not be null")
	// ErrInvalidPubKey ...
	ErrInvalidPubKey = errors.New("public key is invalid")

	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher text to decrypt must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher text is too short")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = errors.New("passphrase is invalid")

	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
)
