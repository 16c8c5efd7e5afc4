package hdkeystore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// BIP32ExtKeySize is the size in bytes of a BIP32 extended key body:
	// depth (1) || parent fingerprint (4) || child number (4) ||
	// chain code (32) || key data (33). A master seed of exactly this
	// length is interpreted as an encoded extended private key instead of
	// raw entropy.
	BIP32ExtKeySize = 74

	// serializedExtKeyLen is the full serialized length of an extended key
	// including the 4-byte network version prefix.
	serializedExtKeyLen = 4 + BIP32ExtKeySize
)

// EncodeExtendedKey serializes an extended key to its 74-byte BIP32 body,
// stripping the network version prefix.
func EncodeExtendedKey(key *hdkeychain.ExtendedKey) ([]byte, error) {
	decoded := base58.Decode(key.String())
	if len(decoded) != serializedExtKeyLen+4 {
		return nil, ErrSeedEncodingInvalid
	}
	buf := make([]byte, BIP32ExtKeySize)
	copy(buf, decoded[4:4+BIP32ExtKeySize])
	return buf, nil
}

// DecodeExtendedPrivateKey decodes a 74-byte BIP32 body as an extended
// private key for the given network.
func DecodeExtendedPrivateKey(
	buf []byte, net *chaincfg.Params,
) (*hdkeychain.ExtendedKey, error) {
	key, err := decodeExtendedKey(buf, net.HDPrivateKeyID[:])
	if err != nil {
		return nil, err
	}
	if !key.IsPrivate() {
		return nil, fmt.Errorf(
			"%w: not a private extended key", ErrSeedEncodingInvalid,
		)
	}
	return key, nil
}

// DecodeExtendedPublicKey decodes a 74-byte BIP32 body as an extended public
// key for the given network.
func DecodeExtendedPublicKey(
	buf []byte, net *chaincfg.Params,
) (*hdkeychain.ExtendedKey, error) {
	key, err := decodeExtendedKey(buf, net.HDPublicKeyID[:])
	if err != nil {
		return nil, err
	}
	if key.IsPrivate() {
		return nil, fmt.Errorf(
			"%w: not a public extended key", ErrSeedEncodingInvalid,
		)
	}
	return key, nil
}

func decodeExtendedKey(
	buf, version []byte,
) (*hdkeychain.ExtendedKey, error) {
	if len(buf) != BIP32ExtKeySize {
		return nil, fmt.Errorf(
			"%w: must be %d bytes", ErrSeedEncodingInvalid, BIP32ExtKeySize,
		)
	}

	serialized := make([]byte, 0, serializedExtKeyLen+4)
	serialized = append(serialized, version...)
	serialized = append(serialized, buf...)
	checksum := chainhash.DoubleHashB(serialized)[:4]
	serialized = append(serialized, checksum...)

	key, err := hdkeychain.NewKeyFromString(base58.Encode(serialized))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedEncodingInvalid, err)
	}
	return key, nil
}

// isNullExtKeyBody reports whether a serialized extended key body is absent,
// either nil or all zeroes. An all-zero body is how a missing internal chain
// root travels on the wire.
func isNullExtKeyBody(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}
