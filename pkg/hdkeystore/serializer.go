package hdkeystore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// Wire layouts (version 1). Integer fields are little-endian, variable
// length fields carry a compact-size prefix:
//
//	HDPubKey: version:int32 | pubkey:varbytes | nChild:uint32 |
//	          chainID:32 bytes | keypath:varstring | internal:uint8
//	HDChain:  version:int32 | nCreateTime:int64 | chainID:32 bytes |
//	          keypathTemplate:varstring | usePubCKD:uint8 |
//	          [externalPubKey:74 bytes | internalPubKey:74 bytes]
//
// The keystore never persists these itself, it only encodes and decodes the
// records for an external writer.

const (
	// maxPubKeyLen bounds the pubkey field when deserializing; EC points
	// serialize to at most 65 bytes.
	maxPubKeyLen = 65
	// maxKeyPathLen bounds keypath strings on the wire; a segment costs at
	// most 12 bytes ("4294967295'/").
	maxKeyPathLen = 12 * (MaxKeyPathDepth + 1)
)

// Serialize writes the record in its v1 wire layout.
func (k HDPubKey) Serialize(w io.Writer) error {
	if err := writeInt32(w, k.Version); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, 0, k.PubKey); err != nil {
		return err
	}
	if err := writeUint32(w, k.ChildIndex); err != nil {
		return err
	}
	if _, err := w.Write(k.ChainID[:]); err != nil {
		return err
	}
	if err := wire.WriteVarString(w, 0, k.KeyPath); err != nil {
		return err
	}
	return writeBool(w, k.Internal)
}

// DeserializeHDPubKey reads a record in its v1 wire layout.
func DeserializeHDPubKey(r io.Reader) (HDPubKey, error) {
	var k HDPubKey
	var err error

	if k.Version, err = readInt32(r); err != nil {
		return HDPubKey{}, err
	}
	if k.PubKey, err = wire.ReadVarBytes(r, 0, maxPubKeyLen, "pubkey"); err != nil {
		return HDPubKey{}, err
	}
	if k.ChildIndex, err = readUint32(r); err != nil {
		return HDPubKey{}, err
	}
	if _, err = io.ReadFull(r, k.ChainID[:]); err != nil {
		return HDPubKey{}, err
	}
	if k.KeyPath, err = wire.ReadVarString(r, 0); err != nil {
		return HDPubKey{}, err
	}
	if len(k.KeyPath) > maxKeyPathLen {
		return HDPubKey{}, fmt.Errorf("%w: keypath too long", ErrInvalidKeyPath)
	}
	if k.Internal, err = readBool(r); err != nil {
		return HDPubKey{}, err
	}
	return k, nil
}

// Serialize writes the chain in its v1 wire layout. The chain root extended
// public keys travel only for chains flagged for public derivation; a
// missing internal root is written as an all-zero body.
func (c HDChain) Serialize(w io.Writer) error {
	if err := writeInt32(w, c.Version); err != nil {
		return err
	}
	if err := writeInt64(w, c.CreateTime); err != nil {
		return err
	}
	if _, err := w.Write(c.ChainID[:]); err != nil {
		return err
	}
	if err := wire.WriteVarString(w, 0, c.KeypathTemplate); err != nil {
		return err
	}
	if err := writeBool(w, c.UsePubCKD); err != nil {
		return err
	}
	if !c.UsePubCKD {
		return nil
	}
	if err := writeExtKeyBody(w, c.ExternalPubKey); err != nil {
		return err
	}
	return writeExtKeyBody(w, c.InternalPubKey)
}

// DeserializeHDChain reads a chain in its v1 wire layout.
func DeserializeHDChain(r io.Reader) (HDChain, error) {
	var c HDChain
	var err error

	if c.Version, err = readInt32(r); err != nil {
		return HDChain{}, err
	}
	if c.CreateTime, err = readInt64(r); err != nil {
		return HDChain{}, err
	}
	if _, err = io.ReadFull(r, c.ChainID[:]); err != nil {
		return HDChain{}, err
	}
	if c.KeypathTemplate, err = wire.ReadVarString(r, 0); err != nil {
		return HDChain{}, err
	}
	if len(c.KeypathTemplate) > maxKeyPathLen {
		return HDChain{}, fmt.Errorf("%w: template too long", ErrInvalidKeyPath)
	}
	if c.UsePubCKD, err = readBool(r); err != nil {
		return HDChain{}, err
	}
	if !c.UsePubCKD {
		return c, nil
	}
	if c.ExternalPubKey, err = readExtKeyBody(r); err != nil {
		return HDChain{}, err
	}
	if c.InternalPubKey, err = readExtKeyBody(r); err != nil {
		return HDChain{}, err
	}
	return c, nil
}

func writeExtKeyBody(w io.Writer, body []byte) error {
	if body == nil {
		body = make([]byte, BIP32ExtKeySize)
	}
	if len(body) != BIP32ExtKeySize {
		return fmt.Errorf(
			"%w: extended key must be %d bytes",
			ErrSeedEncodingInvalid, BIP32ExtKeySize,
		)
	}
	_, err := w.Write(body)
	return err
}

func readExtKeyBody(r io.Reader) ([]byte, error) {
	body := make([]byte, BIP32ExtKeySize)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	if isNullExtKeyBody(body) {
		return nil, nil
	}
	return body, nil
}

func writeInt32(w io.Writer, val int32) error {
	return writeUint32(w, uint32(val))
}

func readInt32(r io.Reader) (int32, error) {
	val, err := readUint32(r)
	return int32(val), err
}

func writeUint32(w io.Writer, val uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeInt64(w io.Writer, val int64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(val))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf[:])), nil
}

func writeBool(w io.Writer, val bool) error {
	var b byte
	if val {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}
