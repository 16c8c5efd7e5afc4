package hdkeystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCypher(t *testing.T) *PassphraseCypher {
	t.Helper()
	cypher, err := NewPassphraseCypher(PassphraseCypherOpts{
		ScryptN: 1024,
		ScryptR: 8,
		ScryptP: 1,
	})
	require.NoError(t, err)
	return cypher
}

func TestPassphraseCypherStartsInactive(t *testing.T) {
	cypher := newTestCypher(t)

	assert.False(t, cypher.IsCrypted())
	assert.True(t, cypher.IsLocked())

	_, err := cypher.EncryptSeed([]byte("seed"), ChainID{})
	require.ErrorIs(t, err, ErrNotCrypted)
}

func TestPassphraseCypherRoundTrip(t *testing.T) {
	cypher := newTestCypher(t)
	require.NoError(t, cypher.Unlock([]byte("passphrase")))

	assert.True(t, cypher.IsCrypted())
	assert.False(t, cypher.IsLocked())

	var chainID ChainID
	chainID[0] = 0x01
	seed := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

	cryptedSeed, err := cypher.EncryptSeed(seed, chainID)
	require.NoError(t, err)
	require.NotEqual(t, seed, cryptedSeed)

	plainSeed, err := cypher.DecryptSeed(cryptedSeed, chainID)
	require.NoError(t, err)
	require.Equal(t, seed, plainSeed)
}

func TestPassphraseCypherLock(t *testing.T) {
	cypher := newTestCypher(t)
	require.NoError(t, cypher.Unlock([]byte("passphrase")))

	chainID := ChainID{0x02}
	cryptedSeed, err := cypher.EncryptSeed([]byte("master seed"), chainID)
	require.NoError(t, err)

	cypher.Lock()
	assert.True(t, cypher.IsCrypted())
	assert.True(t, cypher.IsLocked())

	_, err = cypher.DecryptSeed(cryptedSeed, chainID)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, cypher.Unlock([]byte("passphrase")))
	plainSeed, err := cypher.DecryptSeed(cryptedSeed, chainID)
	require.NoError(t, err)
	require.Equal(t, []byte("master seed"), plainSeed)
}

func TestPassphraseCypherWrongPassphrase(t *testing.T) {
	cypher := newTestCypher(t)
	require.NoError(t, cypher.Unlock([]byte("right")))

	chainID := ChainID{0x03}
	cryptedSeed, err := cypher.EncryptSeed([]byte("master seed"), chainID)
	require.NoError(t, err)

	require.NoError(t, cypher.Unlock([]byte("wrong")))
	_, err = cypher.DecryptSeed(cryptedSeed, chainID)
	require.ErrorIs(t, err, ErrInvalidPassphrase)
}

func TestPassphraseCypherBindsChainID(t *testing.T) {
	cypher := newTestCypher(t)
	require.NoError(t, cypher.Unlock([]byte("passphrase")))

	cryptedSeed, err := cypher.EncryptSeed([]byte("master seed"), ChainID{0x04})
	require.NoError(t, err)

	// a blob sealed for one chain must not open for another
	_, err = cypher.DecryptSeed(cryptedSeed, ChainID{0x05})
	require.ErrorIs(t, err, ErrInvalidPassphrase)
}

func TestFailingPassphraseCypher(t *testing.T) {
	cypher := newTestCypher(t)

	t.Run("null passphrase", func(t *testing.T) {
		require.ErrorIs(t, cypher.Unlock(nil), ErrNullPassphrase)
	})

	require.NoError(t, cypher.Unlock([]byte("passphrase")))

	t.Run("null plain text", func(t *testing.T) {
		_, err := cypher.EncryptSeed(nil, ChainID{})
		require.ErrorIs(t, err, ErrNullPlainText)
	})
	t.Run("null cypher text", func(t *testing.T) {
		_, err := cypher.DecryptSeed(nil, ChainID{})
		require.ErrorIs(t, err, ErrNullCypherText)
	})
	t.Run("short cypher text", func(t *testing.T) {
		_, err := cypher.DecryptSeed([]byte{0xde, 0xad}, ChainID{})
		require.ErrorIs(t, err, ErrInvalidCypherText)
	})
}
