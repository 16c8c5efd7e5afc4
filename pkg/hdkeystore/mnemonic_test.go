package hdkeystore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMnemonic(t *testing.T) {
	tests := []struct {
		entropySize   int
		expectedWords int
	}{
		{0, 12},
		{128, 12},
		{160, 15},
		{192, 18},
		{224, 21},
		{256, 24},
	}

	for _, tt := range tests {
		mnemonic, err := NewMnemonic(NewMnemonicOpts{EntropySize: tt.entropySize})
		require.NoError(t, err)
		assert.Len(t, mnemonic, tt.expectedWords)
		assert.True(t, IsMnemonicValid(mnemonic))
	}
}

func TestFailingNewMnemonic(t *testing.T) {
	for _, entropySize := range []int{-1, 64, 129, 288} {
		_, err := NewMnemonic(NewMnemonicOpts{EntropySize: entropySize})
		require.ErrorIs(t, err, ErrInvalidEntropySize)
	}
}

func TestSeedFromMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic(NewMnemonicOpts{})
	require.NoError(t, err)

	seed, err := SeedFromMnemonic(mnemonic)
	require.NoError(t, err)
	// BIP39 seeds are 64 bytes, within the range master key derivation
	// accepts and never mistakable for an encoded extended key
	require.Len(t, seed, 64)

	again, err := SeedFromMnemonic(mnemonic)
	require.NoError(t, err)
	require.Equal(t, seed, again)

	_, err = SeedFromMnemonic([]string{"not", "a", "mnemonic"})
	require.ErrorIs(t, err, ErrInvalidMnemonic)
}
