package hdkeystore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyPath(t *testing.T) {
	master := Segment{Kind: SegmentMaster}
	chainSwitch := Segment{Kind: SegmentChainSwitch}

	tests := []struct {
		input  string
		output KeyPath
	}{
		{"m", KeyPath{master}},
		{"m/0", KeyPath{master, NumericSegment(0, false)}},
		{"m/0'", KeyPath{master, NumericSegment(0, true)}},
		{"m/44'/0'/0'/0/1", KeyPath{
			master,
			NumericSegment(44, true),
			NumericSegment(0, true),
			NumericSegment(0, true),
			NumericSegment(0, false),
			NumericSegment(1, false),
		}},
		{"m/0'/1/5", KeyPath{
			master,
			NumericSegment(0, true),
			NumericSegment(1, false),
			NumericSegment(5, false),
		}},
		{"m/2147483647", KeyPath{master, NumericSegment(2147483647, false)}},
		{"m/2147483647'", KeyPath{master, NumericSegment(2147483647, true)}},
		// templates parse too, carrying the chain-switch placeholder
		{"m/44'/0'/0'/c", KeyPath{
			master,
			NumericSegment(44, true),
			NumericSegment(0, true),
			NumericSegment(0, true),
			chainSwitch,
		}},
		{"m/0'/c", KeyPath{master, NumericSegment(0, true), chainSwitch}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			path, err := ParseKeyPath(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.output, path)
			require.Equal(t, tt.input, path.String())
		})
	}
}

func TestFailingParseKeyPath(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectedErr error
	}{
		{"empty", "", ErrNullKeyPath},
		{"missing master", "44'/0'", ErrInvalidKeyPath},
		{"master not leading", "m/0'/m/1", ErrInvalidKeyPath},
		{"not a number", "m/0'/x", ErrInvalidKeyPath},
		{"negative index", "m/-1", ErrInvalidKeyPath},
		{"index overflows int32", "m/2147483648", ErrInvalidKeyPath},
		{"empty segment", "m//0", ErrInvalidKeyPath},
		{"hardened marker alone", "m/'", ErrInvalidKeyPath},
		{"hardened chain switch", "m/c'", ErrInvalidKeyPath},
		{
			"too deep",
			"m" + strings.Repeat("/0", MaxKeyPathDepth+1),
			ErrInvalidKeyPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeyPath(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestKeyPathHasChainSwitch(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"m", false},
		{"m/44'/0'/0'/0/1", false},
		{"m/44'/0'/0'/c", true},
		{"m/c/c", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			path, err := ParseKeyPath(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path.HasChainSwitch())
		})
	}
}

func TestMaterializeTemplate(t *testing.T) {
	tests := []struct {
		template string
		internal bool
		expected string
	}{
		{"m/44'/0'/0'/c", false, "m/44'/0'/0'/0"},
		{"m/44'/0'/0'/c", true, "m/44'/0'/0'/1"},
		{"m/0'/c", false, "m/0'/0"},
		{"m/0'/c", true, "m/0'/1"},
		// a template without the token is used verbatim
		{"m/44'/0'/0'", false, "m/44'/0'/0'"},
		{"m/44'/0'/0'", true, "m/44'/0'/0'"},
		// all occurrences are substituted
		{"m/c/c", true, "m/1/1"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			materialized := MaterializeTemplate(tt.template, tt.internal)
			assert.Equal(t, tt.expected, materialized)

			path, err := ParseKeyPath(materialized)
			require.NoError(t, err)
			assert.False(t, path.HasChainSwitch())
		})
	}
}

func TestAppendChildIndex(t *testing.T) {
	assert.Equal(t, "m/0'/0/7", appendChildIndex("m/0'/0", 7, false))
	assert.Equal(t, "m/0'/1/7'", appendChildIndex("m/0'/1", 7, true))
}
