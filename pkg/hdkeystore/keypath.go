package hdkeystore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// MaxChildIndex is the upper (exclusive) bound for non-hardened child
	// indexes of BIP32 derivation paths.
	MaxChildIndex = hdkeychain.HardenedKeyStart

	// MaxKeyPathDepth is the maximum number of derivation steps accepted in
	// a keypath. BIP32 extended keys cannot be derived beyond depth 255.
	MaxKeyPathDepth = 255

	// ChainSwitchToken is the template placeholder replaced with "0"
	// (external chain) or "1" (internal chain) when a keypath template is
	// materialized.
	ChainSwitchToken = "c"
)

// SegmentKind tags the variants of a keypath segment.
type SegmentKind uint8

const (
	// SegmentMaster is the leading "m" denoting the master key.
	SegmentMaster SegmentKind = iota
	// SegmentNumeric is a derivation step with a child index, optionally
	// hardened.
	SegmentNumeric
	// SegmentChainSwitch is the chain-switch placeholder of a template.
	SegmentChainSwitch
)

// Segment is a single keypath step: the master marker, a numeric derivation
// step, or the chain-switch placeholder. Index and Hardened are meaningful
// for numeric segments only.
type Segment struct {
	Kind     SegmentKind
	Index    uint32
	Hardened bool
}

// NumericSegment returns a numeric keypath segment.
func NumericSegment(index uint32, hardened bool) Segment {
	return Segment{Kind: SegmentNumeric, Index: index, Hardened: hardened}
}

// childIndex returns the BIP32 child index of a numeric segment, hardened
// steps offset into the hardened range.
func (s Segment) childIndex() uint32 {
	if s.Hardened {
		return hdkeychain.HardenedKeyStart + s.Index
	}
	return s.Index
}

// KeyPath is the internal representation of a keypath, one segment per
// derivation step. A path holding a chain-switch segment is a template and
// must be materialized before it reaches derivation.
type KeyPath []Segment

// ParseKeyPath converts a keypath string like "m/44'/0'/0'/0/1", or a
// template like "m/44'/0'/0'/c", to its internal representation. The leading
// segment must be the literal "m"; every other segment is either the
// chain-switch token or a decimal index, optionally suffixed with "'" to
// mark hardened derivation.
func ParseKeyPath(strPath string) (KeyPath, error) {
	if strPath == "" {
		return nil, ErrNullKeyPath
	}

	elems := strings.Split(strPath, "/")
	if elems[0] != "m" {
		return nil, fmt.Errorf("%w: must start with 'm'", ErrInvalidKeyPath)
	}
	if len(elems)-1 > MaxKeyPathDepth {
		return nil, fmt.Errorf(
			"%w: more than %d derivation steps", ErrInvalidKeyPath, MaxKeyPathDepth,
		)
	}

	path := make(KeyPath, 0, len(elems))
	path = append(path, Segment{Kind: SegmentMaster})
	for _, elem := range elems[1:] {
		switch elem {
		case "m":
			return nil, fmt.Errorf(
				"%w: 'm' allowed only as leading segment", ErrInvalidKeyPath,
			)
		case ChainSwitchToken:
			path = append(path, Segment{Kind: SegmentChainSwitch})
			continue
		}

		hardened := false
		if strings.HasSuffix(elem, "'") {
			hardened = true
			elem = strings.TrimSuffix(elem, "'")
		}

		index, err := strconv.ParseInt(elem, 10, 32)
		if err != nil || index < 0 {
			return nil, fmt.Errorf(
				"%w: invalid segment '%s'", ErrInvalidKeyPath, elem,
			)
		}
		path = append(path, NumericSegment(uint32(index), hardened))
	}

	return path, nil
}

// String converts a keypath to its canonical representation with hardened
// markers and, for templates, the chain-switch token.
func (path KeyPath) String() string {
	elems := make([]string, 0, len(path))
	for _, segment := range path {
		switch segment.Kind {
		case SegmentMaster:
			elems = append(elems, "m")
		case SegmentChainSwitch:
			elems = append(elems, ChainSwitchToken)
		default:
			elem := strconv.FormatUint(uint64(segment.Index), 10)
			if segment.Hardened {
				elem += "'"
			}
			elems = append(elems, elem)
		}
	}
	return strings.Join(elems, "/")
}

// HasChainSwitch reports whether the path is a template still carrying the
// chain-switch placeholder.
func (path KeyPath) HasChainSwitch() bool {
	for _, segment := range path {
		if segment.Kind == SegmentChainSwitch {
			return true
		}
	}
	return false
}

// MaterializeTemplate replaces all occurrences of the chain-switch token in a
// keypath template with "0" (external chain) or "1" (internal chain). A
// template without the token is returned verbatim.
func MaterializeTemplate(template string, internal bool) string {
	chain := "0"
	if internal {
		chain = "1"
	}
	return strings.ReplaceAll(template, ChainSwitchToken, chain)
}

// appendChildIndex extends a materialized keypath with a final child segment,
// hardened or not.
func appendChildIndex(keypath string, index uint32, hardened bool) string {
	keypath = fmt.Sprintf("%s/%d", keypath, index)
	if hardened {
		keypath += "'"
	}
	return keypath
}
