// Package plumbing holds the low-level types shared across the object
// store, the ref store, and the history engine: the content-addressed
// hash, reference names, and the typed error kinds returned at the core's
// boundary.
package plumbing

import (
	"crypto/sha1"
	"encoding/hex"
	"hash"
	"sort"
)

const (
	HashSize    = sha1.Size
	HashHexSize = HashSize * 2
)

// Hash is a SHA-1 object id.
type Hash [HashSize]byte

// ZeroHash is the distinguished "no object" value: an unborn branch's HEAD,
// or a commit's absent parent.
var ZeroHash Hash

// NewHash decodes a hex string into a Hash. Malformed input yields the zero
// Hash; callers that must distinguish malformed input from a genuine zero
// hash should use NewHashEx.
func NewHash(s string) Hash {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != HashSize {
		return h
	}
	copy(h[:], b)
	return h
}

// NewHashEx validates s is exactly HashHexSize hex characters before
// decoding it.
func NewHashEx(s string) (Hash, error) {
	if !ValidateHashHex(s) {
		return ZeroHash, NewErrUnknownName(s)
	}
	return NewHash(s), nil
}

// ValidateHashHex reports whether s looks like a well-formed hex oid.
func ValidateHashHex(s string) bool {
	if len(s) != HashHexSize {
		return false
	}
	for _, c := range []byte(s) {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// HashSlice attaches sort.Interface to a slice of Hash, increasing order.
type HashSlice []Hash

func (p HashSlice) Len() int           { return len(p) }
func (p HashSlice) Less(i, j int) bool { return p[i].String() < p[j].String() }
func (p HashSlice) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }

func SortHashes(hs []Hash) { sort.Sort(HashSlice(hs)) }

// Hasher wraps the SHA-1 implementation used to derive object ids. Kept as
// a distinct type (rather than calling sha1.Sum directly at each call
// site) so every oid computation in the core goes through one seam.
type Hasher struct {
	hash.Hash
}

func NewHasher() Hasher {
	return Hasher{Hash: sha1.New()}
}

func (h Hasher) Sum() (out Hash) {
	copy(out[:], h.Hash.Sum(nil))
	return
}
