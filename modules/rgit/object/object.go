// Package object implements the three stored object kinds — blob, tree,
// commit — and the single encode/hash/decode dispatch that the rest of
// the core uses to move between in-memory values and the
// "<type>\0<payload>" bytes the object store persists.
package object

import (
	"bytes"
	"strings"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

// Type enumerates the object kinds the store recognizes.
type Type int8

const (
	InvalidType Type = iota
	BlobType
	TreeType
	CommitType
)

func (t Type) String() string {
	switch t {
	case BlobType:
		return "blob"
	case TreeType:
		return "tree"
	case CommitType:
		return "commit"
	default:
		return "invalid"
	}
}

// TypeFromString is the inverse of Type.String, returning InvalidType for
// anything else — the on-disk type prefix is always one of these three.
func TypeFromString(s string) Type {
	switch strings.ToLower(s) {
	case "blob":
		return BlobType
	case "tree":
		return TreeType
	case "commit":
		return CommitType
	default:
		return InvalidType
	}
}

// Frame is the decoded form of an object store entry: its declared type
// and its payload, with the "<type>\0" prefix already stripped.
type Frame struct {
	Type    Type
	Payload []byte
}

// Encode prepends the "<type>\0" marker spec.md's data model requires on
// every stored object, returning the exact bytes hashed to produce its oid.
func Encode(t Type, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(t.String())
	buf.WriteByte(0)
	buf.Write(payload)
	return buf.Bytes()
}

// Hash computes the oid of an encoded object's bytes without requiring
// those bytes to be written anywhere — used by callers that want to know
// an oid before deciding whether to persist it.
func Hash(t Type, payload []byte) plumbing.Hash {
	h := plumbing.NewHasher()
	_, _ = h.Write(Encode(t, payload))
	return h.Sum()
}

// Decode splits raw stored bytes (as read from the object store) on the
// first NUL into their declared type and payload.
func Decode(oid plumbing.Hash, raw []byte) (Frame, error) {
	i := bytes.IndexByte(raw, 0)
	if i < 0 {
		return Frame{}, plumbing.NewErrMalformedObject(oid, "missing type prefix")
	}
	t := TypeFromString(string(raw[:i]))
	if t == InvalidType {
		return Frame{}, plumbing.NewErrMalformedObject(oid, "unknown object type "+string(raw[:i]))
	}
	return Frame{Type: t, Payload: raw[i+1:]}, nil
}
