// Package resolve is the Name Resolver: mapping a user-supplied name — the
// "@" HEAD alias, a ref path, a short ref, or a raw oid — to an object id.
// Grounded on original_source/src/base.py's get_oid.
package resolve

import (
	"github.com/rgitvcs/rgit/modules/plumbing"
)

// RefReader is the minimal ref-store surface resolve needs.
type RefReader interface {
	GetRefValue(name plumbing.ReferenceName, deref bool) (*plumbing.RefValue, error)
}

// GetOid resolves name to an oid, trying in order: the "@" HEAD alias,
// direct ref lookups (name, refs/name, refs/tags/name, refs/heads/name,
// first non-symbolic hit wins), then a raw 40-hex oid. Fails with
// UnknownNameError otherwise.
func GetOid(store RefReader, name string) (plumbing.Hash, error) {
	if name == "@" {
		name = string(plumbing.HEAD)
	}

	candidates := []plumbing.ReferenceName{
		plumbing.ReferenceName(name),
		plumbing.ReferenceName("refs/" + name),
		plumbing.ReferenceName("refs/tags/" + name),
		plumbing.ReferenceName("refs/heads/" + name),
	}
	for _, cand := range candidates {
		value, err := store.GetRefValue(cand, true)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if value != nil && !value.Symbolic {
			return value.Oid, nil
		}
	}

	if plumbing.ValidateHashHex(name) {
		return plumbing.NewHash(name), nil
	}

	return plumbing.ZeroHash, plumbing.NewErrUnknownName(name)
}
