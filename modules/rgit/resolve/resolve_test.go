package resolve

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/refs"
)

func TestGetOidHeadAlias(t *testing.T) {
	s := refs.NewStore(t.TempDir())
	oid := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	branch := plumbing.NewBranchReferenceName("master")
	require.NoError(t, s.UpdateRef(branch, plumbing.RefValue{Oid: oid}, false))
	require.NoError(t, s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: branch}, false))

	got, err := GetOid(s, "@")
	require.NoError(t, err)
	require.Equal(t, oid, got)
}

func TestGetOidShortBranchName(t *testing.T) {
	s := refs.NewStore(t.TempDir())
	oid := plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")
	require.NoError(t, s.UpdateRef(plumbing.NewBranchReferenceName("feature"), plumbing.RefValue{Oid: oid}, false))

	got, err := GetOid(s, "feature")
	require.NoError(t, err)
	require.Equal(t, oid, got)
}

func TestGetOidTagName(t *testing.T) {
	s := refs.NewStore(t.TempDir())
	oid := plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")
	require.NoError(t, s.UpdateRef(plumbing.NewTagReferenceName("v1"), plumbing.RefValue{Oid: oid}, false))

	got, err := GetOid(s, "v1")
	require.NoError(t, err)
	require.Equal(t, oid, got)
}

func TestGetOidRawHex(t *testing.T) {
	s := refs.NewStore(t.TempDir())
	hex := "da39a3ee5e6b4b0d3255bfef95601890afd80709"

	got, err := GetOid(s, hex)
	require.NoError(t, err)
	require.Equal(t, plumbing.NewHash(hex), got)
}

func TestGetOidUnknownName(t *testing.T) {
	s := refs.NewStore(t.TempDir())
	_, err := GetOid(s, "does-not-exist")
	require.True(t, plumbing.IsErrUnknownName(err))
}
