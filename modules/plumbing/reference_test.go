package plumbing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReferenceNameShort(t *testing.T) {
	require.Equal(t, "master", NewBranchReferenceName("master").Short())
	require.Equal(t, "v1.0", NewTagReferenceName("v1.0").Short())
	require.Equal(t, "HEAD", HEAD.Short())
}

func TestRefValueIsUnborn(t *testing.T) {
	unborn := RefValue{Oid: ZeroHash}
	require.True(t, unborn.IsUnborn())

	populated := RefValue{Oid: NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")}
	require.False(t, populated.IsUnborn())

	symbolic := RefValue{Symbolic: true, Target: NewBranchReferenceName("master")}
	require.False(t, symbolic.IsUnborn())
}

func TestReferenceSliceSort(t *testing.T) {
	refs := ReferenceSlice{
		NewHashReference("refs/heads/b", ZeroHash),
		NewHashReference("refs/heads/a", ZeroHash),
	}
	require.True(t, refs.Less(1, 0))
}
