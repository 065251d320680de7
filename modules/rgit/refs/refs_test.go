package refs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

func TestUpdateAndGetDirectRef(t *testing.T) {
	s := NewStore(t.TempDir())
	oid := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	branch := plumbing.NewBranchReferenceName("master")

	require.NoError(t, s.UpdateRef(branch, plumbing.RefValue{Oid: oid}, false))

	value, err := s.GetRefValue(branch, true)
	require.NoError(t, err)
	require.NotNil(t, value)
	require.False(t, value.Symbolic)
	require.Equal(t, oid, value.Oid)
}

func TestGetRefValueMissingIsNil(t *testing.T) {
	s := NewStore(t.TempDir())
	value, err := s.GetRefValue(plumbing.NewBranchReferenceName("nope"), true)
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestSymbolicRefChainDeref(t *testing.T) {
	s := NewStore(t.TempDir())
	branch := plumbing.NewBranchReferenceName("master")
	oid := plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")

	require.NoError(t, s.UpdateRef(branch, plumbing.RefValue{Oid: oid}, false))
	require.NoError(t, s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: branch}, false))

	value, err := s.GetRefValue(plumbing.HEAD, true)
	require.NoError(t, err)
	require.False(t, value.Symbolic)
	require.Equal(t, oid, value.Oid)

	undereffed, err := s.GetRefValue(plumbing.HEAD, false)
	require.NoError(t, err)
	require.True(t, undereffed.Symbolic)
	require.Equal(t, branch, undereffed.Target)
}

func TestUpdateRefThroughSymbolicHEAD(t *testing.T) {
	s := NewStore(t.TempDir())
	branch := plumbing.NewBranchReferenceName("master")
	require.NoError(t, s.UpdateRef(branch, plumbing.RefValue{Oid: plumbing.ZeroHash}, false))
	require.NoError(t, s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: branch}, false))

	newOid := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	require.NoError(t, s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Oid: newOid}, true))

	headValue, err := s.GetRefValue(plumbing.HEAD, false)
	require.NoError(t, err)
	require.True(t, headValue.Symbolic, "advancing through symbolic HEAD must not overwrite HEAD itself")

	branchValue, err := s.GetRefValue(branch, false)
	require.NoError(t, err)
	require.Equal(t, newOid, branchValue.Oid)
}

func TestUpdateRefRefusesSymbolicWithDeref(t *testing.T) {
	s := NewStore(t.TempDir())
	err := s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: plumbing.NewBranchReferenceName("x")}, true)
	require.Error(t, err)
}

func TestDeleteRefAbsenceIsNotError(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.DeleteRef(plumbing.NewBranchReferenceName("nope")))
}

func TestIterRefsDedup(t *testing.T) {
	s := NewStore(t.TempDir())
	oid := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	require.NoError(t, s.UpdateRef(plumbing.NewBranchReferenceName("a"), plumbing.RefValue{Oid: oid}, false))
	require.NoError(t, s.UpdateRef(plumbing.NewBranchReferenceName("b"), plumbing.RefValue{Oid: oid}, false))
	require.NoError(t, s.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: plumbing.NewBranchReferenceName("a")}, false))

	all, err := s.IterRefs("", true)
	require.NoError(t, err)
	seen := map[plumbing.ReferenceName]int{}
	for _, r := range all {
		seen[r.Name]++
	}
	for name, count := range seen {
		require.Equal(t, 1, count, "ref %s yielded more than once", name)
	}
}
