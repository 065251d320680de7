package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

// fakeStore is a commit graph built directly in memory, bypassing the
// object store encoding — history only needs GetObjectContent(oid, commit).
type fakeStore struct {
	commits map[plumbing.Hash]*object.Commit
}

func newFakeStore() *fakeStore {
	return &fakeStore{commits: make(map[plumbing.Hash]*object.Commit)}
}

func (s *fakeStore) GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error) {
	c, ok := s.commits[oid]
	if !ok {
		return nil, plumbing.NewErrNotFound(oid)
	}
	return c.Encode(), nil
}

func (s *fakeStore) add(name string, parents ...plumbing.Hash) plumbing.Hash {
	c := &object.Commit{Tree: plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709"), Parents: parents, Message: name}
	oid := object.Hash(object.CommitType, c.Encode())
	s.commits[oid] = c
	return oid
}

func TestIterCommitsAndParentsLinearHistory(t *testing.T) {
	s := newFakeStore()
	c1 := s.add("c1")
	c2 := s.add("c2", c1)
	c3 := s.add("c3", c2)

	oids, err := IterCommitsAndParents(s, []plumbing.Hash{c3})
	require.NoError(t, err)
	require.ElementsMatch(t, []plumbing.Hash{c1, c2, c3}, oids)
}

func TestIterCommitsAndParentsEachOnce(t *testing.T) {
	s := newFakeStore()
	base := s.add("base")
	a := s.add("a", base)
	b := s.add("b", base)
	merge := s.add("merge", a, b)

	oids, err := IterCommitsAndParents(s, []plumbing.Hash{merge})
	require.NoError(t, err)
	seen := map[plumbing.Hash]int{}
	for _, o := range oids {
		seen[o]++
	}
	for oid, count := range seen {
		require.Equal(t, 1, count, "commit %s yielded more than once", oid)
	}
	require.Len(t, oids, 4)
}

func TestGetMergeBase(t *testing.T) {
	s := newFakeStore()
	base := s.add("base")
	a := s.add("a", base)
	b := s.add("b", base)

	mb, err := GetMergeBase(s, a, b)
	require.NoError(t, err)
	require.Equal(t, base, mb)
}

func TestGetMergeBaseNoCommonAncestor(t *testing.T) {
	s := newFakeStore()
	a := s.add("a")
	b := s.add("b")

	_, err := GetMergeBase(s, a, b)
	require.True(t, plumbing.IsErrNoCommonAncestor(err))
}

func TestIsAncestor(t *testing.T) {
	s := newFakeStore()
	c1 := s.add("c1")
	c2 := s.add("c2", c1)

	ok, err := IsAncestor(s, c1, c2)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = IsAncestor(s, c2, c1)
	require.NoError(t, err)
	require.False(t, ok)
}
