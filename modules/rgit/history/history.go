// Package history is the commit-graph traversal engine: reachable-commit
// walk, merge-base search, and ancestry tests. Grounded on
// original_source/src/base.py's iter_commits_and_parents/get_merge_base/
// is_ancestor, rendered with gods' deque/queue/hashset containers in place
// of the teacher's commit_walker_bfs.go iterator style.
package history

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

// CommitReader is the minimal object-store surface the history engine
// needs: fetch a commit by oid.
type CommitReader interface {
	GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error)
}

func getCommit(store CommitReader, oid plumbing.Hash) (*object.Commit, error) {
	payload, err := store.GetObjectContent(oid, object.CommitType)
	if err != nil {
		return nil, err
	}
	return object.DecodeCommit(oid, payload)
}

// IterCommitsAndParents yields each commit oid reachable from starts
// exactly once. A double-ended queue is seeded with starts; on visiting a
// commit, its first parent is pushed to the front (continuing the current
// branch depth-first) and remaining parents pushed to the back (deferred
// to other branches) — the same traversal shape as
// iter_commits_and_parents.
func IterCommitsAndParents(store CommitReader, starts []plumbing.Hash) ([]plumbing.Hash, error) {
	seen := hashset.New()
	dq := doublylinkedlist.New()
	for _, s := range starts {
		if !s.IsZero() {
			dq.Add(s)
		}
	}

	var out []plumbing.Hash
	for !dq.Empty() {
		v, _ := dq.Get(0)
		dq.Remove(0)
		oid := v.(plumbing.Hash)
		if seen.Contains(oid) {
			continue
		}
		seen.Add(oid)
		out = append(out, oid)

		c, err := getCommit(store, oid)
		if err != nil {
			return nil, err
		}
		for i, p := range c.Parents {
			if p.IsZero() || seen.Contains(p) {
				continue
			}
			if i == 0 {
				dq.Insert(0, p)
			} else {
				dq.Add(p)
			}
		}
	}
	return out, nil
}

// GetMergeBase performs a dual-tagged BFS from a and b simultaneously,
// returning the first oid discovered by one side that the other side has
// already visited. Fails with NoCommonAncestorError if both sides exhaust
// without meeting.
func GetMergeBase(store CommitReader, a, b plumbing.Hash) (plumbing.Hash, error) {
	if a.IsZero() || b.IsZero() {
		return plumbing.ZeroHash, plumbing.NewErrNoCommonAncestor(a, b)
	}
	visited := map[string]*hashset.Set{
		"a": hashset.New(),
		"b": hashset.New(),
	}
	type item struct {
		oid  plumbing.Hash
		side string
	}
	q := linkedlistqueue.New()
	q.Enqueue(item{oid: a, side: "a"})
	q.Enqueue(item{oid: b, side: "b"})

	other := map[string]string{"a": "b", "b": "a"}

	for !q.Empty() {
		v, _ := q.Dequeue()
		it := v.(item)
		otherSide := visited[other[it.side]]
		if otherSide.Contains(it.oid) {
			return it.oid, nil
		}
		mySide := visited[it.side]
		if mySide.Contains(it.oid) {
			continue
		}
		mySide.Add(it.oid)

		c, err := getCommit(store, it.oid)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		for _, p := range c.Parents {
			if p.IsZero() {
				continue
			}
			q.Enqueue(item{oid: p, side: it.side})
		}
	}
	return plumbing.ZeroHash, plumbing.NewErrNoCommonAncestor(a, b)
}

// IsAncestor reports whether old is reachable from new via parent edges.
func IsAncestor(store CommitReader, old, newOid plumbing.Hash) (bool, error) {
	if old.IsZero() {
		return false, nil
	}
	reachable, err := IterCommitsAndParents(store, []plumbing.Hash{newOid})
	if err != nil {
		return false, err
	}
	for _, oid := range reachable {
		if oid == old {
			return true, nil
		}
	}
	return false, nil
}
