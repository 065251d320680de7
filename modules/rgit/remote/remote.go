// Package remote is Remote Sync: ref mirroring and transitive object
// transfer between two repository directories reachable over the
// filesystem. Grounded on original_source/src/remote.py's fetch/push,
// with a mpb progress bar (gated on go-isatty, mirroring
// pkg/zeta/transfer.go's terminal-width-aware bar) layered over the copy
// loop as a cosmetic addition.
package remote

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/history"
	"github.com/rgitvcs/rgit/modules/rgit/object"
	"github.com/rgitvcs/rgit/modules/rgit/refs"
)

// Repo is the minimal surface remote needs from a repository: its ref
// store and object store.
type Repo interface {
	Refs() *refs.Store
	ObjectExists(oid plumbing.Hash) bool
	GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error)
	HashObject(content []byte, t object.Type) (plumbing.Hash, error)
}

func newProgress(task string, total int) (*mpb.Progress, *mpb.Bar) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil, nil
	}
	p := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithAutoRefresh())
	bar := p.New(int64(total),
		mpb.BarStyle().Filler("#").Padding(" "),
		mpb.PrependDecorators(decor.Name(task)),
		mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
	)
	return p, bar
}

// IterObjectsInCommits walks commit history from starts, yielding every
// commit oid plus every tree/blob reachable from each commit's root tree,
// deduplicated via a shared visited set.
func IterObjectsInCommits(repo Repo, starts []plumbing.Hash) ([]plumbing.Hash, error) {
	commits, err := history.IterCommitsAndParents(repo, starts)
	if err != nil {
		return nil, err
	}
	seen := make(map[plumbing.Hash]struct{})
	var out []plumbing.Hash
	add := func(oid plumbing.Hash) {
		if _, ok := seen[oid]; !ok {
			seen[oid] = struct{}{}
			out = append(out, oid)
		}
	}
	for _, c := range commits {
		add(c)
		payload, err := repo.GetObjectContent(c, object.CommitType)
		if err != nil {
			return nil, err
		}
		commit, err := object.DecodeCommit(c, payload)
		if err != nil {
			return nil, err
		}
		if err := addTreeObjects(repo, commit.Tree, seen, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func addTreeObjects(repo Repo, oid plumbing.Hash, seen map[plumbing.Hash]struct{}, out *[]plumbing.Hash) error {
	if _, ok := seen[oid]; ok {
		return nil
	}
	seen[oid] = struct{}{}
	*out = append(*out, oid)
	payload, err := repo.GetObjectContent(oid, object.TreeType)
	if err != nil {
		return err
	}
	t, err := object.DecodeTree(oid, payload)
	if err != nil {
		return err
	}
	for _, e := range t.Entries {
		switch e.Type {
		case object.TreeEntryKind:
			if err := addTreeObjects(repo, e.Oid, seen, out); err != nil {
				return err
			}
		case object.BlobEntry:
			if _, ok := seen[e.Oid]; !ok {
				seen[e.Oid] = struct{}{}
				*out = append(*out, e.Oid)
			}
		}
	}
	return nil
}

func copyObjects(from, to Repo, oids []plumbing.Hash, task string) error {
	var missing []plumbing.Hash
	for _, oid := range oids {
		if !to.ObjectExists(oid) {
			missing = append(missing, oid)
		}
	}
	p, bar := newProgress(task, len(missing))
	if p != nil {
		defer p.Wait()
	}
	for _, oid := range missing {
		frame, err := from.GetObjectContent(oid, object.InvalidType)
		if err != nil {
			return err
		}
		t, err := detectType(from, oid)
		if err != nil {
			return err
		}
		if _, err := to.HashObject(frame, t); err != nil {
			return err
		}
		if bar != nil {
			bar.Increment()
		}
	}
	return nil
}

func detectType(repo Repo, oid plumbing.Hash) (object.Type, error) {
	for _, t := range []object.Type{object.BlobType, object.TreeType, object.CommitType} {
		if _, err := repo.GetObjectContent(oid, t); err == nil {
			return t, nil
		}
	}
	return object.InvalidType, plumbing.NewErrMalformedObject(oid, "unable to determine object type")
}

// Fetch mirrors remote's refs/heads/* into local refs/remote/* (never
// following symbolic chains) and copies every object reachable from those
// branches that is missing locally.
func Fetch(local, remoteRepo Repo) error {
	remoteBranches, err := remoteRepo.Refs().IterRefs("heads", false)
	if err != nil {
		return err
	}
	var starts []plumbing.Hash
	for _, b := range remoteBranches {
		if b.Value.Symbolic || b.Value.Oid.IsZero() {
			continue
		}
		starts = append(starts, b.Value.Oid)
		short := b.Name.Short()
		if err := local.Refs().UpdateRef(plumbing.ReferenceName("refs/remote/"+short), b.Value, false); err != nil {
			return err
		}
	}
	objs, err := IterObjectsInCommits(remoteRepo, starts)
	if err != nil {
		return err
	}
	return copyObjects(remoteRepo, local, objs, "fetching")
}

// CanPush reports whether pushing localOid to branch on remoteRepo is
// fast-forward-safe: the remote branch is absent or empty, or the remote
// oid is an ancestor of localOid. The ancestry walk reads remoteRepo's
// object store, so when localOid's history is not present there it
// returns a not-found error.
func CanPush(remoteRepo Repo, branch string, localOid plumbing.Hash) (bool, error) {
	value, err := remoteRepo.Refs().GetRefValue(plumbing.NewBranchReferenceName(branch), false)
	if err != nil {
		return false, err
	}
	if value == nil || value.Oid.IsZero() {
		return true, nil
	}
	return history.IsAncestor(remoteRepo, value.Oid, localOid)
}

// Push first runs the mandatory fast-forward safety check (remote branch
// absent or empty, or its oid an ancestor of localOid, walked in local's
// object store where localOid's history lives), then transfers every
// object reachable from localOid that remoteRepo is missing and advances
// remote refs/heads/<branch> to localOid.
func Push(local, remoteRepo Repo, branch string, localOid plumbing.Hash) error {
	value, err := remoteRepo.Refs().GetRefValue(plumbing.NewBranchReferenceName(branch), false)
	if err != nil {
		return err
	}
	ok := value == nil || value.Oid.IsZero()
	if !ok {
		if ok, err = history.IsAncestor(local, value.Oid, localOid); err != nil {
			return err
		}
	}
	if !ok {
		return plumbing.NewErrInvalidState(fmt.Sprintf("push rejected: not fast-forward for branch %q", branch))
	}
	objs, err := IterObjectsInCommits(local, []plumbing.Hash{localOid})
	if err != nil {
		return err
	}
	if err := copyObjects(local, remoteRepo, objs, "pushing"); err != nil {
		return err
	}
	return remoteRepo.Refs().UpdateRef(plumbing.NewBranchReferenceName(branch), plumbing.RefValue{Oid: localOid}, false)
}
