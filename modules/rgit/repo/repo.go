// Package repo is the Repo Context: a repository-handle value binding a
// root directory, replacing original_source's module-level mutable
// RGIT_DIR global (per spec.md §9's redesign note) with an explicit
// *Repository passed to every operation. Every operation from §4.1–§4.9
// is exposed as a method.
package repo

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/backend"
	"github.com/rgitvcs/rgit/modules/rgit/config"
	"github.com/rgitvcs/rgit/modules/rgit/diffmerge"
	"github.com/rgitvcs/rgit/modules/rgit/history"
	"github.com/rgitvcs/rgit/modules/rgit/index"
	"github.com/rgitvcs/rgit/modules/rgit/object"
	"github.com/rgitvcs/rgit/modules/rgit/refs"
	"github.com/rgitvcs/rgit/modules/rgit/remote"
	"github.com/rgitvcs/rgit/modules/rgit/resolve"
	"github.com/rgitvcs/rgit/modules/rgit/treeio"
	"github.com/rgitvcs/rgit/modules/rgit/worktree"
)

const dotDir = ".rgit"

var log = logrus.WithField("component", "repo")

// Repository binds every operation to one <root>/.rgit directory.
type Repository struct {
	WorkTree string // the directory containing .rgit
	GitDir   string // <WorkTree>/.rgit
	db       *backend.Database
	refs     *refs.Store
}

// Refs exposes the bound ref store, satisfying remote.Repo.
func (r *Repository) Refs() *refs.Store { return r.refs }

// ObjectExists, GetObjectContent and HashObject satisfy the small
// object-store surfaces treeio/worktree/history/diffmerge/remote depend on.
func (r *Repository) ObjectExists(oid plumbing.Hash) bool { return r.db.ObjectExists(oid) }

func (r *Repository) GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error) {
	return r.db.GetObjectContent(oid, expected)
}

func (r *Repository) HashObject(content []byte, t object.Type) (plumbing.Hash, error) {
	return r.db.HashObject(content, t)
}

// Init creates a new repository at root: an empty object store, an
// unborn refs/heads/master, and a symbolic HEAD pointing at it — unchanged
// from original_source/src/base.py:init.
func Init(root string) (*Repository, error) {
	gitDir := filepath.Join(root, dotDir)
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		return nil, plumbing.NewErrIo(err)
	}
	db, err := backend.NewDatabase(gitDir)
	if err != nil {
		return nil, err
	}
	refStore := refs.NewStore(gitDir)
	master := plumbing.NewBranchReferenceName("master")
	if err := refStore.UpdateRef(master, plumbing.RefValue{Oid: plumbing.ZeroHash}, false); err != nil {
		return nil, err
	}
	if err := refStore.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: master}, false); err != nil {
		return nil, err
	}
	log.WithField("root", root).Info("initialized repository")
	return &Repository{WorkTree: root, GitDir: gitDir, db: db, refs: refStore}, nil
}

// Open binds to an existing <root>/.rgit.
func Open(root string) (*Repository, error) {
	gitDir := filepath.Join(root, dotDir)
	if _, err := os.Stat(gitDir); err != nil {
		if os.IsNotExist(err) {
			return nil, plumbing.NewErrInvalidState("not a rgit repository: " + root)
		}
		return nil, plumbing.NewErrIo(err)
	}
	db, err := backend.NewDatabase(gitDir)
	if err != nil {
		return nil, err
	}
	return &Repository{WorkTree: root, GitDir: gitDir, db: db, refs: refs.NewStore(gitDir)}, nil
}

// OpenRemote opens an independent *Repository bound to a remote's .rgit,
// the Go rendering of spec.md §9's "scoped switch... becomes a second
// handle opened against the remote path".
func OpenRemote(path string) (*Repository, error) {
	return Open(path)
}

// Close releases the bound object store.
func (r *Repository) Close() error { return r.db.Close() }

// --- 4.1 Object Store is exposed directly via HashObject/GetObjectContent
// above. ---

// --- 4.2 Ref Store passthroughs are exposed directly via Refs() ---

// --- 4.3 Tree Codec / Index ---

// Add stages paths (relative to WorkTree) into the index: each file is
// hashed as a blob and recorded path→oid, persisted via the scoped index
// acquisition. A directory path stages every non-ignored file under it.
func (r *Repository) Add(paths []string) error {
	return index.With(r.GitDir, func(idx *index.Index) error {
		addFile := func(rel string) error {
			content, err := os.ReadFile(filepath.Join(r.WorkTree, rel))
			if err != nil {
				return plumbing.NewErrIo(err)
			}
			oid, err := r.db.HashObject(content, object.BlobType)
			if err != nil {
				return err
			}
			idx.Entries[filepath.ToSlash(filepath.Clean(rel))] = oid
			return nil
		}
		for _, p := range paths {
			full := filepath.Join(r.WorkTree, p)
			info, err := os.Stat(full)
			if err != nil {
				return plumbing.NewErrIo(err)
			}
			if !info.IsDir() {
				if err := addFile(p); err != nil {
					return err
				}
				continue
			}
			err = filepath.WalkDir(full, func(sub string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				rel, relErr := filepath.Rel(r.WorkTree, sub)
				if relErr != nil {
					return relErr
				}
				if worktree.IsIgnored(rel) {
					if d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				if d.IsDir() {
					return nil
				}
				return addFile(rel)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteTree writes the nested tree structure implied by the current
// index and returns the root tree oid.
func (r *Repository) WriteTree() (plumbing.Hash, error) {
	idx, err := index.Load(r.GitDir)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return treeio.WriteTree(r.db, idx.Entries)
}

// GetTree flattens the tree rooted at oid into a path→blob-oid map.
func (r *Repository) GetTree(oid plumbing.Hash) (map[string]plumbing.Hash, error) {
	return treeio.GetTree(r.db, oid, "")
}

// ReadTree replaces the index with the flattened tree at oid, optionally
// materializing it into the working directory.
func (r *Repository) ReadTree(oid plumbing.Hash, updateCwd bool) error {
	flat, err := r.GetTree(oid)
	if err != nil {
		return err
	}
	if updateCwd {
		if err := worktree.EmptyCWD(r.WorkTree); err != nil {
			return err
		}
		if err := worktree.Materialize(r.db, r.WorkTree, flat); err != nil {
			return err
		}
	}
	return index.With(r.GitDir, func(idx *index.Index) error {
		idx.Clear()
		for p, oid := range flat {
			idx.Entries[p] = oid
		}
		return nil
	})
}

// --- 4.4 Working Tree ---

func (r *Repository) GetWorkingTree() (map[string]plumbing.Hash, error) {
	return worktree.GetWorkingTree(r.db, r.WorkTree)
}

// --- 4.5 Commit Model ---

// Commit writes the tree from the current index, links it to HEAD's
// (and, mid-merge, MERGE_HEAD's) commit as parent(s), advances the branch
// HEAD points to, and returns the new commit's oid.
func (r *Repository) Commit(message string) (plumbing.Hash, error) {
	treeOid, err := r.WriteTree()
	if err != nil {
		return plumbing.ZeroHash, err
	}
	var parents []plumbing.Hash
	headValue, err := r.refs.GetRefValue(plumbing.HEAD, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if headValue != nil && !headValue.Oid.IsZero() {
		parents = append(parents, headValue.Oid)
	}
	mergeValue, err := r.refs.GetRefValue(plumbing.MergeHead, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if mergeValue != nil && !mergeValue.Oid.IsZero() {
		parents = append(parents, mergeValue.Oid)
	}
	commit := &object.Commit{Tree: treeOid, Parents: parents, Message: message}
	oid, err := r.db.HashObject(commit.Encode(), object.CommitType)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.refs.UpdateRef(plumbing.HEAD, plumbing.RefValue{Oid: oid}, true); err != nil {
		return plumbing.ZeroHash, err
	}
	if mergeValue != nil {
		if err := r.refs.DeleteRef(plumbing.MergeHead); err != nil {
			return plumbing.ZeroHash, err
		}
	}
	log.WithField("oid", oid.String()).Info("committed")
	return oid, nil
}

func (r *Repository) GetCommit(oid plumbing.Hash) (*object.Commit, error) {
	payload, err := r.db.GetObjectContent(oid, object.CommitType)
	if err != nil {
		return nil, err
	}
	return object.DecodeCommit(oid, payload)
}

// --- 4.6 History Engine ---

func (r *Repository) IterCommitsAndParents(starts []plumbing.Hash) ([]plumbing.Hash, error) {
	return history.IterCommitsAndParents(r.db, starts)
}

func (r *Repository) GetMergeBase(a, b plumbing.Hash) (plumbing.Hash, error) {
	return history.GetMergeBase(r.db, a, b)
}

func (r *Repository) IsAncestor(old, newOid plumbing.Hash) (bool, error) {
	return history.IsAncestor(r.db, old, newOid)
}

// --- 4.7 Diff / Merge ---

func (r *Repository) DiffTrees(ctx context.Context, to, from map[string]plumbing.Hash) ([]byte, error) {
	return diffmerge.DiffTrees(ctx, r.db, to, from)
}

func (r *Repository) ReadTreeMerged(ctx context.Context, headTree, otherTree, baseTree plumbing.Hash, updateCwd bool) error {
	headFlat, err := r.GetTree(headTree)
	if err != nil {
		return err
	}
	otherFlat, err := r.GetTree(otherTree)
	if err != nil {
		return err
	}
	baseFlat, err := r.GetTree(baseTree)
	if err != nil {
		return err
	}
	if updateCwd {
		if err := worktree.EmptyCWD(r.WorkTree); err != nil {
			return err
		}
	}
	merged, err := diffmerge.MergeTrees(ctx, r.db, headFlat, otherFlat, baseFlat)
	if err != nil {
		return err
	}
	if updateCwd {
		if err := worktree.Materialize(r.db, r.WorkTree, merged); err != nil {
			return err
		}
	}
	return index.With(r.GitDir, func(idx *index.Index) error {
		idx.Clear()
		for p, oid := range merged {
			idx.Entries[p] = oid
		}
		return nil
	})
}

// Merge merges targetOid into HEAD: fast-forwards when possible, else
// performs a three-way merge and records a two-parent commit.
func (r *Repository) Merge(ctx context.Context, targetOid plumbing.Hash) (plumbing.Hash, error) {
	headValue, err := r.refs.GetRefValue(plumbing.HEAD, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	headOid := plumbing.ZeroHash
	if headValue != nil {
		headOid = headValue.Oid
	}
	// An unborn HEAD has no history to reconcile: merging into it is
	// always a fast-forward.
	base := plumbing.ZeroHash
	if !headOid.IsZero() {
		base, err = r.GetMergeBase(headOid, targetOid)
		if err != nil {
			return plumbing.ZeroHash, err
		}
	}
	if base == headOid {
		target, err := r.GetCommit(targetOid)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		if err := r.refs.UpdateRef(plumbing.HEAD, plumbing.RefValue{Oid: targetOid}, true); err != nil {
			return plumbing.ZeroHash, err
		}
		if err := r.ReadTree(target.Tree, true); err != nil {
			return plumbing.ZeroHash, err
		}
		return targetOid, nil
	}

	headCommit, err := r.GetCommit(headOid)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	targetCommit, err := r.GetCommit(targetOid)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	baseCommit, err := r.GetCommit(base)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.ReadTreeMerged(ctx, headCommit.Tree, targetCommit.Tree, baseCommit.Tree, true); err != nil {
		return plumbing.ZeroHash, err
	}
	if err := r.refs.UpdateRef(plumbing.MergeHead, plumbing.RefValue{Oid: targetOid}, false); err != nil {
		return plumbing.ZeroHash, err
	}
	return r.Commit("merge " + targetOid.String())
}

// --- 4.8 Name Resolver ---

func (r *Repository) GetOid(name string) (plumbing.Hash, error) {
	return resolve.GetOid(r.refs, name)
}

// --- 4.9 Remote Sync ---

// Fetch mirrors refs and objects from remotePath — a raw path or a
// configured remote name — into r.
func (r *Repository) Fetch(remotePath string) error {
	resolved := config.ResolveRemote(r.GitDir, remotePath)
	remoteRepo, err := OpenRemote(resolved)
	if err != nil {
		return err
	}
	defer remoteRepo.Close()
	return remote.Fetch(r, remoteRepo)
}

// Push transfers branch's objects and ref to remotePath, refusing unless
// fast-forward safe.
func (r *Repository) Push(remotePath, branch string) error {
	resolved := config.ResolveRemote(r.GitDir, remotePath)
	remoteRepo, err := OpenRemote(resolved)
	if err != nil {
		return err
	}
	defer remoteRepo.Close()
	localOid, err := r.GetOid(branch)
	if err != nil {
		return err
	}
	return remote.Push(r, remoteRepo, branch, localOid)
}

// SetRemote records remotePath under name for later Fetch/Push calls.
func (r *Repository) SetRemote(name, remotePath string) error {
	return config.SetRemote(r.GitDir, name, remotePath)
}

// --- Checkout / branch / tag / status / reset / show / log: CLI-level
// conveniences built from the operations above, kept here since they
// each touch more than one component (refs + index + working tree). ---

// Checkout moves HEAD to name: if name resolves to a branch, HEAD becomes
// symbolic to it; otherwise HEAD is set directly (detached).
func (r *Repository) Checkout(name string) error {
	oid, err := r.GetOid(name)
	if err != nil {
		return err
	}
	commit, err := r.GetCommit(oid)
	if err != nil {
		return err
	}
	if err := r.ReadTree(commit.Tree, true); err != nil {
		return err
	}
	branchName := plumbing.NewBranchReferenceName(name)
	if v, err := r.refs.GetRefValue(branchName, false); err == nil && v != nil {
		return r.refs.UpdateRef(plumbing.HEAD, plumbing.RefValue{Symbolic: true, Target: branchName}, false)
	}
	return r.refs.UpdateRef(plumbing.HEAD, plumbing.RefValue{Oid: oid}, false)
}

// CreateBranch creates refs/heads/<name> pointing at startOid.
func (r *Repository) CreateBranch(name string, startOid plumbing.Hash) error {
	return r.refs.UpdateRef(plumbing.NewBranchReferenceName(name), plumbing.RefValue{Oid: startOid}, false)
}

// CreateTag creates refs/tags/<name> pointing at oid.
func (r *Repository) CreateTag(name string, oid plumbing.Hash) error {
	return r.refs.UpdateRef(plumbing.NewTagReferenceName(name), plumbing.RefValue{Oid: oid}, false)
}

// IsDetached reports whether HEAD is currently a direct (non-symbolic) ref.
func (r *Repository) IsDetached() (bool, error) {
	value, err := r.refs.GetRefValue(plumbing.HEAD, false)
	if err != nil {
		return false, err
	}
	return value != nil && !value.Symbolic, nil
}

// Reset moves the current branch (or fails on a detached HEAD, per
// spec.md's E5 scenario) to oid.
func (r *Repository) Reset(oid plumbing.Hash) error {
	detached, err := r.IsDetached()
	if err != nil {
		return err
	}
	if detached {
		return plumbing.NewErrInvalidState("reset: HEAD is detached")
	}
	return r.refs.UpdateRef(plumbing.HEAD, plumbing.RefValue{Oid: oid}, true)
}
