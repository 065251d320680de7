// Package worktree snapshots a filesystem directory into a flat
// path→blob-oid map and materializes such a map back onto disk. Grounded
// on original_source/src/base.py's get_working_tree/_empty_current_dir/
// read_tree pair.
package worktree

import (
	"os"
	"path/filepath"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

// Store is the minimal object-store surface worktree needs.
type Store interface {
	HashObject(content []byte, t object.Type) (plumbing.Hash, error)
	GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error)
}

// IsIgnored reports whether any path component is ".rgit" or ".git" — the
// rule spec.md §4.4 names for excluding the repository's own metadata
// directory (and a co-located git checkout) from working-tree snapshots.
func IsIgnored(path string) bool {
	for _, c := range splitPath(path) {
		if c == ".rgit" || c == ".git" {
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	cur := ""
	var out []string
	for _, r := range p {
		if r == '/' {
			if cur != "" {
				out = append(out, cur)
			}
			cur = ""
			continue
		}
		cur += string(r)
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

// GetWorkingTree walks start recursively, skipping ignored paths, hashes
// each regular file as a blob (writing its content to store), and
// returns a flat repo-relative path→oid map.
func GetWorkingTree(store Store, start string) (map[string]plumbing.Hash, error) {
	out := make(map[string]plumbing.Hash)
	err := filepath.WalkDir(start, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(start, p)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if IsIgnored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		content, readErr := os.ReadFile(p)
		if readErr != nil {
			return plumbing.NewErrIo(readErr)
		}
		oid, hashErr := store.HashObject(content, object.BlobType)
		if hashErr != nil {
			return hashErr
		}
		out[filepath.ToSlash(rel)] = oid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EmptyCWD removes every non-ignored file under root, then prunes any
// directories left empty by that removal. Used before materializing a
// tree so stale files don't survive a checkout.
func EmptyCWD(root string) error {
	var files []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		if IsIgnored(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return plumbing.NewErrIo(err)
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			return plumbing.NewErrIo(err)
		}
	}
	return pruneEmptyDirs(root)
}

func pruneEmptyDirs(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return plumbing.NewErrIo(err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".rgit" || e.Name() == ".git" {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if err := pruneEmptyDirs(dir); err != nil {
			return err
		}
		remaining, err := os.ReadDir(dir)
		if err != nil {
			return plumbing.NewErrIo(err)
		}
		if len(remaining) == 0 {
			if err := os.Remove(dir); err != nil {
				return plumbing.NewErrIo(err)
			}
		}
	}
	return nil
}

// Materialize writes every entry of flat (a path→blob-oid map) onto disk
// under root, creating parent directories as needed.
func Materialize(store Store, root string, flat map[string]plumbing.Hash) error {
	for p, oid := range flat {
		content, err := store.GetObjectContent(oid, object.BlobType)
		if err != nil {
			return err
		}
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return plumbing.NewErrIo(err)
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			return plumbing.NewErrIo(err)
		}
	}
	return nil
}
