// Package refs is the filesystem-backed reference store: direct and
// symbolic refs written as loose files under the repository root, with
// lock-file writes grounded on the teacher's modules/zeta/refs/filesystem.go.
// Unlike the teacher, there is no packed-refs layer — spec.md's repository
// layout names only loose ref files.
package refs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

const maxDerefDepth = 100

// Store binds the reference operations to one repository root (the
// directory containing HEAD, refs/, etc — i.e. "<repo>/.rgit").
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) path(name plumbing.ReferenceName) string {
	return filepath.Join(s.root, filepath.FromSlash(string(name)))
}

func openLockFile(name string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_RDWR|os.O_TRUNC, 0o644)
}

// readRaw reads name's raw file content, trimmed. Returns (nil, nil) if
// the file does not exist.
func (s *Store) readRaw(name plumbing.ReferenceName) (*string, error) {
	b, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, plumbing.NewErrIo(err)
	}
	line := strings.TrimSpace(string(b))
	return &line, nil
}

func parseLine(name plumbing.ReferenceName, line string) (*plumbing.Reference, error) {
	if target, ok := strings.CutPrefix(line, "ref: "); ok {
		return plumbing.NewSymbolicReference(name, plumbing.ReferenceName(strings.TrimSpace(target))), nil
	}
	oid, err := plumbing.NewHashEx(line)
	if err != nil {
		return nil, plumbing.NewErrMalformedObject(plumbing.ZeroHash, fmt.Sprintf("ref %s: malformed content %q", name, line))
	}
	return plumbing.NewHashReference(name, oid), nil
}

// GetRefValue reads name. If deref and the stored value is symbolic, it
// follows the chain to its terminal direct value, bounded to
// maxDerefDepth hops. Returns (nil, nil) if name does not exist.
func (s *Store) GetRefValue(name plumbing.ReferenceName, deref bool) (*plumbing.RefValue, error) {
	cur := name
	for depth := 0; depth < maxDerefDepth; depth++ {
		line, err := s.readRaw(cur)
		if err != nil {
			return nil, err
		}
		if line == nil {
			return nil, nil
		}
		ref, err := parseLine(cur, *line)
		if err != nil {
			return nil, err
		}
		if !deref || !ref.Value.Symbolic {
			return &ref.Value, nil
		}
		cur = ref.Value.Target
	}
	return nil, plumbing.NewErrInvalidState("symbolic ref chain exceeds maximum depth: " + string(name))
}

// terminal follows name's symbolic chain and returns the name of the ref
// that should actually be written to.
func (s *Store) terminal(name plumbing.ReferenceName) (plumbing.ReferenceName, error) {
	cur := name
	for depth := 0; depth < maxDerefDepth; depth++ {
		line, err := s.readRaw(cur)
		if err != nil {
			return "", err
		}
		if line == nil {
			return cur, nil
		}
		target, ok := strings.CutPrefix(*line, "ref: ")
		if !ok {
			return cur, nil
		}
		cur = plumbing.ReferenceName(strings.TrimSpace(target))
	}
	return "", plumbing.NewErrInvalidState("symbolic ref chain exceeds maximum depth: " + string(name))
}

// UpdateRef writes value at name. When deref is true, name is first
// resolved through its symbolic chain to the terminal ref, and value is
// written there instead — the rendering of spec.md's "branch advance
// follows the symbolic chain of HEAD". A symbolic value may only be
// written when deref is false, matching spec.md's §4.2 invariant.
func (s *Store) UpdateRef(name plumbing.ReferenceName, value plumbing.RefValue, deref bool) error {
	if value.Symbolic && deref {
		return plumbing.NewErrInvalidState("update_ref: cannot write symbolic value with deref=true")
	}
	target := name
	if deref {
		t, err := s.terminal(name)
		if err != nil {
			return err
		}
		target = t
	}
	var content string
	if value.Symbolic {
		content = fmt.Sprintf("ref: %s\n", value.Target)
	} else {
		content = value.Oid.String() + "\n"
	}
	fileName := s.path(target)
	lockName := fileName + ".lock"
	fd, err := openLockFile(lockName)
	if err != nil {
		return plumbing.NewErrIo(err)
	}
	defer os.Remove(lockName)
	if _, err := fd.WriteString(content); err != nil {
		_ = fd.Close()
		return plumbing.NewErrIo(err)
	}
	if err := fd.Close(); err != nil {
		return plumbing.NewErrIo(err)
	}
	if err := os.Rename(lockName, fileName); err != nil {
		return plumbing.NewErrIo(err)
	}
	return nil
}

// DeleteRef removes name's file. Absence is not an error.
func (s *Store) DeleteRef(name plumbing.ReferenceName) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return plumbing.NewErrIo(err)
	}
	return nil
}

// IterRefs yields every ref under refs/<prefix>, plus HEAD and MERGE_HEAD
// (if present) when prefix is empty, deduplicated by name in a single
// pass — spec.md §9's decision on iter_refs overlap.
func (s *Store) IterRefs(prefix string, deref bool) ([]*plumbing.Reference, error) {
	seen := make(map[plumbing.ReferenceName]struct{})
	var out []*plumbing.Reference

	add := func(name plumbing.ReferenceName) error {
		if _, ok := seen[name]; ok {
			return nil
		}
		value, err := s.GetRefValue(name, deref)
		if err != nil {
			return err
		}
		if value == nil {
			return nil
		}
		seen[name] = struct{}{}
		out = append(out, &plumbing.Reference{Name: name, Value: *value})
		return nil
	}

	refsRoot := filepath.Join(s.root, "refs", filepath.FromSlash(prefix))
	err := filepath.WalkDir(refsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		return add(plumbing.ReferenceName(filepath.ToSlash(rel)))
	})
	if err != nil {
		return nil, plumbing.NewErrIo(err)
	}

	if prefix == "" {
		if err := add(plumbing.HEAD); err != nil {
			return nil, err
		}
		if err := add(plumbing.MergeHead); err != nil {
			return nil, err
		}
	}

	sort.Sort(plumbing.ReferenceSlice(out))
	return out, nil
}
