// Package diffmerge is the pairwise/triple tree comparison and the
// external-collaborator-driven blob diff and three-way merge. Grounded on
// original_source/src/diff.py's compare_trees/diff_blobs/merge_blobs
// trio; the external processes are invoked through modules/command, the
// trimmed adaptation of the teacher's process wrapper.
package diffmerge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/rgitvcs/rgit/modules/command"
	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

// Store is the minimal object-store surface diffmerge needs.
type Store interface {
	HashObject(content []byte, t object.Type) (plumbing.Hash, error)
	GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error)
}

// ChangeKind labels how a path differs between two trees.
type ChangeKind int8

const (
	Unchanged ChangeKind = iota
	Created
	Deleted
	Modified
)

// CompareTrees yields, for the union of paths across trees, the oid in
// each tree or plumbing.ZeroHash when the path is absent there.
func CompareTrees(trees ...map[string]plumbing.Hash) map[string][]plumbing.Hash {
	paths := make(map[string]struct{})
	for _, t := range trees {
		for p := range t {
			paths[p] = struct{}{}
		}
	}
	out := make(map[string][]plumbing.Hash, len(paths))
	for p := range paths {
		row := make([]plumbing.Hash, len(trees))
		for i, t := range trees {
			row[i] = t[p] // zero value if absent
		}
		out[p] = row
	}
	return out
}

// IterChangedFiles compares to against from and labels each differing
// path created/deleted/modified.
func IterChangedFiles(to, from map[string]plumbing.Hash) map[string]ChangeKind {
	out := make(map[string]ChangeKind)
	rows := CompareTrees(to, from)
	for p, row := range rows {
		oTo, oFrom := row[0], row[1]
		switch {
		case oTo == oFrom:
			continue
		case oFrom.IsZero():
			out[p] = Created
		case oTo.IsZero():
			out[p] = Deleted
		default:
			out[p] = Modified
		}
	}
	return out
}

func diffCommand() (string, []string) {
	if raw := os.Getenv("RGIT_DIFF"); raw != "" {
		fields, err := shellquote.Split(raw)
		if err == nil && len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return "diff", nil
}

func mergeCommand() (string, []string) {
	if raw := os.Getenv("RGIT_MERGE"); raw != "" {
		fields, err := shellquote.Split(raw)
		if err == nil && len(fields) > 0 {
			return fields[0], fields[1:]
		}
	}
	return "diff3", nil
}

// writeTemp writes content to a temp file and returns its path; caller
// must remove it.
func writeTemp(dir, pattern string, content []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", plumbing.NewErrIo(err)
	}
	defer f.Close()
	if _, err := f.Write(content); err != nil {
		return "", plumbing.NewErrIo(err)
	}
	return f.Name(), nil
}

// DiffBlobs invokes the external line-diff collaborator over the content
// of oidFrom/oidTo (either may be the zero hash, meaning "absent" — an
// empty temp file), returning its stdout bytes verbatim.
func DiffBlobs(ctx context.Context, store Store, path string, oidFrom, oidTo plumbing.Hash) ([]byte, error) {
	from, err := contentOrEmpty(store, oidFrom)
	if err != nil {
		return nil, err
	}
	to, err := contentOrEmpty(store, oidTo)
	if err != nil {
		return nil, err
	}
	dir, err := os.MkdirTemp("", "rgit-diff-")
	if err != nil {
		return nil, plumbing.NewErrIo(err)
	}
	defer os.RemoveAll(dir)
	fromPath, err := writeTemp(dir, "from-*", from)
	if err != nil {
		return nil, err
	}
	toPath, err := writeTemp(dir, "to-*", to)
	if err != nil {
		return nil, err
	}
	name, extraArgs := diffCommand()
	args := append(append([]string{}, extraArgs...),
		"--unified",
		"--show-c-function",
		"--label", "a/"+path,
		"--label", "b/"+path,
		fromPath, toPath,
	)
	out, err := command.New(ctx, "", name, args...).Output()
	// diff exits 1 when files differ — not a failure for our purposes.
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return out, nil
}

func contentOrEmpty(store Store, oid plumbing.Hash) ([]byte, error) {
	if oid.IsZero() {
		return nil, nil
	}
	return store.GetObjectContent(oid, object.BlobType)
}

// DiffTrees concatenates DiffBlobs output for every path that differs
// between to and from.
func DiffTrees(ctx context.Context, store Store, to, from map[string]plumbing.Hash) ([]byte, error) {
	changed := IterChangedFiles(to, from)
	rows := CompareTrees(to, from)
	var out []byte
	for p := range changed {
		row := rows[p]
		chunk, err := DiffBlobs(ctx, store, p, row[1], row[0])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

// MergeBlobs runs the external three-way merge collaborator over head,
// other, and base content (any of which may be absent), hashes the
// resulting bytes as a new blob and returns its oid. Conflict markers in
// the collaborator's output are preserved verbatim — there is no in-band
// conflict state.
func MergeBlobs(ctx context.Context, store Store, head, other, base plumbing.Hash) (plumbing.Hash, error) {
	headContent, err := contentOrEmpty(store, head)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	otherContent, err := contentOrEmpty(store, other)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	baseContent, err := contentOrEmpty(store, base)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	dir, err := os.MkdirTemp("", "rgit-merge-")
	if err != nil {
		return plumbing.ZeroHash, plumbing.NewErrIo(err)
	}
	defer os.RemoveAll(dir)
	headPath, err := writeTemp(dir, "head-*", headContent)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	otherPath, err := writeTemp(dir, "other-*", otherContent)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	basePath, err := writeTemp(dir, "base-*", baseContent)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	name, extraArgs := mergeCommand()
	args := append(append([]string{}, extraArgs...),
		"-m",
		"-L", "HEAD", headPath,
		"-L", "BASE", basePath,
		"-L", "MERGE_HEAD", otherPath,
	)
	out, err := command.New(ctx, "", name, args...).Output()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return plumbing.ZeroHash, fmt.Errorf("merge: %w", err)
	}
	return store.HashObject(out, object.BlobType)
}

// MergeTrees merges to, from, and base tree maps path-by-path, producing
// the output tree map.
func MergeTrees(ctx context.Context, store Store, to, from, base map[string]plumbing.Hash) (map[string]plumbing.Hash, error) {
	rows := CompareTrees(to, from, base)
	out := make(map[string]plumbing.Hash, len(rows))
	for p, row := range rows {
		oid, err := MergeBlobs(ctx, store, row[0], row[1], row[2])
		if err != nil {
			return nil, err
		}
		out[p] = oid
	}
	return out, nil
}
