// Package treeio is the Tree Codec: writing nested tree objects from a
// flat index, and flattening tree objects back to a flat path→oid map.
// Grounded on original_source/src/base.py's write_tree/get_tree pair,
// rendered with object.Tree/object.TreeEntry as the wire representation.
package treeio

import (
	"path"
	"sort"
	"strings"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

// Store is the minimal object-store surface treeio needs: write/read raw
// typed objects. backend.Database satisfies it.
type Store interface {
	HashObject(content []byte, t object.Type) (plumbing.Hash, error)
	GetObjectContent(oid plumbing.Hash, expected object.Type) ([]byte, error)
}

type node struct {
	oid      plumbing.Hash // set when this node is a blob leaf
	isBlob   bool
	children map[string]*node
}

func newDirNode() *node {
	return &node{children: make(map[string]*node)}
}

// WriteTree builds the nested tree structure implied by flat (a
// path→blob-oid map, such as the index), writes every sub-tree object,
// and returns the root tree's oid.
func WriteTree(store Store, flat map[string]plumbing.Hash) (plumbing.Hash, error) {
	root := newDirNode()
	for p, oid := range flat {
		parts := strings.Split(path.Clean(filepath2slash(p)), "/")
		cur := root
		for i, part := range parts {
			if i == len(parts)-1 {
				cur.children[part] = &node{oid: oid, isBlob: true}
				continue
			}
			next, ok := cur.children[part]
			if !ok || next.isBlob {
				next = newDirNode()
				cur.children[part] = next
			}
			cur = next
		}
	}
	return writeNode(store, root)
}

func filepath2slash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func writeNode(store Store, n *node) (plumbing.Hash, error) {
	t := &object.Tree{}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		child := n.children[name]
		if child.isBlob {
			t.Entries = append(t.Entries, object.TreeEntry{Type: object.BlobEntry, Oid: child.oid, Name: name})
			continue
		}
		childOid, err := writeNode(store, child)
		if err != nil {
			return plumbing.ZeroHash, err
		}
		t.Entries = append(t.Entries, object.TreeEntry{Type: object.TreeEntryKind, Oid: childOid, Name: name})
	}
	return store.HashObject(t.Encode(), object.TreeType)
}

// GetTree flattens the tree rooted at oid into a path→blob-oid map, with
// paths relative to base (base is normally "").
func GetTree(store Store, oid plumbing.Hash, base string) (map[string]plumbing.Hash, error) {
	out := make(map[string]plumbing.Hash)
	if err := getTree(store, oid, base, out); err != nil {
		return nil, err
	}
	return out, nil
}

func getTree(store Store, oid plumbing.Hash, base string, out map[string]plumbing.Hash) error {
	payload, err := store.GetObjectContent(oid, object.TreeType)
	if err != nil {
		return err
	}
	t, err := object.DecodeTree(oid, payload)
	if err != nil {
		return err
	}
	for _, e := range t.Entries {
		if e.Name == "" || e.Name == "." || e.Name == ".." || strings.Contains(e.Name, "/") {
			return plumbing.NewErrMalformedObject(oid, "invalid tree entry name: "+e.Name)
		}
		switch e.Type {
		case object.BlobEntry:
			out[path.Join(base, e.Name)] = e.Oid
		case object.TreeEntryKind:
			if err := getTree(store, e.Oid, path.Join(base, e.Name), out); err != nil {
				return err
			}
		}
	}
	return nil
}
