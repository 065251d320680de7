package object

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

// EntryType distinguishes the two kinds of thing a tree record can name.
type EntryType int8

const (
	BlobEntry EntryType = iota
	TreeEntryKind
)

func (t EntryType) String() string {
	if t == TreeEntryKind {
		return "tree"
	}
	return "blob"
}

// TreeEntry is one record of a tree object: "<type> <oid> <name>".
type TreeEntry struct {
	Type EntryType
	Oid  plumbing.Hash
	Name string
}

// Tree is the decoded form of a tree object: a sorted set of entries, one
// directory level.
type Tree struct {
	Entries []TreeEntry
}

// entrySlice sorts by (Name) as canonical, with (Type, Oid) as a
// documented tie-breaker should two entries ever share a name.
type entrySlice []TreeEntry

func (s entrySlice) Len() int      { return len(s) }
func (s entrySlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s entrySlice) Less(i, j int) bool {
	if s[i].Name != s[j].Name {
		return s[i].Name < s[j].Name
	}
	if s[i].Type != s[j].Type {
		return s[i].Type < s[j].Type
	}
	return s[i].Oid.String() < s[j].Oid.String()
}

// Sort orders Entries into the canonical record order re-encoding relies on.
func (t *Tree) Sort() {
	sort.Sort(entrySlice(t.Entries))
}

// Encode renders the tree as sorted newline-terminated
// "<type> <oid> <name>\n" records.
func (t *Tree) Encode() []byte {
	t.Sort()
	var buf bytes.Buffer
	for _, e := range t.Entries {
		fmt.Fprintf(&buf, "%s %s %s\n", e.Type, e.Oid, e.Name)
	}
	return buf.Bytes()
}

// DecodeTree parses a tree object's payload. Decoding tolerates any input
// order; re-encoding always re-sorts.
func DecodeTree(oid plumbing.Hash, payload []byte) (*Tree, error) {
	t := &Tree{}
	sc := bufio.NewScanner(bytes.NewReader(payload))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return nil, plumbing.NewErrMalformedObject(oid, "malformed tree record: "+line)
		}
		var et EntryType
		switch parts[0] {
		case "blob":
			et = BlobEntry
		case "tree":
			et = TreeEntryKind
		default:
			return nil, plumbing.NewErrMalformedObject(oid, "unknown tree entry type: "+parts[0])
		}
		entryOid, err := plumbing.NewHashEx(parts[1])
		if err != nil {
			return nil, plumbing.NewErrMalformedObject(oid, "malformed tree entry oid: "+parts[1])
		}
		name := parts[2]
		if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
			return nil, plumbing.NewErrMalformedObject(oid, "invalid tree entry name: "+name)
		}
		t.Entries = append(t.Entries, TreeEntry{Type: et, Oid: entryOid, Name: name})
	}
	if err := sc.Err(); err != nil {
		return nil, plumbing.NewErrIo(err)
	}
	return t, nil
}
