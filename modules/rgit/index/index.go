// Package index is the staging index: a persisted path→oid mapping,
// loaded and rewritten as a JSON dict the way original_source's
// get_index/_index_write_cwd pair does, plus a trailing BLAKE3 checksum
// line so a half-written index is detected on load rather than silently
// corrupting the next commit.
package index

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/rgitvcs/rgit/modules/plumbing"
)

const fileName = "index"

// Index is the in-memory form of the staged path→oid map.
type Index struct {
	Entries map[string]plumbing.Hash
}

func empty() *Index {
	return &Index{Entries: make(map[string]plumbing.Hash)}
}

func path(root string) string {
	return filepath.Join(root, fileName)
}

// Load reads the index file, verifying its checksum trailer. A missing
// file yields an empty index (the index is created lazily on first add).
func Load(root string) (*Index, error) {
	raw, err := os.ReadFile(path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return empty(), nil
		}
		return nil, plumbing.NewErrIo(err)
	}
	trimmed := bytes.TrimRight(raw, "\n")
	nl := bytes.LastIndexByte(trimmed, '\n')
	if nl < 0 {
		return nil, plumbing.NewErrInvalidState("index checksum mismatch: corrupt index")
	}
	jsonBody := trimmed[:nl]
	sum := trimmed[nl+1:]
	want := hex.EncodeToString(blake3Sum(jsonBody))
	if want != string(sum) {
		return nil, plumbing.NewErrInvalidState("index checksum mismatch: corrupt index")
	}

	var raw2 map[string]string
	if err := json.Unmarshal(jsonBody, &raw2); err != nil {
		return nil, plumbing.NewErrMalformedObject(plumbing.ZeroHash, "index: "+err.Error())
	}
	idx := empty()
	for p, oidStr := range raw2 {
		oid, err := plumbing.NewHashEx(oidStr)
		if err != nil {
			return nil, plumbing.NewErrMalformedObject(plumbing.ZeroHash, "index entry "+p+": bad oid")
		}
		idx.Entries[p] = oid
	}
	return idx, nil
}

// Save serializes idx as a JSON dict followed by a BLAKE3 checksum line.
func Save(root string, idx *Index) error {
	raw2 := make(map[string]string, len(idx.Entries))
	for p, oid := range idx.Entries {
		raw2[p] = oid.String()
	}
	body, err := json.Marshal(raw2)
	if err != nil {
		return err
	}
	body = append(body, '\n')
	sum := hex.EncodeToString(blake3Sum(bytes.TrimRight(body, "\n")))
	out := append(body, []byte(sum+"\n")...)
	if err := os.WriteFile(path(root), out, 0o644); err != nil {
		return plumbing.NewErrIo(err)
	}
	return nil
}

func blake3Sum(b []byte) []byte {
	h := blake3.New()
	_, _ = h.Write(b)
	return h.Sum(nil)
}

// With is the scoped acquisition pattern spec.md §9 asks for: load,
// hand the caller a mutable Index, and persist on every exit path —
// success or error — so a failing mutation never leaves the on-disk
// index stale relative to a partial in-memory change.
func With(root string, fn func(idx *Index) error) error {
	idx, err := Load(root)
	if err != nil {
		return err
	}
	fnErr := fn(idx)
	if saveErr := Save(root, idx); saveErr != nil {
		if fnErr != nil {
			return fnErr
		}
		return saveErr
	}
	return fnErr
}

// Clear empties idx in place — used by read_tree before replacing the
// index wholesale with a flattened tree.
func (idx *Index) Clear() {
	idx.Entries = make(map[string]plumbing.Hash)
}
