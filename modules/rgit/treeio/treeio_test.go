package treeio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/backend"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

func TestWriteTreeGetTreeRoundTrip(t *testing.T) {
	db, err := backend.NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	blobA, err := db.HashObject([]byte("a\n"), object.BlobType)
	require.NoError(t, err)
	blobB, err := db.HashObject([]byte("b\n"), object.BlobType)
	require.NoError(t, err)

	flat := map[string]plumbing.Hash{
		"a.txt":       blobA,
		"dir/b.txt":   blobB,
		"dir/sub/c":   blobA,
		"top-level.x": blobB,
	}

	root, err := WriteTree(db, flat)
	require.NoError(t, err)

	got, err := GetTree(db, root, "")
	require.NoError(t, err)
	require.Equal(t, flat, got)
}

func TestWriteTreeDeterministic(t *testing.T) {
	db, err := backend.NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	blob, err := db.HashObject([]byte("x\n"), object.BlobType)
	require.NoError(t, err)

	flat := map[string]plumbing.Hash{"a.txt": blob, "b.txt": blob}
	r1, err := WriteTree(db, flat)
	require.NoError(t, err)
	r2, err := WriteTree(db, flat)
	require.NoError(t, err)
	require.Equal(t, r1, r2)
}
