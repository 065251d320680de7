package diffmerge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/backend"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

func TestCompareTreesUnionOfPaths(t *testing.T) {
	a := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	b := plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")

	to := map[string]plumbing.Hash{"x.txt": a, "y.txt": b}
	from := map[string]plumbing.Hash{"x.txt": a, "z.txt": b}

	rows := CompareTrees(to, from)
	require.Len(t, rows, 3)
	require.Equal(t, []plumbing.Hash{a, a}, rows["x.txt"])
	require.Equal(t, []plumbing.Hash{b, plumbing.ZeroHash}, rows["y.txt"])
	require.Equal(t, []plumbing.Hash{plumbing.ZeroHash, b}, rows["z.txt"])
}

func TestIterChangedFilesLabelsKind(t *testing.T) {
	a := plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709")
	b := plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")

	to := map[string]plumbing.Hash{"same.txt": a, "created.txt": a, "modified.txt": a}
	from := map[string]plumbing.Hash{"same.txt": a, "deleted.txt": b, "modified.txt": b}

	changed := IterChangedFiles(to, from)
	require.Equal(t, Created, changed["created.txt"])
	require.Equal(t, Deleted, changed["deleted.txt"])
	require.Equal(t, Modified, changed["modified.txt"])
	require.NotContains(t, changed, "same.txt")
}

func TestDiffBlobsReportsDifference(t *testing.T) {
	db, err := backend.NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	from, err := db.HashObject([]byte("one\ntwo\n"), object.BlobType)
	require.NoError(t, err)
	to, err := db.HashObject([]byte("one\nthree\n"), object.BlobType)
	require.NoError(t, err)

	out, err := DiffBlobs(context.Background(), db, "f.txt", from, to)
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestMergeBlobsCleanMerge(t *testing.T) {
	db, err := backend.NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	base, err := db.HashObject([]byte("a\nb\nc\n"), object.BlobType)
	require.NoError(t, err)
	head, err := db.HashObject([]byte("a\nb\nc\nd\n"), object.BlobType)
	require.NoError(t, err)
	other, err := db.HashObject([]byte("z\na\nb\nc\n"), object.BlobType)
	require.NoError(t, err)

	oid, err := MergeBlobs(context.Background(), db, head, other, base)
	require.NoError(t, err)

	content, err := db.GetObjectContent(oid, object.BlobType)
	require.NoError(t, err)
	require.Contains(t, string(content), "z")
	require.Contains(t, string(content), "d")
}
