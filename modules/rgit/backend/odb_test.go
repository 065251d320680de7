package backend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgitvcs/rgit/modules/plumbing"
	"github.com/rgitvcs/rgit/modules/rgit/object"
)

func TestHashObjectRoundTrip(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	content := []byte("hello\n")
	oid, err := db.HashObject(content, object.BlobType)
	require.NoError(t, err)

	got, err := db.GetObjectContent(oid, object.BlobType)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestHashObjectIdempotent(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	oid1, err := db.HashObject([]byte("x"), object.BlobType)
	require.NoError(t, err)
	oid2, err := db.HashObject([]byte("x"), object.BlobType)
	require.NoError(t, err)
	require.Equal(t, oid1, oid2)
}

func TestGetObjectContentTypeMismatch(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	oid, err := db.HashObject([]byte("x"), object.BlobType)
	require.NoError(t, err)

	_, err = db.GetObjectContent(oid, object.TreeType)
	require.True(t, plumbing.IsErrTypeMismatch(err))
}

func TestGetObjectContentNotFound(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.GetObjectContent(plumbing.NewHash("da39a3ee5e6b4b0d3255bfef95601890afd80709"), object.BlobType)
	require.True(t, plumbing.IsErrNotFound(err))
}

func TestObjectExists(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithEnableLRU(true))
	require.NoError(t, err)
	defer db.Close()

	oid, err := db.HashObject([]byte("x"), object.BlobType)
	require.NoError(t, err)
	require.True(t, db.ObjectExists(oid))
	require.False(t, db.ObjectExists(plumbing.NewHash("356a192b7913b04c54574d18c28d46e6395428ab")))
}
