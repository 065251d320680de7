package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetAndResolveRemote(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SetRemote(root, "origin", "/srv/repos/upstream"))

	require.Equal(t, "/srv/repos/upstream", ResolveRemote(root, "origin"))
}

func TestResolveRemoteFallsBackToRawPath(t *testing.T) {
	root := t.TempDir()
	require.Equal(t, "/some/path", ResolveRemote(root, "/some/path"))
}

func TestLoadMissingConfigIsEmpty(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, c.Remote)
}

func TestSetRemoteOverwrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SetRemote(root, "origin", "/old/path"))
	require.NoError(t, SetRemote(root, "origin", "/new/path"))

	require.Equal(t, "/new/path", ResolveRemote(root, "origin"))
}

func TestSaveLoadRoundTripMultipleRemotes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, SetRemote(root, "origin", "/a"))
	require.NoError(t, SetRemote(root, "upstream", "/b"))

	c, err := Load(root)
	require.NoError(t, err)
	require.Equal(t, "/a", c.Remote["origin"].Path)
	require.Equal(t, "/b", c.Remote["upstream"].Path)
}
