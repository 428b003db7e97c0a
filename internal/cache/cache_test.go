package cache

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/parser"
)

func TestPutGet_RoundTrips(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	frag := &parser.FileFragment{
		Path: "a.go",
		Nodes: []*graph.Node{
			{ID: "a.go", Kind: graph.KindFile, Language: "go"},
		},
	}
	hash := "abcd1234abcd1234abcd1234abcd1234"

	require.NoError(t, c.Put(hash, frag))

	got, ok, err := c.Get(hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, frag.Path, got.Path)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "a.go", got.Nodes[0].ID)
}

func TestGet_MissingIsNotError(t *testing.T) {
	t.Parallel()
	c, err := Open(t.TempDir())
	require.NoError(t, err)

	got, ok, err := c.Get("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGet_SchemaMismatchIsMissNotCrash(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)

	hash := "1111222233334444111122223333444"
	require.NoError(t, c.Put(hash, &parser.FileFragment{Path: "x.go"}))

	p, err := c.pathFor(hash)
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	binary.BigEndian.PutUint32(data[4:8], schemaVersion+1)
	require.NoError(t, os.WriteFile(p, data, 0o644))

	got, ok, err := c.Get(hash)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGet_BadMagicIsMiss(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)

	p, err := c.pathFor("2222333344445555222233334444555")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("not a cache file"), 0o644))

	got, ok, err := c.Get("2222333344445555222233334444555")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPut_UsesTwoLevelHashLayout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c, err := Open(dir)
	require.NoError(t, err)

	hash := "deadbeefdeadbeefdeadbeefdeadbeef"
	require.NoError(t, c.Put(hash, &parser.FileFragment{Path: "x.go"}))

	expected := filepath.Join(dir, "files", "de", "adbeefdeadbeefdeadbeefdeadbeef")
	_, err = os.Stat(expected)
	assert.NoError(t, err)
}
