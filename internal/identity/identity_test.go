package identity

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash_Deterministic(t *testing.T) {
	t.Parallel()
	a := ContentHash([]byte("package main\n"))
	b := ContentHash([]byte("package main\n"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32) // 128 bits as hex
}

func TestContentHash_DiffersOnChange(t *testing.T) {
	t.Parallel()
	a := ContentHash([]byte("package main\n"))
	b := ContentHash([]byte("package other\n"))
	assert.NotEqual(t, a, b)
}

func TestNodeID_NormalizesSeparators(t *testing.T) {
	t.Parallel()
	unix := NodeID(filepath.Join("a", "b", "c.go"), "Foo", "Function")
	assert.Equal(t, "a/b/c.go::Foo::Function", unix)
}

func TestNodeID_StableAcrossCalls(t *testing.T) {
	t.Parallel()
	first := NodeID("pkg/file.py", "Class.method", "Method")
	second := NodeID("pkg/file.py", "Class.method", "Method")
	assert.Equal(t, first, second)
}

func TestNodeID_CaseSensitive(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, NodeID("f.go", "Foo", "Function"), NodeID("f.go", "foo", "Function"))
}

func TestSplitNodeID_RoundTrips(t *testing.T) {
	t.Parallel()
	id := NodeID("pkg/file.py", "Class.method", "Method")
	path, qualified, kind, ok := SplitNodeID(id)
	require.True(t, ok)
	assert.Equal(t, "pkg/file.py", path)
	assert.Equal(t, "Class.method", qualified)
	assert.Equal(t, "Method", kind)
}

func TestCollisionError_Message(t *testing.T) {
	t.Parallel()
	err := &CollisionError{ID: "a.go::Foo::Function"}
	assert.Contains(t, err.Error(), "a.go::Foo::Function")
}
