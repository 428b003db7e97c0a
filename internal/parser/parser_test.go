package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/graph"
)

func fakeParse(relPath string, src []byte) (*FileFragment, *ParseError) {
	return &FileFragment{
		Path: relPath,
		Nodes: []*graph.Node{
			{ID: relPath, Kind: graph.KindFile},
		},
	}, nil
}

func TestRegistry_ForExtension(t *testing.T) {
	t.Parallel()
	r := NewRegistry(Capability{
		Language:   "go",
		Extensions: []string{".go"},
		Parse:      fakeParse,
	})

	cap, ok := r.ForExtension(".go")
	require.True(t, ok)
	assert.Equal(t, "go", cap.Language)

	_, ok = r.ForExtension(".py")
	assert.False(t, ok)
}

func TestRegistry_LaterCapabilityWinsOnSharedExtension(t *testing.T) {
	t.Parallel()
	r := NewRegistry(
		Capability{Language: "first", Extensions: []string{".x"}, Parse: fakeParse},
		Capability{Language: "second", Extensions: []string{".x"}, Parse: fakeParse},
	)
	cap, ok := r.ForExtension(".x")
	require.True(t, ok)
	assert.Equal(t, "second", cap.Language)
}

func TestParseError_ErrorString(t *testing.T) {
	t.Parallel()
	err := &ParseError{Path: "a.go", Kind: SyntaxUnrecoverable, Message: "unexpected EOF"}
	assert.Contains(t, err.Error(), "a.go")
	assert.Contains(t, err.Error(), "SyntaxUnrecoverable")
}

func TestRegistry_Extensions_CoversAllRegistered(t *testing.T) {
	t.Parallel()
	r := NewRegistry(
		Capability{Language: "go", Extensions: []string{".go"}, Parse: fakeParse},
		Capability{Language: "python", Extensions: []string{".py"}, Parse: fakeParse},
	)
	exts := r.Extensions()
	assert.ElementsMatch(t, []string{".go", ".py"}, exts)
}
