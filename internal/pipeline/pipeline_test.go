package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/cache"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
	"github.com/revet-dev/revet-core/internal/parser"
)

func fakeGoCapability() parser.Capability {
	return parser.Capability{
		Language:   "go",
		Extensions: []string{".go"},
		Parse: func(relPath string, src []byte) (*parser.FileFragment, *parser.ParseError) {
			fileID := identity.NodeID(relPath, relPath, string(graph.KindFile))
			return &parser.FileFragment{
				Path:  relPath,
				Nodes: []*graph.Node{{ID: fileID, Kind: graph.KindFile, Loc: graph.Location{Path: relPath}}},
			}, nil
		},
	}
}

func TestRun_MergesFragmentsIntoGraph(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b"), 0o644))

	reg := parser.NewRegistry(fakeGoCapability())
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	p := New(reg, c)
	result, err := p.Run(context.Background(), root, []string{"a.go", "b.go"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Graph.NodeCount())
}

func TestRun_ParseErrorBecomesDiagnosticNotFailure(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.go"), []byte(""), 0o644))

	failing := parser.Capability{
		Language:   "go",
		Extensions: []string{".go"},
		Parse: func(relPath string, src []byte) (*parser.FileFragment, *parser.ParseError) {
			return nil, &parser.ParseError{Path: relPath, Kind: parser.IoEmpty, Message: "empty"}
		},
	}
	reg := parser.NewRegistry(failing)
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)

	p := New(reg, c)
	result, err := p.Run(context.Background(), root, []string{"broken.go"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Graph.NodeCount())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, "ParseFailure", string(result.Diagnostics[0].Kind))
}

func TestRun_CacheHitAvoidsReparse(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	content := []byte("package a")
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), content, 0o644))

	calls := 0
	reg := parser.NewRegistry(parser.Capability{
		Language:   "go",
		Extensions: []string{".go"},
		Parse: func(relPath string, src []byte) (*parser.FileFragment, *parser.ParseError) {
			calls++
			fileID := identity.NodeID(relPath, relPath, string(graph.KindFile))
			return &parser.FileFragment{Path: relPath, Nodes: []*graph.Node{{ID: fileID, Kind: graph.KindFile}}}, nil
		},
	})
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	p := New(reg, c)

	_, err = p.Run(context.Background(), root, []string{"a.go"})
	require.NoError(t, err)
	_, err = p.Run(context.Background(), root, []string{"a.go"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestDiscover_WalksNonGitDirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "b.go"), []byte("package b"), 0o644))

	reg := parser.NewRegistry(fakeGoCapability())
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	p := New(reg, c)

	paths, err := p.Discover(root, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, paths)
}

func TestDiscover_HonorsIgnorePaths(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "generated.go"), []byte("package a"), 0o644))

	reg := parser.NewRegistry(fakeGoCapability())
	c, err := cache.Open(t.TempDir())
	require.NoError(t, err)
	p := New(reg, c)

	paths, err := p.Discover(root, []string{"generated.go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, paths)
}
