package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNode(t *testing.T, g *Graph, id string, kind NodeKind) {
	t.Helper()
	_, err := g.InsertNode(&Node{ID: id, Kind: kind})
	require.NoError(t, err)
}

func TestInsertNode_DuplicateIsCollision(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	_, err := g.InsertNode(&Node{ID: "a.go::Foo::Function", Kind: KindFunction})
	require.Error(t, err)
	assert.ErrorContains(t, err, "a.go::Foo::Function")
}

func TestInsertEdge_RejectsSelfLoop(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	err := g.InsertEdge("a.go::Foo::Function", "a.go::Foo::Function", EdgeCalls)
	require.Error(t, err)
	var selfLoop *SelfLoopError
	assert.ErrorAs(t, err, &selfLoop)
}

func TestInsertEdge_UnknownEndpoint(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	err := g.InsertEdge("a.go::Foo::Function", "missing::Bar::Function", EdgeCalls)
	require.Error(t, err)
	var unknown *UnknownEndpointError
	assert.ErrorAs(t, err, &unknown)
}

func TestInsertEdge_DuplicateCollapses(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	mustNode(t, g, "a.go::Bar::Function", KindFunction)

	require.NoError(t, g.InsertEdge("a.go::Foo::Function", "a.go::Bar::Function", EdgeCalls))
	require.NoError(t, g.InsertEdge("a.go::Foo::Function", "a.go::Bar::Function", EdgeCalls))

	out := g.Outgoing("a.go::Foo::Function", EdgeCalls)
	assert.Len(t, out, 1)
}

func TestOutgoingIncoming_Symmetric(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	mustNode(t, g, "a.go::Bar::Function", KindFunction)
	require.NoError(t, g.InsertEdge("a.go::Foo::Function", "a.go::Bar::Function", EdgeCalls))

	out := g.Outgoing("a.go::Foo::Function")
	require.Len(t, out, 1)
	assert.Equal(t, "a.go::Bar::Function", out[0].Dst)

	in := g.Incoming("a.go::Bar::Function")
	require.Len(t, in, 1)
	assert.Equal(t, "a.go::Foo::Function", in[0].Src)
}

func TestOutgoing_FiltersByKind(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go::Foo::Function", KindFunction)
	mustNode(t, g, "a.go::Bar::Function", KindFunction)
	mustNode(t, g, "a.go::Baz::Import", KindImport)

	require.NoError(t, g.InsertEdge("a.go::Foo::Function", "a.go::Bar::Function", EdgeCalls))
	require.NoError(t, g.InsertEdge("a.go::Foo::Function", "a.go::Baz::Import", EdgeImports))

	calls := g.Outgoing("a.go::Foo::Function", EdgeCalls)
	require.Len(t, calls, 1)
	assert.Equal(t, EdgeCalls, calls[0].Kind)
}

func TestContainingFile_WalksContainsChain(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "a.go", KindFile)
	mustNode(t, g, "a.go::Outer::Class", KindClass)
	mustNode(t, g, "a.go::Outer.Inner::Method", KindMethod)

	require.NoError(t, g.InsertEdge("a.go", "a.go::Outer::Class", EdgeContains))
	require.NoError(t, g.InsertEdge("a.go::Outer::Class", "a.go::Outer.Inner::Method", EdgeContains))

	file := g.ContainingFile("a.go::Outer.Inner::Method")
	require.NotNil(t, file)
	assert.Equal(t, "a.go", file.ID)
}

func TestContainingFile_NoParentReturnsNil(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "orphan::Foo::Function", KindFunction)
	assert.Nil(t, g.ContainingFile("orphan::Foo::Function"))
}

func TestMerge_UnionsDisjointGraphs(t *testing.T) {
	t.Parallel()
	a := New()
	mustNode(t, a, "a.go", KindFile)
	mustNode(t, a, "a.go::Foo::Function", KindFunction)
	require.NoError(t, a.InsertEdge("a.go", "a.go::Foo::Function", EdgeContains))

	b := New()
	mustNode(t, b, "b.go", KindFile)
	mustNode(t, b, "b.go::Bar::Function", KindFunction)
	require.NoError(t, b.InsertEdge("b.go", "b.go::Bar::Function", EdgeContains))

	require.NoError(t, a.Merge(b, nil))
	assert.Equal(t, 4, a.NodeCount())
	assert.NotNil(t, a.Lookup("b.go::Bar::Function"))
	out := a.Outgoing("b.go")
	require.Len(t, out, 1)
	assert.Equal(t, "b.go::Bar::Function", out[0].Dst)
}

func TestMerge_CollisionIsFatal(t *testing.T) {
	t.Parallel()
	a := New()
	mustNode(t, a, "a.go::Foo::Function", KindFunction)

	b := New()
	mustNode(t, b, "a.go::Foo::Function", KindFunction)

	err := a.Merge(b, nil)
	require.Error(t, err)
}

func TestNodes_SortedByID(t *testing.T) {
	t.Parallel()
	g := New()
	mustNode(t, g, "z.go::Z::Function", KindFunction)
	mustNode(t, g, "a.go::A::Function", KindFunction)

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "a.go::A::Function", nodes[0].ID)
	assert.Equal(t, "z.go::Z::Function", nodes[1].ID)
}
