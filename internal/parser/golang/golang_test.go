package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/parser"
)

const source = `package main

import "fmt"

func helper() {
	fmt.Println("hi")
}

func main() {
	helper()
	other()
}
`

func TestParse_ExtractsFunctions(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("main.go", []byte(source))
	require.Nil(t, perr)
	require.NotNil(t, frag)

	var names []string
	for _, n := range frag.Nodes {
		if n.Kind == graph.KindFunction {
			names = append(names, n.ID)
		}
	}
	assert.Len(t, names, 2)
}

func TestParse_ResolvesSameFileCall(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("main.go", []byte(source))
	require.Nil(t, perr)

	found := false
	for _, e := range frag.Edges {
		if e.Kind == graph.EdgeCalls {
			found = true
		}
	}
	assert.True(t, found, "expected a resolved Calls edge for helper()")
}

func TestParse_UnresolvedCallGoesToParseState(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("main.go", []byte(source))
	require.Nil(t, perr)

	var calleeNames []string
	for _, c := range frag.State.CallsFrom {
		calleeNames = append(calleeNames, c.CalleeName)
	}
	assert.Contains(t, calleeNames, "other")
}

func TestParse_RecordsImport(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("main.go", []byte(source))
	require.Nil(t, perr)

	require.Len(t, frag.State.Imports, 1)
	assert.Equal(t, "fmt", frag.State.Imports[0].Specifier)
}

func TestParse_EmptyFileIsIoEmptyError(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("empty.go", []byte(""))
	assert.Nil(t, frag)
	require.NotNil(t, perr)
	assert.Equal(t, parser.IoEmpty, perr.Kind)
}

func TestParse_FileNodeAlwaysPresent(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("main.go", []byte(source))
	require.Nil(t, perr)

	hasFile := false
	for _, n := range frag.Nodes {
		if n.Kind == graph.KindFile {
			hasFile = true
		}
	}
	assert.True(t, hasFile)
}

func TestParse_FunctionNodeCarriesSignature(t *testing.T) {
	t.Parallel()
	src := `package main

func add(a, b int) int {
	return a + b
}
`
	frag, perr := Parse("math.go", []byte(src))
	require.Nil(t, perr)

	var got string
	for _, n := range frag.Nodes {
		if n.Kind == graph.KindFunction {
			got = n.Attrs["signature"]
		}
	}
	assert.Equal(t, "(a, b int)", got)
}
