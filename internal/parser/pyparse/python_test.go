package pyparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/graph"
)

const source = `import os

class Base:
    pass

class Child(Base):
    def greet(self):
        helper()

def helper():
    print("hi")
`

func TestParse_ExtractsClassesAndFunctions(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("mod.py", []byte(source))
	require.Nil(t, perr)

	var classes, funcs int
	for _, n := range frag.Nodes {
		switch n.Kind {
		case graph.KindClass:
			classes++
		case graph.KindFunction:
			funcs++
		}
	}
	assert.Equal(t, 2, classes)
	assert.GreaterOrEqual(t, funcs, 2)
}

func TestParse_ResolvesInheritance(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("mod.py", []byte(source))
	require.Nil(t, perr)

	found := false
	for _, e := range frag.Edges {
		if e.Kind == graph.EdgeInherits {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParse_RecordsImportSpecifier(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("mod.py", []byte(source))
	require.Nil(t, perr)
	require.Len(t, frag.State.Imports, 1)
	assert.Equal(t, "os", frag.State.Imports[0].Specifier)
}

func TestParse_FunctionNodeCarriesSignature(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("mod.py", []byte("def add(a, b):\n    return a + b\n"))
	require.Nil(t, perr)

	var got string
	for _, n := range frag.Nodes {
		if n.Kind == graph.KindFunction {
			got = n.Attrs["signature"]
		}
	}
	assert.Equal(t, "(a, b)", got)
}

const decoratedSource = `def register(f):
    return f

@register
def handler():
    pass

@register()
class Service:
    pass
`

func TestParse_EmitsDecoratesEdgeForSameFileDecorator(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("app.py", []byte(decoratedSource))
	require.Nil(t, perr)

	var edges []graph.Edge
	for _, e := range frag.Edges {
		if e.Kind == graph.EdgeDecorates {
			edges = append(edges, e)
		}
	}
	assert.Len(t, edges, 2, "both @register and @register() should resolve same-file")
	assert.Empty(t, frag.State.DecoratesFrom)
}

func TestParse_DefersUnresolvedDecorator(t *testing.T) {
	t.Parallel()
	frag, perr := Parse("app.py", []byte("from registry import app\n\n@app.route(\"/x\")\ndef handler():\n    pass\n"))
	require.Nil(t, perr)

	require.Len(t, frag.State.DecoratesFrom, 1)
	assert.Equal(t, "app", frag.State.DecoratesFrom[0].DecoratorName)
}
