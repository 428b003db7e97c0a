package jsparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revet-dev/revet-core/internal/graph"
)

const jsSource = `import fs from "fs";

class Animal {
  speak() {
    return noise();
  }
}

class Dog extends Animal {
}

function noise() {
  return "woof";
}
`

func TestJavaScriptParse_ExtractsClassAndFunction(t *testing.T) {
	t.Parallel()
	frag, perr := JavaScriptCapability.Parse("app.js", []byte(jsSource))
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
	assert.GreaterOrEqual(t, funcs, 1)
}

func TestJavaScriptParse_ResolvesInheritance(t *testing.T) {
	t.Parallel()
	frag, perr := JavaScriptCapability.Parse("app.js", []byte(jsSource))
	require.Nil(t, perr)

	found := false
	for _, e := range frag.Edges {
		if e.Kind == graph.EdgeInherits {
			found = true
		}
	}
	assert.True(t, found)
}

func TestJavaScriptParse_RecordsImportSpecifier(t *testing.T) {
	t.Parallel()
	frag, perr := JavaScriptCapability.Parse("app.js", []byte(jsSource))
	require.Nil(t, perr)
	require.Len(t, frag.State.Imports, 1)
	assert.Equal(t, "fs", frag.State.Imports[0].Specifier)
}

func TestTypeScriptCapability_UsesTypeScriptGrammar(t *testing.T) {
	t.Parallel()
	frag, perr := TypeScriptCapability.Parse("app.ts", []byte(jsSource))
	require.Nil(t, perr)
	assert.NotEmpty(t, frag.Nodes)
}

func TestJavaScriptParse_FunctionNodeCarriesSignature(t *testing.T) {
	t.Parallel()
	frag, perr := JavaScriptCapability.Parse("math.js", []byte("function add(a, b) {\n  return a + b;\n}\n"))
	require.Nil(t, perr)

	var got string
	for _, n := range frag.Nodes {
		if n.Kind == graph.KindFunction {
			got = n.Attrs["signature"]
		}
	}
	assert.Equal(t, "(a, b)", got)
}

const decoratedTsSource = `function Injectable() {
  return (target) => target;
}

@Injectable()
class Service {
}
`

func TestTypeScriptParse_EmitsDecoratesEdgeForSameFileDecorator(t *testing.T) {
	t.Parallel()
	frag, perr := TypeScriptCapability.Parse("service.ts", []byte(decoratedTsSource))
	require.Nil(t, perr)

	found := false
	for _, e := range frag.Edges {
		if e.Kind == graph.EdgeDecorates {
			found = true
		}
	}
	assert.True(t, found)
	assert.Empty(t, frag.State.DecoratesFrom)
}

func TestTypeScriptParse_DefersUnresolvedDecorator(t *testing.T) {
	t.Parallel()
	frag, perr := TypeScriptCapability.Parse("service.ts", []byte("import { Injectable } from \"@angular/core\";\n\n@Injectable()\nclass Service {\n}\n"))
	require.Nil(t, perr)

	require.Len(t, frag.State.DecoratesFrom, 1)
	assert.Equal(t, "Injectable", frag.State.DecoratesFrom[0].DecoratorName)
}
