package graphanalyzers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/revet-dev/revet-core/internal/graph"
)

func TestParamCount_ReadsSignatureAttr(t *testing.T) {
	t.Parallel()
	n := &graph.Node{Attrs: map[string]string{"signature": "(a, b int, c string)"}}
	assert.Equal(t, 3, paramCount(n))
}

func TestParamCount_EmptyParens(t *testing.T) {
	t.Parallel()
	n := &graph.Node{Attrs: map[string]string{"signature": "()"}}
	assert.Equal(t, 0, paramCount(n))
}

func TestParamCount_MissingSignature(t *testing.T) {
	t.Parallel()
	n := &graph.Node{Attrs: map[string]string{}}
	assert.Equal(t, 0, paramCount(n))
}

func TestComplexity_FlagsTooManyParameters(t *testing.T) {
	t.Parallel()
	g := graph.New()
	_, err := g.InsertNode(&graph.Node{
		ID:   "a.go::TooMany::Function",
		Kind: graph.KindFunction,
		Loc:  graph.Location{Path: "a.go", StartLine: 1, EndLine: 2},
		Attrs: map[string]string{
			"signature": "(a, b, c, d, e, f int)",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	out := NewComplexity().Analyze(g, nil)

	found := false
	for _, f := range out {
		if f.Prefix == "CMPLX" && f.Line == 1 && strings.Contains(f.Message, "parameters") {
			found = true
		}
	}
	assert.True(t, found, "expected a parameter-count finding for a 6-parameter function")
}
