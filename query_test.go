package revet_test

import (
	"context"
	"testing"

	"github.com/revet-dev/revet-core"
)

// buildCallChainRepo lays out three Python files forming a two-hop call
// chain (run -> mid -> leaf) and a matching two-hop import chain
// (main.py -> mid.py -> leaf.py), so Callers/Callees/Dependencies/
// Dependents each have something non-trivial to walk.
func buildCallChainRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "leaf.py", `def leaf():
    return 1
`)
	writeFile(t, root, "mid.py", `from leaf import leaf

def mid():
    return leaf()
`)
	writeFile(t, root, "main.py", `from mid import mid

def run():
    return mid()
`)
	return root
}

func containsID(nodes []revet.ReachableNode, id string) bool {
	for _, n := range nodes {
		if n.Node.ID == id {
			return true
		}
	}
	return false
}

func depthOf(nodes []revet.ReachableNode, id string) (int, bool) {
	for _, n := range nodes {
		if n.Node.ID == id {
			return n.Depth, true
		}
	}
	return 0, false
}

func TestQuery_CallersTransitive(t *testing.T) {
	root := buildCallChainRepo(t)
	eng := newEngine(t, root, allModulesConfig())
	if _, err := eng.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	leafID := "leaf.py::leaf::Function"
	midID := "mid.py::mid::Function"
	runID := "main.py::run::Function"

	callers := eng.Query().Callers(leafID, -1)
	if d, ok := depthOf(callers, midID); !ok || d != 1 {
		t.Fatalf("want mid at depth 1 among leaf's callers, got %+v", callers)
	}
	if d, ok := depthOf(callers, runID); !ok || d != 2 {
		t.Fatalf("want run at depth 2 among leaf's callers, got %+v", callers)
	}
}

func TestQuery_CalleesTransitive(t *testing.T) {
	root := buildCallChainRepo(t)
	eng := newEngine(t, root, allModulesConfig())
	if _, err := eng.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	leafID := "leaf.py::leaf::Function"
	midID := "mid.py::mid::Function"
	runID := "main.py::run::Function"

	callees := eng.Query().Callees(runID, -1)
	if d, ok := depthOf(callees, midID); !ok || d != 1 {
		t.Fatalf("want mid at depth 1 among run's callees, got %+v", callees)
	}
	if d, ok := depthOf(callees, leafID); !ok || d != 2 {
		t.Fatalf("want leaf at depth 2 among run's callees, got %+v", callees)
	}
}

func TestQuery_CallersDepthLimit(t *testing.T) {
	root := buildCallChainRepo(t)
	eng := newEngine(t, root, allModulesConfig())
	if _, err := eng.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	leafID := "leaf.py::leaf::Function"
	runID := "main.py::run::Function"

	direct := eng.Query().Callers(leafID, 1)
	if containsID(direct, runID) {
		t.Fatalf("depth-1 walk should not reach run (2 hops away): %+v", direct)
	}
}

func TestQuery_DependenciesAndDependentsTransitive(t *testing.T) {
	root := buildCallChainRepo(t)
	eng := newEngine(t, root, allModulesConfig())
	if _, err := eng.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	mainFileID := "main.py::main.py::File"
	midFileID := "mid.py::mid.py::File"
	leafFileID := "leaf.py::leaf.py::File"

	deps := eng.Query().Dependencies(mainFileID, -1)
	if d, ok := depthOf(deps, midFileID); !ok || d != 1 {
		t.Fatalf("want mid.py at depth 1 among main.py's dependencies, got %+v", deps)
	}
	if d, ok := depthOf(deps, leafFileID); !ok || d != 2 {
		t.Fatalf("want leaf.py at depth 2 among main.py's dependencies, got %+v", deps)
	}

	dependents := eng.Query().Dependents(leafFileID, -1)
	if d, ok := depthOf(dependents, midFileID); !ok || d != 1 {
		t.Fatalf("want mid.py at depth 1 among leaf.py's dependents, got %+v", dependents)
	}
	if d, ok := depthOf(dependents, mainFileID); !ok || d != 2 {
		t.Fatalf("want main.py at depth 2 among leaf.py's dependents, got %+v", dependents)
	}
}

func TestQuery_UnknownRootReturnsNil(t *testing.T) {
	root := buildCallChainRepo(t)
	eng := newEngine(t, root, allModulesConfig())
	if _, err := eng.Analyze(context.Background(), nil); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := eng.Query().Callers("does/not.py::Exist::Function", -1); got != nil {
		t.Fatalf("want nil for an unknown root, got %+v", got)
	}
}
