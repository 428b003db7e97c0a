package graphanalyzers

import (
	"fmt"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
)

// entryPointNames are never flagged as unused, regardless of callers.
var entryPointNames = map[string]bool{
	"main": true, "__init__": true, "__main__": true, "new": true,
	"index": true, "handler": true, "default": true,
}

var deadExportKinds = map[graph.NodeKind]bool{
	graph.KindFunction: true,
	graph.KindMethod:   true,
	graph.KindClass:    true,
	graph.KindStruct:   true,
}

// DeadExports flags top-level functions, methods, classes and structs with
// no incoming Calls edge, grounded on
// original_source/crates/core/src/analyzer/unused_exports.rs. This graph
// has no References edge kind, so only Calls is checked.
type DeadExports struct{}

func NewDeadExports() *DeadExports { return &DeadExports{} }

func (a *DeadExports) Name() string   { return "Unused Exports" }
func (a *DeadExports) Prefix() string { return "DEAD" }

func (a *DeadExports) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("dead_code") }

func isTopLevel(g *graph.Graph, nodeID string) bool {
	for _, e := range g.Incoming(nodeID, graph.EdgeContains) {
		src := g.Lookup(e.Src)
		if src != nil && src.Kind == graph.KindFile {
			return true
		}
	}
	return false
}

func hasCallers(g *graph.Graph, nodeID string) bool {
	return len(g.Incoming(nodeID, graph.EdgeCalls)) > 0
}

func exportDisplayName(n *graph.Node) string {
	if _, qualified, _, ok := identity.SplitNodeID(n.ID); ok {
		return qualified
	}
	return n.ID
}

func (a *DeadExports) Analyze(g *graph.Graph, _ *config.Config) []findings.Finding {
	var out []findings.Finding

	for _, node := range g.Nodes() {
		if !deadExportKinds[node.Kind] {
			continue
		}
		name := exportDisplayName(node)
		if entryPointNames[name] {
			continue
		}
		if !isTopLevel(g, node.ID) {
			continue
		}
		if hasCallers(g, node.ID) {
			continue
		}

		out = append(out, findings.Finding{
			Prefix:     "DEAD",
			Severity:   findings.Warning,
			File:       node.Loc.Path,
			Line:       node.Loc.StartLine,
			Message:    fmt.Sprintf("Exported `%s` (%s) has no callers or references", name, node.Kind),
			Suggestion: "Remove this symbol or add an import/call to suppress this warning",
		})
	}

	return out
}
