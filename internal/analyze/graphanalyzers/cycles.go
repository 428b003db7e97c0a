package graphanalyzers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/revet-dev/revet-core/internal/config"
	"github.com/revet-dev/revet-core/internal/findings"
	"github.com/revet-dev/revet-core/internal/graph"
)

type dfsColor int

const (
	colorWhite dfsColor = iota
	colorGray
	colorBlack
)

// CircularImports detects import cycles among File nodes via DFS
// three-coloring, grounded on
// original_source/crates/core/src/analyzer/circular_imports.rs.
type CircularImports struct{}

func NewCircularImports() *CircularImports { return &CircularImports{} }

func (a *CircularImports) Name() string   { return "Circular Imports" }
func (a *CircularImports) Prefix() string { return "CYCLE" }

func (a *CircularImports) Enabled(cfg *config.Config) bool { return cfg.ModuleEnabled("cycles") }

func (a *CircularImports) Analyze(g *graph.Graph, _ *config.Config) []findings.Finding {
	cycles := findImportCycles(g)

	var out []findings.Finding
	for _, cycle := range cycles {
		if len(cycle) == 0 {
			continue
		}
		node := g.Lookup(cycle[0])
		if node == nil {
			continue
		}

		names := make([]string, 0, len(cycle))
		for _, id := range cycle {
			n := g.Lookup(id)
			if n == nil {
				continue
			}
			names = append(names, filepath.Base(n.Loc.Path))
		}
		if len(names) == 0 {
			continue
		}

		var cycleStr string
		if len(names) > 1 {
			cycleStr = fmt.Sprintf("%s → %s", strings.Join(names, " → "), names[0])
		} else {
			cycleStr = fmt.Sprintf("%s → %s", names[0], names[0])
		}

		out = append(out, findings.Finding{
			Prefix:     "CYCLE",
			Severity:   findings.Warning,
			File:       node.Loc.Path,
			Line:       node.Loc.StartLine,
			Message:    fmt.Sprintf("Circular import detected: %s", cycleStr),
			Suggestion: "Break the cycle by extracting shared code to a separate module",
		})
	}
	return out
}

// findImportCycles walks File nodes' Imports edges with DFS coloring,
// returning each unique cycle canonicalized to start at its smallest id.
func findImportCycles(g *graph.Graph) [][]string {
	var fileNodes []string
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindFile {
			fileNodes = append(fileNodes, n.ID)
		}
	}

	color := make(map[string]dfsColor, len(fileNodes))
	for _, id := range fileNodes {
		color[id] = colorWhite
	}

	var cycles [][]string
	seen := map[string]bool{}

	var stack []string
	var dfs func(node string)
	dfs = func(node string) {
		color[node] = colorGray
		stack = append(stack, node)

		for _, e := range g.Outgoing(node, graph.EdgeImports) {
			target := g.Lookup(e.Dst)
			if target == nil || target.Kind != graph.KindFile {
				continue
			}
			switch color[e.Dst] {
			case colorWhite:
				dfs(e.Dst)
			case colorGray:
				pos := -1
				for i, n := range stack {
					if n == e.Dst {
						pos = i
						break
					}
				}
				if pos >= 0 {
					cycle := canonicalizeCycle(append([]string(nil), stack[pos:]...))
					key := strings.Join(cycle, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[node] = colorBlack
	}

	for _, start := range fileNodes {
		if color[start] == colorWhite {
			dfs(start)
		}
	}
	return cycles
}

// canonicalizeCycle rotates cycle to start at its lexicographically
// smallest node id, so the same cycle found from different start nodes
// dedupes to one entry.
func canonicalizeCycle(cycle []string) []string {
	if len(cycle) == 0 {
		return cycle
	}
	minPos := 0
	for i, id := range cycle {
		if id < cycle[minPos] {
			minPos = i
		}
	}
	rotated := make([]string, len(cycle))
	for i := range cycle {
		rotated[i] = cycle[(minPos+i)%len(cycle)]
	}
	return rotated
}
