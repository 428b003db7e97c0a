// Package resolve implements the three-pass Cross-File Resolver: import
// resolution, call resolution, and inheritance resolution, run once over
// the fully merged graph. It replaces the teacher's Risor resolution
// scripts issuing SQL lookups (internal/runtime host functions +
// query_resolved_references-style queries) with plain Go functions over
// an in-memory graph.Graph.
package resolve

import (
	"path"
	"sort"
	"strings"

	"github.com/revet-dev/revet-core/internal/diagnostic"
	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
	"github.com/revet-dev/revet-core/internal/parser"
)

// candidateExtensions lists probes applied to a bare or extension-less
// specifier, in priority order, covering every language the registry
// supports plus the handful spec §4.5 names as "etc" (rust, and a bare
// directory-index probe for JS-style package imports).
var candidateExtensions = []string{"", ".go", ".py", ".ts", ".tsx", ".js", ".jsx", ".rs"}

// Run performs all three passes over g, using the per-file ParseState
// values produced by the parse pipeline. It mutates g in place, adding
// Imports/Calls/Inherits edges, and returns every diagnostic produced
// along the way; it never returns an error, since an unresolved or
// ambiguous reference is an expected outcome, not a failure (spec §4.5).
func Run(g *graph.Graph, states map[string]*parser.ParseState) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	filesByPath := indexFilesByPath(g)

	diags = append(diags, resolveImports(g, states, filesByPath)...)
	diags = append(diags, resolveCalls(g, states, filesByPath)...)
	diags = append(diags, resolveInheritance(g, states, filesByPath)...)
	diags = append(diags, resolveDecorators(g, states, filesByPath)...)

	return diags
}

func indexFilesByPath(g *graph.Graph) map[string]*graph.Node {
	out := make(map[string]*graph.Node)
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindFile {
			out[n.Loc.Path] = n
		}
	}
	return out
}

func resolveImports(g *graph.Graph, states map[string]*parser.ParseState, filesByPath map[string]*graph.Node) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic

	// sort file paths for deterministic diagnostic ordering
	var paths []string
	for p := range states {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		state := states[filePath]
		for _, imp := range state.Imports {
			target, ok := resolveImportSpecifier(filePath, imp.Specifier, filesByPath)
			if !ok {
				diags = append(diags, diagnostic.Diagnostic{
					Kind: diagnostic.KindUnresolvedImport, Path: filePath,
					Message: "unresolved import: " + imp.Specifier,
				})
				continue
			}
			fileID := identity.NodeID(filePath, filePath, string(graph.KindFile))
			targetID := identity.NodeID(target.Loc.Path, target.Loc.Path, string(graph.KindFile))
			if fileID == targetID {
				continue
			}
			if err := g.InsertEdge(fileID, targetID, graph.EdgeImports); err != nil {
				diags = append(diags, diagnostic.Diagnostic{
					Kind: diagnostic.KindUnresolvedImport, Path: filePath,
					Message: err.Error(),
				})
			}
		}
	}
	return diags
}

// resolveImportSpecifier applies relative-path resolution against the
// importing file's directory for specifiers beginning with "." or "..",
// and repo-root resolution otherwise, probing candidateExtensions.
func resolveImportSpecifier(importingPath, specifier string, filesByPath map[string]*graph.Node) (*graph.Node, bool) {
	specifier = strings.TrimSuffix(specifier, "/")

	var base string
	if strings.HasPrefix(specifier, ".") {
		base = path.Join(path.Dir(importingPath), specifier)
	} else {
		base = specifier
	}
	base = path.Clean(base)

	for _, ext := range candidateExtensions {
		candidate := base + ext
		if n, ok := filesByPath[candidate]; ok {
			return n, true
		}
	}
	// package-style import: try <base>/index.<ext> or <base>/__init__.py
	for _, indexName := range []string{"/index.ts", "/index.js", "/index.tsx", "/__init__.py"} {
		candidate := base + indexName
		if n, ok := filesByPath[candidate]; ok {
			return n, true
		}
	}
	return nil, false
}

// declIndex maps an unqualified symbol name to every declaration with
// that name, across the whole graph, so call/inheritance resolution can
// apply the same-file > direct-import > transitive tie-break.
type declIndex struct {
	byName map[string][]*graph.Node
}

func buildDeclIndex(g *graph.Graph, kinds ...graph.NodeKind) *declIndex {
	idx := &declIndex{byName: make(map[string][]*graph.Node)}
	wanted := make(map[graph.NodeKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}
	for _, n := range g.Nodes() {
		if !wanted[n.Kind] {
			continue
		}
		_, qualified, _, ok := identity.SplitNodeID(n.ID)
		if !ok {
			continue
		}
		name := qualified
		if i := strings.LastIndex(qualified, "."); i >= 0 {
			name = qualified[i+1:]
		}
		idx.byName[name] = append(idx.byName[name], n)
	}
	return idx
}

// pick applies the same-file > direct-import > transitive-import tie
// break, then lexicographic by file path. It returns (nil, false) when
// there is no candidate in any tier, and also when two or more
// candidates at the winning tier share the lexicographically-first
// file path.
func pick(candidates []*graph.Node, fromFilePath string, g *graph.Graph) (*graph.Node, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	sameFile := filterByTier(candidates, fromFilePath, func(path string) bool { return path == fromFilePath })
	if len(sameFile) > 0 {
		return resolveTier(sameFile)
	}

	directImports := directImportSet(g, fromFilePath)
	direct := filterByTier(candidates, fromFilePath, func(path string) bool { return directImports[path] })
	if len(direct) > 0 {
		return resolveTier(direct)
	}

	transitiveImports := transitiveImportSet(g, fromFilePath)
	transitive := filterByTier(candidates, fromFilePath, func(path string) bool { return transitiveImports[path] })
	if len(transitive) > 0 {
		return resolveTier(transitive)
	}

	return nil, false
}

func filterByTier(candidates []*graph.Node, _ string, match func(path string) bool) []*graph.Node {
	var out []*graph.Node
	for _, c := range candidates {
		p, _, _, ok := identity.SplitNodeID(c.ID)
		if !ok {
			continue
		}
		if match(p) {
			out = append(out, c)
		}
	}
	return out
}

// resolveTier returns the single winner within a tier, lexicographic by
// file path; more than one distinct node at the lexicographically-first
// path is still ambiguous.
func resolveTier(tier []*graph.Node) (*graph.Node, bool) {
	sort.Slice(tier, func(i, j int) bool { return tier[i].ID < tier[j].ID })
	pathOf := func(n *graph.Node) string {
		p, _, _, _ := identity.SplitNodeID(n.ID)
		return p
	}
	firstPath := pathOf(tier[0])
	var atFirstPath []*graph.Node
	for _, n := range tier {
		if pathOf(n) == firstPath {
			atFirstPath = append(atFirstPath, n)
		}
	}
	if len(atFirstPath) != 1 {
		return nil, false
	}
	return atFirstPath[0], true
}

func directImportSet(g *graph.Graph, filePath string) map[string]bool {
	fileID := identity.NodeID(filePath, filePath, string(graph.KindFile))
	set := map[string]bool{}
	for _, e := range g.Outgoing(fileID, graph.EdgeImports) {
		if p, _, _, ok := identity.SplitNodeID(e.Dst); ok {
			set[p] = true
		}
	}
	return set
}

func transitiveImportSet(g *graph.Graph, filePath string) map[string]bool {
	fileID := identity.NodeID(filePath, filePath, string(graph.KindFile))
	visited := map[string]bool{fileID: true}
	queue := []string{fileID}
	set := map[string]bool{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(cur, graph.EdgeImports) {
			if visited[e.Dst] {
				continue
			}
			visited[e.Dst] = true
			if p, _, _, ok := identity.SplitNodeID(e.Dst); ok {
				set[p] = true
			}
			queue = append(queue, e.Dst)
		}
	}
	return set
}

func resolveCalls(g *graph.Graph, states map[string]*parser.ParseState, _ map[string]*graph.Node) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	idx := buildDeclIndex(g, graph.KindFunction, graph.KindMethod)

	var paths []string
	for p := range states {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		state := states[filePath]
		for _, call := range state.CallsFrom {
			candidates := idx.byName[call.CalleeName]
			target, ok := pick(candidates, filePath, g)
			if !ok {
				kind := diagnostic.KindUnresolvedCall
				if len(candidates) > 1 {
					kind = diagnostic.KindAmbiguousCall
				}
				diags = append(diags, diagnostic.Diagnostic{
					Kind: kind, Path: filePath,
					Message: "unresolved call: " + call.CalleeName,
				})
				continue
			}
			if call.CallerID == target.ID {
				continue
			}
			if err := g.InsertEdge(call.CallerID, target.ID, graph.EdgeCalls); err != nil {
				diags = append(diags, diagnostic.Diagnostic{Kind: diagnostic.KindUnresolvedCall, Path: filePath, Message: err.Error()})
			}
		}
	}
	return diags
}

// resolveDecorators resolves each deferred DecorateRef against
// functions and methods in the graph — the usual shape of a decorator
// reference (a bare name or the leftmost identifier of a dotted/called
// expression, per the parsers' decoratorName helpers) — using the same
// same-file > direct-import > transitive tie-break as calls.
func resolveDecorators(g *graph.Graph, states map[string]*parser.ParseState, _ map[string]*graph.Node) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	idx := buildDeclIndex(g, graph.KindFunction, graph.KindMethod)

	var paths []string
	for p := range states {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		state := states[filePath]
		for _, dec := range state.DecoratesFrom {
			if dec.DecoratorName == "" {
				continue
			}
			candidates := idx.byName[dec.DecoratorName]
			target, ok := pick(candidates, filePath, g)
			if !ok {
				kind := diagnostic.KindUnresolvedDecorator
				if len(candidates) > 1 {
					kind = diagnostic.KindAmbiguousDecorator
				}
				diags = append(diags, diagnostic.Diagnostic{
					Kind: kind, Path: filePath,
					Message: "unresolved decorator: " + dec.DecoratorName,
				})
				continue
			}
			if dec.DecoratedID == target.ID {
				continue
			}
			if err := g.InsertEdge(dec.DecoratedID, target.ID, graph.EdgeDecorates); err != nil {
				diags = append(diags, diagnostic.Diagnostic{Kind: diagnostic.KindUnresolvedDecorator, Path: filePath, Message: err.Error()})
			}
		}
	}
	return diags
}

func resolveInheritance(g *graph.Graph, states map[string]*parser.ParseState, _ map[string]*graph.Node) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	idx := buildDeclIndex(g, graph.KindClass, graph.KindStruct, graph.KindTrait, graph.KindInterface)

	var paths []string
	for p := range states {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, filePath := range paths {
		state := states[filePath]
		for _, inh := range state.InheritanceFrom {
			candidates := idx.byName[inh.SuperName]
			target, ok := pick(candidates, filePath, g)
			if !ok {
				kind := diagnostic.KindUnresolvedInherit
				if len(candidates) > 1 {
					kind = diagnostic.KindAmbiguousInherit
				}
				diags = append(diags, diagnostic.Diagnostic{
					Kind: kind, Path: filePath,
					Message: "unresolved supertype: " + inh.SuperName,
				})
				continue
			}
			if inh.SubclassID == target.ID {
				continue
			}
			if err := g.InsertEdge(inh.SubclassID, target.ID, graph.EdgeInherits); err != nil {
				diags = append(diags, diagnostic.Diagnostic{Kind: diagnostic.KindUnresolvedInherit, Path: filePath, Message: err.Error()})
			}
		}
	}
	return diags
}
