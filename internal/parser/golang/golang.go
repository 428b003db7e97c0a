// Package golang implements the Parser Capability for Go source files
// using tree-sitter queries directly against the grammar, in place of the
// teacher's embedded Risor scripting layer.
package golang

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsgo "github.com/smacker/go-tree-sitter/golang"

	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
	"github.com/revet-dev/revet-core/internal/parser"
)

// Capability is the registrable Go language capability.
var Capability = parser.Capability{
	Language:   "go",
	Extensions: []string{".go"},
	Parse:      Parse,
}

const declQuery = `
(function_declaration name: (identifier) @name parameters: (parameter_list) @params) @func
(method_declaration
  receiver: (parameter_list (parameter_declaration type: (_) @recv))
  name: (field_identifier) @name
  parameters: (parameter_list) @params) @method
(import_spec path: (interpreted_string_literal) @path) @import
(call_expression function: (identifier) @callee) @call
`

// Parse extracts a FileFragment from Go source. Functions and methods
// become graph nodes with Contains edges from the File node; calls to
// names declared in the same file resolve immediately to Calls edges,
// everything else becomes an unresolved CallRef for internal/resolve.
// Go has no class-inheritance keyword, so InheritanceFrom is always empty.
func Parse(relPath string, src []byte) (*parser.FileFragment, *parser.ParseError) {
	if len(src) == 0 {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.IoEmpty, Message: "empty file"}
	}

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(tsgo.GetLanguage())

	tree, err := tsParser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: err.Error()}
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: "no root node"}
	}
	root := tree.RootNode()
	if root.HasError() && root.ChildCount() == 0 {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: "unparseable source"}
	}

	fileID := identity.NodeID(relPath, relPath, string(graph.KindFile))
	frag := &parser.FileFragment{
		Path: relPath,
		Nodes: []*graph.Node{{
			ID:       fileID,
			Kind:     graph.KindFile,
			Loc:      graph.Location{Path: relPath, StartLine: 1},
			Language: "go",
		}},
	}

	q, qerr := sitter.NewQuery([]byte(declQuery), tsgo.GetLanguage())
	if qerr != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.GrammarMissing, Message: qerr.Error()}
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	declaredNames := map[string]string{} // unqualified name -> node id
	type decl struct {
		id        string
		startByte uint32
		endByte   uint32
	}
	var decls []decl
	var calls []struct {
		startByte uint32
		callee    string
		line      int
	}

	for {
		match, found := cursor.NextMatch()
		if !found {
			break
		}
		match = cursor.FilterPredicates(match, src)

		var kind string
		var nameCap, declNode, paramsCap *sitter.Node
		for _, cap := range match.Captures {
			capName := q.CaptureNameForId(cap.Index)
			switch capName {
			case "func", "method", "import", "call":
				kind = capName
				declNode = cap.Node
			case "name", "path", "callee":
				nameCap = cap.Node
			case "params":
				paramsCap = cap.Node
			}
		}

		switch kind {
		case "func":
			if nameCap == nil {
				continue
			}
			name := nameCap.Content(src)
			id := identity.NodeID(relPath, name, string(graph.KindFunction))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID:       id,
				Kind:     graph.KindFunction,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "go",
				Attrs:    signatureAttrs(paramsCap, src),
			})
			frag.Edges = append(frag.Edges, graph.Edge{Src: fileID, Dst: id, Kind: graph.EdgeContains})
			declaredNames[name] = id
			decls = append(decls, decl{id: id, startByte: declNode.StartByte(), endByte: declNode.EndByte()})
		case "method":
			if nameCap == nil {
				continue
			}
			name := nameCap.Content(src)
			id := identity.NodeID(relPath, name, string(graph.KindMethod))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID:       id,
				Kind:     graph.KindMethod,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "go",
				Attrs:    signatureAttrs(paramsCap, src),
			})
			frag.Edges = append(frag.Edges, graph.Edge{Src: fileID, Dst: id, Kind: graph.EdgeContains})
			declaredNames[name] = id
			decls = append(decls, decl{id: id, startByte: declNode.StartByte(), endByte: declNode.EndByte()})
		case "import":
			if nameCap == nil {
				continue
			}
			spec := strings.Trim(nameCap.Content(src), `"`)
			id := identity.NodeID(relPath, spec, string(graph.KindImport))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID:       id,
				Kind:     graph.KindImport,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "go",
				Attrs:    map[string]string{"specifier": spec},
			})
			frag.Edges = append(frag.Edges, graph.Edge{Src: fileID, Dst: id, Kind: graph.EdgeContains})
			frag.State.Imports = append(frag.State.Imports, parser.ImportRef{
				FileID: fileID, Specifier: spec, Line: int(nameCap.StartPoint().Row) + 1,
			})
		case "call":
			if nameCap == nil {
				continue
			}
			calls = append(calls, struct {
				startByte uint32
				callee    string
				line      int
			}{startByte: nameCap.StartByte(), callee: nameCap.Content(src), line: int(nameCap.StartPoint().Row) + 1})
		}
	}

	enclosingDecl := func(pos uint32) string {
		best := fileID
		var bestSpan uint32 = ^uint32(0)
		for _, d := range decls {
			if pos >= d.startByte && pos < d.endByte {
				span := d.endByte - d.startByte
				if span < bestSpan {
					best, bestSpan = d.id, span
				}
			}
		}
		return best
	}

	for _, c := range calls {
		callerID := enclosingDecl(c.startByte)
		if targetID, ok := declaredNames[c.callee]; ok && targetID != callerID {
			frag.Edges = append(frag.Edges, graph.Edge{Src: callerID, Dst: targetID, Kind: graph.EdgeCalls})
			continue
		}
		if _, ok := declaredNames[c.callee]; ok {
			continue // recursive self-call: same-file resolution would be a self-loop, drop it
		}
		frag.State.CallsFrom = append(frag.State.CallsFrom, parser.CallRef{
			CallerID: callerID, CalleeName: c.callee, Line: c.line,
		})
	}

	return frag, nil
}

// signatureAttrs captures the raw parameter-list text as the node's
// "signature" attribute (spec's node attribute map: "parameter-signature
// string"), so internal/impact can tell a body edit from a signature
// change. Returns nil when params wasn't captured, matching the zero
// value every other Attrs-less node already uses.
func signatureAttrs(params *sitter.Node, src []byte) map[string]string {
	if params == nil {
		return nil
	}
	return map[string]string{"signature": params.Content(src)}
}
