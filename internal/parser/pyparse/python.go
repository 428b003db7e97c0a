// Package pyparse implements the Parser Capability for Python source
// files using tree-sitter queries against the grammar.
package pyparse

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	tspy "github.com/smacker/go-tree-sitter/python"

	"github.com/revet-dev/revet-core/internal/graph"
	"github.com/revet-dev/revet-core/internal/identity"
	"github.com/revet-dev/revet-core/internal/parser"
)

// Capability is the registrable Python language capability.
var Capability = parser.Capability{
	Language:   "python",
	Extensions: []string{".py"},
	Parse:      Parse,
}

const declQuery = `
(function_definition name: (identifier) @name parameters: (parameters) @params) @func
(class_definition
  name: (identifier) @name
  superclasses: (argument_list (identifier) @base)?) @class
(import_statement name: (dotted_name) @spec) @import
(import_from_statement module_name: (dotted_name) @spec) @import
(call function: (identifier) @callee) @call
(decorated_definition
  (decorator) @decorator
  definition: (function_definition name: (identifier) @decorated_name))
(decorated_definition
  (decorator) @decorator
  definition: (class_definition name: (identifier) @decorated_name))
`

type decl struct {
	id        string
	kind      graph.NodeKind
	startByte uint32
	endByte   uint32
}

// Parse extracts a FileFragment from Python source. Function and class
// definitions become nodes; a class's base list becomes InheritanceFrom
// entries (resolved against same-file declarations where possible);
// method-vs-function distinction is not made here since Python nests
// function_definition inside class bodies identically at the grammar
// level — internal/resolve treats both uniformly as callable symbols.
func Parse(relPath string, src []byte) (*parser.FileFragment, *parser.ParseError) {
	if len(src) == 0 {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.IoEmpty, Message: "empty file"}
	}

	tsParser := sitter.NewParser()
	tsParser.SetLanguage(tspy.GetLanguage())

	tree, err := tsParser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: err.Error()}
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.SyntaxUnrecoverable, Message: "no root node"}
	}
	root := tree.RootNode()

	fileID := identity.NodeID(relPath, relPath, string(graph.KindFile))
	frag := &parser.FileFragment{
		Path: relPath,
		Nodes: []*graph.Node{{
			ID:       fileID,
			Kind:     graph.KindFile,
			Loc:      graph.Location{Path: relPath, StartLine: 1},
			Language: "python",
		}},
	}

	q, qerr := sitter.NewQuery([]byte(declQuery), tspy.GetLanguage())
	if qerr != nil {
		return nil, &parser.ParseError{Path: relPath, Kind: parser.GrammarMissing, Message: qerr.Error()}
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, root)

	declaredNames := map[string]string{}
	var decls []decl
	var classBases []struct {
		classID string
		base    string
	}
	var calls []struct {
		startByte uint32
		callee    string
		line      int
	}
	var decorations []struct {
		targetName    string
		decoratorName string
		line          int
	}

	for {
		match, found := cursor.NextMatch()
		if !found {
			break
		}
		match = cursor.FilterPredicates(match, src)

		var kind string
		var nameCap, declNode, paramsCap *sitter.Node
		var baseCaps []*sitter.Node
		var decoratorCap, decoratedNameCap *sitter.Node
		for _, cap := range match.Captures {
			switch q.CaptureNameForId(cap.Index) {
			case "func", "class", "import", "call":
				kind = q.CaptureNameForId(cap.Index)
				declNode = cap.Node
			case "name":
				nameCap = cap.Node
			case "spec", "callee":
				nameCap = cap.Node
			case "base":
				baseCaps = append(baseCaps, cap.Node)
			case "params":
				paramsCap = cap.Node
			case "decorator":
				decoratorCap = cap.Node
			case "decorated_name":
				decoratedNameCap = cap.Node
			}
		}

		if decoratorCap != nil && decoratedNameCap != nil {
			decorations = append(decorations, struct {
				targetName    string
				decoratorName string
				line          int
			}{
				targetName:    decoratedNameCap.Content(src),
				decoratorName: decoratorExprName(decoratorCap, src),
				line:          int(decoratorCap.StartPoint().Row) + 1,
			})
			continue
		}

		switch kind {
		case "func":
			if nameCap == nil {
				continue
			}
			name := nameCap.Content(src)
			id := identity.NodeID(relPath, name, string(graph.KindFunction))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID: id, Kind: graph.KindFunction,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "python",
				Attrs:    signatureAttrs(paramsCap, src),
			})
			frag.Edges = append(frag.Edges, graph.Edge{Src: fileID, Dst: id, Kind: graph.EdgeContains})
			declaredNames[name] = id
			decls = append(decls, decl{id: id, kind: graph.KindFunction, startByte: declNode.StartByte(), endByte: declNode.EndByte()})
		case "class":
			if nameCap == nil {
				continue
			}
			name := nameCap.Content(src)
			id := identity.NodeID(relPath, name, string(graph.KindClass))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID: id, Kind: graph.KindClass,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "python",
			})
			frag.Edges = append(frag.Edges, graph.Edge{Src: fileID, Dst: id, Kind: graph.EdgeContains})
			declaredNames[name] = id
			decls = append(decls, decl{id: id, kind: graph.KindClass, startByte: declNode.StartByte(), endByte: declNode.EndByte()})
			for _, b := range baseCaps {
				classBases = append(classBases, struct {
					classID string
					base    string
				}{classID: id, base: b.Content(src)})
			}
		case "import":
			if nameCap == nil {
				continue
			}
			spec := nameCap.Content(src)
			id := identity.NodeID(relPath, spec, string(graph.KindImport))
			frag.Nodes = append(frag.Nodes, &graph.Node{
				ID: id, Kind: graph.KindImport,
				Loc:      graph.Location{Path: relPath, StartLine: int(nameCap.StartPoint().Row) + 1},
				Language: "python",
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

	enclosing := func(pos uint32) string {
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

	for _, cb := range classBases {
		if superID, ok := declaredNames[cb.base]; ok && superID != cb.classID {
			frag.Edges = append(frag.Edges, graph.Edge{Src: cb.classID, Dst: superID, Kind: graph.EdgeInherits})
			continue
		}
		frag.State.InheritanceFrom = append(frag.State.InheritanceFrom, parser.InheritRef{
			SubclassID: cb.classID, SuperName: cb.base,
		})
	}

	for _, c := range calls {
		callerID := enclosing(c.startByte)
		if targetID, ok := declaredNames[c.callee]; ok {
			if targetID != callerID {
				frag.Edges = append(frag.Edges, graph.Edge{Src: callerID, Dst: targetID, Kind: graph.EdgeCalls})
			}
			continue
		}
		frag.State.CallsFrom = append(frag.State.CallsFrom, parser.CallRef{
			CallerID: callerID, CalleeName: c.callee, Line: c.line,
		})
	}

	for _, dec := range decorations {
		decoratedID, ok := declaredNames[dec.targetName]
		if !ok {
			continue
		}
		if targetID, ok := declaredNames[dec.decoratorName]; ok {
			if targetID != decoratedID {
				frag.Edges = append(frag.Edges, graph.Edge{Src: decoratedID, Dst: targetID, Kind: graph.EdgeDecorates})
			}
			continue
		}
		frag.State.DecoratesFrom = append(frag.State.DecoratesFrom, parser.DecorateRef{
			DecoratedID: decoratedID, DecoratorName: dec.decoratorName, Line: dec.line,
		})
	}

	return frag, nil
}

// decoratorExprName extracts the decorator's leftmost identifier —
// "app" from "@app.route(...)", "foo" from "@foo" or "@foo()" — the
// name a decorator resolution pass looks up against declared symbols.
// n is the (decorator) node itself; its single named child is the
// decorated expression.
func decoratorExprName(n *sitter.Node, src []byte) string {
	if n.NamedChildCount() == 0 {
		return ""
	}
	return decoratorTargetName(n.NamedChild(0), src)
}

func decoratorTargetName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "call":
		if fn := n.ChildByFieldName("function"); fn != nil {
			return decoratorTargetName(fn, src)
		}
	case "attribute":
		if obj := n.ChildByFieldName("object"); obj != nil {
			return decoratorTargetName(obj, src)
		}
	}
	return ""
}

// signatureAttrs captures the raw parameter-list text as the node's
// "signature" attribute, so internal/impact can tell a body edit from a
// signature change.
func signatureAttrs(params *sitter.Node, src []byte) map[string]string {
	if params == nil {
		return nil
	}
	return map[string]string{"signature": params.Content(src)}
}
