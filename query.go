package revet

import (
	"github.com/revet-dev/revet-core/internal/graph"
)

// QueryBuilder answers graph-reachability questions over a single
// snapshot graph, grounded on the teacher's TransitiveCallers /
// TransitiveCallees (query_graph.go): bulk-load edges implicitly via
// graph.Graph's adjacency maps, then walk with a plain BFS queue. Unlike
// the teacher, there is no bulk edge pre-load step — internal/graph
// already indexes edges by endpoint, so the BFS queries it directly.
type QueryBuilder struct {
	graph *graph.Graph
}

// ReachableNode is one node discovered while walking a QueryBuilder
// traversal, paired with its BFS depth from the root (0 = the root
// itself).
type ReachableNode struct {
	Node  *graph.Node
	Depth int
}

// maxTraversalDepth caps every QueryBuilder walk, mirroring the
// teacher's hardcoded 100-depth ceiling on TransitiveCallers/Callees.
const maxTraversalDepth = 100

// walk performs a breadth-first traversal from rootID along the given
// edge kind, in the given direction, bounded to maxDepth (<=0 or >100
// clamps to maxTraversalDepth). The root itself is included at depth 0.
func (q *QueryBuilder) walk(rootID string, kind graph.EdgeKind, incoming bool, maxDepth int) []ReachableNode {
	root := q.graph.Lookup(rootID)
	if root == nil {
		return nil
	}
	if maxDepth <= 0 || maxDepth > maxTraversalDepth {
		maxDepth = maxTraversalDepth
	}

	visited := map[string]int{rootID: 0}
	type entry struct {
		id    string
		depth int
	}
	queue := []entry{{id: rootID, depth: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= maxDepth {
			continue
		}

		var edges []graph.Edge
		if incoming {
			edges = q.graph.Incoming(cur.id, kind)
		} else {
			edges = q.graph.Outgoing(cur.id, kind)
		}

		for _, e := range edges {
			next := e.Src
			if !incoming {
				next = e.Dst
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = cur.depth + 1
			queue = append(queue, entry{id: next, depth: cur.depth + 1})
		}
	}

	out := make([]ReachableNode, 0, len(visited))
	for id, depth := range visited {
		n := q.graph.Lookup(id)
		if n == nil {
			continue
		}
		out = append(out, ReachableNode{Node: n, Depth: depth})
	}
	return out
}

// Callers returns every symbol that transitively calls symbolID, up to
// maxDepth hops along reversed Calls edges. maxDepth<=0 uses the
// traversal ceiling.
func (q *QueryBuilder) Callers(symbolID string, maxDepth int) []ReachableNode {
	return q.walk(symbolID, graph.EdgeCalls, true, maxDepth)
}

// Callees returns every symbol transitively called by symbolID, up to
// maxDepth hops along Calls edges.
func (q *QueryBuilder) Callees(symbolID string, maxDepth int) []ReachableNode {
	return q.walk(symbolID, graph.EdgeCalls, false, maxDepth)
}

// Dependencies returns every File node transitively imported by fileID,
// up to maxDepth hops along Imports edges.
func (q *QueryBuilder) Dependencies(fileID string, maxDepth int) []ReachableNode {
	return q.walk(fileID, graph.EdgeImports, false, maxDepth)
}

// Dependents returns every File node that transitively imports fileID,
// up to maxDepth hops along reversed Imports edges.
func (q *QueryBuilder) Dependents(fileID string, maxDepth int) []ReachableNode {
	return q.walk(fileID, graph.EdgeImports, true, maxDepth)
}
