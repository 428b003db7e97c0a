// Package graph implements the directed, labeled, typed multigraph that the
// parse pipeline merges file fragments into. Nodes live in a flat arena
// (a map keyed by node id); edges are indices into that arena, never
// pointers between node values, so the graph stays trivially copyable and
// cycle-safe (see spec §9, "Cyclic graphs").
package graph

import (
	"fmt"
	"sort"

	"github.com/revet-dev/revet-core/internal/identity"
)

// NodeKind is the closed set of code-entity kinds a graph node can carry.
type NodeKind string

const (
	KindFile      NodeKind = "File"
	KindFunction  NodeKind = "Function"
	KindMethod    NodeKind = "Method"
	KindClass     NodeKind = "Class"
	KindStruct    NodeKind = "Struct"
	KindEnum      NodeKind = "Enum"
	KindInterface NodeKind = "Interface"
	KindTrait     NodeKind = "Trait"
	KindImpl      NodeKind = "Impl"
	KindImport    NodeKind = "Import"
	KindSymbol    NodeKind = "Symbol"
)

// EdgeKind is the closed set of edge labels the graph supports.
type EdgeKind string

const (
	EdgeContains   EdgeKind = "Contains"
	EdgeImports    EdgeKind = "Imports"
	EdgeCalls      EdgeKind = "Calls"
	EdgeInherits   EdgeKind = "Inherits"
	EdgeImplements EdgeKind = "Implements"
	EdgeDecorates  EdgeKind = "Decorates"
)

// Location is a source range, 1-based, path relative to the repo root.
type Location struct {
	Path      string
	StartLine int
	EndLine   int // 0 means unknown/unset
}

// Node is a single code entity in the graph.
type Node struct {
	ID       string
	Kind     NodeKind
	Loc      Location
	Language string
	Attrs    map[string]string
}

// edgeKey identifies a (src, dst, kind) triple for duplicate collapsing.
type edgeKey struct {
	Src  string
	Dst  string
	Kind EdgeKind
}

// Edge is a directed labeled edge between two node ids.
type Edge struct {
	Src  string
	Dst  string
	Kind EdgeKind
}

// UnknownEndpointError reports that insertEdge referenced a node id absent
// from the graph.
type UnknownEndpointError struct {
	NodeID string
}

func (e *UnknownEndpointError) Error() string {
	return fmt.Sprintf("graph: unknown endpoint %q", e.NodeID)
}

// SelfLoopError reports an attempt to insert an edge from a node to itself,
// which spec §3 forbids outright.
type SelfLoopError struct {
	NodeID string
	Kind   EdgeKind
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("graph: self-loop rejected for %s edge on %q", e.Kind, e.NodeID)
}

// Graph is the merged, global directed typed multigraph over all files.
// It is built mutably during Phase B/C of the parse pipeline, then treated
// as read-only during analysis; nothing in this type enforces that beyond
// convention, per spec §5.
type Graph struct {
	nodes map[string]*Node

	// adjacency indices, kept alongside nodes rather than derived on demand
	// so outgoing/incoming stay O(1) amortized during analysis.
	out     map[string]map[EdgeKind][]string // srcID -> kind -> []dstID
	in      map[string]map[EdgeKind][]string // dstID -> kind -> []srcID
	edgeSet map[edgeKey]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		out:     make(map[string]map[EdgeKind][]string),
		in:      make(map[string]map[EdgeKind][]string),
		edgeSet: make(map[edgeKey]bool),
	}
}

// InsertNode adds a node to the graph. A duplicate id is a CollisionError:
// node identifiers must be unique within a graph (spec §3).
func (g *Graph) InsertNode(n *Node) (string, error) {
	if _, exists := g.nodes[n.ID]; exists {
		return "", &identity.CollisionError{ID: n.ID}
	}
	cp := *n
	if cp.Attrs == nil {
		cp.Attrs = map[string]string{}
	}
	g.nodes[n.ID] = &cp
	return n.ID, nil
}

// InsertEdge adds a directed edge. Self-loops are rejected. Duplicate
// (src, dst, kind) triples are silently collapsed, per spec §3.
func (g *Graph) InsertEdge(srcID, dstID string, kind EdgeKind) error {
	if srcID == dstID {
		return &SelfLoopError{NodeID: srcID, Kind: kind}
	}
	if _, ok := g.nodes[srcID]; !ok {
		return &UnknownEndpointError{NodeID: srcID}
	}
	if _, ok := g.nodes[dstID]; !ok {
		return &UnknownEndpointError{NodeID: dstID}
	}
	key := edgeKey{srcID, dstID, kind}
	if g.edgeSet[key] {
		return nil
	}
	g.edgeSet[key] = true

	if g.out[srcID] == nil {
		g.out[srcID] = make(map[EdgeKind][]string)
	}
	g.out[srcID][kind] = append(g.out[srcID][kind], dstID)

	if g.in[dstID] == nil {
		g.in[dstID] = make(map[EdgeKind][]string)
	}
	g.in[dstID][kind] = append(g.in[dstID][kind], srcID)

	return nil
}

// Lookup returns the node for an id, or nil if absent.
func (g *Graph) Lookup(id string) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Nodes returns all nodes, sorted by id for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]*Node, len(ids))
	for i, id := range ids {
		result[i] = g.nodes[id]
	}
	return result
}

// Outgoing returns (kind, dstID) pairs for edges leaving nodeID. If
// kindFilter is non-empty, only edges of those kinds are returned. Results
// are sorted for determinism; this is a lazily-sized slice, not a channel,
// since graphs in this domain comfortably fit in memory.
func (g *Graph) Outgoing(nodeID string, kindFilter ...EdgeKind) []Edge {
	return collect(g.out[nodeID], nodeID, kindFilter, false)
}

// Incoming returns (kind, srcID) pairs for edges entering nodeID.
func (g *Graph) Incoming(nodeID string, kindFilter ...EdgeKind) []Edge {
	return collect(g.in[nodeID], nodeID, kindFilter, true)
}

func collect(byKind map[EdgeKind][]string, nodeID string, kindFilter []EdgeKind, incoming bool) []Edge {
	var kinds []EdgeKind
	if len(kindFilter) > 0 {
		kinds = kindFilter
	} else {
		for k := range byKind {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	}

	var edges []Edge
	for _, k := range kinds {
		others := append([]string(nil), byKind[k]...)
		sort.Strings(others)
		for _, other := range others {
			if incoming {
				edges = append(edges, Edge{Src: other, Dst: nodeID, Kind: k})
			} else {
				edges = append(edges, Edge{Src: nodeID, Dst: other, Kind: k})
			}
		}
	}
	return edges
}

// ContainingFile walks Contains edges backwards from nodeID until it finds
// a File node, per spec §3's invariant that every non-File node's
// containing file is recoverable (possibly transitively via a class).
func (g *Graph) ContainingFile(nodeID string) *Node {
	seen := map[string]bool{}
	current := nodeID
	for {
		if seen[current] {
			return nil // contains-cycle: internal invariant violation
		}
		seen[current] = true
		n := g.nodes[current]
		if n == nil {
			return nil
		}
		if n.Kind == KindFile {
			return n
		}
		parents := g.in[current][EdgeContains]
		if len(parents) == 0 {
			return nil
		}
		current = parents[0]
	}
}

// Merge unions other's nodes and edges into g, applying idRemap to
// translate other's node ids into g's id space (identity mapping when a
// key is absent). A collision on an id already present in g is fatal,
// since merge is meant to run over disjoint per-file fragments (spec §4.3).
func (g *Graph) Merge(other *Graph, idRemap map[string]string) error {
	remap := func(id string) string {
		if r, ok := idRemap[id]; ok {
			return r
		}
		return id
	}

	for _, n := range other.Nodes() {
		cp := *n
		cp.ID = remap(n.ID)
		if _, err := g.InsertNode(&cp); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}

	for _, n := range other.Nodes() {
		src := remap(n.ID)
		for _, e := range other.Outgoing(n.ID) {
			if err := g.InsertEdge(src, remap(e.Dst), e.Kind); err != nil {
				return fmt.Errorf("merge: edge %s -%s-> %s: %w", src, e.Kind, e.Dst, err)
			}
		}
	}
	return nil
}
