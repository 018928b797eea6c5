// Package backend binds flat graph documents to traversable graphs. Each
// backend matches one layout and renders node and edge lists in the shape its
// graph library expects; traversal is delegated to gonum multigraphs.
package backend

import (
	"fmt"
	"sort"

	"github.com/meikuraledutech/graphdoc"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// builder is the part of the gonum multigraphs used during conversion.
type builder interface {
	graph.Graph
	AddNode(graph.Node)
	NewLine(from, to graph.Node) graph.Line
	SetLine(graph.Line)
}

// Graph is a converted document.
type Graph struct {
	backend  string
	directed bool
	g        builder
	ids      map[string]int64
	names    map[int64]string
	nodes    []graphdoc.Entity
	edges    []graphdoc.Entity
}

// Nodes returns the node list in the backend's format.
func (g *Graph) Nodes() []graphdoc.Entity { return g.nodes }

// Edges returns the edge list in the backend's format.
func (g *Graph) Edges() []graphdoc.Entity { return g.edges }

// Backend names the backend that produced g.
func (g *Graph) Backend() string { return g.backend }

// Directed reports whether the underlying multigraph is directed.
func (g *Graph) Directed() bool { return g.directed }

// Gonum exposes the underlying multigraph for algorithm packages.
func (g *Graph) Gonum() graph.Graph { return g.g }

// NodeID maps a document node id to its gonum id.
func (g *Graph) NodeID(id string) (int64, bool) {
	n, ok := g.ids[id]
	return n, ok
}

// Neighbors returns the ids reachable over one edge from id, sorted.
func (g *Graph) Neighbors(id string) []string {
	n, ok := g.ids[id]
	if !ok {
		return nil
	}
	var out []string
	for _, to := range graph.NodesOf(g.g.From(n)) {
		out = append(out, g.names[to.ID()])
	}
	sort.Strings(out)
	return out
}

// HasEdge reports whether an edge leads from one node to another. For
// undirected graphs the order does not matter.
func (g *Graph) HasEdge(from, to string) bool {
	u, ok := g.ids[from]
	if !ok {
		return false
	}
	v, ok := g.ids[to]
	if !ok {
		return false
	}
	if d, ok := g.g.(graph.Directed); ok {
		return d.HasEdgeFromTo(u, v)
	}
	return g.g.HasEdgeBetween(u, v)
}

func (g *Graph) intern(id string) graph.Node {
	if n, ok := g.ids[id]; ok {
		return g.g.Node(n)
	}
	n := multi.Node(int64(len(g.ids)))
	g.ids[id] = n.ID()
	g.names[n.ID()] = id
	g.g.AddNode(n)
	return n
}

type nodeFormat func(id string, data any) graphdoc.Entity

type edgeFormat func(id, source, target string, directed bool, data any) graphdoc.Entity

func convert(name string, directed bool, doc graphdoc.Document, layout graphdoc.Layout, nf nodeFormat, ef edgeFormat) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("backend %s: nil document", name)
	}
	g := &Graph{
		backend:  name,
		directed: directed,
		ids:      make(map[string]int64),
		names:    make(map[int64]string),
	}
	if directed {
		g.g = multi.NewDirectedGraph()
	} else {
		g.g = multi.NewUndirectedGraph()
	}

	k := layout.Keys
	for _, n := range doc.Collection(k.Nodes) {
		id := n.String(k.Node.ID)
		if id == "" {
			return nil, fmt.Errorf("backend %s: node without %q: %w", name, k.Node.ID, graphdoc.ErrMissingRequiredField)
		}
		if _, seen := g.ids[id]; seen {
			continue
		}
		g.intern(id)
		g.nodes = append(g.nodes, nf(id, nodeData(n, k.Node)))
	}

	for _, e := range doc.Collection(k.Edges) {
		source, target := e.String(k.Edge.Source), e.String(k.Edge.Target)
		if source == "" || target == "" {
			return nil, fmt.Errorf("backend %s: edge %q without endpoints: %w", name, e.String(k.Edge.ID), graphdoc.ErrMissingRequiredField)
		}
		edgeDirected := e.Bool(k.Edge.Directed)
		from, to := g.intern(source), g.intern(target)
		g.g.SetLine(g.g.NewLine(from, to))
		if directed && !edgeDirected {
			g.g.SetLine(g.g.NewLine(to, from))
		}
		var data any
		if k.Edge.Data != "" {
			data = e[k.Edge.Data]
		}
		g.edges = append(g.edges, ef(e.String(k.Edge.ID), source, target, edgeDirected, data))
	}
	return g, nil
}

// nodeData returns the payload of a node: the data field when the layout
// names one and it is set, otherwise every field except the id.
func nodeData(n graphdoc.Entity, keys graphdoc.NodeKeys) any {
	if keys.Data != "" {
		if v, ok := n[keys.Data]; ok {
			return v
		}
	}
	rest := graphdoc.Entity{}
	for k, v := range n {
		if k != keys.ID {
			rest[k] = v
		}
	}
	if len(rest) == 0 {
		return nil
	}
	return rest
}

// ForLayout returns the backend registered for a layout name.
func ForLayout(name string) (graphdoc.Backend, bool) {
	switch name {
	case graphdoc.LayoutGraphlib:
		return Graphlib{}, true
	case graphdoc.LayoutNGraph:
		return NGraph{}, true
	}
	return nil, false
}
