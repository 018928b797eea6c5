package backend

import "github.com/meikuraledutech/graphdoc"

// Graphlib renders documents the way graphlib's JSON graphs look: nodes as
// {v, value} and edges as {v, w, name, value}. Edges are undirected.
type Graphlib struct{}

func (Graphlib) Name() string { return graphdoc.LayoutGraphlib }

func (Graphlib) Convert(doc graphdoc.Document, layout graphdoc.Layout) (graphdoc.Traversable, error) {
	return convert(graphdoc.LayoutGraphlib, false, doc, layout, graphlibNode, graphlibEdge)
}

func graphlibNode(id string, data any) graphdoc.Entity {
	n := graphdoc.Entity{"v": id}
	if data != nil {
		n["value"] = data
	}
	return n
}

func graphlibEdge(id, source, target string, _ bool, data any) graphdoc.Entity {
	e := graphdoc.Entity{"v": source, "w": target, "name": id}
	if data != nil {
		e["value"] = data
	}
	return e
}
