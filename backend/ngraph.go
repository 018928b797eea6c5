package backend

import "github.com/meikuraledutech/graphdoc"

// NGraph renders documents as ngraph JSON: nodes {id, data} and links
// {id, fromId, toId, data}. The graph is directed; undirected links are
// traversable both ways.
type NGraph struct{}

func (NGraph) Name() string { return graphdoc.LayoutNGraph }

func (NGraph) Convert(doc graphdoc.Document, layout graphdoc.Layout) (graphdoc.Traversable, error) {
	return convert(graphdoc.LayoutNGraph, true, doc, layout, ngraphNode, ngraphLink)
}

func ngraphNode(id string, data any) graphdoc.Entity {
	n := graphdoc.Entity{"id": id}
	if data != nil {
		n["data"] = data
	}
	return n
}

func ngraphLink(id, source, target string, directed bool, data any) graphdoc.Entity {
	l := graphdoc.Entity{"id": id, "fromId": source, "toId": target}
	if directed {
		l["directed"] = true
	}
	if data != nil {
		l["data"] = data
	}
	return l
}
