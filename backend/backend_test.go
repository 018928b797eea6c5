package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/meikuraledutech/graphdoc"
)

func ngraphDoc() graphdoc.Document {
	return graphdoc.Document{
		"nodes": []graphdoc.Entity{
			{"id": "a", "data": map[string]any{"x": 1}},
			{"id": "b"},
			{"id": "c", "color": "red"},
			{"id": "a", "data": "shadowed"},
		},
		"links": []graphdoc.Entity{
			{"id": "a->b", "fromId": "a", "toId": "b", "directed": true, "data": 5},
			{"id": "b<->c", "fromId": "b", "toId": "c", "directed": false},
		},
	}
}

func TestNGraphConvert(t *testing.T) {
	view, err := NGraph{}.Convert(ngraphDoc(), graphdoc.NGraphLayout())
	require.NoError(t, err)
	g := view.(*Graph)

	assert.Equal(t, graphdoc.LayoutNGraph, g.Backend())
	assert.True(t, g.Directed())
	assert.Equal(t, []graphdoc.Entity{
		{"id": "a", "data": map[string]any{"x": 1}},
		{"id": "b"},
		{"id": "c", "data": graphdoc.Entity{"color": "red"}},
	}, g.Nodes())
	assert.Equal(t, []graphdoc.Entity{
		{"id": "a->b", "fromId": "a", "toId": "b", "directed": true, "data": 5},
		{"id": "b<->c", "fromId": "b", "toId": "c"},
	}, g.Edges())

	assert.True(t, g.HasEdge("a", "b"))
	assert.False(t, g.HasEdge("b", "a"))
	assert.True(t, g.HasEdge("b", "c"))
	assert.True(t, g.HasEdge("c", "b"))
	assert.Equal(t, []string{"b"}, g.Neighbors("a"))
	assert.Equal(t, []string{"c"}, g.Neighbors("b"))
	assert.Nil(t, g.Neighbors("ghost"))
}

func TestGraphlibConvert(t *testing.T) {
	doc := graphdoc.Document{
		"nodes": []graphdoc.Entity{{"id": "a"}, {"id": "b", "weight": 2}},
		"edges": []graphdoc.Entity{{"id": "a<->b", "source": "a", "target": "b"}},
	}
	view, err := Graphlib{}.Convert(doc, graphdoc.GraphlibLayout())
	require.NoError(t, err)
	g := view.(*Graph)

	assert.False(t, g.Directed())
	assert.Equal(t, []graphdoc.Entity{{"v": "a"}, {"v": "b", "value": graphdoc.Entity{"weight": 2}}}, g.Nodes())
	assert.Equal(t, []graphdoc.Entity{{"v": "a", "w": "b", "name": "a<->b"}}, g.Edges())
	assert.True(t, g.HasEdge("b", "a"))
	assert.Equal(t, []string{"a"}, g.Neighbors("b"))
}

func TestGonumInterop(t *testing.T) {
	view, err := NGraph{}.Convert(ngraphDoc(), graphdoc.NGraphLayout())
	require.NoError(t, err)
	g := view.(*Graph)

	a, ok := g.NodeID("a")
	require.True(t, ok)
	c, ok := g.NodeID("c")
	require.True(t, ok)

	gg := g.Gonum()
	assert.True(t, topo.PathExistsIn(gg, gg.Node(a), gg.Node(c)))
	assert.False(t, topo.PathExistsIn(gg, gg.Node(c), gg.Node(a)))
}

func TestConvertErrors(t *testing.T) {
	layout := graphdoc.NGraphLayout()

	_, err := NGraph{}.Convert(nil, layout)
	assert.Error(t, err)

	_, err = NGraph{}.Convert(graphdoc.Document{"nodes": []graphdoc.Entity{{"data": 1}}}, layout)
	assert.ErrorIs(t, err, graphdoc.ErrMissingRequiredField)

	_, err = NGraph{}.Convert(graphdoc.Document{
		"nodes": []graphdoc.Entity{{"id": "a"}},
		"links": []graphdoc.Entity{{"id": "e", "fromId": "a"}},
	}, layout)
	assert.ErrorIs(t, err, graphdoc.ErrMissingRequiredField)
}

func TestForLayout(t *testing.T) {
	b, ok := ForLayout(graphdoc.LayoutGraphlib)
	require.True(t, ok)
	assert.Equal(t, graphdoc.LayoutGraphlib, b.Name())

	b, ok = ForLayout(graphdoc.LayoutNGraph)
	require.True(t, ok)
	assert.Equal(t, graphdoc.LayoutNGraph, b.Name())

	_, ok = ForLayout("cytoscape")
	assert.False(t, ok)
}
