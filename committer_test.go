package graphdoc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/graphdoc"
	"github.com/meikuraledutech/graphdoc/memory"
)

func seededStore(t *testing.T, layout graphdoc.Layout, nodes ...string) (*memory.Store, *graphdoc.Mutator) {
	t.Helper()
	ctx := context.Background()
	store := memory.New(memory.Options{Immutable: true})
	m, err := graphdoc.NewMutator(graphdoc.MutatorOptions{Layout: layout})
	require.NoError(t, err)
	doc := m.Init(graphdoc.Document{}, "test")
	for _, id := range nodes {
		_, err := m.AddNode(doc, graphdoc.NodeRequest{ID: id})
		require.NoError(t, err)
	}
	_, err = store.CreateDocument(ctx, "doc", doc)
	require.NoError(t, err)
	return store, m
}

func newCommitter(t *testing.T, store graphdoc.Store, action graphdoc.Action, opts graphdoc.CommitterOptions) *graphdoc.Committer {
	t.Helper()
	c, err := graphdoc.NewCommitter(store, "doc", action, opts)
	require.NoError(t, err)
	return c
}

func TestCommitterAutoMessages(t *testing.T) {
	tests := []struct {
		name   string
		layout graphdoc.Layout
		action graphdoc.Action
		want   string
	}{
		{"add node", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpAddNode, Node: graphdoc.NodeRequest{ID: "x"}}, "added node: x"},
		{"remove node", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpRemoveNode, Node: graphdoc.NodeRequest{ID: "x"}}, "removed node: x"},
		{"directed edge", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpAddEdge, Edge: graphdoc.EdgeRequest{Source: "a", Target: "b", Directed: true}},
			"added edge: a->b points a => b"},
		{"undirected edge", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpAddEdge, Edge: graphdoc.EdgeRequest{From: "a", To: "b"}},
			"added edge: a<->b points a <=> b"},
		{"direction ignored by layout", graphdoc.GraphlibLayout(),
			graphdoc.Action{Op: graphdoc.OpAddEdge, Edge: graphdoc.EdgeRequest{Source: "a", Target: "b", Directed: true}},
			"added edge: a<->b points a <=> b"},
		{"explicit id", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpReplaceEdge, Edge: graphdoc.EdgeRequest{ID: "e1", Source: "a", Target: "b"}},
			"replaced edge: e1 points a <=> b"},
		{"id only", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpRemoveEdge, Edge: graphdoc.EdgeRequest{ID: "e1"}}, "removed edge: e1"},
		{"partial update", graphdoc.NGraphLayout(),
			graphdoc.Action{Op: graphdoc.OpUpdateEdge, Edge: graphdoc.EdgeRequest{ID: "e1", Target: "c"}}, "updated edge: e1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCommitter(t, nil, tt.action, graphdoc.CommitterOptions{
				MutatorOptions: graphdoc.MutatorOptions{Layout: tt.layout},
			})
			_, err := c.Callback()
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.AutoMessage())
		})
	}
}

func TestCommitterRejectsInvalidLayout(t *testing.T) {
	_, err := graphdoc.NewCommitter(nil, "doc",
		graphdoc.Action{Op: graphdoc.OpAddNode, Node: graphdoc.NodeRequest{ID: "a"}},
		graphdoc.CommitterOptions{MutatorOptions: graphdoc.MutatorOptions{Layout: graphdoc.Layout{Name: "nope"}}})
	assert.ErrorIs(t, err, graphdoc.ErrInvalidLayout)
}

func TestCommitterUnknownAction(t *testing.T) {
	c := newCommitter(t, nil, graphdoc.Action{}, graphdoc.CommitterOptions{})
	_, err := c.Callback()
	assert.ErrorIs(t, err, graphdoc.ErrUnknownAction)
}

func TestCommitterCommitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, m := seededStore(t, graphdoc.NGraphLayout())
	var records []graphdoc.CommitRecord

	c := newCommitter(t, store,
		graphdoc.Action{Op: graphdoc.OpAddNode, Node: graphdoc.NodeRequest{ID: "x", Value: graphdoc.Entity{"data": 1}}},
		graphdoc.CommitterOptions{Mutator: m, OnCommit: func(r graphdoc.CommitRecord) { records = append(records, r) }})

	first, err := c.Commit(ctx, "")
	require.NoError(t, err)
	assert.True(t, c.Committed())
	second, err := c.Commit(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	history, err := store.History(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "added node: x", history[0].Message)

	require.Len(t, records, 1)
	assert.Equal(t, graphdoc.OpAddNode, records[0].Op)
	assert.Equal(t, "added node: x", records[0].Message)
	assert.Equal(t, graphdoc.Entity{"id": "x", "data": 1}, records[0].Affected.Entity)

	doc, err := store.GetDocument(ctx, "doc")
	require.NoError(t, err)
	assert.Len(t, doc.Collection("nodes"), 1)
}

func TestCommitterRequireMessage(t *testing.T) {
	ctx := context.Background()
	store, _ := seededStore(t, graphdoc.NGraphLayout())
	rec := &graphdoc.RecordingLogger{}

	c := newCommitter(t, store,
		graphdoc.Action{Op: graphdoc.OpAddNode, Node: graphdoc.NodeRequest{ID: "x"}},
		graphdoc.CommitterOptions{RequireMessage: true, MutatorOptions: graphdoc.MutatorOptions{Logger: rec}})

	_, err := c.Commit(ctx, "")
	require.ErrorIs(t, err, graphdoc.ErrMissingCommitMessage)
	assert.False(t, c.Committed())
	assert.Len(t, rec.Errors, 1)

	_, err = c.Commit(ctx, "first node")
	require.NoError(t, err)
	history, err := store.History(ctx, "doc")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "first node", history[0].Message)
}

func TestCommitterFailedChangeLeavesDocument(t *testing.T) {
	ctx := context.Background()
	store, m := seededStore(t, graphdoc.NGraphLayout(), "a")

	c := newCommitter(t, store,
		graphdoc.Action{Op: graphdoc.OpAddEdge, Edge: graphdoc.EdgeRequest{Source: "a", Target: "b"}},
		graphdoc.CommitterOptions{Mutator: m})

	_, err := c.Commit(ctx, "")
	require.ErrorIs(t, err, graphdoc.ErrReferenceNotFound)
	assert.False(t, c.Committed())

	doc, err := store.GetDocument(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, doc.Collection("links"))
	history, err := store.History(ctx, "doc")
	require.NoError(t, err)
	assert.Empty(t, history)
}
