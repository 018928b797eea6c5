package graphdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMutator(t *testing.T, layout Layout, policy DuplicatePolicy) (*Mutator, Document, *RecordingLogger) {
	t.Helper()
	rec := &RecordingLogger{}
	m, err := NewMutator(MutatorOptions{Layout: layout, Logger: rec, Duplicates: policy})
	require.NoError(t, err)
	return m, m.Init(Document{}, "test"), rec
}

func TestNodeLifecycle(t *testing.T) {
	m, doc, _ := newTestMutator(t, NGraphLayout(), DuplicateWarn)

	a, err := m.AddNode(doc, NodeRequest{ID: "x", Value: Entity{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, Added, a.Change)
	assert.Equal(t, Entity{"id": "x", "a": 1}, a.Entity)

	a, err = m.UpdateNode(doc, NodeRequest{ID: "x", Value: Entity{"b": 2}})
	require.NoError(t, err)
	assert.Equal(t, Entity{"id": "x", "a": 1, "b": 2}, a.Entity)
	assert.Equal(t, Entity{"id": "x", "a": 1}, a.Previous)

	a, err = m.ReplaceNode(doc, NodeRequest{ID: "x", Value: Entity{"c": 3}})
	require.NoError(t, err)
	assert.Equal(t, Entity{"id": "x", "c": 3}, a.Entity)
	assert.Equal(t, []Entity{{"id": "x", "c": 3}}, doc.Collection("nodes"))

	before, ok := m.FindNode(doc, "x")
	require.True(t, ok)
	snapshot := before.Clone()

	a, err = m.RemoveNode(doc, "x")
	require.NoError(t, err)
	assert.Equal(t, Removed, a.Change)
	assert.Equal(t, snapshot, a.Entity)
	assert.Empty(t, doc.Collection("nodes"))
	assert.False(t, m.HasNode(doc, "x"))
}

func TestNodeIDIsNeverOverwritten(t *testing.T) {
	m, doc, _ := newTestMutator(t, NGraphLayout(), DuplicateWarn)
	_, err := m.AddNode(doc, NodeRequest{ID: "x"})
	require.NoError(t, err)

	value := Entity{"id": "y", "b": 2}
	a, err := m.UpdateNode(doc, NodeRequest{ID: "x", Value: value})
	require.NoError(t, err)
	assert.Equal(t, "x", a.Entity["id"])
	assert.Equal(t, "y", value["id"], "caller's value is not modified")

	a, err = m.ReplaceNode(doc, NodeRequest{ID: "x", Value: Entity{"id": "z"}})
	require.NoError(t, err)
	assert.Equal(t, Entity{"id": "x"}, a.Entity)
}

func TestAddNodeWithIDInValue(t *testing.T) {
	m, doc, _ := newTestMutator(t, GraphlibLayout(), DuplicateWarn)
	a, err := m.AddNode(doc, NodeRequest{ID: "x", Value: Entity{"id": "other", "k": "v"}})
	require.NoError(t, err)
	assert.Equal(t, Entity{"id": "x", "k": "v"}, a.Entity)
}

func TestNodeErrors(t *testing.T) {
	m, doc, rec := newTestMutator(t, NGraphLayout(), DuplicateWarn)
	_, err := m.AddNode(doc, NodeRequest{ID: "x", Value: Entity{"a": 1}})
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"add without id", func() error { _, err := m.AddNode(doc, NodeRequest{}); return err }, ErrMissingRequiredField},
		{"update unknown", func() error {
			_, err := m.UpdateNode(doc, NodeRequest{ID: "nope", Value: Entity{"a": 2}})
			return err
		}, ErrReferenceNotFound},
		{"replace unknown", func() error { _, err := m.ReplaceNode(doc, NodeRequest{ID: "nope"}); return err }, ErrReferenceNotFound},
		{"remove unknown", func() error { _, err := m.RemoveNode(doc, "nope"); return err }, ErrReferenceNotFound},
		{"remove without id", func() error { _, err := m.RemoveNode(doc, ""); return err }, ErrMissingRequiredField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
			assert.Equal(t, []Entity{{"id": "x", "a": 1}}, doc.Collection("nodes"), "document unchanged")
		})
	}
	assert.Len(t, rec.Errors, len(tests))
}

func TestDuplicateNodePolicy(t *testing.T) {
	t.Run("warn", func(t *testing.T) {
		m, doc, rec := newTestMutator(t, NGraphLayout(), DuplicateWarn)
		_, err := m.AddNode(doc, NodeRequest{ID: "x"})
		require.NoError(t, err)
		_, err = m.AddNode(doc, NodeRequest{ID: "x", Value: Entity{"second": true}})
		require.NoError(t, err)

		assert.Len(t, doc.Collection("nodes"), 2)
		assert.Equal(t, []string{"WARNING: node id is duplicate"}, rec.Warnings)
	})

	t.Run("reject", func(t *testing.T) {
		m, doc, _ := newTestMutator(t, NGraphLayout(), DuplicateReject)
		_, err := m.AddNode(doc, NodeRequest{ID: "x"})
		require.NoError(t, err)
		_, err = m.AddNode(doc, NodeRequest{ID: "x"})
		require.ErrorIs(t, err, ErrDuplicateID)

		assert.Len(t, doc.Collection("nodes"), 1)
	})
}

func TestRemoveNodeWarnsAboutIncidentEdges(t *testing.T) {
	m, doc, rec := newTestMutator(t, NGraphLayout(), DuplicateWarn)
	for _, id := range []string{"a", "b"} {
		_, err := m.AddNode(doc, NodeRequest{ID: id})
		require.NoError(t, err)
	}
	_, err := m.AddEdge(doc, EdgeRequest{Source: "a", Target: "b"})
	require.NoError(t, err)

	_, err = m.RemoveNode(doc, "b")
	require.NoError(t, err)

	assert.Len(t, doc.Collection("links"), 1, "edges are not cascaded")
	assert.Equal(t, []string{"WARNING: removed node still has incident edges"}, rec.Warnings)
}

func TestRemoveNodeSnapshotIsDetached(t *testing.T) {
	m, doc, _ := newTestMutator(t, NGraphLayout(), DuplicateWarn)
	_, err := m.AddNode(doc, NodeRequest{ID: "x", Value: Entity{"tags": []any{"a"}}})
	require.NoError(t, err)
	node, _ := m.FindNode(doc, "x")

	a, err := m.RemoveNode(doc, "x")
	require.NoError(t, err)

	node["tags"].([]any)[0] = "changed"
	assert.Equal(t, []any{"a"}, a.Entity["tags"])
}
