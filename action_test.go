package graphdoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOp(t *testing.T) {
	for op, name := range opNames {
		got, err := ParseOp(name)
		require.NoError(t, err)
		assert.Equal(t, op, got)
		assert.Equal(t, name, op.String())
	}

	_, err := ParseOp("addVertex")
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.False(t, Op(0).Valid())
	assert.Equal(t, "Op(0)", Op(0).String())
}

func TestOpIsEdge(t *testing.T) {
	assert.False(t, OpRemoveNode.IsEdge())
	assert.True(t, OpAddEdge.IsEdge())
	assert.True(t, OpRemoveEdge.IsEdge())
}

func TestActionJSON(t *testing.T) {
	a := Action{Op: OpAddEdge, Edge: EdgeRequest{Source: "a", Target: "b"}}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"addEdge","edge":{"source":"a","target":"b"}}`, string(b))

	var back Action
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, a, back)

	assert.Error(t, json.Unmarshal([]byte(`{"name":"explode"}`), &back))
}

func TestActionID(t *testing.T) {
	assert.Equal(t, "n", Action{Op: OpUpdateNode, Node: NodeRequest{ID: "n"}}.ID())
	assert.Equal(t, "e", Action{Op: OpRemoveEdge, Edge: EdgeRequest{ID: "e"}}.ID())
	assert.IsType(t, EdgeRequest{}, Action{Op: OpAddEdge}.Payload())
	assert.IsType(t, NodeRequest{}, Action{Op: OpAddNode}.Payload())
}

func TestNodeArgs(t *testing.T) {
	value := Entity{"k": "v"}
	tests := []struct {
		name string
		arg  any
		want NodeRequest
	}{
		{"string id", "x", NodeRequest{ID: "x", Value: value}},
		{"request", NodeRequest{ID: "x"}, NodeRequest{ID: "x", Value: value}},
		{"request pointer", &NodeRequest{ID: "x", Value: Entity{"own": true}}, NodeRequest{ID: "x", Value: Entity{"own": true}}},
		{"map", map[string]any{"id": "x"}, NodeRequest{ID: "x", Value: value}},
		{"entity", Entity{"id": "x", "value": map[string]any{"own": true}}, NodeRequest{ID: "x", Value: Entity{"own": true}}},
		{"nil with value", nil, NodeRequest{Value: value}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NodeArgs(tt.arg, value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []any{42, nil, []string{"x"}, map[string]any{"id": 7}} {
		_, err := NodeArgs(bad, nil)
		assert.ErrorIs(t, err, ErrInvalidArgumentShape, "%#v", bad)
	}
}

func TestEdgeArgs(t *testing.T) {
	tests := []struct {
		name string
		arg  any
		want EdgeRequest
	}{
		{"string id", "a<->b", EdgeRequest{ID: "a<->b"}},
		{"request", EdgeRequest{From: "a", To: "b"}, EdgeRequest{Source: "a", Target: "b"}},
		{"request pointer", &EdgeRequest{Source: "a", Target: "b", Directed: true}, EdgeRequest{Source: "a", Target: "b", Directed: true}},
		{"map", map[string]any{"from": "a", "to": "b", "data": "w"}, EdgeRequest{Source: "a", Target: "b", Data: "w"}},
		{"source wins over alias", Entity{"source": "a", "from": "z", "target": "b"}, EdgeRequest{Source: "a", Target: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EdgeArgs(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []any{42, nil, (*EdgeRequest)(nil), map[string]any{"directed": "yes"}} {
		_, err := EdgeArgs(bad)
		assert.ErrorIs(t, err, ErrInvalidArgumentShape, "%#v", bad)
	}
}
