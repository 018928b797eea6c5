package graphdoc

import (
	"encoding/json"
	"fmt"
)

// Op names one of the eight graph operations.
type Op int

const (
	OpAddNode Op = iota + 1
	OpUpdateNode
	OpReplaceNode
	OpRemoveNode
	OpAddEdge
	OpUpdateEdge
	OpReplaceEdge
	OpRemoveEdge
)

var opNames = map[Op]string{
	OpAddNode:     "addNode",
	OpUpdateNode:  "updateNode",
	OpReplaceNode: "replaceNode",
	OpRemoveNode:  "removeNode",
	OpAddEdge:     "addEdge",
	OpUpdateEdge:  "updateEdge",
	OpReplaceEdge: "replaceEdge",
	OpRemoveEdge:  "removeEdge",
}

func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Valid reports whether o is one of the eight operations.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// IsEdge reports whether o operates on edges.
func (o Op) IsEdge() bool { return o >= OpAddEdge && o <= OpRemoveEdge }

// ParseOp maps an operation name such as "addNode" to its Op.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

func (o Op) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(o))
	}
	return []byte(o.String()), nil
}

func (o *Op) UnmarshalText(b []byte) error {
	op, err := ParseOp(string(b))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// NodeRequest carries the id and value fields of a node operation.
type NodeRequest struct {
	ID    string `json:"id"`
	Value Entity `json:"value,omitempty"`
}

// EdgeRequest carries an edge operation. From and To are accepted as aliases
// of Source and Target.
type EdgeRequest struct {
	ID       string `json:"id,omitempty"`
	Source   string `json:"source,omitempty"`
	Target   string `json:"target,omitempty"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Directed bool   `json:"directed,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// Normalize folds the From/To aliases into Source/Target.
func (r EdgeRequest) Normalize() EdgeRequest {
	if r.Source == "" {
		r.Source = r.From
	}
	if r.Target == "" {
		r.Target = r.To
	}
	r.From, r.To = "", ""
	return r
}

// Action is one logical graph operation awaiting commit. Node is set for node
// operations and Edge for edge operations.
type Action struct {
	Op   Op          `json:"name"`
	Node NodeRequest `json:"node,omitzero"`
	Edge EdgeRequest `json:"edge,omitzero"`
}

// ID returns the target id of the action, which may be empty for edge
// operations relying on derived identity.
func (a Action) ID() string {
	if a.Op.IsEdge() {
		return a.Edge.ID
	}
	return a.Node.ID
}

// Payload returns the typed request the action carries.
func (a Action) Payload() any {
	if a.Op.IsEdge() {
		return a.Edge
	}
	return a.Node
}

// NodeArgs normalizes the accepted shapes of a node operation argument: a
// string id (with value), a NodeRequest, or a map with id and value fields.
func NodeArgs(arg any, value Entity) (NodeRequest, error) {
	switch v := arg.(type) {
	case string:
		return NodeRequest{ID: v, Value: value}, nil
	case NodeRequest:
		if v.Value == nil {
			v.Value = value
		}
		return v, nil
	case *NodeRequest:
		if v == nil {
			break
		}
		return NodeArgs(*v, value)
	case Entity:
		return NodeArgs(map[string]any(v), value)
	case map[string]any:
		var req NodeRequest
		if err := remarshal(v, &req); err != nil {
			return NodeRequest{}, fmt.Errorf("%w: %v", ErrInvalidArgumentShape, err)
		}
		if req.Value == nil {
			req.Value = value
		}
		return req, nil
	case nil:
		if value != nil {
			return NodeRequest{Value: value}, nil
		}
	}
	return NodeRequest{}, fmt.Errorf("%w: node argument of type %T", ErrInvalidArgumentShape, arg)
}

// EdgeArgs normalizes the accepted shapes of an edge operation argument: a
// string id, an EdgeRequest, or a map of edge fields.
func EdgeArgs(arg any) (EdgeRequest, error) {
	switch v := arg.(type) {
	case string:
		return EdgeRequest{ID: v}, nil
	case EdgeRequest:
		return v.Normalize(), nil
	case *EdgeRequest:
		if v == nil {
			break
		}
		return v.Normalize(), nil
	case Entity:
		return EdgeArgs(map[string]any(v))
	case map[string]any:
		var req EdgeRequest
		if err := remarshal(v, &req); err != nil {
			return EdgeRequest{}, fmt.Errorf("%w: %v", ErrInvalidArgumentShape, err)
		}
		return req.Normalize(), nil
	}
	return EdgeRequest{}, fmt.Errorf("%w: edge argument of type %T", ErrInvalidArgumentShape, arg)
}

// remarshal decodes a loosely typed map into a request struct.
func remarshal(src map[string]any, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
