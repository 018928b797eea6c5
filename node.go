package graphdoc

import "fmt"

// NodeMutator owns the node operations on the nodes collection.
type NodeMutator struct {
	base *base
}

// FindNode returns the first node with id.
func (m *NodeMutator) FindNode(doc Document, id string) (Entity, bool) {
	i := m.base.findNodeIndex(doc, id)
	if i < 0 {
		return nil, false
	}
	return m.base.nodesOf(doc)[i], true
}

// HasNode reports whether a node with id exists.
func (m *NodeMutator) HasNode(doc Document, id string) bool {
	return m.base.findNodeIndex(doc, id) >= 0
}

func (m *NodeMutator) locate(doc Document, op, id string) (int, error) {
	if err := m.base.writable(doc, op, m.base.keys().Nodes); err != nil {
		return -1, err
	}
	if id == "" {
		return -1, m.base.notifier.Fail(ErrMissingRequiredField, op+": missing id of node")
	}
	i := m.base.findNodeIndex(doc, id)
	if i < 0 {
		return -1, m.base.notifier.Fail(ErrReferenceNotFound, fmt.Sprintf("%s: node not found in graph: %s", op, id), "id", id)
	}
	return i, nil
}

// AddNode appends a node built from req.Value and req.ID. An existing id is
// handled by the duplicate policy.
func (m *NodeMutator) AddNode(doc Document, req NodeRequest) (Affected, error) {
	b := m.base
	if err := b.writable(doc, "addNode", b.keys().Nodes); err != nil {
		return Affected{}, err
	}
	if req.ID == "" {
		return Affected{}, b.notifier.Fail(ErrMissingRequiredField, "addNode: missing id of node")
	}
	if err := b.checkDuplicate(KindNode, m.HasNode(doc, req.ID), req.ID); err != nil {
		return Affected{}, err
	}

	node := withoutKey(req.Value, b.keys().Node.ID)
	node[b.keys().Node.ID] = req.ID
	doc.SetCollection(b.keys().Nodes, append(b.nodesOf(doc), node))

	return Affected{Kind: KindNode, Change: Added, Entity: node}, nil
}

// UpdateNode merges req.Value into the node in place. The id is never
// overwritten.
func (m *NodeMutator) UpdateNode(doc Document, req NodeRequest) (Affected, error) {
	b := m.base
	i, err := m.locate(doc, "updateNode", req.ID)
	if err != nil {
		return Affected{}, err
	}
	node := b.nodesOf(doc)[i]
	prev := node.Clone()
	for k, v := range withoutKey(req.Value, b.keys().Node.ID) {
		node[k] = v
	}
	return Affected{Kind: KindNode, Change: Updated, Entity: node, Previous: prev}, nil
}

// ReplaceNode swaps the whole entry for req.Value, keeping the original id.
func (m *NodeMutator) ReplaceNode(doc Document, req NodeRequest) (Affected, error) {
	b := m.base
	i, err := m.locate(doc, "replaceNode", req.ID)
	if err != nil {
		return Affected{}, err
	}
	nodes := b.nodesOf(doc)
	prev := nodes[i].Clone()

	node := withoutKey(req.Value, b.keys().Node.ID)
	node[b.keys().Node.ID] = req.ID
	nodes[i] = node

	return Affected{Kind: KindNode, Change: Replaced, Entity: node, Previous: prev}, nil
}

// RemoveNode deletes the node and returns a snapshot of it. Incident edges are
// left in place and reported as a warning.
func (m *NodeMutator) RemoveNode(doc Document, id string) (Affected, error) {
	b := m.base
	i, err := m.locate(doc, "removeNode", id)
	if err != nil {
		return Affected{}, err
	}
	nodes := b.nodesOf(doc)
	snapshot := nodes[i].Clone()

	out := make([]Entity, 0, len(nodes)-1)
	out = append(out, nodes[:i]...)
	out = append(out, nodes[i+1:]...)
	doc.SetCollection(b.keys().Nodes, out)

	if n := m.incidentEdges(doc, id); n > 0 {
		b.notifier.Warn("removed node still has incident edges", "id", id, "edges", n)
	}
	return Affected{Kind: KindNode, Change: Removed, Entity: snapshot}, nil
}

func (m *NodeMutator) incidentEdges(doc Document, id string) int {
	k := m.base.keys().Edge
	n := 0
	for _, e := range m.base.edgesOf(doc) {
		if e.String(k.Source) == id || e.String(k.Target) == id {
			n++
		}
	}
	return n
}
