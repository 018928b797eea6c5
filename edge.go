package graphdoc

import "fmt"

// Separators used by derived edge identities.
const (
	UndirectedSeparator = "<->"
	DirectedSeparator   = "->"
)

// EdgeID derives the canonical identity of an edge from its endpoints and
// direction.
func EdgeID(source, target string, directed bool) string {
	if directed {
		return source + DirectedSeparator + target
	}
	return source + UndirectedSeparator + target
}

// EdgeMutator owns edge identity, referential integrity and the edge
// operations on the edges collection.
type EdgeMutator struct {
	base *base
}

// FindEdge returns the first edge with id.
func (m *EdgeMutator) FindEdge(doc Document, id string) (Entity, bool) {
	i := m.base.findEdgeIndex(doc, id)
	if i < 0 {
		return nil, false
	}
	return m.base.edgesOf(doc)[i], true
}

// FindEdgeBetween returns the first edge whose source and target match exactly.
func (m *EdgeMutator) FindEdgeBetween(doc Document, source, target string) (Entity, bool) {
	i := m.findEdgeIndexBetween(doc, source, target)
	if i < 0 {
		return nil, false
	}
	return m.base.edgesOf(doc)[i], true
}

func (m *EdgeMutator) findEdgeIndexBetween(doc Document, source, target string) int {
	k := m.base.keys().Edge
	for i, e := range m.base.edgesOf(doc) {
		if e.String(k.Source) == source && e.String(k.Target) == target {
			return i
		}
	}
	return -1
}

// DeriveID recomputes the identity of a stored edge from its current fields.
func (m *EdgeMutator) DeriveID(edge Entity) string {
	k := m.base.keys().Edge
	return EdgeID(edge.String(k.Source), edge.String(k.Target), edge.Bool(k.Directed))
}

// directed returns the direction an edge may carry under the active layout.
func (m *EdgeMutator) directed(op string, req EdgeRequest) bool {
	if !req.Directed {
		return false
	}
	if !m.base.layout.SupportsDirected() {
		m.base.notifier.Log(op+": layout does not support directed edges, flag ignored", "layout", m.base.layout.Name)
		return false
	}
	return true
}

// build creates a fresh edge entity, writing directed and data only when the
// layout supports them.
func (m *EdgeMutator) build(op, id string, req EdgeRequest, directed bool) Entity {
	b := m.base
	k := b.keys().Edge
	edge := Entity{
		k.ID:     id,
		k.Source: req.Source,
		k.Target: req.Target,
	}
	if b.layout.SupportsDirected() {
		edge[k.Directed] = directed
	}
	if req.Data != nil {
		if b.layout.SupportsEdgeData() {
			edge[k.Data] = req.Data
		} else {
			b.notifier.Log(op+": layout does not support edge data, data ignored", "layout", b.layout.Name, "id", id)
		}
	}
	return edge
}

func (m *EdgeMutator) requireEndpoints(doc Document, op string, req EdgeRequest) error {
	if req.Source != "" {
		if err := m.base.requireNode(doc, req.Source, fmt.Sprintf("%s: invalid source node: %s", op, req.Source)); err != nil {
			return err
		}
	}
	if req.Target != "" {
		if err := m.base.requireNode(doc, req.Target, fmt.Sprintf("%s: invalid target node: %s", op, req.Target)); err != nil {
			return err
		}
	}
	return nil
}

func (m *EdgeMutator) requireBothEndpoints(op string, req EdgeRequest) error {
	if req.Source == "" {
		return m.base.notifier.Fail(ErrMissingRequiredField, op+": missing source of edge", "id", req.ID)
	}
	if req.Target == "" {
		return m.base.notifier.Fail(ErrMissingRequiredField, op+": missing target of edge", "id", req.ID)
	}
	return nil
}

func (m *EdgeMutator) locateEdge(doc Document, op, id string) (int, error) {
	if err := m.base.writable(doc, op, m.base.keys().Edges); err != nil {
		return -1, err
	}
	if id == "" {
		return -1, m.base.notifier.Fail(ErrMissingRequiredField, op+": missing id of edge")
	}
	i := m.base.findEdgeIndex(doc, id)
	if i < 0 {
		return -1, m.base.notifier.Fail(ErrReferenceNotFound, fmt.Sprintf("%s: edge not found in graph: %s", op, id), "id", id)
	}
	return i, nil
}

// AddEdge appends an edge. A missing id is derived from the endpoints; both
// endpoints must resolve to existing nodes.
func (m *EdgeMutator) AddEdge(doc Document, req EdgeRequest) (Affected, error) {
	const op = "addEdge"
	b := m.base
	req = req.Normalize()
	if err := b.writable(doc, op, b.keys().Edges); err != nil {
		return Affected{}, err
	}
	if err := m.requireBothEndpoints(op, req); err != nil {
		return Affected{}, err
	}
	directed := m.directed(op, req)
	id := req.ID
	if id == "" {
		id = EdgeID(req.Source, req.Target, directed)
	}
	if err := m.requireEndpoints(doc, op, req); err != nil {
		return Affected{}, err
	}
	if err := b.checkDuplicate(KindEdge, b.findEdgeIndex(doc, id) >= 0, id); err != nil {
		return Affected{}, err
	}

	edge := m.build(op, id, req, directed)
	doc.SetCollection(b.keys().Edges, append(b.edgesOf(doc), edge))
	return Affected{Kind: KindEdge, Change: Added, Entity: edge}, nil
}

// UpdateEdge moves one or both endpoints of an existing edge. When the stored
// id was the derived identity it is recomputed from the new endpoints.
func (m *EdgeMutator) UpdateEdge(doc Document, req EdgeRequest) (Affected, error) {
	const op = "updateEdge"
	b := m.base
	req = req.Normalize()
	if req.ID == "" {
		return Affected{}, b.notifier.Fail(ErrMissingRequiredField, op+": missing id of edge to update")
	}
	if req.Source == "" && req.Target == "" {
		return Affected{}, b.notifier.Fail(ErrMissingRequiredField,
			fmt.Sprintf("%s: missing source or target of update to make to edge %s", op, req.ID), "id", req.ID)
	}
	i, err := m.locateEdge(doc, op, req.ID)
	if err != nil {
		return Affected{}, err
	}
	if err := m.requireEndpoints(doc, op, req); err != nil {
		return Affected{}, err
	}

	k := b.keys().Edge
	edge := b.edgesOf(doc)[i]
	source, target := edge.String(k.Source), edge.String(k.Target)
	if req.Source != "" {
		source = req.Source
	}
	if req.Target != "" {
		target = req.Target
	}

	id := req.ID
	if m.DeriveID(edge) == id {
		id = EdgeID(source, target, edge.Bool(k.Directed))
		if id != req.ID {
			if err := b.checkDuplicate(KindEdge, b.findEdgeIndex(doc, id) >= 0, id); err != nil {
				return Affected{}, err
			}
		}
	}

	prev := edge.Clone()
	edge[k.Source] = source
	edge[k.Target] = target
	edge[k.ID] = id
	return Affected{Kind: KindEdge, Change: Updated, Entity: edge, Previous: prev}, nil
}

// ReplaceEdge rewrites endpoints, direction and data of an existing edge while
// keeping its id.
func (m *EdgeMutator) ReplaceEdge(doc Document, req EdgeRequest) (Affected, error) {
	const op = "replaceEdge"
	b := m.base
	req = req.Normalize()
	i, err := m.locateEdge(doc, op, req.ID)
	if err != nil {
		return Affected{}, err
	}
	if err := m.requireBothEndpoints(op, req); err != nil {
		return Affected{}, err
	}
	if err := m.requireEndpoints(doc, op, req); err != nil {
		return Affected{}, err
	}

	edges := b.edgesOf(doc)
	prev := edges[i].Clone()
	edge := m.build(op, req.ID, req, m.directed(op, req))
	edges[i] = edge
	return Affected{Kind: KindEdge, Change: Replaced, Entity: edge, Previous: prev}, nil
}

// RemoveEdge deletes the edge identified by id or, without an id, by its exact
// source and target. It returns a snapshot of the removed edge.
func (m *EdgeMutator) RemoveEdge(doc Document, req EdgeRequest) (Affected, error) {
	const op = "removeEdge"
	b := m.base
	req = req.Normalize()
	if err := b.writable(doc, op, b.keys().Edges); err != nil {
		return Affected{}, err
	}
	if err := m.requireEndpoints(doc, op, req); err != nil {
		return Affected{}, err
	}
	if req.ID == "" && (req.Source == "" || req.Target == "") {
		return Affected{}, b.notifier.Fail(ErrMissingRequiredField, op+": invalid arguments, need id or source and target",
			"source", req.Source, "target", req.Target)
	}

	var i int
	if req.ID != "" {
		i = b.findEdgeIndex(doc, req.ID)
	} else {
		i = m.findEdgeIndexBetween(doc, req.Source, req.Target)
	}
	if i < 0 {
		return Affected{}, b.notifier.Fail(ErrReferenceNotFound, op+": edge not found in graph",
			"id", req.ID, "source", req.Source, "target", req.Target)
	}

	edges := b.edgesOf(doc)
	snapshot := edges[i].Clone()
	out := make([]Entity, 0, len(edges)-1)
	out = append(out, edges[:i]...)
	out = append(out, edges[i+1:]...)
	doc.SetCollection(b.keys().Edges, out)
	return Affected{Kind: KindEdge, Change: Removed, Entity: snapshot}, nil
}
