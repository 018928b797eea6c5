package graphdoc

import (
	"fmt"
	"reflect"
)

// EntityKind tells nodes and edges apart.
type EntityKind int

const (
	KindNode EntityKind = iota + 1
	KindEdge
)

func (k EntityKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// ChangeKind is the outcome of a mutating call.
type ChangeKind int

const (
	Added ChangeKind = iota + 1
	Updated
	Replaced
	Removed
)

func (c ChangeKind) String() string {
	switch c {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Replaced:
		return "replaced"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Affected describes the entity touched by one mutation. Entity is the live
// entry for added, updated and replaced entities and a snapshot for removed
// ones. Previous holds a snapshot taken before an update or replace.
type Affected struct {
	Kind     EntityKind `json:"kind"`
	Change   ChangeKind `json:"change"`
	Entity   Entity     `json:"entity"`
	Previous Entity     `json:"previous,omitempty"`
}

// Slot holds the last outcome for one entity kind. Affected aliases whichever
// of the other fields was written last.
type Slot struct {
	Added    Entity
	Updated  Entity
	Replaced Entity
	Removed  Entity
	Affected Entity
}

// LastAffected keeps one slot per entity kind.
type LastAffected struct {
	Node Slot
	Edge Slot
}

func (l *LastAffected) record(a Affected) {
	slot := &l.Node
	if a.Kind == KindEdge {
		slot = &l.Edge
	}
	switch a.Change {
	case Added:
		slot.Added = a.Entity
	case Updated:
		slot.Updated = a.Entity
	case Replaced:
		slot.Replaced = a.Entity
	case Removed:
		slot.Removed = a.Entity
	}
	slot.Affected = a.Entity
}

// DuplicatePolicy decides what happens when an added id already exists.
type DuplicatePolicy int

const (
	// DuplicateWarn logs a warning and adds the entity anyway.
	DuplicateWarn DuplicatePolicy = iota
	// DuplicateReject fails the operation with ErrDuplicateID.
	DuplicateReject
)

// MutatorOptions configures a Mutator. A zero Layout selects the default.
type MutatorOptions struct {
	Layout     Layout
	Logger     Logger
	Duplicates DuplicatePolicy
}

// base holds what the node and edge mutators share.
type base struct {
	layout   Layout
	notifier *Notifier
	policy   DuplicatePolicy
}

func (b *base) keys() Keys { return b.layout.Keys }

func (b *base) nodesOf(doc Document) []Entity { return doc.Collection(b.keys().Nodes) }

func (b *base) edgesOf(doc Document) []Entity { return doc.Collection(b.keys().Edges) }

func (b *base) nodeID(n Entity) string { return n.String(b.keys().Node.ID) }

func (b *base) edgeID(e Entity) string { return e.String(b.keys().Edge.ID) }

func (b *base) findNodeIndex(doc Document, id string) int {
	for i, n := range b.nodesOf(doc) {
		if b.nodeID(n) == id {
			return i
		}
	}
	return -1
}

func (b *base) findEdgeIndex(doc Document, id string) int {
	for i, e := range b.edgesOf(doc) {
		if b.edgeID(e) == id {
			return i
		}
	}
	return -1
}

// writable fails when the collection under key cannot be rewritten without
// dropping items.
func (b *base) writable(doc Document, op, key string) error {
	if doc.wellFormed(key) {
		return nil
	}
	return b.notifier.Fail(ErrMalformedCollection, fmt.Sprintf("%s: collection %q holds non-object items", op, key), "collection", key)
}

func (b *base) requireNode(doc Document, id, msg string) error {
	if b.findNodeIndex(doc, id) < 0 {
		return b.notifier.Fail(ErrReferenceNotFound, msg, "id", id)
	}
	return nil
}

// checkDuplicate applies the duplicate policy to an id about to be added.
func (b *base) checkDuplicate(kind EntityKind, exists bool, id string) error {
	if !exists {
		return nil
	}
	msg := fmt.Sprintf("%s id is duplicate", kind)
	if b.policy == DuplicateReject {
		return b.notifier.Fail(ErrDuplicateID, msg, "id", id, "type", kind.String())
	}
	b.notifier.Warn(msg, "id", id, "type", kind.String())
	return nil
}

// withoutKey copies value dropping key.
func withoutKey(value Entity, key string) Entity {
	out := make(Entity, len(value))
	for k, v := range value {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}

// Mutator is the graph document mutator. It shares one layout and one
// LastAffected record between its node and edge mutators.
type Mutator struct {
	*NodeMutator
	*EdgeMutator

	base *base
	last LastAffected
}

// NewMutator builds a Mutator. A layout without keys is resolved by name
// against the built-in layouts; explicit keys are validated.
func NewMutator(opts MutatorOptions) (*Mutator, error) {
	layout := opts.Layout
	if layout.Keys.Nodes == "" && layout.Keys.Edges == "" {
		var err error
		if layout, err = ResolveLayout(layout.Name, nil); err != nil {
			return nil, err
		}
	}
	if err := layout.Keys.Validate(); err != nil {
		return nil, fmt.Errorf("layout %q: %w", layout.Name, err)
	}
	b := &base{
		layout:   layout,
		notifier: NewNotifier(opts.Logger),
		policy:   opts.Duplicates,
	}
	return &Mutator{
		NodeMutator: &NodeMutator{base: b},
		EdgeMutator: &EdgeMutator{base: b},
		base:        b,
	}, nil
}

// Layout returns the active layout.
func (m *Mutator) Layout() Layout { return m.base.layout }

// Notifier returns the notifier shared by the sub-mutators.
func (m *Mutator) Notifier() *Notifier { return m.base.notifier }

// Last returns the outcome of the most recent mutations.
func (m *Mutator) Last() LastAffected { return m.last }

// Merge shallowly overwrites the document's top-level fields with partial.
func (m *Mutator) Merge(doc, partial Document) Document {
	for k, v := range partial {
		doc[k] = v
	}
	return doc
}

// Init seeds doc with a label and empty collections.
func (m *Mutator) Init(doc Document, label string) Document {
	return m.Merge(doc, NewDocument(label, m.base.layout))
}

func (m *Mutator) track(a Affected, err error) (Affected, error) {
	if err != nil {
		return Affected{}, err
	}
	m.last.record(a)
	return a, nil
}

func (m *Mutator) AddNode(doc Document, req NodeRequest) (Affected, error) {
	return m.track(m.NodeMutator.AddNode(doc, req))
}

func (m *Mutator) UpdateNode(doc Document, req NodeRequest) (Affected, error) {
	return m.track(m.NodeMutator.UpdateNode(doc, req))
}

func (m *Mutator) ReplaceNode(doc Document, req NodeRequest) (Affected, error) {
	return m.track(m.NodeMutator.ReplaceNode(doc, req))
}

func (m *Mutator) RemoveNode(doc Document, id string) (Affected, error) {
	return m.track(m.NodeMutator.RemoveNode(doc, id))
}

func (m *Mutator) AddEdge(doc Document, req EdgeRequest) (Affected, error) {
	return m.track(m.EdgeMutator.AddEdge(doc, req))
}

func (m *Mutator) UpdateEdge(doc Document, req EdgeRequest) (Affected, error) {
	return m.track(m.EdgeMutator.UpdateEdge(doc, req))
}

func (m *Mutator) ReplaceEdge(doc Document, req EdgeRequest) (Affected, error) {
	return m.track(m.EdgeMutator.ReplaceEdge(doc, req))
}

func (m *Mutator) RemoveEdge(doc Document, req EdgeRequest) (Affected, error) {
	return m.track(m.EdgeMutator.RemoveEdge(doc, req))
}

// Apply runs action against doc.
func (m *Mutator) Apply(doc Document, a Action) (Affected, error) {
	switch a.Op {
	case OpAddNode:
		return m.AddNode(doc, a.Node)
	case OpUpdateNode:
		return m.UpdateNode(doc, a.Node)
	case OpReplaceNode:
		return m.ReplaceNode(doc, a.Node)
	case OpRemoveNode:
		return m.RemoveNode(doc, a.Node.ID)
	case OpAddEdge:
		return m.AddEdge(doc, a.Edge)
	case OpUpdateEdge:
		return m.UpdateEdge(doc, a.Edge)
	case OpReplaceEdge:
		return m.ReplaceEdge(doc, a.Edge)
	case OpRemoveEdge:
		return m.RemoveEdge(doc, a.Edge)
	}
	return Affected{}, fmt.Errorf("%w: %v", ErrUnknownAction, a.Op)
}

// DetectKind reports whether e looks like an edge or a node: an entity
// carrying any edge-only key is an edge.
func (m *Mutator) DetectKind(e Entity) EntityKind {
	k := m.base.keys()
	for _, key := range []string{k.Edge.Source, k.Edge.Target, k.Edge.Directed} {
		if key == "" {
			continue
		}
		if _, ok := e[key]; ok {
			return KindEdge
		}
	}
	if k.Edge.ID != k.Node.ID {
		if _, ok := e[k.Edge.ID]; ok {
			return KindEdge
		}
	}
	return KindNode
}

func (m *Mutator) collectionKey(kind EntityKind) (coll, id string) {
	k := m.base.keys()
	if kind == KindEdge {
		return k.Edges, k.Edge.ID
	}
	return k.Nodes, k.Node.ID
}

// GroupByID groups a collection by id, keeping document order inside groups.
func (m *Mutator) GroupByID(doc Document, kind EntityKind) map[string][]Entity {
	coll, idKey := m.collectionKey(kind)
	groups := make(map[string][]Entity)
	for _, e := range doc.Collection(coll) {
		id := e.String(idKey)
		groups[id] = append(groups[id], e)
	}
	return groups
}

// CleanStrategy picks which entries of a duplicate group survive.
type CleanStrategy func(group []Entity) []Entity

// KeepLast keeps only the last entry of a group.
func KeepLast(group []Entity) []Entity {
	if len(group) == 0 {
		return group
	}
	return group[len(group)-1:]
}

// Dedupe removes duplicate ids from a collection using strategy (KeepLast
// when nil). Entries without an id are always kept. Survivors keep their
// relative order. It returns the number of entries removed.
func (m *Mutator) Dedupe(doc Document, kind EntityKind, strategy CleanStrategy) int {
	if strategy == nil {
		strategy = KeepLast
	}
	coll, idKey := m.collectionKey(kind)
	entries := doc.Collection(coll)

	index := make(map[string][]int)
	keep := make(map[int]bool, len(entries))
	for i, e := range entries {
		id := e.String(idKey)
		if id == "" {
			keep[i] = true
			continue
		}
		index[id] = append(index[id], i)
	}

	for id, positions := range index {
		group := make([]Entity, len(positions))
		for j, p := range positions {
			group[j] = entries[p]
		}
		survivors := strategy(group)
		if len(survivors) < len(group) {
			m.base.notifier.Warn("removing duplicates", "id", id, "type", kind.String(), "count", len(group)-len(survivors))
		}
		for _, s := range survivors {
			for _, p := range positions {
				if sameEntity(entries[p], s) {
					keep[p] = true
					break
				}
			}
		}
	}

	out := make([]Entity, 0, len(keep))
	for i, e := range entries {
		if keep[i] {
			out = append(out, e)
		}
	}
	doc.SetCollection(coll, out)
	return len(entries) - len(out)
}

// sameEntity reports whether a and b are the same map.
func sameEntity(a, b Entity) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}
