package graphdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Options configures a Graph.
type Options struct {
	// DocID names the backing document; generated when empty.
	DocID string
	Label string

	// Layout selects a registered layout; Keys, when set, wins over it.
	Layout   string
	Keys     *Keys
	Registry *Registry

	// AutoID fills a missing node id on addNode with IDGenerator.
	AutoID      bool
	IDGenerator func() string

	Logger         Logger
	Duplicates     DuplicatePolicy
	RequireMessage bool
	Backend        Backend
	OnCommit       func(CommitRecord)
}

// Graph is the orchestration facade. It allows at most one uncommitted
// action at a time and commits each action as one change of the backing
// document.
type Graph struct {
	store   Store
	docID   string
	opts    Options
	mutator *Mutator

	pending *Committer
	actions []Action
	history []CommitRecord
}

func newGraph(store Store, opts Options) (*Graph, error) {
	reg := opts.Registry
	if reg == nil {
		reg = defaultRegistry
	}
	layout, err := reg.Resolve(opts.Layout, opts.Keys)
	if err != nil {
		return nil, err
	}
	if opts.IDGenerator == nil {
		opts.IDGenerator = uuid.NewString
	}
	m, err := NewMutator(MutatorOptions{
		Layout:     layout,
		Logger:     opts.Logger,
		Duplicates: opts.Duplicates,
	})
	if err != nil {
		return nil, err
	}
	return &Graph{
		store:   store,
		docID:   opts.DocID,
		opts:    opts,
		mutator: m,
	}, nil
}

// New creates a fresh document in store and returns a Graph over it.
func New(ctx context.Context, store Store, opts Options) (*Graph, error) {
	g, err := newGraph(store, opts)
	if err != nil {
		return nil, err
	}
	if g.docID == "" {
		g.docID = g.opts.IDGenerator()
	}
	seed := g.mutator.Init(Document{}, opts.Label)
	if _, err := store.CreateDocument(ctx, g.docID, seed); err != nil {
		return nil, fmt.Errorf("graphdoc: create document %s: %w", g.docID, err)
	}
	g.mutator.Notifier().Log("graph created", "doc", g.docID, "layout", g.mutator.Layout().Name)
	return g, nil
}

// Open returns a Graph over an existing document.
func Open(ctx context.Context, store Store, docID string, opts Options) (*Graph, error) {
	opts.DocID = docID
	g, err := newGraph(store, opts)
	if err != nil {
		return nil, err
	}
	if _, err := store.GetDocument(ctx, docID); err != nil {
		return nil, err
	}
	return g, nil
}

// ID returns the backing document id.
func (g *Graph) ID() string { return g.docID }

// Layout returns the active layout.
func (g *Graph) Layout() Layout { return g.mutator.Layout() }

// Last returns the last affected node and edge.
func (g *Graph) Last() LastAffected { return g.mutator.Last() }

// Pending returns the uncommitted action, if any.
func (g *Graph) Pending() (Action, bool) {
	if g.pending == nil {
		return Action{}, false
	}
	return g.pending.Action(), true
}

// Actions returns every action issued so far, committed or not.
func (g *Graph) Actions() []Action { return append([]Action(nil), g.actions...) }

// History returns the commit history of this Graph.
func (g *Graph) History() []CommitRecord { return append([]CommitRecord(nil), g.history...) }

func (g *Graph) AddNode(ctx context.Context, id string, value Entity) error {
	return g.Apply(ctx, OpAddNode, NodeRequest{ID: id, Value: value})
}

func (g *Graph) UpdateNode(ctx context.Context, id string, value Entity) error {
	return g.Apply(ctx, OpUpdateNode, NodeRequest{ID: id, Value: value})
}

func (g *Graph) ReplaceNode(ctx context.Context, id string, value Entity) error {
	return g.Apply(ctx, OpReplaceNode, NodeRequest{ID: id, Value: value})
}

func (g *Graph) RemoveNode(ctx context.Context, id string) error {
	return g.Apply(ctx, OpRemoveNode, id)
}

func (g *Graph) AddEdge(ctx context.Context, req EdgeRequest) error {
	return g.Apply(ctx, OpAddEdge, req)
}

func (g *Graph) UpdateEdge(ctx context.Context, req EdgeRequest) error {
	return g.Apply(ctx, OpUpdateEdge, req)
}

func (g *Graph) ReplaceEdge(ctx context.Context, req EdgeRequest) error {
	return g.Apply(ctx, OpReplaceEdge, req)
}

func (g *Graph) RemoveEdge(ctx context.Context, req EdgeRequest) error {
	return g.Apply(ctx, OpRemoveEdge, req)
}

// Apply queues op with a loosely shaped argument: a string id, a request
// struct, or a map of request fields. The action is first run against a copy
// of the current document, so integrity errors surface here rather than at
// Commit.
func (g *Graph) Apply(ctx context.Context, op Op, arg any) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %v", ErrUnknownAction, op)
	}
	if g.pending != nil {
		pending := g.pending.Action()
		return g.mutator.Notifier().Fail(ErrActionNotCommitted,
			fmt.Sprintf("%s: must commit the previous action first: %s %s", op, pending.Op, pending.ID()),
			"pending", pending.Op.String())
	}

	action := Action{Op: op}
	if op.IsEdge() {
		req, err := EdgeArgs(arg)
		if err != nil {
			return g.mutator.Notifier().Fail(ErrInvalidArgumentShape, op.String()+": "+err.Error())
		}
		action.Edge = req
	} else {
		req, err := NodeArgs(arg, nil)
		if err != nil {
			return g.mutator.Notifier().Fail(ErrInvalidArgumentShape, op.String()+": "+err.Error())
		}
		if req.ID == "" && op == OpAddNode && g.opts.AutoID {
			req.ID = g.opts.IDGenerator()
		}
		if req.ID == "" {
			return g.mutator.Notifier().Fail(ErrMissingRequiredField, op.String()+": missing id of node")
		}
		action.Node = req
	}
	if err := g.check(ctx, action); err != nil {
		return err
	}
	return g.doAction(action)
}

// check runs a against a scratch copy of the stored document. Only failures
// are logged; warnings are left to the real commit.
func (g *Graph) check(ctx context.Context, a Action) error {
	doc, err := g.store.GetDocument(ctx, g.docID)
	if err != nil {
		return err
	}
	scratch, err := NewMutator(MutatorOptions{
		Layout:     g.mutator.Layout(),
		Logger:     failuresOnly{g.mutator.Notifier().logger},
		Duplicates: g.opts.Duplicates,
	})
	if err != nil {
		return err
	}
	_, err = scratch.Apply(doc.Clone(), a)
	return err
}

// failuresOnly forwards errors and drops everything else.
type failuresOnly struct {
	Logger
}

func (failuresOnly) Log(string, ...any)  {}
func (failuresOnly) Warn(string, ...any) {}

func (g *Graph) doAction(a Action) error {
	c, err := NewCommitter(g.store, g.docID, a, CommitterOptions{
		Mutator:        g.mutator,
		RequireMessage: g.opts.RequireMessage,
		OnCommit:       g.recordCommit,
	})
	if err != nil {
		return err
	}
	g.actions = append(g.actions, a)
	g.pending = c
	return nil
}

func (g *Graph) recordCommit(rec CommitRecord) {
	g.history = append(g.history, rec)
	if g.opts.OnCommit != nil {
		g.opts.OnCommit(rec)
	}
}

// Commit applies the pending action. Without a pending action it does
// nothing. A failed change, for example because another writer removed an
// endpoint since Apply, discards the action, except when only the message
// was missing.
func (g *Graph) Commit(ctx context.Context, message string) (Affected, error) {
	if g.pending == nil {
		return Affected{}, nil
	}
	a, err := g.pending.Commit(ctx, message)
	if err != nil && errors.Is(err, ErrMissingCommitMessage) {
		return Affected{}, err
	}
	g.pending = nil
	return a, err
}

// Discard drops the pending action without applying it.
func (g *Graph) Discard() bool {
	if g.pending == nil {
		return false
	}
	g.pending = nil
	return true
}

// Compact removes duplicate node and edge ids, keeping the last occurrence,
// as one change. It returns the number of removed entries.
func (g *Graph) Compact(ctx context.Context, message string) (int, error) {
	if g.pending != nil {
		pending := g.pending.Action()
		return 0, g.mutator.Notifier().Fail(ErrActionNotCommitted,
			"compact: must commit the previous action first: "+pending.Op.String(), "pending", pending.Op.String())
	}
	if message == "" {
		message = "compacted duplicate ids"
	}
	removed := 0
	_, err := g.store.Change(ctx, g.docID, message, func(draft Document) error {
		removed = g.mutator.Dedupe(draft, KindNode, nil) + g.mutator.Dedupe(draft, KindEdge, nil)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("graphdoc: compact: %w", err)
	}
	return removed, nil
}

// Document returns the current backing document.
func (g *Graph) Document(ctx context.Context) (Document, error) {
	return g.store.GetDocument(ctx, g.docID)
}

// Node returns a committed node by id.
func (g *Graph) Node(ctx context.Context, id string) (Entity, bool, error) {
	doc, err := g.Document(ctx)
	if err != nil {
		return nil, false, err
	}
	n, ok := g.mutator.FindNode(doc, id)
	return n, ok, nil
}

// Edge returns a committed edge by id.
func (g *Graph) Edge(ctx context.Context, id string) (Entity, bool, error) {
	doc, err := g.Document(ctx)
	if err != nil {
		return nil, false, err
	}
	e, ok := g.mutator.FindEdge(doc, id)
	return e, ok, nil
}

// ToGraph converts the current document with the configured backend.
func (g *Graph) ToGraph(ctx context.Context) (Traversable, error) {
	if g.opts.Backend == nil {
		return nil, ErrNoBackend
	}
	doc, err := g.Document(ctx)
	if err != nil {
		return nil, err
	}
	return g.opts.Backend.Convert(doc, g.mutator.Layout())
}
