package graphdoc

import (
	"context"
	"fmt"
)

// CommitRecord is one entry of a graph's commit history.
type CommitRecord struct {
	Op       Op       `json:"name"`
	Action   Action   `json:"action"`
	Message  string   `json:"message"`
	Affected Affected `json:"affected"`
}

// CommitterOptions configures a Committer.
type CommitterOptions struct {
	// Mutator is shared with the caller when set; otherwise one is built from
	// MutatorOptions.
	Mutator        *Mutator
	MutatorOptions MutatorOptions

	// RequireMessage disables auto-generated commit messages.
	RequireMessage bool

	// OnCommit runs after the change has been applied.
	OnCommit func(CommitRecord)
}

// Committer turns one action into one atomic change against a Store.
type Committer struct {
	store   Store
	docID   string
	action  Action
	mutator *Mutator
	opts    CommitterOptions

	autoMessage string
	committed   bool
	result      Affected
}

// NewCommitter returns a committer for action on document docID.
func NewCommitter(store Store, docID string, action Action, opts CommitterOptions) (*Committer, error) {
	m := opts.Mutator
	if m == nil {
		var err error
		if m, err = NewMutator(opts.MutatorOptions); err != nil {
			return nil, err
		}
	}
	return &Committer{
		store:   store,
		docID:   docID,
		action:  action,
		mutator: m,
		opts:    opts,
	}, nil
}

// Action returns the action this committer applies.
func (c *Committer) Action() Action { return c.action }

// Committed reports whether Commit already succeeded.
func (c *Committer) Committed() bool { return c.committed }

// AutoMessage returns the message generated while building the callback.
func (c *Committer) AutoMessage() string { return c.autoMessage }

func (c *Committer) run(fn func(Document) (Affected, error)) ChangeFunc {
	return func(draft Document) error {
		a, err := fn(draft)
		if err != nil {
			return err
		}
		c.result = a
		return nil
	}
}

func (c *Committer) AddNode(req NodeRequest) ChangeFunc {
	c.autoMessage = "added node: " + req.ID
	return c.run(func(d Document) (Affected, error) { return c.mutator.AddNode(d, req) })
}

func (c *Committer) UpdateNode(req NodeRequest) ChangeFunc {
	c.autoMessage = "updated node: " + req.ID
	return c.run(func(d Document) (Affected, error) { return c.mutator.UpdateNode(d, req) })
}

func (c *Committer) ReplaceNode(req NodeRequest) ChangeFunc {
	c.autoMessage = "replaced node: " + req.ID
	return c.run(func(d Document) (Affected, error) { return c.mutator.ReplaceNode(d, req) })
}

func (c *Committer) RemoveNode(id string) ChangeFunc {
	c.autoMessage = "removed node: " + id
	return c.run(func(d Document) (Affected, error) { return c.mutator.RemoveNode(d, id) })
}

func (c *Committer) AddEdge(req EdgeRequest) ChangeFunc {
	req = req.Normalize()
	c.autoMessage = "added edge: " + c.edgeLabel(req)
	return c.run(func(d Document) (Affected, error) { return c.mutator.AddEdge(d, req) })
}

func (c *Committer) UpdateEdge(req EdgeRequest) ChangeFunc {
	req = req.Normalize()
	c.autoMessage = "updated edge: " + c.edgeLabel(req)
	return c.run(func(d Document) (Affected, error) { return c.mutator.UpdateEdge(d, req) })
}

func (c *Committer) ReplaceEdge(req EdgeRequest) ChangeFunc {
	req = req.Normalize()
	c.autoMessage = "replaced edge: " + c.edgeLabel(req)
	return c.run(func(d Document) (Affected, error) { return c.mutator.ReplaceEdge(d, req) })
}

func (c *Committer) RemoveEdge(req EdgeRequest) ChangeFunc {
	req = req.Normalize()
	c.autoMessage = "removed edge: " + c.edgeLabel(req)
	return c.run(func(d Document) (Affected, error) { return c.mutator.RemoveEdge(d, req) })
}

// edgeLabel renders "<id> points <source> <=> <target>", using "=>" for
// directed edges. Only the id is shown when an endpoint is unknown.
func (c *Committer) edgeLabel(req EdgeRequest) string {
	directed := req.Directed && c.mutator.Layout().SupportsDirected()
	id := req.ID
	if id == "" && req.Source != "" && req.Target != "" {
		id = EdgeID(req.Source, req.Target, directed)
	}
	if req.Source == "" || req.Target == "" {
		return id
	}
	arrow := "<=>"
	if directed {
		arrow = "=>"
	}
	return fmt.Sprintf("%s points %s %s %s", id, req.Source, arrow, req.Target)
}

// Callback builds the mutation callback for the committer's action.
func (c *Committer) Callback() (ChangeFunc, error) {
	a := c.action
	switch a.Op {
	case OpAddNode:
		return c.AddNode(a.Node), nil
	case OpUpdateNode:
		return c.UpdateNode(a.Node), nil
	case OpReplaceNode:
		return c.ReplaceNode(a.Node), nil
	case OpRemoveNode:
		return c.RemoveNode(a.Node.ID), nil
	case OpAddEdge:
		return c.AddEdge(a.Edge), nil
	case OpUpdateEdge:
		return c.UpdateEdge(a.Edge), nil
	case OpReplaceEdge:
		return c.ReplaceEdge(a.Edge), nil
	case OpRemoveEdge:
		return c.RemoveEdge(a.Edge), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownAction, a.Op)
}

// Commit applies the action as one change. A second call after success is a
// no-op returning the first result. message overrides the auto-generated one.
func (c *Committer) Commit(ctx context.Context, message string) (Affected, error) {
	if c.committed {
		return c.result, nil
	}
	fn, err := c.Callback()
	if err != nil {
		return Affected{}, err
	}
	if message == "" && !c.opts.RequireMessage {
		message = c.autoMessage
	}
	if message == "" {
		return Affected{}, c.mutator.Notifier().Fail(ErrMissingCommitMessage, "commit: missing or invalid commit message",
			"action", c.action.Op.String())
	}

	if _, err := c.store.Change(ctx, c.docID, message, fn); err != nil {
		return Affected{}, fmt.Errorf("graphdoc: commit %s: %w", c.action.Op, err)
	}
	c.committed = true

	if c.opts.OnCommit != nil {
		c.opts.OnCommit(CommitRecord{
			Op:       c.action.Op,
			Action:   c.action,
			Message:  message,
			Affected: c.result,
		})
	}
	return c.result, nil
}
