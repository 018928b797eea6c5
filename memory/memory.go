// Package memory is an in-process document substrate. Every change runs
// against a draft copy and is swapped in only when the callback succeeds.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meikuraledutech/graphdoc"
)

// Options configures a Store.
type Options struct {
	// Immutable makes every returned document a private copy, so callers can
	// never touch the stored root.
	Immutable bool
	Clock     func() time.Time
}

type entry struct {
	doc     graphdoc.Document
	history []graphdoc.Change
}

// Store implements graphdoc.Store in memory.
type Store struct {
	mu   sync.Mutex
	opts Options
	docs map[string]*entry
}

// New returns an empty Store.
func New(opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Store{opts: opts, docs: make(map[string]*entry)}
}

func (s *Store) out(doc graphdoc.Document) graphdoc.Document {
	if s.opts.Immutable {
		return doc.Clone()
	}
	return doc
}

func (s *Store) lookup(docID string) (*entry, error) {
	e, ok := s.docs[docID]
	if !ok {
		return nil, fmt.Errorf("memory: %s: %w", docID, graphdoc.ErrDocumentNotFound)
	}
	return e, nil
}

// CreateDocument stores a copy of seed under docID.
func (s *Store) CreateDocument(ctx context.Context, docID string, seed graphdoc.Document) (graphdoc.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[docID]; ok {
		return nil, fmt.Errorf("memory: %s: %w", docID, graphdoc.ErrDocumentExists)
	}
	if seed == nil {
		seed = graphdoc.Document{}
	}
	e := &entry{doc: seed.Clone()}
	s.docs[docID] = e
	return s.out(e.doc), nil
}

// GetDocument returns the stored document.
func (s *Store) GetDocument(ctx context.Context, docID string) (graphdoc.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(docID)
	if err != nil {
		return nil, err
	}
	return s.out(e.doc), nil
}

// DeleteDocument removes a document and its history.
// No error if the document doesn't exist.
func (s *Store) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, docID)
	return nil
}

// Change runs fn against a draft and commits it with message. The stored
// root keeps its identity in mutable mode, so documents returned earlier
// observe the change.
func (s *Store) Change(ctx context.Context, docID, message string, fn graphdoc.ChangeFunc) (graphdoc.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(docID)
	if err != nil {
		return nil, err
	}

	draft := e.doc.Clone()
	if err := fn(draft); err != nil {
		return nil, err
	}
	if s.opts.Immutable {
		// fn may have handed out references into draft.
		draft = draft.Clone()
	}

	for k := range e.doc {
		delete(e.doc, k)
	}
	for k, v := range draft {
		e.doc[k] = v
	}
	e.history = append(e.history, graphdoc.Change{
		Seq:     len(e.history) + 1,
		Message: message,
		At:      s.opts.Clock(),
	})
	return s.out(e.doc), nil
}

// History returns the change log of a document, oldest first.
func (s *Store) History(ctx context.Context, docID string) ([]graphdoc.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.lookup(docID)
	if err != nil {
		return nil, err
	}
	return append([]graphdoc.Change(nil), e.history...), nil
}
