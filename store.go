package graphdoc

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMissingRequiredField = errors.New("graphdoc: missing required field")
	ErrReferenceNotFound    = errors.New("graphdoc: reference not found")
	ErrInvalidArgumentShape = errors.New("graphdoc: invalid argument shape")
	ErrActionNotCommitted   = errors.New("graphdoc: must commit the previous action first")
	ErrMissingCommitMessage = errors.New("graphdoc: missing or invalid commit message")
	ErrDuplicateID          = errors.New("graphdoc: duplicate id")
	ErrInvalidLayout        = errors.New("graphdoc: invalid layout")
	ErrUnknownAction        = errors.New("graphdoc: unknown action")
	ErrDocumentNotFound     = errors.New("graphdoc: document not found")
	ErrDocumentExists       = errors.New("graphdoc: document already exists")
	ErrNoBackend            = errors.New("graphdoc: no graph backend configured")
	ErrMalformedCollection  = errors.New("graphdoc: collection holds non-object items")
)

// ChangeFunc mutates a draft of the document. Returning an error aborts the
// change and leaves the stored document untouched.
type ChangeFunc func(draft Document) error

// Change is one entry of a document's change history.
type Change struct {
	Seq     int       `json:"seq"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Store is the replicated-document substrate. Conflict resolution and
// persistence are owned by the implementation.
type Store interface {
	// Documents
	CreateDocument(ctx context.Context, docID string, seed Document) (Document, error)
	GetDocument(ctx context.Context, docID string) (Document, error)
	DeleteDocument(ctx context.Context, docID string) error

	// Change applies fn as one atomic, history-recorded change.
	Change(ctx context.Context, docID, message string, fn ChangeFunc) (Document, error)
	History(ctx context.Context, docID string) ([]Change, error)
}

// Traversable is a graph produced by a Backend from a flat document.
type Traversable interface {
	Nodes() []Entity
	Edges() []Entity
}

// Backend converts a flat document into a traversable graph. There is one
// backend per layout.
type Backend interface {
	Name() string
	Convert(doc Document, layout Layout) (Traversable, error)
}
