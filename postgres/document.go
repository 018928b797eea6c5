package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/meikuraledutech/graphdoc"
)

// CreateDocument inserts a new document seeded with seed.
// Returns graphdoc.ErrDocumentExists if docID is taken.
func (s *PGStore) CreateDocument(ctx context.Context, docID string, seed graphdoc.Document) (graphdoc.Document, error) {
	if seed == nil {
		seed = graphdoc.Document{}
	}
	body, err := json.Marshal(seed)
	if err != nil {
		return nil, fmt.Errorf("graphdoc: encode document: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO graph_documents (id, body) VALUES ($1, $2)`,
		docID, json.RawMessage(body),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("graphdoc: %s: %w", docID, graphdoc.ErrDocumentExists)
		}
		return nil, fmt.Errorf("graphdoc: insert document: %w", err)
	}

	return decode(body)
}

// GetDocument fetches a document by its ID.
// Returns graphdoc.ErrDocumentNotFound if it doesn't exist.
func (s *PGStore) GetDocument(ctx context.Context, docID string) (graphdoc.Document, error) {
	var body []byte
	err := s.db.QueryRow(ctx,
		`SELECT body FROM graph_documents WHERE id = $1`, docID,
	).Scan(&body)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("graphdoc: %s: %w", docID, graphdoc.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("graphdoc: get document: %w", err)
	}

	return decode(body)
}

// DeleteDocument removes a document; its changes are cascade-deleted by the DB.
// No error if the document doesn't exist.
func (s *PGStore) DeleteDocument(ctx context.Context, docID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM graph_documents WHERE id = $1`, docID)
	if err != nil {
		return fmt.Errorf("graphdoc: delete document: %w", err)
	}
	return nil
}

// decode unmarshals a JSONB body. Collections come back as []any and are
// converted to entities on first access.
func decode(body []byte) (graphdoc.Document, error) {
	doc := graphdoc.Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("graphdoc: decode document: %w", err)
	}
	return doc, nil
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// isUniqueViolation checks for SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
