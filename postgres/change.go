package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/graphdoc"
)

// Change applies fn to the document inside one transaction. The row is locked
// for the duration, so concurrent changes to the same document serialize.
// If fn fails nothing is written.
func (s *PGStore) Change(ctx context.Context, docID, message string, fn graphdoc.ChangeFunc) (graphdoc.Document, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("graphdoc: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		body    []byte
		version int
	)
	err = tx.QueryRow(ctx,
		`SELECT body, version FROM graph_documents WHERE id = $1 FOR UPDATE`, docID,
	).Scan(&body, &version)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("graphdoc: %s: %w", docID, graphdoc.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("graphdoc: lock document: %w", err)
	}

	doc, err := decode(body)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("graphdoc: encode document: %w", err)
	}
	version++

	if _, err := tx.Exec(ctx,
		`UPDATE graph_documents SET body = $1, version = $2, updated_at = NOW() WHERE id = $3`,
		json.RawMessage(out), version, docID,
	); err != nil {
		return nil, fmt.Errorf("graphdoc: update document: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO graph_changes (id, doc_id, seq, message) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), docID, version, message,
	); err != nil {
		return nil, fmt.Errorf("graphdoc: insert change: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("graphdoc: commit: %w", err)
	}
	return doc, nil
}

// History returns all changes for a document, ordered by seq.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) History(ctx context.Context, docID string) ([]graphdoc.Change, error) {
	rows, err := s.db.Query(ctx,
		`SELECT seq, message, created_at FROM graph_changes WHERE doc_id = $1 ORDER BY seq`, docID)
	if err != nil {
		return nil, fmt.Errorf("graphdoc: list changes: %w", err)
	}
	defer rows.Close()

	changes := []graphdoc.Change{}
	for rows.Next() {
		var c graphdoc.Change
		if err := rows.Scan(&c.Seq, &c.Message, &c.At); err != nil {
			return nil, fmt.Errorf("graphdoc: scan change: %w", err)
		}
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graphdoc: rows changes: %w", err)
	}

	return changes, nil
}
