package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS graph_documents (
    id         TEXT PRIMARY KEY,
    body       JSONB NOT NULL DEFAULT '{}',
    version    INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS graph_changes (
    id         TEXT PRIMARY KEY,
    doc_id     TEXT NOT NULL REFERENCES graph_documents(id) ON DELETE CASCADE,
    seq        INTEGER NOT NULL,
    message    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (doc_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_graph_changes_doc_id ON graph_changes(doc_id);
`

// CreateSchema creates the graph_documents and graph_changes tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the graph_changes and graph_documents tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS graph_changes, graph_documents CASCADE;`)
	return err
}
