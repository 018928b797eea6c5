package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements graphdoc.Store using PostgreSQL via pgx. Documents are
// stored as JSONB and every change appends a row to graph_changes.
type PGStore struct {
	db *pgxpool.Pool
}

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}
