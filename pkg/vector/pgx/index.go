// Package pgx implements the vector index on PostgreSQL with the pgvector
// extension.
package pgx

import (
	"context"
	"fmt"
	"sync"

	"pomelo/pkg/vector"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const upsertDocumentQuery = `
INSERT INTO vector_documents (collection, public_id, content, metadata, embedding)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (collection, public_id) DO UPDATE
SET content = EXCLUDED.content,
    metadata = EXCLUDED.metadata,
    embedding = EXCLUDED.embedding
`

const queryNearestQuery = `
SELECT public_id, content, metadata, embedding <=> $2 AS distance
FROM vector_documents
WHERE collection = $1
ORDER BY embedding <=> $2
LIMIT $3
`

const deleteCollectionQuery = `
DELETE FROM vector_documents WHERE collection = $1
`

// VectorIndex implements vector.Index on a pgvector-enabled database. Writes
// are serialized with a mutex so batched upserts from concurrent workers do
// not interleave inside one transaction.
type VectorIndex struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

func NewVectorIndex(conn pgxIConn) *VectorIndex {
	return &VectorIndex{conn: conn}
}

func (v *VectorIndex) Upsert(ctx context.Context, collection string, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	v.dbLock.Lock()
	defer v.dbLock.Unlock()

	tx, err := v.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document without id in collection %s", collection)
		}
		metadata := doc.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		embed := pgvector.NewVector(doc.Embedding)
		_, err := tx.Exec(ctx, upsertDocumentQuery, collection, doc.ID, doc.Text, metadata, embed)
		if err != nil {
			return fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (v *VectorIndex) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]vector.Match, error) {
	if topK <= 0 {
		return []vector.Match{}, nil
	}
	embed := pgvector.NewVector(embedding)

	rows, err := v.conn.Query(ctx, queryNearestQuery, collection, embed, topK)
	if err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}
	defer rows.Close()

	matches := make([]vector.Match, 0, topK)
	for rows.Next() {
		var m vector.Match
		if err := rows.Scan(&m.ID, &m.Text, &m.Metadata, &m.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vector query failed: %w", err)
	}

	return matches, nil
}

func (v *VectorIndex) DeleteCollection(ctx context.Context, collection string) error {
	v.dbLock.Lock()
	defer v.dbLock.Unlock()

	if _, err := v.conn.Exec(ctx, deleteCollectionQuery, collection); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", collection, err)
	}
	return nil
}
