package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/raglab/deeprag/internal/models"
	"github.com/raglab/deeprag/pkg/apperr"
)

type VectorStoreConfig struct {
	ConnString string
}

// VectorStore is a PostgreSQL + pgvector vector index. The pool is safe
// for concurrent use; no locks are held across the chunk, embed, upsert
// sequence, so concurrent ingestions interleave freely.
type VectorStore struct {
	pool *pgxpool.Pool
}

var indexNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func NewWithConfig(config VectorStoreConfig) (*VectorStore, error) {
	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, apperr.Configuration("failed to connect to database", err)
	}
	return &VectorStore{pool: pool}, nil
}

// CreateIndex is idempotent: it succeeds silently when an index with the
// same name and dimension already exists, and fails when the existing
// index was created with a different dimension.
func (vs *VectorStore) CreateIndex(ctx context.Context, name string, dimension int) error {
	if !indexNamePattern.MatchString(name) {
		return apperr.Configurationf("invalid index name: %q", name)
	}
	if dimension < 1 {
		return apperr.Configurationf("index dimension must be positive, got %d", dimension)
	}

	if _, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return apperr.External("failed to create vector extension", err)
	}

	// For a vector column the type modifier stores the dimension.
	var existing int
	err := vs.pool.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute
		 WHERE attrelid = to_regclass($1) AND attname = 'embedding'`,
		name,
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != dimension {
			return apperr.Configurationf("index %s exists with dimension %d, requested %d", name, existing, dimension)
		}
		log.Printf("index %s already exists with dimension %d", name, dimension)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		// Table missing, create it below.
	default:
		return apperr.External("failed to inspect existing index", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			embedding vector(%d),
			metadata JSONB
		)`, name, dimension)
	if _, err := vs.pool.Exec(ctx, createTable); err != nil {
		return apperr.External("failed to create index table", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`, name, name)
	if _, err := vs.pool.Exec(ctx, createIndex); err != nil {
		return apperr.External("failed to create vector index", err)
	}

	return nil
}

// Upsert writes all records in one transaction. Atomicity beyond the
// transaction is not promised to callers; a provider failure fails the
// ingestion as a whole and the caller must re-submit the document.
func (vs *VectorStore) Upsert(ctx context.Context, indexName string, records []models.IndexRecord) error {
	if !indexNamePattern.MatchString(indexName) {
		return apperr.Configurationf("invalid index name: %q", indexName)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return apperr.External("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(
		"INSERT INTO %s (content, embedding, metadata) VALUES ($1, $2, $3)",
		indexName)

	for _, record := range records {
		_, err := tx.Exec(ctx, stmt,
			record.Text,
			pgvector.NewVector(record.Vector),
			record.Metadata,
		)
		if err != nil {
			return apperr.External("failed to insert record", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.External("failed to commit records", err)
	}
	return nil
}

// Search returns at most topK records ordered by descending cosine
// similarity, excluding results below threshold. An empty result is
// valid and not an error.
func (vs *VectorStore) Search(ctx context.Context, indexName string, queryVector []float32, topK int, threshold float32) ([]models.SearchResult, error) {
	if !indexNamePattern.MatchString(indexName) {
		return nil, apperr.Configurationf("invalid index name: %q", indexName)
	}
	if topK < 1 {
		topK = 5
	}

	query := fmt.Sprintf(`
		SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
		FROM %s
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY embedding <=> $1
		LIMIT $3`, indexName)

	rows, err := vs.pool.Query(ctx, query, pgvector.NewVector(queryVector), threshold, topK)
	if err != nil {
		return nil, apperr.External("failed to search index", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.Content, &r.Metadata, &r.Similarity); err != nil {
			return nil, apperr.External("failed to scan search result", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.External("failed to read search results", err)
	}
	return results, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}
