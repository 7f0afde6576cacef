package store

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"rag/types"
)

// PostgresStore keeps chunks in a pgvector-enabled Postgres database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a store around a lazy connection pool. A bad DSN
// fails here; an unreachable server only fails on Ping or the first query, so
// a switch can be committed before the database is up.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres dsn: %v", types.ErrInvalidProvider, err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	// The embedding column stays untyped on purpose: provider switches change
	// the vector width and a fixed vector(n) would reject the next provider's
	// rows at insert instead of at search, where the mismatch is filtered.
	query := `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS chunks (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		chunk_index INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_title ON chunks(title);
	`
	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: create schema: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

func (p *PostgresStore) AddChunk(ctx context.Context, title, content string, index int, embedding []float32) (int64, error) {
	query := `
	INSERT INTO chunks (title, chunk_index, content, embedding)
	VALUES ($1, $2, $3, $4)
	RETURNING id
	`
	var id int64
	err := p.pool.QueryRow(ctx, query, title, index, content, pgvector.NewVector(embedding)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert chunk: %v", types.ErrStorageUnavailable, err)
	}
	return id, nil
}

func (p *PostgresStore) ListChunks(ctx context.Context) ([]types.Chunk, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, title, chunk_index, content FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list chunks: %v", types.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var c types.Chunk
		if err := rows.Scan(&c.ID, &c.Title, &c.Index, &c.Content); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, title string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM chunks WHERE title = $1`, title)
	if err != nil {
		return 0, fmt.Errorf("%w: delete document: %v", types.ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

func (p *PostgresStore) Search(ctx context.Context, embedding []float32, limit int) ([]types.Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", types.ErrDimensionMismatch)
	}

	// <=> is cosine distance; similarity = 1 - distance. Rows whose stored
	// width differs from the query's are excluded rather than compared.
	query := `
	SELECT id, title, chunk_index, content, 1 - (embedding <=> $1) AS similarity
	FROM chunks
	WHERE embedding IS NOT NULL AND vector_dims(embedding) = $2
	ORDER BY embedding <=> $1, id
	LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, pgvector.NewVector(embedding), len(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", types.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var chunks []types.Chunk
	for rows.Next() {
		var c types.Chunk
		if err := rows.Scan(&c.ID, &c.Title, &c.Index, &c.Content, &c.Similarity); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func (p *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count: %v", types.ErrStorageUnavailable, err)
	}
	return count, nil
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("postgres connection pool closed")
	}
	return nil
}
