package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	_ "modernc.org/sqlite"

	"rag/types"
)

// SQLiteStore keeps chunks in a local sqlite file. Embeddings are stored as
// little-endian float32 blobs and similarity search is a brute-force cosine
// scan, which is plenty for a single-process knowledge base.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is empty", types.ErrInvalidProvider)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	// The driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_title ON chunks(title);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("%w: create schema: %v", types.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) AddChunk(ctx context.Context, title, content string, index int, embedding []float32) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (title, chunk_index, content, embedding) VALUES (?, ?, ?, ?)`,
		title, index, content, encodeEmbedding(embedding))
	if err != nil {
		return 0, fmt.Errorf("%w: insert chunk: %v", types.ErrStorageUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) ListChunks(ctx context.Context) ([]types.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, chunk_index, content FROM chunks ORDER BY id`)
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

func (s *SQLiteStore) DeleteDocument(ctx context.Context, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE title = ?`, title)
	if err != nil {
		return 0, fmt.Errorf("%w: delete document: %v", types.ErrStorageUnavailable, err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, limit int) ([]types.Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: empty query embedding", types.ErrDimensionMismatch)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, chunk_index, content, embedding FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: search: %v", types.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var scored []types.Chunk
	for rows.Next() {
		var c types.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Title, &c.Index, &c.Content, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		// Rows written under a provider with a different vector width are
		// not comparable; leave them out instead of scoring garbage.
		if len(vec) != len(embedding) {
			continue
		}
		c.Similarity = cosineSimilarity(vec, embedding)
		scored = append(scored, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows arrive in id order, so a stable sort keeps ties on the lowest id.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit < len(scored) {
		scored = scored[:limit]
	}
	return scored, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count: %v", types.ErrStorageUnavailable, err)
	}
	return count, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodeEmbedding packs the vector as a sequence of little-endian IEEE 754
// float32 values; the width is recovered from the blob length on decode.
func encodeEmbedding(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding blob length %d is not a multiple of 4",
			types.ErrDimensionMismatch, len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
