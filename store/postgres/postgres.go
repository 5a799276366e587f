// Package postgres implements lorebase.Store using PostgreSQL with
// pgvector for native vector similarity search. Distance work happens
// inside the database, so retrieval scales past the brute-force scan
// the sqlite store performs.
//
// Store accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lorebase"
)

// Store implements lorebase.Store backed by PostgreSQL with pgvector.
// Vector search uses HNSW indexes with cosine distance. Every query is
// tenant-scoped by account_id.
type Store struct {
	pool   *pgxpool.Pool
	cfg    pgConfig
	logger *slog.Logger
}

// pgConfig holds store configuration set via Option functions.
type pgConfig struct {
	embeddingDimension int // 0 = untyped vector
	hnswM              int // 0 = pgvector default (16)
	hnswEFConstruction int // 0 = pgvector default (64)
	logger             *slog.Logger
}

// Option configures a PostgreSQL Store.
type Option func(*pgConfig)

// WithEmbeddingDimension sets the vector column dimension (e.g. 1536, 768).
// When set, CREATE TABLE uses vector(N) instead of untyped vector, enabling
// better index optimization and catching dimension mismatches at insert time.
// Only affects new table creation (no ALTER on existing tables).
func WithEmbeddingDimension(dim int) Option {
	return func(c *pgConfig) { c.embeddingDimension = dim }
}

// WithHNSWM sets the HNSW m parameter (max connections per node).
// Higher values improve recall at the cost of memory. Default: pgvector's 16.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithHNSWM(m int) Option {
	return func(c *pgConfig) { c.hnswM = m }
}

// WithEFConstruction sets the HNSW ef_construction parameter (build-time
// candidate list size). Higher values improve index quality at the cost of
// slower builds. Default: pgvector's 64.
// Only affects index creation (CREATE INDEX IF NOT EXISTS).
func WithEFConstruction(ef int) Option {
	return func(c *pgConfig) { c.hnswEFConstruction = ef }
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *pgConfig) { c.logger = logger }
}

var _ lorebase.Store = (*Store)(nil)

// New creates a Store using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	var cfg pgConfig
	for _, o := range opts {
		o(&cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = lorebase.NopLogger()
	}
	return &Store{pool: pool, cfg: cfg, logger: logger}
}

// vectorType returns "vector" or "vector(N)" depending on config.
func (s *Store) vectorType() string {
	if s.cfg.embeddingDimension > 0 {
		return fmt.Sprintf("vector(%d)", s.cfg.embeddingDimension)
	}
	return "vector"
}

// hnswWithClause returns the WITH (...) clause for HNSW index creation,
// or an empty string if no tuning params are set.
func (s *Store) hnswWithClause() string {
	var parts []string
	if s.cfg.hnswM > 0 {
		parts = append(parts, fmt.Sprintf("m = %d", s.cfg.hnswM))
	}
	if s.cfg.hnswEFConstruction > 0 {
		parts = append(parts, fmt.Sprintf("ef_construction = %d", s.cfg.hnswEFConstruction))
	}
	if len(parts) == 0 {
		return ""
	}
	return " WITH (" + strings.Join(parts, ", ") + ")"
}

// Init creates the pgvector extension, tables, and indexes.
// Safe to call multiple times (all statements are idempotent).
func (s *Store) Init(ctx context.Context) error {
	vtype := s.vectorType()
	hnswWith := s.hnswWithClause()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,

		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS documents_account_idx ON documents(account_id)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB,
			embedding %s,
			created_at BIGINT NOT NULL
		)`, vtype),
		`CREATE INDEX IF NOT EXISTS chunks_account_idx ON chunks(account_id)`,
		`CREATE INDEX IF NOT EXISTS chunks_document_idx ON chunks(document_id)`,
		`CREATE INDEX IF NOT EXISTS chunks_restaurant_idx ON chunks(account_id, (metadata->>'restaurant'))`,
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS chunks_embedding_idx ON chunks USING hnsw (embedding vector_cosine_ops)%s`, hnswWith),
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: init: %w", err)
		}
	}
	return nil
}

// StoreDocument persists a document and its chunk records in one
// transaction. Either everything lands or nothing does.
func (s *Store) StoreDocument(ctx context.Context, doc lorebase.Document, records []lorebase.ChunkRecord) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, account_id, filename, mime_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   account_id = EXCLUDED.account_id,
		   filename = EXCLUDED.filename,
		   mime_type = EXCLUDED.mime_type,
		   created_at = EXCLUDED.created_at`,
		doc.ID, doc.AccountID, doc.Filename, doc.MimeType, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert document: %w", err)
	}

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}

	s.logger.Debug("document stored",
		"document_id", doc.ID,
		"account_id", doc.AccountID,
		"chunks", len(records),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// BulkCreate inserts chunk records without a parent document row, in one
// transaction.
func (s *Store) BulkCreate(ctx context.Context, records []lorebase.ChunkRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func insertRecord(ctx context.Context, tx pgx.Tx, rec lorebase.ChunkRecord) error {
	metaJSON, err := json.Marshal(rec.Meta)
	if err != nil {
		return fmt.Errorf("postgres: marshal metadata: %w", err)
	}

	if len(rec.Embedding) > 0 {
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, document_id, account_id, content, metadata, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5::jsonb, $6::vector, $7)
			 ON CONFLICT (id) DO UPDATE SET
			   document_id = EXCLUDED.document_id,
			   account_id = EXCLUDED.account_id,
			   content = EXCLUDED.content,
			   metadata = EXCLUDED.metadata,
			   embedding = EXCLUDED.embedding,
			   created_at = EXCLUDED.created_at`,
			rec.ID, rec.DocumentID, rec.AccountID, rec.Content, string(metaJSON), serializeEmbedding(rec.Embedding), rec.CreatedAt)
	} else {
		_, err = tx.Exec(ctx,
			`INSERT INTO chunks (id, document_id, account_id, content, metadata, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5::jsonb, NULL, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   document_id = EXCLUDED.document_id,
			   account_id = EXCLUDED.account_id,
			   content = EXCLUDED.content,
			   metadata = EXCLUDED.metadata,
			   embedding = NULL,
			   created_at = EXCLUDED.created_at`,
			rec.ID, rec.DocumentID, rec.AccountID, rec.Content, string(metaJSON), rec.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("postgres: insert chunk: %w", err)
	}
	return nil
}

// DeleteAll removes every chunk and document belonging to one account.
func (s *Store) DeleteAll(ctx context.Context, accountID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("postgres: delete chunks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM documents WHERE account_id = $1`, accountID); err != nil {
		return fmt.Errorf("postgres: delete documents: %w", err)
	}
	return tx.Commit(ctx)
}

// SearchTopK returns the k nearest chunks for one account by cosine
// similarity.
func (s *Store) SearchTopK(ctx context.Context, accountID string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return s.search(ctx, accountID, "", embedding, k)
}

// SearchTopKByRestaurant is SearchTopK restricted to chunks tagged with
// one canonical restaurant name.
func (s *Store) SearchTopKByRestaurant(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return s.search(ctx, accountID, restaurant, embedding, k)
}

func (s *Store) search(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	if k <= 0 {
		return nil, nil
	}
	start := time.Now()
	embStr := serializeEmbedding(embedding)

	q := `SELECT id, document_id, account_id, content, metadata, created_at,
	        1 - (embedding <=> $1::vector) AS score
	 FROM chunks
	 WHERE account_id = $2 AND embedding IS NOT NULL`
	args := []any{embStr, accountID}
	if restaurant != "" {
		q += ` AND metadata->>'restaurant' = $3`
		args = append(args, restaurant)
	}
	q += fmt.Sprintf(`
	 ORDER BY embedding <=> $1::vector
	 LIMIT $%d`, len(args)+1)
	args = append(args, k)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: search chunks: %w", err)
	}
	defer rows.Close()

	var results []lorebase.ScoredRecord
	for rows.Next() {
		var rec lorebase.ChunkRecord
		var metaJSON []byte
		var score float32
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.AccountID, &rec.Content, &metaJSON, &rec.CreatedAt, &score); err != nil {
			return nil, fmt.Errorf("postgres: scan chunk: %w", err)
		}
		if metaJSON != nil {
			_ = json.Unmarshal(metaJSON, &rec.Meta)
		}
		results = append(results, lorebase.ScoredRecord{ChunkRecord: rec, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: search rows: %w", err)
	}

	s.logger.Debug("vector search",
		"account_id", accountID,
		"k", k,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// Close is a no-op: the pool is externally owned.
func (s *Store) Close() error {
	return nil
}

// serializeEmbedding converts []float32 to a string like "[0.1,0.2,0.3]"
// suitable for pgvector's text input format.
func serializeEmbedding(embedding []float32) string {
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
