// Package sqlite implements lorebase.Store using pure-Go SQLite with
// in-process brute-force vector search. Zero CGO required.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"log/slog"

	"lorebase"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// StoreOption configures a SQLite Store.
type StoreOption func(*Store)

// WithLogger sets a structured logger for the store.
// When set, the store emits debug logs for every operation including
// timing, row counts, and key parameters. If not set, no logs are emitted.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// Store implements lorebase.Store backed by a local SQLite file.
// Embeddings are stored as JSON text and vector search is done in-process
// using brute-force cosine similarity over a capped candidate pool.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ lorebase.Store = (*Store)(nil)

// New creates a Store using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...StoreOption) *Store {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, logger: lorebase.NopLogger()}
	for _, o := range opts {
		o(s)
	}
	s.logger.Debug("sqlite: store opened", "path", dbPath)
	return s
}

// Init creates all required tables and indexes.
func (s *Store) Init(ctx context.Context) error {
	start := time.Now()
	s.logger.Debug("sqlite: init started")

	tables := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			account_id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT,
			embedding TEXT,
			created_at INTEGER NOT NULL
		)`,
	}
	for _, ddl := range tables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	// Every read is tenant-scoped, so account_id leads each index.
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_account ON chunks(account_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id)`)
	_, _ = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_documents_account ON documents(account_id)`)

	s.logger.Info("sqlite: init completed", "duration", time.Since(start))
	return nil
}

// StoreDocument inserts a document and its chunk records in one
// transaction: either everything lands or nothing does.
func (s *Store) StoreDocument(ctx context.Context, doc lorebase.Document, records []lorebase.ChunkRecord) error {
	start := time.Now()
	s.logger.Debug("sqlite: store document", "id", doc.ID, "account_id", doc.AccountID, "filename", doc.Filename, "chunks", len(records))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, account_id, filename, mime_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.AccountID, doc.Filename, doc.MimeType, doc.CreatedAt,
	)
	if err != nil {
		s.logger.Error("sqlite: insert document failed", "id", doc.ID, "error", err)
		return fmt.Errorf("insert document: %w", err)
	}

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			s.logger.Error("sqlite: insert chunk failed", "chunk_id", rec.ID, "doc_id", doc.ID, "error", err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: store document commit failed", "id", doc.ID, "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: store document ok", "id", doc.ID, "chunks", len(records), "duration", time.Since(start))
	return nil
}

// BulkCreate inserts chunk records in one transaction.
func (s *Store) BulkCreate(ctx context.Context, records []lorebase.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	start := time.Now()
	s.logger.Debug("sqlite: bulk create", "count", len(records))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, rec := range records {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: bulk create ok", "count", len(records), "duration", time.Since(start))
	return nil
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec lorebase.ChunkRecord) error {
	var embJSON *string
	if len(rec.Embedding) > 0 {
		v := serializeEmbedding(rec.Embedding)
		embJSON = &v
	}
	metaData, _ := json.Marshal(rec.Meta)
	meta := string(metaData)

	_, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunks (id, document_id, account_id, content, metadata, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DocumentID, rec.AccountID, rec.Content, meta, embJSON, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// DeleteAll removes every document and chunk belonging to one tenant.
func (s *Store) DeleteAll(ctx context.Context, accountID string) error {
	start := time.Now()
	s.logger.Debug("sqlite: delete all", "account_id", accountID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE account_id = ?`, accountID); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("sqlite: delete all commit failed", "account_id", accountID, "error", err)
		return fmt.Errorf("commit tx: %w", err)
	}
	s.logger.Debug("sqlite: delete all ok", "account_id", accountID, "duration", time.Since(start))
	return nil
}

// SearchTopK performs brute-force cosine similarity search over one
// tenant's chunks. The candidate pool is capped at max(100, k*20) rows
// before scoring.
func (s *Store) SearchTopK(ctx context.Context, accountID string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return s.search(ctx, accountID, "", embedding, k)
}

// SearchTopKByRestaurant is SearchTopK restricted to chunks whose metadata
// names the given restaurant.
func (s *Store) SearchTopKByRestaurant(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	return s.search(ctx, accountID, restaurant, embedding, k)
}

func (s *Store) search(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]lorebase.ScoredRecord, error) {
	start := time.Now()
	s.logger.Debug("sqlite: search", "account_id", accountID, "top_k", k, "restaurant", restaurant, "embedding_dim", len(embedding))

	if k <= 0 {
		return nil, nil
	}
	pool := candidateCap(k)

	query := `SELECT id, document_id, account_id, content, metadata, embedding, created_at
		FROM chunks WHERE account_id = ? AND embedding IS NOT NULL`
	args := []any{accountID}
	if restaurant != "" {
		query += ` AND json_extract(metadata, '$.restaurant') = ?`
		args = append(args, restaurant)
	}
	query += ` LIMIT ?`
	args = append(args, pool)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	var results []lorebase.ScoredRecord
	scanned := 0
	for rows.Next() {
		var (
			rec      lorebase.ChunkRecord
			metaJSON sql.NullString
			embJSON  string
		)
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.AccountID, &rec.Content, &metaJSON, &embJSON, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		scanned++
		if metaJSON.Valid {
			_ = json.Unmarshal([]byte(metaJSON.String), &rec.Meta)
		}
		stored, err := deserializeEmbedding(embJSON)
		if err != nil {
			continue
		}
		results = append(results, lorebase.ScoredRecord{
			ChunkRecord: rec,
			Score:       lorebase.Cosine(embedding, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	s.logger.Debug("sqlite: search ok", "scanned", scanned, "returned", len(results), "duration", time.Since(start))
	return results, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Debug("sqlite: store closed")
	return s.db.Close()
}

func candidateCap(k int) int {
	if c := k * 20; c > 100 {
		return c
	}
	return 100
}

// serializeEmbedding converts []float32 to a JSON array string.
func serializeEmbedding(embedding []float32) string {
	data, _ := json.Marshal(embedding)
	return string(data)
}

// deserializeEmbedding parses a JSON array string back to []float32.
func deserializeEmbedding(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
