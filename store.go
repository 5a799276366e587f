package lorebase

import "context"

// Store abstracts persistence with tenant-scoped vector search.
//
// Every read and bulk-delete is keyed by accountID; queries never cross
// tenants. Retrieval on an unknown tenant or an empty index returns an
// empty result list, not an error.
type Store interface {
	// StoreDocument inserts a document and all its chunk records atomically:
	// either everything is visible to retrieval afterward, or nothing is.
	StoreDocument(ctx context.Context, doc Document, records []ChunkRecord) error

	// BulkCreate inserts chunk records without a parent document row.
	BulkCreate(ctx context.Context, records []ChunkRecord) error

	// DeleteAll removes every document and chunk owned by accountID.
	DeleteAll(ctx context.Context, accountID string) error

	// SearchTopK returns the k records most similar to the query embedding,
	// sorted by cosine score descending.
	SearchTopK(ctx context.Context, accountID string, embedding []float32, k int) ([]ScoredRecord, error)

	// SearchTopKByRestaurant is SearchTopK restricted to records whose
	// metadata carries an exact restaurant match.
	SearchTopKByRestaurant(ctx context.Context, accountID, restaurant string, embedding []float32, k int) ([]ScoredRecord, error)

	// Lifecycle.
	Init(ctx context.Context) error
	Close() error
}

// EmbeddingProvider turns texts into fixed-dimension vectors, one per input,
// order-preserving. A batch fails as a unit.
type EmbeddingProvider interface {
	Name() string
	Dimensions() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedFunc adapts a function to the embedding capability's core method.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)
