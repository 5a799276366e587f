package lorebase

import (
	"context"
	"fmt"
	"log/slog"
)

// RetrieverOption configures a Retriever.
type RetrieverOption func(*retrieverConfig)

type retrieverConfig struct {
	prefilter           *PreFilter
	minScore            float32
	overfetchMultiplier int
	logger              *slog.Logger
}

// WithPreFilter sets the keyword pre-filter applied to query text. Candidates
// whose path falls outside the matched prefixes are dropped before trimming
// to topK. When no rule matches, the full candidate set passes unchanged.
func WithPreFilter(f *PreFilter) RetrieverOption {
	return func(c *retrieverConfig) { c.prefilter = f }
}

// WithMinScore drops results scoring below the threshold. Default 0 (keep all).
func WithMinScore(score float32) RetrieverOption {
	return func(c *retrieverConfig) { c.minScore = score }
}

// WithOverfetch sets the candidate multiplier used when a pre-filter is
// active: Retrieve fetches topK * multiplier from the store, filters by
// path, then trims. Default is 5.
func WithOverfetch(n int) RetrieverOption {
	return func(c *retrieverConfig) { c.overfetchMultiplier = n }
}

// WithRetrieverLogger sets a structured logger for retrieval decisions.
func WithRetrieverLogger(l *slog.Logger) RetrieverOption {
	return func(c *retrieverConfig) { c.logger = l }
}

// Retriever answers queries against a Store: embed the query, run top-k
// cosine search, and optionally restrict candidates with the keyword
// pre-filter first.
type Retriever struct {
	store     Store
	embedding EmbeddingProvider
	cfg       retrieverConfig
}

// NewRetriever creates a Retriever over the given store and embedding
// capability.
func NewRetriever(store Store, embedding EmbeddingProvider, opts ...RetrieverOption) *Retriever {
	cfg := retrieverConfig{overfetchMultiplier: 5}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(DiscardHandler{})
	}
	return &Retriever{store: store, embedding: embedding, cfg: cfg}
}

// Retrieve returns the topK records most relevant to the query within one
// tenant. An empty index or unknown tenant yields an empty slice, not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, accountID, query string, topK int) ([]ScoredRecord, error) {
	var allow []string
	if r.cfg.prefilter != nil {
		result := r.cfg.prefilter.Apply(query)
		allow = result.AllowPrefixes
		r.cfg.logger.Debug("retrieve: pre-filter",
			"allow_prefixes", allow, "reasons", result.Reasons)
	}

	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	fetchK := topK
	if len(allow) > 0 && r.cfg.overfetchMultiplier > 1 {
		fetchK = topK * r.cfg.overfetchMultiplier
	}

	results, err := r.store.SearchTopK(ctx, accountID, vec, fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results = FilterScored(results, allow)
	results = r.trim(results, topK)
	r.cfg.logger.Debug("retrieve: done", "returned", len(results), "top_k", topK)
	return results, nil
}

// RetrieveByRestaurant answers a query scoped to one canonical restaurant,
// delegating the metadata filter to the store.
func (r *Retriever) RetrieveByRestaurant(ctx context.Context, accountID, restaurant, query string, topK int) ([]ScoredRecord, error) {
	vec, err := r.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := r.store.SearchTopKByRestaurant(ctx, accountID, restaurant, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search (restaurant): %w", err)
	}
	return r.trim(results, topK), nil
}

func (r *Retriever) embedQuery(ctx context.Context, query string) ([]float32, error) {
	embs, err := r.embedding.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(embs) == 0 {
		return nil, fmt.Errorf("embed query: no embedding returned")
	}
	return embs[0], nil
}

func (r *Retriever) trim(results []ScoredRecord, topK int) []ScoredRecord {
	if r.cfg.minScore > 0 {
		filtered := results[:0]
		for _, res := range results {
			if res.Score >= r.cfg.minScore {
				filtered = append(filtered, res)
			}
		}
		results = filtered
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
