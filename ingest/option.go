package ingest

import "log/slog"

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithStrategy sets the chunking strategy (default StrategyAuto).
func WithStrategy(s Strategy) Option {
	return func(ing *Ingestor) { ing.strategy = s }
}

// WithChunkOptions sets the size/overlap passed to every Split call.
func WithChunkOptions(o *Options) Option {
	return func(ing *Ingestor) { ing.chunkOpts = o }
}

// WithNormalizer replaces the text normalizer.
func WithNormalizer(n *Normalizer) Option {
	return func(ing *Ingestor) { ing.normalizer = n }
}

// WithStructureDetector replaces the PDF structure detector.
func WithStructureDetector(d *StructureDetector) Option {
	return func(ing *Ingestor) { ing.structure = d }
}

// WithExtractor registers an Extractor for a given ContentType.
func WithExtractor(ct ContentType, e Extractor) Option {
	return func(ing *Ingestor) { ing.extractors[ct] = e }
}

// WithBatchSize sets the number of chunks per Embed call (default 64).
func WithBatchSize(n int) Option {
	return func(ing *Ingestor) { ing.batchSize = n }
}

// WithWindowChunker replaces the sliding-window chunker.
func WithWindowChunker(c *SlidingWindowChunker) Option {
	return func(ing *Ingestor) { ing.window = c }
}

// WithHierarchicalChunker replaces the hierarchical chunker.
func WithHierarchicalChunker(c *HierarchicalChunker) Option {
	return func(ing *Ingestor) { ing.hierarchical = c }
}

// WithEntityChunker replaces the entity-section chunker.
func WithEntityChunker(c *EntitySectionChunker) Option {
	return func(ing *Ingestor) { ing.entity = c }
}

// WithLogger sets a structured logger for ingestion progress and failures.
func WithLogger(l *slog.Logger) Option {
	return func(ing *Ingestor) { ing.logger = l }
}
