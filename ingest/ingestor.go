package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"lorebase"
)

// IngestResult holds the outcome of one ingest operation.
type IngestResult struct {
	DocumentID string
	Document   lorebase.Document
	ChunkCount int
}

// Ingestor provides end-to-end ingestion: extract → normalize → split →
// embed → store. Every stored record carries the tenant's account ID, and
// each document is persisted atomically with its chunks.
type Ingestor struct {
	store      lorebase.Store
	embedding  lorebase.EmbeddingProvider
	normalizer *Normalizer
	structure  *StructureDetector
	extractors map[ContentType]Extractor
	strategy   Strategy
	chunkOpts  *Options
	batchSize  int
	logger     *slog.Logger

	window       *SlidingWindowChunker
	hierarchical *HierarchicalChunker
	csv          *CSVChunker
	entity       *EntitySectionChunker
}

// NewIngestor creates an Ingestor with sensible defaults.
func NewIngestor(store lorebase.Store, emb lorebase.EmbeddingProvider, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:      store,
		embedding:  emb,
		normalizer: NewNormalizer(),
		extractors: map[ContentType]Extractor{
			TypePlainText: PlainTextExtractor{},
		},
		strategy:     StrategyAuto,
		batchSize:    64,
		logger:       lorebase.NopLogger(),
		window:       NewSlidingWindowChunker(),
		hierarchical: NewHierarchicalChunker(),
		csv:          NewCSVChunker(),
		entity:       NewEntitySectionChunker(),
	}
	for _, o := range opts {
		o(ing)
	}
	if ing.structure == nil {
		ing.structure = NewStructureDetector(ing.logger)
	}
	return ing
}

// IngestText ingests plain text content for the given tenant.
func (ing *Ingestor) IngestText(ctx context.Context, accountID, text, filename string) (IngestResult, error) {
	normalized := ing.normalizer.Normalize(text)
	chunks := ing.splitter(ing.strategy, TypePlainText).Split(normalized, ing.chunkOpts)
	return ing.finish(ctx, accountID, filename, string(TypePlainText), chunks)
}

// IngestFile ingests file content, detecting the content type from the
// filename extension.
func (ing *Ingestor) IngestFile(ctx context.Context, accountID string, content []byte, filename string) (IngestResult, error) {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	ct := ContentTypeFromExtension(ext)

	extractor, ok := ing.extractors[ct]
	if !ok {
		extractor = PlainTextExtractor{}
	}

	chunks, err := ing.extractAndSplit(extractor, ct, content)
	if err != nil {
		return IngestResult{}, fmt.Errorf("extract %s: %w", ct, err)
	}
	return ing.finish(ctx, accountID, filename, string(ct), chunks)
}

// IngestReader reads all content from r and ingests it.
func (ing *Ingestor) IngestReader(ctx context.Context, accountID string, r io.Reader, filename string) (IngestResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return IngestResult{}, fmt.Errorf("read: %w", err)
	}
	return ing.IngestFile(ctx, accountID, data, filename)
}

// IngestFiles ingests a batch of files, isolating failures: one bad
// document never aborts the rest. Failed files appear in the error map
// keyed by filename.
func (ing *Ingestor) IngestFiles(ctx context.Context, accountID string, files map[string][]byte) (map[string]IngestResult, map[string]error) {
	results := make(map[string]IngestResult, len(files))
	errs := make(map[string]error)
	for name, content := range files {
		res, err := ing.IngestFile(ctx, accountID, content, name)
		if err != nil {
			ing.logger.Error("ingest failed", "filename", name, "error", err)
			errs[name] = err
			continue
		}
		results[name] = res
	}
	return results, errs
}

// extractAndSplit runs the richest extraction path the extractor supports:
// positioned spans, then per-page text, then flat text. CSV content skips
// normalization so row and column boundaries survive untouched.
func (ing *Ingestor) extractAndSplit(extractor Extractor, ct ContentType, content []byte) ([]lorebase.Chunk, error) {
	if ct == TypeCSV {
		text, err := extractor.Extract(content)
		if err != nil {
			return nil, err
		}
		return ing.splitter(ing.strategy, ct).Split(text, ing.chunkOpts), nil
	}

	if se, ok := extractor.(SectionExtractor); ok {
		sections, err := se.ExtractSections(content)
		if err == nil && len(sections) > 0 {
			for _, s := range sections {
				s.Text = ing.normalizer.Normalize(s.Text)
			}
			return ing.hierarchical.SplitSections(sections, ing.chunkOpts), nil
		}
		if err != nil {
			ing.logger.Warn("section extraction failed, falling back", "error", err)
		}
	}

	if se, ok := extractor.(SpanExtractor); ok {
		spans, err := se.ExtractSpans(content)
		if err == nil {
			if sections := ing.structure.ExtractSections(spans); len(sections) > 0 {
				for _, s := range sections {
					s.Text = ing.normalizer.Normalize(s.Text)
				}
				return ing.hierarchical.SplitSections(sections, ing.chunkOpts), nil
			}
		} else {
			ing.logger.Warn("span extraction failed, falling back to page text", "error", err)
		}
	}

	if pe, ok := extractor.(PageExtractor); ok {
		pages, err := pe.ExtractPages(content)
		if err == nil && len(pages) > 0 {
			text, _ := ing.normalizer.NormalizePages(pages)
			return ing.splitter(ing.strategy, ct).Split(text, ing.chunkOpts), nil
		}
		if err != nil {
			ing.logger.Warn("page extraction failed, falling back to flat text", "error", err)
		}
	}

	text, err := extractor.Extract(content)
	if err != nil {
		return nil, err
	}
	return ing.splitter(ing.strategy, ct).Split(ing.normalizer.Normalize(text), ing.chunkOpts), nil
}

// finish drops empty chunks, embeds the rest in batches, and stores the
// document with its records in one atomic write.
func (ing *Ingestor) finish(ctx context.Context, accountID, filename, mimeType string, chunks []lorebase.Chunk) (IngestResult, error) {
	kept := chunks[:0]
	for _, c := range chunks {
		if !c.Empty() {
			kept = append(kept, c)
		}
	}

	doc := lorebase.Document{
		ID:        lorebase.NewID(),
		AccountID: accountID,
		Filename:  filename,
		MimeType:  mimeType,
		CreatedAt: lorebase.NowUnix(),
	}

	records := make([]lorebase.ChunkRecord, len(kept))
	for i, c := range kept {
		records[i] = lorebase.ChunkRecord{
			ID:         lorebase.NewID(),
			DocumentID: doc.ID,
			AccountID:  accountID,
			Content:    c.Content,
			Meta:       c.Meta,
			CreatedAt:  doc.CreatedAt,
		}
	}

	if err := ing.batchEmbed(ctx, records); err != nil {
		return IngestResult{}, err
	}

	if err := ing.store.StoreDocument(ctx, doc, records); err != nil {
		return IngestResult{}, fmt.Errorf("store: %w", err)
	}

	ing.logger.Info("document ingested",
		"document_id", doc.ID, "filename", filename, "chunks", len(records))

	return IngestResult{
		DocumentID: doc.ID,
		Document:   doc,
		ChunkCount: len(records),
	}, nil
}

// batchEmbed embeds records in batches of ing.batchSize.
func (ing *Ingestor) batchEmbed(ctx context.Context, records []lorebase.ChunkRecord) error {
	for i := 0; i < len(records); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(records) {
			end = len(records)
		}

		batch := records[i:end]
		texts := make([]string, len(batch))
		for j, r := range batch {
			texts[j] = r.Content
		}

		embeddings, err := ing.embedding.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(embeddings) != len(texts) {
			return fmt.Errorf("embed batch %d-%d: got %d embeddings for %d texts", i, end, len(embeddings), len(texts))
		}

		for j := range batch {
			records[i+j].Embedding = embeddings[j]
		}
	}
	return nil
}
