// Package lorebase is a document chunking and retrieval core for
// retrieval-augmented chat backends.
//
// It provides the pieces between raw document bytes and ranked retrieval
// results: a text normalizer for noisy extracted text, a structure extractor
// that detects headings from positioned PDF spans, a family of interchangeable
// chunking strategies (token sliding window, hierarchical, CSV, entity
// sections), a keyword pre-filter that narrows candidates by section path,
// and tenant-scoped vector stores with top-k cosine search.
//
// # Quick Start
//
//	store := sqlite.New("lore.db")
//	emb := tfidf.NewEmbedder()
//
//	ing := ingest.NewIngestor(store, emb,
//		ingest.WithStrategy(ingest.StrategyHierarchical),
//		ingest.WithExtractor(ingest.TypePDF, pdf.NewExtractor()),
//	)
//	res, err := ing.IngestFile(ctx, accountID, pdfBytes, "campaign.pdf")
//
//	ret := lorebase.NewRetriever(store, emb)
//	hits, err := ret.Retrieve(ctx, accountID, "who sells canoes in Port Nyanzaru?", 8)
//
// Embedding providers and persistence backends are capabilities: anything
// implementing EmbeddingProvider and Store plugs in. The module owns no wire
// protocol; it is a library-level contract.
package lorebase
