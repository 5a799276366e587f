// Binary lorebase ingests documents into a tenant-scoped vector store and
// retrieves chunks by semantic similarity.
//
// Usage:
//
//	lorebase ingest -account acct-1 file.pdf [file2.csv ...]
//	lorebase search -account acct-1 -k 10 -prefilter "finding a guide"
//	lorebase delete -account acct-1
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jackc/pgx/v5/pgxpool"

	"lorebase"
	"lorebase/embed/tfidf"
	"lorebase/ingest"
	"lorebase/ingest/docx"
	"lorebase/ingest/html"
	jsonx "lorebase/ingest/json"
	"lorebase/ingest/markdown"
	"lorebase/ingest/pdf"
	"lorebase/internal/config"
	"lorebase/observer"
	"lorebase/store/postgres"
	"lorebase/store/sqlite"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := config.Load(os.Getenv("LOREBASE_CONFIG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var err error
	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, cfg, logger, os.Args[2:])
	case "search":
		err = runSearch(ctx, cfg, logger, os.Args[2:])
	case "delete":
		err = runDelete(ctx, cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: lorebase <ingest|search|delete> [flags]")
}

// deps bundles everything a subcommand needs, built once from config.
type deps struct {
	store    lorebase.Store
	embedder lorebase.EmbeddingProvider
	shutdown func(context.Context) error
}

func build(ctx context.Context, cfg config.Config, logger *slog.Logger) (deps, error) {
	var store lorebase.Store
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return deps{}, fmt.Errorf("connect postgres: %w", err)
		}
		opts := []postgres.Option{postgres.WithLogger(logger)}
		if cfg.Embedding.Dimensions > 0 {
			opts = append(opts, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions))
		}
		store = postgres.New(pool, opts...)
	default:
		store = sqlite.New(cfg.Database.Path, sqlite.WithLogger(logger))
	}
	if err := store.Init(ctx); err != nil {
		return deps{}, fmt.Errorf("init store: %w", err)
	}

	var embedder lorebase.EmbeddingProvider = tfidf.NewEmbedder()

	shutdown := func(context.Context) error { return store.Close() }
	if cfg.Observer.Enabled {
		inst, obsShutdown, err := observer.Init(ctx)
		if err != nil {
			return deps{}, fmt.Errorf("init observer: %w", err)
		}
		store = observer.WrapStore(store, inst)
		embedder = observer.WrapEmbedding(embedder, inst)
		inner := shutdown
		shutdown = func(ctx context.Context) error {
			if err := obsShutdown(ctx); err != nil {
				return err
			}
			return inner(ctx)
		}
	}

	return deps{store: store, embedder: embedder, shutdown: shutdown}, nil
}

func runIngest(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	account := fs.String("account", "", "account ID (required)")
	strategy := fs.String("strategy", "auto", "chunking strategy: auto, window, hierarchical, csv, entity")
	fs.Parse(args)
	if *account == "" || fs.NArg() == 0 {
		return fmt.Errorf("ingest: -account and at least one file required")
	}

	d, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.shutdown(ctx) //nolint:errcheck

	ing := ingest.NewIngestor(d.store, d.embedder,
		ingest.WithStrategy(parseStrategy(*strategy)),
		ingest.WithChunkOptions(&ingest.Options{Size: cfg.Chunking.Size, Overlap: cfg.Chunking.Overlap}),
		ingest.WithExtractor(ingest.TypePDF, pdf.NewExtractor()),
		ingest.WithExtractor(ingest.TypeHTML, html.NewExtractor()),
		ingest.WithExtractor(ingest.TypeMarkdown, markdown.NewExtractor()),
		ingest.WithExtractor(ingest.TypeDOCX, docx.NewExtractor()),
		ingest.WithExtractor(ingest.TypeJSON, jsonx.NewExtractor()),
		ingest.WithLogger(logger),
	)

	files := make(map[string][]byte, fs.NArg())
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files[path] = data
	}

	results, errs := ing.IngestFiles(ctx, *account, files)
	for name, res := range results {
		fmt.Printf("%s: document %s, %d chunks\n", name, res.DocumentID, res.ChunkCount)
	}
	for name, err := range errs {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d files failed", len(errs), fs.NArg())
	}
	return nil
}

func runSearch(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	account := fs.String("account", "", "account ID (required)")
	topK := fs.Int("k", cfg.Retrieval.TopK, "number of results")
	restaurant := fs.String("restaurant", "", "restrict to one restaurant")
	prefilter := fs.Bool("prefilter", false, "apply keyword pre-filter rules to the query")
	fs.Parse(args)
	if *account == "" || fs.NArg() == 0 {
		return fmt.Errorf("search: -account and a query required")
	}
	query := fs.Arg(0)

	d, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.shutdown(ctx) //nolint:errcheck

	retr := lorebase.NewRetriever(d.store, d.embedder, retrieverOptions(cfg, *prefilter, logger)...)

	var results []lorebase.ScoredRecord
	if *restaurant != "" {
		results, err = retr.RetrieveByRestaurant(ctx, *account, *restaurant, query, *topK)
	} else {
		results, err = retr.Retrieve(ctx, *account, query, *topK)
	}
	if err != nil {
		return err
	}

	for i, r := range results {
		fmt.Printf("%2d. [%.4f] %s\n", i+1, r.Score, firstLine(r.Content))
		if path := r.Meta.PathString(); path != "" {
			fmt.Printf("    %s\n", path)
		}
	}
	if len(results) == 0 {
		fmt.Println("no results")
	}
	return nil
}

func runDelete(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	account := fs.String("account", "", "account ID (required)")
	fs.Parse(args)
	if *account == "" {
		return fmt.Errorf("delete: -account required")
	}

	d, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.shutdown(ctx) //nolint:errcheck

	if err := d.store.DeleteAll(ctx, *account); err != nil {
		return err
	}
	fmt.Printf("deleted all documents for %s\n", *account)
	return nil
}

// retrieverOptions assembles retriever options from config and flags.
func retrieverOptions(cfg config.Config, prefilter bool, logger *slog.Logger) []lorebase.RetrieverOption {
	var opts []lorebase.RetrieverOption
	if cfg.Retrieval.MinScore > 0 {
		opts = append(opts, lorebase.WithMinScore(float32(cfg.Retrieval.MinScore)))
	}
	if prefilter {
		opts = append(opts, lorebase.WithPreFilter(lorebase.NewPreFilter()))
	}
	opts = append(opts, lorebase.WithRetrieverLogger(logger))
	return opts
}

func parseStrategy(s string) ingest.Strategy {
	switch s {
	case "window":
		return ingest.StrategyWindow
	case "hierarchical":
		return ingest.StrategyHierarchical
	case "csv":
		return ingest.StrategyCSV
	case "entity":
		return ingest.StrategyEntity
	default:
		return ingest.StrategyAuto
	}
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
		if i > 120 {
			return s[:i] + "..."
		}
	}
	return s
}
