package main

import (
	"testing"

	"lorebase"
	"lorebase/ingest"
	"lorebase/internal/config"
)

func TestRetrieverOptionsIncludePreFilter(t *testing.T) {
	cfg := config.Default()
	logger := lorebase.NopLogger()

	without := retrieverOptions(cfg, false, logger)
	with := retrieverOptions(cfg, true, logger)
	if len(with) != len(without)+1 {
		t.Fatalf("options with prefilter = %d, without = %d, want one more", len(with), len(without))
	}

	// The assembled options must apply cleanly to a retriever.
	retr := lorebase.NewRetriever(nil, nil, with...)
	if retr == nil {
		t.Fatal("retriever not built")
	}
}

func TestRetrieverOptionsMinScore(t *testing.T) {
	cfg := config.Default()
	cfg.Retrieval.MinScore = 0.4
	logger := lorebase.NopLogger()

	base := retrieverOptions(config.Default(), false, logger)
	scored := retrieverOptions(cfg, false, logger)
	if len(scored) != len(base)+1 {
		t.Errorf("min score option not added: %d vs %d", len(scored), len(base))
	}
}

func TestParseStrategy(t *testing.T) {
	cases := map[string]ingest.Strategy{
		"window":       ingest.StrategyWindow,
		"hierarchical": ingest.StrategyHierarchical,
		"csv":          ingest.StrategyCSV,
		"entity":       ingest.StrategyEntity,
		"auto":         ingest.StrategyAuto,
		"bogus":        ingest.StrategyAuto,
	}
	for in, want := range cases {
		if got := parseStrategy(in); got != want {
			t.Errorf("parseStrategy(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine = %q", got)
	}
	if got := firstLine("short"); got != "short" {
		t.Errorf("firstLine = %q", got)
	}
}
