package pdf

import (
	"testing"

	"lorebase/ingest"
)

func TestExtractorImplementsInterfaces(t *testing.T) {
	var _ ingest.Extractor = (*Extractor)(nil)
	var _ ingest.PageExtractor = (*Extractor)(nil)
	var _ ingest.SpanExtractor = (*Extractor)(nil)
}

func TestExtractEmptyContent(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(nil); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := e.ExtractPages(nil); err == nil {
		t.Error("expected error for empty content")
	}
	if _, err := e.ExtractSpans(nil); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestExtractGarbageContent(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract([]byte("not a pdf at all")); err == nil {
		t.Error("expected error for non-PDF content")
	}
}
