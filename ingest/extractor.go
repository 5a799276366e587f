package ingest

import (
	"strings"

	"lorebase"
)

// Extractor converts raw content to plain text.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// PageExtractor is an optional capability for extractors that can return
// per-page text. When available, the ingestor normalizes page by page and
// keeps page markers for page-aware chunking.
type PageExtractor interface {
	ExtractPages(content []byte) ([]Page, error)
}

// SpanExtractor is an optional capability for extractors that can return
// positioned text spans. When available, the ingestor runs font-based
// structure detection instead of flat-text heading scanning.
type SpanExtractor interface {
	ExtractSpans(content []byte) ([]SpanPage, error)
}

// SectionExtractor is an optional capability for extractors that can return
// heading-delimited sections directly, e.g. from document style information.
// Sections feed hierarchical chunking without flat-text heading scanning.
type SectionExtractor interface {
	ExtractSections(content []byte) ([]*lorebase.Section, error)
}

// ContentType identifies the MIME type of content for extraction.
type ContentType string

const (
	TypePlainText ContentType = "text/plain"
	TypeHTML      ContentType = "text/html"
	TypeMarkdown  ContentType = "text/markdown"
	TypeCSV       ContentType = "text/csv"
	TypeJSON      ContentType = "application/json"
	TypePDF       ContentType = "application/pdf"
	TypeDOCX      ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ContentTypeFromExtension maps file extensions to content types.
func ContentTypeFromExtension(ext string) ContentType {
	switch strings.ToLower(ext) {
	case "md", "markdown":
		return TypeMarkdown
	case "html", "htm":
		return TypeHTML
	case "csv":
		return TypeCSV
	case "json":
		return TypeJSON
	case "pdf":
		return TypePDF
	case "docx":
		return TypeDOCX
	default:
		return TypePlainText
	}
}

// PlainTextExtractor returns content as-is.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}
