// Package pdf provides a PDF text extractor for the ingest pipeline.
//
// It uses ledongthuc/pdf (BSD-3, pure Go, no CGO) for text extraction.
// This is a separate subpackage so that the dependency is only pulled in
// by users who need PDF support.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"lorebase/ingest"
)

// Extractor implements ingest.Extractor, ingest.PageExtractor, and
// ingest.SpanExtractor for PDF documents. Unreadable pages are skipped, not
// fatal: a partially damaged PDF still yields the pages that parse.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract extracts plain text from a PDF document.
func (e *Extractor) Extract(content []byte) (string, error) {
	pages, err := e.ExtractPages(content)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, p.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")), nil
}

// ExtractPages extracts text page by page, keeping 1-indexed page numbers.
func (e *Extractor) ExtractPages(content []byte) ([]ingest.Page, error) {
	r, err := open(content)
	if err != nil {
		return nil, err
	}

	var pages []ingest.Page
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, ingest.Page{Number: i, Text: text})
	}
	return pages, nil
}

// ExtractSpans extracts positioned text runs with their rendered font
// sizes, for font-based structure detection.
func (e *Extractor) ExtractSpans(content []byte) ([]ingest.SpanPage, error) {
	r, err := open(content)
	if err != nil {
		return nil, err
	}

	var out []ingest.SpanPage
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		spans := make([]ingest.Span, 0, len(page.Content().Text))
		for _, t := range page.Content().Text {
			if t.S == "" {
				continue
			}
			spans = append(spans, ingest.Span{
				Text: t.S,
				X:    t.X,
				Y:    t.Y,
				Size: t.FontSize,
			})
		}
		if len(spans) == 0 {
			continue
		}
		out = append(out, ingest.SpanPage{
			Number: i,
			Width:  pageWidth(page),
			Spans:  spans,
		})
	}
	return out, nil
}

func open(content []byte) (*pdf.Reader, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

// pageWidth reads the MediaBox width, defaulting to US Letter points when
// the box is missing or malformed.
func pageWidth(page pdf.Page) float64 {
	const letterWidth = 612.0

	box := page.V.Key("MediaBox")
	if box.Kind() != pdf.Array || box.Len() < 4 {
		return letterWidth
	}
	llx := box.Index(0).Float64()
	urx := box.Index(2).Float64()
	if w := urx - llx; w > 0 {
		return w
	}
	return letterWidth
}
