// Package html provides an HTML text extractor for the ingest pipeline.
//
// It uses go-shiori/go-readability so boilerplate (navigation, ads,
// footers) is dropped and only the readable article body reaches the
// chunkers.
package html

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"lorebase/ingest"
)

// Extractor implements ingest.Extractor for HTML documents.
type Extractor struct{}

// NewExtractor creates an HTML extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the readable text content of an HTML document.
func (e *Extractor) Extract(content []byte) (string, error) {
	// Ingested documents are local uploads; readability only needs a base
	// URL to resolve relative links it finds.
	base := &url.URL{Scheme: "file", Path: "/"}
	article, err := readability.FromReader(bytes.NewReader(content), base)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}

var _ ingest.Extractor = (*Extractor)(nil)
