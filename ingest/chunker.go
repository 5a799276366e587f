// Package ingest turns raw document bytes into embedded, retrievable chunks.
//
// The pipeline is: extract (format-specific) → normalize → optionally detect
// structure → split into chunks → embed → store. Splitting is polymorphic
// over a single Split method; four interchangeable strategies cover token
// windows, heading-aware hierarchy, CSV row batches, and entity sections.
package ingest

import (
	"strings"

	"lorebase"
)

// Splitter turns normalized text into an ordered sequence of chunks.
// Implementations always recompute character counts from content. Callers
// must drop chunks that are empty after trimming before embedding them.
type Splitter interface {
	Split(text string, opts *Options) []lorebase.Chunk
}

// Options configures a single Split call. Size and Overlap are measured in
// whichever unit a strategy treats as primary: tokens for token-aware
// strategies, rows for CSV. Nil or zero fields fall back to per-strategy
// defaults.
type Options struct {
	Size    int
	Overlap int
}

func (o *Options) size(def int) int {
	if o == nil || o.Size <= 0 {
		return def
	}
	return o.Size
}

func (o *Options) overlap(def int) int {
	if o == nil {
		return def
	}
	if o.Overlap < 0 {
		return 0
	}
	if o.Overlap == 0 && o.Size <= 0 {
		// Untouched options object: treat as defaults.
		return def
	}
	return o.Overlap
}

// estTokens approximates a token count as ceil(chars/4). The hierarchical
// chunker uses it in place of a real tokenizer; the atomic-block and
// overlap-carry behavior does not depend on the estimate being exact.
func estTokens(s string) int {
	return (len(s) + 3) / 4
}

// splitParagraphs splits on blank-line boundaries and trims each paragraph.
func splitParagraphs(s string) []string {
	var paras []string
	for _, p := range rxBlankLines.Split(s, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}
