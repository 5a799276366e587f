package ingest

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"lorebase"
)

// Sliding-window defaults, in tokens.
const (
	windowDefaultSize    = 300
	windowDefaultOverlap = 50
)

// SlidingWindowChunker emits fixed-width overlapping token windows. Windows
// cover the entire input with no gaps; consecutive windows overlap by
// exactly the configured token count, except the final window which may be
// shorter.
type SlidingWindowChunker struct {
	newTokenizer TokenizerFactory
	logger       *slog.Logger
}

var _ Splitter = (*SlidingWindowChunker)(nil)

// WindowOption configures a SlidingWindowChunker.
type WindowOption func(*SlidingWindowChunker)

// WithTokenizerFactory overrides the tokenizer used per Split call.
func WithTokenizerFactory(f TokenizerFactory) WindowOption {
	return func(c *SlidingWindowChunker) { c.newTokenizer = f }
}

// WithWindowLogger sets a structured logger for fallback diagnostics.
func WithWindowLogger(l *slog.Logger) WindowOption {
	return func(c *SlidingWindowChunker) { c.logger = l }
}

// NewSlidingWindowChunker creates a token-aware sliding-window chunker.
// The default tokenizer is the cl100k_base BPE encoding.
func NewSlidingWindowChunker(opts ...WindowOption) *SlidingWindowChunker {
	c := &SlidingWindowChunker{
		newTokenizer: NewTiktokenFactory("cl100k_base"),
		logger:       lorebase.NopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Split tokenizes the full text and emits one chunk per window position.
// An explicit positive size is honored as given (default 300); overlap
// floors at 0 and caps at size-1 (default 50); the stride is
// max(1, size-overlap).
func (c *SlidingWindowChunker) Split(text string, opts *Options) []lorebase.Chunk {
	tok, err := c.acquire()
	if err != nil {
		return nil
	}
	defer tok.Close()

	tokens := tok.Encode(text)

	size := opts.size(windowDefaultSize)
	overlap := opts.overlap(windowDefaultOverlap)
	if overlap > size-1 {
		overlap = size - 1
	}
	step := size - overlap
	if step < 1 {
		step = 1
	}

	var out []lorebase.Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		slice := tokens[start:end]
		content := decodeValid(tok, slice)

		chunk := lorebase.NewChunk(content, lorebase.ChunkMeta{Type: "window"})
		chunk.TokenCount = len(slice)
		out = append(out, chunk)

		if end >= len(tokens) {
			break
		}
	}
	return out
}

// acquire builds a tokenizer for this call, falling back to the word
// tokenizer when the configured encoding cannot be loaded (for example, no
// network access to fetch BPE data). The fallback is logged, never silent.
func (c *SlidingWindowChunker) acquire() (Tokenizer, error) {
	tok, err := c.newTokenizer()
	if err == nil {
		return tok, nil
	}
	c.logger.Warn("sliding window: tokenizer unavailable, falling back to word tokens", "error", err)
	return &wordTokenizer{}, nil
}

// decodeValid decodes a token slice, forcing the result to valid UTF-8 so a
// window boundary that lands mid-codepoint never surfaces binary garbage as
// chunk content.
func decodeValid(tok Tokenizer, ids []int) string {
	s := tok.Decode(ids)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return s
}
