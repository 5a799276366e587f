package ingest

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer encodes text to token ids and decodes slices of ids back to
// text. A Tokenizer may hold state scoped to one document; Close releases
// it and must be called regardless of success or failure.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
	Close()
}

// TokenizerFactory produces a fresh Tokenizer per Split call so acquisition
// and release stay scoped to one document.
type TokenizerFactory func() (Tokenizer, error)

// --- tiktoken ---

// tiktokenTokenizer wraps a BPE encoding from tiktoken-go.
type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenFactory returns a factory for BPE tokenizers using the named
// encoding (e.g. "cl100k_base", "o200k_base").
func NewTiktokenFactory(encoding string) TokenizerFactory {
	return func() (Tokenizer, error) {
		enc, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, fmt.Errorf("tiktoken encoding %q: %w", encoding, err)
		}
		return &tiktokenTokenizer{enc: enc}, nil
	}
}

// NewModelTokenizerFactory returns a factory for BPE tokenizers matched to a
// model name (e.g. "gpt-4o-mini").
func NewModelTokenizerFactory(model string) TokenizerFactory {
	return func() (Tokenizer, error) {
		enc, err := tiktoken.EncodingForModel(model)
		if err != nil {
			return nil, fmt.Errorf("tiktoken model %q: %w", model, err)
		}
		return &tiktokenTokenizer{enc: enc}, nil
	}
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(ids []int) string {
	return t.enc.Decode(ids)
}

// Close is a no-op: tiktoken encodings are cached process-wide.
func (t *tiktokenTokenizer) Close() {}

// --- word tokenizer ---

// wordTokenizer treats whitespace-delimited words as tokens. It is fully
// deterministic and needs no external data, so it serves as the offline
// fallback when a BPE encoding cannot be loaded, and as the test tokenizer.
// State is per-document: Encode stores the word list that Decode indexes.
type wordTokenizer struct {
	words []string
}

// NewWordTokenizerFactory returns a factory for word-level tokenizers.
func NewWordTokenizerFactory() TokenizerFactory {
	return func() (Tokenizer, error) { return &wordTokenizer{}, nil }
}

func (t *wordTokenizer) Encode(text string) []int {
	t.words = strings.Fields(text)
	ids := make([]int, len(t.words))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (t *wordTokenizer) Decode(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(t.words) {
			parts = append(parts, t.words[id])
		}
	}
	return strings.Join(parts, " ")
}

func (t *wordTokenizer) Close() { t.words = nil }
