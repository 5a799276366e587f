package ingest

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func newWordWindowChunker() *SlidingWindowChunker {
	return NewSlidingWindowChunker(WithTokenizerFactory(NewWordTokenizerFactory()))
}

func TestWindowStartsAndFinalShortWindow(t *testing.T) {
	// 25 tokens, size 10, overlap 3: starts at 0, 7, 14, 21; the last
	// window is short, covering [21, 25).
	chunks := newWordWindowChunker().Split(wordText(25), &Options{Size: 10, Overlap: 3})
	if len(chunks) != 4 {
		t.Fatalf("chunks = %d, want 4", len(chunks))
	}
	wantFirst := []string{"w0", "w7", "w14", "w21"}
	wantCount := []int{10, 10, 10, 4}
	for i, ch := range chunks {
		first := strings.Fields(ch.Content)[0]
		if first != wantFirst[i] {
			t.Errorf("chunk %d starts at %q, want %q", i, first, wantFirst[i])
		}
		if ch.TokenCount != wantCount[i] {
			t.Errorf("chunk %d tokens = %d, want %d", i, ch.TokenCount, wantCount[i])
		}
	}
	if last := chunks[3].Content; last != "w21 w22 w23 w24" {
		t.Errorf("last chunk = %q", last)
	}
}

func TestWindowFullCoverageWithOverlap(t *testing.T) {
	chunks := newWordWindowChunker().Split(wordText(100), &Options{Size: 60, Overlap: 10})
	seen := map[string]bool{}
	for _, ch := range chunks {
		for _, w := range strings.Fields(ch.Content) {
			seen[w] = true
		}
	}
	for i := 0; i < 100; i++ {
		if !seen[fmt.Sprintf("w%d", i)] {
			t.Fatalf("token w%d missing from all chunks", i)
		}
	}
	// Consecutive chunks share exactly overlap tokens.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		cur := strings.Fields(chunks[i].Content)
		shared := prev[len(prev)-10:]
		for j, w := range shared {
			if cur[j] != w {
				t.Fatalf("chunk %d does not begin with previous tail", i)
			}
		}
	}
}

func TestWindowDefaultSize(t *testing.T) {
	chunks := newWordWindowChunker().Split(wordText(400), nil)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0].TokenCount != 300 {
		t.Errorf("first chunk tokens = %d, want 300", chunks[0].TokenCount)
	}
	// Second window starts at 250 (stride 300-50) and spans the rest.
	if chunks[1].TokenCount != 150 {
		t.Errorf("second chunk tokens = %d, want 150", chunks[1].TokenCount)
	}
}

func TestWindowOverlapCappedBelowSize(t *testing.T) {
	// Overlap >= size would stall the scan; it is capped at size-1.
	chunks := newWordWindowChunker().Split(wordText(120), &Options{Size: 50, Overlap: 200})
	if len(chunks) == 0 {
		t.Fatal("no chunks")
	}
	starts := map[string]bool{}
	for _, ch := range chunks {
		first := strings.Fields(ch.Content)[0]
		if starts[first] {
			t.Fatalf("window start %q repeated, scan stalled", first)
		}
		starts[first] = true
	}
}

func TestWindowShortInputSingleChunk(t *testing.T) {
	chunks := newWordWindowChunker().Split("only a few words here", nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "only a few words here" {
		t.Errorf("content = %q", chunks[0].Content)
	}
	if chunks[0].Meta.Type != "window" {
		t.Errorf("type = %q, want window", chunks[0].Meta.Type)
	}
}

func TestWindowEmptyInput(t *testing.T) {
	if chunks := newWordWindowChunker().Split("", nil); len(chunks) != 0 {
		t.Fatalf("chunks = %d, want 0", len(chunks))
	}
}

func TestWindowFallsBackWhenFactoryFails(t *testing.T) {
	c := NewSlidingWindowChunker(WithTokenizerFactory(func() (Tokenizer, error) {
		return nil, errors.New("encoding unavailable")
	}))
	chunks := c.Split(wordText(60), &Options{Size: 50, Overlap: 0})
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2 from fallback tokenizer", len(chunks))
	}
}
