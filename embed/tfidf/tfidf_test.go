package tfidf

import (
	"context"
	"testing"

	"lorebase"
)

var corpus = []string{
	"the jungle hides ancient ruins",
	"merchant princes rule the port city",
	"ancient ruins hold forgotten treasure",
}

func TestPrepareBuildsVocabulary(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() == 0 {
		t.Fatal("dimensions = 0 after prepare")
	}

	vecs, err := e.Embed(context.Background(), []string{"ancient ruins"})
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != 1 || len(vecs[0]) != e.Dimensions() {
		t.Fatalf("vector shape %dx%d, want 1x%d", len(vecs), len(vecs[0]), e.Dimensions())
	}

	var nonzero int
	for _, v := range vecs[0] {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero != 2 {
		t.Errorf("nonzero components = %d, want 2", nonzero)
	}
}

func TestEmbedVectorsAreUnitNorm(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatal(err)
	}
	vecs, err := e.Embed(context.Background(), []string{"jungle ruins treasure"})
	if err != nil {
		t.Fatal(err)
	}
	if got := lorebase.Cosine(vecs[0], vecs[0]); got < 0.999 || got > 1.001 {
		t.Errorf("self-cosine = %v, want 1", got)
	}
}

func TestSimilarTextsScoreHigherThanUnrelated(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatal(err)
	}
	vecs, err := e.Embed(context.Background(), []string{
		"ancient ruins",
		"ancient ruins hold forgotten treasure",
		"merchant princes rule the port city",
	})
	if err != nil {
		t.Fatal(err)
	}
	related := lorebase.Cosine(vecs[0], vecs[1])
	unrelated := lorebase.Cosine(vecs[0], vecs[2])
	if related <= unrelated {
		t.Errorf("related = %v not above unrelated = %v", related, unrelated)
	}
}

func TestEmbedAutoPreparesFromFirstBatch(t *testing.T) {
	e := NewEmbedder()
	vecs, err := e.Embed(context.Background(), corpus)
	if err != nil {
		t.Fatal(err)
	}
	if len(vecs) != len(corpus) {
		t.Fatalf("vectors = %d, want %d", len(vecs), len(corpus))
	}
	if e.Dimensions() == 0 {
		t.Error("vocabulary not built from first batch")
	}
}

func TestEmbedOutOfVocabularyIsZero(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare(corpus); err != nil {
		t.Fatal(err)
	}
	vecs, err := e.Embed(context.Background(), []string{"zeppelin quartz"})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs[0] {
		if v != 0 {
			t.Fatalf("component %d = %v, want all zeros", i, v)
		}
	}
}

func TestPrepareEmptyCorpus(t *testing.T) {
	if err := NewEmbedder().Prepare(nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestStopwordsExcludedFromVocabulary(t *testing.T) {
	e := NewEmbedder()
	if err := e.Prepare([]string{"the and of jungle"}); err != nil {
		t.Fatal(err)
	}
	if e.Dimensions() != 1 {
		t.Errorf("dimensions = %d, want 1 (only %q)", e.Dimensions(), "jungle")
	}
}
