package ingest

import (
	"testing"
)

func TestEntityChunkerResolvesAliasesToCanonicalNames(t *testing.T) {
	text := "Chipotle\nGreat bowls\n\nPanera\nGood soup"
	chunks := NewEntitySectionChunker().Split(text, nil)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if got := chunks[0].Content; got != "Chipotle Mexican Grill\n\nGreat bowls" {
		t.Errorf("chunk 0 content = %q", got)
	}
	if got := chunks[1].Content; got != "Panera Bread\n\nGood soup" {
		t.Errorf("chunk 1 content = %q", got)
	}
	if chunks[0].Meta.Restaurant != "Chipotle Mexican Grill" {
		t.Errorf("chunk 0 restaurant = %q", chunks[0].Meta.Restaurant)
	}
	if chunks[1].Meta.Restaurant != "Panera Bread" {
		t.Errorf("chunk 1 restaurant = %q", chunks[1].Meta.Restaurant)
	}
}

func TestEntityChunkerNoHeadingsYieldsNothing(t *testing.T) {
	text := "A long essay about sandwiches that never names a known chain."
	if chunks := NewEntitySectionChunker().Split(text, nil); len(chunks) != 0 {
		t.Fatalf("chunks = %d, want 0", len(chunks))
	}
}

func TestEntityChunkerHeadingMustBeWholeLine(t *testing.T) {
	text := "I went to Chipotle yesterday.\nThe food was fine."
	if chunks := NewEntitySectionChunker().Split(text, nil); len(chunks) != 0 {
		t.Fatalf("inline mention treated as heading: %d chunks", len(chunks))
	}
}

func TestEntityChunkerCaseInsensitiveHeadings(t *testing.T) {
	text := "CHICK FIL A\nSpicy deluxe is the move.\n\njersey mikes\nNumber 13, Mike's Way."
	chunks := NewEntitySectionChunker().Split(text, nil)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if chunks[0].Meta.Restaurant != "Chick-fil-A" {
		t.Errorf("chunk 0 restaurant = %q", chunks[0].Meta.Restaurant)
	}
	if chunks[1].Meta.Restaurant != "Jersey Mike's Subs" {
		t.Errorf("chunk 1 restaurant = %q", chunks[1].Meta.Restaurant)
	}
}

func TestEntityChunkerHeadingOnlySectionKeepsName(t *testing.T) {
	chunks := NewEntitySectionChunker().Split("Shake Shack\n", nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if got := chunks[0].Content; got != "Shake Shack" {
		t.Errorf("content = %q", got)
	}
}

func TestEntityChunkerCustomRegistry(t *testing.T) {
	c := NewEntitySectionChunker(Entity{Name: "Sweetgreen", Aliases: []string{"Sweetgreen", "SG"}})
	chunks := c.Split("SG\nHarvest bowl is solid.", nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if chunks[0].Meta.Restaurant != "Sweetgreen" {
		t.Errorf("restaurant = %q", chunks[0].Meta.Restaurant)
	}
	if got := c.Names(); len(got) != 1 || got[0] != "Sweetgreen" {
		t.Errorf("names = %v", got)
	}
}

func TestEntityChunkerNormalizesWindowsNewlines(t *testing.T) {
	text := "Five Guys\r\nBurgers and a mountain of fries.\r\n\r\n\r\nMOD\r\nBuild your own pizza."
	chunks := NewEntitySectionChunker().Split(text, nil)
	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, want 2", len(chunks))
	}
	if got := chunks[1].Content; got != "MOD Pizza\n\nBuild your own pizza." {
		t.Errorf("chunk 1 content = %q", got)
	}
}
