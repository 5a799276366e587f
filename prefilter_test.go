package lorebase

import (
	"regexp"
	"testing"
)

func TestPreFilterNoMatchMeansAllowAll(t *testing.T) {
	f := NewPreFilter()
	res := f.Apply("what is the weather like today")
	if len(res.AllowPrefixes) != 0 {
		t.Fatalf("expected empty allow set, got %v", res.AllowPrefixes)
	}
	if len(res.Reasons) != 0 {
		t.Errorf("expected no reasons, got %v", res.Reasons)
	}

	// Empty allow set passes every path unchanged.
	if !PathAllowed([]string{"Ch. 2", "Anywhere"}, res.AllowPrefixes) {
		t.Error("empty allow set must pass all paths")
	}
	records := []ScoredRecord{
		{ChunkRecord: ChunkRecord{Meta: ChunkMeta{Path: []string{"Ch. 1"}}}},
		{ChunkRecord: ChunkRecord{Meta: ChunkMeta{Path: []string{"Appendix D"}}}},
	}
	kept := FilterScored(records, res.AllowPrefixes)
	if len(kept) != len(records) {
		t.Errorf("empty allow set changed candidate set: %d != %d", len(kept), len(records))
	}
}

func TestPreFilterUnionsAllMatchingRules(t *testing.T) {
	f := NewPreFilter()
	res := f.Apply("which guide knows the random encounter tables?")
	want := map[string]bool{
		"Appendix B":             true,
		"Appendix E":             true,
		"Ch. 1 > Finding a Guide": true,
	}
	if len(res.AllowPrefixes) != len(want) {
		t.Fatalf("got %v", res.AllowPrefixes)
	}
	for _, p := range res.AllowPrefixes {
		if !want[p] {
			t.Errorf("unexpected prefix %q", p)
		}
	}
	if len(res.Reasons) != 2 {
		t.Errorf("expected 2 reasons, got %v", res.Reasons)
	}
}

func TestPreFilterPortNyanzaru(t *testing.T) {
	f := NewPreFilter()
	res := f.Apply("who are the merchant princes of Port Nyanzaru?")
	found := false
	for _, p := range res.AllowPrefixes {
		if p == "Ch. 1 > Locations in the City" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected city locations prefix, got %v", res.AllowPrefixes)
	}
}

func TestPathAllowedPrefixSemantics(t *testing.T) {
	allow := []string{"Ch. 1 > Locations in the City"}

	if !PathAllowed([]string{"Ch. 1", "Locations in the City", "Goldenthrone"}, allow) {
		t.Error("deeper path under allowed prefix must pass")
	}
	if PathAllowed([]string{"Ch. 1", "Finding a Guide"}, allow) {
		t.Error("sibling path must not pass")
	}
	if PathAllowed(nil, allow) {
		t.Error("empty path must not pass a non-empty allow set")
	}
}

func TestPreFilterCustomRules(t *testing.T) {
	f := NewPreFilter(PreFilterRule{
		Name:     "menus",
		Pattern:  regexp.MustCompile(`(?i)\bmenu\b`),
		Prefixes: []string{"Menus"},
	})
	res := f.Apply("show me the MENU")
	if len(res.AllowPrefixes) != 1 || res.AllowPrefixes[0] != "Menus" {
		t.Fatalf("got %v", res.AllowPrefixes)
	}
}

func TestFilterScoredRestrictsByPath(t *testing.T) {
	records := []ScoredRecord{
		{ChunkRecord: ChunkRecord{ID: "a", Meta: ChunkMeta{Path: []string{"Appendix D", "Zorbo"}}}, Score: 0.9},
		{ChunkRecord: ChunkRecord{ID: "b", Meta: ChunkMeta{Path: []string{"Ch. 2"}}}, Score: 0.8},
	}
	kept := FilterScored(records, []string{"Appendix D"})
	if len(kept) != 1 || kept[0].ID != "a" {
		t.Fatalf("got %+v", kept)
	}
}
