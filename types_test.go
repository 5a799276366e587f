package lorebase

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewChunkRecomputesCharCount(t *testing.T) {
	c := NewChunk("héllo", ChunkMeta{})
	if c.CharCount != 5 {
		t.Errorf("char count = %d, want 5 (runes, not bytes)", c.CharCount)
	}
}

func TestChunkEmpty(t *testing.T) {
	if !NewChunk("  \n\t ", ChunkMeta{}).Empty() {
		t.Error("whitespace-only chunk must be empty")
	}
	if NewChunk("x", ChunkMeta{}).Empty() {
		t.Error("non-empty chunk reported empty")
	}
}

func TestChunkMetaPathString(t *testing.T) {
	m := ChunkMeta{Path: []string{"Ch. 1", "Locations in the City"}}
	if got := m.PathString(); got != "Ch. 1 > Locations in the City" {
		t.Errorf("got %q", got)
	}
}

func TestChunkMetaJSONOmitsUnsetStrategyFields(t *testing.T) {
	data, err := json.Marshal(ChunkMeta{Path: []string{"Ch. 1"}})
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, key := range []string{`"restaurant"`, `"csv"`, `"pageStart"`} {
		if strings.Contains(s, key) {
			t.Errorf("unset field %s serialized: %s", key, s)
		}
	}
}
