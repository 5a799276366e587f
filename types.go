package lorebase

import (
	"strings"
	"unicode/utf8"
)

// --- Domain types ---

// Document is a stored source document (one upload).
type Document struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	CreatedAt int64  `json:"created_at"`
}

// Chunk is the atomic retrievable unit produced by a chunking strategy.
// CharCount is always recomputed from Content, never trusted from input.
type Chunk struct {
	Content    string    `json:"content"`
	CharCount  int       `json:"char_count"`
	TokenCount int       `json:"token_count,omitempty"`
	Meta       ChunkMeta `json:"metadata"`
}

// NewChunk builds a Chunk with CharCount derived from content.
func NewChunk(content string, meta ChunkMeta) Chunk {
	return Chunk{
		Content:   content,
		CharCount: utf8.RuneCountInString(content),
		Meta:      meta,
	}
}

// Empty reports whether the chunk has no content after trimming.
// Empty chunks must be dropped before embedding.
func (c Chunk) Empty() bool {
	return strings.TrimSpace(c.Content) == ""
}

// Content classification tags assigned by the hierarchical chunker.
const (
	ContentGeneric   = "generic"
	ContentStatBlock = "statBlock"
	ContentReadAloud = "readAloud"
	ContentTable     = "table"
)

// ChunkMeta carries per-chunk metadata shared across chunking strategies.
// Strategy-specific fields stay zero for strategies that do not set them.
type ChunkMeta struct {
	// Type tags the producing strategy ("csv", "window", ...). Optional.
	Type string `json:"type,omitempty"`

	// Path is the hierarchical location, e.g. ["Ch. 1", "Locations in the City"].
	Path []string `json:"path,omitempty"`

	// ContentType is one of the Content* classification tags.
	ContentType string `json:"contentType,omitempty"`

	// PageStart and PageEnd are 1-indexed inclusive page bounds.
	PageStart int `json:"pageStart,omitempty"`
	PageEnd   int `json:"pageEnd,omitempty"`

	// Order is the monotonic emission index within one document.
	Order int `json:"order"`

	// Restaurant is the canonical entity name set by the entity-section chunker.
	Restaurant string `json:"restaurant,omitempty"`

	// CSV holds row-batch metadata set by the CSV chunker.
	CSV *CSVMeta `json:"csv,omitempty"`
}

// PathString returns Meta.Path joined with " > ", the form the pre-filter
// matches prefixes against.
func (m ChunkMeta) PathString() string {
	return strings.Join(m.Path, " > ")
}

// CSVMeta describes one CSV row batch.
type CSVMeta struct {
	HasHeader bool     `json:"hasHeader"`
	Columns   []string `json:"columns,omitempty"`
	Rows      int      `json:"rows"`
	RowStart  int      `json:"rowStart,omitempty"` // 1-indexed
	RowEnd    int      `json:"rowEnd,omitempty"`

	// Best-effort content analysis over the batch.
	SampleStudent  string `json:"sampleStudent,omitempty"`
	SampleCourse   string `json:"sampleCourse,omitempty"`
	SampleResult   string `json:"sampleResult,omitempty"`
	HasDateData    bool   `json:"hasDateData,omitempty"`
	UniqueStudents int    `json:"uniqueStudents,omitempty"`
	UniqueCourses  int    `json:"uniqueCourses,omitempty"`
}

// Section is an intermediate grouping used by structure-aware chunking:
// built during structure detection, consumed once to emit chunks, then
// discarded. Trees are at most two levels deep (chapter, subhead).
type Section struct {
	Title     string
	Path      []string
	PageStart int
	PageEnd   int
	Text      string
	Children  []*Section
}

// ChunkRecord is the persisted form of an embedded chunk. Records are
// created in bulk at ingestion time and read-only afterward, except for
// tenant-scoped bulk deletion.
type ChunkRecord struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	AccountID  string    `json:"account_id"`
	Content    string    `json:"content"`
	Meta       ChunkMeta `json:"metadata"`
	Embedding  []float32 `json:"-"`
	CreatedAt  int64     `json:"created_at"`
}

// ScoredRecord pairs a ChunkRecord with its similarity score.
type ScoredRecord struct {
	ChunkRecord
	Score float32 `json:"score"`
}
