package ingest

import (
	"strings"

	"lorebase"
)

const csvDefaultRowsPerChunk = 5

// CSVChunker batches CSV rows without ever splitting a row across chunks.
// The header line is repeated at the top of every chunk so each batch stays
// self-describing. Options.Size is interpreted as a token budget and mapped
// to rows via size/4; the default is 5 rows per chunk.
type CSVChunker struct{}

var _ Splitter = (*CSVChunker)(nil)

// NewCSVChunker creates a CSV chunker.
func NewCSVChunker() *CSVChunker { return &CSVChunker{} }

func (c *CSVChunker) Split(text string, opts *Options) []lorebase.Chunk {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return []lorebase.Chunk{lorebase.NewChunk(text, lorebase.ChunkMeta{
			Type: "csv",
			CSV:  &lorebase.CSVMeta{Rows: 0},
		})}
	}

	header := lines[0]
	dataRows := lines[1:]
	columns := splitCSVFields(header)

	if len(dataRows) == 0 {
		return []lorebase.Chunk{lorebase.NewChunk(header, lorebase.ChunkMeta{
			Type: "csv",
			CSV: &lorebase.CSVMeta{
				HasHeader: true,
				Columns:   columns,
				Rows:      0,
			},
		})}
	}

	maxRows := csvDefaultRowsPerChunk
	if opts != nil && opts.Size > 0 {
		maxRows = opts.Size / 4
		if maxRows < 1 {
			maxRows = 1
		}
	}

	var out []lorebase.Chunk
	for i := 0; i < len(dataRows); i += maxRows {
		end := i + maxRows
		if end > len(dataRows) {
			end = len(dataRows)
		}
		batch := dataRows[i:end]
		content := header + "\n" + strings.Join(batch, "\n")

		meta := analyzeCSVBatch(batch, columns)
		meta.HasHeader = true
		meta.Columns = columns
		meta.Rows = len(batch)
		meta.RowStart = i + 1
		meta.RowEnd = end

		out = append(out, lorebase.NewChunk(content, lorebase.ChunkMeta{
			Type: "csv",
			CSV:  meta,
		}))
	}
	return out
}

// splitCSVFields splits one CSV line into trimmed values, honoring double
// quotes around commas. A trailing empty field is dropped.
func splitCSVFields(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if last := strings.TrimSpace(current.String()); last != "" {
		fields = append(fields, last)
	}
	return fields
}

// columnIndex finds the first column whose name contains any of the needles
// (case-insensitive). Returns -1 when none match.
func columnIndex(columns []string, needles ...string) int {
	for i, col := range columns {
		lower := strings.ToLower(col)
		for _, n := range needles {
			if strings.Contains(lower, n) {
				return i
			}
		}
	}
	return -1
}

// analyzeCSVBatch extracts sample values and unique counts for recognized
// column kinds (student/name, course, date, result/grade).
func analyzeCSVBatch(rows []string, columns []string) *lorebase.CSVMeta {
	meta := &lorebase.CSVMeta{}
	if len(rows) == 0 {
		return meta
	}

	first := splitCSVFields(rows[0])
	fieldAt := func(values []string, idx int) string {
		if idx >= 0 && idx < len(values) {
			return values[idx]
		}
		return ""
	}

	studentIdx := columnIndex(columns, "student", "name")
	courseIdx := columnIndex(columns, "course")
	resultIdx := columnIndex(columns, "result", "grade")

	meta.SampleStudent = fieldAt(first, studentIdx)
	meta.SampleCourse = fieldAt(first, courseIdx)
	meta.SampleResult = fieldAt(first, resultIdx)
	meta.HasDateData = columnIndex(columns, "date") >= 0

	if studentIdx >= 0 || courseIdx >= 0 {
		students := map[string]struct{}{}
		courses := map[string]struct{}{}
		for _, row := range rows {
			values := splitCSVFields(row)
			if v := fieldAt(values, studentIdx); v != "" {
				students[v] = struct{}{}
			}
			if v := fieldAt(values, courseIdx); v != "" {
				courses[v] = struct{}{}
			}
		}
		meta.UniqueStudents = len(students)
		meta.UniqueCourses = len(courses)
	}
	return meta
}
