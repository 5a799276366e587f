package ingest

import (
	"fmt"
	"strings"
	"testing"
)

func studentCSV(rows int) string {
	lines := []string{"Student Name,Course,Date,Grade"}
	for i := 1; i <= rows; i++ {
		lines = append(lines, fmt.Sprintf("Student %d,Math %d,2024-01-%02d,%d", i, i%3, i, 70+i))
	}
	return strings.Join(lines, "\n")
}

func TestCSVTwelveRowsSizeTwentyYieldsThreeChunks(t *testing.T) {
	chunks := NewCSVChunker().Split(studentCSV(12), &Options{Size: 20})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	wantRanges := [][2]int{{1, 5}, {6, 10}, {11, 12}}
	for i, ch := range chunks {
		csv := ch.Meta.CSV
		if csv == nil {
			t.Fatalf("chunk %d has no csv metadata", i)
		}
		if csv.RowStart != wantRanges[i][0] || csv.RowEnd != wantRanges[i][1] {
			t.Errorf("chunk %d rows %d..%d, want %d..%d",
				i, csv.RowStart, csv.RowEnd, wantRanges[i][0], wantRanges[i][1])
		}
		if !strings.HasPrefix(ch.Content, "Student Name,Course,Date,Grade\n") {
			t.Errorf("chunk %d missing header prefix", i)
		}
	}
	if chunks[2].Meta.CSV.Rows != 2 {
		t.Errorf("last chunk rows = %d, want 2", chunks[2].Meta.CSV.Rows)
	}
}

func TestCSVDefaultFiveRowsPerChunk(t *testing.T) {
	chunks := NewCSVChunker().Split(studentCSV(11), nil)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
}

func TestCSVRowIntegrity(t *testing.T) {
	chunks := NewCSVChunker().Split(studentCSV(12), &Options{Size: 20})
	var total int
	for _, ch := range chunks {
		rows := strings.Split(ch.Content, "\n")[1:]
		if len(rows) != ch.Meta.CSV.Rows {
			t.Errorf("content rows = %d, metadata rows = %d", len(rows), ch.Meta.CSV.Rows)
		}
		total += len(rows)
	}
	if total != 12 {
		t.Errorf("total rows across chunks = %d, want 12", total)
	}
}

func TestCSVEmptyInput(t *testing.T) {
	chunks := NewCSVChunker().Split("", nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	csv := chunks[0].Meta.CSV
	if csv == nil || csv.Rows != 0 || csv.HasHeader {
		t.Errorf("unexpected metadata: %+v", csv)
	}
}

func TestCSVHeaderOnly(t *testing.T) {
	chunks := NewCSVChunker().Split("name,score", nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	csv := chunks[0].Meta.CSV
	if !csv.HasHeader || csv.Rows != 0 {
		t.Errorf("unexpected metadata: %+v", csv)
	}
	if got := csv.Columns; len(got) != 2 || got[0] != "name" || got[1] != "score" {
		t.Errorf("columns = %v", got)
	}
}

func TestCSVQuotedCommaColumns(t *testing.T) {
	got := splitCSVFields(`"Last, First",Course,"Grade, Final"`)
	want := []string{"Last, First", "Course", "Grade, Final"}
	if len(got) != len(want) {
		t.Fatalf("fields = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCSVAnalysisMetadata(t *testing.T) {
	text := strings.Join([]string{
		"Student Name,Course,Date,Grade",
		"Alice,Algebra,2024-01-01,A",
		"Bob,Algebra,2024-01-02,B",
		"Alice,Biology,2024-01-03,A",
	}, "\n")
	chunks := NewCSVChunker().Split(text, nil)
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	csv := chunks[0].Meta.CSV
	if csv.SampleStudent != "Alice" {
		t.Errorf("sampleStudent = %q", csv.SampleStudent)
	}
	if csv.SampleCourse != "Algebra" {
		t.Errorf("sampleCourse = %q", csv.SampleCourse)
	}
	if csv.SampleResult != "A" {
		t.Errorf("sampleResult = %q", csv.SampleResult)
	}
	if !csv.HasDateData {
		t.Error("hasDateData = false")
	}
	if csv.UniqueStudents != 2 {
		t.Errorf("uniqueStudents = %d, want 2", csv.UniqueStudents)
	}
	if csv.UniqueCourses != 2 {
		t.Errorf("uniqueCourses = %d, want 2", csv.UniqueCourses)
	}
}

func TestCSVTinySizeFloorsAtOneRow(t *testing.T) {
	chunks := NewCSVChunker().Split(studentCSV(3), &Options{Size: 4})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3 (one row each)", len(chunks))
	}
}
