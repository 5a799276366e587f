// Package docx provides a DOCX text extractor for the ingest pipeline.
//
// It parses the ZIP-based OOXML format to extract paragraphs, headings, and
// tables. Pure Go, no CGO. Paragraphs styled Heading* delimit sections, so
// DOCX content flows into hierarchical chunking with its structure intact.
//
// Usage:
//
//	ingestor := ingest.NewIngestor(store, embedding,
//	    ingest.WithExtractor(ingest.TypeDOCX, docx.NewExtractor()),
//	)
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"lorebase"
	"lorebase/ingest"
)

// Compile-time interface checks.
var _ ingest.Extractor = (*Extractor)(nil)
var _ ingest.SectionExtractor = (*Extractor)(nil)

// Extractor implements ingest.Extractor and ingest.SectionExtractor for
// DOCX documents. It streams OOXML tokens without loading the full DOM
// tree into memory.
type Extractor struct{}

// NewExtractor creates a DOCX extractor.
func NewExtractor() *Extractor { return &Extractor{} }

// Extract extracts plain text from a DOCX document. Tables are converted
// to labeled "Header: Value" rows.
func (e *Extractor) Extract(content []byte) (string, error) {
	text, _, err := parse(content)
	return text, err
}

// ExtractSections extracts heading-delimited sections. Paragraphs with a
// Heading* style open a new section; body paragraphs accumulate under the
// most recent heading. Returns nil when the document has no headings.
func (e *Extractor) ExtractSections(content []byte) ([]*lorebase.Section, error) {
	_, sections, err := parse(content)
	return sections, err
}

func parse(content []byte) (string, []*lorebase.Section, error) {
	if len(content) == 0 {
		return "", nil, fmt.Errorf("empty docx content")
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", nil, fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", nil, fmt.Errorf("missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()
	docData, err := io.ReadAll(rc)
	if err != nil {
		return "", nil, fmt.Errorf("read document.xml: %w", err)
	}

	return parseDocument(docData)
}

// parseState tracks the streaming XML decoder state.
type parseState struct {
	text strings.Builder

	// section tracking
	sections []*lorebase.Section
	current  *lorebase.Section
	body     strings.Builder

	// paragraph tracking
	inParagraph    bool
	inRun          bool
	currentStyle   string
	paragraphTexts []string

	// table tracking
	inTable      bool
	inTableRow   bool
	tableHeaders []string
	tableRowIdx  int
	cellTexts    []string
	currentCell  strings.Builder
}

// parseDocument streams through the OOXML tokens in document.xml and builds
// flat text plus heading-delimited sections.
func parseDocument(data []byte) (string, []*lorebase.Section, error) {
	s := &parseState{}
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.handleStart(t)
		case xml.EndElement:
			s.handleEnd(t)
		case xml.CharData:
			s.handleCharData(t)
		}
	}

	s.closeSection()
	return strings.TrimSpace(s.text.String()), s.sections, nil
}

func (s *parseState) handleStart(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		s.inParagraph = true
		s.currentStyle = ""
		s.paragraphTexts = nil
	case "pStyle":
		for _, attr := range t.Attr {
			if attr.Name.Local == "val" {
				s.currentStyle = attr.Value
			}
		}
	case "r":
		s.inRun = true
	case "tbl":
		s.inTable = true
		s.tableHeaders = nil
		s.tableRowIdx = 0
	case "tr":
		s.inTableRow = true
		s.cellTexts = nil
	case "tc":
		s.currentCell.Reset()
	}
}

func (s *parseState) handleEnd(t xml.EndElement) {
	switch t.Name.Local {
	case "r":
		s.inRun = false
	case "tc":
		s.cellTexts = append(s.cellTexts, strings.TrimSpace(s.currentCell.String()))
	case "tr":
		s.inTableRow = false
		if !s.inTable {
			return
		}
		if s.tableRowIdx == 0 {
			s.tableHeaders = make([]string, len(s.cellTexts))
			copy(s.tableHeaders, s.cellTexts)
		} else {
			s.emitTableRow()
		}
		s.tableRowIdx++
	case "tbl":
		s.inTable = false
	case "p":
		s.endParagraph()
	}
}

func (s *parseState) handleCharData(data xml.CharData) {
	content := string(data)
	if s.inTable && s.inTableRow {
		s.currentCell.WriteString(content)
		return
	}
	if s.inParagraph && s.inRun {
		s.paragraphTexts = append(s.paragraphTexts, content)
	}
}

// emitTableRow writes a data row in "Header: Value" labeled format.
func (s *parseState) emitTableRow() {
	var fields []string
	for i, val := range s.cellTexts {
		val = strings.TrimSpace(val)
		if val == "" {
			continue
		}
		header := ""
		if i < len(s.tableHeaders) {
			header = s.tableHeaders[i]
		}
		if header != "" {
			fields = append(fields, fmt.Sprintf("%s: %s", header, val))
		} else {
			fields = append(fields, val)
		}
	}
	if len(fields) == 0 {
		return
	}
	s.writeBlock(strings.Join(fields, ", "))
}

// endParagraph finalizes a paragraph, emitting its text and tracking headings.
func (s *parseState) endParagraph() {
	s.inParagraph = false

	// Table cell paragraphs are handled by the table logic.
	if s.inTable {
		return
	}
	if len(s.paragraphTexts) == 0 {
		return
	}

	paraText := strings.TrimSpace(strings.Join(s.paragraphTexts, ""))
	if paraText == "" {
		return
	}

	if strings.HasPrefix(s.currentStyle, "Heading") {
		s.closeSection()
		s.current = &lorebase.Section{
			Title: paraText,
			Path:  []string{paraText},
		}
	}

	s.writeBlock(paraText)
}

// writeBlock appends a paragraph to the flat text and the open section body.
func (s *parseState) writeBlock(block string) {
	if s.text.Len() > 0 {
		s.text.WriteString("\n\n")
	}
	s.text.WriteString(block)

	if s.current != nil && block != s.current.Title {
		if s.body.Len() > 0 {
			s.body.WriteString("\n\n")
		}
		s.body.WriteString(block)
	}
}

// closeSection finalizes the open section, if any.
func (s *parseState) closeSection() {
	if s.current == nil {
		return
	}
	s.current.Text = s.body.String()
	s.sections = append(s.sections, s.current)
	s.current = nil
	s.body.Reset()
}
