package markdown

import (
	"strings"
	"testing"
)

func TestExtractStripsFormatting(t *testing.T) {
	md := "# Chapter 1\n\nSome **bold** and *italic* text with a [link](https://example.com).\n"
	got, err := NewExtractor().Extract([]byte(md))
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsAny(got, "#*[]()") {
		t.Errorf("formatting leaked: %q", got)
	}
	if !strings.Contains(got, "Chapter 1") {
		t.Errorf("heading text lost: %q", got)
	}
	if !strings.Contains(got, "Some bold and italic text with a link.") {
		t.Errorf("body text mangled: %q", got)
	}
}

func TestExtractHeadingStaysOnOwnLine(t *testing.T) {
	md := "# Chapter 1\n\nBody paragraph follows the heading."
	got, err := NewExtractor().Extract([]byte(md))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(got, "\n")
	if lines[0] != "Chapter 1" {
		t.Errorf("first line = %q, want heading alone", lines[0])
	}
}

func TestExtractKeepsCodeBlockContent(t *testing.T) {
	md := "Intro.\n\n```\nverbatim code line\n```\n\nOutro."
	got, err := NewExtractor().Extract([]byte(md))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "verbatim code line") {
		t.Errorf("code content lost: %q", got)
	}
	if strings.Contains(got, "```") {
		t.Errorf("fence markers leaked: %q", got)
	}
}

func TestExtractCollapsesBlankRuns(t *testing.T) {
	md := "One.\n\n\n\n\nTwo.\n\n- a\n- b\n"
	got, err := NewExtractor().Extract([]byte(md))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank run survived: %q", got)
	}
	if !strings.Contains(got, "a") || !strings.Contains(got, "b") {
		t.Errorf("list items lost: %q", got)
	}
}
