package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"lorebase"
)

// Hierarchical defaults, in estimated tokens.
const (
	hierDefaultSize    = 400
	hierDefaultOverlap = 60

	// Buffers below this share of size are held back on non-forced
	// flushes to avoid tiny shards.
	hierMinFlushRatio = 0.65
)

var (
	// Top-level markers, matched anywhere in a line.
	rxChapter  = regexp.MustCompile(`(?i)\bchapter\s+(\d+|[ivxlcdm]+|one|two|three|four|five|six|seven|eight|nine|ten)\b`)
	rxAppendix = regexp.MustCompile(`(?i)\b(appendix|app\.)\s+([A-F])\b`)

	// Inline page markers inserted by the normalizer's per-page mode.
	rxPageMarker = regexp.MustCompile(`^\[\[PAGE:(\d+)\]\]$`)

	rxBlankLines = regexp.MustCompile(`\n{2,}`)

	// Paragraph classification.
	rxStatBlock = regexp.MustCompile(`(?i)\b(Armor Class|Hit Points|Speed|STR|DEX|CON|INT|WIS|CHA|Actions?|Traits?)\b`)
	rxReadAloud = regexp.MustCompile(`(?i)^(read|boxed text)[:-]`)
	rxTable     = regexp.MustCompile(`(?i)(d\d+\s*table|random encounters?|roll\s*d\d+)`)
)

// Recognized mid-level subheadings: a line equal to one of these
// (case-insensitive) starts a new mid-level section.
var commonSubheads = []string{
	"Locations in the City",
	"Finding a Guide",
	"Random Encounters",
	"City Denizens",
	"Things to Do",
	"The Forbidden City",
	"Fane of the Night Serpent",
	"Tomb of the Nine Gods",
}

var chapterWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// classifyParagraph tags a paragraph with its content type. Non-generic
// classes are atomic: they are never merged with neighboring text.
func classifyParagraph(p string) string {
	switch {
	case rxStatBlock.MatchString(p):
		return lorebase.ContentStatBlock
	case rxReadAloud.MatchString(p):
		return lorebase.ContentReadAloud
	case rxTable.MatchString(p):
		return lorebase.ContentTable
	default:
		return lorebase.ContentGeneric
	}
}

// parseChapterNum normalizes a chapter token: digits, number words, or roman
// numerals. Returns 0 when the token cannot be parsed.
func parseChapterNum(raw string) int {
	token := strings.ToLower(raw)
	if n, err := strconv.Atoi(token); err == nil {
		return n
	}
	if n, ok := chapterWords[token]; ok {
		return n
	}
	return romanToInt(token)
}

func romanToInt(s string) int {
	values := map[rune]int{'i': 1, 'v': 5, 'x': 10, 'l': 50, 'c': 100, 'd': 500, 'm': 1000}
	total, prev := 0, 0
	for _, ch := range strings.ToLower(s) {
		val, ok := values[ch]
		if !ok {
			return 0
		}
		if val <= prev {
			total += val
		} else {
			total += val - 2*prev
		}
		prev = val
	}
	return total
}

// HierarchicalChunker detects chapter/appendix headings and known subheads,
// builds a two-level section tree, and emits paragraph-packed chunks per
// leaf section. Stat blocks, read-aloud text, and tables stay atomic.
//
// For PDFs with positional layout, prefer SplitSections with sections from
// ExtractSections; flat-text Split is for plain text and other formats.
type HierarchicalChunker struct {
	subheads []string
	logger   *slog.Logger
}

var _ Splitter = (*HierarchicalChunker)(nil)

// HierarchicalOption configures a HierarchicalChunker.
type HierarchicalOption func(*HierarchicalChunker)

// WithSubheads replaces the recognized mid-level subheading list.
func WithSubheads(subheads []string) HierarchicalOption {
	return func(c *HierarchicalChunker) { c.subheads = subheads }
}

// WithHierarchicalLogger sets a structured logger for section decisions.
func WithHierarchicalLogger(l *slog.Logger) HierarchicalOption {
	return func(c *HierarchicalChunker) { c.logger = l }
}

// NewHierarchicalChunker creates a hierarchical chunker with the default
// campaign-book subheading list.
func NewHierarchicalChunker(opts ...HierarchicalOption) *HierarchicalChunker {
	c := &HierarchicalChunker{
		subheads: commonSubheads,
		logger:   lorebase.NopLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Split scans flat text for structure markers, builds sections, and chunks
// each leaf section. Text with no recognized headings becomes one synthetic
// "Document" section so something is always emitted for non-empty input.
func (c *HierarchicalChunker) Split(text string, opts *Options) []lorebase.Chunk {
	leaves := c.buildSections(text)
	if len(leaves) == 0 {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		c.logger.Debug("hierarchical: no sections detected, using whole document")
		leaves = []*lorebase.Section{{
			Title: "Document",
			Path:  []string{"Document"},
			Text:  text,
		}}
	}
	return c.emit(leaves, opts)
}

// SplitSections chunks pre-extracted sections (from structure detection),
// skipping flat-text heading scanning entirely.
func (c *HierarchicalChunker) SplitSections(sections []*lorebase.Section, opts *Options) []lorebase.Chunk {
	return c.emit(sections, opts)
}

// buildSections walks lines, opening a top-level section on chapter/appendix
// matches and a mid-level section on subhead matches, tracking pages via
// inline markers. Returns leaf sections in document order.
func (c *HierarchicalChunker) buildSections(text string) []*lorebase.Section {
	var (
		sections    []*lorebase.Section
		currentTop  *lorebase.Section
		currentMid  *lorebase.Section
		buffer      []string
		currentPage = 1
	)

	flushBufferTo := func(node *lorebase.Section) {
		if node == nil {
			return
		}
		t := strings.TrimSpace(strings.Join(buffer, "\n"))
		if t != "" {
			if node.Text != "" {
				node.Text += "\n\n"
			}
			node.Text += t
		}
		buffer = nil
	}

	closeTop := func(title string) {
		flushBufferTo(currentMid)
		flushBufferTo(currentTop)
		if currentMid != nil {
			currentMid.PageEnd = currentPage
			currentMid = nil
		}
		if currentTop != nil {
			currentTop.PageEnd = currentPage
		}
		currentTop = &lorebase.Section{
			Title:     title,
			Path:      []string{title},
			PageStart: currentPage,
		}
		sections = append(sections, currentTop)
		c.logger.Debug("hierarchical: top section", "title", title, "page", currentPage)
	}

	for _, raw := range strings.Split(text, "\n") {
		if m := rxPageMarker.FindStringSubmatch(raw); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				currentPage = n
			}
			if currentMid != nil && currentMid.PageStart == 0 {
				currentMid.PageStart = currentPage
			} else if currentTop != nil && currentTop.PageStart == 0 {
				currentTop.PageStart = currentPage
			}
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			buffer = append(buffer, "")
			continue
		}

		if m := rxChapter.FindStringSubmatch(line); m != nil {
			title := fmt.Sprintf("Chapter %s", m[1])
			if n := parseChapterNum(m[1]); n > 0 {
				title = fmt.Sprintf("Ch. %d", n)
			}
			closeTop(title)
			continue
		}

		if m := rxAppendix.FindStringSubmatch(line); m != nil {
			closeTop("Appendix " + strings.ToUpper(m[2]))
			continue
		}

		if c.matchSubhead(line) {
			flushBufferTo(currentMid)
			if currentMid != nil {
				currentMid.PageEnd = currentPage
			}
			currentMid = &lorebase.Section{
				Title:     line,
				PageStart: currentPage,
			}
			if currentTop != nil {
				currentMid.Path = append(append([]string{}, currentTop.Path...), line)
				currentTop.Children = append(currentTop.Children, currentMid)
			} else {
				currentMid.Path = []string{line}
				sections = append(sections, currentMid)
			}
			c.logger.Debug("hierarchical: mid section", "path", strings.Join(currentMid.Path, " > "), "page", currentPage)
			continue
		}

		buffer = append(buffer, line)
	}
	flushBufferTo(currentMid)
	flushBufferTo(currentTop)

	var leaves []*lorebase.Section
	for _, s := range sections {
		if len(s.Children) > 0 {
			leaves = append(leaves, s.Children...)
		} else {
			leaves = append(leaves, s)
		}
	}
	return leaves
}

func (c *HierarchicalChunker) matchSubhead(line string) bool {
	for _, h := range c.subheads {
		if strings.EqualFold(line, h) {
			return true
		}
	}
	return false
}

// emit packs each leaf section's paragraphs into chunks. Generic paragraphs
// accumulate until the buffer reaches size estimated tokens; atomic
// paragraphs flush the buffer and become standalone chunks. After a
// non-final flush the trailing overlap*4 characters seed the next buffer.
func (c *HierarchicalChunker) emit(sections []*lorebase.Section, opts *Options) []lorebase.Chunk {
	size := opts.size(hierDefaultSize)
	overlap := opts.overlap(hierDefaultOverlap)
	minFlush := int(float64(size) * hierMinFlushRatio)

	order := 0
	var out []lorebase.Chunk

	push := func(content string, sec *lorebase.Section, contentType string) {
		chunk := lorebase.NewChunk(content, lorebase.ChunkMeta{
			Path:        sec.Path,
			ContentType: contentType,
			PageStart:   sec.PageStart,
			PageEnd:     sec.PageEnd,
			Order:       order,
		})
		chunk.TokenCount = estTokens(content)
		out = append(out, chunk)
		order++
	}

	for _, sec := range sections {
		paras := splitParagraphs(sec.Text)
		var buf []string
		bufTokens := 0

		flush := func(force bool) {
			if len(buf) == 0 {
				return
			}
			if !force && bufTokens < minFlush {
				return
			}
			content := strings.TrimSpace(strings.Join(buf, "\n\n"))
			if content == "" {
				buf = nil
				bufTokens = 0
				return
			}
			push(content, sec, classifyParagraph(content))

			// Tail-carry overlap, approximated by characters.
			if overlap > 0 && len(content) > overlap*4 {
				tail := content[len(content)-overlap*4:]
				buf = []string{tail}
				bufTokens = estTokens(tail)
			} else {
				buf = nil
				bufTokens = 0
			}
		}

		for _, p := range paras {
			if ct := classifyParagraph(p); ct != lorebase.ContentGeneric {
				flush(true)
				push(p, sec, ct)
				continue
			}
			buf = append(buf, p)
			bufTokens += estTokens(p)
			if bufTokens >= size {
				flush(false)
			}
		}
		flush(true)
	}

	c.logger.Debug("hierarchical: emitted", "chunks", len(out), "sections", len(sections), "size", size, "overlap", overlap)
	return out
}
