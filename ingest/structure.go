package ingest

import (
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"lorebase"
)

// Span is one positioned text run from a page, in page coordinates with the
// origin at the bottom-left (y grows upward).
type Span struct {
	Text string
	X    float64
	Y    float64
	Size float64
}

// SpanPage is one page of positioned spans plus its width, used for
// centering checks.
type SpanPage struct {
	Number int
	Width  float64
	Spans  []Span
}

// line is a y-grouped run of spans, ordered top-to-bottom within a page.
type line struct {
	rawY    float64
	text    string
	minX    float64
	maxX    float64
	maxSize float64
}

const lineYTolerance = 2.0

// headingSizeBoost is the multiple of the median font size at which a line
// qualifies as a heading on size alone.
const headingSizeBoost = 1.35

var rxNumberedHeading = regexp.MustCompile(`(?i)^chapter\s+(\d+|[ivxlcdm]+)|^\d+\.\s+`)

// FontSizeFromTransform approximates the rendered font size from the four
// scale/skew values of a text matrix, as the Euclidean norm.
func FontSizeFromTransform(a, b, c, d float64) float64 {
	return math.Sqrt(a*a + b*b + c*c + d*d)
}

// groupLines merges spans whose baselines sit within lineYTolerance into
// single lines, ordered top-to-bottom (descending y), left-to-right.
func groupLines(spans []Span) []line {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	type building struct {
		y       float64
		parts   []string
		minX    float64
		maxX    float64
		maxSize float64
	}
	var lines []*building
	for _, sp := range sorted {
		var target *building
		for _, l := range lines {
			if math.Abs(l.y-sp.Y) <= lineYTolerance {
				target = l
				break
			}
		}
		if target == nil {
			lines = append(lines, &building{
				y:       sp.Y,
				parts:   []string{sp.Text},
				minX:    sp.X,
				maxX:    sp.X,
				maxSize: sp.Size,
			})
			continue
		}
		target.parts = append(target.parts, sp.Text)
		target.minX = math.Min(target.minX, sp.X)
		target.maxX = math.Max(target.maxX, sp.X)
		target.maxSize = math.Max(target.maxSize, sp.Size)
	}

	out := make([]line, 0, len(lines))
	for _, l := range lines {
		out = append(out, line{
			rawY:    l.y,
			text:    strings.TrimSpace(strings.Join(l.parts, "")),
			minX:    l.minX,
			maxX:    l.maxX,
			maxSize: l.maxSize,
		})
	}
	return out
}

func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters >= 3
}

// detectHeadings picks heading lines: noticeably larger than the page's
// median font size, short, and either horizontally centered or set in all
// caps; or matching a numbered-heading pattern regardless of size.
func detectHeadings(lines []line, pageWidth float64) []line {
	var sizes []float64
	for _, l := range lines {
		if l.maxSize > 0 {
			sizes = append(sizes, l.maxSize)
		}
	}
	sort.Float64s(sizes)
	var median float64
	if len(sizes) > 0 {
		median = sizes[len(sizes)/2]
	}

	var headings []line
	for _, l := range lines {
		if l.text == "" {
			continue
		}
		sizeBoost := median > 0 && l.maxSize >= median*headingSizeBoost
		lineCenter := (l.minX + l.maxX) / 2
		centered := math.Abs(lineCenter-pageWidth/2) <= pageWidth*0.12
		shortish := len(l.text) <= 60

		if (sizeBoost && shortish && (centered || isAllCaps(l.text))) ||
			rxNumberedHeading.MatchString(l.text) {
			headings = append(headings, l)
		}
	}
	sort.SliceStable(headings, func(i, j int) bool { return headings[i].rawY > headings[j].rawY })
	return headings
}

// StructureDetector finds headings in positioned page text by font size and
// layout, then slices the document into sections between headings. It never
// fails: pages that cannot be analyzed contribute no headings, and a
// document with no detectable structure yields no sections.
type StructureDetector struct {
	logger *slog.Logger
}

// NewStructureDetector creates a structure detector.
func NewStructureDetector(logger *slog.Logger) *StructureDetector {
	if logger == nil {
		logger = lorebase.NopLogger()
	}
	return &StructureDetector{logger: logger}
}

// ExtractSections detects headings across the given pages and returns one
// section per heading, spanning from that heading to the next (or the end
// of the document). Section text is the line text between the bounds.
func (d *StructureDetector) ExtractSections(pages []SpanPage) []*lorebase.Section {
	type pageHeading struct {
		page int
		y    float64
		text string
	}

	var (
		headings  []pageHeading
		pageLines = make(map[int][]line, len(pages))
		lastPage  int
	)
	for _, p := range pages {
		lines := groupLines(p.Spans)
		pageLines[p.Number] = lines
		if p.Number > lastPage {
			lastPage = p.Number
		}
		for _, h := range detectHeadings(lines, p.Width) {
			headings = append(headings, pageHeading{page: p.Number, y: h.rawY, text: h.text})
		}
	}
	if len(headings) == 0 {
		d.logger.Debug("structure: no headings detected", "pages", len(pages))
		return nil
	}

	sort.SliceStable(headings, func(i, j int) bool {
		if headings[i].page != headings[j].page {
			return headings[i].page < headings[j].page
		}
		return headings[i].y > headings[j].y
	})

	var sections []*lorebase.Section
	for i, h := range headings {
		var next *pageHeading
		if i+1 < len(headings) {
			next = &headings[i+1]
		}
		endPage := lastPage
		if next != nil {
			endPage = next.page
		}

		var body []string
		for page := h.page; page <= endPage; page++ {
			lines := pageLines[page]
			from, to := 0, len(lines)
			if page == h.page {
				from = indexOfLineY(lines, h.y)
				if from < 0 {
					from = 0
				}
			}
			if next != nil && page == next.page {
				to = indexOfLineY(lines, next.y)
				if to < 0 {
					to = len(lines)
				}
			}
			for li := from + 1; li < to; li++ {
				body = append(body, lines[li].text)
			}
			if next != nil && page == next.page {
				break
			}
		}

		sections = append(sections, &lorebase.Section{
			Title:     h.text,
			Path:      []string{h.text},
			PageStart: h.page,
			PageEnd:   endPage,
			Text:      strings.Join(body, "\n"),
		})
	}
	d.logger.Debug("structure: sections built", "headings", len(headings), "sections", len(sections))
	return sections
}

func indexOfLineY(lines []line, y float64) int {
	for i, l := range lines {
		if l.rawY == y {
			return i
		}
	}
	return -1
}
