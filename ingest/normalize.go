package ingest

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"lorebase"
)

// Page is one page of extracted text, before normalization.
type Page struct {
	Number int
	Text   string
}

// PageRange records where a page landed in the normalized document, as byte
// offsets into the combined text.
type PageRange struct {
	Number int
	Start  int
	End    int
}

var (
	rxPageNumberLine = regexp.MustCompile(`(?m)^[ \t]*\d+[ \t]*$`)
	rxHyphenBreak    = regexp.MustCompile(`([A-Za-z])-[ \t]*\n[ \t]*([A-Za-z])`)
	rxLineTrailWS    = regexp.MustCompile(`[ \t]+\n`)
	rxBrokenWord     = regexp.MustCompile(`\b([A-Za-z]{2,})\s+([a-z]{2,})\b`)
)

// defaultBoilerplate matches recurring header/footer text from the campaign
// books this pipeline was built around.
var defaultBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`(?i)TOMB OF ANNIHILATION`),
	regexp.MustCompile(`(?i)Wizards of the Coast`),
	regexp.MustCompile(`(?i)Dungeons? & Dragons?`),
}

// defaultJoinStoplist holds words that must never be fused with a neighbor
// by broken-word repair: short function words plus setting-specific proper
// nouns that legitimately appear as standalone short tokens.
var defaultJoinStoplist = []string{
	"a", "an", "and", "the", "in", "on", "at", "of", "to", "for",
	"by", "with", "from", "as", "or", "but",
	"omu", "port", "nyanzaru", "omu’s", "chult", "chultan",
}

// Normalizer cleans extracted text: strips boilerplate and bare page-number
// lines, repairs end-of-line hyphenation and mid-word splits, and collapses
// whitespace. Input is also folded to Unicode NFC so visually identical
// strings compare equal downstream.
type Normalizer struct {
	boilerplate []*regexp.Regexp
	stoplist    map[string]struct{}
	logger      *slog.Logger
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithBoilerplate replaces the header/footer patterns removed from every page.
func WithBoilerplate(patterns ...*regexp.Regexp) NormalizerOption {
	return func(n *Normalizer) { n.boilerplate = patterns }
}

// WithJoinStoplist replaces the words exempt from broken-word joining.
func WithJoinStoplist(words ...string) NormalizerOption {
	return func(n *Normalizer) {
		n.stoplist = make(map[string]struct{}, len(words))
		for _, w := range words {
			n.stoplist[strings.ToLower(w)] = struct{}{}
		}
	}
}

// WithNormalizerLogger sets a structured logger.
func WithNormalizerLogger(l *slog.Logger) NormalizerOption {
	return func(n *Normalizer) { n.logger = l }
}

// NewNormalizer creates a Normalizer with the default boilerplate patterns
// and join stoplist.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		boilerplate: defaultBoilerplate,
		logger:      lorebase.NopLogger(),
	}
	WithJoinStoplist(defaultJoinStoplist...)(n)
	for _, o := range opts {
		o(n)
	}
	return n
}

// Normalize cleans a single block of text. No page markers are added.
func (n *Normalizer) Normalize(raw string) string {
	t := n.clean(raw)
	n.logger.Debug("normalize", "length", len(t))
	return t
}

// NormalizePages cleans each page independently, then joins them with
// [[PAGE:n]] markers and returns byte-offset ranges locating every page in
// the combined text.
func (n *Normalizer) NormalizePages(pages []Page) (string, []PageRange) {
	var (
		b      strings.Builder
		ranges = make([]PageRange, 0, len(pages))
	)
	for _, p := range pages {
		start := b.Len()
		fmt.Fprintf(&b, "[[PAGE:%d]]\n", p.Number)
		b.WriteString(strings.TrimSpace(n.clean(p.Text)))
		b.WriteString("\n\n")
		ranges = append(ranges, PageRange{Number: p.Number, Start: start, End: b.Len()})
	}
	text := b.String()
	n.logger.Debug("normalize pages", "pages", len(pages), "length", len(text))
	return text, ranges
}

func (n *Normalizer) clean(raw string) string {
	t := norm.NFC.String(raw)
	t = strings.ReplaceAll(t, "\r\n", "\n")
	t = strings.ReplaceAll(t, "­", "")

	for _, rx := range n.boilerplate {
		t = rx.ReplaceAllString(t, "")
	}
	t = rxPageNumberLine.ReplaceAllString(t, "")

	t = rxHyphenBreak.ReplaceAllString(t, "$1$2")
	t = rxLineTrailWS.ReplaceAllString(t, "\n")
	t = rxBlankLines.ReplaceAllString(t, "\n\n")

	// Two passes to catch chained splits like "wo lf spide rs".
	t = n.joinBrokenWords(t)
	t = n.joinBrokenWords(t)
	return t
}

// joinBrokenWords repairs mid-word splits left by PDF extraction, such as
// "spide rs". Pairs are only fused when neither side is on the stoplist and
// at least one side is short enough to look like a torn fragment.
func (n *Normalizer) joinBrokenWords(s string) string {
	return rxBrokenWord.ReplaceAllStringFunc(s, func(m string) string {
		parts := rxBrokenWord.FindStringSubmatch(m)
		a, b := parts[1], parts[2]
		if _, ok := n.stoplist[strings.ToLower(a)]; ok {
			return m
		}
		if _, ok := n.stoplist[strings.ToLower(b)]; ok {
			return m
		}
		if len(a) <= 4 || len(b) <= 4 {
			return a + b
		}
		return m
	})
}
