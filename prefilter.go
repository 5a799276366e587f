package lorebase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// PreFilterRule maps a query pattern to the section path prefixes it unlocks.
type PreFilterRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Prefixes []string
}

// PreFilterResult is the outcome of running a query through the rule list.
// An empty AllowPrefixes means no restriction at all, never
// "allow nothing". Callers must special-case the empty set.
type PreFilterResult struct {
	AllowPrefixes []string `json:"allow_prefixes"`
	Reasons       []string `json:"reasons"`
}

// PreFilter is a keyword-to-path-prefix rule system used to narrow retrieval
// candidates before vector search. Every matching rule contributes its
// prefixes (union, not first-match) and a reason string for observability.
type PreFilter struct {
	rules []PreFilterRule
}

// NewPreFilter creates a PreFilter. With no rules given, the default
// campaign-book rule set applies.
func NewPreFilter(rules ...PreFilterRule) *PreFilter {
	if len(rules) == 0 {
		rules = DefaultPreFilterRules()
	}
	return &PreFilter{rules: rules}
}

// Apply runs the query through every rule and unions the matches.
// No rule matching is not an error; it yields an empty allow set.
func (f *PreFilter) Apply(query string) PreFilterResult {
	allow := make(map[string]struct{})
	var reasons []string

	for _, rule := range f.rules {
		if !rule.Pattern.MatchString(query) {
			continue
		}
		for _, p := range rule.Prefixes {
			allow[p] = struct{}{}
		}
		reasons = append(reasons, fmt.Sprintf("matched rule %q with /%s/", rule.Name, rule.Pattern.String()))
	}

	prefixes := make([]string, 0, len(allow))
	for p := range allow {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	return PreFilterResult{AllowPrefixes: prefixes, Reasons: reasons}
}

// PathAllowed reports whether a chunk path passes the allow set. An empty
// allow set passes everything.
func PathAllowed(path []string, allowPrefixes []string) bool {
	if len(allowPrefixes) == 0 {
		return true
	}
	joined := strings.Join(path, " > ")
	for _, prefix := range allowPrefixes {
		if strings.HasPrefix(joined, prefix) {
			return true
		}
	}
	return false
}

// FilterScored keeps the scored records whose path passes the allow set.
func FilterScored(records []ScoredRecord, allowPrefixes []string) []ScoredRecord {
	if len(allowPrefixes) == 0 {
		return records
	}
	kept := make([]ScoredRecord, 0, len(records))
	for _, r := range records {
		if PathAllowed(r.Meta.Path, allowPrefixes) {
			kept = append(kept, r)
		}
	}
	return kept
}

// DefaultPreFilterRules returns the rule set for the Tomb of Annihilation
// campaign book. Prefix strings assume section paths like
// "Ch. 1 > Locations in the City > Goldenthrone".
func DefaultPreFilterRules() []PreFilterRule {
	return []PreFilterRule{
		{
			Name:     "Handouts & Guides",
			Pattern:  regexp.MustCompile(`(?i)(handout|guide|azaka|eku)\b`),
			Prefixes: []string{"Appendix E", "Ch. 1 > Finding a Guide"},
		},
		{
			Name:     "Random Encounters",
			Pattern:  regexp.MustCompile(`(?i)(random encounter|encounter table)`),
			Prefixes: []string{"Appendix B"},
		},
		{
			Name:     "Stat Blocks & Creatures",
			Pattern:  regexp.MustCompile(`(?i)(armor class|hit points|stat block|acrobatics|perception|initiative|\bzorbo\b|\bhadrosaurus\b|\bxandala\b|\bvolo\b)`),
			Prefixes: []string{"Appendix D"},
		},
		{
			Name:     "Character Backgrounds",
			Pattern:  regexp.MustCompile(`(?i)\b(background|bond|ideal|flaw)s?\b`),
			Prefixes: []string{"Appendix A"},
		},
		{
			Name:     "Discoveries, Items, Flora & Fauna",
			Pattern:  regexp.MustCompile(`(?i)(discovery|magic item|flora|fauna|plant)`),
			Prefixes: []string{"Appendix C"},
		},
		{
			Name:     "Trickster Gods & Omu",
			Pattern:  regexp.MustCompile(`(?i)(trickster god|puzzle cube|omu gods?|forbidden city)`),
			Prefixes: []string{"Appendix F", "Ch. 3"},
		},
		{
			Name:     "Port Nyanzaru Locations",
			Pattern:  regexp.MustCompile(`(?i)(port nyanzaru|goldenthrone|grand souk|merchant prince)`),
			Prefixes: []string{"Ch. 1 > Locations in the City"},
		},
		{
			Name:     "Fane of the Night Serpent",
			Pattern:  regexp.MustCompile(`(?i)fane of the night serpent`),
			Prefixes: []string{"Ch. 4"},
		},
		{
			Name:     "Tomb of the Nine Gods (dungeon levels)",
			Pattern:  regexp.MustCompile(`(?i)(tomb of the nine gods|rotten halls|dungeon of deception|vault of reflection|gears of hate|cradle of death)`),
			Prefixes: []string{"Ch. 5"},
		},
		{
			Name:     "Pronunciations",
			Pattern:  regexp.MustCompile(`(?i)\b(pronounce|pronunciation)s?\b`),
			Prefixes: []string{"Intro > Names & Pronunciations"},
		},
	}
}
