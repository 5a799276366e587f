package ingest

import (
	"regexp"
	"strings"

	"lorebase"
)

// Entity pairs a canonical name with the heading aliases that identify it.
type Entity struct {
	Name    string
	Aliases []string
}

// DefaultRestaurants is the built-in registry for restaurant review
// documents. Aliases are matched against whole heading lines,
// case-insensitively.
var DefaultRestaurants = []Entity{
	{Name: "Chipotle Mexican Grill", Aliases: []string{"Chipotle Mexican Grill", "Chipotle"}},
	{Name: "Panera Bread", Aliases: []string{"Panera Bread", "Panera"}},
	{Name: "Shake Shack", Aliases: []string{"Shake Shack"}},
	{Name: "Chick-fil-A", Aliases: []string{"Chick-fil-A", "Chick Fil A", "Chickfila", "Chick fil a"}},
	{Name: "Five Guys", Aliases: []string{"Five Guys"}},
	{Name: "Firehouse Subs", Aliases: []string{"Firehouse Subs", "Firehouse"}},
	{Name: "MOD Pizza", Aliases: []string{"MOD Pizza", "MOD"}},
	{Name: "Qdoba Mexican Eats", Aliases: []string{"Qdoba Mexican Eats", "Qdoba"}},
	{Name: "Jersey Mike's Subs", Aliases: []string{"Jersey Mike's Subs", "Jersey Mikes Subs", "Jersey Mike's", "Jersey Mikes", "Jersey Mike"}},
	{Name: "Noodles & Company", Aliases: []string{"Noodles & Company", "Noodles and Company", "Noodles & Co", "Noodles and Co"}},
}

var rxTrailingWS = regexp.MustCompile(`[\t ]+\n`)

// EntitySectionChunker splits a document at heading lines that name a known
// entity and emits one chunk per section. The chunk content is the canonical
// name, a blank line, then the section body. Documents with no recognized
// headings produce no chunks at all.
type EntitySectionChunker struct {
	entities  []Entity
	rxHeading *regexp.Regexp
}

var _ Splitter = (*EntitySectionChunker)(nil)

// NewEntitySectionChunker builds a chunker over the given registry, or
// DefaultRestaurants when none is supplied.
func NewEntitySectionChunker(entities ...Entity) *EntitySectionChunker {
	if len(entities) == 0 {
		entities = DefaultRestaurants
	}
	var escaped []string
	for _, e := range entities {
		for _, a := range e.Aliases {
			escaped = append(escaped, regexp.QuoteMeta(a))
		}
	}
	rx := regexp.MustCompile(`(?im)^(?:` + strings.Join(escaped, "|") + `)[\t ]*$`)
	return &EntitySectionChunker{entities: entities, rxHeading: rx}
}

func (c *EntitySectionChunker) Split(text string, _ *Options) []lorebase.Chunk {
	normalized := normalizeEntityText(text)

	matches := c.rxHeading.FindAllStringIndex(normalized, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []lorebase.Chunk
	for i, m := range matches {
		heading := strings.TrimSpace(normalized[m[0]:m[1]])
		name, ok := c.Resolve(heading)
		if !ok {
			continue
		}

		end := len(normalized)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := normalizeEntityText(strings.TrimSpace(normalized[m[1]:end]))

		content := normalizeEntityText(name + "\n\n" + body)
		if content == "" {
			continue
		}
		out = append(out, lorebase.NewChunk(content, lorebase.ChunkMeta{
			Restaurant: name,
		}))
	}
	return out
}

// Resolve maps a heading line to its canonical entity name.
func (c *EntitySectionChunker) Resolve(heading string) (string, bool) {
	for _, e := range c.entities {
		for _, a := range e.Aliases {
			if strings.EqualFold(heading, a) {
				return e.Name, true
			}
		}
	}
	return "", false
}

// Names returns the canonical names in the registry, in registry order.
func (c *EntitySectionChunker) Names() []string {
	names := make([]string, len(c.entities))
	for i, e := range c.entities {
		names[i] = e.Name
	}
	return names
}

// normalizeEntityText unifies newlines, strips trailing whitespace per line,
// and collapses runs of blank lines.
func normalizeEntityText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = rxTrailingWS.ReplaceAllString(s, "\n")
	s = rxBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
