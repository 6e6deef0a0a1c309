// Package search builds the client-side search index and keeps a
// server-side sqlite store for the /api/search endpoint.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// IndexVersion is the search index format version.
const IndexVersion = 1

// Index is the JSON document served at /api/search-index.
type Index struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Entry is one searchable document.
type Entry struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings,omitempty"`
	Content     string   `json:"content"`
}

// Builder implements docs.SearchIndexBuilder.
type Builder struct {
	// MaxContentRunes truncates entry content. Zero keeps full text.
	MaxContentRunes int
}

// NewBuilder returns an index builder truncating content to maxContentRunes.
func NewBuilder(maxContentRunes int) *Builder {
	return &Builder{MaxContentRunes: maxContentRunes}
}

var _ docs.SearchIndexBuilder = (*Builder)(nil)

// BuildSearchIndex returns an *Index for documents.
func (b *Builder) BuildSearchIndex(documents []docs.Document) (any, error) {
	return b.Build(documents), nil
}

// Build assembles the index. Entries are ordered by slug.
func (b *Builder) Build(documents []docs.Document) *Index {
	entries := make([]Entry, 0, len(documents))
	for i := range documents {
		entries = append(entries, b.entryFor(&documents[i]))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Slug < entries[j].Slug })
	return &Index{Version: IndexVersion, Entries: entries}
}

func (b *Builder) entryFor(d *docs.Document) Entry {
	outline := markdown.Analyze(d.Body)
	headings := d.Headings
	if headings == nil {
		headings = outline.Headings
	}
	return Entry{
		Slug:        d.Slug,
		Title:       d.Title,
		Description: d.Description,
		Headings:    headings,
		Content:     truncateRunes(outline.Text, b.MaxContentRunes),
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == limit {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}
