// Package manifest aggregates resolved documents into the navigation manifest
// served at /api/manifest.
package manifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// Version is the manifest format version.
const Version = 1

// Manifest is the serialized form of the document set.
type Manifest struct {
	Version   int     `json:"version"`
	Documents []Entry `json:"documents"`
	Tree      *Node   `json:"tree"`
}

// Entry describes a single document.
type Entry struct {
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Weight       int        `json:"weight"`
	LastModified *time.Time `json:"last_modified,omitempty"`
	Draft        bool       `json:"draft,omitempty"`
	Fingerprint  string     `json:"fingerprint,omitempty"`
}

// Node is a position in the slug hierarchy. Intermediate positions without a
// backing document have HasDocument false.
type Node struct {
	Segment     string  `json:"segment"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title,omitempty"`
	Weight      int     `json:"weight"`
	HasDocument bool    `json:"has_document"`
	Children    []*Node `json:"children,omitempty"`
}

// Builder implements docs.ManifestBuilder.
type Builder struct{}

// NewBuilder returns a manifest builder.
func NewBuilder() *Builder { return &Builder{} }

var _ docs.ManifestBuilder = (*Builder)(nil)

// BuildManifest serializes the manifest for documents. Output is a pure
// function of its input: the same documents in any order give the same bytes.
func (b *Builder) BuildManifest(documents []docs.Document) ([]byte, error) {
	data, err := json.Marshal(b.Build(documents))
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// Build assembles the manifest value.
func (b *Builder) Build(documents []docs.Document) Manifest {
	entries := make([]Entry, 0, len(documents))
	for i := range documents {
		entries = append(entries, entryFor(&documents[i]))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i].Weight, entries[i].Slug, entries[j].Weight, entries[j].Slug)
	})

	return Manifest{Version: Version, Documents: entries, Tree: buildTree(entries)}
}

func entryFor(d *docs.Document) Entry {
	e := Entry{
		Slug:        d.Slug,
		Title:       d.Title,
		Description: d.Description,
		Weight:      d.Weight,
		Draft:       d.Draft,
		Fingerprint: d.Fingerprint,
	}
	if !d.LastModified.IsZero() {
		t := d.LastModified.UTC()
		e.LastModified = &t
	}
	return e
}

func less(wi int, si string, wj int, sj string) bool {
	if wi != wj {
		return wi < wj
	}
	return si < sj
}

func buildTree(entries []Entry) *Node {
	root := &Node{}
	index := map[string]*Node{"": root}

	var ensure func(slugPath string) *Node
	ensure = func(slugPath string) *Node {
		if n, ok := index[slugPath]; ok {
			return n
		}
		parentPath, segment := "", slugPath
		if i := strings.LastIndexByte(slugPath, '/'); i >= 0 {
			parentPath, segment = slugPath[:i], slugPath[i+1:]
		}
		parent := ensure(parentPath)
		n := &Node{Segment: segment, Slug: slugPath}
		parent.Children = append(parent.Children, n)
		index[slugPath] = n
		return n
	}

	for _, e := range entries {
		n := ensure(e.Slug)
		n.Title = e.Title
		n.Weight = e.Weight
		n.HasDocument = true
	}
	sortChildren(root)
	return root
}

func sortChildren(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		return less(a.Weight, a.Slug, b.Weight, b.Slug)
	})
	for _, c := range n.Children {
		sortChildren(c)
	}
}
