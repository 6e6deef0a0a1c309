// Package docs defines the document model and the contract between the HTTP
// boundary and the content subsystem that stores and enumerates documents.
package docs

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/slug"
)

// DocumentMetadata identifies a document and carries what is needed to place
// it in a manifest or search index without loading its body.
type DocumentMetadata struct {
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Weight       int       `json:"weight"`
	LastModified time.Time `json:"last_modified"`
	Draft        bool      `json:"draft,omitempty"`
	Searchable   bool      `json:"searchable"`
	// SourcePath is the provider-relative location of the backing file.
	SourcePath string `json:"source_path,omitempty"`
}

// Segments returns the slug split into its segments.
func (m DocumentMetadata) Segments() []string {
	return slug.Split(m.Slug)
}

// Document is metadata plus the full stored content.
type Document struct {
	DocumentMetadata

	// Raw is the file exactly as stored, frontmatter included.
	Raw []byte `json:"-"`
	// Body is the markdown body with frontmatter removed.
	Body []byte `json:"-"`
	// Headings lists the section headings of the body in document order.
	Headings []string `json:"headings,omitempty"`
	// Fingerprint is a content fingerprint of frontmatter and body.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Provider resolves slugs to documents and enumerates them.
//
// Implementations must be safe for concurrent use and must not mutate
// documents after returning them.
type Provider interface {
	// Resolve looks up a single document. It returns ErrNotFound when the
	// slug has no backing document.
	Resolve(ctx context.Context, baseDir string, segments []string) (*Document, error)
	// ListAllMetadata enumerates every document. Order is not significant.
	ListAllMetadata(ctx context.Context) ([]DocumentMetadata, error)
	// ListSearchable returns the resolved documents that belong in the search index.
	ListSearchable(ctx context.Context) ([]Document, error)
}

// ManifestBuilder aggregates resolved documents into a serialized manifest.
type ManifestBuilder interface {
	BuildManifest(documents []Document) ([]byte, error)
}

// SearchIndexBuilder aggregates searchable documents into a JSON-serializable index.
type SearchIndexBuilder interface {
	BuildSearchIndex(documents []Document) (any, error)
}
