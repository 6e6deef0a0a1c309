package content

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

const rootTitle = "Home"

// Frontmatter keys that change without changing what a reader sees.
var fingerprintIgnoredKeys = map[string]struct{}{
	mdfp.FingerprintField: {},
	"lastmod":             {},
	"date":                {},
}

// load builds a Document from a file's bytes. abs is the file on disk, rel
// its slash-separated location below the base directory.
func (p *FileSystemProvider) load(abs, rel, slugPath string, raw []byte) (*docs.Document, error) {
	fields, fm, body, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontmatterInvalid, rel, err)
	}
	outline := markdown.Analyze(body)

	fp, err := Fingerprint(fm, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontmatterInvalid, rel, err)
	}

	return &docs.Document{
		DocumentMetadata: docs.DocumentMetadata{
			Slug:         slugPath,
			Title:        deriveTitle(fields.Title, outline.Title, slugPath),
			Description:  strings.TrimSpace(fields.Description),
			Weight:       fields.Weight,
			LastModified: p.lastModified(abs, fields),
			Draft:        fields.Draft,
			Searchable:   fields.IsSearchable(),
			SourcePath:   rel,
		},
		Raw:         raw,
		Body:        body,
		Headings:    outline.Headings,
		Fingerprint: fp,
	}, nil
}

func (p *FileSystemProvider) lastModified(abs string, fields frontmatter.Fields) time.Time {
	if t, ok := fields.LastModTime(); ok {
		return t
	}
	if p.opts.History != nil {
		if t, ok := p.opts.History.LastModified(abs); ok {
			return t
		}
	}
	if info, err := os.Stat(abs); err == nil {
		return info.ModTime().UTC().Truncate(time.Second)
	}
	return time.Time{}
}

// deriveTitle picks the first non-empty of the frontmatter title, the first
// level-one heading and a title made from the last slug segment.
func deriveTitle(fmTitle, heading, slugPath string) string {
	if t := strings.TrimSpace(fmTitle); t != "" {
		return t
	}
	if heading != "" {
		return heading
	}
	if slugPath == "" {
		return rootTitle
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(path.Base(slugPath))
	return cases.Title(language.English).String(strings.Join(strings.Fields(words), " "))
}

// Fingerprint returns the content fingerprint of a document. Volatile
// frontmatter keys are left out so touching a date does not change it.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := fingerprintIgnoredKeys[k]; skip {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		serialized, err := frontmatter.SerializeYAML(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
