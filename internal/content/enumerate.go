package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const loadConcurrency = 8

type sourceFile struct {
	abs     string
	rel     string
	slug    string
	isIndex bool
}

// SlugForPath derives the document slug for a markdown file given its
// slash-separated path below the base directory. ok is false for files that
// are not markdown documents. The returned slug is not grammar-checked.
func SlugForPath(rel string) (slugPath string, isIndex bool, ok bool) {
	if !strings.HasSuffix(rel, ".md") {
		return "", false, false
	}
	s := strings.TrimSuffix(rel, ".md")
	switch {
	case s == "index":
		return "", true, true
	case strings.HasSuffix(s, "/index"):
		return strings.TrimSuffix(s, "/index"), true, true
	}
	return s, false, true
}

// validSlug reports whether a derived slug is addressable. A trailing index
// segment is reserved because it resolves to the parent document.
func validSlug(s string) bool {
	if !slug.IsPath(s) {
		return false
	}
	return s != "index" && !strings.HasSuffix(s, "/index")
}

// scan walks the base directory and returns every markdown file it would
// serve. Rejected files are returned separately so tooling can report them.
func (p *FileSystemProvider) scan(ctx context.Context) (accepted []sourceFile, rejected []string, err error) {
	bySlug := map[string]int{}
	walkErr := filepath.WalkDir(p.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if path == p.baseDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(p.baseDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		s, isIndex, ok := SlugForPath(rel)
		if !ok {
			return nil
		}
		if !validSlug(s) {
			rejected = append(rejected, rel)
			p.logger.Warn("Ignoring document with invalid slug", logfields.File(rel), logfields.Slug(s))
			return nil
		}

		f := sourceFile{abs: path, rel: rel, slug: s, isIndex: isIndex}
		if i, seen := bySlug[s]; seen {
			// name.md shadows name/index.md, matching resolution order.
			if accepted[i].isIndex && !isIndex {
				p.logger.Debug("Document shadows index file", logfields.File(rel), logfields.Path(accepted[i].rel))
				accepted[i] = f
			}
			return nil
		}
		bySlug[s] = len(accepted)
		accepted = append(accepted, f)
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, nil, walkErr
		}
		return nil, nil, fmt.Errorf("%w: %s: %w", derrors.ErrDocsDirWalkFailed, p.baseDir, walkErr)
	}
	return accepted, rejected, nil
}

// RejectedFiles lists markdown files whose derived slug is not valid.
func (p *FileSystemProvider) RejectedFiles(ctx context.Context) ([]string, error) {
	_, rejected, err := p.scan(ctx)
	return rejected, err
}

func (p *FileSystemProvider) enumerate(ctx context.Context) ([]docs.DocumentMetadata, error) {
	files, _, err := p.scan(ctx)
	if err != nil {
		return nil, err
	}

	loaded := make([]*docs.DocumentMetadata, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(f.abs)
			if err != nil {
				p.logger.Warn("Skipping unreadable document", logfields.File(f.rel), logfields.Error(err))
				return nil
			}
			doc, err := p.load(f.abs, f.rel, f.slug, raw)
			if err != nil {
				p.logger.Warn("Skipping document", logfields.File(f.rel), logfields.Error(err))
				return nil
			}
			loaded[i] = &doc.DocumentMetadata
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metas := make([]docs.DocumentMetadata, 0, len(loaded))
	for _, m := range loaded {
		if m != nil {
			metas = append(metas, *m)
		}
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Slug < metas[j].Slug })
	p.logger.Debug("Enumerated documents", logfields.DocsDir(p.baseDir), logfields.Count(len(metas)))
	return metas, nil
}
