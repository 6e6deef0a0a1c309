// Package content implements the docs.Provider contract on top of a directory
// of markdown files.
//
// Layout rules:
//   - the root document is <base>/index.md
//   - slug a/b resolves to <base>/a/b.md, falling back to <base>/a/b/index.md
//   - hidden directories and files whose derived slug is not valid are ignored
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const indexFile = "index.md"

// LastModifier reports a file's last modification time from an external
// source such as version control.
type LastModifier interface {
	LastModified(path string) (time.Time, bool)
}

// Options configures a FileSystemProvider.
type Options struct {
	// BaseDir is the documentation root. Required.
	BaseDir string
	// CacheMetadata keeps the enumeration result in memory until Invalidate.
	CacheMetadata bool
	// History, when set, is consulted for last-modified times before file mtimes.
	History LastModifier
	// Resolve bounds the internal fan-out used by ListSearchable.
	Resolve docs.ResolveOptions
	Logger  *slog.Logger
}

// FileSystemProvider serves documents from a directory tree.
type FileSystemProvider struct {
	baseDir string
	opts    Options
	logger  *slog.Logger

	mu    sync.RWMutex
	cache []docs.DocumentMetadata
}

// New creates a provider rooted at opts.BaseDir. The directory must exist.
func New(opts Options) (*FileSystemProvider, error) {
	if strings.TrimSpace(opts.BaseDir) == "" {
		return nil, errors.New("content: base directory is required")
	}
	abs, err := filepath.Abs(opts.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("content: resolve base directory: %w", err)
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", abs)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSystemProvider{baseDir: abs, opts: opts, logger: logger}, nil
}

// BaseDir returns the absolute documentation root.
func (p *FileSystemProvider) BaseDir() string { return p.baseDir }

// Invalidate drops cached metadata so the next listing re-reads the tree.
func (p *FileSystemProvider) Invalidate() {
	p.mu.Lock()
	p.cache = nil
	p.mu.Unlock()
	if r, ok := p.opts.History.(interface{ Reset() }); ok {
		r.Reset()
	}
}

// Refresh re-reads the tree and replaces the cached metadata.
func (p *FileSystemProvider) Refresh(ctx context.Context) error {
	metas, err := p.enumerate(ctx)
	if err != nil {
		return err
	}
	if p.opts.CacheMetadata {
		p.mu.Lock()
		p.cache = metas
		p.mu.Unlock()
	}
	return nil
}

// Resolve loads the document for segments. An empty baseDir means the
// provider's own root. Segments must satisfy the slug grammar.
func (p *FileSystemProvider) Resolve(ctx context.Context, baseDir string, segments []string) (*docs.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := p.baseDir
	if baseDir != "" {
		abs, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}
		if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
			abs = resolved
		}
		base = abs
	}
	for _, seg := range segments {
		if !slug.IsSegment(seg) {
			return nil, fmt.Errorf("%w: segment %q", derrors.ErrInvalidSlug, seg)
		}
	}
	if !validSlug(strings.Join(segments, "/")) && len(segments) > 0 {
		return nil, fmt.Errorf("%w: %q", derrors.ErrNotFound, strings.Join(segments, "/"))
	}

	for _, candidate := range candidates(base, segments) {
		path, ok, err := p.locate(base, candidate)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, candidate, err)
		}
		rel, _ := filepath.Rel(base, path)
		return p.load(path, filepath.ToSlash(rel), strings.Join(segments, "/"), raw)
	}
	return nil, fmt.Errorf("%w: %q", derrors.ErrNotFound, strings.Join(segments, "/"))
}

// ListAllMetadata enumerates every valid document under the base directory.
func (p *FileSystemProvider) ListAllMetadata(ctx context.Context) ([]docs.DocumentMetadata, error) {
	if p.opts.CacheMetadata {
		p.mu.RLock()
		cached := p.cache
		p.mu.RUnlock()
		if cached != nil {
			return append([]docs.DocumentMetadata(nil), cached...), nil
		}
	}

	metas, err := p.enumerate(ctx)
	if err != nil {
		return nil, err
	}
	if p.opts.CacheMetadata {
		p.mu.Lock()
		p.cache = metas
		p.mu.Unlock()
	}
	return append([]docs.DocumentMetadata(nil), metas...), nil
}

// ListSearchable resolves every searchable, non-draft document. Documents
// that fail to resolve are logged and skipped.
func (p *FileSystemProvider) ListSearchable(ctx context.Context) ([]docs.Document, error) {
	metas, err := p.ListAllMetadata(ctx)
	if err != nil {
		return nil, err
	}
	wanted := metas[:0:0]
	for _, m := range metas {
		if m.Searchable && !m.Draft {
			wanted = append(wanted, m)
		}
	}

	part := docs.ResolveAll(ctx, p, p.baseDir, wanted, p.opts.Resolve)
	for _, f := range part.Failed {
		p.logger.Debug("Skipping unresolvable document", logfields.Slug(f.Slug.String()), logfields.Error(f.Err))
	}
	return part.Resolved, nil
}

// candidates lists the paths, relative to base, that may back segments in
// lookup order.
func candidates(base string, segments []string) []string {
	if len(segments) == 0 {
		return []string{indexFile}
	}
	joined := filepath.Join(segments...)
	return []string{joined + ".md", filepath.Join(joined, indexFile)}
}

// locate checks that rel names a regular file inside base.
func (p *FileSystemProvider) locate(base, rel string) (string, bool, error) {
	path := filepath.Join(base, rel)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, rel, err)
	}
	if !info.Mode().IsRegular() {
		return "", false, nil
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, rel, err)
	}
	if !within(base, resolved) {
		return "", false, fmt.Errorf("%w: %s", derrors.ErrOutsideBase, rel)
	}
	return resolved, true, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
