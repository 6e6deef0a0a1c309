package helpers

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
)

// MemoryProvider is an in-memory docs.Provider for tests.
//
// Documents are keyed by slug path. Individual slugs can be made to fail or
// hang, and every Resolve call is counted.
type MemoryProvider struct {
	mu       sync.RWMutex
	docs     map[string]docs.Document
	order    []string
	failing  map[string]error
	blocking map[string]chan struct{}
	listErr  error

	resolveCalls atomic.Int64
}

// NewMemoryProvider returns a provider holding the given documents.
func NewMemoryProvider(documents ...docs.Document) *MemoryProvider {
	p := &MemoryProvider{
		docs:     map[string]docs.Document{},
		failing:  map[string]error{},
		blocking: map[string]chan struct{}{},
	}
	for _, d := range documents {
		p.Add(d)
	}
	return p
}

// Add stores or replaces a document.
func (p *MemoryProvider) Add(d docs.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.docs[d.Slug]; !ok {
		p.order = append(p.order, d.Slug)
	}
	p.docs[d.Slug] = d
}

// FailResolve makes Resolve return err for the slug while it stays listed.
func (p *MemoryProvider) FailResolve(slugPath string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing[slugPath] = err
}

// BlockResolve makes Resolve for the slug wait until release is closed or
// the context ends.
func (p *MemoryProvider) BlockResolve(slugPath string, release chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocking[slugPath] = release
}

// FailList makes the list operations return err.
func (p *MemoryProvider) FailList(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErr = err
}

// ResolveCalls reports how many times Resolve was invoked.
func (p *MemoryProvider) ResolveCalls() int64 { return p.resolveCalls.Load() }

func (p *MemoryProvider) Resolve(ctx context.Context, _ string, segments []string) (*docs.Document, error) {
	p.resolveCalls.Add(1)
	key := strings.Join(segments, "/")

	p.mu.RLock()
	release := p.blocking[key]
	failErr := p.failing[key]
	d, ok := p.docs[key]
	p.mu.RUnlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	if !ok {
		return nil, derrors.ErrNotFound
	}
	return &d, nil
}

func (p *MemoryProvider) ListAllMetadata(context.Context) ([]docs.DocumentMetadata, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]docs.DocumentMetadata, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, p.docs[k].DocumentMetadata)
	}
	return out, nil
}

func (p *MemoryProvider) ListSearchable(context.Context) ([]docs.Document, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.listErr != nil {
		return nil, p.listErr
	}
	out := make([]docs.Document, 0, len(p.order))
	for _, k := range p.order {
		d := p.docs[k]
		if d.Searchable && !d.Draft {
			out = append(out, d)
		}
	}
	return out, nil
}

// Doc builds a searchable document with the given slug, title and raw content.
func Doc(slugPath, title, raw string) docs.Document {
	return docs.Document{
		DocumentMetadata: docs.DocumentMetadata{
			Slug:       slugPath,
			Title:      title,
			Searchable: true,
		},
		Raw:  []byte(raw),
		Body: []byte(raw),
	}
}
