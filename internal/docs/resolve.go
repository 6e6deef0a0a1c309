package docs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const (
	defaultResolveConcurrency = 16
	defaultResolveTimeout     = 5 * time.Second
)

// ResolveOptions bounds a fan-out resolution.
type ResolveOptions struct {
	// Concurrency caps in-flight resolutions. Zero uses the default.
	Concurrency int
	// Timeout bounds each individual resolution. Zero uses the default;
	// a negative value disables the per-resolution deadline.
	Timeout time.Duration
}

func (o ResolveOptions) withDefaults() ResolveOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultResolveConcurrency
	}
	if o.Timeout == 0 {
		o.Timeout = defaultResolveTimeout
	}
	return o
}

// Failure records a metadata entry that could not be resolved.
type Failure struct {
	Slug slug.Slug
	Err  error
}

// Partition is the outcome of resolving a set of metadata entries.
// Resolved keeps the input order of the successful entries.
type Partition struct {
	Resolved []Document
	Failed   []Failure
}

type resolveResult struct {
	doc *Document
	err error
}

// ResolveAll resolves every metadata entry concurrently and waits for all of
// them. Individual failures, including per-entry timeouts, never abort the
// batch; they are reported in Partition.Failed.
func ResolveAll(ctx context.Context, p Provider, baseDir string, entries []DocumentMetadata, opts ResolveOptions) Partition {
	opts = opts.withDefaults()

	results := make([]resolveResult, len(entries))
	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			results[i] = resolveOne(ctx, p, baseDir, entry.Segments(), opts.Timeout)
			return nil
		})
	}
	_ = g.Wait()

	return partition(entries, results)
}

func resolveOne(ctx context.Context, p Provider, baseDir string, segments []string, timeout time.Duration) resolveResult {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		doc *Document
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		doc, err := p.Resolve(ctx, baseDir, segments)
		done <- outcome{doc: doc, err: err}
	}()

	select {
	case o := <-done:
		if o.err == nil && o.doc == nil {
			return resolveResult{err: derrors.ErrNotFound}
		}
		return resolveResult{doc: o.doc, err: o.err}
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return resolveResult{err: fmt.Errorf("%w after %s", derrors.ErrResolveTimeout, timeout)}
		}
		return resolveResult{err: ctx.Err()}
	}
}

func partition(entries []DocumentMetadata, results []resolveResult) Partition {
	var out Partition
	out.Resolved = make([]Document, 0, len(entries))
	for i, r := range results {
		if r.err != nil {
			out.Failed = append(out.Failed, Failure{Slug: slug.Slug(entries[i].Segments()), Err: r.err})
			continue
		}
		out.Resolved = append(out.Resolved, *r.doc)
	}
	return out
}
