package docs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docs"
	derrors "git.home.luguber.info/inful/docsite/internal/docs/errors"
	"git.home.luguber.info/inful/docsite/internal/slug"
	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func listAll(t *testing.T, p docs.Provider) []docs.DocumentMetadata {
	t.Helper()
	metas, err := p.ListAllMetadata(context.Background())
	require.NoError(t, err)
	return metas
}

func TestResolveAll_AllResolve(t *testing.T) {
	p := helpers.NewMemoryProvider()
	for i := range 25 {
		p.Add(helpers.Doc(fmt.Sprintf("guide/page-%02d", i), fmt.Sprintf("Page %d", i), "body"))
	}
	p.Add(helpers.Doc("", "Home", "root"))

	part := docs.ResolveAll(context.Background(), p, "/docs", listAll(t, p), docs.ResolveOptions{Concurrency: 4})

	assert.Empty(t, part.Failed)
	require.Len(t, part.Resolved, 26)
	seen := map[string]bool{}
	for _, d := range part.Resolved {
		assert.False(t, seen[d.Slug], "duplicate %q", d.Slug)
		seen[d.Slug] = true
	}
	assert.Equal(t, int64(26), p.ResolveCalls())
}

func TestResolveAll_PreservesInputOrder(t *testing.T) {
	p := helpers.NewMemoryProvider(
		helpers.Doc("c", "C", ""),
		helpers.Doc("a", "A", ""),
		helpers.Doc("b", "B", ""),
	)
	part := docs.ResolveAll(context.Background(), p, "", listAll(t, p), docs.ResolveOptions{})

	var got []string
	for _, d := range part.Resolved {
		got = append(got, d.Slug)
	}
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestResolveAll_OneFailureIsPartitioned(t *testing.T) {
	p := helpers.NewMemoryProvider(
		helpers.Doc("a", "A", ""),
		helpers.Doc("b/c", "C", ""),
		helpers.Doc("d", "D", ""),
	)
	boom := errors.New("disk on fire")
	p.FailResolve("b/c", boom)

	part := docs.ResolveAll(context.Background(), p, "", listAll(t, p), docs.ResolveOptions{})

	require.Len(t, part.Resolved, 2)
	require.Len(t, part.Failed, 1)
	assert.Equal(t, slug.Slug{"b", "c"}, part.Failed[0].Slug)
	assert.ErrorIs(t, part.Failed[0].Err, boom)
}

func TestResolveAll_TimeoutCountsAsFailure(t *testing.T) {
	p := helpers.NewMemoryProvider(
		helpers.Doc("fast", "Fast", ""),
		helpers.Doc("slow", "Slow", ""),
	)
	release := make(chan struct{})
	defer close(release)
	p.BlockResolve("slow", release)

	start := time.Now()
	part := docs.ResolveAll(context.Background(), p, "", listAll(t, p), docs.ResolveOptions{Timeout: 50 * time.Millisecond})

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, part.Resolved, 1)
	assert.Equal(t, "fast", part.Resolved[0].Slug)
	require.Len(t, part.Failed, 1)
	assert.True(t,
		errors.Is(part.Failed[0].Err, derrors.ErrResolveTimeout) || errors.Is(part.Failed[0].Err, context.DeadlineExceeded),
		"unexpected error: %v", part.Failed[0].Err)
}

func TestResolveAll_Empty(t *testing.T) {
	p := helpers.NewMemoryProvider()
	part := docs.ResolveAll(context.Background(), p, "", nil, docs.ResolveOptions{})
	assert.Empty(t, part.Resolved)
	assert.Empty(t, part.Failed)
}

func TestResolve_Idempotent(t *testing.T) {
	p := helpers.NewMemoryProvider(helpers.Doc("guide/install", "Install", "# Install\n\nsteps"))
	a, err := p.Resolve(context.Background(), "", []string{"guide", "install"})
	require.NoError(t, err)
	b, err := p.Resolve(context.Background(), "", []string{"guide", "install"})
	require.NoError(t, err)
	assert.Equal(t, a.Raw, b.Raw)
}
