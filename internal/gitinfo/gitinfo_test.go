package gitinfo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func TestHistory_LastModified(t *testing.T) {
	repo := helpers.NewGitRepo(t)

	first := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC)
	repo.Commit("docs/index.md", "# Home", first)
	repo.Commit("docs/guide/install.md", "# Install", first)
	repo.Commit("docs/guide/install.md", "# Install\n\nv2", second)

	h, err := Open(repo.Path("docs"))
	require.NoError(t, err)

	when, ok := h.LastModified(repo.Path("docs/index.md"))
	require.True(t, ok)
	assert.True(t, when.Equal(first), "got %v", when)

	when, ok = h.LastModified(repo.Path("docs/guide/install.md"))
	require.True(t, ok)
	assert.True(t, when.Equal(second), "got %v", when)
}

func TestHistory_UntrackedAndOutside(t *testing.T) {
	repo := helpers.NewGitRepo(t)
	repo.Commit("index.md", "# Home", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, os.WriteFile(repo.Path("draft.md"), []byte("wip"), 0o600))

	h, err := Open(repo.Dir)
	require.NoError(t, err)

	_, ok := h.LastModified(repo.Path("draft.md"))
	assert.False(t, ok)

	_, ok = h.LastModified(filepath.Join(t.TempDir(), "elsewhere.md"))
	assert.False(t, ok)
}

func TestHistory_ResetSeesNewCommits(t *testing.T) {
	repo := helpers.NewGitRepo(t)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.Commit("a.md", "one", first)

	h, err := Open(repo.Dir)
	require.NoError(t, err)
	when, ok := h.LastModified(repo.Path("a.md"))
	require.True(t, ok)
	require.True(t, when.Equal(first))

	second := first.Add(48 * time.Hour)
	repo.Commit("a.md", "two", second)

	when, _ = h.LastModified(repo.Path("a.md"))
	assert.True(t, when.Equal(first), "cached answer expected before Reset")

	h.Reset()
	when, ok = h.LastModified(repo.Path("a.md"))
	require.True(t, ok)
	assert.True(t, when.Equal(second), "got %v", when)
}

func TestOpen_NotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	require.Error(t, err)
}
