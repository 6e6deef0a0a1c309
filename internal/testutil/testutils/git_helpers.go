package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepo is a temporary repository with a worktree for tests that need
// commit history.
type GitRepo struct {
	t        *testing.T
	Dir      string
	Repo     *git.Repository
	Worktree *git.Worktree
}

// NewGitRepo initializes an empty repository in a temporary directory.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to initialize git repo: %v", err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	return &GitRepo{t: t, Dir: dir, Repo: repo, Worktree: w}
}

// Path joins a slash-separated path onto the repository root.
func (g *GitRepo) Path(rel string) string {
	return filepath.Join(g.Dir, filepath.FromSlash(rel))
}

// Commit writes content to rel and commits it with the given author time.
func (g *GitRepo) Commit(rel, content string, when time.Time) {
	g.t.Helper()

	full := g.Path(rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		g.t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o600); err != nil {
		g.t.Fatalf("write %s: %v", rel, err)
	}
	if _, err := g.Worktree.Add(rel); err != nil {
		g.t.Fatalf("git add %s: %v", rel, err)
	}
	_, err := g.Worktree.Commit("update "+rel, &git.CommitOptions{
		Author: &object.Signature{Name: "Docs Bot", Email: "docs@example.com", When: when},
	})
	if err != nil {
		g.t.Fatalf("git commit %s: %v", rel, err)
	}
}
